package config

// EnvPrefix is empty because every field carries its fully qualified name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "CHOKISTORE_APP_ENV"
	EnvPort     = "CHOKISTORE_APP_PORT"
	EnvLogLevel = "CHOKISTORE_LOG_LEVEL"

	EnvDBDSN    = "CHOKISTORE_DB_DSN"
	EnvDBDriver = "CHOKISTORE_DB_DRIVER"
	EnvDBHost   = "CHOKISTORE_DB_HOST"
	EnvDBUser   = "CHOKISTORE_DB_USER"
	EnvDBName   = "CHOKISTORE_DB_NAME"

	EnvRedisURL = "CHOKISTORE_REDIS_URL"

	EnvJWTSecret = "CHOKISTORE_JWT_SECRET"
	EnvJWTIssuer = "CHOKISTORE_JWT_ISSUER"

	EnvGCPProjectID = "CHOKISTORE_GCP_PROJECT_ID"

	EnvLoyaltyPointsPerUnit = "CHOKISTORE_LOYALTY_POINTS_PER_UNIT"
	EnvOrderHistoryLimit    = "CHOKISTORE_ORDER_HISTORY_LIMIT"
)

var dsnPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
