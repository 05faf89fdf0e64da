package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Loyalty      LoyaltyConfig
	Cache        CacheConfig
	Cron         CronConfig
	RateLimit    RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CHOKISTORE_APP_ENV" required:"true"`
	Port         string `envconfig:"CHOKISTORE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CHOKISTORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CHOKISTORE_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"CHOKISTORE_LOG_FORMAT" default:"json"`

	// CORSOrigins is a comma separated allow list.
	CORSOrigins []string `envconfig:"CHOKISTORE_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"CHOKISTORE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CHOKISTORE_DB_DSN"`
	Driver string `envconfig:"CHOKISTORE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"CHOKISTORE_DB_HOST"`
	Port     int    `envconfig:"CHOKISTORE_DB_PORT" default:"5432"`
	User     string `envconfig:"CHOKISTORE_DB_USER"`
	Password string `envconfig:"CHOKISTORE_DB_PASSWORD"`
	Name     string `envconfig:"CHOKISTORE_DB_NAME"`
	SSLMode  string `envconfig:"CHOKISTORE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CHOKISTORE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CHOKISTORE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CHOKISTORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CHOKISTORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is sqlite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"CHOKISTORE_REDIS_URL"`
	Address      string        `envconfig:"CHOKISTORE_REDIS_ADDR"`
	Password     string        `envconfig:"CHOKISTORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CHOKISTORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CHOKISTORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CHOKISTORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CHOKISTORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CHOKISTORE_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"CHOKISTORE_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CHOKISTORE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CHOKISTORE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CHOKISTORE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate     bool `envconfig:"CHOKISTORE_AUTO_MIGRATE" default:"false"`
	PromotionsCache bool `envconfig:"CHOKISTORE_PROMOTIONS_CACHE" default:"true"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"CHOKISTORE_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"CHOKISTORE_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	OrdersTopic       string `envconfig:"CHOKISTORE_PUBSUB_ORDERS_TOPIC" default:"choki-order-events"`
	LoyaltyTopic      string `envconfig:"CHOKISTORE_PUBSUB_LOYALTY_TOPIC" default:"choki-loyalty-events"`
	NotificationTopic string `envconfig:"CHOKISTORE_PUBSUB_NOTIFICATION_TOPIC" default:"choki-notification-events"`
}

// Topics returns the configured topic names, skipping blanks.
func (p PubSubConfig) Topics() []string {
	topics := []string{}
	for _, name := range []string{p.OrdersTopic, p.LoyaltyTopic, p.NotificationTopic} {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			topics = append(topics, trimmed)
		}
	}
	return topics
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CHOKISTORE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CHOKISTORE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CHOKISTORE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// LoyaltyConfig holds the pricing and lifecycle constants of the points program.
type LoyaltyConfig struct {
	PointsPerCurrencyUnit int64         `envconfig:"CHOKISTORE_LOYALTY_POINTS_PER_UNIT" default:"10"`
	LateCancelWindow      time.Duration `envconfig:"CHOKISTORE_LOYALTY_LATE_CANCEL_WINDOW" default:"1h"`
	LateCancelPenalty     int64         `envconfig:"CHOKISTORE_LOYALTY_LATE_CANCEL_PENALTY" default:"5"`
	HistoryLimit          int           `envconfig:"CHOKISTORE_ORDER_HISTORY_LIMIT" default:"50"`
	NotificationTTL       time.Duration `envconfig:"CHOKISTORE_NOTIFICATION_TTL" default:"10m"`
}

type CacheConfig struct {
	PromotionsTTL time.Duration `envconfig:"CHOKISTORE_CACHE_PROMOTIONS_TTL" default:"5m"`
}

type CronConfig struct {
	Interval              time.Duration `envconfig:"CHOKISTORE_CRON_INTERVAL" default:"1h"`
	NotificationRetention time.Duration `envconfig:"CHOKISTORE_CRON_NOTIFICATION_RETENTION" default:"24h"`
	OutboxRetentionDays   int           `envconfig:"CHOKISTORE_CRON_OUTBOX_RETENTION_DAYS" default:"30"`
}

// RateLimitConfig bounds order placement per user and per client IP.
type RateLimitConfig struct {
	Window    time.Duration `envconfig:"CHOKISTORE_RATE_LIMIT_WINDOW" default:"1m"`
	UserLimit int           `envconfig:"CHOKISTORE_RATE_LIMIT_USER" default:"10"`
	IPLimit   int           `envconfig:"CHOKISTORE_RATE_LIMIT_IP" default:"30"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dsnPartEnvVars {
		if parts[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
