package middleware

import (
	"net/http"
	"strings"

	"github.com/chokistore/backend/api/responses"
	pkgAuth "github.com/chokistore/backend/pkg/auth"
	"github.com/chokistore/backend/pkg/config"
	pkgerrors "github.com/chokistore/backend/pkg/errors"
	"github.com/chokistore/backend/pkg/logger"
)

// Auth verifies the bearer JWT from the identity issuer and seeds the request
// context with the caller's id and role.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	verifier, verifierErr := pkgAuth.NewVerifier(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			if verifierErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, verifierErr, "token verification unavailable"))
				return
			}
			id, err := verifier.Verify(token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithIdentity(r.Context(), id.UserID, id.Role)
			if logg != nil {
				ctx = logg.WithUserID(ctx, id.UserID.String())
				ctx = logg.WithActorRole(ctx, string(id.Role))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) string {
	raw := strings.TrimSpace(header)
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return ""
}
