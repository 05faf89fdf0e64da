package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/chokistore/backend/pkg/config"
	"github.com/chokistore/backend/pkg/enums"
)

// Clock skew tolerated between the identity issuer and this service.
const verifyLeeway = 30 * time.Second

var (
	signingMethod = jwt.SigningMethodHS256

	ErrMissingSecret  = errors.New("jwt secret is required")
	ErrMissingSubject = errors.New("token subject is not a user id")
)

// RoleError reports a token whose role this service does not recognise.
type RoleError struct {
	Role enums.UserRole
}

func (e *RoleError) Error() string {
	return fmt.Sprintf("token carries unknown role %q", string(e.Role))
}

// Verifier checks HS256 access tokens minted by the identity issuer.
type Verifier struct {
	key    []byte
	parser *jwt.Parser
}

func NewVerifier(cfg config.JWTConfig) (*Verifier, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(verifyLeeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &Verifier{key: []byte(cfg.Secret), parser: jwt.NewParser(opts...)}, nil
}

// Verify validates signature, issuer and expiry, then maps the claims onto
// an Identity.
func (v *Verifier) Verify(raw string) (Identity, error) {
	claims := &tokenClaims{}
	if _, err := v.parser.ParseWithClaims(strings.TrimSpace(raw), claims, v.keyFunc); err != nil {
		return Identity{}, err
	}
	return claims.identity()
}

func (v *Verifier) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method != signingMethod {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
	return v.key, nil
}

// Sign mints an access token for id, valid for the configured number of
// minutes from now. Production tokens come from the identity issuer; Sign
// serves local tooling and tests.
func Sign(cfg config.JWTConfig, now time.Time, id Identity) (string, error) {
	switch {
	case cfg.Secret == "":
		return "", ErrMissingSecret
	case cfg.ExpirationMinutes <= 0:
		return "", errors.New("jwt expiration minutes must be positive")
	case id.UserID == uuid.Nil:
		return "", ErrMissingSubject
	case !id.Role.IsValid():
		return "", &RoleError{Role: id.Role}
	}

	tokenID := id.TokenID
	if tokenID == "" {
		tokenID = uuid.NewString()
	}
	claims := tokenClaims{
		Role: id.Role,
		Name: strings.TrimSpace(id.Name),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			Issuer:    cfg.Issuer,
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}
