package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/chokistore/backend/pkg/enums"
)

// Identity is the caller a verified access token describes.
type Identity struct {
	UserID    uuid.UUID
	Role      enums.UserRole
	Name      string
	TokenID   string
	ExpiresAt time.Time
}

// tokenClaims is the wire form. The user id travels as the registered
// subject so tokens from the identity issuer need no custom id claim.
type tokenClaims struct {
	Role enums.UserRole `json:"role"`
	Name string         `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func (c *tokenClaims) identity() (Identity, error) {
	userID, err := uuid.Parse(c.Subject)
	if err != nil || userID == uuid.Nil {
		return Identity{}, ErrMissingSubject
	}
	if !c.Role.IsValid() {
		return Identity{}, &RoleError{Role: c.Role}
	}
	id := Identity{UserID: userID, Role: c.Role, Name: c.Name, TokenID: c.ID}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id, nil
}
