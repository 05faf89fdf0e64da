package users

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chokistore/backend/pkg/db"
	"github.com/chokistore/backend/pkg/db/models"
	"github.com/chokistore/backend/pkg/enums"
	pkgerrors "github.com/chokistore/backend/pkg/errors"
)

const (
	maxDisplayNameLen = 80

	// NameChangeCooldown is how long a shopper waits between renames.
	NameChangeCooldown = 24 * time.Hour
)

// Service manages shopper profiles keyed by the external identity id.
type Service interface {
	EnsureProfile(ctx context.Context, input EnsureProfileInput) (*UserDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService wires the users service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) EnsureProfile(ctx context.Context, input EnsureProfileInput) (*UserDTO, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id missing")
	}
	role := input.Role
	if role == "" {
		role = enums.UserRoleClient
	}
	if !role.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid role %q", role)
	}

	name := strings.TrimSpace(input.DisplayName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "display name is required")
	}
	if len([]rune(name)) > maxDisplayNameLen {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "display name exceeds %d characters", maxDisplayNameLen)
	}

	var email *string
	if input.Email != nil {
		trimmed := strings.ToLower(strings.TrimSpace(*input.Email))
		if trimmed != "" {
			if _, err := mail.ParseAddress(trimmed); err != nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is invalid")
			}
			email = &trimmed
		}
	}

	user := &models.User{
		ID:          input.UserID,
		DisplayName: name,
		Email:       email,
		Role:        role,
	}
	if err := s.stampRename(ctx, user); err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "users_email_unique") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save profile")
	}
	return s.Get(ctx, input.UserID)
}

// stampRename carries the last rename time forward and refuses a new display
// name inside the cooldown. The first name a profile gets is not a rename.
func (s *service) stampRename(ctx context.Context, user *models.User) error {
	existing, err := s.repo.FindByID(ctx, user.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	user.LastNameChangeAt = existing.LastNameChangeAt
	if existing.DisplayName == user.DisplayName {
		return nil
	}
	now := s.now().UTC()
	if last := existing.LastNameChangeAt; last != nil {
		if wait := last.Add(NameChangeCooldown).Sub(now); wait > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "display name can only change once every 24 hours").
				WithDetails(map[string]any{
					"retry_after_hours": int(math.Ceil(wait.Hours())),
					"next_change_at":    last.Add(NameChangeCooldown).UTC(),
				})
		}
	}
	user.LastNameChangeAt = &now
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return FromModel(user), nil
}
