package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/chokistore/backend/pkg/db/models"
	"github.com/chokistore/backend/pkg/enums"
)

// UserDTO is the profile returned by /me, including the point balance.
type UserDTO struct {
	ID               uuid.UUID      `json:"id"`
	DisplayName      string         `json:"display_name"`
	Email            *string        `json:"email,omitempty"`
	Role             enums.UserRole `json:"role"`
	Points           int64          `json:"points"`
	LastNameChangeAt *time.Time     `json:"last_name_change_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// EnsureProfileInput carries the identity claims plus the editable fields.
type EnsureProfileInput struct {
	UserID      uuid.UUID
	Role        enums.UserRole
	DisplayName string
	Email       *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:               u.ID,
		DisplayName:      u.DisplayName,
		Email:            u.Email,
		Role:             u.Role,
		Points:           u.Points,
		LastNameChangeAt: u.LastNameChangeAt,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}
