package landings

import (
	"time"

	"github.com/google/uuid"

	"github.com/chokistore/backend/pkg/db/models"
)

// LandingDTO is the admin view of a landing.
type LandingDTO struct {
	ID             uuid.UUID `json:"id"`
	Slug           string    `json:"slug"`
	Name           string    `json:"name"`
	WelcomeMessage string    `json:"welcome_message"`
	ButtonText     string    `json:"button_text"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PublicLandingDTO is what an invitation link renders.
type PublicLandingDTO struct {
	Slug           string `json:"slug"`
	Name           string `json:"name"`
	WelcomeMessage string `json:"welcome_message"`
	ButtonText     string `json:"button_text"`
}

// CreateInput is an admin request to add a landing.
type CreateInput struct {
	Slug           string
	Name           string
	WelcomeMessage string
	ButtonText     string
	Active         bool
}

// UpdateInput replaces the provided fields. Nil leaves a field unchanged.
type UpdateInput struct {
	Slug           *string
	Name           *string
	WelcomeMessage *string
	ButtonText     *string
	Active         *bool
}

func NewLandingDTO(m *models.Landing) LandingDTO {
	return LandingDTO{
		ID:             m.ID,
		Slug:           m.Slug,
		Name:           m.Name,
		WelcomeMessage: m.WelcomeMessage,
		ButtonText:     m.ButtonText,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func newPublicLandingDTO(m *models.Landing) PublicLandingDTO {
	return PublicLandingDTO{
		Slug:           m.Slug,
		Name:           m.Name,
		WelcomeMessage: m.WelcomeMessage,
		ButtonText:     m.ButtonText,
	}
}
