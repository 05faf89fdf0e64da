package controllers

import (
	"net/http"

	"github.com/chokistore/backend/api/middleware"
	"github.com/chokistore/backend/api/responses"
	"github.com/chokistore/backend/api/validators"
	"github.com/chokistore/backend/internal/users"
	"github.com/chokistore/backend/pkg/logger"
)

// GetMe returns the caller's profile and point balance.
func GetMe(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("users"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type updateMeRequest struct {
	DisplayName string  `json:"display_name" validate:"required"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
}

// UpdateMe creates the profile on first call and updates it afterwards.
// The role always comes from the token.
func UpdateMe(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("users"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateMeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.EnsureProfile(r.Context(), users.EnsureProfileInput{
			UserID:      userID,
			Role:        middleware.RoleFromContext(r.Context()),
			DisplayName: payload.DisplayName,
			Email:       payload.Email,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
