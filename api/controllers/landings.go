package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chokistore/backend/api/responses"
	"github.com/chokistore/backend/api/validators"
	"github.com/chokistore/backend/internal/landings"
	"github.com/chokistore/backend/pkg/logger"
)

// PublicGetLanding renders the invitation page behind ?landing=<slug>.
func PublicGetLanding(svc landings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("landings"))
			return
		}
		dto, err := svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func AdminListLandings(svc landings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("landings"))
			return
		}
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"landings": list})
	}
}

func AdminGetLanding(svc landings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("landings"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "landingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type createLandingRequest struct {
	Slug           string `json:"slug" validate:"required,max=60"`
	Name           string `json:"name" validate:"required,max=80"`
	WelcomeMessage string `json:"welcome_message" validate:"max=280"`
	ButtonText     string `json:"button_text" validate:"max=40"`
	IsActive       *bool  `json:"is_active,omitempty"`
}

func AdminCreateLanding(svc landings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("landings"))
			return
		}
		var payload createLandingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := landings.CreateInput{
			Slug:           payload.Slug,
			Name:           payload.Name,
			WelcomeMessage: payload.WelcomeMessage,
			ButtonText:     payload.ButtonText,
			Active:         true,
		}
		if payload.IsActive != nil {
			input.Active = *payload.IsActive
		}
		dto, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, dto)
	}
}

type updateLandingRequest struct {
	Slug           *string `json:"slug,omitempty" validate:"omitempty,min=1,max=60"`
	Name           *string `json:"name,omitempty" validate:"omitempty,min=1,max=80"`
	WelcomeMessage *string `json:"welcome_message,omitempty" validate:"omitempty,max=280"`
	ButtonText     *string `json:"button_text,omitempty" validate:"omitempty,max=40"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

func AdminUpdateLanding(svc landings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("landings"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "landingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateLandingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Update(r.Context(), id, landings.UpdateInput{
			Slug:           payload.Slug,
			Name:           payload.Name,
			WelcomeMessage: payload.WelcomeMessage,
			ButtonText:     payload.ButtonText,
			Active:         payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func AdminDeleteLanding(svc landings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("landings"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "landingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
