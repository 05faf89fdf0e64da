package controllers

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/chokistore/backend/api/responses"
	"github.com/chokistore/backend/api/validators"
	"github.com/chokistore/backend/internal/promotions"
	pkgerrors "github.com/chokistore/backend/pkg/errors"
	"github.com/chokistore/backend/pkg/logger"
)

// PublicActivePromotions lists the promotions shoppers can currently trigger,
// featured ones first.
func PublicActivePromotions(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("promotions"))
			return
		}
		active, err := svc.Active(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]promotions.PromotionDTO, 0, len(active))
		for _, promo := range active {
			dto, err := promotions.DTOFromPromotion(promo)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render promotion"))
				return
			}
			out = append(out, dto)
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].IsFeatured && !out[j].IsFeatured })
		responses.WriteSuccess(w, map[string]any{"promotions": out})
	}
}

func AdminListPromotions(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("promotions"))
			return
		}
		all, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"promotions": all})
	}
}

func AdminGetPromotion(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("promotions"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "promotionId")
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

// Condition and reward travel as the same tagged documents the database
// stores, e.g. {"type":"min_subtotal","amountCents":1000}.
type promotionRequest struct {
	Name        *string         `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description *string         `json:"description,omitempty"`
	IsActive    *bool           `json:"is_active,omitempty"`
	IsFeatured  *bool           `json:"is_featured,omitempty"`
	Condition   json.RawMessage `json:"condition,omitempty"`
	Reward      json.RawMessage `json:"reward,omitempty"`
}

func (req promotionRequest) rule() (promotions.Condition, promotions.Reward, error) {
	var (
		condition promotions.Condition
		reward    promotions.Reward
		err       error
	)
	if len(req.Condition) > 0 {
		if condition, err = promotions.DecodeCondition(req.Condition); err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition").WithDetails(map[string]string{"condition": err.Error()})
		}
	}
	if len(req.Reward) > 0 {
		if reward, err = promotions.DecodeReward(req.Reward); err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reward").WithDetails(map[string]string{"reward": err.Error()})
		}
	}
	return condition, reward, nil
}

func AdminCreatePromotion(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("promotions"))
			return
		}
		var payload promotionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Name == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{"name": "is required"}))
			return
		}
		condition, reward, err := payload.rule()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := promotions.CreateInput{
			Name:      *payload.Name,
			Active:    true,
			Condition: condition,
			Reward:    reward,
		}
		if payload.Description != nil {
			input.Description = validators.SanitizeString(*payload.Description, maxDescriptionLen)
		}
		if payload.IsActive != nil {
			input.Active = *payload.IsActive
		}
		if payload.IsFeatured != nil {
			input.Featured = *payload.IsFeatured
		}
		dto, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, dto)
	}
}

func AdminUpdatePromotion(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("promotions"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "promotionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload promotionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		condition, reward, err := payload.rule()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := promotions.UpdateInput{
			Name:      payload.Name,
			Active:    payload.IsActive,
			Featured:  payload.IsFeatured,
			Condition: condition,
			Reward:    reward,
		}
		if payload.Description != nil {
			desc := validators.SanitizeString(*payload.Description, maxDescriptionLen)
			input.Description = &desc
		}
		dto, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func AdminDeletePromotion(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("promotions"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "promotionId")
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
