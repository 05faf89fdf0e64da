package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/chokistore/backend/api/responses"
	"github.com/chokistore/backend/api/validators"
	"github.com/chokistore/backend/internal/cart"
	"github.com/chokistore/backend/internal/checkout"
	"github.com/chokistore/backend/pkg/logger"
)

type cartLineRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gte=1,lte=1000"`
}

type cartRequest struct {
	Items []cartLineRequest `json:"items" validate:"max=100,dive"`
}

func (req cartRequest) toItems() []cart.ItemInput {
	items := make([]cart.ItemInput, 0, len(req.Items))
	for _, line := range req.Items {
		items = append(items, cart.ItemInput{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return items
}

// CartQuote prices a cart without placing it. An empty cart quotes to zero.
func CartQuote(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("checkout"))
			return
		}
		var payload cartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.Quote(r.Context(), payload.toItems())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// CheckoutPreview is CartQuote for a cart that is about to be placed.
func CheckoutPreview(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("checkout"))
			return
		}
		var payload cartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.Preview(r.Context(), payload.toItems())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// Checkout places the cart as a purchase order.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("checkout"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload cartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Place(r.Context(), userID, payload.toItems())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, order)
	}
}
