package controllers

import (
	"net/http"
	"strings"

	"github.com/chokistore/backend/api/responses"
	"github.com/chokistore/backend/api/validators"
	product "github.com/chokistore/backend/internal/products"
	"github.com/chokistore/backend/pkg/logger"
	"github.com/chokistore/backend/pkg/types"
)

const (
	maxDescriptionLen = 2000
	maxCategoryLen    = 60
)

// PublicListProducts returns the active catalog.
func PublicListProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return listProducts(svc, logg, false)
}

// AdminListProducts includes inactive products.
func AdminListProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return listProducts(svc, logg, true)
}

func listProducts(svc product.Service, logg *logger.Logger, includeInactive bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.List(r.Context(), product.ListProductsInput{
			Pagination:      params,
			IncludeInactive: includeInactive,
			Category:        validators.SanitizeString(r.URL.Query().Get("category"), maxCategoryLen),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// PublicGetProduct returns one active product.
func PublicGetProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Get(r.Context(), id, false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type createProductRequest struct {
	Name          string   `json:"name" validate:"required,max=120"`
	Description   string   `json:"description"`
	Category      string   `json:"category" validate:"max=60"`
	Ingredients   []string `json:"ingredients" validate:"max=20,dive,max=80"`
	PriceCents    int64    `json:"price_cents" validate:"gte=0"`
	LoyaltyPoints int      `json:"loyalty_points" validate:"gte=0"`
	Stock         int      `json:"stock" validate:"gte=0"`
	ImageURL      *string  `json:"image_url,omitempty" validate:"omitempty,url"`
	IsActive      *bool    `json:"is_active,omitempty"`
}

func (req createProductRequest) toInput() product.CreateProductInput {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return product.CreateProductInput{
		Name:          strings.TrimSpace(req.Name),
		Description:   validators.SanitizeString(req.Description, maxDescriptionLen),
		Category:      req.Category,
		Ingredients:   req.Ingredients,
		PriceCents:    req.PriceCents,
		LoyaltyPoints: req.LoyaltyPoints,
		Stock:         req.Stock,
		ImageURL:      req.ImageURL,
		IsActive:      active,
	}
}

// AdminCreateProduct adds a catalog entry.
func AdminCreateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, dto)
	}
}

type updateProductRequest struct {
	Name          *string   `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description   *string   `json:"description,omitempty"`
	Category      *string   `json:"category,omitempty" validate:"omitempty,max=60"`
	Ingredients   *[]string `json:"ingredients,omitempty" validate:"omitempty,max=20,dive,max=80"`
	PriceCents    *int64    `json:"price_cents,omitempty" validate:"omitempty,gte=0"`
	LoyaltyPoints *int      `json:"loyalty_points,omitempty" validate:"omitempty,gte=0"`
	Stock         *int      `json:"stock,omitempty" validate:"omitempty,gte=0"`
	IsActive      *bool     `json:"is_active,omitempty"`

	// ImageURL set to null removes the image.
	ImageURL types.NullableString `json:"image_url"`
}

func (req updateProductRequest) toInput() product.UpdateProductInput {
	input := product.UpdateProductInput{
		Category:      req.Category,
		PriceCents:    req.PriceCents,
		LoyaltyPoints: req.LoyaltyPoints,
		Stock:         req.Stock,
		IsActive:      req.IsActive,
	}
	if req.ImageURL.Valid {
		input.ImageURL = req.ImageURL.Value
		input.ClearImage = req.ImageURL.Value == nil
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		input.Name = &name
	}
	if req.Description != nil {
		desc := validators.SanitizeString(*req.Description, maxDescriptionLen)
		input.Description = &desc
	}
	if req.Ingredients != nil {
		input.Ingredients = append([]string{}, *req.Ingredients...)
	}
	return input
}

// AdminUpdateProduct patches the provided fields.
func AdminUpdateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Update(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func AdminDeleteProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
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
