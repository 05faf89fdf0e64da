package product

import (
	"time"

	"github.com/google/uuid"

	"github.com/chokistore/backend/pkg/db/models"
)

// ProductDTO represents the product payload returned to clients.
type ProductDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      *string   `json:"category,omitempty"`
	Ingredients   []string  `json:"ingredients"`
	PriceCents    int64     `json:"price_cents"`
	LoyaltyPoints int       `json:"loyalty_points"`
	PointsCost    int64     `json:"points_cost"`
	Stock         int       `json:"stock"`
	ImageURL      *string   `json:"image_url,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductListResult wraps a page of products plus the next page cursor.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// RedemptionCost is the number of points a product costs in the loyalty
// catalog: one hundred points per currency unit.
func RedemptionCost(priceCents int64) int64 {
	if priceCents < 0 {
		return 0
	}
	return priceCents
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	ingredients := []string(product.Ingredients)
	if ingredients == nil {
		ingredients = []string{}
	}
	return &ProductDTO{
		ID:            product.ID,
		Name:          product.Name,
		Description:   product.Description,
		Category:      product.Category,
		Ingredients:   ingredients,
		PriceCents:    product.PriceCents,
		LoyaltyPoints: product.LoyaltyPoints,
		PointsCost:    RedemptionCost(product.PriceCents),
		Stock:         product.Stock,
		ImageURL:      product.ImageURL,
		IsActive:      product.IsActive,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
}
