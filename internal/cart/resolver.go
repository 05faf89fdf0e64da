package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/chokistore/backend/pkg/db/models"
	pkgerrors "github.com/chokistore/backend/pkg/errors"
)

// ItemInput is one client-supplied cart line.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type productLoader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// Resolver turns client line items into a priced cart using current catalog data.
type Resolver struct {
	products productLoader
}

// NewResolver builds a resolver backed by the catalog.
func NewResolver(products productLoader) (*Resolver, error) {
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &Resolver{products: products}, nil
}

// Resolve loads every referenced product in one lookup. Unknown or inactive
// products fail the whole cart.
func (r *Resolver) Resolve(ctx context.Context, items []ItemInput) (*Cart, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
		}
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	c := &Cart{}
	if len(ids) == 0 {
		return c, nil
	}

	rows, err := r.products.FindByIDs(ctx, ids)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}
	byID := make(map[uuid.UUID]models.Product, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok || !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": item.ProductID.String()})
		}
		c.Add(Snapshot(product), item.Quantity)
	}
	return c, nil
}

// Snapshot captures the catalog fields a cart line needs.
func Snapshot(product models.Product) ProductSnapshot {
	return ProductSnapshot{
		ID:             product.ID,
		Name:           product.Name,
		UnitPriceCents: product.PriceCents,
		LoyaltyPoints:  product.LoyaltyPoints,
	}
}
