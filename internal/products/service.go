package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/chokistore/backend/pkg/db/models"
	pkgerrors "github.com/chokistore/backend/pkg/errors"
	"github.com/chokistore/backend/pkg/pagination"
)

// Service exposes catalog reads and admin catalog management.
type Service interface {
	Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*ProductDTO, error)
	List(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name          string
	Description   string
	Category      string
	Ingredients   []string
	PriceCents    int64
	LoyaltyPoints int
	Stock         int
	ImageURL      *string
	IsActive      bool
}

// UpdateProductInput holds optional mutation values for a product. Category
// set to "" removes it; a nil Ingredients leaves the list alone.
type UpdateProductInput struct {
	Name          *string
	Description   *string
	Category      *string
	Ingredients   []string
	PriceCents    *int64
	LoyaltyPoints *int
	Stock         *int
	ImageURL      *string
	ClearImage    bool
	IsActive      *bool
}

// ListProductsInput captures paging for the catalog listing. Category, when
// set, keeps only products filed under it.
type ListProductsInput struct {
	Pagination      pagination.Params
	IncludeInactive bool
	Category        string
}

// MaxIngredients caps the ingredient list of one product.
const MaxIngredients = 20

type service struct {
	repo *Repository
}

// NewService constructs a product service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive && !includeInactive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return NewProductDTO(product), nil
}

func (s *service) List(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	if _, err := pagination.ParseCursor(input.Pagination.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	page, err := s.repo.ListProducts(ctx, productListQuery{
		Pagination:      input.Pagination,
		IncludeInactive: input.IncludeInactive,
		Category:        strings.TrimSpace(input.Category),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	result := &ProductListResult{
		Products:   make([]ProductDTO, 0, len(page.Items)),
		NextCursor: page.NextCursor,
	}
	for i := range page.Items {
		result.Products = append(result.Products, *NewProductDTO(&page.Items[i]))
	}
	return result, nil
}

func (s *service) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	products, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	return products, nil
}

// Create validates and stores a new catalog entry.
func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	product := &models.Product{
		Name:          strings.TrimSpace(input.Name),
		Description:   strings.TrimSpace(input.Description),
		Category:      normalizeCategory(input.Category),
		Ingredients:   normalizeIngredients(input.Ingredients),
		PriceCents:    input.PriceCents,
		LoyaltyPoints: input.LoyaltyPoints,
		Stock:         input.Stock,
		ImageURL:      input.ImageURL,
		IsActive:      input.IsActive,
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return NewProductDTO(created), nil
}

// Update applies a partial update.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	applyUpdateToProduct(product, input)
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return NewProductDTO(updated), nil
}

// Delete removes a product. Placed orders keep their item snapshots.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.repo.DeleteProduct(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func validateProduct(product *models.Product) error {
	if product.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if product.PriceCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price_cents must be non-negative")
	}
	if product.LoyaltyPoints < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "loyalty_points must be non-negative")
	}
	if product.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock must be non-negative")
	}
	if len(product.Ingredients) > MaxIngredients {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "at most %d ingredients are allowed", MaxIngredients)
	}
	return nil
}

func normalizeCategory(raw string) *string {
	category := strings.TrimSpace(raw)
	if category == "" {
		return nil
	}
	return &category
}

// normalizeIngredients trims entries and drops blanks and repeats, keeping
// the admin's order.
func normalizeIngredients(raw []string) pq.StringArray {
	out := pq.StringArray{}
	seen := make(map[string]struct{}, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		product.Category = normalizeCategory(*input.Category)
	}
	if input.Ingredients != nil {
		product.Ingredients = normalizeIngredients(input.Ingredients)
	}
	if input.PriceCents != nil {
		product.PriceCents = *input.PriceCents
	}
	if input.LoyaltyPoints != nil {
		product.LoyaltyPoints = *input.LoyaltyPoints
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.ClearImage {
		product.ImageURL = nil
	} else if input.ImageURL != nil {
		url := strings.TrimSpace(*input.ImageURL)
		product.ImageURL = &url
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
}
