package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/chokistore/backend/internal/cart"
	"github.com/chokistore/backend/internal/orders"
	"github.com/chokistore/backend/internal/pricing"
	"github.com/chokistore/backend/internal/promotions"
	pkgerrors "github.com/chokistore/backend/pkg/errors"
)

type cartResolver interface {
	Resolve(ctx context.Context, items []cart.ItemInput) (*cart.Cart, error)
}

type promotionSource interface {
	Active(ctx context.Context) ([]promotions.Promotion, error)
}

type orderPlacer interface {
	PlaceOrder(ctx context.Context, input orders.PlaceOrderInput) (*orders.OrderDTO, error)
}

// Service prices carts and turns them into orders. The quote, the preview and
// the placed order all come from pricing.Price over the same inputs.
type Service interface {
	Quote(ctx context.Context, items []cart.ItemInput) (*QuoteDTO, error)
	Preview(ctx context.Context, items []cart.ItemInput) (*QuoteDTO, error)
	Place(ctx context.Context, userID uuid.UUID, items []cart.ItemInput) (*orders.OrderDTO, error)
}

type service struct {
	resolver   cartResolver
	promotions promotionSource
	orders     orderPlacer
	policy     pricing.Policy
}

// NewService builds the checkout service.
func NewService(resolver cartResolver, promos promotionSource, placer orderPlacer, policy pricing.Policy) (Service, error) {
	if resolver == nil {
		return nil, fmt.Errorf("cart resolver required")
	}
	if promos == nil {
		return nil, fmt.Errorf("promotion source required")
	}
	if placer == nil {
		return nil, fmt.Errorf("order placer required")
	}
	if policy.PointsPerCurrencyUnit <= 0 {
		policy = pricing.DefaultPolicy()
	}
	return &service{
		resolver:   resolver,
		promotions: promos,
		orders:     placer,
		policy:     policy,
	}, nil
}

// Quote prices whatever is in the cart, including nothing.
func (s *service) Quote(ctx context.Context, items []cart.ItemInput) (*QuoteDTO, error) {
	c, promos, err := s.load(ctx, items)
	if err != nil {
		return nil, err
	}
	return newQuoteDTO(c, pricing.Price(c, promos, s.policy)), nil
}

// Preview is the last look before placing; an empty cart cannot be checked out.
func (s *service) Preview(ctx context.Context, items []cart.ItemInput) (*QuoteDTO, error) {
	c, promos, err := s.load(ctx, items)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	return newQuoteDTO(c, pricing.Price(c, promos, s.policy)), nil
}

func (s *service) Place(ctx context.Context, userID uuid.UUID, items []cart.ItemInput) (*orders.OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	c, promos, err := s.load(ctx, items)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	return s.orders.PlaceOrder(ctx, orders.PlaceOrderInput{
		UserID:     userID,
		Cart:       c,
		Promotions: promos,
	})
}

func (s *service) load(ctx context.Context, items []cart.ItemInput) (*cart.Cart, []promotions.Promotion, error) {
	c, err := s.resolver.Resolve(ctx, items)
	if err != nil {
		return nil, nil, err
	}
	if c.IsEmpty() {
		return c, nil, nil
	}
	promos, err := s.promotions.Active(ctx)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, nil, err
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active promotions")
	}
	return c, promos, nil
}
