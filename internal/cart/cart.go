package cart

import (
	"github.com/google/uuid"

	"github.com/chokistore/backend/internal/promotions"
	dbtypes "github.com/chokistore/backend/pkg/db/types"
)

// ProductSnapshot is the catalog data a cart line carries.
type ProductSnapshot struct {
	ID             uuid.UUID
	Name           string
	UnitPriceCents int64
	LoyaltyPoints  int
}

// Line is a product snapshot and a quantity of at least one.
type Line struct {
	Product  ProductSnapshot
	Quantity int
}

// SubtotalCents is the line's undiscounted price.
func (l Line) SubtotalCents() int64 {
	return l.Product.UnitPriceCents * int64(l.Quantity)
}

// Cart is an ordered set of lines, unique by product id. The zero value is an
// empty cart. A Cart is not safe for concurrent mutation.
type Cart struct {
	lines []Line
}

// New builds a cart from lines, merging repeated products into the first
// occurrence and dropping non-positive quantities.
func New(lines ...Line) *Cart {
	c := &Cart{}
	for _, line := range lines {
		c.Add(line.Product, line.Quantity)
	}
	return c
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add puts qty units of the product in the cart. An existing line keeps its
// position and takes the fresher snapshot.
func (c *Cart) Add(product ProductSnapshot, qty int) {
	if qty <= 0 {
		return
	}
	if i := c.indexOf(product.ID); i >= 0 {
		c.lines[i].Product = product
		c.lines[i].Quantity += qty
		return
	}
	c.lines = append(c.lines, Line{Product: product, Quantity: qty})
}

// SetQuantity replaces a line's quantity; zero or less removes the line. It
// reports whether the product was in the cart.
func (c *Cart) SetQuantity(productID uuid.UUID, qty int) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	if qty <= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return true
	}
	c.lines[i].Quantity = qty
	return true
}

// Adjust moves a line's quantity by delta.
func (c *Cart) Adjust(productID uuid.UUID, delta int) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	return c.SetQuantity(productID, c.lines[i].Quantity+delta)
}

func (c *Cart) Remove(productID uuid.UUID) bool {
	return c.SetQuantity(productID, 0)
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the lines in cart order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) SubtotalCents() int64 {
	var total int64
	for _, line := range c.lines {
		total += line.SubtotalCents()
	}
	return total
}

func (c *Cart) TotalQuantity() int {
	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

// EngineLines projects the cart for promotion evaluation.
func (c *Cart) EngineLines() []promotions.Line {
	out := make([]promotions.Line, 0, len(c.lines))
	for _, line := range c.lines {
		out = append(out, promotions.Line{
			ProductID:      line.Product.ID,
			UnitPriceCents: line.Product.UnitPriceCents,
			Quantity:       line.Quantity,
		})
	}
	return out
}

// OrderItems snapshots the cart for an order record.
func (c *Cart) OrderItems() dbtypes.OrderItems {
	out := make(dbtypes.OrderItems, 0, len(c.lines))
	for _, line := range c.lines {
		out = append(out, dbtypes.OrderItem{
			ProductID:      line.Product.ID,
			Name:           line.Product.Name,
			UnitPriceCents: line.Product.UnitPriceCents,
			LoyaltyPoints:  line.Product.LoyaltyPoints,
			Quantity:       line.Quantity,
		})
	}
	return out
}
