package catalog

import "github.com/google/uuid"

// CartLine is one product in a cart with how many of it the buyer wants.
// Quantity is always >= 1; the line's identity is the referenced product's ID.
type CartLine struct {
	Product  Product
	Quantity int
}

// Cart accumulates cart lines for one buyer. Adding a product that is already
// in the cart bumps its line's quantity instead of adding a second line.
type Cart struct {
	lines []CartLine
}

// Add puts one unit of p in the cart, merging into an existing line by
// product identity.
func (c *Cart) Add(p Product) {
	for i := range c.lines {
		if c.lines[i].Product.ID == p.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, CartLine{Product: p, Quantity: 1})
}

// Remove drops the line for the given product, whatever its quantity.
func (c *Cart) Remove(id uuid.UUID) {
	for i := range c.lines {
		if c.lines[i].Product.ID == id {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Count returns the total number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy of the cart contents.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}
