package catalog

import (
	"fmt"
	"sync"

	"github.com/jinzhu/copier"
)

// Catalog is the in-memory append-only store of published products. The
// generation workflow only ever writes into it; browsing reads copies.
type Catalog struct {
	mu       sync.Mutex
	products []Product
}

// Add appends a published product. There is no update or delete: a product is
// immutable once it is in the catalog.
func (c *Catalog) Add(p Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = append(c.products, p)
}

// List returns deep copies of all published products, in publish order.
func (c *Catalog) List() ([]Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Product, len(c.products))
	for i := range c.products {
		if err := copier.CopyWithOption(&out[i], &c.products[i], copier.Option{DeepCopy: true}); err != nil {
			return nil, fmt.Errorf("catalog: copy product %s: %w", c.products[i].ID, err)
		}
	}
	return out, nil
}

// Len returns how many products have been published.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.products)
}
