package category

import (
	"fmt"
	"slices"
	"strings"

	"github.com/xenking/retail-catalog/internal/domain/product"
)

// ErrNotProduct is returned when a non-product is added to a category.
var ErrNotProduct = product.ErrNotProduct

// Category is a named, ordered collection of products. Products are only
// ever appended. Categories built by Registry.NewCategory are counted in
// that registry; a zero Category is usable but uncounted.
type Category struct {
	Name        string
	Description string

	products []product.Item
	reg      *Registry
}

// AddProduct appends item and counts it in the owning Registry. Anything
// that is not a product is rejected with ErrNotProduct.
func (c *Category) AddProduct(item product.Item) error {
	if !product.IsProduct(item) {
		return ErrNotProduct
	}
	c.products = append(c.products, item)
	if c.reg != nil {
		c.reg.addProducts(1)
	}
	return nil
}

// Products returns the products in insertion order. The slice must not be
// modified; its capacity is clipped so appends never reach the category.
func (c *Category) Products() []product.Item {
	return slices.Clip(c.products)
}

// Len returns the number of products.
func (c *Category) Len() int {
	return len(c.products)
}

// TotalQuantity sums the stock quantity of all products.
func (c *Category) TotalQuantity() int {
	var total int
	for _, item := range c.products {
		total += item.Base().Quantity
	}
	return total
}

// RenderProducts renders one line per product.
func (c *Category) RenderProducts() string {
	var b strings.Builder
	for _, item := range c.products {
		b.WriteString(item.String())
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

// String renders the category as "<name>, количество продуктов: <total> шт.".
func (c *Category) String() string {
	return fmt.Sprintf("%s, количество продуктов: %d шт.", c.Name, c.TotalQuantity())
}
