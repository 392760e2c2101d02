package category

import (
	"iter"

	"github.com/xenking/retail-catalog/internal/domain/product"
)

// Reader is a forward-only, one-shot traversal over the products a category
// held when the reader was created. Products added later are not observed.
// A Reader must not be used concurrently with mutation of its category.
type Reader struct {
	items []product.Item
	pos   int
}

// NewReader creates a Reader positioned before the first product of c.
func NewReader(c *Category) *Reader {
	return &Reader{items: c.Products()}
}

// Next returns the next product, or false once the reader is exhausted.
func (r *Reader) Next() (product.Item, bool) {
	if r.pos >= len(r.items) {
		return nil, false
	}
	item := r.items[r.pos]
	r.pos++
	return item, true
}

// All yields the remaining products, advancing the reader.
func (r *Reader) All() iter.Seq[product.Item] {
	return func(yield func(product.Item) bool) {
		for {
			item, ok := r.Next()
			if !ok || !yield(item) {
				return
			}
		}
	}
}
