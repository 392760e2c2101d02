package category

import (
	"context"
	"sync/atomic"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/retail-catalog/internal/domain/product"
)

// Registry owns the process-wide catalog counters: categories ever
// constructed and products ever added. Counters only grow; Reset exists for
// process start and test isolation.
type Registry struct {
	categories atomic.Int64
	products   atomic.Int64

	categoriesCreated metric.Int64Counter
	productsAdded     metric.Int64Counter
}

// NewRegistry creates a Registry with zeroed counters.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewInstrumentedRegistry creates a Registry that also reports its counters
// as OpenTelemetry instruments of m.
func NewInstrumentedRegistry(m metric.Meter) (*Registry, error) {
	r := NewRegistry()

	var err error
	r.categoriesCreated, err = m.Int64Counter("catalog.categories.created",
		metric.WithDescription("Categories constructed"),
		metric.WithUnit("{category}"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create categories counter")
	}
	r.productsAdded, err = m.Int64Counter("catalog.products.added",
		metric.WithDescription("Products added to categories"),
		metric.WithUnit("{product}"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create products counter")
	}

	return r, nil
}

// NewCategory constructs a Category owning items. Every item must be a
// product; otherwise ErrNotProduct is returned and no counter changes.
func (r *Registry) NewCategory(name, description string, items ...product.Item) (*Category, error) {
	for i, item := range items {
		if !product.IsProduct(item) {
			return nil, errors.Wrapf(ErrNotProduct, "item %d of category %q", i, name)
		}
	}

	c := &Category{
		Name:        name,
		Description: description,
		products:    append([]product.Item(nil), items...),
		reg:         r,
	}

	r.categories.Add(1)
	if r.categoriesCreated != nil {
		r.categoriesCreated.Add(context.Background(), 1)
	}
	r.addProducts(len(items))

	return c, nil
}

func (r *Registry) addProducts(n int) {
	if n == 0 {
		return
	}
	r.products.Add(int64(n))
	if r.productsAdded != nil {
		r.productsAdded.Add(context.Background(), int64(n))
	}
}

// Categories returns the number of categories constructed.
func (r *Registry) Categories() int64 {
	return r.categories.Load()
}

// Products returns the number of products added across all categories.
func (r *Registry) Products() int64 {
	return r.products.Load()
}

// Reset zeroes both counters. OpenTelemetry counters are cumulative and are
// not affected.
func (r *Registry) Reset() {
	r.categories.Store(0)
	r.products.Store(0)
}
