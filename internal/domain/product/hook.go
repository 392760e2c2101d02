package product

import "go.uber.org/zap"

// Hook observes successfully constructed products.
type Hook func(item Item)

// Option configures product construction.
type Option func(*options)

type options struct {
	hooks []Hook
}

// WithHook registers h to be called after construction succeeds.
func WithHook(h Hook) Option {
	return func(o *options) {
		if h != nil {
			o.hooks = append(o.hooks, h)
		}
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) created(item Item) {
	for _, h := range o.hooks {
		h(item)
	}
}

// LogCreated returns a Hook that logs every constructed product.
func LogCreated(lg *zap.Logger) Hook {
	return func(item Item) {
		b := item.Base()
		lg.Info("Product created",
			zap.Stringer("kind", item.Kind()),
			zap.String("name", b.Name),
			zap.String("description", b.Description),
			zap.String("price", FormatPrice(b.Price())),
			zap.Int("quantity", b.Quantity),
		)
	}
}
