package order

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/retail-catalog/internal/domain/product"
)

// Sentinel errors for order validation.
var (
	ErrInvalidQuantity   = errors.New("quantity must be greater than 0")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError indicates that more units were requested than the
// product has in stock.
type InsufficientStockError struct {
	Product   string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.Product, e.Requested, e.Available)
}

// Is reports whether target is ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Order binds one product to a requested quantity. The product is shared
// and never modified; stock is not reserved.
type Order struct {
	ID        string
	Product   product.Item
	Quantity  int
	Total     decimal.Decimal
	CreatedAt time.Time
}

// New validates quantity against the product's current stock and fixes the
// total at price × quantity.
func New(p product.Item, quantity int) (*Order, error) {
	if !product.IsProduct(p) {
		return nil, product.ErrNotProduct
	}
	base := p.Base()
	if quantity <= 0 {
		return nil, errors.Wrapf(ErrInvalidQuantity, "product %s", base.Name)
	}
	if quantity > base.Quantity {
		return nil, &InsufficientStockError{
			Product:   base.Name,
			Requested: quantity,
			Available: base.Quantity,
		}
	}

	return &Order{
		ID:        uuid.New().String(),
		Product:   p,
		Quantity:  quantity,
		Total:     base.Price().Mul(decimal.NewFromInt(int64(quantity))),
		CreatedAt: time.Now(),
	}, nil
}

// String renders the order as
// "Заказ: <name>, количество: <quantity>, итого: <total> руб.".
func (o *Order) String() string {
	return fmt.Sprintf("Заказ: %s, количество: %d, итого: %s руб.",
		o.Product.Base().Name, o.Quantity, product.FormatPrice(o.Total))
}
