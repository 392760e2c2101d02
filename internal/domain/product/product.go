package product

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidPrice is returned when a product is constructed with a
	// non-positive price.
	ErrInvalidPrice = errors.New("price must be greater than 0")
	// ErrInvalidQuantity is returned when a product is constructed with a
	// negative quantity.
	ErrInvalidQuantity = errors.New("quantity must not be negative")
	// ErrNotProduct is returned when a value does not carry the product
	// capability set (nil, typed nil or unknown kind).
	ErrNotProduct = errors.New("value is not a product")
)

// Item is the capability set shared by the base product and all of its
// variants.
type Item interface {
	// Kind reports the concrete product kind.
	Kind() Kind
	// Base returns the common product record. Mutations through the
	// returned pointer are visible to every holder of the item.
	Base() *Product
	// String renders the catalog line of the item.
	String() string
}

// Product represents a single catalog item.
type Product struct {
	Name        string
	Description string
	Quantity    int

	price decimal.Decimal
}

var _ Item = (*Product)(nil)

// New creates a Product. Price must be positive and quantity must not be
// negative.
func New(name, description string, price decimal.Decimal, quantity int, opts ...Option) (*Product, error) {
	base, err := newBase(name, description, price, quantity)
	if err != nil {
		return nil, err
	}
	p := &base
	buildOptions(opts).created(p)
	return p, nil
}

func newBase(name, description string, price decimal.Decimal, quantity int) (Product, error) {
	if err := validate(name, price, quantity); err != nil {
		return Product{}, err
	}
	return Product{
		Name:        name,
		Description: description,
		Quantity:    quantity,
		price:       price,
	}, nil
}

func validate(name string, price decimal.Decimal, quantity int) error {
	if !price.IsPositive() {
		return errors.Wrapf(ErrInvalidPrice, "product %q", name)
	}
	if quantity < 0 {
		return errors.Wrapf(ErrInvalidQuantity, "product %q", name)
	}
	return nil
}

// Kind implements Item.
func (p *Product) Kind() Kind { return KindProduct }

// Base implements Item.
func (p *Product) Base() *Product { return p }

// Price returns the current unit price.
func (p *Product) Price() decimal.Decimal { return p.price }

// StockValue returns price multiplied by the quantity in stock.
func (p *Product) StockValue() decimal.Decimal {
	return p.price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// String renders the product as "<name>, <price> руб. Остаток: <quantity> шт.".
func (p *Product) String() string {
	return fmt.Sprintf("%s, %s руб. Остаток: %d шт.", p.Name, FormatPrice(p.price), p.Quantity)
}

// absorb folds an incoming record into p: quantities accumulate and the
// price only moves up. An invalid record leaves p unchanged.
func (p *Product) absorb(rec Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	p.Quantity += rec.Quantity
	if rec.Price.GreaterThan(p.price) {
		p.price = rec.Price
	}
	return nil
}

// IsProduct reports whether item carries a usable product record.
func IsProduct(item Item) bool {
	if item == nil {
		return false
	}
	return item.Kind().Valid() && item.Base() != nil
}
