// Package catalog reads catalog files into categories and products.
//
// A catalog file is a JSON array of categories:
//
//	[{"name": "...", "description": "...", "products": [
//	    {"name": "...", "description": "...", "price": 180000.0, "quantity": 5}
//	]}]
//
// Products may carry an optional "kind" ("product", "smartphone",
// "lawn_grass") with the matching variant attributes.
package catalog

import (
	"fmt"

	"github.com/go-faster/errors"

	"github.com/xenking/retail-catalog/internal/domain/product"
)

// ErrMalformed is matched by every decoding error.
var ErrMalformed = errors.New("malformed catalog")

// MissingFieldError reports a required field absent from a record.
type MissingFieldError struct {
	Path  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", e.Path, e.Field)
}

// Is reports whether target is ErrMalformed.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMalformed
}

// FieldError reports a field whose value could not be decoded.
type FieldError struct {
	Path string
	Err  error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Is reports whether target is ErrMalformed.
func (e *FieldError) Is(target error) bool {
	return target == ErrMalformed
}

// CategoryRecord is a decoded category entry.
type CategoryRecord struct {
	Name        string
	Description string
	Products    []ProductRecord
}

// ProductRecord is a decoded product entry. Only the attributes matching
// Kind are meaningful.
type ProductRecord struct {
	product.Record
	Kind       product.Kind
	Smartphone product.SmartphoneAttrs
	LawnGrass  product.LawnGrassAttrs
}

// Build constructs the product described by r.
func (r ProductRecord) Build(opts ...product.Option) (product.Item, error) {
	switch r.Kind {
	case product.KindSmartphone:
		s, err := product.NewSmartphone(r.Name, r.Description, r.Price, r.Quantity, r.Smartphone, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case product.KindLawnGrass:
		g, err := product.NewLawnGrass(r.Name, r.Description, r.Price, r.Quantity, r.LawnGrass, opts...)
		if err != nil {
			return nil, err
		}
		return g, nil
	case product.KindProduct:
		p, err := product.New(r.Name, r.Description, r.Price, r.Quantity, opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, errors.Wrapf(product.ErrUnknownKind, "product %q", r.Name)
	}
}
