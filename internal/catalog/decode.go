package catalog

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/retail-catalog/internal/domain/product"
)

const readBufSize = 32 * 1024

// Decode reads a catalog document from r.
func Decode(ctx context.Context, r io.Reader) ([]CategoryRecord, error) {
	return decode(ctx, jx.Decode(r, readBufSize))
}

// DecodeBytes decodes a catalog document held in memory.
func DecodeBytes(ctx context.Context, data []byte) ([]CategoryRecord, error) {
	return decode(ctx, jx.DecodeBytes(data))
}

func decode(ctx context.Context, d *jx.Decoder) ([]CategoryRecord, error) {
	if t := d.Next(); t != jx.Array {
		return nil, errors.Wrapf(ErrMalformed, "expected array of categories, got %s", t)
	}

	var out []CategoryRecord
	if err := d.Arr(func(d *jx.Decoder) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, err := decodeCategory(d, fmt.Sprintf("[%d]", len(out)))
		if err != nil {
			return err
		}
		out = append(out, c)
		return nil
	}); err != nil {
		if errors.Is(err, ErrMalformed) || ctx.Err() != nil {
			return nil, err
		}
		return nil, &FieldError{Path: "$", Err: err}
	}

	return out, nil
}

func decodeCategory(d *jx.Decoder, path string) (CategoryRecord, error) {
	var (
		c                       CategoryRecord
		hasName, hasDescription bool
	)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			c.Name, err = d.Str()
			hasName = true
		case "description":
			c.Description, err = d.Str()
			hasDescription = true
		case "products":
			if d.Next() == jx.Null {
				return d.Null()
			}
			err = d.Arr(func(d *jx.Decoder) error {
				p, err := decodeProduct(d, fmt.Sprintf("%s.products[%d]", path, len(c.Products)))
				if err != nil {
					return err
				}
				c.Products = append(c.Products, p)
				return nil
			})
		default:
			err = d.Skip()
		}
		if err != nil && !errors.Is(err, ErrMalformed) {
			return &FieldError{Path: path + "." + key, Err: err}
		}
		return err
	}); err != nil {
		return c, err
	}

	switch {
	case !hasName:
		return c, &MissingFieldError{Path: path, Field: "name"}
	case !hasDescription:
		return c, &MissingFieldError{Path: path, Field: "description"}
	}
	return c, nil
}

func decodeProduct(d *jx.Decoder, path string) (ProductRecord, error) {
	p := ProductRecord{Kind: product.KindProduct}
	seen := make(map[string]bool, 4)

	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		seen[key] = true
		switch key {
		case "name":
			p.Name, err = d.Str()
		case "description":
			p.Description, err = d.Str()
		case "price":
			p.Price, err = decodeDecimal(d)
		case "quantity":
			p.Quantity, err = decodeInt(d)
		default:
			err = decodeAttr(d, key, &p)
		}
		if err != nil {
			return &FieldError{Path: path + "." + key, Err: err}
		}
		return nil
	}); err != nil {
		return p, err
	}

	for _, field := range []string{"name", "description", "price", "quantity"} {
		if !seen[field] {
			return p, &MissingFieldError{Path: path, Field: field}
		}
	}
	return p, nil
}

// decodeDecimal accepts both JSON numbers and numeric strings.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	case jx.Number:
		raw, err := d.Raw()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(string(raw))
	default:
		return decimal.Zero, errors.Errorf("expected number, got %s", d.Next())
	}
}

// decodeInt accepts integral numbers in any JSON notation, so 5, 5.0 and
// "5" all decode to 5.
func decodeInt(d *jx.Decoder) (int, error) {
	v, err := decodeDecimal(d)
	if err != nil {
		return 0, err
	}
	if !v.IsInteger() {
		return 0, errors.Errorf("expected integer, got %s", v)
	}
	if v.GreaterThan(maxInt) || v.LessThan(minInt) {
		return 0, errors.Errorf("integer %s out of range", v)
	}
	return int(v.IntPart()), nil
}

var (
	maxInt = decimal.NewFromInt(math.MaxInt)
	minInt = decimal.NewFromInt(math.MinInt)
)
