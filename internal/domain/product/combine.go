package product

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrKindMismatch is matched by KindMismatchError.
var ErrKindMismatch = errors.New("cannot combine products of different kinds")

// KindMismatchError indicates an attempt to combine two different product
// kinds.
type KindMismatchError struct {
	Left  Kind
	Right Kind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("cannot combine %s with %s", e.Left, e.Right)
}

// Is reports whether target is ErrKindMismatch.
func (e *KindMismatchError) Is(target error) bool {
	return target == ErrKindMismatch
}

// Combine returns the total stock value of a and b. Both items must be of
// exactly the same kind; a variant never combines with the base product.
func Combine(a, b Item) (decimal.Decimal, error) {
	if !IsProduct(a) || !IsProduct(b) {
		return decimal.Zero, ErrNotProduct
	}
	if a.Kind() != b.Kind() {
		return decimal.Zero, &KindMismatchError{Left: a.Kind(), Right: b.Kind()}
	}
	return a.Base().StockValue().Add(b.Base().StockValue()), nil
}
