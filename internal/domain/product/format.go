package product

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatPrice renders d in its shortest form, keeping one fractional digit
// for integral amounts: 210000 -> "210000.0", 999.99 -> "999.99".
func FormatPrice(d decimal.Decimal) string {
	s := d.String()
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
