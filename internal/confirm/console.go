// Package confirm implements the interactive price-drop confirmation prompt.
package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/retail-catalog/internal/domain/product"
)

// Affirmative is the answer accepted as confirmation, compared
// case-insensitively.
const Affirmative = "y"

var _ product.Confirmer = (*Console)(nil)

// Console asks for confirmation on a line-oriented terminal. Reads block
// until a full line or EOF is available.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole creates a Console reading answers from in and writing prompts
// to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// ConfirmPriceDrop prompts once and reports whether the answer was
// affirmative. EOF and empty answers count as refusal.
func (c *Console) ConfirmPriceDrop(ctx context.Context, name string, from, to decimal.Decimal) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if _, err := fmt.Fprintf(c.out, "Подтвердите понижение цены %q с %s до %s руб. (%s/n): ",
		name, product.FormatPrice(from), product.FormatPrice(to), Affirmative); err != nil {
		return false, errors.Wrap(err, "write prompt")
	}

	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, errors.Wrap(err, "read answer")
	}

	return strings.EqualFold(strings.TrimSpace(line), Affirmative), nil
}
