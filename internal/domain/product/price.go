package product

import (
	"context"
	"fmt"
	"io"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Diagnostics written by PriceService.
const (
	MsgInvalidPrice       = "Цена не должна быть нулевая или отрицательная"
	MsgPriceDropCancelled = "Понижение цены отменено"
)

// Outcome classifies a proposed price change.
type Outcome uint8

const (
	// Apply means the change can be applied without further checks.
	Apply Outcome = iota + 1
	// NeedsConfirmation means the change lowers the price and must be
	// confirmed explicitly.
	NeedsConfirmation
	// Rejected means the proposed price is not positive.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Apply:
		return "apply"
	case NeedsConfirmation:
		return "needs_confirmation"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Decision is the result of ProposePrice.
type Decision struct {
	Outcome Outcome
	Old     decimal.Decimal
	New     decimal.Decimal
}

// ProposePrice classifies a change to newPrice without mutating p.
func (p *Product) ProposePrice(newPrice decimal.Decimal) Decision {
	d := Decision{Old: p.price, New: newPrice}
	switch {
	case !newPrice.IsPositive():
		d.Outcome = Rejected
	case newPrice.LessThan(p.price):
		d.Outcome = NeedsConfirmation
	default:
		d.Outcome = Apply
	}
	return d
}

// Confirm applies d when it is Apply, or NeedsConfirmation and ok is true.
// A decision whose Old price no longer matches the current price is
// refused. Confirm reports whether the price was changed.
func (p *Product) Confirm(d Decision, ok bool) bool {
	if !d.Old.Equal(p.price) || !d.New.IsPositive() {
		return false
	}
	switch d.Outcome {
	case Apply:
	case NeedsConfirmation:
		if !ok {
			return false
		}
	default:
		return false
	}
	p.price = d.New
	return true
}

// Confirmer asks whether a price drop on an item should be applied.
// Implementations may block until an answer is available.
type Confirmer interface {
	ConfirmPriceDrop(ctx context.Context, name string, from, to decimal.Decimal) (bool, error)
}

// PriceService sets prices through the confirmation gate, writing
// human-readable diagnostics for rejected changes.
type PriceService struct {
	confirm Confirmer
	out     io.Writer
	lg      *zap.Logger
}

// NewPriceService creates a PriceService. Diagnostics are written to out.
func NewPriceService(confirm Confirmer, out io.Writer, lg *zap.Logger) *PriceService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &PriceService{
		confirm: confirm,
		out:     out,
		lg:      lg,
	}
}

// SetPrice changes the price of item to newPrice. Non-positive prices are
// ignored with a diagnostic and no error; a lower price is applied only
// after the Confirmer agrees. The returned flag reports whether the price
// changed.
func (s *PriceService) SetPrice(ctx context.Context, item Item, newPrice decimal.Decimal) (bool, error) {
	if !IsProduct(item) {
		return false, ErrNotProduct
	}
	p := item.Base()

	d := p.ProposePrice(newPrice)
	switch d.Outcome {
	case Rejected:
		s.diag(MsgInvalidPrice)
		s.lg.Warn("Invalid price ignored",
			zap.String("name", p.Name),
			zap.String("price", newPrice.String()),
		)
		return false, nil
	case NeedsConfirmation:
		if s.confirm == nil {
			s.diag(MsgPriceDropCancelled)
			return false, nil
		}
		ok, err := s.confirm.ConfirmPriceDrop(ctx, p.Name, d.Old, d.New)
		if err != nil {
			return false, errors.Wrap(err, "confirm price drop")
		}
		if !p.Confirm(d, ok) {
			s.diag(MsgPriceDropCancelled)
			s.lg.Info("Price drop cancelled",
				zap.String("name", p.Name),
				zap.String("from", d.Old.String()),
				zap.String("to", d.New.String()),
			)
			return false, nil
		}
	default:
		p.Confirm(d, false)
	}

	s.lg.Debug("Price changed",
		zap.String("name", p.Name),
		zap.String("from", d.Old.String()),
		zap.String("to", d.New.String()),
	)
	return true, nil
}

func (s *PriceService) diag(msg string) {
	if s.out == nil {
		return
	}
	_, _ = fmt.Fprintln(s.out, msg)
}
