package product

import "github.com/shopspring/decimal"

// SmartphoneAttrs holds the descriptive fields specific to smartphones.
type SmartphoneAttrs struct {
	Efficiency decimal.Decimal
	Model      string
	Memory     int
	Color      string
}

// Smartphone is a product variant carrying SmartphoneAttrs.
type Smartphone struct {
	Product
	SmartphoneAttrs
}

var _ Item = (*Smartphone)(nil)

// NewSmartphone creates a Smartphone with the same validation as New.
func NewSmartphone(
	name, description string,
	price decimal.Decimal,
	quantity int,
	attrs SmartphoneAttrs,
	opts ...Option,
) (*Smartphone, error) {
	base, err := newBase(name, description, price, quantity)
	if err != nil {
		return nil, err
	}
	s := &Smartphone{Product: base, SmartphoneAttrs: attrs}
	buildOptions(opts).created(s)
	return s, nil
}

// Kind implements Item.
func (s *Smartphone) Kind() Kind { return KindSmartphone }

// Base implements Item.
func (s *Smartphone) Base() *Product {
	if s == nil {
		return nil
	}
	return &s.Product
}

// LawnGrassAttrs holds the descriptive fields specific to lawn grass.
type LawnGrassAttrs struct {
	Country           string
	GerminationPeriod string
	Color             string
}

// LawnGrass is a product variant carrying LawnGrassAttrs.
type LawnGrass struct {
	Product
	LawnGrassAttrs
}

var _ Item = (*LawnGrass)(nil)

// NewLawnGrass creates a LawnGrass with the same validation as New.
func NewLawnGrass(
	name, description string,
	price decimal.Decimal,
	quantity int,
	attrs LawnGrassAttrs,
	opts ...Option,
) (*LawnGrass, error) {
	base, err := newBase(name, description, price, quantity)
	if err != nil {
		return nil, err
	}
	g := &LawnGrass{Product: base, LawnGrassAttrs: attrs}
	buildOptions(opts).created(g)
	return g, nil
}

// Kind implements Item.
func (g *LawnGrass) Kind() Kind { return KindLawnGrass }

// Base implements Item.
func (g *LawnGrass) Base() *Product {
	if g == nil {
		return nil
	}
	return &g.Product
}
