package product

import (
	"strings"

	"github.com/go-faster/errors"
)

// ErrUnknownKind is returned by ParseKind for unrecognised kind names.
var ErrUnknownKind = errors.New("unknown product kind")

// Kind tags the concrete product type. Two items can only be combined when
// their kinds are equal.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindProduct
	KindSmartphone
	KindLawnGrass
)

var kindNames = map[Kind]string{
	KindProduct:    "product",
	KindSmartphone: "smartphone",
	KindLawnGrass:  "lawn_grass",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether k names a known product kind.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind resolves a kind name. An empty name means KindProduct.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return KindProduct, nil
	}
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindUnknown, errors.Wrapf(ErrUnknownKind, "%q", s)
}
