package product

import (
	"github.com/bits-and-blooms/bloom/v3"
	"github.com/shopspring/decimal"
)

// Record is a raw product entry as read from a catalog source.
type Record struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
}

// Validate applies the construction rules to rec: the price must be
// positive and the quantity must not be negative.
func (rec Record) Validate() error {
	return validate(rec.Name, rec.Price, rec.Quantity)
}

// MergeOrCreate folds rec into the first item in existing with the same
// name, or creates a new Product when there is none. On merge quantities
// accumulate and the price is raised only if rec.Price is strictly greater;
// the confirmation gate does not apply. Records that would fail
// construction are rejected before anything is mutated. The flag reports
// whether a new product was created.
func MergeOrCreate(rec Record, existing []Item, opts ...Option) (Item, bool, error) {
	if item := findByName(existing, rec.Name); item != nil {
		if err := item.Base().absorb(rec); err != nil {
			return nil, false, err
		}
		return item, false, nil
	}
	p, err := New(rec.Name, rec.Description, rec.Price, rec.Quantity, opts...)
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

func findByName(items []Item, name string) Item {
	for _, item := range items {
		if !IsProduct(item) {
			continue
		}
		if item.Base().Name == name {
			return item
		}
	}
	return nil
}

const (
	indexMinCapacity = 64
	indexFPR         = 0.01
)

// Index is an ordered collection of items with merge-or-create insertion.
// A bloom filter over names lets definitely-new names skip the scan.
type Index struct {
	items []Item
	names *bloom.BloomFilter
	opts  []Option
}

// NewIndex creates an Index sized for about capacity distinct names. opts
// apply to products created by MergeOrCreate.
func NewIndex(capacity int, opts ...Option) *Index {
	return &Index{
		names: bloom.NewWithEstimates(uint(max(capacity, indexMinCapacity)), indexFPR),
		opts:  opts,
	}
}

// Add appends item without merging. Invalid items are ignored.
func (x *Index) Add(item Item) {
	if !IsProduct(item) {
		return
	}
	x.items = append(x.items, item)
	x.names.AddString(item.Base().Name)
}

// MergeOrCreate behaves like the package-level MergeOrCreate over the
// indexed items and appends newly created products.
func (x *Index) MergeOrCreate(rec Record) (Item, bool, error) {
	item, ok, err := x.Merge(rec)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return item, false, nil
	}
	p, err := New(rec.Name, rec.Description, rec.Price, rec.Quantity, x.opts...)
	if err != nil {
		return nil, false, err
	}
	x.Add(p)
	return p, true, nil
}

// Merge folds rec into the indexed item with the same name, if any. An
// invalid rec is rejected even when no item matches.
func (x *Index) Merge(rec Record) (Item, bool, error) {
	if err := rec.Validate(); err != nil {
		return nil, false, err
	}
	if !x.names.TestString(rec.Name) {
		return nil, false, nil
	}
	item := findByName(x.items, rec.Name)
	if item == nil {
		return nil, false, nil
	}
	if err := item.Base().absorb(rec); err != nil {
		return nil, false, err
	}
	return item, true, nil
}

// Items returns the indexed items in insertion order.
func (x *Index) Items() []Item {
	return x.items
}

// Len returns the number of indexed items.
func (x *Index) Len() int {
	return len(x.items)
}
