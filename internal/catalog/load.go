package catalog

import (
	"context"
	_ "embed"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	pgzip "github.com/klauspost/pgzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/retail-catalog/internal/domain/category"
	"github.com/xenking/retail-catalog/internal/domain/product"
)

// Bundled is the catalog shipped with the binary.
//
//go:embed data/products.json
var Bundled []byte

// Option configures how decoded records become categories.
type Option func(*options)

type options struct {
	merge       bool
	productOpts []product.Option
}

// WithMerge folds products with the same name inside a category using the
// merge-or-create policy: quantities accumulate, prices only go up.
func WithMerge(merge bool) Option {
	return func(o *options) {
		o.merge = merge
	}
}

// WithProductOptions passes opts to every product constructor.
func WithProductOptions(opts ...product.Option) Option {
	return func(o *options) {
		o.productOpts = append(o.productOpts, opts...)
	}
}

// Build constructs categories from records in order. Construction stops at
// the first invalid product.
func Build(records []CategoryRecord, reg *category.Registry, opts ...Option) ([]*category.Category, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	out := make([]*category.Category, 0, len(records))
	for _, rec := range records {
		items, err := o.buildProducts(rec)
		if err != nil {
			return nil, errors.Wrapf(err, "category %q", rec.Name)
		}
		c, err := reg.NewCategory(rec.Name, rec.Description, items...)
		if err != nil {
			return nil, errors.Wrapf(err, "category %q", rec.Name)
		}
		out = append(out, c)
	}
	return out, nil
}

func (o options) buildProducts(rec CategoryRecord) ([]product.Item, error) {
	if !o.merge {
		items := make([]product.Item, 0, len(rec.Products))
		for _, p := range rec.Products {
			item, err := p.Build(o.productOpts...)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	}

	x := product.NewIndex(len(rec.Products), o.productOpts...)
	for _, p := range rec.Products {
		if p.Kind == product.KindProduct {
			if _, _, err := x.MergeOrCreate(p.Record); err != nil {
				return nil, err
			}
			continue
		}
		_, ok, err := x.Merge(p.Record)
		if err != nil {
			return nil, err
		}
		if ok {
			continue
		}
		item, err := p.Build(o.productOpts...)
		if err != nil {
			return nil, err
		}
		x.Add(item)
	}
	return x.Items(), nil
}

// Load decodes a catalog from r and builds its categories.
func Load(ctx context.Context, r io.Reader, reg *category.Registry, opts ...Option) ([]*category.Category, error) {
	records, err := Decode(ctx, r)
	if err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	return Build(records, reg, opts...)
}

// LoadBundled builds the categories of the Bundled catalog.
func LoadBundled(ctx context.Context, reg *category.Registry, opts ...Option) ([]*category.Category, error) {
	records, err := DecodeBytes(ctx, Bundled)
	if err != nil {
		return nil, errors.Wrap(err, "decode bundled catalog")
	}
	zctx.From(ctx).Debug("Loaded bundled catalog", zap.Int("categories", len(records)))
	return Build(records, reg, opts...)
}

// LoadFile loads a catalog file. Files ending in ".gz" are decompressed.
func LoadFile(ctx context.Context, path string, reg *category.Registry, opts ...Option) ([]*category.Category, error) {
	records, err := decodeFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return Build(records, reg, opts...)
}

// LoadFiles decodes all files concurrently and then builds their categories
// in argument order, so counters and ordering do not depend on scheduling.
func LoadFiles(ctx context.Context, paths []string, reg *category.Registry, opts ...Option) ([]*category.Category, error) {
	decoded := make([][]CategoryRecord, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			records, err := decodeFile(gctx, path)
			if err != nil {
				return err
			}
			decoded[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []CategoryRecord
	for _, records := range decoded {
		all = append(all, records...)
	}
	return Build(all, reg, opts...)
}

func decodeFile(ctx context.Context, path string) ([]CategoryRecord, error) {
	lg := zctx.From(ctx)
	lg.Info("Reading catalog file", zap.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	records, err := Decode(ctx, r)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}

	lg.Info("Catalog file decoded",
		zap.String("path", path),
		zap.Int("categories", len(records)),
	)
	return records, nil
}
