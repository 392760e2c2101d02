package app

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/retail-catalog/internal/catalog"
	"github.com/xenking/retail-catalog/internal/confirm"
	"github.com/xenking/retail-catalog/internal/domain/category"
	"github.com/xenking/retail-catalog/internal/domain/order"
	"github.com/xenking/retail-catalog/internal/domain/product"
	"github.com/xenking/retail-catalog/internal/repository"
)

const instrumentationName = "github.com/xenking/retail-catalog"

// Run loads the catalog, applies the configured price changes and orders,
// reports the result and optionally exports it. It is the single wiring
// point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	reg, err := category.NewInstrumentedRegistry(m.MeterProvider().Meter(instrumentationName))
	if err != nil {
		return errors.Wrap(err, "create registry")
	}

	s := &session{
		lg:     lg,
		tracer: m.TracerProvider().Tracer(instrumentationName),
		reg:    reg,
		prices: product.NewPriceService(confirm.NewConsole(os.Stdin, os.Stdout), os.Stdout, lg),
	}

	cats, err := s.load(ctx, cfg)
	if err != nil {
		return err
	}
	if err := s.reprice(ctx, cats, cfg.Reprice); err != nil {
		return err
	}
	if err := s.placeOrders(cats, cfg.Orders); err != nil {
		return err
	}
	s.report(cats)

	if cfg.DatabaseURL == "" {
		return nil
	}
	return s.export(ctx, cfg, cats)
}

type session struct {
	lg     *zap.Logger
	tracer trace.Tracer
	reg    *category.Registry
	prices *product.PriceService
}

func (s *session) load(ctx context.Context, cfg *Config) ([]*category.Category, error) {
	ctx, span := s.tracer.Start(ctx, "LoadCatalog")
	defer span.End()

	opts := []catalog.Option{
		catalog.WithMerge(cfg.Merge),
		catalog.WithProductOptions(product.WithHook(product.LogCreated(s.lg.Named("product")))),
	}

	var (
		cats []*category.Category
		err  error
	)
	if len(cfg.CatalogFiles) == 0 {
		s.lg.Info("Loading bundled catalog")
		cats, err = catalog.LoadBundled(ctx, s.reg, opts...)
	} else {
		s.lg.Info("Loading catalog", zap.Strings("files", cfg.CatalogFiles))
		cats, err = catalog.LoadFiles(ctx, cfg.CatalogFiles, s.reg, opts...)
	}
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "load catalog")
	}

	span.SetAttributes(
		attribute.Int64("catalog.categories", s.reg.Categories()),
		attribute.Int64("catalog.products", s.reg.Products()),
	)
	s.lg.Info("Catalog loaded",
		zap.Int64("categories", s.reg.Categories()),
		zap.Int64("products", s.reg.Products()),
	)
	return cats, nil
}

func (s *session) reprice(ctx context.Context, cats []*category.Category, changes []string) error {
	for _, change := range changes {
		name, value, err := parseAssignment(change)
		if err != nil {
			return err
		}
		price, err := decimal.NewFromString(value)
		if err != nil {
			return errors.Wrapf(err, "parse price %q", value)
		}

		item := findProduct(cats, name)
		if item == nil {
			s.lg.Warn("Product not found", zap.String("name", name))
			continue
		}
		if _, err := s.prices.SetPrice(ctx, item, price); err != nil {
			return errors.Wrapf(err, "set price of %q", name)
		}
	}
	return nil
}

func (s *session) placeOrders(cats []*category.Category, requests []string) error {
	for _, req := range requests {
		name, value, err := parseAssignment(req)
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(err, "parse quantity %q", value)
		}

		item := findProduct(cats, name)
		if item == nil {
			s.lg.Warn("Product not found", zap.String("name", name))
			continue
		}

		o, err := order.New(item, qty)
		if err != nil {
			s.lg.Warn("Order rejected", zap.String("name", name), zap.Int("quantity", qty), zap.Error(err))
			continue
		}
		s.lg.Info("Order accepted", zap.String("id", o.ID), zap.Stringer("order", o))
	}
	return nil
}

func (s *session) report(cats []*category.Category) {
	for _, c := range cats {
		s.lg.Info("Category", zap.Stringer("summary", c), zap.Int("products", c.Len()))

		r := category.NewReader(c)
		for item := range r.All() {
			s.lg.Info("Product", zap.Stringer("line", item), zap.Stringer("kind", item.Kind()))
		}
	}
}

func (s *session) export(ctx context.Context, cfg *Config, cats []*category.Category) error {
	ctx, span := s.tracer.Start(ctx, "ExportCatalog",
		trace.WithAttributes(attribute.Bool("catalog.replace", cfg.Export.Replace)),
	)
	defer span.End()

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := repository.NewCatalogRepository(pool).Save(ctx, cats, cfg.Export.Replace); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "save catalog")
	}

	s.lg.Info("Catalog exported", zap.Int("categories", len(cats)), zap.Bool("replace", cfg.Export.Replace))
	return nil
}

// parseAssignment splits "name=value" at the last '='.
func parseAssignment(s string) (name, value string, err error) {
	i := strings.LastIndexByte(s, '=')
	if i <= 0 || i == len(s)-1 {
		return "", "", errors.Errorf("invalid assignment %q: want name=value", s)
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:]), nil
}

// findProduct returns the first product named name across cats.
func findProduct(cats []*category.Category, name string) product.Item {
	for _, c := range cats {
		r := category.NewReader(c)
		for {
			item, ok := r.Next()
			if !ok {
				break
			}
			if item.Base().Name == name {
				return item
			}
		}
	}
	return nil
}
