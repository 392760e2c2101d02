package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/retail-catalog/internal/catalog"
	"github.com/xenking/retail-catalog/internal/domain/category"
	"github.com/xenking/retail-catalog/internal/domain/product"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const truncateCatalogSQL = `TRUNCATE categories, products RESTART IDENTITY`

// CatalogRepository stores loaded catalogs in PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// Save writes categories and their products in order within a single
// transaction. With replace set, previously stored rows are removed first;
// otherwise the categories are appended after the stored ones.
func (r *CatalogRepository) Save(ctx context.Context, cats []*category.Category, replace bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var next int
	if replace {
		if _, err := tx.Exec(ctx, truncateCatalogSQL); err != nil {
			return fmt.Errorf("truncating catalog: %w", err)
		}
	} else if next, err = nextPosition(ctx, tx); err != nil {
		return err
	}

	for i, c := range cats {
		if err := saveCategory(ctx, tx, next+i, c); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing catalog: %w", err)
	}
	return nil
}

// nextPosition returns the position following the last stored category.
func nextPosition(ctx context.Context, tx pgx.Tx) (int, error) {
	query, args, err := psql.
		Select("COALESCE(MAX(position) + 1, 0)").
		From("categories").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building position select: %w", err)
	}

	var next int
	if err := tx.QueryRow(ctx, query, args...).Scan(&next); err != nil {
		return 0, fmt.Errorf("selecting next position: %w", err)
	}
	return next, nil
}

func saveCategory(ctx context.Context, tx pgx.Tx, position int, c *category.Category) error {
	query, args, err := psql.
		Insert("categories").
		Columns("name", "description", "position").
		Values(c.Name, c.Description, position).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("building category insert: %w", err)
	}

	var id int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return fmt.Errorf("inserting category %q: %w", c.Name, err)
	}

	items := c.Products()
	if len(items) == 0 {
		return nil
	}

	insert := psql.
		Insert("products").
		Columns("category_id", "position", "kind", "name", "description", "price", "quantity", "attrs")
	for i, item := range items {
		b := item.Base()
		insert = insert.Values(
			id, i, item.Kind().String(),
			b.Name, b.Description, b.Price(), b.Quantity,
			string(catalog.EncodeAttrs(item)),
		)
	}

	query, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("building product insert: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting products of %q: %w", c.Name, err)
	}
	return nil
}

// Records returns the stored catalog in saved order.
func (r *CatalogRepository) Records(ctx context.Context) ([]catalog.CategoryRecord, error) {
	query, args, err := psql.
		Select("id", "name", "description").
		From("categories").
		OrderBy("position", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building category select: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	type categoryRow struct {
		id  int64
		rec catalog.CategoryRecord
	}
	cats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (categoryRow, error) {
		var c categoryRow
		err := row.Scan(&c.id, &c.rec.Name, &c.rec.Description)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning categories: %w", err)
	}

	byID := make(map[int64]int, len(cats))
	for i, c := range cats {
		byID[c.id] = i
	}

	query, args, err = psql.
		Select("category_id", "kind", "name", "description", "price", "quantity", "attrs").
		From("products").
		OrderBy("category_id", "position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building product select: %w", err)
	}

	rows, err = r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			categoryID int64
			kind       string
			price      decimal.Decimal
			attrs      []byte
			p          catalog.ProductRecord
		)
		if err := rows.Scan(&categoryID, &kind, &p.Name, &p.Description, &price, &p.Quantity, &attrs); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		p.Price = price
		if p.Kind, err = product.ParseKind(kind); err != nil {
			return nil, fmt.Errorf("product %q: %w", p.Name, err)
		}
		if err := catalog.DecodeAttrs(attrs, &p); err != nil {
			return nil, fmt.Errorf("product %q: %w", p.Name, err)
		}

		i, ok := byID[categoryID]
		if !ok {
			continue
		}
		cats[i].rec.Products = append(cats[i].rec.Products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	out := make([]catalog.CategoryRecord, len(cats))
	for i, c := range cats {
		out[i] = c.rec
	}
	return out, nil
}

// Load rebuilds the stored catalog as categories owned by reg.
func (r *CatalogRepository) Load(ctx context.Context, reg *category.Registry, opts ...catalog.Option) ([]*category.Category, error) {
	records, err := r.Records(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Build(records, reg, opts...)
}
