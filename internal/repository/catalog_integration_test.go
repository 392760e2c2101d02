//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/retail-catalog/internal/catalog"
	"github.com/xenking/retail-catalog/internal/domain/category"
	"github.com/xenking/retail-catalog/internal/domain/product"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "catalog",
				"POSTGRES_PASSWORD": "catalog",
				"POSTGRES_DB":       "catalog",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	url := fmt.Sprintf("postgres://catalog:catalog@%s:%s/catalog?sslmode=disable", host, port.Port())
	pool, err := NewPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, RunMigrations(ctx, pool))
	return pool
}

func TestCatalogRepository_SaveLoad(t *testing.T) {
	pool := startPostgres(t)
	repo := NewCatalogRepository(pool)
	ctx := context.Background()

	cats, err := catalog.LoadBundled(ctx, category.NewRegistry())
	require.NoError(t, err)

	phone, err := product.NewSmartphone("Pixel 8", "128GB", decimal.RequireFromString("79999.99"), 3, product.SmartphoneAttrs{
		Efficiency: decimal.RequireFromString("95.5"),
		Model:      "8",
		Memory:     128,
		Color:      "Obsidian",
	})
	require.NoError(t, err)
	require.NoError(t, cats[0].AddProduct(phone))

	require.NoError(t, repo.Save(ctx, cats, true))

	reg := category.NewRegistry()
	loaded, err := repo.Load(ctx, reg)
	require.NoError(t, err)
	require.Len(t, loaded, len(cats))

	for i := range cats {
		assert.Equal(t, cats[i].Name, loaded[i].Name)
		assert.Equal(t, cats[i].String(), loaded[i].String())
		assert.Equal(t, cats[i].RenderProducts(), loaded[i].RenderProducts())
	}
	assert.EqualValues(t, 2, reg.Categories())
	assert.EqualValues(t, 5, reg.Products())

	got, ok := loaded[0].Products()[3].(*product.Smartphone)
	require.True(t, ok)
	assert.Equal(t, phone.SmartphoneAttrs.Model, got.Model)
	assert.Equal(t, 128, got.Memory)
	assert.True(t, phone.Efficiency.Equal(got.Efficiency))

	// Saving again with replace keeps a single copy.
	require.NoError(t, repo.Save(ctx, cats, true))
	records, err := repo.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	// Appending keeps earlier rows.
	require.NoError(t, repo.Save(ctx, cats[:1], false))
	records, err = repo.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)

	var names []string
	for _, rec := range records {
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{"Смартфоны", "Телевизоры", "Смартфоны"}, names)
	assert.Len(t, records[2].Products, 4)
}
