package catalog

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/retail-catalog/internal/domain/category"
	"github.com/xenking/retail-catalog/internal/domain/product"
)

const sampleCatalog = `[
  {
    "name": "Смартфоны",
    "description": "Телефоны",
    "products": [
      {"name": "Samsung Galaxy S23 Ultra", "description": "256GB", "price": 180000.0, "quantity": 5},
      {"name": "Iphone 15", "description": "512GB, Gray space", "price": 210000.0, "quantity": 8, "kind": "smartphone",
       "efficiency": 98.2, "model": "15", "memory": 512, "color": "Gray space", "extra": {"ignored": [1, 2]}},
      {"name": "Xiaomi Redmi Note 11", "description": "1024GB, Синий", "price": "31000.0", "quantity": 14}
    ]
  },
  {
    "name": "Газоны",
    "description": "Трава",
    "products": [
      {"name": "Газон", "description": "Для дачи", "price": 500.5, "quantity": 20, "kind": "lawn_grass",
       "country": "Россия", "germination_period": "7 дней", "color": "Зеленый"}
    ]
  },
  {"name": "Пусто", "description": "Без товаров"}
]`

func TestDecode(t *testing.T) {
	records, err := Decode(context.Background(), strings.NewReader(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, records, 3)

	phones := records[0]
	assert.Equal(t, "Смартфоны", phones.Name)
	require.Len(t, phones.Products, 3)

	iphone := phones.Products[1]
	assert.Equal(t, product.KindSmartphone, iphone.Kind)
	assert.Equal(t, "15", iphone.Smartphone.Model)
	assert.Equal(t, 512, iphone.Smartphone.Memory)
	assert.Equal(t, "Gray space", iphone.Smartphone.Color)
	assert.True(t, decimal.RequireFromString("98.2").Equal(iphone.Smartphone.Efficiency))

	assert.Equal(t, product.KindProduct, phones.Products[2].Kind)
	assert.True(t, decimal.NewFromInt(31000).Equal(phones.Products[2].Price))

	grass := records[1].Products[0]
	assert.Equal(t, product.KindLawnGrass, grass.Kind)
	assert.Equal(t, "Россия", grass.LawnGrass.Country)
	assert.Equal(t, "7 дней", grass.LawnGrass.GerminationPeriod)

	assert.Empty(t, records[2].Products)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantField string
		wantPath  string
	}{
		{
			name:      "category without name",
			input:     `[{"description": "d", "products": []}]`,
			wantField: "name",
			wantPath:  "[0]",
		},
		{
			name:      "category without description",
			input:     `[{"name": "c"}]`,
			wantField: "description",
			wantPath:  "[0]",
		},
		{
			name:      "product without price",
			input:     `[{"name": "c", "description": "d", "products": [{"name": "p", "description": "d", "quantity": 1}]}]`,
			wantField: "price",
			wantPath:  "[0].products[0]",
		},
		{
			name: "second product without quantity",
			input: `[{"name": "a", "description": "d"}, {"name": "c", "description": "d", "products": [
				{"name": "p", "description": "d", "price": 1, "quantity": 1},
				{"name": "q", "description": "d", "price": 1}]}]`,
			wantField: "quantity",
			wantPath:  "[1].products[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(context.Background(), strings.NewReader(tt.input))
			require.ErrorIs(t, err, ErrMalformed)

			var mfErr *MissingFieldError
			require.ErrorAs(t, err, &mfErr)
			assert.Equal(t, tt.wantField, mfErr.Field)
			assert.Equal(t, tt.wantPath, mfErr.Path)
		})
	}
}

func TestDecode_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "not an array", input: `{"name": "c"}`, wantErr: ErrMalformed},
		{name: "syntax error", input: `[{"name": "c",`, wantErr: ErrMalformed},
		{name: "price is not a number", input: `[{"name": "c", "description": "d", "products": [{"name": "p", "description": "d", "price": true, "quantity": 1}]}]`, wantErr: ErrMalformed},
		{name: "unknown kind", input: `[{"name": "c", "description": "d", "products": [{"name": "p", "description": "d", "price": 1, "quantity": 1, "kind": "tractor"}]}]`, wantErr: product.ErrUnknownKind},
		{name: "name is not a string", input: `[{"name": 1, "description": "d"}]`, wantErr: ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(context.Background(), strings.NewReader(tt.input))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecode_ReadErrorKeepsCause(t *testing.T) {
	errRead := errors.New("disk failure")
	r := io.MultiReader(strings.NewReader(`[{"name": "c", `), iotest.ErrReader(errRead))

	_, err := Decode(context.Background(), r)
	require.ErrorIs(t, err, ErrMalformed)
	require.ErrorIs(t, err, errRead)

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
}

func TestDecode_Quantity(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int
		wantErr bool
	}{
		{name: "integer", value: `5`, want: 5},
		{name: "integral float", value: `5.0`, want: 5},
		{name: "exponent", value: `1e2`, want: 100},
		{name: "string", value: `"7"`, want: 7},
		{name: "fraction", value: `5.5`, wantErr: true},
		{name: "overflow", value: `1e30`, wantErr: true},
		{name: "bool", value: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := `[{"name": "c", "description": "d", "products": [
				{"name": "p", "description": "d", "price": 1, "quantity": ` + tt.value + `}]}]`

			records, err := Decode(context.Background(), strings.NewReader(input))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformed)
				var fieldErr *FieldError
				require.ErrorAs(t, err, &fieldErr)
				assert.Equal(t, "[0].products[0].quantity", fieldErr.Path)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, records[0].Products[0].Quantity)
		})
	}
}

func TestDecode_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Decode(ctx, strings.NewReader(sampleCatalog))
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoad(t *testing.T) {
	reg := category.NewRegistry()
	cats, err := Load(context.Background(), strings.NewReader(sampleCatalog), reg)
	require.NoError(t, err)
	require.Len(t, cats, 3)

	assert.EqualValues(t, 3, reg.Categories())
	assert.EqualValues(t, 4, reg.Products())

	phones := cats[0]
	assert.Equal(t, "Смартфоны, количество продуктов: 27 шт.", phones.String())
	assert.Equal(t, "Samsung Galaxy S23 Ultra, 180000.0 руб. Остаток: 5 шт.\n"+
		"Iphone 15, 210000.0 руб. Остаток: 8 шт.\n"+
		"Xiaomi Redmi Note 11, 31000.0 руб. Остаток: 14 шт.", phones.RenderProducts())

	iphone, ok := phones.Products()[1].(*product.Smartphone)
	require.True(t, ok)
	assert.Equal(t, "15", iphone.Model)

	grass, ok := cats[1].Products()[0].(*product.LawnGrass)
	require.True(t, ok)
	assert.Equal(t, "Зеленый", grass.Color)
	assert.Equal(t, "Газон, 500.5 руб. Остаток: 20 шт.", grass.String())
}

func TestLoad_InvalidPrice(t *testing.T) {
	reg := category.NewRegistry()
	_, err := Load(context.Background(), strings.NewReader(
		`[{"name": "c", "description": "d", "products": [{"name": "p", "description": "d", "price": -1, "quantity": 1}]}]`,
	), reg)
	require.ErrorIs(t, err, product.ErrInvalidPrice)
	assert.Zero(t, reg.Categories())
}

func TestLoad_Merge(t *testing.T) {
	input := `[{"name": "c", "description": "d", "products": [
		{"name": "A", "description": "first", "price": 10, "quantity": 1},
		{"name": "P", "description": "phone", "price": 100, "quantity": 1, "kind": "smartphone", "model": "X"},
		{"name": "A", "description": "second", "price": 12, "quantity": 2},
		{"name": "P", "description": "phone", "price": 90, "quantity": 3, "kind": "smartphone"},
		{"name": "B", "description": "other", "price": 5, "quantity": 1}
	]}]`

	var created int
	hook := product.WithHook(func(product.Item) { created++ })

	reg := category.NewRegistry()
	cats, err := Load(context.Background(), strings.NewReader(input), reg,
		WithMerge(true), WithProductOptions(hook))
	require.NoError(t, err)
	require.Len(t, cats, 1)

	items := cats[0].Products()
	require.Len(t, items, 3)
	assert.Equal(t, "A, 12.0 руб. Остаток: 3 шт.", items[0].String())
	assert.Equal(t, "first", items[0].Base().Description)
	assert.Equal(t, product.KindSmartphone, items[1].Kind())
	assert.Equal(t, "P, 100.0 руб. Остаток: 4 шт.", items[1].String())
	assert.Equal(t, "B, 5.0 руб. Остаток: 1 шт.", items[2].String())

	assert.Equal(t, 3, created)
	assert.EqualValues(t, 3, reg.Products())

	// Without merging duplicates are kept as separate products.
	cats, err = Load(context.Background(), strings.NewReader(input), category.NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, 5, cats[0].Len())
}

func TestLoad_MergeInvalidDuplicate(t *testing.T) {
	tests := []struct {
		name    string
		dup     string
		wantErr error
	}{
		{
			name:    "negative quantity",
			dup:     `{"name": "A", "description": "d", "price": 10, "quantity": -5}`,
			wantErr: product.ErrInvalidQuantity,
		},
		{
			name:    "zero price",
			dup:     `{"name": "A", "description": "d", "price": 0, "quantity": 1}`,
			wantErr: product.ErrInvalidPrice,
		},
		{
			name:    "variant negative quantity",
			dup:     `{"name": "P", "description": "d", "price": 10, "quantity": -1, "kind": "smartphone"}`,
			wantErr: product.ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := `[{"name": "c", "description": "d", "products": [
				{"name": "A", "description": "d", "price": 10, "quantity": 1},
				{"name": "P", "description": "d", "price": 10, "quantity": 1, "kind": "smartphone"},
				` + tt.dup + `
			]}]`

			for _, merge := range []bool{true, false} {
				reg := category.NewRegistry()
				_, err := Load(context.Background(), strings.NewReader(input), reg, WithMerge(merge))
				require.ErrorIs(t, err, tt.wantErr, "merge=%v", merge)
				assert.Zero(t, reg.Categories())
			}
		})
	}
}

func TestLoadBundled(t *testing.T) {
	reg := category.NewRegistry()
	cats, err := LoadBundled(context.Background(), reg)
	require.NoError(t, err)
	require.Len(t, cats, 2)

	assert.Equal(t, "Смартфоны, количество продуктов: 27 шт.", cats[0].String())
	assert.Equal(t, `55" QLED 4K, 123000.0 руб. Остаток: 7 шт.`, cats[1].RenderProducts())
	assert.EqualValues(t, 2, reg.Categories())
	assert.EqualValues(t, 4, reg.Products())
}

func writeGzip(t *testing.T, path string, data []byte) {
	t.Helper()
	var buf bytes.Buffer
	gz := pgzip.NewWriter(&buf)
	_, err := gz.Write(data)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "catalog.json")
	gzipped := filepath.Join(dir, "catalog.json.gz")
	require.NoError(t, os.WriteFile(plain, []byte(sampleCatalog), 0o600))
	writeGzip(t, gzipped, []byte(sampleCatalog))

	for _, path := range []string{plain, gzipped} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			reg := category.NewRegistry()
			cats, err := LoadFile(context.Background(), path, reg)
			require.NoError(t, err)
			require.Len(t, cats, 3)
			assert.Equal(t, "Смартфоны, количество продуктов: 27 шт.", cats[0].String())
		})
	}

	_, err := LoadFile(context.Background(), filepath.Join(dir, "missing.json"), category.NewRegistry())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.json.gz")
	second := filepath.Join(dir, "b.json")
	writeGzip(t, first, Bundled)
	require.NoError(t, os.WriteFile(second, []byte(sampleCatalog), 0o600))

	reg := category.NewRegistry()
	cats, err := LoadFiles(context.Background(), []string{first, second}, reg)
	require.NoError(t, err)
	require.Len(t, cats, 5)

	var names []string
	for _, c := range cats {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Смартфоны", "Телевизоры", "Смартфоны", "Газоны", "Пусто"}, names)
	assert.EqualValues(t, 5, reg.Categories())
	assert.EqualValues(t, 8, reg.Products())

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"name": "x"}]`), 0o600))
	reg = category.NewRegistry()
	_, err = LoadFiles(context.Background(), []string{second, bad}, reg)
	require.ErrorIs(t, err, ErrMalformed)
	assert.Zero(t, reg.Categories())
}
