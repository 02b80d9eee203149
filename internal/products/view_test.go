package products

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
)

func sizeRow(label string, order, stock, reserved int, price string) models.SizeStock {
	return models.SizeStock{
		ID:            uuid.New(),
		Size:          models.Size{ID: uuid.New(), Label: label, SortOrder: order},
		Stock:         stock,
		ReservedStock: reserved,
		Price:         decimal.RequireFromString(price),
	}
}

func productWith(discount int, variants ...models.ProductColor) models.Product {
	return models.Product{
		ID:                 uuid.New(),
		Name:               "Linen shirt",
		Category:           models.Category{ID: uuid.New(), Name: "Shirts", Slug: "shirts"},
		DiscountPercentage: discount,
		Colors:             variants,
	}
}

func TestDiscountedPrice(t *testing.T) {
	cases := []struct {
		price    string
		discount int
		want     string
	}{
		{"100.00", 0, "100"},
		{"100.00", 15, "85"},
		{"19.99", 33, "13.39"},
		{"250.00", 100, "0"},
	}
	for _, tc := range cases {
		got := DiscountedPrice(decimal.RequireFromString(tc.price), tc.discount)
		assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "price %s discount %d got %s", tc.price, tc.discount, got)
	}
}

func TestBuildProductViewAggregatesStock(t *testing.T) {
	red := models.ProductColor{
		ID:    uuid.New(),
		Color: models.Color{ID: uuid.New(), Name: "Red", Hex: "#FF0000"},
		SizeStocks: []models.SizeStock{
			sizeRow("L", 3, 4, 1, "120.00"),
			sizeRow("S", 1, 2, 0, "100.00"),
		},
	}
	blue := models.ProductColor{
		ID:         uuid.New(),
		Color:      models.Color{ID: uuid.New(), Name: "Blue", Hex: "#0000FF"},
		SizeStocks: []models.SizeStock{sizeRow("M", 2, 3, 5, "140.00")},
	}

	view := BuildProductView(productWith(10, red, blue))

	require.Equal(t, 9, view.TotalStock)
	// Over-reserved rows count as zero, never negative.
	require.Equal(t, 5, view.AvailableStock)
	require.Equal(t, enums.StockStatusLowStock, view.Status)
	require.True(t, view.MinPrice.Equal(decimal.RequireFromString("100")))
	require.True(t, view.MaxPrice.Equal(decimal.RequireFromString("140")))
	require.Equal(t, "shirts", view.Category.Slug)

	require.Len(t, view.Variants, 2)
	sizes := view.Variants[0].Sizes
	require.Equal(t, "S", sizes[0].Size.Label)
	require.Equal(t, "L", sizes[1].Size.Label)
	require.Equal(t, 3, sizes[1].AvailableStock)
	require.True(t, sizes[1].DiscountedPrice.Equal(decimal.RequireFromString("108")))
	require.Zero(t, view.Variants[1].Sizes[0].AvailableStock)
}

func TestBuildProductViewStatusThresholds(t *testing.T) {
	cases := map[int]enums.StockStatus{
		0:  enums.StockStatusOutOfStock,
		1:  enums.StockStatusLowStock,
		19: enums.StockStatusLowStock,
		20: enums.StockStatusInStock,
		75: enums.StockStatusInStock,
	}
	for stock, want := range cases {
		variant := models.ProductColor{SizeStocks: []models.SizeStock{sizeRow("M", 1, stock, 0, "10.00")}}
		view := BuildProductView(productWith(0, variant))
		assert.Equal(t, want, view.Status, "stock %d", stock)
	}
}

func TestBuildProductViewWithoutVariants(t *testing.T) {
	view := BuildProductView(productWith(0))
	require.Equal(t, enums.StockStatusOutOfStock, view.Status)
	require.Nil(t, view.MinPrice)
	require.NotNil(t, view.Variants)
	require.Empty(t, view.Variants)
}

func TestBuildProductViewOrdersImagesPrimaryFirst(t *testing.T) {
	variant := models.ProductColor{
		Images: []models.ProductImage{
			{ID: uuid.New(), URL: "b.webp", SortOrder: 1},
			{ID: uuid.New(), URL: "c.webp", SortOrder: 2, IsPrimary: true},
			{ID: uuid.New(), URL: "a.webp", SortOrder: 0},
		},
	}
	view := BuildProductView(productWith(0, variant))
	images := view.Variants[0].Images
	require.Equal(t, []string{"c.webp", "a.webp", "b.webp"}, []string{images[0].URL, images[1].URL, images[2].URL})
	require.Equal(t, "c.webp", *view.Variants[0].PrimaryImage)
}

func TestBuildImageRowsPicksSinglePrimary(t *testing.T) {
	rows := buildImageRows([]ImageInput{{URL: "a"}, {URL: "b", IsPrimary: true}, {URL: "c", IsPrimary: true}})
	require.False(t, rows[0].IsPrimary)
	require.True(t, rows[1].IsPrimary)
	require.False(t, rows[2].IsPrimary)
	require.Equal(t, 2, rows[2].SortOrder)

	rows = buildImageRows([]ImageInput{{URL: "a"}, {URL: "b"}})
	require.True(t, rows[0].IsPrimary)
}
