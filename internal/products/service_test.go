package products

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ichaoui56/e-commerce-backoffice/internal/testdb"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
	pkgerrors "github.com/ichaoui56/e-commerce-backoffice/pkg/errors"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/pagination"
)

type fixture struct {
	svc      Service
	conn     *gorm.DB
	category *models.Category
	red      *models.Color
	small    *models.Size
	medium   *models.Size
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := testdb.Open(t, "products")
	svc, err := NewService(NewRepository(conn), db.NewFromGorm(conn), nil)
	require.NoError(t, err)
	return fixture{
		svc:      svc,
		conn:     conn,
		category: testdb.MustCategory(t, conn, "Shirts", nil),
		red:      testdb.MustColor(t, conn, "Red", "#FF0000"),
		small:    testdb.MustSize(t, conn, "S", 1),
		medium:   testdb.MustSize(t, conn, "M", 2),
	}
}

func price(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code(), typed.Message())
}

func (f fixture) baseInput() ProductInput {
	return ProductInput{
		Name:               "Oxford shirt",
		Description:        "Cotton",
		CategoryID:         f.category.ID,
		DiscountPercentage: 20,
		Variants: []VariantInput{{
			ColorID: &f.red.ID,
			Images:  []ImageInput{{URL: "https://cdn.example.com/red.webp"}},
			Sizes: []SizeInput{
				{SizeID: &f.small.ID, Stock: 5, Price: price("200.00")},
				{SizeID: &f.medium.ID, Stock: 10, Price: price("220.00")},
			},
		}},
	}
}

func TestCreateProductBuildsView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.CreateProduct(ctx, f.baseInput())
	require.NoError(t, err)
	require.Equal(t, "Oxford shirt", view.Name)
	require.Equal(t, 15, view.TotalStock)
	require.Equal(t, enums.StockStatusLowStock, view.Status)
	require.Len(t, view.Variants, 1)
	require.Equal(t, "Red", view.Variants[0].Color.Name)
	require.Equal(t, "https://cdn.example.com/red.webp", *view.Variants[0].PrimaryImage)
	require.Len(t, view.Variants[0].Sizes, 2)
	require.True(t, view.Variants[0].Sizes[0].DiscountedPrice.Equal(price("160")))
}

func TestCreateProductWithInlineColorAndSize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := f.baseInput()
	input.Variants = append(input.Variants, VariantInput{
		NewColor: &ColorInput{Name: "  Olive ", Hex: "#556b2f"},
		Sizes:    []SizeInput{{NewSizeLabel: "XXXL", Stock: 1, Price: price("250.00")}},
	})
	view, err := f.svc.CreateProduct(ctx, input)
	require.NoError(t, err)
	require.Len(t, view.Variants, 2)

	var olive models.Color
	require.NoError(t, f.conn.First(&olive, "name_key = ?", "olive").Error)
	require.Equal(t, "Olive", olive.Name)
	require.Equal(t, "#556B2F", olive.Hex)

	var xxxl models.Size
	require.NoError(t, f.conn.First(&xxxl, "label = ?", "XXXL").Error)
	require.Equal(t, 3, xxxl.SortOrder)

	// An inline colour matching an existing name reuses it.
	again := f.baseInput()
	again.Variants[0] = VariantInput{
		NewColor: &ColorInput{Name: "OLIVE", Hex: "#000000"},
		Sizes:    []SizeInput{{NewSizeLabel: "XXXL", Stock: 1, Price: price("10.00")}},
	}
	_, err = f.svc.CreateProduct(ctx, again)
	require.NoError(t, err)
	var colors int64
	require.NoError(t, f.conn.Model(&models.Color{}).Count(&colors).Error)
	require.Equal(t, int64(2), colors)
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	noVariants := f.baseInput()
	noVariants.Variants = nil
	_, err := f.svc.CreateProduct(ctx, noVariants)
	requireCode(t, err, pkgerrors.CodeValidation)

	noSizes := f.baseInput()
	noSizes.Variants[0].Sizes = nil
	_, err = f.svc.CreateProduct(ctx, noSizes)
	requireCode(t, err, pkgerrors.CodeValidation)

	badDiscount := f.baseInput()
	badDiscount.DiscountPercentage = 101
	_, err = f.svc.CreateProduct(ctx, badDiscount)
	requireCode(t, err, pkgerrors.CodeValidation)

	dupColor := f.baseInput()
	dupColor.Variants = append(dupColor.Variants, dupColor.Variants[0])
	_, err = f.svc.CreateProduct(ctx, dupColor)
	requireCode(t, err, pkgerrors.CodeValidation)

	missingCategory := f.baseInput()
	missingCategory.CategoryID = uuid.New()
	_, err = f.svc.CreateProduct(ctx, missingCategory)
	requireCode(t, err, pkgerrors.CodeNotFound)

	var count int64
	require.NoError(t, f.conn.Model(&models.Product{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateProductRollsBackOnMissingSize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := f.baseInput()
	ghost := uuid.New()
	input.Variants[0].Sizes = append(input.Variants[0].Sizes, SizeInput{SizeID: &ghost, Stock: 1, Price: price("1.00")})
	_, err := f.svc.CreateProduct(ctx, input)
	requireCode(t, err, pkgerrors.CodeNotFound)

	var products, stocks int64
	require.NoError(t, f.conn.Model(&models.Product{}).Count(&products).Error)
	require.NoError(t, f.conn.Model(&models.SizeStock{}).Count(&stocks).Error)
	require.Zero(t, products)
	require.Zero(t, stocks)
}

func TestUpdateProductPreservesReservedStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateProduct(ctx, f.baseInput())
	require.NoError(t, err)
	small := created.Variants[0].Sizes[0]
	require.NoError(t, f.conn.Model(&models.SizeStock{}).Where("id = ?", small.ID).Update("reserved_stock", 3).Error)

	input := f.baseInput()
	input.Name = "Oxford shirt v2"
	input.Variants[0].Sizes[0].Stock = 8
	updated, err := f.svc.UpdateProduct(ctx, created.ID, input)
	require.NoError(t, err)
	require.Equal(t, "Oxford shirt v2", updated.Name)

	row := testdb.MustReload(t, f.conn, small.ID)
	require.Equal(t, 8, row.Stock)
	require.Equal(t, 3, row.ReservedStock)

	input.Variants[0].Sizes[0].Stock = 2
	_, err = f.svc.UpdateProduct(ctx, created.ID, input)
	requireCode(t, err, pkgerrors.CodeInvariant)

	// Dropping the reserved size is refused too.
	input.Variants[0].Sizes = input.Variants[0].Sizes[1:]
	_, err = f.svc.UpdateProduct(ctx, created.ID, input)
	requireCode(t, err, pkgerrors.CodeInvariant)
}

func TestUpdateProductReplacesVariants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateProduct(ctx, f.baseInput())
	require.NoError(t, err)
	blue := testdb.MustColor(t, f.conn, "Blue", "#0000FF")

	input := f.baseInput()
	input.Variants = []VariantInput{{
		ColorID: &blue.ID,
		Sizes:   []SizeInput{{SizeID: &f.medium.ID, Stock: 25, Price: price("99.00")}},
	}}
	updated, err := f.svc.UpdateProduct(ctx, created.ID, input)
	require.NoError(t, err)
	require.Len(t, updated.Variants, 1)
	require.Equal(t, "Blue", updated.Variants[0].Color.Name)
	require.Equal(t, enums.StockStatusInStock, updated.Status)
	require.Nil(t, updated.Variants[0].PrimaryImage)

	var variants, images, stocks int64
	require.NoError(t, f.conn.Model(&models.ProductColor{}).Count(&variants).Error)
	require.NoError(t, f.conn.Model(&models.ProductImage{}).Count(&images).Error)
	require.NoError(t, f.conn.Model(&models.SizeStock{}).Count(&stocks).Error)
	require.Equal(t, int64(1), variants)
	require.Zero(t, images)
	require.Equal(t, int64(1), stocks)

	_, err = f.svc.UpdateProduct(ctx, uuid.New(), input)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateProduct(ctx, f.baseInput())
	require.NoError(t, err)
	sizeID := created.Variants[0].Sizes[0].ID

	require.NoError(t, f.conn.Model(&models.SizeStock{}).Where("id = ?", sizeID).Update("reserved_stock", 1).Error)
	requireCode(t, f.svc.DeleteProduct(ctx, created.ID), pkgerrors.CodeInvariant)

	require.NoError(t, f.conn.Model(&models.SizeStock{}).Where("id = ?", sizeID).Update("reserved_stock", 0).Error)
	order := models.Order{RefID: "ORD-TEST0001", CustomerName: "Sara", Phone: "0600000000", City: "Rabat", Status: enums.OrderStatusDelivered}
	require.NoError(t, f.conn.Omit("Items").Create(&order).Error)
	item := models.OrderItem{OrderID: order.ID, SizeStockID: sizeID, Quantity: 1, PriceAtPurchase: price("200.00")}
	require.NoError(t, f.conn.Omit("SizeStock").Create(&item).Error)
	requireCode(t, f.svc.DeleteProduct(ctx, created.ID), pkgerrors.CodeInvariant)

	require.NoError(t, f.conn.Delete(&models.OrderItem{}, "id = ?", item.ID).Error)
	require.NoError(t, f.svc.DeleteProduct(ctx, created.ID))

	_, err = f.svc.GetProduct(ctx, created.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
	var stocks, images int64
	require.NoError(t, f.conn.Model(&models.SizeStock{}).Count(&stocks).Error)
	require.NoError(t, f.conn.Model(&models.ProductImage{}).Count(&images).Error)
	require.Zero(t, stocks)
	require.Zero(t, images)

	requireCode(t, f.svc.DeleteProduct(ctx, created.ID), pkgerrors.CodeNotFound)
}

func TestListProductsFiltersAndPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := testdb.MustCategory(t, f.conn, "Shoes", nil)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	stocks := []int{0, 5, 30}
	ids := make([]uuid.UUID, 0, len(stocks))
	for i, stock := range stocks {
		input := f.baseInput()
		input.Name = []string{"Plain tee", "Polo", "Denim jacket"}[i]
		input.IsFeatured = i == 2
		input.Variants[0].Sizes = []SizeInput{{SizeID: &f.small.ID, Stock: stock, Price: price("50.00")}}
		if i == 0 {
			input.CategoryID = other.ID
		}
		view, err := f.svc.CreateProduct(ctx, input)
		require.NoError(t, err)
		require.NoError(t, f.conn.Model(&models.Product{}).Where("id = ?", view.ID).
			UpdateColumn("created_at", base.Add(time.Duration(i)*time.Hour)).Error)
		ids = append(ids, view.ID)
	}

	page, err := f.svc.ListProducts(ctx, ListFilter{}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, ids[2], page.Items[0].ID)
	require.Equal(t, ids[1], page.Items[1].ID)
	require.NotEmpty(t, page.NextCursor)

	next, err := f.svc.ListProducts(ctx, ListFilter{}, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, next.Items, 1)
	require.Equal(t, ids[0], next.Items[0].ID)
	require.Empty(t, next.NextCursor)

	out := enums.StockStatusOutOfStock
	filtered, err := f.svc.ListProducts(ctx, ListFilter{Status: &out}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	require.Equal(t, ids[0], filtered.Items[0].ID)

	low := enums.StockStatusLowStock
	filtered, err = f.svc.ListProducts(ctx, ListFilter{Status: &low}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	require.Equal(t, ids[1], filtered.Items[0].ID)

	featured := true
	filtered, err = f.svc.ListProducts(ctx, ListFilter{Featured: &featured}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	require.Equal(t, enums.StockStatusInStock, filtered.Items[0].Status)

	filtered, err = f.svc.ListProducts(ctx, ListFilter{CategoryID: &other.ID}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)

	filtered, err = f.svc.ListProducts(ctx, ListFilter{Search: "DENIM"}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	require.Equal(t, ids[2], filtered.Items[0].ID)

	_, err = f.svc.ListProducts(ctx, ListFilter{}, pagination.Params{Cursor: "%%%"})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestColorsAndSizes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateColor(ctx, ColorInput{Name: "red", Hex: "#EE0000"})
	requireCode(t, err, pkgerrors.CodeConflict)

	_, err = f.svc.CreateColor(ctx, ColorInput{Name: "Navy", Hex: "navy"})
	requireCode(t, err, pkgerrors.CodeValidation)

	navy, err := f.svc.CreateColor(ctx, ColorInput{Name: "Navy", Hex: "#000080"})
	require.NoError(t, err)
	require.Equal(t, "Navy", navy.Name)

	colors, err := f.svc.ListColors(ctx)
	require.NoError(t, err)
	require.Len(t, colors, 2)
	require.Equal(t, "Navy", colors[0].Name)

	_, err = f.svc.CreateSize(ctx, "M")
	requireCode(t, err, pkgerrors.CodeConflict)
	_, err = f.svc.CreateSize(ctx, "  ")
	requireCode(t, err, pkgerrors.CodeValidation)

	xl, err := f.svc.CreateSize(ctx, "XL")
	require.NoError(t, err)
	require.Equal(t, 3, xl.SortOrder)

	sizes, err := f.svc.ListSizes(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"S", "M", "XL"}, []string{sizes[0].Label, sizes[1].Label, sizes[2].Label})
}
