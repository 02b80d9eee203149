package products

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// DiscountedPrice applies a whole-percent discount and rounds to cents.
func DiscountedPrice(price decimal.Decimal, discountPercentage int) decimal.Decimal {
	if discountPercentage <= 0 {
		return price.Round(2)
	}
	factor := decimal.NewFromInt(int64(100 - discountPercentage))
	return price.Mul(factor).Div(hundred).Round(2)
}

// BuildProductView maps a product loaded with category, colours, images, size
// stocks and sizes into its read model. It does no I/O.
func BuildProductView(p models.Product) ProductView {
	view := ProductView{
		ID:                 p.ID,
		Name:               p.Name,
		Description:        p.Description,
		Category:           CategoryRef{ID: p.Category.ID, Name: p.Category.Name, Slug: p.Category.Slug},
		DiscountPercentage: p.DiscountPercentage,
		IsFeatured:         p.IsFeatured,
		Variants:           make([]VariantView, 0, len(p.Colors)),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}

	for _, variant := range p.Colors {
		vv := VariantView{
			ID:     variant.ID,
			Color:  ColorDTO{ID: variant.Color.ID, Name: variant.Color.Name, Hex: variant.Color.Hex},
			Images: buildImages(variant.Images),
			Sizes:  make([]SizeStockView, 0, len(variant.SizeStocks)),
		}
		if len(vv.Images) > 0 {
			url := vv.Images[0].URL
			vv.PrimaryImage = &url
		}

		stocks := append([]models.SizeStock(nil), variant.SizeStocks...)
		sort.SliceStable(stocks, func(i, j int) bool {
			if stocks[i].Size.SortOrder != stocks[j].Size.SortOrder {
				return stocks[i].Size.SortOrder < stocks[j].Size.SortOrder
			}
			return stocks[i].Size.Label < stocks[j].Size.Label
		})
		for _, stock := range stocks {
			view.TotalStock += stock.Stock
			view.AvailableStock += stock.Available()
			view.MinPrice = pickPrice(view.MinPrice, stock.Price, true)
			view.MaxPrice = pickPrice(view.MaxPrice, stock.Price, false)
			vv.Sizes = append(vv.Sizes, SizeStockView{
				ID:              stock.ID,
				Size:            SizeDTO{ID: stock.Size.ID, Label: stock.Size.Label, SortOrder: stock.Size.SortOrder},
				Stock:           stock.Stock,
				ReservedStock:   stock.ReservedStock,
				AvailableStock:  stock.Available(),
				Price:           stock.Price,
				DiscountedPrice: DiscountedPrice(stock.Price, p.DiscountPercentage),
			})
		}
		view.Variants = append(view.Variants, vv)
	}

	view.Status = enums.StockStatusFor(view.TotalStock)
	return view
}

// buildImages orders images primary first, then by sort order.
func buildImages(rows []models.ProductImage) []ImageView {
	images := make([]ImageView, 0, len(rows))
	for _, row := range rows {
		images = append(images, ImageView{ID: row.ID, URL: row.URL, IsPrimary: row.IsPrimary, SortOrder: row.SortOrder})
	}
	sort.SliceStable(images, func(i, j int) bool {
		if images[i].IsPrimary != images[j].IsPrimary {
			return images[i].IsPrimary
		}
		return images[i].SortOrder < images[j].SortOrder
	})
	return images
}

func pickPrice(current *decimal.Decimal, candidate decimal.Decimal, lowest bool) *decimal.Decimal {
	if current == nil {
		v := candidate
		return &v
	}
	if lowest && candidate.LessThan(*current) || !lowest && candidate.GreaterThan(*current) {
		v := candidate
		return &v
	}
	return current
}
