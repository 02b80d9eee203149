package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ichaoui56/e-commerce-backoffice/api/responses"
	"github.com/ichaoui56/e-commerce-backoffice/api/validators"
	"github.com/ichaoui56/e-commerce-backoffice/internal/products"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
	pkgerrors "github.com/ichaoui56/e-commerce-backoffice/pkg/errors"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/logger"
)

// productRequest is the full desired state of a product. Updates replace
// the variant set with the one sent.
type productRequest struct {
	Name               string           `json:"name" validate:"required,max=200"`
	Description        string           `json:"description" validate:"max=5000"`
	CategoryID         uuid.UUID        `json:"category_id" validate:"required"`
	DiscountPercentage int              `json:"discount_percentage" validate:"gte=0,lte=100"`
	IsFeatured         bool             `json:"is_featured"`
	Variants           []variantRequest `json:"variants" validate:"required,min=1,dive"`
}

type variantRequest struct {
	ColorID  *uuid.UUID         `json:"color_id,omitempty"`
	NewColor *colorRequest      `json:"new_color,omitempty"`
	Images   []imageRequest     `json:"images" validate:"dive"`
	Sizes    []sizeStockRequest `json:"sizes" validate:"required,min=1,dive"`
}

type imageRequest struct {
	URL       string `json:"url" validate:"required,max=500"`
	IsPrimary bool   `json:"is_primary"`
}

type sizeStockRequest struct {
	SizeID       *uuid.UUID      `json:"size_id,omitempty"`
	NewSizeLabel string          `json:"new_size_label,omitempty" validate:"max=20"`
	Stock        int             `json:"stock" validate:"gte=0"`
	Price        decimal.Decimal `json:"price"`
}

func (r productRequest) toInput() products.ProductInput {
	input := products.ProductInput{
		Name:               r.Name,
		Description:        r.Description,
		CategoryID:         r.CategoryID,
		DiscountPercentage: r.DiscountPercentage,
		IsFeatured:         r.IsFeatured,
		Variants:           make([]products.VariantInput, 0, len(r.Variants)),
	}
	for _, v := range r.Variants {
		variant := products.VariantInput{ColorID: v.ColorID}
		if v.NewColor != nil {
			variant.NewColor = &products.ColorInput{Name: v.NewColor.Name, Hex: v.NewColor.Hex}
		}
		for _, img := range v.Images {
			variant.Images = append(variant.Images, products.ImageInput{URL: img.URL, IsPrimary: img.IsPrimary})
		}
		for _, s := range v.Sizes {
			variant.Sizes = append(variant.Sizes, products.SizeInput{
				SizeID:       s.SizeID,
				NewSizeLabel: s.NewSizeLabel,
				Stock:        s.Stock,
				Price:        s.Price,
			})
		}
		input.Variants = append(input.Variants, variant)
	}
	return input
}

func parseProductFilter(r *http.Request) (products.ListFilter, error) {
	filter := products.ListFilter{Search: searchTerm(r)}

	categoryID, err := validators.ParseQueryUUID(r, "category_id")
	if err != nil {
		return filter, err
	}
	filter.CategoryID = categoryID

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseStockStatus(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").WithDetails(map[string]any{"field": "status"})
		}
		filter.Status = &status
	}

	featured, err := validators.ParseQueryBool(r, "featured")
	if err != nil {
		return filter, err
	}
	filter.Featured = featured
	return filter, nil
}

// ProductList pages through products with optional category, stock status,
// featured and search filters.
func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productServiceMissing())
			return
		}
		filter, err := parseProductFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListProducts(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func ProductGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productServiceMissing())
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func ProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productServiceMissing())
			return
		}
		var body productRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.CreateProduct(r.Context(), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

func ProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productServiceMissing())
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body productRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.UpdateProduct(r.Context(), id, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func ProductDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productServiceMissing())
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
