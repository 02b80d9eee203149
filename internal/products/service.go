package products

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/db"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
	pkgerrors "github.com/ichaoui56/e-commerce-backoffice/pkg/errors"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/logger"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/pagination"
)

const (
	maxProductNameLength = 200
	maxColorNameLength   = 50
	maxSizeLabelLength   = 20
)

var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Service exposes catalog management: colours, sizes and products with their variants.
type Service interface {
	ListColors(ctx context.Context) ([]ColorDTO, error)
	CreateColor(ctx context.Context, input ColorInput) (*ColorDTO, error)
	ListSizes(ctx context.Context) ([]SizeDTO, error)
	CreateSize(ctx context.Context, label string) (*SizeDTO, error)
	ListProducts(ctx context.Context, filter ListFilter, params pagination.Params) (*pagination.Page[ProductView], error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductView, error)
	CreateProduct(ctx context.Context, input ProductInput) (*ProductView, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductView, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) ListColors(ctx context.Context) ([]ColorDTO, error) {
	rows, err := s.repo.ListColors(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list colors")
	}
	out := make([]ColorDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ColorDTO{ID: row.ID, Name: row.Name, Hex: row.Hex})
	}
	return out, nil
}

func (s *service) CreateColor(ctx context.Context, input ColorInput) (*ColorDTO, error) {
	name, hex, err := validateColor(input)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.FindColorByName(ctx, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup color")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "color already exists")
	}
	row := models.Color{Name: name, Hex: hex}
	if err := s.repo.CreateColor(ctx, &row); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "color already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create color")
	}
	return &ColorDTO{ID: row.ID, Name: row.Name, Hex: row.Hex}, nil
}

func (s *service) ListSizes(ctx context.Context) ([]SizeDTO, error) {
	rows, err := s.repo.ListSizes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sizes")
	}
	out := make([]SizeDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, SizeDTO{ID: row.ID, Label: row.Label, SortOrder: row.SortOrder})
	}
	return out, nil
}

func (s *service) CreateSize(ctx context.Context, label string) (*SizeDTO, error) {
	label, err := validateSizeLabel(label)
	if err != nil {
		return nil, err
	}
	var created models.Size
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindSizeByLabel(ctx, label)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup size")
		}
		if existing != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "size already exists")
		}
		size, err := createSize(ctx, repo, label)
		if err != nil {
			return err
		}
		created = *size
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &SizeDTO{ID: created.ID, Label: created.Label, SortOrder: created.SortOrder}, nil
}

func (s *service) ListProducts(ctx context.Context, filter ListFilter, params pagination.Params) (*pagination.Page[ProductView], error) {
	if _, err := params.Decode(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListProducts(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	views := make([]ProductView, 0, len(rows))
	for _, row := range rows {
		views = append(views, BuildProductView(row))
	}
	page := pagination.Paginate(views, params, func(v ProductView) pagination.Cursor {
		return pagination.Cursor{CreatedAt: v.CreatedAt, ID: v.ID}
	})
	return &page, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	row, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if row == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	view := BuildProductView(*row)
	return &view, nil
}

// CreateProduct creates the product with its variants, images and size rows.
func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*ProductView, error) {
	if err := validateProductInput(&input); err != nil {
		return nil, err
	}

	var productID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := ensureCategory(ctx, repo, input.CategoryID); err != nil {
			return err
		}

		product := &models.Product{
			Name:               input.Name,
			Description:        input.Description,
			CategoryID:         input.CategoryID,
			DiscountPercentage: input.DiscountPercentage,
			IsFeatured:         input.IsFeatured,
		}
		if err := repo.CreateProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
		}
		productID = product.ID
		return writeVariants(ctx, repo, product.ID, input.Variants, nil)
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	s.logInfo(ctx, productID, "product.created")
	return s.GetProduct(ctx, productID)
}

// UpdateProduct replaces the product fields and variants. Size rows that still
// match a (colour, size) pair keep their id and reserved quantity.
func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductView, error) {
	if err := validateProductInput(&input); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindProductRow(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if product == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if err := ensureCategory(ctx, repo, input.CategoryID); err != nil {
			return err
		}

		product.Name = input.Name
		product.Description = input.Description
		product.CategoryID = input.CategoryID
		product.DiscountPercentage = input.DiscountPercentage
		product.IsFeatured = input.IsFeatured
		if err := repo.UpdateProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}

		existing, err := repo.LockVariants(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock product variants")
		}
		return writeVariants(ctx, repo, id, input.Variants, existing)
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	s.logInfo(ctx, id, "product.updated")
	return s.GetProduct(ctx, id)
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindProductRow(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if product == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		variants, err := repo.LockVariants(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock product variants")
		}
		var rows []models.SizeStock
		for _, variant := range variants {
			rows = append(rows, variant.SizeStocks...)
		}
		if err := ensureRemovable(ctx, repo, rows); err != nil {
			return err
		}
		if err := repo.DeleteProduct(ctx, id, variants); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logInfo(ctx, id, "product.deleted")
	return nil
}

func (s *service) logInfo(ctx context.Context, id uuid.UUID, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithField(ctx, "product_id", id.String()), msg)
}

func ensureCategory(ctx context.Context, repo *Repository, id uuid.UUID) error {
	ok, err := repo.CategoryExists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup category")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return nil
}

// writeVariants reconciles the stored variants of a product with the desired set.
func writeVariants(ctx context.Context, repo *Repository, productID uuid.UUID, inputs []VariantInput, existing []models.ProductColor) error {
	byColor := make(map[uuid.UUID]models.ProductColor, len(existing))
	for _, variant := range existing {
		byColor[variant.ColorID] = variant
	}
	kept := make(map[uuid.UUID]struct{}, len(inputs))

	for _, input := range inputs {
		colorID, err := resolveColor(ctx, repo, input)
		if err != nil {
			return err
		}
		if _, dup := kept[colorID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "each color may appear once per product")
		}
		kept[colorID] = struct{}{}

		variant, ok := byColor[colorID]
		if !ok {
			variant = models.ProductColor{ProductID: productID, ColorID: colorID}
			if err := repo.CreateVariant(ctx, &variant); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert variant")
			}
		}
		if err := repo.ReplaceImages(ctx, variant.ID, buildImageRows(input.Images)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace variant images")
		}
		if err := writeSizes(ctx, repo, variant, input.Sizes); err != nil {
			return err
		}
	}

	for _, variant := range existing {
		if _, ok := kept[variant.ColorID]; ok {
			continue
		}
		if err := ensureRemovable(ctx, repo, variant.SizeStocks); err != nil {
			return err
		}
		if err := repo.DeleteVariant(ctx, variant.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete variant")
		}
	}
	return nil
}

func writeSizes(ctx context.Context, repo *Repository, variant models.ProductColor, inputs []SizeInput) error {
	bySize := make(map[uuid.UUID]models.SizeStock, len(variant.SizeStocks))
	for _, row := range variant.SizeStocks {
		bySize[row.SizeID] = row
	}
	kept := make(map[uuid.UUID]struct{}, len(inputs))

	for _, input := range inputs {
		sizeID, err := resolveSize(ctx, repo, input)
		if err != nil {
			return err
		}
		if _, dup := kept[sizeID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "each size may appear once per color")
		}
		kept[sizeID] = struct{}{}

		row, ok := bySize[sizeID]
		if !ok {
			row = models.SizeStock{ProductColorID: variant.ID, SizeID: sizeID, Stock: input.Stock, Price: input.Price}
			if err := repo.CreateSizeStock(ctx, &row); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert size stock")
			}
			continue
		}
		if input.Stock < row.ReservedStock {
			return pkgerrors.New(pkgerrors.CodeInvariant, "stock cannot be lower than reserved quantity").
				WithDetails(map[string]any{
					"size_stock_id":  row.ID,
					"stock":          input.Stock,
					"reserved_stock": row.ReservedStock,
				})
		}
		row.Stock = input.Stock
		row.Price = input.Price
		if err := repo.UpdateSizeStock(ctx, &row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update size stock")
		}
	}

	var dropped []models.SizeStock
	for _, row := range variant.SizeStocks {
		if _, ok := kept[row.SizeID]; !ok {
			dropped = append(dropped, row)
		}
	}
	if err := ensureRemovable(ctx, repo, dropped); err != nil {
		return err
	}
	ids := make([]uuid.UUID, 0, len(dropped))
	for _, row := range dropped {
		ids = append(ids, row.ID)
	}
	if err := repo.DeleteSizeStocks(ctx, ids); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete size stocks")
	}
	return nil
}

// ensureRemovable rejects removing size rows that hold reservations or that
// order history still points at.
func ensureRemovable(ctx context.Context, repo *Repository, rows []models.SizeStock) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		if row.ReservedStock > 0 {
			return pkgerrors.New(pkgerrors.CodeInvariant, "stock is reserved by pending orders").
				WithDetails(map[string]any{"size_stock_id": row.ID, "reserved_stock": row.ReservedStock})
		}
		ids = append(ids, row.ID)
	}
	refs, err := repo.CountOrderReferences(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count order references")
	}
	if refs > 0 {
		return pkgerrors.New(pkgerrors.CodeInvariant, "stock is referenced by existing orders").
			WithDetails(map[string]any{"order_items": refs})
	}
	return nil
}

func resolveColor(ctx context.Context, repo *Repository, input VariantInput) (uuid.UUID, error) {
	if input.ColorID != nil {
		color, err := repo.FindColor(ctx, *input.ColorID)
		if err != nil {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup color")
		}
		if color == nil {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "color not found")
		}
		return color.ID, nil
	}

	name, hex, err := validateColor(*input.NewColor)
	if err != nil {
		return uuid.Nil, err
	}
	existing, err := repo.FindColorByName(ctx, name)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup color")
	}
	if existing != nil {
		return existing.ID, nil
	}
	color := models.Color{Name: name, Hex: hex}
	if err := repo.CreateColor(ctx, &color); err != nil {
		if db.IsUniqueViolation(err, "") {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "color already exists")
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert color")
	}
	return color.ID, nil
}

func resolveSize(ctx context.Context, repo *Repository, input SizeInput) (uuid.UUID, error) {
	if input.SizeID != nil {
		size, err := repo.FindSize(ctx, *input.SizeID)
		if err != nil {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup size")
		}
		if size == nil {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "size not found")
		}
		return size.ID, nil
	}

	label, err := validateSizeLabel(input.NewSizeLabel)
	if err != nil {
		return uuid.Nil, err
	}
	existing, err := repo.FindSizeByLabel(ctx, label)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup size")
	}
	if existing != nil {
		return existing.ID, nil
	}
	size, err := createSize(ctx, repo, label)
	if err != nil {
		return uuid.Nil, err
	}
	return size.ID, nil
}

func createSize(ctx context.Context, repo *Repository, label string) (*models.Size, error) {
	next, err := repo.NextSizeSortOrder(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load size order")
	}
	size := models.Size{Label: label, SortOrder: next}
	if err := repo.CreateSize(ctx, &size); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "size already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert size")
	}
	return &size, nil
}

// buildImageRows keeps input order as sort order. The first flagged image is
// primary; without one the first image is.
func buildImageRows(inputs []ImageInput) []models.ProductImage {
	rows := make([]models.ProductImage, 0, len(inputs))
	primary := -1
	for i, input := range inputs {
		if input.IsPrimary && primary < 0 {
			primary = i
		}
	}
	if primary < 0 && len(inputs) > 0 {
		primary = 0
	}
	for i, input := range inputs {
		rows = append(rows, models.ProductImage{
			URL:       strings.TrimSpace(input.URL),
			IsPrimary: i == primary,
			SortOrder: i,
		})
	}
	return rows
}

func validateProductInput(input *ProductInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	switch {
	case input.Name == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case len([]rune(input.Name)) > maxProductNameLength:
		return pkgerrors.New(pkgerrors.CodeValidation, "name is too long")
	case input.CategoryID == uuid.Nil:
		return pkgerrors.New(pkgerrors.CodeValidation, "category_id is required")
	case input.DiscountPercentage < 0 || input.DiscountPercentage > 100:
		return pkgerrors.New(pkgerrors.CodeValidation, "discount_percentage must be between 0 and 100")
	case len(input.Variants) == 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one color variant is required")
	}

	for i, variant := range input.Variants {
		if (variant.ColorID == nil) == (variant.NewColor == nil) {
			return variantError(i, "exactly one of color_id or new_color is required")
		}
		if len(variant.Sizes) == 0 {
			return variantError(i, "at least one size is required")
		}
		for _, image := range variant.Images {
			if strings.TrimSpace(image.URL) == "" {
				return variantError(i, "image url is required")
			}
		}
		for _, size := range variant.Sizes {
			if (size.SizeID == nil) == (strings.TrimSpace(size.NewSizeLabel) == "") {
				return variantError(i, "exactly one of size_id or new_size_label is required")
			}
			if size.Stock < 0 {
				return variantError(i, "stock cannot be negative")
			}
			if size.Price.IsNegative() {
				return variantError(i, "price cannot be negative")
			}
		}
	}
	return nil
}

func variantError(index int, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).
		WithDetails(map[string]any{"variant": index})
}

func validateColor(input ColorInput) (string, string, error) {
	name := strings.TrimSpace(input.Name)
	hex := strings.TrimSpace(input.Hex)
	if name == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "color name is required")
	}
	if len([]rune(name)) > maxColorNameLength {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "color name is too long")
	}
	if !hexColorRe.MatchString(hex) {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "hex must look like #RRGGBB")
	}
	return name, strings.ToUpper(hex), nil
}

func validateSizeLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "size label is required")
	}
	if len([]rune(label)) > maxSizeLabelLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "size label is too long")
	}
	return label, nil
}
