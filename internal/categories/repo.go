package categories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ichaoui56/e-commerce-backoffice/internal/repo"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
)

// Repository persists category rows.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

// ListAll returns every category ordered by parent then name.
func (r *Repository) ListAll(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.DB(ctx).
		Order("parent_id ASC").
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

// FindBySlug returns nil when no category holds slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return repo.First[models.Category](r.DB(ctx).Where("slug = ?", slug))
}

func (r *Repository) Create(ctx context.Context, category *models.Category) error {
	return r.DB(ctx).Omit("Parent", "Children").Create(category).Error
}

func (r *Repository) Update(ctx context.Context, category *models.Category) error {
	return r.DB(ctx).
		Model(&models.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]any{
			"name":      category.Name,
			"slug":      category.Slug,
			"parent_id": category.ParentID,
		}).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.Category{}).Error
}

func (r *Repository) CountProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Product{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}
