// Package seed loads the reference data a fresh store needs: the size
// scale, the shop category tree and a first admin account. Every step is
// safe to re-run.
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/ichaoui56/e-commerce-backoffice/internal/categories"
	"github.com/ichaoui56/e-commerce-backoffice/internal/products"
	"github.com/ichaoui56/e-commerce-backoffice/internal/users"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/config"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/logger"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/security"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/slug"
)

// Sizes is the default size scale in display order.
var Sizes = []string{"XS", "S", "M", "L", "XL", "XXL"}

// CategoryNode is a top-level category with its direct subcategories.
type CategoryNode struct {
	Name          string
	Subcategories []string
}

// ShopCategories is the storefront's original category tree.
var ShopCategories = []CategoryNode{
	{Name: "ROBES"},
	{Name: "LINGERIE", Subcategories: []string{"NUISETTE ET PEIGNOIR SATIN", "NIGHTIE", "SOUS VETEMENTS", "SPORTSWEAR"}},
	{Name: "PYJAMAS", Subcategories: []string{"Haut + Pantalon", "Pyjama Short", "3 PIECES", "Pyjama Long", "Pyjamas Satin", "Body & Colon"}},
	{Name: "SANDALES"},
	{Name: "SERVIETTES"},
	{Name: "BURKINI"},
	{Name: "HOMME"},
	{Name: "KIDS"},
	{Name: "ACCESSOIRES"},
	{Name: "SOLDES"},
}

// Report counts what a run inserted.
type Report struct {
	Sizes        int
	Categories   int
	AdminCreated bool
}

type Runner struct {
	db       *gorm.DB
	cfg      config.SeedConfig
	password config.PasswordConfig
	logg     *logger.Logger
}

func NewRunner(db *gorm.DB, cfg config.SeedConfig, password config.PasswordConfig, logg *logger.Logger) (*Runner, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &Runner{db: db, cfg: cfg, password: password, logg: logg}, nil
}

// Run executes every step and returns the combined failures of the steps that
// could not complete.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	var (
		report Report
		errs   error
		err    error
	)
	report.Sizes, err = r.seedSizes(ctx)
	errs = multierr.Append(errs, err)

	report.Categories, err = r.seedCategories(ctx)
	errs = multierr.Append(errs, err)

	report.AdminCreated, err = r.seedAdmin(ctx)
	errs = multierr.Append(errs, err)

	if r.logg != nil {
		logCtx := r.logg.WithFields(ctx, map[string]any{
			"sizes":         report.Sizes,
			"categories":    report.Categories,
			"admin_created": report.AdminCreated,
		})
		r.logg.Info(logCtx, "seed.completed")
	}
	return report, errs
}

func (r *Runner) seedSizes(ctx context.Context) (int, error) {
	repo := products.NewRepository(r.db)
	created := 0
	for i, label := range Sizes {
		existing, err := repo.FindSizeByLabel(ctx, label)
		if err != nil {
			return created, fmt.Errorf("seed size %s: %w", label, err)
		}
		if existing != nil {
			continue
		}
		if err := repo.CreateSize(ctx, &models.Size{Label: label, SortOrder: i}); err != nil {
			return created, fmt.Errorf("seed size %s: %w", label, err)
		}
		created++
	}
	return created, nil
}

func (r *Runner) seedCategories(ctx context.Context) (int, error) {
	repo := categories.NewRepository(r.db)
	created := 0
	for _, node := range ShopCategories {
		parent, made, err := ensureCategory(ctx, repo, node.Name, slug.Make(node.Name), nil)
		if err != nil {
			return created, err
		}
		if made {
			created++
		}
		for _, sub := range node.Subcategories {
			_, made, err := ensureCategory(ctx, repo, sub, slug.Join(node.Name, sub), &parent.ID)
			if err != nil {
				return created, err
			}
			if made {
				created++
			}
		}
	}
	return created, nil
}

func ensureCategory(ctx context.Context, repo *categories.Repository, name, categorySlug string, parentID *uuid.UUID) (*models.Category, bool, error) {
	existing, err := repo.FindBySlug(ctx, categorySlug)
	if err != nil {
		return nil, false, fmt.Errorf("seed category %s: %w", categorySlug, err)
	}
	if existing != nil {
		return existing, false, nil
	}
	category := &models.Category{Name: name, Slug: categorySlug, ParentID: parentID}
	if err := repo.Create(ctx, category); err != nil {
		return nil, false, fmt.Errorf("seed category %s: %w", categorySlug, err)
	}
	return category, true, nil
}

func (r *Runner) seedAdmin(ctx context.Context) (bool, error) {
	email := users.NormalizeEmail(r.cfg.AdminEmail)
	if email == "" || r.cfg.AdminPassword == "" {
		if r.logg != nil {
			r.logg.Warn(ctx, "seed.admin_skipped")
		}
		return false, nil
	}
	hash, err := security.NewHasher(r.password).Hash(r.cfg.AdminPassword)
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	name := strings.TrimSpace(r.cfg.AdminName)
	if name == "" {
		name = "Admin"
	}
	_, created, err := users.NewRepository(r.db).EnsureAdmin(ctx, users.NewAdmin{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return created, nil
}
