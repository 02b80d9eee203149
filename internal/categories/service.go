package categories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/db"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
	pkgerrors "github.com/ichaoui56/e-commerce-backoffice/pkg/errors"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/logger"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/slug"
)

const maxNameLength = 100

// Service manages the category hierarchy.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CategoryDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CategoryDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*CategoryDetail, error)
	ListFlat(ctx context.Context) ([]CategoryDTO, error)
	ListHierarchy(ctx context.Context) ([]CategoryNode, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams wires the category service.
type ServiceParams struct {
	Repo   *Repository
	Tx     txRunner
	Logger *logger.Logger
	// MaxDepth bounds the number of tree levels; 0 disables the check.
	MaxDepth int
}

type service struct {
	repo     *Repository
	tx       txRunner
	logg     *logger.Logger
	maxDepth int
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("category repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.MaxDepth < 0 {
		return nil, fmt.Errorf("max depth cannot be negative")
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		logg:     params.Logger,
		maxDepth: params.MaxDepth,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CategoryDTO, error) {
	name, slugValue, err := normalizeNameAndSlug(input.Name, input.Slug)
	if err != nil {
		return nil, err
	}

	var created CategoryDTO
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		tree, err := s.loadTree(ctx, repo)
		if err != nil {
			return err
		}
		if err := s.ensureSlugFree(ctx, repo, slugValue, uuid.Nil); err != nil {
			return err
		}
		if input.ParentID != nil {
			if _, ok := tree.Get(*input.ParentID); !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, "parent category not found")
			}
			if s.maxDepth > 0 && tree.Depth(*input.ParentID)+1 > s.maxDepth {
				return depthError(s.maxDepth)
			}
		}

		row := models.Category{Name: name, Slug: slugValue, ParentID: input.ParentID}
		if err := repo.Create(ctx, &row); err != nil {
			return mapWriteError(err, "create category")
		}
		tree = NewTree(append(treeRows(tree), row))
		created = toDTO(tree, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logInfo(ctx, created.ID, "category.created")
	return &created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CategoryDTO, error) {
	name, slugValue, err := normalizeNameAndSlug(input.Name, input.Slug)
	if err != nil {
		return nil, err
	}

	var updated CategoryDTO
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		tree, err := s.loadTree(ctx, repo)
		if err != nil {
			return err
		}
		current, ok := tree.Get(id)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		if err := s.ensureSlugFree(ctx, repo, slugValue, id); err != nil {
			return err
		}
		if input.ParentID != nil {
			parentID := *input.ParentID
			if parentID == id {
				return pkgerrors.New(pkgerrors.CodeInvariant, "category cannot be its own parent")
			}
			if _, ok := tree.Get(parentID); !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, "parent category not found")
			}
			if tree.WouldCycle(id, parentID) {
				return pkgerrors.New(pkgerrors.CodeInvariant, "cannot create circular reference").
					WithDetails(map[string]any{"category_id": id, "parent_id": parentID})
			}
			if s.maxDepth > 0 && tree.DepthAfterMove(id, parentID) > s.maxDepth {
				return depthError(s.maxDepth)
			}
		}

		current.Name = name
		current.Slug = slugValue
		current.ParentID = input.ParentID
		if err := repo.Update(ctx, &current); err != nil {
			return mapWriteError(err, "update category")
		}

		rows := treeRows(tree)
		for i := range rows {
			if rows[i].ID == id {
				rows[i] = current
			}
		}
		updated = toDTO(NewTree(rows), current)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logInfo(ctx, id, "category.updated")
	return &updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		tree, err := s.loadTree(ctx, repo)
		if err != nil {
			return err
		}
		if _, ok := tree.Get(id); !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		if children := tree.ChildCount(id); children > 0 {
			return pkgerrors.New(pkgerrors.CodeInvariant, "cannot delete category with subcategories").
				WithDetails(map[string]any{"subcategories": children})
		}
		products, err := repo.CountProducts(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category products")
		}
		if products > 0 {
			return pkgerrors.New(pkgerrors.CodeInvariant, "cannot delete category that is used by products").
				WithDetails(map[string]any{"products": products})
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logInfo(ctx, id, "category.deleted")
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CategoryDetail, error) {
	tree, err := s.loadTree(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	node, ok := tree.Get(id)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	detail := &CategoryDetail{
		CategoryDTO: toDTO(tree, node),
		Children:    toDTOs(tree, tree.Children(id)),
	}
	if node.ParentID != nil {
		if parent, ok := tree.Get(*node.ParentID); ok {
			dto := toDTO(tree, parent)
			detail.Parent = &dto
		}
	}
	return detail, nil
}

func (s *service) ListFlat(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return toDTOs(NewTree(rows), rows), nil
}

// ListHierarchy returns root categories with one level of children.
func (s *service) ListHierarchy(ctx context.Context) ([]CategoryNode, error) {
	tree, err := s.loadTree(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	roots := tree.Roots()
	out := make([]CategoryNode, 0, len(roots))
	for _, root := range roots {
		out = append(out, CategoryNode{
			ID:       root.ID,
			Name:     root.Name,
			Slug:     root.Slug,
			Children: toDTOs(tree, tree.Children(root.ID)),
		})
	}
	return out, nil
}

func (s *service) loadTree(ctx context.Context, repo *Repository) (*Tree, error) {
	rows, err := repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load categories")
	}
	return NewTree(rows), nil
}

func (s *service) ensureSlugFree(ctx context.Context, repo *Repository, value string, self uuid.UUID) error {
	existing, err := repo.FindBySlug(ctx, value)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup category slug")
	}
	if existing != nil && existing.ID != self {
		return pkgerrors.New(pkgerrors.CodeConflict, "slug already exists").
			WithDetails(map[string]any{"slug": value})
	}
	return nil
}

func (s *service) logInfo(ctx context.Context, id uuid.UUID, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithField(ctx, "category_id", id.String()), msg)
}

func normalizeNameAndSlug(rawName, rawSlug string) (string, string, error) {
	name := strings.TrimSpace(rawName)
	if name == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if len([]rune(name)) > maxNameLength {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "name is too long")
	}
	source := rawSlug
	if strings.TrimSpace(source) == "" {
		source = name
	}
	value := slug.Make(source)
	if value == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "slug must contain letters or digits")
	}
	return name, value, nil
}

func mapWriteError(err error, action string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "slug already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func depthError(maxDepth int) error {
	return pkgerrors.New(pkgerrors.CodeInvariant, "category nesting too deep").
		WithDetails(map[string]any{"max_depth": maxDepth})
}

func treeRows(t *Tree) []models.Category {
	rows := make([]models.Category, 0, t.Len())
	for _, node := range t.nodes {
		rows = append(rows, node)
	}
	return rows
}
