package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ichaoui56/e-commerce-backoffice/internal/testdb"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
	pkgerrors "github.com/ichaoui56/e-commerce-backoffice/pkg/errors"
)

func newTestService(t *testing.T, maxDepth int) (Service, *gorm.DB) {
	t.Helper()
	conn := testdb.Open(t, "categories")
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(conn),
		Tx:       db.NewFromGorm(conn),
		MaxDepth: maxDepth,
	})
	require.NoError(t, err)
	return svc, conn
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code())
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)

	conn := testdb.Open(t, "categories_deps")
	_, err = NewService(ServiceParams{Repo: NewRepository(conn)})
	require.Error(t, err)
}

func TestCreateDerivesSlugFromName(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "  Robes d'Été  "})
	require.NoError(t, err)
	require.Equal(t, "Robes d'Été", created.Name)
	require.Equal(t, "robes-dete", created.Slug)
	require.Nil(t, created.ParentID)
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	svc, conn := newTestService(t, 0)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "Shoes"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{Name: "Other", Slug: "SHOES"})
	requireCode(t, err, pkgerrors.CodeConflict)

	var count int64
	require.NoError(t, conn.Model(&models.Category{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestCreateValidatesInput(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "   "})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Create(ctx, CreateInput{Name: "Hats", Slug: "!!!"})
	requireCode(t, err, pkgerrors.CodeValidation)

	missing := uuid.New()
	_, err = svc.Create(ctx, CreateInput{Name: "Hats", ParentID: &missing})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestCreateEnforcesMaxDepth(t *testing.T) {
	svc, _ := newTestService(t, 2)
	ctx := context.Background()

	root, err := svc.Create(ctx, CreateInput{Name: "Men"})
	require.NoError(t, err)
	child, err := svc.Create(ctx, CreateInput{Name: "Shirts", ParentID: &root.ID})
	require.NoError(t, err)
	require.Equal(t, "Men", *child.ParentName)

	_, err = svc.Create(ctx, CreateInput{Name: "Polos", ParentID: &child.ID})
	requireCode(t, err, pkgerrors.CodeInvariant)
}

func TestUpdateRejectsSelfParentAndCycles(t *testing.T) {
	svc, conn := newTestService(t, 0)
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateInput{Name: "A"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, CreateInput{Name: "B", ParentID: &a.ID})
	require.NoError(t, err)

	_, err = svc.Update(ctx, a.ID, UpdateInput{Name: "A", Slug: a.Slug, ParentID: &a.ID})
	requireCode(t, err, pkgerrors.CodeInvariant)

	_, err = svc.Update(ctx, a.ID, UpdateInput{Name: "A", Slug: a.Slug, ParentID: &b.ID})
	requireCode(t, err, pkgerrors.CodeInvariant)

	var stored models.Category
	require.NoError(t, conn.First(&stored, "id = ?", a.ID).Error)
	require.Nil(t, stored.ParentID)
}

func TestUpdateKeepsOwnSlugAndMovesCategory(t *testing.T) {
	svc, conn := newTestService(t, 2)
	ctx := context.Background()

	men, err := svc.Create(ctx, CreateInput{Name: "Men"})
	require.NoError(t, err)
	shoes, err := svc.Create(ctx, CreateInput{Name: "Shoes"})
	require.NoError(t, err)

	moved, err := svc.Update(ctx, shoes.ID, UpdateInput{Name: "Shoes", Slug: shoes.Slug, ParentID: &men.ID})
	require.NoError(t, err)
	require.Equal(t, men.ID, *moved.ParentID)

	// Men now has a child, so it cannot be nested under another root.
	women, err := svc.Create(ctx, CreateInput{Name: "Women"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, men.ID, UpdateInput{Name: "Men", ParentID: &women.ID})
	requireCode(t, err, pkgerrors.CodeInvariant)

	moved, err = svc.Update(ctx, shoes.ID, UpdateInput{Name: "Shoes", Slug: shoes.Slug})
	require.NoError(t, err)
	require.Nil(t, moved.ParentID)

	var stored models.Category
	require.NoError(t, conn.First(&stored, "id = ?", shoes.ID).Error)
	require.Nil(t, stored.ParentID)
}

func TestUpdateRejectsSlugOwnedByAnotherCategory(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "Bags"})
	require.NoError(t, err)
	belts, err := svc.Create(ctx, CreateInput{Name: "Belts"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, belts.ID, UpdateInput{Name: "Belts", Slug: "bags"})
	requireCode(t, err, pkgerrors.CodeConflict)

	_, err = svc.Update(ctx, uuid.New(), UpdateInput{Name: "Ghost"})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestDeleteBlockedByChildrenAndProducts(t *testing.T) {
	svc, conn := newTestService(t, 0)
	ctx := context.Background()

	parent, err := svc.Create(ctx, CreateInput{Name: "Accessories"})
	require.NoError(t, err)
	child, err := svc.Create(ctx, CreateInput{Name: "Scarves", ParentID: &parent.ID})
	require.NoError(t, err)

	err = svc.Delete(ctx, parent.ID)
	requireCode(t, err, pkgerrors.CodeInvariant)

	childRow := models.Category{ID: child.ID}
	color := testdb.MustColor(t, conn, "Red", "#FF0000")
	size := testdb.MustSize(t, conn, "M", 2)
	testdb.MustProduct(t, conn, "Silk scarf", &childRow, color, testdb.StockLine{Size: size, Stock: 3, Price: "120.00"})

	err = svc.Delete(ctx, child.ID)
	requireCode(t, err, pkgerrors.CodeInvariant)

	err = svc.Delete(ctx, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestDeleteRemovesLeafCategory(t *testing.T) {
	svc, conn := newTestService(t, 0)
	ctx := context.Background()

	leaf, err := svc.Create(ctx, CreateInput{Name: "Socks"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, leaf.ID))

	var count int64
	require.NoError(t, conn.Model(&models.Category{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestListHierarchyReturnsOneLevelOrderedByName(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	women, err := svc.Create(ctx, CreateInput{Name: "Women"})
	require.NoError(t, err)
	men, err := svc.Create(ctx, CreateInput{Name: "Men"})
	require.NoError(t, err)
	shirts, err := svc.Create(ctx, CreateInput{Name: "Shirts", ParentID: &men.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: "Boots", ParentID: &men.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: "Polos", ParentID: &shirts.ID})
	require.NoError(t, err)

	roots, err := svc.ListHierarchy(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	require.Equal(t, men.ID, roots[0].ID)
	require.Equal(t, women.ID, roots[1].ID)
	require.Len(t, roots[0].Children, 2)
	require.Equal(t, "Boots", roots[0].Children[0].Name)
	require.Equal(t, "Shirts", roots[0].Children[1].Name)
	require.Equal(t, 1, roots[0].Children[1].ChildCount)
	require.Empty(t, roots[1].Children)

	flat, err := svc.ListFlat(ctx)
	require.NoError(t, err)
	require.Len(t, flat, 5)
}

func TestGetReturnsParentAndChildren(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	men, err := svc.Create(ctx, CreateInput{Name: "Men"})
	require.NoError(t, err)
	shirts, err := svc.Create(ctx, CreateInput{Name: "Shirts", ParentID: &men.ID})
	require.NoError(t, err)

	detail, err := svc.Get(ctx, shirts.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Parent)
	require.Equal(t, men.ID, detail.Parent.ID)
	require.Empty(t, detail.Children)

	detail, err = svc.Get(ctx, men.ID)
	require.NoError(t, err)
	require.Nil(t, detail.Parent)
	require.Len(t, detail.Children, 1)

	_, err = svc.Get(ctx, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}
