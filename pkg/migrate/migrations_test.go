package migrate_test

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/db"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no migration matching %s", suffix)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func assertContainsAll(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		assert.True(t, strings.Contains(content, sub), "missing expected statement %q", sub)
	}
}

func TestMigrationDirIsValid(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))
}

func TestEmbeddedMigrationsMatchSourceDir(t *testing.T) {
	require.NoError(t, migrate.Validate(migrate.Migrations()))

	embedded, err := fs.Glob(migrate.Migrations(), "*.sql")
	require.NoError(t, err)
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	require.NoError(t, err)
	require.Len(t, embedded, len(onDisk))
}

func TestNewRunnerRequiresDB(t *testing.T) {
	_, err := migrate.NewRunner(nil, nil, nil)
	require.Error(t, err)
}

func TestCategoriesMigrationEnforcesTreeRules(t *testing.T) {
	assertContainsAll(t, readMigration(t, "create_categories_table"), []string{
		"CREATE TABLE IF NOT EXISTS categories",
		"REFERENCES categories(id) ON DELETE RESTRICT",
		"CONSTRAINT categories_slug_key UNIQUE (slug)",
		"CHECK (parent_id IS NULL OR parent_id <> id)",
	})
}

func TestCatalogMigrationGuardsStock(t *testing.T) {
	assertContainsAll(t, readMigration(t, "create_catalog_tables"), []string{
		"CREATE TABLE IF NOT EXISTS size_stocks",
		"CHECK (stock >= 0)",
		"CHECK (reserved_stock >= 0)",
		"CHECK (reserved_stock <= stock)",
		"price numeric(12,2) NOT NULL",
		"REFERENCES products(id) ON DELETE CASCADE",
		"REFERENCES product_colors(id) ON DELETE CASCADE",
		"CHECK (discount_percentage BETWEEN 0 AND 100)",
		"CONSTRAINT colors_name_key_key UNIQUE (name_key)",
	})
}

func TestOrdersMigrationContainsLifecycle(t *testing.T) {
	assertContainsAll(t, readMigration(t, "create_orders_tables"), []string{
		"CONSTRAINT orders_ref_id_key UNIQUE (ref_id)",
		"'pending', 'confirmed', 'shipped', 'delivered', 'cancelled'",
		"REFERENCES orders(id) ON DELETE CASCADE",
		"REFERENCES size_stocks(id) ON DELETE RESTRICT",
		"CHECK (quantity > 0)",
	})
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Size Weight")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_size_weight.sql"))
	require.NoError(t, migrate.ValidateDir(dir))

	_, err = migrate.CreateSQLMigration(dir, "!!!")
	require.Error(t, err)
}

func TestValidateRejectsBadFiles(t *testing.T) {
	badName := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(badName, "001_bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, migrate.ValidateDir(badName))

	noDown := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(noDown, "20260101000000_only_up.sql"), []byte("-- +goose Up\nSELECT 1;\n"), 0o644))
	require.ErrorContains(t, migrate.ValidateDir(noDown), "+goose Down")
}

func TestAutoMigrateModelsOnSQLite(t *testing.T) {
	dsn := fmt.Sprintf("file:migrate_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, migrate.AutoMigrateModels(context.Background(), db.NewFromGorm(conn)))
	for _, table := range []string{"categories", "products", "size_stocks", "orders", "order_items", "admin_users", "outbox_events"} {
		assert.True(t, conn.Migrator().HasTable(table), "table %s", table)
	}
}
