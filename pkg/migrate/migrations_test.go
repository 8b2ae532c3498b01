package migrate_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/resellerhub-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1, "expected exactly one %s migration", suffix)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestMigrationsDirIsValid(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))
}

func TestResellerLevelsSeedCoversAllTiers(t *testing.T) {
	content := readMigration(t, "create_reseller_levels")
	for _, row := range []string{
		"(1, 'Bronze', 5, 2, 0)",
		"(3, 'Gold', 12, 4, 5000000)",
		"(10, 'Legendary', 35, 12, 100000000)",
	} {
		require.Contains(t, content, row)
	}
	require.Contains(t, content, "CHECK (level BETWEEN 1 AND 10)")
}

func TestSettlementConstraintsPresent(t *testing.T) {
	checks := map[string][]string{
		"create_commissions": {
			"CREATE UNIQUE INDEX IF NOT EXISTS ux_commissions_order_reseller_level ON commissions (order_id, reseller_id, level)",
			"CHECK (status IN ('pending', 'paid', 'cancelled'))",
		},
		"create_orders": {
			"CHECK (total_amount = subtotal + shipping_cost + tax_amount - discount_amount)",
			"CHECK (quantity > 0)",
		},
		"create_products":     {"CHECK (stock_quantity >= 0)"},
		"create_cart_items":   {"ux_cart_items_account_product ON cart_items (account_id, product_id)"},
		"create_pos_sessions": {"WHERE status = 'open'"},
		"create_accounts":     {"'^AFF[0-9A-F]{8}$'"},
		"add_order_item_options": {
			"ADD COLUMN IF NOT EXISTS product_options jsonb NULL",
			"ADD COLUMN IF NOT EXISTS shipping_service_type text NULL",
		},
	}
	for suffix, statements := range checks {
		content := readMigration(t, suffix)
		for _, stmt := range statements {
			if !strings.Contains(content, stmt) {
				t.Errorf("%s: missing %q", suffix, stmt)
			}
		}
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Payout Batches!")
	require.NoError(t, err)
	require.Regexp(t, `\d{14}_add_payout_batches\.sql$`, path)
	require.NoError(t, migrate.ValidateDir(dir))

	_, err = migrate.CreateSQLMigration(dir, "!!!")
	require.Error(t, err)
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_init.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, migrate.ValidateDir(dir))
}

func TestValidateDirChecksAnnotations(t *testing.T) {
	cases := map[string]string{
		"down before up": "-- +goose Down\n-- +goose Up\n",
		"unterminated":   "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n",
		"stray end":      "-- +goose Up\n-- +goose StatementEnd\n-- +goose Down\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_broken.sql"), []byte(body), 0o644))
			require.Error(t, migrate.ValidateDir(dir))
		})
	}
}

func TestEmbeddedMigrationsMatchDirectory(t *testing.T) {
	fsys, err := migrate.Source("")
	require.NoError(t, err)
	require.NoError(t, migrate.ValidateFS(fsys))

	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	require.NoError(t, err)
	embedded, err := fs.Glob(fsys, "*.sql")
	require.NoError(t, err)
	require.Len(t, embedded, len(onDisk))

	latest, err := migrate.LatestVersion(fsys)
	require.NoError(t, err)
	require.Equal(t, int64(20260105090800), latest)
}

func TestCreateSQLMigrationBumpsPastNewest(t *testing.T) {
	dir := t.TempDir()
	future := "29991231235959_from_the_future.sql"
	require.NoError(t, os.WriteFile(filepath.Join(dir, future), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	path, err := migrate.CreateSQLMigration(dir, "payout batches")
	require.NoError(t, err)
	require.Equal(t, "30000101000000_payout_batches.sql", filepath.Base(path))
	require.NoError(t, migrate.ValidateDir(dir))
}
