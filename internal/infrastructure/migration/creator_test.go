package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/sisl/eshop/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add quotation lines", "add_quotation_lines"},
		{"Add-Quotation-Lines", "add_quotation_lines"},
		{"ADD_BRAND_LOGO", "add_brand_logo"},
		{"add__product__sku", "add_product_sku"},
		{"Index 2 orders", "index_2_orders"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")
	now := time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)

	mf, err := createMigrationAt(dir, "Add banner position", "Order banners explicitly", now)
	require.NoError(t, err)

	assert.Equal(t, "20240502083000", mf.Version)
	assert.Equal(t, filepath.Join(dir, "20240502083000_add_banner_position.up.sql"), mf.UpPath)
	assert.Equal(t, filepath.Join(dir, "20240502083000_add_banner_position.down.sql"), mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: add_banner_position")
	assert.Contains(t, string(up), "-- Description: Order banners explicitly")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")
}

func TestCreateMigration_Errors(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)

	_, err := createMigrationAt(dir, "!!!", "", now)
	assert.Error(t, err)

	_, err = createMigrationAt(dir, "add index", "", now)
	require.NoError(t, err)
	_, err = createMigrationAt(dir, "Add-Index", "", now.Add(time.Hour))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"20240302000000_b.up.sql":   {},
		"20240302000000_b.down.sql": {},
		"20240301000000_a.up.sql":   {},
		"20240301000000_a.down.sql": {},
		"README.md":                 {},
	}
	names, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"20240301000000_a", "20240302000000_b"}, names)

	_, err = ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "missing")))
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, name := range names {
		_, err := migrations.FS.Open(name + ".down.sql")
		assert.NoError(t, err, "missing rollback for %s", name)
	}

	up, err := migrations.FS.ReadFile(names[len(names)-1] + ".up.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(up), "idx_quotations_order_number"))
}
