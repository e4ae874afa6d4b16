// Package testutil provides shared test helpers for seeding catalogs and
// archive fixtures.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/models"
)

// TestCatalog creates a temporary SQLite catalog that is automatically
// cleaned up.
func TestCatalog(t *testing.T) *catalog.DB {
	t.Helper()
	return TestCatalogAt(t, filepath.Join(t.TempDir(), "catalog-test.db"))
}

// TestCatalogAt creates a catalog at an explicit path.
func TestCatalogAt(t *testing.T, path string) *catalog.DB {
	t.Helper()
	db, err := catalog.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SeedCourse inserts a course row.
func SeedCourse(t *testing.T, db *catalog.DB, c models.Course) {
	t.Helper()
	mustExec(t, db, `INSERT INTO courses (slug, name) VALUES (?, ?)`, c.Slug, c.Name)
}

// SeedModule inserts a module row.
func SeedModule(t *testing.T, db *catalog.DB, m models.Module) {
	t.Helper()
	mustExec(t, db, `
		INSERT INTO modules (slug, course_slug, name, description, ordinal)
		VALUES (?, ?, ?, ?, ?)`,
		m.Slug, m.CourseSlug, m.Name, m.Description, m.Ordinal)
}

// SeedItem inserts an item row at the given stored position.
func SeedItem(t *testing.T, db *catalog.DB, it models.Item, position int) {
	t.Helper()
	mustExec(t, db, `
		INSERT INTO items (slug, module_slug, name, type, content, position)
		VALUES (?, ?, ?, ?, ?, ?)`,
		it.Slug, it.ModuleSlug, it.Name, it.Type, it.Content, position)
}

// SeedReference inserts a course reference row.
func SeedReference(t *testing.T, db *catalog.DB, r models.Reference, position int) {
	t.Helper()
	mustExec(t, db, `
		INSERT INTO course_references (slug, course_slug, name, content, position)
		VALUES (?, ?, ?, ?, ?)`,
		r.Slug, r.CourseSlug, r.Name, r.Content, position)
}

// SeedVideoAsset inserts a video asset row.
func SeedVideoAsset(t *testing.T, db *catalog.DB, v models.VideoAsset) {
	t.Helper()
	mustExec(t, db, `
		INSERT INTO video_assets (item_slug, saved_path, subtitles)
		VALUES (?, ?, ?)`,
		v.ItemSlug, v.SavedPath, v.Subtitles)
}

// SeedAsset inserts an asset row.
func SeedAsset(t *testing.T, db *catalog.DB, a models.Asset) {
	t.Helper()
	mustExec(t, db, `
		INSERT INTO assets (id, course_slug, type, name, extension, saved_path)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.CourseSlug, a.Type, a.Name, a.Extension, a.SavedPath)
}

// SeedItemAsset attaches an asset to an item.
func SeedItemAsset(t *testing.T, db *catalog.DB, itemSlug, assetID string) {
	t.Helper()
	mustExec(t, db, `INSERT INTO item_assets (item_slug, asset_id) VALUES (?, ?)`, itemSlug, assetID)
}

// WriteFile writes an archive fixture under root and returns its
// root-relative path.
func WriteFile(t *testing.T, root, rel string, data []byte) string {
	t.Helper()
	abs := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return rel
}

func mustExec(t *testing.T, db *catalog.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Conn().Exec(query, args...); err != nil {
		t.Fatalf("seed: %v", err)
	}
}
