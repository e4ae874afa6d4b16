package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/raido/internal/models"
)

// Courses returns every archived course in slug order.
func (db *DB) Courses() ([]models.Course, error) {
	rows, err := db.conn.Query(`SELECT slug, name FROM courses ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("catalog: select courses: %w", err)
	}
	defer rows.Close()

	var out []models.Course
	for rows.Next() {
		var c models.Course
		if err := rows.Scan(&c.Slug, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ModulesOf returns a course's modules in ascending ordinal order.
func (db *DB) ModulesOf(courseSlug string) ([]models.Module, error) {
	rows, err := db.conn.Query(`
		SELECT slug, course_slug, name, description, ordinal
		FROM modules WHERE course_slug = ? ORDER BY ordinal
	`, courseSlug)
	if err != nil {
		return nil, fmt.Errorf("catalog: select modules: %w", err)
	}
	defer rows.Close()

	var out []models.Module
	for rows.Next() {
		var m models.Module
		if err := rows.Scan(&m.Slug, &m.CourseSlug, &m.Name, &m.Description, &m.Ordinal); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ItemsOf returns a module's items in stored order.
func (db *DB) ItemsOf(moduleSlug string) ([]models.Item, error) {
	rows, err := db.conn.Query(`
		SELECT slug, module_slug, name, type, COALESCE(content, '')
		FROM items WHERE module_slug = ? ORDER BY position
	`, moduleSlug)
	if err != nil {
		return nil, fmt.Errorf("catalog: select items: %w", err)
	}
	defer rows.Close()

	var out []models.Item
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(&it.Slug, &it.ModuleSlug, &it.Name, &it.Type, &it.Content); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ReferencesOf returns a course's references in stored order.
func (db *DB) ReferencesOf(courseSlug string) ([]models.Reference, error) {
	rows, err := db.conn.Query(`
		SELECT slug, course_slug, name, COALESCE(content, '')
		FROM course_references WHERE course_slug = ? ORDER BY position
	`, courseSlug)
	if err != nil {
		return nil, fmt.Errorf("catalog: select references: %w", err)
	}
	defer rows.Close()

	var out []models.Reference
	for rows.Next() {
		var r models.Reference
		if err := rows.Scan(&r.Slug, &r.CourseSlug, &r.Name, &r.Content); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// VideoAssetOf returns the item's video asset, or ok=false when the item has
// none. A lecture item without a video is an expected state, not an error.
func (db *DB) VideoAssetOf(itemSlug string) (*models.VideoAsset, bool, error) {
	var v models.VideoAsset
	err := db.conn.QueryRow(`
		SELECT item_slug, saved_path, subtitles FROM video_assets WHERE item_slug = ?
	`, itemSlug).Scan(&v.ItemSlug, &v.SavedPath, &v.Subtitles)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("catalog: select video asset: %w", err)
	}
	return &v, true, nil
}

// AssetByID returns the asset with the given identifier, or ok=false when the
// identifier is unknown. Archival and publishing are decoupled, so unknown
// identifiers are expected during partial runs.
func (db *DB) AssetByID(id string) (*models.Asset, bool, error) {
	var a models.Asset
	err := db.conn.QueryRow(`
		SELECT id, course_slug, type, name, extension, saved_path FROM assets WHERE id = ?
	`, id).Scan(&a.ID, &a.CourseSlug, &a.Type, &a.Name, &a.Extension, &a.SavedPath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("catalog: select asset: %w", err)
	}
	return &a, true, nil
}

// ItemAssetsOf returns the downloadable assets attached to an item, skipping
// rows whose file was never saved locally.
func (db *DB) ItemAssetsOf(itemSlug string) ([]models.Asset, error) {
	rows, err := db.conn.Query(`
		SELECT a.id, a.course_slug, a.type, a.name, a.extension, a.saved_path
		FROM item_assets ia JOIN assets a ON a.id = ia.asset_id
		WHERE ia.item_slug = ? AND a.saved_path != ''
	`, itemSlug)
	if err != nil {
		return nil, fmt.Errorf("catalog: select item assets: %w", err)
	}
	defer rows.Close()

	var out []models.Asset
	for rows.Next() {
		var a models.Asset
		if err := rows.Scan(&a.ID, &a.CourseSlug, &a.Type, &a.Name, &a.Extension, &a.SavedPath); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
