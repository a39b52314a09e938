package classification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteResolver resolves categories from a shared sqlite database. Each
// category is one row; parent_id supports sub-category listings.
type SQLiteResolver struct {
	db *sql.DB
}

// NewSQLiteResolver creates the category table when needed.
func NewSQLiteResolver(db *sql.DB) (*SQLiteResolver, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS depot_categories (
		class_id  TEXT NOT NULL,
		categ_id  TEXT NOT NULL,
		parent_id TEXT NOT NULL DEFAULT '',
		label     TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (class_id, categ_id)
	)`); err != nil {
		return nil, fmt.Errorf("creating category table: %w", err)
	}
	return &SQLiteResolver{db: db}, nil
}

// Add registers one category.
func (r *SQLiteResolver) Add(ctx context.Context, classID, categID, parentID, label string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO depot_categories
		(class_id, categ_id, parent_id, label) VALUES (?, ?, ?, ?)
		ON CONFLICT (class_id, categ_id) DO UPDATE SET parent_id = excluded.parent_id, label = excluded.label`,
		classID, categID, parentID, label)
	if err != nil {
		return fmt.Errorf("adding category %s/%s: %w", classID, categID, err)
	}
	return nil
}

func (r *SQLiteResolver) Exists(ctx context.Context, classID, categID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM depot_categories WHERE class_id = ? AND categ_id = ?",
		classID, categID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Children returns the category ids directly below parentID.
func (r *SQLiteResolver) Children(ctx context.Context, classID, parentID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT categ_id FROM depot_categories WHERE class_id = ? AND parent_id = ? ORDER BY categ_id",
		classID, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var children []string
	for rows.Next() {
		var categID string
		if err := rows.Scan(&categID); err != nil {
			return nil, err
		}
		children = append(children, categID)
	}
	return children, rows.Err()
}

// Close is a no-op; the shared database handle is closed by its owner.
func (r *SQLiteResolver) Close() error {
	return nil
}
