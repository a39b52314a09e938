package linktable

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"

	_ "modernc.org/sqlite"

	"github.com/depotkit/depot/internal/models"
)

var kindNameRe = regexp.MustCompile(`^[a-z0-9_]+$`)

// NewSQLiteFactory returns a backend factory creating one edge table per
// kind, all sharing db.
func NewSQLiteFactory(db *sql.DB, logger *slog.Logger) BackendFactory {
	return func(kind models.EdgeKind) (Backend, error) {
		return newSQLiteBackend(db, kind, logger)
	}
}

// sqliteBackend stores the edges of one kind in its own table.
type sqliteBackend struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
}

func newSQLiteBackend(db *sql.DB, kind models.EdgeKind, logger *slog.Logger) (*sqliteBackend, error) {
	if !kindNameRe.MatchString(string(kind)) {
		return nil, fmt.Errorf("edge kind %q cannot be mapped to a table name", kind)
	}
	b := &sqliteBackend{db: db, table: "links_" + string(kind), logger: logger}
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		from_id   TEXT NOT NULL,
		from_type TEXT NOT NULL,
		to_key    TEXT NOT NULL,
		PRIMARY KEY (from_id, to_key)
	)`, b.table)
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("creating table %s: %w", b.table, err)
	}
	index := fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_to ON %s (to_key)", b.table, b.table)
	if _, err := db.Exec(index); err != nil {
		return nil, fmt.Errorf("indexing table %s: %w", b.table, err)
	}
	return b, nil
}

func (b *sqliteBackend) Create(ctx context.Context, from, fromType, to string) error {
	_, err := b.db.ExecContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (from_id, from_type, to_key) VALUES (?, ?, ?) ON CONFLICT DO NOTHING",
		b.table), from, fromType, to)
	return err
}

func (b *sqliteBackend) Delete(ctx context.Context, from string) error {
	_, err := b.db.ExecContext(ctx, fmt.Sprintf(
		"DELETE FROM %s WHERE from_id = ?", b.table), from)
	return err
}

func (b *sqliteBackend) CountTo(ctx context.Context, to string, q *CountQuery) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE ", b.table)
	args := []any{}
	if q != nil && q.Prefix {
		// GLOB keeps underscores literal, unlike LIKE.
		query += "to_key GLOB ?"
		args = append(args, globEscape(to)+"*")
	} else {
		query += "to_key = ?"
		args = append(args, to)
	}
	if q != nil && q.FromType != "" {
		query += " AND from_type = ?"
		args = append(args, q.FromType)
	}
	var count int
	if err := b.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (b *sqliteBackend) SourcesTo(ctx context.Context, to string) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT from_id FROM %s WHERE to_key = ? ORDER BY from_id", b.table), to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sources []string
	for rows.Next() {
		var from string
		if err := rows.Scan(&from); err != nil {
			return nil, err
		}
		sources = append(sources, from)
	}
	return sources, rows.Err()
}

// Close is a no-op; the shared database handle is closed by its owner.
func (b *sqliteBackend) Close() error {
	return nil
}

// globEscape neutralizes GLOB metacharacters in a literal prefix.
func globEscape(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '*', '?', '[':
			out = append(out, '[', r, ']')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
