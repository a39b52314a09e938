package xmltable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	_ "modernc.org/sqlite"

	"github.com/depotkit/depot/internal/models"
)

// tableNameRe restricts type ids that may become part of a table name.
var tableNameRe = regexp.MustCompile(`^[a-z0-9_]+$`)

// OpenSQLite opens (and creates if needed) the sqlite database file shared
// by all sqlite-backed stores.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}
	// modernc sqlite serializes writes internally; one connection avoids
	// SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("applying %s: %w", pragma, err)
		}
	}
	return db, nil
}

// NewSQLiteFactory returns a backend factory creating one document table
// per type id, all sharing db. Sequence state lives in a single
// depot_sequences table so allocation is an atomic UPSERT.
func NewSQLiteFactory(db *sql.DB, logger *slog.Logger) BackendFactory {
	return func(typeID string) (Backend, error) {
		return newSQLiteBackend(db, typeID, logger)
	}
}

// sqliteBackend stores the documents of one type in its own table.
type sqliteBackend struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
}

func newSQLiteBackend(db *sql.DB, typeID string, logger *slog.Logger) (*sqliteBackend, error) {
	if !tableNameRe.MatchString(typeID) {
		return nil, fmt.Errorf("type id %q cannot be mapped to a table name", typeID)
	}
	b := &sqliteBackend{db: db, table: "docs_" + typeID, logger: logger}
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id       TEXT PRIMARY KEY,
		number   INTEGER NOT NULL,
		raw      BLOB NOT NULL,
		modified TEXT NOT NULL
	)`, b.table)
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("creating table %s: %w", b.table, err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS depot_sequences (
		base TEXT PRIMARY KEY,
		next INTEGER NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("creating sequence table: %w", err)
	}
	return b, nil
}

func (b *sqliteBackend) Insert(ctx context.Context, id string, number int64, raw []byte) error {
	_, err := b.db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (id, number, raw, modified) VALUES (?, ?, ?, ?)", b.table),
		id, number, raw, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (b *sqliteBackend) Update(ctx context.Context, id string, raw []byte) error {
	res, err := b.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET raw = ?, modified = ? WHERE id = ?", b.table),
		raw, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	return nil
}

func (b *sqliteBackend) Delete(ctx context.Context, id string) error {
	_, err := b.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = ?", b.table), id)
	return err
}

func (b *sqliteBackend) Get(ctx context.Context, id string) ([]byte, error) {
	var raw []byte
	err := b.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT raw FROM %s WHERE id = ?", b.table), id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (b *sqliteBackend) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := b.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT 1 FROM %s WHERE id = ?", b.table), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (b *sqliteBackend) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx,
		fmt.Sprintf("SELECT id FROM %s ORDER BY id", b.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// NextNumber allocates inside one transaction: the sequence row is seeded
// from the highest stored number on first use, then bumped with an atomic
// UPSERT. GLOB avoids treating the underscore as a LIKE wildcard.
func (b *sqliteBackend) NextNumber(ctx context.Context, base string) (int64, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	seed := fmt.Sprintf(`INSERT INTO depot_sequences (base, next)
		SELECT ?, COALESCE(MAX(number), 0) FROM %s WHERE id GLOB ?
		ON CONFLICT(base) DO NOTHING`, b.table)
	if _, err := tx.ExecContext(ctx, seed, base, base+"_*"); err != nil {
		return 0, fmt.Errorf("seeding sequence %s: %w", base, err)
	}

	var next int64
	err = tx.QueryRowContext(ctx,
		"UPDATE depot_sequences SET next = next + 1 WHERE base = ? RETURNING next",
		base).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("incrementing sequence %s: %w", base, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return next, nil
}

// Close is a no-op; the shared database handle is closed by its owner.
func (b *sqliteBackend) Close() error {
	return nil
}
