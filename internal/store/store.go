// Package store persists the registration table of a finished pass to SQLite
// so later stages can look derivatives up without re-running verification.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // SQLite

	"github.com/funvibe/derivcheck/internal/derivative"
	"github.com/funvibe/derivcheck/internal/registry"
)

const schema = `
CREATE TABLE IF NOT EXISTS passes (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id  TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS registrations (
    pass_id    TEXT NOT NULL,
    id         TEXT NOT NULL,
    original   TEXT NOT NULL,
    subset     TEXT NOT NULL,
    kind       TEXT NOT NULL,
    derivative TEXT NOT NULL,
    seq        INTEGER NOT NULL,
PRIMARY KEY (pass_id, original, subset, kind));
`

// Store is a registration snapshot database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the snapshot database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema in %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the entries of pass, replacing anything saved for it before.
// Saving makes pass the newest one.
func (s *Store) Save(ctx context.Context, pass string, entries []registry.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM passes WHERE id = ?`, pass); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO passes (id) VALUES (?)`, pass); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM registrations WHERE pass_id = ?`, pass); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO registrations
        (pass_id, id, original, subset, kind, derivative, seq) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, pass, e.ID, e.Key.Original, e.Key.Subset, e.Key.Kind.String(), e.Derivative, e.Seq); err != nil {
			return fmt.Errorf("saving %s: %w", e.Key, err)
		}
	}
	return tx.Commit()
}

// SaveTable snapshots every entry of t under pass.
func (s *Store) SaveTable(ctx context.Context, pass string, t *registry.Table) error {
	return s.Save(ctx, pass, t.Entries())
}

// Lookup answers lookup(original, subset, kind) from the newest pass that
// registered the key. Passes saved from separate manifests all stay visible.
func (s *Store) Lookup(ctx context.Context, original string, subset derivative.Subset, kind derivative.Kind) (registry.Entry, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT r.id, r.original, r.subset, r.kind, r.derivative, r.seq
        FROM registrations r JOIN passes p ON p.id = r.pass_id
        WHERE r.original = ? AND r.subset = ? AND r.kind = ?
        ORDER BY p.seq DESC LIMIT 1`,
		original, subset.Key(), kind.String())
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return registry.Entry{}, false, nil
	}
	if err != nil {
		return registry.Entry{}, false, err
	}
	return e, true, nil
}

// Entries returns the entries saved for pass in insertion order.
func (s *Store) Entries(ctx context.Context, pass string) ([]registry.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, original, subset, kind, derivative, seq FROM registrations
        WHERE pass_id = ? ORDER BY seq`, pass)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []registry.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (registry.Entry, error) {
	var e registry.Entry
	var kind string
	if err := row.Scan(&e.ID, &e.Key.Original, &e.Key.Subset, &kind, &e.Derivative, &e.Seq); err != nil {
		return registry.Entry{}, err
	}
	k, err := derivative.ParseKind(kind)
	if err != nil {
		return registry.Entry{}, err
	}
	e.Key.Kind = k
	return e, nil
}
