// Package symindex keeps the top-level symbols of checked modules in a
// SQLite database so editors and tools can look declarations up by name.
package symindex

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/funvibe/tlcheck/internal/symbols"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS symbols (
	module   TEXT NOT NULL,
	check_id TEXT NOT NULL,
	name     TEXT NOT NULL,
	kind     TEXT NOT NULL,
	type     TEXT NOT NULL,
	file     TEXT NOT NULL,
	line     INTEGER NOT NULL,
	col      INTEGER NOT NULL,
	mutable  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS symbols_by_name ON symbols(name);
CREATE INDEX IF NOT EXISTS symbols_by_module ON symbols(module);
`

// Entry is one indexed declaration.
type Entry struct {
	Module  string
	CheckID string
	Name    string
	Kind    string
	Type    string
	File    string
	Line    int
	Column  int
	Mutable bool
}

type Index struct {
	db *sql.DB
}

// Open opens the index at path, or an in-memory one when path is empty.
func Open(path string) (*Index, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening symbol index: %w", err)
	}
	// An in-memory database lives in its connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating symbol index schema: %w", err)
	}
	return &Index{db: db}, nil
}

func (ix *Index) Close() error {
	return ix.db.Close()
}

// Index replaces the rows of moduleID with syms. An empty checkID is given a
// fresh one, which is returned.
func (ix *Index) Index(ctx context.Context, moduleID, checkID string, syms []symbols.Symbol) (string, error) {
	if checkID == "" {
		checkID = uuid.NewString()
	}
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM symbols WHERE module = ?`, moduleID); err != nil {
		return "", fmt.Errorf("clearing %s: %w", moduleID, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO symbols (module, check_id, name, kind, type, file, line, col, mutable) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, s := range syms {
		typ := "unknown"
		if s.Type != nil {
			typ = s.Type.String()
		}
		_, err := stmt.ExecContext(ctx, moduleID, checkID, s.Name, s.Kind.String(), typ,
			s.Span.File, s.Span.Start.Line, s.Span.Start.Column, s.Mutable)
		if err != nil {
			return "", fmt.Errorf("indexing %s.%s: %w", moduleID, s.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return checkID, nil
}

// Lookup returns every declaration named name, ordered by module.
func (ix *Index) Lookup(ctx context.Context, name string) ([]Entry, error) {
	return ix.query(ctx, `WHERE name = ? ORDER BY module, line, col`, name)
}

// Module returns the declarations of one module in source order.
func (ix *Index) Module(ctx context.Context, moduleID string) ([]Entry, error) {
	return ix.query(ctx, `WHERE module = ? ORDER BY line, col, name`, moduleID)
}

func (ix *Index) query(ctx context.Context, where string, arg any) ([]Entry, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT module, check_id, name, kind, type, file, line, col, mutable FROM symbols `+where, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Module, &e.CheckID, &e.Name, &e.Kind, &e.Type, &e.File, &e.Line, &e.Column, &e.Mutable); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
