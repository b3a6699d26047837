package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Schema names used by adapters. The current document's tables live in
// main; the baseline document's tables live in an attached database.
const (
	MainSchema     = "main"
	BaselineSchema = "baseline"
)

// Store is the in-memory SQLite engine behind one adapter.
//
// An in-memory database belongs to the connection that created it, so the
// Store pins exactly one connection for its whole life and runs every
// statement on it.
type Store struct {
	db   *sql.DB
	conn *sql.Conn
}

// NewStore opens a private in-memory database.
func NewStore() (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(context.Background())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("pin connection: %w", err)
	}
	if err := conn.PingContext(context.Background()); err != nil {
		conn.Close()
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db, conn: conn}, nil
}

// Build opens a store holding sc in both schemas, loads the current rows
// into main and the baseline rows, if any, into baseline, then seals it.
// The baseline schema always exists so queries may reference it; it is
// empty when baseline is nil.
func Build(sc *Schema, current, baseline map[string][][]any) (*Store, error) {
	s, err := NewStore()
	if err != nil {
		return nil, err
	}
	steps := []func() error{
		func() error { return s.Attach(BaselineSchema) },
		func() error { return s.Migrate(MainSchema, sc) },
		func() error { return s.Migrate(BaselineSchema, sc) },
		func() error { return s.LoadAll(MainSchema, sc, current) },
		func() error { return s.LoadAll(BaselineSchema, sc, baseline) },
		s.Seal,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close releases the pinned connection and the database.
func (s *Store) Close() error {
	return errors.Join(s.conn.Close(), s.db.Close())
}

// Attach adds an empty in-memory database under the given schema name.
func (s *Store) Attach(name string) error {
	if !validIdent(name) {
		return fmt.Errorf("attach: invalid schema name %q", name)
	}
	if _, err := s.conn.ExecContext(context.Background(), "ATTACH DATABASE ':memory:' AS "+name); err != nil {
		return fmt.Errorf("attach %s: %w", name, err)
	}
	return nil
}

// Migrate creates every table of sc inside the named schema. Idempotent.
func (s *Store) Migrate(name string, sc *Schema) error {
	if !validIdent(name) {
		return fmt.Errorf("migrate: invalid schema name %q", name)
	}
	if _, err := s.conn.ExecContext(context.Background(), sc.DDL(name)); err != nil {
		return fmt.Errorf("migrate %s: %w", name, err)
	}
	return nil
}

// Load inserts rows into one table of the named schema within a single
// transaction. Each row must carry one value per table column, in column
// order.
func (s *Store) Load(name string, t Table, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	ctx := context.Background()
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("load %s.%s: begin: %w", name, t.Name, err)
	}
	defer tx.Rollback()

	cols := t.ColumnNames()
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s.%s (%s) VALUES (%s)",
		name, t.Name, strings.Join(cols, ", "), placeholderList(len(cols)),
	))
	if err != nil {
		return fmt.Errorf("load %s.%s: prepare: %w", name, t.Name, err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row) != len(cols) {
			return fmt.Errorf("load %s.%s: row %d has %d values, want %d", name, t.Name, i, len(row), len(cols))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("load %s.%s: row %d: %w", name, t.Name, i, err)
		}
	}
	return tx.Commit()
}

// LoadAll loads rows for every table of sc, keyed by table name, in schema
// order. Tables without rows stay empty.
func (s *Store) LoadAll(name string, sc *Schema, rows map[string][][]any) error {
	for table := range rows {
		if _, ok := sc.Table(table); !ok {
			return fmt.Errorf("load: revision %d schema has no table %q", sc.Revision, table)
		}
	}
	for _, t := range sc.Tables {
		if err := s.Load(name, t, rows[t.Name]); err != nil {
			return err
		}
	}
	return nil
}

// Seal makes the connection read-only. Writes attempted afterwards fail when
// they execute.
func (s *Store) Seal() error {
	if _, err := s.conn.ExecContext(context.Background(), "PRAGMA query_only = ON"); err != nil {
		return fmt.Errorf("seal: %w", err)
	}
	return nil
}

// Prepare compiles query on the pinned connection.
func (s *Store) Prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	return s.conn.PrepareContext(ctx, query)
}
