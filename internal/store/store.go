// Package store persists the canonical swim records in PostgreSQL.
//
// All writes are idempotent ("insert, ignore on conflict"): concurrent imports
// of overlapping data are safe without in-process locks, and re-uploading a
// file is a no-op at the storage boundary.
package store

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed schema.sql
var schemaSQL string

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store provides access to the swimmer, swimmer_time and entries_load tables.
type Store struct {
	db DBTX
}

// New creates a Store on top of a pool or transaction.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// Init applies the embedded schema. Every statement is idempotent
// (CREATE ... IF NOT EXISTS), so Init is safe to run on every startup.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
