// Package sqlite is the sqlite backed implementation of [spdb.Repository].
package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jdholdren/spdb/internal/migrations"
	"github.com/jdholdren/spdb/internal/spdb"
)

// Memory is the path that opens an ephemeral, in-memory store.
const Memory = ":memory:"

// Ensure Repo implements the Repository interface
var _ spdb.Repository = (*Repo)(nil)

type Repo struct {
	db *sqlx.DB
	tx *sqlx.Tx // Set when the repo is bound to a transaction
}

func New(db *sqlx.DB) Repo {
	return Repo{db: db}
}

// Open connects to the store at path, creating and migrating it as needed.
func Open(path string) (*sqlx.DB, error) {
	dsn := path
	if path != Memory {
		dsn = fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}

	dbx, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// Every connection to :memory: is its own database, and there is only ever
	// one writer anyway.
	dbx.SetMaxOpenConns(1)

	if err := migrations.Run(dbx); err != nil {
		dbx.Close()
		return nil, fmt.Errorf("error running migrations: %w", err)
	}

	return dbx, nil
}

func (r Repo) Atomically(ctx context.Context, fn func(spdb.Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(Repo{db: r.db, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

// The connection or transaction reads should go through.
func (r Repo) ext() sqlx.ExtContext {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Runs fn in the bound transaction, or in a new one committed when fn succeeds.
func (r Repo) inTx(ctx context.Context, fn func(q sqlx.ExtContext) error) error {
	return r.Atomically(ctx, func(repo spdb.Repository) error {
		return fn(repo.(Repo).tx)
	})
}

func isConstraintErr(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}
