// Package table is a crash-consistent, single-table row store on SQLite.
//
// Every mutation runs inside a transaction that is either committed or
// rolled back before Update returns, so a crash never leaves a partial row.
package table

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName         = "sqlite"
	defaultBusyTimeout = 5 * time.Second
)

// DB is an open SQLite database file
type DB struct {
	sql  *sql.DB
	path string
}

type options struct {
	busyTimeout time.Duration
}

type Option func(*options)

// WithBusyTimeout sets how long a statement waits on a lock held by another connection
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		o.busyTimeout = d
	}
}

// Open opens the database file at path, creating it if it does not exist
func Open(path string, opts ...Option) (*DB, error) {
	o := options{busyTimeout: defaultBusyTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)", path, o.busyTimeout.Milliseconds())
	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// one connection keeps every transaction on the same handle
	sqlDB.SetMaxOpenConns(1)

	if err = sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &DB{sql: sqlDB, path: path}, nil
}

// Path returns the file the database was opened from
func (db *DB) Path() string {
	return db.path
}

// CreateTableIfAbsent provisions the table described by schema.
// An existing table is reused as long as its columns match.
func (db *DB) CreateTableIfAbsent(schema Schema) (*Table, error) {
	if err := schema.validate(); err != nil {
		return nil, err
	}

	t := &Table{db: db, schema: schema}
	err := t.Update(func(tx *Tx) error {
		if _, err := tx.tx.Exec(schema.createTableStmt()); err != nil {
			return fmt.Errorf("create table %s: %w", schema.Name, err)
		}
		for _, stmt := range schema.createIndexStmts() {
			if _, err := tx.tx.Exec(stmt); err != nil {
				return fmt.Errorf("create index on %s: %w", schema.Name, err)
			}
		}
		return tx.checkColumns()
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Vacuum rebuilds the file, returning pages freed by deletes to the filesystem
func (db *DB) Vacuum() error {
	if _, err := db.sql.Exec("VACUUM"); err != nil {
		return fmt.Errorf("vacuum %s: %w", db.path, err)
	}
	return nil
}

func (db *DB) Close() error {
	return db.sql.Close()
}

// Table is a handle on one table of a DB
type Table struct {
	db     *DB
	schema Schema
}

func (t *Table) Schema() Schema {
	return t.schema
}

// Update runs fn in a read-write transaction.
// The transaction commits if fn returns nil and rolls back otherwise, including on panic.
func (t *Table) Update(fn func(tx *Tx) error) (err error) {
	sqlTx, err := t.db.sql.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = sqlTx.Rollback()
			return
		}
		if err = sqlTx.Commit(); err != nil {
			err = fmt.Errorf("commit: %w", err)
		}
	}()

	return fn(&Tx{tx: sqlTx, schema: t.schema})
}

// View runs fn in a transaction that is always rolled back
func (t *Table) View(fn func(tx *Tx) error) error {
	sqlTx, err := t.db.sql.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()
	return fn(&Tx{tx: sqlTx, schema: t.schema})
}

// SelectAll returns the rows matching p, ordered by key
func (t *Table) SelectAll(p Predicate) ([]Row, error) {
	var rows []Row
	err := t.View(func(tx *Tx) error {
		var err error
		rows, err = tx.SelectAll(p)
		return err
	})
	return rows, err
}
