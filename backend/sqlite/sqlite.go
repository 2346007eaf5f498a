// sqlite.go: SQLite-backed configuration backend
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

// Package sqlite persists conftree records in a SQLite database. WAL mode
// keeps concurrent readers cheap and the single records table stays
// queryable with standard tooling, which is the point of choosing SQLite
// over a plain KV file.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/agilira/go-errors"
	"github.com/confkit/conftree"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS conftree_records (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
);
`

// Backend is a conftree backend over one SQLite database.
type Backend struct {
	db    *sql.DB
	load  *sql.Stmt
	store *sql.Stmt
	del   *sql.Stmt
}

// Open opens (or creates) the database and bootstraps the schema.
// WAL journaling plus a busy timeout make the store safe for concurrent
// use from several processes.
func Open(path string) (*Backend, error) {
	db, err := sql.Open("sqlite3",
		fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path))
	if err != nil {
		return nil, errors.Wrap(err, conftree.ErrCodeNoData, "failed to open sqlite database").
			WithContext("path", path)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, conftree.ErrCodeNoData, "failed to create records table")
	}

	b := &Backend{db: db}
	if b.load, err = db.Prepare("SELECT value FROM conftree_records WHERE key = ?"); err == nil {
		if b.store, err = db.Prepare(
			"INSERT INTO conftree_records (key, value) VALUES (?, ?) " +
				"ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = strftime('%s','now')"); err == nil {
			b.del, err = db.Prepare("DELETE FROM conftree_records WHERE key = ?")
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, conftree.ErrCodeNoData, "failed to prepare statements")
	}
	return b, nil
}

// Load returns the stored value for key.
func (b *Backend) Load(key string) ([]byte, error) {
	var value []byte
	err := b.load.QueryRow(key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, errors.New(conftree.ErrCodeNotFound, "no record for key").
			WithContext("key", key)
	}
	if err != nil {
		return nil, errors.Wrap(err, conftree.ErrCodeNoData, "load query failed").
			WithContext("key", key)
	}
	return value, nil
}

// Store upserts value under key.
func (b *Backend) Store(key string, value []byte) error {
	if _, err := b.store.Exec(key, value); err != nil {
		return errors.Wrap(err, conftree.ErrCodeNoData, "store failed").
			WithContext("key", key)
	}
	return nil
}

// Delete removes the record for key; absent keys fail with
// ErrCodeNotFound.
func (b *Backend) Delete(key string) error {
	res, err := b.del.Exec(key)
	if err != nil {
		return errors.Wrap(err, conftree.ErrCodeNoData, "delete failed").
			WithContext("key", key)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.New(conftree.ErrCodeNotFound, "no record for key").
			WithContext("key", key)
	}
	return nil
}

// Close releases the prepared statements and the database.
func (b *Backend) Close() error {
	_ = b.load.Close()
	_ = b.store.Close()
	_ = b.del.Close()
	return b.db.Close()
}
