// bolt.go: bbolt-backed configuration backend
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

// Package bolt persists conftree records in a single bbolt file, one
// bucket, one key per record. It fits the embedded use case: crash-safe,
// no server, a single file to ship.
package bolt

import (
	"time"

	"github.com/agilira/go-errors"
	"github.com/confkit/conftree"
	"go.etcd.io/bbolt"
)

var bucketName = []byte("conftree")

// Backend is a conftree backend over one bbolt database file.
type Backend struct {
	db *bbolt.DB
}

// Open opens (or creates) the database file and its bucket.
func Open(path string) (*Backend, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, conftree.ErrCodeNoData, "failed to open bolt database").
			WithContext("path", path)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, conftree.ErrCodeNoData, "failed to create bucket")
	}
	return &Backend{db: db}, nil
}

// Load returns a copy of the stored value; bbolt values are only valid
// inside the transaction.
func (b *Backend) Load(key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return errors.New(conftree.ErrCodeNotFound, "no record for key").
				WithContext("key", key)
		}
		value = make([]byte, len(v))
		copy(value, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Store writes value under key.
func (b *Backend) Store(key string, value []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	})
}

// Delete removes the record for key; absent keys fail with
// ErrCodeNotFound.
func (b *Backend) Delete(key string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket.Get([]byte(key)) == nil {
			return errors.New(conftree.ErrCodeNotFound, "no record for key").
				WithContext("key", key)
		}
		return bucket.Delete([]byte(key))
	})
}

// Close closes the database file.
func (b *Backend) Close() error {
	return b.db.Close()
}
