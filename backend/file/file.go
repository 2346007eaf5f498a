// file.go: Filesystem-backed configuration backend
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

// Package file persists conftree records as one file per key under a base
// directory, through an afero filesystem so tests and embedders can swap
// in a memory-backed one.
package file

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/agilira/go-errors"
	"github.com/confkit/conftree"
	"github.com/spf13/afero"
)

// Backend maps record keys to files: "/conf/orders/0" becomes
// <dir>/conf/orders/0.
type Backend struct {
	fs  afero.Fs
	dir string
}

// New creates a backend rooted at dir on the given filesystem. Use
// afero.NewOsFs() for real storage, afero.NewMemMapFs() for tests.
func New(fs afero.Fs, dir string) *Backend {
	return &Backend{fs: fs, dir: dir}
}

// Load reads the record file for key.
func (b *Backend) Load(key string) ([]byte, error) {
	data, err := afero.ReadFile(b.fs, b.pathFor(key))
	if os.IsNotExist(err) {
		return nil, errors.New(conftree.ErrCodeNotFound, "no record for key").
			WithContext("key", key)
	}
	if err != nil {
		return nil, errors.Wrap(err, conftree.ErrCodeNoData, "record read failed").
			WithContext("key", key)
	}
	return data, nil
}

// Store writes the record file for key, creating directories as needed.
func (b *Backend) Store(key string, value []byte) error {
	path := b.pathFor(key)
	if err := b.fs.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, conftree.ErrCodeNoData, "record directory creation failed").
			WithContext("key", key)
	}
	if err := afero.WriteFile(b.fs, path, value, 0o600); err != nil {
		return errors.Wrap(err, conftree.ErrCodeNoData, "record write failed").
			WithContext("key", key)
	}
	return nil
}

// Delete removes the record file for key; absent keys fail with
// ErrCodeNotFound.
func (b *Backend) Delete(key string) error {
	err := b.fs.Remove(b.pathFor(key))
	if os.IsNotExist(err) {
		return errors.New(conftree.ErrCodeNotFound, "no record for key").
			WithContext("key", key)
	}
	if err != nil {
		return errors.Wrap(err, conftree.ErrCodeNoData, "record removal failed").
			WithContext("key", key)
	}
	return nil
}

// pathFor joins the key's segments under the base directory. Keys only
// contain registered names and item indices, so a simple join is enough;
// filepath.Clean drops any stray dot segments.
func (b *Backend) pathFor(key string) string {
	clean := filepath.Clean(strings.TrimPrefix(key, "/"))
	return filepath.Join(b.dir, clean)
}
