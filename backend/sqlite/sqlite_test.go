// sqlite_test.go: SQLite backend tests
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/confkit/conftree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := Open(filepath.Join(t.TempDir(), "conftree.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestStoreLoadDelete(t *testing.T) {
	b := openTestBackend(t)

	require.NoError(t, b.Store("/conf/orders/0", []byte{1, 2, 3}))

	v, err := b.Load("/conf/orders/0")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, v)

	require.NoError(t, b.Delete("/conf/orders/0"))
	_, err = b.Load("/conf/orders/0")
	assert.True(t, conftree.HasCode(err, conftree.ErrCodeNotFound))
}

func TestMissingKey(t *testing.T) {
	b := openTestBackend(t)

	_, err := b.Load("/conf/absent")
	assert.True(t, conftree.HasCode(err, conftree.ErrCodeNotFound))
	err = b.Delete("/conf/absent")
	assert.True(t, conftree.HasCode(err, conftree.ErrCodeNotFound))
}

func TestUpsert(t *testing.T) {
	b := openTestBackend(t)

	require.NoError(t, b.Store("/conf/a", []byte("old")))
	require.NoError(t, b.Store("/conf/a", []byte("new")))

	v, err := b.Load("/conf/a")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
}

func TestRecordsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conftree.sqlite")

	b, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, b.Store("/conf/a", []byte("persisted")))
	require.NoError(t, b.Close())

	b, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	v, err := b.Load("/conf/a")
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), v)
}
