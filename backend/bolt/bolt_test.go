// bolt_test.go: bbolt backend tests
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package bolt

import (
	"path/filepath"
	"testing"

	"github.com/confkit/conftree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestBackend(t *testing.T) (*Backend, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conftree.db")
	b, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b, path
}

func TestStoreLoadDelete(t *testing.T) {
	b, _ := openTestBackend(t)

	require.NoError(t, b.Store("/conf/food/bread/white", []byte("9.99\x00\x00")))

	v, err := b.Load("/conf/food/bread/white")
	require.NoError(t, err)
	assert.Equal(t, []byte("9.99\x00\x00"), v)

	require.NoError(t, b.Delete("/conf/food/bread/white"))
	_, err = b.Load("/conf/food/bread/white")
	assert.True(t, conftree.HasCode(err, conftree.ErrCodeNotFound))
}

func TestMissingKey(t *testing.T) {
	b, _ := openTestBackend(t)

	_, err := b.Load("/conf/absent")
	assert.True(t, conftree.HasCode(err, conftree.ErrCodeNotFound))
	err = b.Delete("/conf/absent")
	assert.True(t, conftree.HasCode(err, conftree.ErrCodeNotFound))
}

func TestRecordsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conftree.db")

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

func TestOpenBadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "no", "such", "dir", "x.db"))
	assert.Error(t, err)
}
