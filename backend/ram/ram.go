// ram.go: In-memory configuration backend
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

// Package ram provides a map-backed conftree backend for tests, defaults
// and volatile staging stores.
package ram

import (
	"sync"

	"github.com/agilira/go-errors"
	"github.com/confkit/conftree"
)

// Backend stores records in a mutex-guarded map. Values are copied on
// both paths so callers can never alias internal state.
type Backend struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// New creates an empty in-memory backend.
func New() *Backend {
	return &Backend{records: make(map[string][]byte)}
}

// Load returns a copy of the stored value.
func (b *Backend) Load(key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.records[key]
	if !ok {
		return nil, errors.New(conftree.ErrCodeNotFound, "no record for key").
			WithContext("key", key)
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Store keeps a copy of value under key.
func (b *Backend) Store(key string, value []byte) error {
	in := make([]byte, len(value))
	copy(in, value)
	b.mu.Lock()
	b.records[key] = in
	b.mu.Unlock()
	return nil
}

// Delete removes the record for key.
func (b *Backend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.records[key]; !ok {
		return errors.New(conftree.ErrCodeNotFound, "no record for key").
			WithContext("key", key)
	}
	delete(b.records, key)
	return nil
}

// Len reports the number of stored records.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.records)
}

// Keys returns all stored keys, in no particular order.
func (b *Backend) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.records))
	for k := range b.records {
		keys = append(keys, k)
	}
	return keys
}
