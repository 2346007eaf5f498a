// backend.go: Persistence backend contract
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package conftree

// Backend is a key/value store handlers persist to. Keys are rendered
// paths prefixed with the registry's root label, e.g.
// "/conf/food/bread/white" or "/conf/orders/0". Values are opaque bytes.
//
// Load returns ErrCodeNotFound for absent keys. Backends that cannot
// remove records return ErrCodeNotSupported from Delete; the default
// delete handler propagates that, everything else is best effort.
//
// Implementations must be safe for concurrent use; drivers may be called
// from multiple goroutines.
type Backend interface {
	Load(key string) ([]byte, error)
	Store(key string, value []byte) error
	Delete(key string) error
}
