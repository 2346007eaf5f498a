// handler_default.go: Generic handler operations for plain byte values
//
// DefaultOps covers handlers whose value is an opaque fixed-size byte
// span: set/get copy bytes, import/export/delete talk to the attached
// backend under the rendered path key. Custom handlers embed DefaultOps
// and override what they need (typically Verify or Apply).
//
// Backend failures inside per-item loops are logged and skipped so one
// bad record does not block the rest of an array; only a missing delete
// capability propagates.
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package conftree

import (
	"github.com/agilira/go-errors"
)

// DefaultOps implements Ops, Porter and Deleter for opaque byte values.
type DefaultOps struct{}

// Set copies the handler's span out of val and reports the bytes taken.
// A nil val zero-fills the span instead.
func (DefaultOps) Set(h *Handler, k OpKey, val []byte) (int, error) {
	sz := h.spanSize(k)
	data := h.data[k.Offset : k.Offset+sz]
	if val == nil {
		for i := range data {
			data[i] = 0
		}
		return 0, nil
	}
	if len(val) < sz {
		return 0, errors.New(ErrCodeNoBufferSpace, "value shorter than handler size").
			WithContext("path", k.Path).
			WithContext("need", sz)
	}
	copy(data, val)
	return sz, nil
}

// Get copies the handler's span into dst and reports the bytes written.
func (DefaultOps) Get(h *Handler, k OpKey, dst []byte) (int, error) {
	sz := h.spanSize(k)
	if len(dst) < sz {
		return 0, errors.New(ErrCodeNoBufferSpace, "destination shorter than handler size").
			WithContext("path", k.Path).
			WithContext("need", sz)
	}
	copy(dst, h.data[k.Offset:k.Offset+sz])
	return sz, nil
}

// Import loads the addressed span from the source backend. Arrays not
// persisted as a whole load one record per item under the indexed key.
func (DefaultOps) Import(h *Handler, k OpKey) error {
	be := h.src
	if be == nil {
		return errors.New(ErrCodeNoData, "handler has no source backend").
			WithContext("path", k.Path)
	}
	key := h.backendKey(k)

	if a := h.arr; a != nil && k.Normal == h.nc.lower && !a.exportWhole {
		for i := 0; i < a.count; i++ {
			off := k.Offset + i*h.size
			if err := h.loadInto(be, appendIndex(key, i), h.data[off:off+h.size]); err != nil {
				h.nc.reg.logf("conftree: import of %s failed: %v", appendIndex(key, i), err)
			}
		}
		return nil
	}

	if err := h.loadInto(be, key, h.Value(k)); err != nil {
		h.nc.reg.logf("conftree: import of %s failed: %v", key, err)
	}
	return nil
}

// Export persists the addressed span to the destination backend. Arrays
// not persisted as a whole store one record per item under the indexed
// key.
func (DefaultOps) Export(h *Handler, k OpKey) error {
	be := h.exportBackend()
	if be == nil {
		return errors.New(ErrCodeNoData, "handler has no destination backend").
			WithContext("path", k.Path)
	}
	key := h.backendKey(k)

	if a := h.arr; a != nil && k.Normal == h.nc.lower && !a.exportWhole {
		for i := 0; i < a.count; i++ {
			off := k.Offset + i*h.size
			if err := h.storeFrom(be, appendIndex(key, i), h.data[off:off+h.size]); err != nil {
				h.nc.reg.logf("conftree: export of %s failed: %v", appendIndex(key, i), err)
			}
		}
		return nil
	}

	if err := h.storeFrom(be, key, h.Value(k)); err != nil {
		h.nc.reg.logf("conftree: export of %s failed: %v", key, err)
	}
	return nil
}

// Delete removes the addressed span's records from the destination
// backend. A backend without delete support fails the operation with
// ErrCodeNotSupported.
func (DefaultOps) Delete(h *Handler, k OpKey) error {
	be := h.exportBackend()
	if be == nil {
		return errors.New(ErrCodeNoData, "handler has no destination backend").
			WithContext("path", k.Path)
	}
	key := h.backendKey(k)

	if a := h.arr; a != nil && k.Normal == h.nc.lower && !a.exportWhole {
		for i := 0; i < a.count; i++ {
			if err := be.Delete(appendIndex(key, i)); err != nil {
				if HasCode(err, ErrCodeNotSupported) {
					return err
				}
				h.nc.reg.logf("conftree: delete of %s failed: %v", appendIndex(key, i), err)
			}
		}
		return nil
	}

	if err := be.Delete(key); err != nil {
		if HasCode(err, ErrCodeNotSupported) {
			return err
		}
		h.nc.reg.logf("conftree: delete of %s failed: %v", key, err)
	}
	return nil
}

// backendKey renders the persistence key: root label plus the key path.
func (h *Handler) backendKey(k OpKey) string {
	return h.nc.reg.label + k.Path
}

// exportBackend is the backend export and delete talk to.
func (h *Handler) exportBackend() Backend {
	if h.dst != nil {
		return h.dst
	}
	return h.src
}

// loadInto reads one record and decodes it into dst, through the
// handler's codec when it has one.
func (h *Handler) loadInto(be Backend, key string, dst []byte) error {
	raw, err := be.Load(key)
	if err != nil {
		return err
	}
	if c, ok := h.ops.(Codec); ok {
		return c.Decode(h, raw, dst)
	}
	if len(raw) > len(dst) {
		return errors.New(ErrCodeNoBufferSpace, "stored value larger than handler storage").
			WithContext("key", key)
	}
	copy(dst, raw)
	return nil
}

// storeFrom encodes src through the handler's codec, when it has one, and
// writes one record.
func (h *Handler) storeFrom(be Backend, key string, src []byte) error {
	out := src
	if c, ok := h.ops.(Codec); ok {
		var err error
		if out, err = c.Encode(h, src); err != nil {
			return err
		}
	}
	return be.Store(key, out)
}
