// ops.go: Operation drivers
//
// Every driver follows the same shape: resolve the identifier, walk the
// resulting subtree with the fitting iterator, dispatch to each handler
// that implements the operation. Handlers that do not implement an
// optional capability are skipped silently; a realized callback failure
// stops the walk and is returned.
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package conftree

import (
	"github.com/agilira/go-errors"
)

// Ops is the mandatory handler contract. Set consumes val left to right
// and returns the number of bytes taken; a nil val clears the value to
// zeros and consumes nothing. Get is the mirror read into dst.
type Ops interface {
	Set(h *Handler, k OpKey, val []byte) (int, error)
	Get(h *Handler, k OpKey, dst []byte) (int, error)
}

// Porter moves a handler's value between memory and its backend.
type Porter interface {
	Import(h *Handler, k OpKey) error
	Export(h *Handler, k OpKey) error
}

// Deleter removes a handler's persisted value from its backend.
type Deleter interface {
	Delete(h *Handler, k OpKey) error
}

// Verifier validates a handler's in-memory value.
type Verifier interface {
	Verify(h *Handler, k OpKey) error
}

// Applier pushes a handler's in-memory value to its consumer (driver,
// subsystem) after it changed.
type Applier interface {
	Apply(h *Handler, k OpKey) error
}

// Codec translates between a handler's in-memory bytes and its persisted
// representation. Without a codec the raw bytes are persisted.
type Codec interface {
	Encode(h *Handler, mem []byte) ([]byte, error)
	Decode(h *Handler, stored []byte, mem []byte) error
}

// Set writes value into the subtree at sid. The buffer is consumed in
// visit order, each handler taking its declared size; the unconsumed tail
// is returned. A nil value clears every visited handler to zeros.
func (r *Registry) Set(sid SID, value []byte) ([]byte, error) {
	res, err := r.resolve(sid)
	if err != nil {
		r.record(opSet, sid, "", err)
		return value, err
	}

	rest := value
	it := newTreeIterator(res, false)
	for {
		reg, k, ok := it.next()
		if !ok {
			break
		}
		h := reg.handler()
		if h == nil {
			continue
		}
		if value == nil {
			if _, err = h.ops.Set(h, k, nil); err != nil {
				break
			}
			continue
		}
		var n int
		if n, err = h.ops.Set(h, k, rest); err != nil {
			break
		}
		rest = rest[n:]
	}

	r.record(opSet, sid, res.key.Path, err)
	if err == nil {
		r.publish(ChangeSet, sid, res.key.Path)
	}
	return rest, err
}

// Get reads the subtree at sid into buf in visit order and returns the
// unfilled tail. A full read leaves no tail.
func (r *Registry) Get(sid SID, buf []byte) ([]byte, error) {
	res, err := r.resolve(sid)
	if err != nil {
		return buf, err
	}

	rest := buf
	it := newTreeIterator(res, false)
	for {
		reg, k, ok := it.next()
		if !ok {
			break
		}
		h := reg.handler()
		if h == nil {
			continue
		}
		var n int
		if n, err = h.ops.Get(h, k, rest); err != nil {
			return rest, err
		}
		rest = rest[n:]
	}
	return rest, nil
}

// Import loads the subtree at sid from the handlers' source backends.
func (r *Registry) Import(sid SID) error {
	res, err := r.resolve(sid)
	if err == nil {
		err = r.importTree(res)
	}
	r.record(opImport, sid, res.key.Path, err)
	if err == nil {
		r.publish(ChangeImport, sid, res.key.Path)
	}
	return err
}

func (r *Registry) importTree(res resolution) error {
	it := newPathIterator(res)
	for {
		reg, k, ok := it.next()
		if !ok {
			return nil
		}
		h := reg.handler()
		if h == nil {
			continue
		}
		p, ok := h.ops.(Porter)
		if !ok {
			continue
		}
		if err := p.Import(h, k); err != nil {
			return err
		}
	}
}

// Export persists the subtree at sid to the handlers' destination
// backends. Handlers whose verification fails are skipped so invalid
// values never reach storage.
func (r *Registry) Export(sid SID) error {
	res, err := r.resolve(sid)
	if err != nil {
		r.record(opExport, sid, "", err)
		return err
	}

	it := newPathIterator(res)
	for {
		reg, k, ok := it.next()
		if !ok {
			break
		}
		h := reg.handler()
		if h == nil {
			continue
		}
		p, okp := h.ops.(Porter)
		if !okp {
			continue
		}
		if v, okv := h.ops.(Verifier); okv {
			if v.Verify(h, k) != nil {
				continue
			}
		}
		if err = p.Export(h, k); err != nil {
			break
		}
	}

	r.record(opExport, sid, res.key.Path, err)
	return err
}

// Delete removes the subtree's persisted values from the handlers'
// destination backends. The in-memory values are untouched.
func (r *Registry) Delete(sid SID) error {
	res, err := r.resolve(sid)
	if err != nil {
		r.record(opDelete, sid, "", err)
		return err
	}

	it := newPathIterator(res)
	for {
		reg, k, ok := it.next()
		if !ok {
			break
		}
		h := reg.handler()
		if h == nil {
			continue
		}
		d, okd := h.ops.(Deleter)
		if !okd {
			continue
		}
		if err = d.Delete(h, k); err != nil {
			break
		}
	}

	r.record(opDelete, sid, res.key.Path, err)
	if err == nil {
		r.publish(ChangeDelete, sid, res.key.Path)
	}
	return err
}

// Verify validates the subtree at sid. With tryReimport a failing
// handler's subtree is reloaded from its backend and verified once more
// before giving up; without it the first failure cancels the operation.
func (r *Registry) Verify(sid SID, tryReimport bool) error {
	res, err := r.resolve(sid)
	if err != nil {
		r.record(opVerify, sid, "", err)
		return err
	}

	it := newTreeIterator(res, false)
	for {
		reg, k, ok := it.next()
		if !ok {
			break
		}
		h := reg.handler()
		if h == nil {
			continue
		}
		v, okv := h.ops.(Verifier)
		if !okv {
			continue
		}
		verr := v.Verify(h, k)
		if verr == nil {
			continue
		}
		if tryReimport {
			if rerr := r.reimport(k.SID); rerr == nil {
				if v.Verify(h, k) == nil {
					continue
				}
			}
		}
		err = errors.Wrap(verr, ErrCodeCancelled, "verification failed").
			WithContext("path", k.Path)
		break
	}

	r.record(opVerify, sid, res.key.Path, err)
	return err
}

// reimport reloads the subtree at sid without journaling or notifying;
// Verify uses it as a recovery path.
func (r *Registry) reimport(sid SID) error {
	res, err := r.resolve(sid)
	if err != nil {
		return err
	}
	return r.importTree(res)
}

// Apply pushes the subtree's in-memory values to their consumers.
func (r *Registry) Apply(sid SID) error {
	res, err := r.resolve(sid)
	if err != nil {
		r.record(opApply, sid, "", err)
		return err
	}

	it := newTreeIterator(res, false)
	for {
		reg, k, ok := it.next()
		if !ok {
			break
		}
		h := reg.handler()
		if h == nil {
			continue
		}
		a, oka := h.ops.(Applier)
		if !oka {
			continue
		}
		if err = a.Apply(h, k); err != nil {
			break
		}
	}

	r.record(opApply, sid, res.key.Path, err)
	if err == nil {
		r.publish(ChangeApply, sid, res.key.Path)
	}
	return err
}

// Lock acquires every handler mutex in the subtree at sid. Callers pair
// it with Unlock on the same identifier.
func (r *Registry) Lock(sid SID) error {
	res, err := r.resolve(sid)
	if err != nil {
		return err
	}
	it := newTreeIterator(res, true)
	for {
		reg, _, ok := it.next()
		if !ok {
			return nil
		}
		if h := reg.handler(); h != nil {
			h.mu.Lock()
		}
	}
}

// Unlock releases every handler mutex in the subtree at sid.
func (r *Registry) Unlock(sid SID) error {
	res, err := r.resolve(sid)
	if err != nil {
		return err
	}
	it := newTreeIterator(res, true)
	for {
		reg, _, ok := it.next()
		if !ok {
			return nil
		}
		if h := reg.handler(); h != nil {
			h.mu.Unlock()
		}
	}
}

// SetBackend rebinds every handler in the subtree at sid to the given
// source and destination backends. Import reads from src; export and
// delete write to dst, falling back to src when dst is nil.
func (r *Registry) SetBackend(sid SID, src, dst Backend) error {
	res, err := r.resolve(sid)
	if err != nil {
		r.record(opSetBackend, sid, "", err)
		return err
	}
	it := newTreeIterator(res, true)
	for {
		reg, _, ok := it.next()
		if !ok {
			break
		}
		if h := reg.handler(); h != nil {
			h.src = src
			h.dst = dst
		}
	}
	r.record(opSetBackend, sid, res.key.Path, nil)
	return nil
}

// Size reports how many bytes a Get on sid fills: the sum of the visited
// handlers' spans in visit order.
func (r *Registry) Size(sid SID) (int, error) {
	res, err := r.resolve(sid)
	if err != nil {
		return 0, err
	}
	total := 0
	it := newTreeIterator(res, false)
	for {
		reg, k, ok := it.next()
		if !ok {
			return total, nil
		}
		if h := reg.handler(); h != nil {
			total += h.spanSize(k)
		}
	}
}

// Walk visits every element of the subtree at sid in registration order,
// handing each element and its key to fn. Returning false stops the walk.
func (r *Registry) Walk(sid SID, fn func(reg Registrant, k OpKey) bool) error {
	res, err := r.resolve(sid)
	if err != nil {
		return err
	}
	it := newTreeIterator(res, true)
	for {
		reg, k, ok := it.next()
		if !ok {
			return nil
		}
		if !fn(reg, k) {
			return nil
		}
	}
}

// publish hands a change event to the attached notifier, if any.
func (r *Registry) publish(op ChangeOp, sid SID, path string) {
	if r.notifier != nil {
		r.notifier.Publish(op, sid, path)
	}
}

// record appends a journal entry for a driver call, if a journal is
// attached.
func (r *Registry) record(op string, sid SID, path string, err error) {
	if r.journal != nil {
		r.journal.record(op, sid, path, err)
	}
}

const (
	opSet        = "set"
	opImport     = "import"
	opExport     = "export"
	opDelete     = "delete"
	opVerify     = "verify"
	opApply      = "apply"
	opSetBackend = "set_backend"
)
