// key.go: Operation keys passed to handler callbacks
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package conftree

import "strconv"

// OpKey identifies the value a handler callback operates on. Keys are
// built per call and never mutated after being handed to a callback.
type OpKey struct {
	// SID is the identifier of the visited element, item-adjusted when the
	// original request addressed an array item.
	SID SID
	// Normal is SID mapped back to the handler's first-item representative.
	// Normal equals the handler's lower bound when the key addresses an
	// array handler as a whole.
	Normal SID
	// Offset is the byte offset of the addressed item inside the handler's
	// storage, 0 for scalars and whole arrays.
	Offset int
	// Path is the rendered textual location, e.g. "/food/bread/white" or
	// "/orders/1".
	Path string
}

// String renders the key's path. Kept cheap; drivers use it for journal
// entries and diagnostics.
func (k OpKey) String() string { return k.Path }

// appendSegment extends a rendered path with an element's name segment.
// Unnamed elements (the root) contribute nothing.
func appendSegment(path, name string) string {
	if name == "" {
		return path
	}
	return path + "/" + name
}

// appendIndex extends a rendered path with an array index segment.
func appendIndex(path string, index int) string {
	return path + "/" + strconv.Itoa(index)
}
