// iterator.go: Subtree walkers used by the operation drivers
//
// Two walkers cover all drivers. The tree iterator visits every element of
// a subtree once, optionally stopping the descent at handlers. The path
// iterator additionally expands array handlers item by item, synthesizing
// a per-item key (identifier, offset, rendered path) for each visit; it
// backs the persistence drivers, which need one backend key per item.
//
// Both walkers keep an explicit growable stack and build keys functionally
// on push, so no state has to be restored after a visit.
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package conftree

// treeFrame is one pending visit of the tree iterator.
type treeFrame struct {
	reg Registrant
	key OpKey
}

// treeIterator walks a resolved subtree in registration order. With
// maxDepth false the walk does not descend below elements that carry
// operations, so a driver dispatches to at most one handler per branch.
// With maxDepth true every element is visited.
type treeIterator struct {
	maxDepth bool
	stack    []treeFrame
}

func newTreeIterator(res resolution, maxDepth bool) *treeIterator {
	it := &treeIterator{maxDepth: maxDepth}
	it.stack = append(it.stack, treeFrame{reg: res.target, key: res.key})
	return it
}

func (it *treeIterator) next() (Registrant, OpKey, bool) {
	if len(it.stack) == 0 {
		return nil, OpKey{}, false
	}
	f := it.stack[len(it.stack)-1]
	it.stack = it.stack[:len(it.stack)-1]

	if f.reg.handler() == nil || it.maxDepth {
		children := f.reg.core().children
		delta := f.key.SID - f.key.Normal
		for i := len(children) - 1; i >= 0; i-- {
			ch := children[i]
			lower := ch.core().lower
			it.stack = append(it.stack, treeFrame{
				reg: ch,
				key: OpKey{
					SID:    delta + lower,
					Normal: lower,
					Offset: f.key.Offset,
					Path:   appendSegment(f.key.Path, ch.Name()),
				},
			})
		}
	}
	return f.reg, f.key, true
}

// pathFrame is one pending visit of the path iterator. For array handlers
// iterated item by item, index is the next item to visit; index -1 marks a
// single whole visit (group nodes, scalar handlers, export-as-a-whole
// arrays, and an array addressed as one specific item).
type pathFrame struct {
	reg        Registrant
	index      int
	prefix     string
	baseOffset int
	sidDelta   SID
	rootKey    *OpKey
}

// pathIterator walks a resolved subtree for the persistence drivers. It
// always descends to full depth. Array handlers not marked export-as-a-
// whole are visited once per item with the item's identifier, byte offset
// and indexed path; their children are walked once per item too, in the
// item's coordinates. When the original identifier addressed one specific
// item, only that item is visited.
type pathIterator struct {
	stack []pathFrame
}

func newPathIterator(res resolution) *pathIterator {
	it := &pathIterator{}
	key := res.key

	f := pathFrame{
		reg:        res.target,
		index:      -1,
		prefix:     key.Path,
		baseOffset: key.Offset,
		sidDelta:   key.SID - key.Normal,
		rootKey:    &key,
	}
	if a := res.target.array(); a != nil && !a.exportWhole && key.Normal == a.nc.lower {
		// whole array addressed: iterate items instead of one root visit
		f.index = 0
		f.rootKey = nil
	}
	it.stack = append(it.stack, f)
	return it
}

func (it *pathIterator) next() (Registrant, OpKey, bool) {
	if len(it.stack) == 0 {
		return nil, OpKey{}, false
	}
	f := it.stack[len(it.stack)-1]
	it.stack = it.stack[:len(it.stack)-1]

	var k OpKey
	a := f.reg.array()
	switch {
	case f.rootKey != nil:
		k = *f.rootKey
	case a != nil && f.index >= 0:
		k = OpKey{
			SID:    f.sidDelta + a.nc.lower + 1 + SID(f.index)*a.stride,
			Normal: a.nc.lower + 1,
			Offset: f.baseOffset + f.index*a.size,
			Path:   appendIndex(f.prefix, f.index),
		}
		if f.index+1 < a.count {
			it.stack = append(it.stack, pathFrame{
				reg:        f.reg,
				index:      f.index + 1,
				prefix:     f.prefix,
				baseOffset: f.baseOffset,
				sidDelta:   f.sidDelta,
			})
		}
	default:
		lower := f.reg.core().lower
		k = OpKey{
			SID:    f.sidDelta + lower,
			Normal: lower,
			Offset: f.baseOffset,
			Path:   f.prefix,
		}
	}

	if a == nil || !a.exportWhole {
		children := f.reg.core().children
		delta := k.SID - k.Normal
		for i := len(children) - 1; i >= 0; i-- {
			ch := children[i]
			cf := pathFrame{
				reg:        ch,
				index:      -1,
				prefix:     appendSegment(k.Path, ch.Name()),
				baseOffset: k.Offset,
				sidDelta:   delta,
			}
			if ca := ch.array(); ca != nil && !ca.exportWhole {
				cf.index = 0
			}
			it.stack = append(it.stack, cf)
		}
	}
	return f.reg, k, true
}
