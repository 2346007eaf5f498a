// resolve.go: Identifier resolution against the configuration tree
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package conftree

// resolution is the outcome of resolving an identifier: the deepest
// matching element and the fully built operation key.
type resolution struct {
	target Registrant
	key    OpKey
}

// sidInRange reports whether the element claims the identifier. Group
// nodes and array handlers claim their whole range, scalar handlers only
// their single identifier.
func sidInRange(reg Registrant, sid SID) bool {
	c := reg.core()
	if reg.array() == nil && reg.handler() != nil {
		return sid == c.lower
	}
	return sid >= c.lower && sid <= c.upper
}

// resolve descends from the root following range containment. Whenever the
// descent passes through an array handler addressed below its first-item
// representative, the item index is stripped off: the identifier is mapped
// back to the first item and the item's byte offset is accumulated, so the
// remaining descent works in first-item coordinates.
func (r *Registry) resolve(sid SID) (resolution, error) {
	var res resolution

	cur := Registrant(&r.root)
	if !sidInRange(cur, sid) {
		return res, errNotFound(sid)
	}

	normal := sid
	offset := 0
	path := ""

	for {
		var next Registrant
		for _, sub := range cur.core().children {
			if !sidInRange(sub, normal) {
				continue
			}
			next = sub
			path = appendSegment(path, sub.Name())
			if normal != sub.core().lower {
				if a := sub.array(); a != nil {
					idx := int((normal - a.nc.lower - 1) / a.stride)
					if idx >= a.count {
						return res, errOutOfRange(sid)
					}
					offset += idx * a.size
					normal -= SID(idx) * a.stride
					path = appendIndex(path, idx)
				}
			}
			break
		}
		if next == nil {
			break
		}
		cur = next
	}

	c := cur.core()
	if normal != c.lower {
		a := cur.array()
		if a == nil {
			return res, errNotFound(sid)
		}
		if normal < c.lower+1 || normal > c.lower+a.stride {
			return res, errNotFound(sid)
		}
	}

	res.target = cur
	res.key = OpKey{SID: sid, Normal: normal, Offset: offset, Path: path}
	return res, nil
}
