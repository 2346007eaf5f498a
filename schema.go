// schema.go: Declarative YAML tree schemas
//
// A schema describes a configuration tree (names, identifier ranges,
// strides, counts, sizes) so tools can build a registry without compiled-
// in registration code. Schema-built handlers use the default byte
// operations; programs needing custom verify/apply logic register those
// handlers in code instead.
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package conftree

import (
	"strconv"
	"strings"

	"github.com/agilira/go-errors"
	"go.yaml.in/yaml/v3"
)

// SchemaElem is one tree element. The populated fields decide its kind:
// a positive count makes an array handler, a positive size without count
// makes a scalar handler, anything else is a group node.
type SchemaElem struct {
	Name string `yaml:"name"`

	// Scalar handlers own the single identifier sid; nodes and arrays own
	// [lower, upper] (an array's upper is derived from stride and count).
	SID   uint64 `yaml:"sid"`
	Lower uint64 `yaml:"lower"`
	Upper uint64 `yaml:"upper"`

	Stride uint64 `yaml:"stride"`
	Count  int    `yaml:"count"`
	Size   int    `yaml:"size"`

	// Offset places a child's storage inside an enclosing array's item
	// when elements nest under arrays.
	Offset int `yaml:"offset"`

	ExportWhole bool   `yaml:"export_whole"`
	Codec       string `yaml:"codec"` // "" or "raw" for plain bytes, "cbor" for CBOR framing

	Children []SchemaElem `yaml:"children"`
}

// Schema is a whole declarative tree.
type Schema struct {
	Label string       `yaml:"label"`
	Nodes []SchemaElem `yaml:"nodes"`
}

// ParseSchema decodes a YAML schema document.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, ErrCodeInvalidNode, "malformed schema document")
	}
	return &s, nil
}

// Build compiles the schema into a fresh registry. The schema's label, if
// any, becomes the root label unless the options override it. The second
// return value resolves rendered paths back to identifiers.
func (s *Schema) Build(opts ...Option) (*Registry, *SchemaIndex, error) {
	if s.Label != "" {
		opts = append([]Option{WithRootLabel(s.Label)}, opts...)
	}
	r := New(opts...)
	idx := &SchemaIndex{nodes: s.Nodes}

	for i := range s.Nodes {
		if err := buildElem(r, r.Root(), &s.Nodes[i], nil); err != nil {
			return nil, nil, err
		}
	}
	return r, idx, nil
}

// buildElem registers one element and recurses into its children.
// parentData is the enclosing array's storage, nil at top level.
func buildElem(r *Registry, parent Registrant, e *SchemaElem, parentData []byte) error {
	ops := schemaOps(e.Codec)
	if ops == nil {
		return errors.New(ErrCodeInvalidNode, "unknown schema codec").
			WithContext("name", e.Name).
			WithContext("codec", e.Codec)
	}

	switch {
	case e.Count > 0:
		data := parentData
		if data == nil {
			data = make([]byte, e.Size*e.Count)
		} else {
			if err := checkPlacement(e, e.Size*e.Count, len(data)); err != nil {
				return err
			}
			data = data[e.Offset:]
		}
		a := NewArrayHandler(e.Name, SID(e.Lower), SID(e.Stride), e.Count, e.Size, ops, data)
		if e.ExportWhole {
			a.ExportAsWhole()
		}
		if e.Upper != 0 {
			a.Reserve(SID(e.Upper))
		}
		if err := r.Register(parent, a); err != nil {
			return err
		}
		for i := range e.Children {
			if err := buildElem(r, a, &e.Children[i], data); err != nil {
				return err
			}
		}

	case e.Size > 0:
		data := parentData
		if data == nil {
			data = make([]byte, e.Size)
		} else {
			if err := checkPlacement(e, e.Size, len(data)); err != nil {
				return err
			}
			data = data[e.Offset : e.Offset+e.Size]
		}
		h := NewHandler(e.Name, SID(e.SID), ops, data)
		if err := r.Register(parent, h); err != nil {
			return err
		}

	default:
		n := NewNode(e.Name, SID(e.Lower), SID(e.Upper))
		if err := r.Register(parent, n); err != nil {
			return err
		}
		for i := range e.Children {
			if err := buildElem(r, n, &e.Children[i], parentData); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkPlacement rejects elements whose offset/size reach outside the
// enclosing array's storage before any slicing happens. Schema documents
// are user input; a bad layout must fail with a coded error, not a panic.
func checkPlacement(e *SchemaElem, need, have int) error {
	if e.Offset < 0 || need < 0 || e.Offset+need > have {
		return errors.New(ErrCodeInvalidNode, "element does not fit inside enclosing storage").
			WithContext("name", e.Name).
			WithContext("offset", e.Offset).
			WithContext("need", need).
			WithContext("have", have)
	}
	return nil
}

func schemaOps(name string) Ops {
	switch name {
	case "", "raw":
		return DefaultOps{}
	case "cbor":
		return CBOROps{}
	default:
		return nil
	}
}

// SchemaIndex resolves rendered paths ("/food/bread/white", "/orders/1")
// to identifiers for tools that address the tree by name.
type SchemaIndex struct {
	nodes []SchemaElem
}

// SIDOf resolves a path against the schema. Array index segments apply
// the stride scheme; a path ending at the array name addresses the whole
// array.
func (idx *SchemaIndex) SIDOf(path string) (SID, bool) {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(segs) == 1 && segs[0] == "" {
		return 0, false
	}
	return sidOf(idx.nodes, segs, 0)
}

func sidOf(elems []SchemaElem, segs []string, delta SID) (SID, bool) {
	for i := range elems {
		e := &elems[i]
		if e.Name != segs[0] {
			continue
		}
		rest := segs[1:]

		if e.Count > 0 {
			if len(rest) == 0 {
				return delta + SID(e.Lower), true
			}
			item, err := strconv.Atoi(rest[0])
			if err != nil || item < 0 || item >= e.Count {
				return 0, false
			}
			itemSID := delta + SID(e.Lower) + 1 + SID(item)*SID(e.Stride)
			rest = rest[1:]
			if len(rest) == 0 {
				return itemSID, true
			}
			return sidOf(e.Children, rest, delta+SID(item)*SID(e.Stride))
		}

		if len(rest) == 0 {
			if e.Size > 0 {
				return delta + SID(e.SID), true
			}
			return delta + SID(e.Lower), true
		}
		return sidOf(e.Children, rest, delta)
	}
	return 0, false
}
