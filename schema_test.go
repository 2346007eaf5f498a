// schema_test.go: Declarative schema building and path resolution tests
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package conftree

import (
	"bytes"
	"testing"
)

const catalogSchema = `
label: /shop
nodes:
  - name: food
    lower: 0x1000
    upper: 0x100f
    children:
      - name: bread
        lower: 0x1001
        upper: 0x1003
        children:
          - name: white
            sid: 0x1002
            size: 6
          - name: whole_grain
            sid: 0x1003
            size: 6
  - name: orders
    lower: 0x3000
    upper: 0x3020
    stride: 4
    count: 3
    size: 24
    children:
      - name: items
        lower: 0x3002
        stride: 1
        count: 2
        size: 12
        offset: 0
  - name: colors
    lower: 0x4000
    stride: 2
    count: 3
    size: 4
    export_whole: true
  - name: token
    sid: 0x5000
    size: 6
    codec: cbor
`

func buildCatalogSchema(t *testing.T) (*Registry, *SchemaIndex) {
	t.Helper()
	s, err := ParseSchema([]byte(catalogSchema))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r, idx, err := s.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return r, idx
}

func TestSchemaBuildsWorkingTree(t *testing.T) {
	r, _ := buildCatalogSchema(t)

	if r.RootLabel() != "/shop" {
		t.Fatalf("root label = %s, want /shop", r.RootLabel())
	}

	if _, err := r.Set(0x1002, price("9.99")); err != nil {
		t.Fatalf("set: %v", err)
	}
	buf := make([]byte, tPriceSize)
	if _, err := r.Get(0x1002, buf); err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(buf, price("9.99")) {
		t.Fatalf("got %q, want %q", buf, price("9.99"))
	}

	// items alias the orders storage, same as a code-built tree.
	item := bytes.Repeat([]byte{0x5A}, 12)
	if _, err := r.Set(0x3002+1+4, item); err != nil {
		t.Fatalf("set nested item: %v", err)
	}
	order := make([]byte, 24)
	if _, err := r.Get(0x3000+1+1*4, order); err != nil {
		t.Fatalf("get order: %v", err)
	}
	if !bytes.Equal(order[:12], item) {
		t.Fatal("nested item bytes not visible through the order")
	}

	// The reserved tail past the populated orders resolves out of range.
	if _, err := r.Set(0x3000+1+3*4, []byte{0}); !HasCode(err, ErrCodeOutOfRange) {
		t.Fatalf("got %v, want code %s", err, ErrCodeOutOfRange)
	}
}

func TestSchemaExportUsesLabelAndFlags(t *testing.T) {
	r, _ := buildCatalogSchema(t)
	be := newTestBackend()
	if err := r.SetBackend(0, be, nil); err != nil {
		t.Fatal(err)
	}

	if _, err := r.Set(0x1002, price("9.99")); err != nil {
		t.Fatal(err)
	}
	if err := r.Export(0x1002); err != nil {
		t.Fatalf("export: %v", err)
	}
	checkKeys(t, be.stores, []string{"/shop/food/bread/white"})

	be.stores = nil
	if err := r.Export(0x4000); err != nil {
		t.Fatalf("export colors: %v", err)
	}
	checkKeys(t, be.stores, []string{"/shop/colors"})
	if len(be.records["/shop/colors"]) != 12 {
		t.Fatal("export_whole array not stored as one record")
	}

	// codec: cbor frames the token record.
	if _, err := r.Set(0x5000, price("3.50")); err != nil {
		t.Fatal(err)
	}
	if err := r.Export(0x5000); err != nil {
		t.Fatalf("export token: %v", err)
	}
	if rec := be.records["/shop/token"]; len(rec) == 0 || rec[0] != 0x46 {
		t.Fatalf("token record %v is not CBOR framed", rec)
	}
}

func TestSchemaRejectsOversizedPlacement(t *testing.T) {
	orders := func(child SchemaElem) *Schema {
		return &Schema{Nodes: []SchemaElem{{
			Name: "orders", Lower: 0x3000, Stride: 4, Count: 3, Size: 24,
			Children: []SchemaElem{child},
		}}}
	}

	tests := []struct {
		name  string
		child SchemaElem
	}{
		{
			name:  "array child offset past storage",
			child: SchemaElem{Name: "items", Lower: 0x3002, Stride: 1, Count: 2, Size: 12, Offset: 100},
		},
		{
			name:  "array child spills over storage end",
			child: SchemaElem{Name: "items", Lower: 0x3002, Stride: 1, Count: 2, Size: 40, Offset: 0},
		},
		{
			name:  "scalar child offset past storage",
			child: SchemaElem{Name: "note", SID: 0x3002, Size: 8, Offset: 70},
		},
		{
			name:  "scalar child negative offset",
			child: SchemaElem{Name: "note", SID: 0x3002, Size: 8, Offset: -1},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := orders(tc.child).Build()
			if !HasCode(err, ErrCodeInvalidNode) {
				t.Fatalf("got %v, want code %s", err, ErrCodeInvalidNode)
			}
		})
	}
}

func TestSchemaRejectsUnknownCodec(t *testing.T) {
	s := &Schema{Nodes: []SchemaElem{{Name: "x", SID: 0x10, Size: 4, Codec: "protobuf"}}}
	if _, _, err := s.Build(); !HasCode(err, ErrCodeInvalidNode) {
		t.Fatalf("got %v, want code %s", err, ErrCodeInvalidNode)
	}
}

func TestSchemaRejectsMalformedDocument(t *testing.T) {
	if _, err := ParseSchema([]byte("nodes: [")); !HasCode(err, ErrCodeInvalidNode) {
		t.Fatal("malformed document parsed")
	}
}

func TestSchemaIndexSIDOf(t *testing.T) {
	_, idx := buildCatalogSchema(t)

	tests := []struct {
		path string
		want SID
		ok   bool
	}{
		{"/food", 0x1000, true},
		{"/food/bread/white", 0x1002, true},
		{"/orders", 0x3000, true},
		{"/orders/1", 0x3005, true},
		{"/orders/1/items/0", 0x3007, true},
		{"/orders/2/items/1", 0x300c, true},
		{"/colors", 0x4000, true},
		{"/token", 0x5000, true},
		{"/orders/3", 0, false},
		{"/orders/x", 0, false},
		{"/food/pizza", 0, false},
		{"/", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got, ok := idx.SIDOf(tc.path)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("SIDOf(%s) = (0x%x, %v), want (0x%x, %v)",
					tc.path, uint64(got), ok, uint64(tc.want), tc.ok)
			}
		})
	}
}
