// codec_cbor_test.go: CBOR persistence framing tests
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package conftree

import (
	"bytes"
	"testing"
)

func newCBORFixture(t *testing.T) (*Registry, *testBackend) {
	t.Helper()
	r := New()
	h := NewHandler("token", 0x10, CBOROps{}, make([]byte, tPriceSize))
	if err := r.Register(r.Root(), h); err != nil {
		t.Fatal(err)
	}
	be := newTestBackend()
	if err := r.SetBackend(0, be, nil); err != nil {
		t.Fatal(err)
	}
	return r, be
}

func TestCBORExportFramesRecord(t *testing.T) {
	r, be := newCBORFixture(t)

	if _, err := r.Set(0x10, price("3.50")); err != nil {
		t.Fatal(err)
	}
	if err := r.Export(0x10); err != nil {
		t.Fatalf("export: %v", err)
	}

	rec := be.records["/conf/token"]
	if len(rec) != tPriceSize+1 {
		t.Fatalf("record length %d, want %d", len(rec), tPriceSize+1)
	}
	// Major type 2 (byte string), length 6.
	if rec[0] != 0x46 {
		t.Fatalf("record header 0x%02x, want 0x46", rec[0])
	}
	if !bytes.Equal(rec[1:], price("3.50")) {
		t.Fatal("framed payload does not match the value")
	}
}

func TestCBORImportRoundTrip(t *testing.T) {
	r, _ := newCBORFixture(t)

	if _, err := r.Set(0x10, price("3.50")); err != nil {
		t.Fatal(err)
	}
	if err := r.Export(0x10); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Set(0x10, nil); err != nil {
		t.Fatal(err)
	}
	if err := r.Import(0x10); err != nil {
		t.Fatalf("import: %v", err)
	}

	buf := make([]byte, tPriceSize)
	if _, err := r.Get(0x10, buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, price("3.50")) {
		t.Fatalf("round trip got %q, want %q", buf, price("3.50"))
	}
}

func TestCBORDecodeRejectsOversizedValue(t *testing.T) {
	h := NewHandler("small", 0x10, CBOROps{}, make([]byte, 2))

	framed, err := CBOROps{}.Encode(h, []byte{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	mem := make([]byte, 2)
	err = CBOROps{}.Decode(h, framed, mem)
	if !HasCode(err, ErrCodeNoBufferSpace) {
		t.Fatalf("got %v, want code %s", err, ErrCodeNoBufferSpace)
	}
}

func TestCBORDecodeRejectsGarbage(t *testing.T) {
	h := NewHandler("small", 0x10, CBOROps{}, make([]byte, 2))
	mem := make([]byte, 2)
	err := CBOROps{}.Decode(h, []byte{0xff, 0xff, 0xff}, mem)
	if err == nil {
		t.Fatal("garbage record decoded without error")
	}
}
