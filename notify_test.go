// notify_test.go: Change notifier ring tests
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package conftree

import (
	"strings"
	"testing"
)

func drain(n *Notifier) {
	for n.ProcessBatch() > 0 {
	}
}

func TestNotifierDeliversDriverEvents(t *testing.T) {
	var got []ChangeEvent
	n := NewNotifier(64, func(ev *ChangeEvent) {
		got = append(got, *ev)
	})
	f := newFixture(t, WithNotifier(n), WithLogger(func(string, ...any) {}))

	if _, err := f.r.Set(tWhite, price("9.99")); err != nil {
		t.Fatal(err)
	}
	if err := f.r.Import(tWhite); err != nil {
		t.Fatal(err)
	}
	if err := f.r.Delete(tWhite); err != nil {
		t.Fatal(err)
	}
	if err := f.r.Apply(tFood); err != nil {
		t.Fatal(err)
	}
	drain(n)

	wantOps := []ChangeOp{ChangeSet, ChangeImport, ChangeDelete, ChangeApply}
	if len(got) != len(wantOps) {
		t.Fatalf("delivered %d events, want %d", len(got), len(wantOps))
	}
	for i, op := range wantOps {
		if got[i].Op != op {
			t.Fatalf("event %d op = %s, want %s", i, got[i].Op, op)
		}
	}
	if got[0].SID != tWhite || got[0].PathString() != "/food/bread/white" {
		t.Fatalf("event 0 = sid 0x%x path %s", uint64(got[0].SID), got[0].PathString())
	}
	if got[3].PathString() != "/food" {
		t.Fatalf("apply event path = %s, want /food", got[3].PathString())
	}
	if got[0].At == 0 {
		t.Fatal("event carries no timestamp")
	}

	// Failed operations publish nothing.
	if _, err := f.r.Set(0x5000, []byte{1}); err == nil {
		t.Fatal("set on unclaimed identifier succeeded")
	}
	drain(n)
	if len(got) != len(wantOps) {
		t.Fatalf("failed set published an event")
	}
}

func TestNotifierDropsWhenFull(t *testing.T) {
	n := NewNotifier(8, func(*ChangeEvent) {})

	for i := 0; i < 8; i++ {
		if !n.Publish(ChangeSet, SID(i), "/x") {
			t.Fatalf("publish %d rejected with a free slot", i)
		}
	}
	if n.Publish(ChangeSet, 8, "/x") {
		t.Fatal("publish accepted on a full ring")
	}

	stats := n.Stats()
	if stats["items_dropped"] != 1 {
		t.Fatalf("items_dropped = %d, want 1", stats["items_dropped"])
	}
	if stats["items_buffered"] != 9 {
		t.Fatalf("items_buffered = %d, want 9", stats["items_buffered"])
	}

	drain(n)
	if got := n.Stats()["items_processed"]; got != 8 {
		t.Fatalf("items_processed = %d, want 8", got)
	}
}

func TestNotifierStoppedRejectsPublish(t *testing.T) {
	n := NewNotifier(8, func(*ChangeEvent) {})
	n.Stop()
	if n.Publish(ChangeSet, 1, "/x") {
		t.Fatal("publish accepted after Stop")
	}
}

func TestNotifierTruncatesLongPaths(t *testing.T) {
	var got []ChangeEvent
	n := NewNotifier(8, func(ev *ChangeEvent) {
		got = append(got, *ev)
	})

	long := "/" + strings.Repeat("a", 200)
	if !n.Publish(ChangeSet, 1, long) {
		t.Fatal("publish rejected")
	}
	drain(n)
	if len(got) != 1 {
		t.Fatalf("delivered %d events, want 1", len(got))
	}
	if len(got[0].PathString()) != 96 {
		t.Fatalf("path length %d, want 96", len(got[0].PathString()))
	}
	if got[0].PathString() != long[:96] {
		t.Fatal("truncated path does not match prefix")
	}
}
