// journal_test.go: Operation journal tests
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package conftree

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"
)

func readEntries(t *testing.T, buf *bytes.Buffer) []JournalEntry {
	t.Helper()
	var out []JournalEntry
	dec := json.NewDecoder(buf)
	for {
		var e JournalEntry
		if err := dec.Decode(&e); err == io.EOF {
			return out
		} else if err != nil {
			t.Fatalf("decode journal line %d: %v", len(out), err)
		}
		out = append(out, e)
	}
}

func TestJournalRecordsDriverCalls(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture(t, WithJournal(NewJournal(&buf)))

	if _, err := f.r.Set(tWhite, price("9.99")); err != nil {
		t.Fatal(err)
	}
	if err := f.r.Export(tWhite); err != nil {
		t.Fatal(err)
	}
	if _, err := f.r.Set(0x5000, []byte{1}); err == nil {
		t.Fatal("set on unclaimed identifier succeeded")
	}

	entries := readEntries(t, &buf)
	// The fixture's backend binding is the first recorded call.
	wantOps := []string{opSetBackend, opSet, opExport, opSet}
	if len(entries) != len(wantOps) {
		t.Fatalf("recorded %d entries, want %d: %+v", len(entries), len(wantOps), entries)
	}
	for i, op := range wantOps {
		if entries[i].Op != op {
			t.Fatalf("entry %d op = %s, want %s", i, entries[i].Op, op)
		}
	}

	set := entries[1]
	if set.SID != "0x1002" {
		t.Fatalf("sid = %s, want 0x1002", set.SID)
	}
	if set.Path != "/food/bread/white" {
		t.Fatalf("path = %s, want /food/bread/white", set.Path)
	}
	if set.Error != "" {
		t.Fatalf("successful set recorded error %q", set.Error)
	}
	if set.Timestamp.IsZero() {
		t.Fatal("entry has no timestamp")
	}

	failed := entries[3]
	if failed.SID != "0x5000" {
		t.Fatalf("sid = %s, want 0x5000", failed.SID)
	}
	if failed.Error == "" {
		t.Fatal("failed set recorded no error")
	}
}

func TestJournalCloseWithoutFile(t *testing.T) {
	j := NewJournal(&bytes.Buffer{})
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
