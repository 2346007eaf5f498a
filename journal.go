// journal.go: Append-only operation journal
//
// Every mutating or persistence driver call (set, import, export, delete,
// verify, apply, set_backend) on a registry with an attached journal
// produces one JSON line: operation, identifier, rendered path, outcome.
// Pure reads (get) and lock/unlock are not recorded. The journal is an
// accountability trail, not a replication log; entries are written
// synchronously under a mutex in call order.
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package conftree

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/agilira/go-timecache"
)

// JournalEntry is one recorded driver call.
type JournalEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Op        string    `json:"op"`
	SID       string    `json:"sid"`
	Path      string    `json:"path,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Journal writes driver calls as JSON lines to a writer.
type Journal struct {
	mu  sync.Mutex
	w   io.Writer
	c   io.Closer
	enc *json.Encoder
}

// NewJournal creates a journal writing to w.
func NewJournal(w io.Writer) *Journal {
	return &Journal{w: w, enc: json.NewEncoder(w)}
}

// OpenJournal opens (or creates) an append-only journal file.
func OpenJournal(path string) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}
	j := NewJournal(f)
	j.c = f
	return j, nil
}

// record appends one entry. Encoding failures are swallowed; the journal
// never fails an operation.
func (j *Journal) record(op string, sid SID, path string, opErr error) {
	entry := JournalEntry{
		Timestamp: timecache.CachedTime(),
		Op:        op,
		SID:       fmt.Sprintf("0x%x", uint64(sid)),
		Path:      path,
	}
	if opErr != nil {
		entry.Error = opErr.Error()
	}

	j.mu.Lock()
	_ = j.enc.Encode(entry)
	j.mu.Unlock()
}

// Close closes the underlying file when the journal owns one.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.c != nil {
		return j.c.Close()
	}
	return nil
}
