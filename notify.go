// notify.go: MPSC ring buffer for configuration change events
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package conftree

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"
)

// ChangeOp tags the driver operation a change event came from.
type ChangeOp uint8

const (
	ChangeSet ChangeOp = 1 + iota
	ChangeImport
	ChangeDelete
	ChangeApply
)

func (op ChangeOp) String() string {
	switch op {
	case ChangeSet:
		return "set"
	case ChangeImport:
		return "import"
	case ChangeDelete:
		return "delete"
	case ChangeApply:
		return "apply"
	default:
		return "unknown"
	}
}

// ChangeEvent is one successful mutating operation. The struct is fixed
// size so ring slots never allocate; 96 bytes of path cover any realistic
// tree depth and longer paths are truncated.
type ChangeEvent struct {
	At      int64 // Unix nanoseconds
	SID     SID
	Op      ChangeOp
	PathLen uint8
	Path    [96]byte
}

// PathString returns the event's rendered path.
func (e *ChangeEvent) PathString() string {
	return string(e.Path[:e.PathLen])
}

// Notifier is a multi-producer single-consumer ring buffer delivering
// change events to one processor callback. Producers (the drivers) claim
// a slot with an atomic sequence and mark it available; the consumer
// processes contiguous available slots in batches. Events are dropped,
// not blocked on, when the ring is full.
type Notifier struct {
	buffer   []ChangeEvent
	capacity int64
	mask     int64

	writerCursor atomic.Int64
	readerCursor atomic.Int64
	_            [48]byte // padding against false sharing

	available []atomic.Int64

	processor func(*ChangeEvent)
	batchSize int64

	running   atomic.Bool
	processed atomic.Int64
	dropped   atomic.Int64
}

// NewNotifier creates a notifier with the given ring capacity (rounded to
// a safe default when not a power of two) and processor callback.
func NewNotifier(capacity int64, processor func(*ChangeEvent)) *Notifier {
	if capacity <= 0 || (capacity&(capacity-1)) != 0 {
		capacity = 64
	}
	n := &Notifier{
		buffer:    make([]ChangeEvent, capacity),
		capacity:  capacity,
		mask:      capacity - 1,
		available: make([]atomic.Int64, capacity),
		processor: processor,
		batchSize: 4,
	}
	for i := range n.available {
		n.available[i].Store(-1)
	}
	n.running.Store(true)
	return n
}

// Publish queues one change event. Returns false when the notifier is
// stopped or the ring is full.
func (n *Notifier) Publish(op ChangeOp, sid SID, path string) bool {
	if !n.running.Load() {
		n.dropped.Add(1)
		return false
	}

	sequence := n.writerCursor.Add(1) - 1
	if sequence >= n.readerCursor.Load()+n.capacity {
		// The claimed sequence is abandoned without publishing its slot,
		// so the consumer stops at the gap and later events stay queued
		// behind it. Size the ring for the peak event burst; a full ring
		// is a configuration problem, not a transient to ride out.
		n.dropped.Add(1)
		return false
	}

	slot := &n.buffer[sequence&n.mask]
	slot.At = timecache.CachedTimeNano()
	slot.SID = sid
	slot.Op = op
	copyLen := len(path)
	if copyLen > len(slot.Path) {
		copyLen = len(slot.Path)
	}
	copy(slot.Path[:], path[:copyLen])
	slot.PathLen = uint8(copyLen)

	n.available[sequence&n.mask].Store(sequence)
	return true
}

// ProcessBatch delivers contiguous available events to the processor and
// returns how many were delivered.
func (n *Notifier) ProcessBatch() int {
	current := n.readerCursor.Load()
	writerPos := n.writerCursor.Load()
	if current >= writerPos {
		return 0
	}

	maxProcess := writerPos - current
	if maxProcess > n.batchSize {
		maxProcess = n.batchSize
	}

	available := current - 1
	for seq := current; seq < current+maxProcess; seq++ {
		if n.available[seq&n.mask].Load() == seq {
			available = seq
		} else {
			break
		}
	}
	if available < current {
		return 0
	}

	processed := int(available - current + 1)
	for seq := current; seq <= available; seq++ {
		idx := seq & n.mask
		n.processor(&n.buffer[idx])
		n.available[idx].Store(-1)
	}

	n.readerCursor.Store(available + 1)
	n.processed.Add(int64(processed))
	return processed
}

// Run is the consumer loop: spin briefly, then yield, then sleep, so idle
// registries cost next to nothing. Returns after Stop, draining first.
func (n *Notifier) Run() {
	spins := 0
	for n.running.Load() {
		if n.ProcessBatch() > 0 {
			spins = 0
			continue
		}
		spins++
		if spins < 2000 {
			continue
		}
		if spins < 6000 {
			if spins&3 == 0 {
				runtime.Gosched()
			}
			continue
		}
		time.Sleep(200 * time.Microsecond)
		spins = 0
	}

	for n.ProcessBatch() > 0 {
	}
}

// Stop terminates the consumer loop. Pending events are drained by Run
// before it returns.
func (n *Notifier) Stop() {
	n.running.Store(false)
}

// Stats reports ring counters for diagnostics.
func (n *Notifier) Stats() map[string]int64 {
	writerPos := n.writerCursor.Load()
	readerPos := n.readerCursor.Load()
	running := int64(0)
	if n.running.Load() {
		running = 1
	}
	return map[string]int64{
		"writer_position": writerPos,
		"reader_position": readerPos,
		"buffer_size":     n.capacity,
		"items_buffered":  writerPos - readerPos,
		"items_processed": n.processed.Load(),
		"items_dropped":   n.dropped.Load(),
		"running":         running,
	}
}
