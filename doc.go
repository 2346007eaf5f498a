// doc.go: Package documentation for conftree
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

// Package conftree is a persistent, hierarchical runtime configuration
// registry addressed through 64-bit identifiers (SIDs).
//
// A registry is a tree of group nodes, scalar handlers and array
// handlers. Every element owns a range of identifiers nested inside its
// parent's range; scalar handlers own exactly one identifier, array
// handlers own [lower, lower+stride*count] with item i reachable at
// lower+1+i*stride. Addressing any identifier addresses the subtree below
// the deepest element whose range contains it, so one call can set, load
// or persist a single leaf, one array item, or a whole branch.
//
// Building a tree:
//
//	r := conftree.New()
//	food := conftree.NewNode("food", 0x1000, 0x100f)
//	white := conftree.NewHandler("white", 0x1002, conftree.DefaultOps{}, make([]byte, 6))
//	_ = r.Register(r.Root(), food)
//	_ = r.Register(food, white)
//
// Operating on it:
//
//	rest, err := r.Set(0x1002, []byte("9.99\x00\x00"))
//	err = r.Export(0x1002) // persist to the handler's backend
//	err = r.Import(0x1000) // reload the whole food branch
//
// # Handlers and capabilities
//
// Handlers carry an Ops value implementing at least Set and Get.
// DefaultOps covers opaque byte values; custom handlers embed it and add
// the optional capabilities they need:
//
//	type priceOps struct{ conftree.DefaultOps }
//
//	func (priceOps) Verify(h *conftree.Handler, k conftree.OpKey) error {
//		// reject malformed prices before they are persisted
//	}
//
// Optional capabilities are discovered by type assertion: Porter
// (import/export), Deleter, Verifier, Applier and Codec. A handler that
// implements none of them simply skips those operations.
//
// # Persistence
//
// Handlers persist through a Backend (Load/Store/Delete on rendered path
// keys such as "/conf/orders/0"). The backend subpackages provide
// memory, bbolt, SQLite and filesystem implementations; SetBackend
// rebinds a whole subtree at runtime. Arrays persist one record per item
// unless marked ExportAsWhole.
//
// # Observability
//
// WithJournal records every mutating or persistence driver call as one
// JSON line; WithNotifier
// publishes change events through a lock-free MPSC ring to a consumer
// callback. Both are optional and cost nothing when absent.
package conftree
