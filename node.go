// node.go: Configuration tree model and handler registration
//
// The tree is made of group nodes and handlers. Every element owns a range
// of 64-bit identifiers (SIDs); a child's range nests inside its parent's.
// Scalar handlers own a single identifier, array handlers own
// [lower, lower+stride*count] with item i occupying
// [lower+1+i*stride, lower+(i+1)*stride].
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package conftree

import (
	"log"
	"sync"

	"github.com/agilira/go-errors"
)

// SID is a 64-bit configuration identifier.
type SID uint64

// SIDMax is the upper bound of the registry root's range.
const SIDMax SID = ^SID(0)

// MaxDepth bounds tree nesting. Registration past this depth fails with
// ErrCodeDepthExceeded.
const MaxDepth = 8

// DefaultRootLabel prefixes every persistence key rendered by the default
// handlers.
const DefaultRootLabel = "/conf"

// Registrant is implemented by Node, Handler and ArrayHandler. It is the
// unit the registry stores and the iterators walk.
type Registrant interface {
	// Name returns the path segment the element contributes.
	Name() string
	// Range returns the identifier range the element owns.
	Range() (lower, upper SID)

	core() *nodeCore
	handler() *Handler
	array() *ArrayHandler
}

// nodeCore is the tree bookkeeping shared by all registrants.
type nodeCore struct {
	name     string
	lower    SID
	upper    SID
	level    int
	reg      *Registry
	children []Registrant
}

// Node is a pure group element. It owns an identifier range and children
// but no value and no operations.
type Node struct {
	nc nodeCore
}

// NewNode creates a group node owning [lower, upper].
func NewNode(name string, lower, upper SID) *Node {
	return &Node{nc: nodeCore{name: name, lower: lower, upper: upper}}
}

func (n *Node) Name() string         { return n.nc.name }
func (n *Node) Range() (SID, SID)    { return n.nc.lower, n.nc.upper }
func (n *Node) core() *nodeCore      { return &n.nc }
func (n *Node) handler() *Handler    { return nil }
func (n *Node) array() *ArrayHandler { return nil }

// Handler is a leaf element holding a scalar value of fixed size. Its
// operations are supplied as an Ops value; optional capabilities (Porter,
// Deleter, Verifier, Applier, Codec) are discovered by type assertion on
// the same value.
type Handler struct {
	nc   nodeCore
	mu   sync.Mutex
	ops  Ops
	data []byte
	size int
	src  Backend
	dst  Backend
	arr  *ArrayHandler // back-pointer when embedded in an ArrayHandler
}

// NewHandler creates a scalar handler owning the single identifier sid.
// data is the in-memory value storage; its length is the handler's size.
func NewHandler(name string, sid SID, ops Ops, data []byte) *Handler {
	return &Handler{
		nc:   nodeCore{name: name, lower: sid, upper: sid},
		ops:  ops,
		data: data,
		size: len(data),
	}
}

func (h *Handler) Name() string         { return h.nc.name }
func (h *Handler) Range() (SID, SID)    { return h.nc.lower, h.nc.upper }
func (h *Handler) core() *nodeCore      { return &h.nc }
func (h *Handler) handler() *Handler    { return h }
func (h *Handler) array() *ArrayHandler { return nil }

// Size returns the value size in bytes (per item for array handlers).
func (h *Handler) Size() int { return h.size }

// Data returns the handler's backing storage.
func (h *Handler) Data() []byte { return h.data }

// Value returns the byte span the key addresses: the whole array when the
// key addresses an array handler's root, one value otherwise.
func (h *Handler) Value(k OpKey) []byte {
	return h.data[k.Offset : k.Offset+h.spanSize(k)]
}

// spanSize is the number of value bytes the key addresses.
func (h *Handler) spanSize(k OpKey) int {
	if h.arr != nil && k.Normal == h.nc.lower {
		return h.size * h.arr.count
	}
	return h.size
}

// ArrayHandler is a handler owning count items laid out back to back in
// its data slice, addressed through the stride scheme.
type ArrayHandler struct {
	Handler
	count       int
	stride      SID
	exportWhole bool
}

// NewArrayHandler creates an array handler. The range covers
// [lower, lower+stride*count]; item i lives at identifier
// lower+1+i*stride and byte offset i*itemSize. data may be larger than
// itemSize*count when it aliases an enclosing array's storage.
func NewArrayHandler(name string, lower SID, stride SID, count, itemSize int, ops Ops, data []byte) *ArrayHandler {
	a := &ArrayHandler{
		Handler: Handler{
			nc:   nodeCore{name: name, lower: lower, upper: lower + stride*SID(count)},
			ops:  ops,
			data: data,
			size: itemSize,
		},
		count:  count,
		stride: stride,
	}
	a.Handler.arr = a
	return a
}

// ExportAsWhole marks the array to be persisted as one record under its
// own key instead of one record per item. Returns the handler for chaining.
func (a *ArrayHandler) ExportAsWhole() *ArrayHandler {
	a.exportWhole = true
	return a
}

// Reserve grows the array's owned range beyond the populated items, so
// the layout can leave room for more items later. Identifiers inside the
// reserved tail resolve to ErrCodeOutOfRange. Shrinking is ignored.
func (a *ArrayHandler) Reserve(upper SID) *ArrayHandler {
	if upper > a.nc.upper {
		a.nc.upper = upper
	}
	return a
}

func (a *ArrayHandler) array() *ArrayHandler { return a }

// Count returns the number of array items.
func (a *ArrayHandler) Count() int { return a.count }

// Stride returns the identifier distance between consecutive items.
func (a *ArrayHandler) Stride() SID { return a.stride }

// Registry is an explicit configuration tree instance. The zero value is
// not usable; construct with New.
type Registry struct {
	root     Node
	label    string
	logf     func(format string, args ...any)
	journal  *Journal
	notifier *Notifier
}

// Option configures a Registry.
type Option func(*Registry)

// WithRootLabel overrides the persistence key prefix (default "/conf").
func WithRootLabel(label string) Option {
	return func(r *Registry) { r.label = label }
}

// WithLogger overrides the printf-style logger used for best-effort
// backend failures (default log.Printf).
func WithLogger(logf func(format string, args ...any)) Option {
	return func(r *Registry) { r.logf = logf }
}

// WithJournal attaches an operation journal; every mutating or
// persistence driver call is recorded, including failed ones.
func WithJournal(j *Journal) Option {
	return func(r *Registry) { r.journal = j }
}

// WithNotifier attaches a change notifier; successful mutating operations
// publish one event each.
func WithNotifier(n *Notifier) Option {
	return func(r *Registry) { r.notifier = n }
}

// New creates an empty registry whose root owns the full identifier space.
func New(opts ...Option) *Registry {
	r := &Registry{
		label: DefaultRootLabel,
		logf:  log.Printf,
	}
	r.root.nc = nodeCore{lower: 0, upper: SIDMax}
	r.root.nc.reg = r
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Root returns the registry's root node, the registration anchor for
// top-level elements.
func (r *Registry) Root() *Node { return &r.root }

// RootLabel returns the persistence key prefix.
func (r *Registry) RootLabel() string { return r.label }

// Register attaches child under parent. The parent must already belong to
// this registry (the root always does), the child must not be attached
// anywhere, its range must nest inside the parent's, and the resulting
// depth must not exceed MaxDepth. Children are visited in registration
// order. Sibling range overlap is not checked; disjoint layout is the
// caller's contract.
func (r *Registry) Register(parent, child Registrant) error {
	pc := parent.core()
	cc := child.core()

	if pc.reg != r {
		return errors.New(ErrCodeInvalidNode, "parent is not attached to this registry")
	}
	if cc.reg != nil {
		return errors.New(ErrCodeInvalidNode, "child is already registered").
			WithContext("name", cc.name)
	}
	if cc.lower > cc.upper {
		return errors.New(ErrCodeInvalidNode, "child range is inverted").
			WithContext("name", cc.name)
	}
	if cc.lower < pc.lower || cc.upper > pc.upper {
		return errors.New(ErrCodeInvalidNode, "child range does not nest inside parent range").
			WithContext("name", cc.name)
	}
	if a := child.array(); a != nil {
		if a.count <= 0 || a.stride == 0 {
			return errors.New(ErrCodeInvalidNode, "array handler needs positive count and stride").
				WithContext("name", cc.name)
		}
		if len(a.data) < a.size*a.count {
			return errors.New(ErrCodeInvalidNode, "array handler storage smaller than size*count").
				WithContext("name", cc.name)
		}
	} else if h := child.handler(); h != nil && h.ops == nil {
		return errors.New(ErrCodeInvalidNode, "handler has no operations").
			WithContext("name", cc.name)
	}
	if pc.level+1 > MaxDepth {
		return errors.New(ErrCodeDepthExceeded, "registration exceeds maximum tree depth").
			WithContext("name", cc.name).
			WithContext("max_depth", MaxDepth)
	}

	cc.level = pc.level + 1
	cc.reg = r
	pc.children = append(pc.children, child)
	return nil
}
