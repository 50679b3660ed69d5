package compiler

import (
	"fmt"

	"github.com/avanasov/stackc/diag"
	"github.com/avanasov/stackc/types"
)

// EntryKind distinguishes the three namespaces sharing one name space.
type EntryKind int

const (
	EntryConst EntryKind = iota
	EntryVar
	EntryProc
)

// ProcLinkage is the tagged variant for a procedure entry point: Internal
// addresses a position in the IR; External names a symbol the native
// emitter resolves. The compiler rejects a call to an External entry when it
// lowers the call statement.
type ProcLinkage int

const (
	Internal ProcLinkage = iota
	External
)

// Entry is one symbol-table record. Only the fields relevant to Kind are
// meaningful; the rest are zero.
type Entry struct {
	Kind EntryKind
	Loc  diag.Location

	// EntryConst
	ConstValue uint64

	// EntryVar
	VarOffset int
	VarType   types.Type

	// EntryProc
	ProcLinkage  ProcLinkage
	ProcAddr     int
	ProcExternal string
	ProcParams   []types.Type
}

// Names is the single namespace shared by constants, variables, and
// procedures. Uniqueness is enforced at insert time, never at lookup time,
// so that the diagnostic for a collision always points at the second
// declaration with an info note at the first — deterministic regardless of
// lookup order.
type Names struct {
	entries map[string]*Entry
	order   []string
}

func NewNames() *Names {
	return &Names{entries: make(map[string]*Entry)}
}

// Lookup resolves name to its entry, if any.
func (n *Names) Lookup(name string) (*Entry, bool) {
	e, ok := n.entries[name]
	return e, ok
}

// Order returns names in insertion order, for debug/IR-dump output.
func (n *Names) Order() []string {
	return n.order
}

// define inserts name if it is not already present anywhere in the shared
// namespace. On collision it emits an error at loc and an info at the prior
// declaration, and returns false.
func (n *Names) define(sink *diag.Sink, name string, loc diag.Location, entry *Entry) bool {
	if prior, exists := n.entries[name]; exists {
		sink.Errorf(loc, "redefinition of %q", name)
		sink.Infof(prior.Loc, "previous declaration of %q is here", name)
		return false
	}
	entry.Loc = loc
	n.entries[name] = entry
	n.order = append(n.order, name)
	return true
}

func (n *Names) DefineConst(sink *diag.Sink, name string, loc diag.Location, value uint64) bool {
	return n.define(sink, name, loc, &Entry{Kind: EntryConst, ConstValue: value})
}

func (n *Names) DefineVar(sink *diag.Sink, name string, loc diag.Location, offset int, typ types.Type) bool {
	return n.define(sink, name, loc, &Entry{Kind: EntryVar, VarOffset: offset, VarType: typ})
}

func (n *Names) DefineProc(sink *diag.Sink, name string, loc diag.Location, addr int, params []types.Type) bool {
	return n.define(sink, name, loc, &Entry{Kind: EntryProc, ProcLinkage: Internal, ProcAddr: addr, ProcParams: params})
}

func (e *Entry) String() string {
	switch e.Kind {
	case EntryConst:
		return fmt.Sprintf("const = %d", e.ConstValue)
	case EntryVar:
		return fmt.Sprintf("var @%d : %s", e.VarOffset, e.VarType)
	case EntryProc:
		return fmt.Sprintf("proc @%d (%d params)", e.ProcAddr, len(e.ProcParams))
	default:
		return "?"
	}
}
