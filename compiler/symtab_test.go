package compiler

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avanasov/stackc/diag"
	"github.com/avanasov/stackc/types"
)

func TestDefineConstThenLookup(t *testing.T) {
	sink := diag.NewSink(&bytes.Buffer{})
	names := NewNames()

	require.True(t, names.DefineConst(sink, "limit", diag.Location{Line: 1}, 42))

	entry, ok := names.Lookup("limit")
	require.True(t, ok, "Lookup should find the defined constant")
	assert.Equal(t, EntryConst, entry.Kind)
	assert.EqualValues(t, 42, entry.ConstValue)
	assert.False(t, sink.Failed(), "sink should not have failed on a fresh definition")
}

func TestRedefinitionAcrossKindsIsRejected(t *testing.T) {
	sink := diag.NewSink(&bytes.Buffer{})
	names := NewNames()

	require.True(t, names.DefineVar(sink, "x", diag.Location{Line: 1}, 0, types.Int(32)))
	require.False(t, sink.Failed(), "first declaration should not fail")

	ok := names.DefineProc(sink, "x", diag.Location{Line: 5}, 10, nil)
	assert.False(t, ok, "redefining x as a procedure should be rejected")
	assert.True(t, sink.Failed(), "sink should report the collision")

	entry, _ := names.Lookup("x")
	assert.Equal(t, EntryVar, entry.Kind, "the original var entry must survive a rejected redefinition")
}

func TestOrderReflectsInsertionOrder(t *testing.T) {
	sink := diag.NewSink(&bytes.Buffer{})
	names := NewNames()

	names.DefineConst(sink, "c", diag.Location{}, 1)
	names.DefineVar(sink, "v", diag.Location{}, 0, types.Bool())
	names.DefineProc(sink, "p", diag.Location{}, 0, nil)

	assert.Equal(t, []string{"c", "v", "p"}, names.Order())
}

func TestEntryStringByKind(t *testing.T) {
	sink := diag.NewSink(&bytes.Buffer{})
	names := NewNames()

	names.DefineVar(sink, "v", diag.Location{}, 16, types.Int(64))
	entry, _ := names.Lookup("v")
	assert.Equal(t, "var @16 : Int64", entry.String())
}
