package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualComparesStructurally(t *testing.T) {
	assert.True(t, Int(32).Equal(Int(32)), "Int32 should equal Int32")
	assert.False(t, Int(32).Equal(Int(64)), "Int32 should not equal Int64")
	assert.False(t, Int(32).Equal(Nat(32)), "Int32 should not equal Nat32, different kind")
	assert.True(t, Pointer(Bool()).Equal(Pointer(Bool())), "^Bool should equal ^Bool")
	assert.False(t, Pointer(Bool()).Equal(Pointer(String())), "^Bool should not equal ^String")
	assert.True(t, Struct("Point").Equal(Struct("Point")))
	assert.False(t, Struct("Point").Equal(Struct("Line")))
}

func TestStringFormatting(t *testing.T) {
	cases := map[Type]string{
		Nat(8):          "Nat8",
		Int(64):         "Int64",
		Float32():       "Float32",
		Bool():          "Bool",
		String():        "String",
		Pointer(Bool()): "^Bool",
		Struct("Point"): "Point",
	}
	for typ, want := range cases {
		assert.Equal(t, want, typ.String())
	}
}

func TestBuiltinLookup(t *testing.T) {
	typ, ok := Builtin("Int32")
	require.True(t, ok)
	assert.True(t, typ.Equal(Int(32)))

	_, ok = Builtin("Point")
	assert.False(t, ok, "Builtin(Point) should fail, structs aren't builtins")
}

func TestRegistrySize(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, 4, r.Size(Int(32)))
	assert.Equal(t, 1, r.Size(Bool()))
	assert.Equal(t, 16, r.Size(String()))
	assert.Equal(t, WordSize, r.Size(Pointer(Int(8))))
}

func TestRegistryDeclareComputesOffsetsAndSize(t *testing.T) {
	r := NewRegistry()

	info := r.Declare("Point", []struct {
		Name string
		Type Type
	}{
		{Name: "x", Type: Int(32)},
		{Name: "y", Type: Int(32)},
		{Name: "label", Type: Bool()},
	})

	require.Equal(t, 9, info.Size)
	require.Len(t, info.Fields, 3)
	assert.Equal(t, 0, info.Fields[0].Offset)
	assert.Equal(t, 4, info.Fields[1].Offset)
	assert.Equal(t, 8, info.Fields[2].Offset)

	assert.Equal(t, 9, r.Size(Struct("Point")))

	_, ok := r.Lookup("Missing")
	assert.False(t, ok, "Lookup(Missing) should fail for an undeclared struct")
	assert.Equal(t, 0, r.Size(Struct("Missing")))
}
