package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avanasov/stackc/diag"
)

func TestEmitReturnsSequentialIndices(t *testing.T) {
	var prog Program

	i0 := prog.Emit(Nop, diag.Location{})
	i1 := prog.EmitImm(PushInt, 42, diag.Location{})
	i2 := prog.EmitStr(ExternalCall, "write", diag.Location{})

	require.Equal(t, 0, i0)
	require.Equal(t, 1, i1)
	require.Equal(t, 2, i2)
	assert.Equal(t, 3, prog.Len())
	assert.EqualValues(t, 42, prog.Instructions[1].Imm)
	assert.Equal(t, "write", prog.Instructions[2].Str)
}

func TestPatchOverwritesInPlace(t *testing.T) {
	var prog Program
	idx := prog.Emit(Jump, diag.Location{})
	prog.Patch(idx, CondJump, 7)

	got := prog.Instructions[idx]
	assert.Equal(t, CondJump, got.Op)
	assert.EqualValues(t, 7, got.Imm)
}

func TestAppendInitDataReturnsOffset(t *testing.T) {
	var prog Program

	off1 := prog.AppendInitData([]byte("abc"))
	off2 := prog.AppendInitData([]byte("de"))

	assert.Equal(t, 0, off1)
	assert.Equal(t, 3, off2)
	assert.Equal(t, "abcde", string(prog.InitData))
}

func TestOpStringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "PushInt", PushInt.String())
	assert.Equal(t, "Op(?)", Op(9999).String())
}
