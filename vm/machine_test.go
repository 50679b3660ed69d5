package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avanasov/stackc/diag"
	"github.com/avanasov/stackc/ir"
)

func run(t *testing.T, prog *ir.Program, frameStack int) (string, *Machine) {
	t.Helper()
	var out bytes.Buffer
	m := New(prog, frameStack, &out, strings.NewReader(""))
	require.NoError(t, m.Run())
	return out.String(), m
}

func TestArithmeticAndPrint(t *testing.T) {
	prog := &ir.Program{}
	prog.EmitImm(ir.PushInt, 3, diag.Location{})
	prog.EmitImm(ir.PushInt, 4, diag.Location{})
	prog.Emit(ir.NatAdd, diag.Location{})
	prog.Emit(ir.PrintInt, diag.Location{})
	prog.Emit(ir.Return, diag.Location{})
	prog.EntryOffset = 0

	out, _ := run(t, prog, 64)
	assert.Equal(t, "7", out)
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	prog := &ir.Program{}
	prog.EmitImm(ir.PushInt, 1, diag.Location{})
	prog.EmitImm(ir.PushInt, 0, diag.Location{})
	prog.Emit(ir.NatDiv, diag.Location{})
	prog.Emit(ir.Return, diag.Location{})
	prog.EntryOffset = 0

	m := New(prog, 64, &bytes.Buffer{}, strings.NewReader(""))
	err := m.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "division by zero")
}

func TestConditionalJumpSkipsWhenFalse(t *testing.T) {
	prog := &ir.Program{}
	prog.EmitImm(ir.PushInt, 0, diag.Location{}) // condition: false
	condJump := prog.Emit(ir.CondJump, diag.Location{})
	prog.EmitImm(ir.PushInt, 111, diag.Location{}) // taken only if jump skipped
	prog.Emit(ir.PrintInt, diag.Location{})
	target := prog.Emit(ir.Return, diag.Location{})
	prog.Patch(condJump, ir.CondJump, int64(target))
	prog.EntryOffset = 0

	out, _ := run(t, prog, 64)
	assert.Equal(t, "111", out, "condjump with false condition should not branch")
}

func TestInternalCallAndReturn(t *testing.T) {
	prog := &ir.Program{}
	// main: call proc; print 99; return
	call := prog.Emit(ir.InternalCall, diag.Location{})
	prog.EmitImm(ir.PushInt, 99, diag.Location{})
	prog.Emit(ir.PrintInt, diag.Location{})
	prog.Emit(ir.Return, diag.Location{})

	// proc: print 1; return
	procStart := prog.Len()
	prog.EmitImm(ir.PushInt, 1, diag.Location{})
	prog.Emit(ir.PrintInt, diag.Location{})
	prog.Emit(ir.Return, diag.Location{})

	prog.Patch(call, ir.InternalCall, int64(procStart))
	prog.EntryOffset = 0

	out, _ := run(t, prog, 64)
	assert.Equal(t, "199", out, "proc prints 1, then caller prints 99")
}

func TestStore64AndLoad64Roundtrip(t *testing.T) {
	prog := &ir.Program{}
	prog.EmitImm(ir.PushUninitDataPointer, 0, diag.Location{})
	prog.EmitImm(ir.PushInt, 1234, diag.Location{})
	prog.EmitImm(ir.PushUninitDataPointer, 0, diag.Location{})
	prog.Emit(ir.Store64, diag.Location{})
	prog.EmitImm(ir.PushUninitDataPointer, 0, diag.Location{})
	prog.Emit(ir.Load64, diag.Location{})
	prog.Emit(ir.PrintInt, diag.Location{})
	prog.Emit(ir.Return, diag.Location{})
	prog.UninitDataSize = 8
	prog.EntryOffset = 0

	out, _ := run(t, prog, 64)
	assert.Equal(t, "1234", out)
}

func TestDataStartAccountsForFrameStackSize(t *testing.T) {
	prog := &ir.Program{}
	prog.Emit(ir.Return, diag.Location{})
	prog.EntryOffset = 0

	m := New(prog, 128, &bytes.Buffer{}, strings.NewReader(""))
	assert.Equal(t, 128, m.DataStart())
}

func TestOutOfRangeMemoryAccessIsRuntimeError(t *testing.T) {
	prog := &ir.Program{}
	prog.EmitImm(ir.PushInt, 999999, diag.Location{})
	prog.Emit(ir.Load64, diag.Location{})
	prog.Emit(ir.Return, diag.Location{})
	prog.EntryOffset = 0

	m := New(prog, 64, &bytes.Buffer{}, strings.NewReader(""))
	err := m.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestExternalCallRejectedInInterpretMode(t *testing.T) {
	prog := &ir.Program{}
	prog.EmitStr(ir.ExternalCall, "write", diag.Location{})
	prog.Emit(ir.Return, diag.Location{})
	prog.EntryOffset = 0

	m := New(prog, 64, &bytes.Buffer{}, strings.NewReader(""))
	err := m.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected in interpret mode")
}
