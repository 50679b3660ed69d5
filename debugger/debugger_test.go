package debugger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/avanasov/stackc/compiler"
	"github.com/avanasov/stackc/diag"
	"github.com/avanasov/stackc/ir"
	"github.com/avanasov/stackc/vm"
)

func tinyProgram() *ir.Program {
	prog := &ir.Program{}
	prog.EmitImm(ir.PushInt, 5, diag.Location{})
	prog.Emit(ir.Return, diag.Location{})
	prog.EntryOffset = 0
	return prog
}

func TestRunCLI_ContinueToHalt(t *testing.T) {
	prog := tinyProgram()
	names := compiler.NewNames()
	m := vm.New(prog, 256, &bytes.Buffer{}, strings.NewReader(""))
	dbg := New(m, prog, names)

	var out bytes.Buffer
	err := dbg.RunCLI(strings.NewReader("continue\n"), &out)
	if err != nil {
		t.Fatalf("RunCLI returned error: %v", err)
	}
	if !strings.Contains(out.String(), "halted") {
		t.Errorf("expected halted message, got: %q", out.String())
	}
}

func TestRunCLI_BreakpointStopsExecution(t *testing.T) {
	prog := tinyProgram()
	names := compiler.NewNames()
	m := vm.New(prog, 256, &bytes.Buffer{}, strings.NewReader(""))
	dbg := New(m, prog, names)

	var out bytes.Buffer
	in := "break 1\ncontinue\ncontinue\n"
	if err := dbg.RunCLI(strings.NewReader(in), &out); err != nil {
		t.Fatalf("RunCLI returned error: %v", err)
	}

	if !strings.Contains(out.String(), "breakpoint 1 at ir#1: Return") {
		t.Errorf("expected breakpoint hit, got: %q", out.String())
	}
}

func TestRunCLI_QuitHaltsImmediately(t *testing.T) {
	prog := tinyProgram()
	names := compiler.NewNames()
	m := vm.New(prog, 256, &bytes.Buffer{}, strings.NewReader(""))
	dbg := New(m, prog, names)

	var out bytes.Buffer
	if err := dbg.RunCLI(strings.NewReader("quit\n"), &out); err != nil {
		t.Fatalf("RunCLI returned error: %v", err)
	}
	if !strings.Contains(out.String(), "halted") {
		t.Error("quit should halt the machine and let Run return")
	}
}

func TestDumpProgram(t *testing.T) {
	prog := tinyProgram()
	names := compiler.NewNames()
	names.DefineConst(diag.NewSink(&bytes.Buffer{}), "limit", diag.Location{}, 10)

	var out bytes.Buffer
	DumpProgram(&out, prog, names)

	text := out.String()
	if !strings.Contains(text, "limit") {
		t.Error("expected symbol table to list the defined constant")
	}
	if !strings.Contains(text, "PushInt") {
		t.Error("expected instruction listing to include PushInt")
	}
}
