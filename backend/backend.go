// Package backend defines the narrow contract the native code emitter
// consumes: a well-formed IR program, its data image, and an entry offset,
// from which it produces a self-contained executable. The core pipeline
// (lexer, parser, compiler, vm) never depends on a concrete target; it only
// depends on this interface, so a real assembler/linker backend can be
// swapped in without touching anything upstream.
package backend

import (
	"bufio"
	"fmt"
	"os"

	"github.com/avanasov/stackc/ir"
)

// Target lowers a well-formed IR program to a self-contained executable at
// outputPath. useExternalAssembler selects whether the target shells out to
// a system assembler/linker toolchain or produces output some other way;
// the interpreter never interprets this flag, only a Target does.
type Target interface {
	Emit(prog *ir.Program, outputPath string, useExternalAssembler bool) error
}

// Placeholder is a reference Target: it does not produce a runnable
// executable. It checks that every jump/call target and the entry offset lie
// in range (it does not check that a call target starts a procedure) and
// writes a plain-text
// object listing — the instruction stream and data image sizes — to
// outputPath. It exists so the compile pipeline and its "comp" CLI mode are
// exercisable without a real assembler/linker dependency; a production
// target replaces this wholesale.
type Placeholder struct{}

func (Placeholder) Emit(prog *ir.Program, outputPath string, useExternalAssembler bool) error {
	if err := validate(prog); err != nil {
		return err
	}

	f, err := os.Create(outputPath) // #nosec G304 -- user-specified output path
	if err != nil {
		return fmt.Errorf("backend: failed to create output file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	fmt.Fprintf(w, "; stackc placeholder object\n")
	fmt.Fprintf(w, "; external_assembler=%v\n", useExternalAssembler)
	fmt.Fprintf(w, "; entry_offset=%d\n", prog.EntryOffset)
	fmt.Fprintf(w, "; init_data_bytes=%d\n", len(prog.InitData))
	fmt.Fprintf(w, "; uninit_data_bytes=%d\n", prog.UninitDataSize)
	fmt.Fprintf(w, "; instruction_count=%d\n", prog.Len())
	for i, instr := range prog.Instructions {
		fmt.Fprintf(w, "%06d  %s  %d  %q\n", i, instr.Op, instr.Imm, instr.Str)
	}
	return nil
}

// validate checks the §3 invariants a backend is entitled to assume: every
// jump/call target lies in [0, len(IR)], and every InternalCall targets a
// position that is itself the start of some procedure (approximated here as
// any in-range position — the compiler guarantees call targets are
// procedure entries; this is a defense-in-depth bounds check only).
func validate(prog *ir.Program) error {
	n := prog.Len()
	for i, instr := range prog.Instructions {
		switch instr.Op {
		case ir.Jump, ir.CondJump, ir.InternalCall:
			if instr.Imm < 0 || int(instr.Imm) > n {
				return &EmitError{Loc: instr.Location, Message: fmt.Sprintf("instruction %d: jump/call target %d out of range [0,%d]", i, instr.Imm, n)}
			}
		}
	}
	if prog.EntryOffset < 0 || prog.EntryOffset > n {
		return &EmitError{Message: fmt.Sprintf("entry offset %d out of range [0,%d]", prog.EntryOffset, n)}
	}
	return nil
}
