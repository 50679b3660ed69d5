package debugger

import (
	"fmt"
	"io"

	"github.com/avanasov/stackc/compiler"
	"github.com/avanasov/stackc/ir"
)

// DumpProgram writes a plain-text listing of prog's symbol table and
// instruction stream to w — the output of the "ir" CLI subcommand.
func DumpProgram(w io.Writer, prog *ir.Program, names *compiler.Names) {
	fmt.Fprintf(w, "entry_offset=%d init_data_bytes=%d uninit_data_bytes=%d instructions=%d\n",
		prog.EntryOffset, len(prog.InitData), prog.UninitDataSize, prog.Len())

	fmt.Fprintln(w, "symbols:")
	for _, name := range names.Order() {
		entry, _ := names.Lookup(name)
		fmt.Fprintf(w, "  %-20s %s\n", name, entry.String())
	}

	fmt.Fprintln(w, "instructions:")
	for i, instr := range prog.Instructions {
		fmt.Fprintf(w, "  %06d  %-10s %8d  %q\n", i, instr.Op, instr.Imm, instr.Str)
	}
}
