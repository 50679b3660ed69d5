// Package loader wires the front end together: reading a source file,
// running it through the lexer, parser, and compiler, and handing the
// resulting program to a fresh virtual machine.
package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/avanasov/stackc/compiler"
	"github.com/avanasov/stackc/diag"
	"github.com/avanasov/stackc/ir"
	"github.com/avanasov/stackc/lexer"
	"github.com/avanasov/stackc/parser"
	"github.com/avanasov/stackc/vm"
)

// CompileFile reads path, lexes and parses it, and lowers the result into an
// ir.Program. Diagnostics are written to sink; the caller inspects
// sink.Failed() or the returned error to decide whether to proceed.
func CompileFile(path string, sink *diag.Sink) (*ir.Program, *compiler.Names, error) {
	src, err := os.ReadFile(path) // #nosec G304 -- user-specified source path
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	lex := lexer.New(path, string(src), sink)
	p := parser.New(lex, sink)
	file, err := p.ParseFile()
	if err != nil {
		return nil, nil, fmt.Errorf("parse failed: %w", err)
	}

	comp := compiler.New(sink)
	prog, names, err := comp.Compile(file)
	if err != nil {
		return nil, nil, fmt.Errorf("compile failed: %w", err)
	}
	return prog, names, nil
}

// LoadProgramIntoVM constructs a Machine for prog with the given frame
// stack capacity and standard I/O streams.
func LoadProgramIntoVM(prog *ir.Program, frameStackSize int, stdout io.Writer, stdin io.Reader) *vm.Machine {
	return vm.New(prog, frameStackSize, stdout, stdin)
}
