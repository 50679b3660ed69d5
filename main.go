package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/avanasov/stackc/backend"
	"github.com/avanasov/stackc/config"
	"github.com/avanasov/stackc/debugger"
	"github.com/avanasov/stackc/diag"
	"github.com/avanasov/stackc/loader"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printHelp("")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "comp":
		os.Exit(runComp(os.Args[2:]))
	case "interp":
		os.Exit(runInterp(os.Args[2:]))
	case "ir":
		os.Exit(runIR(os.Args[2:]))
	case "help":
		cmd := ""
		if len(os.Args) > 2 {
			cmd = os.Args[2]
		}
		printHelp(cmd)
		os.Exit(0)
	case "-version", "--version", "version":
		fmt.Printf("stackc %s (%s)\n", Version, Commit)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printHelp("")
		os.Exit(1)
	}
}

func runComp(args []string) int {
	fs := flag.NewFlagSet("comp", flag.ExitOnError)
	run := fs.Bool("run", false, "not supported by the placeholder backend: exits with an error after writing the listing")
	out := fs.String("out", "a.out", "output listing path")
	fasm := fs.Bool("fasm", false, "request the external assembler/linker toolchain (only recorded in the listing header)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: stackc comp [-run] [-out <file>] [-fasm] <source>")
		return 1
	}
	source := fs.Arg(0)

	sink := diag.NewSink(os.Stderr)
	prog, _, err := loader.CompileFile(source, sink)
	if err != nil {
		reportFailure(sink, err)
		return 1
	}

	target := backend.Placeholder{}
	if err := target.Emit(prog, *out, *fasm); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if *run {
		fmt.Fprintln(os.Stderr, "error: -run requires a real assembler/linker backend, which this build does not provide")
		return 1
	}
	return 0
}

func runInterp(args []string) int {
	fs := flag.NewFlagSet("interp", flag.ExitOnError)
	debugMode := fs.Bool("debug", false, "run under the interactive line debugger")
	tuiMode := fs.Bool("tui", false, "run under the interactive text-UI debugger")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: stackc interp [-debug] [-tui] <source>")
		return 1
	}
	source := fs.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config, using defaults: %v\n", err)
		cfg = config.DefaultConfig()
	}

	sink := diag.NewSink(os.Stderr)
	prog, names, err := loader.CompileFile(source, sink)
	if err != nil {
		reportFailure(sink, err)
		return 1
	}

	machine := loader.LoadProgramIntoVM(prog, int(cfg.Execution.FrameStackSize), os.Stdout, os.Stdin)

	if *tuiMode {
		dbg := debugger.New(machine, prog, names)
		if err := debugger.RunTUI(dbg); err != nil {
			fmt.Fprintf(os.Stderr, "runtime error: %v\n", err)
			return 1
		}
		return 0
	}

	if *debugMode {
		dbg := debugger.New(machine, prog, names)
		if err := dbg.RunCLI(os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "runtime error: %v\n", err)
			return 1
		}
		return 0
	}

	if err := machine.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %v\n", err)
		return 1
	}
	return 0
}

func runIR(args []string) int {
	fs := flag.NewFlagSet("ir", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: stackc ir <source>")
		return 1
	}
	source := fs.Arg(0)

	sink := diag.NewSink(os.Stderr)
	prog, names, err := loader.CompileFile(source, sink)
	if err != nil {
		reportFailure(sink, err)
		return 1
	}

	debugger.DumpProgram(os.Stdout, prog, names)
	return 0
}

func reportFailure(sink *diag.Sink, err error) {
	if len(sink.All()) == 0 {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
}

func printHelp(cmd string) {
	switch cmd {
	case "comp":
		fmt.Println("stackc comp [-run] [-out <file>] [-fasm] <source>")
		fmt.Println("  Compile <source> and write the placeholder backend's plain-text")
		fmt.Println("  object listing; no runnable executable is produced.")
		fmt.Println("  -run    not supported: exits with an error after writing the listing")
		fmt.Println("  -out    output listing path (default a.out)")
		fmt.Println("  -fasm   request the external assembler/linker (only recorded in the listing)")
	case "interp":
		fmt.Println("stackc interp [-debug] [-tui] <source>")
		fmt.Println("  Compile <source> and execute it on the virtual machine.")
		fmt.Println("  -debug  run under the interactive line debugger")
		fmt.Println("  -tui    run under the interactive text-UI debugger")
	case "ir":
		fmt.Println("stackc ir <source>")
		fmt.Println("  Compile <source> and dump its IR and data image.")
	default:
		fmt.Println("stackc - a small ahead-of-time compiler and bytecode interpreter")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  stackc comp [-run] [-out <file>] [-fasm] <source>")
		fmt.Println("  stackc interp [-debug] [-tui] <source>")
		fmt.Println("  stackc ir <source>")
		fmt.Println("  stackc help [cmd]")
		fmt.Println()
		fmt.Println("Exit codes: 0 on success, 1 on any error (compile-time or runtime).")
	}
}
