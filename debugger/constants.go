package debugger

// Code View Context Constants
const (
	// CodeContextLinesBeforeCompact is the number of IR instructions to show
	// before the current instruction in the "list" command.
	CodeContextLinesBeforeCompact = 5

	// CodeContextLinesAfterCompact is the number of IR instructions to show
	// after the current instruction.
	CodeContextLinesAfterCompact = 10
)

// Stack Display Constants
const (
	// StackDisplayWords is the number of value-stack words shown by
	// "info stack" and the TUI's stack panel.
	StackDisplayWords = 16
)

// Memory Display Constants. Neither the CLI commands nor the TUI's
// state/output/input panels show a memory dump, so no code reads these.
const (
	// MemoryDisplayBytesPerRow is the number of bytes per hex dump row.
	MemoryDisplayBytesPerRow = 16

	// MemoryDisplayRows is the number of hex dump rows.
	MemoryDisplayRows = 8
)
