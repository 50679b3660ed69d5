package loader

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avanasov/stackc/diag"
)

func writeSource(t *testing.T, text string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "program.src")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func TestCompileFileAndRunPrintsLiteral(t *testing.T) {
	source := `proc главная() begin print("hi"); end`
	path := writeSource(t, source)

	var diagOut bytes.Buffer
	sink := diag.NewSink(&diagOut)
	prog, names, err := CompileFile(path, sink)
	require.NoError(t, err, "diagnostics: %s", diagOut.String())
	require.NotNil(t, names)

	var out bytes.Buffer
	machine := LoadProgramIntoVM(prog, 256, &out, strings.NewReader(""))
	require.NoError(t, machine.Run())
	assert.Equal(t, "hi", out.String())
}

func TestCompileFileReportsParseErrorsToSink(t *testing.T) {
	source := `proc главная() begin print("unterminated; end`
	path := writeSource(t, source)

	sink := diag.NewSink(&bytes.Buffer{})
	_, _, err := CompileFile(path, sink)
	require.Error(t, err, "expected a parse/lex failure for an unterminated string literal")
	assert.True(t, sink.Failed(), "sink should have recorded the underlying diagnostic")
}

func TestCompileFileMissingSourceFails(t *testing.T) {
	sink := diag.NewSink(&bytes.Buffer{})
	_, _, err := CompileFile(filepath.Join(t.TempDir(), "missing.src"), sink)
	assert.Error(t, err, "expected an error reading a nonexistent source file")
}
