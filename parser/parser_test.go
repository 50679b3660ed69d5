package parser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avanasov/stackc/ast"
	"github.com/avanasov/stackc/diag"
	"github.com/avanasov/stackc/lexer"
)

func parse(t *testing.T, src string) (*ast.File, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink(&bytes.Buffer{})
	lex := lexer.New("t.src", src, sink)
	p := New(lex, sink)
	file, err := p.ParseFile()
	require.NoError(t, err)
	return file, sink
}

func TestParseProcWithPrintCall(t *testing.T) {
	file, sink := parse(t, `proc главная() begin print("hi"); end`)
	require.False(t, sink.Failed(), "unexpected diagnostics: %v", sink.All())
	require.Len(t, file.Decls, 1)

	proc, ok := file.Decls[0].(*ast.Proc)
	require.True(t, ok, "decl = %T, want *ast.Proc", file.Decls[0])
	assert.Equal(t, "главная", proc.Name)
	require.Len(t, proc.Body, 1)

	call, ok := proc.Body[0].(*ast.CallStmt)
	require.True(t, ok, "stmt = %T, want *ast.CallStmt", proc.Body[0])
	assert.Equal(t, "print", call.Name)
	assert.Len(t, call.Args, 1)
}

func TestExpressionGrammarIsRightAssociative(t *testing.T) {
	file, sink := parse(t, `const x = 1 + 2 + 3;`)
	require.False(t, sink.Failed(), "unexpected diagnostics: %v", sink.All())
	c := file.Decls[0].(*ast.Const)

	// "1 + 2 + 3" must parse as 1 + (2 + 3), not (1 + 2) + 3.
	top, ok := c.Value.(*ast.BinOp)
	require.True(t, ok)
	require.Equal(t, ast.Add, top.Kind)

	lhs, ok := top.Lhs.(*ast.NumberLit)
	require.True(t, ok)
	assert.EqualValues(t, 1, lhs.Value)

	rhs, ok := top.Rhs.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, ast.Add, rhs.Kind)
}

func TestVarAndConstDecls(t *testing.T) {
	file, sink := parse(t, `var n : Int64; const limit = 10;`)
	require.False(t, sink.Failed(), "unexpected diagnostics: %v", sink.All())
	require.Len(t, file.Decls, 2)

	v, ok := file.Decls[0].(*ast.Var)
	require.True(t, ok)
	assert.Equal(t, "n", v.Name)
	assert.Equal(t, "Int64", v.Type.Name)

	c, ok := file.Decls[1].(*ast.Const)
	require.True(t, ok)
	assert.Equal(t, "limit", c.Name)
}

func TestWhileLoopWithAssignment(t *testing.T) {
	file, sink := parse(t, `proc p() begin n := 3; while 0 < n begin n := n + (0 - 1); end end`)
	require.False(t, sink.Failed(), "unexpected diagnostics: %v", sink.All())
	proc := file.Decls[0].(*ast.Proc)
	require.Len(t, proc.Body, 2)

	_, ok := proc.Body[0].(*ast.Assign)
	assert.True(t, ok, "first stmt = %T, want *ast.Assign", proc.Body[0])

	loop, ok := proc.Body[1].(*ast.While)
	require.True(t, ok, "second stmt = %T, want *ast.While", proc.Body[1])

	cond, ok := loop.Cond.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, ast.Less, cond.Kind)
}

func TestDuplicateParamNameIsRejected(t *testing.T) {
	sink := diag.NewSink(&bytes.Buffer{})
	lex := lexer.New("t.src", `proc p(a : Int64, a : Int64) begin end`, sink)
	p := New(lex, sink)
	_, err := p.ParseFile()
	require.Error(t, err, "expected a duplicate-parameter error")
	assert.True(t, sink.Failed(), "sink should record the duplicate-parameter diagnostic")
}

func TestUnaryMinusDesugarsToZeroMinusExpr(t *testing.T) {
	file, sink := parse(t, `const x = -5;`)
	require.False(t, sink.Failed(), "unexpected diagnostics: %v", sink.All())
	c := file.Decls[0].(*ast.Const)

	bin, ok := c.Value.(*ast.BinOp)
	require.True(t, ok)
	require.Equal(t, ast.Sub, bin.Kind)

	lhs, ok := bin.Lhs.(*ast.NumberLit)
	require.True(t, ok)
	assert.EqualValues(t, 0, lhs.Value)
}
