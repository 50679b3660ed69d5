// Package compiler implements the resolver and IR generator: it walks the
// AST in source order, builds the shared symbol table, type-checks
// expressions and statements, and lowers everything into an ir.Program.
package compiler

import (
	"fmt"

	"github.com/avanasov/stackc/ast"
	"github.com/avanasov/stackc/diag"
	"github.com/avanasov/stackc/ir"
	"github.com/avanasov/stackc/types"
)

// EntryProcName is the procedure whose body becomes the program's entry
// point, by convention.
const EntryProcName = "главная"

// PrintBuiltinName is reserved: no user procedure may declare it.
const PrintBuiltinName = "print"

type failure struct{ err error }

// Compiler holds the state threaded through one compilation: the shared
// namespace, the struct layout registry, and the program under construction.
type Compiler struct {
	sink    *diag.Sink
	names   *Names
	structs *types.Registry
	prog    *ir.Program
}

func New(sink *diag.Sink) *Compiler {
	return &Compiler{
		sink:    sink,
		names:   NewNames(),
		structs: types.NewRegistry(),
		prog:    &ir.Program{},
	}
}

// Compile lowers a parsed file into a Program. It stops at the first
// unrecoverable failure, matching the no-cascade error policy.
func (c *Compiler) Compile(file *ast.File) (prog *ir.Program, names *Names, err error) {
	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(failure); ok {
				err = f.err
				return
			}
			panic(r)
		}
	}()

	for _, decl := range file.Decls {
		c.compileDecl(decl)
	}

	entry, ok := c.names.Lookup(EntryProcName)
	if !ok || entry.Kind != EntryProc {
		c.fail(diag.Location{}, "missing entry procedure %q", EntryProcName)
	}
	c.prog.EntryOffset = entry.ProcAddr

	return c.prog, c.names, nil
}

func (c *Compiler) fail(loc diag.Location, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	c.sink.Errorf(loc, "%s", msg)
	panic(failure{fmt.Errorf("%s: %s", loc, msg)})
}

func (c *Compiler) compileDecl(decl ast.Decl) {
	switch d := decl.(type) {
	case *ast.StructDecl:
		c.compileStructDecl(d)
	case *ast.Const:
		c.compileConst(d)
	case *ast.Var:
		c.compileVar(d)
	case *ast.Proc:
		c.compileProc(d)
	default:
		c.fail(decl.Loc(), "unsupported declaration")
	}
}

func (c *Compiler) compileStructDecl(d *ast.StructDecl) {
	var fields []struct {
		Name string
		Type types.Type
	}
	for _, f := range d.Fields {
		fields = append(fields, struct {
			Name string
			Type types.Type
		}{Name: f.Name, Type: c.resolveType(f.Type)})
	}
	c.structs.Declare(d.Name, fields)
}

func (c *Compiler) resolveType(t *ast.TypeExpr) types.Type {
	if t.Pointee != nil {
		return types.Pointer(c.resolveType(t.Pointee))
	}
	if builtin, ok := types.Builtin(t.Name); ok {
		return builtin
	}
	if _, ok := c.structs.Lookup(t.Name); ok {
		return types.Struct(t.Name)
	}
	c.fail(t.Location, "unknown type %q", t.Name)
	return types.Type{}
}

// compileConst evaluates expr over already-seen constants only. Folding
// supports addition; any other operator is not yet supported.
func (c *Compiler) compileConst(d *ast.Const) {
	value := c.evalConstExpr(d.Value)
	if !c.names.DefineConst(c.sink, d.Name, d.Location, value) {
		panic(failure{fmt.Errorf("%s: redefinition of %q", d.Location, d.Name)})
	}
}

func (c *Compiler) evalConstExpr(expr ast.Expr) uint64 {
	switch e := expr.(type) {
	case *ast.NumberLit:
		return e.Value
	case *ast.Ident:
		entry, ok := c.names.Lookup(e.Name)
		if !ok {
			c.fail(e.Location, "undefined name %q", e.Name)
		}
		if entry.Kind != EntryConst {
			c.fail(e.Location, "%q is not a constant", e.Name)
		}
		return entry.ConstValue
	case *ast.BinOp:
		if e.Kind != ast.Add {
			c.fail(e.Location, "operator not yet supported in constant expressions")
		}
		return c.evalConstExpr(e.Lhs) + c.evalConstExpr(e.Rhs)
	default:
		c.fail(expr.Loc(), "expression not yet supported in constant expressions")
		return 0
	}
}

func (c *Compiler) compileVar(d *ast.Var) {
	typ := c.resolveType(d.Type)
	offset := c.prog.UninitDataSize
	size := c.structs.Size(typ)
	if !c.names.DefineVar(c.sink, d.Name, d.Location, offset, typ) {
		panic(failure{fmt.Errorf("%s: redefinition of %q", d.Location, d.Name)})
	}
	c.prog.UninitDataSize += size
}

// procScope tracks a procedure body's parameter bindings: each parameter
// lives in a fixed-size block on the frame stack, placed there by the
// caller's ArgOntoFrame sequence before the InternalCall.
type procScope struct {
	params map[string]paramBinding
}

type paramBinding struct {
	offset int
	typ    types.Type
}

func (c *Compiler) compileProc(d *ast.Proc) {
	if d.Name == PrintBuiltinName {
		c.fail(d.Location, "%q is a reserved built-in name", PrintBuiltinName)
	}

	var paramTypes []types.Type
	scope := &procScope{params: make(map[string]paramBinding)}
	nparams := len(d.Params)
	for i, p := range d.Params {
		pt := c.resolveType(p.Type)
		if pt.Kind() != types.KindInt {
			c.fail(p.Location, "parameter %q: only Int parameters are implemented", p.Name)
		}
		paramTypes = append(paramTypes, pt)
		// Arguments are pushed onto the frame stack left-to-right via
		// ArgOntoFrame, which grows the frame stack downward: the last
		// argument pushed ends up at the lowest address, i.e. at offset 0
		// from the callee's fp2_sp. Earlier arguments sit at higher offsets.
		scope.params[p.Name] = paramBinding{offset: (nparams - 1 - i) * types.WordSize, typ: pt}
	}

	addr := c.prog.Len()
	if !c.names.DefineProc(c.sink, d.Name, d.Location, addr, paramTypes) {
		panic(failure{fmt.Errorf("%s: redefinition of %q", d.Location, d.Name)})
	}

	for _, stmt := range d.Body {
		c.compileStmt(stmt, scope)
	}

	// Epilogue: reclaim parameter slots, then halt the call.
	for range d.Params {
		c.prog.EmitImm(ir.FreeFromStack, int64(types.WordSize), d.Location)
	}
	c.prog.Emit(ir.Return, d.Location)
}

func (c *Compiler) compileStmt(stmt ast.Stmt, scope *procScope) {
	switch s := stmt.(type) {
	case *ast.Assign:
		c.compileAssign(s, scope)
	case *ast.ArrayAssign:
		c.compileArrayAssign(s, scope)
	case *ast.CallStmt:
		c.compileCallStmt(s, scope)
	case *ast.While:
		c.compileWhile(s, scope)
	case *ast.If:
		c.compileIf(s, scope)
	case *ast.Return:
		c.prog.Emit(ir.Return, s.Location)
	default:
		c.fail(stmt.Loc(), "unsupported statement")
	}
}

func (c *Compiler) compileAssign(s *ast.Assign, scope *procScope) {
	entry, ok := c.names.Lookup(s.Name)
	if !ok || entry.Kind != EntryVar {
		c.fail(s.Location, "undefined variable %q", s.Name)
	}
	actual := c.lowerExpr(s.Value, scope)
	c.check(s.Location, entry.VarType, actual)
	c.requireWord(s.Location, entry.VarType)
	c.prog.EmitImm(ir.PushUninitDataPointer, int64(entry.VarOffset), s.Location)
	c.prog.Emit(ir.Store64, s.Location)
}

func (c *Compiler) compileArrayAssign(s *ast.ArrayAssign, scope *procScope) {
	entry, ok := c.names.Lookup(s.Name)
	if !ok || entry.Kind != EntryVar {
		c.fail(s.Location, "undefined variable %q", s.Name)
	}
	c.requireWord(s.Location, entry.VarType)

	actual := c.lowerExpr(s.Value, scope)
	c.check(s.Location, entry.VarType, actual)

	indexType := c.lowerExpr(s.Index, scope)
	if indexType.Kind() != types.KindNat && indexType.Kind() != types.KindInt {
		c.fail(s.Location, "array index must be a numeric type, got %s", indexType)
	}
	c.prog.EmitImm(ir.PushInt, int64(types.WordSize), s.Location)
	c.prog.Emit(ir.NatMul, s.Location)
	c.prog.EmitImm(ir.PushUninitDataPointer, int64(entry.VarOffset), s.Location)
	c.prog.Emit(ir.NatAdd, s.Location)
	c.prog.Emit(ir.Store64, s.Location)
}

func (c *Compiler) compileCallStmt(s *ast.CallStmt, scope *procScope) {
	if s.Name == PrintBuiltinName {
		c.compilePrint(s.Args, s.Location, scope)
		return
	}

	entry, ok := c.names.Lookup(s.Name)
	if !ok || entry.Kind != EntryProc {
		c.fail(s.Location, "undefined procedure %q", s.Name)
	}
	if entry.ProcLinkage == External {
		c.fail(s.Location, "external procedures cannot be called in this build")
	}
	if len(s.Args) != len(entry.ProcParams) {
		c.fail(s.Location, "procedure %q expects %d argument(s), got %d", s.Name, len(entry.ProcParams), len(s.Args))
	}
	for i, arg := range s.Args {
		actual := c.lowerExpr(arg, scope)
		c.check(arg.Loc(), entry.ProcParams[i], actual)
		c.prog.Emit(ir.ArgOntoFrame, arg.Loc())
	}
	c.prog.EmitImm(ir.InternalCall, int64(entry.ProcAddr), s.Location)
}

func (c *Compiler) compilePrint(args []ast.Expr, loc diag.Location, scope *procScope) {
	for _, arg := range args {
		typ := c.lowerExpr(arg, scope)
		switch typ.Kind() {
		case types.KindString:
			c.prog.Emit(ir.PrintString, arg.Loc())
		case types.KindNat, types.KindInt:
			c.prog.Emit(ir.PrintInt, arg.Loc())
		case types.KindBool:
			c.prog.Emit(ir.PrintBool, arg.Loc())
		default:
			c.fail(arg.Loc(), "printing %s is not yet implemented", typ)
		}
	}
	_ = loc
}

func (c *Compiler) compileWhile(s *ast.While, scope *procScope) {
	condPos := c.prog.Len()
	c.lowerExpr(s.Cond, scope)
	c.prog.Emit(ir.LogicalNot, s.Location)
	patchPos := c.prog.Emit(ir.Nop, s.Location)
	for _, stmt := range s.Body {
		c.compileStmt(stmt, scope)
	}
	c.prog.EmitImm(ir.Jump, int64(condPos), s.Location)
	c.prog.Patch(patchPos, ir.CondJump, int64(c.prog.Len()))
}

func (c *Compiler) compileIf(s *ast.If, scope *procScope) {
	c.lowerExpr(s.Cond, scope)
	c.prog.Emit(ir.LogicalNot, s.Location)
	patchPos := c.prog.Emit(ir.Nop, s.Location)
	for _, stmt := range s.Body {
		c.compileStmt(stmt, scope)
	}
	c.prog.Patch(patchPos, ir.CondJump, int64(c.prog.Len()))
}

// lowerExpr lowers expr, pushing its value onto the value stack, and
// returns its static type.
func (c *Compiler) lowerExpr(expr ast.Expr, scope *procScope) types.Type {
	switch e := expr.(type) {
	case *ast.NumberLit:
		c.prog.EmitImm(ir.PushInt, int64(e.Value), e.Location)
		return types.Int(64)
	case *ast.StringLit:
		bytes := []byte(e.Value)
		off := c.prog.AppendInitData(bytes)
		c.prog.EmitImm(ir.PushInt, int64(len(bytes)), e.Location)
		c.prog.EmitImm(ir.PushInitDataPointer, int64(off), e.Location)
		return types.String()
	case *ast.Ident:
		return c.lowerIdent(e, scope)
	case *ast.Call:
		c.fail(e.Location, "procedure calls do not produce a value")
		return types.Type{}
	case *ast.BinOp:
		return c.lowerBinOp(e, scope)
	default:
		c.fail(expr.Loc(), "unsupported expression")
		return types.Type{}
	}
}

func (c *Compiler) lowerIdent(e *ast.Ident, scope *procScope) types.Type {
	if binding, ok := scope.params[e.Name]; ok {
		c.prog.EmitImm(ir.StackTop, int64(binding.offset), e.Location)
		c.prog.Emit(ir.Load64, e.Location)
		return binding.typ
	}
	entry, ok := c.names.Lookup(e.Name)
	if !ok {
		c.fail(e.Location, "undefined name %q", e.Name)
	}
	switch entry.Kind {
	case EntryConst:
		c.prog.EmitImm(ir.PushInt, int64(entry.ConstValue), e.Location)
		return types.Int(64)
	case EntryVar:
		c.requireWord(e.Location, entry.VarType)
		c.prog.EmitImm(ir.PushUninitDataPointer, int64(entry.VarOffset), e.Location)
		c.prog.Emit(ir.Load64, e.Location)
		return entry.VarType
	default:
		c.fail(e.Location, "%q does not name a value", e.Name)
		return types.Type{}
	}
}

// binOpTable maps (operator, operand-kind) to the instruction and result
// kind. Absent combinations are not yet implemented, matching the closed IR
// opcode enumeration, which deliberately omits some combinations (no
// IntAdd/IntSub/IntDiv, no F32Sub, no IntEq/F32Eq).
type binOpEntry struct {
	op         ir.Op
	resultKind types.Kind
}

func (c *Compiler) lowerBinOp(e *ast.BinOp, scope *procScope) types.Type {
	lhsType := c.lowerExpr(e.Lhs, scope)
	rhsType := c.lowerExpr(e.Rhs, scope)
	c.check(e.Location, lhsType, rhsType)

	entry, ok := binOpTable(e.Kind, lhsType.Kind())
	if !ok {
		c.fail(e.Location, "operator not yet implemented for %s", lhsType)
	}

	c.prog.Emit(entry.op, e.Location)

	switch entry.resultKind {
	case types.KindBool:
		return types.Bool()
	default:
		return lhsType
	}
}

func binOpTable(kind ast.BinOpKind, operand types.Kind) (binOpEntry, bool) {
	switch kind {
	case ast.Less:
		switch operand {
		case types.KindNat:
			return binOpEntry{ir.NatLt, types.KindBool}, true
		case types.KindInt:
			return binOpEntry{ir.IntLt, types.KindBool}, true
		case types.KindFloat32:
			return binOpEntry{ir.F32Lt, types.KindBool}, true
		}
	case ast.Greater:
		switch operand {
		case types.KindNat:
			return binOpEntry{ir.NatGt, types.KindBool}, true
		case types.KindInt:
			return binOpEntry{ir.IntGt, types.KindBool}, true
		case types.KindFloat32:
			return binOpEntry{ir.F32Gt, types.KindBool}, true
		}
	case ast.Equal:
		switch operand {
		case types.KindNat:
			return binOpEntry{ir.NatEq, types.KindBool}, true
		}
	case ast.Add:
		switch operand {
		case types.KindNat, types.KindInt:
			return binOpEntry{ir.NatAdd, operand}, true
		case types.KindFloat32:
			return binOpEntry{ir.F32Add, types.KindFloat32}, true
		}
	case ast.Sub:
		switch operand {
		case types.KindNat, types.KindInt:
			return binOpEntry{ir.NatSub, operand}, true
		}
	case ast.Div:
		switch operand {
		case types.KindNat:
			return binOpEntry{ir.NatDiv, types.KindNat}, true
		case types.KindFloat32:
			return binOpEntry{ir.F32Div, types.KindFloat32}, true
		}
	case ast.Mod:
		switch operand {
		case types.KindNat:
			return binOpEntry{ir.NatMod, types.KindNat}, true
		case types.KindInt:
			return binOpEntry{ir.IntMod, types.KindInt}, true
		}
	}
	return binOpEntry{}, false
}

// check emits "expected T, got U" and fails if expected and actual differ.
func (c *Compiler) check(loc diag.Location, expected, actual types.Type) {
	if !expected.Equal(actual) {
		c.fail(loc, "expected %s, got %s", expected, actual)
	}
}

func (c *Compiler) requireWord(loc diag.Location, t types.Type) {
	if (t.Kind() == types.KindNat || t.Kind() == types.KindInt) && t.Width() == 64 {
		return
	}
	c.fail(loc, "only 64-bit load/store is implemented, got %s", t)
}
