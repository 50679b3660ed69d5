// Package ast defines the typed-free Abstract Syntax Tree produced by the
// parser. Nodes are owned by their parent in a strict tree; there are no
// back-references or cycles.
package ast

import "github.com/avanasov/stackc/diag"

// BinOpKind is the closed set of binary operators the flat, right-associative
// expression grammar supports.
type BinOpKind int

const (
	Less BinOpKind = iota
	Greater
	Add
	Sub
	Div
	Mod
	Equal
)

// Expr is any expression node. Every node carries its anchor location.
type Expr interface {
	Loc() diag.Location
	exprNode()
}

type NumberLit struct {
	Location diag.Location
	Value    uint64
}

type StringLit struct {
	Location diag.Location
	Value    string
}

type Ident struct {
	Location diag.Location
	Name     string
}

type Call struct {
	Location diag.Location
	Name     string
	Args     []Expr
}

type BinOp struct {
	Location diag.Location
	Kind     BinOpKind
	Lhs, Rhs Expr
}

func (n *NumberLit) Loc() diag.Location { return n.Location }
func (n *StringLit) Loc() diag.Location { return n.Location }
func (n *Ident) Loc() diag.Location     { return n.Location }
func (n *Call) Loc() diag.Location      { return n.Location }
func (n *BinOp) Loc() diag.Location     { return n.Location }

func (*NumberLit) exprNode() {}
func (*StringLit) exprNode() {}
func (*Ident) exprNode()     {}
func (*Call) exprNode()      {}
func (*BinOp) exprNode()     {}

// TypeExpr names a type annotation. Base types are identifiers; pointer
// types are a caret-prefixed TypeExpr.
type TypeExpr struct {
	Location diag.Location
	Name     string     // set when this names a base or struct type
	Pointee  *TypeExpr  // set when this is a pointer type ('^' Pointee)
}

func (t *TypeExpr) Loc() diag.Location { return t.Location }

// Stmt is any statement node.
type Stmt interface {
	Loc() diag.Location
	stmtNode()
}

type Assign struct {
	Location diag.Location
	Name     string
	Value    Expr
}

type ArrayAssign struct {
	Location diag.Location
	Name     string
	Index    Expr
	Value    Expr
}

type CallStmt struct {
	Location diag.Location
	Name     string
	Args     []Expr
}

type While struct {
	Location diag.Location
	Cond     Expr
	Body     []Stmt
}

type If struct {
	Location diag.Location
	Cond     Expr
	Body     []Stmt
}

type Return struct {
	Location diag.Location
}

func (n *Assign) Loc() diag.Location      { return n.Location }
func (n *ArrayAssign) Loc() diag.Location { return n.Location }
func (n *CallStmt) Loc() diag.Location    { return n.Location }
func (n *While) Loc() diag.Location       { return n.Location }
func (n *If) Loc() diag.Location          { return n.Location }
func (n *Return) Loc() diag.Location      { return n.Location }

func (*Assign) stmtNode()      {}
func (*ArrayAssign) stmtNode() {}
func (*CallStmt) stmtNode()    {}
func (*While) stmtNode()       {}
func (*If) stmtNode()          {}
func (*Return) stmtNode()      {}

// Param is one procedure parameter.
type Param struct {
	Location diag.Location
	Name     string
	Type     *TypeExpr
}

// Proc is a top-level procedure declaration.
type Proc struct {
	Location diag.Location
	Name     string
	Params   []Param
	Body     []Stmt
}

// Var is a top-level variable declaration.
type Var struct {
	Location diag.Location
	Name     string
	Type     *TypeExpr
}

// Const is a top-level constant declaration, folded at compile time.
type Const struct {
	Location diag.Location
	Name     string
	Value    Expr
}

// StructField is one field of a struct declaration.
type StructField struct {
	Location diag.Location
	Name     string
	Type     *TypeExpr
}

// StructDecl is a top-level struct type declaration.
type StructDecl struct {
	Location diag.Location
	Name     string
	Fields   []StructField
}

// Decl is any top-level declaration.
type Decl interface {
	Loc() diag.Location
	declNode()
}

func (n *Proc) Loc() diag.Location       { return n.Location }
func (n *Var) Loc() diag.Location        { return n.Location }
func (n *Const) Loc() diag.Location      { return n.Location }
func (n *StructDecl) Loc() diag.Location { return n.Location }

func (*Proc) declNode()       {}
func (*Var) declNode()        {}
func (*Const) declNode()      {}
func (*StructDecl) declNode() {}

// File is the root node: a sequence of top-level declarations in source order.
type File struct {
	Decls []Decl
}
