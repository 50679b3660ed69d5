// Package parser implements a recursive-descent parser that turns a token
// stream from lexer into an ast.File. The expression grammar is flat and
// right-associative by design: every binary operator shares one precedence
// level, and the parser recurses on the right operand after consuming the
// operator. This mirrors the language's reference grammar and must not be
// "corrected" to left-association.
package parser

import (
	"fmt"

	"github.com/avanasov/stackc/ast"
	"github.com/avanasov/stackc/diag"
	"github.com/avanasov/stackc/lexer"
)

// Parser consumes tokens from a lexer.Lexer and reports failures through a
// diag.Sink. It does not attempt error recovery: the first failure aborts
// parsing of the current file.
type Parser struct {
	lex  *lexer.Lexer
	sink *diag.Sink
}

func New(lex *lexer.Lexer, sink *diag.Sink) *Parser {
	return &Parser{lex: lex, sink: sink}
}

// ParseFile parses an entire source file into a sequence of top-level
// declarations.
func (p *Parser) ParseFile() (*ast.File, error) {
	f := &ast.File{}
	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind == lexer.EndOfInput {
			return f, nil
		}
		decl, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		f.Decls = append(f.Decls, decl)
	}
}

func (p *Parser) parseDecl() (ast.Decl, error) {
	tok, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case lexer.KeywordVar:
		return p.parseVar()
	case lexer.KeywordConst:
		return p.parseConst()
	case lexer.KeywordProc:
		return p.parseProc()
	case lexer.KeywordStruct:
		return p.parseStructDecl()
	default:
		p.sink.Errorf(tok.Loc, "expected declaration, got %s", tok.Kind)
		return nil, fmt.Errorf("expected declaration at %s", tok.Loc)
	}
}

func (p *Parser) parseVar() (*ast.Var, error) {
	kw, err := p.lex.Expect(lexer.KeywordVar)
	if err != nil {
		return nil, err
	}
	name, err := p.lex.Expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.lex.Expect(lexer.Colon); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.lex.Expect(lexer.Semicolon); err != nil {
		return nil, err
	}
	return &ast.Var{Location: kw.Loc, Name: name.Text, Type: typ}, nil
}

func (p *Parser) parseConst() (*ast.Const, error) {
	kw, err := p.lex.Expect(lexer.KeywordConst)
	if err != nil {
		return nil, err
	}
	name, err := p.lex.Expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.lex.Expect(lexer.Assign); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.lex.Expect(lexer.Semicolon); err != nil {
		return nil, err
	}
	return &ast.Const{Location: kw.Loc, Name: name.Text, Value: value}, nil
}

func (p *Parser) parseProc() (*ast.Proc, error) {
	kw, err := p.lex.Expect(lexer.KeywordProc)
	if err != nil {
		return nil, err
	}
	name, err := p.lex.Expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.lex.Expect(lexer.LParen); err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := p.lex.Expect(lexer.RParen); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Proc{Location: kw.Loc, Name: name.Text, Params: params, Body: body}, nil
}

func (p *Parser) parseParamList() ([]ast.Param, error) {
	var params []ast.Param
	seen := make(map[string]diag.Location)

	tok, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == lexer.RParen {
		return params, nil
	}

	for {
		nameTok, err := p.lex.Expect(lexer.Ident)
		if err != nil {
			return nil, err
		}
		if _, err := p.lex.Expect(lexer.Colon); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if prior, dup := seen[nameTok.Text]; dup {
			p.sink.Errorf(nameTok.Loc, "duplicate parameter name %q", nameTok.Text)
			p.sink.Infof(prior, "previous declaration of %q is here", nameTok.Text)
			return nil, fmt.Errorf("duplicate parameter %q at %s", nameTok.Text, nameTok.Loc)
		}
		seen[nameTok.Text] = nameTok.Loc
		params = append(params, ast.Param{Location: nameTok.Loc, Name: nameTok.Text, Type: typ})

		next, err := p.lex.Peek()
		if err != nil {
			return nil, err
		}
		if next.Kind != lexer.Comma {
			return params, nil
		}
		if _, err := p.lex.Next(); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseType() (*ast.TypeExpr, error) {
	tok, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == lexer.Caret {
		if _, err := p.lex.Next(); err != nil {
			return nil, err
		}
		pointee, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &ast.TypeExpr{Location: tok.Loc, Pointee: pointee}, nil
	}
	name, err := p.lex.Expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	return &ast.TypeExpr{Location: name.Loc, Name: name.Text}, nil
}

func (p *Parser) parseStructDecl() (*ast.StructDecl, error) {
	kw, err := p.lex.Expect(lexer.KeywordStruct)
	if err != nil {
		return nil, err
	}
	name, err := p.lex.Expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.lex.Expect(lexer.KeywordBegin); err != nil {
		return nil, err
	}

	var fields []ast.StructField
	seen := make(map[string]diag.Location)
	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind == lexer.KeywordEnd {
			break
		}
		fieldName, err := p.lex.Expect(lexer.Ident)
		if err != nil {
			return nil, err
		}
		if _, err := p.lex.Expect(lexer.Colon); err != nil {
			return nil, err
		}
		fieldType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.lex.Expect(lexer.Semicolon); err != nil {
			return nil, err
		}
		if prior, dup := seen[fieldName.Text]; dup {
			p.sink.Errorf(fieldName.Loc, "duplicate field name %q", fieldName.Text)
			p.sink.Infof(prior, "previous declaration of %q is here", fieldName.Text)
			return nil, fmt.Errorf("duplicate field %q at %s", fieldName.Text, fieldName.Loc)
		}
		seen[fieldName.Text] = fieldName.Loc
		fields = append(fields, ast.StructField{Location: fieldName.Loc, Name: fieldName.Text, Type: fieldType})
	}
	if _, err := p.lex.Expect(lexer.KeywordEnd); err != nil {
		return nil, err
	}
	return &ast.StructDecl{Location: kw.Loc, Name: name.Text, Fields: fields}, nil
}

func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	if _, err := p.lex.Expect(lexer.KeywordBegin); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind == lexer.KeywordEnd {
			break
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.lex.Expect(lexer.KeywordEnd); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	tok, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case lexer.KeywordWhile:
		return p.parseWhile()
	case lexer.KeywordIf:
		return p.parseIf()
	case lexer.KeywordReturn:
		return p.parseReturn()
	case lexer.Ident:
		return p.parseIdentStmt()
	default:
		p.sink.Errorf(tok.Loc, "expected statement, got %s", tok.Kind)
		return nil, fmt.Errorf("expected statement at %s", tok.Loc)
	}
}

func (p *Parser) parseWhile() (*ast.While, error) {
	kw, err := p.lex.Expect(lexer.KeywordWhile)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{Location: kw.Loc, Cond: cond, Body: body}, nil
}

func (p *Parser) parseIf() (*ast.If, error) {
	kw, err := p.lex.Expect(lexer.KeywordIf)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.If{Location: kw.Loc, Cond: cond, Body: body}, nil
}

func (p *Parser) parseReturn() (*ast.Return, error) {
	kw, err := p.lex.Expect(lexer.KeywordReturn)
	if err != nil {
		return nil, err
	}
	if _, err := p.lex.Expect(lexer.Semicolon); err != nil {
		return nil, err
	}
	return &ast.Return{Location: kw.Loc}, nil
}

// parseIdentStmt dispatches on the token following an identifier: ':=' for
// assignment, '(' for a call statement, '[' for indexed assignment.
func (p *Parser) parseIdentStmt() (ast.Stmt, error) {
	name, err := p.lex.Expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	next, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	switch next.Kind {
	case lexer.Assign:
		if _, err := p.lex.Next(); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.lex.Expect(lexer.Semicolon); err != nil {
			return nil, err
		}
		return &ast.Assign{Location: name.Loc, Name: name.Text, Value: value}, nil
	case lexer.LParen:
		if _, err := p.lex.Next(); err != nil {
			return nil, err
		}
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		if _, err := p.lex.Expect(lexer.RParen); err != nil {
			return nil, err
		}
		if _, err := p.lex.Expect(lexer.Semicolon); err != nil {
			return nil, err
		}
		return &ast.CallStmt{Location: name.Loc, Name: name.Text, Args: args}, nil
	case lexer.LBracket:
		if _, err := p.lex.Next(); err != nil {
			return nil, err
		}
		index, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.lex.Expect(lexer.RBracket); err != nil {
			return nil, err
		}
		if _, err := p.lex.Expect(lexer.Assign); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.lex.Expect(lexer.Semicolon); err != nil {
			return nil, err
		}
		return &ast.ArrayAssign{Location: name.Loc, Name: name.Text, Index: index, Value: value}, nil
	default:
		p.sink.Errorf(next.Loc, "expected one of ':=', '(', '[', got %s", next.Kind)
		return nil, fmt.Errorf("expected statement continuation at %s", next.Loc)
	}
}

func (p *Parser) parseArgList() ([]ast.Expr, error) {
	var args []ast.Expr
	tok, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == lexer.RParen {
		return args, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		next, err := p.lex.Peek()
		if err != nil {
			return nil, err
		}
		if next.Kind != lexer.Comma {
			return args, nil
		}
		if _, err := p.lex.Next(); err != nil {
			return nil, err
		}
	}
}

// binOpKinds maps a token kind to its binary-operator kind, if it is one.
var binOpKinds = map[lexer.Kind]ast.BinOpKind{
	lexer.Less:       ast.Less,
	lexer.Greater:    ast.Greater,
	lexer.Plus:       ast.Add,
	lexer.Minus:      ast.Sub,
	lexer.Slash:      ast.Div,
	lexer.Percent:    ast.Mod,
	lexer.EqualEqual: ast.Equal,
}

// parseExpr implements the flat, right-associative expression grammar: a
// primary expression optionally followed by one operator and a recursive
// call for the right operand. "a + b + c" parses as "a + (b + c)".
func (p *Parser) parseExpr() (ast.Expr, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	tok, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	kind, ok := binOpKinds[tok.Kind]
	if !ok {
		return lhs, nil
	}
	if _, err := p.lex.Next(); err != nil {
		return nil, err
	}
	rhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.BinOp{Location: tok.Loc, Kind: kind, Lhs: lhs, Rhs: rhs}, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok, err := p.lex.Next()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case lexer.Number:
		return p.parseNumberLit(tok)
	case lexer.String:
		return &ast.StringLit{Location: tok.Loc, Value: tok.Text}, nil
	case lexer.LParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.lex.Expect(lexer.RParen); err != nil {
			return nil, err
		}
		return inner, nil
	case lexer.Minus:
		// Unary minus on a primary is parsed as 0 - expr at this level;
		// the resolver lowers it like any other BinOp(Sub). Constant
		// folding rejects it, as it rejects every operator except '+'.
		inner, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &ast.BinOp{Location: tok.Loc, Kind: ast.Sub, Lhs: &ast.NumberLit{Location: tok.Loc, Value: 0}, Rhs: inner}, nil
	case lexer.Ident:
		return p.parseIdentOrCall(tok)
	default:
		p.sink.Errorf(tok.Loc, "expected expression, got %s", tok.Kind)
		return nil, fmt.Errorf("expected expression at %s", tok.Loc)
	}
}

func (p *Parser) parseIdentOrCall(tok lexer.Token) (ast.Expr, error) {
	next, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if next.Kind != lexer.LParen {
		return &ast.Ident{Location: tok.Loc, Name: tok.Text}, nil
	}
	if _, err := p.lex.Next(); err != nil {
		return nil, err
	}
	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	if _, err := p.lex.Expect(lexer.RParen); err != nil {
		return nil, err
	}
	return &ast.Call{Location: tok.Loc, Name: tok.Text, Args: args}, nil
}

func (p *Parser) parseNumberLit(tok lexer.Token) (*ast.NumberLit, error) {
	var value uint64
	if _, err := fmt.Sscanf(tok.Text, "%d", &value); err != nil {
		p.sink.Errorf(tok.Loc, "invalid number literal %q", tok.Text)
		return nil, fmt.Errorf("invalid number literal %q at %s", tok.Text, tok.Loc)
	}
	return &ast.NumberLit{Location: tok.Loc, Value: value}, nil
}
