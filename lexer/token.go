package lexer

import (
	"fmt"

	"github.com/avanasov/stackc/diag"
)

// Kind is the closed set of token kinds the lexer produces.
type Kind int

const (
	EndOfInput Kind = iota
	Ident
	Number
	String

	// Punctuation
	Colon        // :
	Semicolon    // ;
	Comma        // ,
	Assign       // :=
	LParen       // (
	RParen       // )
	LBracket     // [
	RBracket     // ]
	Plus         // +
	Minus        // -
	Slash        // /
	Percent      // %
	Less         // <
	Greater      // >
	EqualEqual   // ==
	Caret        // ^ (pointer type prefix)

	// Keywords
	KeywordVar
	KeywordConst
	KeywordProc
	KeywordStruct
	KeywordBegin
	KeywordEnd
	KeywordWhile
	KeywordIf
	KeywordReturn
)

var kindNames = map[Kind]string{
	EndOfInput:    "end of input",
	Ident:         "identifier",
	Number:        "number",
	String:        "string",
	Colon:         "':'",
	Semicolon:     "';'",
	Comma:         "','",
	Assign:        "':='",
	LParen:        "'('",
	RParen:        "')'",
	LBracket:      "'['",
	RBracket:      "']'",
	Plus:          "'+'",
	Minus:         "'-'",
	Slash:         "'/'",
	Percent:       "'%'",
	Less:          "'<'",
	Greater:       "'>'",
	EqualEqual:    "'=='",
	Caret:         "'^'",
	KeywordVar:    "'var'",
	KeywordConst:  "'const'",
	KeywordProc:   "'proc'",
	KeywordStruct: "'struct'",
	KeywordBegin:  "'begin'",
	KeywordEnd:    "'end'",
	KeywordWhile:  "'while'",
	KeywordIf:     "'if'",
	KeywordReturn: "'return'",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

var keywords = map[string]Kind{
	"var":    KeywordVar,
	"const":  KeywordConst,
	"proc":   KeywordProc,
	"struct": KeywordStruct,
	"begin":  KeywordBegin,
	"end":    KeywordEnd,
	"while":  KeywordWhile,
	"if":     KeywordIf,
	"return": KeywordReturn,
}

// Token carries the original source spelling and location.
type Token struct {
	Kind Kind
	Text string
	Loc  diag.Location
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %s", t.Kind, t.Text, t.Loc)
}
