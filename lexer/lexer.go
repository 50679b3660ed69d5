package lexer

import (
	"fmt"
	"unicode"

	"github.com/avanasov/stackc/diag"
)

// Lexer turns source text into a token stream with one token of lookahead.
// Identifiers start with a Unicode letter or '_' and continue with letters,
// digits, or '_', so non-ASCII letters are accepted; other symbols are not
// identifier characters and are reported as unexpected.
type Lexer struct {
	path   string
	src    []rune
	pos    int
	line   int
	column int
	ch     rune

	sink    *diag.Sink
	peeked  *Token
	atEnd   bool
}

// New creates a lexer for the given path and source text.
func New(path, source string, sink *diag.Sink) *Lexer {
	l := &Lexer{
		path:   path,
		src:    []rune(source),
		line:   1,
		column: 0,
		sink:   sink,
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.pos >= len(l.src) {
		l.ch = 0
		l.atEnd = true
	} else {
		l.ch = l.src[l.pos]
	}
	l.pos++
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) here() diag.Location {
	return diag.Location{Path: l.path, Line: l.line, Column: l.column}
}

func (l *Lexer) advanceLine() {
	l.line++
	l.column = 0
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentCont(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '\n':
			l.advanceLine()
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

// Peek returns, without consuming, the next token.
func (l *Lexer) Peek() (Token, error) {
	if l.peeked == nil {
		tok, err := l.scan()
		if err != nil {
			return Token{}, err
		}
		l.peeked = &tok
	}
	return *l.peeked, nil
}

// Next consumes and returns the next token.
func (l *Lexer) Next() (Token, error) {
	if l.peeked != nil {
		tok := *l.peeked
		l.peeked = nil
		return tok, nil
	}
	return l.scan()
}

// Expect consumes the next token, requiring its kind to be one of kinds.
func (l *Lexer) Expect(kinds ...Kind) (Token, error) {
	tok, err := l.Next()
	if err != nil {
		return Token{}, err
	}
	for _, k := range kinds {
		if tok.Kind == k {
			return tok, nil
		}
	}
	l.sink.Errorf(tok.Loc, "expected one of %s, got %s", kindList(kinds), describeToken(tok))
	return Token{}, fmt.Errorf("unexpected token %s at %s", tok.Kind, tok.Loc)
}

func describeToken(t Token) string {
	if t.Kind == Ident || t.Kind == Number || t.Kind == String {
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	}
	return t.Kind.String()
}

func kindList(kinds []Kind) string {
	s := ""
	for i, k := range kinds {
		if i > 0 {
			s += ", "
		}
		s += k.String()
	}
	return s
}

func (l *Lexer) scan() (Token, error) {
	l.skipWhitespaceAndComments()
	loc := l.here()

	if l.atEnd {
		return Token{Kind: EndOfInput, Text: "", Loc: loc}, nil
	}

	switch l.ch {
	case ':':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Kind: Assign, Text: ":=", Loc: loc}, nil
		}
		l.readChar()
		return Token{Kind: Colon, Text: ":", Loc: loc}, nil
	case ';':
		l.readChar()
		return Token{Kind: Semicolon, Text: ";", Loc: loc}, nil
	case ',':
		l.readChar()
		return Token{Kind: Comma, Text: ",", Loc: loc}, nil
	case '(':
		l.readChar()
		return Token{Kind: LParen, Text: "(", Loc: loc}, nil
	case ')':
		l.readChar()
		return Token{Kind: RParen, Text: ")", Loc: loc}, nil
	case '[':
		l.readChar()
		return Token{Kind: LBracket, Text: "[", Loc: loc}, nil
	case ']':
		l.readChar()
		return Token{Kind: RBracket, Text: "]", Loc: loc}, nil
	case '+':
		l.readChar()
		return Token{Kind: Plus, Text: "+", Loc: loc}, nil
	case '-':
		l.readChar()
		return Token{Kind: Minus, Text: "-", Loc: loc}, nil
	case '/':
		l.readChar()
		return Token{Kind: Slash, Text: "/", Loc: loc}, nil
	case '%':
		l.readChar()
		return Token{Kind: Percent, Text: "%", Loc: loc}, nil
	case '^':
		l.readChar()
		return Token{Kind: Caret, Text: "^", Loc: loc}, nil
	case '<':
		l.readChar()
		return Token{Kind: Less, Text: "<", Loc: loc}, nil
	case '>':
		l.readChar()
		return Token{Kind: Greater, Text: ">", Loc: loc}, nil
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Kind: EqualEqual, Text: "==", Loc: loc}, nil
		}
		l.sink.Errorf(loc, "unexpected character %q", l.ch)
		l.readChar()
		return l.scan()
	case '"':
		return l.scanString(loc)
	default:
		if isIdentStart(l.ch) {
			return l.scanIdentOrKeyword(loc), nil
		}
		if unicode.IsDigit(l.ch) {
			return l.scanNumber(loc), nil
		}
		l.sink.Errorf(loc, "unexpected character %q", l.ch)
		l.readChar()
		return l.scan()
	}
}

func (l *Lexer) scanIdentOrKeyword(loc diag.Location) Token {
	start := l.pos - 1
	for isIdentCont(l.ch) {
		l.readChar()
	}
	text := string(l.src[start : l.pos-1])
	if kw, ok := keywords[text]; ok {
		return Token{Kind: kw, Text: text, Loc: loc}
	}
	return Token{Kind: Ident, Text: text, Loc: loc}
}

func (l *Lexer) scanNumber(loc diag.Location) Token {
	start := l.pos - 1
	for unicode.IsDigit(l.ch) {
		l.readChar()
	}
	return Token{Kind: Number, Text: string(l.src[start : l.pos-1]), Loc: loc}
}

func (l *Lexer) scanString(loc diag.Location) (Token, error) {
	l.readChar() // consume opening quote
	start := l.pos - 1
	for {
		if l.ch == 0 {
			l.sink.Errorf(loc, "unterminated string literal")
			return Token{}, fmt.Errorf("unterminated string literal at %s", loc)
		}
		if l.ch == '"' {
			raw := string(l.src[start : l.pos-1])
			l.readChar() // consume closing quote
			return Token{Kind: String, Text: ProcessEscapeSequences(raw), Loc: loc}, nil
		}
		if l.ch == '\\' {
			l.readChar()
			if l.ch != 0 {
				l.readChar()
			}
			continue
		}
		if l.ch == '\n' {
			l.advanceLine()
		}
		l.readChar()
	}
}
