package toy

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

type TokenType uint64

const EOF rune = -1

const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenIdentifier
	TokenDef
	TokenExtern
	TokenPunct
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenNumber:     "Number",
	TokenIdentifier: "Identifier",
	TokenDef:        "Def",
	TokenExtern:     "Extern",
	TokenPunct:      "Punct",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}

	return "Unknown"
}

var keywordTable = map[string]TokenType{
	"def":    TokenDef,
	"extern": TokenExtern,
}

const commentStart = '#'

type Token struct {
	Typ   TokenType
	Value string
	Loc   *Location
	Num   int64
}

func (t Token) isPunct(r rune) bool {
	return t.Typ == TokenPunct && t.Value == string(r)
}

// Tokenizer hands out one token per call. Once the input is exhausted it keeps
// returning TokenEOF.
type Tokenizer interface {
	Next() Token
	GetFilename() string
}

type Lexer struct {
	filename string
	reader   *bufio.Reader
	line     int
	col      int

	// Extern reserves the extern keyword. Without it "extern" is an
	// ordinary identifier.
	Extern bool
}

func NewLexer(filename string) (*Lexer, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "read source file")
	}

	l := NewLexerFromReader(bytes.NewReader(data))
	l.filename = filename

	return l, nil
}

func NewLexerFromReader(reader io.Reader) *Lexer {
	return &Lexer{
		reader: bufio.NewReader(reader),
		line:   1,
	}
}

func (l *Lexer) GetFilename() string {
	return l.filename
}

// Tokenize drains the lexer. The trailing EOF token is not included.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for tok := l.Next(); tok.Typ != TokenEOF; tok = l.Next() {
		tokens = append(tokens, tok)
	}

	return tokens
}

func (l *Lexer) Next() Token {
	for unicode.IsSpace(l.peek()) {
		l.next()
	}

	loc := l.location()
	switch r := l.peek(); {
	case r == EOF:
		return Token{Typ: TokenEOF, Loc: loc}
	case isLetter(r):
		return l.identifier(loc)
	case isDigit(r):
		return l.number(loc)
	case r == commentStart:
		l.lineComment()
		return l.Next()
	default:
		return Token{Typ: TokenPunct, Value: string(l.next()), Loc: loc}
	}
}

func (l *Lexer) identifier(loc *Location) Token {
	var id strings.Builder
	for r := l.peek(); isLetter(r) || isDigit(r); r = l.peek() {
		id.WriteRune(l.next())
	}

	if t, ok := keywordTable[id.String()]; ok && (t != TokenExtern || l.Extern) {
		return Token{Typ: t, Value: id.String(), Loc: loc}
	}

	return Token{Typ: TokenIdentifier, Value: id.String(), Loc: loc}
}

// number accumulates an unsigned decimal literal. Values that overflow wrap
// around, the code generator truncates them to the native word anyway.
func (l *Lexer) number(loc *Location) Token {
	var num strings.Builder
	var val int64
	for r := l.peek(); isDigit(r); r = l.peek() {
		num.WriteRune(l.next())
		val = val*10 + int64(r-'0')
	}

	return Token{Typ: TokenNumber, Value: num.String(), Loc: loc, Num: val}
}

func (l *Lexer) lineComment() {
	for r := l.peek(); r != '\n' && r != '\r' && r != EOF; r = l.peek() {
		l.next()
	}
}

func (l *Lexer) location() *Location {
	return &Location{
		Filename: l.filename,
		Line:     l.line,
		Column:   l.col + 1,
	}
}

func (l *Lexer) peek() rune {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		return EOF
	}

	_ = l.reader.UnreadRune()
	return r
}

func (l *Lexer) next() rune {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		return EOF
	}

	if r == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}

	return r
}

func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}
