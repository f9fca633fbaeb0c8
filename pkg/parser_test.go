package toy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type BufferedTokenizerMocker struct {
	buf []Token
	pos int
}

func NewBufferedTokenizerMocker(toks []Token) *BufferedTokenizerMocker {
	return &BufferedTokenizerMocker{
		buf: toks,
		pos: 0,
	}
}

func (b *BufferedTokenizerMocker) Next() Token {
	if len(b.buf) <= b.pos {
		return Token{Typ: TokenEOF}
	}

	tok := b.buf[b.pos]
	b.pos++

	return tok
}

func (b *BufferedTokenizerMocker) GetFilename() string {
	return "testing"
}

func punct(s string) Token {
	return Token{Typ: TokenPunct, Value: s}
}

func ident(s string) Token {
	return Token{Typ: TokenIdentifier, Value: s}
}

func num(n int64) Token {
	return Token{Typ: TokenNumber, Num: n}
}

func lit(n int64) *LiteralExpr {
	return &LiteralExpr{Value: n}
}

func TestParserExpression(t *testing.T) {
	cases := []struct {
		data   []Token
		fail   bool
		expect Expr
	}{
		{
			[]Token{num(1)},
			false,
			lit(1),
		},
		{
			[]Token{ident("x")},
			false,
			&Identifier{Name: "x"},
		},
		{
			[]Token{ident("foo"), punct("("), punct(")")},
			false,
			&FuncCall{Name: "foo"},
		},
		{
			[]Token{ident("foo"), punct("("), ident("a"), punct(","), num(2), punct(")")},
			false,
			&FuncCall{
				Name: "foo",
				Args: []Expr{&Identifier{Name: "a"}, lit(2)},
			},
		},
		{
			[]Token{ident("foo"), punct("("), num(1), punct("+"), num(2), punct(")")},
			false,
			&FuncCall{
				Name: "foo",
				Args: []Expr{
					&BinaryExpr{
						Operation: BinaryAddition,
						Op1:       lit(1),
						Op2:       lit(2),
					},
				},
			},
		},
		{
			[]Token{num(1), punct("+"), num(2), punct("*"), num(3)},
			false,
			&BinaryExpr{
				Operation: BinaryAddition,
				Op1:       lit(1),
				Op2: &BinaryExpr{
					Operation: BinaryMultiplication,
					Op1:       lit(2),
					Op2:       lit(3),
				},
			},
		},
		{
			[]Token{punct("("), num(1), punct("+"), num(2), punct(")"), punct("*"), num(3)},
			false,
			&BinaryExpr{
				Operation: BinaryMultiplication,
				Op1: &BinaryExpr{
					Operation: BinaryAddition,
					Op1:       lit(1),
					Op2:       lit(2),
				},
				Op2: lit(3),
			},
		},
		{
			[]Token{num(8), punct("-"), num(4), punct("-"), num(2)},
			false,
			&BinaryExpr{
				Operation: BinarySubtraction,
				Op1: &BinaryExpr{
					Operation: BinarySubtraction,
					Op1:       lit(8),
					Op2:       lit(4),
				},
				Op2: lit(2),
			},
		},
		{
			[]Token{num(1), punct("<"), num(2)},
			false,
			lit(1),
		},
		{
			[]Token{ident("foo"), punct("("), num(1), num(2), punct(")")},
			true,
			nil,
		},
		{
			[]Token{ident("foo"), punct("("), num(1), punct(","), punct(","), num(2), punct(")")},
			true,
			nil,
		},
		{
			[]Token{ident("foo"), punct("("), num(1)},
			true,
			nil,
		},
		{
			[]Token{punct("("), num(1), punct("+"), num(2)},
			true,
			nil,
		},
		{
			[]Token{num(1), punct("+")},
			true,
			nil,
		},
		{
			[]Token{punct(")")},
			true,
			nil,
		},
		{
			[]Token{{Typ: TokenDef, Value: "def"}},
			true,
			nil,
		},
	}

	for _, c := range cases {
		p := NewParser(NewBufferedTokenizerMocker(c.data), nil)

		got, err := p.ParseExpression()
		if c.fail {
			assert.Error(t, err)
			assert.Nil(t, got)
			continue
		}

		if assert.NoError(t, err) {
			assert.Equal(t, c.expect, got)
		}
	}
}

func TestParserDefinition(t *testing.T) {
	cases := []struct {
		data   []Token
		fail   bool
		expect *FuncDecl
	}{
		{
			[]Token{
				{Typ: TokenDef, Value: "def"},
				ident("add"), punct("("), ident("a"), punct(","), ident("b"), punct(")"),
				ident("a"), punct("+"), ident("b"),
			},
			false,
			&FuncDecl{
				Signature: &FuncSignature{Name: "add", Params: []string{"a", "b"}},
				Body: &BinaryExpr{
					Operation: BinaryAddition,
					Op1:       &Identifier{Name: "a"},
					Op2:       &Identifier{Name: "b"},
				},
			},
		},
		{
			[]Token{
				{Typ: TokenDef, Value: "def"},
				ident("one"), punct("("), punct(")"), num(1),
			},
			false,
			&FuncDecl{
				Signature: &FuncSignature{Name: "one"},
				Body:      lit(1),
			},
		},
		{
			// Stray commas are tolerated in parameter lists.
			[]Token{
				{Typ: TokenDef, Value: "def"},
				ident("f"), punct("("), ident("a"), punct(","), punct(")"), ident("a"),
			},
			false,
			&FuncDecl{
				Signature: &FuncSignature{Name: "f", Params: []string{"a"}},
				Body:      &Identifier{Name: "a"},
			},
		},
		{
			[]Token{
				{Typ: TokenDef, Value: "def"},
				ident("f"), punct("("), ident("a"), ident("b"), punct(")"), ident("a"),
			},
			false,
			&FuncDecl{
				Signature: &FuncSignature{Name: "f", Params: []string{"a", "b"}},
				Body:      &Identifier{Name: "a"},
			},
		},
		{
			[]Token{
				{Typ: TokenDef, Value: "def"},
				punct("("), punct(")"), num(1),
			},
			true,
			nil,
		},
		{
			[]Token{
				{Typ: TokenDef, Value: "def"},
				ident("f"), ident("a"), num(1),
			},
			true,
			nil,
		},
		{
			[]Token{
				{Typ: TokenDef, Value: "def"},
				ident("f"), punct("("), ident("a"), num(1),
			},
			true,
			nil,
		},
		{
			[]Token{
				{Typ: TokenDef, Value: "def"},
				ident("f"), punct("("), punct(")"),
			},
			true,
			nil,
		},
	}

	for _, c := range cases {
		p := NewParser(NewBufferedTokenizerMocker(c.data), nil)

		got, err := p.ParseDefinition()
		if c.fail {
			assert.Error(t, err)
			assert.Nil(t, got)
			continue
		}

		if assert.NoError(t, err) {
			assert.Equal(t, c.expect, got)
		}
	}
}

func TestParserStrictParams(t *testing.T) {
	cases := []struct {
		data   string
		fail   bool
		params []string
	}{
		{"f()", false, nil},
		{"f(a)", false, []string{"a"}},
		{"f(a, b, c)", false, []string{"a", "b", "c"}},
		{"f(a,)", true, nil},
		{"f(,a)", true, nil},
		{"f(a b)", true, nil},
		{"f(a,,b)", true, nil},
	}

	for _, c := range cases {
		p := NewParser(NewLexerFromReader(strings.NewReader(c.data)), nil)
		p.StrictParams = true

		sig, err := p.ParseSignature()
		if c.fail {
			assert.Error(t, err, c.data)
			continue
		}

		if assert.NoError(t, err, c.data) {
			assert.Equal(t, c.params, sig.Params, c.data)
		}
	}
}

func TestParserTopLevelExpr(t *testing.T) {
	p := NewParser(NewLexerFromReader(strings.NewReader("1+2 3")), nil)

	first, err := p.ParseTopLevelExpr()
	require.NoError(t, err)
	second, err := p.ParseTopLevelExpr()
	require.NoError(t, err)

	assert.Equal(t, "__anon_expr0", first.Signature.Name)
	assert.Empty(t, first.Signature.Params)
	assert.Equal(t, "(+ 1 2)", Format(first.Body))
	assert.Equal(t, "__anon_expr1", second.Signature.Name)
	assert.Equal(t, TokenEOF, p.Current().Typ)
}

func TestParserPrecedence(t *testing.T) {
	cases := []struct {
		data   string
		expect string
	}{
		{"1+2*3", "(+ 1 (* 2 3))"},
		{"(1+2)*3", "(* (+ 1 2) 3)"},
		{"8-4-2", "(- (- 8 4) 2)"},
		{"8/4/2", "(/ (/ 8 4) 2)"},
		{"1-2+3", "(- 1 (+ 2 3))"},
		{"1*2/3", "(/ (* 1 2) 3)"},
		{"a*b+c*d", "(+ (* a b) (* c d))"},
		{"a-b*c+d", "(- a (+ (* b c) d))"},
		{"((x))", "x"},
		{"f(1+2, g(y)) * 3", "(* (call f (+ 1 2) (call g y)) 3)"},
		{"1 # this is ignored\n+2", "(+ 1 2)"},
	}

	for _, c := range cases {
		p := NewParser(NewLexerFromReader(strings.NewReader(c.data)), nil)

		got, err := p.ParseExpression()
		if assert.NoError(t, err, c.data) {
			assert.Equal(t, c.expect, Format(got), c.data)
			assert.Equal(t, TokenEOF, p.Current().Typ, c.data)
		}
	}
}

func TestParserCustomPrecedence(t *testing.T) {
	prec, err := NewPrecedenceTable(map[string]int{"+": 1, "*": 2, "%": 3})
	require.NoError(t, err)

	p := NewParser(NewLexerFromReader(strings.NewReader("a+b*c%d")), prec)

	got, err := p.ParseExpression()
	require.NoError(t, err)
	assert.Equal(t, "(+ a (* b (% c d)))", Format(got))
}

func TestParserErrorLocation(t *testing.T) {
	lexer := NewLexerFromReader(strings.NewReader("def f(a)\n  a + )"))
	p := NewParser(lexer, nil)

	_, err := p.ParseDefinition()
	require.Error(t, err)

	perr, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, &Location{Line: 2, Column: 7}, perr.Location())
}
