package toy

import "fmt"

const anonPrefix = "__anon_expr"

type Parser struct {
	filename  string
	tokenizer Tokenizer
	prec      *PrecedenceTable
	cur       Token
	anonCount int

	// StrictParams rejects parameter lists with stray or missing commas.
	StrictParams bool
}

func NewParser(tokenizer Tokenizer, prec *PrecedenceTable) *Parser {
	if prec == nil {
		prec = DefaultPrecedence()
	}

	p := &Parser{
		tokenizer: tokenizer,
		filename:  tokenizer.GetFilename(),
		prec:      prec,
	}

	p.Advance()
	return p
}

func (p *Parser) GetFilename() string {
	return p.filename
}

// Current is the single token of lookahead.
func (p *Parser) Current() Token {
	return p.cur
}

func (p *Parser) Advance() Token {
	p.cur = p.tokenizer.Next()
	return p.cur
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &ParseError{
		Loc: p.cur.Loc,
		Msg: fmt.Sprintf(format, args...),
	}
}

func (p *Parser) describe() string {
	switch p.cur.Typ {
	case TokenEOF:
		return "end of input"
	case TokenNumber:
		return "number " + p.cur.Value
	default:
		return fmt.Sprintf("'%s'", p.cur.Value)
	}
}

// ParseDefinition parses 'def' signature expression.
func (p *Parser) ParseDefinition() (*FuncDecl, error) {
	p.Advance() // def keyword

	sig, err := p.ParseSignature()
	if err != nil {
		return nil, err
	}

	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	return &FuncDecl{
		Signature: sig,
		Body:      body,
	}, nil
}

// ParseExtern parses 'extern' signature.
func (p *Parser) ParseExtern() (*FuncSignature, error) {
	p.Advance() // extern keyword
	return p.ParseSignature()
}

// ParseTopLevelExpr wraps a bare expression into an anonymous function without
// parameters.
func (p *Parser) ParseTopLevelExpr() (*FuncDecl, error) {
	loc := p.cur.Loc

	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s%d", anonPrefix, p.anonCount)
	p.anonCount++

	return &FuncDecl{
		Signature: &FuncSignature{Loc: loc, Name: name},
		Body:      body,
	}, nil
}

func (p *Parser) ParseSignature() (*FuncSignature, error) {
	if p.cur.Typ != TokenIdentifier {
		return nil, p.errorf("expected function name, got %s", p.describe())
	}

	sig := &FuncSignature{
		Loc:  p.cur.Loc,
		Name: p.cur.Value,
	}

	if p.Advance(); !p.cur.isPunct('(') {
		return nil, p.errorf("expected '(' after function name, got %s", p.describe())
	}

	p.Advance()
	if p.StrictParams {
		if err := p.strictParams(sig); err != nil {
			return nil, err
		}
	} else {
		// Commas are skipped wherever they appear, so "(a b)" and "(a,)" are
		// both accepted.
		for p.cur.Typ == TokenIdentifier || p.cur.isPunct(',') {
			if p.cur.Typ == TokenIdentifier {
				sig.Params = append(sig.Params, p.cur.Value)
				p.Advance()
			}

			if p.cur.isPunct(',') {
				p.Advance()
			}
		}
	}

	if !p.cur.isPunct(')') {
		return nil, p.errorf("expected ')' in parameter list, got %s", p.describe())
	}

	p.Advance() // Skip )
	return sig, nil
}

func (p *Parser) strictParams(sig *FuncSignature) error {
	if p.cur.isPunct(')') {
		return nil
	}

	for {
		if p.cur.Typ != TokenIdentifier {
			return p.errorf("expected parameter name, got %s", p.describe())
		}

		sig.Params = append(sig.Params, p.cur.Value)
		if p.Advance(); !p.cur.isPunct(',') {
			return nil
		}

		p.Advance() // Skip ,
	}
}

// ParseExpression parses a primary followed by any binary operators.
func (p *Parser) ParseExpression() (Expr, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	return p.parseBinOpRHS(0, lhs)
}

func (p *Parser) parsePrimary() (Expr, error) {
	switch tok := p.cur; {
	case tok.Typ == TokenIdentifier:
		return p.parseIdentifierExpr()
	case tok.Typ == TokenNumber:
		return p.parseNumberExpr()
	case tok.isPunct('('):
		return p.parseParenExpr()
	default:
		return nil, p.errorf("unexpected %s when expecting an expression", p.describe())
	}
}

func (p *Parser) parseNumberExpr() (Expr, error) {
	lit := &LiteralExpr{
		Loc:   p.cur.Loc,
		Value: p.cur.Num,
	}

	p.Advance()
	return lit, nil
}

func (p *Parser) parseParenExpr() (Expr, error) {
	p.Advance() // Skip (

	exp, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	if !p.cur.isPunct(')') {
		return nil, p.errorf("expected ')', got %s", p.describe())
	}

	p.Advance() // Skip )
	return exp, nil
}

func (p *Parser) parseIdentifierExpr() (Expr, error) {
	id := p.cur
	if p.Advance(); !p.cur.isPunct('(') {
		return &Identifier{
			Loc:  id.Loc,
			Name: id.Value,
		}, nil
	}

	p.Advance() // Skip (

	var args []Expr
	if !p.cur.isPunct(')') {
		for {
			arg, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}

			args = append(args, arg)
			if p.cur.isPunct(')') {
				break
			}

			if !p.cur.isPunct(',') {
				return nil, p.errorf("expected ')' or ',' in argument list, got %s", p.describe())
			}

			p.Advance() // Skip ,
		}
	}

	p.Advance() // Skip )

	return &FuncCall{
		Loc:  id.Loc,
		Name: id.Value,
		Args: args,
	}, nil
}

// parseBinOpRHS climbs operator precedence. An operator only takes the
// following operand away from its left neighbour when it binds strictly
// tighter, which makes equal ranks associate to the left.
func (p *Parser) parseBinOpRHS(minPrec int, lhs Expr) (Expr, error) {
	for {
		prec := p.prec.Lookup(p.cur)
		if prec < minPrec {
			return lhs, nil
		}

		op := p.cur
		p.Advance()

		rhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}

		if next := p.prec.Lookup(p.cur); prec < next {
			rhs, err = p.parseBinOpRHS(prec+1, rhs)
			if err != nil {
				return nil, err
			}
		}

		lhs = &BinaryExpr{
			Loc:       op.Loc,
			Operation: BinaryOp(op.Value),
			Op1:       lhs,
			Op2:       rhs,
		}
	}
}
