package toy

import (
	"io"

	"github.com/ethereum/go-ethereum/log"
	"github.com/llir/llvm/ir"
)

type Compiler struct {
	cfg Config
	log log.Logger
}

type Result struct {
	Module   *ir.Module
	Units    []Unit
	Errors   []CompileError
	Compiled int
}

// Failed reports whether any top-level unit was rejected.
func (r *Result) Failed() bool {
	return len(r.Errors) != 0
}

func NewCompiler(cfg Config) *Compiler {
	return &Compiler{
		cfg: cfg,
		log: log.New("pkg", "toy"),
	}
}

func (c *Compiler) Compile(filename string) (*Result, error) {
	lexer, err := NewLexer(filename)
	if err != nil {
		return nil, err
	}
	lexer.Extern = c.cfg.Extern

	return c.Run(lexer)
}

func (c *Compiler) CompileFromReader(reader io.Reader) (*Result, error) {
	lexer := NewLexerFromReader(reader)
	lexer.Extern = c.cfg.Extern

	return c.Run(lexer)
}

// Parse runs the front-end only. Units that fail to parse are reported and
// skipped according to the recovery policy.
func (c *Compiler) Parse(tokenizer Tokenizer) (*Result, error) {
	p, err := c.newParser(tokenizer)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	res.Errors = c.drive(p, func(u Unit) error {
		res.Units = append(res.Units, u)
		return nil
	})

	return res, nil
}

// Run compiles every unit the tokenizer yields into a fresh module.
func (c *Compiler) Run(tokenizer Tokenizer) (*Result, error) {
	p, err := c.newParser(tokenizer)
	if err != nil {
		return nil, err
	}

	b := NewLLVMIRBuilder(BuilderOptions{
		CheckArity: c.cfg.CheckArity,
		Verify:     c.cfg.Verify,
		Optimize:   c.cfg.Optimize,
	}, c.log)
	b.mod.SourceFilename = tokenizer.GetFilename()
	if b.mod.SourceFilename == "" {
		b.mod.SourceFilename = c.cfg.ModuleName
	}

	res := &Result{Module: b.Module()}
	res.Errors = c.drive(p, func(u Unit) error {
		var err error
		switch u := u.(type) {
		case *FuncDecl:
			_, err = b.Define(u)
			if err == nil {
				c.log.Debug("Defined function", "name", u.Signature.Name, "params", len(u.Signature.Params))
			}
		case *FuncSignature:
			_, err = b.Declare(u)
			if err == nil {
				c.log.Debug("Declared function", "name", u.Name, "params", len(u.Params))
			}
		}

		if err == nil {
			res.Units = append(res.Units, u)
			res.Compiled++
		}

		return err
	})

	c.log.Info("Compilation finished", "module", c.cfg.ModuleName, "compiled", res.Compiled, "failed", len(res.Errors))
	return res, nil
}

func (c *Compiler) newParser(tokenizer Tokenizer) (*Parser, error) {
	prec, err := c.cfg.PrecedenceTable()
	if err != nil {
		return nil, err
	}

	p := NewParser(tokenizer, prec)
	p.StrictParams = c.cfg.StrictParams

	return p, nil
}

// drive pulls top-level units from p until the end of input and hands each
// one to handle. A failed unit costs exactly one token under RecoverySkip.
func (c *Compiler) drive(p *Parser, handle func(Unit) error) []CompileError {
	var errs []CompileError
	for {
		var unit Unit
		var err error
		parsed := false

		switch tok := p.Current(); {
		case tok.Typ == TokenEOF:
			return errs
		case tok.isPunct(';'):
			p.Advance()
			continue
		case tok.Typ == TokenDef:
			unit, err = p.ParseDefinition()
		case tok.Typ == TokenExtern:
			unit, err = p.ParseExtern()
		default:
			unit, err = p.ParseTopLevelExpr()
		}

		if err == nil {
			parsed = true
			err = handle(unit)
		}

		if err == nil {
			continue
		}

		cerr, ok := err.(CompileError)
		if !ok {
			cerr = &ParseError{Loc: p.Current().Loc, Msg: err.Error()}
		}
		errs = append(errs, cerr)

		if c.cfg.Recovery == RecoveryAbort {
			c.log.Warn("Aborting after failed unit", "err", cerr)
			return errs
		}

		if parsed && c.cfg.Recovery == RecoverySkipParse {
			c.log.Warn("Continuing after failed unit", "err", cerr)
			continue
		}

		c.log.Warn("Skipping token after failed unit", "err", cerr, "token", p.Current().Value)
		p.Advance()
	}
}
