package toy

import (
	"fmt"

	mapset "github.com/deckarep/golang-set"
	"github.com/ethereum/go-ethereum/log"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// wordType is the only value type of the language.
var wordType = types.I32

const entryBlock = "entry"

// ValueLookup maps parameter names to their IR values while one function is
// being lowered.
type ValueLookup struct {
	vals map[string]value.Value
}

func NewValueLookup() *ValueLookup {
	return &ValueLookup{
		vals: make(map[string]value.Value),
	}
}

func (l *ValueLookup) Get(id string) (value.Value, bool) {
	val, ok := l.vals[id]
	return val, ok
}

func (l *ValueLookup) Set(id string, val value.Value) {
	l.vals[id] = val
}

func (l *ValueLookup) Reset() {
	l.vals = make(map[string]value.Value)
}

func (l *ValueLookup) Len() int {
	return len(l.vals)
}

type BuilderOptions struct {
	CheckArity bool
	Verify     bool
	Optimize   bool
}

type LLVMIRBuilder struct {
	mod    *ir.Module
	block  *ir.Block
	values *ValueLookup
	funcs  map[string]*ir.Func
	opts   BuilderOptions
	log    log.Logger
}

func NewLLVMIRBuilder(opts BuilderOptions, logger log.Logger) *LLVMIRBuilder {
	if logger == nil {
		logger = log.New("pkg", "toy")
	}

	return &LLVMIRBuilder{
		mod:    ir.NewModule(),
		values: NewValueLookup(),
		funcs:  make(map[string]*ir.Func),
		opts:   opts,
		log:    logger,
	}
}

func (b *LLVMIRBuilder) Module() *ir.Module {
	return b.mod
}

// Declare creates the function for sig, or reuses an earlier body-less
// declaration with the same number of parameters. The parameters are bound in
// the current symbol table either way.
func (b *LLVMIRBuilder) Declare(sig *FuncSignature) (*ir.Func, error) {
	f, _, err := b.declare(sig)
	return f, err
}

func (b *LLVMIRBuilder) declare(sig *FuncSignature) (f *ir.Func, created bool, err error) {
	if f, ok := b.funcs[sig.Name]; ok {
		if len(f.Blocks) != 0 {
			return nil, false, &RedefinitionError{Loc: sig.Loc, Name: sig.Name}
		}

		if len(f.Params) != len(sig.Params) {
			return nil, false, &SignatureMismatchError{
				Loc:  sig.Loc,
				Name: sig.Name,
				Want: len(f.Params),
				Got:  len(sig.Params),
			}
		}

		b.bindParams(f, sig)
		return f, false, nil
	}

	params := make([]*ir.Param, len(sig.Params))
	for i := range sig.Params {
		params[i] = ir.NewParam("", wordType)
	}

	f = b.mod.NewFunc(sig.Name, wordType, params...)
	b.funcs[sig.Name] = f
	b.bindParams(f, sig)

	return f, true, nil
}

// bindParams names the IR parameters after sig. IR names must be unique within
// the function, so repeated source names get a numeric suffix; the last
// parameter with a given name is the one visible in the body.
func (b *LLVMIRBuilder) bindParams(f *ir.Func, sig *FuncSignature) {
	seen := mapset.NewSet()
	irNames := mapset.NewSet()
	irNames.Add(entryBlock)

	for i, name := range sig.Params {
		if seen.Contains(name) {
			b.log.Warn("Duplicate parameter name", "func", sig.Name, "param", name, "loc", sig.Loc)
		}
		seen.Add(name)

		irName := name
		for n := i; irNames.Contains(irName); n++ {
			irName = fmt.Sprintf("%s%d", name, n)
		}
		irNames.Add(irName)

		f.Params[i].SetName(irName)
		b.values.Set(name, f.Params[i])
	}
}

// Define lowers a whole function. On failure nothing of it is left in the
// module: a fresh function is removed, a reused declaration loses its body.
func (b *LLVMIRBuilder) Define(decl *FuncDecl) (*ir.Func, error) {
	b.values.Reset()

	f, created, err := b.declare(decl.Signature)
	if err != nil {
		return nil, err
	}

	b.block = f.NewBlock(entryBlock)
	defer func() {
		b.block = nil
	}()

	ret, err := b.lower(decl.Body)
	if err == nil {
		b.block.NewRet(ret)

		if b.opts.Verify {
			if err = Verify(f); err != nil {
				err.(*VerifyError).Loc = decl.Signature.Loc
			}
		}
	}

	if err != nil {
		b.discard(f, created)
		return nil, err
	}

	if b.opts.Optimize {
		Reassociate(f)
	}

	return f, nil
}

func (b *LLVMIRBuilder) discard(f *ir.Func, created bool) {
	if !created {
		f.Blocks = nil
		return
	}

	delete(b.funcs, f.Name())
	for i, g := range b.mod.Funcs {
		if g == f {
			b.mod.Funcs = append(b.mod.Funcs[:i], b.mod.Funcs[i+1:]...)
			break
		}
	}
}

func (b *LLVMIRBuilder) lower(expr Expr) (value.Value, error) {
	switch e := expr.(type) {
	case *LiteralExpr:
		return b.loadLiteral(e), nil
	case *Identifier:
		v, ok := b.values.Get(e.Name)
		if !ok {
			return nil, &UndefinedError{Loc: e.Loc, Name: e.Name}
		}

		return v, nil
	case *BinaryExpr:
		return b.binaryExpression(e)
	case *FuncCall:
		return b.functionCall(e)
	default:
		panic(fmt.Sprintf("unexpected expression %T", expr))
	}
}

func (b *LLVMIRBuilder) loadLiteral(expr *LiteralExpr) value.Value {
	return constant.NewInt(wordType, int64(int32(expr.Value)))
}

func (b *LLVMIRBuilder) binaryExpression(expr *BinaryExpr) (value.Value, error) {
	v1, err := b.lower(expr.Op1)
	if err != nil {
		return nil, err
	}

	v2, err := b.lower(expr.Op2)
	if err != nil {
		return nil, err
	}

	switch expr.Operation {
	case BinaryAddition:
		return b.block.NewAdd(v1, v2), nil
	case BinarySubtraction:
		return b.block.NewSub(v1, v2), nil
	case BinaryMultiplication:
		return b.block.NewMul(v1, v2), nil
	case BinaryDivision:
		return b.block.NewUDiv(v1, v2), nil
	default:
		return nil, &UnknownOperatorError{Loc: expr.Loc, Op: expr.Operation}
	}
}

func (b *LLVMIRBuilder) functionCall(expr *FuncCall) (value.Value, error) {
	callee, ok := b.funcs[expr.Name]
	if !ok {
		return nil, &UndefinedFuncError{Loc: expr.Loc, Name: expr.Name}
	}

	if b.opts.CheckArity && len(callee.Params) != len(expr.Args) {
		return nil, &ArityError{
			Loc:  expr.Loc,
			Name: expr.Name,
			Want: len(callee.Params),
			Got:  len(expr.Args),
		}
	}

	args := make([]value.Value, 0, len(expr.Args))
	for _, arg := range expr.Args {
		v, err := b.lower(arg)
		if err != nil {
			return nil, err
		}

		args = append(args, v)
	}

	return b.block.NewCall(callee, args...), nil
}
