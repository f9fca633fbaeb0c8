package toy

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
)

// Verify checks the structural invariants the code generator relies on. It
// returns a *VerifyError describing the first problem found.
func Verify(f *ir.Func) error {
	v := &verifier{f: f}
	v.run()

	if v.msg == "" {
		return nil
	}

	return &VerifyError{Func: f.Name(), Msg: v.msg}
}

type verifier struct {
	f   *ir.Func
	msg string
}

func (v *verifier) failf(format string, args ...interface{}) {
	if v.msg == "" {
		v.msg = fmt.Sprintf(format, args...)
	}
}

func (v *verifier) run() {
	if len(v.f.Blocks) == 0 {
		v.failf("function has no body")
		return
	}

	for _, block := range v.f.Blocks {
		for _, inst := range block.Insts {
			v.instruction(inst)
		}

		switch term := block.Term.(type) {
		case nil:
			v.failf("block %s is not terminated", block.Name())
		case *ir.TermRet:
			if term.X == nil {
				v.failf("missing return value")
			} else if !term.X.Type().Equal(v.f.Sig.RetType) {
				v.failf("returns %s, expects %s", term.X.Type(), v.f.Sig.RetType)
			}
		}
	}
}

func (v *verifier) instruction(inst ir.Instruction) {
	switch inst := inst.(type) {
	case *ir.InstAdd:
		v.word("add", inst.X, inst.Y)
	case *ir.InstSub:
		v.word("sub", inst.X, inst.Y)
	case *ir.InstMul:
		v.word("mul", inst.X, inst.Y)
	case *ir.InstUDiv:
		v.word("udiv", inst.X, inst.Y)
	case *ir.InstCall:
		callee, ok := inst.Callee.(*ir.Func)
		if !ok {
			v.failf("indirect call")
			return
		}

		if len(inst.Args) != len(callee.Sig.Params) {
			v.failf("call to %s with %d arguments, expects %d", callee.Name(), len(inst.Args), len(callee.Sig.Params))
			return
		}

		for i, arg := range inst.Args {
			if !arg.Type().Equal(callee.Sig.Params[i]) {
				v.failf("argument %d of call to %s is %s, expects %s", i, callee.Name(), arg.Type(), callee.Sig.Params[i])
			}
		}
	default:
		v.failf("unexpected instruction %T", inst)
	}
}

func (v *verifier) word(op string, operands ...value.Value) {
	for _, x := range operands {
		if !x.Type().Equal(wordType) {
			v.failf("%s operand is %s, expects %s", op, x.Type(), wordType)
		}
	}
}
