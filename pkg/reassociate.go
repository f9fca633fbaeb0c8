package toy

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/value"
)

type opcode int

const (
	opAdd opcode = iota
	opSub
	opMul
	opUDiv
)

func (op opcode) commutative() bool {
	return op == opAdd || op == opMul
}

type binaryInst struct {
	op   opcode
	x, y *value.Value
}

func asBinary(inst ir.Instruction) (binaryInst, bool) {
	switch inst := inst.(type) {
	case *ir.InstAdd:
		return binaryInst{opAdd, &inst.X, &inst.Y}, true
	case *ir.InstSub:
		return binaryInst{opSub, &inst.X, &inst.Y}, true
	case *ir.InstMul:
		return binaryInst{opMul, &inst.X, &inst.Y}, true
	case *ir.InstUDiv:
		return binaryInst{opUDiv, &inst.X, &inst.Y}, true
	}

	return binaryInst{}, false
}

// Reassociate normalises the word arithmetic of f:
//
//	c op x          => x op c        (add, mul)
//	c1 op c2        => c
//	(x op c1) op c2 => x op (c1 op c2)  (add, mul, inner result used once)
//
// Instructions left without uses are dropped afterwards. Calls are kept.
func Reassociate(f *ir.Func) {
	for _, block := range f.Blocks {
		for _, inst := range block.Insts {
			bin, ok := asBinary(inst)
			if !ok {
				continue
			}

			if bin.op.commutative() && isConst(*bin.x) && !isConst(*bin.y) {
				*bin.x, *bin.y = *bin.y, *bin.x
			}

			if c, ok := foldConst(bin.op, *bin.x, *bin.y); ok {
				if v, ok := inst.(value.Value); ok {
					replaceUses(f, v, c)
				}
				continue
			}

			if !bin.op.commutative() || !isConst(*bin.y) {
				continue
			}

			inner, ok := (*bin.x).(ir.Instruction)
			if !ok || countUses(f, *bin.x) != 1 {
				continue
			}

			innerBin, ok := asBinary(inner)
			if !ok || innerBin.op != bin.op || !isConst(*innerBin.y) {
				continue
			}

			c, _ := foldConst(bin.op, *innerBin.y, *bin.y)
			*bin.x = *innerBin.x
			*bin.y = c
		}
	}

	removeDead(f)
}

func isConst(v value.Value) bool {
	_, ok := v.(*constant.Int)
	return ok
}

func foldConst(op opcode, x, y value.Value) (*constant.Int, bool) {
	cx, ok := x.(*constant.Int)
	if !ok {
		return nil, false
	}

	cy, ok := y.(*constant.Int)
	if !ok {
		return nil, false
	}

	a, b := uint32(cx.X.Int64()), uint32(cy.X.Int64())

	var res uint32
	switch op {
	case opAdd:
		res = a + b
	case opSub:
		res = a - b
	case opMul:
		res = a * b
	case opUDiv:
		if b == 0 {
			return nil, false
		}
		res = a / b
	}

	return constant.NewInt(wordType, int64(int32(res))), true
}

// operands returns pointers to every value slot read by inst.
func operands(inst interface{}) []*value.Value {
	if i, ok := inst.(ir.Instruction); ok {
		if bin, ok := asBinary(i); ok {
			return []*value.Value{bin.x, bin.y}
		}
	}

	switch inst := inst.(type) {
	case *ir.InstCall:
		ops := make([]*value.Value, len(inst.Args))
		for i := range inst.Args {
			ops[i] = &inst.Args[i]
		}

		return ops
	case *ir.TermRet:
		if inst.X != nil {
			return []*value.Value{&inst.X}
		}
	}

	return nil
}

func eachOperand(f *ir.Func, fn func(op *value.Value)) {
	for _, block := range f.Blocks {
		for _, inst := range block.Insts {
			for _, op := range operands(inst) {
				fn(op)
			}
		}

		if block.Term != nil {
			for _, op := range operands(block.Term) {
				fn(op)
			}
		}
	}
}

func countUses(f *ir.Func, v value.Value) int {
	n := 0
	eachOperand(f, func(op *value.Value) {
		if *op == v {
			n++
		}
	})

	return n
}

func replaceUses(f *ir.Func, old, repl value.Value) {
	eachOperand(f, func(op *value.Value) {
		if *op == old {
			*op = repl
		}
	})
}

func removeDead(f *ir.Func) {
	for changed := true; changed; {
		changed = false
		for _, block := range f.Blocks {
			var kept []ir.Instruction
			for _, inst := range block.Insts {
				v, isValue := inst.(value.Value)
				if _, isCall := inst.(*ir.InstCall); !isCall && isValue && countUses(f, v) == 0 {
					changed = true
					continue
				}

				kept = append(kept, inst)
			}

			block.Insts = kept
		}
	}
}
