package toy

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i32(v int64) *constant.Int {
	return constant.NewInt(types.I32, v)
}

func newTestFunc() (*ir.Func, *ir.Param, *ir.Block) {
	x := ir.NewParam("x", types.I32)
	f := ir.NewModule().NewFunc("f", types.I32, x)

	return f, x, f.NewBlock("entry")
}

func TestReassociateMovesConstantsRight(t *testing.T) {
	f, x, entry := newTestFunc()
	add := entry.NewAdd(i32(2), x)
	entry.NewRet(add)

	Reassociate(f)

	assert.Equal(t, x, add.X)
	assert.Equal(t, i32(2), add.Y)
}

func TestReassociateKeepsSubtractionOrder(t *testing.T) {
	f, x, entry := newTestFunc()
	sub := entry.NewSub(i32(2), x)
	entry.NewRet(sub)

	Reassociate(f)

	assert.Equal(t, i32(2), sub.X)
	assert.Equal(t, x, sub.Y)
}

func TestReassociateFoldsConstants(t *testing.T) {
	f, x, entry := newTestFunc()
	mul := entry.NewMul(i32(2), i32(3))
	add := entry.NewAdd(mul, x)
	entry.NewRet(add)

	Reassociate(f)

	require.Len(t, entry.Insts, 1)
	assert.Equal(t, add, entry.Insts[0])
	assert.Equal(t, x, add.X)
	assert.Equal(t, i32(6), add.Y)
}

func TestReassociateFoldsToReturn(t *testing.T) {
	f, _, entry := newTestFunc()
	sub := entry.NewSub(i32(1), i32(3))
	div := entry.NewUDiv(sub, i32(2))
	entry.NewRet(div)

	Reassociate(f)

	assert.Empty(t, entry.Insts)
	// (1 - 3) wraps to 0xfffffffe before the unsigned division.
	assert.Equal(t, i32(0x7fffffff), entry.Term.(*ir.TermRet).X)
}

func TestReassociateChains(t *testing.T) {
	cases := []struct {
		name  string
		build func(b *ir.Block, x *ir.Param) value.Value
		op    interface{}
		c     int64
	}{
		{
			"add",
			func(b *ir.Block, x *ir.Param) value.Value {
				return b.NewAdd(b.NewAdd(x, i32(1)), i32(2))
			},
			&ir.InstAdd{},
			3,
		},
		{
			"add with constants on the left",
			func(b *ir.Block, x *ir.Param) value.Value {
				return b.NewAdd(i32(2), b.NewAdd(i32(1), x))
			},
			&ir.InstAdd{},
			3,
		},
		{
			"mul",
			func(b *ir.Block, x *ir.Param) value.Value {
				return b.NewMul(b.NewMul(x, i32(2)), i32(3))
			},
			&ir.InstMul{},
			6,
		},
		{
			"add wraps",
			func(b *ir.Block, x *ir.Param) value.Value {
				return b.NewAdd(b.NewAdd(x, i32(2147483647)), i32(1))
			},
			&ir.InstAdd{},
			-2147483648,
		},
	}

	for _, c := range cases {
		f, x, entry := newTestFunc()
		last := c.build(entry, x)
		entry.NewRet(last)

		Reassociate(f)

		require.Len(t, entry.Insts, 1, c.name)
		bin, ok := asBinary(entry.Insts[0])
		require.True(t, ok, c.name)
		assert.IsType(t, c.op, entry.Insts[0], c.name)
		assert.Equal(t, x, *bin.x, c.name)
		assert.Equal(t, i32(c.c), *bin.y, c.name)
	}
}

func TestReassociateSharedOperand(t *testing.T) {
	f, x, entry := newTestFunc()
	inner := entry.NewAdd(x, i32(1))
	outer := entry.NewAdd(inner, i32(2))
	mul := entry.NewMul(outer, inner)
	entry.NewRet(mul)

	Reassociate(f)

	assert.Len(t, entry.Insts, 3)
	assert.Equal(t, inner, outer.X)
	assert.Equal(t, i32(2), outer.Y)
}

func TestReassociateDivisionByZero(t *testing.T) {
	f, _, entry := newTestFunc()
	div := entry.NewUDiv(i32(4), i32(0))
	entry.NewRet(div)

	Reassociate(f)

	require.Len(t, entry.Insts, 1)
	assert.Equal(t, div, entry.Term.(*ir.TermRet).X)
}

func TestReassociateKeepsCalls(t *testing.T) {
	f, x, entry := newTestFunc()
	entry.NewCall(f, x)
	entry.NewRet(x)

	Reassociate(f)

	assert.Len(t, entry.Insts, 1)
}
