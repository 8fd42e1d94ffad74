package fir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testBlock() (*Block, *Builder) {
	blk := &Block{Name: "bb0"}
	return blk, NewBuilder(blk)
}

func TestConstantFoldArithmetic(t *testing.T) {
	_, b := testBlock()
	i32 := IntType{Width: 32}
	three := b.Constant(IntAttr{Value: 3}, i32)
	four := b.Constant(IntAttr{Value: 4}, i32)

	sum := b.AddI(three.Results[0], four.Results[0])
	attr, ok := Fold(sum)
	require.True(t, ok)
	require.Equal(t, IntAttr{Value: 7}, attr)

	prod := b.MulI(three.Results[0], four.Results[0])
	attr, ok = Fold(prod)
	require.True(t, ok)
	require.Equal(t, IntAttr{Value: 12}, attr)
}

func TestFoldIsIdempotent(t *testing.T) {
	_, b := testBlock()
	f32 := FloatType{Width: 32}
	lhs := b.Constant(FloatAttr{Value: 2.5}, f32)
	rhs := b.Constant(FloatAttr{Value: 1.5}, f32)
	sum := b.AddF(lhs.Results[0], rhs.Results[0])

	first, ok := Fold(sum)
	require.True(t, ok)
	require.Equal(t, FloatAttr{Value: 4.0}, first)

	second, ok := Fold(sum)
	require.True(t, ok)
	require.True(t, AttrsEqual(first, second))
}

func TestDivisionByZeroDoesNotFold(t *testing.T) {
	_, b := testBlock()
	i32 := IntType{Width: 32}
	one := b.Constant(IntAttr{Value: 1}, i32)
	zero := b.Constant(IntAttr{Value: 0}, i32)
	div := b.DivI(one.Results[0], zero.Results[0])

	_, ok := Fold(div)
	require.False(t, ok)
}

func TestNegFFold(t *testing.T) {
	_, b := testBlock()
	c := b.Constant(FloatAttr{Value: 2.0}, FloatType{Width: 64})
	neg := b.NegF(c.Results[0])

	attr, ok := Fold(neg)
	require.True(t, ok)
	require.Equal(t, FloatAttr{Value: -2.0}, attr)
}

func TestConvertFolds(t *testing.T) {
	blk, b := testBlock()
	i32 := IntType{Width: 32}

	// Identity conversion of a non-constant folds to its operand.
	x := blk.AddArg("x", i32)
	identity := b.Convert(x, i32)
	attr, ok := Fold(identity)
	require.True(t, ok)
	require.Nil(t, attr)

	// Identity conversion of a constant folds to the constant.
	c := b.Constant(IntAttr{Value: 7}, i32)
	folded := b.Convert(c.Results[0], i32)
	attr, ok = Fold(folded)
	require.True(t, ok)
	require.Equal(t, IntAttr{Value: 7}, attr)

	// A real conversion does not fold.
	widen := b.Convert(x, IntType{Width: 64})
	_, ok = Fold(widen)
	require.False(t, ok)
}

func TestWhereFoldsOnlyWhenEmpty(t *testing.T) {
	blk, b := testBlock()
	cond := blk.AddArg("c", DefaultLogical)

	empty := b.Where(cond, nil, false)
	_, ok := Fold(empty)
	require.True(t, ok)

	busy := b.Where(cond, nil, false)
	b.SetInsertionBlock(busy.Regions[0].Blocks[0])
	b.Constant(IntAttr{Value: 1}, IntType{Width: 32})
	_, ok = Fold(busy)
	require.False(t, ok)
}

func TestWhereWithResultsNeedsElse(t *testing.T) {
	blk, b := testBlock()
	cond := blk.AddArg("c", DefaultLogical)
	op := b.Where(cond, []Type{IntType{Width: 32}}, false)

	err := VerifyOp(op)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must have an else block if defining values")

	withElse := b.Where(cond, []Type{IntType{Width: 32}}, true)
	require.NoError(t, VerifyOp(withElse))
}

func TestAllocaRejectsReferenceElement(t *testing.T) {
	_, b := testBlock()
	require.NoError(t, VerifyOp(b.Alloca(IntType{Width: 32})))

	bad := b.Alloca(RefType{Elem: IntType{Width: 32}})
	err := VerifyOp(bad)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot allocate a reference to a reference")
}

func TestAllocMemRejections(t *testing.T) {
	_, b := testBlock()
	require.NoError(t, VerifyOp(b.AllocMem(SeqType{Shape: []int{10}, Elem: FloatType{Width: 32}})))

	refElem := b.AllocMem(PtrType{Elem: IntType{Width: 32}})
	err := VerifyOp(refElem)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot allocate a reference type on the heap")

	funcElem := b.AllocMem(FuncType{Results: []Type{IntType{Width: 32}}})
	err = VerifyOp(funcElem)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot allocate a function type on the heap")
}

func TestFreeMemWantsHeapOperand(t *testing.T) {
	blk, b := testBlock()
	heap := b.AllocMem(IntType{Width: 32})
	require.NoError(t, VerifyOp(b.FreeMem(heap.Results[0])))

	stack := blk.AddArg("p", RefType{Elem: IntType{Width: 32}})
	err := VerifyOp(b.FreeMem(stack))
	require.Error(t, err)
	require.Contains(t, err.Error(), "heap allocation")
}

func TestCmpPredicateValidation(t *testing.T) {
	blk, b := testBlock()
	f := blk.AddArg("f", FloatType{Width: 32})
	i := blk.AddArg("i", IntType{Width: 32})

	require.NoError(t, VerifyOp(b.CmpF("olt", f, f)))
	require.NoError(t, VerifyOp(b.CmpI("eq", i, i)))

	err := VerifyOp(b.CmpF("bogus", f, f))
	require.Error(t, err)
	require.Contains(t, err.Error(), `invalid predicate "bogus"`)

	// Float predicates are not integer predicates.
	err = VerifyOp(b.CmpI("olt", i, i))
	require.Error(t, err)
	require.Contains(t, err.Error(), `invalid predicate "olt"`)

	err = VerifyOp(b.CmpI("eq", f, f))
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot compare f32 values")
}

func TestArithmeticTypeChecks(t *testing.T) {
	blk, b := testBlock()
	f := blk.AddArg("f", FloatType{Width: 32})
	i := blk.AddArg("i", IntType{Width: 32})

	err := VerifyOp(b.AddF(i, i))
	require.Error(t, err)
	require.Contains(t, err.Error(), "expects a floating-point type")

	err = VerifyOp(b.MulI(f, f))
	require.Error(t, err)
	require.Contains(t, err.Error(), "expects an integer type")

	mixed := b.AddI(i, i)
	mixed.Operands[1] = f
	err = VerifyOp(mixed)
	require.Error(t, err)
	require.Contains(t, err.Error(), "types must match")
}

func TestLoadStoreTypeChecks(t *testing.T) {
	blk, b := testBlock()
	cell := b.Alloca(IntType{Width: 32})
	require.NoError(t, VerifyOp(b.Load(cell.Results[0])))

	plain := blk.AddArg("x", IntType{Width: 32})
	err := VerifyOp(b.Load(plain))
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot load through i32")

	f := blk.AddArg("f", FloatType{Width: 32})
	err = VerifyOp(b.Store(f, cell.Results[0]))
	require.Error(t, err)
	require.Contains(t, err.Error(), "value type f32 does not match element type i32")
}

func TestLoopVerification(t *testing.T) {
	_, b := testBlock()
	index := IndexType{}
	lb := b.Constant(IntAttr{Value: 0}, index)
	ub := b.Constant(IntAttr{Value: 10}, index)
	step := b.Constant(IntAttr{Value: 1}, index)
	init := b.Constant(IntAttr{Value: 0}, IntType{Width: 32})

	loop := b.Loop(lb.Results[0], ub.Results[0], step.Results[0], false,
		[]*Value{init.Results[0]})
	require.NoError(t, VerifyOp(loop))

	loop.Results = nil
	err := VerifyOp(loop)
	require.Error(t, err)
	require.Contains(t, err.Error(), "produces 0 results for 1 iteration arguments")
}

func TestIterateWhileVerification(t *testing.T) {
	_, b := testBlock()
	index := IndexType{}
	lb := b.Constant(IntAttr{Value: 0}, index)
	ub := b.Constant(IntAttr{Value: 10}, index)
	iterate := b.Constant(IntAttr{Value: 1}, DefaultLogical)

	op := b.IterateWhile(lb.Results[0], ub.Results[0], iterate.Results[0], nil)
	require.NoError(t, VerifyOp(op))
	require.IsType(t, LogicalType{}, op.Results[0].Type)
}

func TestGlobalLinkageValidation(t *testing.T) {
	g := NewGlobal("flag", IntType{Width: 32}, IntAttr{Value: 1}, true, "internal")
	require.NoError(t, VerifyOp(g))

	bad := NewGlobal("flag", IntType{Width: 32}, nil, false, "static")
	err := VerifyOp(bad)
	require.Error(t, err)
	require.Contains(t, err.Error(), `invalid linkage "static"`)
}

func TestSelectCaseCompareCounts(t *testing.T) {
	blk, b := testBlock()
	i32 := IntType{Width: 32}
	sel := blk.AddArg("s", i32)
	lo := b.Constant(IntAttr{Value: 1}, i32).Results[0]
	hi := b.Constant(IntAttr{Value: 9}, i32).Results[0]
	dest1 := &Block{Name: "bb1"}
	dest2 := &Block{Name: "bb2"}

	op := b.SelectCase(sel, []SelectDest{
		{Selector: CaseAttr{Kind: CaseInterval}, Compare: []*Value{lo, hi}, Dest: dest1},
		{Selector: UnitAttr{}, Dest: dest2},
	})
	require.NoError(t, VerifyOp(op))

	// A point comparator consumes exactly one operand.
	bad := b.SelectCase(sel, []SelectDest{
		{Selector: CaseAttr{Kind: CasePoint}, Compare: []*Value{lo, hi}, Dest: dest1},
		{Selector: UnitAttr{}, Dest: dest2},
	})
	err := VerifyOp(bad)
	require.Error(t, err)
	require.Contains(t, err.Error(), "case 0 expects 1 compare operands")
}

func TestSelectDefaultMustComeLast(t *testing.T) {
	blk, b := testBlock()
	i32 := IntType{Width: 32}
	sel := blk.AddArg("s", i32)
	dest1 := &Block{Name: "bb1"}
	dest2 := &Block{Name: "bb2"}

	op := b.Select(sel, []SelectDest{
		{Selector: UnitAttr{}, Dest: dest1},
		{Selector: IntAttr{Value: 1}, Dest: dest2},
	})
	err := VerifyOp(op)
	require.Error(t, err)
	require.Contains(t, err.Error(), "default case must come last")
}

func TestTerminatorFlags(t *testing.T) {
	for _, name := range []string{OpBr, OpCondBr, OpReturn, OpUnreachable,
		OpResult, OpEnd, OpSelect, OpSelectCase, OpSelectRank, OpSelectType} {
		require.True(t, (&Operation{Name: name}).IsTerminator(), name)
	}
	for _, name := range []string{OpConstant, OpAddI, OpLoad, OpCall, OpWhere} {
		require.False(t, (&Operation{Name: name}).IsTerminator(), name)
	}
}

func TestVerifyOpRejectsUnknownKind(t *testing.T) {
	err := VerifyOp(&Operation{Name: "fir.bogus"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown operation")
}
