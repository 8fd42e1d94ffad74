package fir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestModuleRoundTrip(t *testing.T) {
	i32 := IntType{Width: 32}
	f32 := FloatType{Width: 32}
	index := IndexType{}

	sqrtf := &Function{Name: "sqrtf", Type: FuncType{Inputs: []Type{f32}, Results: []Type{f32}}}

	f, entry := defineFunction("compute", []Type{i32}, []Type{i32})
	b := NewBuilder(entry)
	one := b.Constant(IntAttr{Value: 1}, i32)
	cell := b.Alloca(i32)
	b.Store(one.Results[0], cell.Results[0])
	ld := b.Load(cell.Results[0])
	sum := b.AddI(ld.Results[0], entry.Args[0])

	fx := b.Convert(sum.Results[0], f32)
	root := b.Call("sqrtf", []*Value{fx.Results[0]}, []Type{f32})
	b.NegF(root.Results[0])

	lb := b.Constant(IntAttr{Value: 0}, index)
	ub := b.Constant(IntAttr{Value: 10}, index)
	step := b.Constant(IntAttr{Value: 1}, index)
	loop := b.Loop(lb.Results[0], ub.Results[0], step.Results[0], true,
		[]*Value{sum.Results[0]})
	body := loop.Regions[0].Blocks[0]
	b.SetInsertionBlock(body)
	doubled := b.AddI(body.Args[1], body.Args[1])
	b.ResultOp(doubled.Results[0])

	b.SetInsertionBlock(entry)
	cond := b.CmpI("sgt", loop.Results[0], sum.Results[0])
	sel := b.Where(cond.Results[0], []Type{i32}, true)
	b.SetInsertionBlock(sel.Regions[0].Blocks[0])
	b.ResultOp(loop.Results[0])
	b.SetInsertionBlock(sel.Regions[1].Blocks[0])
	b.ResultOp(sum.Results[0])
	b.SetInsertionBlock(entry)
	b.Return(sel.Results[0])

	m := &Module{
		Globals:   []*Operation{NewGlobal("tally", i32, IntAttr{Value: 0}, false, "internal")},
		Functions: []*Function{sqrtf, f},
	}
	require.NoError(t, Verify(m))

	text := ModuleString(m)
	parsed, err := ParseModule(text)
	require.NoError(t, err)
	require.NoError(t, Verify(parsed))
	require.Empty(t, cmp.Diff(text, ModuleString(parsed)))
}

func TestSelectCaseRoundTrip(t *testing.T) {
	i32 := IntType{Width: 32}
	f, entry := defineFunction("dispatch", []Type{i32}, []Type{i32})
	b := NewBuilder(entry)
	lo := b.Constant(IntAttr{Value: 1}, i32).Results[0]
	hi := b.Constant(IntAttr{Value: 5}, i32).Results[0]
	pt := b.Constant(IntAttr{Value: 9}, i32).Results[0]

	hit := &Block{Name: "bb1"}
	hit.AddArg("v", i32)
	span := &Block{Name: "bb2"}
	other := &Block{Name: "bb3"}
	f.Body.Blocks = append(f.Body.Blocks, hit, span, other)

	b.SelectCase(entry.Args[0], []SelectDest{
		{Selector: CaseAttr{Kind: CasePoint}, Compare: []*Value{pt}, Dest: hit, Args: []*Value{pt}},
		{Selector: CaseAttr{Kind: CaseInterval}, Compare: []*Value{lo, hi}, Dest: span},
		{Selector: UnitAttr{}, Dest: other},
	})
	NewBuilder(hit).Return(hit.Args[0])
	NewBuilder(span).Return(lo)
	NewBuilder(other).Return(entry.Args[0])

	m := &Module{Functions: []*Function{f}}
	require.NoError(t, Verify(m))

	text := ModuleString(m)
	parsed, err := ParseModule(text)
	require.NoError(t, err)
	require.NoError(t, Verify(parsed))
	require.Empty(t, cmp.Diff(text, ModuleString(parsed)))

	// The flattened operand list must keep its per-branch partition.
	op := parsed.Function("dispatch").EntryBlock().Terminator()
	require.NotNil(t, op)
	require.Equal(t, OpSelectCase, op.Name)
	require.Equal(t, 3, NumDests(op))
	require.Len(t, CompareOperands(op, 0), 1)
	require.Len(t, CompareOperands(op, 1), 2)
	require.Len(t, CompareOperands(op, 2), 0)
	require.Len(t, TargetOperands(op, 0), 1)
	require.Len(t, TargetOperands(op, 1), 0)
	require.True(t, AttrsEqual(op.Attr(AttrCompareSegments),
		DenseIntAttr{Values: []int32{1, 2, 0}}))
	require.True(t, AttrsEqual(op.Attr(AttrTargetSegments),
		DenseIntAttr{Values: []int32{1, 0, 0}}))
}

func TestCondBrRoundTrip(t *testing.T) {
	i32 := IntType{Width: 32}
	f, entry := defineFunction("clamp", []Type{i32}, []Type{i32})
	b := NewBuilder(entry)
	zero := b.Constant(IntAttr{Value: 0}, i32)
	cond := b.CmpI("sgt", entry.Args[0], zero.Results[0])
	pos := &Block{Name: "bb1"}
	pos.AddArg("v", i32)
	neg := &Block{Name: "bb2"}
	f.Body.Blocks = append(f.Body.Blocks, pos, neg)
	b.CondBr(cond.Results[0], pos, []*Value{entry.Args[0]}, neg, nil)
	NewBuilder(pos).Return(pos.Args[0])
	NewBuilder(neg).Return(zero.Results[0])

	m := &Module{Functions: []*Function{f}}
	require.NoError(t, Verify(m))

	text := ModuleString(m)
	parsed, err := ParseModule(text)
	require.NoError(t, err)
	require.NoError(t, Verify(parsed))
	require.Empty(t, cmp.Diff(text, ModuleString(parsed)))
}

func TestIterateWhileRoundTrip(t *testing.T) {
	index := IndexType{}
	i32 := IntType{Width: 32}
	f, entry := defineFunction("scan", nil, nil)
	b := NewBuilder(entry)
	lb := b.Constant(IntAttr{Value: 1}, index)
	ub := b.Constant(IntAttr{Value: 8}, index)
	keepGoing := b.Constant(IntAttr{Value: 1}, DefaultLogical)
	acc := b.Constant(IntAttr{Value: 0}, i32)
	op := b.IterateWhile(lb.Results[0], ub.Results[0], keepGoing.Results[0],
		[]*Value{acc.Results[0]})
	body := op.Regions[0].Blocks[0]
	b.SetInsertionBlock(body)
	b.ResultOp(body.Args[1], body.Args[2])
	b.SetInsertionBlock(entry)
	b.Return()

	m := &Module{Functions: []*Function{f}}
	require.NoError(t, Verify(m))

	text := ModuleString(m)
	parsed, err := ParseModule(text)
	require.NoError(t, err)
	require.NoError(t, Verify(parsed))
	require.Empty(t, cmp.Diff(text, ModuleString(parsed)))
}

func TestTypeSyntaxRoundTrip(t *testing.T) {
	decl := &Function{Name: "exotic", Type: FuncType{
		Inputs: []Type{
			RefType{Elem: SeqType{Shape: []int{2, UnknownExtent}, Elem: FloatType{Width: 32}}},
			FuncType{Inputs: []Type{IntType{Width: 32}}},
			LogicalType{Kind: 4},
			RecordType{Name: "point"},
			PtrType{Elem: CharType{Kind: 1}},
			HeapType{Elem: ComplexType{Kind: 8}},
		},
		Results: []Type{NoneType{}, IndexType{}},
	}}
	m := &Module{Functions: []*Function{decl}}

	text := ModuleString(m)
	parsed, err := ParseModule(text)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(text, ModuleString(parsed)))
	require.True(t, TypesEqual(decl.Type, parsed.Functions[0].Type))
}

func TestParseHandWrittenModule(t *testing.T) {
	src := `
module {
  fir.global @limit constant internal : i32 = 100
  func @main(%n: i32) -> i32 {
    %c = fir.constant 2 : i32
    %m = fir.muli %c, %n : i32
    fir.return %m
  }
}
`
	m, err := ParseModule(src)
	require.NoError(t, err)
	require.NoError(t, Verify(m))

	g := m.Global("limit")
	require.NotNil(t, g)
	require.True(t, g.HasAttr(AttrConstant))
	require.True(t, AttrsEqual(StringAttr{Value: "internal"}, g.Attr(AttrLinkage)))
	require.True(t, AttrsEqual(IntAttr{Value: 100}, g.Attr(AttrValue)))

	main := m.Function("main")
	require.NotNil(t, main)
	ops := main.EntryBlock().Ops
	require.Len(t, ops, 3)
	require.Equal(t, OpConstant, ops[0].Name)
	require.Equal(t, OpMulI, ops[1].Name)
	require.Equal(t, OpReturn, ops[2].Name)
	require.Equal(t, "c", ops[1].Operands[0].Name)
	require.Equal(t, "n", ops[1].Operands[1].Name)
}

func TestAttrDictRoundTrip(t *testing.T) {
	f, entry := defineFunction("f", nil, nil)
	b := NewBuilder(entry)
	call := b.Call("f", nil, nil)
	call.SetAttr(AttrBindName, StringAttr{Value: "f_"})
	b.Return()
	m := &Module{Functions: []*Function{f}}

	text := ModuleString(m)
	require.Contains(t, text, `{bind_name = "f_"}`)
	parsed, err := ParseModule(text)
	require.NoError(t, err)
	got := parsed.Function("f").EntryBlock().Ops[0]
	require.True(t, AttrsEqual(StringAttr{Value: "f_"}, got.Attr(AttrBindName)))
	require.Empty(t, cmp.Diff(text, ModuleString(parsed)))
}

func TestOpStringRendering(t *testing.T) {
	_, b := testBlock()
	c := b.Constant(IntAttr{Value: 42}, IntType{Width: 32})
	require.Equal(t, "%0 = fir.constant 42 : i32", OpString(c))
	eq := b.CmpI("eq", c.Results[0], c.Results[0])
	require.Equal(t, `%1 = fir.cmpi "eq", %0, %0 : i32`, OpString(eq))
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"unknown operation", "module {\n  func @f() {\n    fir.bogus\n  }\n}", "unknown operation"},
		{"undefined value", "module {\n  func @f() {\n    fir.return %x\n  }\n}", "use of undefined value %x"},
		{"undefined block", "module {\n  func @f() {\n    fir.br ^nowhere\n  }\n}", "branch to undefined block ^nowhere"},
		{"bad type", "module {\n  func @f(%a: i33q) {\n    fir.return\n  }\n}", "unknown type"},
		{"missing module keyword", "func @f()", `expected "module"`},
		{"misplaced operation", "module {\n  fir.unreachable\n}", "not a module-scope operation"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseModule(tc.src)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}
