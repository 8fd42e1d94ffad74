package fir

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func defineFunction(name string, inputs, results []Type) (*Function, *Block) {
	entry := &Block{Name: "bb0"}
	for i, in := range inputs {
		entry.AddArg("arg"+strconv.Itoa(i), in)
	}
	f := &Function{
		Name: name,
		Type: FuncType{Inputs: inputs, Results: results},
		Body: &Region{Blocks: []*Block{entry}},
	}
	return f, entry
}

func TestVerifyWellFormedModule(t *testing.T) {
	i32 := IntType{Width: 32}
	f, entry := defineFunction("add", []Type{i32, i32}, []Type{i32})
	b := NewBuilder(entry)
	sum := b.AddI(entry.Args[0], entry.Args[1])
	b.Return(sum.Results[0])

	m := &Module{
		Globals:   []*Operation{NewGlobal("seed", i32, IntAttr{Value: 42}, true, "")},
		Functions: []*Function{f},
	}
	require.NoError(t, Verify(m))
}

func TestCallToUndefinedFunction(t *testing.T) {
	f, entry := defineFunction("caller", nil, nil)
	b := NewBuilder(entry)
	b.Call("missing", nil, nil)
	b.Return()

	err := Verify(&Module{Functions: []*Function{f}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "call to undefined function @missing")
}

func TestDirectCallSignatureChecked(t *testing.T) {
	i32 := IntType{Width: 32}
	callee := &Function{Name: "id", Type: FuncType{Inputs: []Type{i32}, Results: []Type{i32}}}

	f, entry := defineFunction("caller", nil, nil)
	b := NewBuilder(entry)
	b.Call("id", nil, []Type{i32})
	b.Return()

	err := Verify(&Module{Functions: []*Function{callee, f}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "call passes 0 arguments, callee takes 1")
}

func TestIndirectCallArityMismatch(t *testing.T) {
	i32 := IntType{Width: 32}
	ft := FuncType{Inputs: []Type{i32}, Results: []Type{i32}}
	f, entry := defineFunction("caller", []Type{ft}, nil)
	b := NewBuilder(entry)
	b.CallIndirect(entry.Args[0], nil)
	b.Return()

	err := Verify(&Module{Functions: []*Function{f}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "call passes 0 arguments, callee takes 1")
}

func TestReturnCheckedAgainstSignature(t *testing.T) {
	i32 := IntType{Width: 32}
	f32 := FloatType{Width: 32}

	f, entry := defineFunction("f", []Type{f32}, []Type{i32})
	b := NewBuilder(entry)
	b.Return(entry.Args[0])

	err := Verify(&Module{Functions: []*Function{f}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "return value 0 has type f32, function returns i32")

	g, gEntry := defineFunction("g", nil, []Type{i32})
	NewBuilder(gEntry).Return()
	err = Verify(&Module{Functions: []*Function{g}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "return carries 0 values, function returns 1")
}

func TestAddressOfResolution(t *testing.T) {
	i32 := IntType{Width: 32}
	f, entry := defineFunction("f", nil, nil)
	b := NewBuilder(entry)
	b.AddressOf("counter", RefType{Elem: i32})
	b.Return()

	m := &Module{
		Globals:   []*Operation{NewGlobal("counter", i32, nil, false, "internal")},
		Functions: []*Function{f},
	}
	require.NoError(t, Verify(m))

	m.Globals = nil
	err := Verify(m)
	require.Error(t, err)
	require.Contains(t, err.Error(), "address_of references undefined symbol @counter")
}

func TestMultiBlockNeedsTerminators(t *testing.T) {
	i32 := IntType{Width: 32}
	f, entry := defineFunction("f", []Type{i32}, nil)
	next := &Block{Name: "bb1"}
	f.Body.Blocks = append(f.Body.Blocks, next)

	NewBuilder(next).Return()
	// The entry block falls through without a terminator.
	err := Verify(&Module{Functions: []*Function{f}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not end in a terminator")

	NewBuilder(entry).Br(next, nil)
	require.NoError(t, Verify(&Module{Functions: []*Function{f}}))
}

func TestBranchArgumentTypesChecked(t *testing.T) {
	i32 := IntType{Width: 32}
	f32 := FloatType{Width: 32}
	f, entry := defineFunction("f", []Type{f32}, nil)
	dest := &Block{Name: "bb1"}
	dest.AddArg("v", i32)
	f.Body.Blocks = append(f.Body.Blocks, dest)

	NewBuilder(entry).Br(dest, []*Value{entry.Args[0]})
	NewBuilder(dest).Return()

	err := Verify(&Module{Functions: []*Function{f}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "argument 0 to ^bb1 has type f32, want i32")
}

func TestEntryBlockMatchesSignature(t *testing.T) {
	i32 := IntType{Width: 32}
	entry := &Block{Name: "bb0"}
	NewBuilder(entry).Return()
	f := &Function{
		Name: "f",
		Type: FuncType{Inputs: []Type{i32}},
		Body: &Region{Blocks: []*Block{entry}},
	}

	err := Verify(&Module{Functions: []*Function{f}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "entry block has 0 arguments, signature has 1")
}

func TestDeclarationsSkipBodyChecks(t *testing.T) {
	i32 := IntType{Width: 32}
	decl := &Function{Name: "ext", Type: FuncType{Inputs: []Type{i32}, Results: []Type{i32}}}
	require.NoError(t, Verify(&Module{Functions: []*Function{decl}}))
}
