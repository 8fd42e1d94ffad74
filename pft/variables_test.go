package pft

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fortgo/fortgo/ast"
	"github.com/fortgo/fortgo/symbol"
	"github.com/fortgo/fortgo/token"
)

func procedureScope(t *testing.T) *symbol.Scope {
	t.Helper()
	table := symbol.NewSymbolTable()
	return table.EnterScope(&ast.Subroutine{Name: "s"}, symbol.ScopeProcedure)
}

func defineSym(t *testing.T, scope *symbol.Scope, name string, kind symbol.SymbolKind,
	offset, size int) *symbol.Symbol {
	t.Helper()
	sym := symbol.NewSymbol(name, kind)
	sym.SetType(&symbol.ResolvedType{Base: token.INTEGER})
	sym.SetStorage(offset, size)
	require.NoError(t, scope.Define(sym))
	return sym
}

func variableFor(t *testing.T, vars []Variable, sym *symbol.Symbol) Variable {
	t.Helper()
	for _, v := range vars {
		if v.Sym == sym {
			return v
		}
	}
	t.Fatalf("no variable entry for %s", sym.Name())
	return Variable{}
}

func TestVariableDependencyOrder(t *testing.T) {
	scope := procedureScope(t)
	n := defineSym(t, scope, "n", symbol.SymParameter, 0, 4)
	n.SetInitExpr(intLit(10))
	b := defineSym(t, scope, "b", symbol.SymVariable, 4, 40)
	b.SetArraySpec(&ast.ArraySpec{Bounds: []ast.ArrayBound{{Upper: ident("n")}}})

	vars := AnalyzeVariables(scope)
	require.Len(t, vars, 2)
	require.Same(t, n, vars[0].Sym, "the bound's dependence comes first")
	require.Same(t, b, vars[1].Sym)
	require.Equal(t, 0, vars[0].Depth)
	require.Equal(t, 1, vars[1].Depth)
	require.True(t, vars[0].Global, "initialized data has static storage")
	require.False(t, vars[1].Global)
}

func TestVariableDependencyChain(t *testing.T) {
	scope := procedureScope(t)
	n := defineSym(t, scope, "n", symbol.SymParameter, 0, 4)
	n.SetInitExpr(intLit(8))
	m := defineSym(t, scope, "m", symbol.SymParameter, 4, 4)
	m.SetInitExpr(&ast.BinaryExpr{Op: token.Plus, Left: ident("n"), Right: intLit(1)})
	a := defineSym(t, scope, "a", symbol.SymVariable, 8, 32)
	a.SetArraySpec(&ast.ArraySpec{Bounds: []ast.ArrayBound{{Upper: ident("m")}}})

	vars := AnalyzeVariables(scope)
	require.Len(t, vars, 3)
	require.Equal(t, 0, variableFor(t, vars, n).Depth)
	require.Equal(t, 1, variableFor(t, vars, m).Depth)
	require.Equal(t, 2, variableFor(t, vars, a).Depth)
}

func TestCharLenDependency(t *testing.T) {
	scope := procedureScope(t)
	n := defineSym(t, scope, "n", symbol.SymParameter, 0, 4)
	n.SetInitExpr(intLit(16))
	c := defineSym(t, scope, "c", symbol.SymVariable, 4, 16)
	c.SetType(&symbol.ResolvedType{Base: token.CHARACTER, CharLen: 16})
	c.SetCharLenExpr(ident("n"))

	vars := AnalyzeVariables(scope)
	require.Equal(t, 1, variableFor(t, vars, c).Depth)
}

func TestEquivalenceAggregateStore(t *testing.T) {
	scope := procedureScope(t)
	a := defineSym(t, scope, "a", symbol.SymVariable, 4, 4)
	c := defineSym(t, scope, "c", symbol.SymVariable, 0, 12)
	d := defineSym(t, scope, "d", symbol.SymVariable, 12, 4)
	scope.AddEquivalenceSet([]*symbol.Symbol{a, c})

	vars := AnalyzeVariables(scope)
	require.Len(t, vars, 4)

	store := vars[0]
	require.True(t, store.IsAggregateStore(), "stores precede named variables")
	require.Equal(t, 0, store.Store.Offset)
	require.Equal(t, 12, store.Store.Size)
	require.ElementsMatch(t, []*symbol.Symbol{a, c}, store.Store.Members)
	require.False(t, store.Global)

	aVar := variableFor(t, vars, a)
	cVar := variableFor(t, vars, c)
	dVar := variableFor(t, vars, d)
	require.True(t, aVar.Aliaser)
	require.Equal(t, 0, aVar.AliasOffset)
	require.Equal(t, 1, aVar.Depth, "aliasers come after their store")
	require.True(t, cVar.Aliaser)
	require.Equal(t, 0, cVar.AliasOffset)
	require.False(t, dVar.Aliaser, "disjoint storage stays a plain variable")
	require.Equal(t, 0, dVar.Depth)
}

func TestSavedMemberMakesStoreGlobal(t *testing.T) {
	scope := procedureScope(t)
	a := defineSym(t, scope, "a", symbol.SymVariable, 0, 4)
	a.SetFlags(symbol.FlagSave)
	c := defineSym(t, scope, "c", symbol.SymVariable, 0, 8)
	scope.AddEquivalenceSet([]*symbol.Symbol{a, c})

	vars := AnalyzeVariables(scope)
	require.True(t, vars[0].IsAggregateStore())
	require.True(t, vars[0].Global)
	require.True(t, vars[0].Store.Global)
}

func TestVariableFlagMapping(t *testing.T) {
	scope := procedureScope(t)
	p := defineSym(t, scope, "p", symbol.SymVariable, 0, 8)
	p.SetFlags(symbol.FlagPointer)
	h := defineSym(t, scope, "h", symbol.SymVariable, 8, 8)
	h.SetFlags(symbol.FlagAllocatable)
	tgt := defineSym(t, scope, "t", symbol.SymVariable, 16, 4)
	tgt.SetFlags(symbol.FlagTarget)

	vars := AnalyzeVariables(scope)
	require.True(t, variableFor(t, vars, p).Pointer)
	require.True(t, variableFor(t, vars, h).HeapAlloc)
	require.True(t, variableFor(t, vars, tgt).Target)
}

func TestProceduresAreNotAllocated(t *testing.T) {
	scope := procedureScope(t)
	v := defineSym(t, scope, "x", symbol.SymVariable, 0, 4)
	sub := symbol.NewSymbol("helper", symbol.SymSubroutine)
	require.NoError(t, scope.Define(sub))

	vars := AnalyzeVariables(scope)
	require.Len(t, vars, 1)
	require.Same(t, v, vars[0].Sym)
}

func TestCommonMembersExcludedFromAliasing(t *testing.T) {
	scope := procedureScope(t)
	a := defineSym(t, scope, "a", symbol.SymVariable, 0, 4)
	a.SetFlags(symbol.FlagInCommon)
	c := defineSym(t, scope, "c", symbol.SymVariable, 0, 4)
	c.SetFlags(symbol.FlagInCommon)
	scope.AddEquivalenceSet([]*symbol.Symbol{a, c})

	// COMMON layout owns the overlap; no local aggregate store appears.
	vars := AnalyzeVariables(scope)
	require.Len(t, vars, 2)
	for _, v := range vars {
		require.False(t, v.IsAggregateStore())
		require.False(t, v.Aliaser)
		require.True(t, v.Global, "COMMON members have static storage")
	}
}

func TestDumpVariables(t *testing.T) {
	scope := procedureScope(t)
	a := defineSym(t, scope, "a", symbol.SymVariable, 4, 4)
	c := defineSym(t, scope, "c", symbol.SymVariable, 0, 12)
	scope.AddEquivalenceSet([]*symbol.Symbol{a, c})

	var sb strings.Builder
	DumpVariables(&sb, AnalyzeVariables(scope))
	out := sb.String()
	require.Contains(t, out, "AggregateStore[0..12)")
	require.Contains(t, out, "alias(0+4)")
	require.Contains(t, out, "alias(0+0)")
}
