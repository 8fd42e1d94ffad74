package symbol

import (
	"testing"

	"github.com/fortgo/fortgo/ast"
	"github.com/fortgo/fortgo/token"
)

func TestFlags(t *testing.T) {
	var f Flags
	f = f.With(FlagPointer, true)
	if !f.HasAny(FlagPointer) {
		t.Error("expected FlagPointer set")
	}
	f = f.With(FlagTarget|FlagSave, true)
	if !f.HasAll(FlagPointer | FlagTarget | FlagSave) {
		t.Error("expected all three flags set")
	}
	f = f.With(FlagPointer, false)
	if f.HasAny(FlagPointer) {
		t.Error("expected FlagPointer cleared")
	}
	if !f.HasAny(FlagTarget) {
		t.Error("clearing FlagPointer must not clear FlagTarget")
	}
}

func TestResolvedTypeByteSize(t *testing.T) {
	tests := []struct {
		typ  ResolvedType
		want int
	}{
		{ResolvedType{Base: token.INTEGER}, 4},
		{ResolvedType{Base: token.INTEGER, Kind: 8}, 8},
		{ResolvedType{Base: token.REAL}, 4},
		{ResolvedType{Base: token.REAL, Kind: 8}, 8},
		{ResolvedType{Base: token.DOUBLEPRECISION}, 8},
		{ResolvedType{Base: token.LOGICAL}, 4},
		{ResolvedType{Base: token.COMPLEX}, 8},
		{ResolvedType{Base: token.COMPLEX, Kind: 8}, 16},
		{ResolvedType{Base: token.CHARACTER}, 1},
		{ResolvedType{Base: token.CHARACTER, CharLen: 10}, 10},
	}
	for _, tt := range tests {
		if got := tt.typ.ByteSize(); got != tt.want {
			t.Errorf("%s kind=%d len=%d: ByteSize() = %d, want %d",
				tt.typ.Base, tt.typ.Kind, tt.typ.CharLen, got, tt.want)
		}
	}
}

func TestScopeLookupCaseInsensitive(t *testing.T) {
	table := NewSymbolTable()
	scope := table.GlobalScope()

	sym := NewSymbol("MyVar", SymVariable)
	if err := scope.Define(sym); err != nil {
		t.Fatalf("Define: %v", err)
	}

	for _, name := range []string{"myvar", "MYVAR", "MyVar"} {
		if got := scope.Lookup(name); got != sym {
			t.Errorf("Lookup(%q) = %v, want the defined symbol", name, got)
		}
	}

	if err := scope.Define(NewSymbol("MYVAR", SymVariable)); err == nil {
		t.Error("expected redeclaration error for case-insensitive duplicate")
	}
}

func TestScopeLookupSearchesParents(t *testing.T) {
	table := NewSymbolTable()
	global := table.GlobalScope()
	hostSym := NewSymbol("shared", SymVariable)
	if err := global.Define(hostSym); err != nil {
		t.Fatal(err)
	}

	unit := &ast.Subroutine{Name: "inner"}
	inner := table.EnterScope(unit, ScopeProcedure)
	if got := inner.Lookup("SHARED"); got != hostSym {
		t.Errorf("child scope Lookup = %v, want host symbol", got)
	}
	if got := inner.LookupLocal("SHARED"); got != nil {
		t.Errorf("LookupLocal found host symbol %v", got)
	}
	table.ExitScope()
	if table.CurrentScope() != global {
		t.Error("ExitScope did not restore global scope")
	}
}

func TestSortedNamesIsDeterministic(t *testing.T) {
	table := NewSymbolTable()
	scope := table.GlobalScope()
	for _, name := range []string{"zeta", "alpha", "mid", "beta"} {
		if err := scope.Define(NewSymbol(name, SymVariable)); err != nil {
			t.Fatal(err)
		}
	}
	want := []string{"ALPHA", "BETA", "MID", "ZETA"}
	got := scope.SortedNames()
	if len(got) != len(want) {
		t.Fatalf("SortedNames = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SortedNames[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSymbolAttributesSetFlags(t *testing.T) {
	sym := NewSymbol("p", SymVariable)
	sym.SetAttributes([]token.Token{token.POINTER, token.SAVE})
	if !sym.Flags().HasAll(FlagPointer | FlagSave) {
		t.Errorf("flags = %b, want pointer+save", sym.Flags())
	}
	if !sym.IsGlobal() {
		t.Error("SAVE symbol must be global")
	}
	sym2 := NewSymbol("q", SymVariable)
	sym2.AddAttribute(token.ALLOCATABLE)
	if !sym2.Flags().HasAny(FlagAllocatable) {
		t.Error("AddAttribute(ALLOCATABLE) did not set FlagAllocatable")
	}
}

func TestImplicitRules(t *testing.T) {
	rules := defaultImplicitRules()

	typ, err := rules.TypeForName("index")
	if err != nil {
		t.Fatalf("TypeForName: %v", err)
	}
	if typ.Base != token.INTEGER {
		t.Errorf("I-name type = %s, want INTEGER", typ.Base)
	}

	typ, err = rules.TypeForName("value")
	if err != nil {
		t.Fatalf("TypeForName: %v", err)
	}
	if typ.Base != token.REAL {
		t.Errorf("V-name type = %s, want REAL", typ.Base)
	}

	rules.IsNone = true
	if _, err := rules.TypeForName("x"); err == nil {
		t.Error("expected error under IMPLICIT NONE")
	}
}

func TestIntrinsicLookup(t *testing.T) {
	table := NewSymbolTable()
	sqrt := table.Intrinsic("sqrt")
	if sqrt == nil {
		t.Fatal("SQRT intrinsic missing")
	}
	if sqrt.ReturnType() != token.REAL {
		t.Errorf("SQRT return type = %s, want REAL", sqrt.ReturnType())
	}
	if table.Intrinsic("no_such_thing") != nil {
		t.Error("unexpected intrinsic for unknown name")
	}
}
