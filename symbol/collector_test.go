package symbol

import (
	"testing"

	"github.com/fortgo/fortgo/ast"
	"github.com/fortgo/fortgo/token"
)

func decl(base token.Token, names ...string) *ast.TypeDeclaration {
	td := &ast.TypeDeclaration{Type: ast.TypeSpec{Token: base}}
	for _, name := range names {
		td.Entities = append(td.Entities, ast.DeclEntity{Name: name})
	}
	return td
}

func arrayDecl(base token.Token, name string, extent int64) *ast.TypeDeclaration {
	return &ast.TypeDeclaration{
		Type: ast.TypeSpec{Token: base},
		Entities: []ast.DeclEntity{{
			Name: name,
			ArraySpec: &ast.ArraySpec{
				Kind: ast.ArraySpecExplicit,
				Bounds: []ast.ArrayBound{
					{Upper: &ast.IntegerLiteral{Value: extent}},
				},
			},
		}},
	}
}

func collectUnit(t *testing.T, unit ast.ProgramUnit) *SymbolTable {
	t.Helper()
	collector := NewDeclarationCollector()
	if errs := collector.Collect(unit); len(errs) != 0 {
		t.Fatalf("Collect errors: %v", errs)
	}
	table, _ := collector.SymbolTable()
	return table
}

func TestCollectorStorageLayout(t *testing.T) {
	unit := &ast.ProgramBlock{
		Name: "layout",
		Body: []ast.Statement{
			decl(token.INTEGER, "a"),          // 4 bytes at 0
			arrayDecl(token.REAL, "b", 10),    // 40 bytes at 4
			decl(token.DOUBLEPRECISION, "c"),  // 8 bytes at 44
			decl(token.CHARACTER, "d"),        // 1 byte at 52
		},
	}
	table := collectUnit(t, unit)
	scope := table.UnitScope(unit)
	if scope == nil {
		t.Fatal("unit scope missing")
	}

	tests := []struct {
		name   string
		offset int
		size   int
	}{
		{"a", 0, 4},
		{"b", 4, 40},
		{"c", 44, 8},
		{"d", 52, 1},
	}
	for _, tt := range tests {
		sym := scope.LookupLocal(tt.name)
		if sym == nil {
			t.Fatalf("symbol %s missing", tt.name)
		}
		if sym.Offset() != tt.offset || sym.Size() != tt.size {
			t.Errorf("%s: offset/size = %d/%d, want %d/%d",
				tt.name, sym.Offset(), sym.Size(), tt.offset, tt.size)
		}
	}
}

func TestCollectorEquivalenceOverlap(t *testing.T) {
	// INTEGER a, b(3); EQUIVALENCE (a, b(2)) anchors a at b's second element.
	unit := &ast.ProgramBlock{
		Name: "equiv",
		Body: []ast.Statement{
			decl(token.INTEGER, "a"),
			arrayDecl(token.INTEGER, "b", 3),
			&ast.EquivalenceStmt{Sets: [][]ast.EquivalenceObject{
				{{Name: "a"}, {Name: "b", Index: 2}},
			}},
		},
	}
	table := collectUnit(t, unit)
	scope := table.UnitScope(unit)

	a := scope.LookupLocal("a")
	b := scope.LookupLocal("b")
	if a == nil || b == nil {
		t.Fatal("symbols missing")
	}
	if got, want := a.Offset(), b.Offset()+4; got != want {
		t.Errorf("a.Offset = %d, want %d (b's second element)", got, want)
	}

	// Intervals must overlap.
	aEnd := a.Offset() + a.Size() - 1
	bEnd := b.Offset() + b.Size() - 1
	if a.Offset() > bEnd || b.Offset() > aEnd {
		t.Errorf("storage [%d,%d] and [%d,%d] do not overlap",
			a.Offset(), aEnd, b.Offset(), bEnd)
	}

	sets := scope.EquivalenceSets()
	if len(sets) != 1 || len(sets[0]) != 2 {
		t.Fatalf("equivalence sets = %v, want one set of two members", sets)
	}
}

func TestCollectorCommonBlock(t *testing.T) {
	unit := &ast.ProgramBlock{
		Name: "withcommon",
		Body: []ast.Statement{
			decl(token.INTEGER, "x"),
			decl(token.REAL, "y"),
			&ast.CommonStmt{Name: "shared", Objects: []string{"x", "y"}},
		},
	}
	table := collectUnit(t, unit)
	scope := table.UnitScope(unit)

	cb := table.CommonBlock("SHARED")
	if cb == nil {
		t.Fatal("common block missing")
	}
	if len(cb.Members()) != 2 {
		t.Fatalf("members = %d, want 2", len(cb.Members()))
	}
	if cb.TotalSize() != 8 {
		t.Errorf("TotalSize = %d, want 8", cb.TotalSize())
	}

	x := scope.LookupLocal("x")
	y := scope.LookupLocal("y")
	if !x.Flags().HasAny(FlagInCommon) || !y.Flags().HasAny(FlagInCommon) {
		t.Error("common members not flagged")
	}
	if x.Offset() != 0 || y.Offset() != 4 {
		t.Errorf("offsets = %d, %d, want 0, 4", x.Offset(), y.Offset())
	}
	if !x.IsGlobal() {
		t.Error("common member must be global")
	}
}

func TestCollectorSubprogramDetails(t *testing.T) {
	fn := &ast.Function{
		Name: "area",
		Type: ast.TypeSpec{Token: token.REAL},
		Parameters: []ast.Parameter{
			{Name: "w"}, {Name: "h"},
		},
		Body: []ast.Statement{
			decl(token.REAL, "w", "h"),
		},
	}
	table := collectUnit(t, fn)

	fnSym := table.GlobalScope().Lookup("area")
	if fnSym == nil || fnSym.Kind() != SymFunction {
		t.Fatalf("function symbol = %v", fnSym)
	}
	details := fnSym.Details()
	if details == nil {
		t.Fatal("details missing")
	}
	if len(details.DummyArgs) != 2 {
		t.Fatalf("dummy args = %d, want 2", len(details.DummyArgs))
	}
	for _, dummy := range details.DummyArgs {
		if !dummy.Flags().HasAny(FlagDummy) {
			t.Errorf("dummy %s not flagged", dummy.Name())
		}
	}
	if details.Result == nil || details.Result.Name() != "area" {
		t.Errorf("result = %v, want variable named area", details.Result)
	}
}

func TestCollectorEntryStmt(t *testing.T) {
	sub := &ast.Subroutine{
		Name:       "multi",
		Parameters: []ast.Parameter{{Name: "a"}},
		Body: []ast.Statement{
			decl(token.INTEGER, "a", "b"),
			&ast.EntryStmt{Name: "other", Parameters: []ast.Parameter{{Name: "b"}}},
		},
	}
	table := collectUnit(t, sub)
	scope := table.UnitScope(sub)

	entry := scope.LookupLocal("other")
	if entry == nil || entry.Kind() != SymEntry {
		t.Fatalf("entry symbol = %v", entry)
	}
	details := entry.Details()
	if details == nil || len(details.DummyArgs) != 1 || details.DummyArgs[0].Name() != "b" {
		t.Fatalf("entry details = %+v, want dummy b", details)
	}
}

func TestCollectorImplicitTyping(t *testing.T) {
	unit := &ast.ProgramBlock{
		Name: "impl",
		Body: []ast.Statement{
			&ast.CommonStmt{Objects: []string{"ivar", "xvar"}},
		},
	}
	table := collectUnit(t, unit)
	scope := table.UnitScope(unit)

	ivar := scope.LookupLocal("ivar")
	if ivar == nil || !ivar.Type().IsInteger() {
		t.Errorf("ivar type = %v, want INTEGER by implicit rules", ivar.Type())
	}
	xvar := scope.LookupLocal("xvar")
	if xvar == nil || !xvar.Type().IsReal() {
		t.Errorf("xvar type = %v, want REAL by implicit rules", xvar.Type())
	}
	if !ivar.Flags().HasAny(FlagImplicit) {
		t.Error("implicitly created symbol not flagged")
	}
}

func TestCollectorSaveStmt(t *testing.T) {
	unit := &ast.ProgramBlock{
		Name: "saver",
		Body: []ast.Statement{
			decl(token.INTEGER, "counter"),
			decl(token.REAL, "scratch"),
			&ast.SaveStmt{Names: []string{"counter"}},
		},
	}
	table := collectUnit(t, unit)
	scope := table.UnitScope(unit)

	if !scope.LookupLocal("counter").Flags().HasAny(FlagSave) {
		t.Error("counter missing FlagSave")
	}
	if scope.LookupLocal("scratch").Flags().HasAny(FlagSave) {
		t.Error("scratch wrongly flagged SAVE")
	}
}
