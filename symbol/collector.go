package symbol

import (
	"github.com/pkg/errors"

	"github.com/fortgo/fortgo/ast"
	"github.com/fortgo/fortgo/token"
)

// DeclarationCollector traverses an AST and populates a SymbolTable with
// all declarations, handling scope management, implicit typing, storage
// layout and equivalence resolution.
type DeclarationCollector struct {
	table  *SymbolTable
	errors []error
	units  []*unitDecls // stack, innermost unit last
}

// unitDecls accumulates the per-unit facts that can only be finalized once
// the whole specification part has been seen.
type unitDecls struct {
	scope   *Scope
	order   []*Symbol // data symbols in declaration order
	commons []*ast.CommonStmt
	equivs  []*ast.EquivalenceStmt
	saveAll bool // a bare SAVE was seen
}

// NewDeclarationCollector creates a new collector for building a symbol table.
func NewDeclarationCollector() *DeclarationCollector {
	return &DeclarationCollector{
		table: NewSymbolTable(),
	}
}

// SymbolTable returns the table built so far and any accumulated errors.
func (dc *DeclarationCollector) SymbolTable() (*SymbolTable, []error) {
	return dc.table, dc.errors
}

// Collect processes one program unit and returns any errors encountered.
func (dc *DeclarationCollector) Collect(unit ast.ProgramUnit) []error {
	dc.errors = nil
	ast.Walk(dc, unit)
	return dc.errors
}

// CollectFromProgram builds a symbol table for a whole program file.
func CollectFromProgram(program *ast.Program) (*SymbolTable, error) {
	collector := NewDeclarationCollector()
	var all []error
	for i := range program.Units {
		all = append(all, collector.Collect(program.Units[i])...)
	}
	if len(all) != 0 {
		err := all[0]
		for _, e := range all[1:] {
			err = errors.Wrap(err, e.Error())
		}
		return collector.table, err
	}
	return collector.table, nil
}

// Visit implements the ast.Visitor interface.
func (dc *DeclarationCollector) Visit(node ast.Node) ast.Visitor {
	if node == nil {
		// Exiting the node that opened the innermost scope.
		if len(dc.units) > 0 {
			dc.finalizeUnit(dc.units[len(dc.units)-1])
			dc.units = dc.units[:len(dc.units)-1]
			dc.table.ExitScope()
		}
		return nil
	}

	switch n := node.(type) {
	case *ast.ProgramBlock:
		scope := dc.enterUnit(n, ScopeProgram)
		dc.defineUnitSymbol(scope, n.Name, SymProgram, nil, n)
		return dc

	case *ast.Subroutine:
		scope := dc.enterUnit(n, ScopeProcedure)
		dummies := dc.defineDummies(n.Parameters, n)
		dc.defineUnitSymbol(scope, n.Name, SymSubroutine, &SubprogramDetails{DummyArgs: dummies}, n)
		return dc

	case *ast.Function:
		scope := dc.enterUnit(n, ScopeProcedure)
		dummies := dc.defineDummies(n.Parameters, n)
		result := dc.defineResult(n.Name, n.ResultName, n.Type, n)
		sym := dc.defineUnitSymbol(scope, n.Name, SymFunction,
			&SubprogramDetails{DummyArgs: dummies, Result: result}, n)
		if sym != nil && n.Type.Token != token.Undefined {
			sym.SetType(typeFromSpec(n.Type, dc.table.CurrentScope()))
		}
		return dc

	case *ast.Module:
		scope := dc.enterUnit(n, ScopeModule)
		dc.defineUnitSymbol(scope, n.Name, SymModule, nil, n)
		return dc

	case *ast.BlockData:
		dc.enterUnit(n, ScopeBlockData)
		return dc

	case *ast.LabeledStmt:
		// Peel the label and dispatch on the wrapped statement directly so
		// the scope bookkeeping in the nil case never sees the wrapper.
		return dc.Visit(n.Statement)

	case *ast.TypeDeclaration:
		dc.handleTypeDeclaration(n)
		return nil

	case *ast.ImplicitStatement:
		if n.IsNone {
			rules := dc.table.CurrentScope().Implicit()
			rules.IsNone = true
			for i := range rules.LetterTypes {
				rules.LetterTypes[i] = token.Undefined
				rules.LetterKinds[i] = 0
			}
		}
		return nil

	case *ast.CommonStmt:
		dc.handleCommonStmt(n)
		return nil

	case *ast.EquivalenceStmt:
		if u := dc.currentUnit(); u != nil {
			u.equivs = append(u.equivs, n)
		}
		return nil

	case *ast.ExternalStmt:
		dc.handleExternalStmt(n)
		return nil

	case *ast.SaveStmt:
		dc.handleSaveStmt(n)
		return nil

	case *ast.DataStmt:
		dc.handleDataStmt(n)
		return nil

	case *ast.NamelistStmt:
		dc.handleNamelistStmt(n)
		return nil

	case *ast.EntryStmt:
		dc.handleEntryStmt(n)
		return nil

	case ast.Statement:
		// Executable statements hold no declarations.
		return nil
	}

	return dc
}

func (dc *DeclarationCollector) enterUnit(unit ast.ProgramUnit, scopeType ScopeType) *Scope {
	scope := dc.table.EnterScope(unit, scopeType)
	dc.units = append(dc.units, &unitDecls{scope: scope})
	return scope
}

func (dc *DeclarationCollector) currentUnit() *unitDecls {
	if len(dc.units) == 0 {
		return nil
	}
	return dc.units[len(dc.units)-1]
}

// defineUnitSymbol declares the unit itself in the enclosing scope.
func (dc *DeclarationCollector) defineUnitSymbol(scope *Scope, name string, kind SymbolKind, details *SubprogramDetails, node ast.Node) *Symbol {
	parent := scope.Parent()
	if parent == nil {
		return nil
	}
	sym := NewSymbol(name, kind)
	sym.SetDeclNode(node)
	sym.SetDetails(details)
	if err := parent.Define(sym); err != nil {
		dc.addError(err)
		return parent.LookupLocal(name)
	}
	return sym
}

// defineDummies declares the dummy arguments in the current (unit) scope.
func (dc *DeclarationCollector) defineDummies(params []ast.Parameter, node ast.Node) []*Symbol {
	scope := dc.table.CurrentScope()
	dummies := make([]*Symbol, 0, len(params))
	for _, param := range params {
		sym := scope.LookupLocal(param.Name)
		if sym == nil {
			sym = NewSymbol(param.Name, SymVariable)
			sym.SetDeclNode(node)
			if param.Type.Token != token.Undefined {
				sym.SetType(typeFromSpec(param.Type, scope))
			}
			if err := scope.Define(sym); err != nil {
				dc.addError(err)
				continue
			}
		}
		sym.SetFlags(FlagDummy)
		dummies = append(dummies, sym)
	}
	return dummies
}

// defineResult declares the function result variable in the unit scope.
func (dc *DeclarationCollector) defineResult(funcName, resultName string, spec ast.TypeSpec, node ast.Node) *Symbol {
	scope := dc.table.CurrentScope()
	name := resultName
	if name == "" {
		name = funcName
	}
	sym := NewSymbol(name, SymVariable)
	sym.SetDeclNode(node)
	if spec.Token != token.Undefined {
		sym.SetType(typeFromSpec(spec, scope))
	}
	if err := scope.Define(sym); err != nil {
		dc.addError(err)
		return scope.LookupLocal(name)
	}
	return sym
}

// handleTypeDeclaration processes a type declaration and defines or updates
// symbols for each entity.
func (dc *DeclarationCollector) handleTypeDeclaration(decl *ast.TypeDeclaration) {
	scope := dc.table.CurrentScope()
	unit := dc.currentUnit()

	isParameter := false
	for _, attr := range decl.Attributes {
		if attr == token.PARAMETER {
			isParameter = true
			break
		}
	}

	for _, entity := range decl.Entities {
		resolvedType := typeFromSpec(decl.Type, scope)
		if entity.CharLen != nil {
			if length, ok := EvalConstInt(entity.CharLen, scope); ok {
				resolvedType.CharLen = length
			} else {
				resolvedType.CharLen = -1
			}
		}

		sym := scope.LookupLocal(entity.Name)
		isNew := sym == nil
		if isNew {
			kind := SymVariable
			if isParameter {
				kind = SymParameter
			}
			sym = NewSymbol(entity.Name, kind)
		}
		sym.SetType(resolvedType)
		sym.SetAttributes(decl.Attributes)
		if entity.ArraySpec != nil {
			sym.SetArraySpec(entity.ArraySpec)
		}
		if entity.CoarraySpec != nil {
			sym.SetCoarraySpec(entity.CoarraySpec)
		}
		if entity.CharLen != nil {
			sym.SetCharLenExpr(entity.CharLen)
		}
		if entity.Init != nil {
			sym.SetInitExpr(entity.Init)
		}
		sym.SetDeclNode(decl)
		sym.setImplicit(false)

		if isNew {
			if err := scope.Define(sym); err != nil {
				dc.addError(err)
				continue
			}
		}
		if unit != nil && sym.Kind() == SymVariable {
			unit.order = append(unit.order, sym)
		}
	}
}

// handleCommonStmt registers the block and flags its members. Offsets are
// assigned when the unit is finalized and all types are known.
func (dc *DeclarationCollector) handleCommonStmt(stmt *ast.CommonStmt) {
	scope := dc.table.CurrentScope()
	for _, name := range stmt.Objects {
		sym := dc.lookupOrCreateData(scope, name, stmt)
		if sym != nil {
			sym.SetFlags(FlagInCommon)
		}
	}
	if u := dc.currentUnit(); u != nil {
		u.commons = append(u.commons, stmt)
	}
}

// handleExternalStmt marks procedures as external.
func (dc *DeclarationCollector) handleExternalStmt(stmt *ast.ExternalStmt) {
	scope := dc.table.CurrentScope()
	for _, name := range stmt.Names {
		sym := scope.LookupLocal(name)
		if sym == nil {
			sym = NewSymbol(name, SymExternal)
			sym.SetDeclNode(stmt)
			if err := scope.Define(sym); err != nil {
				dc.addError(err)
			}
			continue
		}
		sym.AddAttribute(token.EXTERNAL)
	}
}

// handleSaveStmt applies the SAVE attribute. A bare SAVE covers every data
// symbol collected for the unit so far and those declared later; the flag
// sweep in finalizeUnit picks up the latter.
func (dc *DeclarationCollector) handleSaveStmt(stmt *ast.SaveStmt) {
	scope := dc.table.CurrentScope()
	if len(stmt.Names) == 0 {
		if u := dc.currentUnit(); u != nil {
			u.saveAll = true
		}
		return
	}
	for _, name := range stmt.Names {
		sym := dc.lookupOrCreateData(scope, name, stmt)
		if sym != nil {
			sym.SetFlags(FlagSave)
		}
	}
}

// handleDataStmt flags initialized objects and attaches value expressions
// when the lists pair up one to one.
func (dc *DeclarationCollector) handleDataStmt(stmt *ast.DataStmt) {
	scope := dc.table.CurrentScope()
	paired := len(stmt.Values) == len(stmt.Names)
	for i, name := range stmt.Names {
		sym := dc.lookupOrCreateData(scope, name, stmt)
		if sym == nil {
			continue
		}
		if paired {
			sym.SetInitExpr(stmt.Values[i])
		} else {
			sym.SetFlags(FlagInit)
		}
	}
}

// handleNamelistStmt defines the group symbol.
func (dc *DeclarationCollector) handleNamelistStmt(stmt *ast.NamelistStmt) {
	scope := dc.table.CurrentScope()
	sym := NewSymbol(stmt.Group, SymNamelist)
	sym.SetDeclNode(stmt)
	if err := scope.Define(sym); err != nil {
		dc.addError(err)
	}
	for _, name := range stmt.Names {
		dc.lookupOrCreateData(scope, name, stmt)
	}
}

// handleEntryStmt defines an alternate entry point with its own dummy
// argument list.
func (dc *DeclarationCollector) handleEntryStmt(stmt *ast.EntryStmt) {
	scope := dc.table.CurrentScope()
	dummies := dc.defineDummies(stmt.Parameters, stmt)

	details := &SubprogramDetails{DummyArgs: dummies}
	if scope.Type() == ScopeProcedure {
		// A function entry has its own primary result.
		if _, ok := scope.ProgramUnit().(*ast.Function); ok {
			details.Result = dc.defineResult(stmt.Name, stmt.ResultName, ast.TypeSpec{}, stmt)
		}
	}

	sym := NewSymbol(stmt.Name, SymEntry)
	sym.SetDeclNode(stmt)
	sym.SetDetails(details)
	if err := scope.Define(sym); err != nil {
		dc.addError(err)
	}
}

// lookupOrCreateData finds a data symbol or creates an implicitly typed one.
func (dc *DeclarationCollector) lookupOrCreateData(scope *Scope, name string, node ast.Node) *Symbol {
	if sym := scope.LookupLocal(name); sym != nil {
		return sym
	}
	sym := NewSymbol(name, SymVariable)
	sym.SetDeclNode(node)
	sym.setImplicit(true)
	if err := scope.Define(sym); err != nil {
		dc.addError(err)
		return nil
	}
	if u := dc.currentUnit(); u != nil {
		u.order = append(u.order, sym)
	}
	return sym
}

// finalizeUnit resolves implicit types, computes sizes, lays out the local
// storage sequence and the COMMON blocks, and unifies equivalence groups.
func (dc *DeclarationCollector) finalizeUnit(u *unitDecls) {
	// Resolve types and sizes first.
	for _, sym := range u.order {
		if sym.Type() == nil {
			typ, err := u.scope.Implicit().TypeForName(sym.Name())
			if err != nil {
				dc.addError(err)
				typ = &ResolvedType{Base: token.REAL}
			}
			sym.SetType(typ)
		}
		sym.SetStorage(0, storageSize(sym, u.scope))
	}
	if u.saveAll {
		for _, sym := range u.order {
			sym.SetFlags(FlagSave)
		}
	}

	// COMMON members get offsets within their block's storage sequence.
	inCommon := make(map[*Symbol]bool)
	for _, stmt := range u.commons {
		cb := dc.table.CommonBlock(stmt.Name)
		if cb == nil {
			cb = NewCommonBlock(stmt.Name)
			dc.table.commonBlocks[normalizeCase(stmt.Name)] = cb
		}
		for _, name := range stmt.Objects {
			sym := u.scope.LookupLocal(name)
			if sym == nil {
				continue
			}
			sym.SetStorage(cb.TotalSize(), sym.Size())
			cb.AddMember(sym)
			inCommon[sym] = true
		}
	}

	// Local storage sequence in declaration order.
	offset := 0
	for _, sym := range u.order {
		if inCommon[sym] {
			continue
		}
		sym.SetStorage(offset, sym.Size())
		offset += sym.Size()
	}

	// Equivalence groups overlap member storage at their anchor points.
	for _, stmt := range u.equivs {
		for _, set := range stmt.Sets {
			dc.unifyEquivalenceSet(u.scope, stmt, set)
		}
	}
}

// unifyEquivalenceSet re-anchors the members of one EQUIVALENCE group so
// their anchor elements occupy the same storage, then records the group on
// the scope.
func (dc *DeclarationCollector) unifyEquivalenceSet(scope *Scope, stmt *ast.EquivalenceStmt, set []ast.EquivalenceObject) {
	if len(set) < 2 {
		return
	}
	members := make([]*Symbol, 0, len(set))
	anchors := make([]int, 0, len(set))
	for _, obj := range set {
		sym := dc.lookupOrCreateData(scope, obj.Name, stmt)
		if sym == nil {
			return
		}
		if sym.Type() == nil {
			typ, err := scope.Implicit().TypeForName(sym.Name())
			if err != nil {
				dc.addError(err)
				typ = &ResolvedType{Base: token.REAL}
			}
			sym.SetType(typ)
			sym.SetStorage(sym.Offset(), storageSize(sym, scope))
		}
		index := obj.Index
		if index < 1 {
			index = 1
		}
		members = append(members, sym)
		anchors = append(anchors, (index-1)*sym.Type().ByteSize())
	}

	// Anchor everything at the first member's anchor point.
	anchorPoint := members[0].Offset() + anchors[0]
	minOffset := members[0].Offset()
	for i, sym := range members {
		newOffset := anchorPoint - anchors[i]
		sym.SetStorage(newOffset, sym.Size())
		if newOffset < minOffset {
			minOffset = newOffset
		}
	}
	if minOffset < 0 {
		// Shift the group so no member goes below the sequence origin.
		for _, sym := range members {
			sym.SetStorage(sym.Offset()-minOffset, sym.Size())
		}
	}

	scope.AddEquivalenceSet(members)
}

// storageSize computes the byte size of a data symbol's storage.
func storageSize(sym *Symbol, scope *Scope) int {
	size := sym.Type().ByteSize()
	if spec := sym.ArraySpec(); spec != nil {
		size *= elementCount(spec, scope)
	}
	return size
}

// elementCount evaluates the total element count of an explicit-shape
// array. Non-constant or non-explicit shapes count as a single element.
func elementCount(spec *ast.ArraySpec, scope *Scope) int {
	if spec.Kind != ast.ArraySpecExplicit {
		return 1
	}
	count := 1
	for _, bound := range spec.Bounds {
		lower := 1
		if bound.Lower != nil {
			if v, ok := EvalConstInt(bound.Lower, scope); ok {
				lower = v
			} else {
				return count
			}
		}
		if bound.Upper == nil {
			return count
		}
		upper, ok := EvalConstInt(bound.Upper, scope)
		if !ok || upper < lower {
			return count
		}
		count *= upper - lower + 1
	}
	return count
}

// typeFromSpec builds a ResolvedType from a syntactic type spec, folding a
// constant KIND expression when possible.
func typeFromSpec(spec ast.TypeSpec, scope *Scope) *ResolvedType {
	rt := &ResolvedType{Base: spec.Token}
	if spec.Kind != nil {
		if kind, ok := EvalConstInt(spec.Kind, scope); ok {
			rt.Kind = kind
		}
	}
	if spec.CharLen != nil {
		if length, ok := EvalConstInt(spec.CharLen, scope); ok {
			rt.CharLen = length
		} else {
			rt.CharLen = -1
		}
	}
	return rt
}

// addError accumulates an error.
func (dc *DeclarationCollector) addError(err error) {
	if err != nil {
		dc.errors = append(dc.errors, err)
	}
}
