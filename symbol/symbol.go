// Package symbol provides the symbol table consumed by the lowering middle
// tier: resolved types, storage offsets and sizes, equivalence groups and
// subprogram entry details.
package symbol

import (
	"sort"
	"strings"

	"github.com/fortgo/fortgo/ast"
	"github.com/fortgo/fortgo/token"
)

// Flags
type Flags uint64

const (
	FlagImplicit Flags = 1 << iota
	FlagUsed
	FlagPointer
	FlagTarget
	FlagAllocatable
	FlagSave
	FlagDummy
	FlagInCommon
	FlagInit // carries an initializer (DATA or declaration)
)

func (f Flags) HasAny(hasBits Flags) bool { return f&hasBits != 0 }
func (f Flags) HasAll(hasBits Flags) bool { return f&hasBits == hasBits }
func (f Flags) With(mask Flags, setBits bool) Flags {
	if setBits {
		return f | mask
	} else {
		return f &^ mask
	}
}

// Symbol represents a declared entity (variable, procedure, entry point...).
type Symbol struct {
	name        string         // Symbol name (case-insensitive in Fortran)
	typ         *ResolvedType  // Fully resolved type information
	kind        SymbolKind     // What kind of symbol this is
	attributes  []token.Token  // SAVE, POINTER, TARGET, etc.
	arraySpec   *ast.ArraySpec // Array dimensions (nil if not an array)
	coarraySpec *ast.ArraySpec // Co-array co-dimensions (nil if none)
	charLen     ast.Expression // CHARACTER length expression (nil if none)
	init        ast.Expression // Initializer expression (nil if none)
	declNode    ast.Node       // Reference to declaration AST node
	scope       *Scope         // Scope where this symbol is defined
	details     *SubprogramDetails
	offset      int // Byte offset in the unit's storage sequence
	size        int // Byte size of the entity's storage
	flags       Flags
}

// NewSymbol creates a new symbol with the given name and kind
func NewSymbol(name string, kind SymbolKind) *Symbol {
	return &Symbol{
		name: name,
		kind: kind,
	}
}

// Name returns the symbol name
func (s *Symbol) Name() string {
	return s.name
}

// Type returns the resolved type (may be nil if not yet resolved)
func (s *Symbol) Type() *ResolvedType {
	return s.typ
}

// Kind returns the symbol kind
func (s *Symbol) Kind() SymbolKind {
	return s.kind
}

// Attributes returns the symbol attributes
func (s *Symbol) Attributes() []token.Token {
	return s.attributes
}

// HasAttribute reports whether attr appears in the attribute list.
func (s *Symbol) HasAttribute(attr token.Token) bool {
	for _, a := range s.attributes {
		if a == attr {
			return true
		}
	}
	return false
}

// ArraySpec returns the array specification (nil if not an array)
func (s *Symbol) ArraySpec() *ast.ArraySpec {
	return s.arraySpec
}

// CoarraySpec returns the co-array specification (nil if not a co-array)
func (s *Symbol) CoarraySpec() *ast.ArraySpec {
	return s.coarraySpec
}

// CharLenExpr returns the CHARACTER length expression (nil if none)
func (s *Symbol) CharLenExpr() ast.Expression {
	return s.charLen
}

// InitExpr returns the initializer expression (nil if none)
func (s *Symbol) InitExpr() ast.Expression {
	return s.init
}

// DeclNode returns the AST node where this symbol was declared
func (s *Symbol) DeclNode() ast.Node {
	return s.declNode
}

// Scope returns the scope where this symbol is defined
func (s *Symbol) Scope() *Scope {
	return s.scope
}

// Details returns subprogram details for procedures and entries (nil
// otherwise).
func (s *Symbol) Details() *SubprogramDetails {
	return s.details
}

// Offset returns the byte offset of the symbol in its unit's storage
// sequence.
func (s *Symbol) Offset() int {
	return s.offset
}

// Size returns the byte size of the symbol's storage.
func (s *Symbol) Size() int {
	return s.size
}

// Flags returns the symbol [Flags].
func (s *Symbol) Flags() Flags {
	return s.flags
}

// SetType sets the resolved type (used during type resolution)
func (s *Symbol) SetType(typ *ResolvedType) {
	s.typ = typ
}

// SetArraySpec sets the array specification
func (s *Symbol) SetArraySpec(spec *ast.ArraySpec) {
	s.arraySpec = spec
}

// SetCoarraySpec sets the co-array specification
func (s *Symbol) SetCoarraySpec(spec *ast.ArraySpec) {
	s.coarraySpec = spec
}

// SetCharLenExpr sets the CHARACTER length expression
func (s *Symbol) SetCharLenExpr(e ast.Expression) {
	s.charLen = e
}

// SetInitExpr sets the initializer expression and the FlagInit flag.
func (s *Symbol) SetInitExpr(e ast.Expression) {
	s.init = e
	s.flags = s.flags.With(FlagInit, e != nil)
}

// SetAttributes sets the symbol attributes
func (s *Symbol) SetAttributes(attrs []token.Token) {
	s.attributes = attrs
	for _, attr := range attrs {
		switch attr {
		case token.POINTER:
			s.flags |= FlagPointer
		case token.TARGET:
			s.flags |= FlagTarget
		case token.ALLOCATABLE:
			s.flags |= FlagAllocatable
		case token.SAVE:
			s.flags |= FlagSave
		}
	}
}

// AddAttribute adds an attribute to the symbol
func (s *Symbol) AddAttribute(attr token.Token) {
	s.attributes = append(s.attributes, attr)
	s.SetAttributes(s.attributes)
}

// SetDeclNode sets the declaration node
func (s *Symbol) SetDeclNode(node ast.Node) {
	s.declNode = node
}

// SetScope sets the scope (used during symbol table building)
func (s *Symbol) SetScope(scope *Scope) {
	s.scope = scope
}

// SetDetails attaches subprogram details.
func (s *Symbol) SetDetails(d *SubprogramDetails) {
	s.details = d
}

// SetStorage records the symbol's position in the storage sequence.
func (s *Symbol) SetStorage(offset, size int) {
	s.offset = offset
	s.size = size
}

// SetFlags ORs additional flags onto the symbol.
func (s *Symbol) SetFlags(flags Flags) {
	s.flags |= flags
}

// setImplicit marks whether the type is from implicit rules
func (s *Symbol) setImplicit(implicit bool) {
	s.flags = s.flags.With(FlagImplicit, implicit)
}

// markUsed marks the symbol as used/referenced
func (s *Symbol) markUsed() {
	s.flags = s.flags.With(FlagUsed, true)
}

// IsGlobal reports whether the symbol's storage outlives a single
// activation of its unit.
func (s *Symbol) IsGlobal() bool {
	return s.flags.HasAny(FlagSave|FlagInCommon|FlagInit) || (s.scope != nil && s.scope.scopeType == ScopeModule)
}

// SubprogramDetails carries the procedure-shaped facts of a function,
// subroutine or entry symbol.
type SubprogramDetails struct {
	DummyArgs []*Symbol
	Result    *Symbol // nil for subroutines
}

// ResolvedType represents a fully resolved Fortran intrinsic type.
type ResolvedType struct {
	Base    token.Token // INTEGER, REAL, COMPLEX, LOGICAL, CHARACTER, DOUBLEPRECISION
	Kind    int         // Kind parameter value (0 = default kind)
	CharLen int         // CHARACTER length (-1 = assumed/deferred, 0 = default 1)
}

// IsReal reports whether the type is REAL or DOUBLE PRECISION.
func (rt *ResolvedType) IsReal() bool {
	return rt != nil && (rt.Base == token.REAL || rt.Base == token.DOUBLEPRECISION)
}

// IsInteger reports whether the type is INTEGER.
func (rt *ResolvedType) IsInteger() bool {
	return rt != nil && rt.Base == token.INTEGER
}

// IsCharacter reports whether the type is CHARACTER.
func (rt *ResolvedType) IsCharacter() bool {
	return rt != nil && rt.Base == token.CHARACTER
}

// ByteSize returns the storage size of a scalar of this type. Assumed and
// deferred CHARACTER lengths count as one storage unit.
func (rt *ResolvedType) ByteSize() int {
	if rt == nil {
		return 4
	}
	kind := rt.Kind
	switch rt.Base {
	case token.INTEGER, token.LOGICAL:
		if kind == 0 {
			kind = 4
		}
		return kind
	case token.REAL:
		if kind == 0 {
			kind = 4
		}
		return kind
	case token.DOUBLEPRECISION:
		return 8
	case token.COMPLEX:
		if kind == 0 {
			kind = 4
		}
		return 2 * kind
	case token.CHARACTER:
		if kind == 0 {
			kind = 1
		}
		length := rt.CharLen
		if length <= 0 {
			length = 1
		}
		return kind * length
	default:
		return 4
	}
}

// SymbolKind classifies what kind of entity a symbol represents
type SymbolKind int

const (
	SymUnknown     SymbolKind = iota
	SymVariable               // Regular variable
	SymParameter              // Compile-time constant (PARAMETER attribute)
	SymFunction               // Function (returns value)
	SymSubroutine             // Subroutine (no return value)
	SymEntry                  // ENTRY point into a subprogram
	SymModule                 // Module
	SymProgram                // Main program
	SymCommonBlock            // COMMON block
	SymNamelist               // NAMELIST group
	SymIntrinsic              // Intrinsic function
	SymExternal               // External procedure
	SymUseAssoc               // Use-associated name
	SymHostAssoc              // Host-associated name
)

// String returns the string representation of SymbolKind
func (sk SymbolKind) String() string {
	switch sk {
	case SymUnknown:
		return "Unknown"
	case SymVariable:
		return "Variable"
	case SymParameter:
		return "Parameter"
	case SymFunction:
		return "Function"
	case SymSubroutine:
		return "Subroutine"
	case SymEntry:
		return "Entry"
	case SymModule:
		return "Module"
	case SymProgram:
		return "Program"
	case SymCommonBlock:
		return "CommonBlock"
	case SymNamelist:
		return "Namelist"
	case SymIntrinsic:
		return "Intrinsic"
	case SymExternal:
		return "External"
	case SymUseAssoc:
		return "UseAssoc"
	case SymHostAssoc:
		return "HostAssoc"
	default:
		return "Unknown"
	}
}

// IsProcedure reports whether the kind names a callable entity.
func (sk SymbolKind) IsProcedure() bool {
	switch sk {
	case SymFunction, SymSubroutine, SymEntry, SymIntrinsic, SymExternal:
		return true
	}
	return false
}

// Scope represents a lexical scope with symbol table
type Scope struct {
	parent      *Scope             // Parent scope (nil for global)
	children    []*Scope           // Nested scopes
	symbols     map[string]*Symbol // Symbol table (case-insensitive keys)
	implicit    *ImplicitRules     // Implicit typing rules for this scope
	programUnit ast.ProgramUnit    // PROGRAM/SUBROUTINE/FUNCTION/MODULE
	scopeType   ScopeType          // Global, Program, Procedure, Module
	equivSets   [][]*Symbol        // Storage-sharing groups from EQUIVALENCE
}

// Parent returns the parent scope (nil for global scope)
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Children returns child scopes
func (s *Scope) Children() []*Scope {
	return s.children
}

// Implicit returns the implicit typing rules for this scope
func (s *Scope) Implicit() *ImplicitRules {
	return s.implicit
}

// ProgramUnit returns the associated program unit
func (s *Scope) ProgramUnit() ast.ProgramUnit {
	return s.programUnit
}

// ScopeType returns the type of this scope
func (s *Scope) Type() ScopeType {
	return s.scopeType
}

// Lookup searches for a symbol in this scope and parent scopes
func (s *Scope) Lookup(name string) *Symbol {
	name = normalizeCase(name) // Fortran is case-insensitive

	// Search current scope
	if sym, ok := s.symbols[name]; ok {
		return sym
	}

	// Search parent scopes
	scope := s.parent
	for scope != nil {
		if sym, ok := scope.symbols[name]; ok {
			return sym
		}
		scope = scope.parent
	}

	return nil
}

// LookupLocal searches for a symbol only in this scope (not parent scopes)
func (s *Scope) LookupLocal(name string) *Symbol {
	name = normalizeCase(name)
	return s.symbols[name]
}

// Symbols returns the symbol map. The caller must not modify it.
func (s *Scope) Symbols() map[string]*Symbol {
	return s.symbols
}

// SortedNames returns the normalized symbol names of the scope in sorted
// order. Analyses that must be deterministic iterate the scope this way.
func (s *Scope) SortedNames() []string {
	names := make([]string, 0, len(s.symbols))
	for name := range s.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EquivalenceSets returns the storage-sharing groups declared in this scope.
func (s *Scope) EquivalenceSets() [][]*Symbol {
	return s.equivSets
}

// AddEquivalenceSet records a storage-sharing group.
func (s *Scope) AddEquivalenceSet(set []*Symbol) {
	s.equivSets = append(s.equivSets, set)
}

// Define adds a symbol to this scope
func (s *Scope) Define(sym *Symbol) error {
	name := normalizeCase(sym.Name())

	// Check if already defined in current scope
	if _, ok := s.symbols[name]; ok {
		return &RedeclaredError{Name: sym.Name()}
	}

	sym.SetScope(s)
	s.symbols[name] = sym
	return nil
}

// RedeclaredError reports a duplicate definition within one scope.
type RedeclaredError struct {
	Name string
}

func (e *RedeclaredError) Error() string {
	return "symbol " + e.Name + " already defined in scope"
}

// ScopeType identifies the type of scope
type ScopeType int

const (
	ScopeGlobal    ScopeType = iota // Global scope (entire file)
	ScopeProgram                    // PROGRAM unit
	ScopeProcedure                  // SUBROUTINE or FUNCTION
	ScopeModule                     // MODULE
	ScopeBlockData                  // BLOCK DATA unit
)

// String returns the string representation of ScopeType
func (st ScopeType) String() string {
	switch st {
	case ScopeGlobal:
		return "Global"
	case ScopeProgram:
		return "Program"
	case ScopeProcedure:
		return "Procedure"
	case ScopeModule:
		return "Module"
	case ScopeBlockData:
		return "BlockData"
	default:
		return "Unknown"
	}
}

// SymbolTable is the root of the symbol table hierarchy
type SymbolTable struct {
	globalScope  *Scope                  // Global scope
	currentScope *Scope                  // Current scope during analysis
	commonBlocks map[string]*CommonBlock // COMMON block registry
	intrinsics   map[string]*Intrinsic   // Intrinsic function database
}

// GlobalScope returns the global scope
func (st *SymbolTable) GlobalScope() *Scope {
	return st.globalScope
}

// CurrentScope returns the current scope during analysis
func (st *SymbolTable) CurrentScope() *Scope {
	return st.currentScope
}

// CommonBlock returns a COMMON block by name (nil if not found)
func (st *SymbolTable) CommonBlock(name string) *CommonBlock {
	return st.commonBlocks[normalizeCase(name)]
}

// CommonBlocks returns the full COMMON block registry.
func (st *SymbolTable) CommonBlocks() map[string]*CommonBlock {
	return st.commonBlocks
}

// Intrinsic returns an intrinsic function by name (nil if not found)
func (st *SymbolTable) Intrinsic(name string) *Intrinsic {
	return st.intrinsics[normalizeCase(name)]
}

// CommonBlock represents a COMMON block shared between program units
type CommonBlock struct {
	name      string    // Empty for blank COMMON
	members   []*Symbol // Member symbols in storage order
	totalSize int       // Total bytes
}

// Name returns the common block name
func (cb *CommonBlock) Name() string {
	return cb.name
}

// Members returns the member symbols in storage order
func (cb *CommonBlock) Members() []*Symbol {
	return cb.members
}

// TotalSize returns the total bytes
func (cb *CommonBlock) TotalSize() int {
	return cb.totalSize
}

// AddMember appends a member and grows the block's storage sequence.
func (cb *CommonBlock) AddMember(sym *Symbol) {
	cb.members = append(cb.members, sym)
	cb.totalSize += sym.Size()
}

// NewCommonBlock creates a new common block with the given name
func NewCommonBlock(name string) *CommonBlock {
	return &CommonBlock{name: name}
}

// Intrinsic represents an intrinsic function or subroutine
type Intrinsic struct {
	name       string
	kind       IntrinsicKind
	returnType token.Token // result type for functions
}

// Name returns the intrinsic name
func (i *Intrinsic) Name() string {
	return i.name
}

// Kind returns the intrinsic kind
func (i *Intrinsic) Kind() IntrinsicKind {
	return i.kind
}

// ReturnType returns the result type for functions
func (i *Intrinsic) ReturnType() token.Token {
	return i.returnType
}

// NewIntrinsic creates a new intrinsic
func NewIntrinsic(name string, returnType token.Token, kind IntrinsicKind) *Intrinsic {
	return &Intrinsic{
		name:       name,
		kind:       kind,
		returnType: returnType,
	}
}

// IntrinsicKind identifies whether an intrinsic is a function or subroutine
type IntrinsicKind int

const (
	IntrinsicFunction IntrinsicKind = iota
	IntrinsicSubroutine
)

// String returns the string representation of IntrinsicKind
func (ik IntrinsicKind) String() string {
	switch ik {
	case IntrinsicFunction:
		return "Function"
	case IntrinsicSubroutine:
		return "Subroutine"
	default:
		return "Unknown"
	}
}

// NewSymbolTable creates a new symbol table with global scope
func NewSymbolTable() *SymbolTable {
	st := &SymbolTable{
		commonBlocks: make(map[string]*CommonBlock),
		intrinsics:   loadIntrinsics(),
	}
	st.globalScope = &Scope{
		symbols:   make(map[string]*Symbol),
		implicit:  defaultImplicitRules(),
		scopeType: ScopeGlobal,
	}
	st.currentScope = st.globalScope
	return st
}

// EnterScope creates a new scope as child of current scope
func (st *SymbolTable) EnterScope(unit ast.ProgramUnit, scopeType ScopeType) *Scope {
	newScope := &Scope{
		parent:      st.currentScope,
		symbols:     make(map[string]*Symbol),
		implicit:    st.currentScope.implicit.Copy(), // Inherit implicit rules
		programUnit: unit,
		scopeType:   scopeType,
	}
	st.currentScope.children = append(st.currentScope.children, newScope)
	st.currentScope = newScope
	return newScope
}

// ExitScope returns to parent scope
func (st *SymbolTable) ExitScope() {
	if st.currentScope.parent != nil {
		st.currentScope = st.currentScope.parent
	}
}

// UnitScope returns the child scope built for the given program unit, or
// nil when the unit was never collected.
func (st *SymbolTable) UnitScope(unit ast.ProgramUnit) *Scope {
	return findUnitScope(st.globalScope, unit)
}

func findUnitScope(scope *Scope, unit ast.ProgramUnit) *Scope {
	if scope.programUnit == unit {
		return scope
	}
	for _, child := range scope.children {
		if found := findUnitScope(child, unit); found != nil {
			return found
		}
	}
	return nil
}

// normalizeCase converts a Fortran identifier to normalized form (uppercase)
// Fortran is case-insensitive, so we normalize to uppercase for consistent lookup
func normalizeCase(name string) string {
	return strings.ToUpper(name)
}

// loadIntrinsics creates the database of Fortran intrinsic functions
func loadIntrinsics() map[string]*Intrinsic {
	intrinsics := make(map[string]*Intrinsic)

	add := func(name string, returnType token.Token) {
		intrinsics[name] = NewIntrinsic(name, returnType, IntrinsicFunction)
	}

	// Trigonometric
	add("SIN", token.REAL)
	add("COS", token.REAL)
	add("TAN", token.REAL)
	add("ASIN", token.REAL)
	add("ACOS", token.REAL)
	add("ATAN", token.REAL)
	add("ATAN2", token.REAL)

	// Exponential and logarithmic
	add("EXP", token.REAL)
	add("LOG", token.REAL)
	add("LOG10", token.REAL)
	add("SQRT", token.REAL)

	// Type conversion
	add("INT", token.INTEGER)
	add("NINT", token.INTEGER)
	add("REAL", token.REAL)
	add("DBLE", token.DOUBLEPRECISION)
	add("CMPLX", token.COMPLEX)
	add("ICHAR", token.INTEGER)
	add("CHAR", token.CHARACTER)

	// Numeric
	add("ABS", token.REAL)
	add("MOD", token.INTEGER)
	add("SIGN", token.REAL)
	add("DIM", token.REAL)
	add("MAX", token.REAL)
	add("MIN", token.REAL)

	// String functions
	add("LEN", token.INTEGER)
	add("LEN_TRIM", token.INTEGER)
	add("INDEX", token.INTEGER)
	add("TRIM", token.CHARACTER)

	// Array inquiry
	add("SIZE", token.INTEGER)
	add("LBOUND", token.INTEGER)
	add("UBOUND", token.INTEGER)

	return intrinsics
}
