// Package pft builds a program flow tree from an analyzed Fortran program.
// The tree orders every executable statement of each program unit into an
// Evaluation list, annotates each evaluation with branch analysis results
// (control successors, block boundaries, structured/unstructured
// classification), and computes a dependence-ordered variable allocation
// list per unit, resolving EQUIVALENCE storage overlaps into aggregate
// stores.
package pft

import (
	"github.com/go-logr/logr"

	"github.com/fortgo/fortgo/ast"
	"github.com/fortgo/fortgo/symbol"
)

// Config controls flow tree construction.
type Config struct {
	// DisableStructured forces every construct to be lowered with explicit
	// branches instead of structured operations.
	DisableStructured bool
	// Logger receives build tracing. The zero value discards everything.
	Logger logr.Logger
}

// Program is the root of a flow tree: one Unit per top-level program unit.
type Program struct {
	Units []Unit
}

// Unit is a top-level or module-contained program unit.
type Unit interface {
	unitNode()
}

// EntryPoint pairs an entry symbol with its ENTRY statement evaluation.
// The primary entry of a unit has a nil Eval.
type EntryPoint struct {
	Sym  *symbol.Symbol
	Eval *Evaluation
}

// FunctionLikeUnit is a main program, subroutine, or function, with its
// ordered evaluation list and the results of branch and variable analysis.
type FunctionLikeUnit struct {
	Stmt  ast.ProgramUnit // *ast.ProgramBlock, *ast.Subroutine or *ast.Function
	Scope *symbol.Scope

	Evaluations      []*Evaluation
	LabelEvaluations map[int]*Evaluation

	// AssignedLabels maps each ASSIGN statement variable to the set of
	// labels assigned to it anywhere in the unit.
	AssignedLabels map[*symbol.Symbol]map[int]bool

	// Entries lists the unit's entry points. Entries[0] is the primary
	// entry; the rest come from ENTRY statements in lexical order.
	Entries []EntryPoint

	// NonUniversalDummyArgs are dummy arguments that appear in some, but
	// not all, entry points of a multiple entry subprogram.
	NonUniversalDummyArgs []*symbol.Symbol

	// PrimaryResult is one of the largest function results of a multiple
	// entry function. A single container holds the result for all entries.
	PrimaryResult *symbol.Symbol

	Nested    []*FunctionLikeUnit
	Variables []Variable

	forceUnstructured bool
}

func (*FunctionLikeUnit) unitNode() {}

// Name returns the unit's name.
func (u *FunctionLikeUnit) Name() string { return unitName(u.Stmt) }

// ModuleLikeUnit is a MODULE with its contained procedures.
type ModuleLikeUnit struct {
	Stmt      *ast.Module
	Scope     *symbol.Scope
	Nested    []*FunctionLikeUnit
	Variables []Variable
}

func (*ModuleLikeUnit) unitNode() {}

// Name returns the module's name.
func (u *ModuleLikeUnit) Name() string { return u.Stmt.Name }

// BlockDataUnit is a BLOCK DATA unit. It has no executable statements.
type BlockDataUnit struct {
	Stmt  *ast.BlockData
	Scope *symbol.Scope
}

func (*BlockDataUnit) unitNode() {}

// Evaluation is one node of a unit's flow tree: an action statement, a
// construct statement (header, intermediate, or footer), or a construct
// holding a nested evaluation list.
type Evaluation struct {
	Stmt ast.Statement

	// ParentConstruct is the enclosing construct evaluation, nil at the
	// outermost level of a unit.
	ParentConstruct *Evaluation

	// Evaluations holds the nested list of a construct, nil otherwise.
	Evaluations []*Evaluation

	// LexicalSuccessor is the statement following this one in source
	// order, threaded through construct boundaries. Construct evaluations
	// have none; an ENTRY statement's lexical successor is the first
	// executable statement reachable from the entry.
	LexicalSuccessor *Evaluation

	// ControlSuccessor is an explicit branch target, set by branch
	// analysis. For a construct evaluation, ConstructExit is the
	// evaluation control reaches when the construct completes.
	ControlSuccessor *Evaluation
	ConstructExit    *Evaluation

	// Label is the statement label, 0 if unlabeled.
	Label int

	// PrintIndex numbers action and construct statements in lexical order
	// for the textual dump. 0 means the evaluation is not numbered.
	PrintIndex int

	// LocalBlocks counts extra basic blocks reserved for this evaluation
	// beyond the one it may start.
	LocalBlocks int

	// Unstructured marks an evaluation that must be lowered with explicit
	// branches. The flag propagates to enclosing constructs.
	Unstructured bool

	// NewBlock marks an evaluation that starts a new basic block.
	NewBlock bool

	owner *FunctionLikeUnit
}

// Owner returns the function-like unit the evaluation belongs to.
func (e *Evaluation) Owner() *FunctionLikeUnit { return e.owner }

// IsConstruct reports whether the evaluation is a construct holding a
// nested evaluation list.
func (e *Evaluation) IsConstruct() bool {
	switch e.Stmt.(type) {
	case *ast.IfConstruct, *ast.DoConstruct, *ast.CaseConstruct:
		return true
	}
	return false
}

// IsConstructStmt reports whether the evaluation is a construct header,
// intermediate, or footer statement.
func (e *Evaluation) IsConstructStmt() bool {
	switch e.Stmt.(type) {
	case *ast.IfThenStmt, *ast.ElseIfStmt, *ast.ElseStmt, *ast.EndIfStmt,
		*ast.DoStmt, *ast.EndDoStmt,
		*ast.SelectCaseStmt, *ast.CaseStmt, *ast.EndSelectStmt:
		return true
	}
	return false
}

// IsActionStmt reports whether the evaluation is an executable action
// statement (as opposed to a construct, a construct statement, or a
// no-code statement such as FORMAT or ENTRY).
func (e *Evaluation) IsActionStmt() bool {
	if e.IsConstruct() || e.IsConstructStmt() {
		return false
	}
	switch e.Stmt.(type) {
	case *ast.FormatStmt, *ast.EntryStmt, *ast.DataStmt, *ast.NamelistStmt:
		return false
	}
	return true
}

// isNopConstructStmt reports whether the evaluation is a construct
// statement that generates no code of its own.
func (e *Evaluation) isNopConstructStmt() bool {
	switch e.Stmt.(type) {
	case *ast.CaseStmt, *ast.ElseIfStmt, *ast.ElseStmt, *ast.EndIfStmt,
		*ast.EndSelectStmt:
		return true
	}
	return false
}

// isIntermediateConstructStmt reports whether the evaluation separates
// alternative bodies inside a construct.
func (e *Evaluation) isIntermediateConstructStmt() bool {
	switch e.Stmt.(type) {
	case *ast.CaseStmt, *ast.ElseIfStmt, *ast.ElseStmt:
		return true
	}
	return false
}

// NonNopSuccessor returns the lexical successor, skipping over construct
// statements that generate no code by forwarding to the enclosing
// construct's exit.
func (e *Evaluation) NonNopSuccessor() *Evaluation {
	successor := e.LexicalSuccessor
	if successor != nil && successor.isNopConstructStmt() {
		return successor.ParentConstruct.ConstructExit
	}
	return successor
}

// FirstNestedEvaluation returns the first evaluation of a construct's
// nested list. It panics when called on a non-construct evaluation.
func (e *Evaluation) FirstNestedEvaluation() *Evaluation {
	if len(e.Evaluations) == 0 {
		panic("pft: evaluation has no nested list")
	}
	return e.Evaluations[0]
}

// LowerAsUnstructured reports whether the evaluation must be lowered with
// explicit branches, either because branch analysis marked it or because
// structured lowering is disabled for the whole unit.
func (e *Evaluation) LowerAsUnstructured() bool {
	return e.Unstructured || (e.owner != nil && e.owner.forceUnstructured)
}

// LowerAsStructured is the complement of LowerAsUnstructured.
func (e *Evaluation) LowerAsStructured() bool {
	return !e.LowerAsUnstructured()
}

// Variable is one entry of a unit's allocation-ordered variable list.
// Either Sym names a declared entity, or Store describes an aggregate
// covering a set of equivalenced entities.
type Variable struct {
	Sym   *symbol.Symbol
	Store *AggregateStore

	// Depth is the dependence height: a variable appears after every
	// variable its declaration (bounds, character length, initializer)
	// depends on.
	Depth int

	Global    bool
	HeapAlloc bool
	Pointer   bool
	Target    bool

	// Aliaser marks a variable whose storage lives inside an aggregate
	// store; AliasOffset is the offset of that store.
	Aliaser     bool
	AliasOffset int
}

// IsAggregateStore reports whether the entry is a storage aggregate
// rather than a named variable.
func (v *Variable) IsAggregateStore() bool { return v.Store != nil }

// AggregateStore is a single allocation covering equivalenced variables
// whose storage intervals overlap.
type AggregateStore struct {
	Offset  int
	Size    int
	Members []*symbol.Symbol
	Global  bool
}

func unitName(unit ast.ProgramUnit) string {
	switch u := unit.(type) {
	case *ast.ProgramBlock:
		return u.Name
	case *ast.Subroutine:
		return u.Name
	case *ast.Function:
		return u.Name
	case *ast.Module:
		return u.Name
	case *ast.BlockData:
		return u.Name
	}
	return ""
}
