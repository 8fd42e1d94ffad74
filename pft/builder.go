package pft

import (
	"github.com/go-logr/logr"

	"github.com/fortgo/fortgo/ast"
	"github.com/fortgo/fortgo/symbol"
)

// Build constructs the flow tree of an analyzed program. The symbol table
// must have been populated for the same program; the builder panics on
// structural violations such as a branch to an undefined label.
func Build(program *ast.Program, table *symbol.SymbolTable, cfg Config) *Program {
	if program == nil {
		panic("pft: nil program")
	}
	if table == nil {
		panic("pft: nil symbol table")
	}
	if cfg.Logger.GetSink() == nil {
		cfg.Logger = logr.Discard()
	}
	b := &builder{
		cfg:            cfg,
		log:            cfg.Logger,
		table:          table,
		pgm:            &Program{},
		constructNames: make(map[string]*Evaluation),
	}
	ast.WalkPrePost(b, program)
	return b.pgm
}

// builder drives a pre/post walk over the program, collecting evaluations
// into the unit and construct lists on top of its stacks. Branch and
// variable analysis run when a function-like unit completes.
type builder struct {
	cfg   Config
	log   logr.Logger
	table *symbol.SymbolTable
	pgm   *Program

	// functionList receives completed function-like units: the nested
	// list of the enclosing unit or module, or nil for top level.
	functionList *[]*FunctionLikeUnit

	unitStack      []*FunctionLikeUnit
	moduleStack    []*ModuleLikeUnit
	constructStack []*Evaluation
	listStack      []*[]*Evaluation

	// doStack tracks enclosing DO construct evaluations for CYCLE and
	// EXIT resolution; constructNames resolves the named forms.
	doStack        []*Evaluation
	constructNames map[string]*Evaluation

	lastLexical  *Evaluation
	pendingLabel int
}

func (b *builder) Pre(node ast.Node) bool {
	switch n := node.(type) {
	case *ast.Program:
		return true

	case *ast.ProgramBlock:
		b.enterFunction(n)
		return true
	case *ast.Subroutine:
		b.enterFunction(n)
		return true
	case *ast.Function:
		b.enterFunction(n)
		return true

	case *ast.Module:
		b.enterModule(n)
		return true

	case *ast.BlockData:
		b.pgm.Units = append(b.pgm.Units, &BlockDataUnit{
			Stmt:  n,
			Scope: b.table.UnitScope(n),
		})
		return false

	case *ast.LabeledStmt:
		b.pendingLabel = n.Label
		return true

	// Constructs own a nested evaluation list. Any pending label belongs
	// to the header statement, which carries its own Label field.
	case *ast.IfConstruct:
		b.enterConstruct(n)
		return true
	case *ast.DoConstruct:
		b.enterConstruct(n)
		return true
	case *ast.CaseConstruct:
		b.enterConstruct(n)
		return true

	// Construct headers, intermediates and footers.
	case *ast.IfThenStmt:
		b.addEvaluation(n, n.Label)
		return false
	case *ast.ElseIfStmt:
		b.addEvaluation(n, n.Label)
		return false
	case *ast.ElseStmt:
		b.addEvaluation(n, n.Label)
		return false
	case *ast.EndIfStmt:
		b.addEvaluation(n, n.Label)
		return false
	case *ast.DoStmt:
		b.addEvaluation(n, n.Label)
		return false
	case *ast.EndDoStmt:
		b.addEvaluation(n, n.Label)
		return false
	case *ast.SelectCaseStmt:
		b.addEvaluation(n, n.Label)
		return false
	case *ast.CaseStmt:
		b.addEvaluation(n, n.Label)
		return false
	case *ast.EndSelectStmt:
		b.addEvaluation(n, n.Label)
		return false

	// The action of a one-line IF is its own evaluation, added when the
	// walk descends into it.
	case *ast.IfStmt:
		b.addEvaluation(n, b.takeLabel())
		return true

	// No-code statements still get (unnumbered) evaluations.
	case *ast.FormatStmt:
		b.addEvaluation(n, b.takeLabel())
		return false
	case *ast.EntryStmt:
		b.addEvaluation(n, b.takeLabel())
		return false
	case *ast.DataStmt:
		b.addEvaluation(n, b.takeLabel())
		return false
	case *ast.NamelistStmt:
		b.addEvaluation(n, b.takeLabel())
		return false

	// Specification statements produce no evaluations.
	case *ast.TypeDeclaration, *ast.ImplicitStatement, *ast.UseStatement,
		*ast.CommonStmt, *ast.EquivalenceStmt, *ast.ExternalStmt,
		*ast.SaveStmt, *ast.CompilerDirective:
		return false

	case ast.Statement:
		b.addEvaluation(n, b.takeLabel())
		return false
	}
	// Expressions and other non-statement nodes.
	return false
}

func (b *builder) Post(node ast.Node) {
	switch node.(type) {
	case *ast.ProgramBlock, *ast.Subroutine, *ast.Function:
		b.exitFunction()
	case *ast.Module:
		b.exitModule()
	case *ast.IfConstruct, *ast.DoConstruct, *ast.CaseConstruct:
		b.exitConstruct()
	}
}

func (b *builder) takeLabel() int {
	label := b.pendingLabel
	b.pendingLabel = 0
	return label
}

func (b *builder) currentUnit() *FunctionLikeUnit {
	if len(b.unitStack) == 0 {
		panic("pft: statement outside a function-like unit")
	}
	return b.unitStack[len(b.unitStack)-1]
}

func (b *builder) currentScope() *symbol.Scope {
	if len(b.unitStack) > 0 && b.currentUnit().Scope != nil {
		return b.currentUnit().Scope
	}
	return b.table.GlobalScope()
}

func (b *builder) enterFunction(stmt ast.ProgramUnit) {
	b.endFunctionBody() // enclosing host subprogram body, if any
	unit := &FunctionLikeUnit{
		Stmt:              stmt,
		Scope:             b.table.UnitScope(stmt),
		LabelEvaluations:  make(map[int]*Evaluation),
		AssignedLabels:    make(map[*symbol.Symbol]map[int]bool),
		forceUnstructured: b.cfg.DisableStructured,
	}
	unit.Entries = []EntryPoint{{Sym: b.unitSymbol(unit)}}
	if b.functionList != nil {
		*b.functionList = append(*b.functionList, unit)
	} else {
		b.pgm.Units = append(b.pgm.Units, unit)
	}
	b.functionList = &unit.Nested
	b.unitStack = append(b.unitStack, unit)
	b.listStack = append(b.listStack, &unit.Evaluations)
	b.lastLexical = nil
	b.pendingLabel = 0
}

func (b *builder) exitFunction() {
	b.endFunctionBody()
	unit := b.currentUnit()
	b.analyzeBranches(nil, unit.Evaluations)
	b.processEntryPoints(unit)
	if unit.Scope != nil {
		unit.Variables = AnalyzeVariables(unit.Scope)
	}
	b.log.V(1).Info("built function-like unit", "name", unit.Name(),
		"evaluations", len(unit.Evaluations), "entries", len(unit.Entries))
	b.listStack = b.listStack[:len(b.listStack)-1]
	b.unitStack = b.unitStack[:len(b.unitStack)-1]
	b.resetFunctionState()
}

func (b *builder) enterModule(stmt *ast.Module) {
	unit := &ModuleLikeUnit{Stmt: stmt, Scope: b.table.UnitScope(stmt)}
	if unit.Scope != nil {
		unit.Variables = AnalyzeVariables(unit.Scope)
	}
	b.pgm.Units = append(b.pgm.Units, unit)
	b.moduleStack = append(b.moduleStack, unit)
	b.functionList = &unit.Nested
}

func (b *builder) exitModule() {
	b.moduleStack = b.moduleStack[:len(b.moduleStack)-1]
	b.resetFunctionState()
}

// resetFunctionState restores the builder focus to the enclosing host
// function or module after a nested unit completes.
func (b *builder) resetFunctionState() {
	if len(b.unitStack) > 0 {
		b.functionList = &b.currentUnit().Nested
		return
	}
	if len(b.moduleStack) > 0 {
		b.functionList = &b.moduleStack[len(b.moduleStack)-1].Nested
		return
	}
	b.functionList = nil
}

// endFunctionBody guarantees that a function body is nonempty and ends
// with a valid branch target by appending a synthetic CONTINUE when
// needed.
func (b *builder) endFunctionBody() {
	if len(b.listStack) == 0 {
		return
	}
	list := *b.listStack[len(b.listStack)-1]
	needTarget := len(list) == 0
	if !needTarget {
		_, isContinue := list[len(list)-1].Stmt.(*ast.ContinueStmt)
		needTarget = !isContinue
	}
	if needTarget {
		b.addEvaluation(&ast.ContinueStmt{}, 0)
	}
	b.lastLexical = nil
}

func (b *builder) enterConstruct(stmt ast.Construct) {
	b.pendingLabel = 0
	eval := b.addEvaluation(stmt, 0)
	eval.Evaluations = []*Evaluation{}
	b.constructStack = append(b.constructStack, eval)
	b.listStack = append(b.listStack, &eval.Evaluations)
}

func (b *builder) exitConstruct() {
	b.listStack = b.listStack[:len(b.listStack)-1]
	b.constructStack = b.constructStack[:len(b.constructStack)-1]
}

// addEvaluation appends an evaluation to the current list, threading the
// lexical successor chain and the unit's label and entry bookkeeping.
func (b *builder) addEvaluation(stmt ast.Statement, label int) *Evaluation {
	if len(b.listStack) == 0 {
		panic("pft: evaluation outside a function-like unit")
	}
	unit := b.currentUnit()
	eval := &Evaluation{Stmt: stmt, Label: label, owner: unit}
	if len(b.constructStack) > 0 {
		eval.ParentConstruct = b.constructStack[len(b.constructStack)-1]
	}
	list := b.listStack[len(b.listStack)-1]
	*list = append(*list, eval)

	if eval.IsActionStmt() || eval.IsConstructStmt() {
		if b.lastLexical != nil {
			b.lastLexical.LexicalSuccessor = eval
			eval.PrintIndex = b.lastLexical.PrintIndex + 1
		} else {
			eval.PrintIndex = 1
		}
		b.lastLexical = eval
		// Link trailing entry points to their first executable statement.
		for i := len(unit.Entries) - 1; i > 0 && unit.Entries[i].Eval.LexicalSuccessor == nil; i-- {
			unit.Entries[i].Eval.LexicalSuccessor = eval
		}
	} else if entry, ok := stmt.(*ast.EntryStmt); ok {
		var sym *symbol.Symbol
		if unit.Scope != nil {
			sym = unit.Scope.LookupLocal(entry.Name)
		}
		unit.Entries = append(unit.Entries, EntryPoint{Sym: sym, Eval: eval})
	}

	if label != 0 {
		if _, exists := unit.LabelEvaluations[label]; !exists {
			unit.LabelEvaluations[label] = eval
		}
	}
	return eval
}

// unitSymbol resolves the subprogram symbol of a unit. Function result
// variables shadow the function name inside the unit, so the lookup runs
// in the enclosing scope.
func (b *builder) unitSymbol(unit *FunctionLikeUnit) *symbol.Symbol {
	name := unit.Name()
	if name == "" {
		return nil
	}
	scope := b.table.GlobalScope()
	if unit.Scope != nil && unit.Scope.Parent() != nil {
		scope = unit.Scope.Parent()
	}
	return scope.Lookup(name)
}

// processEntryPoints collects the dummy arguments that appear in some,
// but not all, entry points of a multiple entry subprogram, and finds one
// of the largest function results to hold the result for all entries.
func (b *builder) processEntryPoints(unit *FunctionLikeUnit) {
	entryCount := len(unit.Entries)
	if entryCount <= 1 {
		return
	}
	counts := make(map[*symbol.Symbol]int)
	var order []*symbol.Symbol
	for _, entry := range unit.Entries {
		if entry.Sym == nil {
			continue
		}
		details := entry.Sym.Details()
		if details == nil {
			continue
		}
		for _, arg := range details.DummyArgs {
			if arg == nil {
				continue // alternate return specifier
			}
			if counts[arg] == 0 {
				order = append(order, arg)
			}
			counts[arg]++
		}
		if result := details.Result; result != nil {
			if unit.PrimaryResult == nil || unit.PrimaryResult.Size() < result.Size() {
				unit.PrimaryResult = result
			}
		}
	}
	for _, arg := range order {
		if counts[arg] < entryCount {
			unit.NonUniversalDummyArgs = append(unit.NonUniversalDummyArgs, arg)
		}
	}
}
