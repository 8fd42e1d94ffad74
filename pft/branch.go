package pft

import (
	"github.com/fortgo/fortgo/ast"
)

// analyzeBranches inserts branch links for a list of evaluations.
// parent is the construct evaluation owning the list, nil for the
// outermost statements of a unit.
func (b *builder) analyzeBranches(parent *Evaluation, list []*Evaluation) {
	var lastConstructStmt *Evaluation
	var lastIfStmt *Evaluation
	for _, eval := range list {
		switch s := eval.Stmt.(type) {
		// Action statements (except I/O statements).
		case *ast.CallStmt:
			for _, label := range s.AltReturnLabels() {
				b.markBranchTargetLabel(eval, label)
			}
		case *ast.CycleStmt:
			construct := b.loopConstruct(s.Name)
			b.markBranchTarget(eval, construct.Evaluations[len(construct.Evaluations)-1])
		case *ast.ExitStmt:
			construct := b.loopConstruct(s.Name)
			b.markBranchTarget(eval, construct.ConstructExit)
		case *ast.GotoStmt:
			b.markBranchTargetLabel(eval, s.Label)
		case *ast.IfStmt:
			lastIfStmt = eval
		case *ast.ReturnStmt:
			eval.Unstructured = true
			if eval.LexicalSuccessor != nil && eval.LexicalSuccessor.LexicalSuccessor != nil {
				b.markSuccessorAsNewBlock(eval)
			}
		case *ast.StopStmt:
			eval.Unstructured = true
			if eval.LexicalSuccessor != nil && eval.LexicalSuccessor.LexicalSuccessor != nil {
				b.markSuccessorAsNewBlock(eval)
			}
		case *ast.ComputedGotoStmt:
			for _, label := range s.Labels {
				b.markBranchTargetLabel(eval, label)
			}
		case *ast.ArithmeticIfStmt:
			b.markBranchTargetLabel(eval, s.Negative)
			b.markBranchTargetLabel(eval, s.Zero)
			b.markBranchTargetLabel(eval, s.Positive)
			if b.table.ExprType(s.Expr, b.currentScope()).IsReal() {
				// Real expression evaluation uses an additional local block.
				eval.LocalBlocks++
			}
		case *ast.AssignStmt: // legacy label assignment
			target := b.labelEvaluation(s.Label)
			if _, isFormat := target.Stmt.(*ast.FormatStmt); !isFormat {
				target.NewBlock = true
			}
			if sym := b.currentScope().Lookup(s.Variable); sym != nil {
				unit := eval.owner
				if unit.AssignedLabels[sym] == nil {
					unit.AssignedLabels[sym] = make(map[int]bool)
				}
				unit.AssignedLabels[sym][s.Label] = true
			}
		case *ast.AssignedGotoStmt:
			// The branch has no single explicit control successor, so the
			// end-of-loop bookkeeping won't mark one. Mark it here.
			eval.Unstructured = true
			b.markSuccessorAsNewBlock(eval)

		// Construct statements.
		case *ast.SelectCaseStmt:
			b.insertConstructName(s.Name, parent)
			lastConstructStmt = eval
		case *ast.CaseStmt:
			eval.NewBlock = true
			lastConstructStmt.ControlSuccessor = eval
			lastConstructStmt = eval
		case *ast.EndSelectStmt:
			eval.NonNopSuccessor().NewBlock = true
			lastConstructStmt = nil
		case *ast.DoStmt:
			b.insertConstructName(s.Name, parent)
			b.doStack = append(b.doStack, parent)
			if s.Control == nil {
				eval.Unstructured = true // infinite loop
				break
			}
			eval.NonNopSuccessor().NewBlock = true
			eval.ControlSuccessor = list[len(list)-1]
			if bounds := s.Control.Bounds; bounds != nil {
				variable := &ast.Identifier{Value: bounds.Variable}
				if b.table.ExprType(variable, b.currentScope()).IsReal() {
					eval.Unstructured = true // real-valued loop control
				}
			} else if s.Control.While != nil {
				eval.Unstructured = true // while loop
			}
		case *ast.EndDoStmt:
			doEval := list[0]
			eval.ControlSuccessor = doEval
			b.doStack = b.doStack[:len(b.doStack)-1]
			if parent.LowerAsStructured() {
				break
			}
			// The loop is unstructured, which wasn't known for all cases
			// when visiting the DO statement. Reserve the loop header block.
			doEval.LocalBlocks++
			parent.ConstructExit.NewBlock = true
			doStmt := doEval.Stmt.(*ast.DoStmt)
			if doStmt.Control == nil {
				break // infinite loop
			}
			concurrent := doStmt.Control.Concurrent
			if concurrent == nil {
				break
			}
			// Unstructured concurrent loop. Reserve header, body, and
			// latch blocks for each dimension, and one block for a mask.
			// The original loop body provides the body and latch blocks
			// of the innermost dimension.
			dims := len(concurrent.Controls)
			mask := 0
			if concurrent.Mask != nil {
				mask = 1
			}
			doEval.LocalBlocks = 2*dims + mask - 1 // header, body
			eval.LocalBlocks = dims - 1            // latch blocks
			if mask != 0 {
				eval.NewBlock = true
			}
		case *ast.IfThenStmt:
			b.insertConstructName(s.Name, parent)
			eval.LexicalSuccessor.NewBlock = true
			lastConstructStmt = eval
		case *ast.ElseIfStmt:
			eval.NewBlock = true
			eval.LexicalSuccessor.NewBlock = true
			lastConstructStmt.ControlSuccessor = eval
			lastConstructStmt = eval
		case *ast.ElseStmt:
			eval.NewBlock = true
			lastConstructStmt.ControlSuccessor = eval
			lastConstructStmt = nil
		case *ast.EndIfStmt:
			if parent.LowerAsUnstructured() {
				parent.ConstructExit.NewBlock = true
			}
			if lastConstructStmt != nil {
				lastConstructStmt.ControlSuccessor = parent.ConstructExit
				lastConstructStmt = nil
			}

		// Constructs: set (unstructured) construct exit targets.
		case *ast.CaseConstruct:
			b.setConstructExit(eval)
			eval.Unstructured = true
		case *ast.DoConstruct:
			b.setConstructExit(eval)
		case *ast.IfConstruct:
			b.setConstructExit(eval)

		// I/O statements.
		case *ast.ReadStmt:
			b.analyzeIoBranches(eval, s.BranchLabels(), s.Format)
		case *ast.WriteStmt:
			b.analyzeIoBranches(eval, s.BranchLabels(), s.Format)
		case *ast.PrintStmt:
			b.analyzeIoBranches(eval, nil, s.Format)
		case *ast.OpenStmt:
			b.analyzeIoBranches(eval, s.BranchLabels(), ast.Format{})
		case *ast.CloseStmt:
			b.analyzeIoBranches(eval, s.BranchLabels(), ast.Format{})
		case *ast.InquireStmt:
			b.analyzeIoBranches(eval, s.BranchLabels(), ast.Format{})
		case *ast.BackspaceStmt:
			b.analyzeIoBranches(eval, s.BranchLabels(), ast.Format{})
		case *ast.RewindStmt:
			b.analyzeIoBranches(eval, s.BranchLabels(), ast.Format{})
		case *ast.EndfileStmt:
			b.analyzeIoBranches(eval, s.BranchLabels(), ast.Format{})
		}

		// Analyze construct evaluations.
		if eval.Evaluations != nil {
			b.analyzeBranches(eval, eval.Evaluations)
		}

		// Insert branch links for an unstructured one-line IF statement.
		if lastIfStmt != nil && lastIfStmt != eval {
			// eval is the action substatement of the IF.
			if eval.LowerAsUnstructured() {
				eval.NewBlock = true
				b.markSuccessorAsNewBlock(eval)
				lastIfStmt.Unstructured = true
			}
			lastIfStmt.ControlSuccessor = eval.NonNopSuccessor()
			lastIfStmt = nil
		}

		// Set the successor of the last statement in an IF or SELECT block.
		if eval.ControlSuccessor == nil && eval.LexicalSuccessor != nil &&
			eval.LexicalSuccessor.isIntermediateConstructStmt() {
			eval.ControlSuccessor = parent.ConstructExit
			eval.LexicalSuccessor.NewBlock = true
		}

		// Propagate the unstructured flag to the enclosing construct.
		if parent != nil && eval.Unstructured {
			parent.Unstructured = true
		}

		// The successor of a branch starts a new block.
		if eval.ControlSuccessor != nil && eval.IsActionStmt() &&
			eval.LowerAsUnstructured() {
			b.markSuccessorAsNewBlock(eval)
		}
	}
}

// analyzeIoBranches marks ERR, EOR, and END specifier branch targets and
// classifies a statement with an integer (assigned) runtime format as
// unstructured.
func (b *builder) analyzeIoBranches(eval *Evaluation, labels []int, format ast.Format) {
	for _, label := range labels {
		b.markBranchTargetLabel(eval, label)
	}
	if format.Expr != nil {
		if b.table.ExprType(format.Expr, b.currentScope()).IsInteger() {
			eval.Unstructured = true
		}
	}
}

// setConstructExit sets the evaluation control reaches when the construct
// completes, possibly forwarded through enclosing construct exits.
func (b *builder) setConstructExit(eval *Evaluation) {
	last := eval.Evaluations[len(eval.Evaluations)-1]
	eval.ConstructExit = last.NonNopSuccessor()
}

// markBranchTarget records target as an explicit branch destination of
// source. A branch into the body of a construct from outside it (legacy
// code) makes the target and its enclosing constructs unstructured.
func (b *builder) markBranchTarget(source, target *Evaluation) {
	source.Unstructured = true
	if source.ControlSuccessor == nil {
		source.ControlSuccessor = target
	}
	target.NewBlock = true
	sourceConstruct := source.ParentConstruct
	targetConstruct := target.ParentConstruct
	if target.IsConstructStmt() && targetConstruct != nil &&
		targetConstruct.FirstNestedEvaluation() == target {
		// A branch to an initial construct statement is a branch to the
		// construct itself.
		targetConstruct = targetConstruct.ParentConstruct
	}
	if targetConstruct != nil {
		for sourceConstruct != nil && sourceConstruct != targetConstruct {
			sourceConstruct = sourceConstruct.ParentConstruct
		}
		if sourceConstruct != targetConstruct { // branch into a construct body
			for eval := target; eval != nil; eval = eval.ParentConstruct {
				eval.Unstructured = true
			}
		}
	}
}

func (b *builder) markBranchTargetLabel(source *Evaluation, label int) {
	if label == 0 {
		panic("pft: missing branch target label")
	}
	b.markBranchTarget(source, b.labelEvaluation(label))
}

func (b *builder) labelEvaluation(label int) *Evaluation {
	target := b.currentUnit().LabelEvaluations[label]
	if target == nil {
		panic("pft: missing branch target evaluation")
	}
	return target
}

// markSuccessorAsNewBlock marks the code-bearing successor of eval as the
// start of a new block.
func (b *builder) markSuccessorAsNewBlock(eval *Evaluation) {
	if successor := eval.NonNopSuccessor(); successor != nil {
		successor.NewBlock = true
	}
}

// loopConstruct resolves the DO construct a CYCLE or EXIT statement
// refers to: the named construct, or the innermost enclosing loop.
func (b *builder) loopConstruct(name string) *Evaluation {
	var construct *Evaluation
	if name == "" {
		if len(b.doStack) > 0 {
			construct = b.doStack[len(b.doStack)-1]
		}
	} else {
		construct = b.constructNames[name]
	}
	if construct == nil {
		panic("pft: missing CYCLE or EXIT construct")
	}
	return construct
}

func (b *builder) insertConstructName(name string, parent *Evaluation) {
	if name != "" {
		b.constructNames[name] = parent
	}
}
