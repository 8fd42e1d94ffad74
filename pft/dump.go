package pft

import (
	"fmt"
	"io"
	"strings"

	"github.com/fortgo/fortgo/ast"
)

// Dump writes a textual rendering of the flow tree. Action and construct
// statements are numbered in lexical order; `^` marks the start of a new
// block, `*` marks reserved local blocks, `!` marks an unstructured
// evaluation, and `-> n` gives the control successor's number.
func (p *Program) Dump(w io.Writer) {
	for _, unit := range p.Units {
		switch u := unit.(type) {
		case *FunctionLikeUnit:
			dumpFunctionLikeUnit(w, u)
		case *ModuleLikeUnit:
			dumpModuleLikeUnit(w, u)
		case *BlockDataUnit:
			fmt.Fprintf(w, "BlockData %s\nEndBlockData\n\n", u.Stmt.Name)
		}
	}
}

func dumpFunctionLikeUnit(w io.Writer, unit *FunctionLikeUnit) {
	kind := functionKind(unit.Stmt)
	fmt.Fprintf(w, "%s %s\n", kind, unit.Name())
	dumpEvaluationList(w, unit.Evaluations, 1)
	if len(unit.Nested) > 0 {
		fmt.Fprintln(w, "\nContains")
		for _, nested := range unit.Nested {
			dumpFunctionLikeUnit(w, nested)
		}
		fmt.Fprintln(w, "EndContains")
	}
	fmt.Fprintf(w, "End %s %s\n\n", kind, unit.Name())
}

func dumpModuleLikeUnit(w io.Writer, unit *ModuleLikeUnit) {
	fmt.Fprintf(w, "Module %s\n", unit.Name())
	if len(unit.Nested) > 0 {
		fmt.Fprintln(w, "\nContains")
		for _, nested := range unit.Nested {
			dumpFunctionLikeUnit(w, nested)
		}
		fmt.Fprintln(w, "EndContains")
	}
	fmt.Fprintf(w, "End Module %s\n\n", unit.Name())
}

func functionKind(stmt ast.ProgramUnit) string {
	switch stmt.(type) {
	case *ast.ProgramBlock:
		return "Program"
	case *ast.Subroutine:
		return "Subroutine"
	case *ast.Function:
		return "Function"
	}
	return "Procedure"
}

func dumpEvaluationList(w io.Writer, list []*Evaluation, indent int) {
	for _, eval := range list {
		dumpEvaluation(w, eval, indent)
	}
}

func dumpEvaluation(w io.Writer, eval *Evaluation, indent int) {
	pad := strings.Repeat("  ", indent)
	name := evaluationName(eval)
	bang := ""
	if eval.Unstructured {
		bang = "!"
	}
	if eval.IsConstruct() {
		fmt.Fprintf(w, "%s<<%s%s>>", pad, name, bang)
		if eval.ConstructExit != nil {
			fmt.Fprintf(w, " -> %d", eval.ConstructExit.PrintIndex)
		}
		fmt.Fprintln(w)
		dumpEvaluationList(w, eval.Evaluations, indent+1)
		fmt.Fprintf(w, "%s<<End %s%s>>\n", pad, name, bang)
		return
	}
	fmt.Fprint(w, pad)
	if eval.PrintIndex != 0 {
		fmt.Fprintf(w, "%d ", eval.PrintIndex)
	}
	if eval.NewBlock {
		fmt.Fprint(w, "^")
	}
	if eval.LocalBlocks > 0 {
		fmt.Fprint(w, "*")
	}
	fmt.Fprint(w, name, bang)
	if eval.IsActionStmt() || eval.IsConstructStmt() {
		if eval.ControlSuccessor != nil {
			fmt.Fprintf(w, " -> %d", eval.ControlSuccessor.PrintIndex)
		}
	} else if _, isEntry := eval.Stmt.(*ast.EntryStmt); isEntry && eval.LexicalSuccessor != nil {
		fmt.Fprintf(w, " -> %d", eval.LexicalSuccessor.PrintIndex)
	}
	if eval.Label != 0 {
		fmt.Fprintf(w, ": %d", eval.Label)
	}
	fmt.Fprintln(w)
}

func evaluationName(eval *Evaluation) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", eval.Stmt), "*ast.")
}

// DumpVariables writes a unit's allocation-ordered variable list.
// Aggregate stores print their interval and member names.
func DumpVariables(w io.Writer, vars []Variable) {
	for _, v := range vars {
		if v.IsAggregateStore() {
			fmt.Fprintf(w, "AggregateStore[%d..%d)", v.Store.Offset,
				v.Store.Offset+v.Store.Size)
			if v.Global {
				fmt.Fprint(w, " global")
			}
			for _, member := range v.Store.Members {
				fmt.Fprintf(w, " %s", member.Name())
			}
			fmt.Fprintln(w)
			continue
		}
		fmt.Fprintf(w, "%s: depth=%d", v.Sym.Name(), v.Depth)
		if v.Global {
			fmt.Fprint(w, " global")
		}
		if v.HeapAlloc {
			fmt.Fprint(w, " heap")
		}
		if v.Pointer {
			fmt.Fprint(w, " pointer")
		}
		if v.Target {
			fmt.Fprint(w, " target")
		}
		if v.Aliaser {
			fmt.Fprintf(w, " alias(%d+%d)", v.AliasOffset, v.Sym.Offset()-v.AliasOffset)
		}
		fmt.Fprintln(w)
	}
}
