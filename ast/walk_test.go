package ast

import (
	"testing"

	"github.com/fortgo/fortgo/token"
)

// ident is a shorthand constructor for tests.
func ident(name string) *Identifier {
	return &Identifier{Value: name}
}

func intLit(v int64) *IntegerLiteral {
	return &IntegerLiteral{Value: v}
}

func assign(target, value Expression) *AssignmentStmt {
	return &AssignmentStmt{Target: target, Value: value}
}

func TestInspectVisitsExpressions(t *testing.T) {
	// x = a + f(b, c(i))
	stmt := assign(ident("x"), &BinaryExpr{
		Op:   token.Plus,
		Left: ident("a"),
		Right: &FunctionCall{
			Name: "f",
			Args: []Expression{
				ident("b"),
				&ArrayRef{Name: "c", Subscripts: []Expression{ident("i")}},
			},
		},
	})

	var idents []string
	Inspect(stmt, func(n Node) bool {
		if id, ok := n.(*Identifier); ok {
			idents = append(idents, id.Value)
		}
		return true
	})

	want := []string{"x", "a", "b", "i"}
	if len(idents) != len(want) {
		t.Fatalf("got %d identifiers %v, want %d", len(idents), idents, len(want))
	}
	for i := range want {
		if idents[i] != want[i] {
			t.Errorf("identifier %d: got %q, want %q", i, idents[i], want[i])
		}
	}
}

func TestWalkPrePostLexicalOrder(t *testing.T) {
	// IF (p) THEN / x = 1 / ELSE / y = 2 / END IF followed by END-like
	// ordering checks: header, then-body, else stmt, else-body, footer.
	ifc := &IfConstruct{
		IfThen: &IfThenStmt{Condition: ident("p")},
		Body:   []Statement{assign(ident("x"), intLit(1))},
		Else: &ElseBlock{
			Stmt: &ElseStmt{},
			Body: []Statement{assign(ident("y"), intLit(2))},
		},
		EndIf: &EndIfStmt{},
	}

	var order []string
	v := orderVisitor{order: &order}
	WalkPrePost(v, ifc)

	want := []string{"IfConstruct", "IfThenStmt", "AssignmentStmt", "ElseStmt", "AssignmentStmt", "EndIfStmt"}
	got := filterStatements(order)
	if len(got) != len(want) {
		t.Fatalf("statement order %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

type orderVisitor struct {
	order *[]string
}

func (v orderVisitor) Pre(n Node) bool {
	*v.order = append(*v.order, nodeName(n))
	return true
}

func (v orderVisitor) Post(Node) {}

func nodeName(n Node) string {
	switch n.(type) {
	case *IfConstruct:
		return "IfConstruct"
	case *IfThenStmt:
		return "IfThenStmt"
	case *ElseStmt:
		return "ElseStmt"
	case *EndIfStmt:
		return "EndIfStmt"
	case *AssignmentStmt:
		return "AssignmentStmt"
	case *DoConstruct:
		return "DoConstruct"
	case *DoStmt:
		return "DoStmt"
	case *EndDoStmt:
		return "EndDoStmt"
	default:
		return ""
	}
}

func filterStatements(names []string) []string {
	var out []string
	for _, name := range names {
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

func TestWalkPrePostSkipsChildrenOnFalse(t *testing.T) {
	do := &DoConstruct{
		Do: &DoStmt{Control: &LoopControl{Bounds: &LoopBounds{
			Variable: "i", Start: intLit(1), Limit: intLit(10),
		}}},
		Body:  []Statement{assign(ident("x"), ident("i"))},
		EndDo: &EndDoStmt{},
	}

	var visited []string
	v := pruneVisitor{visited: &visited}
	WalkPrePost(v, do)

	for _, name := range visited {
		if name == "AssignmentStmt" || name == "DoStmt" {
			t.Errorf("visited %s inside pruned construct", name)
		}
	}
	if len(visited) == 0 || visited[0] != "DoConstruct" {
		t.Fatalf("expected DoConstruct first, got %v", visited)
	}
}

type pruneVisitor struct {
	visited *[]string
}

func (v pruneVisitor) Pre(n Node) bool {
	if name := nodeName(n); name != "" {
		*v.visited = append(*v.visited, name)
	}
	_, isDo := n.(*DoConstruct)
	return !isDo // prune below DO constructs
}

func (v pruneVisitor) Post(Node) {}

func TestLabeledStmtUnwrap(t *testing.T) {
	inner := &ContinueStmt{}
	labeled := &LabeledStmt{Label: 100, Statement: inner}

	if got := Unlabeled(labeled); got != Statement(inner) {
		t.Errorf("Unlabeled returned %T, want the wrapped statement", got)
	}
	if got := Unlabeled(inner); got != Statement(inner) {
		t.Errorf("Unlabeled of a bare statement returned %T", got)
	}
	if got := Label(labeled); got != 100 {
		t.Errorf("Label = %d, want 100", got)
	}
	if got := Label(inner); got != 0 {
		t.Errorf("Label of unlabeled = %d, want 0", got)
	}
}

func TestAppendStringRoundTrips(t *testing.T) {
	tests := []struct {
		node Node
		want string
	}{
		{assign(ident("x"), intLit(42)), "x = 42"},
		{&GotoStmt{Label: 100}, "GOTO 100"},
		{&ComputedGotoStmt{Labels: []int{10, 20}, Expr: ident("k")}, "GOTO (10, 20), k"},
		{&ArithmeticIfStmt{Expr: ident("v"), Negative: 1, Zero: 2, Positive: 3}, "IF (v) 1, 2, 3"},
		{&CycleStmt{Name: "outer"}, "CYCLE outer"},
		{&AssignStmt{Label: 50, Variable: "jump"}, "ASSIGN 50 TO jump"},
		{&LabeledStmt{Label: 10, Statement: &ContinueStmt{}}, "10 CONTINUE"},
	}
	for _, tt := range tests {
		got := string(tt.node.AppendString(nil))
		if got != tt.want {
			t.Errorf("AppendString = %q, want %q", got, tt.want)
		}
	}
}
