package symbol

import (
	"testing"

	"github.com/fortgo/fortgo/ast"
	"github.com/fortgo/fortgo/token"
)

func TestExprTypeLiterals(t *testing.T) {
	table := NewSymbolTable()
	scope := table.GlobalScope()

	tests := []struct {
		expr ast.Expression
		want token.Token
	}{
		{&ast.IntegerLiteral{Value: 1}, token.INTEGER},
		{&ast.RealLiteral{Value: 1.5}, token.REAL},
		{&ast.LogicalLiteral{Value: true}, token.LOGICAL},
		{&ast.StringLiteral{Value: "hi"}, token.CHARACTER},
	}
	for _, tt := range tests {
		typ := table.ExprType(tt.expr, scope)
		if typ == nil || typ.Base != tt.want {
			t.Errorf("ExprType(%T) = %v, want %s", tt.expr, typ, tt.want)
		}
	}
}

func TestExprTypePromotion(t *testing.T) {
	table := NewSymbolTable()
	scope := table.GlobalScope()

	// INTEGER + REAL promotes to REAL.
	mixed := &ast.BinaryExpr{
		Op:    token.Plus,
		Left:  &ast.IntegerLiteral{Value: 1},
		Right: &ast.RealLiteral{Value: 2.0},
	}
	if typ := table.ExprType(mixed, scope); typ == nil || typ.Base != token.REAL {
		t.Errorf("INTEGER + REAL = %v, want REAL", typ)
	}

	// REAL compared to REAL yields LOGICAL.
	cmp := &ast.BinaryExpr{
		Op:    token.GT,
		Left:  &ast.RealLiteral{Value: 1},
		Right: &ast.RealLiteral{Value: 2},
	}
	if typ := table.ExprType(cmp, scope); typ == nil || typ.Base != token.LOGICAL {
		t.Errorf("comparison type = %v, want LOGICAL", typ)
	}

	// .NOT. yields LOGICAL.
	not := &ast.UnaryExpr{Op: token.NOT, Operand: &ast.LogicalLiteral{}}
	if typ := table.ExprType(not, scope); typ == nil || typ.Base != token.LOGICAL {
		t.Errorf(".NOT. type = %v, want LOGICAL", typ)
	}
}

func TestExprTypeIdentifiers(t *testing.T) {
	table := NewSymbolTable()
	scope := table.GlobalScope()

	declared := NewSymbol("count", SymVariable)
	declared.SetType(&ResolvedType{Base: token.INTEGER, Kind: 8})
	if err := scope.Define(declared); err != nil {
		t.Fatal(err)
	}

	typ := table.ExprType(&ast.Identifier{Value: "count"}, scope)
	if typ == nil || typ.Base != token.INTEGER || typ.Kind != 8 {
		t.Errorf("declared identifier type = %v, want INTEGER(8)", typ)
	}

	// Undeclared names fall back to implicit rules.
	typ = table.ExprType(&ast.Identifier{Value: "jvar"}, scope)
	if typ == nil || typ.Base != token.INTEGER {
		t.Errorf("implicit J-name type = %v, want INTEGER", typ)
	}
	typ = table.ExprType(&ast.Identifier{Value: "tvar"}, scope)
	if typ == nil || typ.Base != token.REAL {
		t.Errorf("implicit T-name type = %v, want REAL", typ)
	}
}

func TestExprTypeIntrinsicCall(t *testing.T) {
	table := NewSymbolTable()
	scope := table.GlobalScope()

	call := &ast.FunctionCall{Name: "SQRT", Args: []ast.Expression{
		&ast.RealLiteral{Value: 2},
	}}
	if typ := table.ExprType(call, scope); typ == nil || typ.Base != token.REAL {
		t.Errorf("SQRT type = %v, want REAL", typ)
	}
}

func TestEvalConstInt(t *testing.T) {
	table := NewSymbolTable()
	scope := table.GlobalScope()

	param := NewSymbol("n", SymParameter)
	param.SetInitExpr(&ast.IntegerLiteral{Value: 10})
	if err := scope.Define(param); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		expr ast.Expression
		want int
		ok   bool
	}{
		{&ast.IntegerLiteral{Value: 7}, 7, true},
		{&ast.UnaryExpr{Op: token.Minus, Operand: &ast.IntegerLiteral{Value: 3}}, -3, true},
		{&ast.BinaryExpr{Op: token.Plus,
			Left:  &ast.IntegerLiteral{Value: 2},
			Right: &ast.IntegerLiteral{Value: 3}}, 5, true},
		{&ast.BinaryExpr{Op: token.DoubleStar,
			Left:  &ast.IntegerLiteral{Value: 2},
			Right: &ast.IntegerLiteral{Value: 10}}, 1024, true},
		{&ast.Identifier{Value: "n"}, 10, true},
		{&ast.BinaryExpr{Op: token.Asterisk,
			Left:  &ast.Identifier{Value: "n"},
			Right: &ast.IntegerLiteral{Value: 4}}, 40, true},
		{&ast.Identifier{Value: "unknown"}, 0, false},
		{&ast.RealLiteral{Value: 1.5}, 0, false},
	}
	for _, tt := range tests {
		got, ok := EvalConstInt(tt.expr, scope)
		if ok != tt.ok || got != tt.want {
			t.Errorf("EvalConstInt(%T) = %d, %t, want %d, %t",
				tt.expr, got, ok, tt.want, tt.ok)
		}
	}
}
