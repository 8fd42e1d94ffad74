package symbol

import (
	"github.com/fortgo/fortgo/ast"
	"github.com/fortgo/fortgo/token"
)

// ExprType computes the result type of an expression evaluated in scope.
// It returns nil when the type cannot be determined.
func (st *SymbolTable) ExprType(expr ast.Expression, scope *Scope) *ResolvedType {
	if expr == nil {
		return nil
	}

	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return &ResolvedType{Base: token.INTEGER, Kind: e.Kind}

	case *ast.RealLiteral:
		return &ResolvedType{Base: token.REAL}

	case *ast.StringLiteral:
		return &ResolvedType{Base: token.CHARACTER, CharLen: len(e.Value)}

	case *ast.LogicalLiteral:
		return &ResolvedType{Base: token.LOGICAL}

	case *ast.Identifier:
		if sym := scope.Lookup(e.Value); sym != nil && sym.Type() != nil {
			return sym.Type()
		}
		typ, _ := scope.Implicit().TypeForName(e.Value)
		return typ

	case *ast.BinaryExpr:
		return st.binaryExprType(e, scope)

	case *ast.UnaryExpr:
		operandType := st.ExprType(e.Operand, scope)
		if e.Op == token.NOT {
			return &ResolvedType{Base: token.LOGICAL}
		}
		return operandType

	case *ast.FunctionCall:
		if sym := scope.Lookup(e.Name); sym != nil && sym.Type() != nil {
			return sym.Type()
		}
		if intrinsic := st.Intrinsic(e.Name); intrinsic != nil {
			return &ResolvedType{Base: intrinsic.ReturnType()}
		}
		typ, _ := scope.Implicit().TypeForName(e.Name)
		return typ

	case *ast.ArrayRef:
		// Element type is the array's type.
		if sym := scope.Lookup(e.Name); sym != nil && sym.Type() != nil {
			return sym.Type()
		}
		typ, _ := scope.Implicit().TypeForName(e.Name)
		return typ

	case *ast.ParenExpr:
		return st.ExprType(e.Expr, scope)

	default:
		return nil
	}
}

func (st *SymbolTable) binaryExprType(expr *ast.BinaryExpr, scope *Scope) *ResolvedType {
	leftType := st.ExprType(expr.Left, scope)
	rightType := st.ExprType(expr.Right, scope)
	if leftType == nil || rightType == nil {
		return nil
	}

	switch {
	case expr.Op == token.Plus || expr.Op == token.Minus ||
		expr.Op == token.Asterisk || expr.Op == token.Slash ||
		expr.Op == token.DoubleStar:
		return promoteNumericTypes(leftType, rightType)

	case expr.Op == token.StringConcat:
		return &ResolvedType{
			Base:    token.CHARACTER,
			CharLen: leftType.CharLen + rightType.CharLen,
		}

	case expr.Op.IsRelational(), expr.Op.IsLogicalOp():
		return &ResolvedType{Base: token.LOGICAL}

	default:
		return nil
	}
}

// promoteNumericTypes applies Fortran type promotion rules for mixed-type
// arithmetic. Promotion hierarchy: INTEGER < REAL < DOUBLE PRECISION < COMPLEX.
func promoteNumericTypes(t1, t2 *ResolvedType) *ResolvedType {
	rank := func(t *ResolvedType) int {
		switch t.Base {
		case token.INTEGER:
			return 1
		case token.REAL:
			if t.Kind == 8 {
				return 3 // REAL*8 ranks with DOUBLE PRECISION
			}
			return 2
		case token.DOUBLEPRECISION:
			return 3
		case token.COMPLEX:
			if t.Kind == 8 {
				return 5
			}
			return 4
		default:
			return 0
		}
	}

	if rank(t1) >= rank(t2) {
		return t1
	}
	return t2
}

// EvalConstInt evaluates an integer constant expression. Named constants
// (PARAMETER) fold through their initializers.
func EvalConstInt(expr ast.Expression, scope *Scope) (int, bool) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return int(e.Value), true

	case *ast.ParenExpr:
		return EvalConstInt(e.Expr, scope)

	case *ast.UnaryExpr:
		v, ok := EvalConstInt(e.Operand, scope)
		if !ok {
			return 0, false
		}
		switch e.Op {
		case token.Plus:
			return v, true
		case token.Minus:
			return -v, true
		}
		return 0, false

	case *ast.BinaryExpr:
		left, ok := EvalConstInt(e.Left, scope)
		if !ok {
			return 0, false
		}
		right, ok := EvalConstInt(e.Right, scope)
		if !ok {
			return 0, false
		}
		switch e.Op {
		case token.Plus:
			return left + right, true
		case token.Minus:
			return left - right, true
		case token.Asterisk:
			return left * right, true
		case token.Slash:
			if right == 0 {
				return 0, false
			}
			return left / right, true
		case token.DoubleStar:
			if right < 0 {
				return 0, false
			}
			result := 1
			for i := 0; i < right; i++ {
				result *= left
			}
			return result, true
		}
		return 0, false

	case *ast.Identifier:
		if scope == nil {
			return 0, false
		}
		sym := scope.Lookup(e.Value)
		if sym == nil || sym.Kind() != SymParameter || sym.InitExpr() == nil {
			return 0, false
		}
		return EvalConstInt(sym.InitExpr(), sym.Scope())

	default:
		return 0, false
	}
}
