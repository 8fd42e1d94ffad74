package ast

import (
	"strconv"

	"github.com/fortgo/fortgo/token"
)

// Identifier represents a variable or procedure name.
type Identifier struct {
	Value    string
	StartPos int
	EndPos   int
}

func (i *Identifier) expressionNode() {}
func (i *Identifier) AppendString(dst []byte) []byte {
	return append(dst, i.Value...)
}
func (i *Identifier) Pos() int { return i.StartPos }
func (i *Identifier) End() int { return i.EndPos }

// IntegerLiteral represents an integer literal.
type IntegerLiteral struct {
	Value    int64
	Kind     int // kind suffix, 0 for default
	StartPos int
	EndPos   int
}

func (il *IntegerLiteral) expressionNode() {}
func (il *IntegerLiteral) AppendString(dst []byte) []byte {
	dst = strconv.AppendInt(dst, il.Value, 10)
	if il.Kind != 0 {
		dst = append(dst, '_')
		dst = strconv.AppendInt(dst, int64(il.Kind), 10)
	}
	return dst
}
func (il *IntegerLiteral) Pos() int { return il.StartPos }
func (il *IntegerLiteral) End() int { return il.EndPos }

// RealLiteral represents a floating-point literal.
type RealLiteral struct {
	Value    float64
	Raw      string // original text, kept for round-trip printing
	StartPos int
	EndPos   int
}

func (rl *RealLiteral) expressionNode() {}
func (rl *RealLiteral) AppendString(dst []byte) []byte {
	if rl.Raw != "" {
		return append(dst, rl.Raw...)
	}
	return strconv.AppendFloat(dst, rl.Value, 'g', -1, 64)
}
func (rl *RealLiteral) Pos() int { return rl.StartPos }
func (rl *RealLiteral) End() int { return rl.EndPos }

// StringLiteral represents a character literal.
type StringLiteral struct {
	Value    string
	StartPos int
	EndPos   int
}

func (sl *StringLiteral) expressionNode() {}
func (sl *StringLiteral) AppendString(dst []byte) []byte {
	dst = append(dst, '\'')
	dst = append(dst, sl.Value...)
	dst = append(dst, '\'')
	return dst
}
func (sl *StringLiteral) Pos() int { return sl.StartPos }
func (sl *StringLiteral) End() int { return sl.EndPos }

// LogicalLiteral represents .TRUE. or .FALSE.
type LogicalLiteral struct {
	Value    bool
	StartPos int
	EndPos   int
}

func (ll *LogicalLiteral) expressionNode() {}
func (ll *LogicalLiteral) AppendString(dst []byte) []byte {
	if ll.Value {
		return append(dst, ".TRUE."...)
	}
	return append(dst, ".FALSE."...)
}
func (ll *LogicalLiteral) Pos() int { return ll.StartPos }
func (ll *LogicalLiteral) End() int { return ll.EndPos }

// BinaryExpr represents a binary operation (e.g. a + b, x .GT. y).
type BinaryExpr struct {
	Op       token.Token
	Left     Expression
	Right    Expression
	StartPos int
	EndPos   int
}

func (be *BinaryExpr) expressionNode() {}
func (be *BinaryExpr) AppendString(dst []byte) []byte {
	dst = be.Left.AppendString(dst)
	dst = append(dst, ' ')
	dst = append(dst, be.Op.String()...)
	dst = append(dst, ' ')
	return be.Right.AppendString(dst)
}
func (be *BinaryExpr) Pos() int { return be.StartPos }
func (be *BinaryExpr) End() int { return be.EndPos }

// UnaryExpr represents a unary operation (e.g. -x, .NOT. flag).
type UnaryExpr struct {
	Op       token.Token
	Operand  Expression
	StartPos int
	EndPos   int
}

func (ue *UnaryExpr) expressionNode() {}
func (ue *UnaryExpr) AppendString(dst []byte) []byte {
	dst = append(dst, ue.Op.String()...)
	return ue.Operand.AppendString(dst)
}
func (ue *UnaryExpr) Pos() int { return ue.StartPos }
func (ue *UnaryExpr) End() int { return ue.EndPos }

// FunctionCall represents a function reference (e.g. sqrt(x)).
type FunctionCall struct {
	Name     string
	Args     []Expression
	StartPos int
	EndPos   int
}

func (fc *FunctionCall) expressionNode() {}
func (fc *FunctionCall) AppendString(dst []byte) []byte {
	dst = append(dst, fc.Name...)
	dst = append(dst, '(')
	for i, arg := range fc.Args {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = arg.AppendString(dst)
	}
	return append(dst, ')')
}
func (fc *FunctionCall) Pos() int { return fc.StartPos }
func (fc *FunctionCall) End() int { return fc.EndPos }

// ArrayRef represents an array element reference (e.g. a(i, j)).
type ArrayRef struct {
	Name       string
	Subscripts []Expression
	StartPos   int
	EndPos     int
}

func (ar *ArrayRef) expressionNode() {}
func (ar *ArrayRef) AppendString(dst []byte) []byte {
	dst = append(dst, ar.Name...)
	dst = append(dst, '(')
	for i, sub := range ar.Subscripts {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = sub.AppendString(dst)
	}
	return append(dst, ')')
}
func (ar *ArrayRef) Pos() int { return ar.StartPos }
func (ar *ArrayRef) End() int { return ar.EndPos }

// ParenExpr represents a parenthesized expression.
type ParenExpr struct {
	Expr     Expression
	StartPos int
	EndPos   int
}

func (pe *ParenExpr) expressionNode() {}
func (pe *ParenExpr) AppendString(dst []byte) []byte {
	dst = append(dst, '(')
	dst = pe.Expr.AppendString(dst)
	return append(dst, ')')
}
func (pe *ParenExpr) Pos() int { return pe.StartPos }
func (pe *ParenExpr) End() int { return pe.EndPos }

// AlternateReturnArg represents a *label actual argument in a CALL
// statement. It is an expression only so it can ride in an argument list.
type AlternateReturnArg struct {
	Label    int
	StartPos int
	EndPos   int
}

func (ara *AlternateReturnArg) expressionNode() {}
func (ara *AlternateReturnArg) AppendString(dst []byte) []byte {
	dst = append(dst, '*')
	return strconv.AppendInt(dst, int64(ara.Label), 10)
}
func (ara *AlternateReturnArg) Pos() int { return ara.StartPos }
func (ara *AlternateReturnArg) End() int { return ara.EndPos }
