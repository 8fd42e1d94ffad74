package ast

import "strconv"

// Construct is a multi-statement control structure. Its header, footer and
// any intermediate statements are themselves nodes so that each can carry a
// label and participate in control flow individually.
type Construct interface {
	Statement
	constructNode()
}

// ---- IF construct ----

// IfThenStmt is the IF (cond) THEN header of an IF construct.
type IfThenStmt struct {
	Name      string // construct name, empty if unnamed
	Label     int
	Condition Expression
	StartPos  int
	EndPos    int
}

func (its *IfThenStmt) statementNode() {}
func (its *IfThenStmt) AppendString(dst []byte) []byte {
	if its.Name != "" {
		dst = append(dst, its.Name...)
		dst = append(dst, ": "...)
	}
	dst = append(dst, "IF ("...)
	dst = its.Condition.AppendString(dst)
	return append(dst, ") THEN"...)
}
func (its *IfThenStmt) Pos() int { return its.StartPos }
func (its *IfThenStmt) End() int { return its.EndPos }

// ElseIfStmt is an ELSE IF (cond) THEN statement.
type ElseIfStmt struct {
	Name      string
	Label     int
	Condition Expression
	StartPos  int
	EndPos    int
}

func (eis *ElseIfStmt) statementNode() {}
func (eis *ElseIfStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "ELSE IF ("...)
	dst = eis.Condition.AppendString(dst)
	return append(dst, ") THEN"...)
}
func (eis *ElseIfStmt) Pos() int { return eis.StartPos }
func (eis *ElseIfStmt) End() int { return eis.EndPos }

// ElseStmt is an ELSE statement.
type ElseStmt struct {
	Name     string
	Label    int
	StartPos int
	EndPos   int
}

func (es *ElseStmt) statementNode() {}
func (es *ElseStmt) AppendString(dst []byte) []byte {
	return append(dst, "ELSE"...)
}
func (es *ElseStmt) Pos() int { return es.StartPos }
func (es *ElseStmt) End() int { return es.EndPos }

// EndIfStmt is an END IF statement.
type EndIfStmt struct {
	Name     string
	Label    int
	StartPos int
	EndPos   int
}

func (eis *EndIfStmt) statementNode() {}
func (eis *EndIfStmt) AppendString(dst []byte) []byte {
	return append(dst, "END IF"...)
}
func (eis *EndIfStmt) Pos() int { return eis.StartPos }
func (eis *EndIfStmt) End() int { return eis.EndPos }

// ElseIfBlock pairs an ELSE IF statement with its body.
type ElseIfBlock struct {
	Stmt *ElseIfStmt
	Body []Statement
}

// ElseBlock pairs an ELSE statement with its body.
type ElseBlock struct {
	Stmt *ElseStmt
	Body []Statement
}

// IfConstruct represents IF (cond) THEN ... [ELSE IF ...]... [ELSE ...] END IF.
type IfConstruct struct {
	IfThen  *IfThenStmt
	Body    []Statement
	ElseIfs []ElseIfBlock
	Else    *ElseBlock
	EndIf   *EndIfStmt
}

func (ic *IfConstruct) statementNode() {}
func (ic *IfConstruct) constructNode() {}
func (ic *IfConstruct) AppendString(dst []byte) []byte {
	dst = ic.IfThen.AppendString(dst)
	dst = append(dst, " ... "...)
	return ic.EndIf.AppendString(dst)
}
func (ic *IfConstruct) Pos() int { return ic.IfThen.Pos() }
func (ic *IfConstruct) End() int { return ic.EndIf.End() }

// ---- DO construct ----

// LoopBounds is the classic do-variable control: var = start, end [, step].
type LoopBounds struct {
	Variable string
	Start    Expression
	Limit    Expression
	Step     Expression // nil for the default step of 1
}

// ConcurrentBounds is one index range of a DO CONCURRENT header.
type ConcurrentBounds struct {
	Variable string
	Lower    Expression
	Upper    Expression
	Step     Expression
}

// ConcurrentControl is the (index-spec..., [mask]) header of DO CONCURRENT.
type ConcurrentControl struct {
	Controls []ConcurrentBounds
	Mask     Expression // scalar-mask-expr, nil if absent
}

// LoopControl selects the loop form. At most one field is set; all nil
// means an infinite DO.
type LoopControl struct {
	Bounds     *LoopBounds
	While      Expression
	Concurrent *ConcurrentControl
}

// DoStmt is the DO header of a DO construct.
type DoStmt struct {
	Name     string // construct name, empty if unnamed
	Label    int
	Control  *LoopControl // nil for an infinite DO
	StartPos int
	EndPos   int
}

func (ds *DoStmt) statementNode() {}
func (ds *DoStmt) AppendString(dst []byte) []byte {
	if ds.Name != "" {
		dst = append(dst, ds.Name...)
		dst = append(dst, ": "...)
	}
	dst = append(dst, "DO"...)
	if ds.Control == nil {
		return dst
	}
	switch {
	case ds.Control.Bounds != nil:
		b := ds.Control.Bounds
		dst = append(dst, ' ')
		dst = append(dst, b.Variable...)
		dst = append(dst, " = "...)
		dst = b.Start.AppendString(dst)
		dst = append(dst, ", "...)
		dst = b.Limit.AppendString(dst)
		if b.Step != nil {
			dst = append(dst, ", "...)
			dst = b.Step.AppendString(dst)
		}
	case ds.Control.While != nil:
		dst = append(dst, " WHILE ("...)
		dst = ds.Control.While.AppendString(dst)
		dst = append(dst, ')')
	case ds.Control.Concurrent != nil:
		dst = append(dst, " CONCURRENT ("...)
		for i, c := range ds.Control.Concurrent.Controls {
			if i > 0 {
				dst = append(dst, ", "...)
			}
			dst = append(dst, c.Variable...)
			dst = append(dst, '=')
			dst = c.Lower.AppendString(dst)
			dst = append(dst, ':')
			dst = c.Upper.AppendString(dst)
		}
		if ds.Control.Concurrent.Mask != nil {
			dst = append(dst, ", "...)
			dst = ds.Control.Concurrent.Mask.AppendString(dst)
		}
		dst = append(dst, ')')
	}
	return dst
}
func (ds *DoStmt) Pos() int { return ds.StartPos }
func (ds *DoStmt) End() int { return ds.EndPos }

// EndDoStmt is the END DO footer of a DO construct.
type EndDoStmt struct {
	Name     string
	Label    int
	StartPos int
	EndPos   int
}

func (eds *EndDoStmt) statementNode() {}
func (eds *EndDoStmt) AppendString(dst []byte) []byte {
	return append(dst, "END DO"...)
}
func (eds *EndDoStmt) Pos() int { return eds.StartPos }
func (eds *EndDoStmt) End() int { return eds.EndPos }

// DoConstruct represents DO ... END DO in any of its control forms.
type DoConstruct struct {
	Do    *DoStmt
	Body  []Statement
	EndDo *EndDoStmt
}

func (dc *DoConstruct) statementNode() {}
func (dc *DoConstruct) constructNode() {}
func (dc *DoConstruct) AppendString(dst []byte) []byte {
	dst = dc.Do.AppendString(dst)
	dst = append(dst, " ... "...)
	return dc.EndDo.AppendString(dst)
}
func (dc *DoConstruct) Pos() int { return dc.Do.Pos() }
func (dc *DoConstruct) End() int { return dc.EndDo.End() }

// ---- SELECT CASE construct ----

// SelectCaseStmt is the SELECT CASE (expr) header.
type SelectCaseStmt struct {
	Name     string
	Label    int
	Expr     Expression
	StartPos int
	EndPos   int
}

func (scs *SelectCaseStmt) statementNode() {}
func (scs *SelectCaseStmt) AppendString(dst []byte) []byte {
	if scs.Name != "" {
		dst = append(dst, scs.Name...)
		dst = append(dst, ": "...)
	}
	dst = append(dst, "SELECT CASE ("...)
	dst = scs.Expr.AppendString(dst)
	return append(dst, ')')
}
func (scs *SelectCaseStmt) Pos() int { return scs.StartPos }
func (scs *SelectCaseStmt) End() int { return scs.EndPos }

// CaseRange is one selector of a CASE statement: a single value, or a
// lower/upper range where either side may be nil for an open bound.
type CaseRange struct {
	Value Expression // set for a single-value selector
	Lower Expression
	Upper Expression
}

// CaseStmt is a CASE (...) or CASE DEFAULT statement.
type CaseStmt struct {
	Name      string
	Label     int
	Ranges    []CaseRange
	IsDefault bool
	StartPos  int
	EndPos    int
}

func (cs *CaseStmt) statementNode() {}
func (cs *CaseStmt) AppendString(dst []byte) []byte {
	if cs.IsDefault {
		return append(dst, "CASE DEFAULT"...)
	}
	dst = append(dst, "CASE ("...)
	for i, r := range cs.Ranges {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		switch {
		case r.Value != nil:
			dst = r.Value.AppendString(dst)
		default:
			if r.Lower != nil {
				dst = r.Lower.AppendString(dst)
			}
			dst = append(dst, ':')
			if r.Upper != nil {
				dst = r.Upper.AppendString(dst)
			}
		}
	}
	return append(dst, ')')
}
func (cs *CaseStmt) Pos() int { return cs.StartPos }
func (cs *CaseStmt) End() int { return cs.EndPos }

// EndSelectStmt is the END SELECT footer.
type EndSelectStmt struct {
	Name     string
	Label    int
	StartPos int
	EndPos   int
}

func (ess *EndSelectStmt) statementNode() {}
func (ess *EndSelectStmt) AppendString(dst []byte) []byte {
	return append(dst, "END SELECT"...)
}
func (ess *EndSelectStmt) Pos() int { return ess.StartPos }
func (ess *EndSelectStmt) End() int { return ess.EndPos }

// CaseBlock pairs a CASE statement with its body.
type CaseBlock struct {
	Stmt *CaseStmt
	Body []Statement
}

// CaseConstruct represents SELECT CASE ... CASE... END SELECT.
type CaseConstruct struct {
	Select    *SelectCaseStmt
	Cases     []CaseBlock
	EndSelect *EndSelectStmt
}

func (cc *CaseConstruct) statementNode() {}
func (cc *CaseConstruct) constructNode() {}
func (cc *CaseConstruct) AppendString(dst []byte) []byte {
	dst = cc.Select.AppendString(dst)
	dst = append(dst, " ("...)
	dst = strconv.AppendInt(dst, int64(len(cc.Cases)), 10)
	dst = append(dst, " cases)"...)
	return dst
}
func (cc *CaseConstruct) Pos() int { return cc.Select.Pos() }
func (cc *CaseConstruct) End() int { return cc.EndSelect.End() }
