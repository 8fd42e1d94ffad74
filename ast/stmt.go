package ast

import "strconv"

// AssignmentStmt represents an assignment statement (variable = expression).
type AssignmentStmt struct {
	Target   Expression // Identifier or ArrayRef
	Value    Expression
	StartPos int
	EndPos   int
}

func (as *AssignmentStmt) statementNode() {}
func (as *AssignmentStmt) AppendString(dst []byte) []byte {
	dst = as.Target.AppendString(dst)
	dst = append(dst, " = "...)
	return as.Value.AppendString(dst)
}
func (as *AssignmentStmt) Pos() int { return as.StartPos }
func (as *AssignmentStmt) End() int { return as.EndPos }

// PointerAssignmentStmt represents a pointer assignment (ptr => target).
type PointerAssignmentStmt struct {
	Target   Expression
	Value    Expression
	StartPos int
	EndPos   int
}

func (pas *PointerAssignmentStmt) statementNode() {}
func (pas *PointerAssignmentStmt) AppendString(dst []byte) []byte {
	dst = pas.Target.AppendString(dst)
	dst = append(dst, " => "...)
	return pas.Value.AppendString(dst)
}
func (pas *PointerAssignmentStmt) Pos() int { return pas.StartPos }
func (pas *PointerAssignmentStmt) End() int { return pas.EndPos }

// CallStmt represents a CALL statement. Arguments may include
// AlternateReturnArg entries naming branch-target labels.
type CallStmt struct {
	Name     string
	Args     []Expression
	StartPos int
	EndPos   int
}

func (cs *CallStmt) statementNode() {}
func (cs *CallStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "CALL "...)
	dst = append(dst, cs.Name...)
	dst = append(dst, '(')
	for i, arg := range cs.Args {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = arg.AppendString(dst)
	}
	return append(dst, ')')
}
func (cs *CallStmt) Pos() int { return cs.StartPos }
func (cs *CallStmt) End() int { return cs.EndPos }

// AltReturnLabels returns the labels of any alternate-return arguments in
// lexical order.
func (cs *CallStmt) AltReturnLabels() []int {
	var labels []int
	for _, arg := range cs.Args {
		if ara, ok := arg.(*AlternateReturnArg); ok {
			labels = append(labels, ara.Label)
		}
	}
	return labels
}

// ReturnStmt represents a RETURN statement. A non-nil Value selects an
// alternate return.
type ReturnStmt struct {
	Value    Expression
	StartPos int
	EndPos   int
}

func (rs *ReturnStmt) statementNode() {}
func (rs *ReturnStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "RETURN"...)
	if rs.Value != nil {
		dst = append(dst, ' ')
		dst = rs.Value.AppendString(dst)
	}
	return dst
}
func (rs *ReturnStmt) Pos() int { return rs.StartPos }
func (rs *ReturnStmt) End() int { return rs.EndPos }

// StopStmt represents a STOP statement.
type StopStmt struct {
	Code     Expression // optional stop code, nil if none
	StartPos int
	EndPos   int
}

func (ss *StopStmt) statementNode() {}
func (ss *StopStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "STOP"...)
	if ss.Code != nil {
		dst = append(dst, ' ')
		dst = ss.Code.AppendString(dst)
	}
	return dst
}
func (ss *StopStmt) Pos() int { return ss.StartPos }
func (ss *StopStmt) End() int { return ss.EndPos }

// PauseStmt represents a PAUSE statement.
type PauseStmt struct {
	Code     Expression
	StartPos int
	EndPos   int
}

func (ps *PauseStmt) statementNode() {}
func (ps *PauseStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "PAUSE"...)
	if ps.Code != nil {
		dst = append(dst, ' ')
		dst = ps.Code.AppendString(dst)
	}
	return dst
}
func (ps *PauseStmt) Pos() int { return ps.StartPos }
func (ps *PauseStmt) End() int { return ps.EndPos }

// ContinueStmt represents a CONTINUE statement.
type ContinueStmt struct {
	StartPos int
	EndPos   int
}

func (cs *ContinueStmt) statementNode() {}
func (cs *ContinueStmt) AppendString(dst []byte) []byte {
	return append(dst, "CONTINUE"...)
}
func (cs *ContinueStmt) Pos() int { return cs.StartPos }
func (cs *ContinueStmt) End() int { return cs.EndPos }

// GotoStmt represents an unconditional GOTO.
type GotoStmt struct {
	Label    int
	StartPos int
	EndPos   int
}

func (gs *GotoStmt) statementNode() {}
func (gs *GotoStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "GOTO "...)
	return strconv.AppendInt(dst, int64(gs.Label), 10)
}
func (gs *GotoStmt) Pos() int { return gs.StartPos }
func (gs *GotoStmt) End() int { return gs.EndPos }

// ComputedGotoStmt represents GOTO (l1, l2, ...), expr.
type ComputedGotoStmt struct {
	Labels   []int
	Expr     Expression
	StartPos int
	EndPos   int
}

func (cgs *ComputedGotoStmt) statementNode() {}
func (cgs *ComputedGotoStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "GOTO ("...)
	for i, label := range cgs.Labels {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = strconv.AppendInt(dst, int64(label), 10)
	}
	dst = append(dst, "), "...)
	return cgs.Expr.AppendString(dst)
}
func (cgs *ComputedGotoStmt) Pos() int { return cgs.StartPos }
func (cgs *ComputedGotoStmt) End() int { return cgs.EndPos }

// AssignStmt represents the obsolescent ASSIGN label TO variable.
type AssignStmt struct {
	Label    int
	Variable string
	StartPos int
	EndPos   int
}

func (as *AssignStmt) statementNode() {}
func (as *AssignStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "ASSIGN "...)
	dst = strconv.AppendInt(dst, int64(as.Label), 10)
	dst = append(dst, " TO "...)
	return append(dst, as.Variable...)
}
func (as *AssignStmt) Pos() int { return as.StartPos }
func (as *AssignStmt) End() int { return as.EndPos }

// AssignedGotoStmt represents GOTO variable [(l1, l2, ...)].
type AssignedGotoStmt struct {
	Variable string
	Labels   []int // optional allowed-label list
	StartPos int
	EndPos   int
}

func (ags *AssignedGotoStmt) statementNode() {}
func (ags *AssignedGotoStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "GOTO "...)
	dst = append(dst, ags.Variable...)
	if len(ags.Labels) > 0 {
		dst = append(dst, " ("...)
		for i, label := range ags.Labels {
			if i > 0 {
				dst = append(dst, ", "...)
			}
			dst = strconv.AppendInt(dst, int64(label), 10)
		}
		dst = append(dst, ')')
	}
	return dst
}
func (ags *AssignedGotoStmt) Pos() int { return ags.StartPos }
func (ags *AssignedGotoStmt) End() int { return ags.EndPos }

// ArithmeticIfStmt represents IF (expr) neg, zero, pos.
type ArithmeticIfStmt struct {
	Expr     Expression
	Negative int // label taken when expr < 0
	Zero     int // label taken when expr == 0
	Positive int // label taken when expr > 0
	StartPos int
	EndPos   int
}

func (ais *ArithmeticIfStmt) statementNode() {}
func (ais *ArithmeticIfStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "IF ("...)
	dst = ais.Expr.AppendString(dst)
	dst = append(dst, ") "...)
	dst = strconv.AppendInt(dst, int64(ais.Negative), 10)
	dst = append(dst, ", "...)
	dst = strconv.AppendInt(dst, int64(ais.Zero), 10)
	dst = append(dst, ", "...)
	return strconv.AppendInt(dst, int64(ais.Positive), 10)
}
func (ais *ArithmeticIfStmt) Pos() int { return ais.StartPos }
func (ais *ArithmeticIfStmt) End() int { return ais.EndPos }

// IfStmt represents a one-line logical IF: IF (cond) action.
type IfStmt struct {
	Condition Expression
	Action    Statement // single action statement, never a construct
	StartPos  int
	EndPos    int
}

func (is *IfStmt) statementNode() {}
func (is *IfStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "IF ("...)
	dst = is.Condition.AppendString(dst)
	dst = append(dst, ") "...)
	return is.Action.AppendString(dst)
}
func (is *IfStmt) Pos() int { return is.StartPos }
func (is *IfStmt) End() int { return is.EndPos }

// CycleStmt represents a CYCLE statement, optionally naming a DO construct.
type CycleStmt struct {
	Name     string
	StartPos int
	EndPos   int
}

func (cs *CycleStmt) statementNode() {}
func (cs *CycleStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "CYCLE"...)
	if cs.Name != "" {
		dst = append(dst, ' ')
		dst = append(dst, cs.Name...)
	}
	return dst
}
func (cs *CycleStmt) Pos() int { return cs.StartPos }
func (cs *CycleStmt) End() int { return cs.EndPos }

// ExitStmt represents an EXIT statement, optionally naming a DO construct.
type ExitStmt struct {
	Name     string
	StartPos int
	EndPos   int
}

func (es *ExitStmt) statementNode() {}
func (es *ExitStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "EXIT"...)
	if es.Name != "" {
		dst = append(dst, ' ')
		dst = append(dst, es.Name...)
	}
	return dst
}
func (es *ExitStmt) Pos() int { return es.StartPos }
func (es *ExitStmt) End() int { return es.EndPos }

// AllocateStmt represents an ALLOCATE statement.
type AllocateStmt struct {
	Objects  []Expression // ArrayRef with extent subscripts, or Identifier
	Stat     string       // STAT= variable name, empty if none
	StartPos int
	EndPos   int
}

func (as *AllocateStmt) statementNode() {}
func (as *AllocateStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "ALLOCATE ("...)
	for i, obj := range as.Objects {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = obj.AppendString(dst)
	}
	if as.Stat != "" {
		dst = append(dst, ", STAT="...)
		dst = append(dst, as.Stat...)
	}
	return append(dst, ')')
}
func (as *AllocateStmt) Pos() int { return as.StartPos }
func (as *AllocateStmt) End() int { return as.EndPos }

// DeallocateStmt represents a DEALLOCATE statement.
type DeallocateStmt struct {
	Objects  []Expression
	Stat     string
	StartPos int
	EndPos   int
}

func (ds *DeallocateStmt) statementNode() {}
func (ds *DeallocateStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "DEALLOCATE ("...)
	for i, obj := range ds.Objects {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = obj.AppendString(dst)
	}
	if ds.Stat != "" {
		dst = append(dst, ", STAT="...)
		dst = append(dst, ds.Stat...)
	}
	return append(dst, ')')
}
func (ds *DeallocateStmt) Pos() int { return ds.StartPos }
func (ds *DeallocateStmt) End() int { return ds.EndPos }

// NullifyStmt represents a NULLIFY statement.
type NullifyStmt struct {
	Objects  []Expression
	StartPos int
	EndPos   int
}

func (ns *NullifyStmt) statementNode() {}
func (ns *NullifyStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "NULLIFY ("...)
	for i, obj := range ns.Objects {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = obj.AppendString(dst)
	}
	return append(dst, ')')
}
func (ns *NullifyStmt) Pos() int { return ns.StartPos }
func (ns *NullifyStmt) End() int { return ns.EndPos }

// Format describes where a data-transfer statement takes its format from.
// Exactly one of the fields is set; the zero value means list-directed (*).
type Format struct {
	Label int        // FMT=label referencing a FORMAT statement
	Expr  Expression // runtime format: character or integer expression
}

// IsListDirected reports whether the format is the * list-directed form.
func (f Format) IsListDirected() bool { return f.Label == 0 && f.Expr == nil }

func (f Format) appendString(dst []byte) []byte {
	switch {
	case f.Label != 0:
		return strconv.AppendInt(dst, int64(f.Label), 10)
	case f.Expr != nil:
		return f.Expr.AppendString(dst)
	default:
		return append(dst, '*')
	}
}

// IOControl is one specifier in an I/O control list, e.g. UNIT=u,
// IOSTAT=ios, ERR=100. Branch specifiers (ERR, EOR, END) carry a Label;
// the rest carry a Value expression.
type IOControl struct {
	Name  string // upper-case specifier keyword
	Value Expression
	Label int
}

func appendControls(dst []byte, controls []IOControl) []byte {
	for i, c := range controls {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = append(dst, c.Name...)
		dst = append(dst, '=')
		if c.Label != 0 {
			dst = strconv.AppendInt(dst, int64(c.Label), 10)
		} else if c.Value != nil {
			dst = c.Value.AppendString(dst)
		}
	}
	return dst
}

// branchLabels collects the ERR=, EOR= and END= labels from a control list.
func branchLabels(controls []IOControl) []int {
	var labels []int
	for _, c := range controls {
		switch c.Name {
		case "ERR", "EOR", "END":
			if c.Label != 0 {
				labels = append(labels, c.Label)
			}
		}
	}
	return labels
}

// ReadStmt represents a READ statement.
type ReadStmt struct {
	Controls []IOControl
	Format   Format
	Items    []Expression
	StartPos int
	EndPos   int
}

func (rs *ReadStmt) statementNode() {}
func (rs *ReadStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "READ ("...)
	dst = appendControls(dst, rs.Controls)
	dst = append(dst, ", FMT="...)
	dst = rs.Format.appendString(dst)
	dst = append(dst, ") "...)
	for i, item := range rs.Items {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = item.AppendString(dst)
	}
	return dst
}
func (rs *ReadStmt) Pos() int            { return rs.StartPos }
func (rs *ReadStmt) End() int            { return rs.EndPos }
func (rs *ReadStmt) BranchLabels() []int { return branchLabels(rs.Controls) }

// WriteStmt represents a WRITE statement.
type WriteStmt struct {
	Controls []IOControl
	Format   Format
	Items    []Expression
	StartPos int
	EndPos   int
}

func (ws *WriteStmt) statementNode() {}
func (ws *WriteStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "WRITE ("...)
	dst = appendControls(dst, ws.Controls)
	dst = append(dst, ", FMT="...)
	dst = ws.Format.appendString(dst)
	dst = append(dst, ") "...)
	for i, item := range ws.Items {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = item.AppendString(dst)
	}
	return dst
}
func (ws *WriteStmt) Pos() int            { return ws.StartPos }
func (ws *WriteStmt) End() int            { return ws.EndPos }
func (ws *WriteStmt) BranchLabels() []int { return branchLabels(ws.Controls) }

// PrintStmt represents a PRINT statement.
type PrintStmt struct {
	Format   Format
	Items    []Expression
	StartPos int
	EndPos   int
}

func (ps *PrintStmt) statementNode() {}
func (ps *PrintStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "PRINT "...)
	dst = ps.Format.appendString(dst)
	for _, item := range ps.Items {
		dst = append(dst, ", "...)
		dst = item.AppendString(dst)
	}
	return dst
}
func (ps *PrintStmt) Pos() int { return ps.StartPos }
func (ps *PrintStmt) End() int { return ps.EndPos }

// OpenStmt represents an OPEN statement.
type OpenStmt struct {
	Controls []IOControl
	StartPos int
	EndPos   int
}

func (os *OpenStmt) statementNode() {}
func (os *OpenStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "OPEN ("...)
	dst = appendControls(dst, os.Controls)
	return append(dst, ')')
}
func (os *OpenStmt) Pos() int            { return os.StartPos }
func (os *OpenStmt) End() int            { return os.EndPos }
func (os *OpenStmt) BranchLabels() []int { return branchLabels(os.Controls) }

// CloseStmt represents a CLOSE statement.
type CloseStmt struct {
	Controls []IOControl
	StartPos int
	EndPos   int
}

func (cs *CloseStmt) statementNode() {}
func (cs *CloseStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "CLOSE ("...)
	dst = appendControls(dst, cs.Controls)
	return append(dst, ')')
}
func (cs *CloseStmt) Pos() int            { return cs.StartPos }
func (cs *CloseStmt) End() int            { return cs.EndPos }
func (cs *CloseStmt) BranchLabels() []int { return branchLabels(cs.Controls) }

// InquireStmt represents an INQUIRE statement.
type InquireStmt struct {
	Controls []IOControl
	StartPos int
	EndPos   int
}

func (is *InquireStmt) statementNode() {}
func (is *InquireStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "INQUIRE ("...)
	dst = appendControls(dst, is.Controls)
	return append(dst, ')')
}
func (is *InquireStmt) Pos() int            { return is.StartPos }
func (is *InquireStmt) End() int            { return is.EndPos }
func (is *InquireStmt) BranchLabels() []int { return branchLabels(is.Controls) }

// BackspaceStmt represents a BACKSPACE statement.
type BackspaceStmt struct {
	Controls []IOControl
	StartPos int
	EndPos   int
}

func (bs *BackspaceStmt) statementNode() {}
func (bs *BackspaceStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "BACKSPACE ("...)
	dst = appendControls(dst, bs.Controls)
	return append(dst, ')')
}
func (bs *BackspaceStmt) Pos() int            { return bs.StartPos }
func (bs *BackspaceStmt) End() int            { return bs.EndPos }
func (bs *BackspaceStmt) BranchLabels() []int { return branchLabels(bs.Controls) }

// RewindStmt represents a REWIND statement.
type RewindStmt struct {
	Controls []IOControl
	StartPos int
	EndPos   int
}

func (rs *RewindStmt) statementNode() {}
func (rs *RewindStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "REWIND ("...)
	dst = appendControls(dst, rs.Controls)
	return append(dst, ')')
}
func (rs *RewindStmt) Pos() int            { return rs.StartPos }
func (rs *RewindStmt) End() int            { return rs.EndPos }
func (rs *RewindStmt) BranchLabels() []int { return branchLabels(rs.Controls) }

// EndfileStmt represents an ENDFILE statement.
type EndfileStmt struct {
	Controls []IOControl
	StartPos int
	EndPos   int
}

func (es *EndfileStmt) statementNode() {}
func (es *EndfileStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "ENDFILE ("...)
	dst = appendControls(dst, es.Controls)
	return append(dst, ')')
}
func (es *EndfileStmt) Pos() int            { return es.StartPos }
func (es *EndfileStmt) End() int            { return es.EndPos }
func (es *EndfileStmt) BranchLabels() []int { return branchLabels(es.Controls) }
