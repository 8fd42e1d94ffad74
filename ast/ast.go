// Package ast defines the tree representation of an analyzed Fortran
// program consumed by the lowering middle tier. The nodes model statements
// and constructs at the granularity lowering needs: constructs keep their
// header and footer statements as distinct nodes so control flow can be
// attached to each of them.
package ast

import (
	"strconv"

	"github.com/fortgo/fortgo/token"
)

type Node interface {
	AppendString(dst []byte) []byte
	Pos() int // position of first character belonging to the node in file.
	End() int // position of first character immediately after the node in file.
}

type Expression interface {
	Node
	expressionNode()
}

type Statement interface {
	Node
	statementNode()
}

// ProgramUnit represents a top-level construct (PROGRAM, SUBROUTINE,
// FUNCTION, MODULE, BLOCK DATA).
type ProgramUnit interface {
	Statement
	programUnitNode()
}

// Program represents the root node of a Fortran program file.
type Program struct {
	Units []ProgramUnit
}

func (p *Program) AppendString(dst []byte) []byte {
	for i, unit := range p.Units {
		if i > 0 {
			dst = append(dst, '\n')
		}
		dst = unit.AppendString(dst)
	}
	return dst
}

func (p *Program) Pos() int {
	if len(p.Units) == 0 {
		return 0
	}
	return p.Units[0].Pos()
}

func (p *Program) End() int {
	if len(p.Units) == 0 {
		return 0
	}
	return p.Units[len(p.Units)-1].End()
}

// TypeSpec is an intrinsic type specification, e.g. INTEGER(8) or
// CHARACTER(LEN=N). The zero value means "no type given".
type TypeSpec struct {
	Token   token.Token // INTEGER, REAL, COMPLEX, LOGICAL, CHARACTER, DOUBLEPRECISION
	Kind    Expression  // KIND= expression, nil for default kind
	CharLen Expression  // CHARACTER length, nil unless CHARACTER
}

func (ts TypeSpec) AppendString(dst []byte) []byte {
	dst = append(dst, ts.Token.String()...)
	if ts.Kind != nil {
		dst = append(dst, '(')
		dst = ts.Kind.AppendString(dst)
		dst = append(dst, ')')
	}
	if ts.CharLen != nil {
		dst = append(dst, "(LEN="...)
		dst = ts.CharLen.AppendString(dst)
		dst = append(dst, ')')
	}
	return dst
}

// Parameter represents a dummy argument of a subprogram or entry point.
type Parameter struct {
	Name string
	Type TypeSpec // zero value when typed by a declaration in the body
}

// ProgramBlock represents a PROGRAM...END PROGRAM unit.
type ProgramBlock struct {
	Name     string
	Body     []Statement // Specification and executable statements
	StartPos int
	EndPos   int
}

func (pb *ProgramBlock) statementNode()   {}
func (pb *ProgramBlock) programUnitNode() {}
func (pb *ProgramBlock) AppendString(dst []byte) []byte {
	dst = append(dst, "PROGRAM "...)
	return append(dst, pb.Name...)
}
func (pb *ProgramBlock) Pos() int { return pb.StartPos }
func (pb *ProgramBlock) End() int { return pb.EndPos }

// Subroutine represents a SUBROUTINE...END SUBROUTINE unit.
type Subroutine struct {
	Name       string
	Parameters []Parameter
	AltReturns int // number of alternate-return (*) dummy positions
	Attributes []token.Token
	Body       []Statement
	Contains   []ProgramUnit
	StartPos   int
	EndPos     int
}

func (s *Subroutine) statementNode()   {}
func (s *Subroutine) programUnitNode() {}
func (s *Subroutine) AppendString(dst []byte) []byte {
	dst = append(dst, "SUBROUTINE "...)
	dst = append(dst, s.Name...)
	dst = append(dst, '(')
	for i, p := range s.Parameters {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = append(dst, p.Name...)
	}
	dst = append(dst, ')')
	return dst
}
func (s *Subroutine) Pos() int { return s.StartPos }
func (s *Subroutine) End() int { return s.EndPos }

// Function represents a FUNCTION...END FUNCTION unit.
type Function struct {
	Name       string
	Type       TypeSpec // result type on the FUNCTION statement, may be zero
	Parameters []Parameter
	ResultName string // RESULT(name), empty when the function name is the result
	Attributes []token.Token
	Body       []Statement
	Contains   []ProgramUnit
	StartPos   int
	EndPos     int
}

func (f *Function) statementNode()   {}
func (f *Function) programUnitNode() {}
func (f *Function) AppendString(dst []byte) []byte {
	if f.Type.Token != token.Undefined {
		dst = f.Type.AppendString(dst)
		dst = append(dst, ' ')
	}
	dst = append(dst, "FUNCTION "...)
	dst = append(dst, f.Name...)
	dst = append(dst, '(')
	for i, p := range f.Parameters {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = append(dst, p.Name...)
	}
	dst = append(dst, ')')
	if f.ResultName != "" {
		dst = append(dst, " RESULT("...)
		dst = append(dst, f.ResultName...)
		dst = append(dst, ')')
	}
	return dst
}
func (f *Function) Pos() int { return f.StartPos }
func (f *Function) End() int { return f.EndPos }

// Module represents a MODULE...END MODULE unit.
type Module struct {
	Name     string
	Body     []Statement
	Contains []ProgramUnit
	StartPos int
	EndPos   int
}

func (m *Module) statementNode()   {}
func (m *Module) programUnitNode() {}
func (m *Module) AppendString(dst []byte) []byte {
	dst = append(dst, "MODULE "...)
	return append(dst, m.Name...)
}
func (m *Module) Pos() int { return m.StartPos }
func (m *Module) End() int { return m.EndPos }

// BlockData represents a BLOCK DATA...END BLOCK DATA unit.
type BlockData struct {
	Name     string
	Body     []Statement
	StartPos int
	EndPos   int
}

func (bd *BlockData) statementNode()   {}
func (bd *BlockData) programUnitNode() {}
func (bd *BlockData) AppendString(dst []byte) []byte {
	dst = append(dst, "BLOCK DATA"...)
	if bd.Name != "" {
		dst = append(dst, ' ')
		dst = append(dst, bd.Name...)
	}
	return dst
}
func (bd *BlockData) Pos() int { return bd.StartPos }
func (bd *BlockData) End() int { return bd.EndPos }

// LabeledStmt attaches a numeric statement label to a statement. Consumers
// peel the wrapper in a single normalization step before dispatching on the
// underlying statement kind.
type LabeledStmt struct {
	Label     int
	Statement Statement
}

func (ls *LabeledStmt) statementNode() {}
func (ls *LabeledStmt) AppendString(dst []byte) []byte {
	dst = strconv.AppendInt(dst, int64(ls.Label), 10)
	dst = append(dst, ' ')
	return ls.Statement.AppendString(dst)
}
func (ls *LabeledStmt) Pos() int { return ls.Statement.Pos() }
func (ls *LabeledStmt) End() int { return ls.Statement.End() }

// Unlabeled returns the statement with any label wrapper removed.
func Unlabeled(s Statement) Statement {
	if ls, ok := s.(*LabeledStmt); ok {
		return ls.Statement
	}
	return s
}

// Label returns the numeric label on s, or 0 when s carries none.
func Label(s Statement) int {
	if ls, ok := s.(*LabeledStmt); ok {
		return ls.Label
	}
	return 0
}

// ArraySpecKind represents the kind of array specification.
type ArraySpecKind int

const (
	ArraySpecExplicit    ArraySpecKind = iota // Explicit shape: (1:10, 1:20)
	ArraySpecAssumed                          // Assumed shape: (:, :)
	ArraySpecDeferred                         // Deferred shape: (:) with ALLOCATABLE/POINTER
	ArraySpecAssumedSize                      // Assumed size: (*) - F77 style
)

func (ask ArraySpecKind) String() string {
	switch ask {
	case ArraySpecExplicit:
		return "explicit"
	case ArraySpecAssumed:
		return "assumed"
	case ArraySpecDeferred:
		return "deferred"
	case ArraySpecAssumedSize:
		return "assumed-size"
	default:
		return "unknown"
	}
}

// ArrayBound represents a single dimension's bounds (lower:upper).
// A nil Lower means the default lower bound of 1.
type ArrayBound struct {
	Lower Expression
	Upper Expression
}

// ArraySpec represents an array dimension specification.
type ArraySpec struct {
	Kind   ArraySpecKind
	Bounds []ArrayBound // One bound per dimension
}

// DeclEntity represents a single entity in a type declaration.
type DeclEntity struct {
	Name        string
	ArraySpec   *ArraySpec // Array dimensions if this is an array
	CoarraySpec *ArraySpec // Co-array co-dimensions, nil if not a co-array
	CharLen     Expression // CHARACTER length override, nil if none
	Init        Expression // Initialization expression, nil if none
}

// TypeDeclaration represents a type declaration with attributes.
type TypeDeclaration struct {
	Type       TypeSpec
	Attributes []token.Token // PARAMETER, SAVE, ALLOCATABLE, POINTER, TARGET, ...
	Entities   []DeclEntity
	StartPos   int
	EndPos     int
}

func (td *TypeDeclaration) statementNode() {}
func (td *TypeDeclaration) AppendString(dst []byte) []byte {
	dst = td.Type.AppendString(dst)
	for _, attr := range td.Attributes {
		dst = append(dst, ", "...)
		dst = append(dst, attr.String()...)
	}
	dst = append(dst, " :: "...)
	for i, entity := range td.Entities {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = append(dst, entity.Name...)
	}
	return dst
}
func (td *TypeDeclaration) Pos() int { return td.StartPos }
func (td *TypeDeclaration) End() int { return td.EndPos }

// ImplicitStatement represents an IMPLICIT statement.
type ImplicitStatement struct {
	IsNone   bool // true for IMPLICIT NONE
	StartPos int
	EndPos   int
}

func (is *ImplicitStatement) statementNode() {}
func (is *ImplicitStatement) AppendString(dst []byte) []byte {
	if is.IsNone {
		return append(dst, "IMPLICIT NONE"...)
	}
	return append(dst, "IMPLICIT"...)
}
func (is *ImplicitStatement) Pos() int { return is.StartPos }
func (is *ImplicitStatement) End() int { return is.EndPos }

// UseStatement represents a USE statement.
type UseStatement struct {
	ModuleName string
	Only       []string // Empty if not using ONLY clause
	StartPos   int
	EndPos     int
}

func (us *UseStatement) statementNode() {}
func (us *UseStatement) AppendString(dst []byte) []byte {
	dst = append(dst, "USE "...)
	dst = append(dst, us.ModuleName...)
	if len(us.Only) > 0 {
		dst = append(dst, ", ONLY: "...)
		for i, name := range us.Only {
			if i > 0 {
				dst = append(dst, ", "...)
			}
			dst = append(dst, name...)
		}
	}
	return dst
}
func (us *UseStatement) Pos() int { return us.StartPos }
func (us *UseStatement) End() int { return us.EndPos }

// CommonStmt represents a COMMON block declaration.
type CommonStmt struct {
	Name     string // empty for blank COMMON
	Objects  []string
	StartPos int
	EndPos   int
}

func (cs *CommonStmt) statementNode() {}
func (cs *CommonStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "COMMON"...)
	if cs.Name != "" {
		dst = append(dst, " /"...)
		dst = append(dst, cs.Name...)
		dst = append(dst, '/')
	}
	for i, name := range cs.Objects {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, ' ')
		dst = append(dst, name...)
	}
	return dst
}
func (cs *CommonStmt) Pos() int { return cs.StartPos }
func (cs *CommonStmt) End() int { return cs.EndPos }

// EquivalenceObject names one member of an equivalence group. A nonzero
// Index anchors the group at that (1-based) element of an array member.
type EquivalenceObject struct {
	Name  string
	Index int
}

// EquivalenceStmt declares sets of variables sharing storage.
type EquivalenceStmt struct {
	Sets     [][]EquivalenceObject
	StartPos int
	EndPos   int
}

func (es *EquivalenceStmt) statementNode() {}
func (es *EquivalenceStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "EQUIVALENCE"...)
	for i, set := range es.Sets {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, " ("...)
		for j, obj := range set {
			if j > 0 {
				dst = append(dst, ", "...)
			}
			dst = append(dst, obj.Name...)
			if obj.Index != 0 {
				dst = append(dst, '(')
				dst = strconv.AppendInt(dst, int64(obj.Index), 10)
				dst = append(dst, ')')
			}
		}
		dst = append(dst, ')')
	}
	return dst
}
func (es *EquivalenceStmt) Pos() int { return es.StartPos }
func (es *EquivalenceStmt) End() int { return es.EndPos }

// ExternalStmt represents an EXTERNAL statement.
type ExternalStmt struct {
	Names    []string
	StartPos int
	EndPos   int
}

func (es *ExternalStmt) statementNode() {}
func (es *ExternalStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "EXTERNAL "...)
	for i, name := range es.Names {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = append(dst, name...)
	}
	return dst
}
func (es *ExternalStmt) Pos() int { return es.StartPos }
func (es *ExternalStmt) End() int { return es.EndPos }

// SaveStmt represents a SAVE statement.
type SaveStmt struct {
	Names    []string // empty for a bare SAVE covering the whole scope
	StartPos int
	EndPos   int
}

func (ss *SaveStmt) statementNode() {}
func (ss *SaveStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "SAVE"...)
	for i, name := range ss.Names {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, ' ')
		dst = append(dst, name...)
	}
	return dst
}
func (ss *SaveStmt) Pos() int { return ss.StartPos }
func (ss *SaveStmt) End() int { return ss.EndPos }

// DataStmt represents a DATA statement.
type DataStmt struct {
	Names    []string
	Values   []Expression
	StartPos int
	EndPos   int
}

func (ds *DataStmt) statementNode() {}
func (ds *DataStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "DATA "...)
	for i, name := range ds.Names {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = append(dst, name...)
	}
	return dst
}
func (ds *DataStmt) Pos() int { return ds.StartPos }
func (ds *DataStmt) End() int { return ds.EndPos }

// NamelistStmt represents a NAMELIST group declaration.
type NamelistStmt struct {
	Group    string
	Names    []string
	StartPos int
	EndPos   int
}

func (ns *NamelistStmt) statementNode() {}
func (ns *NamelistStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "NAMELIST /"...)
	dst = append(dst, ns.Group...)
	dst = append(dst, "/ "...)
	for i, name := range ns.Names {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = append(dst, name...)
	}
	return dst
}
func (ns *NamelistStmt) Pos() int { return ns.StartPos }
func (ns *NamelistStmt) End() int { return ns.EndPos }

// FormatStmt represents a FORMAT statement. It always carries a label.
type FormatStmt struct {
	Spec     string // raw format specification, parentheses included
	StartPos int
	EndPos   int
}

func (fs *FormatStmt) statementNode() {}
func (fs *FormatStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "FORMAT"...)
	return append(dst, fs.Spec...)
}
func (fs *FormatStmt) Pos() int { return fs.StartPos }
func (fs *FormatStmt) End() int { return fs.EndPos }

// EntryStmt represents an ENTRY statement providing an alternate entry
// point into a subprogram.
type EntryStmt struct {
	Name       string
	Parameters []Parameter
	ResultName string
	StartPos   int
	EndPos     int
}

func (es *EntryStmt) statementNode() {}
func (es *EntryStmt) AppendString(dst []byte) []byte {
	dst = append(dst, "ENTRY "...)
	dst = append(dst, es.Name...)
	dst = append(dst, '(')
	for i, p := range es.Parameters {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = append(dst, p.Name...)
	}
	dst = append(dst, ')')
	return dst
}
func (es *EntryStmt) Pos() int { return es.StartPos }
func (es *EntryStmt) End() int { return es.EndPos }

// CompilerDirective represents a !DIR$ style directive line.
type CompilerDirective struct {
	Text     string
	StartPos int
	EndPos   int
}

func (cd *CompilerDirective) statementNode() {}
func (cd *CompilerDirective) AppendString(dst []byte) []byte {
	dst = append(dst, "!DIR$ "...)
	return append(dst, cd.Text...)
}
func (cd *CompilerDirective) Pos() int { return cd.StartPos }
func (cd *CompilerDirective) End() int { return cd.EndPos }
