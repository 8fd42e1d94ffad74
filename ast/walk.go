package ast

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children
// of node with the visitor w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order: It starts by calling
// v.Visit(node); node must not be nil. If the visitor w returned by
// v.Visit(node) is not nil, Walk is invoked recursively with visitor
// w for each of the non-nil children of node, followed by a call of
// w.Visit(nil).
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}
	walkChildren(node, func(child Node) { Walk(v, child) })
	v.Visit(nil)
}

// Inspect traverses an AST in depth-first order: It starts by calling
// f(node); node must not be nil. If f returns true, Inspect invokes f
// recursively for each of the non-nil children of node, followed by a
// call of f(nil).
//
// Inspect is a convenience wrapper around Walk that allows using a
// simple function instead of implementing the Visitor interface.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// A PrePostVisitor receives two calls per node: Pre on the way down and
// Post on the way back up. Children are visited only when Pre returns
// true; Post is called regardless. Statement lists are visited in lexical
// order, with construct headers and footers interleaved in source order.
type PrePostVisitor interface {
	Pre(node Node) bool
	Post(node Node)
}

// WalkPrePost traverses node in depth-first order calling v.Pre and
// v.Post around each node's children.
func WalkPrePost(v PrePostVisitor, node Node) {
	if v.Pre(node) {
		walkChildren(node, func(child Node) { WalkPrePost(v, child) })
	}
	v.Post(node)
}

func walkStatements(stmts []Statement, walk func(Node)) {
	for _, stmt := range stmts {
		walk(stmt)
	}
}

// walkChildren invokes walk for each non-nil child of node in lexical
// order. Leaf nodes fall through without effect.
func walkChildren(node Node, walk func(Node)) {
	switch n := node.(type) {
	// Root node
	case *Program:
		for _, unit := range n.Units {
			walk(unit)
		}

	// Program units
	case *ProgramBlock:
		walkStatements(n.Body, walk)

	case *Subroutine:
		walkStatements(n.Body, walk)
		for _, proc := range n.Contains {
			walk(proc)
		}

	case *Function:
		walkStatements(n.Body, walk)
		for _, proc := range n.Contains {
			walk(proc)
		}

	case *Module:
		walkStatements(n.Body, walk)
		for _, proc := range n.Contains {
			walk(proc)
		}

	case *BlockData:
		walkStatements(n.Body, walk)

	// Label wrapper
	case *LabeledStmt:
		walk(n.Statement)

	// Declaration statements
	case *TypeDeclaration:
		if n.Type.Kind != nil {
			walk(n.Type.Kind)
		}
		if n.Type.CharLen != nil {
			walk(n.Type.CharLen)
		}
		for _, entity := range n.Entities {
			if entity.ArraySpec != nil {
				for _, bound := range entity.ArraySpec.Bounds {
					if bound.Lower != nil {
						walk(bound.Lower)
					}
					if bound.Upper != nil {
						walk(bound.Upper)
					}
				}
			}
			if entity.CharLen != nil {
				walk(entity.CharLen)
			}
			if entity.Init != nil {
				walk(entity.Init)
			}
		}

	case *DataStmt:
		for _, value := range n.Values {
			walk(value)
		}

	// Executable statements
	case *AssignmentStmt:
		walk(n.Target)
		walk(n.Value)

	case *PointerAssignmentStmt:
		walk(n.Target)
		walk(n.Value)

	case *CallStmt:
		for _, arg := range n.Args {
			walk(arg)
		}

	case *IfStmt:
		walk(n.Condition)
		walk(n.Action)

	case *ArithmeticIfStmt:
		walk(n.Expr)

	case *ComputedGotoStmt:
		walk(n.Expr)

	case *ReturnStmt:
		if n.Value != nil {
			walk(n.Value)
		}

	case *StopStmt:
		if n.Code != nil {
			walk(n.Code)
		}

	case *PauseStmt:
		if n.Code != nil {
			walk(n.Code)
		}

	case *AllocateStmt:
		for _, obj := range n.Objects {
			walk(obj)
		}

	case *DeallocateStmt:
		for _, obj := range n.Objects {
			walk(obj)
		}

	case *NullifyStmt:
		for _, obj := range n.Objects {
			walk(obj)
		}

	// Constructs: header, bodies, footer in source order.
	case *IfConstruct:
		walk(n.IfThen)
		walkStatements(n.Body, walk)
		for _, elif := range n.ElseIfs {
			walk(elif.Stmt)
			walkStatements(elif.Body, walk)
		}
		if n.Else != nil {
			walk(n.Else.Stmt)
			walkStatements(n.Else.Body, walk)
		}
		walk(n.EndIf)

	case *IfThenStmt:
		walk(n.Condition)

	case *ElseIfStmt:
		walk(n.Condition)

	case *DoConstruct:
		walk(n.Do)
		walkStatements(n.Body, walk)
		walk(n.EndDo)

	case *DoStmt:
		if n.Control == nil {
			break
		}
		switch {
		case n.Control.Bounds != nil:
			b := n.Control.Bounds
			walk(b.Start)
			walk(b.Limit)
			if b.Step != nil {
				walk(b.Step)
			}
		case n.Control.While != nil:
			walk(n.Control.While)
		case n.Control.Concurrent != nil:
			for _, c := range n.Control.Concurrent.Controls {
				walk(c.Lower)
				walk(c.Upper)
				if c.Step != nil {
					walk(c.Step)
				}
			}
			if n.Control.Concurrent.Mask != nil {
				walk(n.Control.Concurrent.Mask)
			}
		}

	case *CaseConstruct:
		walk(n.Select)
		for _, cb := range n.Cases {
			walk(cb.Stmt)
			walkStatements(cb.Body, walk)
		}
		walk(n.EndSelect)

	case *SelectCaseStmt:
		walk(n.Expr)

	case *CaseStmt:
		for _, r := range n.Ranges {
			if r.Value != nil {
				walk(r.Value)
			}
			if r.Lower != nil {
				walk(r.Lower)
			}
			if r.Upper != nil {
				walk(r.Upper)
			}
		}

	// I/O statements
	case *ReadStmt:
		walkControls(n.Controls, walk)
		walkFormat(n.Format, walk)
		for _, item := range n.Items {
			walk(item)
		}

	case *WriteStmt:
		walkControls(n.Controls, walk)
		walkFormat(n.Format, walk)
		for _, item := range n.Items {
			walk(item)
		}

	case *PrintStmt:
		walkFormat(n.Format, walk)
		for _, item := range n.Items {
			walk(item)
		}

	case *OpenStmt:
		walkControls(n.Controls, walk)

	case *CloseStmt:
		walkControls(n.Controls, walk)

	case *InquireStmt:
		walkControls(n.Controls, walk)

	case *BackspaceStmt:
		walkControls(n.Controls, walk)

	case *RewindStmt:
		walkControls(n.Controls, walk)

	case *EndfileStmt:
		walkControls(n.Controls, walk)

	// Expressions
	case *BinaryExpr:
		walk(n.Left)
		walk(n.Right)

	case *UnaryExpr:
		walk(n.Operand)

	case *FunctionCall:
		for _, arg := range n.Args {
			walk(arg)
		}

	case *ArrayRef:
		for _, subscript := range n.Subscripts {
			walk(subscript)
		}

	case *ParenExpr:
		walk(n.Expr)
	}
}

func walkControls(controls []IOControl, walk func(Node)) {
	for _, c := range controls {
		if c.Value != nil {
			walk(c.Value)
		}
	}
}

func walkFormat(f Format, walk func(Node)) {
	if f.Expr != nil {
		walk(f.Expr)
	}
}
