package fir

import "io"

// PrintModule writes the textual form of a module. The output parses back
// with ParseModule into a structurally identical module.
func PrintModule(w io.Writer, m *Module) error {
	p := &printer{}
	p.printModule(m)
	_, err := w.Write(p.buf)
	return err
}

// ModuleString renders a module to its textual form.
func ModuleString(m *Module) string {
	p := &printer{}
	p.printModule(m)
	return string(p.buf)
}

// OpString renders one operation on a single line, as it would appear
// inside a block.
func OpString(op *Operation) string {
	p := &printer{}
	p.printOp(op)
	return string(p.buf)
}

type printer struct {
	buf    []byte
	indent int
}

func (p *printer) raw(s string) { p.buf = append(p.buf, s...) }

func (p *printer) line() {
	p.buf = append(p.buf, '\n')
	for i := 0; i < p.indent; i++ {
		p.buf = append(p.buf, "  "...)
	}
}

func (p *printer) value(v *Value) {
	p.buf = append(p.buf, '%')
	p.raw(v.Name)
}

func (p *printer) valueList(values []*Value) {
	for i, v := range values {
		if i > 0 {
			p.raw(", ")
		}
		p.value(v)
	}
}

func (p *printer) typ(t Type) { p.buf = t.AppendString(p.buf) }

func (p *printer) attr(a Attribute) { p.buf = a.AppendString(p.buf) }

func (p *printer) printModule(m *Module) {
	p.raw("module {")
	p.indent++
	for _, g := range m.Globals {
		p.line()
		p.printOp(g)
	}
	for _, f := range m.Functions {
		p.line()
		p.printFunction(f)
	}
	p.indent--
	p.line()
	p.raw("}")
	p.buf = append(p.buf, '\n')
}

func (p *printer) printFunction(f *Function) {
	p.raw("func @")
	p.raw(f.Name)
	p.raw("(")
	entry := f.EntryBlock()
	for i, in := range f.Type.Inputs {
		if i > 0 {
			p.raw(", ")
		}
		if entry != nil && i < len(entry.Args) {
			p.value(entry.Args[i])
			p.raw(": ")
		}
		p.typ(in)
	}
	p.raw(")")
	if len(f.Type.Results) > 0 {
		p.raw(" -> ")
		p.typeList(f.Type.Results)
	}
	if f.Body == nil {
		return
	}
	p.raw(" {")
	p.indent++
	for i, blk := range f.Body.Blocks {
		if i > 0 {
			p.printBlockHeader(blk)
		}
		for _, op := range blk.Ops {
			p.line()
			p.printOp(op)
		}
	}
	p.indent--
	p.line()
	p.raw("}")
}

func (p *printer) typeList(types []Type) {
	if len(types) == 1 {
		p.typ(types[0])
		return
	}
	p.raw("(")
	for i, t := range types {
		if i > 0 {
			p.raw(", ")
		}
		p.typ(t)
	}
	p.raw(")")
}

func (p *printer) printBlockHeader(blk *Block) {
	p.indent--
	p.line()
	p.raw("^")
	p.raw(blk.Name)
	if len(blk.Args) > 0 {
		p.raw("(")
		for i, arg := range blk.Args {
			if i > 0 {
				p.raw(", ")
			}
			p.value(arg)
			p.raw(": ")
			p.typ(arg.Type)
		}
		p.raw(")")
	}
	p.raw(":")
	p.indent++
}

func (p *printer) successor(succ Successor) {
	p.raw("^")
	p.raw(succ.Dest.Name)
	if len(succ.Args) > 0 {
		p.raw("(")
		p.valueList(succ.Args)
		p.raw(")")
	}
}

// printOp renders one operation in its custom form plus a trailing
// attribute dictionary for attributes the form does not encode.
func (p *printer) printOp(op *Operation) {
	if len(op.Results) > 0 {
		p.valueList(op.Results)
		p.raw(" = ")
	}
	p.raw(op.Name)
	consumed := p.printOpBody(op)
	p.printAttrDict(op, consumed)
}

// printOpBody writes the operation-specific syntax after the name and
// returns the attribute names the syntax already encodes.
func (p *printer) printOpBody(op *Operation) map[string]bool {
	switch op.Name {
	case OpConstant:
		p.raw(" ")
		p.attr(op.Attr(AttrValue))
		p.raw(" : ")
		p.typ(op.Results[0].Type)
		return attrSet(AttrValue)

	case OpUndefined:
		p.raw(" ")
		p.typ(op.Results[0].Type)
		return nil

	case OpAddF, OpSubF, OpMulF, OpDivF, OpAddI, OpSubI, OpMulI, OpDivI:
		p.raw(" ")
		p.valueList(op.Operands)
		p.raw(" : ")
		p.typ(op.Results[0].Type)
		return nil

	case OpNegF:
		p.raw(" ")
		p.value(op.Operands[0])
		p.raw(" : ")
		p.typ(op.Results[0].Type)
		return nil

	case OpCmpF, OpCmpI:
		p.raw(" ")
		p.attr(op.Attr(AttrPredicate))
		p.raw(", ")
		p.valueList(op.Operands)
		p.raw(" : ")
		p.typ(op.Operands[0].Type)
		return attrSet(AttrPredicate)

	case OpConvert:
		p.raw(" ")
		p.value(op.Operands[0])
		p.raw(" : (")
		p.typ(op.Operands[0].Type)
		p.raw(") -> ")
		p.typ(op.Results[0].Type)
		return nil

	case OpAlloca, OpAllocMem:
		p.raw(" ")
		p.typ(ElemType(op.Results[0].Type))
		return nil

	case OpFreeMem:
		p.raw(" ")
		p.value(op.Operands[0])
		p.raw(" : ")
		p.typ(op.Operands[0].Type)
		return nil

	case OpLoad:
		p.raw(" ")
		p.value(op.Operands[0])
		p.raw(" : ")
		p.typ(op.Operands[0].Type)
		return nil

	case OpStore:
		p.raw(" ")
		p.value(op.Operands[0])
		p.raw(" to ")
		p.value(op.Operands[1])
		p.raw(" : ")
		p.typ(op.Operands[1].Type)
		return nil

	case OpLoop:
		return p.printLoop(op)

	case OpIterateWhile:
		return p.printIterateWhile(op)

	case OpWhere:
		return p.printWhere(op)

	case OpResult, OpReturn:
		if len(op.Operands) > 0 {
			p.raw(" ")
			p.valueList(op.Operands)
		}
		return nil

	case OpEnd, OpUnreachable:
		return nil

	case OpSelect, OpSelectCase, OpSelectRank, OpSelectType:
		return p.printSelect(op)

	case OpCall:
		return p.printCall(op)

	case OpGlobal:
		return p.printGlobal(op)

	case OpAddressOf:
		p.raw(" ")
		p.attr(op.Attr(AttrSymbol))
		p.raw(" : ")
		p.typ(op.Results[0].Type)
		return attrSet(AttrSymbol)

	case OpBr:
		p.raw(" ")
		p.successor(op.Successors[0])
		return nil

	case OpCondBr:
		p.raw(" ")
		p.value(op.Operands[0])
		p.raw(", ")
		p.successor(op.Successors[0])
		p.raw(", ")
		p.successor(op.Successors[1])
		return nil
	}
	return nil
}

func (p *printer) printLoop(op *Operation) map[string]bool {
	segments := op.Attr(AttrOperandSegments).(DenseIntAttr)
	hasStep := segments.Values[2] > 0
	entry := op.Regions[0].Blocks[0]
	p.raw(" ")
	p.value(entry.Args[0])
	p.raw(" = ")
	p.value(op.Operands[0])
	p.raw(" to ")
	p.value(op.Operands[1])
	next := 2
	if hasStep {
		p.raw(" step ")
		p.value(op.Operands[2])
		next = 3
	}
	if op.HasAttr(AttrUnordered) {
		p.raw(" unordered")
	}
	p.printIterArgs(entry.Args[1:], op.Operands[next:])
	p.printRegionBody(op.Regions[0])
	return attrSet(AttrOperandSegments, AttrUnordered)
}

func (p *printer) printIterateWhile(op *Operation) map[string]bool {
	entry := op.Regions[0].Blocks[0]
	p.raw(" ")
	p.value(entry.Args[0])
	p.raw(" = ")
	p.value(op.Operands[0])
	p.raw(" to ")
	p.value(op.Operands[1])
	p.raw(" while (")
	p.value(entry.Args[1])
	p.raw(" = ")
	p.value(op.Operands[2])
	p.raw(" : ")
	p.typ(entry.Args[1].Type)
	p.raw(")")
	p.printIterArgs(entry.Args[2:], op.Operands[3:])
	p.printRegionBody(op.Regions[0])
	return attrSet(AttrOperandSegments)
}

func (p *printer) printIterArgs(args, inits []*Value) {
	if len(args) == 0 {
		return
	}
	p.raw(" iter_args(")
	for i, arg := range args {
		if i > 0 {
			p.raw(", ")
		}
		p.value(arg)
		p.raw(" = ")
		p.value(inits[i])
		p.raw(" : ")
		p.typ(arg.Type)
	}
	p.raw(")")
}

func (p *printer) printWhere(op *Operation) map[string]bool {
	p.raw(" ")
	p.value(op.Operands[0])
	if len(op.Results) > 0 {
		p.raw(" -> (")
		for i, res := range op.Results {
			if i > 0 {
				p.raw(", ")
			}
			p.typ(res.Type)
		}
		p.raw(")")
	}
	p.printRegionBody(op.Regions[0])
	if len(op.Regions) > 1 && len(op.Regions[1].Blocks) > 0 {
		p.raw(" otherwise")
		p.printRegionBody(op.Regions[1])
	}
	return nil
}

// printRegionBody renders a single-block region as a braced list.
func (p *printer) printRegionBody(r *Region) {
	p.raw(" {")
	p.indent++
	for _, op := range r.Blocks[0].Ops {
		p.line()
		p.printOp(op)
	}
	p.indent--
	p.line()
	p.raw("}")
}

func (p *printer) printSelect(op *Operation) map[string]bool {
	cases := op.Attr(AttrCases).(ArrayAttr)
	p.raw(" ")
	p.value(op.Operands[0])
	p.raw(" : ")
	p.typ(op.Operands[0].Type)
	p.raw(" [")
	for i, sel := range cases.Elems {
		if i > 0 {
			p.raw(", ")
		}
		if _, isDefault := sel.(UnitAttr); isDefault {
			p.raw("unit")
		} else {
			p.attr(sel)
		}
		for _, cmp := range CompareOperands(op, i) {
			p.raw(", ")
			p.value(cmp)
		}
		p.raw(", ")
		p.raw("^")
		p.raw(op.Successors[i].Dest.Name)
		if args := TargetOperands(op, i); len(args) > 0 {
			p.raw("(")
			p.valueList(args)
			p.raw(")")
		}
	}
	p.raw("]")
	return attrSet(AttrCases, AttrCompareSegments, AttrTargetSegments)
}

func (p *printer) printCall(op *Operation) map[string]bool {
	args := op.Operands
	var signature FuncType
	if callee, ok := op.Attr(AttrCallee).(SymbolRefAttr); ok {
		p.raw(" @")
		p.raw(callee.Name)
		for _, arg := range args {
			signature.Inputs = append(signature.Inputs, arg.Type)
		}
	} else {
		p.raw(" ")
		p.value(op.Operands[0])
		args = op.Operands[1:]
		ft := op.Operands[0].Type.(FuncType)
		signature.Inputs = ft.Inputs
	}
	for _, res := range op.Results {
		signature.Results = append(signature.Results, res.Type)
	}
	p.raw("(")
	p.valueList(args)
	p.raw(") : ")
	p.typ(signature)
	return attrSet(AttrCallee)
}

func (p *printer) printGlobal(op *Operation) map[string]bool {
	name := op.Attr(AttrSymName).(StringAttr)
	p.raw(" @")
	p.raw(name.Value)
	if op.HasAttr(AttrConstant) {
		p.raw(" constant")
	}
	if linkage, ok := op.Attr(AttrLinkage).(StringAttr); ok {
		p.raw(" ")
		p.raw(linkage.Value)
	}
	p.raw(" : ")
	p.typ(op.Attr(AttrType).(TypeAttr).Type)
	if init := op.Attr(AttrValue); init != nil {
		p.raw(" = ")
		p.attr(init)
	}
	return attrSet(AttrSymName, AttrConstant, AttrLinkage, AttrType, AttrValue)
}

func (p *printer) printAttrDict(op *Operation, consumed map[string]bool) {
	var names []string
	for _, name := range op.AttrNames() {
		if !consumed[name] {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return
	}
	p.raw(" {")
	for i, name := range names {
		if i > 0 {
			p.raw(", ")
		}
		p.raw(name)
		p.raw(" = ")
		p.attr(op.Attributes[name])
	}
	p.raw("}")
}

func attrSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}
