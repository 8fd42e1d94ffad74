package fir

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseModule parses the textual form produced by PrintModule.
func ParseModule(src string) (*Module, error) {
	p := &parser{src: src, line: 1}
	m, err := p.parseModule()
	if err != nil {
		return nil, errors.Wrapf(err, "line %d", p.line)
	}
	return m, nil
}

// parser is a character-level recursive descent parser over the IR text.
type parser struct {
	src  string
	pos  int
	line int

	values map[string]*Value
	blocks map[string]*Block
	defined map[string]bool
}

func (p *parser) failf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) skipSpace() {
	for !p.eof() {
		c := p.src[p.pos]
		switch {
		case c == '\n':
			p.line++
			p.pos++
		case c == ' ' || c == '\t' || c == '\r':
			p.pos++
		case c == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '/':
			for !p.eof() && p.src[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

// sameLinePeek returns the next byte on the current line, 0 at end of line.
// Operand lists of fir.result and fir.return end at the newline, so their
// parser must not read into the next statement.
func (p *parser) sameLinePeek() byte {
	for i := p.pos; i < len(p.src); i++ {
		c := p.src[i]
		if c == ' ' || c == '\t' || c == '\r' {
			continue
		}
		if c == '\n' || (c == '/' && i+1 < len(p.src) && p.src[i+1] == '/') {
			return 0
		}
		return c
	}
	return 0
}

// accept consumes the literal if it appears next. Word-like literals only
// match on a word boundary.
func (p *parser) accept(lit string) bool {
	p.skipSpace()
	if !strings.HasPrefix(p.src[p.pos:], lit) {
		return false
	}
	if isWordChar(lit[len(lit)-1]) {
		rest := p.src[p.pos+len(lit):]
		if rest != "" && isWordChar(rest[0]) {
			return false
		}
	}
	p.pos += len(lit)
	return true
}

func (p *parser) expect(lit string) error {
	if !p.accept(lit) {
		return p.failf("expected %q near %q", lit, p.rest(12))
	}
	return nil
}

func (p *parser) rest(n int) string {
	end := p.pos + n
	if end > len(p.src) {
		end = len(p.src)
	}
	return p.src[p.pos:end]
}

func isWordChar(c byte) bool {
	return c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// word reads an identifier-like run (op names include dots).
func (p *parser) word() (string, error) {
	p.skipSpace()
	start := p.pos
	for !p.eof() && isWordChar(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", p.failf("expected an identifier near %q", p.rest(12))
	}
	return p.src[start:p.pos], nil
}

func (p *parser) integer() (int64, error) {
	p.skipSpace()
	start := p.pos
	if !p.eof() && p.src[p.pos] == '-' {
		p.pos++
	}
	for !p.eof() && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, p.failf("expected an integer near %q", p.rest(12))
	}
	return strconv.ParseInt(p.src[start:p.pos], 10, 64)
}

func (p *parser) quoted() (string, error) {
	p.skipSpace()
	if p.eof() || p.src[p.pos] != '"' {
		return "", p.failf("expected a string near %q", p.rest(12))
	}
	end := p.pos + 1
	for end < len(p.src) && p.src[end] != '"' {
		if p.src[end] == '\\' {
			end++
		}
		end++
	}
	if end >= len(p.src) {
		return "", p.failf("unterminated string")
	}
	s, err := strconv.Unquote(p.src[p.pos : end+1])
	if err != nil {
		return "", p.failf("bad string literal: %v", err)
	}
	p.pos = end + 1
	return s, nil
}

// ---- values and blocks ----------------------------------------------------

// valueName reads a %name reference without resolving it.
func (p *parser) valueName() (string, error) {
	if err := p.expect("%"); err != nil {
		return "", err
	}
	start := p.pos
	for !p.eof() && isWordChar(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", p.failf("expected a value name after %%")
	}
	return p.src[start:p.pos], nil
}

func (p *parser) useValue() (*Value, error) {
	name, err := p.valueName()
	if err != nil {
		return nil, err
	}
	v, ok := p.values[name]
	if !ok {
		return nil, p.failf("use of undefined value %%%s", name)
	}
	return v, nil
}

func (p *parser) defineValue(name string, typ Type, def *Operation) *Value {
	v := &Value{Name: name, Type: typ, Def: def}
	p.values[name] = v
	return v
}

func (p *parser) useValueList() ([]*Value, error) {
	var list []*Value
	for {
		v, err := p.useValue()
		if err != nil {
			return nil, err
		}
		list = append(list, v)
		if !p.accept(",") {
			return list, nil
		}
	}
}

func (p *parser) blockFor(name string) *Block {
	if blk, ok := p.blocks[name]; ok {
		return blk
	}
	blk := &Block{Name: name}
	p.blocks[name] = blk
	return blk
}

func (p *parser) parseSuccessor() (Successor, error) {
	if err := p.expect("^"); err != nil {
		return Successor{}, err
	}
	name, err := p.word()
	if err != nil {
		return Successor{}, err
	}
	succ := Successor{Dest: p.blockFor(name)}
	if p.accept("(") {
		succ.Args, err = p.useValueList()
		if err != nil {
			return Successor{}, err
		}
		if err := p.expect(")"); err != nil {
			return Successor{}, err
		}
	}
	return succ, nil
}

// ---- types ----------------------------------------------------------------

func (p *parser) parseType() (Type, error) {
	if p.peek() == '(' {
		return p.parseFuncType()
	}
	name, err := p.word()
	if err != nil {
		return nil, err
	}
	switch name {
	case "index":
		return IndexType{}, nil
	case "none":
		return NoneType{}, nil
	case "logical":
		kind, err := p.angleInt()
		return LogicalType{Kind: kind}, err
	case "char":
		kind, err := p.angleInt()
		return CharType{Kind: kind}, err
	case "complex":
		kind, err := p.angleInt()
		return ComplexType{Kind: kind}, err
	case "ref":
		elem, err := p.angleType()
		return RefType{Elem: elem}, err
	case "heap":
		elem, err := p.angleType()
		return HeapType{Elem: elem}, err
	case "ptr":
		elem, err := p.angleType()
		return PtrType{Elem: elem}, err
	case "rec":
		if err := p.expect("<"); err != nil {
			return nil, err
		}
		rec, err := p.word()
		if err != nil {
			return nil, err
		}
		return RecordType{Name: rec}, p.expect(">")
	case "array":
		return p.parseArrayType()
	}
	if width, ok := scalarWidth(name, 'i'); ok {
		return IntType{Width: width}, nil
	}
	if width, ok := scalarWidth(name, 'f'); ok {
		return FloatType{Width: width}, nil
	}
	return nil, p.failf("unknown type %q", name)
}

func scalarWidth(name string, prefix byte) (int, bool) {
	if len(name) < 2 || name[0] != prefix {
		return 0, false
	}
	width, err := strconv.Atoi(name[1:])
	if err != nil || width <= 0 {
		return 0, false
	}
	return width, true
}

func (p *parser) angleInt() (int, error) {
	if err := p.expect("<"); err != nil {
		return 0, err
	}
	n, err := p.integer()
	if err != nil {
		return 0, err
	}
	return int(n), p.expect(">")
}

func (p *parser) angleType() (Type, error) {
	if err := p.expect("<"); err != nil {
		return nil, err
	}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return t, p.expect(">")
}

// parseArrayType reads the shape and element of array<2x?xf32>. The shape
// entries and the `x` separators are read character by character since no
// whitespace separates them.
func (p *parser) parseArrayType() (Type, error) {
	if err := p.expect("<"); err != nil {
		return nil, err
	}
	var shape []int
	for {
		p.skipSpace()
		if p.eof() {
			return nil, p.failf("unterminated array type")
		}
		c := p.src[p.pos]
		if c == '?' {
			p.pos++
			shape = append(shape, UnknownExtent)
		} else if c >= '0' && c <= '9' {
			start := p.pos
			for !p.eof() && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
				p.pos++
			}
			extent, err := strconv.Atoi(p.src[start:p.pos])
			if err != nil {
				return nil, err
			}
			shape = append(shape, extent)
		} else {
			break // element type
		}
		if p.eof() || p.src[p.pos] != 'x' {
			return nil, p.failf("expected x after array extent")
		}
		p.pos++
	}
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return SeqType{Shape: shape, Elem: elem}, p.expect(">")
}

func (p *parser) parseFuncType() (Type, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	var ft FuncType
	if p.peek() != ')' {
		for {
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			ft.Inputs = append(ft.Inputs, t)
			if !p.accept(",") {
				break
			}
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	if err := p.expect("->"); err != nil {
		return nil, err
	}
	results, err := p.parseTypeList()
	if err != nil {
		return nil, err
	}
	ft.Results = results
	return ft, nil
}

// parseTypeList reads one type or a parenthesized comma list.
func (p *parser) parseTypeList() ([]Type, error) {
	if !p.accept("(") {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return []Type{t}, nil
	}
	var types []Type
	if p.peek() != ')' {
		for {
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			types = append(types, t)
			if !p.accept(",") {
				break
			}
		}
	}
	return types, p.expect(")")
}

// ---- attributes -----------------------------------------------------------

func (p *parser) parseAttr() (Attribute, error) {
	c := p.peek()
	switch {
	case c == '"':
		s, err := p.quoted()
		return StringAttr{Value: s}, err
	case c == '@':
		p.pos++
		name, err := p.word()
		return SymbolRefAttr{Name: name}, err
	case c == '#':
		return p.parseCaseAttr()
	case c == '[':
		p.pos++
		var arr ArrayAttr
		if p.peek() != ']' {
			for {
				e, err := p.parseAttr()
				if err != nil {
					return nil, err
				}
				arr.Elems = append(arr.Elems, e)
				if !p.accept(",") {
					break
				}
			}
		}
		return arr, p.expect("]")
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumberAttr()
	}
	if p.accept("unit") {
		return UnitAttr{}, nil
	}
	if p.accept("dense") {
		return p.parseDenseAttr()
	}
	return nil, p.failf("expected an attribute near %q", p.rest(12))
}

func (p *parser) parseCaseAttr() (Attribute, error) {
	switch {
	case p.accept("#fir.point"):
		return CaseAttr{Kind: CasePoint}, nil
	case p.accept("#fir.interval"):
		return CaseAttr{Kind: CaseInterval}, nil
	case p.accept("#fir.lower"):
		return CaseAttr{Kind: CaseLower}, nil
	case p.accept("#fir.upper"):
		return CaseAttr{Kind: CaseUpper}, nil
	}
	return nil, p.failf("unknown case attribute near %q", p.rest(16))
}

func (p *parser) parseNumberAttr() (Attribute, error) {
	p.skipSpace()
	start := p.pos
	if p.src[p.pos] == '-' {
		p.pos++
	}
	isFloat := false
	for !p.eof() {
		c := p.src[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
		} else if c == '.' || c == 'e' || c == 'E' ||
			((c == '+' || c == '-') && isFloat && isExponentChar(p.src[p.pos-1])) {
			isFloat = true
			p.pos++
		} else {
			break
		}
	}
	lit := p.src[start:p.pos]
	if isFloat {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, p.failf("bad float literal %q", lit)
		}
		return FloatAttr{Value: f}, nil
	}
	n, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		return nil, p.failf("bad integer literal %q", lit)
	}
	return IntAttr{Value: n}, nil
}

func isExponentChar(c byte) bool { return c == 'e' || c == 'E' }

func (p *parser) parseDenseAttr() (Attribute, error) {
	if err := p.expect("<"); err != nil {
		return nil, err
	}
	if err := p.expect("["); err != nil {
		return nil, err
	}
	var dense DenseIntAttr
	if p.peek() != ']' {
		for {
			n, err := p.integer()
			if err != nil {
				return nil, err
			}
			dense.Values = append(dense.Values, int32(n))
			if !p.accept(",") {
				break
			}
		}
	}
	if err := p.expect("]"); err != nil {
		return nil, err
	}
	return dense, p.expect(">")
}

// parseOptionalAttrDict reads a trailing {name = attr, ...} dictionary.
func (p *parser) parseOptionalAttrDict(op *Operation) error {
	if !p.accept("{") {
		return nil
	}
	if p.peek() != '}' {
		for {
			name, err := p.word()
			if err != nil {
				return err
			}
			if err := p.expect("="); err != nil {
				return err
			}
			attr, err := p.parseAttr()
			if err != nil {
				return err
			}
			op.SetAttr(name, attr)
			if !p.accept(",") {
				break
			}
		}
	}
	return p.expect("}")
}

// ---- module structure -----------------------------------------------------

func (p *parser) parseModule() (*Module, error) {
	if err := p.expect("module"); err != nil {
		return nil, err
	}
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	m := &Module{}
	for {
		if p.accept("}") {
			break
		}
		if p.eof() {
			return nil, p.failf("unterminated module")
		}
		if p.accept("func") {
			f, err := p.parseFunction()
			if err != nil {
				return nil, err
			}
			m.Functions = append(m.Functions, f)
			continue
		}
		// Only globals live at module scope besides functions.
		p.values = map[string]*Value{}
		p.blocks = map[string]*Block{}
		op, err := p.parseOp()
		if err != nil {
			return nil, err
		}
		if op.Name != OpGlobal {
			return nil, p.failf("%s is not a module-scope operation", op.Name)
		}
		m.Globals = append(m.Globals, op)
	}
	return m, nil
}

func (p *parser) parseFunction() (*Function, error) {
	if err := p.expect("@"); err != nil {
		return nil, err
	}
	name, err := p.word()
	if err != nil {
		return nil, err
	}
	f := &Function{Name: name}
	p.values = map[string]*Value{}
	p.blocks = map[string]*Block{}
	p.defined = map[string]bool{}

	if err := p.expect("("); err != nil {
		return nil, err
	}
	entry := p.blockFor("bb0")
	p.defined["bb0"] = true
	// A definition names its entry arguments; a declaration lists bare types.
	if p.peek() == '%' {
		for {
			argName, err := p.valueName()
			if err != nil {
				return nil, err
			}
			if err := p.expect(":"); err != nil {
				return nil, err
			}
			typ, err := p.parseType()
			if err != nil {
				return nil, err
			}
			arg := p.defineValue(argName, typ, nil)
			entry.Args = append(entry.Args, arg)
			f.Type.Inputs = append(f.Type.Inputs, typ)
			if !p.accept(",") {
				break
			}
		}
	} else if p.peek() != ')' {
		for {
			typ, err := p.parseType()
			if err != nil {
				return nil, err
			}
			f.Type.Inputs = append(f.Type.Inputs, typ)
			if !p.accept(",") {
				break
			}
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	if p.accept("->") {
		f.Type.Results, err = p.parseTypeList()
		if err != nil {
			return nil, err
		}
	}
	if !p.accept("{") {
		return f, nil // declaration
	}

	f.Body = &Region{Blocks: []*Block{entry}}
	current := entry
	for {
		if p.accept("}") {
			break
		}
		if p.eof() {
			return nil, p.failf("unterminated function body")
		}
		if p.peek() == '^' {
			current, err = p.parseBlockHeader(f.Body)
			if err != nil {
				return nil, err
			}
			continue
		}
		op, err := p.parseOp()
		if err != nil {
			return nil, err
		}
		current.Ops = append(current.Ops, op)
	}
	for name := range p.blocks {
		if !p.defined[name] {
			return nil, p.failf("branch to undefined block ^%s", name)
		}
	}
	return f, nil
}

func (p *parser) parseBlockHeader(body *Region) (*Block, error) {
	if err := p.expect("^"); err != nil {
		return nil, err
	}
	name, err := p.word()
	if err != nil {
		return nil, err
	}
	if p.defined[name] {
		return nil, p.failf("redefinition of block ^%s", name)
	}
	p.defined[name] = true
	blk := p.blockFor(name)
	if p.accept("(") {
		for {
			argName, err := p.valueName()
			if err != nil {
				return nil, err
			}
			if err := p.expect(":"); err != nil {
				return nil, err
			}
			typ, err := p.parseType()
			if err != nil {
				return nil, err
			}
			blk.Args = append(blk.Args, p.defineValue(argName, typ, nil))
			if !p.accept(",") {
				break
			}
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	body.Blocks = append(body.Blocks, blk)
	return blk, nil
}

// ---- operations -----------------------------------------------------------

func (p *parser) parseOp() (*Operation, error) {
	var resultNames []string
	if p.peek() == '%' {
		for {
			name, err := p.valueName()
			if err != nil {
				return nil, err
			}
			resultNames = append(resultNames, name)
			if !p.accept(",") {
				break
			}
		}
		if err := p.expect("="); err != nil {
			return nil, err
		}
	}
	opName, err := p.word()
	if err != nil {
		return nil, err
	}
	if _, known := opRegistry[opName]; !known {
		return nil, p.failf("unknown operation %q", opName)
	}
	op := &Operation{Name: opName}
	resultTypes, err := p.parseOpBody(op)
	if err != nil {
		return nil, errors.Wrap(err, opName)
	}
	if len(resultNames) != len(resultTypes) {
		return nil, p.failf("%s: %d results named, operation produces %d",
			opName, len(resultNames), len(resultTypes))
	}
	for i, name := range resultNames {
		op.Results = append(op.Results, p.defineValue(name, resultTypes[i], op))
	}
	if err := p.parseOptionalAttrDict(op); err != nil {
		return nil, err
	}
	return op, nil
}

// parseOpBody reads the operation-specific syntax and returns the result
// types the textual form implies.
func (p *parser) parseOpBody(op *Operation) ([]Type, error) {
	switch op.Name {
	case OpConstant:
		value, err := p.parseAttr()
		if err != nil {
			return nil, err
		}
		op.SetAttr(AttrValue, value)
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		return []Type{typ}, err

	case OpUndefined:
		typ, err := p.parseType()
		return []Type{typ}, err

	case OpAddF, OpSubF, OpMulF, OpDivF, OpAddI, OpSubI, OpMulI, OpDivI:
		operands, err := p.useValueList()
		if err != nil {
			return nil, err
		}
		op.Operands = operands
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		return []Type{typ}, err

	case OpNegF:
		v, err := p.useValue()
		if err != nil {
			return nil, err
		}
		op.Operands = []*Value{v}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		return []Type{typ}, err

	case OpCmpF, OpCmpI:
		predicate, err := p.quoted()
		if err != nil {
			return nil, err
		}
		op.SetAttr(AttrPredicate, StringAttr{Value: predicate})
		if err := p.expect(","); err != nil {
			return nil, err
		}
		op.Operands, err = p.useValueList()
		if err != nil {
			return nil, err
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		if _, err := p.parseType(); err != nil {
			return nil, err
		}
		return []Type{DefaultLogical}, nil

	case OpConvert:
		v, err := p.useValue()
		if err != nil {
			return nil, err
		}
		op.Operands = []*Value{v}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		if err := p.expect("("); err != nil {
			return nil, err
		}
		if _, err := p.parseType(); err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		if err := p.expect("->"); err != nil {
			return nil, err
		}
		to, err := p.parseType()
		return []Type{to}, err

	case OpAlloca:
		elem, err := p.parseType()
		return []Type{RefType{Elem: elem}}, err

	case OpAllocMem:
		elem, err := p.parseType()
		return []Type{HeapType{Elem: elem}}, err

	case OpFreeMem:
		v, err := p.useValue()
		if err != nil {
			return nil, err
		}
		op.Operands = []*Value{v}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		_, err = p.parseType()
		return nil, err

	case OpLoad:
		v, err := p.useValue()
		if err != nil {
			return nil, err
		}
		op.Operands = []*Value{v}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		ref, err := p.parseType()
		if err != nil {
			return nil, err
		}
		elem := ElemType(ref)
		if elem == nil {
			return nil, p.failf("cannot load through %s", TypeString(ref))
		}
		return []Type{elem}, nil

	case OpStore:
		v, err := p.useValue()
		if err != nil {
			return nil, err
		}
		if err := p.expect("to"); err != nil {
			return nil, err
		}
		ref, err := p.useValue()
		if err != nil {
			return nil, err
		}
		op.Operands = []*Value{v, ref}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		_, err = p.parseType()
		return nil, err

	case OpLoop:
		return p.parseLoop(op)

	case OpIterateWhile:
		return p.parseIterateWhile(op)

	case OpWhere:
		return p.parseWhere(op)

	case OpResult, OpReturn:
		if p.sameLinePeek() == '%' {
			operands, err := p.useValueList()
			if err != nil {
				return nil, err
			}
			op.Operands = operands
		}
		return nil, nil

	case OpEnd, OpUnreachable:
		return nil, nil

	case OpSelect, OpSelectCase, OpSelectRank, OpSelectType:
		return nil, p.parseSelect(op)

	case OpCall:
		return p.parseCall(op)

	case OpGlobal:
		return nil, p.parseGlobal(op)

	case OpAddressOf:
		if err := p.expect("@"); err != nil {
			return nil, err
		}
		sym, err := p.word()
		if err != nil {
			return nil, err
		}
		op.SetAttr(AttrSymbol, SymbolRefAttr{Name: sym})
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		return []Type{typ}, err

	case OpBr:
		succ, err := p.parseSuccessor()
		if err != nil {
			return nil, err
		}
		op.Successors = []Successor{succ}
		return nil, nil

	case OpCondBr:
		cond, err := p.useValue()
		if err != nil {
			return nil, err
		}
		op.Operands = []*Value{cond}
		if err := p.expect(","); err != nil {
			return nil, err
		}
		trueSucc, err := p.parseSuccessor()
		if err != nil {
			return nil, err
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
		falseSucc, err := p.parseSuccessor()
		if err != nil {
			return nil, err
		}
		op.Successors = []Successor{trueSucc, falseSucc}
		return nil, nil
	}
	return nil, p.failf("no parser for %s", op.Name)
}

// parseRegionBody reads a single-block braced region whose entry block is
// already populated with its arguments.
func (p *parser) parseRegionBody(entry *Block) error {
	if err := p.expect("{"); err != nil {
		return err
	}
	for {
		if p.accept("}") {
			return nil
		}
		if p.eof() {
			return p.failf("unterminated region")
		}
		op, err := p.parseOp()
		if err != nil {
			return err
		}
		entry.Ops = append(entry.Ops, op)
	}
}

func (p *parser) parseLoop(op *Operation) ([]Type, error) {
	indName, err := p.valueName()
	if err != nil {
		return nil, err
	}
	if err := p.expect("="); err != nil {
		return nil, err
	}
	lb, err := p.useValue()
	if err != nil {
		return nil, err
	}
	if err := p.expect("to"); err != nil {
		return nil, err
	}
	ub, err := p.useValue()
	if err != nil {
		return nil, err
	}
	op.Operands = []*Value{lb, ub}
	stepCount := int32(0)
	if p.accept("step") {
		step, err := p.useValue()
		if err != nil {
			return nil, err
		}
		op.Operands = append(op.Operands, step)
		stepCount = 1
	}
	if p.accept("unordered") {
		op.SetAttr(AttrUnordered, UnitAttr{})
	}
	entry := &Block{}
	entry.Args = append(entry.Args, p.defineValue(indName, IndexType{}, nil))
	iterTypes, err := p.parseIterArgs(op, entry)
	if err != nil {
		return nil, err
	}
	op.SetAttr(AttrOperandSegments,
		DenseIntAttr{Values: []int32{1, 1, stepCount, int32(len(iterTypes))}})
	op.Regions = []*Region{{Blocks: []*Block{entry}}}
	return iterTypes, p.parseRegionBody(entry)
}

func (p *parser) parseIterateWhile(op *Operation) ([]Type, error) {
	indName, err := p.valueName()
	if err != nil {
		return nil, err
	}
	if err := p.expect("="); err != nil {
		return nil, err
	}
	lb, err := p.useValue()
	if err != nil {
		return nil, err
	}
	if err := p.expect("to"); err != nil {
		return nil, err
	}
	ub, err := p.useValue()
	if err != nil {
		return nil, err
	}
	if err := p.expect("while"); err != nil {
		return nil, err
	}
	if err := p.expect("("); err != nil {
		return nil, err
	}
	whileName, err := p.valueName()
	if err != nil {
		return nil, err
	}
	if err := p.expect("="); err != nil {
		return nil, err
	}
	whileInit, err := p.useValue()
	if err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	whileType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	op.Operands = []*Value{lb, ub, whileInit}
	entry := &Block{}
	entry.Args = append(entry.Args, p.defineValue(indName, IndexType{}, nil))
	entry.Args = append(entry.Args, p.defineValue(whileName, whileType, nil))
	iterTypes, err := p.parseIterArgs(op, entry)
	if err != nil {
		return nil, err
	}
	op.SetAttr(AttrOperandSegments,
		DenseIntAttr{Values: []int32{1, 1, 1, int32(len(iterTypes))}})
	op.Regions = []*Region{{Blocks: []*Block{entry}}}
	resultTypes := append([]Type{whileType}, iterTypes...)
	return resultTypes, p.parseRegionBody(entry)
}

// parseIterArgs reads iter_args(%a = %init : T, ...), appending the inits
// to the operand list and the arguments to the entry block.
func (p *parser) parseIterArgs(op *Operation, entry *Block) ([]Type, error) {
	if !p.accept("iter_args") {
		return nil, nil
	}
	if err := p.expect("("); err != nil {
		return nil, err
	}
	var types []Type
	for {
		argName, err := p.valueName()
		if err != nil {
			return nil, err
		}
		if err := p.expect("="); err != nil {
			return nil, err
		}
		init, err := p.useValue()
		if err != nil {
			return nil, err
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		op.Operands = append(op.Operands, init)
		entry.Args = append(entry.Args, p.defineValue(argName, typ, nil))
		types = append(types, typ)
		if !p.accept(",") {
			break
		}
	}
	return types, p.expect(")")
}

func (p *parser) parseWhere(op *Operation) ([]Type, error) {
	cond, err := p.useValue()
	if err != nil {
		return nil, err
	}
	op.Operands = []*Value{cond}
	var resultTypes []Type
	if p.accept("->") {
		if err := p.expect("("); err != nil {
			return nil, err
		}
		for {
			typ, err := p.parseType()
			if err != nil {
				return nil, err
			}
			resultTypes = append(resultTypes, typ)
			if !p.accept(",") {
				break
			}
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
	}
	thenBlock := &Block{}
	if err := p.parseRegionBody(thenBlock); err != nil {
		return nil, err
	}
	elseRegion := &Region{}
	if p.accept("otherwise") {
		elseBlock := &Block{}
		if err := p.parseRegionBody(elseBlock); err != nil {
			return nil, err
		}
		elseRegion.Blocks = []*Block{elseBlock}
	}
	op.Regions = []*Region{{Blocks: []*Block{thenBlock}}, elseRegion}
	return resultTypes, nil
}

func (p *parser) parseSelect(op *Operation) error {
	selector, err := p.useValue()
	if err != nil {
		return err
	}
	if err := p.expect(":"); err != nil {
		return err
	}
	if _, err := p.parseType(); err != nil {
		return err
	}
	if err := p.expect("["); err != nil {
		return err
	}
	var dests []SelectDest
	for {
		var dest SelectDest
		dest.Selector, err = p.parseSelectCaseValue(op.Name)
		if err != nil {
			return err
		}
		if err := p.expect(","); err != nil {
			return err
		}
		// Compare operands, then the destination.
		for p.peek() == '%' {
			cmp, err := p.useValue()
			if err != nil {
				return err
			}
			dest.Compare = append(dest.Compare, cmp)
			if err := p.expect(","); err != nil {
				return err
			}
		}
		succ, err := p.parseSuccessor()
		if err != nil {
			return err
		}
		dest.Dest = succ.Dest
		dest.Args = succ.Args
		dests = append(dests, dest)
		if !p.accept(",") {
			break
		}
	}
	if err := p.expect("]"); err != nil {
		return err
	}
	*op = *buildSelect(op.Name, selector, dests)
	return nil
}

// parseSelectCaseValue reads one case selector: `unit` for the default, an
// integer for select/select_rank, a case attribute for select_case, a type
// for select_type.
func (p *parser) parseSelectCaseValue(opName string) (Attribute, error) {
	if p.accept("unit") {
		return UnitAttr{}, nil
	}
	switch opName {
	case OpSelectCase:
		return p.parseCaseAttr()
	case OpSelectType:
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return TypeAttr{Type: typ}, nil
	default:
		n, err := p.integer()
		if err != nil {
			return nil, err
		}
		return IntAttr{Value: n}, nil
	}
}

func (p *parser) parseCall(op *Operation) ([]Type, error) {
	var args []*Value
	indirect := p.peek() == '%'
	var callee *Value
	if indirect {
		fn, err := p.useValue()
		if err != nil {
			return nil, err
		}
		callee = fn
	} else {
		if err := p.expect("@"); err != nil {
			return nil, err
		}
		name, err := p.word()
		if err != nil {
			return nil, err
		}
		op.SetAttr(AttrCallee, SymbolRefAttr{Name: name})
	}
	if err := p.expect("("); err != nil {
		return nil, err
	}
	if p.peek() != ')' {
		var err error
		args, err = p.useValueList()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	signature, err := p.parseFuncType()
	if err != nil {
		return nil, err
	}
	ft := signature.(FuncType)
	if indirect {
		op.Operands = append([]*Value{callee}, args...)
	} else {
		op.Operands = args
	}
	return ft.Results, nil
}

func (p *parser) parseGlobal(op *Operation) error {
	if err := p.expect("@"); err != nil {
		return err
	}
	name, err := p.word()
	if err != nil {
		return err
	}
	op.SetAttr(AttrSymName, StringAttr{Value: name})
	if p.accept("constant") {
		op.SetAttr(AttrConstant, UnitAttr{})
	}
	for _, linkage := range []string{"internal", "common", "weak"} {
		if p.accept(linkage) {
			op.SetAttr(AttrLinkage, StringAttr{Value: linkage})
			break
		}
	}
	if err := p.expect(":"); err != nil {
		return err
	}
	typ, err := p.parseType()
	if err != nil {
		return err
	}
	op.SetAttr(AttrType, TypeAttr{Type: typ})
	if p.accept("=") {
		init, err := p.parseAttr()
		if err != nil {
			return err
		}
		op.SetAttr(AttrValue, init)
	}
	return nil
}
