package fir

import (
	"sort"

	"github.com/pkg/errors"
)

// Value is an SSA value: the result of an operation or a block argument.
type Value struct {
	Name string // SSA name without the leading %
	Type Type
	Def  *Operation // defining operation, nil for block arguments
}

// Successor is a branch edge to a block, with the arguments passed to the
// destination's block arguments.
type Successor struct {
	Dest *Block
	Args []*Value
}

// Operation is one IR instruction: a kind name, operands, results, named
// attributes, nested regions, and successor edges for terminators.
type Operation struct {
	Name       string
	Operands   []*Value
	Results    []*Value
	Attributes map[string]Attribute
	Regions    []*Region
	Successors []Successor
}

// Attr returns the named attribute, nil if absent.
func (op *Operation) Attr(name string) Attribute {
	return op.Attributes[name]
}

// SetAttr attaches a named attribute.
func (op *Operation) SetAttr(name string, attr Attribute) {
	if op.Attributes == nil {
		op.Attributes = make(map[string]Attribute)
	}
	op.Attributes[name] = attr
}

// HasAttr reports whether the named attribute is present.
func (op *Operation) HasAttr(name string) bool {
	_, ok := op.Attributes[name]
	return ok
}

// AttrNames returns the attribute names in sorted order, for deterministic
// printing.
func (op *Operation) AttrNames() []string {
	names := make([]string, 0, len(op.Attributes))
	for name := range op.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsTerminator reports whether the operation kind ends a block.
func (op *Operation) IsTerminator() bool {
	return opRegistry[op.Name].terminator
}

// Block is an ordered list of operations with typed block arguments. In a
// multi-block region every block ends in a terminator.
type Block struct {
	Name string
	Args []*Value
	Ops  []*Operation
}

// Terminator returns the block's final operation if it is a terminator.
func (b *Block) Terminator() *Operation {
	if len(b.Ops) == 0 {
		return nil
	}
	last := b.Ops[len(b.Ops)-1]
	if !last.IsTerminator() {
		return nil
	}
	return last
}

// AddArg appends a typed block argument and returns its value.
func (b *Block) AddArg(name string, typ Type) *Value {
	v := &Value{Name: name, Type: typ}
	b.Args = append(b.Args, v)
	return v
}

// Region is an ordered list of blocks owned by an operation.
type Region struct {
	Blocks []*Block
}

// Empty reports whether the region contains no operations at all. A region
// holding only an implicit fir.end terminator is still empty.
func (r *Region) Empty() bool {
	if r == nil {
		return true
	}
	for _, blk := range r.Blocks {
		for _, op := range blk.Ops {
			if op.Name != OpEnd {
				return false
			}
		}
	}
	return true
}

// Function is a module-level function: a symbol name, a signature, and a
// body region whose entry block arguments mirror the signature inputs.
type Function struct {
	Name string
	Type FuncType
	Body *Region
}

// EntryBlock returns the function's first block, nil for a declaration.
func (f *Function) EntryBlock() *Block {
	if f.Body == nil || len(f.Body.Blocks) == 0 {
		return nil
	}
	return f.Body.Blocks[0]
}

// Module is the top-level IR container: globals and functions.
type Module struct {
	Globals   []*Operation
	Functions []*Function
}

// Function returns the named function, nil if absent.
func (m *Module) Function(name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Global returns the named global operation, nil if absent.
func (m *Module) Global(name string) *Operation {
	for _, g := range m.Globals {
		if sym, ok := g.Attr(AttrSymName).(StringAttr); ok && sym.Value == name {
			return g
		}
	}
	return nil
}

// Builder creates operations inside a block, numbering result values.
type Builder struct {
	block  *Block
	nextID int
}

// NewBuilder returns a builder inserting at the end of block.
func NewBuilder(block *Block) *Builder {
	b := &Builder{}
	b.SetInsertionBlock(block)
	return b
}

// SetInsertionBlock moves the insertion point to the end of block.
func (b *Builder) SetInsertionBlock(block *Block) {
	b.block = block
}

// Insert appends op to the current block and returns it.
func (b *Builder) Insert(op *Operation) *Operation {
	if b.block == nil {
		panic("fir: builder has no insertion block")
	}
	b.block.Ops = append(b.block.Ops, op)
	return op
}

// NewValue mints a fresh numbered SSA value of the given type.
func (b *Builder) NewValue(typ Type) *Value {
	v := &Value{Name: ssaName(b.nextID), Type: typ}
	b.nextID++
	return v
}

func ssaName(id int) string {
	const digits = "0123456789"
	if id == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for id > 0 {
		i--
		buf[i] = digits[id%10]
		id /= 10
	}
	return string(buf[i:])
}

// addResults mints result values for op.
func (b *Builder) addResults(op *Operation, types ...Type) {
	for _, typ := range types {
		v := b.NewValue(typ)
		v.Def = op
		op.Results = append(op.Results, v)
	}
}

// opInfo is the registry entry of one operation kind.
type opInfo struct {
	terminator bool
	verify     func(*Operation) error
	fold       func(*Operation) (Attribute, bool)
}

var opRegistry = map[string]opInfo{}

func registerOp(name string, info opInfo) string {
	opRegistry[name] = info
	return name
}

// VerifyOp runs the structural verifier of a single operation.
func VerifyOp(op *Operation) error {
	info, ok := opRegistry[op.Name]
	if !ok {
		return errors.Errorf("%s: unknown operation", op.Name)
	}
	for i, operand := range op.Operands {
		if operand == nil || operand.Type == nil {
			return errors.Errorf("%s: operand %d is undefined", op.Name, i)
		}
	}
	if info.verify == nil {
		return nil
	}
	if err := info.verify(op); err != nil {
		return errors.Wrap(err, op.Name)
	}
	return nil
}

// Fold attempts to constant-fold op. For a value-producing operation a
// non-nil attribute (or, for identity folds, a nil attribute with ok true)
// is returned; for fir.where with two empty regions ok reports that the
// operation can be erased.
func Fold(op *Operation) (Attribute, bool) {
	info, ok := opRegistry[op.Name]
	if !ok || info.fold == nil {
		return nil, false
	}
	return info.fold(op)
}

// Verify checks a whole module: every operation's structural verifier, the
// terminator discipline of multi-block regions, and call/return signatures
// against the module's functions.
func Verify(m *Module) error {
	for _, g := range m.Globals {
		if err := VerifyOp(g); err != nil {
			return err
		}
	}
	for _, f := range m.Functions {
		if err := verifyFunction(m, f); err != nil {
			return errors.Wrap(err, f.Name)
		}
	}
	return nil
}

func verifyFunction(m *Module, f *Function) error {
	if f.Body == nil {
		return nil // declaration
	}
	if len(f.Body.Blocks) == 0 {
		return errors.New("function body has no blocks")
	}
	entry := f.Body.Blocks[0]
	if len(entry.Args) != len(f.Type.Inputs) {
		return errors.Errorf("entry block has %d arguments, signature has %d",
			len(entry.Args), len(f.Type.Inputs))
	}
	for i, arg := range entry.Args {
		if !TypesEqual(arg.Type, f.Type.Inputs[i]) {
			return errors.Errorf("entry argument %d has type %s, signature wants %s",
				i, TypeString(arg.Type), TypeString(f.Type.Inputs[i]))
		}
	}
	return verifyRegion(m, f, f.Body)
}

func verifyRegion(m *Module, f *Function, r *Region) error {
	multi := len(r.Blocks) > 1
	for _, blk := range r.Blocks {
		if multi && blk.Terminator() == nil {
			return errors.Errorf("block ^%s does not end in a terminator", blk.Name)
		}
		for _, op := range blk.Ops {
			if err := VerifyOp(op); err != nil {
				return err
			}
			if err := verifyInterproc(m, f, op); err != nil {
				return err
			}
			for _, nested := range op.Regions {
				if err := verifyRegion(m, f, nested); err != nil {
					return err
				}
			}
			// Segmented select operations carry their successor arguments
			// in the flat operand list; their own verifiers check them.
			if !op.HasAttr(AttrTargetSegments) {
				for _, succ := range op.Successors {
					if err := verifySuccessor(op, succ); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func verifySuccessor(op *Operation, succ Successor) error {
	if succ.Dest == nil {
		return errors.Errorf("%s: successor has no destination block", op.Name)
	}
	if len(succ.Args) != len(succ.Dest.Args) {
		return errors.Errorf("%s: %d arguments passed to ^%s, which has %d",
			op.Name, len(succ.Args), succ.Dest.Name, len(succ.Dest.Args))
	}
	for i, arg := range succ.Args {
		if !TypesEqual(arg.Type, succ.Dest.Args[i].Type) {
			return errors.Errorf("%s: argument %d to ^%s has type %s, want %s",
				op.Name, i, succ.Dest.Name, TypeString(arg.Type),
				TypeString(succ.Dest.Args[i].Type))
		}
	}
	return nil
}

// verifyInterproc checks the rules that need module or function context:
// direct call signatures, address_of resolution, and return arity.
func verifyInterproc(m *Module, f *Function, op *Operation) error {
	switch op.Name {
	case OpCall:
		callee, ok := op.Attr(AttrCallee).(SymbolRefAttr)
		if !ok {
			return nil // indirect call, checked per-op
		}
		target := m.Function(callee.Name)
		if target == nil {
			return errors.Errorf("call to undefined function @%s", callee.Name)
		}
		return checkCallSignature(op, op.Operands, target.Type)
	case OpAddressOf:
		sym, ok := op.Attr(AttrSymbol).(SymbolRefAttr)
		if !ok {
			return errors.New("address_of requires a symbol attribute")
		}
		if m.Global(sym.Name) == nil && m.Function(sym.Name) == nil {
			return errors.Errorf("address_of references undefined symbol @%s", sym.Name)
		}
	case OpReturn:
		if len(op.Operands) != len(f.Type.Results) {
			return errors.Errorf("return carries %d values, function returns %d",
				len(op.Operands), len(f.Type.Results))
		}
		for i, operand := range op.Operands {
			if !TypesEqual(operand.Type, f.Type.Results[i]) {
				return errors.Errorf("return value %d has type %s, function returns %s",
					i, TypeString(operand.Type), TypeString(f.Type.Results[i]))
			}
		}
	}
	return nil
}

// subOperands slices group i out of a segmented operand list starting at
// base, using the dense segment-length attribute named by attrName.
func subOperands(op *Operation, attrName string, base, i int) []*Value {
	segments, ok := op.Attr(attrName).(DenseIntAttr)
	if !ok || i >= len(segments.Values) {
		return nil
	}
	offset := base
	for j := 0; j < i; j++ {
		offset += int(segments.Values[j])
	}
	n := int(segments.Values[i])
	if offset+n > len(op.Operands) {
		return nil
	}
	return op.Operands[offset : offset+n]
}

func segmentSum(attr Attribute) int {
	segments, ok := attr.(DenseIntAttr)
	if !ok {
		return 0
	}
	sum := 0
	for _, v := range segments.Values {
		sum += int(v)
	}
	return sum
}
