package fir

import "github.com/pkg/errors"

// Operation kind names. Each is registered with its terminator flag,
// structural verifier, and constant folder.
const (
	OpConstant     = "fir.constant"
	OpUndefined    = "fir.undefined"
	OpAddF         = "fir.addf"
	OpSubF         = "fir.subf"
	OpMulF         = "fir.mulf"
	OpDivF         = "fir.divf"
	OpNegF         = "fir.negf"
	OpAddI         = "fir.addi"
	OpSubI         = "fir.subi"
	OpMulI         = "fir.muli"
	OpDivI         = "fir.divi"
	OpCmpF         = "fir.cmpf"
	OpCmpI         = "fir.cmpi"
	OpConvert      = "fir.convert"
	OpAlloca       = "fir.alloca"
	OpAllocMem     = "fir.allocmem"
	OpFreeMem      = "fir.freemem"
	OpLoad         = "fir.load"
	OpStore        = "fir.store"
	OpLoop         = "fir.loop"
	OpIterateWhile = "fir.iterate_while"
	OpWhere        = "fir.where"
	OpResult       = "fir.result"
	OpEnd          = "fir.end"
	OpSelect       = "fir.select"
	OpSelectCase   = "fir.select_case"
	OpSelectRank   = "fir.select_rank"
	OpSelectType   = "fir.select_type"
	OpCall         = "fir.call"
	OpGlobal       = "fir.global"
	OpAddressOf    = "fir.address_of"
	OpBr           = "fir.br"
	OpCondBr       = "fir.cond_br"
	OpReturn       = "fir.return"
	OpUnreachable  = "fir.unreachable"
)

// Well-known attribute names.
const (
	AttrValue           = "value"
	AttrPredicate       = "predicate"
	AttrCallee          = "callee"
	AttrSymbol          = "symbol"
	AttrSymName         = "sym_name"
	AttrType            = "type"
	AttrLinkage         = "linkage"
	AttrConstant        = "constant"
	AttrUnordered       = "unordered"
	AttrCases           = "cases"
	AttrCompareSegments = "compare_operand_segments"
	AttrTargetSegments  = "target_operand_segments"
	AttrOperandSegments = "operand_segment_sizes"
	AttrBindName        = "bind_name"
)

// DefaultLogical is the result type of comparisons.
var DefaultLogical = LogicalType{Kind: 4}

func init() {
	registerOp(OpConstant, opInfo{verify: verifyConstant, fold: foldConstant})
	registerOp(OpUndefined, opInfo{verify: verifyUndefined})
	registerOp(OpAddF, opInfo{verify: verifyFloatBinary, fold: foldFloatBinary(func(a, b float64) float64 { return a + b })})
	registerOp(OpSubF, opInfo{verify: verifyFloatBinary, fold: foldFloatBinary(func(a, b float64) float64 { return a - b })})
	registerOp(OpMulF, opInfo{verify: verifyFloatBinary, fold: foldFloatBinary(func(a, b float64) float64 { return a * b })})
	registerOp(OpDivF, opInfo{verify: verifyFloatBinary, fold: foldFloatBinary(func(a, b float64) float64 { return a / b })})
	registerOp(OpNegF, opInfo{verify: verifyFloatUnary, fold: foldNegF})
	registerOp(OpAddI, opInfo{verify: verifyIntBinary, fold: foldIntBinary(func(a, b int64) (int64, bool) { return a + b, true })})
	registerOp(OpSubI, opInfo{verify: verifyIntBinary, fold: foldIntBinary(func(a, b int64) (int64, bool) { return a - b, true })})
	registerOp(OpMulI, opInfo{verify: verifyIntBinary, fold: foldIntBinary(func(a, b int64) (int64, bool) { return a * b, true })})
	registerOp(OpDivI, opInfo{verify: verifyIntBinary, fold: foldIntBinary(func(a, b int64) (int64, bool) {
		if b == 0 {
			return 0, false
		}
		return a / b, true
	})})
	registerOp(OpCmpF, opInfo{verify: verifyCmpF})
	registerOp(OpCmpI, opInfo{verify: verifyCmpI})
	registerOp(OpConvert, opInfo{verify: verifyConvert, fold: foldConvert})
	registerOp(OpAlloca, opInfo{verify: verifyAlloca})
	registerOp(OpAllocMem, opInfo{verify: verifyAllocMem})
	registerOp(OpFreeMem, opInfo{verify: verifyFreeMem})
	registerOp(OpLoad, opInfo{verify: verifyLoad})
	registerOp(OpStore, opInfo{verify: verifyStore})
	registerOp(OpLoop, opInfo{verify: verifyLoop})
	registerOp(OpIterateWhile, opInfo{verify: verifyIterateWhile})
	registerOp(OpWhere, opInfo{verify: verifyWhere, fold: foldWhere})
	registerOp(OpResult, opInfo{terminator: true})
	registerOp(OpEnd, opInfo{terminator: true})
	registerOp(OpSelect, opInfo{terminator: true, verify: verifySelect})
	registerOp(OpSelectCase, opInfo{terminator: true, verify: verifySelectCase})
	registerOp(OpSelectRank, opInfo{terminator: true, verify: verifySelectRank})
	registerOp(OpSelectType, opInfo{terminator: true, verify: verifySelectType})
	registerOp(OpCall, opInfo{verify: verifyCall})
	registerOp(OpGlobal, opInfo{verify: verifyGlobal})
	registerOp(OpAddressOf, opInfo{verify: verifyAddressOf})
	registerOp(OpBr, opInfo{terminator: true, verify: verifyBr})
	registerOp(OpCondBr, opInfo{terminator: true, verify: verifyCondBr})
	registerOp(OpReturn, opInfo{terminator: true})
	registerOp(OpUnreachable, opInfo{terminator: true})
}

// ---- Builders -------------------------------------------------------------

// Constant builds a typed literal.
func (b *Builder) Constant(value Attribute, typ Type) *Operation {
	op := &Operation{Name: OpConstant}
	op.SetAttr(AttrValue, value)
	b.addResults(op, typ)
	return b.Insert(op)
}

// Undefined builds a value with no defined content.
func (b *Builder) Undefined(typ Type) *Operation {
	op := &Operation{Name: OpUndefined}
	b.addResults(op, typ)
	return b.Insert(op)
}

func (b *Builder) binary(name string, lhs, rhs *Value) *Operation {
	op := &Operation{Name: name, Operands: []*Value{lhs, rhs}}
	b.addResults(op, lhs.Type)
	return b.Insert(op)
}

// AddF builds a float addition.
func (b *Builder) AddF(lhs, rhs *Value) *Operation { return b.binary(OpAddF, lhs, rhs) }

// SubF builds a float subtraction.
func (b *Builder) SubF(lhs, rhs *Value) *Operation { return b.binary(OpSubF, lhs, rhs) }

// MulF builds a float multiplication.
func (b *Builder) MulF(lhs, rhs *Value) *Operation { return b.binary(OpMulF, lhs, rhs) }

// DivF builds a float division.
func (b *Builder) DivF(lhs, rhs *Value) *Operation { return b.binary(OpDivF, lhs, rhs) }

// NegF builds a float negation.
func (b *Builder) NegF(v *Value) *Operation {
	op := &Operation{Name: OpNegF, Operands: []*Value{v}}
	b.addResults(op, v.Type)
	return b.Insert(op)
}

// AddI builds an integer addition.
func (b *Builder) AddI(lhs, rhs *Value) *Operation { return b.binary(OpAddI, lhs, rhs) }

// SubI builds an integer subtraction.
func (b *Builder) SubI(lhs, rhs *Value) *Operation { return b.binary(OpSubI, lhs, rhs) }

// MulI builds an integer multiplication.
func (b *Builder) MulI(lhs, rhs *Value) *Operation { return b.binary(OpMulI, lhs, rhs) }

// DivI builds an integer division.
func (b *Builder) DivI(lhs, rhs *Value) *Operation { return b.binary(OpDivI, lhs, rhs) }

// CmpF builds a float comparison with a textual predicate.
func (b *Builder) CmpF(predicate string, lhs, rhs *Value) *Operation {
	return b.cmp(OpCmpF, predicate, lhs, rhs)
}

// CmpI builds an integer comparison with a textual predicate.
func (b *Builder) CmpI(predicate string, lhs, rhs *Value) *Operation {
	return b.cmp(OpCmpI, predicate, lhs, rhs)
}

func (b *Builder) cmp(name, predicate string, lhs, rhs *Value) *Operation {
	op := &Operation{Name: name, Operands: []*Value{lhs, rhs}}
	op.SetAttr(AttrPredicate, StringAttr{Value: predicate})
	b.addResults(op, DefaultLogical)
	return b.Insert(op)
}

// Convert builds a type conversion.
func (b *Builder) Convert(v *Value, to Type) *Operation {
	op := &Operation{Name: OpConvert, Operands: []*Value{v}}
	b.addResults(op, to)
	return b.Insert(op)
}

// Alloca builds a stack allocation producing ref<elem>.
func (b *Builder) Alloca(elem Type) *Operation {
	op := &Operation{Name: OpAlloca}
	b.addResults(op, RefType{Elem: elem})
	return b.Insert(op)
}

// AllocMem builds a heap allocation producing heap<elem>.
func (b *Builder) AllocMem(elem Type) *Operation {
	op := &Operation{Name: OpAllocMem}
	b.addResults(op, HeapType{Elem: elem})
	return b.Insert(op)
}

// FreeMem releases a heap allocation.
func (b *Builder) FreeMem(heap *Value) *Operation {
	return b.Insert(&Operation{Name: OpFreeMem, Operands: []*Value{heap}})
}

// Load reads through a reference.
func (b *Builder) Load(ref *Value) *Operation {
	op := &Operation{Name: OpLoad, Operands: []*Value{ref}}
	if elem := ElemType(ref.Type); elem != nil {
		b.addResults(op, elem)
	} else {
		b.addResults(op, NoneType{})
	}
	return b.Insert(op)
}

// Store writes a value through a reference.
func (b *Builder) Store(value, ref *Value) *Operation {
	return b.Insert(&Operation{Name: OpStore, Operands: []*Value{value, ref}})
}

// Loop builds a structured counted loop. The region's entry block gets an
// index-typed induction argument plus one argument per carried value; the
// operation produces the final carried values. step may be nil.
func (b *Builder) Loop(lb, ub, step *Value, unordered bool, iterArgs []*Value) *Operation {
	op := &Operation{Name: OpLoop, Operands: []*Value{lb, ub}}
	stepCount := int32(0)
	if step != nil {
		op.Operands = append(op.Operands, step)
		stepCount = 1
	}
	op.Operands = append(op.Operands, iterArgs...)
	op.SetAttr(AttrOperandSegments,
		DenseIntAttr{Values: []int32{1, 1, stepCount, int32(len(iterArgs))}})
	if unordered {
		op.SetAttr(AttrUnordered, UnitAttr{})
	}

	entry := &Block{}
	entry.AddArg("i"+ssaName(b.nextID), IndexType{})
	b.nextID++
	for _, arg := range iterArgs {
		entry.AddArg("a"+ssaName(b.nextID), arg.Type)
		b.nextID++
		b.addResults(op, arg.Type)
	}
	op.Regions = []*Region{{Blocks: []*Block{entry}}}
	return b.Insert(op)
}

// IterateWhile builds a loop that carries an explicit continuation logical:
// iteration stops when the carried logical becomes false. Results are the
// final continuation value followed by the carried values.
func (b *Builder) IterateWhile(lb, ub, iterate *Value, iterArgs []*Value) *Operation {
	op := &Operation{Name: OpIterateWhile, Operands: []*Value{lb, ub, iterate}}
	op.Operands = append(op.Operands, iterArgs...)
	op.SetAttr(AttrOperandSegments,
		DenseIntAttr{Values: []int32{1, 1, 1, int32(len(iterArgs))}})

	entry := &Block{}
	entry.AddArg("i"+ssaName(b.nextID), IndexType{})
	b.nextID++
	entry.AddArg("ok"+ssaName(b.nextID), iterate.Type)
	b.nextID++
	b.addResults(op, iterate.Type)
	for _, arg := range iterArgs {
		entry.AddArg("a"+ssaName(b.nextID), arg.Type)
		b.nextID++
		b.addResults(op, arg.Type)
	}
	op.Regions = []*Region{{Blocks: []*Block{entry}}}
	return b.Insert(op)
}

// Where builds a structured conditional. withElse controls whether the else
// region gets an entry block; a where that defines values must have one.
func (b *Builder) Where(cond *Value, resultTypes []Type, withElse bool) *Operation {
	op := &Operation{Name: OpWhere, Operands: []*Value{cond}}
	b.addResults(op, resultTypes...)
	thenRegion := &Region{Blocks: []*Block{{}}}
	elseRegion := &Region{}
	if withElse {
		elseRegion.Blocks = []*Block{{}}
	}
	op.Regions = []*Region{thenRegion, elseRegion}
	return b.Insert(op)
}

// ResultOp builds a region-terminating yield of the given values.
func (b *Builder) ResultOp(values ...*Value) *Operation {
	return b.Insert(&Operation{Name: OpResult, Operands: values})
}

// End builds the implicit empty region terminator.
func (b *Builder) End() *Operation {
	return b.Insert(&Operation{Name: OpEnd})
}

// SelectDest is one branch of a multi-way select: a selector attribute
// (IntAttr for fir.select/select_rank, TypeAttr for select_type, CaseAttr
// for select_case, UnitAttr for the default), the compare operands consumed
// by the selector, and the destination with its block arguments.
type SelectDest struct {
	Selector Attribute
	Compare  []*Value
	Dest     *Block
	Args     []*Value
}

// Select builds a multi-way branch on an integer selector. The default
// branch uses a UnitAttr selector and must come last.
func (b *Builder) Select(selector *Value, dests []SelectDest) *Operation {
	return b.Insert(buildSelect(OpSelect, selector, dests))
}

// SelectRank builds a multi-way branch on an argument rank.
func (b *Builder) SelectRank(selector *Value, dests []SelectDest) *Operation {
	return b.Insert(buildSelect(OpSelectRank, selector, dests))
}

// SelectType builds a multi-way branch on a runtime type.
func (b *Builder) SelectType(selector *Value, dests []SelectDest) *Operation {
	return b.Insert(buildSelect(OpSelectType, selector, dests))
}

// SelectCase builds a CASE-style multi-way branch with point, interval,
// lower-bound, and upper-bound comparators.
func (b *Builder) SelectCase(selector *Value, dests []SelectDest) *Operation {
	return b.Insert(buildSelect(OpSelectCase, selector, dests))
}

// buildSelect flattens the per-branch operand groups into one physical
// operand list and records the partition in dense segment attributes. The
// segment attributes are always computed here, never taken from the caller.
func buildSelect(name string, selector *Value, dests []SelectDest) *Operation {
	op := &Operation{Name: name, Operands: []*Value{selector}}
	cases := make([]Attribute, 0, len(dests))
	compareSegments := make([]int32, 0, len(dests))
	targetSegments := make([]int32, 0, len(dests))
	for _, d := range dests {
		cases = append(cases, d.Selector)
		compareSegments = append(compareSegments, int32(len(d.Compare)))
		op.Operands = append(op.Operands, d.Compare...)
	}
	for _, d := range dests {
		targetSegments = append(targetSegments, int32(len(d.Args)))
		op.Operands = append(op.Operands, d.Args...)
		op.Successors = append(op.Successors, Successor{Dest: d.Dest})
	}
	op.SetAttr(AttrCases, ArrayAttr{Elems: cases})
	op.SetAttr(AttrCompareSegments, DenseIntAttr{Values: compareSegments})
	op.SetAttr(AttrTargetSegments, DenseIntAttr{Values: targetSegments})
	return op
}

// CompareOperands returns branch i's compare operand group of a select
// operation, summing the prior segment lengths for the offset.
func CompareOperands(op *Operation, i int) []*Value {
	return subOperands(op, AttrCompareSegments, 1, i)
}

// TargetOperands returns branch i's destination argument group of a select
// operation.
func TargetOperands(op *Operation, i int) []*Value {
	base := 1 + segmentSum(op.Attr(AttrCompareSegments))
	return subOperands(op, AttrTargetSegments, base, i)
}

// NumDests returns the number of branches of a select operation.
func NumDests(op *Operation) int {
	cases, ok := op.Attr(AttrCases).(ArrayAttr)
	if !ok {
		return 0
	}
	return len(cases.Elems)
}

// Call builds a direct call to the named function.
func (b *Builder) Call(callee string, args []*Value, resultTypes []Type) *Operation {
	op := &Operation{Name: OpCall, Operands: args}
	op.SetAttr(AttrCallee, SymbolRefAttr{Name: callee})
	b.addResults(op, resultTypes...)
	return b.Insert(op)
}

// CallIndirect builds a call through a function-typed value.
func (b *Builder) CallIndirect(fn *Value, args []*Value) *Operation {
	op := &Operation{Name: OpCall, Operands: append([]*Value{fn}, args...)}
	if ft, ok := fn.Type.(FuncType); ok {
		b.addResults(op, ft.Results...)
	}
	return b.Insert(op)
}

// NewGlobal builds a module-level named global. linkage must be empty or
// one of internal, common, weak; init may be nil.
func NewGlobal(name string, typ Type, init Attribute, constant bool, linkage string) *Operation {
	op := &Operation{Name: OpGlobal}
	op.SetAttr(AttrSymName, StringAttr{Value: name})
	op.SetAttr(AttrType, TypeAttr{Type: typ})
	if init != nil {
		op.SetAttr(AttrValue, init)
	}
	if constant {
		op.SetAttr(AttrConstant, UnitAttr{})
	}
	if linkage != "" {
		op.SetAttr(AttrLinkage, StringAttr{Value: linkage})
	}
	return op
}

// AddressOf builds a reference to a module-level symbol.
func (b *Builder) AddressOf(symbol string, typ Type) *Operation {
	op := &Operation{Name: OpAddressOf}
	op.SetAttr(AttrSymbol, SymbolRefAttr{Name: symbol})
	b.addResults(op, typ)
	return b.Insert(op)
}

// Br builds an unconditional branch.
func (b *Builder) Br(dest *Block, args []*Value) *Operation {
	op := &Operation{Name: OpBr}
	op.Successors = []Successor{{Dest: dest, Args: args}}
	return b.Insert(op)
}

// CondBr builds a two-way conditional branch.
func (b *Builder) CondBr(cond *Value, trueDest *Block, trueArgs []*Value,
	falseDest *Block, falseArgs []*Value) *Operation {
	op := &Operation{Name: OpCondBr, Operands: []*Value{cond}}
	op.Successors = []Successor{
		{Dest: trueDest, Args: trueArgs},
		{Dest: falseDest, Args: falseArgs},
	}
	return b.Insert(op)
}

// Return builds a function return.
func (b *Builder) Return(values ...*Value) *Operation {
	return b.Insert(&Operation{Name: OpReturn, Operands: values})
}

// Unreachable builds a trap terminator.
func (b *Builder) Unreachable() *Operation {
	return b.Insert(&Operation{Name: OpUnreachable})
}

// ---- Verifiers ------------------------------------------------------------

func verifyConstant(op *Operation) error {
	if len(op.Results) != 1 {
		return errors.New("expects one result")
	}
	if op.Attr(AttrValue) == nil {
		return errors.New("requires a value attribute")
	}
	return nil
}

func verifyUndefined(op *Operation) error {
	if len(op.Operands) != 0 || len(op.Results) != 1 {
		return errors.New("expects no operands and one result")
	}
	return nil
}

func verifyFloatBinary(op *Operation) error {
	if len(op.Operands) != 2 || len(op.Results) != 1 {
		return errors.New("expects two operands and one result")
	}
	if !TypesEqual(op.Operands[0].Type, op.Operands[1].Type) ||
		!TypesEqual(op.Operands[0].Type, op.Results[0].Type) {
		return errors.New("operand and result types must match")
	}
	if !IsFloat(op.Operands[0].Type) {
		return errors.Errorf("expects a floating-point type, got %s",
			TypeString(op.Operands[0].Type))
	}
	return nil
}

func verifyFloatUnary(op *Operation) error {
	if len(op.Operands) != 1 || len(op.Results) != 1 {
		return errors.New("expects one operand and one result")
	}
	if !IsFloat(op.Operands[0].Type) {
		return errors.Errorf("expects a floating-point type, got %s",
			TypeString(op.Operands[0].Type))
	}
	return nil
}

func verifyIntBinary(op *Operation) error {
	if len(op.Operands) != 2 || len(op.Results) != 1 {
		return errors.New("expects two operands and one result")
	}
	if !TypesEqual(op.Operands[0].Type, op.Operands[1].Type) ||
		!TypesEqual(op.Operands[0].Type, op.Results[0].Type) {
		return errors.New("operand and result types must match")
	}
	if !IsIntegerLike(op.Operands[0].Type) {
		return errors.Errorf("expects an integer type, got %s",
			TypeString(op.Operands[0].Type))
	}
	return nil
}

var cmpFPredicates = map[string]bool{
	"false": true, "oeq": true, "ogt": true, "oge": true, "olt": true,
	"ole": true, "one": true, "ord": true, "ueq": true, "ugt": true,
	"uge": true, "ult": true, "ule": true, "une": true, "uno": true,
	"true": true,
}

var cmpIPredicates = map[string]bool{
	"eq": true, "ne": true, "slt": true, "sle": true, "sgt": true,
	"sge": true, "ult": true, "ule": true, "ugt": true, "uge": true,
}

func verifyCmpF(op *Operation) error { return verifyCmp(op, cmpFPredicates, IsFloat) }

func verifyCmpI(op *Operation) error { return verifyCmp(op, cmpIPredicates, IsIntegerLike) }

func verifyCmp(op *Operation, predicates map[string]bool, typeOK func(Type) bool) error {
	if len(op.Operands) != 2 || len(op.Results) != 1 {
		return errors.New("expects two operands and one result")
	}
	pred, ok := op.Attr(AttrPredicate).(StringAttr)
	if !ok {
		return errors.New("requires a predicate attribute")
	}
	if !predicates[pred.Value] {
		return errors.Errorf("invalid predicate %q", pred.Value)
	}
	if !TypesEqual(op.Operands[0].Type, op.Operands[1].Type) {
		return errors.New("operand types must match")
	}
	if !typeOK(op.Operands[0].Type) {
		return errors.Errorf("cannot compare %s values", TypeString(op.Operands[0].Type))
	}
	return nil
}

func verifyConvert(op *Operation) error {
	if len(op.Operands) != 1 || len(op.Results) != 1 {
		return errors.New("expects one operand and one result")
	}
	return nil
}

func verifyAlloca(op *Operation) error {
	if len(op.Results) != 1 {
		return errors.New("expects one result")
	}
	ref, ok := op.Results[0].Type.(RefType)
	if !ok {
		return errors.New("must produce a ref type")
	}
	if IsReferenceLike(ref.Elem) {
		return errors.New("cannot allocate a reference to a reference")
	}
	return nil
}

func verifyAllocMem(op *Operation) error {
	if len(op.Results) != 1 {
		return errors.New("expects one result")
	}
	heap, ok := op.Results[0].Type.(HeapType)
	if !ok {
		return errors.New("must produce a heap type")
	}
	if IsReferenceLike(heap.Elem) {
		return errors.New("cannot allocate a reference type on the heap")
	}
	if _, isFunc := heap.Elem.(FuncType); isFunc {
		return errors.New("cannot allocate a function type on the heap")
	}
	return nil
}

func verifyFreeMem(op *Operation) error {
	if len(op.Operands) != 1 {
		return errors.New("expects one operand")
	}
	if _, ok := op.Operands[0].Type.(HeapType); !ok {
		return errors.New("operand must be a heap allocation")
	}
	return nil
}

func verifyLoad(op *Operation) error {
	if len(op.Operands) != 1 || len(op.Results) != 1 {
		return errors.New("expects one operand and one result")
	}
	elem := ElemType(op.Operands[0].Type)
	if elem == nil {
		return errors.Errorf("cannot load through %s", TypeString(op.Operands[0].Type))
	}
	if !TypesEqual(op.Results[0].Type, elem) {
		return errors.Errorf("result type %s does not match element type %s",
			TypeString(op.Results[0].Type), TypeString(elem))
	}
	return nil
}

func verifyStore(op *Operation) error {
	if len(op.Operands) != 2 {
		return errors.New("expects two operands")
	}
	elem := ElemType(op.Operands[1].Type)
	if elem == nil {
		return errors.Errorf("cannot store through %s", TypeString(op.Operands[1].Type))
	}
	if !TypesEqual(op.Operands[0].Type, elem) {
		return errors.Errorf("value type %s does not match element type %s",
			TypeString(op.Operands[0].Type), TypeString(elem))
	}
	return nil
}

func verifyLoop(op *Operation) error {
	segments, ok := op.Attr(AttrOperandSegments).(DenseIntAttr)
	if !ok || len(segments.Values) != 4 {
		return errors.New("requires a four-entry operand segment attribute")
	}
	iterCount := int(segments.Values[3])
	if segmentSum(segments) != len(op.Operands) {
		return errors.New("operand segments do not cover the operand list")
	}
	if len(op.Regions) != 1 || len(op.Regions[0].Blocks) == 0 {
		return errors.New("requires a body region with an entry block")
	}
	entry := op.Regions[0].Blocks[0]
	if len(entry.Args) != 1+iterCount {
		return errors.Errorf("body block has %d arguments, expected %d",
			len(entry.Args), 1+iterCount)
	}
	if _, ok := entry.Args[0].Type.(IndexType); !ok {
		return errors.New("induction variable must have index type")
	}
	if len(op.Results) != iterCount {
		return errors.Errorf("produces %d results for %d iteration arguments",
			len(op.Results), iterCount)
	}
	return nil
}

func verifyIterateWhile(op *Operation) error {
	segments, ok := op.Attr(AttrOperandSegments).(DenseIntAttr)
	if !ok || len(segments.Values) != 4 {
		return errors.New("requires a four-entry operand segment attribute")
	}
	iterCount := int(segments.Values[3])
	if segmentSum(segments) != len(op.Operands) {
		return errors.New("operand segments do not cover the operand list")
	}
	if len(op.Regions) != 1 || len(op.Regions[0].Blocks) == 0 {
		return errors.New("requires a body region with an entry block")
	}
	entry := op.Regions[0].Blocks[0]
	if len(entry.Args) != 2+iterCount {
		return errors.Errorf("body block has %d arguments, expected %d",
			len(entry.Args), 2+iterCount)
	}
	if _, ok := entry.Args[0].Type.(IndexType); !ok {
		return errors.New("induction variable must have index type")
	}
	if len(op.Results) != 1+iterCount {
		return errors.Errorf("produces %d results for %d iteration arguments",
			len(op.Results), iterCount)
	}
	if _, ok := op.Results[0].Type.(LogicalType); !ok {
		return errors.New("first result must be the continuation logical")
	}
	return nil
}

func verifyWhere(op *Operation) error {
	if len(op.Operands) != 1 {
		return errors.New("expects one condition operand")
	}
	if len(op.Regions) != 2 {
		return errors.New("expects a then and an else region")
	}
	if len(op.Regions[0].Blocks) == 0 {
		return errors.New("must have a then block")
	}
	if len(op.Results) > 0 && len(op.Regions[1].Blocks) == 0 {
		return errors.New("must have an else block if defining values")
	}
	return nil
}

func verifySelect(op *Operation) error {
	return verifySelectFamily(op, func(sel Attribute) (int, error) {
		if _, ok := sel.(IntAttr); !ok {
			return 0, errors.New("case selectors must be integer attributes")
		}
		return 1, nil
	})
}

func verifySelectRank(op *Operation) error {
	return verifySelectFamily(op, func(sel Attribute) (int, error) {
		if _, ok := sel.(IntAttr); !ok {
			return 0, errors.New("rank selectors must be integer attributes")
		}
		return 0, nil
	})
}

func verifySelectType(op *Operation) error {
	return verifySelectFamily(op, func(sel Attribute) (int, error) {
		if _, ok := sel.(TypeAttr); !ok {
			return 0, errors.New("type selectors must be type attributes")
		}
		return 0, nil
	})
}

func verifySelectCase(op *Operation) error {
	return verifySelectFamily(op, func(sel Attribute) (int, error) {
		caseAttr, ok := sel.(CaseAttr)
		if !ok {
			return 0, errors.New("case selectors must be case attributes")
		}
		return caseAttr.CompareOperandCount(), nil
	})
}

// verifySelectFamily checks the shared segmented-operand bookkeeping of the
// select operations. compareCount reports how many compare operands a
// non-default selector consumes (-1 when plain select allows any count).
func verifySelectFamily(op *Operation, compareCount func(Attribute) (int, error)) error {
	if len(op.Operands) < 1 {
		return errors.New("expects a selector operand")
	}
	cases, ok := op.Attr(AttrCases).(ArrayAttr)
	if !ok || len(cases.Elems) == 0 {
		return errors.New("requires a non-empty cases attribute")
	}
	compare, ok := op.Attr(AttrCompareSegments).(DenseIntAttr)
	if !ok || len(compare.Values) != len(cases.Elems) {
		return errors.New("compare segments must match the case count")
	}
	target, ok := op.Attr(AttrTargetSegments).(DenseIntAttr)
	if !ok || len(target.Values) != len(cases.Elems) {
		return errors.New("target segments must match the case count")
	}
	if len(op.Successors) != len(cases.Elems) {
		return errors.Errorf("has %d successors for %d cases",
			len(op.Successors), len(cases.Elems))
	}
	if 1+segmentSum(compare)+segmentSum(target) != len(op.Operands) {
		return errors.New("operand segments do not cover the operand list")
	}
	for i, sel := range cases.Elems {
		if _, isDefault := sel.(UnitAttr); isDefault {
			if i != len(cases.Elems)-1 {
				return errors.New("the default case must come last")
			}
			if compare.Values[i] != 0 {
				return errors.New("the default case takes no compare operands")
			}
			continue
		}
		want, err := compareCount(sel)
		if err != nil {
			return err
		}
		if int(compare.Values[i]) != want {
			return errors.Errorf("case %d expects %d compare operands, segment has %d",
				i, want, compare.Values[i])
		}
	}
	// Destination argument arity and types, per target segment.
	for i, succ := range op.Successors {
		if succ.Dest == nil {
			return errors.Errorf("case %d has no destination block", i)
		}
		args := TargetOperands(op, i)
		if len(args) != len(succ.Dest.Args) {
			return errors.Errorf("case %d passes %d arguments to ^%s, which has %d",
				i, len(args), succ.Dest.Name, len(succ.Dest.Args))
		}
		for j, arg := range args {
			if !TypesEqual(arg.Type, succ.Dest.Args[j].Type) {
				return errors.Errorf("case %d argument %d has type %s, ^%s wants %s",
					i, j, TypeString(arg.Type), succ.Dest.Name,
					TypeString(succ.Dest.Args[j].Type))
			}
		}
	}
	return nil
}

func verifyCall(op *Operation) error {
	if _, direct := op.Attr(AttrCallee).(SymbolRefAttr); direct {
		return nil // cross-checked against the module's functions
	}
	if len(op.Operands) == 0 {
		return errors.New("indirect call requires a function operand")
	}
	ft, ok := op.Operands[0].Type.(FuncType)
	if !ok {
		return errors.Errorf("indirect callee has non-function type %s",
			TypeString(op.Operands[0].Type))
	}
	return checkCallSignature(op, op.Operands[1:], ft)
}

func checkCallSignature(op *Operation, args []*Value, ft FuncType) error {
	if len(args) != len(ft.Inputs) {
		return errors.Errorf("call passes %d arguments, callee takes %d",
			len(args), len(ft.Inputs))
	}
	for i, arg := range args {
		if !TypesEqual(arg.Type, ft.Inputs[i]) {
			return errors.Errorf("call argument %d has type %s, callee takes %s",
				i, TypeString(arg.Type), TypeString(ft.Inputs[i]))
		}
	}
	if len(op.Results) != len(ft.Results) {
		return errors.Errorf("call produces %d results, callee returns %d",
			len(op.Results), len(ft.Results))
	}
	for i, res := range op.Results {
		if !TypesEqual(res.Type, ft.Results[i]) {
			return errors.Errorf("call result %d has type %s, callee returns %s",
				i, TypeString(res.Type), TypeString(ft.Results[i]))
		}
	}
	return nil
}

var validLinkage = map[string]bool{"internal": true, "common": true, "weak": true}

func verifyGlobal(op *Operation) error {
	if _, ok := op.Attr(AttrSymName).(StringAttr); !ok {
		return errors.New("requires a symbol name")
	}
	if _, ok := op.Attr(AttrType).(TypeAttr); !ok {
		return errors.New("requires a type attribute")
	}
	if linkage, ok := op.Attr(AttrLinkage).(StringAttr); ok && !validLinkage[linkage.Value] {
		return errors.Errorf("invalid linkage %q", linkage.Value)
	}
	return nil
}

func verifyAddressOf(op *Operation) error {
	if _, ok := op.Attr(AttrSymbol).(SymbolRefAttr); !ok {
		return errors.New("requires a symbol attribute")
	}
	if len(op.Results) != 1 {
		return errors.New("expects one result")
	}
	return nil
}

func verifyBr(op *Operation) error {
	if len(op.Successors) != 1 {
		return errors.New("expects one successor")
	}
	return nil
}

func verifyCondBr(op *Operation) error {
	if len(op.Operands) != 1 {
		return errors.New("expects one condition operand")
	}
	if len(op.Successors) != 2 {
		return errors.New("expects two successors")
	}
	return nil
}

// ---- Constant folders -----------------------------------------------------

func constantAttr(v *Value) (Attribute, bool) {
	if v == nil || v.Def == nil || v.Def.Name != OpConstant {
		return nil, false
	}
	attr := v.Def.Attr(AttrValue)
	return attr, attr != nil
}

func foldConstant(op *Operation) (Attribute, bool) {
	return op.Attr(AttrValue), true
}

func foldFloatBinary(eval func(a, b float64) float64) func(*Operation) (Attribute, bool) {
	return func(op *Operation) (Attribute, bool) {
		lhsAttr, ok := constantAttr(op.Operands[0])
		if !ok {
			return nil, false
		}
		rhsAttr, ok := constantAttr(op.Operands[1])
		if !ok {
			return nil, false
		}
		lhs, lok := lhsAttr.(FloatAttr)
		rhs, rok := rhsAttr.(FloatAttr)
		if !lok || !rok {
			return nil, false
		}
		return FloatAttr{Value: eval(lhs.Value, rhs.Value)}, true
	}
}

func foldNegF(op *Operation) (Attribute, bool) {
	attr, ok := constantAttr(op.Operands[0])
	if !ok {
		return nil, false
	}
	f, ok := attr.(FloatAttr)
	if !ok {
		return nil, false
	}
	return FloatAttr{Value: -f.Value}, true
}

func foldIntBinary(eval func(a, b int64) (int64, bool)) func(*Operation) (Attribute, bool) {
	return func(op *Operation) (Attribute, bool) {
		lhsAttr, ok := constantAttr(op.Operands[0])
		if !ok {
			return nil, false
		}
		rhsAttr, ok := constantAttr(op.Operands[1])
		if !ok {
			return nil, false
		}
		lhs, lok := lhsAttr.(IntAttr)
		rhs, rok := rhsAttr.(IntAttr)
		if !lok || !rok {
			return nil, false
		}
		folded, ok := eval(lhs.Value, rhs.Value)
		if !ok {
			return nil, false
		}
		return IntAttr{Value: folded}, true
	}
}

// foldConvert folds an identity conversion to its operand, and a conversion
// of a constant to the constant.
func foldConvert(op *Operation) (Attribute, bool) {
	if !TypesEqual(op.Operands[0].Type, op.Results[0].Type) {
		return nil, false
	}
	if attr, ok := constantAttr(op.Operands[0]); ok {
		return attr, true
	}
	return nil, true // identity: replace with the operand
}

// foldWhere erases a conditional whose both regions hold no operations and
// which defines no values.
func foldWhere(op *Operation) (Attribute, bool) {
	if len(op.Results) != 0 {
		return nil, false
	}
	if !op.Regions[0].Empty() || !op.Regions[1].Empty() {
		return nil, false
	}
	return nil, true
}
