package pft

import (
	"sort"

	"github.com/fortgo/fortgo/ast"
	"github.com/fortgo/fortgo/symbol"
)

// AnalyzeVariables computes the allocation order of a scope's variables.
// A variable appears after every variable its declaration depends on
// (array bounds, character length, initializer), and after the aggregate
// store covering it when EQUIVALENCE makes its storage overlap another
// entity's. The order is otherwise deterministic by name.
func AnalyzeVariables(scope *symbol.Scope) []Variable {
	a := &variableAnalyzer{
		scope:    scope,
		seen:     make(map[*symbol.Symbol]bool),
		aliasers: make(map[*symbol.Symbol]bool),
	}
	if len(scope.EquivalenceSets()) > 0 {
		a.analyzeAliases()
	}
	a.prepareStores()
	for _, name := range scope.SortedNames() {
		a.analyze(scope.LookupLocal(name))
	}
	return a.finalize()
}

// variableAnalyzer sorts symbols into depth buckets: bucket d holds the
// variables whose declarations depend on a chain of d other variables.
type variableAnalyzer struct {
	scope    *symbol.Scope
	vars     [][]Variable
	seen     map[*symbol.Symbol]bool
	aliasers map[*symbol.Symbol]bool
	stores   []*AggregateStore
}

type storageInterval struct {
	lo, hi int
}

// analyzeAliases merges the overlapping storage intervals of the scope's
// entities into aggregate stores and records which symbols alias into
// them. Only intervals shared by more than one entity become stores.
func (a *variableAnalyzer) analyzeAliases() {
	// 1. Construct the intervals, merging overlaps into aggregates.
	var intervals []storageInterval
	a.eachObjectEntity(func(sym *symbol.Symbol) {
		intervals = mergeInterval(intervals, storageInterval{
			lo: sym.Offset(),
			hi: sym.Offset() + sym.Size() - 1,
		})
	})

	// 2. Compute alias sets: each entity joins the set of the interval
	// its storage starts in.
	members := make(map[int][]*symbol.Symbol)
	a.eachObjectEntity(func(sym *symbol.Symbol) {
		for _, iv := range intervals {
			if sym.Offset() >= iv.lo && sym.Offset() <= iv.hi {
				members[iv.lo] = append(members[iv.lo], sym)
				break
			}
		}
	})

	// 3. Each set with more than one member becomes an aggregate store
	// lowered into a single allocation.
	for _, iv := range intervals {
		set := members[iv.lo]
		if len(set) < 2 {
			continue
		}
		store := &AggregateStore{
			Offset:  iv.lo,
			Size:    iv.hi - iv.lo + 1,
			Members: set,
		}
		for _, sym := range set {
			a.aliasers[sym] = true
			if sym.IsGlobal() {
				store.Global = true
			}
		}
		a.stores = append(a.stores, store)
	}
}

// eachObjectEntity visits the scope's data entities in name order,
// skipping procedures and entities laid out in a COMMON block.
func (a *variableAnalyzer) eachObjectEntity(f func(*symbol.Symbol)) {
	for _, name := range a.scope.SortedNames() {
		sym := a.scope.LookupLocal(name)
		if skipAliasSymbol(sym) {
			continue
		}
		f(sym)
	}
}

func skipAliasSymbol(sym *symbol.Symbol) bool {
	switch sym.Kind() {
	case symbol.SymVariable, symbol.SymParameter:
		return sym.Flags().HasAny(symbol.FlagInCommon)
	}
	return true
}

// mergeInterval inserts iv, coalescing any overlapping intervals. The
// result stays sorted by lower bound.
func mergeInterval(intervals []storageInterval, iv storageInterval) []storageInterval {
	var merged []storageInterval
	for _, existing := range intervals {
		if existing.hi < iv.lo || existing.lo > iv.hi {
			merged = append(merged, existing)
			continue
		}
		if existing.lo < iv.lo {
			iv.lo = existing.lo
		}
		if existing.hi > iv.hi {
			iv.hi = existing.hi
		}
	}
	merged = append(merged, iv)
	sort.Slice(merged, func(i, j int) bool { return merged[i].lo < merged[j].lo })
	return merged
}

// prepareStores places all aggregate stores ahead of the named variables.
func (a *variableAnalyzer) prepareStores() {
	a.adjustSize(1)
	for _, store := range a.stores {
		a.vars[0] = append(a.vars[0], Variable{
			Store:  store,
			Global: store.Global,
		})
	}
}

// analyze determines the height of a symbol's dependence on other
// symbols and buckets it accordingly. Revisits return depth 0, which
// also breaks declaration cycles.
func (a *variableAnalyzer) analyze(sym *symbol.Symbol) int {
	if a.seen[sym] {
		return 0
	}
	a.seen[sym] = true
	if sym.Kind().IsProcedure() {
		return 0
	}
	switch sym.Kind() {
	case symbol.SymVariable, symbol.SymParameter:
	default:
		// Namelist groups, use and host associations, and the like are
		// not allocated by lowering.
		return 0
	}

	global := sym.IsGlobal()
	depth := 0

	// An aliasing variable appears after its aggregate store.
	if a.aliasers[sym] {
		depth = 1
	}

	bump := func(expr ast.Expression) {
		for _, dep := range a.collectSymbols(expr) {
			if d := a.analyze(dep) + 1; d > depth {
				depth = d
			}
		}
	}
	bump(sym.CharLenExpr())
	a.eachBound(sym.ArraySpec(), bump)
	a.eachBound(sym.CoarraySpec(), bump)
	if init := sym.InitExpr(); init != nil {
		// A PARAMETER is not marked SAVE, but its storage is still static.
		global = true
		bump(init)
	}

	a.adjustSize(depth + 1)
	v := Variable{
		Sym:       sym,
		Depth:     depth,
		Global:    global,
		HeapAlloc: sym.Flags().HasAny(symbol.FlagAllocatable),
		Pointer:   sym.Flags().HasAny(symbol.FlagPointer),
		Target:    sym.Flags().HasAny(symbol.FlagTarget),
	}
	if a.aliasers[sym] {
		v.Aliaser = true
		v.AliasOffset = a.findStore(sym.Offset())
	}
	a.vars[depth] = append(a.vars[depth], v)
	return depth
}

func (a *variableAnalyzer) eachBound(spec *ast.ArraySpec, f func(ast.Expression)) {
	if spec == nil {
		return
	}
	for _, bound := range spec.Bounds {
		if bound.Lower != nil {
			f(bound.Lower)
		}
		if bound.Upper != nil {
			f(bound.Upper)
		}
	}
}

// collectSymbols gathers the scope symbols referenced by an expression.
func (a *variableAnalyzer) collectSymbols(expr ast.Expression) []*symbol.Symbol {
	if expr == nil {
		return nil
	}
	var syms []*symbol.Symbol
	ast.Inspect(expr, func(node ast.Node) bool {
		var name string
		switch n := node.(type) {
		case *ast.Identifier:
			name = n.Value
		case *ast.ArrayRef:
			name = n.Name
		case *ast.FunctionCall:
			name = n.Name
		default:
			return true
		}
		if sym := a.scope.Lookup(name); sym != nil {
			syms = append(syms, sym)
		}
		return true
	})
	return syms
}

func (a *variableAnalyzer) findStore(offset int) int {
	for _, store := range a.stores {
		if offset >= store.Offset && offset < store.Offset+store.Size {
			return store.Offset
		}
	}
	panic("pft: aggregate store must be present")
}

func (a *variableAnalyzer) adjustSize(size int) {
	for len(a.vars) < size {
		a.vars = append(a.vars, nil)
	}
}

// finalize flattens the depth buckets into the final allocation order.
func (a *variableAnalyzer) finalize() []Variable {
	var out []Variable
	for _, bucket := range a.vars {
		out = append(out, bucket...)
	}
	return out
}
