package compiler

import "github.com/rx-modules/bolt-expr/internal/ir"

// ReachingDefs maps a source key to the sorted list of operation indices
// that write it (spec.md §4.4 "Reaching definitions"). Data-path writes
// also count as a definition of every parent path (a child write
// invalidates the parent's cached value). A write to a parent path is not
// recorded as a definition of its child paths.
type ReachingDefs struct {
	defs map[string][]int
}

// ComputeReachingDefs builds the reaching-definitions table for ops.
func ComputeReachingDefs(ops []ir.Operation) *ReachingDefs {
	rd := &ReachingDefs{defs: map[string][]int{}}
	for i, op := range ops {
		for _, t := range op.Targets() {
			rd.record(t.Key(), i)
			if d, ok := t.(ir.DataSource); ok {
				for p, ok2 := d.Parent(); ok2; p, ok2 = p.Parent() {
					rd.record(p.Key(), i)
				}
			}
		}
	}
	return rd
}

func (rd *ReachingDefs) record(key string, idx int) {
	rd.defs[key] = append(rd.defs[key], idx)
}

// At returns the most recent definition index of src strictly before idx,
// and whether one exists.
func (rd *ReachingDefs) At(src ir.Source, idx int) (int, bool) {
	best := -1
	for _, d := range rd.defs[src.Key()] {
		if d < idx && d > best {
			best = d
		}
	}
	return best, best >= 0
}

// AllBefore returns every definition index of src strictly before idx, in
// ascending order.
func (rd *ReachingDefs) AllBefore(src ir.Source, idx int) []int {
	var out []int
	for _, d := range rd.defs[src.Key()] {
		if d < idx {
			out = append(out, d)
		}
	}
	return out
}

// UseSets maps a source key to the operation indices that read it
// (spec.md §4.4 "Use sets"). Reads are recorded under the exact source key
// only: a read of a parent path is not recorded as a read of its child
// paths.
type UseSets struct {
	uses map[string][]int
}

// ComputeUseSets builds the use-sets table for ops.
func ComputeUseSets(ops []ir.Operation) *UseSets {
	us := &UseSets{uses: map[string][]int{}}
	for i, op := range ops {
		for _, operand := range op.Operands() {
			for _, src := range sourcesIn(operand) {
				us.uses[src.Key()] = append(us.uses[src.Key()], i)
			}
		}
	}
	return us
}

// sourcesIn extracts every Source leaf reachable from a Node (a Source
// itself, or the operands of a Condition).
func sourcesIn(n ir.Node) []ir.Source {
	switch v := n.(type) {
	case ir.Source:
		return []ir.Source{v}
	case ir.IrUnaryCondition:
		return sourcesIn(v.Target)
	case ir.IrBinaryCondition:
		return append(sourcesIn(v.Left), sourcesIn(v.Right)...)
	default:
		return nil
	}
}

func (us *UseSets) IndicesOf(src ir.Source) []int { return us.uses[src.Key()] }

// UsedAfter reports whether src is read anywhere at index > idx.
func (us *UseSets) UsedAfter(src ir.Source, idx int) bool {
	for _, u := range us.uses[src.Key()] {
		if u > idx {
			return true
		}
	}
	return false
}

// UsedBetween reports whether src is read at any index in (lo, hi).
func (us *UseSets) UsedBetween(src ir.Source, lo, hi int) bool {
	for _, u := range us.uses[src.Key()] {
		if u > lo && u < hi {
			return true
		}
	}
	return false
}

// DependencyGraph maps each (op index, operand source) to the set of
// definition indices that could reach it, including transitively through
// an in-place redefinition of the same source (spec.md §4.4 "Dependency
// graph": "including transitive dependencies when the reaching def itself
// depends on the same source, to handle in-place updates").
type DependencyGraph struct {
	edges map[int][]int // op index -> definition indices it depends on
}

func ComputeDependencyGraph(ops []ir.Operation, rd *ReachingDefs) *DependencyGraph {
	dg := &DependencyGraph{edges: map[int][]int{}}
	for i, op := range ops {
		seen := map[int]struct{}{}
		for _, operand := range op.Operands() {
			for _, src := range sourcesIn(operand) {
				walkDep(src, i, rd, ops, seen, dg)
			}
		}
	}
	return dg
}

func walkDep(src ir.Source, idx int, rd *ReachingDefs, ops []ir.Operation, seen map[int]struct{}, dg *DependencyGraph) {
	def, ok := rd.At(src, idx)
	if !ok {
		return
	}
	if _, visited := seen[def]; visited {
		return
	}
	seen[def] = struct{}{}
	dg.edges[idx] = append(dg.edges[idx], def)

	// In-place update: the definition at `def` both writes and (for a
	// destructive binary) reads src again -- follow that chain further
	// back so deadcode/copy-elision passes see the whole lineage.
	if b, ok := ops[def].(ir.IrBinary); ok {
		if b.Left.Key() == src.Key() {
			walkDep(src, def, rd, ops, seen, dg)
		}
	}
}

func (dg *DependencyGraph) DependenciesOf(idx int) []int { return dg.edges[idx] }

// peekable is a minimal one/two-token lookahead cursor over an operation
// list, grounded on spec.md §4.4's "peekable generator" rule style. No pass
// in this package uses it; the passes walk their operation lists by index.
type peekable struct {
	ops []ir.Operation
	pos int
}

func newPeekable(ops []ir.Operation) *peekable { return &peekable{ops: ops} }

func (p *peekable) Done() bool { return p.pos >= len(p.ops) }

func (p *peekable) Peek(offset int) (ir.Operation, bool) {
	i := p.pos + offset
	if i < 0 || i >= len(p.ops) {
		return nil, false
	}
	return p.ops[i], true
}

func (p *peekable) Next() ir.Operation {
	op := p.ops[p.pos]
	p.pos++
	return op
}

func (p *peekable) Skip(n int) { p.pos += n }
