package compiler

import "github.com/rx-modules/bolt-expr/internal/ir"

// SetAndGetCleanupPass implements spec.md §4.4 pass 14: a temporary that is
// set to a plain copy of some source and then read exactly once, with
// nothing redefining that source in between, is forwarded directly into
// its single consumer and the intermediate copy is dropped.
type SetAndGetCleanupPass struct{}

func (SetAndGetCleanupPass) Name() string        { return "set_and_get_cleanup" }
func (SetAndGetCleanupPass) Description() string {
	return "forwards a copy temporary's sole use back to its source and drops the copy"
}

func (p SetAndGetCleanupPass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	rd := ComputeReachingDefs(ops)
	uses := ComputeUseSets(ops)

	forwarded := make([]ir.Operation, len(ops))
	copy(forwarded, ops)
	remove := make(map[int]bool)

	for i, op := range ops {
		b, ok := op.(ir.IrBinary)
		if !ok || b.Op != ir.OpSet {
			continue
		}
		t := b.Left
		if !st.IsTemporary(t) {
			continue
		}
		src, ok := b.Right.(ir.Source)
		if !ok {
			continue
		}
		// IndicesOf(t) includes this op's own index (an IrBinary's Left is
		// always one of its Operands(), even for a non-destructive Set), so
		// the defining op must be filtered out before checking for a single
		// later use.
		var after []int
		for _, idx := range uses.IndicesOf(t) {
			if idx > i {
				after = append(after, idx)
			}
		}
		if len(after) != 1 {
			continue
		}
		j := after[0]
		if uses.UsedAfter(t, j) {
			continue
		}
		if last, ok := rd.At(src, j); ok && last > i {
			continue // src was redefined between the copy and its use
		}
		forwarded[j] = renameOperands(forwarded[j], map[string]ir.Source{t.Key(): src})
		remove[i] = true
	}

	out := make([]ir.Operation, 0, len(ops))
	for i, op := range forwarded {
		if remove[i] {
			continue
		}
		out = append(out, op)
	}
	return out
}

// collapseSetChains implements the shared shape of spec.md §4.4 passes 15
// and 16: a temporary initialized as a copy of some source `a`, mutated by
// a run of destructive ops in place, and finally copied out to a
// destination `c` collapses to operating on `c` directly when `c == a` and
// the temporary is dead afterward -- `t = a; t op= b; ...; c = t` becomes
// `a op= b; ...` when c and a name the same location.
func collapseSetChains(ops []ir.Operation, st *OptState, commutativeOnly bool) []ir.Operation {
	uses := ComputeUseSets(ops)
	out := make([]ir.Operation, 0, len(ops))

	i := 0
	for i < len(ops) {
		init, ok := ops[i].(ir.IrBinary)
		if !ok || init.Op != ir.OpSet || !st.IsTemporary(init.Left) {
			out = append(out, ops[i])
			i++
			continue
		}
		a, ok := init.Right.(ir.Source)
		if !ok {
			out = append(out, ops[i])
			i++
			continue
		}
		t := init.Left

		j := i + 1
		var chain []ir.IrBinary
		for j < len(ops) {
			cb, ok := ops[j].(ir.IrBinary)
			if !ok || cb.Op == ir.OpSet || cb.Left.Key() != t.Key() {
				break
			}
			if commutativeOnly && !cb.Op.Commutative() {
				break
			}
			chain = append(chain, cb)
			j++
		}

		final, ok := ir.IrBinary{}, false
		if j < len(ops) {
			final, ok = ops[j].(ir.IrBinary)
		}
		if len(chain) == 0 || !ok || final.Op != ir.OpSet {
			out = append(out, ops[i])
			i++
			continue
		}
		finalSrc, ok := final.Right.(ir.Source)
		if !ok || finalSrc.Key() != t.Key() {
			out = append(out, ops[i])
			i++
			continue
		}
		c := final.Left
		if c.Key() != a.Key() || uses.UsedAfter(t, j) {
			out = append(out, ops[i])
			i++
			continue
		}

		for _, cb := range chain {
			cb.Left = c
			out = append(out, cb)
		}
		i = j + 1
	}

	return out
}

// NoncommutativeSetCollapsingPass implements spec.md §4.4 pass 15.
type NoncommutativeSetCollapsingPass struct{}

func (NoncommutativeSetCollapsingPass) Name() string { return "noncommutative_set_collapsing" }
func (NoncommutativeSetCollapsingPass) Description() string {
	return "collapses a copy/mutate/copy-out chain into an in-place update"
}

func (p NoncommutativeSetCollapsingPass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	return collapseSetChains(ops, st, false)
}

// CommutativeSetCollapsingPass implements spec.md §4.4 pass 16: the same
// collapse, restricted to commutative chains, run a second time so a chain
// only newly exposed by the preceding passes (e.g. after reordering) still
// collapses.
type CommutativeSetCollapsingPass struct{}

func (CommutativeSetCollapsingPass) Name() string { return "commutative_set_collapsing" }
func (CommutativeSetCollapsingPass) Description() string {
	return "collapses a commutative copy/mutate/copy-out chain into an in-place update"
}

func (p CommutativeSetCollapsingPass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	return collapseSetChains(ops, st, true)
}
