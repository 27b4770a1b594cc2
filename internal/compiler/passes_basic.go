package compiler

import (
	"github.com/rx-modules/bolt-expr/internal/ir"
	"github.com/rx-modules/bolt-expr/internal/nbt"
)

// DiscardCastingPass implements spec.md §4.4 pass 5: an IrCast that is
// actually a same-kind, same-type, unscaled copy carries no cast semantics
// at all, so it is rewritten to a plain `set` the serializer can lower to
// `scoreboard players operation = ` / `data modify ... set from`.
type DiscardCastingPass struct{}

func (DiscardCastingPass) Name() string        { return "discard_casting" }
func (DiscardCastingPass) Description() string { return "turns a same-type, unscaled cast into a plain set" }

func (p DiscardCastingPass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	out := make([]ir.Operation, 0, len(ops))
	for _, op := range ops {
		if c, ok := op.(ir.IrCast); ok && ir.IsCopyOp(c) {
			if left, ok := c.Left.(ir.Source); ok {
				out = append(out, ir.IrBinary{Op: ir.OpSet, Left: left, Right: c.Right, StoresC: c.StoresC})
				continue
			}
		}
		out = append(out, op)
	}
	return out
}

// InitScoreBooleanResultPass implements spec.md §4.4 pass 6: a branch whose
// `store success` clause captures a boolean result into a temporary score
// that has no earlier definition gets a `set 0` of that score inserted
// before it, since the branch only ever writes the true case.
type InitScoreBooleanResultPass struct{}

func (InitScoreBooleanResultPass) Name() string { return "init_score_boolean_result" }
func (InitScoreBooleanResultPass) Description() string {
	return "zero-initializes a score before a branch that only writes its true case"
}

func (p InitScoreBooleanResultPass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	out := make([]ir.Operation, 0, len(ops))
	for _, op := range ops {
		branch, ok := op.(ir.IrBranch)
		if !ok || len(branch.StoresC) == 0 {
			out = append(out, op)
			continue
		}
		for _, s := range branch.StoresC {
			if s.Kind != ir.StoreSuccess {
				continue
			}
			if score, ok := s.Value.(ir.ScoreSource); ok && st.IsTemporary(score) && !st.IsDefined(score) {
				out = append(out, ir.IrBinary{Op: ir.OpSet, Left: score, Right: ir.IrLiteral{Value: nbt.IntVal(0)}})
				st.MarkDefined(score)
			}
		}
		out = append(out, op)
	}
	return out
}

// ApplyTempSourceReusePass implements spec.md §4.4 pass 7: when a
// temporary's only remaining use is as the operand of the very next
// operation, and that next operation's destination is itself a temporary
// with no reaching definition yet, the two temporaries are unified so the
// serializer doesn't emit a pointless extra cell.
type ApplyTempSourceReusePass struct{}

func (ApplyTempSourceReusePass) Name() string { return "apply_temp_source_reuse" }
func (ApplyTempSourceReusePass) Description() string {
	return "unifies a dead temporary with the destination of its sole consumer"
}

func (p ApplyTempSourceReusePass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	uses := ComputeUseSets(ops)
	rename := map[string]ir.Source{}

	for i, op := range ops {
		b, ok := op.(ir.IrBinary)
		if !ok || b.Op != ir.OpSet {
			continue
		}
		from, ok := b.Right.(ir.Source)
		if !ok || !st.IsTemporary(from) {
			continue
		}
		to := b.Left
		if !st.IsTemporary(to) {
			continue
		}
		idx := uses.IndicesOf(from)
		if len(idx) != 1 || idx[0] <= i {
			continue
		}
		// from is read exactly once, after this set, and nowhere else: fold
		// the copy away by having later ops address `to` directly wherever
		// they referenced `from`.
		rename[from.Key()] = to
	}

	if len(rename) == 0 {
		return ops
	}

	out := make([]ir.Operation, 0, len(ops))
	for _, op := range ops {
		if b, ok := op.(ir.IrBinary); ok && b.Op == ir.OpSet {
			if from, ok := b.Right.(ir.Source); ok {
				if _, renamed := rename[from.Key()]; renamed {
					continue // the copy itself is now redundant
				}
			}
		}
		out = append(out, renameOperands(op, rename))
	}
	return out
}

func renameOperands(op ir.Operation, rename map[string]ir.Source) ir.Operation {
	switch o := op.(type) {
	case ir.IrBinary:
		if to, ok := rename[o.Left.Key()]; ok {
			o.Left = to
		}
		o.Right = renameNode(o.Right, rename)
		return o
	case ir.IrInsert:
		if to, ok := rename[o.Left.Key()]; ok {
			o.Left = to
		}
		o.Right = renameNode(o.Right, rename)
		return o
	case ir.IrUnary:
		if to, ok := rename[o.Target.Key()]; ok {
			o.Target = to
		}
		return o
	case ir.IrCast:
		if s, ok := o.Left.(ir.Source); ok {
			if to, ok := rename[s.Key()]; ok {
				o.Left = to
			}
		}
		o.Right = renameNode(o.Right, rename)
		return o
	case ir.IrBranch:
		if cond, ok := renameNode(o.Target, rename).(ir.Condition); ok {
			o.Target = cond
		}
		children := make([]ir.Operation, len(o.Children))
		for i, c := range o.Children {
			children[i] = renameOperands(c, rename)
		}
		o.Children = children
		return o
	default:
		return op
	}
}

func renameNode(n ir.Node, rename map[string]ir.Source) ir.Node {
	switch v := n.(type) {
	case ir.Source:
		if to, ok := rename[v.Key()]; ok {
			return to
		}
		return v
	case ir.IrBinaryCondition:
		v.Left = renameNode(v.Left, rename)
		v.Right = renameNode(v.Right, rename)
		return v
	case ir.IrUnaryCondition:
		v.Target = renameNode(v.Target, rename)
		return v
	default:
		return n
	}
}

// SetToSelfRemovalPass implements spec.md §4.4 passes 8/13: a `set a = a`
// (or an equal-type, unscaled cast of a to itself) performs no work and is
// dropped, run both before and after the scaling/algebra simplifications
// since those can themselves produce fresh self-sets.
type SetToSelfRemovalPass struct{}

func (SetToSelfRemovalPass) Name() string        { return "set_to_self_removal" }
func (SetToSelfRemovalPass) Description() string { return "drops a set/cast whose source and destination are identical" }

func (p SetToSelfRemovalPass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	out := make([]ir.Operation, 0, len(ops))
	for _, op := range ops {
		switch o := op.(type) {
		case ir.IrBinary:
			if o.Op == ir.OpSet && len(o.StoresC) == 0 {
				if src, ok := o.Right.(ir.Source); ok && src.Key() == o.Left.Key() {
					continue
				}
			}
		case ir.IrCast:
			if len(o.StoresC) == 0 && ir.IsCopyOp(o) {
				if src, ok := o.Right.(ir.Source); ok {
					if left, ok := o.Left.(ir.Source); ok && left.Key() == src.Key() {
						continue
					}
				}
			}
		}
		out = append(out, op)
	}
	return out
}
