package compiler

import (
	"github.com/rx-modules/bolt-expr/internal/ir"
	"github.com/rx-modules/bolt-expr/internal/nbt"
)

type condDef struct {
	idx  int
	src  ir.Source
	cond ir.Condition
}

// BooleanConditionPropagationPass implements spec.md §4.4 pass 18: a
// boolean temp set from a condition and then tested exactly once, with
// nothing else touching it in between, has that condition substituted
// straight into the test and the intermediate set dropped.
type BooleanConditionPropagationPass struct{}

func (BooleanConditionPropagationPass) Name() string { return "boolean_condition_propagation" }
func (BooleanConditionPropagationPass) Description() string {
	return "inlines a condition stored in a boolean temp back into its sole consumer"
}

func (p BooleanConditionPropagationPass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	uses := ComputeUseSets(ops)

	defs := map[string]condDef{}
	for i, op := range ops {
		b, ok := op.(ir.IrBinary)
		if !ok || b.Op != ir.OpSet || !st.IsTemporary(b.Left) {
			continue
		}
		cond, ok := b.Right.(ir.Condition)
		if !ok {
			continue
		}
		defs[b.Left.Key()] = condDef{i, b.Left, cond}
	}

	rewritten := make([]ir.Operation, len(ops))
	copy(rewritten, ops)
	remove := make(map[int]bool)

	for _, d := range defs {
		// The defining set lists its own Left among its operands, so only
		// reads after d.idx count as consumers.
		var later []int
		for _, u := range uses.IndicesOf(d.src) {
			if u > d.idx {
				later = append(later, u)
			}
		}
		if len(later) != 1 {
			continue
		}
		j := later[0]
		if uses.UsedAfter(d.src, j) {
			continue
		}
		replaced := false
		rewritten[j] = inlineBooleanCondition(rewritten[j], d.src, d.cond, &replaced)
		if replaced {
			remove[d.idx] = true
		}
	}

	out := make([]ir.Operation, 0, len(ops))
	for i, op := range rewritten {
		if remove[i] {
			continue
		}
		out = append(out, op)
	}
	return out
}

// inlineBooleanCondition walks op's Condition-typed fields looking for an
// `IrUnaryCondition{Op: OpBoolean, Target: target}` test and replaces it
// with cond (applying the test's own Negate), recursing into branch
// children. Never reassigns a bare Condition into an Operation slot.
func inlineBooleanCondition(op ir.Operation, target ir.Source, cond ir.Condition, replaced *bool) ir.Operation {
	switch o := op.(type) {
	case ir.IrBinary:
		if c, ok := o.Right.(ir.Condition); ok {
			o.Right = substituteBooleanTest(c, target, cond, replaced)
		}
		return o
	case ir.IrBranch:
		o.Target = substituteBooleanTest(o.Target, target, cond, replaced)
		children := make([]ir.Operation, len(o.Children))
		for i, c := range o.Children {
			children[i] = inlineBooleanCondition(c, target, cond, replaced)
		}
		o.Children = children
		return o
	default:
		return op
	}
}

func substituteBooleanTest(c ir.Condition, target ir.Source, cond ir.Condition, replaced *bool) ir.Condition {
	uc, ok := c.(ir.IrUnaryCondition)
	if !ok || uc.Op != ir.OpBoolean {
		return c
	}
	t, ok := uc.Target.(ir.Source)
	if !ok || t.Key() != target.Key() {
		return c
	}
	*replaced = true
	if uc.Negate {
		return cond.Negated()
	}
	return cond
}

// BranchConditionPropagationPass implements spec.md §4.4 pass 19: a branch
// whose tested condition is a boolean temp defined by the immediately
// preceding op, with no other use, has that definition inlined into the
// branch's own condition.
type BranchConditionPropagationPass struct{}

func (BranchConditionPropagationPass) Name() string { return "branch_condition_propagation" }
func (BranchConditionPropagationPass) Description() string {
	return "inlines an immediately preceding boolean definition into a branch's condition"
}

func (p BranchConditionPropagationPass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	uses := ComputeUseSets(ops)
	out := make([]ir.Operation, 0, len(ops))

	for i := 0; i < len(ops); i++ {
		branch, ok := ops[i].(ir.IrBranch)
		if !ok || i == 0 {
			out = append(out, ops[i])
			continue
		}
		uc, ok := branch.Target.(ir.IrUnaryCondition)
		if !ok || uc.Op != ir.OpBoolean {
			out = append(out, ops[i])
			continue
		}
		target, ok := uc.Target.(ir.Source)
		if !ok || !st.IsTemporary(target) {
			out = append(out, ops[i])
			continue
		}
		prev, ok := ops[i-1].(ir.IrBinary)
		if !ok || prev.Op != ir.OpSet || prev.Left.Key() != target.Key() {
			out = append(out, ops[i])
			continue
		}
		cond, ok := prev.Right.(ir.Condition)
		if !ok || uses.UsedAfter(target, i) {
			out = append(out, ops[i])
			continue
		}
		if uc.Negate {
			cond = cond.Negated()
		}
		branch.Target = cond
		if len(out) > 0 {
			out = out[:len(out)-1] // drop the now-redundant preceding definition
		}
		out = append(out, branch)
	}
	return out
}

// ConvertDefinedBooleanConditionPass implements spec.md §4.4 pass 20: a
// boolean (truthiness) test of a plain scoreboard source -- always a
// definite numeric type, never Optional/Any -- is always exactly "nonzero",
// so it is rewritten to the equivalent, serializer-cheaper equality test.
type ConvertDefinedBooleanConditionPass struct{}

func (ConvertDefinedBooleanConditionPass) Name() string { return "convert_defined_boolean_condition" }
func (ConvertDefinedBooleanConditionPass) Description() string {
	return "rewrites a boolean test of a score into an explicit nonzero equality test"
}

func (p ConvertDefinedBooleanConditionPass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	out := make([]ir.Operation, 0, len(ops))
	for _, op := range ops {
		out = append(out, rewriteConditions(op, convertDefinedBoolean))
	}
	return out
}

func convertDefinedBoolean(c ir.Condition) ir.Condition {
	uc, ok := c.(ir.IrUnaryCondition)
	if !ok || uc.Op != ir.OpBoolean {
		return c
	}
	if _, isScore := uc.Target.(ir.ScoreSource); !isScore {
		return c
	}
	return ir.IrBinaryCondition{
		Op:     ir.OpEqual,
		Left:   uc.Target,
		Right:  ir.IrLiteral{Value: nbt.IntVal(0)},
		Negate: !uc.Negate,
	}
}

// rewriteConditions applies f to every Condition directly reachable from op
// (a Set's right-hand condition, or a branch's target), leaving everything
// else untouched.
func rewriteConditions(op ir.Operation, f func(ir.Condition) ir.Condition) ir.Operation {
	switch o := op.(type) {
	case ir.IrBinary:
		if cond, ok := o.Right.(ir.Condition); ok {
			o.Right = f(cond)
		}
		return o
	case ir.IrBranch:
		o.Target = f(o.Target)
		children := make([]ir.Operation, len(o.Children))
		for i, c := range o.Children {
			children[i] = rewriteConditions(c, f)
		}
		o.Children = children
		return o
	default:
		return op
	}
}
