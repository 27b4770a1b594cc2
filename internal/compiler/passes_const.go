package compiler

import "github.com/rx-modules/bolt-expr/internal/ir"

// LiteralToConstantReplacementPass implements spec.md §4.4 pass 17:
// `scoreboard players operation` has no immediate-operand form for
// multiply/divide/modulo/min/max, so a literal used on the right of one of
// those registers a backing constant score (spec.md §8 "Constant
// registration") and is replaced by it.
type LiteralToConstantReplacementPass struct{}

func (LiteralToConstantReplacementPass) Name() string { return "literal_to_constant_replacement" }
func (LiteralToConstantReplacementPass) Description() string {
	return "replaces a literal operand of an operation-form-only op with a backing constant score"
}

func (p LiteralToConstantReplacementPass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	if st.Consts == nil {
		return ops
	}
	out := make([]ir.Operation, 0, len(ops))
	for _, op := range ops {
		b, ok := op.(ir.IrBinary)
		if !ok || !needsOperationForm(b.Op) {
			out = append(out, op)
			continue
		}
		lit, ok := b.Right.(ir.IrLiteral)
		if !ok {
			out = append(out, op)
			continue
		}
		if v, ok := lit.Value.AsInt64(); ok {
			b.Right = st.Consts.Constant(v)
		}
		out = append(out, b)
	}
	return out
}

func needsOperationForm(op ir.BinaryOp) bool {
	switch op {
	case ir.OpMul, ir.OpDiv, ir.OpMod, ir.OpMin, ir.OpMax:
		return true
	default:
		return false
	}
}
