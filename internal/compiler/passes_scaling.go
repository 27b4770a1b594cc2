package compiler

import (
	"github.com/rx-modules/bolt-expr/internal/ir"
	"github.com/rx-modules/bolt-expr/internal/nbt"
)

// DataSetScalingPass implements spec.md §4.4 pass 9: a cast writing into a
// data path folds two things into its own Scale field instead of leaving
// them as separate operations -- the data path's own declared fixed-point
// scale, and a scalar multiply/divide on its temp operand that the unroller
// emitted immediately before the cast. Folding the latter removes the
// multiply/divide op outright, and a division that leaves the cast
// otherwise untyped widens it to the default floating type, since a
// fractional scale can't be represented faithfully as an integer store.
type DataSetScalingPass struct{}

func (DataSetScalingPass) Name() string        { return "data_set_scaling" }
func (DataSetScalingPass) Description() string {
	return "folds a data destination's declared scale, and an adjacent multiply/divide on its operand, into its writing cast"
}

func (p DataSetScalingPass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	uses := ComputeUseSets(ops)
	out := make([]ir.Operation, 0, len(ops))
	for i, op := range ops {
		c, ok := op.(ir.IrCast)
		if !ok {
			out = append(out, op)
			continue
		}
		data, ok := c.Left.(ir.DataSource)
		if !ok {
			out = append(out, op)
			continue
		}

		scale := c.ResolvedScale()
		if s := data.ResolvedScale(); s != 1 {
			scale *= s
		}

		if temp, ok := c.Right.(ir.Source); ok && st.IsTemporary(temp) && len(out) > 0 && !uses.UsedAfter(temp, i) {
			if b, ok := out[len(out)-1].(ir.IrBinary); ok && b.Left.Key() == temp.Key() {
				if lit, ok := b.Right.(ir.IrLiteral); ok {
					if f, ok := lit.Value.AsFloat64(); ok && f != 0 {
						switch b.Op {
						case ir.OpMul:
							scale *= f
							out = out[:len(out)-1]
						case ir.OpDiv:
							scale /= f
							out = out[:len(out)-1]
							if c.CastType == nil {
								c.CastType = st.DefaultFloatingNbtType
							}
						}
					}
				}
			}
		}

		c.Scale = scale
		out = append(out, c)
	}
	return out
}

// DataGetScalingPass implements spec.md §4.4 pass 10: the read-side
// counterpart of DataSetScalingPass -- casting a scaled data source back to
// a plain score divides by that same scale, and a scalar multiply/divide
// the unroller emitted immediately after the cast, on the cast's own
// destination temp, folds into that same Scale field instead of running as
// a separate op.
type DataGetScalingPass struct{}

func (DataGetScalingPass) Name() string        { return "data_get_scaling" }
func (DataGetScalingPass) Description() string {
	return "folds a data source's declared scale, and an adjacent multiply/divide on its result, into its reading cast"
}

func (p DataGetScalingPass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	out := make([]ir.Operation, 0, len(ops))
	for i := 0; i < len(ops); i++ {
		op := ops[i]
		c, ok := op.(ir.IrCast)
		if !ok {
			out = append(out, op)
			continue
		}
		data, ok := c.Right.(ir.DataSource)
		if !ok {
			out = append(out, op)
			continue
		}
		if _, leftIsData := c.Left.(ir.DataSource); leftIsData {
			out = append(out, op)
			continue
		}

		scale := c.ResolvedScale()
		if s := data.ResolvedScale(); s != 1 {
			scale /= s
		}

		if dest, ok := c.Left.(ir.Source); ok && i+1 < len(ops) {
			if b, ok := ops[i+1].(ir.IrBinary); ok && b.Left.Key() == dest.Key() {
				if lit, ok := b.Right.(ir.IrLiteral); ok {
					if f, ok := lit.Value.AsFloat64(); ok && f != 0 {
						switch b.Op {
						case ir.OpMul:
							scale *= f
							i++
						case ir.OpDiv:
							scale /= f
							i++
						}
					}
				}
			}
		}

		c.Scale = scale
		out = append(out, c)
	}
	return out
}

// MultiplyDivideByFractionPass implements spec.md §4.4 pass 11: scoreboard
// arithmetic is integer-only, so multiplying/dividing a score by a
// non-integer literal is decomposed into a bounded-denominator rational
// approximation (nbt.ApproximateFraction) applied as a multiply followed by
// a divide (or vice versa for division).
type MultiplyDivideByFractionPass struct{}

func (MultiplyDivideByFractionPass) Name() string { return "multiply_divide_by_fraction" }
func (MultiplyDivideByFractionPass) Description() string {
	return "decomposes a fractional literal multiply/divide into an integer numerator/denominator pair"
}

func (p MultiplyDivideByFractionPass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	if st.Temps == nil {
		return ops
	}
	out := make([]ir.Operation, 0, len(ops))
	for _, op := range ops {
		b, ok := op.(ir.IrBinary)
		if !ok || (b.Op != ir.OpMul && b.Op != ir.OpDiv) {
			out = append(out, op)
			continue
		}
		lit, ok := b.Right.(ir.IrLiteral)
		if !ok {
			out = append(out, op)
			continue
		}
		f, ok := lit.Value.AsFloat64()
		if !ok || f == float64(int64(f)) {
			out = append(out, op)
			continue
		}
		num, den := nbt.ApproximateFraction(f)
		firstOp, secondOp := ir.OpMul, ir.OpDiv
		if b.Op == ir.OpDiv {
			firstOp, secondOp = ir.OpDiv, ir.OpMul
		}
		out = append(out,
			ir.IrBinary{Op: firstOp, Left: b.Left, Right: ir.IrLiteral{Value: nbt.IntVal(int32(num))}},
			ir.IrBinary{Op: secondOp, Left: b.Left, Right: ir.IrLiteral{Value: nbt.IntVal(int32(den))}},
		)
	}
	return out
}

// MultiplyDivideByOneRemovalPass implements spec.md §4.4 pass 12.
type MultiplyDivideByOneRemovalPass struct{}

func (MultiplyDivideByOneRemovalPass) Name() string        { return "multiply_divide_by_one_removal" }
func (MultiplyDivideByOneRemovalPass) Description() string { return "drops a multiply or divide by exactly one" }

func (p MultiplyDivideByOneRemovalPass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	return filterOps(ops, func(op ir.Operation) bool {
		b, ok := op.(ir.IrBinary)
		if !ok || (b.Op != ir.OpMul && b.Op != ir.OpDiv) {
			return true
		}
		return !isLiteralOne(b.Right)
	})
}

// AddSubtractByZeroRemovalPass implements spec.md §4.4 pass 13.
type AddSubtractByZeroRemovalPass struct{}

func (AddSubtractByZeroRemovalPass) Name() string        { return "add_subtract_by_zero_removal" }
func (AddSubtractByZeroRemovalPass) Description() string { return "drops an add or subtract of exactly zero" }

func (p AddSubtractByZeroRemovalPass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	return filterOps(ops, func(op ir.Operation) bool {
		b, ok := op.(ir.IrBinary)
		if !ok || (b.Op != ir.OpAdd && b.Op != ir.OpSub) {
			return true
		}
		return !isLiteralZero(b.Right)
	})
}

func isLiteralOne(n ir.Node) bool {
	lit, ok := n.(ir.IrLiteral)
	if !ok {
		return false
	}
	if i, ok := lit.Value.AsInt64(); ok {
		return i == 1
	}
	if f, ok := lit.Value.AsFloat64(); ok {
		return f == 1
	}
	return false
}

func isLiteralZero(n ir.Node) bool {
	lit, ok := n.(ir.IrLiteral)
	if !ok {
		return false
	}
	if i, ok := lit.Value.AsInt64(); ok {
		return i == 0
	}
	if f, ok := lit.Value.AsFloat64(); ok {
		return f == 0
	}
	return false
}

func filterOps(ops []ir.Operation, keep func(ir.Operation) bool) []ir.Operation {
	out := make([]ir.Operation, 0, len(ops))
	for _, op := range ops {
		if keep(op) {
			out = append(out, op)
		}
	}
	return out
}
