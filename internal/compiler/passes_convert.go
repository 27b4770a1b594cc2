package compiler

import (
	"github.com/rx-modules/bolt-expr/internal/ir"
	"github.com/rx-modules/bolt-expr/internal/nbt"
)

// DataInsertScorePass implements spec.md §4.4 pass 1: appending/prepending
// a score into a list becomes an insert of a placeholder zero followed by
// a store-result cast into the new element slot, since `data modify ...
// append/prepend value` can't read a scoreboard cell directly.
type DataInsertScorePass struct{}

func (DataInsertScorePass) Name() string { return "data_insert_score" }
func (DataInsertScorePass) Description() string {
	return "splits a list append/prepend of a score into insert-zero + store-result cast"
}

func (p DataInsertScorePass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	out := make([]ir.Operation, 0, len(ops))
	for _, op := range ops {
		if b, ok := op.(ir.IrBinary); ok && (b.Op == ir.OpAppend || b.Op == ir.OpPrepend) {
			if score, ok := b.Right.(ir.ScoreSource); ok {
				if data, ok := b.Left.(ir.DataSource); ok {
					idx := -1
					if b.Op == ir.OpPrepend {
						idx = 0
					}
					out = append(out,
						ir.IrBinary{Op: b.Op, Left: data, Right: ir.IrLiteral{Value: nbt.IntVal(0)}},
						ir.IrCast{Left: data.WithPath(nbt.Index(idx)), Right: score, Scale: 1},
					)
					continue
				}
			}
		}
		out = append(out, op)
	}
	return out
}

// ConvertCastPass implements spec.md §4.4 pass 2: a `set` between differing
// source kinds becomes an explicit IrCast.
type ConvertCastPass struct{}

func (ConvertCastPass) Name() string        { return "convert_cast" }
func (ConvertCastPass) Description() string { return "turns cross-kind set ops into explicit casts" }

func (p ConvertCastPass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	out := make([]ir.Operation, 0, len(ops))
	for _, op := range ops {
		if b, ok := op.(ir.IrBinary); ok && b.Op == ir.OpSet && differentKinds(b.Left, b.Right) {
			out = append(out, ir.IrCast{Left: b.Left, Right: b.Right, Scale: 1, StoresC: b.StoresC})
			continue
		}
		out = append(out, op)
	}
	return out
}

func differentKinds(left ir.Source, right ir.Node) bool {
	rsrc, ok := right.(ir.Source)
	if !ok {
		return false
	}
	_, lScore := left.(ir.ScoreSource)
	_, rScore := rsrc.(ir.ScoreSource)
	return lScore != rScore
}

// ConvertDataArithmeticPass implements spec.md §4.4 pass 3: arithmetic
// whose right-hand operand is a data source reads it into a fresh temp
// score first (scoreboard arithmetic can't read a data path directly).
type ConvertDataArithmeticPass struct{}

func (ConvertDataArithmeticPass) Name() string { return "convert_data_arithmetic" }
func (ConvertDataArithmeticPass) Description() string {
	return "loads a data right-hand operand into a temp score before arithmetic"
}

func (p ConvertDataArithmeticPass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	if st.Temps == nil {
		return ops
	}
	out := make([]ir.Operation, 0, len(ops))
	for _, op := range ops {
		if b, ok := op.(ir.IrBinary); ok && isArithmetic(b.Op) {
			if _, leftIsScore := b.Left.(ir.ScoreSource); leftIsScore {
				if data, ok := b.Right.(ir.DataSource); ok {
					tmp := st.Temps.NewScore()
					out = append(out, ir.IrCast{Left: tmp, Right: data, Scale: 1})
					b.Right = tmp
					op = b
				}
			}
		}
		out = append(out, op)
	}
	return out
}

func isArithmetic(op ir.BinaryOp) bool {
	switch op {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod, ir.OpMin, ir.OpMax:
		return true
	default:
		return false
	}
}

// ConvertDataOrderOperationPass implements spec.md §4.4 pass 4: order
// comparisons against a data source load it into a score first (scoreboard
// `matches`/comparison forms can't reference a data path).
type ConvertDataOrderOperationPass struct{}

func (ConvertDataOrderOperationPass) Name() string { return "convert_data_order_operation" }
func (ConvertDataOrderOperationPass) Description() string {
	return "loads a data operand of an order comparison into a temp score"
}

func (p ConvertDataOrderOperationPass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	if st.Temps == nil {
		return ops
	}
	out := make([]ir.Operation, 0, len(ops))
	for _, op := range ops {
		b, ok := op.(ir.IrBinary)
		if !ok || b.Op != ir.OpSet {
			out = append(out, op)
			continue
		}
		cond, ok := b.Right.(ir.IrBinaryCondition)
		if !ok || !isOrder(cond.Op) {
			out = append(out, op)
			continue
		}
		var pre []ir.Operation
		cond.Left, pre = loadIfData(cond.Left, st, pre)
		cond.Right, pre = loadIfData(cond.Right, st, pre)
		out = append(out, pre...)
		b.Right = cond
		out = append(out, b)
	}
	return out
}

func isOrder(op ir.ConditionOp) bool {
	switch op {
	case ir.OpLessThan, ir.OpLessThanOrEqual, ir.OpGreaterThan, ir.OpGreaterThanOrEqual:
		return true
	default:
		return false
	}
}

func loadIfData(n ir.Node, st *OptState, pre []ir.Operation) (ir.Node, []ir.Operation) {
	data, ok := n.(ir.DataSource)
	if !ok {
		return n, pre
	}
	tmp := st.Temps.NewScore()
	pre = append(pre, ir.IrCast{Left: tmp, Right: data, Scale: 1})
	return tmp, pre
}
