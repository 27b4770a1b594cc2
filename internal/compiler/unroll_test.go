package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx-modules/bolt-expr/internal/ir"
	"github.com/rx-modules/bolt-expr/internal/nbt"
)

func newHelper() *UnrollHelper {
	return NewUnrollHelper(
		NewTempManager("$tmp_score_", "bolt.expr.temp", ""),
		NewTempManager("$tmp_data_", "", "bolt.expr:temp"),
		nil,
	)
}

// A top-level `obj["#x"] += 5` must add directly into obj["#x"], not into a
// fresh temporary — the destination is the caller's explicit mutation
// target, not a nested sub-expression's protected read.
func TestUnrollTopAddsIntoTheActualTarget(t *testing.T) {
	target := ir.ScoreSource{Holder: "#x", Objective: "obj"}
	expr := ir.BinaryExpr{
		Op:    ir.OpAdd,
		Left:  ir.SourceExpr{Source: target},
		Right: ir.LiteralExpr{Literal: ir.IrLiteral{Value: nbt.IntVal(5)}},
	}

	ops, dest := UnrollTop(expr, newHelper())

	require.Len(t, ops, 1)
	bin, ok := ops[0].(ir.IrBinary)
	require.True(t, ok)
	assert.Equal(t, target.Key(), bin.Left.Key())
	assert.Equal(t, target.Key(), dest.(ir.Source).Key())
}

// The same expression run through the plain, nested-context Unroll (as a
// sub-expression would be) is expected to protect the original source by
// copying it into a fresh temp first -- this is the behavior UnrollTop
// exists to bypass at the top level.
func TestPlainUnrollProtectsTheSourceInsteadOfTheTarget(t *testing.T) {
	target := ir.ScoreSource{Holder: "#x", Objective: "obj"}
	expr := ir.BinaryExpr{
		Op:    ir.OpAdd,
		Left:  ir.SourceExpr{Source: target},
		Right: ir.LiteralExpr{Literal: ir.IrLiteral{Value: nbt.IntVal(5)}},
	}

	ops, dest := Unroll(expr, newHelper())

	require.Len(t, ops, 2)
	destSrc, ok := dest.(ir.Source)
	require.True(t, ok)
	assert.NotEqual(t, target.Key(), destSrc.Key(), "plain Unroll must not mutate the original source in place")
}

func TestUnrollTopScoreIntoScoreTargetsTheLeftOperandDirectly(t *testing.T) {
	left := ir.ScoreSource{Holder: "#x", Objective: "obj"}
	right := ir.ScoreSource{Holder: "#y", Objective: "other"}
	expr := ir.BinaryExpr{Op: ir.OpSet, Left: ir.SourceExpr{Source: left}, Right: ir.SourceExpr{Source: right}}

	ops, dest := UnrollTop(expr, newHelper())

	require.Len(t, ops, 1)
	bin := ops[0].(ir.IrBinary)
	assert.Equal(t, left.Key(), bin.Left.Key())
	assert.Equal(t, right.Key(), bin.Right.(ir.Source).Key())
	assert.Equal(t, left.Key(), dest.(ir.Source).Key())
}

// A non-binary top-level expression (a unary op) has no "pinned left
// operand vs. protected source" distinction at all, so UnrollTop and
// Unroll must agree.
func TestUnrollTopDelegatesNonBinaryExpressionsUnchanged(t *testing.T) {
	target := ir.ScoreSource{Holder: "#x", Objective: "obj"}
	expr := ir.UnaryExpr{Op: ir.OpReset, Target: ir.SourceExpr{Source: target}}

	topOps, topDest := UnrollTop(expr, newHelper())
	plainOps, plainDest := Unroll(expr, newHelper())

	assert.Equal(t, plainOps, topOps)
	assert.Equal(t, plainDest, topDest)
}

// Repeated unrolling of the same tree with fresh helpers must mint temps
// starting from the same counter and produce identical operation lists:
// the unroller has no hidden global state between independent resolve calls.
func TestUnrollIsDeterministicAcrossIndependentHelpers(t *testing.T) {
	build := func() ir.ExprNode {
		return ir.BinaryExpr{
			Op:    ir.OpAdd,
			Left:  ir.BinaryExpr{Op: ir.OpMul, Left: ir.SourceExpr{Source: ir.ScoreSource{Holder: "#x", Objective: "obj"}}, Right: ir.LiteralExpr{Literal: ir.IrLiteral{Value: nbt.IntVal(3)}}},
			Right: ir.SourceExpr{Source: ir.ScoreSource{Holder: "#y", Objective: "obj"}},
		}
	}

	ops1, _ := UnrollTop(build(), newHelper())
	ops2, _ := UnrollTop(build(), newHelper())

	require.Equal(t, len(ops1), len(ops2))
	for i := range ops1 {
		assert.Equal(t, ops1[i], ops2[i])
	}
}
