package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx-modules/bolt-expr/internal/ir"
	"github.com/rx-modules/bolt-expr/internal/nbt"
)

func TestSetToSelfRemovalDropsIdenticalSourceAndDestination(t *testing.T) {
	a := ir.ScoreSource{Holder: "#x", Objective: "obj"}
	ops := []ir.Operation{ir.IrBinary{Op: ir.OpSet, Left: a, Right: a}}

	out := (SetToSelfRemovalPass{}).Apply(ops, NewOptState(nil))

	assert.Empty(t, out)
}

func TestSetToSelfRemovalKeepsASetBetweenDifferentSources(t *testing.T) {
	a := ir.ScoreSource{Holder: "#x", Objective: "obj"}
	b := ir.ScoreSource{Holder: "#y", Objective: "obj"}
	ops := []ir.Operation{ir.IrBinary{Op: ir.OpSet, Left: a, Right: b}}

	out := (SetToSelfRemovalPass{}).Apply(ops, NewOptState(nil))

	require.Len(t, out, 1)
}

func TestSetToSelfRemovalKeepsASetCarryingAStoreClause(t *testing.T) {
	a := ir.ScoreSource{Holder: "#x", Objective: "obj"}
	ops := []ir.Operation{ir.IrBinary{
		Op: ir.OpSet, Left: a, Right: a,
		StoresC: []ir.IrStore{{Kind: ir.StoreResult, Value: ir.ScoreSource{Holder: "#r", Objective: "obj"}}},
	}}

	out := (SetToSelfRemovalPass{}).Apply(ops, NewOptState(nil))

	require.Len(t, out, 1, "a store-capturing self-set still has an externally observable effect")
}

func TestAddSubtractByZeroRemovalDropsAddOfZero(t *testing.T) {
	a := ir.ScoreSource{Holder: "#x", Objective: "obj"}
	ops := []ir.Operation{ir.IrBinary{Op: ir.OpAdd, Left: a, Right: ir.IrLiteral{Value: nbt.IntVal(0)}}}

	out := (AddSubtractByZeroRemovalPass{}).Apply(ops, NewOptState(nil))

	assert.Empty(t, out)
}

func TestAddSubtractByZeroRemovalKeepsAddOfNonzero(t *testing.T) {
	a := ir.ScoreSource{Holder: "#x", Objective: "obj"}
	ops := []ir.Operation{ir.IrBinary{Op: ir.OpAdd, Left: a, Right: ir.IrLiteral{Value: nbt.IntVal(5)}}}

	out := (AddSubtractByZeroRemovalPass{}).Apply(ops, NewOptState(nil))

	require.Len(t, out, 1)
}

func TestMultiplyDivideByOneRemovalDropsMultiplyByOne(t *testing.T) {
	a := ir.ScoreSource{Holder: "#x", Objective: "obj"}
	ops := []ir.Operation{ir.IrBinary{Op: ir.OpMul, Left: a, Right: ir.IrLiteral{Value: nbt.IntVal(1)}}}

	out := (MultiplyDivideByOneRemovalPass{}).Apply(ops, NewOptState(nil))

	assert.Empty(t, out)
}

func TestMultiplyDivideByOneRemovalKeepsDivideByOther(t *testing.T) {
	a := ir.ScoreSource{Holder: "#x", Objective: "obj"}
	ops := []ir.Operation{ir.IrBinary{Op: ir.OpDiv, Left: a, Right: ir.IrLiteral{Value: nbt.IntVal(2)}}}

	out := (MultiplyDivideByOneRemovalPass{}).Apply(ops, NewOptState(nil))

	require.Len(t, out, 1)
}

func TestDiscardCastingTurnsASameTypeUnscaledCastIntoASet(t *testing.T) {
	a := ir.DataSource{TargetKind: ir.StorageTarget, Target: "demo", Path: []nbt.Accessor{nbt.Key("a")}}
	b := ir.DataSource{TargetKind: ir.StorageTarget, Target: "demo", Path: []nbt.Accessor{nbt.Key("b")}, NbtType: nbt.IntType{}}
	ops := []ir.Operation{ir.IrCast{Left: a, Right: b, CastType: nbt.IntType{}, Scale: 1}}

	out := (DiscardCastingPass{}).Apply(ops, NewOptState(nil))

	require.Len(t, out, 1)
	bin, ok := out[0].(ir.IrBinary)
	require.True(t, ok, "a discarded cast must become a plain set")
	assert.Equal(t, ir.OpSet, bin.Op)
}

func TestDiscardCastingKeepsACastThatChangesType(t *testing.T) {
	a := ir.DataSource{TargetKind: ir.StorageTarget, Target: "demo", Path: []nbt.Accessor{nbt.Key("a")}}
	b := ir.DataSource{TargetKind: ir.StorageTarget, Target: "demo", Path: []nbt.Accessor{nbt.Key("b")}, NbtType: nbt.DoubleType{}}
	ops := []ir.Operation{ir.IrCast{Left: a, Right: b, CastType: nbt.IntType{}, Scale: 1}}

	out := (DiscardCastingPass{}).Apply(ops, NewOptState(nil))

	require.Len(t, out, 1)
	_, stillCast := out[0].(ir.IrCast)
	assert.True(t, stillCast, "a genuine type conversion must not be collapsed to a set")
}
