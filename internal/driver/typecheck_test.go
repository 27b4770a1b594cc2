package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx-modules/bolt-expr/internal/ir"
	"github.com/rx-modules/bolt-expr/internal/nbt"
)

func storagePath(key string, t nbt.Type) ir.DataSource {
	return ir.DataSource{TargetKind: ir.StorageTarget, Target: "demo", Path: []nbt.Accessor{nbt.Key(key)}, NbtType: t}
}

// A literal written into a data destination declared as a narrower type
// than the literal's own default (int) must be cast to the destination's
// type, not left at the literal's own default kind.
func TestExpressionNarrowsALiteralToTheDestinationsDeclaredType(t *testing.T) {
	buf := &CommandBuffer{}
	e := NewExpression(DefaultConfig(), buf, nil)

	dest := storagePath("flag", nbt.ByteType{})
	expr := ir.BinaryExpr{Op: ir.OpSet, Left: ir.SourceExpr{Source: dest}, Right: ir.LiteralExpr{Literal: ir.IrLiteral{Value: nbt.IntVal(1)}}}

	e.Resolve(expr, false)

	require.False(t, e.Reporter.HasErrors())
	assert.Equal(t, []string{"data modify storage demo flag set value 1b"}, buf.Commands)
}

// A literal that overflows the destination's declared type is reported as
// a non-fatal diagnostic; resolve() still produces output rather than
// aborting.
func TestExpressionReportsALiteralThatOverflowsTheDestinationType(t *testing.T) {
	buf := &CommandBuffer{}
	e := NewExpression(DefaultConfig(), buf, nil)

	dest := storagePath("flag", nbt.ByteType{})
	expr := ir.BinaryExpr{Op: ir.OpSet, Left: ir.SourceExpr{Source: dest}, Right: ir.LiteralExpr{Literal: ir.IrLiteral{Value: nbt.IntVal(9000)}}}

	e.Resolve(expr, false)

	assert.True(t, e.Reporter.HasErrors())
	require.NotEmpty(t, buf.Commands, "an overflowing literal is reported but still lowered best-effort")
}

// Writing between two data sources with incompatible declared types is
// reported; a plain undeclared (nil NbtType) destination is never checked.
func TestExpressionReportsIncompatibleDataToDataWrites(t *testing.T) {
	buf := &CommandBuffer{}
	e := NewExpression(DefaultConfig(), buf, nil)

	dest := storagePath("out", nbt.IntType{})
	src := storagePath("in", nbt.StringType{})
	expr := ir.BinaryExpr{Op: ir.OpSet, Left: ir.SourceExpr{Source: dest}, Right: ir.SourceExpr{Source: src}}

	e.Resolve(expr, false)

	assert.True(t, e.Reporter.HasErrors())
}

func TestExpressionSkipsCheckingAnUndeclaredDestinationType(t *testing.T) {
	buf := &CommandBuffer{}
	e := NewExpression(DefaultConfig(), buf, nil)

	dest := ir.DataSource{TargetKind: ir.StorageTarget, Target: "demo", Path: []nbt.Accessor{nbt.Key("out")}}
	src := storagePath("in", nbt.StringType{})
	expr := ir.BinaryExpr{Op: ir.OpSet, Left: ir.SourceExpr{Source: dest}, Right: ir.SourceExpr{Source: src}}

	e.Resolve(expr, false)

	assert.False(t, e.Reporter.HasErrors())
}
