package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx-modules/bolt-expr/internal/driver"
	"github.com/rx-modules/bolt-expr/internal/nbt"
	"github.com/rx-modules/bolt-expr/internal/source"
)

func newExpr(t *testing.T) (*driver.Expression, *driver.CommandBuffer) {
	t.Helper()
	buf := &driver.CommandBuffer{}
	return driver.NewExpression(driver.DefaultConfig(), buf, nil), buf
}

func TestSimpleAddLiteral(t *testing.T) {
	e, buf := newExpr(t)
	obj := source.NewScore(e, "@s", "obj")

	obj.IAdd(source.Int(5))

	assert.Equal(t, []string{"scoreboard players add @s obj 5"}, buf.Commands)
}

func TestScoreIntoScore(t *testing.T) {
	e, buf := newExpr(t)
	obj := source.NewScore(e, "#x", "obj")
	other := source.NewScore(e, "#y", "other")

	obj.Set(other)

	assert.Equal(t, []string{"scoreboard players operation #x obj = #y other"}, buf.Commands)
}

func TestMultiplyByLiteral(t *testing.T) {
	e, buf := newExpr(t)
	obj := source.NewScore(e, "#x", "obj")

	obj.Set(source.Wrap(obj.Mul(source.Int(3))))

	require.Len(t, buf.Commands, 1)
	assert.Equal(t, "scoreboard players operation #x obj *= $3 bolt.expr.const", buf.Commands[0])

	init := e.GenerateInit()
	assert.Contains(t, init, "scoreboard players set $3 bolt.expr.const 3")
}

func TestDivideIntoDataScaling(t *testing.T) {
	e, buf := newExpr(t)
	obj := source.NewScore(e, "#v", "obj")
	out := source.NewStorageData(e, "demo").Key("out").As(nbt.IntType{}, 1)

	out.Set(source.Wrap(obj.Div(source.Int(100))))

	require.Len(t, buf.Commands, 1)
	assert.Equal(t, "execute store result storage demo out double 0.01 run scoreboard players get #v obj", buf.Commands[0])
}

func TestAppendScoreToList(t *testing.T) {
	e, buf := newExpr(t)
	obj := source.NewScore(e, "#n", "obj")
	list := source.NewStorageData(e, "demo").Key("list")

	list.Append(obj)

	require.Len(t, buf.Commands, 2)
	assert.Equal(t, "data modify storage demo list append value 0", buf.Commands[0])
	assert.Equal(t, "execute store result storage demo list[-1] int 1 run scoreboard players get #n obj", buf.Commands[1])
}

func TestBranchOnScore(t *testing.T) {
	e, buf := newExpr(t)
	obj := source.NewScore(e, "@s", "obj")
	other := source.NewScore(e, "#k", "other")

	err := source.If(e, obj.Gt(source.Int(0)), func() error {
		other.Set(source.Int(1))
		return nil
	})

	require.NoError(t, err)
	require.Len(t, buf.Commands, 1)
	assert.Equal(t, "execute if score @s obj matches 1.. run scoreboard players set #k other 1", buf.Commands[0])
}

func TestInitDeclaresEveryObjectiveOnce(t *testing.T) {
	e, _ := newExpr(t)
	source.NewScore(e, "@s", "obj")
	source.NewScore(e, "#y", "obj") // same objective, second holder

	init := e.GenerateInit()
	count := 0
	for _, cmd := range init {
		if cmd == "scoreboard objectives add obj dummy" {
			count++
		}
	}
	assert.Equal(t, 1, count, "obj should only be declared once even with two Score handles")
}

func TestInitCommandEmittedOnce(t *testing.T) {
	e, _ := newExpr(t)
	first := e.Init()
	second := e.Init()

	assert.Equal(t, []string{"function bolt.expr:init"}, first)
	assert.Empty(t, second, "a second Init call must not re-emit the function call")
}

func TestScoreComparisonsBuildExpressionsWithoutResolving(t *testing.T) {
	e, buf := newExpr(t)
	obj := source.NewScore(e, "@s", "obj")

	_ = obj.Lt(source.Int(10))
	_ = obj.Ge(source.Int(0))
	_ = obj.Ne(source.Int(5))

	assert.Empty(t, buf.Commands, "building a comparison expression must not itself emit anything")
}
