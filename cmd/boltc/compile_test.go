package main

import (
	"testing"

	"github.com/alecthomas/participle/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx-modules/bolt-expr/internal/driver"
)

func compileSource(t *testing.T, src string) []string {
	t.Helper()
	parser, err := participle.Build[Program](
		participle.Lexer(boltLexer),
		participle.Elide("Whitespace"),
	)
	require.NoError(t, err)

	program, err := parser.ParseString("test.bolt", src)
	require.NoError(t, err)

	buf := &driver.CommandBuffer{}
	expr := driver.NewExpression(driver.DefaultConfig(), buf, nil)
	c := &compiler{expr: expr}
	require.NoError(t, c.compileProgram(program))

	return buf.Commands
}

func TestCompileSimpleAdd(t *testing.T) {
	cmds := compileSource(t, `obj["@s"] += 5`)
	assert.Equal(t, []string{"scoreboard players add @s obj 5"}, cmds)
}

func TestCompileScoreIntoScore(t *testing.T) {
	cmds := compileSource(t, `obj["#x"] = other["#y"]`)
	assert.Equal(t, []string{"scoreboard players operation #x obj = #y other"}, cmds)
}

func TestCompileBranch(t *testing.T) {
	cmds := compileSource(t, `if obj["@s"] > 0 { other["#k"] = 1 }`)
	require.Len(t, cmds, 1)
	assert.Equal(t, "execute if score @s obj matches 1.. run scoreboard players set #k other 1", cmds[0])
}

func TestCompileRejectsMalformedSource(t *testing.T) {
	parser, err := participle.Build[Program](
		participle.Lexer(boltLexer),
		participle.Elide("Whitespace"),
	)
	require.NoError(t, err)

	_, err = parser.ParseString("test.bolt", `obj["@s"] +=`)
	assert.Error(t, err)
}
