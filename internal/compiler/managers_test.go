package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rx-modules/bolt-expr/internal/ir"
)

func TestTempManagerMintsDistinctSequentialNames(t *testing.T) {
	m := NewTempManager("$tmp_score_", "bolt.expr.temp", "")

	a := m.NewScore()
	b := m.NewScore()

	assert.Equal(t, "$tmp_score_0", a.Holder)
	assert.Equal(t, "$tmp_score_1", b.Holder)
	assert.Equal(t, "bolt.expr.temp", a.Objective)
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestTempManagerDataTempsNestUnderOwnSubtree(t *testing.T) {
	m := NewTempManager("$tmp_data_", "", "bolt.expr:temp")

	d := m.NewData()

	assert.Equal(t, ir.StorageTarget, d.TargetKind)
	assert.Equal(t, "bolt.expr:temp", d.Target)
	assert.Len(t, d.Path, 1)
}

func TestTempManagerIsTemporaryTracksOnlyItsOwnAllocations(t *testing.T) {
	m := NewTempManager("$tmp_score_", "bolt.expr.temp", "")
	s := m.NewScore()

	assert.True(t, m.IsTemporary(s.Holder))
	assert.False(t, m.IsTemporary("obj"))
}

func TestTempManagerResetClearsCounterAndAllocations(t *testing.T) {
	m := NewTempManager("$tmp_score_", "bolt.expr.temp", "")
	first := m.NewScore()
	m.Reset()
	assert.False(t, m.IsTemporary(first.Holder))
	second := m.NewScore()

	assert.Equal(t, first.Holder, second.Holder)
}

func TestConstManagerDedupesByValueAndKeepsFirstSeenOrder(t *testing.T) {
	m := NewConstManager("$", "bolt.expr.const")

	a := m.Constant(3)
	b := m.Constant(5)
	aAgain := m.Constant(3)

	assert.Equal(t, "$3", a.Holder)
	assert.Equal(t, "$5", b.Holder)
	assert.Equal(t, a.Key(), aAgain.Key())
	assert.Equal(t, []int64{3, 5}, m.Values())
}
