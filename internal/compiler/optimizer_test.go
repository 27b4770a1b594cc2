package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx-modules/bolt-expr/internal/ir"
)

func selfSetOps() []ir.Operation {
	a := ir.ScoreSource{Holder: "#x", Objective: "obj"}
	return []ir.Operation{ir.IrBinary{Op: ir.OpSet, Left: a, Right: a}}
}

func TestOptimizerRunAppliesEveryPassByDefault(t *testing.T) {
	o := NewOptimizer()
	out := o.Run(selfSetOps(), NewOptState(nil), nil)

	assert.Empty(t, out, "set_to_self_removal should drop a self-set with no toggles disabling it")
}

func TestOptimizerRunHonorsDisabledToggle(t *testing.T) {
	o := NewOptimizer()
	toggles := map[string]bool{"set_to_self_removal": false}
	out := o.Run(selfSetOps(), NewOptState(nil), toggles)

	require.Len(t, out, 1, "disabling set_to_self_removal must leave the self-set in place")
}

func TestOptimizerRunSubsetIgnoresPassesNotListed(t *testing.T) {
	o := NewOptimizer()
	out := o.RunSubset(selfSetOps(), NewOptState(nil), []string{"discard_casting"})

	require.Len(t, out, 1, "RunSubset must skip set_to_self_removal when it isn't in the allowed list")
}

func TestOptimizerPassNamesAreUniqueExceptTheRepeatedSetToSelfRemoval(t *testing.T) {
	o := NewOptimizer()
	seen := map[string]int{}
	for _, p := range o.Passes() {
		seen[p.Name()]++
	}
	for name, n := range seen {
		want := 1
		if name == "set_to_self_removal" {
			want = 2
		}
		assert.Equal(t, want, n, "pass name %q registered %d times", name, n)
	}
	assert.NotEmpty(t, seen)
}

func TestOptimizerRunIsDeterministic(t *testing.T) {
	o := NewOptimizer()
	out1 := o.Run(selfSetOps(), NewOptState(nil), nil)
	out2 := o.Run(selfSetOps(), NewOptState(nil), nil)

	assert.Equal(t, out1, out2)
}
