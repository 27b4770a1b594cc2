package compiler

import (
	"fmt"

	"github.com/rx-modules/bolt-expr/internal/ir"
	"github.com/rx-modules/bolt-expr/internal/nbt"
)

// DeadcodeEliminationPass implements spec.md §4.4 pass 21: an operation
// whose every write target is a temporary nothing downstream reads, and
// which carries no store clause, performs no observable work and is
// dropped. Runs backward, building liveness as it goes.
type DeadcodeEliminationPass struct{}

func (DeadcodeEliminationPass) Name() string        { return "deadcode_elimination" }
func (DeadcodeEliminationPass) Description() string {
	return "drops operations whose only effect is on a temporary nothing reads again"
}

func (p DeadcodeEliminationPass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	live := map[string]struct{}{}
	keep := make([]bool, len(ops))

	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]
		targets := op.Targets()
		dead := len(op.Stores()) == 0 && len(targets) > 0
		for _, t := range targets {
			if !st.IsTemporary(t) {
				dead = false
				continue
			}
			if _, used := live[t.Key()]; used {
				dead = false
			}
		}
		if dead {
			continue
		}
		keep[i] = true
		for _, t := range targets {
			delete(live, t.Key())
		}
		for _, operand := range op.Operands() {
			for _, src := range sourcesIn(operand) {
				live[src.Key()] = struct{}{}
			}
		}
	}

	out := make([]ir.Operation, 0, len(ops))
	for i, op := range ops {
		if keep[i] {
			out = append(out, op)
		}
	}
	return out
}

// RenameTempScoresPass implements spec.md §4.3 pass 22: temporaries are
// renumbered to small, sequential, first-seen-order names at the end of the
// pipeline, so two structurally identical resolve calls produce identical
// output regardless of how many scratch names earlier passes churned
// through.
type RenameTempScoresPass struct{}

func (RenameTempScoresPass) Name() string        { return "rename_temp_scores" }
func (RenameTempScoresPass) Description() string { return "renumbers temporaries to sequential, deterministic names" }

func (p RenameTempScoresPass) Apply(ops []ir.Operation, st *OptState) []ir.Operation {
	namer := st.TempNamer
	if namer == nil {
		namer = func(n int) string { return fmt.Sprintf("$t%d", n) }
	}

	rename := map[string]ir.Source{}
	counter := 0
	assign := func(src ir.Source) {
		if !st.IsTemporary(src) {
			return
		}
		if _, seen := rename[src.Key()]; seen {
			return
		}
		rename[src.Key()] = renameTemp(src, namer(counter))
		counter++
	}

	for _, op := range ops {
		for _, t := range op.Targets() {
			assign(t)
		}
		for _, operand := range op.Operands() {
			for _, src := range sourcesIn(operand) {
				assign(src)
			}
		}
	}

	if len(rename) == 0 {
		return ops
	}

	out := make([]ir.Operation, len(ops))
	for i, op := range ops {
		out[i] = renameOperands(op, rename)
	}
	return out
}

// renameTemp produces a copy of src under a new cosmetic name, preserving
// its objective/storage root.
func renameTemp(src ir.Source, name string) ir.Source {
	switch s := src.(type) {
	case ir.ScoreSource:
		s.Holder = name
		return s
	case ir.DataSource:
		if len(s.Path) == 1 && s.Path[0].Kind == nbt.KeyAccessor {
			s.Path = []nbt.Accessor{nbt.Key(name)}
		}
		return s
	default:
		return src
	}
}
