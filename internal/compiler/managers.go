// Package compiler implements the middle of the pipeline: the temp/const
// managers, the unroller front end, the optimizer's pass pipeline and
// data-flow support, and the serializer back end (spec.md §4.3–§4.5).
// Grounded on the teacher's internal/ir/builder.go (monotonic-counter
// allocation idiom) and internal/ir/optimizations.go (named-pass pipeline).
package compiler

import (
	"fmt"

	"github.com/rx-modules/bolt-expr/internal/ir"
	"github.com/rx-modules/bolt-expr/internal/nbt"
)

// TempManager allocates fresh temporary sources of one kind (score or
// data). Its counter keeps running across resolve calls; rename_temp_scores
// renumbers the temporaries in each call's output but does not reset the
// manager (spec.md §4.3, §3 "Lifecycles").
type TempManager struct {
	Prefix    string
	Objective string // used for score temps
	Storage   string // used for data temps
	counter   int
	allocated map[string]struct{}
}

func NewTempManager(prefix, objective, storage string) *TempManager {
	return &TempManager{
		Prefix:    prefix,
		Objective: objective,
		Storage:   storage,
		allocated: make(map[string]struct{}),
	}
}

// NewScore mints a fresh temporary ScoreSource.
func (m *TempManager) NewScore() ir.ScoreSource {
	name := fmt.Sprintf("%s%d", m.Prefix, m.counter)
	m.counter++
	m.allocated[name] = struct{}{}
	return ir.ScoreSource{Holder: name, Objective: m.Objective}
}

// NewData mints a fresh temporary DataSource under the configured storage
// root, as a single-key path segment so each temp gets its own subtree.
func (m *TempManager) NewData() ir.DataSource {
	name := fmt.Sprintf("%s%d", m.Prefix, m.counter)
	m.counter++
	m.allocated[name] = struct{}{}
	return ir.DataSource{
		TargetKind: ir.StorageTarget,
		Target:     m.Storage,
		Path:       []nbt.Accessor{nbt.Key(name)},
	}
}

// IsTemporary reports whether holder was minted by this manager.
func (m *TempManager) IsTemporary(holder string) bool {
	_, ok := m.allocated[holder]
	return ok
}

// Reset clears allocation bookkeeping and the counter. The driver never
// calls it, so temp names keep counting up across resolve calls of the
// same Expression instance.
func (m *TempManager) Reset() {
	m.counter = 0
	m.allocated = make(map[string]struct{})
}

// ConstManager records integer constants that need an init-time
// `scoreboard players set` and mints the ScoreSource standing for them
// (spec.md §4.4 pass 17, §8 "Constant registration").
type ConstManager struct {
	Prefix    string
	Objective string
	seen      map[int64]struct{}
	order     []int64
}

func NewConstManager(prefix, objective string) *ConstManager {
	return &ConstManager{Prefix: prefix, Objective: objective, seen: make(map[int64]struct{})}
}

// Constant returns the ScoreSource for the given integer value, recording
// it for init-time setup exactly once per distinct value (append-only
// within a compile, per spec.md §5).
func (m *ConstManager) Constant(value int64) ir.ScoreSource {
	if _, ok := m.seen[value]; !ok {
		m.seen[value] = struct{}{}
		m.order = append(m.order, value)
	}
	return ir.ScoreSource{Holder: fmt.Sprintf("%s%d", m.Prefix, value), Objective: m.Objective}
}

// Values returns every distinct constant recorded so far, in first-seen
// order (deterministic init-command emission).
func (m *ConstManager) Values() []int64 {
	out := make([]int64, len(m.order))
	copy(out, m.order)
	return out
}
