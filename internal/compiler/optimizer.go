package compiler

import (
	"github.com/rx-modules/bolt-expr/internal/ir"
	"github.com/rx-modules/bolt-expr/internal/nbt"
)

// Pass is one named, independently toggleable rewrite rule over an IR
// operation list. Grounded on the teacher's
// internal/ir/optimizations.go OptimizationPass interface
// (Name/Apply/Description), generalized from a whole-Program mutation to a
// pure function over a flat operation list — this domain's IR has no
// basic blocks to walk.
type Pass interface {
	Name() string
	Description() string
	Apply(ops []ir.Operation, st *OptState) []ir.Operation
}

// OptState is the state threaded through one Optimizer.Run call: which
// sources are safe to rename/elide (temporaries) and which are known to
// already hold a determinate value (defined), per spec.md §4.4 "Temporary
// tracking". Scoped per resolve call, restored on return.
type OptState struct {
	Temporary map[string]struct{}
	Defined   map[string]struct{}
	TempNamer func(n int) string
	// Temps lets passes that need to introduce a new temporary mid-pipeline
	// (e.g. convert_data_arithmetic loading a data operand into a score)
	// mint one consistently with the unroller's own allocations.
	Temps *TempManager
	// Consts backs literal_to_constant_replacement's registration of a
	// scoreboard-operation-compatible constant for a literal operand.
	Consts *ConstManager
	// DefaultFloatingNbtType backs data_set_scaling's widening of a cast's
	// type when folding a divide produces a fractional scale and the cast
	// itself was left untyped by convert_cast.
	DefaultFloatingNbtType nbt.Type
}

func NewOptState(temps map[string]struct{}) *OptState {
	if temps == nil {
		temps = map[string]struct{}{}
	}
	return &OptState{
		Temporary: temps,
		Defined:   map[string]struct{}{},
	}
}

func (s *OptState) IsTemporary(src ir.Source) bool {
	_, ok := s.Temporary[src.Key()]
	return ok
}

func (s *OptState) IsDefined(src ir.Source) bool {
	_, ok := s.Defined[src.Key()]
	return ok
}

func (s *OptState) MarkDefined(src ir.Source) { s.Defined[src.Key()] = struct{}{} }

// Optimizer runs the fixed, ordered pass list from spec.md §4.4 over an IR
// operation list, honoring a per-invocation enable/disable toggle map —
// the teacher's OptimizationPipeline has no such toggle; it is added
// plumbing spec.md §4.4 asks for ("each pass is individually toggleable").
type Optimizer struct {
	passes []Pass
}

// NewOptimizer builds the optimizer with the full, ordered pass library.
func NewOptimizer() *Optimizer {
	return &Optimizer{passes: defaultPasses()}
}

// Passes returns the ordered pass list (for introspection).
func (o *Optimizer) Passes() []Pass { return o.passes }

// Run applies every enabled pass in order. toggles maps a pass Name() to
// false to skip it; passes not present in toggles default to enabled.
func (o *Optimizer) Run(ops []ir.Operation, st *OptState, toggles map[string]bool) []ir.Operation {
	for _, p := range o.passes {
		if enabled, present := toggles[p.Name()]; present && !enabled {
			continue
		}
		ops = p.Apply(ops, st)
	}
	return ops
}

// RunSubset runs only the named passes, in the Optimizer's registered
// order, ignoring the rest — used by resolve_branch's restricted
// first-pass optimization of the condition (spec.md §4.6).
func (o *Optimizer) RunSubset(ops []ir.Operation, st *OptState, only []string) []ir.Operation {
	allowed := make(map[string]bool, len(only))
	for _, n := range only {
		allowed[n] = true
	}
	for _, p := range o.passes {
		if !allowed[p.Name()] {
			continue
		}
		ops = p.Apply(ops, st)
	}
	return ops
}

func defaultPasses() []Pass {
	return []Pass{
		&DataInsertScorePass{},
		&ConvertCastPass{},
		&ConvertDataArithmeticPass{},
		&ConvertDataOrderOperationPass{},
		&DiscardCastingPass{},
		&InitScoreBooleanResultPass{},
		&ApplyTempSourceReusePass{},
		&SetToSelfRemovalPass{},
		&DataSetScalingPass{},
		&DataGetScalingPass{},
		&MultiplyDivideByFractionPass{},
		&MultiplyDivideByOneRemovalPass{},
		&AddSubtractByZeroRemovalPass{},
		&SetToSelfRemovalPass{}, // second pass, per spec.md §4.4 item 13
		&SetAndGetCleanupPass{},
		&NoncommutativeSetCollapsingPass{},
		&CommutativeSetCollapsingPass{},
		&LiteralToConstantReplacementPass{},
		&BooleanConditionPropagationPass{},
		&BranchConditionPropagationPass{},
		&ConvertDefinedBooleanConditionPass{},
		&DeadcodeEliminationPass{},
		&RenameTempScoresPass{},
	}
}
