// Package driver implements spec.md §4.6: the single stateful orchestrator
// that owns the temp/const managers, the optimizer, the serializer, and the
// lazy-value bookkeeping, and exposes resolve/resolve_branch/init to the
// source façade. Grounded on the teacher's internal/semantic/analyzer.go
// single-orchestrator-struct pattern, generalized from a whole-program
// semantic pass to an incrementally-called compile-and-emit driver.
package driver

import (
	"fmt"

	"github.com/rx-modules/bolt-expr/internal/compiler"
	"github.com/rx-modules/bolt-expr/internal/diagnostics"
	"github.com/rx-modules/bolt-expr/internal/ir"
	"github.com/rx-modules/bolt-expr/internal/nbt"
)

// Config holds every option of spec.md §6's configuration table.
type Config struct {
	TempObjective          string
	ConstObjective         string
	TempStorage            string
	InitPath               string
	ObjectivePrefix        string
	DefaultNbtType         nbt.Type
	DefaultFloatingNbtType nbt.Type
	DisableCommands        bool
}

// DefaultConfig matches the objectives named throughout spec.md §8's
// worked scenarios.
func DefaultConfig() Config {
	return Config{
		TempObjective:          "bolt.expr.temp",
		ConstObjective:         "bolt.expr.const",
		TempStorage:            "bolt.expr:temp",
		InitPath:               "bolt.expr:init",
		DefaultNbtType:         nbt.IntType{},
		DefaultFloatingNbtType: nbt.DoubleType{},
	}
}

// Sink is the host collaborator that appends one parsed command per
// emitted string (spec.md §6, "Inputs from the host").
type Sink interface {
	Append(command string)
}

// PathAllocator lets the host hand out logical function paths for the init
// function and anonymous branch bodies.
type PathAllocator interface {
	AllocatePath(hint string) string
}

// CommandBuffer is a minimal in-memory Sink, handy for tests and for a host
// that just wants the flat command list back.
type CommandBuffer struct {
	Commands []string
}

func (b *CommandBuffer) Append(command string) { b.Commands = append(b.Commands, command) }

// restrictedConditionPasses is the pass subset resolve_branch runs over a
// branch's condition before the condition is combined with the branch body
// and re-optimized with the full pipeline (spec.md §4.6).
var restrictedConditionPasses = []string{
	"convert_cast",
	"convert_data_arithmetic",
	"convert_data_order_operation",
	"discard_casting",
}

// scope is the driver's own built-in implementation of spec.md §4.6's
// "runtime scope" collaborator: a push/pop stack of operation lists that
// lets resolve_branch collect everything a body callback resolves, without
// those resolves reaching the sink directly. spec.md §9 describes the host
// providing this as a black box; here it is the unexported Expression.scope
// field, which a host cannot replace.
type scope struct {
	frames [][]ir.Operation
}

func (s *scope) Active() bool { return len(s.frames) > 0 }

func (s *scope) Enter() { s.frames = append(s.frames, nil) }

func (s *scope) Leave() []ir.Operation {
	n := len(s.frames)
	top := s.frames[n-1]
	s.frames = s.frames[:n-1]
	return top
}

func (s *scope) Record(ops []ir.Operation) {
	top := len(s.frames) - 1
	s.frames[top] = append(s.frames[top], ops...)
}

// Expression is one independent compile instance: spec.md §5, "Callers may
// embed multiple independent Expression instances ... those instances are
// independent and share no state."
type Expression struct {
	Config Config

	ScoreTemps *compiler.TempManager
	DataTemps  *compiler.TempManager
	Consts     *compiler.ConstManager
	Optimizer  *compiler.Optimizer
	Serializer *compiler.Serializer
	Reporter   *diagnostics.Reporter

	Sink  Sink
	Paths PathAllocator

	scope *scope

	lazyBindings map[string]ir.ExprNode  // source.Key() -> deferred expr, for ir.LazyExpr
	pending      map[string][]ir.Operation // source.Key() -> deferred, unemitted ops (resolve(..., lazy=true))

	objectives  []string
	seenObjective map[string]struct{}
	initCalled bool
}

// NewExpression builds a driver instance with its own managers, so two
// Expressions never share a temp/const namespace.
func NewExpression(cfg Config, sink Sink, paths PathAllocator) *Expression {
	e := &Expression{
		Config:     cfg,
		ScoreTemps: compiler.NewTempManager("$tmp_score_", cfg.TempObjective, ""),
		DataTemps:  compiler.NewTempManager("$tmp_data_", "", cfg.TempStorage),
		Consts:     compiler.NewConstManager("$", cfg.ConstObjective),
		Optimizer:  compiler.NewOptimizer(),
		Serializer: compiler.NewSerializer(compiler.SerializerConfig{
			DefaultNbtType:         cfg.DefaultNbtType,
			DefaultFloatingNbtType: cfg.DefaultFloatingNbtType,
		}),
		Reporter:      diagnostics.NewReporter(),
		Sink:          sink,
		Paths:         paths,
		scope:         &scope{},
		lazyBindings:  map[string]ir.ExprNode{},
		pending:       map[string][]ir.Operation{},
		seenObjective: map[string]struct{}{},
	}
	e.registerObjective(cfg.TempObjective)
	e.registerObjective(cfg.ConstObjective)
	return e
}

// ObjectiveName applies the configured objective prefix to a user-chosen
// objective name (spec.md §6, "objective_prefix").
func (e *Expression) ObjectiveName(name string) string {
	if e.Config.ObjectivePrefix == "" {
		return name
	}
	return e.Config.ObjectivePrefix + name
}

// RegisterObjective records an objective the init function must declare.
// Called by the source façade whenever it mints a Score bound to a new
// user objective.
func (e *Expression) RegisterObjective(name string) {
	e.registerObjective(name)
}

func (e *Expression) registerObjective(name string) {
	if _, ok := e.seenObjective[name]; ok {
		return
	}
	e.seenObjective[name] = struct{}{}
	e.objectives = append(e.objectives, name)
}

// Defer registers source as a lazy-bound value: every subsequent unroll
// that reads source inlines deferred in its place instead (spec.md §9,
// "Lazy-bound sources and deferred emission").
func (e *Expression) Defer(source ir.Source, deferred ir.ExprNode) {
	e.lazyBindings[source.Key()] = deferred
}

// Resolve implements spec.md §4.6's `resolve(expr, lazy) -> SourceTuple`.
// The returned Node is the source or literal holding the expression's
// result. When lazy is true, the commands are held back until some later
// Resolve call actually reads the result.
func (e *Expression) Resolve(expr ir.ExprNode, lazy bool) ir.Node {
	ops, result := e.compile(expr)

	if lazy {
		if src, ok := result.(ir.Source); ok {
			e.pending[src.Key()] = ops
			return result
		}
	}

	e.flushDependencies(ops)
	e.emit(ops)
	return result
}

// compile unrolls and fully optimizes expr, without emitting anything.
func (e *Expression) compile(expr ir.ExprNode) ([]ir.Operation, ir.Node) {
	h := compiler.NewUnrollHelper(e.ScoreTemps, e.DataTemps, e.lazyBindings)
	ops, result := compiler.UnrollTop(expr, h)
	st := compiler.NewOptState(h.Allocated)
	st.Temps = e.ScoreTemps
	st.Consts = e.Consts
	st.DefaultFloatingNbtType = e.Config.DefaultFloatingNbtType
	ops = e.Optimizer.Run(ops, st, nil)
	ops = e.typeCheck(ops)
	return ops, result
}

// ResolveBranch implements spec.md §4.6's `resolve_branch`. It unrolls and
// restricted-optimizes cond, yields to body so it can resolve the branch's
// inner statements (collected rather than emitted), wraps the result as an
// IrBranch, and re-optimizes the combined tree with the full pipeline
// before serializing and emitting it.
func (e *Expression) ResolveBranch(cond ir.ExprNode, body func() error) error {
	h := compiler.NewUnrollHelper(e.ScoreTemps, e.DataTemps, e.lazyBindings)
	condOps, condResult := compiler.Unroll(cond, h)

	st := compiler.NewOptState(h.Allocated)
	st.Temps = e.ScoreTemps
	st.Consts = e.Consts
	st.DefaultFloatingNbtType = e.Config.DefaultFloatingNbtType
	condOps = e.Optimizer.RunSubset(condOps, st, restrictedConditionPasses)

	target, condOps := extractCondition(condOps, condResult)

	e.scope.Enter()
	bodyErr := body()
	children := e.scope.Leave()

	branch := ir.IrBranch{Target: target, Children: children}
	all := append(condOps, branch)
	all = e.Optimizer.Run(all, st, nil)
	all = e.typeCheck(all)

	e.flushDependencies(all)
	e.emit(all)

	return bodyErr
}

// extractCondition pulls the raw Condition node back out of the trailing
// `dest = cond` that Unroll always appends for a top-level ConditionExpr,
// so the branch tests the condition directly rather than through an extra
// boolean temp. Falls back to a boolean test of the unrolled result if the
// op list doesn't end in that shape (e.g. a pre-built boolean source).
func extractCondition(ops []ir.Operation, result ir.Node) (ir.Condition, []ir.Operation) {
	if len(ops) > 0 {
		if b, ok := ops[len(ops)-1].(ir.IrBinary); ok && b.Op == ir.OpSet {
			if cond, ok := b.Right.(ir.Condition); ok {
				return cond, ops[:len(ops)-1]
			}
		}
	}
	return ir.IrUnaryCondition{Op: ir.OpBoolean, Target: result}, ops
}

// flushDependencies emits any pending lazy resolve whose result is read by
// ops, before ops itself is emitted, transitively. This is evaluate_lazy
// from spec.md §9: "the driver's post-compile hook drains the map,
// emitting only entries whose consumer materialized them."
func (e *Expression) flushDependencies(ops []ir.Operation) {
	for _, op := range ops {
		for _, operand := range op.Operands() {
			for _, key := range sourceKeysIn(operand) {
				pendingOps, ok := e.pending[key]
				if !ok {
					continue
				}
				delete(e.pending, key)
				e.flushDependencies(pendingOps)
				e.emit(pendingOps)
			}
		}
		if br, ok := op.(ir.IrBranch); ok {
			e.flushDependencies(br.Children)
		}
	}
}

func sourceKeysIn(n ir.Node) []string {
	switch v := n.(type) {
	case ir.Source:
		return []string{v.Key()}
	case ir.IrBinaryCondition:
		return append(sourceKeysIn(v.Left), sourceKeysIn(v.Right)...)
	case ir.IrUnaryCondition:
		return sourceKeysIn(v.Target)
	default:
		return nil
	}
}

// emit serializes ops and appends the result to the sink, or to the active
// runtime scope if a resolve_branch body is currently collecting.
func (e *Expression) emit(ops []ir.Operation) {
	if e.scope.Active() {
		e.scope.Record(ops)
		return
	}
	for _, cmd := range e.Serializer.Serialize(ops) {
		e.Sink.Append(cmd)
	}
}

// Init implements spec.md §4.6's `init()`: emits the single call to the
// init function, once per Expression instance.
func (e *Expression) Init() []string {
	if e.initCalled {
		return nil
	}
	e.initCalled = true
	return []string{fmt.Sprintf("function %s", e.Config.InitPath)}
}

// GenerateInit implements `generate_init()`: the body of the init
// function, declaring every recorded objective and setting every recorded
// constant. Load-tag registration is the data-pack emission layer's
// concern (spec.md §1 explicitly externalizes it); this returns only the
// plain command body.
func (e *Expression) GenerateInit() []string {
	cmds := make([]string, 0, len(e.objectives)+len(e.Consts.Values()))
	for _, obj := range e.objectives {
		cmds = append(cmds, fmt.Sprintf("scoreboard objectives add %s dummy", obj))
	}
	for _, v := range e.Consts.Values() {
		cmds = append(cmds, fmt.Sprintf("scoreboard players set $%d %s %d", v, e.Config.ConstObjective, v))
	}
	return cmds
}
