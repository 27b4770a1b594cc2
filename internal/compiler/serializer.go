package compiler

import (
	"fmt"
	"math"
	"strings"

	"github.com/rx-modules/bolt-expr/internal/diagnostics"
	"github.com/rx-modules/bolt-expr/internal/ir"
	"github.com/rx-modules/bolt-expr/internal/nbt"
)

// SerializerConfig carries the handful of defaults the serializer needs
// when a cast's declared type is unspecified (spec.md §4.5 "fallback to
// the configured default NBT type when the declared type is Any").
type SerializerConfig struct {
	DefaultNbtType         nbt.Type
	DefaultFloatingNbtType nbt.Type
}

// Serializer is a visitor over optimized IR that renders the textual
// command grammar of spec.md §4.5/§6. Grounded on the teacher's
// internal/ir/printer.go buffer-accumulating visitor shape, generalized
// from pretty-printing IR back to itself to emitting an unrelated target
// grammar.
type Serializer struct {
	cfg SerializerConfig
}

func NewSerializer(cfg SerializerConfig) *Serializer {
	if cfg.DefaultNbtType == nil {
		cfg.DefaultNbtType = nbt.IntType{}
	}
	if cfg.DefaultFloatingNbtType == nil {
		cfg.DefaultFloatingNbtType = nbt.DoubleType{}
	}
	return &Serializer{cfg: cfg}
}

// Serialize renders every operation in order, in strict program order
// (spec.md §5 "Ordering guarantees").
func (s *Serializer) Serialize(ops []ir.Operation) []string {
	var out []string
	for _, op := range ops {
		out = append(out, s.serializeOp(op)...)
	}
	return out
}

func (s *Serializer) serializeOp(op ir.Operation) []string {
	switch o := op.(type) {
	case ir.IrBranch:
		return s.serializeBranch(o)
	case ir.IrCast:
		return s.serializeCast(o)
	default:
		base := s.baseCommand(op)
		clauses := s.storeClauses(op.Stores())
		return []string{buildExecute(clauses, base)}
	}
}

func (s *Serializer) serializeBranch(b ir.IrBranch) []string {
	cond := conditionClause(b.Target)
	storeClauses := s.storeClauses(b.StoresC)

	var out []string
	for _, child := range b.Children {
		for _, line := range s.serializeOp(child) {
			clauses := make([]string, 0, len(storeClauses)+1)
			clauses = append(clauses, storeClauses...)
			clauses = append(clauses, cond)
			out = append(out, buildExecute(clauses, line))
		}
	}
	return out
}

func (s *Serializer) serializeCast(c ir.IrCast) []string {
	run := s.getCommand(c.Right)

	destType := c.CastType
	if destType == nil {
		destType = s.defaultTypeFor(c.Right)
	}

	clauses := []string{s.storeClauseForValue(c.Left, ir.StoreResult, destType, c.ResolvedScale())}
	clauses = append(clauses, s.storeClauses(c.StoresC)...)
	return []string{buildExecute(clauses, run)}
}

// baseCommand renders the un-wrapped command for everything but IrCast and
// IrBranch (spec.md §4.5's five plain command shapes).
func (s *Serializer) baseCommand(op ir.Operation) string {
	switch o := op.(type) {
	case ir.IrUnary:
		return s.unaryCommand(o)
	case ir.IrInsert:
		return s.insertCommand(o)
	case ir.IrBinary:
		return s.binaryCommand(o)
	default:
		diagnostics.Panic(diagnostics.NewInvariantViolation("serializer", fmt.Sprintf("unhandled operation %T", op)))
		return ""
	}
}

func (s *Serializer) unaryCommand(u ir.IrUnary) string {
	switch u.Op {
	case ir.OpReset:
		if score, ok := u.Target.(ir.ScoreSource); ok {
			return fmt.Sprintf("scoreboard players reset %s %s", score.Holder, score.Objective)
		}
	case ir.OpEnable:
		if score, ok := u.Target.(ir.ScoreSource); ok {
			return fmt.Sprintf("scoreboard players enable %s %s", score.Holder, score.Objective)
		}
	case ir.OpRemove:
		if data, ok := u.Target.(ir.DataSource); ok {
			return fmt.Sprintf("data remove %s", dataTarget(data))
		}
	case ir.OpGetLength:
		if data, ok := u.Target.(ir.DataSource); ok {
			return fmt.Sprintf("data get %s", dataTarget(data))
		}
	}
	diagnostics.Panic(diagnostics.NewInvalidOperand(u.Op.String(), operandKind(u.Target)))
	return ""
}

func (s *Serializer) binaryCommand(b ir.IrBinary) string {
	if score, ok := b.Left.(ir.ScoreSource); ok {
		return s.scoreBinaryCommand(score, b)
	}
	if data, ok := b.Left.(ir.DataSource); ok {
		return s.dataBinaryCommand(data, b, -1)
	}
	diagnostics.Panic(diagnostics.NewInvalidOperand(b.Op.String(), operandKind(b.Left)))
	return ""
}

func (s *Serializer) scoreBinaryCommand(left ir.ScoreSource, b ir.IrBinary) string {
	switch b.Op {
	case ir.OpSet:
		if lit, ok := b.Right.(ir.IrLiteral); ok {
			v, _ := lit.Value.AsInt64()
			return fmt.Sprintf("scoreboard players set %s %s %d", left.Holder, left.Objective, v)
		}
		if right, ok := b.Right.(ir.ScoreSource); ok {
			return fmt.Sprintf("scoreboard players operation %s %s = %s %s", left.Holder, left.Objective, right.Holder, right.Objective)
		}
	case ir.OpAdd:
		if lit, ok := b.Right.(ir.IrLiteral); ok {
			v, _ := lit.Value.AsInt64()
			return fmt.Sprintf("scoreboard players add %s %s %d", left.Holder, left.Objective, v)
		}
		if right, ok := b.Right.(ir.ScoreSource); ok {
			return fmt.Sprintf("scoreboard players operation %s %s += %s %s", left.Holder, left.Objective, right.Holder, right.Objective)
		}
	case ir.OpSub:
		if lit, ok := b.Right.(ir.IrLiteral); ok {
			v, _ := lit.Value.AsInt64()
			return fmt.Sprintf("scoreboard players remove %s %s %d", left.Holder, left.Objective, v)
		}
		if right, ok := b.Right.(ir.ScoreSource); ok {
			return fmt.Sprintf("scoreboard players operation %s %s -= %s %s", left.Holder, left.Objective, right.Holder, right.Objective)
		}
	case ir.OpMul, ir.OpDiv, ir.OpMod, ir.OpMin, ir.OpMax:
		if right, ok := b.Right.(ir.ScoreSource); ok {
			operator, _ := b.Op.ScoreboardOperator()
			return fmt.Sprintf("scoreboard players operation %s %s %s %s %s", left.Holder, left.Objective, operator, right.Holder, right.Objective)
		}
	}
	diagnostics.Panic(diagnostics.NewInvalidOperand(b.Op.String(), "score", operandKind(b.Right)))
	return ""
}

func (s *Serializer) dataBinaryCommand(left ir.DataSource, b ir.IrBinary, insertIndex int) string {
	mode := ""
	switch b.Op {
	case ir.OpSet:
		mode = "set"
	case ir.OpAppend:
		mode = "append"
	case ir.OpPrepend:
		mode = "prepend"
	case ir.OpMerge:
		mode = "merge"
	default:
		diagnostics.Panic(diagnostics.NewInvalidOperand(b.Op.String(), "data", operandKind(b.Right)))
	}
	if insertIndex >= 0 {
		mode = fmt.Sprintf("insert %d", insertIndex)
	}

	valueExpr := s.dataValueExpr(b.Right)
	return fmt.Sprintf("data modify %s %s %s", dataTarget(left), mode, valueExpr)
}

func (s *Serializer) insertCommand(ii ir.IrInsert) string {
	data, ok := ii.Left.(ir.DataSource)
	if !ok {
		diagnostics.Panic(diagnostics.NewInvalidOperand("insert", operandKind(ii.Left)))
	}
	return s.dataBinaryCommand(data, ii.IrBinary, ii.Index)
}

func (s *Serializer) dataValueExpr(n ir.Node) string {
	switch v := n.(type) {
	case ir.IrLiteral:
		return "value " + v.Value.String()
	case ir.DataSource:
		return "from " + dataTarget(v)
	case ir.IrCompositeLiteral:
		if len(v.EmbeddedSources()) > 0 {
			diagnostics.Panic(diagnostics.NewInvariantViolation("serializer",
				"composite literal embedding a source reached the serializer without being expanded"))
		}
		return "value " + v.String()
	default:
		diagnostics.Panic(diagnostics.NewInvalidOperand("data set/append/prepend/merge", operandKind(n)))
		return ""
	}
}

// getCommand renders the bare read command a cast's `run` clause wraps.
func (s *Serializer) getCommand(n ir.Node) string {
	switch v := n.(type) {
	case ir.ScoreSource:
		return fmt.Sprintf("scoreboard players get %s %s", v.Holder, v.Objective)
	case ir.DataSource:
		return fmt.Sprintf("data get %s", dataTarget(v))
	default:
		diagnostics.Panic(diagnostics.NewInvariantViolation("serializer", fmt.Sprintf("cast operand %T is not a readable source", n)))
		return ""
	}
}

func (s *Serializer) defaultTypeFor(right ir.Node) nbt.Type {
	if data, ok := right.(ir.DataSource); ok && data.NbtType != nil && !nbt.IsAny(data.NbtType) {
		return data.NbtType
	}
	return s.cfg.DefaultNbtType
}

func (s *Serializer) storeClauses(stores []ir.IrStore) []string {
	out := make([]string, 0, len(stores))
	for _, st := range stores {
		out = append(out, s.storeClauseForValue(st.Value, st.Kind, st.CastType, st.ResolvedScale()))
	}
	return out
}

func (s *Serializer) storeClauseForValue(dest ir.Node, kind ir.StoreKind, castType nbt.Type, scale float64) string {
	switch v := dest.(type) {
	case ir.ScoreSource:
		return fmt.Sprintf("store %s score %s %s", kind, v.Holder, v.Objective)
	case ir.DataSource:
		if castType == nil {
			castType = s.defaultTypeFor(v)
		}
		return fmt.Sprintf("store %s %s %s %s", kind, dataTarget(v), nbtTypeWord(castType), formatScale(scale))
	default:
		diagnostics.Panic(diagnostics.NewInvariantViolation("serializer", fmt.Sprintf("store destination %T is not score or data", dest)))
		return ""
	}
}

// conditionClause renders the `if|unless ...` middle portion of an execute
// invocation for a Condition (spec.md §4.5 "Condition serialization").
func conditionClause(c ir.Condition) string {
	kw := "if"
	if c.IsNegated() {
		kw = "unless"
	}

	switch cond := c.(type) {
	case ir.IrBinaryCondition:
		lscore, lok := cond.Left.(ir.ScoreSource)
		if !lok {
			diagnostics.Panic(diagnostics.NewInvariantViolation("serializer", "binary condition's left operand is not a score"))
		}
		if rscore, ok := cond.Right.(ir.ScoreSource); ok {
			op := scoreCompareOperator(cond.Op)
			return fmt.Sprintf("%s score %s %s %s %s %s", kw, lscore.Holder, lscore.Objective, op, rscore.Holder, rscore.Objective)
		}
		if lit, ok := cond.Right.(ir.IrLiteral); ok {
			return fmt.Sprintf("%s score %s %s matches %s", kw, lscore.Holder, lscore.Objective, matchesRange(cond.Op, lit))
		}
		diagnostics.Panic(diagnostics.NewInvalidOperand("condition", operandKind(cond.Right)))

	case ir.IrUnaryCondition:
		if cond.Op != ir.OpBoolean {
			diagnostics.Panic(diagnostics.NewInvariantViolation("serializer", "unary condition op is not boolean"))
		}
		if score, ok := cond.Target.(ir.ScoreSource); ok {
			if cond.Negate {
				return fmt.Sprintf("if score %s %s matches 0", score.Holder, score.Objective)
			}
			return fmt.Sprintf("if score %s %s matches %d.. unless score %s %s matches 0",
				score.Holder, score.Objective, math.MinInt32, score.Holder, score.Objective)
		}
		if data, ok := cond.Target.(ir.DataSource); ok {
			return fmt.Sprintf("%s data %s", kw, dataTarget(data))
		}
		diagnostics.Panic(diagnostics.NewInvalidOperand("boolean condition", operandKind(cond.Target)))
	}

	return ""
}

func scoreCompareOperator(op ir.ConditionOp) string {
	switch op {
	case ir.OpEqual:
		return "="
	case ir.OpLessThan:
		return "<"
	case ir.OpLessThanOrEqual:
		return "<="
	case ir.OpGreaterThan:
		return ">"
	case ir.OpGreaterThanOrEqual:
		return ">="
	default:
		diagnostics.Panic(diagnostics.NewInvariantViolation("serializer", "no score-score operator for this condition op"))
		return ""
	}
}

func matchesRange(op ir.ConditionOp, lit ir.IrLiteral) string {
	v, _ := lit.Value.AsInt64()
	switch op {
	case ir.OpEqual:
		return fmt.Sprintf("%d", v)
	case ir.OpLessThan:
		return fmt.Sprintf("..%d", v-1)
	case ir.OpLessThanOrEqual:
		return fmt.Sprintf("..%d", v)
	case ir.OpGreaterThan:
		return fmt.Sprintf("%d..", v+1)
	case ir.OpGreaterThanOrEqual:
		return fmt.Sprintf("%d..", v)
	default:
		diagnostics.Panic(diagnostics.NewInvariantViolation("serializer", "no matches-range form for this condition op"))
		return ""
	}
}

// buildExecute wraps run with an `execute <clauses...> run` prefix, or
// returns run unchanged when there are no clauses at all.
func buildExecute(clauses []string, run string) string {
	if len(clauses) == 0 {
		return run
	}
	return "execute " + strings.Join(clauses, " ") + " run " + run
}

func dataTarget(d ir.DataSource) string {
	path := dataPathString(d.Path)
	if path == "" {
		return fmt.Sprintf("%s %s", d.TargetKind, d.Target)
	}
	return fmt.Sprintf("%s %s %s", d.TargetKind, d.Target, path)
}

// dataPathString renders a path the way the wire grammar expects: dotted
// keys with no leading dot on the first segment, unlike DataSource.String's
// debug rendering.
func dataPathString(path []nbt.Accessor) string {
	var b strings.Builder
	for i, a := range path {
		switch a.Kind {
		case nbt.KeyAccessor:
			if i > 0 {
				b.WriteString(".")
			}
			b.WriteString(a.Key)
		case nbt.IndexAccessor:
			fmt.Fprintf(&b, "[%d]", a.Index)
		case nbt.MatchAccessor:
			fmt.Fprintf(&b, "[%s]", matchPredicateString(a.Match))
		}
	}
	return b.String()
}

func matchPredicateString(m map[string]nbt.Value) string {
	var b strings.Builder
	b.WriteString("{")
	first := true
	for k, v := range m {
		if !first {
			b.WriteString(",")
		}
		first = false
		fmt.Fprintf(&b, "%s:%s", k, v.String())
	}
	b.WriteString("}")
	return b.String()
}

func nbtTypeWord(t nbt.Type) string {
	if t == nil {
		return "int"
	}
	return strings.ToLower(t.String())
}

func formatScale(scale float64) string {
	if scale == math.Trunc(scale) {
		return fmt.Sprintf("%d", int64(scale))
	}
	return fmt.Sprintf("%g", scale)
}

func operandKind(n ir.Node) string {
	switch n.(type) {
	case ir.ScoreSource:
		return "score"
	case ir.DataSource:
		return "data"
	case ir.IrLiteral:
		return "literal"
	case ir.IrCompositeLiteral:
		return "composite"
	default:
		return fmt.Sprintf("%T", n)
	}
}
