// Package source implements spec.md §4.7: the user-facing Score/Data
// façade. These are thin builders over internal/ir.ExprNode — arithmetic
// and comparison methods return a new expression node referencing their
// operands, path navigation returns a new Data with an updated path/type,
// and only the mutating methods ("I"-prefixed in-place ops, Set/rebind,
// Append/Prepend/Merge/Insert, Reset/Enable/Remove), Defer, NewScore and If
// call into the driver. Grounded on internal/ir/exprnode.go's
// closed ExprNode set (itself adapted from the teacher's
// internal/ast/expr.go node-kind registration) generalized from
// AST-building to expression-tree building, per spec.md §9's "expose an
// expression builder trait/interface with explicit add, sub, ... methods"
// — Go has no operator overloading, so every operator is spelled out.
package source

import (
	"github.com/rx-modules/bolt-expr/internal/driver"
	"github.com/rx-modules/bolt-expr/internal/ir"
	"github.com/rx-modules/bolt-expr/internal/nbt"
)

// Valuable is anything that can appear on the right-hand side of an
// operator: a Score, a Data, or a literal built with Int/Double/Str/...
type Valuable interface {
	Expr() ir.ExprNode
}

// literal adapts a bare NBT value into a Valuable.
type literal struct{ expr ir.ExprNode }

func (l literal) Expr() ir.ExprNode { return l.expr }

func Byte(v int8) Valuable     { return literal{ir.LiteralExpr{Literal: ir.IrLiteral{Value: nbt.ByteVal(v)}}} }
func Short(v int16) Valuable   { return literal{ir.LiteralExpr{Literal: ir.IrLiteral{Value: nbt.ShortVal(v)}}} }
func Int(v int32) Valuable     { return literal{ir.LiteralExpr{Literal: ir.IrLiteral{Value: nbt.IntVal(v)}}} }
func Long(v int64) Valuable    { return literal{ir.LiteralExpr{Literal: ir.IrLiteral{Value: nbt.LongVal(v)}}} }
func Float(v float32) Valuable { return literal{ir.LiteralExpr{Literal: ir.IrLiteral{Value: nbt.FloatVal(v)}}} }
func Double(v float64) Valuable {
	return literal{ir.LiteralExpr{Literal: ir.IrLiteral{Value: nbt.DoubleVal(v)}}}
}
func Str(v string) Valuable { return literal{ir.LiteralExpr{Literal: ir.IrLiteral{Value: nbt.StringVal(v)}}} }

// Wrap adapts an already-built ir.ExprNode (e.g. one assembled by walking
// a surface-syntax tree) as a Valuable, for right-hand sides that are
// themselves compound expressions rather than a bare Score/Data/literal.
func Wrap(expr ir.ExprNode) Valuable { return literal{expr} }

// Compound and List build a (possibly nested, possibly source-embedding)
// composite literal, e.g. Compound(map[string]Valuable{"id": obj["@s"]}).
func Compound(fields map[string]Valuable) Valuable {
	out := make(map[string]ir.ExprNode, len(fields))
	for k, v := range fields {
		out[k] = v.Expr()
	}
	return literal{ir.CompositeExpr{Compound: out}}
}

func List(elems ...Valuable) Valuable {
	out := make([]ir.ExprNode, len(elems))
	for i, v := range elems {
		out[i] = v.Expr()
	}
	return literal{ir.CompositeExpr{List: out}}
}

// Score is a handle on one scoreboard cell. Expr()/arithmetic/comparison
// methods are pure tree builders; the "I"-prefixed methods resolve a
// mutation through the driver immediately.
type Score struct {
	d      *driver.Expression
	Source ir.ScoreSource
}

// NewScore builds a Score bound to holder on objective, registering
// objective with the driver so init() declares it.
func NewScore(d *driver.Expression, holder, objective string) Score {
	name := d.ObjectiveName(objective)
	d.RegisterObjective(name)
	return Score{d: d, Source: ir.ScoreSource{Holder: holder, Objective: name}}
}

func (s Score) Expr() ir.ExprNode { return ir.SourceExpr{Source: s.Source} }
func (s Score) String() string    { return s.Source.String() }

func (s Score) binary(op ir.BinaryOp, v Valuable) ir.ExprNode {
	return ir.BinaryExpr{Op: op, Left: s.Expr(), Right: v.Expr()}
}

func (s Score) Add(v Valuable) ir.ExprNode { return s.binary(ir.OpAdd, v) }
func (s Score) Sub(v Valuable) ir.ExprNode { return s.binary(ir.OpSub, v) }
func (s Score) Mul(v Valuable) ir.ExprNode { return s.binary(ir.OpMul, v) }
func (s Score) Div(v Valuable) ir.ExprNode { return s.binary(ir.OpDiv, v) }
func (s Score) Mod(v Valuable) ir.ExprNode { return s.binary(ir.OpMod, v) }
func (s Score) Min(v Valuable) ir.ExprNode { return s.binary(ir.OpMin, v) }
func (s Score) Max(v Valuable) ir.ExprNode { return s.binary(ir.OpMax, v) }

func (s Score) compare(op ir.ConditionOp, v Valuable, negate bool) ir.ExprNode {
	return ir.ConditionExpr{Op: op, Left: s.Expr(), Right: v.Expr(), Negate: negate}
}

func (s Score) Eq(v Valuable) ir.ExprNode { return s.compare(ir.OpEqual, v, false) }
func (s Score) Ne(v Valuable) ir.ExprNode { return s.compare(ir.OpEqual, v, true) }
func (s Score) Lt(v Valuable) ir.ExprNode { return s.compare(ir.OpLessThan, v, false) }
func (s Score) Le(v Valuable) ir.ExprNode { return s.compare(ir.OpLessThanOrEqual, v, false) }
func (s Score) Gt(v Valuable) ir.ExprNode { return s.compare(ir.OpGreaterThan, v, false) }
func (s Score) Ge(v Valuable) ir.ExprNode { return s.compare(ir.OpGreaterThanOrEqual, v, false) }

// Bool tests the score for truthiness (non-zero), spec.md §3's boolean
// condition over a plain score.
func (s Score) Bool() ir.ExprNode {
	return ir.ConditionExpr{Op: ir.OpBoolean, Left: s.Expr()}
}

// Cast requests an explicit rescale/retype of the score's value.
func (s Score) Cast(t nbt.Type, scale float64) ir.ExprNode {
	return ir.CastExpr{Operand: s.Expr(), CastType: t, Scale: scale}
}

// resolve runs expr through the driver as a top-level mutation and
// returns the receiver so mutating calls chain: `s.IAdd(x).IMul(y)`.
func (s Score) resolve(expr ir.ExprNode) Score {
	s.d.Resolve(expr, false)
	return s
}

func (s Score) Set(v Valuable) Score  { return s.resolve(ir.BinaryExpr{Op: ir.OpSet, Left: s.Expr(), Right: v.Expr()}) }
func (s Score) IAdd(v Valuable) Score { return s.resolve(s.binary(ir.OpAdd, v)) }
func (s Score) ISub(v Valuable) Score { return s.resolve(s.binary(ir.OpSub, v)) }
func (s Score) IMul(v Valuable) Score { return s.resolve(s.binary(ir.OpMul, v)) }
func (s Score) IDiv(v Valuable) Score { return s.resolve(s.binary(ir.OpDiv, v)) }
func (s Score) IMod(v Valuable) Score { return s.resolve(s.binary(ir.OpMod, v)) }
func (s Score) IMin(v Valuable) Score { return s.resolve(s.binary(ir.OpMin, v)) }
func (s Score) IMax(v Valuable) Score { return s.resolve(s.binary(ir.OpMax, v)) }

// Reset clears the score entirely (`scoreboard players reset`).
func (s Score) Reset() Score {
	s.d.Resolve(ir.UnaryExpr{Op: ir.OpReset, Target: s.Expr()}, false)
	return s
}

// Enable marks a trigger-type objective's cell re-triggerable.
func (s Score) Enable() Score {
	s.d.Resolve(ir.UnaryExpr{Op: ir.OpEnable, Target: s.Expr()}, false)
	return s
}

// Defer binds expr as this score's lazy value: every later read inlines
// expr instead of reading the cell directly (spec.md §9).
func (s Score) Defer(expr ir.ExprNode) {
	s.d.Defer(s.Source, expr)
}

// Data is a handle on a path into storage/entity/block NBT.
type Data struct {
	d      *driver.Expression
	Source ir.DataSource
}

// NewStorageData, NewEntityData and NewBlockData build a Data rooted at
// target with an empty path.
func NewStorageData(d *driver.Expression, target string) Data {
	return Data{d: d, Source: ir.DataSource{TargetKind: ir.StorageTarget, Target: target}}
}

func NewEntityData(d *driver.Expression, target string) Data {
	return Data{d: d, Source: ir.DataSource{TargetKind: ir.EntityTarget, Target: target}}
}

func NewBlockData(d *driver.Expression, target string) Data {
	return Data{d: d, Source: ir.DataSource{TargetKind: ir.BlockTarget, Target: target}}
}

func (d Data) Expr() ir.ExprNode { return ir.SourceExpr{Source: d.Source} }
func (d Data) String() string    { return d.Source.String() }

// Key steps into a compound by name: `d["out"]`.
func (d Data) Key(key string) Data {
	next := d
	next.Source = d.Source.WithPath(nbt.Key(key))
	return next
}

// Index steps into a list: `d[-1]`. Negative indices count from the end.
func (d Data) Index(i int) Data {
	next := d
	next.Source = d.Source.WithPath(nbt.Index(i))
	return next
}

// Match selects the first list element whose fields match m.
func (d Data) Match(m map[string]nbt.Value) Data {
	next := d
	next.Source = d.Source.WithPath(nbt.Match(m))
	return next
}

// As reinterprets the same path as NBT type t, with the given scale
// applied on read/write — spec.md §4.7's "d[type-cast]" path navigation.
func (d Data) As(t nbt.Type, scale float64) Data {
	next := d
	next.Source.NbtType = t
	next.Source.Scale = scale
	return next
}

func (d Data) binary(op ir.BinaryOp, v Valuable) ir.ExprNode {
	return ir.BinaryExpr{Op: op, Left: d.Expr(), Right: v.Expr()}
}

func (d Data) Add(v Valuable) ir.ExprNode { return d.binary(ir.OpAdd, v) }
func (d Data) Sub(v Valuable) ir.ExprNode { return d.binary(ir.OpSub, v) }
func (d Data) Mul(v Valuable) ir.ExprNode { return d.binary(ir.OpMul, v) }
func (d Data) Div(v Valuable) ir.ExprNode { return d.binary(ir.OpDiv, v) }

func (d Data) compare(op ir.ConditionOp, v Valuable, negate bool) ir.ExprNode {
	return ir.ConditionExpr{Op: op, Left: d.Expr(), Right: v.Expr(), Negate: negate}
}

func (d Data) Eq(v Valuable) ir.ExprNode { return d.compare(ir.OpEqual, v, false) }
func (d Data) Ne(v Valuable) ir.ExprNode { return d.compare(ir.OpEqual, v, true) }

// Bool tests the path for presence/truthiness.
func (d Data) Bool() ir.ExprNode {
	return ir.ConditionExpr{Op: ir.OpBoolean, Left: d.Expr()}
}

// Len reads the path's list length (`execute store result ... run data get
// ... ` after a get_length unary, per spec.md's OpGetLength).
func (d Data) Len() ir.ExprNode {
	return ir.UnaryExpr{Op: ir.OpGetLength, Target: d.Expr()}
}

// Cast requests an explicit rescale/retype of the value read from d.
func (d Data) Cast(t nbt.Type, scale float64) ir.ExprNode {
	return ir.CastExpr{Operand: d.Expr(), CastType: t, Scale: scale}
}

func (d Data) resolve(expr ir.ExprNode) Data {
	d.d.Resolve(expr, false)
	return d
}

// Set implements rebind (`=`): spec.md §4.7, "rebind calls
// resolve(Set(lhs, rhs)) on the driver."
func (d Data) Set(v Valuable) Data  { return d.resolve(ir.BinaryExpr{Op: ir.OpSet, Left: d.Expr(), Right: v.Expr()}) }
func (d Data) IAdd(v Valuable) Data { return d.resolve(d.binary(ir.OpAdd, v)) }
func (d Data) ISub(v Valuable) Data { return d.resolve(d.binary(ir.OpSub, v)) }
func (d Data) IMul(v Valuable) Data { return d.resolve(d.binary(ir.OpMul, v)) }
func (d Data) IDiv(v Valuable) Data { return d.resolve(d.binary(ir.OpDiv, v)) }

// Append, Prepend and Merge mutate the list/compound at d in place.
func (d Data) Append(v Valuable) Data  { return d.resolve(d.binary(ir.OpAppend, v)) }
func (d Data) Prepend(v Valuable) Data { return d.resolve(d.binary(ir.OpPrepend, v)) }
func (d Data) Merge(v Valuable) Data   { return d.resolve(d.binary(ir.OpMerge, v)) }

// Insert places v at index i in the list at d (`list.insert(i, value)`).
func (d Data) Insert(i int, v Valuable) Data {
	return d.resolve(ir.InsertExpr{Target: d.Expr(), Index: i, Value: v.Expr()})
}

// Remove deletes the path entirely.
func (d Data) Remove() Data {
	d.d.Resolve(ir.UnaryExpr{Op: ir.OpRemove, Target: d.Expr()}, false)
	return d
}

// Defer binds expr as this path's lazy value (spec.md §9).
func (d Data) Defer(expr ir.ExprNode) {
	d.d.Defer(d.Source, expr)
}

// If resolves cond and runs body to collect its branch statements, then
// emits the combined `execute if ... run` (or the negated `unless` form
// if cond carries Negate) as a single unit (spec.md §4.6 resolve_branch).
func If(d *driver.Expression, cond ir.ExprNode, body func() error) error {
	return d.ResolveBranch(cond, body)
}
