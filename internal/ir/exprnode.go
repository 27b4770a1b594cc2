package ir

import (
	"fmt"
	"strings"
)

// ExprNode is a node of the *pre-lowering* expression tree the source
// façade builds via method calls (spec.md §4.7). It is a separate type
// from the IR proper: IR is produced once by the unroller and is never
// re-entered, whereas an ExprNode tree is owned and built by the caller
// before a single resolve() call consumes it.
//
// Grounded on the teacher's internal/ast/expr.go closed-interface-over-
// concrete-node-set pattern, generalized from parsed syntax to
// programmatically built trees (spec.md §9: "expose an expression builder
// trait/interface with explicit add, sub, ... methods").
type ExprNode interface {
	isExpr()
	String() string
}

// SourceExpr lifts a Source (ScoreSource/DataSource) into the expression
// tree: a leaf that reads an existing location.
type SourceExpr struct{ Source Source }

func (SourceExpr) isExpr()          {}
func (e SourceExpr) String() string { return e.Source.String() }

// LiteralExpr lifts an already-converted NBT value into the tree.
type LiteralExpr struct{ Literal IrLiteral }

func (LiteralExpr) isExpr()          {}
func (e LiteralExpr) String() string { return e.Literal.String() }

// CompositeExpr is a compound or list literal whose slots may themselves
// be arbitrary sub-expressions (not just sources), matching the source
// façade's ability to write `{id: obj["@s"] + 1}`.
type CompositeExpr struct {
	Compound map[string]ExprNode
	List     []ExprNode
}

func (CompositeExpr) isExpr() {}
func (e CompositeExpr) String() string {
	if e.Compound != nil {
		parts := make([]string, 0, len(e.Compound))
		for k, v := range e.Compound {
			parts = append(parts, fmt.Sprintf("%s: %s", k, v))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	parts := make([]string, len(e.List))
	for i, v := range e.List {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// BinaryExpr is `left op right`: arithmetic (add/sub/mul/div/mod/min/max),
// or a data-mutation op (append/prepend/merge/set).
type BinaryExpr struct {
	Op          BinaryOp
	Left, Right ExprNode
}

func (BinaryExpr) isExpr() {}
func (e BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

// InsertExpr is the `list.insert(i, value)` form.
type InsertExpr struct {
	Target ExprNode
	Index  int
	Value  ExprNode
}

func (InsertExpr) isExpr() {}
func (e InsertExpr) String() string {
	return fmt.Sprintf("%s.insert(%d, %s)", e.Target, e.Index, e.Value)
}

// UnaryExpr is `op target`: remove/reset/enable/get_length.
type UnaryExpr struct {
	Op     UnaryOp
	Target ExprNode
}

func (UnaryExpr) isExpr() {}
func (e UnaryExpr) String() string {
	return fmt.Sprintf("%s(%s)", e.Op, e.Target)
}

// CastExpr requests an explicit cast/rescale of its operand.
type CastExpr struct {
	Operand  ExprNode
	CastType interface{ String() string }
	Scale    float64
}

func (CastExpr) isExpr() {}
func (e CastExpr) String() string {
	return fmt.Sprintf("cast<%v>(%s)", e.CastType, e.Operand)
}

// ConditionExpr compares two sub-expressions, or tests one for
// truthiness/data-presence when Right is nil.
type ConditionExpr struct {
	Op          ConditionOp
	Left, Right ExprNode // Right is nil for OpBoolean
	Negate      bool
}

func (ConditionExpr) isExpr() {}
func (e ConditionExpr) String() string {
	if e.Right == nil {
		return fmt.Sprintf("bool(%s)", e.Left)
	}
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

// LazyExpr marks a source whose defining expression is deferred: the
// unroller substitutes Deferred in place of Source wherever Source is
// read, unless Source is in the caller's "ignoring" set (spec.md §4.3,
// §9 "Lazy-bound sources").
type LazyExpr struct {
	Source   Source
	Deferred ExprNode
}

func (LazyExpr) isExpr() {}
func (e LazyExpr) String() string {
	return fmt.Sprintf("lazy(%s := %s)", e.Source, e.Deferred)
}
