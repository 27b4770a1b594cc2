package compiler

import (
	"github.com/rx-modules/bolt-expr/internal/ir"
	"github.com/rx-modules/bolt-expr/internal/nbt"
)

// UnrollHelper threads the managers and bookkeeping every recursive unroll
// call needs (spec.md §4.3): which sources were allocated as temporaries
// this call, which sources are currently being lazily substituted (cycle
// guard), and the lazy-binding table itself.
type UnrollHelper struct {
	ScoreTemps *TempManager
	DataTemps  *TempManager
	Lazy       map[string]ir.ExprNode // source.Key() -> deferred expression
	Ignoring   map[string]struct{}
	Allocated  map[string]struct{} // source.Key() of every temp minted this call
}

func NewUnrollHelper(scoreTemps, dataTemps *TempManager, lazy map[string]ir.ExprNode) *UnrollHelper {
	if lazy == nil {
		lazy = map[string]ir.ExprNode{}
	}
	return &UnrollHelper{
		ScoreTemps: scoreTemps,
		DataTemps:  dataTemps,
		Lazy:       lazy,
		Ignoring:   map[string]struct{}{},
		Allocated:  map[string]struct{}{},
	}
}

func (h *UnrollHelper) freshScore() ir.ScoreSource {
	s := h.ScoreTemps.NewScore()
	h.Allocated[s.Key()] = struct{}{}
	return s
}

func (h *UnrollHelper) freshData() ir.DataSource {
	d := h.DataTemps.NewData()
	h.Allocated[d.Key()] = struct{}{}
	return d
}

// IsTemp reports whether n is a source this helper minted during the
// current unroll.
func (h *UnrollHelper) IsTemp(n ir.Node) bool {
	if s, ok := n.(ir.Source); ok {
		_, found := h.Allocated[s.Key()]
		return found
	}
	return false
}

// Unroll walks an ExprNode tree bottom-up, producing a linear IR operation
// list plus the node (a Source or IrLiteral) holding the final result.
func Unroll(expr ir.ExprNode, h *UnrollHelper) ([]ir.Operation, ir.Node) {
	switch e := expr.(type) {

	case ir.SourceExpr:
		return unrollSource(e.Source, h)

	case ir.LiteralExpr:
		return nil, e.Literal

	case ir.LazyExpr:
		h.Lazy[e.Source.Key()] = e.Deferred
		return nil, e.Source

	case ir.CompositeExpr:
		return unrollComposite(e, h)

	case ir.BinaryExpr:
		return unrollBinary(e, h)

	case ir.InsertExpr:
		return unrollInsert(e, h)

	case ir.UnaryExpr:
		return unrollUnary(e, h)

	case ir.CastExpr:
		return unrollCast(e, h)

	case ir.ConditionExpr:
		return unrollCondition(e, h)

	default:
		panic("compiler: unroll: unhandled expression node")
	}
}

// unrollSource resolves a leaf source reference, substituting a lazy
// binding's deferred expression unless it is already being substituted
// further up the call stack (cycle guard).
func unrollSource(src ir.Source, h *UnrollHelper) ([]ir.Operation, ir.Node) {
	key := src.Key()
	if deferred, ok := h.Lazy[key]; ok {
		if _, ignoring := h.Ignoring[key]; !ignoring {
			h.Ignoring[key] = struct{}{}
			ops, result := Unroll(deferred, h)
			delete(h.Ignoring, key)
			return ops, result
		}
	}
	return nil, src
}

func unrollComposite(e ir.CompositeExpr, h *UnrollHelper) ([]ir.Operation, ir.Node) {
	var ops []ir.Operation
	if e.Compound != nil {
		out := make(map[string]ir.CompositeElem, len(e.Compound))
		for k, sub := range e.Compound {
			subOps, subResult := Unroll(sub, h)
			ops = append(ops, subOps...)
			out[k] = toCompositeElem(subResult)
		}
		return ops, ir.IrCompositeLiteral{Compound: out}
	}
	out := make([]ir.CompositeElem, len(e.List))
	for i, sub := range e.List {
		subOps, subResult := Unroll(sub, h)
		ops = append(ops, subOps...)
		out[i] = toCompositeElem(subResult)
	}
	return ops, ir.IrCompositeLiteral{List: out}
}

func toCompositeElem(n ir.Node) ir.CompositeElem {
	switch v := n.(type) {
	case ir.IrLiteral:
		val := v.Value
		return ir.CompositeElem{Value: &val}
	case ir.Source:
		return ir.CompositeElem{Embed: v}
	default:
		panic("compiler: composite literal slot resolved to a non-value node")
	}
}

// priority ranks an operand for the commutative reordering in spec.md
// §4.3 step 2: existing temporary > data source > score source > literal,
// highest first.
func priority(n ir.Node, h *UnrollHelper) int {
	switch n.(type) {
	case ir.DataSource:
		if h.IsTemp(n) {
			return 3
		}
		return 2
	case ir.ScoreSource:
		if h.IsTemp(n) {
			return 3
		}
		return 1
	default:
		return 0
	}
}

func unrollBinary(e ir.BinaryExpr, h *UnrollHelper) ([]ir.Operation, ir.Node) {
	opsA, vA := Unroll(e.Left, h)
	opsB, vB := Unroll(e.Right, h)

	if e.Op.Commutative() && priority(vB, h) > priority(vA, h) {
		opsA, opsB = opsB, opsA
		vA, vB = vB, vA
	}

	ops := append(opsA, opsB...)

	dest, initOps := destinationFor(vA, vB, h)
	ops = append(ops, initOps...)
	ops = append(ops, ir.IrBinary{Op: e.Op, Left: dest, Right: vB})
	return ops, dest
}

func unrollInsert(e ir.InsertExpr, h *UnrollHelper) ([]ir.Operation, ir.Node) {
	opsT, vT := Unroll(e.Target, h)
	opsV, vV := Unroll(e.Value, h)
	ops := append(opsT, opsV...)

	target, ok := vT.(ir.Source)
	if !ok {
		panic("compiler: insert target did not resolve to a source")
	}
	ops = append(ops, ir.IrInsert{
		IrBinary: ir.IrBinary{Op: ir.OpAppend, Left: target, Right: vV},
		Index:    e.Index,
	})
	return ops, target
}

func unrollUnary(e ir.UnaryExpr, h *UnrollHelper) ([]ir.Operation, ir.Node) {
	ops, v := Unroll(e.Target, h)
	target, ok := v.(ir.Source)
	if !ok {
		panic("compiler: unary op target did not resolve to a source")
	}
	ops = append(ops, ir.IrUnary{Op: e.Op, Target: target})
	return ops, target
}

func unrollCast(e ir.CastExpr, h *UnrollHelper) ([]ir.Operation, ir.Node) {
	ops, v := Unroll(e.Operand, h)

	var castType nbt.Type
	if t, ok := e.CastType.(nbt.Type); ok {
		castType = t
	}

	var dest ir.Source
	if _, isData := v.(ir.DataSource); isData {
		dest = h.freshScore()
	} else {
		dest = h.freshData()
	}
	scale := e.Scale
	if scale == 0 {
		scale = 1
	}
	ops = append(ops, ir.IrCast{Left: dest, Right: v, CastType: castType, Scale: scale})
	return ops, dest
}

func unrollCondition(e ir.ConditionExpr, h *UnrollHelper) ([]ir.Operation, ir.Node) {
	var ops []ir.Operation
	var cond ir.Condition

	if e.Right == nil {
		opsL, vL := Unroll(e.Left, h)
		ops = append(ops, opsL...)
		cond = ir.IrUnaryCondition{Op: e.Op, Target: vL, Negate: e.Negate}
	} else {
		opsL, vL := Unroll(e.Left, h)
		opsR, vR := Unroll(e.Right, h)
		ops = append(ops, opsL...)
		ops = append(ops, opsR...)
		cond = ir.IrBinaryCondition{Op: e.Op, Left: vL, Right: vR, Negate: e.Negate}
	}

	dest := h.freshScore()
	ops = append(ops, ir.IrBinary{Op: ir.OpSet, Left: dest, Right: cond})
	return ops, dest
}

// UnrollTop is the entry point for a complete top-level expression — one
// passed directly to resolve()/resolve_branch(), as opposed to a
// sub-expression nested inside a larger one. A top-level binary op's left
// operand is always the location the caller explicitly intends to mutate
// (`obj["@s"] += 5`, `obj["#x"] = other["#y"]`), so neither the
// commutative-priority reordering nor destinationFor's copy-into-a-fresh-
// temp protection apply: both exist only to keep a *nested* sub-expression
// read from clobbering a source something else still needs, and a pinned
// top-level destination has no "something else" to protect. Everything
// other than IrBinary already targets its unrolled operand directly with
// no such risk, so it is routed through the regular Unroll unchanged.
func UnrollTop(expr ir.ExprNode, h *UnrollHelper) ([]ir.Operation, ir.Node) {
	if e, ok := expr.(ir.BinaryExpr); ok {
		return unrollBinaryTop(e, h)
	}
	return Unroll(expr, h)
}

func unrollBinaryTop(e ir.BinaryExpr, h *UnrollHelper) ([]ir.Operation, ir.Node) {
	opsA, vA := Unroll(e.Left, h)
	opsB, vB := Unroll(e.Right, h)
	ops := append(opsA, opsB...)

	dest, ok := vA.(ir.Source)
	if !ok {
		// Left did not resolve to a concrete source; shouldn't happen for a
		// well-formed top-level mutation, but fall back to the protected
		// path rather than producing an invalid IrBinary.
		var initOps []ir.Operation
		dest, initOps = destinationFor(vA, vB, h)
		ops = append(ops, initOps...)
	}
	ops = append(ops, ir.IrBinary{Op: e.Op, Left: dest, Right: vB})
	return ops, dest
}

// destinationFor implements spec.md §4.3 step 3. "In-place" only applies
// when the left operand is already a temporary this same unroll call
// allocated (the destination of an immediately preceding sub-expression):
// nothing else can yet observe it, so continuing to mutate it is safe. A
// plain pre-existing user source (or a literal) must not be mutated in
// place -- it may be read elsewhere -- so it is copied into a fresh
// temporary first; the later noncommutative_set_collapsing /
// commutative_set_collapsing optimizer passes fold that copy back into a
// true in-place update when the final destination coincides with the
// original source (the `x = x op y` pattern).
func destinationFor(vA, vB ir.Node, h *UnrollHelper) (ir.Source, []ir.Operation) {
	if src, ok := vA.(ir.Source); ok && h.IsTemp(src) {
		return src, nil
	}

	if lit, ok := vA.(ir.IrLiteral); ok {
		if needsDataTemp(lit.Value.Kind) || needsDataTemp(resultKindHint(vB)) {
			dest := h.freshData()
			return dest, []ir.Operation{ir.IrBinary{Op: ir.OpSet, Left: dest, Right: vA}}
		}
		dest := h.freshScore()
		return dest, []ir.Operation{ir.IrBinary{Op: ir.OpSet, Left: dest, Right: vA}}
	}

	// Plain user source or composite literal: copy into a fresh temp of
	// the matching kind.
	if _, isData := vA.(ir.DataSource); isData {
		dest := h.freshData()
		return dest, []ir.Operation{ir.IrBinary{Op: ir.OpSet, Left: dest, Right: vA}}
	}
	if _, isComposite := vA.(ir.IrCompositeLiteral); isComposite {
		dest := h.freshData()
		return dest, []ir.Operation{ir.IrBinary{Op: ir.OpSet, Left: dest, Right: vA}}
	}
	dest := h.freshScore()
	return dest, []ir.Operation{ir.IrBinary{Op: ir.OpSet, Left: dest, Right: vA}}
}

func needsDataTemp(t nbt.Type) bool {
	switch t.(type) {
	case nbt.CompoundType, nbt.ListType, nbt.ArrayType, nbt.StringType:
		return true
	default:
		return false
	}
}

func resultKindHint(n ir.Node) nbt.Type {
	if lit, ok := n.(ir.IrLiteral); ok {
		return lit.Value.Kind
	}
	return nil
}
