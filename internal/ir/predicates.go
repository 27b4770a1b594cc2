package ir

import "github.com/rx-modules/bolt-expr/internal/nbt"

// IsUnary reports whether n is an IrUnary, optionally also matching a
// specific UnaryOp (pass -1 to match any op).
func IsUnary(n Node, op UnaryOp) bool {
	u, ok := n.(IrUnary)
	return ok && (op == anyUnaryOp || u.Op == op)
}

// IsBinary reports whether n is an IrBinary (or IrInsert, which embeds
// one), optionally also matching a specific BinaryOp.
func IsBinary(n Node, op BinaryOp) bool {
	switch b := n.(type) {
	case IrBinary:
		return op == anyBinaryOp || b.Op == op
	case IrInsert:
		return op == anyBinaryOp || b.Op == op
	default:
		return false
	}
}

// AnyUnaryOp and AnyBinaryOp are sentinel "match any op" values for
// IsUnary/IsBinary.
const (
	anyUnaryOp  UnaryOp  = -1
	anyBinaryOp BinaryOp = -1
)

func AnyUnaryOp() UnaryOp   { return anyUnaryOp }
func AnyBinaryOp() BinaryOp { return anyBinaryOp }

// IsOp reports whether n is any Operation.
func IsOp(n Node) bool {
	_, ok := n.(Operation)
	return ok
}

// IsCopyOp reports whether op is semantically a pure copy: a plain `set`,
// or an IrCast whose cast type matches the source's own type (modulo
// Optional), scale is 1, and it does not change source kind in a way that
// loses precision (spec.md §4.2).
func IsCopyOp(op Operation) bool {
	switch o := op.(type) {
	case IrBinary:
		return o.Op == OpSet
	case IrCast:
		if o.ResolvedScale() != 1 {
			return false
		}
		if o.CastType == nil {
			return false
		}
		want := o.CastType
		if opt, ok := want.(nbt.OptionalType); ok {
			want = opt.Inner
		}
		srcType := sourceDeclaredType(o.Right)
		if srcType == nil {
			return false
		}
		return want.String() == srcType.String() && sameSourceKind(o.Left, o.Right)
	default:
		return false
	}
}

func sourceDeclaredType(n Node) nbt.Type {
	switch s := n.(type) {
	case DataSource:
		return s.NbtType
	case ScoreSource:
		return nil
	default:
		return nil
	}
}

func sameSourceKind(a, b Node) bool {
	_, aScore := a.(ScoreSource)
	_, bScore := b.(ScoreSource)
	_, aData := a.(DataSource)
	_, bData := b.(DataSource)
	return (aScore && bScore) || (aData && bData)
}

// Targets returns the sources an operation writes: store clause targets
// plus the left of a destructive binary plus the target of a unary op.
func Targets(op Operation) []Source { return op.Targets() }

// Operands returns the sources, conditions or literals an operation reads.
func Operands(op Operation) []Node { return op.Operands() }
