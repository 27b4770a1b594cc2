package driver

import (
	"github.com/rx-modules/bolt-expr/internal/diagnostics"
	"github.com/rx-modules/bolt-expr/internal/ir"
	"github.com/rx-modules/bolt-expr/internal/nbt"
)

// typeCheck implements spec.md §4.1's `write ⊇ read` relation and §4.6's
// "type caster, type checker" driver state: every IrBinary/IrInsert write
// (including those inside a branch) into a data destination with a declared
// NbtType is checked against what's being written, and a literal operand is cast to the destination's declared
// type so the serializer emits the narrowed representation rather than the
// literal's own default type. A mismatch is reported through the
// Reporter and the op is otherwise left alone -- spec.md §7: "non-fatal,
// resolve() continues with a best-effort lowering".
//
// Grounded on the teacher's internal/semantic/typecheck.go walk-and-report
// shape, adapted from a whole-AST visitor to a flat operation-list pass.
func (e *Expression) typeCheck(ops []ir.Operation) []ir.Operation {
	out := make([]ir.Operation, len(ops))
	for i, op := range ops {
		out[i] = e.typeCheckOp(op)
	}
	return out
}

func (e *Expression) typeCheckOp(op ir.Operation) ir.Operation {
	switch o := op.(type) {
	case ir.IrBinary:
		o.Right = e.typeCheckWrite(o.Left, o.Right)
		return o
	case ir.IrInsert:
		o.Right = e.typeCheckWrite(o.Left, o.Right)
		return o
	case ir.IrBranch:
		children := make([]ir.Operation, len(o.Children))
		for i, c := range o.Children {
			children[i] = e.typeCheckOp(c)
		}
		o.Children = children
		return o
	default:
		return op
	}
}

// typeCheckWrite validates and, for a literal, narrows value against dest's
// declared type. Only a DataSource carries a declared type; a ScoreSource
// destination is always a plain integer cell and needs no check.
func (e *Expression) typeCheckWrite(dest ir.Source, value ir.Node) ir.Node {
	data, ok := dest.(ir.DataSource)
	if !ok || data.NbtType == nil {
		return value
	}

	switch v := value.(type) {
	case ir.IrLiteral:
		casted, err := nbt.Cast(data.NbtType, v.Value)
		if err != nil {
			e.Reporter.Report(diagnostics.NewTypeMismatch(data.NbtType, v.Value.Kind, []string{data.String(), err.Error()}).Diagnostic)
			return value
		}
		return ir.IrLiteral{Value: casted}

	case ir.DataSource:
		readType := nbt.Type(nbt.AnyType{})
		if v.NbtType != nil {
			readType = v.NbtType
		}
		if ok, diags := nbt.Check(data.NbtType, readType, nbt.CheckFlags{}); !ok {
			chain := make([]string, len(diags))
			for i, d := range diags {
				chain[i] = d.String()
			}
			e.Reporter.Report(diagnostics.NewTypeMismatch(data.NbtType, readType, chain).Diagnostic)
		}
		return value

	default:
		return value
	}
}
