package ir

import (
	"fmt"
	"strings"

	"github.com/rx-modules/bolt-expr/internal/nbt"
)

// StoreKind distinguishes capturing an operation's result value from
// capturing its success flag.
type StoreKind int

const (
	StoreResult StoreKind = iota
	StoreSuccess
)

func (k StoreKind) String() string {
	if k == StoreSuccess {
		return "success"
	}
	return "result"
}

// IrStore is one `execute store ...` capture clause attached to an
// operation: spec.md §3, "an ordered list of IrStore{type, value, scale,
// cast_type}".
type IrStore struct {
	Kind     StoreKind
	Value    Source
	Scale    float64
	CastType nbt.Type // nil means "infer/default" at serialization time
}

func (s IrStore) ResolvedScale() float64 {
	if s.Scale == 0 {
		return 1
	}
	return s.Scale
}

func (s IrStore) String() string {
	return fmt.Sprintf("store %s %s", s.Kind, s.Value)
}

// UnaryOp is the opcode of an IrUnary instruction.
type UnaryOp int

const (
	OpRemove UnaryOp = iota
	OpReset
	OpEnable
	OpGetLength
)

func (op UnaryOp) String() string {
	switch op {
	case OpRemove:
		return "remove"
	case OpReset:
		return "reset"
	case OpEnable:
		return "enable"
	case OpGetLength:
		return "get_length"
	default:
		return "?"
	}
}

// BinaryOp is the opcode of an IrBinary instruction.
type BinaryOp int

const (
	OpSet BinaryOp = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpMin
	OpMax
	OpAppend
	OpPrepend
	OpMerge
)

func (op BinaryOp) String() string {
	switch op {
	case OpSet:
		return "set"
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpMod:
		return "mod"
	case OpMin:
		return "min"
	case OpMax:
		return "max"
	case OpAppend:
		return "append"
	case OpPrepend:
		return "prepend"
	case OpMerge:
		return "merge"
	default:
		return "?"
	}
}

// Destructive reports whether op mutates its left target. Per spec.md §3:
// "all binary arithmetic except the read side of casts" is destructive;
// set/append/prepend/merge also mutate their target in place.
func (op BinaryOp) Destructive() bool { return true }

// ScoreboardOperator is the `scoreboard players operation` operator token
// this op lowers to, when both operands are scores.
func (op BinaryOp) ScoreboardOperator() (string, bool) {
	switch op {
	case OpSet:
		return "=", true
	case OpAdd:
		return "+=", true
	case OpSub:
		return "-=", true
	case OpMul:
		return "*=", true
	case OpDiv:
		return "/=", true
	case OpMod:
		return "%=", true
	case OpMin:
		return "<", true
	case OpMax:
		return ">", true
	default:
		return "", false
	}
}

// Commutative reports whether swapping operands preserves semantics, used
// by the unroller's operand-priority reordering (spec.md §4.3 step 2).
func (op BinaryOp) Commutative() bool {
	switch op {
	case OpAdd, OpMul, OpMin, OpMax:
		return true
	default:
		return false
	}
}

// Operation is any IR node that performs a write and may carry store
// clauses: IrUnary, IrBinary, IrInsert, IrCast, IrBranch.
type Operation interface {
	Node
	Stores() []IrStore
	// Targets returns every source this operation writes: store clause
	// values plus (for destructive ops) the left/only operand.
	Targets() []Source
	// Operands returns every source, literal or condition this operation
	// reads.
	Operands() []Node
	isOperation()
}

// IrUnary is a single-operand write: remove, reset, enable, get_length.
type IrUnary struct {
	Op      UnaryOp
	Target  Source
	StoresC []IrStore
}

func (IrUnary) isNode()      {}
func (IrUnary) isOperation() {}

func (u IrUnary) Stores() []IrStore { return u.StoresC }

func (u IrUnary) Targets() []Source {
	out := storeTargets(u.StoresC)
	out = append(out, u.Target)
	return out
}

func (u IrUnary) Operands() []Node {
	return []Node{u.Target}
}

func (u IrUnary) Key() string {
	return fmt.Sprintf("unary:%s:%s:%s", u.Op, u.Target.Key(), storesKey(u.StoresC))
}

func (u IrUnary) String() string {
	return fmt.Sprintf("%s %s%s", u.Op, u.Target, storesSuffix(u.StoresC))
}

// IrBinary is a two-operand write: set, add, sub, mul, div, mod, min, max,
// append, prepend, merge. Left is always the write target.
type IrBinary struct {
	Op      BinaryOp
	Left    Source
	Right   Node // Source or IrLiteral or IrCompositeLiteral
	StoresC []IrStore
}

func (IrBinary) isNode()      {}
func (IrBinary) isOperation() {}

func (b IrBinary) Stores() []IrStore { return b.StoresC }

func (b IrBinary) Targets() []Source {
	out := storeTargets(b.StoresC)
	out = append(out, b.Left)
	return out
}

func (b IrBinary) Operands() []Node {
	return []Node{b.Left, b.Right}
}

func (b IrBinary) Key() string {
	return fmt.Sprintf("binary:%s:%s:%s:%s", b.Op, b.Left.Key(), b.Right.Key(), storesKey(b.StoresC))
}

func (b IrBinary) String() string {
	return fmt.Sprintf("%s %s= %s%s", b.Left, b.Op, b.Right, storesSuffix(b.StoresC))
}

// IrInsert is the `insert N value|from` IrBinary variant.
type IrInsert struct {
	IrBinary
	Index int
}

func (ii IrInsert) Key() string {
	return fmt.Sprintf("insert:%d:%s", ii.Index, ii.IrBinary.Key())
}

func (ii IrInsert) String() string {
	return fmt.Sprintf("%s insert[%d] %s%s", ii.Left, ii.Index, ii.Right, storesSuffix(ii.StoresC))
}

// IrCast converts between score and data source kinds (or rescales within
// a kind) without the destructive semantics of IrBinary: `left = cast(right)`.
type IrCast struct {
	Left, Right Node
	CastType    nbt.Type
	Scale       float64
	StoresC     []IrStore
}

func (IrCast) isNode()      {}
func (IrCast) isOperation() {}

func (c IrCast) Stores() []IrStore { return c.StoresC }

func (c IrCast) Targets() []Source {
	out := storeTargets(c.StoresC)
	if s, ok := c.Left.(Source); ok {
		out = append(out, s)
	}
	return out
}

func (c IrCast) Operands() []Node { return []Node{c.Right} }

func (c IrCast) ResolvedScale() float64 {
	if c.Scale == 0 {
		return 1
	}
	return c.Scale
}

func (c IrCast) Key() string {
	ct := "any"
	if c.CastType != nil {
		ct = c.CastType.String()
	}
	return fmt.Sprintf("cast:%s:%s:%s:%v:%s", c.Left.Key(), c.Right.Key(), ct, c.Scale, storesKey(c.StoresC))
}

func (c IrCast) String() string {
	return fmt.Sprintf("%s = cast<%v>(%s)%s", c.Left, c.CastType, c.Right, storesSuffix(c.StoresC))
}

// IrBranch wraps a condition and a nested instruction list: `execute
// if|unless ... run { children }`.
type IrBranch struct {
	Target   Condition
	Children []Operation
	StoresC  []IrStore
}

func (IrBranch) isNode()      {}
func (IrBranch) isOperation() {}

func (b IrBranch) Stores() []IrStore { return b.StoresC }

func (b IrBranch) Targets() []Source {
	out := storeTargets(b.StoresC)
	for _, c := range b.Children {
		out = append(out, c.Targets()...)
	}
	return out
}

func (b IrBranch) Operands() []Node {
	out := []Node{b.Target}
	for _, c := range b.Children {
		out = append(out, c.Operands()...)
	}
	return out
}

func (b IrBranch) Key() string {
	var sb strings.Builder
	sb.WriteString("branch:")
	sb.WriteString(b.Target.Key())
	for _, c := range b.Children {
		sb.WriteString(";")
		sb.WriteString(c.Key())
	}
	return sb.String()
}

func (b IrBranch) String() string {
	lines := make([]string, len(b.Children))
	for i, c := range b.Children {
		lines[i] = "  " + c.String()
	}
	return fmt.Sprintf("if %s {\n%s\n}", b.Target, strings.Join(lines, "\n"))
}

func storeTargets(stores []IrStore) []Source {
	out := make([]Source, 0, len(stores))
	for _, s := range stores {
		out = append(out, s.Value)
	}
	return out
}

func storesKey(stores []IrStore) string {
	var b strings.Builder
	for _, s := range stores {
		fmt.Fprintf(&b, "%s:%s;", s.Kind, s.Value.Key())
	}
	return b.String()
}

func storesSuffix(stores []IrStore) string {
	if len(stores) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(" [")
	for i, s := range stores {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.String())
	}
	b.WriteString("]")
	return b.String()
}
