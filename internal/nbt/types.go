// Package nbt implements the structural NBT type system: the model of
// byte/short/int/long/float/double/string/compound/list/array values, the
// subtype-access rules used to walk a data path, and the compatibility and
// casting rules the type checker applies at a write/read boundary.
package nbt

import (
	"fmt"
	"strings"
)

// Type is a structural NBT type. Implementations are small value types;
// equality is by structural comparison, not pointer identity.
type Type interface {
	String() string
	isType()
}

// Numeric width ordering, narrowest to widest. Used by Check to decide
// whether a write type is "at least as wide as" a read type.
type numericKind int

const (
	numByte numericKind = iota
	numShort
	numInt
	numLong
	numFloat
	numDouble
	notNumeric = numericKind(-1)
)

func numericKindOf(t Type) numericKind {
	switch t.(type) {
	case ByteType:
		return numByte
	case ShortType:
		return numShort
	case IntType:
		return numInt
	case LongType:
		return numLong
	case FloatType:
		return numFloat
	case DoubleType:
		return numDouble
	default:
		return notNumeric
	}
}

func isNumeric(t Type) bool { return numericKindOf(t) != notNumeric }

// ByteType, ShortType, IntType, LongType, FloatType, DoubleType are the
// primitive numeric NBT types, ordered by width.
type (
	ByteType   struct{}
	ShortType  struct{}
	IntType    struct{}
	LongType   struct{}
	FloatType  struct{}
	DoubleType struct{}
)

func (ByteType) isType()   {}
func (ShortType) isType()  {}
func (IntType) isType()    {}
func (LongType) isType()   {}
func (FloatType) isType()  {}
func (DoubleType) isType() {}

func (ByteType) String() string   { return "byte" }
func (ShortType) String() string  { return "short" }
func (IntType) String() string    { return "int" }
func (LongType) String() string   { return "long" }
func (FloatType) String() string  { return "float" }
func (DoubleType) String() string { return "double" }

// StringType is the NBT string type.
type StringType struct{}

func (StringType) isType()        {}
func (StringType) String() string { return "string" }

// ListType is a heterogeneous-positioned but declared-element-type list.
type ListType struct{ Elem Type }

func (ListType) isType() {}
func (l ListType) String() string {
	if l.Elem == nil {
		return "list[any]"
	}
	return fmt.Sprintf("list[%s]", l.Elem.String())
}

// ArrayKind distinguishes the three NBT array variants.
type ArrayKind int

const (
	ByteArray ArrayKind = iota
	IntArray
	LongArray
)

func (k ArrayKind) String() string {
	switch k {
	case ByteArray:
		return "byte"
	case IntArray:
		return "int"
	case LongArray:
		return "long"
	default:
		return "?"
	}
}

// ArrayType is a homogeneous NBT array: byte[], int[] or long[].
type ArrayType struct{ Kind ArrayKind }

func (ArrayType) isType()        {}
func (a ArrayType) String() string { return fmt.Sprintf("%s_array", a.Kind) }

func (a ArrayType) elemType() Type {
	switch a.Kind {
	case ByteArray:
		return ByteType{}
	case IntArray:
		return IntType{}
	case LongArray:
		return LongType{}
	default:
		return AnyType{}
	}
}

// CompoundType is an NBT compound. When Fixed is true, Keys names a closed
// set of required field types (a record). When Fixed is false, Value is the
// declared type every key must conform to (a homogeneous mapping).
type CompoundType struct {
	Fixed bool
	Keys  map[string]Type // used when Fixed
	Value Type            // used when !Fixed
}

func (CompoundType) isType() {}
func (c CompoundType) String() string {
	if c.Fixed {
		parts := make([]string, 0, len(c.Keys))
		for k, t := range c.Keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, t.String()))
		}
		return "compound{" + strings.Join(parts, ", ") + "}"
	}
	if c.Value == nil {
		return "compound[any]"
	}
	return fmt.Sprintf("compound[%s]", c.Value.String())
}

// UnionType is the disjunction of several NBT types.
type UnionType struct{ Members []Type }

func (UnionType) isType() {}
func (u UnionType) String() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}

// OptionalType is a type that may additionally be absent.
type OptionalType struct{ Inner Type }

func (OptionalType) isType() {}
func (o OptionalType) String() string { return o.Inner.String() + "?" }

// AnyType matches and is matched by everything.
type AnyType struct{}

func (AnyType) isType()        {}
func (AnyType) String() string { return "any" }

// IsAny reports whether t is the Any type.
func IsAny(t Type) bool {
	_, ok := t.(AnyType)
	return ok
}
