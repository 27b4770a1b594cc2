package nbt

import "fmt"

// Value is a literal NBT value: the runtime payload carried by an
// ir.IrLiteral. Exactly one of the typed fields is meaningful, selected by
// Kind, matching the teacher's tagged-instruction convention
// (internal/ir/types.go's per-instruction-kind struct set) applied to data
// instead of instructions.
type Value struct {
	Kind     Type
	Byte     int8
	Short    int16
	Int      int32
	Long     int64
	Float    float32
	Double   float64
	Str      string
	Compound map[string]Value
	List     []Value
}

// ByteVal, ShortVal, IntVal, LongVal, FloatVal, DoubleVal, StringVal,
// CompoundVal and ListVal construct a Value of the matching NBT type.
func ByteVal(v int8) Value     { return Value{Kind: ByteType{}, Byte: v} }
func ShortVal(v int16) Value   { return Value{Kind: ShortType{}, Short: v} }
func IntVal(v int32) Value     { return Value{Kind: IntType{}, Int: v} }
func LongVal(v int64) Value    { return Value{Kind: LongType{}, Long: v} }
func FloatVal(v float32) Value { return Value{Kind: FloatType{}, Float: v} }
func DoubleVal(v float64) Value { return Value{Kind: DoubleType{}, Double: v} }
func StringVal(v string) Value { return Value{Kind: StringType{}, Str: v} }

func CompoundVal(m map[string]Value) Value {
	keys := make(map[string]Type, len(m))
	for k, v := range m {
		keys[k] = v.Kind
	}
	return Value{Kind: CompoundType{Fixed: true, Keys: keys}, Compound: m}
}

func ListVal(elemType Type, vs []Value) Value {
	return Value{Kind: ListType{Elem: elemType}, List: vs}
}

// AsInt64 returns the value widened to int64, for numeric types only.
func (v Value) AsInt64() (int64, bool) {
	switch v.Kind.(type) {
	case ByteType:
		return int64(v.Byte), true
	case ShortType:
		return int64(v.Short), true
	case IntType:
		return int64(v.Int), true
	case LongType:
		return v.Long, true
	default:
		return 0, false
	}
}

// AsFloat64 returns the value widened to float64, for any numeric type.
func (v Value) AsFloat64() (float64, bool) {
	switch v.Kind.(type) {
	case ByteType:
		return float64(v.Byte), true
	case ShortType:
		return float64(v.Short), true
	case IntType:
		return float64(v.Int), true
	case LongType:
		return float64(v.Long), true
	case FloatType:
		return float64(v.Float), true
	case DoubleType:
		return v.Double, true
	default:
		return 0, false
	}
}

func (v Value) String() string {
	switch v.Kind.(type) {
	case ByteType:
		return fmt.Sprintf("%db", v.Byte)
	case ShortType:
		return fmt.Sprintf("%ds", v.Short)
	case IntType:
		return fmt.Sprintf("%d", v.Int)
	case LongType:
		return fmt.Sprintf("%dl", v.Long)
	case FloatType:
		return fmt.Sprintf("%gf", v.Float)
	case DoubleType:
		return fmt.Sprintf("%gd", v.Double)
	case StringType:
		return fmt.Sprintf("%q", v.Str)
	default:
		return v.Kind.String()
	}
}

// HostValue is anything the host may hand the compiler as a literal:
// bool, the Go integer/float kinds, string, []HostValue, map[string]HostValue.
type HostValue interface{}

// Infer converts a host-language value into an NBT Value, following
// spec.md §3's literal construction rules: booleans become bytes (0/1),
// integers become ints (except int8 and int16, which become bytes and
// shorts), floats become floats, strings pass through, and
// mappings/lists recurse. Any other Go type is an invalid literal.
func Infer(hv HostValue) (Value, error) {
	switch x := hv.(type) {
	case bool:
		if x {
			return ByteVal(1), nil
		}
		return ByteVal(0), nil
	case int:
		return IntVal(int32(x)), nil
	case int8:
		return ByteVal(x), nil
	case int16:
		return ShortVal(x), nil
	case int32:
		return IntVal(x), nil
	case int64:
		return IntVal(int32(x)), nil
	case float32:
		return FloatVal(x), nil
	case float64:
		return FloatVal(float32(x)), nil
	case string:
		return StringVal(x), nil
	case map[string]HostValue:
		out := make(map[string]Value, len(x))
		for k, v := range x {
			cv, err := Infer(v)
			if err != nil {
				return Value{}, fmt.Errorf("compound key %q: %w", k, err)
			}
			out[k] = cv
		}
		return CompoundVal(out), nil
	case []HostValue:
		out := make([]Value, len(x))
		var elem Type = AnyType{}
		for i, v := range x {
			cv, err := Infer(v)
			if err != nil {
				return Value{}, fmt.Errorf("list index %d: %w", i, err)
			}
			out[i] = cv
			if i == 0 {
				elem = cv.Kind
			}
		}
		return ListVal(elem, out), nil
	default:
		return Value{}, fmt.Errorf("invalid literal: host value %v (%T) has no NBT equivalent", hv, hv)
	}
}

// InferType returns just the structural type Infer would assign, without
// materializing a Value, used to type-check before literal construction.
func InferType(hv HostValue) (Type, error) {
	v, err := Infer(hv)
	if err != nil {
		return nil, err
	}
	return v.Kind, nil
}
