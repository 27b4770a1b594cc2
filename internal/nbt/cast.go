package nbt

import (
	"fmt"
	"math"
)

// CastOverflowError reports that a literal's value does not fit the target
// numeric type. Per DESIGN.md's Open Question decision, narrowing a literal
// is an error rather than a silent truncation — matching
// original_source/bolt_expressions/casting.py's CastError behavior.
type CastOverflowError struct {
	Value Value
	Want  Type
}

func (e *CastOverflowError) Error() string {
	return fmt.Sprintf("cannot cast %s to %s: value out of range", e.Value, e.Want)
}

// Cast coerces a literal to the target type, or returns an error if the
// value does not fit. Scalar numeric casts use the target's range; compound
// and list casts recurse element-wise; casting to Any is a no-op.
func Cast(target Type, v Value) (Value, error) {
	if IsAny(target) {
		return v, nil
	}
	if opt, ok := target.(OptionalType); ok {
		return Cast(opt.Inner, v)
	}

	if isNumeric(target) {
		return castNumeric(target, v)
	}

	switch t := target.(type) {
	case StringType:
		if v.Kind != (StringType{}) {
			return Value{}, fmt.Errorf("cannot cast %s to string", v.Kind)
		}
		return v, nil

	case ListType:
		if len(v.List) == 0 {
			return ListVal(t.Elem, nil), nil
		}
		out := make([]Value, len(v.List))
		for i, el := range v.List {
			cv, err := Cast(t.Elem, el)
			if err != nil {
				return Value{}, fmt.Errorf("list index %d: %w", i, err)
			}
			out[i] = cv
		}
		return ListVal(t.Elem, out), nil

	case ArrayType:
		elem := t.elemType()
		out := make([]Value, len(v.List))
		for i, el := range v.List {
			cv, err := Cast(elem, el)
			if err != nil {
				return Value{}, fmt.Errorf("array index %d: %w", i, err)
			}
			out[i] = cv
		}
		return Value{Kind: t, List: out}, nil

	case CompoundType:
		out := make(map[string]Value, len(v.Compound))
		if t.Fixed {
			for k, kt := range t.Keys {
				src, ok := v.Compound[k]
				if !ok {
					return Value{}, fmt.Errorf("compound missing required key %q for cast", k)
				}
				cv, err := Cast(kt, src)
				if err != nil {
					return Value{}, fmt.Errorf("key %q: %w", k, err)
				}
				out[k] = cv
			}
		} else {
			for k, src := range v.Compound {
				cv, err := Cast(t.Value, src)
				if err != nil {
					return Value{}, fmt.Errorf("key %q: %w", k, err)
				}
				out[k] = cv
			}
		}
		return Value{Kind: t, Compound: out}, nil

	default:
		return v, nil
	}
}

func castNumeric(target Type, v Value) (Value, error) {
	f, ok := v.AsFloat64()
	if !ok {
		return Value{}, fmt.Errorf("cannot cast %s to %s: not numeric", v.Kind, target)
	}
	switch target.(type) {
	case ByteType:
		if f < -128 || f > 127 {
			return Value{}, &CastOverflowError{Value: v, Want: target}
		}
		return ByteVal(int8(f)), nil
	case ShortType:
		if f < -32768 || f > 32767 {
			return Value{}, &CastOverflowError{Value: v, Want: target}
		}
		return ShortVal(int16(f)), nil
	case IntType:
		if f < -2147483648 || f > 2147483647 {
			return Value{}, &CastOverflowError{Value: v, Want: target}
		}
		return IntVal(int32(f)), nil
	case LongType:
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return Value{}, &CastOverflowError{Value: v, Want: target}
		}
		return LongVal(int64(f)), nil
	case FloatType:
		if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return Value{}, &CastOverflowError{Value: v, Want: target}
		}
		return FloatVal(float32(f)), nil
	case DoubleType:
		return DoubleVal(f), nil
	default:
		return Value{}, fmt.Errorf("unknown numeric target type %s", target)
	}
}
