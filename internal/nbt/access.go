package nbt

import "fmt"

// AccessorKind distinguishes the three ways a path can step into a value.
type AccessorKind int

const (
	// KeyAccessor steps into a compound by a named key.
	KeyAccessor AccessorKind = iota
	// IndexAccessor steps into a list by a (possibly negative) index.
	IndexAccessor
	// MatchAccessor steps into the first list element matching a compound
	// predicate (bolt-expressions' `list[{id: "foo"}]` selector).
	MatchAccessor
)

// Accessor is one step of a data path: a key, an index, or a compound
// match predicate. Paths are a sequence of Accessors, never raw strings,
// per spec.md §9 ("Paths as first-class values").
type Accessor struct {
	Kind  AccessorKind
	Key   string // KeyAccessor
	Index int    // IndexAccessor
	Match map[string]Value
}

func Key(k string) Accessor          { return Accessor{Kind: KeyAccessor, Key: k} }
func Index(i int) Accessor           { return Accessor{Kind: IndexAccessor, Index: i} }
func Match(m map[string]Value) Accessor { return Accessor{Kind: MatchAccessor, Match: m} }

func (a Accessor) String() string {
	switch a.Kind {
	case KeyAccessor:
		return fmt.Sprintf(".%s", a.Key)
	case IndexAccessor:
		return fmt.Sprintf("[%d]", a.Index)
	case MatchAccessor:
		return fmt.Sprintf("[match %v]", a.Match)
	default:
		return "<bad accessor>"
	}
}

// Access produces the expected subtype of t after stepping through acc, or
// (nil, false) if the step is not well-typed against t.
func Access(t Type, acc Accessor) (Type, bool) {
	if t == nil {
		return nil, false
	}
	if IsAny(t) {
		return AnyType{}, true
	}
	if opt, ok := t.(OptionalType); ok {
		return Access(opt.Inner, acc)
	}
	if u, ok := t.(UnionType); ok {
		// Accessing a union requires every branch accept the step; the
		// resulting type is the union of each branch's subtype.
		var members []Type
		for _, m := range u.Members {
			sub, ok := Access(m, acc)
			if !ok {
				return nil, false
			}
			members = append(members, sub)
		}
		return UnionType{Members: members}, true
	}

	switch acc.Kind {
	case KeyAccessor:
		c, ok := t.(CompoundType)
		if !ok {
			return nil, false
		}
		if c.Fixed {
			sub, ok := c.Keys[acc.Key]
			return sub, ok
		}
		if c.Value == nil {
			return AnyType{}, true
		}
		return c.Value, true

	case IndexAccessor:
		switch lt := t.(type) {
		case ListType:
			if lt.Elem == nil {
				return AnyType{}, true
			}
			return lt.Elem, true
		case ArrayType:
			return lt.elemType(), true
		default:
			return nil, false
		}

	case MatchAccessor:
		lt, ok := t.(ListType)
		if !ok {
			return nil, false
		}
		if lt.Elem == nil {
			return AnyType{}, true
		}
		return lt.Elem, true

	default:
		return nil, false
	}
}

// AccessPath iterates Access over a full accessor chain starting at t.
func AccessPath(t Type, path []Accessor) (Type, bool) {
	cur := t
	for _, acc := range path {
		next, ok := Access(cur, acc)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// PathsOverlap reports whether path `a` and path `b` alias: one is a prefix
// of the other. Used by ir.DataSource.Overlaps; the optimizer's
// reaching-definitions and use-set tables do not call it.
func PathsOverlap(a, b []Accessor) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if !accessorsEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func accessorsEqual(x, y Accessor) bool {
	if x.Kind != y.Kind {
		return false
	}
	switch x.Kind {
	case KeyAccessor:
		return x.Key == y.Key
	case IndexAccessor:
		return x.Index == y.Index
	case MatchAccessor:
		if len(x.Match) != len(y.Match) {
			return false
		}
		for k, v := range x.Match {
			ov, ok := y.Match[k]
			if !ok || ov.String() != v.String() {
				return false
			}
		}
		return true
	default:
		return false
	}
}
