package ir

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rx-modules/bolt-expr/internal/nbt"
)

// IrLiteral wraps a plain NBT constant value.
type IrLiteral struct {
	Value nbt.Value
}

func (IrLiteral) isNode() {}

func (l IrLiteral) Key() string    { return "lit:" + l.Value.String() }
func (l IrLiteral) String() string { return l.Value.String() }

// CompositeElem is one slot of a composite literal: either a plain NBT
// value or an embedded source whose runtime value fills the slot. Exactly
// one of Value/Embed is set.
type CompositeElem struct {
	Value *nbt.Value
	Embed Source
}

func (e CompositeElem) String() string {
	if e.Embed != nil {
		return "$(" + e.Embed.String() + ")"
	}
	if e.Value != nil {
		return e.Value.String()
	}
	return "<empty>"
}

// IrCompositeLiteral is a compound or list literal that embeds one or more
// source references, e.g. `{id: obj["@s"]}`. No optimizer pass expands it:
// the serializer emits one without embedded sources as a plain `value`, and
// panics with an invariant violation on one that still embeds a source.
type IrCompositeLiteral struct {
	// Exactly one of Compound/List is populated, matching IrLiteral's
	// compound-vs-list NBT shape.
	Compound map[string]CompositeElem
	List     []CompositeElem
}

func (IrCompositeLiteral) isNode() {}

func (c IrCompositeLiteral) Key() string {
	var b strings.Builder
	b.WriteString("composite:")
	if c.Compound != nil {
		keys := make([]string, 0, len(c.Compound))
		for k := range c.Compound {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s=%s;", k, c.Compound[k])
		}
	} else {
		for _, el := range c.List {
			fmt.Fprintf(&b, "%s;", el)
		}
	}
	return b.String()
}

func (c IrCompositeLiteral) String() string {
	if c.Compound != nil {
		keys := make([]string, 0, len(c.Compound))
		for k := range c.Compound {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %s", k, c.Compound[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	parts := make([]string, len(c.List))
	for i, el := range c.List {
		parts[i] = el.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// EmbeddedSources returns every source embedded anywhere in the composite
// literal, in deterministic (sorted, for compounds) order.
func (c IrCompositeLiteral) EmbeddedSources() []Source {
	var out []Source
	if c.Compound != nil {
		keys := make([]string, 0, len(c.Compound))
		for k := range c.Compound {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if e := c.Compound[k].Embed; e != nil {
				out = append(out, e)
			}
		}
		return out
	}
	for _, el := range c.List {
		if el.Embed != nil {
			out = append(out, el.Embed)
		}
	}
	return out
}
