package nbt

import "fmt"

// CheckFlags tunes the strictness of Check, mirroring the original
// implementation's check.py keyword arguments.
type CheckFlags struct {
	// NumericMatch requires numeric widths to match exactly: a literal must
	// fit the declared type exactly rather than merely not overflow it.
	// spec.md §4.1: "key types are checked recursively with
	// numeric_match=true so literals must fit exactly".
	NumericMatch bool
}

// Diagnostic is one step of a human-readable chain explaining a type
// mismatch, accumulated the way errors.SemanticError builds a suggestion
// chain (internal/errors/semantic_errors.go in the teacher).
type Diagnostic struct {
	Path    string
	Message string
}

func (d Diagnostic) String() string {
	if d.Path == "" {
		return d.Message
	}
	return fmt.Sprintf("%s: %s", d.Path, d.Message)
}

// Check reports whether a value of type `read` may be stored somewhere
// declared as type `write` (spec.md §4.1's `write ⊇ read` relation),
// returning the chain of diagnostics explaining any mismatch.
func Check(write, read Type, flags CheckFlags) (bool, []Diagnostic) {
	return checkAt("$", write, read, flags)
}

func checkAt(path string, write, read Type, flags CheckFlags) (bool, []Diagnostic) {
	if write == nil || read == nil {
		return false, []Diagnostic{{Path: path, Message: "missing type information"}}
	}
	if IsAny(write) || IsAny(read) {
		return true, nil
	}

	// Optional: writing an optional requires the inner type be compatible;
	// reading through an optional tolerates the value being absent.
	if ro, ok := read.(OptionalType); ok {
		return checkAt(path, write, ro.Inner, flags)
	}
	if wo, ok := write.(OptionalType); ok {
		return checkAt(path, wo.Inner, read, flags)
	}

	// Unions distribute: reading a union requires every branch compatible;
	// writing a union requires some branch compatible.
	if ru, ok := read.(UnionType); ok {
		var diags []Diagnostic
		for _, m := range ru.Members {
			ok, d := checkAt(path, write, m, flags)
			if !ok {
				diags = append(diags, d...)
				return false, diags
			}
		}
		return true, nil
	}
	if wu, ok := write.(UnionType); ok {
		var diags []Diagnostic
		for _, m := range wu.Members {
			if ok, _ := checkAt(path, m, read, flags); ok {
				return true, nil
			}
			diags = append(diags, Diagnostic{Path: path, Message: fmt.Sprintf("branch %s does not accept %s", m, read)})
		}
		return false, diags
	}

	if isNumeric(write) && isNumeric(read) {
		return checkNumeric(path, write, read, flags)
	}

	switch wt := write.(type) {
	case CompoundType:
		rt, ok := read.(CompoundType)
		if !ok {
			return false, []Diagnostic{{Path: path, Message: fmt.Sprintf("expected compound, got %s", read)}}
		}
		return checkCompound(path, wt, rt, flags)

	case ListType:
		rt, ok := read.(ListType)
		if !ok {
			return false, []Diagnostic{{Path: path, Message: fmt.Sprintf("expected list, got %s", read)}}
		}
		if wt.Elem == nil || rt.Elem == nil {
			return true, nil
		}
		return checkAt(path+"[]", wt.Elem, rt.Elem, flags)

	case ArrayType:
		rt, ok := read.(ArrayType)
		if !ok || rt.Kind != wt.Kind {
			return false, []Diagnostic{{Path: path, Message: fmt.Sprintf("expected %s, got %s", wt, read)}}
		}
		return true, nil

	case StringType:
		if _, ok := read.(StringType); ok {
			return true, nil
		}
		return false, []Diagnostic{{Path: path, Message: fmt.Sprintf("expected string, got %s", read)}}

	default:
		if fmt.Sprintf("%T", write) == fmt.Sprintf("%T", read) {
			return true, nil
		}
		return false, []Diagnostic{{Path: path, Message: fmt.Sprintf("%s is not compatible with %s", write, read)}}
	}
}

func checkNumeric(path string, write, read Type, flags CheckFlags) (bool, []Diagnostic) {
	w, r := numericKindOf(write), numericKindOf(read)
	if flags.NumericMatch {
		if w != r {
			return false, []Diagnostic{{Path: path, Message: fmt.Sprintf("expected exactly %s, got %s (numeric_match)", write, read)}}
		}
		return true, nil
	}
	if w < r {
		return false, []Diagnostic{{Path: path, Message: fmt.Sprintf("%s is narrower than %s", write, read)}}
	}
	return true, nil
}

func checkCompound(path string, write, read CompoundType, flags CheckFlags) (bool, []Diagnostic) {
	var diags []Diagnostic
	ok := true

	if write.Fixed && read.Fixed {
		// Missing required keys (present in write, absent in read) fail.
		for k, wt := range write.Keys {
			rt, present := read.Keys[k]
			if !present {
				ok = false
				diags = append(diags, Diagnostic{Path: path, Message: fmt.Sprintf("missing required key %q", k)})
				continue
			}
			if kOk, kd := checkAt(path+"."+k, wt, rt, CheckFlags{NumericMatch: true}); !kOk {
				ok = false
				diags = append(diags, kd...)
			}
		}
		// Extra keys on the read side fail.
		for k := range read.Keys {
			if _, present := write.Keys[k]; !present {
				ok = false
				diags = append(diags, Diagnostic{Path: path, Message: fmt.Sprintf("unexpected key %q", k)})
			}
		}
		return ok, diags
	}

	if !write.Fixed {
		// Homogeneous compound: every read key (or its declared value type)
		// must conform to write.Value.
		wv := write.Value
		if wv == nil {
			return true, nil
		}
		if read.Fixed {
			for k, rt := range read.Keys {
				if kOk, kd := checkAt(path+"."+k, wv, rt, flags); !kOk {
					ok = false
					diags = append(diags, kd...)
				}
			}
			return ok, diags
		}
		if read.Value == nil {
			return true, nil
		}
		return checkAt(path+"[]", wv, read.Value, flags)
	}

	// write is Fixed, read is homogeneous: every required write key must be
	// satisfiable by read's declared value type.
	rv := read.Value
	if rv == nil {
		return true, nil
	}
	for k, wt := range write.Keys {
		if kOk, kd := checkAt(path+"."+k, wt, rv, flags); !kOk {
			ok = false
			diags = append(diags, kd...)
		}
	}
	return ok, diags
}
