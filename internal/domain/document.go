package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Fields is the field map of a stored document.
// Values are always one of: nil, bool, int64, float64, string, time.Time,
// map[string]any, []any. NormalizeFields enforces that.
type Fields map[string]any

// Document is a keyed record inside a collection.
type Document struct {
	Collection string
	ID         string
	Fields     Fields
	CreateTime time.Time
	UpdateTime time.Time
}

// ValueKind is the type a rule sees when it asks "x is string".
type ValueKind string

const (
	ValueNull      ValueKind = "null"
	ValueBool      ValueKind = "bool"
	ValueNumber    ValueKind = "number"
	ValueString    ValueKind = "string"
	ValueTimestamp ValueKind = "timestamp"
	ValueMap       ValueKind = "map"
	ValueList      ValueKind = "list"
	ValueUnknown   ValueKind = "unknown"
)

func KindOfValue(v any) ValueKind {
	switch v.(type) {
	case nil:
		return ValueNull
	case bool:
		return ValueBool
	case int64, float64:
		return ValueNumber
	case string:
		return ValueString
	case time.Time:
		return ValueTimestamp
	case map[string]any:
		return ValueMap
	case []any:
		return ValueList
	default:
		return ValueUnknown
	}
}

func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// HasAll mirrors keys().hasAll([...]).
func (f Fields) HasAll(keys ...string) bool {
	for _, k := range keys {
		if !f.Has(k) {
			return false
		}
	}
	return true
}

// IsKind reports whether key is present with the given kind.
// A missing key is never of any kind.
func (f Fields) IsKind(key string, kind ValueKind) bool {
	v, ok := f[key]
	if !ok {
		return false
	}
	return KindOfValue(v) == kind
}

func (f Fields) String(key string) (string, bool) {
	s, ok := f[key].(string)
	return s, ok
}

func (f Fields) Bool(key string) (bool, bool) {
	b, ok := f[key].(bool)
	return b, ok
}

func (f Fields) Time(key string) (time.Time, bool) {
	t, ok := f[key].(time.Time)
	return t, ok
}

// Clone copies the top level; nested values are shared and treated as immutable.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Merge applies an update patch the way a field-level update does:
// top-level keys in patch replace those in base, everything else is kept.
func Merge(base, patch Fields) Fields {
	out := base.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// AffectedKeys returns the sorted set of keys that were added, removed,
// or changed between existing and proposed.
func AffectedKeys(existing, proposed Fields) []string {
	seen := map[string]struct{}{}
	for k, v := range proposed {
		old, ok := existing[k]
		if !ok || !ValuesEqual(old, v) {
			seen[k] = struct{}{}
		}
	}
	for k := range existing {
		if _, ok := proposed[k]; !ok {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ValuesEqual compares two normalized values. Numbers compare numerically
// across int64/float64, timestamps by instant.
func ValuesEqual(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int64, float64:
		af, aok := asFloat(a)
		bf, bok := asFloat(b)
		return aok && bok && af == bf
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, x := range av {
			y, ok := bv[k]
			if !ok || !ValuesEqual(x, y) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !ValuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// NormalizeFields converts decoded JSON and Go literals into the canonical
// value set. It fails on types a document cannot hold.
func NormalizeFields(in map[string]any) (Fields, error) {
	out := make(Fields, len(in))
	for k, v := range in {
		nv, err := NormalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

func NormalizeValue(v any) (any, error) {
	switch x := v.(type) {
	case nil, bool, string, int64, float64, time.Time:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case float32:
		return float64(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", x.String())
		}
		return f, nil
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			ne, err := NormalizeValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = ne
		}
		return out, nil
	case map[string]any:
		m, err := NormalizeFields(x)
		if err != nil {
			return nil, err
		}
		return map[string]any(m), nil
	case Fields:
		return NormalizeValue(map[string]any(x))
	case map[string]bool:
		out := make(map[string]any, len(x))
		for k, b := range x {
			out[k] = b
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
