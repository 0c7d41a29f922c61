package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// taggedValue is the at-rest encoding of a single field value. Exactly one
// member is set; nullValue is distinguished by its presence.
type taggedValue struct {
	NullValue      *struct{}    `json:"nullValue,omitempty"`
	BooleanValue   *bool        `json:"booleanValue,omitempty"`
	IntegerValue   *string      `json:"integerValue,omitempty"`
	DoubleValue    *float64     `json:"doubleValue,omitempty"`
	StringValue    *string      `json:"stringValue,omitempty"`
	TimestampValue *string      `json:"timestampValue,omitempty"`
	MapValue       *taggedMap   `json:"mapValue,omitempty"`
	ArrayValue     *taggedArray `json:"arrayValue,omitempty"`
}

type taggedMap struct {
	Fields map[string]taggedValue `json:"fields"`
}

type taggedArray struct {
	Values []taggedValue `json:"values"`
}

// EncodeFields serializes fields with explicit type tags so timestamps and
// integers survive storage in a JSON column.
func EncodeFields(f Fields) ([]byte, error) {
	m, err := encodeMap(f)
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

// DecodeFields is the inverse of EncodeFields.
func DecodeFields(b []byte) (Fields, error) {
	var m map[string]taggedValue
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	out := make(Fields, len(m))
	for k, tv := range m {
		v, err := decodeValue(tv)
		if err != nil {
			return nil, fmt.Errorf("decode field %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

func encodeMap(f map[string]any) (map[string]taggedValue, error) {
	out := make(map[string]taggedValue, len(f))
	for k, v := range f {
		tv, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("encode field %q: %w", k, err)
		}
		out[k] = tv
	}
	return out, nil
}

func encodeValue(v any) (taggedValue, error) {
	nv, err := NormalizeValue(v)
	if err != nil {
		return taggedValue{}, err
	}
	switch x := nv.(type) {
	case nil:
		return taggedValue{NullValue: &struct{}{}}, nil
	case bool:
		return taggedValue{BooleanValue: &x}, nil
	case int64:
		s := strconv.FormatInt(x, 10)
		return taggedValue{IntegerValue: &s}, nil
	case float64:
		return taggedValue{DoubleValue: &x}, nil
	case string:
		return taggedValue{StringValue: &x}, nil
	case time.Time:
		s := x.UTC().Format(time.RFC3339Nano)
		return taggedValue{TimestampValue: &s}, nil
	case map[string]any:
		m, err := encodeMap(x)
		if err != nil {
			return taggedValue{}, err
		}
		return taggedValue{MapValue: &taggedMap{Fields: m}}, nil
	case []any:
		vals := make([]taggedValue, len(x))
		for i, e := range x {
			tv, err := encodeValue(e)
			if err != nil {
				return taggedValue{}, err
			}
			vals[i] = tv
		}
		return taggedValue{ArrayValue: &taggedArray{Values: vals}}, nil
	default:
		return taggedValue{}, fmt.Errorf("unsupported value type %T", nv)
	}
}

func decodeValue(tv taggedValue) (any, error) {
	switch {
	case tv.NullValue != nil:
		return nil, nil
	case tv.BooleanValue != nil:
		return *tv.BooleanValue, nil
	case tv.IntegerValue != nil:
		i, err := strconv.ParseInt(*tv.IntegerValue, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("integerValue: %w", err)
		}
		return i, nil
	case tv.DoubleValue != nil:
		return *tv.DoubleValue, nil
	case tv.StringValue != nil:
		return *tv.StringValue, nil
	case tv.TimestampValue != nil:
		t, err := time.Parse(time.RFC3339Nano, *tv.TimestampValue)
		if err != nil {
			return nil, fmt.Errorf("timestampValue: %w", err)
		}
		return t.UTC(), nil
	case tv.MapValue != nil:
		out := make(map[string]any, len(tv.MapValue.Fields))
		for k, e := range tv.MapValue.Fields {
			v, err := decodeValue(e)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	case tv.ArrayValue != nil:
		out := make([]any, len(tv.ArrayValue.Values))
		for i, e := range tv.ArrayValue.Values {
			v, err := decodeValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		// {"nullValue": null} decodes to a nil pointer, so an empty tag is a null.
		return nil, nil
	}
}
