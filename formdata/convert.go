package formdata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// FromAny converts a plain Go value, such as one produced by
// encoding/json, into a Value. Supported inputs are string, bool, the
// integer and float kinds, json.Number, []any, map[string]any,
// map[string]string, []string and Values themselves.
func FromAny(v any) (Value, error) {
	switch t := v.(type) {
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(t), nil
	case int8:
		return Int(t), nil
	case int16:
		return Int(t), nil
	case int32:
		return Int(t), nil
	case int64:
		return Int(t), nil
	case uint8:
		return Int(t), nil
	case uint16:
		return Int(t), nil
	case uint32:
		return Int(t), nil
	case float32:
		return Float(t), nil
	case float64:
		return Float(t), nil
	case json.Number:
		return fromNumber(t)
	case []string:
		out := make(Sequence, len(t))
		for i, s := range t {
			out[i] = String(s)
		}

		return out, nil
	case []any:
		out := make(Sequence, len(t))
		for i, item := range t {
			val, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = val
		}

		return out, nil
	case map[string]string:
		out := make(Mapping, len(t))
		for k, s := range t {
			out[k] = String(s)
		}

		return out, nil
	case map[string]any:
		out := make(Mapping, len(t))
		for k, item := range t {
			val, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = val
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

func fromNumber(n json.Number) (Value, error) {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return Int(i), nil
	}

	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: number %q", ErrUnsupportedValue, n)
	}

	return Float(f), nil
}

// ParseJSON decodes a JSON document into a Value. Integers stay Int,
// numbers with a fraction or exponent become Float.
func ParseJSON(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	return FromAny(raw)
}

// ParseMapping decodes a JSON object into a Mapping.
func ParseMapping(data []byte) (Mapping, error) {
	v, err := ParseJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	m, ok := v.(Mapping)
	if !ok {
		return nil, ErrNotMapping
	}

	return m, nil
}
