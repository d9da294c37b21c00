package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// response is a decoded mosparo API response. Only the semantic fields
// are inspected; the HTTP status code is not.
type response map[string]json.RawMessage

func parseResponse(body []byte) (response, error) {
	if len(body) == 0 {
		return nil, ErrInvalidResponse
	}

	var res response
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	if res == nil {
		return nil, ErrInvalidResponse
	}

	return res, nil
}

func (r response) has(key string) bool {
	_, ok := r[key]

	return ok
}

// truthy reports whether the field is present and holds a true-like
// value: true, a non-zero number, a non-empty string, array or object.
func (r response) truthy(key string) bool {
	switch t := r.value(key).(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return false
	}
}

// value returns the field decoded into plain Go values, or nil when it is
// absent or not valid JSON.
func (r response) value(key string) any {
	raw, ok := r[key]
	if !ok {
		return nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}

	return v
}

// str returns the field if it holds a JSON string.
func (r response) str(key string) (string, bool) {
	raw, ok := r[key]
	if !ok {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}

	return s, true
}

// decode decodes a container field into dst. An absent field, null, or
// an empty array or object leaves dst untouched, since PHP encodes an
// empty map as [].
func (r response) decode(key string, dst any) error {
	raw, ok := r[key]
	if !ok || isEmptyJSON(raw) {
		return nil
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: field %s: %w", ErrInvalidResponse, key, err)
	}

	return nil
}

func isEmptyJSON(raw json.RawMessage) bool {
	switch string(bytes.Join(bytes.Fields(raw), nil)) {
	case "", "null", "[]", "{}":
		return true
	default:
		return false
	}
}
