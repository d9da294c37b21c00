package formdata

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Reserved control-token keys. They carry mosparo tokens, not form data,
// and never appear in canonical or prepared output.
const (
	SubmitTokenKey     = "_mosparo_submitToken"
	ValidationTokenKey = "_mosparo_validationToken"
)

// Value is a form value: one of String, Int, Float, Bool, Sequence,
// Mapping or Record. The set is closed.
type Value interface {
	isValue()
}

// Scalar is a leaf Value with a canonical string form.
type Scalar interface {
	Value

	// Text returns the canonical string form used for hashing.
	Text() string
}

// String is a text scalar.
type String string

// Int is an integer scalar.
type Int int64

// Float is a floating point scalar.
type Float float64

// Bool is a boolean scalar.
type Bool bool

// Sequence is an ordered list of values.
type Sequence []Value

// Mapping maps field names to values. It is always walked in ascending
// key order.
type Mapping map[string]Value

// Field is a single entry of a Record.
type Field struct {
	Key   string
	Value Value
}

// Record is an ordered set of fields that serializes in construction
// order. It is used for request envelopes, which are not canonicalized.
type Record []Field

func (String) isValue()   {}
func (Int) isValue()      {}
func (Float) isValue()    {}
func (Bool) isValue()     {}
func (Sequence) isValue() {}
func (Mapping) isValue()  {}
func (Record) isValue()   {}

// Text returns the string unchanged.
func (s String) Text() string { return string(s) }

// Text returns the decimal representation.
func (i Int) Text() string { return strconv.FormatInt(int64(i), 10) }

// Text returns "true" or "false".
func (b Bool) Text() string { return strconv.FormatBool(bool(b)) }

// Text returns the shortest representation that round-trips, laid out
// with a fractional part for integral values (100.0) and exponent
// notation outside [1e-4, 1e16).
func (f Float) Text() string {
	v := float64(f)

	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	exp := 0
	if v != 0 {
		sci := strconv.FormatFloat(v, 'e', -1, 64)
		exp, _ = strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	}

	if exp < -4 || exp >= 16 {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}

	return s
}

// Keys returns the mapping keys in ascending order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

// Lookup returns the value of the first field named key.
func (r Record) Lookup(key string) (Value, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}

	return nil, false
}

// Mapping converts the record into a Mapping. Later fields overwrite
// earlier fields with the same key.
func (r Record) Mapping() Mapping {
	m := make(Mapping, len(r))
	for _, f := range r {
		m[f.Key] = f.Value
	}

	return m
}
