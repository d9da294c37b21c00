package formdata

import "strings"

// arrayMarker is the suffix browsers append to repeated field names.
const arrayMarker = "[]"

// Canonicalize returns the canonical form of v: control-token keys are
// removed from every mapping, keys are truncated at the first "[]",
// CRLF line endings in strings become LF, and records become mappings.
// Sequence order is preserved. The input is never modified.
//
// When truncation makes two keys collide, the value whose original key
// sorts last wins.
func Canonicalize(v Value) Value {
	switch t := v.(type) {
	case Mapping:
		return canonicalizeMapping(t)
	case Record:
		return canonicalizeMapping(t.Mapping())
	case Sequence:
		out := make(Sequence, len(t))
		for i, item := range t {
			out[i] = Canonicalize(item)
		}

		return out
	case String:
		return String(strings.ReplaceAll(string(t), "\r\n", "\n"))
	default:
		return v
	}
}

func canonicalizeMapping(m Mapping) Mapping {
	out := make(Mapping, len(m))

	for _, key := range m.Keys() {
		if key == SubmitTokenKey || key == ValidationTokenKey {
			continue
		}

		out[CanonicalKey(key)] = Canonicalize(m[key])
	}

	return out
}

// CanonicalKey truncates key at the first occurrence of "[]".
func CanonicalKey(key string) string {
	if pos := strings.Index(key, arrayMarker); pos >= 0 {
		return key[:pos]
	}

	return key
}
