package formdata

import (
	"crypto/sha256"
	"encoding/hex"
)

// Prepare canonicalizes v and replaces every scalar leaf with the
// lowercase hex SHA-256 digest of its string form. Container shape is
// preserved. A nil leaf hashes as the empty string.
//
// The result is what mosparo calls prepared form data: it commits to the
// submitted values without carrying them.
func Prepare(v Value) Value {
	return hashLeaves(Canonicalize(v))
}

func hashLeaves(v Value) Value {
	switch t := v.(type) {
	case Mapping:
		out := make(Mapping, len(t))
		for key, item := range t {
			out[key] = hashLeaves(item)
		}

		return out
	case Record:
		return hashLeaves(t.Mapping())
	case Sequence:
		out := make(Sequence, len(t))
		for i, item := range t {
			out[i] = hashLeaves(item)
		}

		return out
	case Scalar:
		return String(HashScalar(t))
	default:
		return String(hashText(""))
	}
}

// HashScalar returns the lowercase hex SHA-256 digest of the scalar's
// string form.
func HashScalar(s Scalar) string {
	return hashText(s.Text())
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))

	return hex.EncodeToString(sum[:])
}
