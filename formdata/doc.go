// Package formdata turns submitted form data into the canonical, hashed
// representation that mosparo signs.
//
// Form data is modelled as a closed set of Value types: the scalars
// String, Int, Float and Bool, and the containers Sequence and Mapping.
// Record is an ordered mapping used for request envelopes.
//
// # Pipeline
//
// Canonicalize removes the mosparo control tokens, strips the "[]" suffix
// from repeated field names, normalizes CRLF to LF and sorts mapping keys:
//
//	form := formdata.Mapping{
//	    "name":    formdata.String("Test Tester"),
//	    "email[]": formdata.Sequence{formdata.String("test@example.com")},
//	    formdata.SubmitTokenKey: formdata.String("..."),
//	}
//	canonical := formdata.Canonicalize(form)
//
// Prepare canonicalizes and replaces every scalar leaf with its SHA-256
// hex digest:
//
//	prepared := formdata.Prepare(form)
//
// Serialize produces the compact JSON text that gets signed. Empty
// sequences are written as "{}":
//
//	text := formdata.Serialize(prepared)
//
// # Decoding
//
// ParseJSON and FromAny build Values from JSON documents or plain Go
// values:
//
//	form, err := formdata.ParseMapping([]byte(`{"name":"Test Tester"}`))
package formdata
