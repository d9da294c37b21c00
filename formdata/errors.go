package formdata

import "errors"

// Conversion errors.
var (
	// ErrUnsupportedValue is returned when a Go value has no form value
	// equivalent (nil, channels, structs, ...).
	ErrUnsupportedValue = errors.New("formdata: unsupported value")

	// ErrInvalidJSON is returned when JSON input cannot be decoded.
	ErrInvalidJSON = errors.New("formdata: invalid json")

	// ErrNotMapping is returned when form data does not decode to a
	// mapping at the top level.
	ErrNotMapping = errors.New("formdata: top-level value must be an object")
)
