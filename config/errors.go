package config

import "errors"

var (
	// ErrMissingHost is returned by Validate when no host is configured.
	ErrMissingHost = errors.New("config: host is required")

	// ErrMissingKeys is returned by Validate when a project key is missing.
	ErrMissingKeys = errors.New("config: public_key and private_key are required")

	// ErrInvalidValue is returned when a file or environment value cannot
	// be parsed.
	ErrInvalidValue = errors.New("config: invalid value")
)
