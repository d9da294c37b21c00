package client

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the client wraps exactly one of
// them, so callers can tell them apart with errors.Is.
var (
	// ErrConfiguration is returned when the client or a call is not
	// configured well enough to contact mosparo. No request is sent.
	ErrConfiguration = errors.New("mosparo: configuration error")

	// ErrTransport is returned when the request could not be sent or the
	// response could not be read.
	ErrTransport = errors.New("mosparo: transport error")

	// ErrRemote is returned when mosparo answered with an explicit error.
	// Verification calls report remote errors as issues instead.
	ErrRemote = errors.New("mosparo: remote error")
)

// Configuration errors.
var (
	// ErrTokensMissing is returned when neither the arguments nor the form
	// data carry a submit and a validation token.
	ErrTokensMissing = fmt.Errorf("%w: submit or validation token not available", ErrConfiguration)

	// ErrNoHost is returned when Config.Host is empty or not a URL.
	ErrNoHost = fmt.Errorf("%w: host must be an absolute URL", ErrConfiguration)

	// ErrNoKeys is returned when the public or private key is empty.
	ErrNoKeys = fmt.Errorf("%w: public and private key must not be empty", ErrConfiguration)
)

// Transport errors.
var (
	// ErrRequestFailed is returned when the HTTP request fails before a
	// response is received.
	ErrRequestFailed = fmt.Errorf("%w: an error occurred while sending the request to mosparo", ErrTransport)

	// ErrInvalidResponse is returned when the response body is empty or
	// not a JSON object.
	ErrInvalidResponse = fmt.Errorf("%w: response from API invalid", ErrTransport)
)

// defaultRemoteMessage is used when mosparo flags an error without a
// message.
const defaultRemoteMessage = "An error occurred in the connection to mosparo."
