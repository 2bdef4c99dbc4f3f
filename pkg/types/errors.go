// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Error kinds shared across the pipeline. Callers wrap these with %w and
// match them with errors.Is.
var (
	// ErrMissingCredential means a required API key was absent at client
	// construction. Fatal at startup.
	ErrMissingCredential = errors.New("missing credential")

	// ErrRequestFailed means a single upstream API call failed (transport
	// error or non-2xx status). Surfaces to the enclosing loop.
	ErrRequestFailed = errors.New("api request failed")

	// ErrInvalidFormat means the question list could not be decoded as
	// JSON. Fatal to the current topic run only.
	ErrInvalidFormat = errors.New("invalid json format")
)
