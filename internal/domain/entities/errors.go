package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport agrupa fallos de red o HTTP contra un proveedor
	ErrTransport = errors.New("quote source transport error")
	// ErrParse agrupa payloads malformados o con campos faltantes
	ErrParse = errors.New("quote source parse error")
	// ErrUnusablePrice marks a structurally valid quote with a non-positive price
	ErrUnusablePrice = errors.New("unusable price")
	// ErrResolutionExhausted means every fallback step failed or was unusable
	ErrResolutionExhausted = errors.New("price resolution exhausted")
	// ErrUnsupportedNumerator is returned for numerators other than the configured one
	ErrUnsupportedNumerator = errors.New("unsupported numerator currency")
)

// TransportError describes a network or HTTP failure of a quote source
type TransportError struct {
	Provider   string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s returned HTTP %d", e.Provider, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: request to %s failed: %v", e.Provider, e.URL, e.Err)
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// Temporary is true for failures worth retrying (network errors, 5xx and 429)
func (e *TransportError) Temporary() bool {
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}

// ParseError describes a malformed provider payload
type ParseError struct {
	Provider string
	Field    string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: invalid field %q", e.Provider, e.Field)
	}
	return fmt.Sprintf("%s: invalid field %q: %v", e.Provider, e.Field, e.Err)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParse}
	}
	return []error{ErrParse, e.Err}
}

// ResolutionExhaustedError reports the last failure of an exhausted chain
type ResolutionExhaustedError struct {
	Asset   string
	Steps   int
	LastErr error
}

func (e *ResolutionExhaustedError) Error() string {
	if e.LastErr == nil {
		return fmt.Sprintf("%v for %s after %d steps", ErrResolutionExhausted, e.Asset, e.Steps)
	}
	return fmt.Sprintf("%v for %s after %d steps: %v", ErrResolutionExhausted, e.Asset, e.Steps, e.LastErr)
}

func (e *ResolutionExhaustedError) Unwrap() []error {
	if e.LastErr == nil {
		return []error{ErrResolutionExhausted}
	}
	return []error{ErrResolutionExhausted, e.LastErr}
}
