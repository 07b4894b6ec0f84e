// Package transform turns a source photo into a stylized one, either
// locally or through a remote inference service.
package transform

import (
	"context"
	"fmt"
)

// Gateway applies a named style to raw image bytes.
type Gateway interface {
	Transform(ctx context.Context, img []byte, style string) ([]byte, error)
}

// Error is returned when a transform attempt fails. Reason is safe to
// log; it never contains credentials.
type Error struct {
	Style  string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("transform %q: %s", e.Style, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("transform %q: %v", e.Style, e.Err)
	}
	return fmt.Sprintf("transform %q failed", e.Style)
}

func (e *Error) Unwrap() error { return e.Err }

// Code implements the error-code contract used by handler logging.
func (e *Error) Code() string { return "TRANSFORM_ERROR" }
