package sslcommerz

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponse means the gateway answered with an empty or blank body.
	ErrEmptyResponse = errors.New("sslcommerz: empty response from gateway")

	// ErrSignatureVerification means verify_sign did not match the recomputed
	// hash. A response that fails verification must never drive a monetary
	// state change.
	ErrSignatureVerification = errors.New("sslcommerz: signature verification failed")
)

// MissingFieldError reports a required field absent from a request input or
// a gateway payload, named by its wire field name.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("sslcommerz: missing required field %q", e.Field)
}
