package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrValidation represents missing or invalid caller input.
type ErrValidation struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s is required", e.Field)
}

// Is allows for error checking with errors.Is().
func (e *ErrValidation) Is(target error) bool {
	_, ok := target.(*ErrValidation)
	return ok
}

// NewValidationError creates a new ErrValidation for the given input field.
func NewValidationError(field, message string) *ErrValidation {
	return &ErrValidation{
		Field:   field,
		Message: message,
	}
}

// ErrUpstreamFetch is returned when a request to the source site or the resolver host fails
// at the transport level or answers with an unexpected status.
type ErrUpstreamFetch struct {
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *ErrUpstreamFetch) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("upstream request to %s returned status %d", e.URL, e.StatusCode)
}

// Unwrap returns the underlying transport error, if any.
func (e *ErrUpstreamFetch) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrUpstreamFetch) Is(target error) bool {
	_, ok := target.(*ErrUpstreamFetch)
	return ok
}

// ErrMalformedUpstreamPage is returned when a page lacks a value the resolution pipeline requires.
type ErrMalformedUpstreamPage struct {
	Missing string
}

// Error implements the error interface.
func (e *ErrMalformedUpstreamPage) Error() string {
	return fmt.Sprintf("malformed upstream page: %s not found", e.Missing)
}

// Is allows for error checking with errors.Is().
func (e *ErrMalformedUpstreamPage) Is(target error) bool {
	_, ok := target.(*ErrMalformedUpstreamPage)
	return ok
}

// ErrTokenAcquisitionFailed is returned when the token endpoint does not issue a usable token.
type ErrTokenAcquisitionFailed struct {
	TargetURL string
	Err       error
}

// Error implements the error interface.
func (e *ErrTokenAcquisitionFailed) Error() string {
	return fmt.Sprintf("token acquisition for %s failed: %v", e.TargetURL, e.Err)
}

// Unwrap returns the cause.
func (e *ErrTokenAcquisitionFailed) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrTokenAcquisitionFailed) Is(target error) bool {
	_, ok := target.(*ErrTokenAcquisitionFailed)
	return ok
}

// ErrManifestParse is returned when the download manifest response cannot be interpreted.
type ErrManifestParse struct {
	Reason string
}

// Error implements the error interface.
func (e *ErrManifestParse) Error() string {
	return fmt.Sprintf("invalid download manifest: %s", e.Reason)
}

// Is allows for error checking with errors.Is().
func (e *ErrManifestParse) Is(target error) bool {
	_, ok := target.(*ErrManifestParse)
	return ok
}

// StatusCode maps an error to the code reported in a result envelope.
// Only validation failures are the caller's fault; everything else is reported as 500.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, &ErrValidation{}) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
