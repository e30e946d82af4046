package errors

import "fmt"

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	if ve, ok := err.(*ValidationError); ok {
		return ve, true
	}
	return nil, false
}

// AuthError means the credential exchange completed but produced no usable
// token. It fails the current dispatch attempt, never the process.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func NewAuthError(message string) *AuthError {
	return &AuthError{Message: message}
}

func IsAuthError(err error) (*AuthError, bool) {
	if ae, ok := err.(*AuthError); ok {
		return ae, true
	}
	return nil, false
}

// DispatchError covers both transport failures and non-2xx provider
// responses. ProviderBody carries the provider's diagnostic payload when
// one was received.
type DispatchError struct {
	Message      string
	StatusCode   int
	ProviderBody string
}

func (e *DispatchError) Error() string {
	if e.ProviderBody != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.ProviderBody)
	}
	return e.Message
}

func NewDispatchError(message string, statusCode int, providerBody string) *DispatchError {
	return &DispatchError{
		Message:      message,
		StatusCode:   statusCode,
		ProviderBody: providerBody,
	}
}

func IsDispatchError(err error) (*DispatchError, bool) {
	if de, ok := err.(*DispatchError); ok {
		return de, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	if nfe, ok := err.(*NotFoundError); ok {
		return nfe, true
	}
	return nil, false
}

// StreamError is a failure of a single live subscription. It identifies the
// partition so the view can report it without tearing down siblings.
type StreamError struct {
	Partition string
	Cause     error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream failure on partition %s: %v", e.Partition, e.Cause)
}

func (e *StreamError) Unwrap() error {
	return e.Cause
}

func NewStreamError(partition string, cause error) *StreamError {
	return &StreamError{Partition: partition, Cause: cause}
}

func IsStreamError(err error) (*StreamError, bool) {
	if se, ok := err.(*StreamError); ok {
		return se, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}
