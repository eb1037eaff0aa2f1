package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for retry and propagation decisions.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindAuth          Kind = "auth"
	KindTimeout       Kind = "timeout"
	KindTransport     Kind = "transport"
	KindParse         Kind = "parse"
	KindInvalidInput  Kind = "invalid_input"
	KindNotFound      Kind = "not_found"
	KindInternal      Kind = "internal"
)

type AppError struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"-"`
	Message string `json:"error"`
	Op      string `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(kind Kind, code int, op string, err error, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

// Configuration reports a missing or unusable setting, such as blank API
// credentials. Never retried.
func Configuration(op string, err error, message string) *AppError {
	return newError(KindConfiguration, http.StatusPreconditionFailed, op, err, message)
}

// Auth reports a credential rejected by the provider. Never retried; the
// caller is expected to clear the stored key.
func Auth(op string, err error, message string) *AppError {
	return newError(KindAuth, http.StatusUnauthorized, op, err, message)
}

// Timeout reports a call that exceeded its budget. Retryable.
func Timeout(op string, err error, message string) *AppError {
	return newError(KindTimeout, http.StatusGatewayTimeout, op, err, message)
}

// Transport reports a network or connection shaped failure. Retryable.
func Transport(op string, err error, message string) *AppError {
	return newError(KindTransport, http.StatusBadGateway, op, err, message)
}

// Parse reports a model response that could not be decoded as the expected
// JSON shape even after fallback extraction.
func Parse(op string, err error, message string) *AppError {
	return newError(KindParse, http.StatusUnprocessableEntity, op, err, message)
}

func InvalidInput(op string, err error, message string) *AppError {
	return newError(KindInvalidInput, http.StatusBadRequest, op, err, message)
}

func NotFound(op string, err error, message string) *AppError {
	return newError(KindNotFound, http.StatusNotFound, op, err, message)
}

func Internal(op string, err error, message string) *AppError {
	return newError(KindInternal, http.StatusInternalServerError, op, err, message)
}

// KindOf returns the classification of err, or KindInternal for errors that
// did not originate in this package.
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsRetryable reports whether a failed provider call may be attempted again.
// Only timeouts and transport failures qualify; auth, parse, and
// configuration errors abort immediately.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindTimeout, KindTransport:
		return true
	default:
		return false
	}
}

func IsAuth(err error) bool {
	return KindOf(err) == KindAuth
}

func IsTimeout(err error) bool {
	return KindOf(err) == KindTimeout
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

func IsConfiguration(err error) bool {
	return KindOf(err) == KindConfiguration
}

func IsParse(err error) bool {
	return KindOf(err) == KindParse
}
