package errors

import (
	"errors"
)

type Code string

// Verification failure taxonomy. Every one of these resolves locally into a
// Reject outcome; the codes exist for diagnostics and log correlation.
const (
	CodeSchemeMismatch    Code = "scheme_mismatch"
	CodeMissingCredential Code = "missing_credential"
	CodeTransportFailure  Code = "transport_failure"
	CodeNonSuccessStatus  Code = "non_success_status"
	CodeMalformedBody     Code = "malformed_body"
	CodeIncompleteProfile Code = "incomplete_profile"
)

const (
	CodeUnknown         Code = "unknown"
	CodeMissingCache    Code = "missing_cache"
	CodeMissingStrategy Code = "missing_strategy"
)

var ErrMissingStrategy = errors.New("tokengate: at least one strategy is required")

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	if e.Message != "" {
		return e.Message
	}

	if e.Err != nil {
		return e.Err.Error()
	}

	return string(e.Code)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsCode(err error, code Code) bool {
	var typed *Error
	if !errors.As(err, &typed) {
		return false
	}
	return typed.Code == code
}

// IsVerificationCode reports whether err belongs to the verification failure
// taxonomy, as opposed to configuration or wiring problems.
func IsVerificationCode(err error) bool {
	return IsCode(err, CodeMissingCredential) ||
		IsCode(err, CodeTransportFailure) ||
		IsCode(err, CodeNonSuccessStatus) ||
		IsCode(err, CodeMalformedBody) ||
		IsCode(err, CodeIncompleteProfile)
}
