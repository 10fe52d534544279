package errors

import (
	"errors"
)

type ErrorCode string

const (
	CodeConfig    ErrorCode = "config_error"
	CodeLoad      ErrorCode = "load_error"
	CodePreflight ErrorCode = "preflight_error"
	CodeTransfer  ErrorCode = "transfer_error"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (se ServiceError) Error() string {
	return se.Message
}

func (se ServiceError) Unwrap() error {
	return se.Err
}

// New wraps err into a ServiceError with the given code and message.
func New(code ErrorCode, message string, err error) ServiceError {
	return ServiceError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf extracts the error code from err, unwrapping as needed. Errors that
// don't carry a ServiceError are reported as CodeConfig.
func CodeOf(err error) ErrorCode {
	var se ServiceError
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeConfig
}
