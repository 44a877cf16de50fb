package synchronizer

import (
	"errors"
	"fmt"
)

// Code is the closed set of failures callers match on
type Code string

const (
	CodeNotAuthorized          Code = "NOT_AUTHORIZED"
	CodeTokenNotRegistered     Code = "TOKEN_NOT_REGISTERED"
	CodeTokenAlreadyRegistered Code = "TOKEN_ALREADY_REGISTERED"
	CodeInvalidTokenPair       Code = "INVALID_TOKEN_PAIR"
	CodeInvalidAmount          Code = "INVALID_AMOUNT"
	CodeInvalidInput           Code = "INVALID_INPUT"

	// Operation missing or not in the expected state
	CodeSyncFailed Code = "SYNC_FAILED"

	// Another execute or cancel of the same operation is running
	CodeSyncInProgress Code = "SYNC_IN_PROGRESS"
)

// Error is a failure with a code. Two errors match with errors.Is when their codes are equal.
type Error struct {
	Code    Code
	Message string
	Err     error
}

var (
	ErrNotAuthorized          = &Error{Code: CodeNotAuthorized}
	ErrTokenNotRegistered     = &Error{Code: CodeTokenNotRegistered}
	ErrTokenAlreadyRegistered = &Error{Code: CodeTokenAlreadyRegistered}
	ErrInvalidTokenPair       = &Error{Code: CodeInvalidTokenPair}
	ErrInvalidAmount          = &Error{Code: CodeInvalidAmount}
	ErrInvalidInput           = &Error{Code: CodeInvalidInput}
	ErrSyncFailed             = &Error{Code: CodeSyncFailed}
	ErrSyncInProgress         = &Error{Code: CodeSyncInProgress}
)

func newError(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (self *Error) Wrap(err error) *Error {
	out := *self
	out.Err = err
	return &out
}

func (self *Error) Error() string {
	msg := string(self.Code)
	if self.Message != "" {
		msg += ": " + self.Message
	}
	if self.Err != nil {
		msg += ": " + self.Err.Error()
	}
	return msg
}

func (self *Error) Unwrap() error {
	return self.Err
}

func (self *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Code == self.Code
}

// Returns the code of a synchronizer error, empty for infrastructure errors
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
