package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by stores when a lookup matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned by stores when a unique constraint rejects a write.
	ErrDuplicate = errors.New("record already exists")
	// ErrOTPMismatch is returned when an OTP is wrong, expired or already consumed.
	ErrOTPMismatch = errors.New("otp mismatch")
	// ErrInvalidToken is returned when a JWT cannot be verified.
	ErrInvalidToken = errors.New("invalid token")
)

// Error is a failure carrying a response code. Message is safe to show to
// callers; Err holds the underlying cause for logs only.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a coded error with the code's default message.
func NewError(code Code) *Error {
	return &Error{Code: code, Message: code.Message()}
}

// WithMessage builds a coded error with a custom message.
func WithMessage(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Fail wraps an unexpected cause into a FAIL error with a fixed message.
func Fail(msg string, cause error) *Error {
	return &Error{Code: CodeFail, Message: msg, Err: cause}
}

// CodeOf extracts the response code from err. Nil is SUCCESS, uncoded errors are FAIL.
func CodeOf(err error) Code {
	if err == nil {
		return CodeSuccess
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeFail
}

// MessageOf returns the caller-facing message for err.
func MessageOf(err error) string {
	if err == nil {
		return CodeSuccess.Message()
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return CodeFail.Message()
}
