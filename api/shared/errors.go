/* errors.go
 * Contains the coded error type returned by every layer. Handlers and the bot map
 * codes to transport-level responses; internal detail never leaves the process.
 * Authors: Zachary Bower
 */

package shared

import (
	"errors"
	"fmt"
)

// Code classifies a failure for callers. The set mirrors the request surface:
// a caller can branch on the code without parsing the message.
type Code string

const (
	CodeInvalidArgument    Code = "invalid-argument"
	CodePermissionDenied   Code = "permission-denied"
	CodeNotFound           Code = "not-found"
	CodeFailedPrecondition Code = "failed-precondition"
	CodeAlreadyExists      Code = "already-exists"
	CodeConfigError        Code = "config-error"
	CodeUserNotFound       Code = "user-not-found"

	// Token verification codes. The web layer maps these onto the
	// generic codes above before responding.
	CodeMalformedToken Code = "malformed-token"
	CodeBadSignature   Code = "bad-signature"
	CodeExpired        Code = "expired"
)

// Error carries a machine-readable code alongside a human message
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewError creates a coded error with a formatted message
func NewError(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the code from err, unwrapping as needed.
// Errors without a code report CodeConfigError so that unexpected internal
// failures never masquerade as caller mistakes.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeConfigError
}

// IsCode reports whether err carries the given code
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
