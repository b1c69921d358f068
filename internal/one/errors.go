package one

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is the numeric error class reported as the third element of a
// failed RPC response.
type ErrorCode int

// Error classes used by the control plane.
const (
	CodeSuccess        ErrorCode = 0x0000
	CodeAuthentication ErrorCode = 0x0100
	CodeAuthorization  ErrorCode = 0x0200
	CodeNoExists       ErrorCode = 0x0400
	CodeAction         ErrorCode = 0x0800
	CodeXMLRPCAPI      ErrorCode = 0x1000
	CodeInternal       ErrorCode = 0x2000
	CodeAllocate       ErrorCode = 0x4000
	CodeLocked         ErrorCode = 0x8000
)

var (
	// ErrNotFound matches errors where the target object does not exist.
	ErrNotFound = errors.New("object not found")

	// ErrNameTaken matches allocation errors caused by a duplicate name.
	ErrNameTaken = errors.New("name already taken")

	// ErrAlreadyAssigned matches attach errors where the relation already exists.
	ErrAlreadyAssigned = errors.New("already assigned")
)

// Error is a failed RPC as reported by the backend.
type Error struct {
	Method  string
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: %s (code 0x%04x)", e.Method, e.Message, int(e.Code))
}

// Is classifies the error for errors.Is. The backend only partly encodes the
// condition in the error code, so the message text is consulted as well.
func (e *Error) Is(target error) bool {
	msg := strings.ToLower(e.Message)
	switch target {
	case ErrNotFound:
		return e.Code == CodeNoExists ||
			strings.Contains(msg, "error getting") ||
			strings.Contains(msg, "does not exist")
	case ErrNameTaken:
		return strings.Contains(msg, "already taken") ||
			(e.Code == CodeAllocate && strings.Contains(msg, "already exists"))
	case ErrAlreadyAssigned:
		return strings.Contains(msg, "already assigned") ||
			strings.Contains(msg, "already in the")
	}
	return false
}

// IsNotFound reports whether err means the object does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNameTaken reports whether err is a name collision on allocation.
func IsNameTaken(err error) bool {
	return errors.Is(err, ErrNameTaken)
}

// IsAlreadyAssigned reports whether err is an "already linked" attach error.
func IsAlreadyAssigned(err error) bool {
	return errors.Is(err, ErrAlreadyAssigned)
}

// DecodeError is returned when an info response lacks a required field or
// is not valid XML.
type DecodeError struct {
	Kind   string
	Reason string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s: %s", e.Kind, e.Reason)
}
