// Package apperr classifies failures into the small set of kinds the API
// reports to clients. Every kind is an oops code; anything unclassified is
// treated as internal.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/samber/oops"
)

const (
	CodeValidation      = "VALIDATION"
	CodeConflict        = "CONFLICT"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeTooLarge        = "PAYLOAD_TOO_LARGE"
	CodeInternal        = "INTERNAL"
)

// InternalMessage is the only text a client ever sees for a 5xx.
const InternalMessage = "Internal server error"

var statusByCode = map[string]int{
	CodeValidation:      http.StatusBadRequest,
	CodeConflict:        http.StatusConflict,
	CodeUnauthenticated: http.StatusUnauthorized,
	CodeForbidden:       http.StatusForbidden,
	CodeNotFound:        http.StatusNotFound,
	CodeTooLarge:        http.StatusRequestEntityTooLarge,
	CodeInternal:        http.StatusInternalServerError,
}

func Validation(msg string) error {
	return oops.Code(CodeValidation).Errorf("%s", msg)
}

func Conflict(msg string) error {
	return oops.Code(CodeConflict).Errorf("%s", msg)
}

func Unauthenticated(msg string) error {
	return oops.Code(CodeUnauthenticated).Errorf("%s", msg)
}

func Forbidden(msg string) error {
	return oops.Code(CodeForbidden).Errorf("%s", msg)
}

func NotFound(msg string) error {
	return oops.Code(CodeNotFound).Errorf("%s", msg)
}

func TooLarge(msg string) error {
	return oops.Code(CodeTooLarge).Errorf("%s", msg)
}

// Internal wraps err as an internal failure. msg is for logs only.
func Internal(err error, msg string) error {
	if err == nil {
		return oops.Code(CodeInternal).Errorf("%s", msg)
	}
	return oops.Code(CodeInternal).Wrapf(err, "%s", msg)
}

// Code returns the taxonomy code carried by err, or CodeInternal.
func Code(err error) string {
	if err == nil {
		return ""
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		if code := oopsErr.Code(); code != nil {
			c := fmt.Sprint(code)
			if _, known := statusByCode[c]; known {
				return c
			}
		}
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return err != nil && Code(err) == code
}

// Status maps err to the HTTP status it should be reported with.
func Status(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return statusByCode[Code(err)]
}

// PublicMessage returns the client-facing text for err. Server-side failures
// are redacted to InternalMessage.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	if Status(err) >= http.StatusInternalServerError {
		return InternalMessage
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		return oopsErr.Error()
	}
	return err.Error()
}
