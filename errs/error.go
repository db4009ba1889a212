package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
)

// Application error codes. They map roughly onto transport-level semantics
// (HTTP status, GraphQL error extensions), but are defined independently so
// that the crud layer never imports a transport package.
const (
	EINTERNAL        = "internal"
	EINVALID         = "invalid"
	ENOTFOUND        = "not_found"
	EUNAUTHENTICATED = "unauthenticated"
	EUNAUTHORIZED    = "unauthorized"
	EDEPENDENCY      = "dependency"
)

// Error is an application error. Code is machine-readable, Message is
// human-readable and safe to return to the client.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface. It returns the bare message: the
// GraphQL executor formats resolver errors with Error(), and clients rely on
// the exact message text. The code travels separately via Extensions.
func (e *Error) Error() string {
	return e.Message
}

// Extensions surfaces the error code in the GraphQL "extensions" map, so
// clients get a machine-parseable kind alongside the message.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{
		"code": e.Code,
	}
}

// Errorf returns a new Error with the given code and formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return a generic message, so internal
// details never leak to the client.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// statusCodes maps application error codes to HTTP status codes.
var statusCodes = map[string]int{
	EINTERNAL:        http.StatusInternalServerError,
	EINVALID:         http.StatusBadRequest,
	ENOTFOUND:        http.StatusNotFound,
	EUNAUTHENTICATED: http.StatusUnauthorized,
	EUNAUTHORIZED:    http.StatusForbidden,
	EDEPENDENCY:      http.StatusBadGateway,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if status, ok := statusCodes[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorResponse is the shape of a JSON error returned outside of the
// GraphQL executor (middleware rejections, bad routes).
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ReturnError writes an error to the response as JSON. Internal errors get
// logged and masked.
func ReturnError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := ErrorCode(err), ErrorMessage(err)
	if code == EINTERNAL {
		LogError(r, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ErrorStatusCode(code))
	json.NewEncoder(w).Encode(&ErrorResponse{Error: message, Code: code})
}

// LogError logs an error together with the request's method and path.
func LogError(r *http.Request, err error) {
	log.Printf("[http] error: %s %s: %s", r.Method, r.URL.Path, err)
}
