// Package errs provides the error type bridges return to the web layer.
package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"github.com/jrazmi/taskclock/sdk/validation"
)

// ErrCode classifies an error for transport.
type ErrCode int

const (
	Internal ErrCode = iota
	InvalidArgument
	NotFound
	Unauthenticated
	FailedPrecondition
	Unavailable
	// InternalOnlyLog is logged in full and answered as Internal.
	InternalOnlyLog
)

var codeNames = map[ErrCode]string{
	Internal:           "internal",
	InvalidArgument:    "invalid_argument",
	NotFound:           "not_found",
	Unauthenticated:    "unauthenticated",
	FailedPrecondition: "failed_precondition",
	Unavailable:        "unavailable",
	InternalOnlyLog:    "internal",
}

var httpStatus = map[ErrCode]int{
	Internal:           http.StatusInternalServerError,
	InvalidArgument:    http.StatusBadRequest,
	NotFound:           http.StatusNotFound,
	Unauthenticated:    http.StatusUnauthorized,
	FailedPrecondition: http.StatusPreconditionFailed,
	Unavailable:        http.StatusServiceUnavailable,
	InternalOnlyLog:    http.StatusInternalServerError,
}

func (c ErrCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "unknown"
}

func (c ErrCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Error is an error with a transport code, optional per-field messages and
// the location it was raised at.
type Error struct {
	Code     ErrCode           `json:"code"`
	Message  string            `json:"error"`
	Fields   map[string]string `json:"fields,omitempty"`
	FuncName string            `json:"-"`
	FileName string            `json:"-"`
}

// New wraps err with code.
func New(code ErrCode, err error) *Error {
	e := &Error{Code: code, Message: err.Error()}
	e.caller(2)
	return e
}

// Newf constructs an error with a formatted message.
func Newf(code ErrCode, format string, v ...any) *Error {
	e := &Error{Code: code, Message: fmt.Sprintf(format, v...)}
	e.caller(2)
	return e
}

// NewFieldErrors reports validation failures as InvalidArgument. Any other
// error is wrapped as Internal.
func NewFieldErrors(err error) *Error {
	fe, ok := validation.AsFieldErrors(err)
	if !ok {
		e := &Error{Code: Internal, Message: err.Error()}
		e.caller(2)
		return e
	}

	e := &Error{
		Code:    InvalidArgument,
		Message: fe.Error(),
		Fields:  fe.Fields(),
	}
	e.caller(2)
	return e
}

func (e *Error) caller(skip int) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return
	}
	e.FileName = fmt.Sprintf("%s:%d", file, line)
	if fn := runtime.FuncForPC(pc); fn != nil {
		e.FuncName = fn.Name()
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Encode implements the web encoder interface.
func (e *Error) Encode() ([]byte, string, error) {
	data, err := json.Marshal(e)
	return data, "application/json", err
}

// HTTPStatus implements the web package httpStatus interface.
func (e *Error) HTTPStatus() int {
	if s, ok := httpStatus[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// IsError reports whether err is an *Error.
func IsError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
