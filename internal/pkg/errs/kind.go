package errs

import (
	"net/http"

	cr "github.com/cockroachdb/errors"
)

type Kind string

const (
	KindInvalidArgument Kind = "INVALID_ARGUMENT"
	KindNotFound        Kind = "NOT_FOUND"
	KindConflict        Kind = "CONFLICT"
	KindUnprocessable   Kind = "UNPROCESSABLE"
	KindInternal        Kind = "INTERNAL"
	KindUnavailable     Kind = "UNAVAILABLE"
)

var kindStatus = map[Kind]int{
	KindInvalidArgument: http.StatusBadRequest,
	KindNotFound:        http.StatusNotFound,
	KindConflict:        http.StatusConflict,
	KindUnprocessable:   http.StatusUnprocessableEntity,
	KindInternal:        http.StatusInternalServerError,
	KindUnavailable:     http.StatusServiceUnavailable,
}

// Error is the tagged error returned by the core. Code identifies the
// failure (errors.Is compares codes), Detail carries the context a caller
// needs to render the response.
type Error struct {
	Kind       Kind
	StatusCode int
	Code       string
	Message    string
	Detail     map[string]any
	cause      error
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{
		Kind:       kind,
		StatusCode: kindStatus[kind],
		Code:       code,
		Message:    msg,
	}
}

func InvalidArgument(code, msg string) *Error { return newError(KindInvalidArgument, code, msg) }
func NotFound(code, msg string) *Error        { return newError(KindNotFound, code, msg) }
func Conflict(code, msg string) *Error        { return newError(KindConflict, code, msg) }
func Unprocessable(code, msg string) *Error   { return newError(KindUnprocessable, code, msg) }
func Internal(code, msg string) *Error        { return newError(KindInternal, code, msg) }
func Unavailable(code, msg string) *Error     { return newError(KindUnavailable, code, msg) }

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Code + ": " + e.Message + ": " + e.cause.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// With returns a copy carrying an extra detail entry; the receiver is left
// untouched so package-level sentinels stay reusable.
func (e *Error) With(key string, value any) *Error {
	cp := *e
	cp.Detail = make(map[string]any, len(e.Detail)+1)
	for k, v := range e.Detail {
		cp.Detail[k] = v
	}
	cp.Detail[key] = value
	return &cp
}

func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.cause = cause
	return &cp
}

func (e *Error) IsClient() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

func As(err error) (*Error, bool) {
	var e *Error
	if cr.As(err, &e) {
		return e, true
	}
	return nil, false
}

func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

func StatusOf(err error) int {
	if e, ok := As(err); ok {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

func IsClient(err error) bool {
	e, ok := As(err)
	return ok && e.IsClient()
}
