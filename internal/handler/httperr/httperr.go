package httperr

import (
	"net/http"

	"treatment-booking/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
		Code    string `json:"code,omitempty"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}
	abort(c, err, newResponse(status, fallbackCode(status), msg, detail))
}

// Abort renders a core error with the status, code and detail it carries.
// Untagged errors become a bare 500; server-side detail is never exposed.
func Abort(c *gin.Context, err error) {
	if err == nil {
		panic("Abort: err cannot be nil")
	}
	e, ok := errs.As(err)
	switch {
	case !ok:
		abort(c, err, newResponse(http.StatusInternalServerError, fallbackCode(http.StatusInternalServerError), "Internal server error", nil))
	case !e.IsClient():
		abort(c, err, newResponse(e.StatusCode, e.Code, http.StatusText(e.StatusCode), nil))
	default:
		var detail any
		if len(e.Detail) > 0 {
			detail = e.Detail
		}
		abort(c, err, newResponse(e.StatusCode, e.Code, e.Message, detail))
	}
}

func fallbackCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusInternalServerError:
		return "internal"
	}
	return ""
}

func newResponse(status int, code, msg string, detail any) Response {
	resp := Response{Status: status, Detail: detail}
	resp.Error.Message = msg
	resp.Error.Code = code
	return resp
}

func abort(c *gin.Context, err error, resp Response) {
	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(resp.Status, resp)
}
