//go:build unit || e2e

package httptest

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

const HeaderRequestID = "X-Request-ID"

// AssertRequestID checks the echoed request id; an empty want only requires one to be present.
func AssertRequestID(t *testing.T, w *httptest.ResponseRecorder, want string) {
	t.Helper()
	got := w.Header().Get(HeaderRequestID)
	if want == "" {
		assert.NotEmpty(t, got, "response carries no %s", HeaderRequestID)
		return
	}
	assert.Equal(t, want, got, "%s mismatch", HeaderRequestID)
}
