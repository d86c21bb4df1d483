//go:build unit

package errs_test

import (
	"errors"
	"net/http"
	"testing"

	"treatment-booking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSample = errs.Conflict("sample_conflict", "sample conflict")

func TestError(t *testing.T) {
	t.Run("With keeps the sentinel untouched", func(t *testing.T) {
		derived := errSample.With("id", "abc")

		assert.Nil(t, errSample.Detail)
		assert.Equal(t, "abc", derived.Detail["id"])
		assert.ErrorIs(t, derived, errSample)
	})

	t.Run("status and kind survive wrapping", func(t *testing.T) {
		wrapped := errs.Wrap(errSample.With("from", "canceled"), "confirm booking")

		assert.True(t, errors.Is(wrapped, errSample))
		assert.Equal(t, http.StatusConflict, errs.StatusOf(wrapped))
		assert.Equal(t, errs.KindConflict, errs.KindOf(wrapped))
		assert.True(t, errs.IsClient(wrapped))

		e, ok := errs.As(wrapped)
		require.True(t, ok)
		assert.Equal(t, "canceled", e.Detail["from"])
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		err := errors.New("connection reset")

		assert.Equal(t, http.StatusInternalServerError, errs.StatusOf(err))
		assert.Equal(t, errs.KindInternal, errs.KindOf(err))
		assert.False(t, errs.IsClient(err))
	})

	t.Run("different codes do not match", func(t *testing.T) {
		other := errs.Conflict("other_conflict", "other")
		assert.False(t, errors.Is(other, errSample))
	})

	t.Run("Wrap keeps the cause reachable", func(t *testing.T) {
		cause := errors.New("boom")
		err := errs.Unavailable("store_unavailable", "store unavailable").Wrap(cause)

		assert.ErrorIs(t, err, cause)
		assert.False(t, errs.IsClient(err))
		assert.Equal(t, http.StatusServiceUnavailable, errs.StatusOf(err))
	})
}
