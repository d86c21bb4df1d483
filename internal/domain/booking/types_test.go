//go:build unit

package booking_test

import (
	"net/http"
	"testing"

	"treatment-booking/internal/domain/booking"
	"treatment-booking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertTransition(t *testing.T) {
	allowed := map[booking.Status][]booking.Status{
		booking.StatusPending:   {booking.StatusPending, booking.StatusConfirmed, booking.StatusCanceled},
		booking.StatusConfirmed: {booking.StatusConfirmed, booking.StatusCanceled},
		booking.StatusCanceled:  {booking.StatusCanceled},
	}

	for _, from := range booking.AllStatuses() {
		for _, to := range booking.AllStatuses() {
			want := contains(allowed[from], to)
			t.Run(from.String()+"->"+to.String(), func(t *testing.T) {
				err := booking.AssertTransition(from, to)
				if want {
					assert.NoError(t, err)
					return
				}
				require.Error(t, err)
				assert.ErrorIs(t, err, booking.ErrInvalidTransition)
				assert.True(t, errs.IsClient(err))
				assert.Equal(t, http.StatusConflict, errs.StatusOf(err))

				e, ok := errs.As(err)
				require.True(t, ok)
				assert.Equal(t, from.String(), e.Detail["from"])
				assert.Equal(t, to.String(), e.Detail["to"])
			})
		}
	}

	t.Run("unknown target status", func(t *testing.T) {
		err := booking.AssertTransition(booking.StatusPending, booking.Status("archived"))
		assert.ErrorIs(t, err, booking.ErrInvalidStatus)
	})

	t.Run("unknown source status", func(t *testing.T) {
		err := booking.AssertTransition(booking.Status("archived"), booking.StatusCanceled)
		assert.ErrorIs(t, err, booking.ErrInvalidTransition)
	})
}

func TestParseStatus(t *testing.T) {
	st, err := booking.ParseStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, st)

	_, err = booking.ParseStatus("Confirmed")
	assert.ErrorIs(t, err, booking.ErrInvalidStatus)
}

func contains(list []booking.Status, s booking.Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
