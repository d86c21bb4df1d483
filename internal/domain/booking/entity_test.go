//go:build unit

package booking_test

import (
	"testing"
	"time"

	"treatment-booking/internal/domain/booking"
	"treatment-booking/internal/pkg/errs"
	"treatment-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.BookingBuilder)
	errIs  error
}

func TestBooking(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		b := builder.NewBookingBuilder()
		actual, err := b.BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.Equal(t, uuid.Nil, actual.ID())
		assert.Equal(t, booking.StatusPending, actual.Status())
		assert.Equal(t, b.Now, actual.CreatedAt())
		assert.Equal(t, actual.CreatedAt(), actual.UpdatedAt())
		assert.Equal(t, "Alice Martin", actual.Contact().Name())
		assert.Equal(t, "alice martin", actual.SearchKey())
		assert.Nil(t, actual.CreatedBy())

		assert.Equal(t, int64(1700), actual.Totals().Subtotal)
		assert.Equal(t, int64(1700), actual.Totals().GrandTotal)
		assert.Equal(t, "EUR", actual.Totals().Currency)
		assert.False(t, actual.Totals().MixedCurrency)
	})

	t.Run("timestamps are kept at millisecond precision", func(t *testing.T) {
		now := time.Date(2026, 3, 1, 9, 0, 0, 123456789, time.FixedZone("CET", 3600))
		actual, err := builder.NewBookingBuilder().WithNow(now).BuildDomain()
		require.NoError(t, err)

		assert.Equal(t, time.UTC, actual.CreatedAt().Location())
		assert.Equal(t, 123000000, actual.CreatedAt().Nanosecond())
	})

	t.Run("validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "missing arrival",
				mutate: func(b *builder.BookingBuilder) { b.ArrivalAt = time.Time{} },
				errIs:  booking.ErrMissingArrival,
			},
			{
				name:   "missing contact name",
				mutate: func(b *builder.BookingBuilder) { b.ContactName = "  " },
				errIs:  booking.ErrMissingContactName,
			},
			{
				name:   "missing contact email",
				mutate: func(b *builder.BookingBuilder) { b.ContactEmail = "" },
				errIs:  booking.ErrMissingContactEmail,
			},
			{
				name:   "missing person name",
				mutate: func(b *builder.BookingBuilder) { b.PersonName = "" },
				errIs:  booking.ErrMissingPersonName,
			},
			{
				name: "item without selections",
				mutate: func(b *builder.BookingBuilder) {
					b.Program = nil
					b.Package = nil
				},
				errIs: booking.ErrEmptyItem,
			},
			{
				name:   "program quantity zero",
				mutate: func(b *builder.BookingBuilder) { b.ProgramQuantity = 0 },
				errIs:  booking.ErrInvalidQuantity,
			},
			{
				name:   "duration option absent",
				mutate: func(b *builder.BookingBuilder) { b.DurationMinutes = 75 },
				errIs:  booking.ErrDurationOptionNotFound,
			},
			{
				name:   "package only",
				mutate: func(b *builder.BookingBuilder) { b.Program = nil },
			},
			{
				name:   "program only",
				mutate: func(b *builder.BookingBuilder) { b.Package = nil },
			},
		})
	})

	t.Run("duration option error names the program", func(t *testing.T) {
		_, err := booking.NewProgramSelection(builder.MassageProgram(), 75, 1)
		require.Error(t, err)

		e, ok := errs.As(err)
		require.True(t, ok)
		assert.Equal(t, builder.MassageProgramID.String(), e.Detail["programId"])
		assert.Equal(t, 75, e.Detail["durationMinutes"])
		assert.Equal(t, []int{60, 90}, e.Detail["available"])
	})

	t.Run("assign id once", func(t *testing.T) {
		actual, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)

		require.NoError(t, actual.AssignID(uuid.New()))
		assert.ErrorIs(t, actual.AssignID(uuid.New()), booking.ErrIDAlreadyAssigned)
	})
}

func TestBookingLifecycle(t *testing.T) {
	later := func(b *booking.Booking, d time.Duration) time.Time {
		return b.UpdatedAt().Add(d)
	}

	t.Run("confirm then cancel then update", func(t *testing.T) {
		actual, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)

		changed, err := actual.Confirm(later(actual, time.Minute))
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, booking.StatusConfirmed, actual.Status())
		assert.True(t, actual.UpdatedAt().After(actual.CreatedAt()))

		changed, err = actual.Cancel(later(actual, time.Minute))
		require.NoError(t, err)
		assert.True(t, changed)
		assert.True(t, actual.IsCanceled())

		note := booking.NewNote("late change")
		err = actual.ApplyDetails(booking.DetailsPatch{Note: &note}, later(actual, time.Minute))
		assert.ErrorIs(t, err, booking.ErrBookingCanceled)
		assert.True(t, errs.IsClient(err))
	})

	t.Run("repeated cancel is a no-op", func(t *testing.T) {
		actual, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)

		_, err = actual.Cancel(later(actual, time.Minute))
		require.NoError(t, err)
		canceledAt := actual.UpdatedAt()

		changed, err := actual.Cancel(later(actual, time.Hour))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, canceledAt, actual.UpdatedAt())
	})

	t.Run("canceled booking cannot be confirmed", func(t *testing.T) {
		actual, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)
		_, err = actual.Cancel(later(actual, time.Minute))
		require.NoError(t, err)

		changed, err := actual.Confirm(later(actual, time.Minute))
		assert.ErrorIs(t, err, booking.ErrInvalidTransition)
		assert.False(t, changed)
		assert.Equal(t, booking.StatusCanceled, actual.Status())
	})

	t.Run("replacing items recomputes totals", func(t *testing.T) {
		actual, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)

		sel, err := booking.NewProgramSelection(builder.MassageProgram(), 90, 2)
		require.NoError(t, err)
		item, err := booking.NewItem("Bob", []booking.ProgramSelection{sel}, nil)
		require.NoError(t, err)
		items := []booking.Item{item}

		now := later(actual, time.Minute)
		require.NoError(t, actual.ApplyDetails(booking.DetailsPatch{Items: &items}, now))

		assert.Equal(t, int64(1400), actual.Totals().Subtotal)
		assert.Equal(t, now, actual.UpdatedAt())
		require.Len(t, actual.Items(), 1)
		assert.Equal(t, "Bob", actual.Items()[0].PersonName())
	})

	t.Run("empty item replacement is rejected", func(t *testing.T) {
		actual, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)

		items := []booking.Item{}
		err = actual.ApplyDetails(booking.DetailsPatch{Items: &items}, later(actual, time.Minute))
		assert.ErrorIs(t, err, booking.ErrNoItems)
	})

	t.Run("empty patch leaves updatedAt alone", func(t *testing.T) {
		actual, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)
		before := actual.UpdatedAt()

		require.NoError(t, actual.ApplyDetails(booking.DetailsPatch{}, later(actual, time.Minute)))
		assert.Equal(t, before, actual.UpdatedAt())
	})
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := builder.NewBookingBuilder()
			if tc.mutate != nil {
				tc.mutate(b)
			}
			actual, err := b.BuildDomain()
			if tc.errIs != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.errIs)
				assert.Nil(t, actual)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, actual)
		})
	}
}
