//go:build unit

package queries_test

import (
	"testing"
	"time"

	"treatment-booking/internal/domain/booking"
	"treatment-booking/internal/pkg/errs"
	"treatment-booking/internal/pkg/textkey"
	"treatment-booking/internal/usecase/queries"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlan(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name         string
		params       queries.ListParams
		wantRange    queries.RangeKind
		wantOrdering []queries.Field
		wantNotices  []string
	}{
		{
			name:         "defaults",
			params:       queries.ListParams{},
			wantRange:    queries.RangeNone,
			wantOrdering: []queries.Field{queries.FieldCreatedAt, queries.FieldID},
		},
		{
			name:         "sort by arrival without range",
			params:       queries.ListParams{SortBy: "arrivalAt"},
			wantRange:    queries.RangeNone,
			wantOrdering: []queries.Field{queries.FieldArrivalAt, queries.FieldID},
		},
		{
			name:         "date range sorted by name puts the range field first",
			params:       queries.ListParams{From: &from, To: &to, SortBy: "name"},
			wantRange:    queries.RangeDate,
			wantOrdering: []queries.Field{queries.FieldCreatedAt, queries.FieldName, queries.FieldID},
		},
		{
			name:         "date range sorted by its own field is not repeated",
			params:       queries.ListParams{From: &from},
			wantRange:    queries.RangeDate,
			wantOrdering: []queries.Field{queries.FieldCreatedAt, queries.FieldID},
		},
		{
			name:         "q takes precedence over dates",
			params:       queries.ListParams{Q: "ali", From: &from, To: &to},
			wantRange:    queries.RangeTextPrefix,
			wantOrdering: []queries.Field{queries.FieldName, queries.FieldCreatedAt, queries.FieldID},
			wantNotices:  []string{queries.NoticeDateFilterIgnored},
		},
		{
			name:         "q sorted by name",
			params:       queries.ListParams{Q: "ali", SortBy: "name"},
			wantRange:    queries.RangeTextPrefix,
			wantOrdering: []queries.Field{queries.FieldName, queries.FieldID},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := queries.BuildPlan(tc.params)

			require.NoError(t, err)
			assert.Equal(t, tc.wantRange, plan.Range.Kind)
			if diff := cmp.Diff(tc.wantOrdering, plan.Ordering); diff != "" {
				t.Errorf("ordering mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, len(tc.wantOrdering), plan.ExpectedPivotCount())
			assert.Equal(t, tc.wantNotices, plan.Notices)
		})
	}
}

func TestBuildPlan_TextPrefixBounds(t *testing.T) {
	plan, err := queries.BuildPlan(queries.ListParams{Q: "  ALIce "})

	require.NoError(t, err)
	assert.Equal(t, queries.FieldName, plan.Range.Field)
	assert.Equal(t, "alice", plan.Range.Lower)
	assert.Equal(t, "alice"+textkey.PrefixSentinel, plan.Range.Upper)
}

func TestBuildPlan_DateRangeIsUTC(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	from := time.Date(2026, 1, 1, 1, 0, 0, 0, paris)

	plan, err := queries.BuildPlan(queries.ListParams{From: &from})

	require.NoError(t, err)
	require.NotNil(t, plan.Range.From)
	assert.Nil(t, plan.Range.To)
	assert.Equal(t, time.UTC, plan.Range.From.Location())
	assert.True(t, plan.Range.From.Equal(from))
}

func TestBuildPlan_Statuses(t *testing.T) {
	t.Run("duplicates are removed", func(t *testing.T) {
		plan, err := queries.BuildPlan(queries.ListParams{Statuses: []string{"pending", " pending", "canceled"}})

		require.NoError(t, err)
		assert.Equal(t, []booking.Status{booking.StatusPending, booking.StatusCanceled}, plan.Statuses)
		assert.Empty(t, plan.Notices)
	})

	t.Run("more than ten values are truncated with a notice", func(t *testing.T) {
		values := make([]string, 11)
		for i := range values {
			values[i] = "pending"
		}
		values[10] = "not-a-status"

		plan, err := queries.BuildPlan(queries.ListParams{Statuses: values})

		require.NoError(t, err)
		assert.Equal(t, []booking.Status{booking.StatusPending}, plan.Statuses)
		assert.Equal(t, []string{queries.NoticeStatusTruncated}, plan.Notices)
	})

	t.Run("unknown status is a client error", func(t *testing.T) {
		_, err := queries.BuildPlan(queries.ListParams{Statuses: []string{"archived"}})

		assert.ErrorIs(t, err, booking.ErrInvalidStatus)
		assert.True(t, errs.IsClient(err))
	})
}

func TestBuildPlan_Errors(t *testing.T) {
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)

	testCases := []struct {
		name   string
		params queries.ListParams
		errIs  error
	}{
		{name: "sort field outside the whitelist", params: queries.ListParams{SortBy: "email"}, errIs: queries.ErrInvalidSortField},
		{name: "unknown direction", params: queries.ListParams{Direction: "sideways"}, errIs: queries.ErrInvalidSortDirection},
		{name: "from after to", params: queries.ListParams{From: &from, To: &to}, errIs: queries.ErrInvalidDateRange},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := queries.BuildPlan(tc.params)

			assert.ErrorIs(t, err, tc.errIs)
			assert.Equal(t, 400, errs.StatusOf(err))
		})
	}
}

func TestValidatePageSize(t *testing.T) {
	assert.Equal(t, queries.DefaultPageSize, queries.ValidatePageSize(0))
	assert.Equal(t, queries.DefaultPageSize, queries.ValidatePageSize(-3))
	assert.Equal(t, 7, queries.ValidatePageSize(7))
	assert.Equal(t, queries.MaxPageSize, queries.ValidatePageSize(500))
}
