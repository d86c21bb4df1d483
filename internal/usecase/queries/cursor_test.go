//go:build unit

package queries_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"treatment-booking/internal/pkg/errs"
	"treatment-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namePlan(t *testing.T) queries.Plan {
	t.Helper()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	plan, err := queries.BuildPlan(queries.ListParams{From: &from, SortBy: "name"})
	require.NoError(t, err)
	require.Equal(t, 3, plan.ExpectedPivotCount())
	return plan
}

func TestCursorRoundTrip(t *testing.T) {
	plan := namePlan(t)
	createdAt := time.Date(2026, 1, 5, 10, 30, 0, 123_000_000, time.UTC)
	id := uuid.New()

	token, err := queries.EncodeCursor(queries.Cursor{
		Version:   queries.CursorVersionV1,
		RangeKind: plan.Range.Kind,
		Pivots:    []any{createdAt.UnixMilli(), "alice martin", id.String()},
	})
	require.NoError(t, err)
	assert.NotContains(t, token, "=")

	cur, err := queries.DecodeCursor(token)
	require.NoError(t, err)
	pivots, err := cur.Revive(plan)
	require.NoError(t, err)

	require.Len(t, pivots, 3)
	assert.True(t, createdAt.Equal(pivots[0].(time.Time)))
	assert.Equal(t, "alice martin", pivots[1])
	assert.Equal(t, id, pivots[2])
}

func TestDecodeCursor_Alphabets(t *testing.T) {
	payload := []byte(`{"v":"v1","k":"none","p":["~~~>>>???",1]}`)

	for name, enc := range map[string]*base64.Encoding{
		"std padded":   base64.StdEncoding,
		"std raw":      base64.RawStdEncoding,
		"url padded":   base64.URLEncoding,
		"url unpadded": base64.RawURLEncoding,
	} {
		t.Run(name, func(t *testing.T) {
			cur, err := queries.DecodeCursor(enc.EncodeToString(payload))

			require.NoError(t, err)
			assert.Equal(t, queries.CursorVersionV1, cur.Version)
			assert.Len(t, cur.Pivots, 2)
		})
	}
}

func TestDecodeCursor_Malformed(t *testing.T) {
	for name, token := range map[string]string{
		"not base64":     "%%%",
		"not json":       base64.RawURLEncoding.EncodeToString([]byte("nope")),
		"missing pivots": base64.RawURLEncoding.EncodeToString([]byte(`{"v":"v1","k":"none"}`)),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := queries.DecodeCursor(token)

			assert.ErrorIs(t, err, queries.ErrInvalidPageToken)
			assert.Equal(t, 400, errs.StatusOf(err))
		})
	}
}

func TestRevive_Mismatch(t *testing.T) {
	plan := namePlan(t)

	t.Run("pivot count", func(t *testing.T) {
		cur := queries.Cursor{Version: "v1", RangeKind: plan.Range.Kind, Pivots: []any{"alice", uuid.NewString()}}

		_, err := cur.Revive(plan)

		require.ErrorIs(t, err, queries.ErrPageTokenMismatch)
		e, ok := errs.As(err)
		require.True(t, ok)
		assert.Equal(t, 3, e.Detail["expected"])
		assert.Equal(t, 2, e.Detail["received"])
	})

	t.Run("shorter chain without range names both counts", func(t *testing.T) {
		cur := queries.Cursor{Version: "v1", RangeKind: queries.RangeNone, Pivots: []any{int64(1767609000250), uuid.NewString()}}

		_, err := cur.Revive(plan)

		require.ErrorIs(t, err, queries.ErrPageTokenMismatch)
		e, ok := errs.As(err)
		require.True(t, ok)
		assert.Equal(t, 3, e.Detail["expected"])
		assert.Equal(t, 2, e.Detail["received"])
	})

	t.Run("ordering", func(t *testing.T) {
		cur := queries.Cursor{
			Version:   "v1",
			RangeKind: plan.Range.Kind,
			Ordering:  []queries.Field{queries.FieldCreatedAt, queries.FieldStatus, queries.FieldID},
			Pivots:    []any{1, "pending", uuid.NewString()},
		}

		_, err := cur.Revive(plan)

		require.ErrorIs(t, err, queries.ErrPageTokenMismatch)
		e, _ := errs.As(err)
		assert.Equal(t, plan.Ordering, e.Detail["expectedOrdering"])
	})

	t.Run("range kind", func(t *testing.T) {
		cur := queries.Cursor{Version: "v1", RangeKind: queries.RangeTextPrefix, Pivots: []any{1, "a", uuid.NewString()}}

		_, err := cur.Revive(plan)

		assert.ErrorIs(t, err, queries.ErrPageTokenMismatch)
	})

	t.Run("version", func(t *testing.T) {
		cur := queries.Cursor{Version: "v0", RangeKind: plan.Range.Kind, Pivots: []any{1, "a", uuid.NewString()}}

		_, err := cur.Revive(plan)

		assert.ErrorIs(t, err, queries.ErrPageTokenMismatch)
	})

	t.Run("id pivot is not a uuid", func(t *testing.T) {
		cur := queries.Cursor{Version: "v1", RangeKind: plan.Range.Kind, Pivots: []any{1, "a", "42"}}

		_, err := cur.Revive(plan)

		require.ErrorIs(t, err, queries.ErrInvalidPageToken)
		e, _ := errs.As(err)
		assert.Equal(t, 2, e.Detail["position"])
	})
}

func TestRevive_TimestampShapes(t *testing.T) {
	plan := namePlan(t)
	want := time.Date(2026, 1, 5, 10, 30, 0, 250_000_000, time.UTC)
	id := uuid.NewString()

	shapes := map[string]string{
		"epoch millis":         `1767609000250`,
		"iso string":           `"2026-01-05T11:30:00.25+01:00"`,
		"seconds object":       `{"seconds":1767609000,"nanoseconds":250000000}`,
		"firestore-ish object": `{"_seconds":1767609000,"_nanoseconds":250000000}`,
	}
	for name, raw := range shapes {
		t.Run(name, func(t *testing.T) {
			payload := `{"v":"v1","k":"dateRange","p":[` + raw + `,"alice","` + id + `"]}`
			token := base64.RawURLEncoding.EncodeToString([]byte(payload))

			cur, err := queries.DecodeCursor(token)
			require.NoError(t, err)
			pivots, err := cur.Revive(plan)
			require.NoError(t, err)

			got := pivots[0].(time.Time)
			assert.True(t, want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestNextCursor(t *testing.T) {
	plan := namePlan(t)
	view := &queries.BookingView{
		ID:        uuid.New(),
		CreatedAt: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		SearchKey: "alice",
	}

	cur := queries.NextCursor(view, plan)

	assert.Equal(t, queries.RangeDate, cur.RangeKind)
	assert.Equal(t, plan.Ordering, cur.Ordering)
	assert.Equal(t, []any{view.CreatedAt.UnixMilli(), "alice", view.ID.String()}, cur.Pivots)
	token, err := queries.EncodeCursor(cur)
	require.NoError(t, err)
	assert.False(t, strings.ContainsAny(token, "+/="))
}
