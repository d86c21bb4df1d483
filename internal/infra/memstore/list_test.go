//go:build unit

package memstore_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"treatment-booking/internal/domain/booking"
	"treatment-booking/internal/infra/memstore"
	"treatment-booking/internal/pkg/clock"
	"treatment-booking/internal/pkg/config"
	"treatment-booking/internal/pkg/errs"
	"treatment-booking/internal/usecase/commands"
	"treatment-booking/internal/usecase/queries"
	"treatment-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seeded struct {
	queries queries.BookingQueries
	ids     []uuid.UUID
}

// seed creates one booking per name, one minute apart.
func seed(t *testing.T, names ...string) seeded {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memstore.New(config.TxConfig{MaxRetries: 1, BaseBackoff: time.Millisecond}, logger)
	store.SeedPrograms(builder.CatalogPrograms()...)
	store.SeedPackages(builder.CatalogPackages()...)

	clk := clock.NewMockClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	cmds := commands.NewBookingCommands(store, &booking.Services{Clock: clk}, logger)

	out := seeded{queries: queries.NewBookingQueries(store)}
	for _, name := range names {
		v, err := cmds.Create(context.Background(), builder.NewBookingBuilder().WithContactName(name).BuildCreateInput(), nil)
		require.NoError(t, err)
		out.ids = append(out.ids, v.ID)
		clk.Add(time.Minute)
	}
	return out
}

func collect(t *testing.T, q queries.BookingQueries, params queries.ListParams) ([][]uuid.UUID, []bool) {
	t.Helper()
	var (
		pages   [][]uuid.UUID
		hasMore []bool
	)
	for {
		res, err := q.List(context.Background(), params)
		require.NoError(t, err)

		page := make([]uuid.UUID, len(res.Items))
		for i, v := range res.Items {
			page[i] = v.ID
		}
		pages = append(pages, page)
		hasMore = append(hasMore, res.HasMore)
		if !res.HasMore {
			assert.Empty(t, res.NextPageToken)
			return pages, hasMore
		}
		require.NotEmpty(t, res.NextPageToken)
		params.PageToken = res.NextPageToken
	}
}

func TestList_PaginatesNewestFirst(t *testing.T) {
	s := seed(t, "Anna", "Bruno", "Chloe", "David", "Emma")

	pages, hasMore := collect(t, s.queries, queries.ListParams{PageSize: 2})

	ids := s.ids
	assert.Equal(t, [][]uuid.UUID{{ids[4], ids[3]}, {ids[2], ids[1]}, {ids[0]}}, pages)
	assert.Equal(t, []bool{true, true, false}, hasMore)
}

func TestList_AscendingByName(t *testing.T) {
	s := seed(t, "emma", "Anna", "chloe", "Bruno", "david")

	pages, _ := collect(t, s.queries, queries.ListParams{PageSize: 3, SortBy: "name", Direction: "asc"})

	ids := s.ids
	assert.Equal(t, [][]uuid.UUID{{ids[1], ids[3], ids[2]}, {ids[4], ids[0]}}, pages)
}

func TestList_PrefixSearchIsCaseInsensitive(t *testing.T) {
	s := seed(t, "Alice Martin", "alicia Keys", "Bob Alison", "ALI Baba")

	res, err := s.queries.List(context.Background(), queries.ListParams{Q: "ali", SortBy: "name", Direction: "asc"})

	require.NoError(t, err)
	got := make([]uuid.UUID, len(res.Items))
	for i, v := range res.Items {
		got[i] = v.ID
	}
	assert.Equal(t, []uuid.UUID{s.ids[3], s.ids[0], s.ids[1]}, got)
	assert.Equal(t, queries.RangeTextPrefix, res.Meta.AppliedRange)
	assert.False(t, res.HasMore)
}

func TestList_PrefixSearchCoversHighCodePoints(t *testing.T) {
	s := seed(t, "Ali Khan", "Ali\U0001F600 Star", "Ali\uFF42 Wide", "Alj Other")

	res, err := s.queries.List(context.Background(), queries.ListParams{Q: "ali", SortBy: "name", Direction: "asc"})

	require.NoError(t, err)
	got := make([]uuid.UUID, len(res.Items))
	for i, v := range res.Items {
		got[i] = v.ID
	}
	// byte order: space < U+FF42 < U+1F600
	assert.Equal(t, []uuid.UUID{s.ids[0], s.ids[2], s.ids[1]}, got)
}

func TestList_DateRangeIsInclusive(t *testing.T) {
	s := seed(t, "a", "b", "c", "d")
	from := time.Date(2026, 3, 1, 9, 1, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 9, 2, 0, 0, time.UTC)

	res, err := s.queries.List(context.Background(), queries.ListParams{From: &from, To: &to})

	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, s.ids[2], res.Items[0].ID)
	assert.Equal(t, s.ids[1], res.Items[1].ID)
}

func TestList_TokenFromAnotherQueryIsRejected(t *testing.T) {
	s := seed(t, "a", "b", "c")

	first, err := s.queries.List(context.Background(), queries.ListParams{PageSize: 1})
	require.NoError(t, err)
	require.True(t, first.HasMore)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = s.queries.List(context.Background(), queries.ListParams{
		PageSize:  1,
		From:      &from,
		SortBy:    "name",
		PageToken: first.NextPageToken,
	})

	require.ErrorIs(t, err, queries.ErrPageTokenMismatch)
	e, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, 3, e.Detail["expected"])
	assert.Equal(t, 2, e.Detail["received"])
}

func TestList_EmptyStore(t *testing.T) {
	s := seed(t)

	res, err := s.queries.List(context.Background(), queries.ListParams{})

	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.False(t, res.HasMore)
}

func TestGetByID_NotFound(t *testing.T) {
	s := seed(t)

	_, err := s.queries.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, queries.ErrBookingNotFound)
}
