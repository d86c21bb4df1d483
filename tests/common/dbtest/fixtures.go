//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"treatment-booking/internal/infra/repository"
	"treatment-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// SeedReferenceData mirrors the builder catalog into programs/packages.
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()
	repo := repository.NewCatalogRepository(pool, slog.Default())
	return repo.Seed(ctx, builder.CatalogPrograms(), builder.CatalogPackages())
}

func CountOutboxEvents(t *testing.T, db DBLike, bookingID uuid.UUID) map[string]int {
	t.Helper()

	rows, err := db.Query(context.Background(),
		"SELECT kind, count(*) FROM booking_outbox WHERE booking_id = $1 GROUP BY kind", bookingID)
	require.NoError(t, err)
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var kind string
		var n int
		require.NoError(t, rows.Scan(&kind, &n))
		out[kind] = n
	}
	require.NoError(t, rows.Err())
	return out
}

// bookingTables lists every table a test may write to; schema_migrations is kept.
var bookingTables = []string{"booking_outbox", "bookings", "packages", "programs"}

// ResetDB empties the booking tables and reseeds the builder catalog.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := pool.Exec(ctx, "TRUNCATE "+strings.Join(bookingTables, ", ")+" CASCADE"); err != nil {
		return fmt.Errorf("failed to truncate booking tables: %w", err)
	}
	return SeedReferenceData(pool)
}
