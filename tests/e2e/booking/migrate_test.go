//go:build e2e

package booking_test

import (
	"treatment-booking/internal/infra/db"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// TestMigrations
// =============================================================================

func (s *BookingSuite) TestMigrations() {
	s.Run("Normal case: rerunning migrations on a current schema is a no-op", func() {
		t := s.T()

		before, err := db.MigrationVersion(t.Context(), s.DB)
		require.NoError(t, err)
		require.Equal(t, int64(1), before)

		require.NoError(t, db.Migrate(t.Context(), s.DB))

		after, err := db.MigrationVersion(t.Context(), s.DB)
		require.NoError(t, err)
		require.Equal(t, before, after)

		var applied int
		require.NoError(t, s.DB.QueryRow(t.Context(),
			"SELECT count(*) FROM goose_db_version WHERE version_id = 1 AND is_applied").Scan(&applied))
		require.Equal(t, 1, applied)
	})
}
