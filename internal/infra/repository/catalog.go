package repository

import (
	"context"
	"encoding/json"
	"log/slog"

	"treatment-booking/internal/domain/catalog"
	"treatment-booking/internal/infra"
	"treatment-booking/internal/infra/db"
	"treatment-booking/internal/infra/document"
	"treatment-booking/internal/pkg/pgconv"
)

const (
	upsertProgram = `INSERT INTO programs (id, doc) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc`
	upsertPackage = `INSERT INTO packages (id, doc) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc`
)

// CatalogRepository mirrors catalog records owned by the catalog service
// so bookings can freeze them into snapshots.
type CatalogRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewCatalogRepository(dbtx db.DBTX, logger *slog.Logger) *CatalogRepository {
	return &CatalogRepository{
		db:     dbtx,
		logger: logger,
	}
}

func (r *CatalogRepository) Seed(ctx context.Context, programs []catalog.Program, packages []catalog.Package) error {
	for _, p := range programs {
		raw, err := json.Marshal(document.FromProgram(p))
		if err != nil {
			return infra.WrapRepoErr(r.logger, infra.KindDecode, "failed to encode program", err)
		}
		if _, err := r.db.Exec(ctx, upsertProgram, pgconv.UUIDToPgtype(p.ID), raw); err != nil {
			return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to seed program", err)
		}
	}
	for _, p := range packages {
		raw, err := json.Marshal(document.FromPackage(p))
		if err != nil {
			return infra.WrapRepoErr(r.logger, infra.KindDecode, "failed to encode package", err)
		}
		if _, err := r.db.Exec(ctx, upsertPackage, pgconv.UUIDToPgtype(p.ID), raw); err != nil {
			return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to seed package", err)
		}
	}
	return nil
}
