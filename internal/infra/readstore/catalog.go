package readstore

import (
	"context"
	"encoding/json"
	"log/slog"

	"treatment-booking/internal/domain/catalog"
	"treatment-booking/internal/infra"
	"treatment-booking/internal/infra/db"
	"treatment-booking/internal/infra/document"

	"github.com/google/uuid"
)

// CatalogReadStore batch-reads catalog records. Unknown ids are left out of
// the result.
type CatalogReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewCatalogReadStore(dbtx db.DBTX, logger *slog.Logger) *CatalogReadStore {
	return &CatalogReadStore{
		db:     dbtx,
		logger: logger,
	}
}

func (s *CatalogReadStore) ProgramsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Program, error) {
	out := make(map[uuid.UUID]catalog.Program, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	err := s.scanDocs(ctx, `SELECT doc FROM programs WHERE id = ANY($1)`, ids, func(raw []byte) error {
		var doc document.Program
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		p, err := doc.ToDomain()
		if err != nil {
			return err
		}
		out[p.ID] = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CatalogReadStore) PackagesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Package, error) {
	out := make(map[uuid.UUID]catalog.Package, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	err := s.scanDocs(ctx, `SELECT doc FROM packages WHERE id = ANY($1)`, ids, func(raw []byte) error {
		var doc document.Package
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		p, err := doc.ToDomain()
		if err != nil {
			return err
		}
		out[p.ID] = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CatalogReadStore) scanDocs(ctx context.Context, sql string, ids []uuid.UUID, fn func(raw []byte) error) error {
	rows, err := s.db.Query(ctx, sql, ids)
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to read catalog", err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to scan catalog record", err)
		}
		if err := fn(raw); err != nil {
			return infra.WrapRepoErr(s.logger, infra.KindDecode, "failed to decode catalog record", err)
		}
	}
	if err := rows.Err(); err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to iterate catalog records", err)
	}
	return nil
}
