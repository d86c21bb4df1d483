package repository

import (
	"context"
	"encoding/json"
	"log/slog"

	"treatment-booking/internal/domain/booking"
	"treatment-booking/internal/infra"
	"treatment-booking/internal/infra/db"
	"treatment-booking/internal/infra/document"
	"treatment-booking/internal/pkg/pgconv"
	"treatment-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	insertBooking = `INSERT INTO bookings
		(id, status, search_key, arrival_at, created_at, updated_at, created_by, version, doc)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	updateBooking = `UPDATE bookings SET
		status = $2, search_key = $3, arrival_at = $4, updated_at = $5, version = $6, doc = $7
		WHERE id = $1 AND version = $8`

	selectBookingForUpdate = `SELECT doc FROM bookings WHERE id = $1 FOR UPDATE`
)

type BookingRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewBookingRepository(dbtx db.DBTX, logger *slog.Logger) *BookingRepository {
	return &BookingRepository{
		db:     dbtx,
		logger: logger,
	}
}

func (r *BookingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	var raw []byte
	if err := r.db.QueryRow(ctx, selectBookingForUpdate, id).Scan(&raw); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, shared.ErrBookingNotFound.With("id", id.String())
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to lock booking", err)
	}

	var doc document.Booking
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDecode, "failed to decode booking document", err)
	}
	b, err := doc.ToDomain()
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDecode, "failed to map booking document", err)
	}
	return b, nil
}

// Add assigns a fresh id and inserts the booking at version 1.
func (r *BookingRepository) Add(ctx context.Context, b *booking.Booking) (uuid.UUID, error) {
	id := uuid.New()
	if err := b.AssignID(id); err != nil {
		return uuid.Nil, err
	}

	doc := document.FromDomain(b)
	raw, err := json.Marshal(doc)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr(r.logger, infra.KindDecode, "failed to encode booking document", err)
	}

	_, err = r.db.Exec(ctx, insertBooking,
		pgconv.UUIDToPgtype(id),
		doc.Status,
		doc.SearchKey,
		pgconv.TimeToPgtype(doc.ArrivalAt),
		pgconv.TimeToPgtype(doc.CreatedAt),
		pgconv.TimeToPgtype(doc.UpdatedAt),
		pgconv.StringPtrToPgtype(doc.CreatedBy),
		doc.Version,
		raw,
	)
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return uuid.Nil, infra.WrapRepoErr(r.logger, infra.KindDuplicateKey, "booking id collision", err)
		}
		return uuid.Nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to insert booking", err)
	}

	b.Committed(doc.Version)
	return id, nil
}

func (r *BookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	doc := document.FromDomain(b)
	raw, err := json.Marshal(doc)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDecode, "failed to encode booking document", err)
	}

	tag, err := r.db.Exec(ctx, updateBooking,
		pgconv.UUIDToPgtype(b.ID()),
		doc.Status,
		doc.SearchKey,
		pgconv.TimeToPgtype(doc.ArrivalAt),
		pgconv.TimeToPgtype(doc.UpdatedAt),
		doc.Version,
		raw,
		b.Version(),
	)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrWriteConflict.With("id", b.ID().String())
	}

	b.Committed(doc.Version)
	return nil
}
