package repository

import (
	"context"
	"encoding/json"
	"log/slog"

	"treatment-booking/internal/infra"
	"treatment-booking/internal/infra/db"
	"treatment-booking/internal/pkg/pgconv"
	"treatment-booking/internal/usecase/shared"
)

const insertOutboxEvent = `INSERT INTO booking_outbox (id, kind, booking_id, payload, run_at)
	VALUES ($1, $2, $3, $4, $5)`

type outboxPayload struct {
	BookingID  string `json:"bookingId"`
	Status     string `json:"status"`
	ArrivalAt  int64  `json:"arrivalAt"`
	Email      string `json:"email"`
	OccurredAt int64  `json:"occurredAt"`
}

// OutboxRepository queues booking events for the email and calendar
// workers in the same transaction as the booking write.
type OutboxRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewOutboxRepository(dbtx db.DBTX, logger *slog.Logger) *OutboxRepository {
	return &OutboxRepository{
		db:     dbtx,
		logger: logger,
	}
}

func (r *OutboxRepository) Enqueue(ctx context.Context, event shared.OutboxEvent) error {
	payload, err := json.Marshal(outboxPayload{
		BookingID:  event.BookingID.String(),
		Status:     event.Status.String(),
		ArrivalAt:  event.ArrivalAt.UnixMilli(),
		Email:      event.Email,
		OccurredAt: event.OccurredAt.UnixMilli(),
	})
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDecode, "failed to encode outbox payload", err)
	}

	_, err = r.db.Exec(ctx, insertOutboxEvent,
		pgconv.UUIDToPgtype(event.ID),
		string(event.Kind),
		pgconv.UUIDToPgtype(event.BookingID),
		payload,
		pgconv.TimeToPgtype(event.OccurredAt),
	)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to enqueue outbox event", err)
	}
	return nil
}
