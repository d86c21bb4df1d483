package shared

import (
	"context"
	"time"

	"treatment-booking/internal/domain/booking"
	"treatment-booking/internal/domain/catalog"
	"treatment-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound = errs.NotFound("booking_not_found", "booking not found")
	// ErrWriteConflict means another transaction changed the booking first.
	// Units of work retry on it; once retries run out it surfaces as a
	// server fault.
	ErrWriteConflict = errs.Unavailable("write_conflict", "booking was modified concurrently")
)

type UnitOfWork interface {
	// Within: one atomic read-modify-write, retried on serialization conflicts
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Bookings() BookingRepository
	Outbox() OutboxRepository
	Reads() CommandReads
}

// CommandReads are catalog lookups made inside the writing transaction.
// Ids that do not exist are absent from the returned maps.
type CommandReads interface {
	ProgramsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Program, error)
	PackagesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Package, error)
}

type BookingRepository interface {
	// GetForUpdate re-reads the booking and holds it against concurrent
	// writers until the transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	// Add stores a new booking and returns the id the store assigned.
	Add(ctx context.Context, b *booking.Booking) (uuid.UUID, error)
	// Update writes the booking if its stored version still equals
	// b.Version(), else ErrWriteConflict.
	Update(ctx context.Context, b *booking.Booking) error
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
}

type EventKind string

const (
	EventBookingCreated   EventKind = "booking.created"
	EventBookingUpdated   EventKind = "booking.updated"
	EventBookingConfirmed EventKind = "booking.confirmed"
	EventBookingCanceled  EventKind = "booking.canceled"
)

// OutboxEvent is picked up by the email and calendar workers, which live
// outside this service.
type OutboxEvent struct {
	ID         uuid.UUID
	Kind       EventKind
	BookingID  uuid.UUID
	Status     booking.Status
	ArrivalAt  time.Time
	Email      string
	OccurredAt time.Time
}

func NewOutboxEvent(kind EventKind, b *booking.Booking, now time.Time) OutboxEvent {
	return OutboxEvent{
		ID:         uuid.New(),
		Kind:       kind,
		BookingID:  b.ID(),
		Status:     b.Status(),
		ArrivalAt:  b.ArrivalAt(),
		Email:      b.Contact().Email(),
		OccurredAt: now.UTC(),
	}
}
