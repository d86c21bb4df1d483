package commands

import (
	"context"
	"log/slog"
	"time"

	"treatment-booking/internal/domain/booking"
	"treatment-booking/internal/usecase/queries"
	"treatment-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type ContactInput struct {
	Name  string
	Email string
	Phone string
}

type ProgramLineInput struct {
	ProgramID       uuid.UUID
	DurationMinutes int
	Quantity        int
}

type PackageLineInput struct {
	PackageID uuid.UUID
	Quantity  int
}

type ItemInput struct {
	PersonName string
	Programs   []ProgramLineInput
	Packages   []PackageLineInput
}

type CreateBookingInput struct {
	ArrivalAt time.Time
	Contact   ContactInput
	Note      string
	Items     []ItemInput
}

// UpdateBookingInput is a partial update; nil fields are left untouched and
// Items, when set, replaces every item.
type UpdateBookingInput struct {
	ArrivalAt *time.Time
	Contact   *ContactInput
	Note      *string
	Items     *[]ItemInput
}

type BookingCommands interface {
	Create(ctx context.Context, in CreateBookingInput, createdBy *string) (*queries.BookingView, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, in UpdateBookingInput) (*queries.BookingView, error)
	Confirm(ctx context.Context, id uuid.UUID) (*queries.BookingView, error)
	Cancel(ctx context.Context, id uuid.UUID) (*queries.BookingView, error)
}

type bookingCommandsImpl struct {
	uow      shared.UnitOfWork
	services *booking.Services
	logger   *slog.Logger
}

func NewBookingCommands(uow shared.UnitOfWork, services *booking.Services, logger *slog.Logger) BookingCommands {
	return &bookingCommandsImpl{
		uow:      uow,
		services: services,
		logger:   logger,
	}
}

// Every command builds or reloads its booking inside the transaction
// function, so a retried attempt starts again from stored state.

func (c *bookingCommandsImpl) Create(ctx context.Context, in CreateBookingInput, createdBy *string) (*queries.BookingView, error) {
	var created *booking.Booking
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		contact, err := booking.NewContact(in.Contact.Name, in.Contact.Email, in.Contact.Phone)
		if err != nil {
			return err
		}
		items, err := resolveItems(ctx, tx.Reads(), in.Items)
		if err != nil {
			return err
		}
		b, err := booking.NewBooking(c.services, in.ArrivalAt, contact, booking.NewNote(in.Note), items, createdBy)
		if err != nil {
			return err
		}
		if _, err := tx.Bookings().Add(ctx, b); err != nil {
			return err
		}
		if err := tx.Outbox().Enqueue(ctx, shared.NewOutboxEvent(shared.EventBookingCreated, b, b.CreatedAt())); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("booking created",
		"booking_id", created.ID().String(),
		"grand_total", created.Totals().GrandTotal,
		"currency", created.Totals().Currency)
	return queries.ViewFromBooking(created), nil
}

func (c *bookingCommandsImpl) UpdateDetails(ctx context.Context, id uuid.UUID, in UpdateBookingInput) (*queries.BookingView, error) {
	var updated *booking.Booking
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Bookings().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b.IsCanceled() {
			return booking.ErrBookingCanceled.With("id", id.String())
		}

		patch, err := buildPatch(ctx, tx.Reads(), in)
		if err != nil {
			return err
		}
		updated = b
		if patch.IsEmpty() {
			return nil
		}

		if err := b.ApplyDetails(patch, c.services.Clock.Now()); err != nil {
			return err
		}
		if err := tx.Bookings().Update(ctx, b); err != nil {
			return err
		}
		return tx.Outbox().Enqueue(ctx, shared.NewOutboxEvent(shared.EventBookingUpdated, b, b.UpdatedAt()))
	})
	if err != nil {
		return nil, err
	}
	return queries.ViewFromBooking(updated), nil
}

func (c *bookingCommandsImpl) Confirm(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	return c.transition(ctx, id, booking.StatusConfirmed, shared.EventBookingConfirmed)
}

func (c *bookingCommandsImpl) Cancel(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	return c.transition(ctx, id, booking.StatusCanceled, shared.EventBookingCanceled)
}

// transition writes and emits an event only when the status actually
// changes.
func (c *bookingCommandsImpl) transition(
	ctx context.Context,
	id uuid.UUID,
	to booking.Status,
	kind shared.EventKind,
) (*queries.BookingView, error) {
	var (
		current *booking.Booking
		changed bool
	)
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Bookings().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		current = b

		changed, err = b.TransitionTo(to, c.services.Clock.Now())
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		if err := tx.Bookings().Update(ctx, b); err != nil {
			return err
		}
		return tx.Outbox().Enqueue(ctx, shared.NewOutboxEvent(kind, b, b.UpdatedAt()))
	})
	if err != nil {
		return nil, err
	}

	if changed {
		c.logger.Info("booking status changed",
			"booking_id", id.String(),
			"status", to.String())
	}
	return queries.ViewFromBooking(current), nil
}

func buildPatch(ctx context.Context, reads shared.CommandReads, in UpdateBookingInput) (booking.DetailsPatch, error) {
	patch := booking.DetailsPatch{ArrivalAt: in.ArrivalAt}

	if in.Contact != nil {
		contact, err := booking.NewContact(in.Contact.Name, in.Contact.Email, in.Contact.Phone)
		if err != nil {
			return booking.DetailsPatch{}, err
		}
		patch.Contact = &contact
	}
	if in.Note != nil {
		note := booking.NewNote(*in.Note)
		patch.Note = &note
	}
	if in.Items != nil {
		items, err := resolveItems(ctx, reads, *in.Items)
		if err != nil {
			return booking.DetailsPatch{}, err
		}
		patch.Items = &items
	}
	return patch, nil
}
