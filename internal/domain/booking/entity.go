package booking

import (
	"time"

	"treatment-booking/internal/pkg/clock"
	"treatment-booking/internal/pkg/errs"
	"treatment-booking/internal/pkg/patch"
	"treatment-booking/internal/pkg/textkey"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus          = errs.InvalidArgument("invalid_status", "unknown booking status")
	ErrInvalidTransition      = errs.Conflict("invalid_transition", "booking status transition is not allowed")
	ErrBookingCanceled        = errs.Conflict("booking_canceled", "canceled booking cannot be modified")
	ErrNoItems                = errs.InvalidArgument("no_items", "booking needs at least one item")
	ErrEmptyItem              = errs.InvalidArgument("empty_item", "booking item needs at least one program or package")
	ErrMissingPersonName      = errs.InvalidArgument("missing_person_name", "booking item needs a person name")
	ErrMissingContactName     = errs.InvalidArgument("missing_contact_name", "contact name is required")
	ErrMissingContactEmail    = errs.InvalidArgument("missing_contact_email", "contact email is required")
	ErrMissingArrival         = errs.InvalidArgument("missing_arrival", "arrival time is required")
	ErrInvalidQuantity        = errs.InvalidArgument("invalid_quantity", "program quantity must be at least 1")
	ErrDurationOptionNotFound = errs.Unprocessable("duration_option_not_found", "program has no option with the requested duration")
	ErrIDAlreadyAssigned      = errs.Internal("id_already_assigned", "booking id is already assigned")
)

type Services struct {
	Clock clock.Clock
}

type Booking struct {
	id        uuid.UUID
	status    Status
	arrivalAt time.Time
	contact   Contact
	note      Note
	items     []Item
	totals    Totals
	createdAt time.Time
	updatedAt time.Time
	createdBy *string
	version   int64
}

// NewBooking starts a pending booking. The id stays nil until the store
// assigns one.
func NewBooking(
	services *Services,
	arrivalAt time.Time,
	contact Contact,
	note Note,
	items []Item,
	createdBy *string,
) (*Booking, error) {
	if arrivalAt.IsZero() {
		return nil, ErrMissingArrival
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	now := stamp(services.Clock.Now())
	return &Booking{
		status:    StatusPending,
		arrivalAt: stamp(arrivalAt),
		contact:   contact,
		note:      note,
		items:     append([]Item(nil), items...),
		totals:    ComputeTotals(items),
		createdAt: now,
		updatedAt: now,
		createdBy: createdBy,
	}, nil
}

type ReconstructParams struct {
	ID        uuid.UUID
	Status    Status
	ArrivalAt time.Time
	Contact   Contact
	Note      Note
	Items     []Item
	Totals    Totals
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy *string
	Version   int64
}

func ReconstructBooking(p ReconstructParams) *Booking {
	return &Booking{
		id:        p.ID,
		status:    p.Status,
		arrivalAt: p.ArrivalAt,
		contact:   p.Contact,
		note:      p.Note,
		items:     append([]Item(nil), p.Items...),
		totals:    p.Totals,
		createdAt: p.CreatedAt,
		updatedAt: p.UpdatedAt,
		createdBy: p.CreatedBy,
		version:   p.Version,
	}
}

func (b *Booking) AssignID(id uuid.UUID) error {
	if b.id != uuid.Nil {
		return ErrIDAlreadyAssigned.With("id", b.id.String())
	}
	b.id = id
	return nil
}

// TransitionTo moves the booking to status `to`. Staying in the current
// status is a no-op and reports changed=false.
func (b *Booking) TransitionTo(to Status, now time.Time) (bool, error) {
	if err := AssertTransition(b.status, to); err != nil {
		return false, err
	}
	if b.status == to {
		return false, nil
	}
	b.status = to
	b.updatedAt = stamp(now)
	return true, nil
}

func (b *Booking) Confirm(now time.Time) (bool, error) {
	return b.TransitionTo(StatusConfirmed, now)
}

func (b *Booking) Cancel(now time.Time) (bool, error) {
	return b.TransitionTo(StatusCanceled, now)
}

// DetailsPatch holds the mutable fields; nil means untouched. Items are
// replaced wholesale.
type DetailsPatch struct {
	ArrivalAt *time.Time
	Contact   *Contact
	Note      *Note
	Items     *[]Item
}

func (p DetailsPatch) IsEmpty() bool {
	return p.ArrivalAt == nil && p.Contact == nil && p.Note == nil && p.Items == nil
}

func (b *Booking) ApplyDetails(p DetailsPatch, now time.Time) error {
	if b.IsCanceled() {
		return ErrBookingCanceled.With("id", b.id.String())
	}
	if p.IsEmpty() {
		return nil
	}

	if p.ArrivalAt != nil {
		if p.ArrivalAt.IsZero() {
			return ErrMissingArrival
		}
		b.arrivalAt = stamp(*p.ArrivalAt)
	}
	patch.Assign(&b.contact, p.Contact)
	patch.Assign(&b.note, p.Note)
	if p.Items != nil {
		items := *p.Items
		if len(items) == 0 {
			return ErrNoItems
		}
		b.items = append([]Item(nil), items...)
		b.totals = ComputeTotals(b.items)
	}
	b.updatedAt = stamp(now)
	return nil
}

// NextVersion is the version a store writes when persisting the booking;
// the current version guards the write.
func (b *Booking) NextVersion() int64 {
	return b.version + 1
}

// Committed records the version a store wrote.
func (b *Booking) Committed(version int64) {
	b.version = version
}

func (b *Booking) IsCanceled() bool {
	return b.status == StatusCanceled
}

// SearchKey is the case-folded contact name used for prefix search and
// name ordering.
func (b *Booking) SearchKey() string {
	return textkey.Fold(b.contact.name)
}

func (b *Booking) ID() uuid.UUID        { return b.id }
func (b *Booking) Status() Status       { return b.status }
func (b *Booking) ArrivalAt() time.Time { return b.arrivalAt }
func (b *Booking) Contact() Contact     { return b.contact }
func (b *Booking) Note() Note           { return b.note }
func (b *Booking) Items() []Item        { return append([]Item(nil), b.items...) }
func (b *Booking) Totals() Totals       { return b.totals }
func (b *Booking) CreatedAt() time.Time { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }
func (b *Booking) CreatedBy() *string   { return b.createdBy }
func (b *Booking) Version() int64       { return b.version }

// Timestamps are kept at millisecond precision so cursor pivots, which
// travel as epoch milliseconds, compare exactly against stored values.
func stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
