// Package document holds the stored shape of bookings and catalog records.
// The same struct is written as a JSONB column by the postgres adapter, as
// BSON by the mongodb adapter and kept as-is by the in-memory store.
package document

import (
	"time"

	"treatment-booking/internal/domain/booking"
	"treatment-booking/internal/pkg/errs"
	"treatment-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type Snapshot struct {
	Name            string `json:"name" bson:"name"`
	UnitPrice       int64  `json:"unitPrice" bson:"unitPrice"`
	DurationMinutes int    `json:"durationMinutes" bson:"durationMinutes"`
	Currency        string `json:"currency" bson:"currency"`
}

type ProgramSelection struct {
	ProgramID string   `json:"programId" bson:"programId"`
	Quantity  int      `json:"quantity" bson:"quantity"`
	Snapshot  Snapshot `json:"snapshot" bson:"snapshot"`
}

type PackageSelection struct {
	PackageID string   `json:"packageId" bson:"packageId"`
	Quantity  int      `json:"quantity,omitempty" bson:"quantity,omitempty"`
	Snapshot  Snapshot `json:"snapshot" bson:"snapshot"`
}

type Item struct {
	PersonName string             `json:"personName" bson:"personName"`
	Programs   []ProgramSelection `json:"programs" bson:"programs"`
	Packages   []PackageSelection `json:"packages" bson:"packages"`
}

type Contact struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
}

type Totals struct {
	Subtotal      int64  `json:"subtotal" bson:"subtotal"`
	GrandTotal    int64  `json:"grandTotal" bson:"grandTotal"`
	Currency      string `json:"currency" bson:"currency"`
	MixedCurrency bool   `json:"mixedCurrency,omitempty" bson:"mixedCurrency,omitempty"`
}

type Booking struct {
	ID        string    `json:"id" bson:"_id"`
	Status    string    `json:"status" bson:"status"`
	SearchKey string    `json:"searchKey" bson:"searchKey"`
	ArrivalAt time.Time `json:"arrivalAt" bson:"arrivalAt"`
	Contact   Contact   `json:"contact" bson:"contact"`
	Note      string    `json:"note,omitempty" bson:"note,omitempty"`
	Items     []Item    `json:"items" bson:"items"`
	Totals    Totals    `json:"totals" bson:"totals"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
	CreatedBy *string   `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	Version   int64     `json:"version" bson:"version"`
}

// FromDomain captures the booking as stored at version b.NextVersion().
func FromDomain(b *booking.Booking) Booking {
	contact := b.Contact()
	totals := b.Totals()
	d := Booking{
		ID:        b.ID().String(),
		Status:    b.Status().String(),
		SearchKey: b.SearchKey(),
		ArrivalAt: b.ArrivalAt(),
		Contact:   Contact{Name: contact.Name(), Email: contact.Email(), Phone: contact.Phone()},
		Note:      b.Note().String(),
		Totals: Totals{
			Subtotal:      totals.Subtotal,
			GrandTotal:    totals.GrandTotal,
			Currency:      totals.Currency,
			MixedCurrency: totals.MixedCurrency,
		},
		CreatedAt: b.CreatedAt(),
		UpdatedAt: b.UpdatedAt(),
		CreatedBy: b.CreatedBy(),
		Version:   b.NextVersion(),
	}
	for _, it := range b.Items() {
		item := Item{PersonName: it.PersonName(), Programs: []ProgramSelection{}, Packages: []PackageSelection{}}
		for _, p := range it.Programs() {
			item.Programs = append(item.Programs, ProgramSelection{
				ProgramID: p.ProgramID().String(),
				Quantity:  p.Quantity(),
				Snapshot:  fromSnapshot(p.Snapshot()),
			})
		}
		for _, p := range it.Packages() {
			item.Packages = append(item.Packages, PackageSelection{
				PackageID: p.PackageID().String(),
				Quantity:  p.Quantity(),
				Snapshot:  fromSnapshot(p.Snapshot()),
			})
		}
		d.Items = append(d.Items, item)
	}
	return d
}

func fromSnapshot(s booking.Snapshot) Snapshot {
	return Snapshot{
		Name:            s.Name(),
		UnitPrice:       s.UnitPrice(),
		DurationMinutes: s.DurationMinutes(),
		Currency:        s.Currency(),
	}
}

func (s Snapshot) toDomain() booking.Snapshot {
	return booking.NewSnapshot(s.Name, s.UnitPrice, s.DurationMinutes, s.Currency)
}

func (d Booking) ToDomain() (*booking.Booking, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, errs.Wrap(err, "booking id")
	}
	status, err := booking.ParseStatus(d.Status)
	if err != nil {
		return nil, err
	}

	items := make([]booking.Item, 0, len(d.Items))
	for _, it := range d.Items {
		programs := make([]booking.ProgramSelection, 0, len(it.Programs))
		for _, p := range it.Programs {
			pid, perr := uuid.Parse(p.ProgramID)
			if perr != nil {
				return nil, errs.Wrap(perr, "program id")
			}
			programs = append(programs, booking.ReconstructProgramSelection(pid, p.Quantity, p.Snapshot.toDomain()))
		}
		packages := make([]booking.PackageSelection, 0, len(it.Packages))
		for _, p := range it.Packages {
			pid, perr := uuid.Parse(p.PackageID)
			if perr != nil {
				return nil, errs.Wrap(perr, "package id")
			}
			packages = append(packages, booking.ReconstructPackageSelection(pid, p.Quantity, p.Snapshot.toDomain()))
		}
		items = append(items, booking.ReconstructItem(it.PersonName, programs, packages))
	}

	return booking.ReconstructBooking(booking.ReconstructParams{
		ID:        id,
		Status:    status,
		ArrivalAt: d.ArrivalAt.UTC(),
		Contact:   booking.ReconstructContact(d.Contact.Name, d.Contact.Email, d.Contact.Phone),
		Note:      booking.NewNote(d.Note),
		Items:     items,
		Totals: booking.Totals{
			Subtotal:      d.Totals.Subtotal,
			GrandTotal:    d.Totals.GrandTotal,
			Currency:      d.Totals.Currency,
			MixedCurrency: d.Totals.MixedCurrency,
		},
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
		CreatedBy: d.CreatedBy,
		Version:   d.Version,
	}), nil
}

func (d Booking) ToView() (*queries.BookingView, error) {
	b, err := d.ToDomain()
	if err != nil {
		return nil, err
	}
	v := queries.ViewFromBooking(b)
	v.SearchKey = d.SearchKey
	return v, nil
}

// Value returns the stored value of a logical listing field in the type
// cursor pivots revive to, with ids as their canonical string.
func (d Booking) Value(f queries.Field) any {
	switch f {
	case queries.FieldCreatedAt:
		return d.CreatedAt
	case queries.FieldUpdatedAt:
		return d.UpdatedAt
	case queries.FieldArrivalAt:
		return d.ArrivalAt
	case queries.FieldName:
		return d.SearchKey
	case queries.FieldStatus:
		return d.Status
	case queries.FieldID:
		return d.ID
	default:
		return nil
	}
}
