//go:build unit || e2e

package builder

import (
	"time"

	"treatment-booking/internal/domain/booking"
	"treatment-booking/internal/domain/catalog"
	reqdto "treatment-booking/internal/handler/dto/request"
	"treatment-booking/internal/pkg/clock"
	"treatment-booking/internal/usecase/commands"
	"treatment-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingBuilder struct {
	ArrivalAt       time.Time
	ContactName     string
	ContactEmail    string
	ContactPhone    string
	Note            string
	PersonName      string
	Program         *catalog.Program
	DurationMinutes int
	ProgramQuantity int
	Package         *catalog.Package
	PackageQuantity int
	CreatedBy       *string
	Now             time.Time
}

func NewBookingBuilder() *BookingBuilder {
	program := MassageProgram()
	pkg := SpaDayPackage()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &BookingBuilder{
		ArrivalAt:       now.Add(72 * time.Hour),
		ContactName:     "Alice Martin",
		ContactEmail:    "alice@example.com",
		ContactPhone:    "+33 6 12 34 56 78",
		Note:            "Ground floor room please",
		PersonName:      "Alice Martin",
		Program:         &program,
		DurationMinutes: 60,
		ProgramQuantity: 1,
		Package:         &pkg,
		PackageQuantity: 1,
		Now:             now,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

// Build methods
func (b *BookingBuilder) BuildDomain() (*booking.Booking, error) {
	items, err := b.buildItems()
	if err != nil {
		return nil, err
	}
	contact, err := booking.NewContact(b.ContactName, b.ContactEmail, b.ContactPhone)
	if err != nil {
		return nil, err
	}
	services := &booking.Services{Clock: clock.NewMockClock(b.Now)}
	return booking.NewBooking(services, b.ArrivalAt, contact, booking.NewNote(b.Note), items, b.CreatedBy)
}

func (b *BookingBuilder) buildItems() ([]booking.Item, error) {
	var programs []booking.ProgramSelection
	if b.Program != nil {
		sel, err := booking.NewProgramSelection(*b.Program, b.DurationMinutes, b.ProgramQuantity)
		if err != nil {
			return nil, err
		}
		programs = append(programs, sel)
	}
	var packages []booking.PackageSelection
	if b.Package != nil {
		packages = append(packages, booking.NewPackageSelection(*b.Package, b.PackageQuantity))
	}
	item, err := booking.NewItem(b.PersonName, programs, packages)
	if err != nil {
		return nil, err
	}
	return []booking.Item{item}, nil
}

func (b *BookingBuilder) BuildCreateInput() commands.CreateBookingInput {
	return commands.CreateBookingInput{
		ArrivalAt: b.ArrivalAt,
		Contact: commands.ContactInput{
			Name:  b.ContactName,
			Email: b.ContactEmail,
			Phone: b.ContactPhone,
		},
		Note:  b.Note,
		Items: []commands.ItemInput{b.buildItemInput()},
	}
}

func (b *BookingBuilder) buildItemInput() commands.ItemInput {
	item := commands.ItemInput{PersonName: b.PersonName}
	if b.Program != nil {
		item.Programs = append(item.Programs, commands.ProgramLineInput{
			ProgramID:       b.Program.ID,
			DurationMinutes: b.DurationMinutes,
			Quantity:        b.ProgramQuantity,
		})
	}
	if b.Package != nil {
		item.Packages = append(item.Packages, commands.PackageLineInput{
			PackageID: b.Package.ID,
			Quantity:  b.PackageQuantity,
		})
	}
	return item
}

func (b *BookingBuilder) BuildCreateRequestDTO() reqdto.CreateBookingRequest {
	item := reqdto.BookingItemRequest{PersonName: b.PersonName}
	if b.Program != nil {
		item.Programs = append(item.Programs, reqdto.ProgramSelectionRequest{
			ProgramID:       b.Program.ID,
			DurationMinutes: b.DurationMinutes,
			Quantity:        b.ProgramQuantity,
		})
	}
	if b.Package != nil {
		item.Packages = append(item.Packages, reqdto.PackageSelectionRequest{
			PackageID: b.Package.ID,
			Quantity:  b.PackageQuantity,
		})
	}
	return reqdto.CreateBookingRequest{
		ArrivalAt: b.ArrivalAt,
		Contact: reqdto.ContactRequest{
			Name:  b.ContactName,
			Email: b.ContactEmail,
			Phone: b.ContactPhone,
		},
		Note:  b.Note,
		Items: []reqdto.BookingItemRequest{item},
	}
}

// BuildView renders the booking the way the read side returns it, with a
// fresh id.
func (b *BookingBuilder) BuildView() *queries.BookingView {
	bk, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	if err := bk.AssignID(uuid.New()); err != nil {
		panic(err)
	}
	return queries.ViewFromBooking(bk)
}

// Fluent builder methods
func (b *BookingBuilder) WithArrivalAt(t time.Time) *BookingBuilder {
	b.ArrivalAt = t
	return b
}

func (b *BookingBuilder) WithContactName(name string) *BookingBuilder {
	b.ContactName = name
	b.PersonName = name
	return b
}

func (b *BookingBuilder) WithContactEmail(email string) *BookingBuilder {
	b.ContactEmail = email
	return b
}

func (b *BookingBuilder) WithNote(note string) *BookingBuilder {
	b.Note = note
	return b
}

func (b *BookingBuilder) WithPersonName(name string) *BookingBuilder {
	b.PersonName = name
	return b
}

func (b *BookingBuilder) WithProgram(p *catalog.Program, durationMinutes, quantity int) *BookingBuilder {
	b.Program = p
	b.DurationMinutes = durationMinutes
	b.ProgramQuantity = quantity
	return b
}

func (b *BookingBuilder) WithPackage(p *catalog.Package, quantity int) *BookingBuilder {
	b.Package = p
	b.PackageQuantity = quantity
	return b
}

func (b *BookingBuilder) WithCreatedBy(subject string) *BookingBuilder {
	b.CreatedBy = &subject
	return b
}

func (b *BookingBuilder) WithNow(now time.Time) *BookingBuilder {
	b.Now = now
	return b
}
