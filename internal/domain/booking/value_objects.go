package booking

import (
	"strings"

	"treatment-booking/internal/domain/catalog"

	"github.com/google/uuid"
)

// Snapshot freezes catalog data at selection time so later catalog edits do
// not reprice historical bookings.
type Snapshot struct {
	name            string
	unitPrice       int64
	durationMinutes int
	currency        string
}

func NewSnapshot(name string, unitPrice int64, durationMinutes int, currency string) Snapshot {
	return Snapshot{
		name:            name,
		unitPrice:       unitPrice,
		durationMinutes: durationMinutes,
		currency:        currency,
	}
}

func (s Snapshot) Name() string         { return s.name }
func (s Snapshot) UnitPrice() int64     { return s.unitPrice }
func (s Snapshot) DurationMinutes() int { return s.durationMinutes }
func (s Snapshot) Currency() string     { return s.currency }

type ProgramSelection struct {
	programID uuid.UUID
	quantity  int
	snapshot  Snapshot
}

// NewProgramSelection snapshots the program option whose duration matches
// exactly; there is no nearest-match fallback.
func NewProgramSelection(p catalog.Program, durationMinutes, quantity int) (ProgramSelection, error) {
	if quantity < 1 {
		return ProgramSelection{}, ErrInvalidQuantity.
			With("programId", p.ID.String()).
			With("quantity", quantity)
	}
	opt, ok := p.Option(durationMinutes)
	if !ok {
		return ProgramSelection{}, ErrDurationOptionNotFound.
			With("programId", p.ID.String()).
			With("durationMinutes", durationMinutes).
			With("available", p.Durations())
	}
	return ProgramSelection{
		programID: p.ID,
		quantity:  quantity,
		snapshot:  NewSnapshot(p.Name, opt.Price, opt.DurationMinutes, p.Currency),
	}, nil
}

func ReconstructProgramSelection(programID uuid.UUID, quantity int, snapshot Snapshot) ProgramSelection {
	return ProgramSelection{programID: programID, quantity: quantity, snapshot: snapshot}
}

func (s ProgramSelection) ProgramID() uuid.UUID { return s.programID }
func (s ProgramSelection) Quantity() int        { return s.quantity }
func (s ProgramSelection) Snapshot() Snapshot   { return s.snapshot }

type PackageSelection struct {
	packageID uuid.UUID
	quantity  int
	snapshot  Snapshot
}

func NewPackageSelection(p catalog.Package, quantity int) PackageSelection {
	return PackageSelection{
		packageID: p.ID,
		quantity:  quantity,
		snapshot:  NewSnapshot(p.Name, p.Price, p.DurationMinutes, p.Currency),
	}
}

func ReconstructPackageSelection(packageID uuid.UUID, quantity int, snapshot Snapshot) PackageSelection {
	return PackageSelection{packageID: packageID, quantity: quantity, snapshot: snapshot}
}

func (s PackageSelection) PackageID() uuid.UUID { return s.packageID }
func (s PackageSelection) Snapshot() Snapshot   { return s.snapshot }

// Quantity defaults to 1 when none was given.
func (s PackageSelection) Quantity() int {
	if s.quantity < 1 {
		return 1
	}
	return s.quantity
}

// Item groups the selections made for one person.
type Item struct {
	personName string
	programs   []ProgramSelection
	packages   []PackageSelection
}

func NewItem(personName string, programs []ProgramSelection, packages []PackageSelection) (Item, error) {
	personName = strings.TrimSpace(personName)
	if personName == "" {
		return Item{}, ErrMissingPersonName
	}
	if len(programs) == 0 && len(packages) == 0 {
		return Item{}, ErrEmptyItem.With("personName", personName)
	}
	return ReconstructItem(personName, programs, packages), nil
}

func ReconstructItem(personName string, programs []ProgramSelection, packages []PackageSelection) Item {
	return Item{
		personName: personName,
		programs:   append([]ProgramSelection(nil), programs...),
		packages:   append([]PackageSelection(nil), packages...),
	}
}

func (i Item) PersonName() string { return i.personName }

func (i Item) Programs() []ProgramSelection {
	return append([]ProgramSelection(nil), i.programs...)
}

func (i Item) Packages() []PackageSelection {
	return append([]PackageSelection(nil), i.packages...)
}

type Contact struct {
	name  string
	email string
	phone string
}

func NewContact(name, email, phone string) (Contact, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return Contact{}, ErrMissingContactName
	}
	if email == "" {
		return Contact{}, ErrMissingContactEmail
	}
	return Contact{name: name, email: email, phone: strings.TrimSpace(phone)}, nil
}

func ReconstructContact(name, email, phone string) Contact {
	return Contact{name: name, email: email, phone: phone}
}

func (c Contact) Name() string  { return c.name }
func (c Contact) Email() string { return c.email }
func (c Contact) Phone() string { return c.phone }

type Note struct {
	value string
}

func NewNote(value string) Note {
	return Note{value: strings.TrimSpace(value)}
}

func (n Note) String() string {
	return n.value
}

func (n Note) IsEmpty() bool {
	return n.value == ""
}

// Totals is derived from the snapshotted items and never set by clients.
type Totals struct {
	Subtotal   int64
	GrandTotal int64
	Currency   string
	// MixedCurrency reports that selections were priced in more than one
	// currency; amounts are summed without conversion.
	MixedCurrency bool
}
