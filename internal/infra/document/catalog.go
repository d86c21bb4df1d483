package document

import (
	"treatment-booking/internal/domain/catalog"
	"treatment-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

type ProgramOption struct {
	DurationMinutes int   `json:"durationMinutes" bson:"durationMinutes"`
	Price           int64 `json:"price" bson:"price"`
}

type Program struct {
	ID       string          `json:"id" bson:"_id"`
	Name     string          `json:"name" bson:"name"`
	Currency string          `json:"currency" bson:"currency"`
	Options  []ProgramOption `json:"options" bson:"options"`
}

type Package struct {
	ID              string `json:"id" bson:"_id"`
	Name            string `json:"name" bson:"name"`
	Price           int64  `json:"price" bson:"price"`
	Currency        string `json:"currency" bson:"currency"`
	DurationMinutes int    `json:"durationMinutes" bson:"durationMinutes"`
}

func FromProgram(p catalog.Program) Program {
	d := Program{ID: p.ID.String(), Name: p.Name, Currency: p.Currency}
	for _, o := range p.Options {
		d.Options = append(d.Options, ProgramOption{DurationMinutes: o.DurationMinutes, Price: o.Price})
	}
	return d
}

func (d Program) ToDomain() (catalog.Program, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return catalog.Program{}, errs.Wrap(err, "program id")
	}
	p := catalog.Program{ID: id, Name: d.Name, Currency: d.Currency}
	for _, o := range d.Options {
		p.Options = append(p.Options, catalog.ProgramOption{DurationMinutes: o.DurationMinutes, Price: o.Price})
	}
	return p, nil
}

func FromPackage(p catalog.Package) Package {
	return Package{
		ID:              p.ID.String(),
		Name:            p.Name,
		Price:           p.Price,
		Currency:        p.Currency,
		DurationMinutes: p.DurationMinutes,
	}
}

func (d Package) ToDomain() (catalog.Package, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return catalog.Package{}, errs.Wrap(err, "package id")
	}
	return catalog.Package{
		ID:              id,
		Name:            d.Name,
		Price:           d.Price,
		Currency:        d.Currency,
		DurationMinutes: d.DurationMinutes,
	}, nil
}

// CatalogFile is the on-disk shape of a catalog fixture.
type CatalogFile struct {
	Programs []Program `json:"programs"`
	Packages []Package `json:"packages"`
}

func (f CatalogFile) ToDomain() ([]catalog.Program, []catalog.Package, error) {
	programs := make([]catalog.Program, 0, len(f.Programs))
	for _, d := range f.Programs {
		p, err := d.ToDomain()
		if err != nil {
			return nil, nil, err
		}
		programs = append(programs, p)
	}
	packages := make([]catalog.Package, 0, len(f.Packages))
	for _, d := range f.Packages {
		p, err := d.ToDomain()
		if err != nil {
			return nil, nil, err
		}
		packages = append(packages, p)
	}
	return programs, packages, nil
}
