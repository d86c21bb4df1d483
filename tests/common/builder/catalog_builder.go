//go:build unit || e2e

package builder

import (
	"treatment-booking/internal/domain/catalog"

	"github.com/google/uuid"
)

var (
	MassageProgramID = uuid.MustParse("5b0f7a0e-2d7c-4a53-9a0e-6f1d2c3b4a01")
	FacialProgramID  = uuid.MustParse("5b0f7a0e-2d7c-4a53-9a0e-6f1d2c3b4a02")
	SpaDayPackageID  = uuid.MustParse("7c1e8b1f-3e8d-4b64-8b1f-7a2e3d4c5b01")
)

func MassageProgram() catalog.Program {
	return catalog.Program{
		ID:       MassageProgramID,
		Name:     "Deep Tissue Massage",
		Currency: "EUR",
		Options: []catalog.ProgramOption{
			{DurationMinutes: 60, Price: 500},
			{DurationMinutes: 90, Price: 700},
		},
	}
}

func FacialProgram() catalog.Program {
	return catalog.Program{
		ID:       FacialProgramID,
		Name:     "Hydrating Facial",
		Currency: "EUR",
		Options: []catalog.ProgramOption{
			{DurationMinutes: 45, Price: 350},
		},
	}
}

func SpaDayPackage() catalog.Package {
	return catalog.Package{
		ID:              SpaDayPackageID,
		Name:            "Spa Day",
		Price:           1200,
		Currency:        "EUR",
		DurationMinutes: 240,
	}
}

func CatalogPrograms() []catalog.Program {
	return []catalog.Program{MassageProgram(), FacialProgram()}
}

func CatalogPackages() []catalog.Package {
	return []catalog.Package{SpaDayPackage()}
}
