package commands

import (
	"context"

	"treatment-booking/internal/domain/booking"
	"treatment-booking/internal/domain/catalog"
	"treatment-booking/internal/pkg/errs"
	"treatment-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrCatalogItemNotFound = errs.Unprocessable("catalog_item_not_found", "selected catalog item does not exist")

const (
	catalogKindProgram = "program"
	catalogKindPackage = "package"
)

// Resolve loads every program and package the inputs reference, one batched
// read per kind. Unknown ids are simply absent from the maps.
func Resolve(
	ctx context.Context,
	reads shared.CommandReads,
	inputs []ItemInput,
) (map[uuid.UUID]catalog.Program, map[uuid.UUID]catalog.Package, error) {
	programIDs, packageIDs := referencedIDs(inputs)

	programs, err := reads.ProgramsByIDs(ctx, programIDs)
	if err != nil {
		return nil, nil, errs.Wrap(err, "failed to read programs")
	}
	packages, err := reads.PackagesByIDs(ctx, packageIDs)
	if err != nil {
		return nil, nil, errs.Wrap(err, "failed to read packages")
	}
	return programs, packages, nil
}

// BuildItems turns inputs into items whose selections carry frozen
// catalog snapshots.
func BuildItems(
	inputs []ItemInput,
	programs map[uuid.UUID]catalog.Program,
	packages map[uuid.UUID]catalog.Package,
) ([]booking.Item, error) {
	items := make([]booking.Item, 0, len(inputs))
	for _, in := range inputs {
		programSel := make([]booking.ProgramSelection, 0, len(in.Programs))
		for _, line := range in.Programs {
			p, ok := programs[line.ProgramID]
			if !ok {
				return nil, catalogItemNotFound(catalogKindProgram, line.ProgramID)
			}
			sel, err := booking.NewProgramSelection(p, line.DurationMinutes, line.Quantity)
			if err != nil {
				return nil, err
			}
			programSel = append(programSel, sel)
		}

		packageSel := make([]booking.PackageSelection, 0, len(in.Packages))
		for _, line := range in.Packages {
			p, ok := packages[line.PackageID]
			if !ok {
				return nil, catalogItemNotFound(catalogKindPackage, line.PackageID)
			}
			packageSel = append(packageSel, booking.NewPackageSelection(p, line.Quantity))
		}

		item, err := booking.NewItem(in.PersonName, programSel, packageSel)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func resolveItems(ctx context.Context, reads shared.CommandReads, inputs []ItemInput) ([]booking.Item, error) {
	if len(inputs) == 0 {
		return nil, booking.ErrNoItems
	}
	programs, packages, err := Resolve(ctx, reads, inputs)
	if err != nil {
		return nil, err
	}
	return BuildItems(inputs, programs, packages)
}

func referencedIDs(inputs []ItemInput) ([]uuid.UUID, []uuid.UUID) {
	var programIDs, packageIDs []uuid.UUID
	seenPrograms := map[uuid.UUID]struct{}{}
	seenPackages := map[uuid.UUID]struct{}{}
	for _, in := range inputs {
		for _, line := range in.Programs {
			if _, ok := seenPrograms[line.ProgramID]; !ok {
				seenPrograms[line.ProgramID] = struct{}{}
				programIDs = append(programIDs, line.ProgramID)
			}
		}
		for _, line := range in.Packages {
			if _, ok := seenPackages[line.PackageID]; !ok {
				seenPackages[line.PackageID] = struct{}{}
				packageIDs = append(packageIDs, line.PackageID)
			}
		}
	}
	return programIDs, packageIDs
}

func catalogItemNotFound(kind string, id uuid.UUID) error {
	return ErrCatalogItemNotFound.With("kind", kind).With("id", id.String())
}
