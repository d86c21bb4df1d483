package bootstrap

import (
	"context"
	"encoding/json"
	"os"

	"treatment-booking/internal/domain/catalog"
	"treatment-booking/internal/infra/document"
	"treatment-booking/internal/pkg/errs"
)

type catalogSeeder func(ctx context.Context, programs []catalog.Program, packages []catalog.Package) error

func loadCatalogFile(path string) ([]catalog.Program, []catalog.Package, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errs.Wrapf(err, "failed to read catalog seed %s", path)
	}
	var file document.CatalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, nil, errs.Wrapf(err, "failed to parse catalog seed %s", path)
	}
	return file.ToDomain()
}

func seedCatalog(ctx context.Context, path string, seed catalogSeeder) error {
	if path == "" {
		return nil
	}
	programs, packages, err := loadCatalogFile(path)
	if err != nil {
		return err
	}
	return seed(ctx, programs, packages)
}
