package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"treatment-booking/internal/domain/catalog"
	"treatment-booking/internal/infra/db"
	"treatment-booking/internal/infra/memstore"
	"treatment-booking/internal/infra/mongostore"
	"treatment-booking/internal/infra/readstore"
	"treatment-booking/internal/infra/repository"
	"treatment-booking/internal/infra/uow"
	"treatment-booking/internal/pkg/config"
	"treatment-booking/internal/usecase/queries"
	"treatment-booking/internal/usecase/shared"

	"go.uber.org/fx"
)

var StoreModule = fx.Module("store",
	fx.Provide(
		NewStore,
	),
)

type StoreOut struct {
	fx.Out

	UnitOfWork shared.UnitOfWork
	ReadStore  queries.BookingReadStore
}

// NewStore opens the backend selected by STORE_DRIVER. Connections are
// closed when the app stops.
func NewStore(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (StoreOut, error) {
	ctx := context.Background()
	logger.Info("opening store", "driver", cfg.Store.Driver)

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pool, cleanup, err := db.Connect(ctx, cfg.DB)
		if err != nil {
			return StoreOut{}, err
		}
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				cleanup()
				return nil
			},
		})
		if cfg.DB.AutoMigrate {
			if err := db.Migrate(ctx, pool); err != nil {
				cleanup()
				return StoreOut{}, err
			}
		}
		catalogRepo := repository.NewCatalogRepository(pool, logger)
		if err := seedCatalog(ctx, cfg.Catalog.SeedFile, catalogRepo.Seed); err != nil {
			cleanup()
			return StoreOut{}, err
		}
		return StoreOut{
			UnitOfWork: uow.NewPostgresUoW(pool, cfg, logger),
			ReadStore:  readstore.NewBookingReadStore(pool, logger),
		}, nil

	case config.StoreDriverMongo:
		client, cleanup, err := mongostore.Connect(ctx, cfg.Mongo, logger)
		if err != nil {
			return StoreOut{}, err
		}
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				cleanup()
				return nil
			},
		})
		store := mongostore.NewStore(client, cfg, logger)
		if err := mongostore.EnsureIndexes(ctx, store.Database()); err != nil {
			cleanup()
			return StoreOut{}, err
		}
		if err := seedCatalog(ctx, cfg.Catalog.SeedFile, store.SeedCatalog); err != nil {
			cleanup()
			return StoreOut{}, err
		}
		return StoreOut{
			UnitOfWork: store,
			ReadStore:  mongostore.NewBookingReadStore(store),
		}, nil

	case config.StoreDriverMemory:
		store := memstore.New(cfg.Tx, logger)
		err := seedCatalog(ctx, cfg.Catalog.SeedFile, func(_ context.Context, programs []catalog.Program, packages []catalog.Package) error {
			store.SeedPrograms(programs...)
			store.SeedPackages(packages...)
			return nil
		})
		if err != nil {
			return StoreOut{}, err
		}
		return StoreOut{
			UnitOfWork: store,
			ReadStore:  store,
		}, nil
	}
	return StoreOut{}, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
