package uow

import (
	"context"
	"errors"
	"log/slog"

	"treatment-booking/internal/infra/db"
	"treatment-booking/internal/infra/readstore"
	"treatment-booking/internal/infra/repository"
	"treatment-booking/internal/pkg/config"
	"treatment-booking/internal/pkg/errs"
	"treatment-booking/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin  = errs.New("failed to begin transaction")
	errTransactionCommit = errs.New("failed to commit transaction")
)

type PostgresUoW struct {
	pool   *pgxpool.Pool
	retry  RetryPolicy
	logger *slog.Logger
}

func NewPostgresUoW(pool *pgxpool.Pool, cfg config.Config, logger *slog.Logger) *PostgresUoW {
	return &PostgresUoW{
		pool:   pool,
		retry:  NewRetryPolicy(cfg.Tx, logger, isRetryableError),
		logger: logger,
	}
}

// ReadCommitted is enough: the booking row is locked with FOR UPDATE before
// it is modified.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.retry.Run(ctx, func(ctx context.Context) error {
		return u.runOnce(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
	})
}

func (u *PostgresUoW) runOnce(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, options)
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}

	tx := &pgTx{
		dbtx:   pgxTx,
		logger: u.logger,
	}

	err = fn(ctx, tx)
	if err == nil {
		if err = pgxTx.Commit(ctx); err == nil {
			return nil
		}
		err = errs.Mark(err, errTransactionCommit)
	}

	if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
		if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			u.logger.Warn("rollback failed", "error", rollbackErr.Error())
		}
	}
	return err
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx   db.DBTX
	logger *slog.Logger

	// Lazy-initialized repositories
	bookingRepo  shared.BookingRepository
	outboxRepo   shared.OutboxRepository
	commandReads shared.CommandReads
}

func (t *pgTx) Bookings() shared.BookingRepository {
	if t.bookingRepo == nil {
		t.bookingRepo = repository.NewBookingRepository(t.dbtx, t.logger)
	}
	return t.bookingRepo
}

func (t *pgTx) Outbox() shared.OutboxRepository {
	if t.outboxRepo == nil {
		t.outboxRepo = repository.NewOutboxRepository(t.dbtx, t.logger)
	}
	return t.outboxRepo
}

func (t *pgTx) Reads() shared.CommandReads {
	if t.commandReads == nil {
		t.commandReads = readstore.NewCatalogReadStore(t.dbtx, t.logger)
	}
	return t.commandReads
}
