// Package memstore is an in-process booking store. Transactions stage their
// writes and commit them under the store lock after checking that every
// touched booking still has the version they read.
package memstore

import (
	"context"
	"log/slog"
	"sync"

	"treatment-booking/internal/domain/booking"
	"treatment-booking/internal/domain/catalog"
	"treatment-booking/internal/infra"
	"treatment-booking/internal/infra/document"
	"treatment-booking/internal/infra/uow"
	"treatment-booking/internal/pkg/config"
	"treatment-booking/internal/usecase/queries"
	"treatment-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type Store struct {
	mu       sync.RWMutex
	bookings map[string]document.Booking
	programs map[string]document.Program
	packages map[string]document.Package
	outbox   []shared.OutboxEvent

	retry  uow.RetryPolicy
	logger *slog.Logger
}

func New(cfg config.TxConfig, logger *slog.Logger) *Store {
	return &Store{
		bookings: map[string]document.Booking{},
		programs: map[string]document.Program{},
		packages: map[string]document.Package{},
		retry:    uow.NewRetryPolicy(cfg, logger, nil),
		logger:   logger,
	}
}

func (s *Store) SeedPrograms(programs ...catalog.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range programs {
		s.programs[p.ID.String()] = document.FromProgram(p)
	}
}

func (s *Store) SeedPackages(packages ...catalog.Package) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range packages {
		s.packages[p.ID.String()] = document.FromPackage(p)
	}
}

// OutboxEvents returns a copy of every committed event in commit order.
func (s *Store) OutboxEvents() []shared.OutboxEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]shared.OutboxEvent(nil), s.outbox...)
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return s.retry.Run(ctx, func(ctx context.Context) error {
		tx := &memTx{store: s, staged: map[string]stagedWrite{}}
		if err := fn(ctx, tx); err != nil {
			return err
		}
		return s.commit(tx)
	})
}

func (s *Store) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, w := range tx.staged {
		current, exists := s.bookings[id]
		switch {
		case w.insert && exists:
			return infra.WrapRepoErr(s.logger, infra.KindDuplicateKey, "booking id collision", nil)
		case !w.insert && (!exists || current.Version != w.baseVersion):
			return shared.ErrWriteConflict.With("id", id)
		}
	}
	for id, w := range tx.staged {
		s.bookings[id] = w.doc
	}
	s.outbox = append(s.outbox, tx.events...)
	return nil
}

func (s *Store) FindByID(_ context.Context, id uuid.UUID) (*queries.BookingView, error) {
	s.mu.RLock()
	doc, ok := s.bookings[id.String()]
	s.mu.RUnlock()
	if !ok {
		return nil, infra.NotFoundErr("booking not found")
	}
	return doc.ToView()
}

type stagedWrite struct {
	doc         document.Booking
	baseVersion int64
	insert      bool
}

type memTx struct {
	store  *Store
	staged map[string]stagedWrite
	events []shared.OutboxEvent
}

func (t *memTx) Bookings() shared.BookingRepository { return t }
func (t *memTx) Outbox() shared.OutboxRepository    { return outboxWriter{tx: t} }
func (t *memTx) Reads() shared.CommandReads         { return catalogReader{store: t.store} }

func (t *memTx) GetForUpdate(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	if w, ok := t.staged[id.String()]; ok {
		return w.doc.ToDomain()
	}
	t.store.mu.RLock()
	doc, ok := t.store.bookings[id.String()]
	t.store.mu.RUnlock()
	if !ok {
		return nil, shared.ErrBookingNotFound.With("id", id.String())
	}
	return doc.ToDomain()
}

func (t *memTx) Add(_ context.Context, b *booking.Booking) (uuid.UUID, error) {
	id := uuid.New()
	if err := b.AssignID(id); err != nil {
		return uuid.Nil, err
	}
	doc := document.FromDomain(b)
	t.staged[doc.ID] = stagedWrite{doc: doc, insert: true}
	b.Committed(doc.Version)
	return id, nil
}

func (t *memTx) Update(_ context.Context, b *booking.Booking) error {
	doc := document.FromDomain(b)
	w, ok := t.staged[doc.ID]
	if !ok {
		w = stagedWrite{baseVersion: b.Version()}
	}
	w.doc = doc
	t.staged[doc.ID] = w
	b.Committed(doc.Version)
	return nil
}

type outboxWriter struct {
	tx *memTx
}

func (o outboxWriter) Enqueue(_ context.Context, event shared.OutboxEvent) error {
	o.tx.events = append(o.tx.events, event)
	return nil
}

type catalogReader struct {
	store *Store
}

func (c catalogReader) ProgramsByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Program, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	out := make(map[uuid.UUID]catalog.Program, len(ids))
	for _, id := range ids {
		doc, ok := c.store.programs[id.String()]
		if !ok {
			continue
		}
		p, err := doc.ToDomain()
		if err != nil {
			return nil, err
		}
		out[id] = p
	}
	return out, nil
}

func (c catalogReader) PackagesByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Package, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	out := make(map[uuid.UUID]catalog.Package, len(ids))
	for _, id := range ids {
		doc, ok := c.store.packages[id.String()]
		if !ok {
			continue
		}
		p, err := doc.ToDomain()
		if err != nil {
			return nil, err
		}
		out[id] = p
	}
	return out, nil
}
