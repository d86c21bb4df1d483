package mongostore

import (
	"context"
	"log/slog"
	"time"

	"treatment-booking/internal/domain/booking"
	"treatment-booking/internal/domain/catalog"
	"treatment-booking/internal/infra"
	"treatment-booking/internal/infra/document"
	"treatment-booking/internal/infra/uow"
	"treatment-booking/internal/pkg/config"
	"treatment-booking/internal/usecase/shared"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	db     *mongo.Database
	retry  uow.RetryPolicy
	logger *slog.Logger
}

func NewStore(client *mongo.Client, cfg config.Config, logger *slog.Logger) *Store {
	return &Store{
		db:     client.Database(cfg.Mongo.Database),
		retry:  uow.NewRetryPolicy(cfg.Tx, logger, isRetryableError),
		logger: logger,
	}
}

func (s *Store) Database() *mongo.Database {
	return s.db
}

// Within runs fn in a session transaction. Transient transaction errors,
// including server-side write conflicts, rerun the whole attempt.
func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return s.retry.Run(ctx, func(ctx context.Context) error {
		return s.runOnce(ctx, fn)
	})
}

func (s *Store) runOnce(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	sess, err := s.db.Client().StartSession()
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "could not start mongo session", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to start transaction", err)
		}
		if err := fn(sc, &mongoTx{db: s.db, logger: s.logger}); err != nil {
			if abortErr := sc.AbortTransaction(sc); abortErr != nil {
				s.logger.Warn("failed to abort transaction", "error", abortErr.Error())
			}
			return err
		}
		return sc.CommitTransaction(sc)
	})
}

// isNotFound also matches ErrNoDocuments wrapped by a decode or session layer.
func isNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

func isRetryableError(err error) bool {
	var le mongo.LabeledError
	if !errors.As(err, &le) {
		return false
	}
	return le.HasErrorLabel("TransientTransactionError") || le.HasErrorLabel("UnknownTransactionCommitResult")
}

type mongoTx struct {
	db     *mongo.Database
	logger *slog.Logger
}

func (t *mongoTx) Bookings() shared.BookingRepository {
	return &bookingRepository{coll: t.db.Collection(collBookings), logger: t.logger}
}

func (t *mongoTx) Outbox() shared.OutboxRepository {
	return &outboxRepository{coll: t.db.Collection(collOutbox), logger: t.logger}
}

func (t *mongoTx) Reads() shared.CommandReads {
	return NewCatalogReader(t.db, t.logger)
}

type bookingRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

func (r *bookingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	var doc document.Booking
	err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if isNotFound(err) {
			return nil, shared.ErrBookingNotFound.With("id", id.String())
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to load booking", err)
	}
	b, err := doc.ToDomain()
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDecode, "failed to map booking document", err)
	}
	return b, nil
}

func (r *bookingRepository) Add(ctx context.Context, b *booking.Booking) (uuid.UUID, error) {
	id := uuid.New()
	if err := b.AssignID(id); err != nil {
		return uuid.Nil, err
	}
	doc := document.FromDomain(b)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return uuid.Nil, infra.WrapRepoErr(r.logger, infra.KindDuplicateKey, "booking id collision", err)
		}
		return uuid.Nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to insert booking", err)
	}
	b.Committed(doc.Version)
	return id, nil
}

func (r *bookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	doc := document.FromDomain(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version()}

	res, err := r.coll.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to update booking", err)
	}
	if res.MatchedCount == 0 {
		return shared.ErrWriteConflict.With("id", doc.ID)
	}
	b.Committed(doc.Version)
	return nil
}

type outboxDocument struct {
	ID            string    `bson:"_id"`
	Kind          string    `bson:"kind"`
	BookingID     string    `bson:"bookingId"`
	Status        string    `bson:"status"`
	BookingStatus string    `bson:"bookingStatus"`
	ArrivalAt     time.Time `bson:"arrivalAt"`
	Email         string    `bson:"email"`
	OccurredAt    time.Time `bson:"occurredAt"`
	RunAt         time.Time `bson:"runAt"`
	Attempts      int       `bson:"attempts"`
}

type outboxRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

func (r *outboxRepository) Enqueue(ctx context.Context, event shared.OutboxEvent) error {
	doc := outboxDocument{
		ID:            event.ID.String(),
		Kind:          string(event.Kind),
		BookingID:     event.BookingID.String(),
		Status:        "pending",
		BookingStatus: event.Status.String(),
		ArrivalAt:     event.ArrivalAt,
		Email:         event.Email,
		OccurredAt:    event.OccurredAt,
		RunAt:         event.OccurredAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to enqueue outbox event", err)
	}
	return nil
}

// CatalogReader resolves catalog ids with one $in query per kind.
type CatalogReader struct {
	db     *mongo.Database
	logger *slog.Logger
}

func NewCatalogReader(db *mongo.Database, logger *slog.Logger) *CatalogReader {
	return &CatalogReader{db: db, logger: logger}
}

func (c *CatalogReader) ProgramsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Program, error) {
	out := make(map[uuid.UUID]catalog.Program, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var docs []document.Program
	if err := c.findIn(ctx, collPrograms, ids, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		p, err := d.ToDomain()
		if err != nil {
			return nil, infra.WrapRepoErr(c.logger, infra.KindDecode, "failed to map program document", err)
		}
		out[p.ID] = p
	}
	return out, nil
}

func (c *CatalogReader) PackagesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Package, error) {
	out := make(map[uuid.UUID]catalog.Package, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var docs []document.Package
	if err := c.findIn(ctx, collPackages, ids, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		p, err := d.ToDomain()
		if err != nil {
			return nil, infra.WrapRepoErr(c.logger, infra.KindDecode, "failed to map package document", err)
		}
		out[p.ID] = p
	}
	return out, nil
}

func (c *CatalogReader) findIn(ctx context.Context, coll string, ids []uuid.UUID, results any) error {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	cur, err := c.db.Collection(coll).Find(ctx, bson.M{"_id": bson.M{"$in": keys}})
	if err != nil {
		return infra.WrapRepoErr(c.logger, infra.KindDBFailure, "failed to read catalog", err)
	}
	if err := cur.All(ctx, results); err != nil {
		return infra.WrapRepoErr(c.logger, infra.KindDecode, "failed to decode catalog records", err)
	}
	return nil
}

// SeedCatalog upserts catalog records; used by bootstrap fixtures and tests.
func (s *Store) SeedCatalog(ctx context.Context, programs []catalog.Program, packages []catalog.Package) error {
	upsert := options.Replace().SetUpsert(true)
	for _, p := range programs {
		doc := document.FromProgram(p)
		if _, err := s.db.Collection(collPrograms).ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, upsert); err != nil {
			return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to seed program", err)
		}
	}
	for _, p := range packages {
		doc := document.FromPackage(p)
		if _, err := s.db.Collection(collPackages).ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, upsert); err != nil {
			return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to seed package", err)
		}
	}
	return nil
}
