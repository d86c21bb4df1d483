package mongostore

import (
	"context"
	"log/slog"

	"treatment-booking/internal/infra"
	"treatment-booking/internal/infra/document"
	"treatment-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var bookingKeys = map[queries.Field]string{
	queries.FieldCreatedAt: "createdAt",
	queries.FieldUpdatedAt: "updatedAt",
	queries.FieldArrivalAt: "arrivalAt",
	queries.FieldName:      "searchKey",
	queries.FieldStatus:    "status",
	queries.FieldID:        "_id",
}

type BookingReadStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

func NewBookingReadStore(s *Store) *BookingReadStore {
	return &BookingReadStore{
		coll:   s.db.Collection(collBookings),
		logger: s.logger,
	}
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	var doc document.Booking
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if isNotFound(err) {
			return nil, infra.NotFoundErr("booking not found")
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to get booking by id", err)
	}
	return r.view(doc)
}

func (r *BookingReadStore) List(ctx context.Context, plan queries.Plan, after []any) ([]*queries.BookingView, error) {
	filter, sort := buildListQuery(plan, after)
	opts := options.Find().SetSort(sort).SetLimit(int64(plan.FetchLimit()))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list bookings", err)
	}
	var docs []document.Booking
	if err := cur.All(ctx, &docs); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDecode, "failed to decode bookings", err)
	}

	out := make([]*queries.BookingView, 0, len(docs))
	for _, d := range docs {
		v, err := r.view(d)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *BookingReadStore) view(doc document.Booking) (*queries.BookingView, error) {
	v, err := doc.ToView()
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDecode, "failed to map booking document", err)
	}
	return v, nil
}

// buildListQuery renders a plan as a filter and sort document. MongoDB has
// no row comparison, so resuming after the pivots expands into
// (k0 < p0) OR (k0 = p0 AND k1 < p1) OR ...
func buildListQuery(plan queries.Plan, after []any) (bson.D, bson.D) {
	var clauses bson.A

	if len(plan.Statuses) > 0 {
		statuses := make(bson.A, len(plan.Statuses))
		for i, s := range plan.Statuses {
			statuses[i] = s.String()
		}
		clauses = append(clauses, bson.D{{Key: "status", Value: bson.D{{Key: "$in", Value: statuses}}}})
	}

	switch plan.Range.Kind {
	case queries.RangeTextPrefix:
		clauses = append(clauses, bson.D{{Key: bookingKeys[plan.Range.Field], Value: bson.D{
			{Key: "$gte", Value: plan.Range.Lower},
			{Key: "$lt", Value: plan.Range.Upper},
		}}})
	case queries.RangeDate:
		var bounds bson.D
		if plan.Range.From != nil {
			bounds = append(bounds, bson.E{Key: "$gte", Value: *plan.Range.From})
		}
		if plan.Range.To != nil {
			bounds = append(bounds, bson.E{Key: "$lte", Value: *plan.Range.To})
		}
		clauses = append(clauses, bson.D{{Key: bookingKeys[plan.Range.Field], Value: bounds}})
	}

	op, order := "$lt", -1
	if plan.Direction == queries.Asc {
		op, order = "$gt", 1
	}

	if len(after) > 0 {
		var branches bson.A
		for i := range plan.Ordering {
			branch := bson.D{}
			for j := 0; j < i; j++ {
				branch = append(branch, bson.E{Key: bookingKeys[plan.Ordering[j]], Value: pivotValue(after[j])})
			}
			branch = append(branch, bson.E{
				Key:   bookingKeys[plan.Ordering[i]],
				Value: bson.D{{Key: op, Value: pivotValue(after[i])}},
			})
			branches = append(branches, branch)
		}
		clauses = append(clauses, bson.D{{Key: "$or", Value: branches}})
	}

	filter := bson.D{}
	if len(clauses) > 0 {
		filter = bson.D{{Key: "$and", Value: clauses}}
	}

	sort := make(bson.D, len(plan.Ordering))
	for i, f := range plan.Ordering {
		sort[i] = bson.E{Key: bookingKeys[f], Value: order}
	}
	return filter, sort
}

// Ids are stored as canonical strings.
func pivotValue(v any) any {
	if id, ok := v.(uuid.UUID); ok {
		return id.String()
	}
	return v
}
