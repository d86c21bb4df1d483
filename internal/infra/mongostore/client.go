// Package mongostore keeps bookings and catalog records as documents in
// MongoDB. Writes run in multi-document transactions, so the deployment
// must be a replica set.
package mongostore

import (
	"context"
	"log/slog"

	"treatment-booking/internal/pkg/config"
	"treatment-booking/internal/pkg/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	collBookings = "bookings"
	collPrograms = "programs"
	collPackages = "packages"
	collOutbox   = "booking_outbox"
)

func Connect(ctx context.Context, cfg config.MongoConfig, logger *slog.Logger) (*mongo.Client, func(), error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, errs.Wrap(err, "failed to connect to mongodb")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, errs.Wrap(err, "failed to ping mongodb")
	}

	logger.Info("connected to mongodb", "database", cfg.Database)
	cleanup := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Warn("failed to disconnect from mongodb", "error", err.Error())
		}
	}
	return client, cleanup, nil
}

// EnsureIndexes creates one compound index per sortable key, each ending in
// _id so keyset scans stay on the index.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("created_at_id_idx")},
		{Keys: bson.D{{Key: "updatedAt", Value: 1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("updated_at_id_idx")},
		{Keys: bson.D{{Key: "arrivalAt", Value: 1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("arrival_at_id_idx")},
		{Keys: bson.D{{Key: "searchKey", Value: 1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("search_key_id_idx")},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("status_created_at_id_idx")},
	}
	if _, err := db.Collection(collBookings).Indexes().CreateMany(ctx, models); err != nil {
		return errs.Wrap(err, "failed to create booking indexes")
	}

	outbox := mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}, {Key: "runAt", Value: 1}},
		Options: options.Index().SetName("outbox_pending_idx"),
	}
	if _, err := db.Collection(collOutbox).Indexes().CreateOne(ctx, outbox); err != nil {
		return errs.Wrap(err, "failed to create outbox index")
	}
	return nil
}
