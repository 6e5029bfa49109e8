package model

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/emberforge-labs/asset-ledger/internal/config"
)

var collections = []string{
	RecordCollection,
	SnapshotCollection,
}

// Setup creates the collections and secondary indexes the ledger needs.
// It is idempotent and safe to run on every startup.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	credential := options.Credential{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	clientOps := options.Client().ApplyURI(cfg.Address).SetAuth(credential)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	database := client.Database(cfg.DbName)

	for _, collection := range collections {
		createCollection(ctx, database, collection)
	}

	// Journal lookups by actor or kind scan forward in sequence order.
	recordIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "actor", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "_id", Value: 1}}},
	}
	if _, err := database.Collection(RecordCollection).Indexes().CreateMany(ctx, recordIndexes); err != nil {
		return err
	}

	return client.Disconnect(ctx)
}

func createCollection(ctx context.Context, database *mongo.Database, collectionName string) {
	// CreateCollection fails if the collection exists, which we ignore.
	if err := database.CreateCollection(ctx, collectionName); err != nil {
		log.Ctx(ctx).Debug().Err(err).
			Str("collection", collectionName).
			Msg("collection may already exist")
		return
	}

	log.Ctx(ctx).Info().
		Str("collection", collectionName).
		Msg("collection created successfully")
}
