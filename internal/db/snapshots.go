package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/emberforge-labs/asset-ledger/internal/db/model"
)

func (db *Database) SaveSnapshot(ctx context.Context, seq uint64, state []byte, takenAt time.Time) error {
	doc := model.SnapshotDocument{
		Seq:     seq,
		State:   state,
		TakenAt: takenAt,
	}
	update := bson.M{"$set": bson.M{"state": doc.State, "taken_at": doc.TakenAt}}
	opts := options.Update().SetUpsert(true)
	_, err := db.collection(model.SnapshotCollection).
		UpdateOne(ctx, bson.M{"_id": seq}, update, opts)
	return err
}

func (db *Database) GetLatestSnapshot(ctx context.Context) (*model.SnapshotDocument, error) {
	opts := options.FindOne().SetSort(bson.M{"_id": -1})

	var doc model.SnapshotDocument
	err := db.collection(model.SnapshotCollection).FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, &NotFoundError{
			Key:     model.SnapshotCollection,
			Message: "no snapshot has been taken yet",
		}
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
