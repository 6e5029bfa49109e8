package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/emberforge-labs/asset-ledger/internal/db/model"
	"github.com/emberforge-labs/asset-ledger/internal/types"
)

func (db *Database) SaveRecord(ctx context.Context, rec *types.Record) error {
	doc := model.FromRecord(rec)
	_, err := db.collection(model.RecordCollection).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return &DuplicateKeyError{
			Key:     fmt.Sprintf("%d", rec.Seq),
			Message: fmt.Sprintf("record with seq %d already journaled", rec.Seq),
		}
	}
	return err
}

func (db *Database) GetRecordsFrom(ctx context.Context, fromSeq uint64, limit int64) ([]*types.Record, error) {
	filter := bson.M{"_id": bson.M{"$gte": fromSeq}}
	return db.findRecords(ctx, filter, limit)
}

func (db *Database) GetRecordsByActor(ctx context.Context, actor string, fromSeq uint64, limit int64) ([]*types.Record, error) {
	filter := bson.M{
		"actor": actor,
		"_id":   bson.M{"$gte": fromSeq},
	}
	return db.findRecords(ctx, filter, limit)
}

func (db *Database) findRecords(ctx context.Context, filter bson.M, limit int64) ([]*types.Record, error) {
	opts := options.Find().SetSort(bson.M{"_id": 1})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := db.collection(model.RecordCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var docs []model.RecordDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	records := make([]*types.Record, len(docs))
	for i := range docs {
		records[i] = docs[i].ToRecord()
	}
	return records, nil
}

func (db *Database) GetLastRecordSeq(ctx context.Context) (uint64, error) {
	opts := options.FindOne().SetSort(bson.M{"_id": -1})

	var doc model.RecordDocument
	err := db.collection(model.RecordCollection).FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		// empty journal
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}
