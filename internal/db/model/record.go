package model

import (
	"github.com/emberforge-labs/asset-ledger/internal/types"
)

const RecordCollection = "record"

// RecordDocument is the journal entry persisted after every successful
// state-changing operation. The sequence number doubles as the primary key,
// which makes duplicate appends impossible and range replays a plain _id scan.
type RecordDocument struct {
	Seq       uint64 `bson:"_id"`
	RecordID  string `bson:"record_id"`
	Kind      string `bson:"kind"`
	Timestamp int64  `bson:"timestamp"`
	Actor     string `bson:"actor"`

	AssetID  *uint64 `bson:"asset_id,omitempty"`
	From     string  `bson:"from,omitempty"`
	To       string  `bson:"to,omitempty"`
	Quantity uint64  `bson:"quantity,omitempty"`

	AssetIDs   []uint64 `bson:"asset_ids,omitempty"`
	Quantities []uint64 `bson:"quantities,omitempty"`

	ListingID  *uint64 `bson:"listing_id,omitempty"`
	UnitPrice  uint64  `bson:"unit_price,omitempty"`
	TotalPrice uint64  `bson:"total_price,omitempty"`
	Fee        uint64  `bson:"fee,omitempty"`

	Reward uint64 `bson:"reward,omitempty"`

	Season *uint32 `bson:"season,omitempty"`

	Operator string  `bson:"operator,omitempty"`
	Approved *bool   `bson:"approved,omitempty"`
	Price    *uint64 `bson:"price,omitempty"`
	Limit    *uint64 `bson:"limit,omitempty"`
	Enabled  *bool   `bson:"enabled,omitempty"`
}

func FromRecord(rec *types.Record) *RecordDocument {
	return &RecordDocument{
		Seq:        rec.Seq,
		RecordID:   rec.ID,
		Kind:       rec.Kind.String(),
		Timestamp:  rec.Timestamp,
		Actor:      rec.Actor,
		AssetID:    rec.AssetID,
		From:       rec.From,
		To:         rec.To,
		Quantity:   rec.Quantity,
		AssetIDs:   rec.AssetIDs,
		Quantities: rec.Quantities,
		ListingID:  rec.ListingID,
		UnitPrice:  rec.UnitPrice,
		TotalPrice: rec.TotalPrice,
		Fee:        rec.Fee,
		Reward:     rec.Reward,
		Season:     rec.Season,
		Operator:   rec.Operator,
		Approved:   rec.Approved,
		Price:      rec.Price,
		Limit:      rec.Limit,
		Enabled:    rec.Enabled,
	}
}

func (doc *RecordDocument) ToRecord() *types.Record {
	return &types.Record{
		Seq:        doc.Seq,
		ID:         doc.RecordID,
		Kind:       types.RecordKind(doc.Kind),
		Timestamp:  doc.Timestamp,
		Actor:      doc.Actor,
		AssetID:    doc.AssetID,
		From:       doc.From,
		To:         doc.To,
		Quantity:   doc.Quantity,
		AssetIDs:   doc.AssetIDs,
		Quantities: doc.Quantities,
		ListingID:  doc.ListingID,
		UnitPrice:  doc.UnitPrice,
		TotalPrice: doc.TotalPrice,
		Fee:        doc.Fee,
		Reward:     doc.Reward,
		Season:     doc.Season,
		Operator:   doc.Operator,
		Approved:   doc.Approved,
		Price:      doc.Price,
		Limit:      doc.Limit,
		Enabled:    doc.Enabled,
	}
}
