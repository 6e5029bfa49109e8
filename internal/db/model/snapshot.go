package model

import "time"

const SnapshotCollection = "snapshot"

// SnapshotDocument stores a serialized ledger state keyed by the sequence
// number it was taken at. The state bytes are the ledger's own JSON
// serialization, kept opaque here so the storage layer never needs to
// understand ledger internals.
type SnapshotDocument struct {
	Seq     uint64    `bson:"_id"`
	State   []byte    `bson:"state"`
	TakenAt time.Time `bson:"taken_at"`
}
