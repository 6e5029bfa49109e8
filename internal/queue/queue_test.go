package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emberforge-labs/asset-ledger/internal/types"
)

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "record.mint", routingKey(types.KindMint))
	assert.Equal(t, "record.listing_filled", routingKey(types.KindListingFilled))
	assert.Equal(t, "record.season_started", routingKey(types.KindSeasonStarted))
}
