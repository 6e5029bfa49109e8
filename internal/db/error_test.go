package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatching(t *testing.T) {
	dup := &DuplicateKeyError{Key: "7", Message: "record with seq 7 already journaled"}
	notFound := &NotFoundError{Key: "snapshot", Message: "no snapshot has been taken yet"}

	assert.True(t, IsDuplicateKeyError(dup))
	assert.False(t, IsNotFoundError(dup))
	assert.True(t, IsNotFoundError(notFound))
	assert.False(t, IsDuplicateKeyError(notFound))

	// matching must survive wrapping
	assert.True(t, IsDuplicateKeyError(fmt.Errorf("save record: %w", dup)))
	assert.True(t, IsNotFoundError(fmt.Errorf("load snapshot: %w", notFound)))

	assert.False(t, IsDuplicateKeyError(errors.New("plain")))
	assert.False(t, IsNotFoundError(nil))
}
