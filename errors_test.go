package ngramfeat

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ngramfeat/analysis"
	"github.com/hupe1980/ngramfeat/blobstore"
	"github.com/hupe1980/ngramfeat/features"
	"github.com/hupe1980/ngramfeat/model"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	err := translateError(fmt.Errorf("model: open x: %w", blobstore.ErrNotFound))
	assert.ErrorIs(t, err, ErrModelNotFound)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	for _, cause := range []error{model.ErrChecksum, model.ErrUnknownCodec, model.ErrCorrupt} {
		assert.ErrorIs(t, translateError(cause), ErrCorruptModel, cause.Error())
	}

	err = translateError(fmt.Errorf("wrapped: %w", &features.MissingCapabilityError{
		Capability: features.PartialNgram,
		Cause:      errors.New("no spec"),
	}))
	var ce *ErrCapability
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, features.PartialNgram, ce.Capability)
	assert.ErrorIs(t, err, ErrMissingCapability)
	assert.Contains(t, err.Error(), "partial-ngram")

	other := fmt.Errorf("lattice: %w", analysis.ErrNoPath)
	assert.Equal(t, other, translateError(other))
	assert.ErrorIs(t, translateError(other), ErrNoPath)
}
