package retrieval

import (
	"testing"

	"corpus-qa-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDefaultsFillsUnsetFields(t *testing.T) {
	opts := Options{}.withDefaults()

	require.NotNil(t, opts.SimilarityThreshold)
	require.NotNil(t, opts.RecencyWeight)
	assert.Equal(t, DefaultSimilarityThreshold, *opts.SimilarityThreshold)
	assert.Equal(t, DefaultRecencyWeight, *opts.RecencyWeight)
	assert.Equal(t, DefaultCandidateLimit, opts.CandidateLimit)
	assert.Equal(t, DefaultOverfetchMultiplier, opts.OverfetchMultiplier)
	assert.Equal(t, DefaultMaxImages, opts.MaxImages)
	assert.Equal(t, DefaultContextBudget, opts.ContextBudget)
	assert.Equal(t, DefaultAssetScorePenalty, opts.AssetScorePenalty)
	assert.Equal(t, DefaultStorageTimeout, opts.StorageTimeout)
}

func TestWithDefaultsKeepsExplicitZero(t *testing.T) {
	zero := 0.0
	opts := Options{SimilarityThreshold: &zero, RecencyWeight: &zero}.withDefaults()

	assert.Equal(t, 0.0, *opts.SimilarityThreshold)
	assert.Equal(t, 0.0, *opts.RecencyWeight)
}

func TestOptionsFromConfigZeroMeansUnset(t *testing.T) {
	opts := OptionsFromConfig(config.RetrievalConfig{})
	assert.Nil(t, opts.SimilarityThreshold)
	assert.Nil(t, opts.RecencyWeight)

	opts = OptionsFromConfig(config.RetrievalConfig{SimilarityThreshold: 0.3, RecencyWeight: 0.4})
	require.NotNil(t, opts.SimilarityThreshold)
	require.NotNil(t, opts.RecencyWeight)
	assert.Equal(t, 0.3, *opts.SimilarityThreshold)
	assert.Equal(t, 0.4, *opts.RecencyWeight)
}
