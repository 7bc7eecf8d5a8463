package retrieval

import (
	"testing"

	"corpus-qa-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func segID(s string) *string { return &s }

func TestRankAssetsPenaltyKeepsUnfingerprintedBehindRelevantOnes(t *testing.T) {
	query := []float32{1, 0}
	assigned := []*model.Asset{
		// cosine 0.45 against the query
		{ID: 1, SegmentID: segID("seg-1"), Caption: "relevant diagram", Fingerprint: []float32{0.45, 0.8930}},
		// no fingerprint, owning segment scored 0.8: 0.8 * 0.5 = 0.4
		{ID: 2, SegmentID: segID("seg-2"), Caption: "uncaptioned scan"},
		// cosine 0.3
		{ID: 3, SegmentID: segID("seg-3"), Caption: "weak match", Fingerprint: []float32{0.3, 0.9539}},
	}
	scores := map[string]float64{"seg-1": 0.9, "seg-2": 0.8, "seg-3": 0.7}

	ranked := RankAssets(assigned, nil, query, "question", scores, 3, 0.5)
	require.Len(t, ranked, 3)

	assert.Equal(t, uint(1), ranked[0].Asset.ID)
	assert.Equal(t, uint(2), ranked[1].Asset.ID)
	assert.Equal(t, uint(3), ranked[2].Asset.ID)
	assert.InDelta(t, 0.4, ranked[1].Score, 1e-9)
}

func TestRankAssetsCapsAtMaxImages(t *testing.T) {
	query := []float32{1, 0}
	var assigned []*model.Asset
	for i := 1; i <= 6; i++ {
		// angle from the query grows with i, so cosine falls with it
		assigned = append(assigned, &model.Asset{
			ID:          uint(i),
			SegmentID:   segID("seg"),
			Fingerprint: []float32{1, float32(i)},
		})
	}

	ranked := RankAssets(assigned, nil, query, "q", nil, 3, 0.5)
	require.Len(t, ranked, 3)
	// highest cosine first
	assert.Equal(t, uint(1), ranked[0].Asset.ID)
	assert.Equal(t, uint(2), ranked[1].Asset.ID)
	assert.Equal(t, uint(3), ranked[2].Asset.ID)
}

func TestRankAssetsFallbackRequiresCaptionOverlap(t *testing.T) {
	fallback := []*model.Asset{
		{ID: 10, Caption: "annual throughput chart"},
		{ID: 11, Caption: "unrelated logo"},
		{ID: 12, Caption: ""},
	}

	ranked := RankAssets(nil, fallback, nil, "throughput of the system", nil, 3, 0.5)
	require.Len(t, ranked, 1)
	assert.Equal(t, uint(10), ranked[0].Asset.ID)
}

func TestRankAssetsFallbackFillsOnlyRemainingSlots(t *testing.T) {
	assigned := []*model.Asset{
		{ID: 1, SegmentID: segID("seg-1"), Fingerprint: []float32{1, 0}},
		{ID: 2, SegmentID: segID("seg-2"), Fingerprint: []float32{0.9, 0.4359}},
	}
	fallback := []*model.Asset{
		{ID: 10, Caption: "latency graph"},
		{ID: 11, Caption: "latency histogram detail"},
	}

	ranked := RankAssets(assigned, fallback, []float32{1, 0}, "latency", nil, 3, 0.5)
	require.Len(t, ranked, 3)
	assert.Equal(t, uint(1), ranked[0].Asset.ID)
	assert.Equal(t, uint(2), ranked[1].Asset.ID)
	// exactly one fallback slot remains; both captions match, lower ID
	// wins the tie on equal overlap
	assert.Equal(t, uint(10), ranked[2].Asset.ID)
}

func TestKeywordOverlapFraction(t *testing.T) {
	assert.InDelta(t, 1, keywordOverlap("latency", "p99 latency graph"), 1e-9)
	assert.InDelta(t, 0.5, keywordOverlap("latency throughput", "latency graph"), 1e-9)
	assert.Equal(t, 0.0, keywordOverlap("latency", ""))
	assert.Equal(t, 0.0, keywordOverlap("", "anything"))
	// case insensitive
	assert.InDelta(t, 1, keywordOverlap("LATENCY", "latency"), 1e-9)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1, Cosine([]float32{1, 0}, []float32{2, 0}), 1e-6)
	assert.InDelta(t, -1, Cosine([]float32{1, 0}, []float32{-3, 0}), 1e-6)
	assert.InDelta(t, 0, Cosine([]float32{1, 0}, []float32{0, 5}), 1e-6)
	// mismatched or degenerate input scores zero
	assert.Equal(t, 0.0, Cosine([]float32{1, 0}, []float32{1}))
	assert.Equal(t, 0.0, Cosine(nil, nil))
	assert.Equal(t, 0.0, Cosine([]float32{0, 0}, []float32{1, 1}))
}
