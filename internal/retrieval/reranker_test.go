package retrieval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRerankMonotonicInSimilarity(t *testing.T) {
	now := time.Now()
	oldest := now.Add(-100 * 24 * time.Hour)
	ingestedAt := now.Add(-10 * 24 * time.Hour)
	ingested := map[string]time.Time{
		"doc-a": ingestedAt,
		"doc-b": ingestedAt,
	}

	for _, w := range []float64{0, 0.2, 0.5, 0.8, 1} {
		candidates := []Candidate{
			{SegmentID: "s1", DocHash: "doc-a", Similarity: 0.6},
			{SegmentID: "s2", DocHash: "doc-b", Similarity: 0.9},
		}
		out := Rerank(candidates, ingested, oldest, now, w, 0, "")
		require.Len(t, out, 2)
		// same recency: higher similarity never ranks below lower
		assert.GreaterOrEqual(t, out[0].Similarity, out[1].Similarity, "weight %v", w)
	}
}

func TestRerankStrongSimilarityBeatsRecencyAtModerateWeight(t *testing.T) {
	now := time.Now()
	oldest := now.Add(-365 * 24 * time.Hour)
	ingested := map[string]time.Time{
		"old-doc": oldest,
		"new-doc": now,
	}
	candidates := []Candidate{
		{SegmentID: "s-new", DocHash: "new-doc", Similarity: 0.55},
		{SegmentID: "s-old", DocHash: "old-doc", Similarity: 0.95},
	}

	out := Rerank(candidates, ingested, oldest, now, 0.2, 0, "")
	require.Len(t, out, 2)
	assert.Equal(t, "s-old", out[0].SegmentID)

	// 0.95*0.8 + 0 = 0.76, 0.55*0.8 + 0.2 = 0.64
	assert.InDelta(t, 0.76, out[0].FinalScore, 1e-9)
	assert.InDelta(t, 0.64, out[1].FinalScore, 1e-9)
}

func TestRerankRecencyBreaksNearTies(t *testing.T) {
	now := time.Now()
	oldest := now.Add(-200 * 24 * time.Hour)
	ingested := map[string]time.Time{
		"old-doc": oldest,
		"new-doc": now,
	}
	candidates := []Candidate{
		{SegmentID: "s-old", DocHash: "old-doc", Similarity: 0.70},
		{SegmentID: "s-new", DocHash: "new-doc", Similarity: 0.69},
	}

	out := Rerank(candidates, ingested, oldest, now, 0.2, 0, "")
	assert.Equal(t, "s-new", out[0].SegmentID)
}

func TestRerankKeywordBoost(t *testing.T) {
	now := time.Now()
	ingested := map[string]time.Time{"d": now}
	candidates := []Candidate{
		{SegmentID: "s1", DocHash: "d", Similarity: 0.8, Text: "nothing relevant here"},
		{SegmentID: "s2", DocHash: "d", Similarity: 0.7, Text: "the Error Budget policy states"},
	}

	out := Rerank(candidates, ingested, now, now, 0, 0.3, "error budget")
	assert.Equal(t, "s2", out[0].SegmentID)
}

func TestRecencyScoreBounds(t *testing.T) {
	now := time.Now()
	maxAge := 100 * 24 * time.Hour

	assert.Equal(t, 0.0, recencyScore(time.Time{}, now, maxAge))
	assert.Equal(t, 1.0, recencyScore(now.Add(-time.Hour), now, 0))
	assert.InDelta(t, 1.0, recencyScore(now, now, maxAge), 1e-9)
	assert.InDelta(t, 0.0, recencyScore(now.Add(-maxAge), now, maxAge), 1e-9)
	// older than the oldest known document clamps at 0
	assert.Equal(t, 0.0, recencyScore(now.Add(-2*maxAge), now, maxAge))
	// an ingestion timestamp slightly in the future clamps at 1
	assert.Equal(t, 1.0, recencyScore(now.Add(time.Minute), now, maxAge))
}

func TestRerankDoesNotMutateInput(t *testing.T) {
	now := time.Now()
	candidates := []Candidate{
		{SegmentID: "s1", DocHash: "d", Similarity: 0.3},
		{SegmentID: "s2", DocHash: "d", Similarity: 0.9},
	}
	_ = Rerank(candidates, map[string]time.Time{"d": now}, now, now, 0.2, 0, "")

	assert.Equal(t, "s1", candidates[0].SegmentID)
	assert.Equal(t, 0.0, candidates[0].FinalScore)
}
