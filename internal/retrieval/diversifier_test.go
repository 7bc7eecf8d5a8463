package retrieval

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiversifyOnePerDocumentFirst(t *testing.T) {
	// one document dominating the score order must not crowd out others
	candidates := []Candidate{
		{SegmentID: "a1", DocHash: "doc-a", FinalScore: 0.95},
		{SegmentID: "a2", DocHash: "doc-a", FinalScore: 0.93},
		{SegmentID: "a3", DocHash: "doc-a", FinalScore: 0.91},
		{SegmentID: "b1", DocHash: "doc-b", FinalScore: 0.80},
		{SegmentID: "c1", DocHash: "doc-c", FinalScore: 0.75},
	}

	out := Diversify(candidates, 3)
	require.Len(t, out, 3)
	assert.Equal(t, "a1", out[0].SegmentID)
	assert.Equal(t, "b1", out[1].SegmentID)
	assert.Equal(t, "c1", out[2].SegmentID)
}

func TestDiversifySecondPassFillsRemainingSlots(t *testing.T) {
	candidates := []Candidate{
		{SegmentID: "a1", DocHash: "doc-a", FinalScore: 0.9},
		{SegmentID: "a2", DocHash: "doc-a", FinalScore: 0.8},
		{SegmentID: "b1", DocHash: "doc-b", FinalScore: 0.7},
	}

	out := Diversify(candidates, 3)
	require.Len(t, out, 3)
	// pass one takes a1 and b1, pass two fills with a2
	assert.Equal(t, "a1", out[0].SegmentID)
	assert.Equal(t, "b1", out[1].SegmentID)
	assert.Equal(t, "a2", out[2].SegmentID)
}

func TestDiversifyNeverDuplicatesSegments(t *testing.T) {
	var candidates []Candidate
	for doc := 0; doc < 3; doc++ {
		for seg := 0; seg < 4; seg++ {
			candidates = append(candidates, Candidate{
				SegmentID:  fmt.Sprintf("d%d-s%d", doc, seg),
				DocHash:    fmt.Sprintf("doc-%d", doc),
				FinalScore: 1 - float64(doc*4+seg)*0.01,
			})
		}
	}

	out := Diversify(candidates, 8)
	require.Len(t, out, 8)

	seen := make(map[string]bool)
	for _, c := range out {
		assert.False(t, seen[c.SegmentID], "duplicate segment %s", c.SegmentID)
		seen[c.SegmentID] = true
	}
}

func TestDiversifySpansAllAvailableDocuments(t *testing.T) {
	candidates := []Candidate{
		{SegmentID: "a1", DocHash: "doc-a", FinalScore: 0.9},
		{SegmentID: "a2", DocHash: "doc-a", FinalScore: 0.85},
		{SegmentID: "b1", DocHash: "doc-b", FinalScore: 0.5},
		{SegmentID: "c1", DocHash: "doc-c", FinalScore: 0.4},
		{SegmentID: "d1", DocHash: "doc-d", FinalScore: 0.3},
	}

	out := Diversify(candidates, 4)
	require.Len(t, out, 4)

	docs := make(map[string]bool)
	for _, c := range out {
		docs[c.DocHash] = true
	}
	assert.Len(t, docs, 4)
}

func TestDiversifyFewerCandidatesThanRequested(t *testing.T) {
	candidates := []Candidate{
		{SegmentID: "a1", DocHash: "doc-a", FinalScore: 0.9},
		{SegmentID: "b1", DocHash: "doc-b", FinalScore: 0.8},
	}

	out := Diversify(candidates, 5)
	assert.Len(t, out, 2)
}

func TestDiversifyEmptyAndZero(t *testing.T) {
	assert.Nil(t, Diversify(nil, 3))
	assert.Nil(t, Diversify([]Candidate{{SegmentID: "a"}}, 0))
}
