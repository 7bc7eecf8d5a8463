package retrieval

import (
	"strings"
	"testing"

	"corpus-qa-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleNeverExceedsBudget(t *testing.T) {
	docs := map[string]*model.Document{
		"d1": {DocHash: "d1", Filename: "guide.pdf"},
	}
	candidates := []Candidate{
		{SegmentID: "s1", DocHash: "d1", Text: strings.Repeat("a", 300), FinalScore: 0.9},
		{SegmentID: "s2", DocHash: "d1", Text: strings.Repeat("b", 300), FinalScore: 0.8},
		{SegmentID: "s3", DocHash: "d1", Text: strings.Repeat("c", 300), FinalScore: 0.7},
	}

	pkg := Assemble(candidates, docs, nil, 700, false)
	require.NotNil(t, pkg)
	assert.LessOrEqual(t, pkg.BudgetUsed, 700)
	assert.Len(t, pkg.Entries, 2)
	assert.Equal(t, len(pkg.ContextText), pkg.BudgetUsed)
}

func TestAssembleWholeSegmentsOnly(t *testing.T) {
	docs := map[string]*model.Document{"d1": {DocHash: "d1", Filename: "a.pdf"}}
	candidates := []Candidate{
		{SegmentID: "s1", DocHash: "d1", Text: strings.Repeat("x", 200)},
		{SegmentID: "s2", DocHash: "d1", Text: strings.Repeat("y", 5000)},
	}

	pkg := Assemble(candidates, docs, nil, 300, false)
	require.Len(t, pkg.Entries, 1)
	// the oversized segment is dropped, never truncated
	assert.NotContains(t, pkg.ContextText, "y")
	assert.Contains(t, pkg.ContextText, strings.Repeat("x", 200))
}

func TestAssembleCitationLabels(t *testing.T) {
	docs := map[string]*model.Document{
		"d1": {DocHash: "d1", Filename: "handbook.pdf"},
	}
	candidates := []Candidate{
		{SegmentID: "s1", DocHash: "d1", Heading: "Install", Text: "run the installer"},
		{SegmentID: "s2", DocHash: "d1", Text: "plain body"},
		{SegmentID: "s3", DocHash: "missing", Text: "from a vanished document"},
	}

	pkg := Assemble(candidates, docs, nil, 8000, false)
	require.Len(t, pkg.Entries, 3)

	assert.Equal(t, "handbook.pdf / Install", pkg.Entries[0].Citation)
	assert.Equal(t, "handbook.pdf", pkg.Entries[1].Citation)
	assert.Equal(t, "unknown", pkg.Entries[2].Citation)

	assert.Contains(t, pkg.ContextText, "[1] (handbook.pdf / Install)\nrun the installer")
	assert.Contains(t, pkg.ContextText, "[2] (handbook.pdf)\nplain body")
	assert.Contains(t, pkg.ContextText, "[3] (unknown)\nfrom a vanished document")
}

func TestAssembleAssetsRideOutsideTheBudget(t *testing.T) {
	assets := []RankedAsset{
		{Asset: &model.Asset{ID: 1, Caption: "big diagram"}, Score: 0.9},
	}
	candidates := []Candidate{
		{SegmentID: "s1", DocHash: "d1", Text: "tiny"},
	}

	pkg := Assemble(candidates, nil, assets, 100, false)
	require.Len(t, pkg.Assets, 1)
	// the asset caption is not part of the packed text
	assert.NotContains(t, pkg.ContextText, "big diagram")
}

func TestAssemblePropagatesPartialFlag(t *testing.T) {
	pkg := Assemble([]Candidate{{SegmentID: "s1", DocHash: "d1", Text: "t"}}, nil, nil, 8000, true)
	assert.True(t, pkg.Partial)
	assert.Len(t, pkg.Entries, 1)
}
