// Package retrieval implements the query-time pipeline: candidate
// retrieval, relevance re-ranking, document diversification, asset
// ranking and context assembly. Every stage is a pure function over its
// inputs, so concurrent queries need no coordination and abandoned
// queries leave nothing to clean up.
package retrieval

import (
	"context"
	"time"

	"corpus-qa-go/internal/model"
)

// Candidate is an ephemeral, per-query value: one segment scored against
// one query. Similarity is raw cosine in [-1, 1]; FinalScore is the
// blended ranking score. Never persisted.
type Candidate struct {
	SegmentID  string  `json:"segmentId"`
	DocHash    string  `json:"docHash"`
	Ordinal    int     `json:"ordinal"`
	Heading    string  `json:"heading"`
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
	FinalScore float64 `json:"finalScore"`
}

// RankedAsset is one selected asset with its relevance score.
type RankedAsset struct {
	Asset *model.Asset `json:"asset"`
	Score float64      `json:"score"`
}

// ContextEntry is one included segment with its citation label.
type ContextEntry struct {
	SegmentID  string  `json:"segmentId"`
	DocHash    string  `json:"docHash"`
	Filename   string  `json:"filename"`
	Heading    string  `json:"heading"`
	Citation   string  `json:"citation"`
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
	FinalScore float64 `json:"finalScore"`
}

// ContextPackage is the assembled output of one retrieval: segments in
// final-score order with citation labels, ranked assets, and the budget
// actually consumed. Partial marks a result with fewer candidates than
// requested, so the caller can communicate reduced confidence.
type ContextPackage struct {
	Entries     []ContextEntry `json:"entries"`
	Assets      []RankedAsset  `json:"assets"`
	ContextText string         `json:"contextText"`
	BudgetUsed  int            `json:"budgetUsed"`
	Budget      int            `json:"budget"`
	Partial     bool           `json:"partial"`
}

// SegmentSearcher is the storage collaborator's nearest-neighbour query.
// Implementations map their raw result rows into SegmentHit at the
// boundary; similarity is cosine and results arrive ordered descending.
type SegmentSearcher interface {
	Nearest(ctx context.Context, vector []float32, threshold float64, limit int, docFilter []string) ([]model.SegmentHit, error)
}

// DocumentStore supplies document reference data for recency scoring and
// citation labels.
type DocumentStore interface {
	FindBatchByHashes(ctx context.Context, hashes []string) ([]*model.Document, error)
	OldestIngestedAt(ctx context.Context) (time.Time, error)
}

// AssetStore supplies assets for ranking. FindBySegmentIDs must resolve
// the whole set in one batch call.
type AssetStore interface {
	FindBySegmentIDs(ctx context.Context, segmentIDs []string) ([]*model.Asset, error)
	FindUnassignedByDocHashes(ctx context.Context, hashes []string) ([]*model.Asset, error)
}
