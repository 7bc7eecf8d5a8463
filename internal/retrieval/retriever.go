package retrieval

import (
	"context"
	"errors"
	"fmt"

	"corpus-qa-go/internal/model"
)

// fetchCandidates shapes the over-fetch request against the storage
// collaborator: limit x multiplier nearest segments above the threshold,
// under a bounded timeout. It performs no ranking of its own; it exists
// so the diversifier has enough raw material without a second
// round-trip. A shortfall below limit is reported as partial, never
// padded with below-threshold results.
func fetchCandidates(ctx context.Context, searcher SegmentSearcher, vector []float32, opts Options) ([]Candidate, bool, error) {
	overfetch := opts.CandidateLimit * opts.OverfetchMultiplier

	ctx, cancel := context.WithTimeout(ctx, opts.StorageTimeout)
	defer cancel()

	hits, err := searcher.Nearest(ctx, vector, *opts.SimilarityThreshold, overfetch, opts.DocumentFilter)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, false, fmt.Errorf("nearest-neighbour query: %w", ErrStorageTimeout)
		}
		return nil, false, fmt.Errorf("nearest-neighbour query failed: %w", err)
	}

	if len(hits) == 0 {
		return nil, false, ErrEmptyCorpus
	}

	candidates := make([]Candidate, 0, len(hits))
	for _, h := range hits {
		candidates = append(candidates, newCandidate(h))
	}

	partial := len(candidates) < opts.CandidateLimit
	return candidates, partial, nil
}

// newCandidate maps a storage row into the typed candidate the rest of
// the pipeline operates on.
func newCandidate(h model.SegmentHit) Candidate {
	return Candidate{
		SegmentID:  h.SegmentID,
		DocHash:    h.DocHash,
		Ordinal:    h.Ordinal,
		Heading:    h.Heading,
		Text:       h.Text,
		Similarity: h.Similarity,
	}
}
