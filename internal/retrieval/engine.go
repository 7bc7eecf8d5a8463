package retrieval

import (
	"context"
	"fmt"
	"time"

	"corpus-qa-go/internal/model"
)

// Engine runs one retrieval pipeline invocation end to end. It holds no
// mutable state of its own, only collaborator handles, so one Engine
// serves any number of concurrent queries.
type Engine struct {
	searcher SegmentSearcher
	docs     DocumentStore
	assets   AssetStore
}

// NewEngine creates a retrieval engine over the given collaborators.
func NewEngine(searcher SegmentSearcher, docs DocumentStore, assets AssetStore) *Engine {
	return &Engine{searcher: searcher, docs: docs, assets: assets}
}

// Retrieve assembles the evidentiary context for one question. The query
// fingerprint is computed by the caller (embedding is a separate
// collaborator). Fewer candidates than requested is not an error: the
// returned package carries Partial=true along with everything found.
func (e *Engine) Retrieve(ctx context.Context, question string, queryVector []float32, opts Options) (*ContextPackage, error) {
	opts = opts.withDefaults()

	candidates, partial, err := fetchCandidates(ctx, e.searcher, queryVector, opts)
	if err != nil {
		return nil, err
	}

	docs, oldest, err := e.lookupDocuments(ctx, candidates)
	if err != nil {
		return nil, err
	}

	// Segments of a document mid-ingestion may already be indexed;
	// dropping them here keeps half-ingested documents invisible.
	candidates = readyCandidates(candidates, docs)
	if len(candidates) == 0 {
		return nil, ErrEmptyCorpus
	}
	if len(candidates) < opts.CandidateLimit {
		partial = true
	}

	ingested := make(map[string]time.Time, len(docs))
	for hash, doc := range docs {
		ingested[hash] = doc.IngestedAt
	}
	candidates = Rerank(candidates, ingested, oldest, time.Now(), *opts.RecencyWeight, opts.KeywordBoost, question)

	selected := Diversify(candidates, opts.CandidateLimit)

	assets, err := e.rankAssets(ctx, selected, queryVector, question, opts)
	if err != nil {
		return nil, err
	}

	return Assemble(selected, docs, assets, opts.ContextBudget, partial), nil
}

// readyCandidates keeps only candidates whose document row exists and
// is marked ready. Anything else belongs to a document still being
// written (or already being deleted) and must not surface.
func readyCandidates(candidates []Candidate, docs map[string]*model.Document) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		doc, ok := docs[c.DocHash]
		if !ok || doc.Status != model.DocStatusReady {
			continue
		}
		out = append(out, c)
	}
	return out
}

// lookupDocuments resolves the candidates' owning documents plus the
// corpus's oldest ingestion time in one pass.
func (e *Engine) lookupDocuments(ctx context.Context, candidates []Candidate) (map[string]*model.Document, time.Time, error) {
	seen := make(map[string]struct{}, len(candidates))
	hashes := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.DocHash]; dup {
			continue
		}
		seen[c.DocHash] = struct{}{}
		hashes = append(hashes, c.DocHash)
	}

	rows, err := e.docs.FindBatchByHashes(ctx, hashes)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("document batch lookup failed: %w", err)
	}
	docs := make(map[string]*model.Document, len(rows))
	for _, d := range rows {
		docs[d.DocHash] = d
	}

	oldest, err := e.docs.OldestIngestedAt(ctx)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("oldest document lookup failed: %w", err)
	}
	return docs, oldest, nil
}

// rankAssets fetches the selected segments' assets in one batch and
// scores them, pulling document-level fallback assets only when the
// assigned ones cannot fill the image slots.
func (e *Engine) rankAssets(ctx context.Context, selected []Candidate, queryVector []float32, question string, opts Options) ([]RankedAsset, error) {
	if len(selected) == 0 {
		return nil, nil
	}

	segmentIDs := make([]string, 0, len(selected))
	segmentScores := make(map[string]float64, len(selected))
	docSeen := make(map[string]struct{}, len(selected))
	docHashes := make([]string, 0, len(selected))
	for _, c := range selected {
		segmentIDs = append(segmentIDs, c.SegmentID)
		segmentScores[c.SegmentID] = c.FinalScore
		if _, dup := docSeen[c.DocHash]; !dup {
			docSeen[c.DocHash] = struct{}{}
			docHashes = append(docHashes, c.DocHash)
		}
	}

	assigned, err := e.assets.FindBySegmentIDs(ctx, segmentIDs)
	if err != nil {
		return nil, fmt.Errorf("asset batch lookup failed: %w", err)
	}

	var fallback []*model.Asset
	if len(assigned) < opts.MaxImages {
		fallback, err = e.assets.FindUnassignedByDocHashes(ctx, docHashes)
		if err != nil {
			return nil, fmt.Errorf("fallback asset lookup failed: %w", err)
		}
	}

	return RankAssets(assigned, fallback, queryVector, question, segmentScores, opts.MaxImages, opts.AssetScorePenalty), nil
}
