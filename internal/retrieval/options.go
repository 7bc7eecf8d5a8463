package retrieval

import (
	"time"

	"corpus-qa-go/internal/config"
)

// Built-in defaults. The similarity threshold sits at 0.5: the earlier
// 0.7 under-matched newly ingested documents whose fingerprint
// distribution drifts slightly from older ones.
const (
	DefaultSimilarityThreshold = 0.5
	DefaultCandidateLimit      = 5
	DefaultOverfetchMultiplier = 3
	DefaultRecencyWeight       = 0.2
	DefaultMaxImages           = 3
	DefaultContextBudget       = 8000
	DefaultAssetScorePenalty   = 0.5
	DefaultStorageTimeout      = 5 * time.Second
)

// Options controls one retrieval invocation. The zero value is usable;
// unset fields take the defaults above. SimilarityThreshold and
// RecencyWeight are pointers so an explicit 0 (no threshold, pure
// similarity ranking) stays distinguishable from unset.
type Options struct {
	SimilarityThreshold *float64
	CandidateLimit      int
	OverfetchMultiplier int
	RecencyWeight       *float64
	KeywordBoost        float64
	MaxImages           int
	ContextBudget       int
	AssetScorePenalty   float64
	DocumentFilter      []string
	StorageTimeout      time.Duration
}

func (o Options) withDefaults() Options {
	if o.SimilarityThreshold == nil {
		t := DefaultSimilarityThreshold
		o.SimilarityThreshold = &t
	}
	if o.CandidateLimit <= 0 {
		o.CandidateLimit = DefaultCandidateLimit
	}
	if o.OverfetchMultiplier <= 0 {
		o.OverfetchMultiplier = DefaultOverfetchMultiplier
	}
	if o.RecencyWeight == nil {
		w := DefaultRecencyWeight
		o.RecencyWeight = &w
	}
	if o.MaxImages <= 0 {
		o.MaxImages = DefaultMaxImages
	}
	if o.ContextBudget <= 0 {
		o.ContextBudget = DefaultContextBudget
	}
	if o.AssetScorePenalty <= 0 {
		o.AssetScorePenalty = DefaultAssetScorePenalty
	}
	if o.StorageTimeout <= 0 {
		o.StorageTimeout = DefaultStorageTimeout
	}
	return o
}

// OptionsFromConfig seeds Options from the retrieval config section.
// Config zeros mean unset and fall through to the built-in defaults;
// an exact zero is only expressible per request.
func OptionsFromConfig(cfg config.RetrievalConfig) Options {
	opts := Options{
		CandidateLimit:      cfg.CandidateLimit,
		OverfetchMultiplier: cfg.OverfetchMultiplier,
		KeywordBoost:        cfg.KeywordBoost,
		MaxImages:           cfg.MaxImages,
		ContextBudget:       cfg.ContextBudget,
		AssetScorePenalty:   cfg.AssetScorePenalty,
	}
	if cfg.SimilarityThreshold != 0 {
		t := cfg.SimilarityThreshold
		opts.SimilarityThreshold = &t
	}
	if cfg.RecencyWeight != 0 {
		w := cfg.RecencyWeight
		opts.RecencyWeight = &w
	}
	return opts
}
