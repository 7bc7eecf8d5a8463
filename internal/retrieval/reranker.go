package retrieval

import (
	"sort"
	"strings"
	"time"
)

// Rerank computes each candidate's final score,
//
//	final = similarity x (1 - w) + recency x w
//
// and returns the set sorted descending by it. Recency is normalized by
// the age of the oldest document in the corpus, so scores stay in [0, 1]
// as the corpus grows; a strong similarity match still dominates because
// the recency term can never contribute more than w. When keywordBoost
// is set, candidates containing the literal query phrase get the boost
// added after the blend.
func Rerank(candidates []Candidate, ingested map[string]time.Time, oldest, now time.Time, w, keywordBoost float64, question string) []Candidate {
	maxAge := now.Sub(oldest)
	phrase := strings.ToLower(strings.TrimSpace(question))

	out := make([]Candidate, len(candidates))
	copy(out, candidates)
	for i := range out {
		rec := recencyScore(ingested[out[i].DocHash], now, maxAge)
		score := out[i].Similarity*(1-w) + rec*w
		if keywordBoost > 0 && phrase != "" && strings.Contains(strings.ToLower(out[i].Text), phrase) {
			score += keywordBoost
		}
		out[i].FinalScore = score
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].FinalScore != out[b].FinalScore {
			return out[a].FinalScore > out[b].FinalScore
		}
		return out[a].Similarity > out[b].Similarity
	})
	return out
}

// recencyScore maps a document's age onto [0, 1]: the oldest document in
// the corpus scores 0, a document ingested just now scores 1. Documents
// with unknown ingestion time score 0.
func recencyScore(ingestedAt, now time.Time, maxAge time.Duration) float64 {
	if ingestedAt.IsZero() {
		return 0
	}
	if maxAge <= 0 {
		return 1
	}
	age := now.Sub(ingestedAt)
	score := 1 - float64(age)/float64(maxAge)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
