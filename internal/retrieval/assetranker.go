package retrieval

import (
	"regexp"
	"sort"
	"strings"

	"corpus-qa-go/internal/model"
)

// RankAssets scores the assets linked to the surviving segments against
// the query fingerprint and returns at most maxImages of them,
// descending by score. Fingerprinted assets score by cosine similarity;
// assets without a fingerprint inherit their owning segment's final
// score scaled by the penalty factor, so they can surface without
// outranking a query-relevant, fingerprinted asset. When assigned
// segments yield fewer than maxImages, document-level (unassigned)
// assets fill the remaining slots by caption keyword overlap with the
// query.
func RankAssets(assigned, fallback []*model.Asset, queryVector []float32, question string, segmentScores map[string]float64, maxImages int, penalty float64) []RankedAsset {
	ranked := make([]RankedAsset, 0, len(assigned))
	for _, a := range assigned {
		var score float64
		if a.HasFingerprint() {
			score = Cosine(queryVector, a.Fingerprint)
		} else if a.SegmentID != nil {
			score = segmentScores[*a.SegmentID] * penalty
		}
		ranked = append(ranked, RankedAsset{Asset: a, Score: score})
	}

	sortRanked(ranked)
	if len(ranked) > maxImages {
		ranked = ranked[:maxImages]
	}
	if len(ranked) == maxImages || len(fallback) == 0 {
		return ranked
	}

	// Document-level fallback: only assets whose caption shares at least
	// one keyword with the query, best overlap first.
	fb := make([]RankedAsset, 0, len(fallback))
	for _, a := range fallback {
		if overlap := keywordOverlap(question, a.Caption); overlap > 0 {
			fb = append(fb, RankedAsset{Asset: a, Score: overlap})
		}
	}
	sortRanked(fb)
	for _, ra := range fb {
		if len(ranked) == maxImages {
			break
		}
		ranked = append(ranked, ra)
	}
	return ranked
}

func sortRanked(assets []RankedAsset) {
	sort.SliceStable(assets, func(a, b int) bool {
		if assets[a].Score != assets[b].Score {
			return assets[a].Score > assets[b].Score
		}
		return assets[a].Asset.ID < assets[b].Asset.ID
	})
}

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

// keywordOverlap is the fraction of distinct query tokens present in the
// caption, in [0, 1].
func keywordOverlap(question, caption string) float64 {
	queryTokens := tokenRe.FindAllString(strings.ToLower(question), -1)
	if len(queryTokens) == 0 || caption == "" {
		return 0
	}
	captionTokens := make(map[string]struct{})
	for _, t := range tokenRe.FindAllString(strings.ToLower(caption), -1) {
		captionTokens[t] = struct{}{}
	}
	seen := make(map[string]struct{}, len(queryTokens))
	matched := 0
	for _, t := range queryTokens {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := captionTokens[t]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(seen))
}
