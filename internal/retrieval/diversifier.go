package retrieval

// Diversify selects min(n, available) candidates from the re-ranked
// sequence in two passes. Pass one walks in final-score order taking at
// most one candidate per distinct document; pass two fills any remaining
// slots allowing repeats. The output never contains duplicate segment
// IDs, and spans as many distinct documents as the candidate set allows.
func Diversify(candidates []Candidate, n int) []Candidate {
	if n <= 0 || len(candidates) == 0 {
		return nil
	}

	selected := make([]Candidate, 0, n)
	takenSegments := make(map[string]struct{}, n)
	takenDocs := make(map[string]struct{}, n)

	for _, c := range candidates {
		if len(selected) == n {
			return selected
		}
		if _, dup := takenDocs[c.DocHash]; dup {
			continue
		}
		takenDocs[c.DocHash] = struct{}{}
		takenSegments[c.SegmentID] = struct{}{}
		selected = append(selected, c)
	}

	for _, c := range candidates {
		if len(selected) == n {
			break
		}
		if _, dup := takenSegments[c.SegmentID]; dup {
			continue
		}
		takenSegments[c.SegmentID] = struct{}{}
		selected = append(selected, c)
	}

	return selected
}
