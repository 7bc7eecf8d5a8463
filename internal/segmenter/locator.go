package segmenter

import (
	"strings"
	"unicode/utf8"

	"corpus-qa-go/pkg/extract"
)

// DefaultContextWindow bounds the surrounding-text snippet captured for
// each asset, in characters on each side of the asset position.
const DefaultContextWindow = 300

// LocatedAsset pairs a raw extracted asset with the segment it supports.
// SegmentOrdinal is nil when no segment exists on or before the asset's
// page; such assets stay retrievable only through document-level
// fallback.
type LocatedAsset struct {
	Raw            extract.PageAsset
	SegmentOrdinal *int
	Context        string
}

// Assign maps each raw asset onto the segment whose page/offset range
// contains its position, or failing that the nearest preceding segment
// by ordinal. Assets before the first segment are left unassigned rather
// than defaulted to segment 0.
func Assign(segments []Segment, pages []extract.Page, assets []extract.PageAsset, window int) []LocatedAsset {
	if window <= 0 {
		window = DefaultContextWindow
	}

	pageText := make(map[int]string, len(pages))
	for _, p := range pages {
		pageText[p.Number] = p.Text
	}

	located := make([]LocatedAsset, 0, len(assets))
	for _, a := range assets {
		idx := locate(segments, a.Page, a.Position)

		la := LocatedAsset{Raw: a}
		snippet := contextWindow(pageText[a.Page], a.Position, window)
		if idx >= 0 {
			ordinal := segments[idx].Ordinal
			la.SegmentOrdinal = &ordinal
			la.Context = strings.TrimSpace(segments[idx].Heading + " " + snippet)
		} else {
			la.Context = snippet
		}
		located = append(located, la)
	}
	return located
}

// locate returns the index of the last segment starting at or before the
// given page/position, or -1 when the asset precedes every segment.
// Same-page starts win over earlier-page ones by construction, since
// segments are walked in ordinal order.
func locate(segments []Segment, page, pos int) int {
	best := -1
	for i, s := range segments {
		if s.StartPage > page {
			break
		}
		if s.StartPage == page && s.StartOffset > pos {
			break
		}
		best = i
	}
	return best
}

// contextWindow cuts a rune-safe window of text around pos, a byte
// offset into text.
func contextWindow(text string, pos, window int) string {
	if text == "" {
		return ""
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(text) {
		pos = len(text)
	}
	for pos > 0 && pos < len(text) && !utf8.RuneStart(text[pos]) {
		pos--
	}
	idx := utf8.RuneCountInString(text[:pos])

	runes := []rune(text)
	start := idx - window
	if start < 0 {
		start = 0
	}
	end := idx + window
	if end > len(runes) {
		end = len(runes)
	}
	return strings.TrimSpace(string(runes[start:end]))
}
