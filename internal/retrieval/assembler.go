package retrieval

import (
	"fmt"
	"strings"

	"corpus-qa-go/internal/model"
)

// Assemble packs the selected candidates into a bounded context.
// Segments are appended in final-score order until the next whole
// segment would exceed the budget; no segment is ever truncated
// mid-text. Assets are attached outside the budget check, since images
// travel to the generation step as separate objects, not inlined text.
func Assemble(candidates []Candidate, docs map[string]*model.Document, assets []RankedAsset, budget int, partial bool) *ContextPackage {
	pkg := &ContextPackage{
		Entries: make([]ContextEntry, 0, len(candidates)),
		Assets:  assets,
		Budget:  budget,
		Partial: partial,
	}

	var text strings.Builder
	for _, c := range candidates {
		filename := "unknown"
		if doc, ok := docs[c.DocHash]; ok {
			filename = doc.Filename
		}
		citation := filename
		if c.Heading != "" {
			citation = filename + " / " + c.Heading
		}

		block := fmt.Sprintf("[%d] (%s)\n%s\n\n", len(pkg.Entries)+1, citation, c.Text)
		if text.Len()+len(block) > budget {
			break
		}
		text.WriteString(block)

		pkg.Entries = append(pkg.Entries, ContextEntry{
			SegmentID:  c.SegmentID,
			DocHash:    c.DocHash,
			Filename:   filename,
			Heading:    c.Heading,
			Citation:   citation,
			Text:       c.Text,
			Similarity: c.Similarity,
			FinalScore: c.FinalScore,
		})
	}

	pkg.ContextText = text.String()
	pkg.BudgetUsed = text.Len()
	return pkg
}
