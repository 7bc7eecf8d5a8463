// Package segmenter splits extracted document text into ordered,
// heading-scoped segments and associates extracted visual assets with
// the segments that surround them. Both run once per document at
// ingestion time; neither touches storage or the network.
package segmenter

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"corpus-qa-go/pkg/extract"
)

// DefaultSegmentSize is the target segment size in characters.
const DefaultSegmentSize = 1000

// ErrInputFormat reports malformed (non-text) document input. It is
// fatal for that document's ingestion only.
var ErrInputFormat = errors.New("document text is not valid UTF-8")

// Segment is a contiguous span of a document's text. Ordinals are unique
// and strictly increasing within a document; the page/offset range marks
// where the segment's text came from, for asset association.
type Segment struct {
	Ordinal     int
	Heading     string
	Text        string
	StartPage   int
	StartOffset int
	EndPage     int
	EndOffset   int
}

var headingRe = regexp.MustCompile(`^#{1,6}\s+`)

// Split scans the document page by page, line by line. A heading line
// flushes the open segment and starts a new one under the new heading;
// within a heading's span the segment is flushed early once it exceeds
// targetSize, so no segment grows past 1.5x the target. Headings with no
// body text produce no segment.
func Split(pages []extract.Page, targetSize int) ([]Segment, error) {
	if targetSize <= 0 {
		targetSize = DefaultSegmentSize
	}
	hardCap := targetSize + targetSize/2

	for _, p := range pages {
		if !utf8.ValidString(p.Text) {
			return nil, ErrInputFormat
		}
	}

	var segments []Segment
	var buf strings.Builder
	heading := ""
	startPage, startOffset := 0, 0
	endPage, endOffset := 0, 0
	open := false

	flush := func() {
		text := strings.TrimSpace(buf.String())
		buf.Reset()
		open = false
		if text == "" {
			return
		}
		segments = append(segments, Segment{
			Ordinal:     len(segments),
			Heading:     heading,
			Text:        text,
			StartPage:   startPage,
			StartOffset: startOffset,
			EndPage:     endPage,
			EndOffset:   endOffset,
		})
	}

	appendRun := func(run string, page, offset int) {
		if !open {
			startPage, startOffset = page, offset
			open = true
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(run)
		endPage, endOffset = page, offset+len(run)
	}

	for _, p := range pages {
		offset := 0
		for _, line := range strings.Split(p.Text, "\n") {
			lineStart := offset
			offset += len(line) + 1

			if headingRe.MatchString(line) {
				flush()
				heading = strings.TrimSpace(strings.TrimLeft(line, "# "))
				continue
			}

			// Flush first if appending would blow past the hard cap.
			if open && buf.Len()+len(line)+1 > hardCap {
				flush()
			}

			// A single oversized line is hard-split on its own.
			for len(line) > hardCap {
				cut := targetSize
				for cut > 0 && !utf8.RuneStart(line[cut]) {
					cut--
				}
				appendRun(line[:cut], p.Number, lineStart)
				flush()
				lineStart += cut
				line = line[cut:]
			}

			if strings.TrimSpace(line) == "" && !open {
				continue
			}
			appendRun(line, p.Number, lineStart)

			if buf.Len() > targetSize {
				flush()
			}
		}
	}
	flush()

	return segments, nil
}
