package segmenter

import (
	"strings"
	"testing"

	"corpus-qa-go/pkg/extract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignSamePageSegment(t *testing.T) {
	segments := []Segment{
		{Ordinal: 0, Heading: "Setup", StartPage: 1, StartOffset: 0},
		{Ordinal: 1, Heading: "Usage", StartPage: 1, StartOffset: 500},
	}
	pages := []extract.Page{{Number: 1, Text: "some page text describing the figure"}}
	assets := []extract.PageAsset{{Page: 1, Position: 600, Caption: "figure one"}}

	located := Assign(segments, pages, assets, 0)
	require.Len(t, located, 1)
	require.NotNil(t, located[0].SegmentOrdinal)
	assert.Equal(t, 1, *located[0].SegmentOrdinal)
}

func TestAssignNearestPrecedingSegment(t *testing.T) {
	segments := []Segment{
		{Ordinal: 0, StartPage: 1, StartOffset: 0},
		{Ordinal: 1, StartPage: 2, StartOffset: 0},
		{Ordinal: 2, StartPage: 5, StartOffset: 0},
	}
	pages := []extract.Page{{Number: 3, Text: "a page with no segment start of its own"}}
	// page 3 has no segment, nearest preceding starts on page 2
	assets := []extract.PageAsset{{Page: 3, Position: 10}}

	located := Assign(segments, pages, assets, 0)
	require.Len(t, located, 1)
	require.NotNil(t, located[0].SegmentOrdinal)
	assert.Equal(t, 1, *located[0].SegmentOrdinal)
}

func TestAssignBeforeFirstSegmentStaysUnassigned(t *testing.T) {
	segments := []Segment{
		{Ordinal: 0, StartPage: 2, StartOffset: 0},
	}
	pages := []extract.Page{{Number: 1, Text: "cover page artwork"}}
	assets := []extract.PageAsset{{Page: 1, Position: 0, Caption: "cover"}}

	located := Assign(segments, pages, assets, 0)
	require.Len(t, located, 1)
	assert.Nil(t, located[0].SegmentOrdinal)
	assert.Equal(t, "cover page artwork", located[0].Context)
}

func TestAssignContextWindowBounds(t *testing.T) {
	long := ""
	for i := 0; i < 100; i++ {
		long += "0123456789"
	}
	segments := []Segment{{Ordinal: 0, Heading: "Data", StartPage: 1, StartOffset: 0}}
	pages := []extract.Page{{Number: 1, Text: long}}
	assets := []extract.PageAsset{{Page: 1, Position: 500}}

	located := Assign(segments, pages, assets, 50)
	require.Len(t, located, 1)

	// heading plus at most window runes on each side
	assert.LessOrEqual(t, len(located[0].Context), len("Data ")+100)
	assert.Contains(t, located[0].Context, "Data")
}

func TestAssignContextIncludesHeading(t *testing.T) {
	segments := []Segment{{Ordinal: 0, Heading: "Results", StartPage: 1, StartOffset: 0}}
	pages := []extract.Page{{Number: 1, Text: "measured throughput doubled after the change"}}
	assets := []extract.PageAsset{{Page: 1, Position: 9, Caption: "throughput chart"}}

	located := Assign(segments, pages, assets, 0)
	require.Len(t, located, 1)
	assert.Contains(t, located[0].Context, "Results")
	assert.Contains(t, located[0].Context, "throughput")
}

func TestAssignContextWindowOnMultibytePage(t *testing.T) {
	// 100 three-byte runes with a marker at rune 50; the asset position
	// is the marker's byte offset, not its rune index
	text := strings.Repeat("あ", 50) + "目" + strings.Repeat("あ", 49)
	segments := []Segment{{Ordinal: 0, StartPage: 1, StartOffset: 0}}
	pages := []extract.Page{{Number: 1, Text: text}}
	assets := []extract.PageAsset{{Page: 1, Position: 50 * 3}}

	located := Assign(segments, pages, assets, 5)
	require.Len(t, located, 1)
	assert.Contains(t, located[0].Context, "目")
	// five runes of context per side, nothing more
	assert.LessOrEqual(t, len([]rune(located[0].Context)), 11)
}
