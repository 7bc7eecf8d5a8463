package segmenter

import (
	"strings"
	"testing"

	"corpus-qa-go/pkg/extract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitOrdinalsStrictlyIncrease(t *testing.T) {
	pages := []extract.Page{
		{Number: 1, Text: "## Intro\n" + strings.Repeat("alpha beta gamma. ", 80) + "\n## Detail\n" + strings.Repeat("delta epsilon. ", 120)},
		{Number: 2, Text: strings.Repeat("zeta eta theta. ", 100)},
	}

	segments, err := Split(pages, 500)
	require.NoError(t, err)
	require.NotEmpty(t, segments)

	for i, s := range segments {
		assert.Equal(t, i, s.Ordinal)
		assert.NotEmpty(t, strings.TrimSpace(s.Text))
	}
}

func TestSplitHeadingScoping(t *testing.T) {
	pages := []extract.Page{
		{Number: 1, Text: "## First\nbody one\n## Second\nbody two\nbody three"},
	}

	segments, err := Split(pages, 1000)
	require.NoError(t, err)
	require.Len(t, segments, 2)

	assert.Equal(t, "First", segments[0].Heading)
	assert.Equal(t, "body one", segments[0].Text)
	assert.Equal(t, "Second", segments[1].Heading)
	assert.Contains(t, segments[1].Text, "body two")
	assert.Contains(t, segments[1].Text, "body three")
	// heading lines never appear inside segment text
	for _, s := range segments {
		assert.NotContains(t, s.Text, "##")
	}
}

func TestSplitWithoutHeadings(t *testing.T) {
	text := strings.Repeat("plain prose with no headings at all. ", 60)
	pages := []extract.Page{{Number: 1, Text: text}}

	segments, err := Split(pages, 400)
	require.NoError(t, err)
	require.NotEmpty(t, segments)

	for _, s := range segments {
		assert.Empty(t, s.Heading)
	}
}

func TestSplitHeadingWithoutBodyYieldsNothing(t *testing.T) {
	pages := []extract.Page{{Number: 1, Text: "## Orphan heading\n\n## Another\n"}}

	segments, err := Split(pages, 1000)
	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestSplitRespectsHardCap(t *testing.T) {
	target := 200
	hardCap := target + target/2
	// one enormous unbroken line plus ordinary prose
	pages := []extract.Page{
		{Number: 1, Text: strings.Repeat("x", 2000) + "\n" + strings.Repeat("word soup here. ", 100)},
	}

	segments, err := Split(pages, target)
	require.NoError(t, err)
	require.NotEmpty(t, segments)

	for _, s := range segments {
		assert.LessOrEqual(t, len(s.Text), hardCap, "segment %d exceeds the size bound", s.Ordinal)
	}
}

func TestSplitHardSplitIsRuneSafe(t *testing.T) {
	// multibyte runes positioned across the cut point
	pages := []extract.Page{{Number: 1, Text: strings.Repeat("日本語テキスト", 200)}}

	segments, err := Split(pages, 100)
	require.NoError(t, err)
	require.NotEmpty(t, segments)

	for _, s := range segments {
		assert.True(t, strings.ToValidUTF8(s.Text, "") == s.Text, "segment %d holds invalid UTF-8", s.Ordinal)
	}
}

func TestSplitReconstructsBodyText(t *testing.T) {
	pages := []extract.Page{
		{Number: 1, Text: "## Part One\nfirst sentence\nsecond sentence\n## Part Two\nthird sentence"},
	}

	segments, err := Split(pages, 1000)
	require.NoError(t, err)

	var joined strings.Builder
	for _, s := range segments {
		joined.WriteString(s.Text)
		joined.WriteString("\n")
	}
	for _, want := range []string{"first sentence", "second sentence", "third sentence"} {
		assert.Contains(t, joined.String(), want)
	}
}

func TestSplitRejectsInvalidUTF8(t *testing.T) {
	pages := []extract.Page{{Number: 1, Text: "valid prefix \xff\xfe broken"}}

	segments, err := Split(pages, 1000)
	assert.ErrorIs(t, err, ErrInputFormat)
	assert.Nil(t, segments)
}

func TestSplitZeroTargetUsesDefault(t *testing.T) {
	pages := []extract.Page{{Number: 1, Text: strings.Repeat("filler text. ", 300)}}

	segments, err := Split(pages, 0)
	require.NoError(t, err)
	require.NotEmpty(t, segments)

	hardCap := DefaultSegmentSize + DefaultSegmentSize/2
	for _, s := range segments {
		assert.LessOrEqual(t, len(s.Text), hardCap)
	}
}
