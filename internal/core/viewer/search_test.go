package viewer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/folio/internal/core/geom"
)

// needleBackend builds a document where "needle" appears on the given
// pages, found via the substring fallback.
func needleBackend(pageCount int, needlePages ...int) *fakeBackend {
	pages := blankPages(pageCount)
	for _, p := range needlePages {
		pages[p] = textPage("a needle in a haystack")
	}
	return newFakeBackend(pages...)
}

func TestSearch_NavigatesMatchesWithWraparound(t *testing.T) {
	backend := needleBackend(10, 2, 5, 9)
	v := newTestViewer(t, backend)

	changed, err := v.PerformSearch("needle")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, v.CurrentPage())

	summary, ok := v.SearchSummary()
	require.True(t, ok)
	assert.Equal(t, "needle", summary.Query)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 0, summary.CurrentIndex)

	changed, active := v.NextSearchMatch(1)
	require.True(t, active)
	assert.True(t, changed)
	assert.Equal(t, 5, v.CurrentPage())

	v.NextSearchMatch(1)
	assert.Equal(t, 9, v.CurrentPage())

	// Wraps past the end.
	v.NextSearchMatch(1)
	assert.Equal(t, 2, v.CurrentPage())

	// And back around the start.
	v.PreviousSearchMatch(1)
	assert.Equal(t, 9, v.CurrentPage())
}

func TestSearch_SeedsFirstMatchAtOrAfterCurrentPage(t *testing.T) {
	backend := needleBackend(10, 2, 5, 9)
	v := newTestViewer(t, backend)
	v.State.CurrentPage = 6

	_, err := v.PerformSearch("needle")
	require.NoError(t, err)
	assert.Equal(t, 9, v.CurrentPage())

	summary, _ := v.SearchSummary()
	assert.Equal(t, 2, summary.CurrentIndex)
}

func TestSearch_SeedWrapsWhenNoMatchAhead(t *testing.T) {
	backend := needleBackend(10, 1, 3)
	v := newTestViewer(t, backend)
	v.State.CurrentPage = 7

	_, err := v.PerformSearch("needle")
	require.NoError(t, err)
	assert.Equal(t, 1, v.CurrentPage(), "no match ahead wraps to the first")
}

func TestSearch_EmptyQueryClears(t *testing.T) {
	backend := needleBackend(5, 1)
	v := newTestViewer(t, backend)

	_, err := v.PerformSearch("needle")
	require.NoError(t, err)
	_, ok := v.SearchSummary()
	require.True(t, ok)

	changed, err := v.PerformSearch("   ")
	require.NoError(t, err)
	assert.False(t, changed)
	_, ok = v.SearchSummary()
	assert.False(t, ok)
}

func TestSearch_NoMatchesLeavesPageAlone(t *testing.T) {
	backend := needleBackend(5)
	v := newTestViewer(t, backend)
	v.State.CurrentPage = 3

	changed, err := v.PerformSearch("phantom")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 3, v.CurrentPage())

	summary, ok := v.SearchSummary()
	require.True(t, ok)
	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, -1, summary.CurrentIndex)

	changed, active := v.NextSearchMatch(1)
	assert.False(t, changed)
	assert.True(t, active)
}

func TestSearch_InactiveAdvanceReportsInactive(t *testing.T) {
	v := newTestViewer(t, newFakeBackend(blankPages(3)...))

	_, active := v.NextSearchMatch(1)
	assert.False(t, active)
	_, active = v.PreviousSearchMatch(1)
	assert.False(t, active)
}

func TestSearch_FallbackFoldsCaseAndNormalization(t *testing.T) {
	pages := blankPages(2)
	// Decomposed e + combining acute in the page, composed form in the
	// query.
	pages[1] = textPage("Cafe\u0301 menu")
	backend := newFakeBackend(pages...)
	v := newTestViewer(t, backend)

	changed, err := v.PerformSearch("caf\u00e9")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, v.CurrentPage())
}

func TestSearch_StructuredHitsKeepGeometry(t *testing.T) {
	pages := blankPages(3)
	pages[1].searchHits = [][]geom.Rect{
		{unitRect(), {Left: -1, Top: 0, Right: 2, Bottom: 0}}, // second rect clamps to zero area
		{{Left: 0.5, Top: 0.5, Right: 0.6, Bottom: 0.55}},
	}
	backend := newFakeBackend(pages...)
	v := newTestViewer(t, backend)

	_, err := v.PerformSearch("term")
	require.NoError(t, err)
	assert.Equal(t, 1, v.CurrentPage())

	summary, _ := v.SearchSummary()
	assert.Equal(t, 2, summary.Total)

	hl, ok := v.SearchHighlights()
	require.True(t, ok)
	assert.Equal(t, []geom.Rect{unitRect()}, hl.Current)
	assert.Len(t, hl.Others, 1)
}

func TestSearch_PageErrorsDegradeToOtherPages(t *testing.T) {
	backend := needleBackend(6, 1, 4)
	backend.searchErrs = map[int]error{1: errors.New("parse error")}
	backend.textErrs = map[int]error{1: errors.New("parse error")}
	v := newTestViewer(t, backend)

	_, err := v.PerformSearch("needle")
	require.NoError(t, err, "one bad page must not fail the search")

	summary, _ := v.SearchSummary()
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 4, v.CurrentPage())
}

func TestSearch_CountStepsAndModulo(t *testing.T) {
	backend := needleBackend(10, 1, 3, 5, 7)
	v := newTestViewer(t, backend)

	_, err := v.PerformSearch("needle")
	require.NoError(t, err)
	assert.Equal(t, 1, v.CurrentPage())

	// Nine steps over four matches is one net step.
	changed, active := v.NextSearchMatch(9)
	require.True(t, active)
	assert.True(t, changed)
	assert.Equal(t, 3, v.CurrentPage())

	// A full lap lands where it started.
	changed, _ = v.NextSearchMatch(4)
	assert.False(t, changed)
	assert.Equal(t, 3, v.CurrentPage())
}

func TestSearch_RectlessFallbackMatchesHaveNoHighlights(t *testing.T) {
	backend := needleBackend(4, 2)
	v := newTestViewer(t, backend)

	_, err := v.PerformSearch("needle")
	require.NoError(t, err)
	assert.Equal(t, 2, v.CurrentPage())

	_, ok := v.SearchHighlights()
	assert.False(t, ok)
}
