package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/econlabs/nber-paper-crawler/internal/scraper"
)

func samplePapers() []scraper.Paper {
	return []scraper.Paper{
		{
			ID:              1,
			Title:           "AI and Wages",
			Authors:         []string{"Jane Doe", "John Roe"},
			Abstract:        "Automation automation automation changes wages across sectors and regions.",
			PDFURL:          "https://example.test/w1.pdf",
			DOI:             "10.3386/w1",
			PublicationDate: "2024/11/04",
		},
		{
			ID:              2,
			Title:           "Trade Shocks",
			Authors:         []string{"Jane Doe"},
			Abstract:        "Automation and trade interact in exposed regions.",
			PublicationDate: "2024-03-01",
		},
		{
			ID:              3,
			Title:           "Untitled",
			PublicationDate: "2023/07/15",
		},
	}
}

// TestSummarizeTotalsAndCoverage verifies the aggregate counters.
func TestSummarizeTotalsAndCoverage(t *testing.T) {
	t.Parallel()

	s := Summarize(samplePapers(), 5)
	require.Equal(t, 3, s.Total)
	require.Equal(t, 2, s.WithAbstract)
	require.Equal(t, 1, s.WithPDF)
	require.Equal(t, 1, s.WithDOI)
}

// TestSummarizeByYear verifies both date formats contribute to the year
// histogram.
func TestSummarizeByYear(t *testing.T) {
	t.Parallel()

	s := Summarize(samplePapers(), 5)
	require.Equal(t, map[string]int{"2024": 2, "2023": 1}, s.ByYear)
}

// TestSummarizeTopAuthors verifies author counting and ordering.
func TestSummarizeTopAuthors(t *testing.T) {
	t.Parallel()

	s := Summarize(samplePapers(), 5)
	require.NotEmpty(t, s.TopAuthors)
	require.Equal(t, "Jane Doe", s.TopAuthors[0].Label)
	require.Equal(t, 2, s.TopAuthors[0].N)
}

// TestSummarizeTopKeywords verifies stopwords are excluded and repeated terms
// rank first.
func TestSummarizeTopKeywords(t *testing.T) {
	t.Parallel()

	s := Summarize(samplePapers(), 3)
	require.NotEmpty(t, s.TopKeywords)
	require.Equal(t, "automation", s.TopKeywords[0].Label)
	require.Equal(t, 4, s.TopKeywords[0].N)
	for _, kw := range s.TopKeywords {
		require.NotEqual(t, "across", kw.Label)
	}
	require.Len(t, s.TopKeywords, 3)
}

// TestSummarizeEmpty verifies the zero-paper case.
func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	s := Summarize(nil, 10)
	require.Equal(t, 0, s.Total)
	require.Empty(t, s.TopAuthors)
	require.Empty(t, s.ByYear)
}

// TestWriteReport verifies the rendered report carries the headline numbers.
func TestWriteReport(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	require.NoError(t, WriteReport(&sb, Summarize(samplePapers(), 5)))
	out := sb.String()
	require.Contains(t, out, "Total papers:     3")
	require.Contains(t, out, "66.7%")
	require.Contains(t, out, "2024: 2")
	require.Contains(t, out, "Jane Doe")
	require.Contains(t, out, "automation")
}
