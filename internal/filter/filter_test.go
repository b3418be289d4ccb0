package filter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/econlabs/nber-paper-crawler/internal/scraper"
)

// TestMatchesQueryAISynonyms verifies the reserved "ai" query matches any of
// its synonym terms, not just the literal token.
func TestMatchesQueryAISynonyms(t *testing.T) {
	t.Parallel()

	f := New(Criteria{Query: "AI"})

	cases := []struct {
		name  string
		paper scraper.Paper
		want  bool
	}{
		{
			name:  "literal ai token in title",
			paper: scraper.Paper{Title: "The Impact of AI on Labor Markets"},
			want:  true,
		},
		{
			name:  "synonym in abstract only",
			paper: scraper.Paper{Title: "Hiring Decisions", Abstract: "We train a neural network on resume data."},
			want:  true,
		},
		{
			name:  "machine learning synonym",
			paper: scraper.Paper{Abstract: "Machine learning techniques reveal new pricing patterns."},
			want:  true,
		},
		{
			name:  "ai embedded in a larger word does not count",
			paper: scraper.Paper{Title: "Maintaining Airline Schedules"},
			want:  false,
		},
		{
			name:  "no term anywhere",
			paper: scraper.Paper{Title: "Fiscal Policy in Recessions", Abstract: "Government spending multipliers."},
			want:  false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, f.MatchesQuery(tc.paper))
		})
	}
}

// TestMatchesQueryWholeWord verifies non-reserved queries only match on word
// boundaries.
func TestMatchesQueryWholeWord(t *testing.T) {
	t.Parallel()

	f := New(Criteria{Query: "labor"})

	require.True(t, f.MatchesQuery(scraper.Paper{Title: "Labor Market Dynamics"}))
	require.True(t, f.MatchesQuery(scraper.Paper{Abstract: "effects on labor supply"}))
	require.False(t, f.MatchesQuery(scraper.Paper{Title: "Collaborative Laboratories"}))
}

// TestMatchesQueryEmptyMatchesEverything verifies the absence of a query
// accepts any paper.
func TestMatchesQueryEmptyMatchesEverything(t *testing.T) {
	t.Parallel()

	f := New(Criteria{})
	require.True(t, f.MatchesQuery(scraper.Paper{Title: "Anything At All"}))
	require.True(t, f.MatchesQuery(scraper.Paper{}))
}

// TestMatchesDateRange exercises the window bounds in both accepted formats.
func TestMatchesDateRange(t *testing.T) {
	t.Parallel()

	f := New(Criteria{StartDate: "2023-01-01", EndDate: "2023-12-31"})

	cases := []struct {
		name string
		date string
		want bool
	}{
		{"inside window dashes", "2023-06-15", true},
		{"inside window slashes", "2023/06/15", true},
		{"on start bound", "2023-01-01", true},
		{"on end bound", "2023-12-31", true},
		{"before window", "2022-12-31", false},
		{"after window", "2024-01-01", false},
		{"unparseable date passes", "June 2023", true},
		{"missing date passes", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := f.MatchesDateRange(scraper.Paper{PublicationDate: tc.date})
			require.Equal(t, tc.want, got)
		})
	}
}

// TestMatchesDateRangeOpenEnded verifies a single-sided window only enforces
// its set bound.
func TestMatchesDateRangeOpenEnded(t *testing.T) {
	t.Parallel()

	onlyStart := New(Criteria{StartDate: "2024-01-01"})
	require.True(t, onlyStart.MatchesDateRange(scraper.Paper{PublicationDate: "2030-05-01"}))
	require.False(t, onlyStart.MatchesDateRange(scraper.Paper{PublicationDate: "2023-12-31"}))

	onlyEnd := New(Criteria{EndDate: "2020-06-30"})
	require.True(t, onlyEnd.MatchesDateRange(scraper.Paper{PublicationDate: "2019-01-15"}))
	require.False(t, onlyEnd.MatchesDateRange(scraper.Paper{PublicationDate: "2020-07-01"}))
}

// TestMatchesInvalidBoundsDropped verifies unparseable configured bounds are
// ignored rather than rejecting everything.
func TestMatchesInvalidBoundsDropped(t *testing.T) {
	t.Parallel()

	f := New(Criteria{StartDate: "not-a-date", EndDate: "also bad"})
	require.True(t, f.MatchesDateRange(scraper.Paper{PublicationDate: "1999-01-01"}))
}

// TestMatchesCombined verifies acceptance requires both predicates.
func TestMatchesCombined(t *testing.T) {
	t.Parallel()

	f := New(Criteria{Query: "ai", StartDate: "2023-01-01"})

	match := scraper.Paper{
		Title:           "Deep Learning and Productivity",
		PublicationDate: "2023-05-01",
	}
	require.True(t, f.Matches(match))

	wrongTopic := scraper.Paper{Title: "Trade Tariffs", PublicationDate: "2023-05-01"}
	require.False(t, f.Matches(wrongTopic))

	tooOld := scraper.Paper{Title: "Deep Learning and Productivity", PublicationDate: "2021-05-01"}
	require.False(t, f.Matches(tooOld))
}
