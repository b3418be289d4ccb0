// Package filter implements the acceptance predicates for extracted papers.
package filter

import (
	"regexp"
	"strings"
	"time"

	"github.com/econlabs/nber-paper-crawler/internal/scraper"
)

// aiSynonyms expands the reserved "ai" query into its fixed synonym set.
// Any single hit counts as a match.
var aiSynonyms = []string{
	`\bai\b`,
	`\bartificial intelligence\b`,
	`\bmachine learning\b`,
	`\bdeep learning\b`,
	`\bneural network\b`,
	`\balgorithm\b`,
}

// Criteria captures the active topic query and date window for one run.
type Criteria struct {
	Query     string
	StartDate string
	EndDate   string
}

// Filter decides whether a paper matches the topic query and falls inside the
// optional publication-date window. Both predicates are pure functions of the
// paper; a Filter is safe to share across goroutines.
type Filter struct {
	terms []*regexp.Regexp
	start *time.Time
	end   *time.Time
}

// New compiles the criteria. Query terms are whole-word and
// case-insensitive; unparseable date bounds are dropped rather than turned
// into rejections.
func New(c Criteria) *Filter {
	f := &Filter{terms: compileTerms(c.Query)}
	if t, ok := parseFlexibleDate(c.StartDate); ok {
		f.start = &t
	}
	if t, ok := parseFlexibleDate(c.EndDate); ok {
		f.end = &t
	}
	return f
}

func compileTerms(query string) []*regexp.Regexp {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	var patterns []string
	if query == "ai" {
		patterns = aiSynonyms
	} else {
		patterns = []string{`\b` + regexp.QuoteMeta(query) + `\b`}
	}
	terms := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		terms = append(terms, regexp.MustCompile(`(?i)`+p))
	}
	return terms
}

// Matches reports whether both predicates pass.
func (f *Filter) Matches(p scraper.Paper) bool {
	return f.MatchesQuery(p) && f.MatchesDateRange(p)
}

// MatchesQuery checks the topic terms against title then abstract; either
// field matching is sufficient. An empty query matches everything.
func (f *Filter) MatchesQuery(p scraper.Paper) bool {
	if len(f.terms) == 0 {
		return true
	}
	for _, term := range f.terms {
		if term.MatchString(p.Title) || term.MatchString(p.Abstract) {
			return true
		}
	}
	return false
}

// MatchesDateRange checks the publication date against the window. The
// predicate fails open: papers without a parseable date pass, and so does
// anything else the comparison cannot decide. Date filtering is advisory,
// never a hard gate that could silently drop valid data.
func (f *Filter) MatchesDateRange(p scraper.Paper) bool {
	if f.start == nil && f.end == nil {
		return true
	}
	pub, ok := parseFlexibleDate(p.PublicationDate)
	if !ok {
		return true
	}
	if f.start != nil && pub.Before(*f.start) {
		return false
	}
	if f.end != nil && pub.After(*f.end) {
		return false
	}
	return true
}

// parseFlexibleDate accepts the two formats papers carry in the wild.
func parseFlexibleDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	layout := "2006-01-02"
	if strings.Contains(s, "/") {
		layout = "2006/01/02"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
