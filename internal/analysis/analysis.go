// Package analysis computes summary statistics over a collected paper set.
package analysis

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/econlabs/nber-paper-crawler/internal/scraper"
)

// Summary aggregates a paper collection for reporting.
type Summary struct {
	Total        int
	WithAbstract int
	WithPDF      int
	WithDOI      int
	ByYear       map[string]int
	TopAuthors   []Count
	TopKeywords  []Count
}

// Count pairs a label with its occurrence count.
type Count struct {
	Label string
	N     int
}

var reWord = regexp.MustCompile(`[a-z]{4,}`)

// Words too generic to be useful as keywords.
var stopwords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {}, "which": {},
	"these": {}, "their": {}, "paper": {}, "using": {}, "find": {}, "also": {},
	"more": {}, "than": {}, "effects": {}, "results": {}, "evidence": {},
	"between": {}, "among": {}, "over": {}, "both": {}, "when": {}, "were": {},
	"about": {}, "into": {}, "such": {}, "other": {}, "there": {}, "while": {},
	"across": {}, "within": {}, "based": {}, "show": {}, "data": {}, "study": {},
	"model": {}, "models": {}, "estimate": {}, "estimates": {}, "however": {},
}

// Summarize computes aggregate statistics over papers.
func Summarize(papers []scraper.Paper, topN int) Summary {
	if topN <= 0 {
		topN = 10
	}
	s := Summary{ByYear: make(map[string]int)}
	authors := make(map[string]int)
	keywords := make(map[string]int)

	for _, p := range papers {
		s.Total++
		if p.Abstract != "" {
			s.WithAbstract++
		}
		if p.PDFURL != "" {
			s.WithPDF++
		}
		if p.DOI != "" {
			s.WithDOI++
		}
		if y := yearOf(p.PublicationDate); y != "" {
			s.ByYear[y]++
		}
		for _, a := range p.Authors {
			a = strings.TrimSpace(a)
			if a != "" {
				authors[a]++
			}
		}
		for _, w := range reWord.FindAllString(strings.ToLower(p.Abstract), -1) {
			if _, skip := stopwords[w]; skip {
				continue
			}
			keywords[w]++
		}
	}

	s.TopAuthors = topCounts(authors, topN)
	s.TopKeywords = topCounts(keywords, topN)
	return s
}

func yearOf(date string) string {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return ""
	}
	year := date[:4]
	for _, r := range year {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return year
}

func topCounts(m map[string]int, n int) []Count {
	counts := make([]Count, 0, len(m))
	for label, c := range m {
		counts = append(counts, Count{Label: label, N: c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].N != counts[j].N {
			return counts[i].N > counts[j].N
		}
		return counts[i].Label < counts[j].Label
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// WriteReport renders a human-readable summary.
func WriteReport(w io.Writer, s Summary) error {
	var b strings.Builder
	b.WriteString("Paper collection summary\n")
	b.WriteString("========================\n")
	fmt.Fprintf(&b, "Total papers:     %d\n", s.Total)
	fmt.Fprintf(&b, "With abstract:    %d (%s)\n", s.WithAbstract, percent(s.WithAbstract, s.Total))
	fmt.Fprintf(&b, "With PDF URL:     %d (%s)\n", s.WithPDF, percent(s.WithPDF, s.Total))
	fmt.Fprintf(&b, "With DOI:         %d (%s)\n", s.WithDOI, percent(s.WithDOI, s.Total))

	if len(s.ByYear) > 0 {
		b.WriteString("\nPapers by year\n")
		years := make([]string, 0, len(s.ByYear))
		for y := range s.ByYear {
			years = append(years, y)
		}
		sort.Sort(sort.Reverse(sort.StringSlice(years)))
		for _, y := range years {
			fmt.Fprintf(&b, "  %s: %d\n", y, s.ByYear[y])
		}
	}

	if len(s.TopAuthors) > 0 {
		b.WriteString("\nTop authors\n")
		for _, c := range s.TopAuthors {
			fmt.Fprintf(&b, "  %-30s %d\n", c.Label, c.N)
		}
	}

	if len(s.TopKeywords) > 0 {
		b.WriteString("\nTop abstract keywords\n")
		for _, c := range s.TopKeywords {
			fmt.Fprintf(&b, "  %-30s %d\n", c.Label, c.N)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func percent(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100)
}
