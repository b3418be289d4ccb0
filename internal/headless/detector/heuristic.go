// Package detector decides when a page warrants a headless re-fetch.
package detector

import (
	"bytes"
	"strings"

	"github.com/econlabs/nber-paper-crawler/internal/scraper"
)

// Heuristic implements a handful of rule-based promotions. A page that came
// back essentially empty, is dominated by script tags, or carries an SPA
// root marker was probably built client-side, so the static HTML will not
// contain the abstract.
type Heuristic struct {
	BodyLengthThreshold int
}

// NewHeuristic creates a new detector.
func NewHeuristic(threshold int) *Heuristic {
	if threshold == 0 {
		threshold = 2048
	}
	return &Heuristic{BodyLengthThreshold: threshold}
}

var spaMarkers = [][]byte{
	[]byte("__next"),
	[]byte(`id="root"`),
	[]byte(`id="app"`),
	[]byte("data-reactroot"),
}

// ShouldRender decides whether a headless re-fetch is warranted.
func (h *Heuristic) ShouldRender(resp scraper.FetchResponse) bool {
	if resp.StatusCode != 200 || resp.Rendered {
		return false
	}
	body := resp.Body
	if len(body) == 0 {
		return true
	}
	if len(body) < h.BodyLengthThreshold && scriptDensityHigh(body) {
		return true
	}
	for _, marker := range spaMarkers {
		if bytes.Contains(body, marker) {
			return true
		}
	}
	return false
}

// scriptDensityHigh reports whether script tags cover more than half of the
// document bytes.
func scriptDensityHigh(body []byte) bool {
	lower := strings.ToLower(string(body))
	total := len(lower)
	if total == 0 {
		return false
	}

	const (
		openTag  = "<script"
		closeTag = "</script>"
	)
	coverage := 0
	pos := 0
	for {
		rel := strings.Index(lower[pos:], openTag)
		if rel == -1 {
			break
		}
		start := pos + rel
		end := strings.Index(lower[start:], closeTag)
		if end == -1 {
			coverage += total - start
			break
		}
		coverage += end + len(closeTag)
		pos = start + end + len(closeTag)
	}
	return coverage*2 > total
}
