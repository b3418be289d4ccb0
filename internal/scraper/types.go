// Package scraper defines core types shared across subsystems.
package scraper

import (
	"fmt"
	"net/http"
	"time"
)

// Paper is the unit of output produced by the extractor. Field order matches
// the on-disk checkpoint layout. A Paper is immutable once constructed; it is
// either accepted into the result set or discarded.
type Paper struct {
	ID              int       `json:"id"`
	URL             string    `json:"url"`
	Title           string    `json:"title,omitempty"`
	Authors         []string  `json:"authors"`
	Abstract        string    `json:"abstract,omitempty"`
	PDFURL          string    `json:"pdf_url,omitempty"`
	PublicationDate string    `json:"publication_date,omitempty"`
	DOI             string    `json:"doi,omitempty"`
	ExtractedAt     time.Time `json:"extracted_at"`
}

// Number returns the working-paper number in its canonical "w<id>" form.
func (p Paper) Number() string {
	return fmt.Sprintf("w%d", p.ID)
}

// StopReason names the terminal state of a scan.
type StopReason string

// Terminal scan states.
const (
	StopLimit     StopReason = "limit"
	StopFailures  StopReason = "failures"
	StopExhausted StopReason = "exhausted"
	StopCanceled  StopReason = "canceled"
)

// ScanState is the transient bookkeeping for one run. It is owned exclusively
// by the Controller; the cursor only ever decreases.
type ScanState struct {
	Cursor              int
	Checked             int
	Accepted            int
	ConsecutiveFailures int
}

// ScanParams captures the per-run knobs passed in at start. The core holds no
// global configuration state of its own.
type ScanParams struct {
	// Query is the topic filter; empty matches everything.
	Query string
	// StartDate and EndDate bound the publication-date window. Formats
	// YYYY/MM/DD and YYYY-MM-DD are accepted; anything else is ignored.
	StartDate string
	EndDate   string
	// StartNumber is the first paper number to examine. Zero means locate
	// the frontier automatically.
	StartNumber int
	// MaxPapers caps accepted papers; zero means unlimited.
	MaxPapers int
	// MaxChecked caps examined paper numbers; zero means unlimited.
	MaxChecked int
	// MaxConsecutiveFailures stops the scan after this many sequential
	// misses. Zero selects the default of 50.
	MaxConsecutiveFailures int
	// CheckpointPath receives full result-set snapshots during the run.
	CheckpointPath string
	// CheckpointEvery triggers a snapshot after every Nth acceptance.
	// Zero selects the default of 10.
	CheckpointEvery int
	// ProgressEvery controls the checked-count reporting cadence. Zero
	// selects the default of 50.
	ProgressEvery int
	// DownloadPDFs enables the side-effect PDF download on acceptance.
	DownloadPDFs bool
}

// Default cadences and thresholds, matching the upstream site's tolerances.
const (
	DefaultMaxConsecutiveFailures = 50
	DefaultCheckpointEvery        = 10
	DefaultProgressEvery          = 50
)

// ScanResult is returned to the caller when a scan reaches DONE.
type ScanResult struct {
	Papers []Paper
	State  ScanState
	Reason StopReason
}

// FetchRequest captures everything needed to fetch one URL.
type FetchRequest struct {
	URL string
	// Method defaults to GET; the frontier locator probes with HEAD.
	Method  string
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation. Non-2xx
// statuses are normal responses; the caller decides what they mean.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
	Rendered   bool
}

// OK reports whether the response carries a 2xx status.
func (r FetchResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// NotFound reports whether the document does not exist at this URL.
func (r FetchResponse) NotFound() bool {
	return r.StatusCode == http.StatusNotFound || r.StatusCode == http.StatusGone
}

// ExtractOutcome classifies the result of one extraction attempt so the
// controller and reporting can react per kind instead of collapsing
// everything into a single fallback branch.
type ExtractOutcome int

// Extraction outcomes.
const (
	ExtractOK ExtractOutcome = iota
	ExtractNotFound
	ExtractParseFailed
	ExtractNetworkFailed
)

// String names the outcome for logs.
func (o ExtractOutcome) String() string {
	switch o {
	case ExtractOK:
		return "ok"
	case ExtractNotFound:
		return "not_found"
	case ExtractParseFailed:
		return "parse_failed"
	case ExtractNetworkFailed:
		return "network_failed"
	default:
		return "unknown"
	}
}

// Extraction bundles the paper (when found) with the outcome kind. Err is set
// for the failure kinds and is informational only; failures never abort the
// scan.
type Extraction struct {
	Paper   *Paper
	Outcome ExtractOutcome
	Err     error
}

// Found reports whether the extraction produced a usable paper.
func (e Extraction) Found() bool {
	return e.Outcome == ExtractOK && e.Paper != nil
}
