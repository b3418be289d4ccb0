package scraper

import (
	"context"
	"time"
)

// Fetcher performs a single HTTP request. Implementations surface non-2xx
// statuses as normal responses and reserve errors for transport failures.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Extractor turns one paper number into an Extraction. It never panics past
// its own boundary; malformed pages become ExtractParseFailed.
type Extractor interface {
	Extract(ctx context.Context, id int) Extraction
}

// Filter decides whether an extracted paper is accepted into the result set.
type Filter interface {
	Matches(p Paper) bool
}

// CheckpointStore persists full result-set snapshots.
type CheckpointStore interface {
	Save(ctx context.Context, papers []Paper, path string) error
}

// PDFDownloader fetches the paper's PDF as a side effect of acceptance.
// Failures are reported via the return value and must not affect acceptance.
type PDFDownloader interface {
	Download(ctx context.Context, pdfURL string, id int) bool
}

// ArchiveStore mirrors accepted papers into durable external storage.
type ArchiveStore interface {
	SavePaper(ctx context.Context, p Paper) error
	Close()
}

// Publisher pushes acceptance events to a message broker.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// RenderDetector decides whether a fetched page warrants a headless re-fetch.
type RenderDetector interface {
	ShouldRender(resp FetchResponse) bool
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
