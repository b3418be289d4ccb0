package scraper

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// FrontierConfig bounds the probe window used to locate the newest paper.
// The window is external configuration, not a derived constant: the
// repository keeps growing, so operators bump it as numbering advances.
type FrontierConfig struct {
	ProbeStart int
	ProbeEnd   int
	ProbeStep  int
	// Buffer is added to the first hit to tolerate even-newer papers
	// beyond the probe granularity.
	Buffer int
	// Fallback is returned when no paper responds inside the window.
	Fallback int
}

// Default probe window. Matches the repository's numbering as of mid-2025.
const (
	DefaultProbeStart = 33500
	DefaultProbeEnd   = 33000
	DefaultProbeStep  = 10
	DefaultBuffer     = 10
	DefaultFallback   = 33200
)

func (c FrontierConfig) withDefaults() FrontierConfig {
	if c.ProbeStart <= 0 {
		c.ProbeStart = DefaultProbeStart
	}
	if c.ProbeEnd <= 0 {
		c.ProbeEnd = DefaultProbeEnd
	}
	if c.ProbeStep <= 0 {
		c.ProbeStep = DefaultProbeStep
	}
	if c.Buffer <= 0 {
		c.Buffer = DefaultBuffer
	}
	if c.Fallback <= 0 {
		c.Fallback = DefaultFallback
	}
	return c
}

// FrontierLocator finds the newest existing paper number by probing
// decreasing IDs with lightweight HEAD requests. The probes run sequentially
// through the shared pacer; the frontier is a heuristic, so a miss on the
// newest few papers is an accepted trade against a full top-down scan.
type FrontierLocator struct {
	fetcher Fetcher
	baseURL string
	cfg     FrontierConfig
	logger  *zap.Logger
}

// NewFrontierLocator builds a locator over the given fetcher.
func NewFrontierLocator(fetcher Fetcher, baseURL string, cfg FrontierConfig, logger *zap.Logger) *FrontierLocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FrontierLocator{
		fetcher: fetcher,
		baseURL: baseURL,
		cfg:     cfg.withDefaults(),
		logger:  logger,
	}
}

// Locate probes from ProbeStart downward by ProbeStep until a paper answers
// 200, and returns that number plus the buffer. When the window is exhausted
// it returns the configured fallback. The only error path is cancellation.
func (l *FrontierLocator) Locate(ctx context.Context) (int, error) {
	cfg := l.cfg
	l.logger.Info("locating frontier",
		zap.Int("probe_start", cfg.ProbeStart),
		zap.Int("probe_end", cfg.ProbeEnd),
		zap.Int("probe_step", cfg.ProbeStep),
	)
	for n := cfg.ProbeStart; n > cfg.ProbeEnd; n -= cfg.ProbeStep {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		resp, err := l.fetcher.Fetch(ctx, FetchRequest{
			URL:    PaperURL(l.baseURL, n),
			Method: http.MethodHead,
		})
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			l.logger.Debug("frontier probe failed", zap.Int("paper", n), zap.Error(err))
			continue
		}
		if resp.StatusCode == http.StatusOK {
			start := n + cfg.Buffer
			l.logger.Info("frontier located", zap.Int("hit", n), zap.Int("start", start))
			return start, nil
		}
	}
	l.logger.Info("frontier probe window exhausted, using fallback", zap.Int("fallback", cfg.Fallback))
	return cfg.Fallback, nil
}
