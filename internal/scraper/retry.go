package scraper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultMaxRetries bounds fetch attempts per request.
const DefaultMaxRetries = 3

// Pacer spaces requests against the upstream host. One pacer is shared by
// every component that touches the network during a run, so the fixed
// inter-request delay holds across page fetches, frontier probes, and PDF
// downloads alike.
type Pacer struct {
	limiter *rate.Limiter
	delay   time.Duration
}

// NewPacer builds a pacer enforcing one request per delay interval. A
// non-positive delay disables pacing (tests).
func NewPacer(delay time.Duration) *Pacer {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Pacer{
		limiter: rate.NewLimiter(limit, 1),
		delay:   delay,
	}
}

// Wait blocks until the next request slot is available.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pacer wait: %w", err)
	}
	return nil
}

// Delay returns the configured inter-request delay.
func (p *Pacer) Delay() time.Duration {
	return p.delay
}

// RetryingFetcher wraps a transport Fetcher with bounded retries. Each
// attempt waits for the pacer's fixed delay slot; a failed attempt waits an
// additional doubled delay before the next try. The final attempt's error is
// propagated, never swallowed. Non-2xx statuses arrive as normal responses
// from the transport and are returned to the caller untouched.
type RetryingFetcher struct {
	transport  Fetcher
	pacer      *Pacer
	maxRetries int
	logger     *zap.Logger
}

// NewRetryingFetcher builds the retry decorator. maxRetries <= 0 selects the
// default of 3 attempts.
func NewRetryingFetcher(transport Fetcher, pacer *Pacer, maxRetries int, logger *zap.Logger) *RetryingFetcher {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if pacer == nil {
		pacer = NewPacer(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingFetcher{
		transport:  transport,
		pacer:      pacer,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Fetch performs up to maxRetries attempts against the transport.
func (f *RetryingFetcher) Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		if err := f.pacer.Wait(ctx); err != nil {
			return FetchResponse{}, err
		}
		resp, err := f.transport.Fetch(ctx, request)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		f.logger.Warn("fetch attempt failed",
			zap.String("url", request.URL),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", f.maxRetries),
			zap.Error(err),
		)
		if attempt == f.maxRetries {
			break
		}
		if err := sleepCtx(ctx, 2*f.pacer.Delay()); err != nil {
			return FetchResponse{}, err
		}
	}
	return FetchResponse{}, fmt.Errorf("fetch %s after %d attempts: %w", request.URL, f.maxRetries, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
