package scraper

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFrontierLocatesNewestPaper verifies probing stops at the first 200 and
// the returned start includes the buffer.
func TestFrontierLocatesNewestPaper(t *testing.T) {
	t.Parallel()

	probe := &probeFetcher{existing: 33470}
	locator := NewFrontierLocator(probe, DefaultBaseURL, FrontierConfig{}, nil)

	start, err := locator.Locate(context.Background())
	require.NoError(t, err)
	require.Equal(t, 33480, start)

	// The walk stops at the hit; lower numbers are never probed.
	require.Equal(t, []int{33500, 33490, 33480, 33470}, probe.probed())
	for _, req := range probe.methods() {
		require.Equal(t, http.MethodHead, req)
	}
}

// TestFrontierFallsBackWhenWindowExhausted verifies a fully-missing window
// yields the configured fallback without an error.
func TestFrontierFallsBackWhenWindowExhausted(t *testing.T) {
	t.Parallel()

	probe := &probeFetcher{existing: -1}
	locator := NewFrontierLocator(probe, DefaultBaseURL, FrontierConfig{
		ProbeStart: 120,
		ProbeEnd:   100,
		ProbeStep:  5,
		Buffer:     3,
		Fallback:   111,
	}, nil)

	start, err := locator.Locate(context.Background())
	require.NoError(t, err)
	require.Equal(t, 111, start)
	require.Equal(t, []int{120, 115, 110, 105}, probe.probed())
}

// TestFrontierToleratesProbeErrors verifies transport failures on individual
// probes continue the walk rather than aborting it.
func TestFrontierToleratesProbeErrors(t *testing.T) {
	t.Parallel()

	probe := &probeFetcher{existing: 33480, failOn: map[int]bool{33500: true}}
	locator := NewFrontierLocator(probe, DefaultBaseURL, FrontierConfig{}, nil)

	start, err := locator.Locate(context.Background())
	require.NoError(t, err)
	require.Equal(t, 33490, start)
}

// TestFrontierHonorsCancellation verifies cancellation is the only error
// path out of the probe loop.
func TestFrontierHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	locator := NewFrontierLocator(&probeFetcher{existing: -1}, DefaultBaseURL, FrontierConfig{}, nil)

	_, err := locator.Locate(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

// probeFetcher answers 200 for paper numbers <= existing and 404 above it.
type probeFetcher struct {
	mu       sync.Mutex
	existing int
	failOn   map[int]bool
	requests []FetchRequest
}

func (p *probeFetcher) Fetch(_ context.Context, request FetchRequest) (FetchResponse, error) {
	p.mu.Lock()
	p.requests = append(p.requests, request)
	p.mu.Unlock()

	id := paperNumberFromURL(request.URL)
	if p.failOn[id] {
		return FetchResponse{}, errors.New("probe failed")
	}
	status := http.StatusNotFound
	if p.existing >= 0 && id <= p.existing {
		status = http.StatusOK
	}
	return FetchResponse{URL: request.URL, StatusCode: status}, nil
}

func (p *probeFetcher) probed() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int, 0, len(p.requests))
	for _, req := range p.requests {
		out = append(out, paperNumberFromURL(req.URL))
	}
	return out
}

func (p *probeFetcher) methods() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.requests))
	for _, req := range p.requests {
		out = append(out, req.Method)
	}
	return out
}

func paperNumberFromURL(url string) int {
	idx := strings.LastIndex(url, "/w")
	if idx == -1 {
		return -1
	}
	n, err := strconv.Atoi(url[idx+2:])
	if err != nil {
		return -1
	}
	return n
}
