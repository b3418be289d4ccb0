package collyfetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/econlabs/nber-paper-crawler/internal/scraper"
)

// TestFetchReturnsBodyAndStatus verifies a plain 200 fetch.
func TestFetchReturnsBodyAndStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>paper page</body></html>"))
	}))
	defer srv.Close()

	f := New(Config{Timeout: 5 * time.Second})
	resp, err := f.Fetch(context.Background(), scraper.FetchRequest{URL: srv.URL})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(resp.Body), "paper page")
	require.Equal(t, "text/html", resp.Headers.Get("Content-Type"))
	require.Greater(t, resp.Duration, time.Duration(0))
}

// TestFetch404IsANormalResponse verifies error statuses come back as
// responses carrying the status code, not as Go errors.
func TestFetch404IsANormalResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := New(Config{})
	resp, err := f.Fetch(context.Background(), scraper.FetchRequest{URL: srv.URL + "/papers/w99999"})
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.True(t, resp.NotFound())
}

// TestFetchHeadRequest verifies HEAD requests use the HEAD verb.
func TestFetchHeadRequest(t *testing.T) {
	t.Parallel()

	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
	}))
	defer srv.Close()

	f := New(Config{})
	resp, err := f.Fetch(context.Background(), scraper.FetchRequest{
		URL:    srv.URL,
		Method: http.MethodHead,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, http.MethodHead, gotMethod)
}

// TestFetchSendsUserAgentAndHeaders verifies the configured user agent and
// per-request headers reach the server.
func TestFetchSendsUserAgentAndHeaders(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
	}))
	defer srv.Close()

	f := New(Config{UserAgent: "nberscan-test/1.0"})
	headers := http.Header{}
	headers.Set("Accept", "text/html")
	_, err := f.Fetch(context.Background(), scraper.FetchRequest{URL: srv.URL, Headers: headers})
	require.NoError(t, err)
	require.Equal(t, "nberscan-test/1.0", gotUA)
	require.Equal(t, "text/html", gotAccept)
}

// TestFetchRevisitsSameURL verifies repeat fetches of one URL are allowed,
// which retries and frontier probes depend on.
func TestFetchRevisitsSameURL(t *testing.T) {
	t.Parallel()

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	f := New(Config{})
	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), scraper.FetchRequest{URL: srv.URL})
		require.NoError(t, err)
	}
	require.Equal(t, 3, hits)
}

// TestFetchTransportError verifies unreachable hosts surface as errors.
func TestFetchTransportError(t *testing.T) {
	t.Parallel()

	f := New(Config{Timeout: time.Second})
	_, err := f.Fetch(context.Background(), scraper.FetchRequest{URL: "http://127.0.0.1:1/nope"})
	require.Error(t, err)
}
