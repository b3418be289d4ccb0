package scraper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPaperURL verifies canonical URL construction.
func TestPaperURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://www.nber.org/papers/w33150", PaperURL("https://www.nber.org", 33150))
	require.Equal(t, "https://www.nber.org/papers/w1", PaperURL("https://www.nber.org/", 1))
	require.Equal(t, "https://www.nber.org/papers/w42", PaperURL("", 42))
	require.Equal(t, "http://localhost:8080/papers/w7", PaperURL("http://localhost:8080", 7))
}

// TestPaperNumber verifies the canonical "w<id>" form.
func TestPaperNumber(t *testing.T) {
	t.Parallel()

	require.Equal(t, "w33150", Paper{ID: 33150}.Number())
}

// TestFetchResponseClassification verifies the status helpers.
func TestFetchResponseClassification(t *testing.T) {
	t.Parallel()

	require.True(t, FetchResponse{StatusCode: 200}.OK())
	require.True(t, FetchResponse{StatusCode: 204}.OK())
	require.False(t, FetchResponse{StatusCode: 404}.OK())
	require.True(t, FetchResponse{StatusCode: 404}.NotFound())
	require.True(t, FetchResponse{StatusCode: 410}.NotFound())
	require.False(t, FetchResponse{StatusCode: 500}.NotFound())
}
