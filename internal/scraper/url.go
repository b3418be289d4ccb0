package scraper

import (
	"fmt"
	"strings"
)

// DefaultBaseURL is the repository host all paper URLs derive from.
const DefaultBaseURL = "https://www.nber.org"

// PaperURL builds the canonical page URL for a working-paper number.
func PaperURL(baseURL string, id int) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return fmt.Sprintf("%s/papers/w%d", base, id)
}
