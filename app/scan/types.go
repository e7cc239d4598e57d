package scan

import (
	"context"
	"strings"
)

// Candidate is a raw post retrieved by a source strategy. PostID is set when
// the source exposes a native Reddit identifier; search-proxy results carry
// only a URL.
type Candidate struct {
	PostID    string
	Subreddit string
	Title     string
	Body      string
	URL       string
	Author    string
}

// Fetcher retrieves candidate posts from a Reddit data source. Listing
// returns the most recent posts of a community; sources without native
// listing semantics (search proxies) approximate it with a broad query over
// the supplied keywords. Search returns posts matching a keyword, restricted
// to a community when subreddit is non-empty.
type Fetcher interface {
	Listing(ctx context.Context, subreddit string, keywords []string, limit int) ([]Candidate, error)
	Search(ctx context.Context, query string, subreddit string, limit int) ([]Candidate, error)
}

// SplitList splits a comma-separated list, trimming whitespace and dropping
// empty entries.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
