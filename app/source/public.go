package source

import (
	"context"
	"net/http"

	"essaim/app/scan"
)

var _ scan.Fetcher = (*PublicFetcher)(nil)

// PublicFetcher reads Reddit's public JSON endpoints. No credentials
// required, but the endpoints are aggressively rate limited, so callers must
// keep fetches sequential and paused.
type PublicFetcher struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

func NewPublicFetcher(httpClient *http.Client, userAgent string) *PublicFetcher {
	return &PublicFetcher{
		httpClient: httpClient,
		baseURL:    redditWWW,
		userAgent:  userAgent,
	}
}

func (f *PublicFetcher) Listing(ctx context.Context, subreddit string, _ []string, limit int) ([]scan.Candidate, error) {
	return fetchListing(ctx, f.httpClient, f.baseURL+listingPath(subreddit, limit), f.userAgent, nil)
}

func (f *PublicFetcher) Search(ctx context.Context, query, subreddit string, limit int) ([]scan.Candidate, error) {
	return fetchListing(ctx, f.httpClient, f.baseURL+searchPath(query, subreddit, limit), f.userAgent, nil)
}
