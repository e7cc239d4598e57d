package source

import (
	"context"
	"errors"
	"net/http"

	"essaim/app/scan"
)

const redditOAuthURL = "https://oauth.reddit.com"

var _ scan.Fetcher = (*OAuthFetcher)(nil)

// OAuthFetcher mirrors the public strategy against the authenticated API,
// attaching a bearer token from the injected TokenProvider. A 401 response
// invalidates the cached token and the request is retried exactly once with
// a freshly obtained one.
type OAuthFetcher struct {
	httpClient *http.Client
	tokens     *TokenProvider
	baseURL    string
	userAgent  string
}

func NewOAuthFetcher(httpClient *http.Client, tokens *TokenProvider, userAgent string) *OAuthFetcher {
	return &OAuthFetcher{
		httpClient: httpClient,
		tokens:     tokens,
		baseURL:    redditOAuthURL,
		userAgent:  userAgent,
	}
}

func (f *OAuthFetcher) Listing(ctx context.Context, subreddit string, _ []string, limit int) ([]scan.Candidate, error) {
	return f.fetch(ctx, f.baseURL+listingPath(subreddit, limit))
}

func (f *OAuthFetcher) Search(ctx context.Context, query, subreddit string, limit int) ([]scan.Candidate, error) {
	return f.fetch(ctx, f.baseURL+searchPath(query, subreddit, limit))
}

func (f *OAuthFetcher) fetch(ctx context.Context, url string) ([]scan.Candidate, error) {
	candidates, err := fetchListing(ctx, f.httpClient, url, f.userAgent, f.authorize)
	if errors.Is(err, errUnauthorized) {
		f.tokens.Invalidate()
		candidates, err = fetchListing(ctx, f.httpClient, url, f.userAgent, f.authorize)
	}
	return candidates, err
}

func (f *OAuthFetcher) authorize(req *http.Request) error {
	token, err := f.tokens.Token(req.Context())
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}
