package source

import (
	"log/slog"
	"net/http"

	"essaim/app/cfg"
	"essaim/app/scan"
)

// New selects a fetch strategy from the configured credentials: the
// authenticated API when OAuth credentials are present, the Brave search
// proxy when only its key is set, the public JSON endpoints otherwise.
func New(httpClient *http.Client) scan.Fetcher {
	c := cfg.Get()

	switch {
	case c.RedditClientID != "" && c.RedditClientSecret != "":
		slog.Info("Using authenticated Reddit source")
		tokens := NewTokenProvider(httpClient, c.RedditClientID, c.RedditClientSecret, c.UserAgent)
		return NewOAuthFetcher(httpClient, tokens, c.UserAgent)
	case c.BraveAPIKey != "":
		slog.Info("Using Brave search-proxy source")
		return NewBraveFetcher(httpClient, c.BraveAPIKey, c.SearchLang)
	default:
		slog.Info("Using public Reddit JSON source")
		return NewPublicFetcher(httpClient, c.UserAgent)
	}
}
