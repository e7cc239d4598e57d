package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"essaim/app/scan"
)

const braveSearchURL = "https://api.search.brave.com/res/v1/web/search"

var _ scan.Fetcher = (*BraveFetcher)(nil)

// BraveFetcher queries the Brave web-search API scoped to reddit.com and
// treats returned web results as post candidates. Results carry only URLs;
// identity resolution happens downstream. A missing API key degrades to an
// empty result set rather than an error.
type BraveFetcher struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	searchLang string
}

type braveResponse struct {
	Web struct {
		Results []braveResult `json:"results"`
	} `json:"web"`
}

type braveResult struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Description   string   `json:"description"`
	ExtraSnippets []string `json:"extra_snippets"`
}

func NewBraveFetcher(httpClient *http.Client, apiKey, searchLang string) *BraveFetcher {
	return &BraveFetcher{
		httpClient: httpClient,
		baseURL:    braveSearchURL,
		apiKey:     apiKey,
		searchLang: searchLang,
	}
}

// broadKeywordCap bounds how many keywords the listing approximation ORs
// together.
const broadKeywordCap = 3

// Listing is approximated by a broad OR query over the campaign keywords;
// Brave has no notion of a community's recent posts.
func (f *BraveFetcher) Listing(ctx context.Context, subreddit string, keywords []string, limit int) ([]scan.Candidate, error) {
	if len(keywords) > broadKeywordCap {
		keywords = keywords[:broadKeywordCap]
	}
	return f.Search(ctx, strings.Join(keywords, " OR "), subreddit, limit)
}

func (f *BraveFetcher) Search(ctx context.Context, query, subreddit string, limit int) ([]scan.Candidate, error) {
	if f.apiKey == "" {
		slog.Warn("Brave API key not set, returning no results")
		return nil, nil
	}

	// Brave matches "reddit.com/r/<sub> <query>" better than a site: filter.
	siteFilter := "reddit.com/r/"
	if subreddit != "" {
		siteFilter = "reddit.com/r/" + subreddit
	}
	fullQuery := strings.TrimSpace(siteFilter + " " + query)

	params := url.Values{}
	params.Set("q", fullQuery)
	params.Set("count", strconv.Itoa(limit))
	params.Set("freshness", "pw")
	if f.searchLang != "" {
		params.Set("search_lang", f.searchLang)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", f.apiKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("brave search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave API error: %d %s", resp.StatusCode, resp.Status)
	}

	var payload braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode brave response: %w", err)
	}

	candidates := make([]scan.Candidate, 0, len(payload.Web.Results))
	for _, result := range payload.Web.Results {
		if result.URL == "" {
			continue
		}
		body := result.Description
		if body == "" && len(result.ExtraSnippets) > 0 {
			body = strings.Join(result.ExtraSnippets, " ")
		}
		candidates = append(candidates, scan.Candidate{
			Title: result.Title,
			Body:  body,
			URL:   result.URL,
		})
	}

	return candidates, nil
}
