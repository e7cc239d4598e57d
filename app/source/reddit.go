package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"essaim/app/scan"
)

const redditWWW = "https://www.reddit.com"

// redditListing mirrors the envelope both the public JSON endpoints and the
// OAuth API return for listings and searches.
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID        string `json:"id"`
	Subreddit string `json:"subreddit"`
	Title     string `json:"title"`
	SelfText  string `json:"selftext"`
	Author    string `json:"author"`
	Permalink string `json:"permalink"`
}

func listingPath(subreddit string, limit int) string {
	return fmt.Sprintf("/r/%s/new.json?limit=%d&raw_json=1", url.PathEscape(subreddit), limit)
}

func searchPath(query, subreddit string, limit int) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("restrict_sr", "1")
	params.Set("sort", "new")
	params.Set("t", "week")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("raw_json", "1")
	return fmt.Sprintf("/r/%s/search.json?%s", url.PathEscape(subreddit), params.Encode())
}

// fetchListing performs one Reddit API call and converts the result into
// candidates. The authorize hook lets the OAuth strategy attach its bearer
// credential without duplicating the request plumbing.
func fetchListing(ctx context.Context, client *http.Client, rawURL, userAgent string,
	authorize func(*http.Request) error) ([]scan.Candidate, error) {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	if authorize != nil {
		if err := authorize(req); err != nil {
			return nil, err
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, errUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}

	candidates := make([]scan.Candidate, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		post := child.Data
		if post.ID == "" {
			continue
		}
		candidates = append(candidates, scan.Candidate{
			PostID:    post.ID,
			Subreddit: post.Subreddit,
			Title:     post.Title,
			Body:      post.SelfText,
			URL:       redditWWW + post.Permalink,
			Author:    post.Author,
		})
	}

	return candidates, nil
}
