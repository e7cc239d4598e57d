package scan

import (
	"testing"
)

func TestResolvePostID_NativeIDWins(t *testing.T) {
	c := Candidate{
		PostID: "abc123",
		URL:    "https://www.reddit.com/r/golang/comments/zzz999/some_title/",
	}

	if id := ResolvePostID(c); id != "abc123" {
		t.Errorf("Expected native id abc123, got %q", id)
	}
}

func TestResolvePostID_FromURL(t *testing.T) {
	c := Candidate{URL: "https://www.reddit.com/r/golang/comments/1abc9z/some_title/"}

	if id := ResolvePostID(c); id != "1abc9z" {
		t.Errorf("Expected 1abc9z, got %q", id)
	}
}

func TestResolvePostID_FromURLWithoutTrailingSlash(t *testing.T) {
	c := Candidate{URL: "https://reddit.com/r/france/comments/xy12ab"}

	if id := ResolvePostID(c); id != "xy12ab" {
		t.Errorf("Expected xy12ab, got %q", id)
	}
}

func TestResolvePostID_Fallback(t *testing.T) {
	c := Candidate{URL: "https://example.com/some/other-page?ref=123456"}

	// Last 12 alphanumerics of the URL with separators stripped.
	id := ResolvePostID(c)
	if id != "ageref123456" {
		t.Errorf("Expected ageref123456, got %q", id)
	}

	if again := ResolvePostID(c); again != id {
		t.Errorf("Fallback id not stable: %q vs %q", id, again)
	}
}

func TestResolvePostID_StableAcrossSources(t *testing.T) {
	// The same post once as a native record and once as a bare search result
	// must resolve to the same identifier.
	native := Candidate{PostID: "1abc9z", Subreddit: "golang"}
	fromURL := Candidate{URL: "https://www.reddit.com/r/golang/comments/1abc9z/some_title/"}

	if ResolvePostID(native) != ResolvePostID(fromURL) {
		t.Errorf("Identifier differs between native and URL resolution: %q vs %q",
			ResolvePostID(native), ResolvePostID(fromURL))
	}
}

func TestResolveSubreddit(t *testing.T) {
	if sub := ResolveSubreddit(Candidate{Subreddit: "golang"}); sub != "golang" {
		t.Errorf("Expected native subreddit, got %q", sub)
	}

	c := Candidate{URL: "https://www.reddit.com/r/france/comments/1abc9z/titre/"}
	if sub := ResolveSubreddit(c); sub != "france" {
		t.Errorf("Expected france, got %q", sub)
	}

	if sub := ResolveSubreddit(Candidate{URL: "https://example.com/foo"}); sub != DefaultSubreddit {
		t.Errorf("Expected default subreddit, got %q", sub)
	}
}
