package scan

import (
	"regexp"
)

// DefaultSubreddit is used when a community name cannot be derived from a
// candidate's URL.
const DefaultSubreddit = "reddit"

var (
	postIDPattern    = regexp.MustCompile(`(?i)/comments/([a-z0-9]+)`)
	subredditPattern = regexp.MustCompile(`(?i)reddit\.com/r/([^/?#]+)`)
	nonAlphanumeric  = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// ResolvePostID derives a stable external identifier for a candidate. The
// native identifier wins when present; otherwise the thread id is extracted
// from the URL, falling back to the last 12 alphanumeric characters of the
// URL. Identifier stability across source strategies is what makes the
// seen-set and the uniqueness constraint effective.
func ResolvePostID(c Candidate) string {
	if c.PostID != "" {
		return c.PostID
	}

	if m := postIDPattern.FindStringSubmatch(c.URL); m != nil {
		return m[1]
	}

	stripped := nonAlphanumeric.ReplaceAllString(c.URL, "")
	if len(stripped) > 12 {
		stripped = stripped[len(stripped)-12:]
	}
	return stripped
}

// ResolveSubreddit derives the community name for a candidate.
func ResolveSubreddit(c Candidate) string {
	if c.Subreddit != "" {
		return c.Subreddit
	}

	if m := subredditPattern.FindStringSubmatch(c.URL); m != nil {
		return m[1]
	}

	return DefaultSubreddit
}
