package scan

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxScore is the relevance score ceiling.
const MaxScore = 10

// Scorer rates how relevant a post is to a campaign's keyword list. Each
// keyword found in the combined title and body adds 2 points; a keyword also
// present in the title adds 1 more. The total is clamped to MaxScore.
// A score of 0 means no keyword matched and the post should be discarded.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

func (s *Scorer) Run(title, body, keywords string) int {
	foldedTitle := fold(title)
	text := foldedTitle + " " + fold(body)

	score := 0
	for _, kw := range SplitList(keywords) {
		kw = fold(kw)
		if strings.Contains(text, kw) {
			score += 2
		}
		if strings.Contains(foldedTitle, kw) {
			score++
		}
	}

	if score > MaxScore {
		return MaxScore
	}
	return score
}

// fold lowercases and strips diacritics, so "café" matches "cafe" either way.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}
