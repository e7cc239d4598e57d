package scan

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"essaim/app/database"
)

// Caps on upstream calls per campaign scan. A campaign may configure more
// keywords and communities than this; only the first few are queried each
// cycle to respect third-party rate limits.
const (
	maxSearchKeywords    = 5
	maxSearchSubreddits  = 4
	maxListingSubreddits = 3
	searchLimit          = 5
	listingLimit         = 8
	maxBodyLength        = 2000
)

// Scanner runs the fetch -> dedup -> score -> persist pipeline for one
// campaign. Fetch calls are strictly sequential with a fixed pause between
// them; do not parallelize them.
type Scanner struct {
	fetcher  Fetcher
	scorer   *Scorer
	oppRepo  database.OpportunityRepository
	seenRepo database.SeenPostRepository
	delay    time.Duration
}

func NewScanner(fetcher Fetcher, oppRepo database.OpportunityRepository,
	seenRepo database.SeenPostRepository, delay time.Duration) *Scanner {
	return &Scanner{
		fetcher:  fetcher,
		scorer:   NewScorer(),
		oppRepo:  oppRepo,
		seenRepo: seenRepo,
		delay:    delay,
	}
}

// Run scans a single campaign and returns the number of newly stored
// opportunities. Upstream fetch failures are logged and treated as empty
// results; only persistence errors and cancellation abort the scan.
func (s *Scanner) Run(ctx context.Context, campaign database.Campaign) (int, error) {
	subreddits := SplitList(campaign.Subreddits)
	keywords := SplitList(campaign.Keywords)

	var candidates []Candidate

	for _, kw := range capList(keywords, maxSearchKeywords) {
		for _, sub := range capList(subreddits, maxSearchSubreddits) {
			results, err := s.fetcher.Search(ctx, kw, sub, searchLimit)
			if err != nil {
				slog.Warn("Search fetch failed", "campaign", campaign.BrandName,
					"subreddit", sub, "keyword", kw, "error", err)
			} else {
				candidates = append(candidates, results...)
			}

			if err := s.pause(ctx); err != nil {
				return 0, err
			}
		}
	}

	for _, sub := range capList(subreddits, maxListingSubreddits) {
		results, err := s.fetcher.Listing(ctx, sub, keywords, listingLimit)
		if err != nil {
			slog.Warn("Listing fetch failed", "campaign", campaign.BrandName,
				"subreddit", sub, "error", err)
		} else {
			candidates = append(candidates, results...)
		}

		if err := s.pause(ctx); err != nil {
			return 0, err
		}
	}

	inserted := 0
	deduped := dedupe(candidates)

	for _, c := range deduped {
		postID := ResolvePostID(c)
		if postID == "" {
			continue
		}

		seen, err := s.seenRepo.IsSeen(postID)
		if err != nil {
			return inserted, fmt.Errorf("failed to check seen post: %w", err)
		}
		if seen {
			continue
		}

		// Marking before scoring is deliberate: a post scoring 0 is never
		// reconsidered on later scans even though it is not stored.
		if err := s.seenRepo.MarkSeen(postID); err != nil {
			return inserted, fmt.Errorf("failed to mark post as seen: %w", err)
		}

		score := s.scorer.Run(c.Title, c.Body, campaign.Keywords)
		if score == 0 {
			continue
		}

		body := c.Body
		if len(body) > maxBodyLength {
			cut := maxBodyLength
			// Back off to a rune boundary so accented text stays valid UTF-8.
			for cut > 0 && !utf8.RuneStart(body[cut]) {
				cut--
			}
			body = body[:cut]
		}

		ok, err := s.oppRepo.InsertOpportunity(database.NewOpportunity{
			CampaignID:     campaign.ID,
			RedditPostID:   postID,
			Subreddit:      ResolveSubreddit(c),
			Title:          c.Title,
			Body:           body,
			URL:            c.URL,
			Author:         c.Author,
			RelevanceScore: score,
		})
		if err != nil {
			return inserted, fmt.Errorf("failed to insert opportunity: %w", err)
		}
		if ok {
			inserted++
		}
	}

	slog.Info("Campaign scan completed", "campaign", campaign.BrandName,
		"candidates", len(candidates), "deduped", len(deduped), "new", inserted)

	return inserted, nil
}

// dedupe drops batch duplicates by resolved post id, which collapses the
// same post fetched via listing and via search regardless of strategy. URL
// only candidates pointing outside comment threads (profiles, wikis) are
// dropped as well.
func dedupe(candidates []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]Candidate, 0, len(candidates))

	for _, c := range candidates {
		if c.PostID == "" {
			if c.URL == "" || !strings.Contains(c.URL, "/comments/") {
				continue
			}
		}

		id := ResolvePostID(c)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, c)
	}

	return out
}

func (s *Scanner) pause(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	select {
	case <-time.After(s.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func capList(list []string, max int) []string {
	if len(list) > max {
		return list[:max]
	}
	return list
}
