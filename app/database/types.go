package database

import (
	"errors"
	"time"
)

// Opportunity lifecycle statuses. Advancement is one-way: pending ->
// generated -> approved/rejected.
const (
	StatusPending   = "pending"
	StatusGenerated = "generated"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
)

// ErrStatusTransition is returned when a status update would move an
// opportunity backward in its lifecycle.
var ErrStatusTransition = errors.New("status transition moves backward")

// statusRank orders the lifecycle stages. Approved and rejected share the
// final stage so a decision can still be changed without moving backward.
var statusRank = map[string]int{
	StatusPending:   0,
	StatusGenerated: 1,
	StatusApproved:  2,
	StatusRejected:  2,
}

// ValidStatus reports whether s is a known opportunity status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusGenerated, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether an opportunity may move from one status to
// another. The lifecycle only advances; reverting to an earlier stage is
// refused.
func CanTransition(from, to string) bool {
	return statusRank[to] >= statusRank[from]
}

type Campaign struct {
	ID          int64
	BrandName   string
	Description string
	Keywords    string // comma-separated keyword list
	Subreddits  string // comma-separated community list
	Active      bool
	CreatedAt   time.Time
}

// CampaignWithCounts is a campaign row augmented with opportunity counters
// for list views.
type CampaignWithCounts struct {
	Campaign
	TotalOpportunities   int
	PendingOpportunities int
}

type Opportunity struct {
	ID             int64
	CampaignID     int64
	RedditPostID   string
	Subreddit      string
	Title          string
	Body           string
	URL            string
	Author         string
	RelevanceScore int
	Status         string
	DetectedAt     time.Time
}

// NewOpportunity carries the fields the scan pipeline provides when
// persisting a discovered post.
type NewOpportunity struct {
	CampaignID     int64
	RedditPostID   string
	Subreddit      string
	Title          string
	Body           string
	URL            string
	Author         string
	RelevanceScore int
}

type Response struct {
	ID            int64
	OpportunityID int64
	Style         string
	Text          string
	AntiBanScore  int
	Tips          []string // persisted as a JSON array
	CreatedAt     time.Time
}

type OpportunityStats struct {
	Pending   int
	Generated int
	Approved  int
	Total     int
}
