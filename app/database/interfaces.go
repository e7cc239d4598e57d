package database

type CampaignRepository interface {
	CreateCampaign(brandName, description, keywords, subreddits string) (*Campaign, error)
	GetCampaign(id int64) (*Campaign, error)
	GetCampaignByBrand(brandName string) (*Campaign, error)
	ListCampaigns() ([]CampaignWithCounts, error)
	ListActiveCampaigns() ([]Campaign, error)
	GetActiveCampaignCount() (int, error)
	SetCampaignActive(id int64, active bool) (bool, error)
	DeleteCampaign(id int64) (bool, error)
}

type OpportunityRepository interface {
	// InsertOpportunity stores a discovered post. The insert is guarded by
	// the global reddit_post_id uniqueness constraint; a conflicting row is
	// a no-op and reported as inserted == false.
	InsertOpportunity(opp NewOpportunity) (bool, error)
	GetOpportunity(id int64) (*Opportunity, error)
	ListOpportunities(campaignID int64, status string, limit int) ([]Opportunity, error)
	// UpdateOpportunityStatus advances an opportunity's lifecycle status.
	// A backward move is refused with ErrStatusTransition; an unknown id is
	// reported as updated == false.
	UpdateOpportunityStatus(id int64, status string) (bool, error)
	GetOpportunityStats() (*OpportunityStats, error)
}

type ResponseRepository interface {
	// InsertResponse is idempotent per (opportunity, style).
	InsertResponse(opportunityID int64, style, text string, antiBanScore int, tips []string) error
	GetResponses(opportunityID int64) ([]Response, error)
}

type SeenPostRepository interface {
	IsSeen(postID string) (bool, error)
	// MarkSeen records a post identifier, ignoring duplicates.
	MarkSeen(postID string) error
}
