package api

import (
	"context"
	"time"

	"essaim/app/database"
	"essaim/app/generate"
	"essaim/app/scheduler"
)

type GeneratorInterface interface {
	Run(ctx context.Context, opp database.Opportunity, campaign database.Campaign) ([]generate.Reply, error)
}

var _ GeneratorInterface = (*generate.Generator)(nil)

type SchedulerInterface interface {
	ScanAll(ctx context.Context) (int, error)
	ScanCampaign(campaign database.Campaign)
}

var _ SchedulerInterface = (*scheduler.Scheduler)(nil)

type Handler struct {
	campaignRepo database.CampaignRepository
	oppRepo      database.OpportunityRepository
	responseRepo database.ResponseRepository
	generator    GeneratorInterface
	scheduler    SchedulerInterface
}

type createCampaignRequest struct {
	BrandName   string `json:"brand_name"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
	Subreddits  string `json:"subreddits"`
}

type updateCampaignRequest struct {
	Active *bool `json:"active"`
}

type updateOpportunityRequest struct {
	Status string `json:"status"`
}

type campaignResponse struct {
	ID                   int64     `json:"id"`
	BrandName            string    `json:"brand_name"`
	Description          string    `json:"description"`
	Keywords             string    `json:"keywords"`
	Subreddits           string    `json:"subreddits"`
	Active               bool      `json:"active"`
	CreatedAt            time.Time `json:"created_at"`
	TotalOpportunities   int       `json:"total_opportunities"`
	PendingOpportunities int       `json:"pending_opportunities"`
}

type opportunityResponse struct {
	ID             int64     `json:"id"`
	CampaignID     int64     `json:"campaign_id"`
	RedditPostID   string    `json:"reddit_post_id"`
	Subreddit      string    `json:"subreddit"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	URL            string    `json:"url"`
	Author         string    `json:"author"`
	RelevanceScore int       `json:"relevance_score"`
	Status         string    `json:"status"`
	DetectedAt     time.Time `json:"detected_at"`
}

type replyResponse struct {
	Style string   `json:"style"`
	Text  string   `json:"text"`
	Score int      `json:"score"`
	Tips  []string `json:"tips"`
}

func toCampaignResponse(c database.Campaign, total, pending int) campaignResponse {
	return campaignResponse{
		ID:                   c.ID,
		BrandName:            c.BrandName,
		Description:          c.Description,
		Keywords:             c.Keywords,
		Subreddits:           c.Subreddits,
		Active:               c.Active,
		CreatedAt:            c.CreatedAt,
		TotalOpportunities:   total,
		PendingOpportunities: pending,
	}
}

func toOpportunityResponse(o database.Opportunity) opportunityResponse {
	return opportunityResponse{
		ID:             o.ID,
		CampaignID:     o.CampaignID,
		RedditPostID:   o.RedditPostID,
		Subreddit:      o.Subreddit,
		Title:          o.Title,
		Body:           o.Body,
		URL:            o.URL,
		Author:         o.Author,
		RelevanceScore: o.RelevanceScore,
		Status:         o.Status,
		DetectedAt:     o.DetectedAt,
	}
}
