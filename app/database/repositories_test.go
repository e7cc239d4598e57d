package database

import (
	"errors"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatal(err)
	}

	return db
}

func seedOpportunity(postID string, campaignID int64, score int) NewOpportunity {
	return NewOpportunity{
		CampaignID:     campaignID,
		RedditPostID:   postID,
		Subreddit:      "running",
		Title:          "Best sneakers",
		Body:           "Looking for advice",
		URL:            "https://www.reddit.com/r/running/comments/" + postID + "/",
		Author:         "runner42",
		RelevanceScore: score,
	}
}

func TestCampaignRepository_CreateAndGet(t *testing.T) {
	repo := NewCampaignRepository(newTestDB(t))

	created, err := repo.CreateCampaign("RunFast", "Lightweight shoes", "shoes,sneakers", "running,trailrunning")
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == 0 {
		t.Error("Expected non-zero campaign id")
	}
	if !created.Active {
		t.Error("Expected new campaign to be active")
	}

	fetched, err := repo.GetCampaign(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fetched == nil {
		t.Fatal("Expected campaign, got nil")
	}
	if fetched.BrandName != "RunFast" || fetched.Keywords != "shoes,sneakers" {
		t.Errorf("Round trip mismatch: %+v", fetched)
	}

	byBrand, err := repo.GetCampaignByBrand("RunFast")
	if err != nil {
		t.Fatal(err)
	}
	if byBrand == nil || byBrand.ID != created.ID {
		t.Errorf("Lookup by brand returned %+v", byBrand)
	}
}

func TestCampaignRepository_GetMissing(t *testing.T) {
	repo := NewCampaignRepository(newTestDB(t))

	campaign, err := repo.GetCampaign(999)
	if err != nil {
		t.Fatal(err)
	}
	if campaign != nil {
		t.Errorf("Expected nil for missing campaign, got %+v", campaign)
	}
}

func TestCampaignRepository_ListWithCounts(t *testing.T) {
	db := newTestDB(t)
	campaignRepo := NewCampaignRepository(db)
	oppRepo := NewOpportunityRepository(db)

	campaign, err := campaignRepo.CreateCampaign("RunFast", "Shoes", "shoes", "running")
	if err != nil {
		t.Fatal(err)
	}

	for _, postID := range []string{"aaa111", "bbb222", "ccc333"} {
		if _, err := oppRepo.InsertOpportunity(seedOpportunity(postID, campaign.ID, 5)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := oppRepo.UpdateOpportunityStatus(1, StatusGenerated); err != nil {
		t.Fatal(err)
	}

	campaigns, err := campaignRepo.ListCampaigns()
	if err != nil {
		t.Fatal(err)
	}
	if len(campaigns) != 1 {
		t.Fatalf("Expected 1 campaign, got %d", len(campaigns))
	}
	if campaigns[0].TotalOpportunities != 3 {
		t.Errorf("Expected 3 total opportunities, got %d", campaigns[0].TotalOpportunities)
	}
	if campaigns[0].PendingOpportunities != 2 {
		t.Errorf("Expected 2 pending opportunities, got %d", campaigns[0].PendingOpportunities)
	}
}

func TestCampaignRepository_SetActive(t *testing.T) {
	repo := NewCampaignRepository(newTestDB(t))

	campaign, err := repo.CreateCampaign("RunFast", "Shoes", "shoes", "running")
	if err != nil {
		t.Fatal(err)
	}

	updated, err := repo.SetCampaignActive(campaign.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if !updated {
		t.Error("Expected update to report success")
	}

	active, err := repo.ListActiveCampaigns()
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Errorf("Deactivated campaign still listed as active")
	}

	count, err := repo.GetActiveCampaignCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("Expected 0 active campaigns, got %d", count)
	}

	updated, err = repo.SetCampaignActive(999, true)
	if err != nil {
		t.Fatal(err)
	}
	if updated {
		t.Error("Expected update of missing campaign to report false")
	}
}

func TestCampaignRepository_DeleteCascades(t *testing.T) {
	db := newTestDB(t)
	campaignRepo := NewCampaignRepository(db)
	oppRepo := NewOpportunityRepository(db)
	respRepo := NewResponseRepository(db)

	campaign, err := campaignRepo.CreateCampaign("RunFast", "Shoes", "shoes", "running")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := oppRepo.InsertOpportunity(seedOpportunity("aaa111", campaign.ID, 5)); err != nil {
		t.Fatal(err)
	}
	if err := respRepo.InsertResponse(1, "Casual", "try them on", 8, []string{"wait a day"}); err != nil {
		t.Fatal(err)
	}

	deleted, err := campaignRepo.DeleteCampaign(campaign.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !deleted {
		t.Fatal("Expected delete to report success")
	}

	opp, err := oppRepo.GetOpportunity(1)
	if err != nil {
		t.Fatal(err)
	}
	if opp != nil {
		t.Errorf("Opportunity survived campaign deletion: %+v", opp)
	}

	responses, err := respRepo.GetResponses(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(responses) != 0 {
		t.Errorf("Responses survived campaign deletion: %d rows", len(responses))
	}
}

func TestOpportunityRepository_DuplicateIsNoOp(t *testing.T) {
	db := newTestDB(t)
	campaignRepo := NewCampaignRepository(db)
	oppRepo := NewOpportunityRepository(db)

	first, err := campaignRepo.CreateCampaign("RunFast", "Shoes", "shoes", "running")
	if err != nil {
		t.Fatal(err)
	}
	second, err := campaignRepo.CreateCampaign("TrailCo", "Trail gear", "trail", "trailrunning")
	if err != nil {
		t.Fatal(err)
	}

	inserted, err := oppRepo.InsertOpportunity(seedOpportunity("aaa111", first.ID, 5))
	if err != nil {
		t.Fatal(err)
	}
	if !inserted {
		t.Error("Expected first insert to succeed")
	}

	// Post ids are unique across campaigns, not per campaign.
	inserted, err = oppRepo.InsertOpportunity(seedOpportunity("aaa111", second.ID, 7))
	if err != nil {
		t.Fatal(err)
	}
	if inserted {
		t.Error("Expected duplicate post id to be ignored")
	}

	opps, err := oppRepo.ListOpportunities(0, "", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(opps) != 1 {
		t.Errorf("Expected 1 stored opportunity, got %d", len(opps))
	}
	if opps[0].CampaignID != first.ID {
		t.Errorf("Duplicate insert overwrote the original row")
	}
}

func TestOpportunityRepository_ListOrderingAndFilters(t *testing.T) {
	db := newTestDB(t)
	campaignRepo := NewCampaignRepository(db)
	oppRepo := NewOpportunityRepository(db)

	campaign, err := campaignRepo.CreateCampaign("RunFast", "Shoes", "shoes", "running")
	if err != nil {
		t.Fatal(err)
	}

	scores := map[string]int{"low111": 2, "high22": 9, "mid333": 5}
	for postID, score := range scores {
		if _, err := oppRepo.InsertOpportunity(seedOpportunity(postID, campaign.ID, score)); err != nil {
			t.Fatal(err)
		}
	}

	opps, err := oppRepo.ListOpportunities(campaign.ID, "", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(opps) != 3 {
		t.Fatalf("Expected 3 opportunities, got %d", len(opps))
	}
	if opps[0].RedditPostID != "high22" || opps[2].RedditPostID != "low111" {
		t.Errorf("Expected relevance-descending order, got %q, %q, %q",
			opps[0].RedditPostID, opps[1].RedditPostID, opps[2].RedditPostID)
	}

	limited, err := oppRepo.ListOpportunities(campaign.ID, "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].RedditPostID != "high22" {
		t.Errorf("Limit did not keep the top-scored row: %+v", limited)
	}

	if _, err := oppRepo.UpdateOpportunityStatus(opps[0].ID, StatusGenerated); err != nil {
		t.Fatal(err)
	}
	pending, err := oppRepo.ListOpportunities(campaign.ID, StatusPending, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Errorf("Expected 2 pending opportunities, got %d", len(pending))
	}
}

func TestOpportunityRepository_StatusNeverReverts(t *testing.T) {
	db := newTestDB(t)
	campaignRepo := NewCampaignRepository(db)
	oppRepo := NewOpportunityRepository(db)

	campaign, err := campaignRepo.CreateCampaign("RunFast", "Shoes", "shoes", "running")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := oppRepo.InsertOpportunity(seedOpportunity("aaa111", campaign.ID, 5)); err != nil {
		t.Fatal(err)
	}

	if _, err := oppRepo.UpdateOpportunityStatus(1, StatusGenerated); err != nil {
		t.Fatal(err)
	}

	if _, err := oppRepo.UpdateOpportunityStatus(1, StatusPending); !errors.Is(err, ErrStatusTransition) {
		t.Errorf("Expected ErrStatusTransition for a backward move, got %v", err)
	}

	opp, err := oppRepo.GetOpportunity(1)
	if err != nil {
		t.Fatal(err)
	}
	if opp.Status != StatusGenerated {
		t.Errorf("Status reverted to %q", opp.Status)
	}

	// Forward moves and a changed final decision stay allowed.
	if _, err := oppRepo.UpdateOpportunityStatus(1, StatusApproved); err != nil {
		t.Fatalf("Forward move refused: %v", err)
	}
	if _, err := oppRepo.UpdateOpportunityStatus(1, StatusRejected); err != nil {
		t.Fatalf("Decision change at the final stage refused: %v", err)
	}
	if _, err := oppRepo.UpdateOpportunityStatus(1, StatusGenerated); !errors.Is(err, ErrStatusTransition) {
		t.Errorf("Expected ErrStatusTransition when leaving the final stage, got %v", err)
	}
}

func TestOpportunityRepository_UpdateStatusMissing(t *testing.T) {
	oppRepo := NewOpportunityRepository(newTestDB(t))

	updated, err := oppRepo.UpdateOpportunityStatus(999, StatusApproved)
	if err != nil {
		t.Fatal(err)
	}
	if updated {
		t.Error("Expected status update of missing row to report false")
	}
}

func TestOpportunityRepository_Stats(t *testing.T) {
	db := newTestDB(t)
	campaignRepo := NewCampaignRepository(db)
	oppRepo := NewOpportunityRepository(db)

	campaign, err := campaignRepo.CreateCampaign("RunFast", "Shoes", "shoes", "running")
	if err != nil {
		t.Fatal(err)
	}
	for _, postID := range []string{"aaa111", "bbb222", "ccc333", "ddd444"} {
		if _, err := oppRepo.InsertOpportunity(seedOpportunity(postID, campaign.ID, 5)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := oppRepo.UpdateOpportunityStatus(1, StatusGenerated); err != nil {
		t.Fatal(err)
	}
	if _, err := oppRepo.UpdateOpportunityStatus(2, StatusApproved); err != nil {
		t.Fatal(err)
	}

	stats, err := oppRepo.GetOpportunityStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 4 || stats.Pending != 2 || stats.Generated != 1 || stats.Approved != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestResponseRepository_IdempotentPerStyle(t *testing.T) {
	db := newTestDB(t)
	campaignRepo := NewCampaignRepository(db)
	oppRepo := NewOpportunityRepository(db)
	respRepo := NewResponseRepository(db)

	campaign, err := campaignRepo.CreateCampaign("RunFast", "Shoes", "shoes", "running")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := oppRepo.InsertOpportunity(seedOpportunity("aaa111", campaign.ID, 5)); err != nil {
		t.Fatal(err)
	}

	if err := respRepo.InsertResponse(1, "Casual", "first draft", 8, []string{"wait a day", "no links"}); err != nil {
		t.Fatal(err)
	}
	if err := respRepo.InsertResponse(1, "Casual", "second draft", 9, nil); err != nil {
		t.Fatal(err)
	}
	if err := respRepo.InsertResponse(1, "Expert", "expert take", 7, nil); err != nil {
		t.Fatal(err)
	}

	responses, err := respRepo.GetResponses(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(responses) != 2 {
		t.Fatalf("Expected 2 responses (one per style), got %d", len(responses))
	}
	if responses[0].Text != "first draft" {
		t.Errorf("Duplicate style insert replaced the original text: %q", responses[0].Text)
	}
	if len(responses[0].Tips) != 2 {
		t.Errorf("Expected 2 tips after round trip, got %v", responses[0].Tips)
	}
	if responses[1].Tips == nil || len(responses[1].Tips) != 0 {
		t.Errorf("Expected nil tips to round-trip as empty list, got %v", responses[1].Tips)
	}
}

func TestSeenPostRepository_MarkAndCheck(t *testing.T) {
	repo := NewSeenPostRepository(newTestDB(t))

	seen, err := repo.IsSeen("aaa111")
	if err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Error("Fresh post reported as seen")
	}

	if err := repo.MarkSeen("aaa111"); err != nil {
		t.Fatal(err)
	}
	// Marking twice must not error.
	if err := repo.MarkSeen("aaa111"); err != nil {
		t.Fatalf("Re-marking a seen post failed: %v", err)
	}

	seen, err = repo.IsSeen("aaa111")
	if err != nil {
		t.Fatal(err)
	}
	if !seen {
		t.Error("Marked post not reported as seen")
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := newTestDB(t)

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatal(err)
	}
	if dirty {
		t.Error("Expected clean migration state")
	}
	if version == 0 {
		t.Error("Expected non-zero schema version")
	}
}
