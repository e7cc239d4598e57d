package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ OpportunityRepository = (*opportunityRepository)(nil)

type opportunityRepository struct {
	db *DB
}

func NewOpportunityRepository(db *DB) OpportunityRepository {
	return &opportunityRepository{db: db}
}

func (r *opportunityRepository) InsertOpportunity(opp NewOpportunity) (bool, error) {
	result, err := r.db.Exec(`
		INSERT OR IGNORE INTO opportunities
			(campaign_id, reddit_post_id, subreddit, title, body, url, author, relevance_score, status, detected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, opp.CampaignID, opp.RedditPostID, opp.Subreddit, opp.Title, opp.Body,
		opp.URL, opp.Author, opp.RelevanceScore, StatusPending, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to insert opportunity: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

func (r *opportunityRepository) GetOpportunity(id int64) (*Opportunity, error) {
	var o Opportunity
	err := r.db.QueryRow(`
		SELECT id, campaign_id, reddit_post_id, subreddit, title, body, url, author,
		       relevance_score, status, detected_at
		FROM opportunities
		WHERE id = ?
	`, id).Scan(&o.ID, &o.CampaignID, &o.RedditPostID, &o.Subreddit, &o.Title, &o.Body,
		&o.URL, &o.Author, &o.RelevanceScore, &o.Status, &o.DetectedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}
	return &o, nil
}

func (r *opportunityRepository) ListOpportunities(campaignID int64, status string, limit int) ([]Opportunity, error) {
	query := `
		SELECT id, campaign_id, reddit_post_id, subreddit, title, body, url, author,
		       relevance_score, status, detected_at
		FROM opportunities
		WHERE 1 = 1`
	var args []interface{}

	if campaignID > 0 {
		query += " AND campaign_id = ?"
		args = append(args, campaignID)
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY relevance_score DESC, detected_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}
	defer rows.Close()

	var opportunities []Opportunity
	for rows.Next() {
		var o Opportunity
		err := rows.Scan(&o.ID, &o.CampaignID, &o.RedditPostID, &o.Subreddit, &o.Title, &o.Body,
			&o.URL, &o.Author, &o.RelevanceScore, &o.Status, &o.DetectedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan opportunity row: %w", err)
		}
		opportunities = append(opportunities, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating opportunity rows: %w", err)
	}

	return opportunities, nil
}

func (r *opportunityRepository) UpdateOpportunityStatus(id int64, status string) (bool, error) {
	var current string
	err := r.db.QueryRow("SELECT status FROM opportunities WHERE id = ?", id).Scan(&current)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get opportunity status: %w", err)
	}

	if !CanTransition(current, status) {
		return false, ErrStatusTransition
	}

	result, err := r.db.Exec("UPDATE opportunities SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return false, fmt.Errorf("failed to update opportunity status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

func (r *opportunityRepository) GetOpportunityStats() (*OpportunityStats, error) {
	var stats OpportunityStats
	err := r.db.QueryRow(`
		SELECT
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'generated' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END), 0),
			COUNT(*)
		FROM opportunities
	`).Scan(&stats.Pending, &stats.Generated, &stats.Approved, &stats.Total)
	if err != nil {
		return nil, fmt.Errorf("failed to get opportunity stats: %w", err)
	}
	return &stats, nil
}
