package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ CampaignRepository = (*campaignRepository)(nil)

type campaignRepository struct {
	db *DB
}

func NewCampaignRepository(db *DB) CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) CreateCampaign(brandName, description, keywords, subreddits string) (*Campaign, error) {
	now := time.Now().UTC()

	result, err := r.db.Exec(`
		INSERT INTO campaigns (brand_name, description, keywords, subreddits, active, created_at)
		VALUES (?, ?, ?, ?, 1, ?)
	`, brandName, description, keywords, subreddits, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign id: %w", err)
	}

	return &Campaign{
		ID:          id,
		BrandName:   brandName,
		Description: description,
		Keywords:    keywords,
		Subreddits:  subreddits,
		Active:      true,
		CreatedAt:   now,
	}, nil
}

func (r *campaignRepository) GetCampaign(id int64) (*Campaign, error) {
	return r.scanOne(r.db.QueryRow(`
		SELECT id, brand_name, description, keywords, subreddits, active, created_at
		FROM campaigns
		WHERE id = ?
	`, id))
}

func (r *campaignRepository) GetCampaignByBrand(brandName string) (*Campaign, error) {
	return r.scanOne(r.db.QueryRow(`
		SELECT id, brand_name, description, keywords, subreddits, active, created_at
		FROM campaigns
		WHERE brand_name = ?
		LIMIT 1
	`, brandName))
}

func (r *campaignRepository) scanOne(row *sql.Row) (*Campaign, error) {
	var c Campaign
	err := row.Scan(&c.ID, &c.BrandName, &c.Description, &c.Keywords, &c.Subreddits, &c.Active, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return &c, nil
}

func (r *campaignRepository) ListCampaigns() ([]CampaignWithCounts, error) {
	rows, err := r.db.Query(`
		SELECT c.id, c.brand_name, c.description, c.keywords, c.subreddits, c.active, c.created_at,
		       COUNT(o.id),
		       COALESCE(SUM(CASE WHEN o.status = 'pending' THEN 1 ELSE 0 END), 0)
		FROM campaigns c
		LEFT JOIN opportunities o ON o.campaign_id = c.id
		GROUP BY c.id
		ORDER BY c.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []CampaignWithCounts
	for rows.Next() {
		var c CampaignWithCounts
		err := rows.Scan(&c.ID, &c.BrandName, &c.Description, &c.Keywords, &c.Subreddits,
			&c.Active, &c.CreatedAt, &c.TotalOpportunities, &c.PendingOpportunities)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign row: %w", err)
		}
		campaigns = append(campaigns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaign rows: %w", err)
	}

	return campaigns, nil
}

func (r *campaignRepository) ListActiveCampaigns() ([]Campaign, error) {
	rows, err := r.db.Query(`
		SELECT id, brand_name, description, keywords, subreddits, active, created_at
		FROM campaigns
		WHERE active = 1
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []Campaign
	for rows.Next() {
		var c Campaign
		err := rows.Scan(&c.ID, &c.BrandName, &c.Description, &c.Keywords, &c.Subreddits, &c.Active, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign row: %w", err)
		}
		campaigns = append(campaigns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaign rows: %w", err)
	}

	return campaigns, nil
}

func (r *campaignRepository) GetActiveCampaignCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM campaigns WHERE active = 1").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active campaigns: %w", err)
	}
	return count, nil
}

func (r *campaignRepository) SetCampaignActive(id int64, active bool) (bool, error) {
	result, err := r.db.Exec("UPDATE campaigns SET active = ? WHERE id = ?", active, id)
	if err != nil {
		return false, fmt.Errorf("failed to update campaign: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

func (r *campaignRepository) DeleteCampaign(id int64) (bool, error) {
	result, err := r.db.Exec("DELETE FROM campaigns WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete campaign: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}
