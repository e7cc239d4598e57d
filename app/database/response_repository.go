package database

import (
	"encoding/json"
	"fmt"
	"time"
)

var _ ResponseRepository = (*responseRepository)(nil)

type responseRepository struct {
	db *DB
}

func NewResponseRepository(db *DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) InsertResponse(opportunityID int64, style, text string, antiBanScore int, tips []string) error {
	if tips == nil {
		tips = []string{}
	}

	tipsJSON, err := json.Marshal(tips)
	if err != nil {
		return fmt.Errorf("failed to encode tips: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT OR IGNORE INTO responses (opportunity_id, style, text, anti_ban_score, tips, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, opportunityID, style, text, antiBanScore, string(tipsJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert response: %w", err)
	}

	return nil
}

func (r *responseRepository) GetResponses(opportunityID int64) ([]Response, error) {
	rows, err := r.db.Query(`
		SELECT id, opportunity_id, style, text, anti_ban_score, tips, created_at
		FROM responses
		WHERE opportunity_id = ?
		ORDER BY id ASC
	`, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("failed to get responses: %w", err)
	}
	defer rows.Close()

	var responses []Response
	for rows.Next() {
		var resp Response
		var tipsJSON string
		err := rows.Scan(&resp.ID, &resp.OpportunityID, &resp.Style, &resp.Text,
			&resp.AntiBanScore, &tipsJSON, &resp.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan response row: %w", err)
		}

		if err := json.Unmarshal([]byte(tipsJSON), &resp.Tips); err != nil {
			return nil, fmt.Errorf("failed to decode tips: %w", err)
		}

		responses = append(responses, resp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating response rows: %w", err)
	}

	return responses, nil
}
