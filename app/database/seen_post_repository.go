package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ SeenPostRepository = (*seenPostRepository)(nil)

type seenPostRepository struct {
	db *DB
}

func NewSeenPostRepository(db *DB) SeenPostRepository {
	return &seenPostRepository{db: db}
}

func (r *seenPostRepository) IsSeen(postID string) (bool, error) {
	var one int
	err := r.db.QueryRow("SELECT 1 FROM seen_posts WHERE reddit_post_id = ?", postID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check seen post: %w", err)
	}
	return true, nil
}

func (r *seenPostRepository) MarkSeen(postID string) error {
	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO seen_posts (reddit_post_id, seen_at)
		VALUES (?, ?)
	`, postID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to mark post as seen: %w", err)
	}
	return nil
}
