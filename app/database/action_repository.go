package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActionLogRepo handles the append-only action log. The core only ever
// appends; aggregation and queries belong to external collaborators.
type ActionLogRepo struct {
	db *DB
}

var _ ActionLogRepository = (*ActionLogRepo)(nil)

// NewActionLogRepository creates a new action-log repository
func NewActionLogRepository(db *DB) *ActionLogRepo {
	return &ActionLogRepo{db: db}
}

// AppendActions appends one row per citation decision
func (r *ActionLogRepo) AppendActions(actions []Action) error {
	if len(actions) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO actions (id, article_id, url, action, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare action insert: %w", err)
	}
	defer stmt.Close()

	for _, action := range actions {
		id := action.ID
		if id == "" {
			id = uuid.New().String()
		}
		createdAt := action.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}

		if _, err := stmt.Exec(id, action.ArticleID, action.URL, action.Action, action.Message, createdAt); err != nil {
			return fmt.Errorf("failed to append action: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit actions: %w", err)
	}

	return nil
}
