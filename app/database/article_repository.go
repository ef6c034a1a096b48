package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ArticleRepo handles database operations for page passes
type ArticleRepo struct {
	db *DB
}

var _ ArticleRepository = (*ArticleRepo)(nil)

// NewArticleRepository creates a new article repository
func NewArticleRepository(db *DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

// CreateArticle records the start of a pass over a page
func (r *ArticleRepo) CreateArticle(title string) (*Article, error) {
	article := &Article{
		ID:        uuid.New().String(),
		Title:     title,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	_, err := r.db.Exec(`
		INSERT INTO articles (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, article.ID, article.Title, article.CreatedAt, article.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}

	return article, nil
}

// GetArticle retrieves an article by its id
func (r *ArticleRepo) GetArticle(id string) (*Article, error) {
	var article Article
	err := r.db.QueryRow(`
		SELECT id, title, edit_revision, created_at, updated_at
		FROM articles
		WHERE id = ?
	`, id).Scan(
		&article.ID, &article.Title, &article.EditRevision,
		&article.CreatedAt, &article.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return &article, nil
}

// SetEditRevision records the revision id of the edit made for this pass
func (r *ArticleRepo) SetEditRevision(id string, revision int64) error {
	_, err := r.db.Exec(`
		UPDATE articles
		SET edit_revision = ?, updated_at = ?
		WHERE id = ?
	`, revision, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set edit revision: %w", err)
	}

	return nil
}
