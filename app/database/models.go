package database

import (
	"time"
)

// Article represents one page pass in the database
type Article struct {
	ID           string // Database UUID
	Title        string
	EditRevision *int64 // Revision id of the bot's edit, when one was made
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Action is one append-only action-log row: the decision taken for a
// single citation. Rows are written once and never updated or deleted.
type Action struct {
	ID        string
	ArticleID string
	URL       string
	Action    string
	Message   string
	CreatedAt time.Time
}
