package wiki

import "errors"

var (
	ErrNotFound = errors.New("page not found")
	ErrConflict = errors.New("page changed since fetch")
)

// Page is one wiki page revision: its wikitext source and the revision id
// that must accompany an edit for conflict detection.
type Page struct {
	Title    string
	Source   string
	LatestID int64
}

// pagePayload mirrors the REST page endpoint JSON
type pagePayload struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	Latest struct {
		ID int64 `json:"id"`
	} `json:"latest"`
}

// editPayload is the REST edit request body
type editPayload struct {
	Source  string `json:"source"`
	Comment string `json:"comment"`
	Latest  struct {
		ID int64 `json:"id"`
	} `json:"latest"`
}
