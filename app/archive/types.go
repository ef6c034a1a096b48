package archive

import (
	"errors"
	"time"
)

// Failure taxonomy. Rate limits and outages are retryable operating
// conditions; a rejected URL is permanent.
var (
	ErrRateLimited = errors.New("archive service rate limited")
	ErrUnavailable = errors.New("archive service unavailable")
	ErrInvalidURL  = errors.New("URL rejected by archive service")
)

// Result is a permanent snapshot reference. Immutable once returned.
type Result struct {
	URL             string
	ArchiveURL      string
	ArchiveDate     time.Time
	AlreadyArchived bool
}

// availabilityResponse mirrors the availability API JSON payload
type availabilityResponse struct {
	ArchivedSnapshots struct {
		Closest struct {
			Available bool   `json:"available"`
			URL       string `json:"url"`
			Timestamp string `json:"timestamp"`
		} `json:"closest"`
	} `json:"archived_snapshots"`
}
