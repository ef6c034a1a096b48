package repair

import "time"

// Action kinds. Each citation carrying a valid URL produces exactly one
// record per pass, so replaying a pass over an already-repaired page yields
// only skip records.
const (
	ActionArchivedDeadLink       = "archived-dead-link"
	ActionArchivedPreemptively   = "archived-preemptively"
	ActionSkippedAlreadyArchived = "skipped-already-archived"
	ActionSkippedAlive           = "skipped-alive"
	ActionSkippedPermalink       = "skipped-permalink"
	ActionCheckFailed            = "check-failed"
	ActionArchiveFailed          = "archive-failed"
)

// ActionRecord is the decision taken for one citation, in document order.
type ActionRecord struct {
	URL       string
	Action    string
	Message   string
	Timestamp time.Time
}

// Result is the outcome of one pass over a page. NewText equals the input
// when Changed is false.
type Result struct {
	NewText         string
	Records         []ActionRecord
	Changed         bool
	StructuralSkips int
}
