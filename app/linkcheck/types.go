package linkcheck

import "time"

type Status string

const (
	StatusAlive   Status = "alive"
	StatusDead    Status = "dead"
	StatusUnknown Status = "unknown"
)

// Result is the outcome of one liveness probe.
type Result struct {
	URL       string
	Status    Status
	CheckedAt time.Time
}
