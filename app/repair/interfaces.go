package repair

import (
	"context"

	"github.com/arquibot/arquibot/app/archive"
	"github.com/arquibot/arquibot/app/linkcheck"
	"github.com/arquibot/arquibot/app/wiki"
)

// LinkChecker probes a URL for liveness. It never returns an error: dead
// links and inconclusive probes are statuses, not failures.
type LinkChecker interface {
	Run(ctx context.Context, rawURL string) linkcheck.Result
}

// Archiver obtains permanent snapshots. Lookup is read-only and returns
// (nil, nil) when no snapshot exists; Archive requests a fresh capture.
type Archiver interface {
	Lookup(ctx context.Context, rawURL string) (*archive.Result, error)
	Archive(ctx context.Context, rawURL string) (*archive.Result, error)
}

// PageSource provides page text and the set of recently changed titles.
type PageSource interface {
	FetchPage(ctx context.Context, title string) (*wiki.Page, error)
	RecentlyChanged(ctx context.Context, windowHours int) ([]string, error)
}

// PageSink writes a repaired page back. The save is guarded by the revision
// the page was read at; a concurrent edit surfaces as wiki.ErrConflict.
type PageSink interface {
	SavePage(ctx context.Context, page *wiki.Page, newText, summary string) (int64, error)
}
