package repair

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/arquibot/arquibot/app/archive"
	"github.com/arquibot/arquibot/app/citation"
	"github.com/arquibot/arquibot/app/linkcheck"
)

// Orchestrator runs one repair pass over a page: parse the citations,
// resolve each distinct URL once, rewrite the templates that gained archive
// data, and report one ActionRecord per citation.
type Orchestrator struct {
	parser       *citation.Parser
	rewriter     *citation.Rewriter
	checker      LinkChecker
	archiver     Archiver
	skipPrefixes []string
	preemptive   bool
	workerCount  int
	pageTimeout  time.Duration
}

// Options carries the tunables of a repair pass.
type Options struct {
	SkipURLPrefixes   []string
	PreemptiveArchive bool
	WorkerCount       int
	PageTimeout       time.Duration
}

// NewOrchestrator creates a new repair orchestrator
func NewOrchestrator(parser *citation.Parser, rewriter *citation.Rewriter,
	checker LinkChecker, archiver Archiver, opts Options) *Orchestrator {
	if opts.WorkerCount < 1 {
		opts.WorkerCount = 1
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = 2 * time.Minute
	}

	return &Orchestrator{
		parser:       parser,
		rewriter:     rewriter,
		checker:      checker,
		archiver:     archiver,
		skipPrefixes: opts.SkipURLPrefixes,
		preemptive:   opts.PreemptiveArchive,
		workerCount:  opts.WorkerCount,
		pageTimeout:  opts.PageTimeout,
	}
}

// urlOutcome is the per-run memo entry for one distinct URL.
type urlOutcome struct {
	action   string
	snapshot *archive.Result
	message  string
}

// Run performs one pass over the page text. Per-citation failures become
// failure records, never errors; Changed is false when the output is
// byte-identical to the input.
func (o *Orchestrator) Run(ctx context.Context, text string) Result {
	var citations []citation.Citation
	structuralSkips := 0
	for c := range o.parser.Run(text) {
		if !c.HasValidURL() {
			structuralSkips++
			continue
		}
		citations = append(citations, c)
	}

	result := Result{NewText: text, StructuralSkips: structuralSkips}
	if len(citations) == 0 {
		return result
	}

	outcomes := o.resolveAll(ctx, citations)

	type rewrite struct {
		c       citation.Citation
		newText string
	}
	var rewrites []rewrite

	for _, c := range citations {
		record := ActionRecord{URL: c.URL, Timestamp: time.Now().UTC()}

		switch {
		case c.IsArchived():
			record.Action = ActionSkippedAlreadyArchived
		case o.isPermalink(c.URL):
			record.Action = ActionSkippedPermalink
		default:
			outcome := outcomes[c.URL]
			record.Action = outcome.action
			record.Message = outcome.message

			if outcome.snapshot != nil {
				dead := outcome.action == ActionArchivedDeadLink
				date := outcome.snapshot.ArchiveDate.Format(c.Template.Fields.DateFormat)
				newText := o.rewriter.Run(c, outcome.snapshot.ArchiveURL, date, dead)
				if newText != c.Text {
					rewrites = append(rewrites, rewrite{c: c, newText: newText})
				}
			}
		}

		result.Records = append(result.Records, record)
	}

	// Citations come in document order with non-overlapping spans; splicing
	// from the last one backwards keeps every earlier offset valid.
	out := text
	for i := len(rewrites) - 1; i >= 0; i-- {
		r := rewrites[i]
		out = out[:r.c.Start] + r.newText + out[r.c.End:]
	}

	result.NewText = out
	result.Changed = out != text

	return result
}

// resolveAll resolves every distinct URL that needs network work, bounded
// by the worker count and the page timeout. URLs still pending when the
// timeout fires resolve to failure outcomes instead of blocking the pass.
func (o *Orchestrator) resolveAll(ctx context.Context, citations []citation.Citation) map[string]urlOutcome {
	pending := make(map[string]bool)
	for _, c := range citations {
		if c.IsArchived() || o.isPermalink(c.URL) {
			continue
		}
		pending[c.URL] = true
	}

	outcomes := make(map[string]urlOutcome, len(pending))
	if len(pending) == 0 {
		return outcomes
	}

	pageCtx, cancel := context.WithTimeout(ctx, o.pageTimeout)
	defer cancel()

	// The single-flight guard is scoped to this pass: a shared group would
	// let one page's timeout poison the outcome of a concurrent pass citing
	// the same URL.
	var flight singleflight.Group
	var mu sync.Mutex
	g, groupCtx := errgroup.WithContext(pageCtx)
	g.SetLimit(o.workerCount)

	for url := range pending {
		g.Go(func() error {
			outcome := o.resolve(groupCtx, &flight, url)
			mu.Lock()
			outcomes[url] = outcome
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	return outcomes
}

// resolve funnels callers through the per-pass single-flight guard so at
// most one network resolution is in flight per URL per run.
func (o *Orchestrator) resolve(ctx context.Context, flight *singleflight.Group, rawURL string) urlOutcome {
	v, _, _ := flight.Do(rawURL, func() (any, error) {
		return o.resolveOnce(ctx, rawURL), nil
	})
	return v.(urlOutcome)
}

func (o *Orchestrator) resolveOnce(ctx context.Context, rawURL string) urlOutcome {
	check := o.checker.Run(ctx, rawURL)

	switch check.Status {
	case linkcheck.StatusUnknown:
		return urlOutcome{action: ActionCheckFailed, message: "liveness probe inconclusive"}
	case linkcheck.StatusAlive:
		if !o.preemptive {
			return urlOutcome{action: ActionSkippedAlive}
		}
		return o.snapshotFor(ctx, rawURL, ActionArchivedPreemptively)
	default:
		return o.snapshotFor(ctx, rawURL, ActionArchivedDeadLink)
	}
}

// snapshotFor obtains a snapshot, preferring an existing one over a fresh
// capture. Lookup failures are not terminal; the capture still gets tried.
func (o *Orchestrator) snapshotFor(ctx context.Context, rawURL, action string) urlOutcome {
	snapshot, err := o.archiver.Lookup(ctx, rawURL)
	if err != nil {
		snapshot = nil
	}
	if snapshot == nil {
		snapshot, err = o.archiver.Archive(ctx, rawURL)
		if err != nil {
			return urlOutcome{action: ActionArchiveFailed, message: err.Error()}
		}
	}
	return urlOutcome{action: action, snapshot: snapshot}
}

// isPermalink reports whether the URL is already a permanent reference,
// e.g. a DOI resolver or the archive itself.
func (o *Orchestrator) isPermalink(rawURL string) bool {
	for _, prefix := range o.skipPrefixes {
		if strings.HasPrefix(rawURL, prefix) {
			return true
		}
	}
	return false
}
