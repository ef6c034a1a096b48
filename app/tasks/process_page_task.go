package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arquibot/arquibot/app/database"
	"github.com/arquibot/arquibot/app/repair"
	"github.com/arquibot/arquibot/app/wiki"
)

type ProcessPageTask struct {
	Task
	source      repair.PageSource
	sink        repair.PageSink
	repairer    PageRepairer
	articleRepo database.ArticleRepository
	actionRepo  database.ActionLogRepository
}

func NewProcessPageTask(title string, source repair.PageSource, sink repair.PageSink,
	repairer PageRepairer, articleRepo database.ArticleRepository,
	actionRepo database.ActionLogRepository) *ProcessPageTask {
	return &ProcessPageTask{
		Task:        NewTask(TaskTypeProcessPage, title),
		source:      source,
		sink:        sink,
		repairer:    repairer,
		articleRepo: articleRepo,
		actionRepo:  actionRepo,
	}
}

func (t *ProcessPageTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	page, err := t.source.FetchPage(ctx, t.Title)
	if errors.Is(err, wiki.ErrNotFound) {
		slog.Warn("Page not found, skipping", "title", t.Title)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to fetch page: %w", err)
	}

	result := t.repairer.Run(ctx, page.Source)
	if len(result.Records) == 0 && result.StructuralSkips == 0 {
		slog.Debug("No citations found, skipping", "title", t.Title)
		return nil
	}

	archivedCount := 0
	for _, record := range result.Records {
		if strings.HasPrefix(record.Action, "archived-") {
			archivedCount++
		}
	}

	var revision int64
	saved := false
	if result.Changed {
		summary := fmt.Sprintf("Arquivamento de %d URL(s)", archivedCount)

		revision, err = t.sink.SavePage(ctx, page, result.NewText, summary)
		if errors.Is(err, wiki.ErrConflict) {
			// Someone edited the page while it was being processed. The next
			// pass will pick it up with fresh text; nothing is logged because
			// nothing was applied.
			slog.Warn("Page changed during processing, skipping save", "title", t.Title)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to save page: %w", err)
		}
		saved = true
	}

	// The article row is created only once the save outcome is known, so a
	// retried transient failure does not leave one row per attempt.
	article, err := t.articleRepo.CreateArticle(page.Title)
	if err != nil {
		return fmt.Errorf("failed to create article record: %w", err)
	}

	if saved {
		if err := t.articleRepo.SetEditRevision(article.ID, revision); err != nil {
			return fmt.Errorf("failed to record edit revision: %w", err)
		}
	}

	actions := make([]database.Action, 0, len(result.Records))
	for _, record := range result.Records {
		actions = append(actions, database.Action{
			ArticleID: article.ID,
			URL:       record.URL,
			Action:    record.Action,
			Message:   record.Message,
			CreatedAt: record.Timestamp,
		})
	}
	if err := t.actionRepo.AppendActions(actions); err != nil {
		return fmt.Errorf("failed to append actions: %w", err)
	}

	slog.Info("Task completed",
		"type", "ProcessPage",
		"title", t.Title,
		"duration", t.GetDuration(),
		"citations", len(result.Records),
		"archived", archivedCount,
		"structural_skips", result.StructuralSkips,
		"changed", result.Changed)

	return nil
}
