package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arquibot/arquibot/app/archive"
	"github.com/arquibot/arquibot/app/cfg"
	"github.com/arquibot/arquibot/app/citation"
	"github.com/arquibot/arquibot/app/config"
	"github.com/arquibot/arquibot/app/database"
	"github.com/arquibot/arquibot/app/linkcheck"
	"github.com/arquibot/arquibot/app/repair"
	"github.com/arquibot/arquibot/app/tasks"
	"github.com/arquibot/arquibot/app/wiki"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	slog.Info("Starting arquibot", "version", appCfg.Version, "wiki", appCfg.WikiURL)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	loader := config.NewLoader(appCfg.TemplatesDir)
	templates, err := loader.LoadAll()
	if err != nil {
		slog.Error("Failed to load template configurations", "dir", appCfg.TemplatesDir, "error", err)
		os.Exit(1)
	}
	if len(templates) == 0 {
		slog.Error("No template configurations found", "dir", appCfg.TemplatesDir)
		os.Exit(1)
	}
	slog.Info("Template configurations loaded", "count", len(templates))

	httpClient := &http.Client{
		Timeout: time.Duration(appCfg.RequestTimeout) * time.Second,
	}

	checker := linkcheck.NewChecker(httpClient, appCfg.UserAgent, 2, time.Second)
	archiver := archive.NewClient(httpClient, appCfg.UserAgent,
		archive.DefaultSaveURL, archive.DefaultAvailabilityURL, 3, 2*time.Second)
	wikiClient := wiki.NewClient(httpClient, appCfg.WikiURL, appCfg.AccessToken, appCfg.UserAgent)

	orchestrator := repair.NewOrchestrator(
		citation.NewParser(templates),
		citation.NewRewriter(),
		checker,
		archiver,
		repair.Options{
			SkipURLPrefixes:   appCfg.SkipURLPrefixes,
			PreemptiveArchive: appCfg.PreemptiveArchive,
			WorkerCount:       appCfg.WorkerCount,
			PageTimeout:       time.Duration(appCfg.PageTimeout) * time.Second,
		})

	articleRepo := database.NewArticleRepository(db)
	actionRepo := database.NewActionLogRepository(db)
	runner := tasks.NewRunner(wikiClient, wikiClient, orchestrator, articleRepo, actionRepo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var titles []string
	if appCfg.Article != "" {
		titles = []string{appCfg.Article}
	} else {
		titles, err = wikiClient.RecentlyChanged(ctx, appCfg.WindowHours)
		if err != nil {
			slog.Error("Failed to fetch recent changes", "error", err)
			os.Exit(1)
		}
	}

	if len(titles) == 0 {
		slog.Info("Nothing to process")
		return
	}

	slog.Info("Processing pages", "count", len(titles), "workers", appCfg.WorkerCount)
	runner.Run(ctx, titles)

	if ctx.Err() != nil {
		slog.Warn("Run interrupted")
		return
	}
	slog.Info("Run complete", "pages", len(titles))
}
