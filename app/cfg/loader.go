package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./arquibot.db" description:"Path to the SQLite database file"`

	// Wiki configuration
	WikiURL     string `long:"wiki-url" env:"WIKI_URL" default:"https://pt.wikipedia.org" description:"Base URL of the wiki"`
	AccessToken string `long:"access-token" env:"WIKI_ACCESS_TOKEN" description:"Bearer token used for page edits (optional for dry runs)"`

	// Application configuration
	Article           string   `long:"article" env:"ARTICLE" description:"Process a single article instead of the recent-changes window"`
	TemplatesDir      string   `long:"templates-dir" env:"TEMPLATES_DIR" default:"./templates" description:"Directory containing citation template configuration files"`
	WorkerCount       int      `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for page processing"`
	WindowHours       int      `long:"window-hours" env:"WINDOW_HOURS" default:"24" description:"Recent-changes window in hours"`
	PreemptiveArchive bool     `long:"preemptive-archive" env:"PREEMPTIVE_ARCHIVE" description:"Archive alive links as well as dead ones"`
	RequestTimeout    int      `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"30" description:"Timeout for outbound HTTP requests in seconds"`
	PageTimeout       int      `long:"page-timeout" env:"PAGE_TIMEOUT" default:"120" description:"Overall timeout for processing a single page in seconds"`
	SkipURLPrefixes   []string `long:"skip-url-prefix" env:"SKIP_URL_PREFIXES" env-delim:"," default:"https://doi.org/" default:"http://doi.org/" default:"https://web.archive.org/" description:"URL prefixes that are never checked or archived"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"arquibot/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/Sao_Paulo)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		WikiURL:           raw.WikiURL,
		AccessToken:       raw.AccessToken,
		Article:           raw.Article,
		TemplatesDir:      raw.TemplatesDir,
		WorkerCount:       raw.WorkerCount,
		WindowHours:       raw.WindowHours,
		PreemptiveArchive: raw.PreemptiveArchive,
		RequestTimeout:    raw.RequestTimeout,
		PageTimeout:       raw.PageTimeout,
		SkipURLPrefixes:   raw.SkipURLPrefixes,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
