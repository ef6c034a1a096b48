package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	// Test default version
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		DBPath:            "./test.db",
		WikiURL:           "https://pt.wikipedia.org",
		AccessToken:       "test-token",
		TemplatesDir:      "./templates",
		WorkerCount:       5,
		WindowHours:       24,
		PreemptiveArchive: true,
		RequestTimeout:    30,
		PageTimeout:       120,
		SkipURLPrefixes:   []string{"https://doi.org/"},
		UserAgent:         "Test Agent",
		Timezone:          "UTC",
		Debug:             true,
		Version:           "test-version",
	}

	if cfg.DBPath != "./test.db" {
		t.Errorf("Expected DB path './test.db', got '%s'", cfg.DBPath)
	}
	if cfg.WikiURL != "https://pt.wikipedia.org" {
		t.Errorf("Expected wiki URL 'https://pt.wikipedia.org', got '%s'", cfg.WikiURL)
	}
	if cfg.AccessToken != "test-token" {
		t.Errorf("Expected access token 'test-token', got '%s'", cfg.AccessToken)
	}
	if cfg.TemplatesDir != "./templates" {
		t.Errorf("Expected templates dir './templates', got '%s'", cfg.TemplatesDir)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("Expected worker count 5, got %d", cfg.WorkerCount)
	}
	if cfg.WindowHours != 24 {
		t.Errorf("Expected window hours 24, got %d", cfg.WindowHours)
	}
	if !cfg.PreemptiveArchive {
		t.Error("Expected preemptive archive to be enabled")
	}
	if cfg.RequestTimeout != 30 {
		t.Errorf("Expected request timeout 30, got %d", cfg.RequestTimeout)
	}
	if cfg.PageTimeout != 120 {
		t.Errorf("Expected page timeout 120, got %d", cfg.PageTimeout)
	}
	if len(cfg.SkipURLPrefixes) != 1 || cfg.SkipURLPrefixes[0] != "https://doi.org/" {
		t.Errorf("Expected skip prefixes ['https://doi.org/'], got %v", cfg.SkipURLPrefixes)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Expected timezone 'UTC', got '%s'", cfg.Timezone)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
	if cfg.Version != "test-version" {
		t.Errorf("Expected version 'test-version', got '%s'", cfg.Version)
	}
}
