package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and validation of citation template configurations
type Loader struct {
	templatesDir string
}

// NewLoader creates a new configuration loader
func NewLoader(templatesDir string) *Loader {
	return &Loader{templatesDir: templatesDir}
}

// LoadAll loads all YAML template configuration files from the templates directory
func (l *Loader) LoadAll() ([]*TemplateConfig, error) {
	var configs []*TemplateConfig

	if _, err := os.Stat(l.templatesDir); os.IsNotExist(err) {
		return configs, nil // Return empty slice if directory doesn't exist
	}

	files, err := filepath.Glob(filepath.Join(l.templatesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}

	yamlFiles, err := filepath.Glob(filepath.Join(l.templatesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YAML files: %w", err)
	}
	files = append(files, yamlFiles...)

	for _, file := range files {
		config, err := l.loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		if err := l.validate(config); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", file, err)
		}

		configs = append(configs, config)
		slog.Debug("Template configuration loaded", "file", file, "template", config.Template.Name)
	}

	return configs, nil
}

// loadFile loads a single YAML template configuration file
func (l *Loader) loadFile(path string) (*TemplateConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config TemplateConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	fileName := filepath.Base(path)
	config.Name = strings.TrimSuffix(strings.TrimSuffix(fileName, ".yml"), ".yaml")

	l.setDefaults(&config)

	return &config, nil
}

// setDefaults applies default values to configuration
func (l *Loader) setDefaults(config *TemplateConfig) {
	if config.Fields.URL == "" {
		config.Fields.URL = "url"
	}
	if config.Fields.ArchiveURL == "" {
		config.Fields.ArchiveURL = "arquivourl"
	}
	if config.Fields.ArchiveDate == "" {
		config.Fields.ArchiveDate = "arquivodata"
	}
	if config.Fields.DeadFlag == "" {
		config.Fields.DeadFlag = "urlmorta"
	}
	if config.Fields.DeadToken == "" {
		config.Fields.DeadToken = "sim"
	}
	if config.Fields.DateFormat == "" {
		config.Fields.DateFormat = "2006-01-02"
	}
}

// validate validates the configuration
func (l *Loader) validate(config *TemplateConfig) error {
	if config.Template.Name == "" {
		return fmt.Errorf("template name is required")
	}

	seen := map[string]bool{}
	for _, name := range config.AllNames() {
		if seen[name] {
			return fmt.Errorf("duplicate template name or alias: %s", name)
		}
		seen[name] = true
	}

	fields := []string{
		config.Fields.URL,
		config.Fields.ArchiveURL,
		config.Fields.ArchiveDate,
		config.Fields.DeadFlag,
	}
	fieldSeen := map[string]bool{}
	for _, f := range fields {
		if fieldSeen[f] {
			return fmt.Errorf("duplicate field name: %s", f)
		}
		fieldSeen[f] = true
	}

	return nil
}
