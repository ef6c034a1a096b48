package config

// TemplateConfig describes one recognized citation template: how its
// invocations are spelled and which fields carry the URL and archive data.
type TemplateConfig struct {
	Name     string       // Derived from filename (without .yml extension)
	Template TemplateInfo `yaml:"template"`
	Fields   FieldTable   `yaml:"fields"`
}

// TemplateInfo contains the accepted spellings of the template name
type TemplateInfo struct {
	Name    string   `yaml:"name"`    // canonical name, e.g. "citar web"
	Aliases []string `yaml:"aliases"` // additional accepted spellings
}

// FieldTable maps the template's field names. The bot never guesses field
// names beyond what is configured here.
type FieldTable struct {
	URL               string   `yaml:"url"`                 // field holding the cited URL
	ArchiveURL        string   `yaml:"archive_url"`         // field holding the snapshot URL
	ArchiveURLAliases []string `yaml:"archive_url_aliases"` // alternate archive fields, e.g. "wayb"
	ArchiveDate       string   `yaml:"archive_date"`        // field holding the snapshot date
	DeadFlag          string   `yaml:"dead_flag"`           // dead-link marker field
	DeadToken         string   `yaml:"dead_token"`          // value written to the dead-link field
	DateFormat        string   `yaml:"date_format"`         // Go time layout for the snapshot date
}
