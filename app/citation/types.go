package citation

import (
	"net/url"

	"github.com/arquibot/arquibot/app/config"
)

// DeadState is the tri-state dead-link marker carried by a citation.
type DeadState int

const (
	DeadUnknown DeadState = iota
	DeadNo
	DeadYes
)

// Field is one template parameter as written in the wikitext. Raw preserves
// the exact bytes between the surrounding pipes so untouched fields can be
// re-serialized without any diff.
type Field struct {
	Name  string // normalized key, empty for positional parameters
	Raw   string // exact text of the parameter, whitespace included
	Value string // trimmed value
}

// Citation is one recognized citation template occurrence in a page.
type Citation struct {
	Template *config.TemplateConfig

	RawName string // template name chunk exactly as written
	Start   int    // byte offset of the opening braces
	End     int    // byte offset just past the closing braces
	Text    string // full original template text
	Fields  []Field

	URL         string
	ArchiveURL  string
	ArchiveDate string
	Dead        DeadState
}

// HasValidURL reports whether the citation carries a well-formed absolute
// HTTP(S) URL. Citations failing this are structural skips, not errors.
func (c *Citation) HasValidURL() bool {
	if c.URL == "" {
		return false
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// IsArchived reports whether the citation already carries archive data.
func (c *Citation) IsArchived() bool {
	return c.ArchiveURL != ""
}
