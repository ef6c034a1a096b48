package citation

import (
	"strings"

	"github.com/arquibot/arquibot/app/config"
)

// Rewriter re-serializes a citation template with archive data. It is a
// pure function of its inputs: the same citation and archive values always
// produce byte-identical output, and fields it does not own are reproduced
// exactly as written.
type Rewriter struct{}

// NewRewriter creates a new citation rewriter
func NewRewriter() *Rewriter {
	return &Rewriter{}
}

// Run returns the new template text. It updates or appends only the
// dead-link, archive-url and archive-date fields; when dead is false an
// existing dead-link marker is removed. archiveDate must already be
// formatted with the template's configured date layout.
func (r *Rewriter) Run(c Citation, archiveURL, archiveDate string, dead bool) string {
	fields := c.Template.Fields

	deadName := config.NormalizeName(fields.DeadFlag)
	urlName := config.NormalizeName(fields.ArchiveURL)
	dateName := config.NormalizeName(fields.ArchiveDate)

	var b strings.Builder
	b.WriteString("{{")
	b.WriteString(c.RawName)

	seenDead := false
	seenURL := false
	seenDate := false

	for _, f := range c.Fields {
		switch f.Name {
		case deadName:
			seenDead = true
			if !dead {
				continue // the rewriter owns this field; drop it for alive links
			}
			b.WriteString("|")
			b.WriteString(replaceValue(f.Raw, fields.DeadToken))
		case urlName:
			seenURL = true
			b.WriteString("|")
			b.WriteString(replaceValue(f.Raw, archiveURL))
		case dateName:
			seenDate = true
			b.WriteString("|")
			b.WriteString(replaceValue(f.Raw, archiveDate))
		default:
			b.WriteString("|")
			b.WriteString(f.Raw)
		}
	}

	if dead && !seenDead {
		b.WriteString("|")
		b.WriteString(fields.DeadFlag)
		b.WriteString("=")
		b.WriteString(fields.DeadToken)
	}
	if !seenURL {
		b.WriteString("|")
		b.WriteString(fields.ArchiveURL)
		b.WriteString("=")
		b.WriteString(archiveURL)
	}
	if !seenDate {
		b.WriteString("|")
		b.WriteString(fields.ArchiveDate)
		b.WriteString("=")
		b.WriteString(archiveDate)
	}

	b.WriteString("}}")
	return b.String()
}

// replaceValue swaps the value of a key=value parameter chunk while keeping
// the key spelling and the whitespace around both key and value.
func replaceValue(raw, newValue string) string {
	eq := strings.Index(raw, "=")
	if eq < 0 {
		return raw + "=" + newValue
	}

	val := raw[eq+1:]
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return raw[:eq+1] + newValue
	}

	lead := val[:strings.Index(val, trimmed)]
	trail := val[strings.Index(val, trimmed)+len(trimmed):]
	return raw[:eq+1] + lead + newValue + trail
}
