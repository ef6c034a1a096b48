package citation

import (
	"iter"
	"strings"

	"github.com/arquibot/arquibot/app/config"
)

// Parser extracts citation template invocations from wikitext. Only the
// configured templates are recognized; everything else is left alone.
type Parser struct {
	templates []*config.TemplateConfig
}

// NewParser creates a new citation parser
func NewParser(templates []*config.TemplateConfig) *Parser {
	return &Parser{templates: templates}
}

// Run returns the citations of a page in document order. The sequence is
// lazy and restartable: each range re-scans the text. Recognized templates
// never overlap, so their spans can be rewritten independently.
func (p *Parser) Run(text string) iter.Seq[Citation] {
	return func(yield func(Citation) bool) {
		i := 0
		for i < len(text)-1 {
			if text[i] != '{' || text[i+1] != '{' {
				i++
				continue
			}

			citation, end, ok := p.parseTemplate(text, i)
			if !ok {
				// Not a recognized template: keep scanning inside it so
				// citations nested in other templates are still found.
				i += 2
				continue
			}

			if !yield(citation) {
				return
			}
			i = end
		}
	}
}

// parseTemplate attempts to parse a template invocation starting at the
// "{{" at offset start. It returns the citation and the offset just past
// the closing braces. ok is false when the braces never balance or the
// template name is not configured.
func (p *Parser) parseTemplate(text string, start int) (Citation, int, bool) {
	// Parameter boundaries: pipes at brace depth 1 outside any [[...]] link.
	var pipes []int
	braceDepth := 1
	linkDepth := 0
	end := -1

	i := start + 2
	for i < len(text) {
		switch {
		case strings.HasPrefix(text[i:], "{{"):
			braceDepth++
			i += 2
		case strings.HasPrefix(text[i:], "}}"):
			braceDepth--
			if braceDepth == 0 {
				end = i + 2
			}
			i += 2
		case strings.HasPrefix(text[i:], "[["):
			linkDepth++
			i += 2
		case strings.HasPrefix(text[i:], "]]"):
			if linkDepth > 0 {
				linkDepth--
			}
			i += 2
		case text[i] == '|':
			if braceDepth == 1 && linkDepth == 0 {
				pipes = append(pipes, i)
			}
			i++
		default:
			i++
		}
		if end >= 0 {
			break
		}
	}

	if end < 0 {
		return Citation{}, 0, false
	}

	body := text[start+2 : end-2]
	nameEnd := len(body)
	if len(pipes) > 0 {
		nameEnd = pipes[0] - (start + 2)
	}
	rawName := body[:nameEnd]

	tpl := p.match(rawName)
	if tpl == nil {
		return Citation{}, 0, false
	}

	citation := Citation{
		Template: tpl,
		RawName:  rawName,
		Start:    start,
		End:      end,
		Text:     text[start:end],
	}

	for idx, pipe := range pipes {
		chunkStart := pipe + 1
		chunkEnd := end - 2
		if idx+1 < len(pipes) {
			chunkEnd = pipes[idx+1]
		}
		citation.Fields = append(citation.Fields, parseField(text[chunkStart:chunkEnd]))
	}

	p.extract(&citation)

	return citation, end, true
}

// match returns the template configuration matching a raw invocation name,
// or nil when the name is not recognized.
func (p *Parser) match(rawName string) *config.TemplateConfig {
	for _, tpl := range p.templates {
		if tpl.MatchesName(rawName) {
			return tpl
		}
	}
	return nil
}

// parseField splits one parameter chunk into key and value. A chunk without
// an equals sign is a positional parameter and keeps an empty name.
func parseField(raw string) Field {
	eq := strings.Index(raw, "=")
	if eq < 0 {
		return Field{Raw: raw, Value: strings.TrimSpace(raw)}
	}
	return Field{
		Name:  config.NormalizeName(raw[:eq]),
		Raw:   raw,
		Value: strings.TrimSpace(raw[eq+1:]),
	}
}

// extract fills the citation's URL, archive and dead-link attributes from
// its fields, using the template's configured field table.
func (p *Parser) extract(c *Citation) {
	fields := c.Template.Fields

	archiveNames := map[string]bool{}
	for _, name := range c.Template.ArchiveFields() {
		archiveNames[config.NormalizeName(name)] = true
	}

	for _, f := range c.Fields {
		switch {
		case f.Name == config.NormalizeName(fields.URL):
			c.URL = f.Value
		case archiveNames[f.Name]:
			if f.Value != "" && c.ArchiveURL == "" {
				c.ArchiveURL = f.Value
			}
		case f.Name == config.NormalizeName(fields.ArchiveDate):
			c.ArchiveDate = f.Value
		case f.Name == config.NormalizeName(fields.DeadFlag):
			switch {
			case f.Value == "":
				c.Dead = DeadUnknown
			case strings.EqualFold(f.Value, fields.DeadToken):
				c.Dead = DeadYes
			default:
				c.Dead = DeadNo
			}
		}
	}
}
