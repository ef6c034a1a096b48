package config

import "strings"

// NormalizeName lowercases a template or field name and collapses internal
// whitespace, so "Citar  Web" and "citar web" compare equal.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// AllNames returns the canonical template name plus all aliases, normalized.
func (c *TemplateConfig) AllNames() []string {
	names := []string{NormalizeName(c.Template.Name)}
	for _, alias := range c.Template.Aliases {
		names = append(names, NormalizeName(alias))
	}
	return names
}

// MatchesName reports whether a template invocation name (as written in
// wikitext) refers to this template.
func (c *TemplateConfig) MatchesName(name string) bool {
	normalized := NormalizeName(name)
	for _, candidate := range c.AllNames() {
		if normalized == candidate {
			return true
		}
	}
	return false
}

// ArchiveFields returns every field name that marks a citation as already
// archived: the archive URL field plus its aliases.
func (c *TemplateConfig) ArchiveFields() []string {
	fields := []string{c.Fields.ArchiveURL}
	return append(fields, c.Fields.ArchiveURLAliases...)
}
