package retrieval

import (
	"encoding/json"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/form"
)

// ContextEntry is one prior form rendered for inclusion in a generation
// prompt.
type ContextEntry struct {
	category    form.Category
	title       string
	summary     string
	descriptors []string
	schemaJSON  string
}

// Category returns the form's category tag.
func (e ContextEntry) Category() form.Category { return e.category }

// Title returns the form's display title.
func (e ContextEntry) Title() string { return e.title }

// Summary returns the form's descriptive text.
func (e ContextEntry) Summary() string { return e.summary }

// Descriptors returns one line per field, e.g. "Email (email, required)".
func (e ContextEntry) Descriptors() []string {
	out := make([]string, len(e.descriptors))
	copy(out, e.descriptors)
	return out
}

// SchemaJSON returns the full schema as JSON, or the empty string when
// schemas were not requested.
func (e ContextEntry) SchemaJSON() string { return e.schemaJSON }

// AssembleOption configures AssembleContext.
type AssembleOption func(*assembleConfig)

type assembleConfig struct {
	includeSchemas bool
}

// WithSchemas includes each form's full schema JSON in its entry.
func WithSchemas(include bool) AssembleOption {
	return func(c *assembleConfig) { c.includeSchemas = include }
}

// AssembleContext renders matches into prompt context entries. Input order
// is preserved: the ranking already encodes relevance and is never
// re-sorted here.
func AssembleContext(matches []Match, opts ...AssembleOption) []ContextEntry {
	var cfg assembleConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	entries := make([]ContextEntry, 0, len(matches))
	for _, m := range matches {
		f := m.Form()
		schema := f.Schema()

		entry := ContextEntry{
			category: f.Category(),
			title:    f.Title(),
			summary:  f.Summary(),
		}
		for _, field := range schema.Fields() {
			entry.descriptors = append(entry.descriptors, field.Descriptor())
		}
		if cfg.includeSchemas {
			if raw, err := json.Marshal(schema); err == nil {
				entry.schemaJSON = string(raw)
			}
		}
		entries = append(entries, entry)
	}
	return entries
}
