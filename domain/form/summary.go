package form

import (
	"fmt"
	"strings"
)

const (
	// maxSummaryFields caps how many field descriptors a summary lists.
	maxSummaryFields = 12
	// maxSummaryLen caps free-text summaries, in runes.
	maxSummaryLen = 400
)

// Summarize builds the descriptive text for a form: a short, deterministic
// synopsis of its purpose and structure. The summary is what gets embedded
// and what context entries quote, so the most defining tokens (title,
// category) come first.
func Summarize(schema Schema, category Category) string {
	title := strings.TrimSpace(schema.Title())
	if title == "" {
		title = "Untitled form"
	}

	var b strings.Builder
	b.WriteString(title)
	fmt.Fprintf(&b, " (%s form)", category)

	if desc := strings.TrimSpace(schema.Description()); desc != "" {
		b.WriteString(". ")
		b.WriteString(strings.TrimSuffix(desc, "."))
	}

	fields := schema.Fields()
	if len(fields) == 0 {
		b.WriteString(". No fields.")
		return b.String()
	}

	fmt.Fprintf(&b, ". %d fields: ", len(fields))
	listed := fields
	if len(listed) > maxSummaryFields {
		listed = listed[:maxSummaryFields]
	}
	for i, f := range listed {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Descriptor())
	}
	if extra := len(fields) - len(listed); extra > 0 {
		fmt.Fprintf(&b, "; and %d more", extra)
	}
	b.WriteString(".")
	return b.String()
}

// SummarizeText builds descriptive text from arbitrary source text:
// whitespace is collapsed and the result truncated at a word boundary.
// Deterministic for identical input.
func SummarizeText(text string) string {
	cleaned := strings.Join(strings.Fields(text), " ")
	runes := []rune(cleaned)
	if len(runes) <= maxSummaryLen {
		return cleaned
	}

	truncated := string(runes[:maxSummaryLen])
	if idx := strings.LastIndexByte(truncated, ' '); idx > 0 {
		truncated = truncated[:idx]
	}
	return truncated + "..."
}
