package form

import (
	"strings"
	"testing"
)

func TestSummarize_Structure(t *testing.T) {
	s := NewSchema("Internship Application", "Apply here.", []Field{
		NewField("full_name", "Full Name", KindText, true, nil),
		NewField("resume", "Resume", KindFile, true, nil),
	})

	got := Summarize(s, CategoryJob)

	if !strings.HasPrefix(got, "Internship Application (job form)") {
		t.Errorf("summary should lead with title and category, got %q", got)
	}
	if !strings.Contains(got, "2 fields:") {
		t.Errorf("summary should state the field count, got %q", got)
	}
	if !strings.Contains(got, "Full Name (text, required)") {
		t.Errorf("summary should list field descriptors, got %q", got)
	}
	if !strings.Contains(got, "Apply here.") {
		t.Errorf("summary should include the description, got %q", got)
	}
}

func TestSummarize_EmptySchema(t *testing.T) {
	got := Summarize(NewSchema("", "", nil), CategoryGeneral)

	if !strings.HasPrefix(got, "Untitled form") {
		t.Errorf("summary = %q", got)
	}
	if !strings.Contains(got, "No fields.") {
		t.Errorf("summary = %q", got)
	}
}

func TestSummarize_CapsFieldList(t *testing.T) {
	fields := make([]Field, maxSummaryFields+3)
	for i := range fields {
		fields[i] = NewField("f", "Field", KindText, false, nil)
	}
	got := Summarize(NewSchema("Big", "", fields), CategorySurvey)

	if !strings.Contains(got, "and 3 more") {
		t.Errorf("summary should note the overflow, got %q", got)
	}
	if strings.Count(got, "Field (text)") != maxSummaryFields {
		t.Errorf("summary should list %d descriptors, got %q", maxSummaryFields, got)
	}
}

func TestSummarize_Deterministic(t *testing.T) {
	s := testSchema()
	first := Summarize(s, CategoryJob)
	for range 5 {
		if got := Summarize(s, CategoryJob); got != first {
			t.Fatal("Summarize must be deterministic")
		}
	}
}

func TestSummarizeText_CollapsesWhitespace(t *testing.T) {
	got := SummarizeText("  a   form\n\tabout   lunch  ")
	if got != "a form about lunch" {
		t.Errorf("SummarizeText = %q", got)
	}
}

func TestSummarizeText_TruncatesAtWordBoundary(t *testing.T) {
	long := strings.Repeat("word ", 200)
	got := SummarizeText(long)

	if len([]rune(got)) > maxSummaryLen+3 {
		t.Errorf("summary too long: %d runes", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated summary should end with ellipsis, got %q", got[len(got)-10:])
	}
	if strings.Contains(got, "wor...") {
		t.Errorf("should truncate at a word boundary, got %q", got[len(got)-10:])
	}
}

func TestSummarizeText_ShortInputUnchanged(t *testing.T) {
	if got := SummarizeText("short text"); got != "short text" {
		t.Errorf("SummarizeText = %q", got)
	}
}
