package form

import (
	"strings"
	"unicode"
)

// Category tags a form with the broad purpose inferred from its prompt.
// The tag is derived once at creation and never recomputed.
type Category string

// Category values.
const (
	CategoryJob          Category = "job"
	CategorySurvey       Category = "survey"
	CategoryContact      Category = "contact"
	CategoryRegistration Category = "registration"
	CategoryFeedback     Category = "feedback"
	CategoryOrder        Category = "order"
	CategoryGeneral      Category = "general"
)

// String returns the string representation of the category.
func (c Category) String() string { return string(c) }

// IsValid reports whether the category is a known tag.
func (c Category) IsValid() bool {
	switch c {
	case CategoryJob, CategorySurvey, CategoryContact, CategoryRegistration,
		CategoryFeedback, CategoryOrder, CategoryGeneral:
		return true
	}
	return false
}

// ParseCategory maps a string onto a known Category, defaulting to general.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.IsValid() {
		return c
	}
	return CategoryGeneral
}

// categoryRule pairs a category with the prompt keywords that indicate it.
// Single-word keywords match whole tokens; phrases match as substrings.
// Rules are evaluated in slice order so score ties resolve deterministically.
type categoryRule struct {
	category Category
	keywords []string
}

var categoryRules = []categoryRule{
	{CategoryJob, []string{
		"job", "internship", "resume", "cv", "employment", "hiring",
		"candidate", "recruiting", "recruitment", "vacancy", "applicant",
		"cover letter", "job application", "apply for",
	}},
	{CategorySurvey, []string{
		"survey", "questionnaire", "poll", "census",
		"opinion", "satisfaction survey", "research study",
	}},
	{CategoryContact, []string{
		"contact", "inquiry", "enquiry", "support request",
		"get in touch", "reach out", "message us",
	}},
	{CategoryRegistration, []string{
		"registration", "register", "signup", "enroll", "enrollment",
		"rsvp", "attendee", "workshop", "webinar", "conference",
		"sign up", "event registration",
	}},
	{CategoryFeedback, []string{
		"feedback", "review", "rating", "testimonial", "complaint",
		"suggestion", "evaluation",
	}},
	{CategoryOrder, []string{
		"order", "purchase", "booking", "reservation", "checkout",
		"quote", "invoice", "payment", "subscription",
	}},
}

// DeriveCategory infers a Category from a natural-language prompt by keyword
// scoring. The highest-scoring rule wins; ties go to the earlier rule; no
// hits at all yield CategoryGeneral. Deterministic for identical prompts.
func DeriveCategory(prompt string) Category {
	normalized := normalizePrompt(prompt)
	if normalized == "" {
		return CategoryGeneral
	}
	tokens := tokenSet(normalized)

	best := CategoryGeneral
	bestScore := 0
	for _, rule := range categoryRules {
		score := 0
		for _, kw := range rule.keywords {
			if strings.ContainsRune(kw, ' ') {
				if strings.Contains(normalized, kw) {
					score++
				}
			} else if tokens[kw] {
				score++
			}
		}
		if score > bestScore {
			best = rule.category
			bestScore = score
		}
	}
	return best
}

// Categories returns all known category tags.
func Categories() []Category {
	result := make([]Category, 0, len(categoryRules)+1)
	for _, rule := range categoryRules {
		result = append(result, rule.category)
	}
	return append(result, CategoryGeneral)
}

// normalizePrompt lowercases the prompt and strips everything that is not a
// letter, digit, or space, so punctuation never blocks keyword matches.
func normalizePrompt(prompt string) string {
	var b strings.Builder
	b.Grow(len(prompt))
	for _, r := range strings.ToLower(prompt) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func tokenSet(normalized string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(normalized) {
		tokens[tok] = true
	}
	return tokens
}
