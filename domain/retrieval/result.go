package retrieval

import "github.com/codeBunny2022/CentrAlignWebapp/domain/form"

// Mode tags how a Result was produced.
type Mode string

// Mode values.
const (
	// ModeRanked means entries were scored and ordered by similarity.
	ModeRanked Mode = "ranked"
	// ModeFallbackRecent means scoring was unavailable and entries are
	// the owner's most recent forms instead.
	ModeFallbackRecent Mode = "fallback_recent"
)

// Match pairs a form with its similarity to the query.
type Match struct {
	form       form.Form
	similarity float64
}

// NewMatch creates a new Match.
func NewMatch(f form.Form, similarity float64) Match {
	return Match{form: f, similarity: similarity}
}

// Form returns the matched form.
func (m Match) Form() form.Form { return m.form }

// Similarity returns the similarity score. Zero in fallback results.
func (m Match) Similarity() float64 { return m.similarity }

// Result is the outcome of a retrieval call. The mode says whether the
// entries are similarity-ranked or a recency fallback, so callers never
// mistake one for the other.
type Result struct {
	mode    Mode
	matches []Match
}

// NewRankedResult creates a similarity-ranked Result.
func NewRankedResult(matches []Match) Result {
	return Result{mode: ModeRanked, matches: copyMatches(matches)}
}

// NewFallbackResult creates a recency-fallback Result from forms, newest
// first. Every similarity is zero.
func NewFallbackResult(forms []form.Form) Result {
	matches := make([]Match, len(forms))
	for i, f := range forms {
		matches[i] = NewMatch(f, 0)
	}
	return Result{mode: ModeFallbackRecent, matches: matches}
}

// Mode returns how the result was produced.
func (r Result) Mode() Mode { return r.mode }

// IsFallback reports whether the result is a recency fallback.
func (r Result) IsFallback() bool { return r.mode == ModeFallbackRecent }

// Matches returns the entries in rank order (copy).
func (r Result) Matches() []Match { return copyMatches(r.matches) }

// Forms returns the matched forms in rank order.
func (r Result) Forms() []form.Form {
	forms := make([]form.Form, len(r.matches))
	for i, m := range r.matches {
		forms[i] = m.form
	}
	return forms
}

// Len returns the number of entries.
func (r Result) Len() int { return len(r.matches) }

func copyMatches(matches []Match) []Match {
	out := make([]Match, len(matches))
	copy(out, matches)
	return out
}
