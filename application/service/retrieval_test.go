package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/form"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/retrieval"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// embeddedForm builds a persisted-looking form carrying the given vector.
func embeddedForm(owner uuid.UUID, id int64, title string, vector []float64, createdAt time.Time) form.Form {
	schema := form.NewSchema(title, "", []form.Field{
		form.NewField("name", "Name", form.KindText, true, nil),
	})
	return form.ReconstructForm(
		id, uuid.New(), owner, title, schema,
		form.Summarize(schema, form.CategoryGeneral), form.CategoryGeneral,
		vector, createdAt, createdAt,
	)
}

func TestRetrieval_RanksBySimilarity(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	source := &fakeCandidateSource{candidates: []form.Form{
		embeddedForm(owner, 1, "Close", []float64{0.6, 0.8, 0}, now),
		embeddedForm(owner, 2, "Exact", []float64{1, 0, 0}, now.Add(time.Hour)),
		embeddedForm(owner, 3, "Orthogonal", []float64{0, 1, 0}, now.Add(2*time.Hour)),
	}}
	svc := NewRetrieval(fakeEmbedder{vectors: [][]float64{{1, 0, 0}}}, source, testLogger())

	result := svc.Retrieve(ctx, owner, "query", 5)

	assert.Equal(t, retrieval.ModeRanked, result.Mode())
	require.Equal(t, 2, result.Len())

	matches := result.Matches()
	assert.Equal(t, "Exact", matches[0].Form().Title())
	assert.InDelta(t, 1.0, matches[0].Similarity(), 1e-9)
	assert.Equal(t, "Close", matches[1].Form().Title())
	assert.InDelta(t, 0.6, matches[1].Similarity(), 1e-9)

	// The orthogonal candidate scores 0, at or below the threshold, and is
	// dropped rather than padded in.
	assert.Equal(t, 0, source.recentCalls)
}

func TestRetrieval_TruncatesToK(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	source := &fakeCandidateSource{candidates: []form.Form{
		embeddedForm(owner, 1, "Close", []float64{0.6, 0.8, 0}, now),
		embeddedForm(owner, 2, "Exact", []float64{1, 0, 0}, now),
	}}
	svc := NewRetrieval(fakeEmbedder{vectors: [][]float64{{1, 0, 0}}}, source, testLogger())

	result := svc.Retrieve(ctx, owner, "query", 1)

	require.Equal(t, 1, result.Len())
	assert.Equal(t, "Exact", result.Matches()[0].Form().Title())
}

func TestRetrieval_NonPositiveKOrNilOwner(t *testing.T) {
	ctx := context.Background()
	svc := NewRetrieval(fakeEmbedder{vectors: [][]float64{{1, 0, 0}}}, &fakeCandidateSource{}, testLogger())

	for _, result := range []retrieval.Result{
		svc.Retrieve(ctx, uuid.New(), "query", 0),
		svc.Retrieve(ctx, uuid.New(), "query", -3),
		svc.Retrieve(ctx, uuid.Nil, "query", 5),
	} {
		assert.Equal(t, retrieval.ModeRanked, result.Mode())
		assert.Equal(t, 0, result.Len())
	}
}

func TestRetrieval_EmptyQueryVector(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	source := &fakeCandidateSource{candidates: []form.Form{
		embeddedForm(owner, 1, "Anything", []float64{1, 0, 0}, now),
	}}
	// A zero query vector scores 0 against everything.
	svc := NewRetrieval(fakeEmbedder{vectors: [][]float64{{0, 0, 0}}}, source, testLogger())

	result := svc.Retrieve(ctx, owner, "", 5)

	assert.Equal(t, retrieval.ModeRanked, result.Mode())
	assert.Equal(t, 0, result.Len())
}

func TestRetrieval_EmbedFailure_FallsBackToRecent(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	recent := []form.Form{
		embeddedForm(owner, 2, "Newest", nil, now.Add(time.Hour)),
		embeddedForm(owner, 1, "Older", nil, now),
	}
	source := &fakeCandidateSource{recent: recent}
	svc := NewRetrieval(fakeEmbedder{err: errors.New("model unavailable")}, source, testLogger())

	result := svc.Retrieve(ctx, owner, "query", 5)

	assert.True(t, result.IsFallback())
	assert.Equal(t, retrieval.ModeFallbackRecent, result.Mode())
	require.Equal(t, 2, result.Len())

	matches := result.Matches()
	assert.Equal(t, "Newest", matches[0].Form().Title())
	assert.Equal(t, 0.0, matches[0].Similarity())
	assert.Equal(t, 1, source.recentCalls)
}

func TestRetrieval_FetchFailure_FallsBackToRecent(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	source := &fakeCandidateSource{
		candidatesErr: errors.New("query timeout"),
		recent:        []form.Form{embeddedForm(owner, 1, "Recent", nil, now)},
	}
	svc := NewRetrieval(fakeEmbedder{vectors: [][]float64{{1, 0, 0}}}, source, testLogger())

	result := svc.Retrieve(ctx, owner, "query", 5)

	assert.True(t, result.IsFallback())
	assert.Equal(t, 1, result.Len())
}

func TestRetrieval_FallbackFetchFailure_ReturnsEmpty(t *testing.T) {
	ctx := context.Background()
	source := &fakeCandidateSource{recentErr: errors.New("still down")}
	svc := NewRetrieval(fakeEmbedder{err: errors.New("model unavailable")}, source, testLogger())

	// Even with every dependency failing, Retrieve never errors.
	result := svc.Retrieve(ctx, uuid.New(), "query", 5)

	assert.True(t, result.IsFallback())
	assert.Equal(t, 0, result.Len())
}

func TestRetrieval_NoCandidates_EmptyRanked(t *testing.T) {
	ctx := context.Background()
	source := &fakeCandidateSource{}
	svc := NewRetrieval(fakeEmbedder{vectors: [][]float64{{1, 0, 0}}}, source, testLogger())

	result := svc.Retrieve(ctx, uuid.New(), "query", 5)

	// An owner with no embedded forms is a healthy empty result, not a
	// fallback.
	assert.Equal(t, retrieval.ModeRanked, result.Mode())
	assert.Equal(t, 0, result.Len())
	assert.Equal(t, 0, source.recentCalls)
}

func TestRetrieveContext_AssemblesEntries(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	exact := embeddedForm(owner, 2, "Exact", []float64{1, 0, 0}, now)
	source := &fakeCandidateSource{candidates: []form.Form{
		embeddedForm(owner, 1, "Close", []float64{0.6, 0.8, 0}, now),
		exact,
	}}
	svc := NewRetrieval(fakeEmbedder{vectors: [][]float64{{1, 0, 0}}}, source, testLogger())

	entries, result := svc.RetrieveContext(ctx, owner, "query", 5, retrieval.WithSchemas(true))

	assert.Equal(t, retrieval.ModeRanked, result.Mode())
	require.Len(t, entries, 2)
	assert.Equal(t, exact.Summary(), entries[0].Summary())
	assert.NotEmpty(t, entries[0].SchemaJSON())
	assert.NotEmpty(t, entries[0].Descriptors())
}

func TestRetrieval_Builders(t *testing.T) {
	svc := NewRetrieval(fakeEmbedder{}, &fakeCandidateSource{}, testLogger()).
		WithThreshold(0.25).
		WithCandidateLimit(10)

	assert.Equal(t, 0.25, svc.Threshold())
}

func TestRetrieval_CandidateLimitCapsFetch(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Three candidates but a limit of 2: the third never reaches ranking.
	source := &fakeCandidateSource{candidates: []form.Form{
		embeddedForm(owner, 1, "First", []float64{1, 0, 0}, now),
		embeddedForm(owner, 2, "Second", []float64{0.9, 0.1, 0}, now),
		embeddedForm(owner, 3, "Third", []float64{1, 0, 0}, now),
	}}
	svc := NewRetrieval(fakeEmbedder{vectors: [][]float64{{1, 0, 0}}}, source, testLogger()).
		WithCandidateLimit(2)

	result := svc.Retrieve(ctx, owner, "query", 5)

	require.Equal(t, 2, result.Len())
	for _, m := range result.Matches() {
		assert.NotEqual(t, "Third", m.Form().Title())
	}
}
