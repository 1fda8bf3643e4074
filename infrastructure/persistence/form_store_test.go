package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/form"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/store"
	"github.com/codeBunny2022/CentrAlignWebapp/internal/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storedForm saves a form with a fixed creation time so ordering assertions
// do not depend on wall-clock resolution.
func storedForm(t *testing.T, s FormStore, ownerID uuid.UUID, title string, createdAt time.Time) form.Form {
	t.Helper()

	schema := form.NewSchema(title, "", []form.Field{
		form.NewField("email", "Email", form.KindEmail, true, nil),
	})
	f := form.ReconstructForm(
		0, uuid.New(), ownerID,
		"prompt for "+title,
		schema,
		title+" summary",
		form.CategoryGeneral,
		nil,
		createdAt, createdAt,
	)

	saved, err := s.Save(context.Background(), f)
	require.NoError(t, err)
	require.NotZero(t, saved.ID())
	return saved
}

func formUUIDs(forms []form.Form) []uuid.UUID {
	ids := make([]uuid.UUID, len(forms))
	for i, f := range forms {
		ids[i] = f.UUID()
	}
	return ids
}

func TestFormStore_SaveAndGet(t *testing.T) {
	db := newTestDB(t)
	s := NewFormStore(db)
	ctx := context.Background()
	ownerID := uuid.New()

	saved := storedForm(t, s, ownerID, "Contact Us", time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC))

	got, err := s.Get(ctx, ownerID, saved.UUID())
	require.NoError(t, err)
	assert.Equal(t, saved.ID(), got.ID())
	assert.Equal(t, "Contact Us", got.Title())
	assert.Equal(t, "prompt for Contact Us", got.Prompt())
	assert.Equal(t, form.CategoryGeneral, got.Category())
	require.Len(t, got.Schema().Fields(), 1)
	assert.Equal(t, "email", got.Schema().Fields()[0].Key())
}

func TestFormStore_GetScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	s := NewFormStore(db)
	ctx := context.Background()

	saved := storedForm(t, s, uuid.New(), "Contact Us", time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC))

	// A different owner must not be able to fetch the form.
	_, err := s.Get(ctx, uuid.New(), saved.UUID())
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestFormStore_SaveUpdatesExisting(t *testing.T) {
	db := newTestDB(t)
	s := NewFormStore(db)
	ctx := context.Background()
	ownerID := uuid.New()

	saved := storedForm(t, s, ownerID, "Contact Us", time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC))

	updated := form.ReconstructForm(
		saved.ID(), saved.UUID(), ownerID,
		"revised prompt",
		saved.Schema(),
		saved.Summary(),
		saved.Category(),
		nil,
		saved.CreatedAt(), time.Date(2026, 1, 11, 9, 0, 0, 0, time.UTC),
	)
	_, err := s.Save(ctx, updated)
	require.NoError(t, err)

	count, err := s.Count(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := s.Get(ctx, ownerID, saved.UUID())
	require.NoError(t, err)
	assert.Equal(t, "revised prompt", got.Prompt())
}

func TestFormStore_ListAndCount(t *testing.T) {
	db := newTestDB(t)
	s := NewFormStore(db)
	ctx := context.Background()
	owner1 := uuid.New()
	owner2 := uuid.New()
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	old := storedForm(t, s, owner1, "Old Survey", base)
	recent := storedForm(t, s, owner1, "Recent Survey", base.Add(time.Hour))
	storedForm(t, s, owner2, "Other Owner", base)

	forms, err := s.List(ctx, owner1, store.WithOrderDesc("created_at"))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{recent.UUID(), old.UUID()}, formUUIDs(forms))

	limited, err := s.List(ctx, owner1, store.WithOrderDesc("created_at"), store.WithLimit(1))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{recent.UUID()}, formUUIDs(limited))

	count, err := s.Count(ctx, owner1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestFormStore_DeleteRemovesFormAndEmbedding(t *testing.T) {
	db := newTestDB(t)
	s := NewFormStore(db)
	embeddings, err := NewSQLiteEmbeddingStore(db, nil)
	require.NoError(t, err)
	ctx := context.Background()
	ownerID := uuid.New()

	saved := storedForm(t, s, ownerID, "Contact Us", time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, embeddings.Save(ctx, saved.ID(), []float64{0.5, 0.5}))

	require.NoError(t, s.Delete(ctx, saved))

	_, err = s.Get(ctx, ownerID, saved.UUID())
	assert.ErrorIs(t, err, database.ErrNotFound)

	has, err := embeddings.Has(ctx, saved.ID())
	require.NoError(t, err)
	assert.False(t, has)
}

func TestFormStore_DeleteUnsavedForm(t *testing.T) {
	db := newTestDB(t)
	s := NewFormStore(db)

	f := form.NewForm(uuid.New(), "never saved", form.Schema{})
	err := s.Delete(context.Background(), f)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestFormStore_MissingEmbeddings(t *testing.T) {
	db := newTestDB(t)
	s := NewFormStore(db)
	embeddings, err := NewSQLiteEmbeddingStore(db, nil)
	require.NoError(t, err)
	ctx := context.Background()
	ownerID := uuid.New()
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	oldest := storedForm(t, s, ownerID, "Oldest", base)
	embedded := storedForm(t, s, ownerID, "Embedded", base.Add(time.Hour))
	newest := storedForm(t, s, ownerID, "Newest", base.Add(2*time.Hour))
	require.NoError(t, embeddings.Save(ctx, embedded.ID(), []float64{1, 0}))

	missing, err := s.MissingEmbeddings(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{oldest.UUID(), newest.UUID()}, formUUIDs(missing))

	capped, err := s.MissingEmbeddings(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{oldest.UUID()}, formUUIDs(capped))

	none, err := s.MissingEmbeddings(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFormStore_FetchCandidates(t *testing.T) {
	db := newTestDB(t)
	s := NewFormStore(db)
	embeddings, err := NewSQLiteEmbeddingStore(db, nil)
	require.NoError(t, err)
	ctx := context.Background()
	owner1 := uuid.New()
	owner2 := uuid.New()
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	oldEmbedded := storedForm(t, s, owner1, "Old", base)
	storedForm(t, s, owner1, "No Vector", base.Add(time.Hour))
	newEmbedded := storedForm(t, s, owner1, "New", base.Add(2*time.Hour))
	otherOwner := storedForm(t, s, owner2, "Other", base.Add(3*time.Hour))

	require.NoError(t, embeddings.Save(ctx, oldEmbedded.ID(), []float64{0.1, 0.2}))
	require.NoError(t, embeddings.Save(ctx, newEmbedded.ID(), []float64{0.3, 0.4}))
	require.NoError(t, embeddings.Save(ctx, otherOwner.ID(), []float64{0.5, 0.6}))

	candidates, err := s.FetchCandidates(ctx, owner1, 10)
	require.NoError(t, err)

	// Only owner1's embedded forms, newest first, vectors attached.
	require.Equal(t, []uuid.UUID{newEmbedded.UUID(), oldEmbedded.UUID()}, formUUIDs(candidates))
	assert.True(t, candidates[0].HasEmbedding())
	assert.Equal(t, []float64{0.3, 0.4}, candidates[0].Embedding())
	assert.Equal(t, []float64{0.1, 0.2}, candidates[1].Embedding())

	capped, err := s.FetchCandidates(ctx, owner1, 1)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{newEmbedded.UUID()}, formUUIDs(capped))

	none, err := s.FetchCandidates(ctx, owner1, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFormStore_RecentForms(t *testing.T) {
	db := newTestDB(t)
	s := NewFormStore(db)
	ctx := context.Background()
	ownerID := uuid.New()
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	old := storedForm(t, s, ownerID, "Old", base)
	recent := storedForm(t, s, ownerID, "Recent", base.Add(time.Hour))
	storedForm(t, s, uuid.New(), "Other Owner", base.Add(2*time.Hour))

	forms, err := s.RecentForms(ctx, ownerID, 10)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{recent.UUID(), old.UUID()}, formUUIDs(forms))

	capped, err := s.RecentForms(ctx, ownerID, 1)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{recent.UUID()}, formUUIDs(capped))
}
