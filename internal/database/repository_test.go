package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	id    int64
	title string
}

type noteModel struct {
	ID        int64 `gorm:"primaryKey"`
	Title     string
	CreatedAt time.Time
}

func (noteModel) TableName() string { return "notes" }

type noteMapper struct{}

func (noteMapper) ToDomain(m noteModel) note { return note{id: m.ID, title: m.Title} }
func (noteMapper) ToModel(n note) noteModel  { return noteModel{ID: n.id, Title: n.title} }

func newNoteRepository(t *testing.T) (Repository[note, noteModel], Database) {
	t.Helper()
	db := newTestDatabase(t)
	require.NoError(t, db.Session(context.Background()).AutoMigrate(&noteModel{}))
	return NewRepository[note, noteModel](db, noteMapper{}, "note"), db
}

func seedNotes(t *testing.T, db Database, titles ...string) {
	t.Helper()
	ctx := context.Background()
	for _, title := range titles {
		require.NoError(t, db.Session(ctx).Create(&noteModel{Title: title}).Error)
	}
}

func TestRepository_Find(t *testing.T) {
	repo, db := newNoteRepository(t)
	seedNotes(t, db, "first", "second", "third")

	notes, err := repo.Find(context.Background(), store.WithOrderAsc("id"))
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, "first", notes[0].title)
	assert.Equal(t, "third", notes[2].title)
}

func TestRepository_FindWithOptions(t *testing.T) {
	repo, db := newNoteRepository(t)
	seedNotes(t, db, "alpha", "beta", "alpha")

	notes, err := repo.Find(context.Background(),
		store.WithCondition("title", "alpha"),
		store.WithOrderDesc("id"),
		store.WithLimit(1),
	)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, int64(3), notes[0].id)
}

func TestRepository_FindOne(t *testing.T) {
	repo, db := newNoteRepository(t)
	seedNotes(t, db, "only")

	n, err := repo.FindOne(context.Background(), store.WithCondition("title", "only"))
	require.NoError(t, err)
	assert.Equal(t, "only", n.title)
}

func TestRepository_FindOne_NotFound(t *testing.T) {
	repo, _ := newNoteRepository(t)

	_, err := repo.FindOne(context.Background(), store.WithID(99))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRepository_Exists(t *testing.T) {
	repo, db := newNoteRepository(t)
	seedNotes(t, db, "present")

	exists, err := repo.Exists(context.Background(), store.WithCondition("title", "present"))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(context.Background(), store.WithCondition("title", "absent"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_DeleteBy(t *testing.T) {
	repo, db := newNoteRepository(t)
	seedNotes(t, db, "keep", "drop", "drop")

	require.NoError(t, repo.DeleteBy(context.Background(), store.WithCondition("title", "drop")))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_Count(t *testing.T) {
	repo, db := newNoteRepository(t)
	seedNotes(t, db, "a", "b", "c")

	count, err := repo.Count(context.Background(), store.WithCondition("title", "b"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_ForTable(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	require.NoError(t, db.Session(ctx).Table("archived_notes").AutoMigrate(&noteModel{}))

	repo := NewRepositoryForTable[note, noteModel](db, noteMapper{}, "archived note", "archived_notes")
	assert.Equal(t, "archived_notes", repo.Table())

	require.NoError(t, repo.DB(ctx).Create(&noteModel{Title: "old"}).Error)

	notes, err := repo.Find(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "old", notes[0].title)
}
