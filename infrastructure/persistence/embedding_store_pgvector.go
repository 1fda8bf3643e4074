package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/codeBunny2022/CentrAlignWebapp/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQL specific to pgvector (extension, index, catalog checks).
const (
	pgvCreateExtension = `CREATE EXTENSION IF NOT EXISTS vector`

	pgvCreateIndexTemplate = `
CREATE INDEX IF NOT EXISTS %s_idx
ON %s
USING ivfflat (embedding vector_cosine_ops)
WITH (lists = 100)`

	pgvCheckDimensionTemplate = `
SELECT a.atttypmod as dimension
FROM pg_attribute a
JOIN pg_class c ON a.attrelid = c.oid
WHERE c.relname = '%s'
AND a.attname = 'embedding'`
)

// ErrPgvectorInitializationFailed indicates pgvector initialization failed.
var ErrPgvectorInitializationFailed = errors.New("failed to initialize pgvector store")

// PgvectorEmbeddingStore implements retrieval.EmbeddingStore using the
// PostgreSQL pgvector extension.
type PgvectorEmbeddingStore struct {
	db     database.Database
	logger *slog.Logger
}

// NewPgvectorEmbeddingStore creates a new PgvectorEmbeddingStore, eagerly
// initializing the extension, table, index, and verifying the dimension.
func NewPgvectorEmbeddingStore(ctx context.Context, db database.Database, dimension int, logger *slog.Logger) (*PgvectorEmbeddingStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	rawDB := db.Session(ctx)

	if err := rawDB.Exec(pgvCreateExtension).Error; err != nil {
		return nil, errors.Join(ErrPgvectorInitializationFailed, fmt.Errorf("create extension: %w", err))
	}

	// Dynamic dimension requires raw SQL.
	createTableSQL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    form_id BIGINT NOT NULL UNIQUE,
    embedding VECTOR(%d) NOT NULL
)`, embeddingTable, dimension)
	if err := rawDB.Exec(createTableSQL).Error; err != nil {
		return nil, errors.Join(ErrPgvectorInitializationFailed, fmt.Errorf("create table: %w", err))
	}

	indexSQL := fmt.Sprintf(pgvCreateIndexTemplate, embeddingTable, embeddingTable)
	if err := rawDB.Exec(indexSQL).Error; err != nil {
		logger.Warn("failed to create index (may already exist)", "error", err)
	}

	var dbDimension int
	checkDimensionSQL := fmt.Sprintf(pgvCheckDimensionTemplate, embeddingTable)
	result := rawDB.Raw(checkDimensionSQL).Scan(&dbDimension)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, errors.Join(ErrPgvectorInitializationFailed, fmt.Errorf("check dimension: %w", result.Error))
	}

	if result.RowsAffected > 0 && dbDimension != dimension {
		return nil, fmt.Errorf("%w: database has %d, provider has %d", ErrDimensionMismatch, dbDimension, dimension)
	}

	return &PgvectorEmbeddingStore{db: db, logger: logger}, nil
}

// Save upserts the vector for a form.
func (s *PgvectorEmbeddingStore) Save(ctx context.Context, formID int64, vector []float64) error {
	model := PgEmbeddingModel{FormID: formID, Embedding: database.NewPgVector(vector)}
	err := s.db.Session(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "form_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"embedding"}),
	}).Create(&model).Error
	if err != nil {
		return fmt.Errorf("save embedding: %w", err)
	}
	return nil
}

// Has reports whether a vector is stored for the form.
func (s *PgvectorEmbeddingStore) Has(ctx context.Context, formID int64) (bool, error) {
	var count int64
	err := s.db.Session(ctx).Model(&PgEmbeddingModel{}).
		Where("form_id = ?", formID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check embedding exists: %w", err)
	}
	return count > 0, nil
}

// Delete removes the vector for a form. Missing rows are not an error.
func (s *PgvectorEmbeddingStore) Delete(ctx context.Context, formID int64) error {
	err := s.db.Session(ctx).Where("form_id = ?", formID).Delete(&PgEmbeddingModel{}).Error
	if err != nil {
		return fmt.Errorf("delete embedding: %w", err)
	}
	return nil
}
