package persistence

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/codeBunny2022/CentrAlignWebapp/internal/database"
	"gorm.io/gorm/clause"
)

// embeddingTable is the table holding form embedding vectors. Both dialect
// stores manage it themselves: the column type depends on the dialect and
// the configured vector dimension, so AutoMigrate leaves it alone.
const embeddingTable = "form_embeddings"

// ErrDimensionMismatch indicates embedding dimension doesn't match database.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Float64Slice is a custom type for JSON serialization of []float64 in SQLite.
// Its Scan also parses the pgvector text output, which is a valid JSON array.
type Float64Slice []float64

// Scan implements sql.Scanner.
func (f *Float64Slice) Scan(value any) error {
	if value == nil {
		*f = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Float64Slice", value)
	}

	return json.Unmarshal(data, f)
}

// Value implements driver.Valuer.
func (f Float64Slice) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

// SQLiteEmbeddingModel represents a form embedding in SQLite.
type SQLiteEmbeddingModel struct {
	ID        int64        `gorm:"column:id;primaryKey;autoIncrement"`
	FormID    int64        `gorm:"column:form_id;uniqueIndex"`
	Embedding Float64Slice `gorm:"column:embedding;type:json"`
}

// TableName returns the table name.
func (SQLiteEmbeddingModel) TableName() string {
	return embeddingTable
}

// PgEmbeddingModel represents a form embedding in a pgvector column.
type PgEmbeddingModel struct {
	ID        int64             `gorm:"column:id;primaryKey;autoIncrement"`
	FormID    int64             `gorm:"column:form_id;uniqueIndex"`
	Embedding database.PgVector `gorm:"column:embedding;type:vector"`
}

// TableName returns the table name.
func (PgEmbeddingModel) TableName() string {
	return embeddingTable
}

// SQLiteEmbeddingStore implements retrieval.EmbeddingStore for SQLite,
// storing vectors as JSON arrays.
type SQLiteEmbeddingStore struct {
	db     database.Database
	logger *slog.Logger
}

// NewSQLiteEmbeddingStore creates a new SQLiteEmbeddingStore, eagerly
// creating its table.
func NewSQLiteEmbeddingStore(db database.Database, logger *slog.Logger) (*SQLiteEmbeddingStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	createTableSQL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    form_id BIGINT NOT NULL UNIQUE,
    embedding JSON NOT NULL
)`, embeddingTable)

	if err := db.Session(context.Background()).Exec(createTableSQL).Error; err != nil {
		return nil, fmt.Errorf("create table %s: %w", embeddingTable, err)
	}

	return &SQLiteEmbeddingStore{db: db, logger: logger}, nil
}

// Save upserts the vector for a form.
func (s *SQLiteEmbeddingStore) Save(ctx context.Context, formID int64, vector []float64) error {
	cp := make(Float64Slice, len(vector))
	copy(cp, vector)

	model := SQLiteEmbeddingModel{FormID: formID, Embedding: cp}
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
func (s *SQLiteEmbeddingStore) Has(ctx context.Context, formID int64) (bool, error) {
	var count int64
	err := s.db.Session(ctx).Model(&SQLiteEmbeddingModel{}).
		Where("form_id = ?", formID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check embedding exists: %w", err)
	}
	return count > 0, nil
}

// Delete removes the vector for a form. Missing rows are not an error.
func (s *SQLiteEmbeddingStore) Delete(ctx context.Context, formID int64) error {
	err := s.db.Session(ctx).Where("form_id = ?", formID).Delete(&SQLiteEmbeddingModel{}).Error
	if err != nil {
		return fmt.Errorf("delete embedding: %w", err)
	}
	return nil
}
