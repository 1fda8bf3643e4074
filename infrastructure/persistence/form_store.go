package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/form"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/store"
	"github.com/codeBunny2022/CentrAlignWebapp/internal/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FormStore implements form.FormStore using GORM. It also implements
// retrieval.CandidateSource: candidate reads join the form_embeddings table
// so ranking sees each form with its stored vector attached.
type FormStore struct {
	db     database.Database
	mapper FormMapper
}

// NewFormStore creates a new FormStore.
func NewFormStore(db database.Database) FormStore {
	return FormStore{
		db:     db,
		mapper: FormMapper{},
	}
}

// Save creates or updates a form. The returned form keeps whatever embedding
// the input carried; the vector itself is persisted by the embedding store.
func (s FormStore) Save(ctx context.Context, f form.Form) (form.Form, error) {
	model, err := s.mapper.ToModel(f)
	if err != nil {
		return form.Form{}, fmt.Errorf("save form: %w", err)
	}

	var result *gorm.DB
	if f.ID() == 0 {
		result = s.db.Session(ctx).Create(&model)
	} else {
		result = s.db.Session(ctx).Save(&model)
	}
	if result.Error != nil {
		return form.Form{}, fmt.Errorf("save form: %w", result.Error)
	}

	saved, err := s.mapper.ToDomain(model)
	if err != nil {
		return form.Form{}, fmt.Errorf("save form: %w", err)
	}
	return saved.WithEmbedding(f.Embedding()), nil
}

// Get returns a form by its public identifier, scoped to the owner.
func (s FormStore) Get(ctx context.Context, ownerID, formUUID uuid.UUID) (form.Form, error) {
	var model FormModel
	result := s.db.Session(ctx).
		Where("owner_id = ? AND uuid = ?", ownerID.String(), formUUID.String()).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return form.Form{}, fmt.Errorf("%w: form %s", database.ErrNotFound, formUUID)
		}
		return form.Form{}, fmt.Errorf("get form: %w", result.Error)
	}
	return s.mapper.ToDomain(model)
}

// List returns the owner's forms matching the given options.
func (s FormStore) List(ctx context.Context, ownerID uuid.UUID, options ...store.Option) ([]form.Form, error) {
	var models []FormModel
	db := s.db.Session(ctx).Model(&FormModel{}).Where("owner_id = ?", ownerID.String())
	db = database.ApplyOptions(db, options...)
	if result := db.Find(&models); result.Error != nil {
		return nil, fmt.Errorf("list forms: %w", result.Error)
	}
	return s.toDomainAll(models, "list forms")
}

// Count returns the number of forms the owner has.
func (s FormStore) Count(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	result := s.db.Session(ctx).Model(&FormModel{}).
		Where("owner_id = ?", ownerID.String()).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("count forms: %w", result.Error)
	}
	return count, nil
}

// Delete hard-deletes a form together with its embedding row.
func (s FormStore) Delete(ctx context.Context, f form.Form) error {
	if f.ID() == 0 {
		return fmt.Errorf("delete form: %w", database.ErrNotFound)
	}

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM "+embeddingTable+" WHERE form_id = ?", f.ID()).Error; err != nil {
			return err
		}
		return tx.Delete(&FormModel{}, f.ID()).Error
	})
	if err != nil {
		return fmt.Errorf("delete form: %w", err)
	}
	return nil
}

// MissingEmbeddings returns forms that have no embedding row yet, oldest
// first, capped at limit. The backfill handler drains this set.
func (s FormStore) MissingEmbeddings(ctx context.Context, limit int) ([]form.Form, error) {
	if limit <= 0 {
		return []form.Form{}, nil
	}

	var models []FormModel
	result := s.db.Session(ctx).Model(&FormModel{}).
		Joins("LEFT JOIN " + embeddingTable + " ON " + embeddingTable + ".form_id = forms.id").
		Where(embeddingTable + ".form_id IS NULL").
		Order("forms.created_at ASC, forms.id ASC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("find forms missing embeddings: %w", result.Error)
	}
	return s.toDomainAll(models, "find forms missing embeddings")
}

// candidateRow joins a form row with its stored embedding. Float64Slice
// parses both the SQLite JSON column and the pgvector text format, so the
// same scan path serves both dialects.
type candidateRow struct {
	FormModel
	Embedding Float64Slice `gorm:"column:embedding"`
}

// FetchCandidates returns the owner's most recent forms that have stored
// embeddings, newest first, with vectors attached.
func (s FormStore) FetchCandidates(ctx context.Context, ownerID uuid.UUID, limit int) ([]form.Form, error) {
	if limit <= 0 {
		return []form.Form{}, nil
	}

	var rows []candidateRow
	result := s.db.Session(ctx).Table("forms").
		Select("forms.*, "+embeddingTable+".embedding AS embedding").
		Joins("INNER JOIN "+embeddingTable+" ON "+embeddingTable+".form_id = forms.id").
		Where("forms.owner_id = ?", ownerID.String()).
		Order("forms.created_at DESC, forms.id DESC").
		Limit(limit).
		Scan(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("fetch candidates: %w", result.Error)
	}

	forms := make([]form.Form, len(rows))
	for i, row := range rows {
		f, err := s.mapper.ToDomain(row.FormModel)
		if err != nil {
			return nil, fmt.Errorf("fetch candidates: %w", err)
		}
		forms[i] = f.WithEmbedding(row.Embedding)
	}
	return forms, nil
}

// RecentForms returns the owner's most recent forms regardless of embedding
// state. This backs the fallback path when ranking cannot run.
func (s FormStore) RecentForms(ctx context.Context, ownerID uuid.UUID, limit int) ([]form.Form, error) {
	if limit <= 0 {
		return []form.Form{}, nil
	}

	var models []FormModel
	result := s.db.Session(ctx).
		Where("owner_id = ?", ownerID.String()).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("recent forms: %w", result.Error)
	}
	return s.toDomainAll(models, "recent forms")
}

func (s FormStore) toDomainAll(models []FormModel, label string) ([]form.Form, error) {
	forms := make([]form.Form, len(models))
	for i, model := range models {
		f, err := s.mapper.ToDomain(model)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		forms[i] = f
	}
	return forms, nil
}
