package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/form"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/store"
	"github.com/google/uuid"
)

// FormListParams configures a form listing.
type FormListParams struct {
	Limit    int
	Offset   int
	Category *form.Category
}

// Forms provides read and lifecycle operations over a user's forms.
// Creation lives on Generator; this service covers everything after.
type Forms struct {
	store  form.FormStore
	queue  *Queue
	logger *slog.Logger
}

// NewForms creates a new Forms service.
func NewForms(formStore form.FormStore, queue *Queue, logger *slog.Logger) *Forms {
	if logger == nil {
		logger = slog.Default()
	}
	return &Forms{
		store:  formStore,
		queue:  queue,
		logger: logger,
	}
}

// Get returns one of the owner's forms by its public identifier.
func (s *Forms) Get(ctx context.Context, ownerID, formUUID uuid.UUID) (form.Form, error) {
	return s.store.Get(ctx, ownerID, formUUID)
}

// List returns the owner's forms, newest first.
func (s *Forms) List(ctx context.Context, ownerID uuid.UUID, params FormListParams) ([]form.Form, error) {
	options := []store.Option{store.WithRecentFirst()}
	if params.Category != nil {
		options = append(options, store.WithCategory(params.Category.String()))
	}
	if params.Limit > 0 {
		options = append(options, store.WithPagination(params.Limit, params.Offset)...)
	}
	return s.store.List(ctx, ownerID, options...)
}

// Count returns how many forms the owner has.
func (s *Forms) Count(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return s.store.Count(ctx, ownerID)
}

// Delete removes one of the owner's forms together with its embedding row
// and any queued tasks that reference it.
func (s *Forms) Delete(ctx context.Context, ownerID, formUUID uuid.UUID) error {
	f, err := s.store.Get(ctx, ownerID, formUUID)
	if err != nil {
		return fmt.Errorf("get form: %w", err)
	}

	// Drain before deleting so the worker cannot claim a task for a form
	// that is about to vanish. A drain failure is not fatal: the embed
	// handler tolerates missing forms.
	removed, err := s.queue.DrainForForm(ctx, formUUID)
	if err != nil {
		s.logger.Warn("drain queued tasks failed",
			slog.String("form_uuid", formUUID.String()),
			slog.String("error", err.Error()),
		)
	} else if removed > 0 {
		s.logger.Debug("drained queued tasks",
			slog.String("form_uuid", formUUID.String()),
			slog.Int("removed", removed),
		)
	}

	if err := s.store.Delete(ctx, f); err != nil {
		return fmt.Errorf("delete form: %w", err)
	}

	s.logger.Info("form deleted",
		slog.String("form_uuid", formUUID.String()),
		slog.String("owner_id", ownerID.String()),
	)
	return nil
}
