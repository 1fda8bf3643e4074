// Package indexing provides handlers for form embedding operations.
package indexing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/codeBunny2022/CentrAlignWebapp/application/handler"
	"github.com/codeBunny2022/CentrAlignWebapp/application/service"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/form"
	"github.com/codeBunny2022/CentrAlignWebapp/internal/database"
)

// EmbedForm computes the embedding for a single form whose vector was
// skipped or lost at creation time.
type EmbedForm struct {
	forms   form.FormStore
	indexer *service.Indexer
	logger  *slog.Logger
}

// NewEmbedForm creates a new EmbedForm handler.
func NewEmbedForm(forms form.FormStore, indexer *service.Indexer, logger *slog.Logger) (*EmbedForm, error) {
	if forms == nil {
		return nil, fmt.Errorf("NewEmbedForm: nil forms")
	}
	if indexer == nil {
		return nil, fmt.Errorf("NewEmbedForm: nil indexer")
	}
	return &EmbedForm{
		forms:   forms,
		indexer: indexer,
		logger:  logger,
	}, nil
}

// Execute processes the centralign.form.embed task.
func (h *EmbedForm) Execute(ctx context.Context, payload map[string]any) error {
	p, err := handler.ExtractFormPayload(payload)
	if err != nil {
		return err
	}

	f, err := h.forms.Get(ctx, p.OwnerID(), p.FormUUID())
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// The form was deleted between enqueue and execution. Nothing
			// to embed, nothing to retry.
			h.logger.Debug("form gone before embedding",
				slog.String("form_uuid", p.FormUUID().String()),
			)
			return nil
		}
		h.logger.Error("failed to load form for embedding", slog.String("error", err.Error()))
		return err
	}

	if err := h.indexer.EmbedForm(ctx, f); err != nil {
		h.logger.Error("failed to embed form",
			slog.String("form_uuid", f.UUID().String()),
			slog.String("error", err.Error()),
		)
		return err
	}

	h.logger.Info("form embedded",
		slog.String("form_uuid", f.UUID().String()),
		slog.String("category", f.Category().String()),
	)

	return nil
}
