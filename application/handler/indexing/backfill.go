package indexing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codeBunny2022/CentrAlignWebapp/application/handler"
	"github.com/codeBunny2022/CentrAlignWebapp/application/service"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/form"
	"golang.org/x/sync/errgroup"
)

const (
	// defaultBackfillLimit caps how many forms one backfill task touches.
	defaultBackfillLimit = 256

	// backfillConcurrency bounds concurrent embed calls during a backfill.
	backfillConcurrency = 4
)

// BackfillEmbeddings writes embedding rows for stored forms that have none,
// oldest first. Retrieval ranks only embedded forms, so owners with history
// from before embedding support get their older forms back into the ranked
// pool once a backfill runs.
type BackfillEmbeddings struct {
	forms   form.FormStore
	indexer *service.Indexer
	logger  *slog.Logger
}

// NewBackfillEmbeddings creates a new BackfillEmbeddings handler.
func NewBackfillEmbeddings(forms form.FormStore, indexer *service.Indexer, logger *slog.Logger) (*BackfillEmbeddings, error) {
	if forms == nil {
		return nil, fmt.Errorf("NewBackfillEmbeddings: nil forms")
	}
	if indexer == nil {
		return nil, fmt.Errorf("NewBackfillEmbeddings: nil indexer")
	}
	return &BackfillEmbeddings{
		forms:   forms,
		indexer: indexer,
		logger:  logger,
	}, nil
}

// Execute processes the centralign.index.backfill task. The payload may
// carry an optional "limit" overriding the default batch cap.
func (h *BackfillEmbeddings) Execute(ctx context.Context, payload map[string]any) error {
	limit := defaultBackfillLimit
	if _, ok := payload["limit"]; ok {
		v, err := handler.ExtractInt64(payload, "limit")
		if err != nil {
			return err
		}
		if v > 0 {
			limit = int(v)
		}
	}

	missing, err := h.forms.MissingEmbeddings(ctx, limit)
	if err != nil {
		h.logger.Error("failed to list forms missing embeddings", slog.String("error", err.Error()))
		return err
	}

	if len(missing) == 0 {
		h.logger.Debug("no forms missing embeddings")
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(backfillConcurrency)

	for _, f := range missing {
		g.Go(func() error {
			if err := h.indexer.EnsureEmbedding(gctx, f); err != nil {
				return fmt.Errorf("backfill form %s: %w", f.UUID(), err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// A later backfill picks up whatever this run left unembedded.
		h.logger.Error("backfill incomplete", slog.String("error", err.Error()))
		return err
	}

	h.logger.Info("embeddings backfilled", slog.Int("forms", len(missing)))
	return nil
}
