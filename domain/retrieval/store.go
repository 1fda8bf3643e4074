package retrieval

import (
	"context"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/form"
	"github.com/google/uuid"
)

// CandidateSource supplies the forms a retrieval call ranks.
type CandidateSource interface {
	// FetchCandidates returns up to limit of the owner's most recent forms
	// that have an embedding, newest first, with the embedding populated.
	// Forms without an embedding row are not candidates.
	FetchCandidates(ctx context.Context, ownerID uuid.UUID, limit int) ([]form.Form, error)

	// RecentForms returns up to limit of the owner's most recent forms
	// regardless of embedding state. Serves the fallback path.
	RecentForms(ctx context.Context, ownerID uuid.UUID, limit int) ([]form.Form, error)
}

// EmbeddingStore defines persistence operations for form embedding vectors.
type EmbeddingStore interface {
	// Save persists the embedding for a form, replacing any existing row.
	Save(ctx context.Context, formID int64, vector []float64) error

	// Has reports whether the form has an embedding row.
	Has(ctx context.Context, formID int64) (bool, error)

	// Delete removes the form's embedding row if present.
	Delete(ctx context.Context, formID int64) error
}
