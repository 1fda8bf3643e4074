package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/form"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/retrieval"
)

// Indexer turns forms into the descriptive text and embedding vectors that
// drive similarity retrieval.
type Indexer struct {
	embedder   retrieval.Embedder
	embeddings retrieval.EmbeddingStore
	logger     *slog.Logger
}

// NewIndexer creates a new Indexer service.
func NewIndexer(embedder retrieval.Embedder, embeddings retrieval.EmbeddingStore, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		embedder:   embedder,
		embeddings: embeddings,
		logger:     logger,
	}
}

// VectorizeAndSummarize builds the descriptive text for a piece of source
// text and the embedding of that text. Schema JSON gets the structured
// title-and-fields synopsis; anything else is cleaned and truncated. The
// summary is valid even when the embed call fails, so callers can persist
// it and fill the vector in later.
func (s *Indexer) VectorizeAndSummarize(ctx context.Context, sourceText string) ([]float64, string, error) {
	summary := summarizeSource(sourceText)

	vectors, err := s.embedder.Embed(ctx, []string{summary})
	if err != nil {
		return nil, summary, fmt.Errorf("embed summary: %w", err)
	}
	if len(vectors) == 0 {
		return nil, summary, fmt.Errorf("embedder returned no vector")
	}
	return vectors[0], summary, nil
}

// EmbedForm computes the form's summary-based embedding and saves it,
// replacing any existing row.
func (s *Indexer) EmbedForm(ctx context.Context, f form.Form) error {
	if f.ID() == 0 {
		return fmt.Errorf("form %s has no persistence key", f.UUID())
	}

	vectors, err := s.embedder.Embed(ctx, []string{f.Summary()})
	if err != nil {
		return fmt.Errorf("embed form %s: %w", f.UUID(), err)
	}
	if len(vectors) == 0 {
		return fmt.Errorf("embed form %s: no vector returned", f.UUID())
	}

	if err := s.embeddings.Save(ctx, f.ID(), vectors[0]); err != nil {
		return fmt.Errorf("save embedding for form %s: %w", f.UUID(), err)
	}

	s.logger.Debug("form embedded",
		slog.String("form_uuid", f.UUID().String()),
		slog.Int("dimension", len(vectors[0])),
	)
	return nil
}

// EnsureEmbedding writes the form's embedding row if it is missing. Forms
// that already have one are left untouched.
func (s *Indexer) EnsureEmbedding(ctx context.Context, f form.Form) error {
	if f.ID() == 0 {
		return fmt.Errorf("form %s has no persistence key", f.UUID())
	}

	has, err := s.embeddings.Has(ctx, f.ID())
	if err != nil {
		return fmt.Errorf("check embedding for form %s: %w", f.UUID(), err)
	}
	if has {
		return nil
	}
	return s.EmbedForm(ctx, f)
}

// summarizeSource picks the summary strategy for a piece of source text.
// Text that parses as a non-empty schema gets the structured synopsis;
// everything else is treated as free text.
func summarizeSource(sourceText string) string {
	schema, err := form.ParseSchema([]byte(sourceText))
	if err == nil && (schema.Title() != "" || !schema.IsEmpty()) {
		return form.Summarize(schema, form.DeriveCategory(schema.Title()))
	}
	return form.SummarizeText(sourceText)
}
