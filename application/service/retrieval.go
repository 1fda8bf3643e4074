// Package service provides application layer services that orchestrate domain operations.
package service

import (
	"context"
	"log/slog"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/retrieval"
	"github.com/codeBunny2022/CentrAlignWebapp/internal/config"
	"github.com/google/uuid"
)

// Retrieval finds the prior forms most relevant to a query and renders them
// as generation context. Its public contract has no failed outcome: any
// dependency error degrades to the owner's most recent forms, tagged as a
// fallback in the result.
type Retrieval struct {
	embedder   retrieval.Embedder
	candidates retrieval.CandidateSource
	threshold  float64
	limit      int
	logger     *slog.Logger
}

// NewRetrieval creates a new Retrieval service with the default similarity
// threshold and candidate cap.
func NewRetrieval(embedder retrieval.Embedder, candidates retrieval.CandidateSource, logger *slog.Logger) *Retrieval {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrieval{
		embedder:   embedder,
		candidates: candidates,
		threshold:  config.DefaultThreshold,
		limit:      config.DefaultCandidateLimit,
		logger:     logger,
	}
}

// WithThreshold sets the exclusive minimum similarity for ranked entries.
func (s *Retrieval) WithThreshold(threshold float64) *Retrieval {
	s.threshold = threshold
	return s
}

// WithCandidateLimit caps how many candidates are fetched per call.
func (s *Retrieval) WithCandidateLimit(n int) *Retrieval {
	if n > 0 {
		s.limit = n
	}
	return s
}

// Threshold returns the exclusive minimum similarity.
func (s *Retrieval) Threshold() float64 { return s.threshold }

// Retrieve returns the owner's k most relevant forms for the query, most
// similar first. A non-positive k or a nil owner yields an empty ranked
// result. Zero qualifying candidates from a healthy fetch also yield an
// empty ranked result; only a dependency failure switches to the recency
// fallback, and the result's mode records which path produced it.
func (s *Retrieval) Retrieve(ctx context.Context, ownerID uuid.UUID, query string, k int) retrieval.Result {
	if k <= 0 || ownerID == uuid.Nil {
		return retrieval.NewRankedResult(nil)
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil || len(vectors) == 0 {
		return s.fallback(ctx, ownerID, k, "embed query", err)
	}

	candidates, err := s.candidates.FetchCandidates(ctx, ownerID, s.limit)
	if err != nil {
		return s.fallback(ctx, ownerID, k, "fetch candidates", err)
	}

	return retrieval.NewRankedResult(retrieval.TopKMatches(vectors[0], candidates, s.threshold, k))
}

// RetrieveContext retrieves and renders context entries in one call. The
// result is returned alongside the entries so callers can surface the
// fallback flag and per-entry similarities.
func (s *Retrieval) RetrieveContext(
	ctx context.Context,
	ownerID uuid.UUID,
	query string,
	k int,
	opts ...retrieval.AssembleOption,
) ([]retrieval.ContextEntry, retrieval.Result) {
	result := s.Retrieve(ctx, ownerID, query, k)
	return retrieval.AssembleContext(result.Matches(), opts...), result
}

// fallback serves the k most recent forms when ranking is unavailable.
// A failing fallback fetch degrades further to an empty fallback result;
// the caller still never sees an error.
func (s *Retrieval) fallback(ctx context.Context, ownerID uuid.UUID, k int, stage string, cause error) retrieval.Result {
	s.logger.Warn("similarity retrieval unavailable, serving recent forms",
		slog.String("stage", stage),
		slog.String("owner_id", ownerID.String()),
		slog.Any("error", cause),
	)

	forms, err := s.candidates.RecentForms(ctx, ownerID, k)
	if err != nil {
		s.logger.Error("recent-forms fallback failed",
			slog.String("owner_id", ownerID.String()),
			slog.String("error", err.Error()),
		)
		return retrieval.NewFallbackResult(nil)
	}
	return retrieval.NewFallbackResult(forms)
}
