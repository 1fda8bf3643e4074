package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	centralign "github.com/codeBunny2022/CentrAlignWebapp"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/retrieval"
	"github.com/codeBunny2022/CentrAlignWebapp/infrastructure/api/jsonapi"
	"github.com/codeBunny2022/CentrAlignWebapp/infrastructure/api/middleware"
	"github.com/codeBunny2022/CentrAlignWebapp/infrastructure/api/v1/dto"
	"github.com/codeBunny2022/CentrAlignWebapp/internal/config"
)

// ContextRouter handles context retrieval API endpoints.
type ContextRouter struct {
	client *centralign.Client
	logger *slog.Logger
}

// NewContextRouter creates a new ContextRouter.
func NewContextRouter(client *centralign.Client) *ContextRouter {
	return &ContextRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for context endpoints.
func (r *ContextRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/query", r.Query)

	return router
}

// Query handles POST /api/v1/context/query.
//
// Retrieval degradation is not an error surface: when ranking is
// unavailable the response is still 200, with meta.fallback set and
// zero similarities.
//
//	@Summary		Query context
//	@Description	Retrieve the authenticated user's most relevant prior forms for a query
//	@Tags			context
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.ContextQueryRequest	true	"Context query"
//	@Success		200		{object}	dto.ContextQueryResponse
//	@Failure		400		{object}	map[string]string
//	@Failure		401		{object}	middleware.JSONAPIErrorResponse
//	@Security		BearerAuth
//	@Router			/context/query [post]
func (r *ContextRouter) Query(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	owner, ok := middleware.UserFrom(ctx)
	if !ok {
		middleware.WriteError(w, req, middleware.NewAuthenticationError("no authenticated user"), r.logger)
		return
	}

	var body dto.ContextQueryRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	attrs := body.Data.Attributes
	if attrs.Query == "" {
		middleware.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "query is required",
		})
		return
	}

	topK := config.DefaultTopK
	if attrs.TopK != nil {
		if *attrs.TopK <= 0 {
			middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "top_k must be positive", nil), r.logger)
			return
		}
		topK = *attrs.TopK
	}

	var opts []retrieval.AssembleOption
	if attrs.IncludeSchemas {
		opts = append(opts, retrieval.WithSchemas(true))
	}

	entries, result := r.client.Retrieval.RetrieveContext(ctx, owner.UUID(), attrs.Query, topK, opts...)

	matches := result.Matches()
	data := make([]dto.ContextEntryData, len(entries))
	for i, entry := range entries {
		data[i] = dto.ContextEntryData{
			Type: "context_entry",
			ID:   matches[i].Form().UUID().String(),
			Attributes: dto.ContextEntryAttributes{
				Category:    string(entry.Category()),
				Title:       entry.Title(),
				Summary:     entry.Summary(),
				Descriptors: entry.Descriptors(),
				SchemaJSON:  entry.SchemaJSON(),
				Similarity:  matches[i].Similarity(),
			},
		}
	}

	response := dto.ContextQueryResponse{
		Data: data,
		Meta: &jsonapi.Meta{
			"mode":     string(result.Mode()),
			"fallback": result.IsFallback(),
		},
	}

	middleware.WriteJSON(w, http.StatusOK, response)
}
