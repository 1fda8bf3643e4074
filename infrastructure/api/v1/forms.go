package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	centralign "github.com/codeBunny2022/CentrAlignWebapp"
	"github.com/codeBunny2022/CentrAlignWebapp/application/service"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/form"
	"github.com/codeBunny2022/CentrAlignWebapp/infrastructure/api/jsonapi"
	"github.com/codeBunny2022/CentrAlignWebapp/infrastructure/api/middleware"
	"github.com/codeBunny2022/CentrAlignWebapp/infrastructure/api/v1/dto"
)

// FormsRouter handles form API endpoints. All routes are owner-scoped:
// the authenticated user only ever sees their own forms.
type FormsRouter struct {
	client     *centralign.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewFormsRouter creates a new FormsRouter.
func NewFormsRouter(client *centralign.Client) *FormsRouter {
	return &FormsRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for form endpoints.
func (r *FormsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Post("/generate", r.Generate)
	router.Get("/{uuid}", r.Get)
	router.Delete("/{uuid}", r.Delete)

	return router
}

// List handles GET /api/v1/forms.
//
//	@Summary		List forms
//	@Description	Get the authenticated user's forms, newest first
//	@Tags			forms
//	@Produce		json
//	@Param			page		query	int		false	"Page number (default: 1)"
//	@Param			page_size	query	int		false	"Results per page (default: 20, max: 100)"
//	@Param			category	query	string	false	"Filter by category"
//	@Success		200	{object}	dto.FormListResponse
//	@Failure		400	{object}	middleware.JSONAPIErrorResponse
//	@Failure		401	{object}	middleware.JSONAPIErrorResponse
//	@Security		BearerAuth
//	@Router			/forms [get]
func (r *FormsRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	owner, ok := middleware.UserFrom(ctx)
	if !ok {
		middleware.WriteError(w, req, middleware.NewAuthenticationError("no authenticated user"), r.logger)
		return
	}

	pagination := ParsePagination(req)
	params := service.FormListParams{
		Limit:  pagination.Limit(),
		Offset: pagination.Offset(),
	}

	if value := req.URL.Query().Get("category"); value != "" {
		category := form.Category(value)
		if !category.IsValid() {
			middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "unknown category", nil), r.logger)
			return
		}
		params.Category = &category
	}

	forms, err := r.client.Forms.List(ctx, owner.UUID(), params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	total, err := r.client.Forms.Count(ctx, owner.UUID())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc := jsonapi.NewListResponse(r.serializer.FormResources(forms))
	doc.Meta = PaginationMeta(pagination, total)
	doc.Links = PaginationLinks(req, pagination, total)

	middleware.WriteJSON(w, http.StatusOK, doc)
}

// Get handles GET /api/v1/forms/{uuid}.
//
//	@Summary		Get form
//	@Description	Get one of the authenticated user's forms
//	@Tags			forms
//	@Produce		json
//	@Param			uuid	path		string	true	"Form UUID"
//	@Success		200		{object}	dto.FormResponse
//	@Failure		400		{object}	middleware.JSONAPIErrorResponse
//	@Failure		404		{object}	middleware.JSONAPIErrorResponse
//	@Security		BearerAuth
//	@Router			/forms/{uuid} [get]
func (r *FormsRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	owner, ok := middleware.UserFrom(ctx)
	if !ok {
		middleware.WriteError(w, req, middleware.NewAuthenticationError("no authenticated user"), r.logger)
		return
	}

	formUUID, err := uuid.Parse(chi.URLParam(req, "uuid"))
	if err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid form id", err), r.logger)
		return
	}

	f, err := r.client.Forms.Get(ctx, owner.UUID(), formUUID)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.FormResource(f)))
}

// Delete handles DELETE /api/v1/forms/{uuid}.
//
//	@Summary		Delete form
//	@Description	Delete one of the authenticated user's forms and its queued work
//	@Tags			forms
//	@Param			uuid	path	string	true	"Form UUID"
//	@Success		204
//	@Failure		400	{object}	middleware.JSONAPIErrorResponse
//	@Failure		404	{object}	middleware.JSONAPIErrorResponse
//	@Security		BearerAuth
//	@Router			/forms/{uuid} [delete]
func (r *FormsRouter) Delete(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	owner, ok := middleware.UserFrom(ctx)
	if !ok {
		middleware.WriteError(w, req, middleware.NewAuthenticationError("no authenticated user"), r.logger)
		return
	}

	formUUID, err := uuid.Parse(chi.URLParam(req, "uuid"))
	if err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid form id", err), r.logger)
		return
	}

	if err := r.client.Forms.Delete(ctx, owner.UUID(), formUUID); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Generate handles POST /api/v1/forms/generate.
//
//	@Summary		Generate form
//	@Description	Generate a form definition from a natural-language prompt
//	@Tags			forms
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.GenerateRequest	true	"Generation request"
//	@Success		201		{object}	dto.FormResponse
//	@Failure		400		{object}	map[string]string
//	@Failure		401		{object}	middleware.JSONAPIErrorResponse
//	@Security		BearerAuth
//	@Router			/forms/generate [post]
func (r *FormsRouter) Generate(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	owner, ok := middleware.UserFrom(ctx)
	if !ok {
		middleware.WriteError(w, req, middleware.NewAuthenticationError("no authenticated user"), r.logger)
		return
	}

	var body dto.GenerateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if body.Data.Attributes.Prompt == "" {
		middleware.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "prompt is required",
		})
		return
	}

	f, err := r.client.Generator.Generate(ctx, owner.UUID(), body.Data.Attributes.Prompt)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.FormResource(f)))
}
