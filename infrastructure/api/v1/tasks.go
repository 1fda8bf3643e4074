package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	centralign "github.com/codeBunny2022/CentrAlignWebapp"
	"github.com/codeBunny2022/CentrAlignWebapp/application/service"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/task"
	"github.com/codeBunny2022/CentrAlignWebapp/infrastructure/api/jsonapi"
	"github.com/codeBunny2022/CentrAlignWebapp/infrastructure/api/middleware"
)

// TasksRouter handles background task queue API endpoints. The queue is
// read-only over HTTP; tasks are enqueued by form generation and drained
// by the worker.
type TasksRouter struct {
	client     *centralign.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewTasksRouter creates a new TasksRouter.
func NewTasksRouter(client *centralign.Client) *TasksRouter {
	return &TasksRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for task endpoints.
func (r *TasksRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)

	return router
}

// List handles GET /api/v1/tasks.
//
//	@Summary		List queued tasks
//	@Description	Get pending background tasks, highest priority first
//	@Tags			tasks
//	@Produce		json
//	@Param			page		query	int		false	"Page number (default: 1)"
//	@Param			page_size	query	int		false	"Results per page (default: 20, max: 100)"
//	@Param			operation	query	string	false	"Filter by operation"
//	@Success		200	{object}	dto.TaskListResponse
//	@Failure		400	{object}	middleware.JSONAPIErrorResponse
//	@Failure		401	{object}	middleware.JSONAPIErrorResponse
//	@Security		BearerAuth
//	@Router			/tasks [get]
func (r *TasksRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	pagination := ParsePagination(req)
	params := service.TaskListParams{
		Limit:  pagination.Limit(),
		Offset: pagination.Offset(),
	}

	if value := req.URL.Query().Get("operation"); value != "" {
		operation := task.Operation(value)
		if !operation.IsValid() {
			middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "unknown operation", nil), r.logger)
			return
		}
		params.Operation = &operation
	}

	tasks, err := r.client.Tasks.List(ctx, &params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	total, err := r.client.Tasks.Count(ctx)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc := jsonapi.NewListResponse(r.serializer.TaskResources(tasks))
	doc.Meta = PaginationMeta(pagination, total)
	doc.Links = PaginationLinks(req, pagination, total)

	middleware.WriteJSON(w, http.StatusOK, doc)
}
