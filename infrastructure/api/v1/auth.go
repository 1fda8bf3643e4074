// Package v1 provides the v1 API routes.
package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	centralign "github.com/codeBunny2022/CentrAlignWebapp"
	"github.com/codeBunny2022/CentrAlignWebapp/application/service"
	"github.com/codeBunny2022/CentrAlignWebapp/infrastructure/api/jsonapi"
	"github.com/codeBunny2022/CentrAlignWebapp/infrastructure/api/middleware"
	"github.com/codeBunny2022/CentrAlignWebapp/infrastructure/api/v1/dto"
)

// AuthRouter handles authentication API endpoints.
type AuthRouter struct {
	client     *centralign.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewAuthRouter creates a new AuthRouter.
func NewAuthRouter(client *centralign.Client) *AuthRouter {
	return &AuthRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for authentication endpoints.
func (r *AuthRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", r.Register)
	router.Post("/login", r.Login)

	return router
}

// Register handles POST /api/v1/auth/register.
//
//	@Summary		Register account
//	@Description	Create an account and return a session token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.RegisterRequest	true	"Registration request"
//	@Success		201		{object}	dto.SessionResponse
//	@Failure		400		{object}	map[string]string
//	@Failure		409		{object}	map[string]string
//	@Router			/auth/register [post]
func (r *AuthRouter) Register(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.RegisterRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	attrs := body.Data.Attributes
	if attrs.Email == "" || attrs.Password == "" {
		middleware.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "email and password are required",
		})
		return
	}

	session, err := r.client.Auth.Register(ctx, attrs.Email, attrs.Password, attrs.DisplayName)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, sessionToDTO(session))
}

// Login handles POST /api/v1/auth/login.
//
//	@Summary		Log in
//	@Description	Exchange credentials for a session token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.LoginRequest	true	"Login request"
//	@Success		200		{object}	dto.SessionResponse
//	@Failure		400		{object}	map[string]string
//	@Failure		401		{object}	middleware.JSONAPIErrorResponse
//	@Router			/auth/login [post]
func (r *AuthRouter) Login(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.LoginRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	attrs := body.Data.Attributes
	if attrs.Email == "" || attrs.Password == "" {
		middleware.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "email and password are required",
		})
		return
	}

	session, err := r.client.Auth.Login(ctx, attrs.Email, attrs.Password)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, sessionToDTO(session))
}

// Me handles GET /api/v1/me.
//
//	@Summary		Current user
//	@Description	Return the user the bearer token belongs to
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	dto.UserResponse
//	@Failure		401	{object}	middleware.JSONAPIErrorResponse
//	@Security		BearerAuth
//	@Router			/me [get]
func (r *AuthRouter) Me(w http.ResponseWriter, req *http.Request) {
	u, ok := middleware.UserFrom(req.Context())
	if !ok {
		middleware.WriteError(w, req, middleware.NewAuthenticationError("no authenticated user"), r.logger)
		return
	}

	resource := r.serializer.UserResource(u)
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(resource))
}

func sessionToDTO(s service.Session) dto.SessionResponse {
	u := s.User()
	return dto.SessionResponse{
		Data: dto.SessionData{
			Type: "session",
			ID:   u.UUID().String(),
			Attributes: dto.SessionAttributes{
				Token:       s.Token(),
				ExpiresAt:   s.ExpiresAt(),
				Email:       u.Email(),
				DisplayName: u.DisplayName(),
			},
		},
	}
}
