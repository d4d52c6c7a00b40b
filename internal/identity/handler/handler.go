// Package handler exposes the identity endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ahmadsobohhh/UnityPlatform/internal/identity/models"
	"github.com/ahmadsobohhh/UnityPlatform/internal/identity/service"
	"github.com/ahmadsobohhh/UnityPlatform/internal/platform/middleware"
	id "github.com/ahmadsobohhh/UnityPlatform/pkg/domain"
	dErrors "github.com/ahmadsobohhh/UnityPlatform/pkg/domain-errors"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/platform/httputil"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/requestcontext"
)

// Service defines the identity operations the handler needs.
type Service interface {
	Login(ctx context.Context, identifier, password string) (service.LoginResult, error)
	Register(ctx context.Context, input service.RegistrationInput) (service.RegistrationResult, error)
	Profile(ctx context.Context, uid id.UserID) (models.UserProfile, error)
}

// Handler handles the auth and profile endpoints.
type Handler struct {
	logger       *slog.Logger
	identity     Service
	jwtValidator middleware.JWTValidator
}

// New creates a new identity Handler.
func New(identity Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		identity:     identity,
		jwtValidator: jwtValidator,
	}
}

// Register registers the identity routes with the chi router. The auth
// endpoints are public; /me requires a session token.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)

	r.Group(func(g chi.Router) {
		g.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		g.Get("/me", h.handleMe)
	})
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	Destination string `json:"destination"`
	Token       string `json:"token"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.identity.Login(ctx, req.Identifier, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		UID:         string(result.UID),
		Email:       result.Email,
		Username:    result.Username,
		Role:        string(result.Role),
		Destination: string(result.Destination),
		Token:       result.Token,
	})
}

type registerRequest struct {
	Username        string `json:"username"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            string `json:"role"`
}

type registerResponse struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.identity.Register(ctx, service.RegistrationInput{
		Username:        req.Username,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            models.Role(req.Role),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, registerResponse{
		UID:      string(result.UID),
		Username: result.Username,
		Email:    result.Email,
		Role:     string(result.Role),
	})
}

type profileResponse struct {
	UID       string `json:"uid"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uid := requestcontext.UserID(ctx)
	if uid == "" {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	profile, err := h.identity.Profile(ctx, uid)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profileResponse{
		UID:       string(profile.UID),
		Username:  profile.Username,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Email:     profile.Email,
		Role:      string(profile.Role),
	})
}
