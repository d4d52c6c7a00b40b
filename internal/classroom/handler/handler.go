// Package handler exposes the classroom endpoints. Every route requires an
// authenticated session.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ahmadsobohhh/UnityPlatform/internal/classroom/models"
	"github.com/ahmadsobohhh/UnityPlatform/internal/classroom/service"
	"github.com/ahmadsobohhh/UnityPlatform/internal/platform/middleware"
	id "github.com/ahmadsobohhh/UnityPlatform/pkg/domain"
	dErrors "github.com/ahmadsobohhh/UnityPlatform/pkg/domain-errors"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/platform/httputil"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/requestcontext"
)

// Service defines the classroom operations the handler needs.
type Service interface {
	Create(ctx context.Context, ownerUID id.UserID, name string) (models.Classroom, error)
	Rename(ctx context.Context, ownerUID id.UserID, classID id.ClassID, newName string) (models.Classroom, error)
	Delete(ctx context.Context, ownerUID id.UserID, classID id.ClassID) error
	ListTeacherClasses(ctx context.Context, uid id.UserID, page int) (service.Page, error)
	ListStudentClassrooms(ctx context.Context, uid id.UserID) (service.StudentView, error)
	Join(ctx context.Context, uid id.UserID, rawCode string) (service.JoinResult, error)
	Roster(ctx context.Context, ownerUID id.UserID, classID id.ClassID) ([]models.Member, error)
}

// Handler handles classroom lifecycle and membership endpoints.
type Handler struct {
	logger       *slog.Logger
	classrooms   Service
	jwtValidator middleware.JWTValidator
}

// New creates a new classroom Handler.
func New(classrooms Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		classrooms:   classrooms,
		jwtValidator: jwtValidator,
	}
}

// Register registers the classroom routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(g chi.Router) {
		g.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		g.Post("/classes", h.handleCreate)
		g.Get("/classes", h.handleList)
		g.Patch("/classes/{classID}", h.handleRename)
		g.Delete("/classes/{classID}", h.handleDelete)
		g.Get("/classes/{classID}/members", h.handleRoster)
		g.Post("/classes/join", h.handleJoin)
		g.Get("/me/classrooms", h.handleMyClassrooms)
	})
}

type classResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt,omitempty"`
}

func toClassResponse(c models.Classroom) classResponse {
	return classResponse{
		ID:        string(c.ID),
		Name:      c.Name,
		Code:      c.Code,
		CreatedAt: c.CreatedAt.UnixMilli(),
		UpdatedAt: c.UpdatedAt.UnixMilli(),
	}
}

type createRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.callerUID(w, ctx)
	if !ok {
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	class, err := h.classrooms.Create(ctx, uid, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "create class failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toClassResponse(class))
}

type listResponse struct {
	Classes   []classResponse `json:"classes"`
	Page      int             `json:"page"`
	PageCount int             `json:"pageCount"`
	Total     int             `json:"total"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.callerUID(w, ctx)
	if !ok {
		return
	}

	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid page"))
			return
		}
		page = parsed
	}

	result, err := h.classrooms.ListTeacherClasses(ctx, uid, page)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := listResponse{
		Classes:   make([]classResponse, 0, len(result.Classes)),
		Page:      result.Page,
		PageCount: result.PageCount,
		Total:     result.Total,
	}
	for _, entry := range result.Classes {
		resp.Classes = append(resp.Classes, classResponse{
			ID:        string(entry.ID),
			Name:      entry.Name,
			Code:      entry.Code,
			CreatedAt: entry.CreatedAt.UnixMilli(),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

type renameRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleRename(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.callerUID(w, ctx)
	if !ok {
		return
	}

	classID, err := id.ParseClassID(chi.URLParam(r, "classID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid class id"))
		return
	}

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	class, err := h.classrooms.Rename(ctx, uid, classID, req.Name)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toClassResponse(class))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.callerUID(w, ctx)
	if !ok {
		return
	}

	classID, err := id.ParseClassID(chi.URLParam(r, "classID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid class id"))
		return
	}

	if err := h.classrooms.Delete(ctx, uid, classID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type memberResponse struct {
	UID      string `json:"uid"`
	JoinedAt int64  `json:"joinedAt"`
	Level    int    `json:"level"`
	XP       int    `json:"xp"`
	Gold     int    `json:"gold"`
}

func (h *Handler) handleRoster(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.callerUID(w, ctx)
	if !ok {
		return
	}

	classID, err := id.ParseClassID(chi.URLParam(r, "classID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid class id"))
		return
	}

	members, err := h.classrooms.Roster(ctx, uid, classID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := make([]memberResponse, 0, len(members))
	for _, m := range members {
		resp = append(resp, memberResponse{
			UID:      string(m.UID),
			JoinedAt: m.JoinedAt.UnixMilli(),
			Level:    m.Level,
			XP:       m.XP,
			Gold:     m.Gold,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"members": resp})
}

type joinRequest struct {
	Code string `json:"code"`
}

func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.callerUID(w, ctx)
	if !ok {
		return
	}

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.classrooms.Join(ctx, uid, req.Code)
	if err != nil {
		h.logger.WarnContext(ctx, "join failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"classroom": toClassResponse(result.Classroom),
		"slots":     result.View.Slots,
	})
}

func (h *Handler) handleMyClassrooms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.callerUID(w, ctx)
	if !ok {
		return
	}

	view, err := h.classrooms.ListStudentClassrooms(ctx, uid)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"classrooms": view.Classrooms,
		"slots":      view.Slots,
	})
}

// callerUID pulls the authenticated uid out of the context. The auth
// middleware guarantees it; a miss is a wiring bug.
func (h *Handler) callerUID(w http.ResponseWriter, ctx context.Context) (id.UserID, bool) {
	uid := requestcontext.UserID(ctx)
	if uid == "" {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return "", false
	}
	return uid, true
}
