package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"campusgate/internal/students/service"
	apperrors "campusgate/pkg/errors"
	httputil "campusgate/pkg/http"
	"campusgate/pkg/logger"
	"campusgate/pkg/middleware"
)

type StudentHandler struct {
	service service.StudentService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewStudentHandler(service service.StudentService, auth *middleware.Authenticator, log *logger.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

type loginRequest struct {
	StudentID string `json:"student_id"`
	Password  string `json:"password"`
}

func (h *StudentHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Login", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	result, err := h.service.Login(r.Context(), req.StudentID, req.Password)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Login", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{
		"ok":      true,
		"token":   result.Token,
		"student": result.Student,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StudentHandler) ListAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	students, err := h.service.ListAll(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{
		"ok":       true,
		"count":    len(students),
		"students": students,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "ListAll", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StudentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/student/login", h.Login)
	router.GET("/api/admin/students", h.auth.RequireAdmin(h.ListAll))
}
