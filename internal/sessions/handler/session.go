package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"campusgate/internal/sessions/service"
	apperrors "campusgate/pkg/errors"
	httputil "campusgate/pkg/http"
	"campusgate/pkg/logger"
	"campusgate/pkg/middleware"
	"campusgate/pkg/model"
	"campusgate/pkg/token"
)

type SessionHandler struct {
	service service.SessionService
	tokens  *token.Manager
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewSessionHandler(service service.SessionService, tokens *token.Manager, auth *middleware.Authenticator, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		tokens:  tokens,
		auth:    auth,
		log:     log,
	}
}

type scanRequest struct {
	Token string `json:"token"`
}

type scanResponse struct {
	OK          bool      `json:"ok"`
	Action      string    `json:"action"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	Course      string    `json:"course"`
	Timestamp   time.Time `json:"timestamp"`
}

// Scan processes one gate presentation. Identity comes from the signed
// token alone; name and course are echoed back as asserted at login,
// not re-fetched from the directory.
func (h *SessionHandler) Scan(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Scan", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if req.Token == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Token is required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Scan", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	claims, err := h.tokens.VerifyScan(req.Token)
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.Unauthorized("Invalid or expired token")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Scan", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	result, err := h.service.RecordScan(r.Context(), claims.StudentID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Scan", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, scanResponse{
		OK:          true,
		Action:      result.Action,
		StudentID:   claims.StudentID,
		StudentName: claims.StudentName,
		Course:      claims.Course,
		Timestamp:   result.Timestamp,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Scan", "operation", "WriteSuccess", "error", err)
	}
}

// Logs lists session history for admins. Optional query parameters:
// student_id, from, to (RFC 3339).
func (h *SessionHandler) Logs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, err := parseLogFilter(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Logs", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	logs, err := h.service.ListLogs(r.Context(), filter)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Logs", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{
		"ok":    true,
		"count": len(logs),
		"logs":  logs,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Logs", "operation", "WriteSuccess", "error", err)
	}
}

// Inside lists every student currently on campus.
func (h *SessionHandler) Inside(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rows, err := h.service.ListOpen(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Inside", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{
		"ok":       true,
		"count":    len(rows),
		"students": rows,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Inside", "operation", "WriteSuccess", "error", err)
	}
}

// ActiveCount reports how many students are inside right now. The count
// is public; it carries no identities.
func (h *SessionHandler) ActiveCount(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	count, err := h.service.ActiveCount(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ActiveCount", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{
		"ok":    true,
		"count": count,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "ActiveCount", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SessionHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/scan", h.Scan)
	router.GET("/api/admin/logs", h.auth.RequireAdmin(h.Logs))
	router.GET("/api/admin/inside", h.auth.RequireAdmin(h.Inside))
	router.GET("/api/student/active-students", h.ActiveCount)
}

func parseLogFilter(r *http.Request) (model.LogFilter, error) {
	query := r.URL.Query()
	filter := model.LogFilter{StudentID: query.Get("student_id")}

	if raw := query.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return model.LogFilter{}, apperrors.InvalidInput(fmt.Sprintf("invalid from parameter: %s", raw))
		}
		filter.From = &from
	}

	if raw := query.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return model.LogFilter{}, apperrors.InvalidInput(fmt.Sprintf("invalid to parameter: %s", raw))
		}
		filter.To = &to
	}

	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return model.LogFilter{}, apperrors.InvalidInput("to must not be before from")
	}

	return filter, nil
}
