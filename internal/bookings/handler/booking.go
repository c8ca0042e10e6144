package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"campusgate/internal/bookings/service"
	apperrors "campusgate/pkg/errors"
	httputil "campusgate/pkg/http"
	"campusgate/pkg/logger"
	"campusgate/pkg/middleware"
	"campusgate/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, auth *middleware.Authenticator, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	booking, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, map[string]any{
		"ok":      true,
		"booking": booking,
	}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		if err := httputil.WriteError(w, apperrors.InvalidInput("ID parameter is required")); err != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "operation", "WriteError", "error", err)
		}
		return
	}

	booking, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{
		"ok":      true,
		"booking": booking,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) ListByStudent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	studentID := ps.ByName("student_id")
	if studentID == "" {
		if err := httputil.WriteError(w, apperrors.InvalidInput("Student ID parameter is required")); err != nil {
			h.log.Error("failed to write error response", "handler", "ListByStudent", "operation", "WriteError", "error", err)
		}
		return
	}

	bookings, err := h.service.ListByStudent(r.Context(), studentID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByStudent", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{
		"ok":       true,
		"count":    len(bookings),
		"bookings": bookings,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "ListByStudent", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) ListAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookings, err := h.service.ListAll(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{
		"ok":       true,
		"count":    len(bookings),
		"bookings": bookings,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "ListAll", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) AvailableSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var query model.SlotQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "AvailableSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	slots, err := h.service.AvailableSlots(r.Context(), &query)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "AvailableSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{
		"ok":    true,
		"count": len(slots),
		"slots": slots,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "AvailableSlots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/bookings", h.auth.RequireStudent(h.Create))
	router.PUT("/api/bookings/id/:id/cancel", h.auth.RequireStudent(h.Cancel))
	router.GET("/api/bookings/student/:student_id", h.auth.RequireStudent(h.ListByStudent))
	router.GET("/api/bookings", h.auth.RequireAdmin(h.ListAll))
	router.POST("/api/rooms/available-slots", h.auth.RequireStudent(h.AvailableSlots))
}
