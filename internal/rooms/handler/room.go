package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"campusgate/internal/rooms/repository"
	"campusgate/internal/rooms/service"
	apperrors "campusgate/pkg/errors"
	httputil "campusgate/pkg/http"
	"campusgate/pkg/logger"
	"campusgate/pkg/middleware"
	"campusgate/pkg/model"
)

type RoomHandler struct {
	service service.RoomService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewRoomHandler(service service.RoomService, auth *middleware.Authenticator, log *logger.Logger) *RoomHandler {
	return &RoomHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	room, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, map[string]any{
		"ok":   true,
		"room": room,
	}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *RoomHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		if err := httputil.WriteError(w, apperrors.InvalidInput("ID parameter is required")); err != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", err)
		}
		return
	}

	room, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{
		"ok":   true,
		"room": room,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rooms, err := h.service.GetAll(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{
		"ok":    true,
		"count": len(rooms),
		"rooms": rooms,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "operation", "WriteSuccess", "error", err)
	}
}

// Filter narrows the listing by capacity, location and amenities.
// Query parameters: capacity (minimum), location (exact), amenities
// (comma-separated, all required).
func (h *RoomHandler) Filter(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	filter := repository.RoomFilter{Location: query.Get("location")}

	if raw := query.Get("capacity"); raw != "" {
		capacity, err := strconv.Atoi(raw)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput(fmt.Sprintf("invalid capacity parameter: %s", raw))); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "Filter", "operation", "WriteError", "error", writeErr)
			}
			return
		}
		filter.MinCapacity = capacity
	}

	if raw := query.Get("amenities"); raw != "" {
		for _, amenity := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(amenity); trimmed != "" {
				filter.Amenities = append(filter.Amenities, trimmed)
			}
		}
	}

	rooms, err := h.service.Filter(r.Context(), filter)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Filter", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{
		"ok":    true,
		"count": len(rooms),
		"rooms": rooms,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Filter", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		if err := httputil.WriteError(w, apperrors.InvalidInput("ID parameter is required")); err != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", err)
		}
		return
	}

	var update model.RoomUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	room, err := h.service.Update(r.Context(), id, &update)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{
		"ok":   true,
		"room": room,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		if err := httputil.WriteError(w, apperrors.InvalidInput("ID parameter is required")); err != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", err)
		}
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{
		"ok": true,
		"id": id,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Delete", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/rooms", h.GetAll)
	router.GET("/api/rooms/filter", h.Filter)
	router.GET("/api/rooms/id/:id", h.GetByID)
	router.POST("/api/rooms", h.auth.RequireAdmin(h.Create))
	router.PUT("/api/rooms/id/:id", h.auth.RequireAdmin(h.Update))
	router.DELETE("/api/rooms/id/:id", h.auth.RequireAdmin(h.Delete))
}
