package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"fitbook/internal/classes/service"
	apperrors "fitbook/pkg/errors"
	httputil "fitbook/pkg/http"
	"fitbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

const defaultUpcomingHours = 24

type createClassRequest struct {
	Name            string `json:"name"`
	Instructor      string `json:"instructor"`
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes"`
	TotalSlots      int    `json:"total_slots"`
	Description     string `json:"description"`
}

type updateSlotsRequest struct {
	AvailableSlots int `json:"available_slots"`
}

type ClassHandler struct {
	service service.ClassService
	log     *logger.Logger
}

func NewClassHandler(service service.ClassService, log *logger.Logger) *ClassHandler {
	return &ClassHandler{
		service: service,
		log:     log,
	}
}

func (h *ClassHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	class, err := h.service.Create(r.Context(), req.Name, req.Instructor, req.StartTime, req.DurationMinutes, req.TotalSlots, req.Description)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, class); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ClassHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	includePast, _ := strconv.ParseBool(r.URL.Query().Get("include_past"))

	classes, err := h.service.GetAll(r.Context(), includePast)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, classes); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ClassHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	class, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, class); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ClassHandler) GetUpcoming(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	hours := defaultUpcomingHours
	if hoursStr := r.URL.Query().Get("hours"); hoursStr != "" {
		var err error
		hours, err = strconv.Atoi(hoursStr)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput(fmt.Sprintf("invalid hours parameter: %s", hoursStr))); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "GetUpcoming", "operation", "WriteError", "error", writeErr)
			}
			return
		}
	}

	classes, err := h.service.GetUpcoming(r.Context(), hours)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetUpcoming", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, classes); err != nil {
		h.log.Error("failed to write success response", "handler", "GetUpcoming", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ClassHandler) GetAvailable(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	classes, err := h.service.GetAvailable(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAvailable", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, classes); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAvailable", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ClassHandler) GetByInstructor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	instructor := ps.ByName("name")

	classes, err := h.service.GetByInstructor(r.Context(), instructor)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByInstructor", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, classes); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByInstructor", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ClassHandler) UpdateSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var req updateSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UpdateSlots", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	class, err := h.service.UpdateSlots(r.Context(), id, req.AvailableSlots)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, class); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateSlots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ClassHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ClassHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Stats", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "Stats", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ClassHandler) WithBookingInfo(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	info, err := h.service.WithBookingInfo(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "WithBookingInfo", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, info); err != nil {
		h.log.Error("failed to write success response", "handler", "WithBookingInfo", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ClassHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/classes", h.Create)
	router.GET("/api/v1/classes", h.GetAll)
	router.GET("/api/v1/classes/upcoming", h.GetUpcoming)
	router.GET("/api/v1/classes/available", h.GetAvailable)
	router.GET("/api/v1/classes/stats", h.Stats)
	router.GET("/api/v1/classes/instructor/:name", h.GetByInstructor)
	router.GET("/api/v1/classes/id/:id", h.GetByID)
	router.PATCH("/api/v1/classes/id/:id/slots", h.UpdateSlots)
	router.DELETE("/api/v1/classes/id/:id", h.Delete)
	router.GET("/api/v1/classes/id/:id/bookings", h.WithBookingInfo)
}
