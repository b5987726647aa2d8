package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"fitbook/internal/bookings/service"
	httputil "fitbook/pkg/http"
	"fitbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type createBookingRequest struct {
	ClassID     string `json:"class_id"`
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
}

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	booking, err := h.service.Create(r.Context(), req.ClassID, req.ClientName, req.ClientEmail)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	booking, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// GetByEmail serves GET /api/v1/bookings?email=...&include_cancelled=true.
// The email requirement is enforced in the service so the error shape matches
// the rest of the API.
func (h *BookingHandler) GetByEmail(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	email := query.Get("email")
	includeCancelled, _ := strconv.ParseBool(query.Get("include_cancelled"))

	bookings, err := h.service.GetByEmail(r.Context(), email, includeCancelled)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByEmail", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByEmail", "operation", "WriteSuccess", "error", err)
	}
}

// Cancel distinguishes the service's two negative outcomes: an unknown id is
// a 404 from WriteError, a booking that is not currently confirmed is a 400.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	cancelled, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	if !cancelled {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Failed to cancel booking",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Cancel", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{"message": "Booking cancelled successfully"}); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetByClass(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	classID := ps.ByName("class_id")

	bookings, err := h.service.GetByClass(r.Context(), classID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByClass", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByClass", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
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

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.GetByEmail)
	router.GET("/api/v1/bookings/stats", h.Stats)
	router.GET("/api/v1/bookings/class/:class_id", h.GetByClass)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.POST("/api/v1/bookings/id/:id/cancel", h.Cancel)
}
