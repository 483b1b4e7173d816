package event_api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-seating/internal/events/service"
	"ms-seating/internal/logger"
	"ms-seating/internal/models"
	"ms-seating/internal/utils"
)

type Handler struct {
	EventService *service.EventService
	Logger       *logger.Logger
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var event models.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	created, err := h.EventService.CreateEvent(r.Context(), event)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Could not create event", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Event created", created))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	event, err := h.EventService.GetEvent(r.Context(), eventID)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Event not found", "no event with id "+eventID))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event found", event))
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	afterDate := r.URL.Query().Get("afterDate")
	location := r.URL.Query().Get("location")

	events, err := h.EventService.ListEvents(r.Context(), afterDate, location)
	if err != nil {
		h.Logger.Error("EVENTS", "Failed to list events: "+err.Error())
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not list events", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Events", events))
}
