package seat_api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-seating/internal/auth"
	"ms-seating/internal/logger"
	"ms-seating/internal/pricing"
	"ms-seating/internal/seats/service"
	"ms-seating/internal/tickets/qr"
	"ms-seating/internal/utils"
)

type Handler struct {
	SeatService *service.SeatService
	Pricing     *pricing.Assigner
	QR          *qr.Generator
	Logger      *logger.Logger
}

type bulkCreateRequest struct {
	Rows        []string `json:"rows"`
	SeatsPerRow int      `json:"seats_per_row"`
}

// BulkCreateSeats seeds the seat grid for an event. Safe to repeat:
// existing seats are left untouched, barcodes included.
func (h *Handler) BulkCreateSeats(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var req bulkCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	attempted, err := h.SeatService.BulkCreateSeats(r.Context(), eventID, req.Rows, req.SeatsPerRow)
	if err != nil {
		h.writeError(w, "Could not create seats", err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Seats created", map[string]interface{}{
		"event_id":  eventID,
		"attempted": attempted,
	}))
}

type priceRequest struct {
	MaxPrice  int64    `json:"max_price"`
	Decrement int64    `json:"decrement,omitempty"`
	Rows      []string `json:"rows"`
}

// AssignPrices sets per-row prices for an event, front row priciest.
func (h *Handler) AssignPrices(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var req priceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	prices, err := h.Pricing.Assign(r.Context(), eventID, req.MaxPrice, req.Rows, req.Decrement)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Could not assign prices", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Prices assigned", prices))
}

// Availability returns the row -> seat number -> status grid.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	grid, err := h.SeatService.Availability(r.Context(), eventID)
	if err != nil {
		h.writeError(w, "Could not load availability", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Availability", grid))
}

// ReserveSeat places a hold on one specific seat.
func (h *Handler) ReserveSeat(w http.ResponseWriter, r *http.Request) {
	eventID, rowName, seatNumber, ok := h.seatRef(w, r)
	if !ok {
		return
	}

	if err := h.SeatService.Reserve(r.Context(), eventID, rowName, seatNumber); err != nil {
		h.writeError(w, "Could not reserve seat", err)
		return
	}

	h.Logger.LogSeat("RESERVE", eventID, rowName, seatNumber)
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Seat reserved", map[string]interface{}{
		"event_id":    eventID,
		"row_name":    rowName,
		"seat_number": seatNumber,
	}))
}

// UnreserveSeat releases a held seat back to the pool.
func (h *Handler) UnreserveSeat(w http.ResponseWriter, r *http.Request) {
	eventID, rowName, seatNumber, ok := h.seatRef(w, r)
	if !ok {
		return
	}

	if err := h.SeatService.Unreserve(r.Context(), eventID, rowName, seatNumber); err != nil {
		h.writeError(w, "Could not unreserve seat", err)
		return
	}

	h.Logger.LogSeat("UNRESERVE", eventID, rowName, seatNumber)
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Seat released", map[string]interface{}{
		"event_id":    eventID,
		"row_name":    rowName,
		"seat_number": seatNumber,
	}))
}

// Purchase sells any available seat of the event to the caller.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	buyerID := auth.UserID(r.Context())
	if buyerID == "" {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized", "no caller identity"))
		return
	}

	seat, err := h.SeatService.Purchase(r.Context(), eventID, buyerID)
	if err != nil {
		h.writeError(w, "Could not complete purchase", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Purchase complete", map[string]interface{}{
		"ticket_id":   seat.Barcode,
		"event_id":    seat.EventID,
		"row_name":    seat.RowName,
		"seat_number": seat.SeatNumber,
	}))
}

// SalesSummary reports per-status seat counts for an event.
func (h *Handler) SalesSummary(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	summary, err := h.SeatService.SalesSummary(r.Context(), eventID)
	if err != nil {
		h.writeError(w, "Could not load sales summary", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Sales summary", summary))
}

// TicketQR renders the printable QR code for a sold seat's barcode.
func (h *Handler) TicketQR(w http.ResponseWriter, r *http.Request) {
	barcode := chi.URLParam(r, "barcode")

	seat, err := h.SeatService.TicketByBarcode(r.Context(), barcode)
	if err != nil {
		h.writeError(w, "Could not find ticket", err)
		return
	}

	png, err := h.QR.EncodeTicket(*seat)
	if err != nil {
		h.Logger.Error("QR", "Failed to render ticket QR: "+err.Error())
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not render QR", "internal error"))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *Handler) seatRef(w http.ResponseWriter, r *http.Request) (eventID, rowName string, seatNumber int, ok bool) {
	eventID = chi.URLParam(r, "eventID")
	rowName = chi.URLParam(r, "row")

	seatNumber, err := strconv.Atoi(chi.URLParam(r, "seatNumber"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid seat number", "seat number must be an integer"))
		return "", "", 0, false
	}
	return eventID, rowName, seatNumber, true
}

// writeError maps service errors onto the external contract: races and
// missing seats are 404s, bad input is a 400, anything else is a 500
// with the storage detail kept out of the response body.
func (h *Handler) writeError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, service.ErrSeatUnavailable):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse(message, "seat unavailable"))
	case errors.Is(err, service.ErrNoInventory):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse(message, "no available tickets"))
	case errors.Is(err, service.ErrValidation):
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(message, err.Error()))
	default:
		h.Logger.Error("API", message+": "+err.Error())
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse(message, "internal error"))
	}
}
