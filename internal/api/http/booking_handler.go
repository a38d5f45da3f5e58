package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/service"
)

// BookingHandler exposes the booking engine over JSON HTTP.
type BookingHandler struct {
	bookings service.BookingService
}

func NewBookingHandler(bookings service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type createBookingRequest struct {
	VehicleID       int32  `json:"vehicle_id"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	InsuranceFee    int64  `json:"insurance_fee"`
	ClientTotal     *int64 `json:"client_total,omitempty"`
	PickupLocation  string `json:"pickup_location"`
	DropoffLocation string `json:"dropoff_location"`
	Notes           string `json:"notes"`
}

type transitionRequest struct {
	Status        string `json:"status"`
	Reason        string `json:"reason,omitempty"`
	Mileage       *int64 `json:"mileage,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type availabilityResponse struct {
	VehicleID int32  `json:"vehicle_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Available bool   `json:"available"`
}

type listBookingsResponse struct {
	Bookings []domain.Booking `json:"bookings"`
	Total    int32            `json:"total"`
	Page     int32            `json:"page"`
	PageSize int32            `json:"page_size"`
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ValidationError("invalid request body"))
		return
	}

	booking, err := h.bookings.CreateBooking(r.Context(), service.CreateBookingRequest{
		RenterID:        claims.UserID,
		VehicleID:       req.VehicleID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		InsuranceFee:    req.InsuranceFee,
		ClientTotal:     req.ClientTotal,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		Notes:           req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	booking, err := h.bookings.GetBooking(r.Context(), claims.UserID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 20)
	status := r.URL.Query().Get("status")

	bookings, total, err := h.bookings.ListBookings(r.Context(), claims.UserID, status, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listBookingsResponse{
		Bookings: bookings,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *BookingHandler) Transition(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ValidationError("invalid request body"))
		return
	}
	if req.Status == "" {
		writeError(w, domain.ValidationError("status is required"))
		return
	}

	booking, err := h.bookings.Transition(r.Context(), id, service.TransitionInput{
		Target:        domain.BookingStatus(req.Status),
		ActorID:       claims.UserID,
		Reason:        req.Reason,
		Mileage:       req.Mileage,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ValidationError("invalid request body"))
		return
	}

	booking, err := h.bookings.Cancel(r.Context(), id, req.Reason, claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")

	available, err := h.bookings.CheckAvailability(r.Context(), vehicleID, start, end, 0)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{
		VehicleID: vehicleID,
		StartDate: start,
		EndDate:   end,
		Available: available,
	})
}

func (h *BookingHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")
	insuranceFee := queryInt64(r, "insurance_fee", 0)

	breakdown, err := h.bookings.ComputePricing(r.Context(), vehicleID, start, end, insuranceFee)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

// RegisterBookingRoutes wires the booking endpoints. Quote and
// availability are public; everything touching bookings requires auth.
func RegisterBookingRoutes(router *mux.Router, handler *BookingHandler, auth func(http.Handler) http.Handler) {
	router.HandleFunc("/api/v1/vehicles/{id}/availability", handler.CheckAvailability).Methods("GET")
	router.HandleFunc("/api/v1/vehicles/{id}/quote", handler.GetQuote).Methods("GET")

	authed := router.PathPrefix("/api/v1/bookings").Subrouter()
	authed.Use(auth)
	authed.HandleFunc("", handler.CreateBooking).Methods("POST")
	authed.HandleFunc("", handler.ListBookings).Methods("GET")
	authed.HandleFunc("/{id}", handler.GetBooking).Methods("GET")
	authed.HandleFunc("/{id}/status", handler.Transition).Methods("PATCH")
	authed.HandleFunc("/{id}/cancel", handler.CancelBooking).Methods("POST")
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id < 1 {
		return 0, domain.ValidationError("invalid %s %q", name, raw)
	}
	return int32(id), nil
}

func queryInt32(r *http.Request, name string, def int32) int32 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return def
	}
	return int32(v)
}

func queryInt64(r *http.Request, name string, def int64) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return v
}
