package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/md-rashed-zaman/barberbook/libs/httpx"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/catalog"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/guard"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
)

type SlotResolver interface {
	ListOccupiedSlots(ctx context.Context, professionalID, date string) availability.SlotSet
}

type Reserver interface {
	Reserve(ctx context.Context, c model.Candidate) guard.Result
}

type BookingHandler struct {
	catalog  *catalog.Catalog
	resolver SlotResolver
	guard    Reserver
	validate *validator.Validate
	logger   *slog.Logger
}

func NewBookingHandler(c *catalog.Catalog, resolver SlotResolver, g Reserver, validate *validator.Validate, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{catalog: c, resolver: resolver, guard: g, validate: validate, logger: logger}
}

type slotsResponse struct {
	ProfessionalID string           `json:"professional_id"`
	Date           string           `json:"date"`
	Occupied       []model.TimeSlot `json:"occupied_slots"`
	Available      []model.TimeSlot `json:"available_slots"`
}

type createBookingRequest struct {
	ProfessionalID string `json:"professional_id" validate:"required"`
	ServiceID      string `json:"service_id" validate:"required"`
	Date           string `json:"date" validate:"required,slotdate"`
	TimeSlot       string `json:"time_slot" validate:"required"`
	ClientName     string `json:"client_name" validate:"required,max=120"`
	ClientPhone    string `json:"client_phone" validate:"required,phone"`
}

type appointmentResponse struct {
	AppointmentID  string `json:"appointment_id"`
	ProfessionalID string `json:"professional_id"`
	ServiceID      string `json:"service_id"`
	Date           string `json:"date"`
	TimeSlot       string `json:"time_slot"`
	ClientName     string `json:"client_name"`
	CreatedAt      string `json:"created_at"`
}

func toAppointmentResponse(a model.Appointment) appointmentResponse {
	return appointmentResponse{
		AppointmentID:  a.ID,
		ProfessionalID: a.ProfessionalID,
		ServiceID:      a.ServiceID,
		Date:           a.Date,
		TimeSlot:       string(a.TimeSlot),
		ClientName:     a.ClientName,
		CreatedAt:      a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Slots lists occupied and available slots for one professional on one date.
func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	professionalID := strings.TrimSpace(r.URL.Query().Get("professional_id"))
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if professionalID == "" || date == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "professional_id and date are required")
		return
	}
	if _, ok := h.catalog.Professional(professionalID); !ok {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unknown professional")
		return
	}
	if !h.catalog.InWindow(date) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "date is not bookable")
		return
	}

	all := h.catalog.Slots()
	occupied := h.resolver.ListOccupiedSlots(r.Context(), professionalID, date)
	httpx.WriteJSON(w, http.StatusOK, slotsResponse{
		ProfessionalID: professionalID,
		Date:           date,
		Occupied:       occupied.Ordered(all),
		Available:      availability.AvailableSlots(all, occupied),
	})
}

// Create books a slot in one call, without a wizard session.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	req.ProfessionalID = strings.TrimSpace(req.ProfessionalID)
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.Date = strings.TrimSpace(req.Date)
	req.TimeSlot = strings.TrimSpace(req.TimeSlot)
	req.ClientName = strings.TrimSpace(req.ClientName)
	req.ClientPhone = strings.TrimSpace(req.ClientPhone)

	if err := h.validate.Struct(req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", validationMessage(err))
		return
	}
	if msg := h.checkCatalog(req); msg != "" {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", msg)
		return
	}

	res := h.guard.Reserve(r.Context(), model.Candidate{
		ProfessionalID: req.ProfessionalID,
		ServiceID:      req.ServiceID,
		ClientName:     req.ClientName,
		ClientPhone:    req.ClientPhone,
		Date:           req.Date,
		TimeSlot:       model.TimeSlot(req.TimeSlot),
	})
	switch res.Kind {
	case guard.Confirmed:
		httpx.WriteJSON(w, http.StatusCreated, toAppointmentResponse(res.Appointment))
	case guard.SlotTaken:
		httpx.WriteError(w, http.StatusConflict, res.Kind.String(), res.Message)
	default:
		httpx.WriteError(w, http.StatusServiceUnavailable, guard.StoreUnavailable.String(), res.Message)
	}
}

func (h *BookingHandler) checkCatalog(req createBookingRequest) string {
	if _, ok := h.catalog.Service(req.ServiceID); !ok {
		return "unknown service"
	}
	if _, ok := h.catalog.Professional(req.ProfessionalID); !ok {
		return "unknown professional"
	}
	if !h.catalog.InWindow(req.Date) {
		return "date is not bookable"
	}
	if !h.catalog.IsSlot(model.TimeSlot(req.TimeSlot)) {
		return "unknown time slot"
	}
	return ""
}
