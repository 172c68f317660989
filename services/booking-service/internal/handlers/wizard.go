package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/md-rashed-zaman/barberbook/libs/httpx"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/guard"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/session"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/wizard"
)

type WizardHandler struct {
	sessions *session.Registry
	validate *validator.Validate
	logger   *slog.Logger
}

func NewWizardHandler(sessions *session.Registry, validate *validator.Validate, logger *slog.Logger) *WizardHandler {
	return &WizardHandler{sessions: sessions, validate: validate, logger: logger}
}

type wizardResponse struct {
	SessionID string `json:"session_id"`
	wizard.View
}

type choiceRequest struct {
	ID string `json:"id" validate:"required"`
}

type dateRequest struct {
	Date string `json:"date" validate:"required,slotdate"`
}

type timeRequest struct {
	TimeSlot string `json:"time_slot" validate:"required"`
}

type contactRequest struct {
	ClientName  string `json:"client_name" validate:"required,max=120"`
	ClientPhone string `json:"client_phone" validate:"required,phone"`
}

// Create starts a new wizard session.
func (h *WizardHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	id, wz := h.sessions.Create()
	httpx.WriteJSON(w, http.StatusCreated, wizardResponse{SessionID: id, View: wz.View()})
}

func (h *WizardHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	id := r.PathValue("id")
	wz, ok := h.sessions.Get(id)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "session_not_found", "wizard session not found or expired")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, wizardResponse{SessionID: id, View: wz.View()})
}

// Action applies one wizard transition named by the {action} path segment.
func (h *WizardHandler) Action(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	id := r.PathValue("id")
	wz, ok := h.sessions.Get(id)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "session_not_found", "wizard session not found or expired")
		return
	}

	status := http.StatusOK
	var err error
	switch action := r.PathValue("action"); action {
	case "service":
		var req choiceRequest
		if !h.decode(w, r, &req) {
			return
		}
		err = wz.ChooseService(req.ID)
	case "professional":
		var req choiceRequest
		if !h.decode(w, r, &req) {
			return
		}
		err = wz.ChooseProfessional(req.ID)
	case "date":
		var req dateRequest
		if !h.decode(w, r, &req) {
			return
		}
		err = wz.ChooseDate(r.Context(), req.Date)
	case "time":
		var req timeRequest
		if !h.decode(w, r, &req) {
			return
		}
		err = wz.ChooseTime(model.TimeSlot(req.TimeSlot))
	case "contact":
		var req contactRequest
		if !h.decode(w, r, &req) {
			return
		}
		var res guard.Result
		res, err = wz.Submit(r.Context(), req.ClientName, req.ClientPhone)
		if err == nil {
			switch res.Kind {
			case guard.SlotTaken:
				status = http.StatusConflict
			case guard.StoreUnavailable:
				status = http.StatusServiceUnavailable
			}
		}
	case "back":
		err = wz.Back()
	case "reset":
		wz.Reset()
	default:
		httpx.WriteError(w, http.StatusNotFound, "unknown_action", "unknown wizard action")
		return
	}

	if err != nil {
		code, errStatus := wizardErrorCode(err)
		httpx.WriteError(w, errStatus, code, err.Error())
		return
	}
	httpx.WriteJSON(w, status, wizardResponse{SessionID: id, View: wz.View()})
}

// decode reads and validates a JSON body, writing the 400 response itself on failure.
func (h *WizardHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return false
	}
	trimStrings(dst)
	if err := h.validate.Struct(dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", validationMessage(err))
		return false
	}
	return true
}

func trimStrings(dst any) {
	switch v := dst.(type) {
	case *choiceRequest:
		v.ID = strings.TrimSpace(v.ID)
	case *dateRequest:
		v.Date = strings.TrimSpace(v.Date)
	case *timeRequest:
		v.TimeSlot = strings.TrimSpace(v.TimeSlot)
	case *contactRequest:
		v.ClientName = strings.TrimSpace(v.ClientName)
		v.ClientPhone = strings.TrimSpace(v.ClientPhone)
	}
}

func wizardErrorCode(err error) (string, int) {
	switch {
	case errors.Is(err, wizard.ErrInvalidStep), errors.Is(err, wizard.ErrAtFirstStep), errors.Is(err, wizard.ErrSubmitting):
		return "invalid_step", http.StatusConflict
	case errors.Is(err, wizard.ErrSlotOccupied):
		return "slot_occupied", http.StatusConflict
	case errors.Is(err, wizard.ErrSlotsLoading):
		return "slots_loading", http.StatusConflict
	default:
		return "validation_failed", http.StatusBadRequest
	}
}
