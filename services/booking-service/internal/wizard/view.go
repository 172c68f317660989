package wizard

import (
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/catalog"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
)

// View is a read-only snapshot of a wizard for rendering.
type View struct {
	Step         string                `json:"step"`
	Service      *catalog.Service      `json:"service,omitempty"`
	Professional *catalog.Professional `json:"professional,omitempty"`
	Date         string                `json:"date,omitempty"`
	TimeSlot     model.TimeSlot        `json:"time_slot,omitempty"`
	ClientName   string                `json:"client_name,omitempty"`
	ClientPhone  string                `json:"client_phone,omitempty"`

	Occupied     []model.TimeSlot `json:"occupied_slots"`
	Available    []model.TimeSlot `json:"available_slots"`
	LoadingSlots bool             `json:"loading_slots"`
	Submitting   bool             `json:"submitting"`

	Error         string `json:"error,omitempty"`
	ErrorKind     string `json:"error_kind,omitempty"`
	AppointmentID string `json:"appointment_id,omitempty"`
}

func (w *Wizard) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{
		Step:         w.step.String(),
		Service:      w.draft.service,
		Professional: w.draft.professional,
		Date:         w.draft.date,
		TimeSlot:     w.draft.slot,
		ClientName:   w.draft.clientName,
		ClientPhone:  w.draft.clientPhone,
		Occupied:     []model.TimeSlot{},
		Available:    []model.TimeSlot{},
		LoadingSlots: w.loading,
		Submitting:   w.submitting,
		Error:        w.lastMessage,
	}
	if w.lastKind != 0 {
		v.ErrorKind = w.lastKind.String()
	}
	if w.appointment != nil {
		v.AppointmentID = w.appointment.ID
	}
	if w.draft.date != "" && !w.loading {
		all := w.catalog.Slots()
		v.Occupied = w.occupied.Ordered(all)
		v.Available = availability.AvailableSlots(all, w.occupied)
	}
	return v
}
