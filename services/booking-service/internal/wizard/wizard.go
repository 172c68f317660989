package wizard

import (
	"context"
	"strings"
	"sync"

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

// draft only ever holds fields captured before the current step.
type draft struct {
	service      *catalog.Service
	professional *catalog.Professional
	date         string
	slot         model.TimeSlot
	clientName   string
	clientPhone  string
}

// Wizard drives one visitor's booking. It is safe for concurrent use, but
// slot lookups and reservations run outside the lock; a lookup result is
// applied only if no newer lookup or navigation happened meanwhile.
type Wizard struct {
	catalog  *catalog.Catalog
	resolver SlotResolver
	reserver Reserver

	mu          sync.Mutex
	step        Step
	draft       draft
	occupied    availability.SlotSet
	loading     bool
	submitting  bool
	generation  uint64
	lastKind    guard.Kind
	lastMessage string
	appointment *model.Appointment
}

func New(c *catalog.Catalog, resolver SlotResolver, reserver Reserver) *Wizard {
	return &Wizard{catalog: c, resolver: resolver, reserver: reserver}
}

func (w *Wizard) ChooseService(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != SelectingService {
		return ErrInvalidStep
	}
	svc, ok := w.catalog.Service(id)
	if !ok {
		return ErrUnknownService
	}
	w.draft = draft{service: &svc}
	w.step = SelectingProfessional
	return nil
}

func (w *Wizard) ChooseProfessional(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != SelectingProfessional {
		return ErrInvalidStep
	}
	p, ok := w.catalog.Professional(id)
	if !ok {
		return ErrUnknownProfessional
	}
	w.draft = draft{service: w.draft.service, professional: &p}
	w.step = SelectingDateTime
	return nil
}

// ChooseDate records date, clears any chosen slot and loads the occupied slots
// for (professional, date). It blocks until the lookup returns.
func (w *Wizard) ChooseDate(ctx context.Context, date string) error {
	w.mu.Lock()
	if w.step != SelectingDateTime {
		w.mu.Unlock()
		return ErrInvalidStep
	}
	if !w.catalog.InWindow(date) {
		w.mu.Unlock()
		return ErrDateOutsideWindow
	}
	w.draft.date = date
	w.draft.slot = ""
	w.occupied = nil
	w.clearErrorLocked()
	professionalID, gen := w.beginLookupLocked()
	w.mu.Unlock()

	w.lookup(ctx, professionalID, date, gen)
	return nil
}

// ChooseTime picks a slot on the chosen date. From EnteringContact it re-picks
// the slot, which is how a visitor recovers from a conflict. It is rejected
// while the occupied slots for the date are loading.
func (w *Wizard) ChooseTime(slot model.TimeSlot) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != SelectingDateTime && w.step != EnteringContact {
		return ErrInvalidStep
	}
	if w.submitting {
		return ErrSubmitting
	}
	if w.draft.date == "" {
		return ErrDateRequired
	}
	if w.loading {
		return ErrSlotsLoading
	}
	if !w.catalog.IsSlot(slot) {
		return ErrUnknownSlot
	}
	if w.occupied.Has(slot) {
		return ErrSlotOccupied
	}
	w.draft.slot = slot
	w.draft.clientName, w.draft.clientPhone = "", ""
	w.clearErrorLocked()
	w.step = EnteringContact
	return nil
}

// Submit validates the contact fields and asks the guard to reserve the slot.
// A returned error means the guard was not called.
func (w *Wizard) Submit(ctx context.Context, name, phone string) (guard.Result, error) {
	name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)

	w.mu.Lock()
	if w.step != EnteringContact {
		w.mu.Unlock()
		return guard.Result{}, ErrInvalidStep
	}
	if w.submitting {
		w.mu.Unlock()
		return guard.Result{}, ErrSubmitting
	}
	if w.draft.slot == "" {
		w.mu.Unlock()
		return guard.Result{}, ErrTimeRequired
	}
	if name == "" || phone == "" {
		w.mu.Unlock()
		return guard.Result{}, ErrContactRequired
	}
	c := model.Candidate{
		ProfessionalID: w.draft.professional.ID,
		ServiceID:      w.draft.service.ID,
		ClientName:     name,
		ClientPhone:    phone,
		Date:           w.draft.date,
		TimeSlot:       w.draft.slot,
	}
	w.submitting = true
	w.clearErrorLocked()
	startGen := w.generation
	w.mu.Unlock()

	res := w.reserver.Reserve(ctx, c)

	w.mu.Lock()
	w.submitting = false
	if w.generation != startGen || w.step != EnteringContact {
		// Reset while the reservation was in flight.
		w.mu.Unlock()
		return res, nil
	}
	if res.Kind == guard.Confirmed {
		appt := res.Appointment
		w.appointment = &appt
		w.draft.clientName, w.draft.clientPhone = name, phone
		w.step = Confirmed
		w.mu.Unlock()
		return res, nil
	}
	w.lastKind, w.lastMessage = res.Kind, res.Message
	if res.Kind == guard.SlotTaken {
		w.draft.slot = ""
	}
	professionalID, gen := w.beginLookupLocked()
	date := w.draft.date
	w.mu.Unlock()

	w.lookup(ctx, professionalID, date, gen)
	return res, nil
}

// Back returns to the previous step, dropping every field captured at or after it,
// except that the date survives a return from EnteringContact to SelectingDateTime.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return ErrSubmitting
	}
	switch w.step {
	case SelectingService:
		return ErrAtFirstStep
	case Confirmed:
		return ErrInvalidStep
	case SelectingProfessional:
		w.draft = draft{}
		w.step = SelectingService
	case SelectingDateTime:
		w.draft = draft{service: w.draft.service}
		w.occupied = nil
		w.loading = false
		w.generation++
		w.step = SelectingProfessional
	case EnteringContact:
		w.draft = draft{service: w.draft.service, professional: w.draft.professional, date: w.draft.date}
		w.step = SelectingDateTime
	}
	w.clearErrorLocked()
	return nil
}

// Reset discards everything and returns to SelectingService.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.step = SelectingService
	w.draft = draft{}
	w.occupied = nil
	w.loading = false
	w.appointment = nil
	w.generation++
	w.clearErrorLocked()
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) beginLookupLocked() (professionalID string, gen uint64) {
	w.generation++
	w.loading = true
	return w.draft.professional.ID, w.generation
}

func (w *Wizard) lookup(ctx context.Context, professionalID, date string, gen uint64) {
	occupied := w.resolver.ListOccupiedSlots(ctx, professionalID, date)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.generation {
		return
	}
	w.occupied = occupied
	w.loading = false
}

func (w *Wizard) clearErrorLocked() {
	w.lastKind, w.lastMessage = 0, ""
}
