package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
)

type slotKey struct {
	professionalID string
	date           string
	slot           model.TimeSlot
}

// MemoryStore keeps appointments in process. It is used when no DATABASE_URL is set and in tests.
type MemoryStore struct {
	mu           sync.RWMutex
	appointments map[slotKey]model.Appointment
	now          func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		appointments: map[slotKey]model.Appointment{},
		now:          time.Now,
	}
}

func (s *MemoryStore) ListByProfessionalAndDate(ctx context.Context, professionalID, date string) ([]model.TimeSlot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var slots []model.TimeSlot
	for k := range s.appointments {
		if k.professionalID == professionalID && k.date == date {
			slots = append(slots, k.slot)
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
	return slots, nil
}

func (s *MemoryStore) ExistsByProfessionalDateSlot(ctx context.Context, professionalID, date string, slot model.TimeSlot) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.appointments[slotKey{professionalID, date, slot}]
	return ok, nil
}

func (s *MemoryStore) InsertAppointment(ctx context.Context, c model.Candidate) (model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return model.Appointment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := slotKey{c.ProfessionalID, c.Date, c.TimeSlot}
	if _, taken := s.appointments[key]; taken {
		return model.Appointment{}, ErrSlotTaken
	}
	appt := c.Appointment()
	appt.ID = uuid.NewString()
	appt.CreatedAt = s.now().UTC()
	s.appointments[key] = appt
	return appt, nil
}

// Len reports how many appointments are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.appointments)
}
