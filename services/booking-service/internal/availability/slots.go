package availability

import "github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"

// SlotSet is an unordered set of time slots.
type SlotSet map[model.TimeSlot]struct{}

func NewSlotSet(slots ...model.TimeSlot) SlotSet {
	s := make(SlotSet, len(slots))
	for _, slot := range slots {
		s[slot] = struct{}{}
	}
	return s
}

func (s SlotSet) Has(slot model.TimeSlot) bool {
	_, ok := s[slot]
	return ok
}

// Ordered returns the members of s that appear in all, in the order of all.
func (s SlotSet) Ordered(all []model.TimeSlot) []model.TimeSlot {
	out := make([]model.TimeSlot, 0, len(s))
	for _, slot := range all {
		if s.Has(slot) {
			out = append(out, slot)
		}
	}
	return out
}

// AvailableSlots returns every slot of all that is not occupied, keeping the order of all.
// Occupied values outside all are ignored.
func AvailableSlots(all []model.TimeSlot, occupied SlotSet) []model.TimeSlot {
	out := make([]model.TimeSlot, 0, len(all))
	for _, slot := range all {
		if !occupied.Has(slot) {
			out = append(out, slot)
		}
	}
	return out
}
