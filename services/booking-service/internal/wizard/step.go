package wizard

import "errors"

// Step is a position in the linear booking flow.
type Step int

const (
	SelectingService Step = iota
	SelectingProfessional
	SelectingDateTime
	EnteringContact
	Confirmed
)

func (s Step) String() string {
	switch s {
	case SelectingService:
		return "service"
	case SelectingProfessional:
		return "professional"
	case SelectingDateTime:
		return "datetime"
	case EnteringContact:
		return "contact"
	case Confirmed:
		return "confirmation"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidStep         = errors.New("action not allowed at the current step")
	ErrAtFirstStep         = errors.New("already at the first step")
	ErrUnknownService      = errors.New("unknown service")
	ErrUnknownProfessional = errors.New("unknown professional")
	ErrDateOutsideWindow   = errors.New("date is not bookable")
	ErrDateRequired        = errors.New("choose a date first")
	ErrUnknownSlot         = errors.New("unknown time slot")
	ErrSlotOccupied        = errors.New("time slot is already booked")
	ErrSlotsLoading        = errors.New("occupied slots are still loading")
	ErrTimeRequired        = errors.New("choose a time first")
	ErrContactRequired     = errors.New("name and phone are required")
	ErrSubmitting          = errors.New("a booking is already being submitted")
)
