package model

import "time"

// DateLayout is the calendar-day format used for appointment dates everywhere.
const DateLayout = "2006-01-02"

// TimeSlot is a wall-clock start time such as "09:00".
type TimeSlot string

type Appointment struct {
	ID             string
	ProfessionalID string
	ServiceID      string
	ClientName     string
	ClientPhone    string
	Date           string
	TimeSlot       TimeSlot
	CreatedAt      time.Time
}

// Candidate is an appointment that has not been stored yet.
type Candidate struct {
	ProfessionalID string
	ServiceID      string
	ClientName     string
	ClientPhone    string
	Date           string
	TimeSlot       TimeSlot
}

func (c Candidate) Appointment() Appointment {
	return Appointment{
		ProfessionalID: c.ProfessionalID,
		ServiceID:      c.ServiceID,
		ClientName:     c.ClientName,
		ClientPhone:    c.ClientPhone,
		Date:           c.Date,
		TimeSlot:       c.TimeSlot,
	}
}
