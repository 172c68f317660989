package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
)

// ErrSlotTaken is returned by InsertAppointment when another appointment already
// holds the same (professional, date, time slot).
var ErrSlotTaken = errors.New("time slot already booked")

// Store is the persistence contract for appointments.
type Store interface {
	// ListByProfessionalAndDate returns the distinct booked slots for the pair.
	ListByProfessionalAndDate(ctx context.Context, professionalID, date string) ([]model.TimeSlot, error)
	ExistsByProfessionalDateSlot(ctx context.Context, professionalID, date string, slot model.TimeSlot) (bool, error)
	// InsertAppointment stores c only if its slot is still free.
	InsertAppointment(ctx context.Context, c model.Candidate) (model.Appointment, error)
}

// IsUniqueViolation reports a rejected write on a unique constraint.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
