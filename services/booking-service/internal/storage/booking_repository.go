package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/outbox"
)

// EventBooked is published once per stored appointment.
const EventBooked = "booking.appointment.booked.v1"

// Querier is the subset of *pgxpool.Pool the repository needs.
type Querier interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EventWriter appends a domain event inside the caller's transaction.
type EventWriter interface {
	Insert(ctx context.Context, tx pgx.Tx, evt outbox.Event) error
}

type BookingRepository struct {
	db     Querier
	events EventWriter
}

// NewBookingRepository returns a Postgres-backed Store. events may be nil.
func NewBookingRepository(db Querier, events EventWriter) *BookingRepository {
	return &BookingRepository{db: db, events: events}
}

func (r *BookingRepository) ListByProfessionalAndDate(ctx context.Context, professionalID, date string) ([]model.TimeSlot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT time_slot
		FROM appointments
		WHERE professional_id = $1 AND appointment_date = $2::date
		ORDER BY time_slot
	`, professionalID, date)
	if err != nil {
		return nil, fmt.Errorf("list booked slots: %w", err)
	}
	defer rows.Close()

	var slots []model.TimeSlot
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, fmt.Errorf("scan booked slot: %w", err)
		}
		slots = append(slots, model.TimeSlot(slot))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list booked slots: %w", err)
	}
	return slots, nil
}

func (r *BookingRepository) ExistsByProfessionalDateSlot(ctx context.Context, professionalID, date string, slot model.TimeSlot) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE professional_id = $1 AND appointment_date = $2::date AND time_slot = $3
		)
	`, professionalID, date, string(slot)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slot: %w", err)
	}
	return exists, nil
}

// InsertAppointment writes the appointment and its booked event in one transaction.
// The insert is a no-op when the unique slot key already exists, which surfaces as ErrSlotTaken.
func (r *BookingRepository) InsertAppointment(ctx context.Context, c model.Candidate) (model.Appointment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return model.Appointment{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt := c.Appointment()
	err = tx.QueryRow(ctx, `
		INSERT INTO appointments
			(professional_id, service_id, client_name, client_phone, appointment_date, time_slot)
		VALUES ($1, $2, $3, $4, $5::date, $6)
		ON CONFLICT ON CONSTRAINT appointments_slot_unique DO NOTHING
		RETURNING id::text, created_at
	`, c.ProfessionalID, c.ServiceID, c.ClientName, c.ClientPhone, c.Date, string(c.TimeSlot)).Scan(&appt.ID, &appt.CreatedAt)
	if err != nil {
		if IsNotFound(err) || IsUniqueViolation(err) {
			return model.Appointment{}, ErrSlotTaken
		}
		return model.Appointment{}, fmt.Errorf("insert appointment: %w", err)
	}

	if r.events != nil {
		payload, err := bookedPayload(appt)
		if err != nil {
			return model.Appointment{}, err
		}
		if err := r.events.Insert(ctx, tx, outbox.Event{
			AggregateType: "appointment",
			AggregateID:   appt.ID,
			EventType:     EventBooked,
			Payload:       payload,
		}); err != nil {
			return model.Appointment{}, fmt.Errorf("write outbox event: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, fmt.Errorf("commit: %w", err)
	}
	return appt, nil
}

func bookedPayload(a model.Appointment) ([]byte, error) {
	payload, err := json.Marshal(map[string]any{
		"appointment_id":  a.ID,
		"professional_id": a.ProfessionalID,
		"service_id":      a.ServiceID,
		"client_name":     a.ClientName,
		"client_phone":    a.ClientPhone,
		"date":            a.Date,
		"time_slot":       string(a.TimeSlot),
		"created_at":      a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
	if err != nil {
		return nil, fmt.Errorf("build event payload: %w", err)
	}
	return payload, nil
}
