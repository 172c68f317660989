package outbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/md-rashed-zaman/barberbook/libs/kafkax"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/segmentio/kafka-go"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var recordColumns = []string{"id", "event_id", "aggregate_type", "aggregate_id", "event_type", "payload", "traceparent", "tracestate", "created_at"}

func TestRepositoryInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs("appointment", "appt-1", "booking.appointment.booked.v1", []byte(`{"a":1}`), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := mock.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	err = NewRepository().Insert(ctx, tx, Event{
		AggregateType: "appointment",
		AggregateID:   "appt-1",
		EventType:     "booking.appointment.booked.v1",
		Payload:       []byte(`{"a":1}`),
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPublishBatchWritesAndMarks(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM outbox_events").
		WithArgs(10).
		WillReturnRows(pgxmock.NewRows(recordColumns).
			AddRow(int64(7), "evt-7", "appointment", "appt-7", "booking.appointment.booked.v1", []byte(`{"appointment_id":"appt-7"}`), "", "", time.Now()))
	mock.ExpectExec("UPDATE outbox_events").
		WithArgs([]int64{7}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	p := NewPublisher(mock, NewRepository(), testLogger(), PublisherConfig{Brokers: []string{"kafka:9092"}, BatchSize: 10})
	w := &recordingWriter{}
	n, err := p.PublishBatch(context.Background(), w)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if n != 1 || len(w.msgs) != 1 {
		t.Fatalf("expected one message, got n=%d msgs=%d", n, len(w.msgs))
	}
	msg := w.msgs[0]
	if msg.Topic != "booking.appointment.booked.v1" || string(msg.Key) != "appt-7" {
		t.Fatalf("unexpected message routing: topic=%s key=%s", msg.Topic, msg.Key)
	}
	if kafkax.HeaderValue(msg.Headers, kafkax.HeaderEventID) != "evt-7" {
		t.Fatalf("missing event_id header")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPublishBatchWriteFailureLeavesRowsUnpublished(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM outbox_events").
		WithArgs(50).
		WillReturnRows(pgxmock.NewRows(recordColumns).
			AddRow(int64(1), "evt-1", "appointment", "appt-1", "booking.appointment.booked.v1", []byte(`{}`), "", "", time.Now()))
	mock.ExpectRollback()

	p := NewPublisher(mock, NewRepository(), testLogger(), PublisherConfig{Brokers: []string{"kafka:9092"}})
	_, err = p.PublishBatch(context.Background(), &recordingWriter{err: errors.New("broker down")})
	if err == nil {
		t.Fatalf("expected write error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPublishBatchEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM outbox_events").WithArgs(50).WillReturnRows(pgxmock.NewRows(recordColumns))
	mock.ExpectCommit()

	p := NewPublisher(mock, NewRepository(), testLogger(), PublisherConfig{})
	n, err := p.PublishBatch(context.Background(), &recordingWriter{})
	if err != nil || n != 0 {
		t.Fatalf("expected empty batch, got n=%d err=%v", n, err)
	}
}

func TestRunWithoutBrokersReturns(t *testing.T) {
	p := NewPublisher(nil, NewRepository(), testLogger(), PublisherConfig{})
	done := make(chan struct{})
	go func() {
		p.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run should return immediately without brokers")
	}
}
