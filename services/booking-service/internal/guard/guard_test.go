package guard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/storage"
)

type stubStore struct {
	exists     bool
	existsErr  error
	insertErr  error
	inserts    int
	existCalls int
}

func (s *stubStore) ListByProfessionalAndDate(context.Context, string, string) ([]model.TimeSlot, error) {
	return nil, nil
}

func (s *stubStore) ExistsByProfessionalDateSlot(context.Context, string, string, model.TimeSlot) (bool, error) {
	s.existCalls++
	return s.exists, s.existsErr
}

func (s *stubStore) InsertAppointment(_ context.Context, c model.Candidate) (model.Appointment, error) {
	s.inserts++
	if s.insertErr != nil {
		return model.Appointment{}, s.insertErr
	}
	a := c.Appointment()
	a.ID = "appt-1"
	return a, nil
}

type recordingInvalidator struct {
	mu    sync.Mutex
	pairs []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, professionalID, date string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pairs = append(r.pairs, professionalID+"|"+date)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func candidate() model.Candidate {
	return model.Candidate{
		ProfessionalID: "1",
		ServiceID:      "1",
		ClientName:     "João",
		ClientPhone:    "11999990000",
		Date:           "2024-02-15",
		TimeSlot:       "14:00",
	}
}

func TestReserveConfirmed(t *testing.T) {
	store := &stubStore{}
	inv := &recordingInvalidator{}
	res := New(store, inv, discardLogger(), nil, time.Second).Reserve(context.Background(), candidate())

	if res.Kind != Confirmed {
		t.Fatalf("expected Confirmed, got %s", res.Kind)
	}
	if res.Appointment.ID != "appt-1" || res.Message != "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if store.inserts != 1 {
		t.Fatalf("expected exactly one insert, got %d", store.inserts)
	}
	if len(inv.pairs) != 1 || inv.pairs[0] != "1|2024-02-15" {
		t.Fatalf("expected cache invalidation, got %v", inv.pairs)
	}
}

func TestReservePreCheckTaken(t *testing.T) {
	store := &stubStore{exists: true}
	inv := &recordingInvalidator{}
	res := New(store, inv, discardLogger(), nil, time.Second).Reserve(context.Background(), candidate())

	if res.Kind != SlotTaken || res.Message != MessageSlotTaken {
		t.Fatalf("expected SlotTaken, got %+v", res)
	}
	if store.inserts != 0 {
		t.Fatalf("expected no insert, got %d", store.inserts)
	}
	if len(inv.pairs) != 1 || inv.pairs[0] != "1|2024-02-15" {
		t.Fatalf("expected cache invalidation on conflict, got %v", inv.pairs)
	}
}

func TestReserveInsertConflict(t *testing.T) {
	store := &stubStore{insertErr: storage.ErrSlotTaken}
	inv := &recordingInvalidator{}
	res := New(store, inv, discardLogger(), nil, time.Second).Reserve(context.Background(), candidate())
	if res.Kind != SlotTaken || res.Message != MessageSlotTaken {
		t.Fatalf("expected SlotTaken, got %+v", res)
	}
	if len(inv.pairs) != 1 || inv.pairs[0] != "1|2024-02-15" {
		t.Fatalf("expected cache invalidation on insert conflict, got %v", inv.pairs)
	}
}

func TestReserveStoreUnavailable(t *testing.T) {
	cases := map[string]*stubStore{
		"pre-check fails": {existsErr: errors.New("timeout")},
		"insert fails":    {insertErr: errors.New("connection reset")},
	}
	for name, store := range cases {
		t.Run(name, func(t *testing.T) {
			inv := &recordingInvalidator{}
			res := New(store, inv, discardLogger(), nil, time.Second).Reserve(context.Background(), candidate())
			if res.Kind != StoreUnavailable || res.Message != MessageStoreUnavailable {
				t.Fatalf("expected StoreUnavailable, got %+v", res)
			}
			if len(inv.pairs) != 0 {
				t.Fatalf("no invalidation expected when the store failed, got %v", inv.pairs)
			}
		})
	}
}

func TestReserveConcurrentSameSlot(t *testing.T) {
	store := storage.NewMemoryStore()
	g := New(store, nil, discardLogger(), nil, time.Second)

	results := make([]Result, 2)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			c := candidate()
			c.ClientName = []string{"Ana", "Bruno"}[i]
			results[i] = g.Reserve(context.Background(), c)
		}(i)
	}
	close(start)
	wg.Wait()

	counts := map[Kind]int{}
	for _, r := range results {
		counts[r.Kind]++
	}
	if counts[Confirmed] != 1 || counts[SlotTaken] != 1 {
		t.Fatalf("expected one Confirmed and one SlotTaken, got %v", counts)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one stored appointment, got %d", store.Len())
	}
}

func TestKindString(t *testing.T) {
	if Confirmed.String() != "confirmed" || SlotTaken.String() != "slot_taken" || StoreUnavailable.String() != "store_unavailable" {
		t.Fatalf("unexpected kind names")
	}
	if Kind(0).String() != "unknown" {
		t.Fatalf("zero kind should be unknown")
	}
}
