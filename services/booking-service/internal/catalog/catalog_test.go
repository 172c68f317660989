package catalog

import (
	"testing"
	"time"
)

func TestRollingWindowSkipsClosedDays(t *testing.T) {
	// Wednesday 14 Feb 2024.
	now := time.Date(2024, 2, 14, 20, 30, 0, 0, time.UTC)
	days := RollingWindow(now, 4, time.Sunday)

	want := []string{"2024-02-15", "2024-02-16", "2024-02-17", "2024-02-19"}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %d", len(want), len(days))
	}
	for i, d := range days {
		if d.Date != want[i] {
			t.Fatalf("day %d: expected %s, got %s", i, want[i], d.Date)
		}
	}
	if days[0].Label != "Thu, 15 Feb" {
		t.Fatalf("unexpected label %q", days[0].Label)
	}
}

func TestRollingWindowAllClosed(t *testing.T) {
	now := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	all := []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}
	if days := RollingWindow(now, 3, all...); len(days) != 0 {
		t.Fatalf("expected no days, got %v", days)
	}
}

func TestParseDays(t *testing.T) {
	days, err := ParseDays([]string{"2024-02-15", "2024-02-16", "2024-02-15"})
	if err != nil {
		t.Fatalf("ParseDays: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected duplicates dropped, got %v", days)
	}
	if _, err := ParseDays([]string{"15/02/2024"}); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}

func TestLookups(t *testing.T) {
	c := New([]Day{{Date: "2024-02-15", Label: "Thu, 15 Feb"}})

	if s, ok := c.Service("3"); !ok || s.Name != "Combo Executivo" {
		t.Fatalf("unexpected service lookup: %v %v", s, ok)
	}
	if _, ok := c.Service("9"); ok {
		t.Fatalf("unknown service should not resolve")
	}
	if p, ok := c.Professional("1"); !ok || p.Name != "Ricardo Silva" {
		t.Fatalf("unexpected professional lookup: %v %v", p, ok)
	}
	if !c.IsSlot("14:00") || c.IsSlot("12:00") {
		t.Fatalf("slot membership wrong")
	}
	if !c.InWindow("2024-02-15") || c.InWindow("2024-02-18") {
		t.Fatalf("window membership wrong")
	}

	slots := c.Slots()
	slots[0] = "00:00"
	if c.Slots()[0] != "09:00" {
		t.Fatalf("Slots must return a copy")
	}
}

func TestNewRollingFollowsClock(t *testing.T) {
	now := time.Date(2024, 2, 14, 10, 0, 0, 0, time.UTC)
	c := NewRolling(func() time.Time { return now }, 2, time.Sunday)

	if !c.InWindow("2024-02-15") || c.InWindow("2024-02-19") {
		t.Fatalf("unexpected window on the 14th: %v", c.Days())
	}
	now = now.AddDate(0, 0, 3)
	days := c.Days()
	if len(days) != 2 || days[0].Date != "2024-02-19" || days[1].Date != "2024-02-20" {
		t.Fatalf("expected window to roll past Sunday, got %v", days)
	}
}
