package catalog

import (
	"fmt"
	"time"

	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
)

type Service struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Duration    string `json:"duration"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

type Professional struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Image     string `json:"image"`
	Bio       string `json:"bio"`
}

// Day is one bookable calendar date.
type Day struct {
	Date  string `json:"date"`
	Label string `json:"label"`
}

var defaultServices = []Service{
	{ID: "1", Name: "Corte Premium", Duration: "45min", Price: "R$ 120", Description: "Corte personalizado com acabamento impecável"},
	{ID: "2", Name: "Barba Clássica", Duration: "30min", Price: "R$ 80", Description: "Aparar e modelar com navalha e toalha quente"},
	{ID: "3", Name: "Combo Executivo", Duration: "75min", Price: "R$ 180", Description: "Corte + Barba + Tratamento facial"},
}

var defaultProfessionals = []Professional{
	{
		ID:        "1",
		Name:      "Ricardo Silva",
		Specialty: "Especialista em Navalha",
		Image:     "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=600&h=800&fit=crop",
		Bio:       "15 anos de experiência em técnicas clássicas",
	},
	{
		ID:        "2",
		Name:      "Carlos Mendes",
		Specialty: "Visagismo",
		Image:     "https://images.unsplash.com/photo-1500648767791-00dcc994a43e?w=600&h=800&fit=crop",
		Bio:       "Especialista em harmonização facial",
	},
	{
		ID:        "3",
		Name:      "André Costa",
		Specialty: "Master Barber",
		Image:     "https://images.unsplash.com/photo-1506794778202-cad84cf45f1d?w=600&h=800&fit=crop",
		Bio:       "Certificado internacional em barbering",
	},
}

// DefaultSlots is the canonical, ordered set of daily start times.
var DefaultSlots = []model.TimeSlot{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00", "17:00", "18:00"}

// Catalog is the immutable set of things a visitor can choose from.
type Catalog struct {
	services      []Service
	professionals []Professional
	slots         []model.TimeSlot
	days          func() []Day
}

// New returns a catalog whose bookable days are fixed.
func New(days []Day) *Catalog {
	fixed := append([]Day(nil), days...)
	return newCatalog(func() []Day { return fixed })
}

// NewRolling returns a catalog whose bookable days are the next n open days
// as seen from now() at the time of each call.
func NewRolling(now func() time.Time, n int, closed ...time.Weekday) *Catalog {
	return newCatalog(func() []Day { return RollingWindow(now(), n, closed...) })
}

func newCatalog(days func() []Day) *Catalog {
	return &Catalog{
		services:      defaultServices,
		professionals: defaultProfessionals,
		slots:         DefaultSlots,
		days:          days,
	}
}

func (c *Catalog) Services() []Service           { return append([]Service(nil), c.services...) }
func (c *Catalog) Professionals() []Professional { return append([]Professional(nil), c.professionals...) }
func (c *Catalog) Slots() []model.TimeSlot       { return append([]model.TimeSlot(nil), c.slots...) }
func (c *Catalog) Days() []Day                   { return append([]Day(nil), c.days()...) }

func (c *Catalog) Service(id string) (Service, bool) {
	for _, s := range c.services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

func (c *Catalog) Professional(id string) (Professional, bool) {
	for _, p := range c.professionals {
		if p.ID == id {
			return p, true
		}
	}
	return Professional{}, false
}

func (c *Catalog) IsSlot(slot model.TimeSlot) bool {
	for _, s := range c.slots {
		if s == slot {
			return true
		}
	}
	return false
}

func (c *Catalog) InWindow(date string) bool {
	for _, d := range c.days() {
		if d.Date == date {
			return true
		}
	}
	return false
}

// ParseDays validates an explicit list of YYYY-MM-DD dates.
func ParseDays(dates []string) ([]Day, error) {
	days := make([]Day, 0, len(dates))
	seen := make(map[string]struct{}, len(dates))
	for _, raw := range dates {
		d, err := time.Parse(model.DateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid booking date %q: %w", raw, err)
		}
		if _, dup := seen[raw]; dup {
			continue
		}
		seen[raw] = struct{}{}
		days = append(days, Day{Date: raw, Label: Label(d)})
	}
	return days, nil
}

// RollingWindow returns the next n open days starting the day after now.
func RollingWindow(now time.Time, n int, closed ...time.Weekday) []Day {
	if n <= 0 {
		return nil
	}
	isClosed := func(wd time.Weekday) bool {
		for _, c := range closed {
			if c == wd {
				return true
			}
		}
		return false
	}

	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	days := make([]Day, 0, n)
	// Cap the scan so a fully closed week cannot loop forever.
	for i := 1; len(days) < n && i <= n*7; i++ {
		d := start.AddDate(0, 0, i)
		if isClosed(d.Weekday()) {
			continue
		}
		days = append(days, Day{Date: d.Format(model.DateLayout), Label: Label(d)})
	}
	return days
}

func Label(d time.Time) string {
	return d.Format("Mon, 02 Jan")
}
