package domain

import (
	"time"

	"github.com/m04kA/SMC-SlotExchangeService/pkg/types"
)

// PreferenceEntry is one declared preferred window, recurring by weekday or pinned to a date
type PreferenceEntry struct {
	DayOfWeek    time.Weekday    `json:"dayOfWeek"`
	SpecificDate *time.Time      `json:"specificDate,omitempty"`
	StartTime    types.TimeOfDay `json:"startTime"`
	EndTime      types.TimeOfDay `json:"endTime"`
	Priority     int             `json:"priority"`
}

// AppliesTo reports whether the entry covers date
func (p PreferenceEntry) AppliesTo(date time.Time) bool {
	if p.SpecificDate != nil {
		return SameDate(*p.SpecificDate, date)
	}
	return p.DayOfWeek == date.Weekday()
}

// Interval returns the time-of-day range of the entry
func (p PreferenceEntry) Interval() Interval {
	return Interval{Start: p.StartTime, End: p.EndTime}
}

// CarryOverReason explains why minutes were carried over
type CarryOverReason string

const (
	CarryOverYield      CarryOverReason = "yield"
	CarryOverLostRandom CarryOverReason = "lost_random_draw"
)

// CarryOverEntry records minutes owed from one negotiation
type CarryOverEntry struct {
	NegotiationID string          `json:"negotiationId"`
	Minutes       int             `json:"minutes"`
	Week          time.Time       `json:"week"`
	Reason        CarryOverReason `json:"reason"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Hours returns the carried time in hours
func (e CarryOverEntry) Hours() float64 {
	return float64(e.Minutes) / 60
}

// Member is a room participant with room-scoped scheduling state
type Member struct {
	UserID           string            `json:"userId"`
	DefaultSchedule  []PreferenceEntry `json:"defaultSchedule"`
	CarryOver        int               `json:"carryOver"`
	CarryOverHistory []CarryOverEntry  `json:"carryOverHistory"`
	JoinedAt         time.Time         `json:"joinedAt"`
}

// AddCarryOver credits minutes once per negotiation. Returns false if the negotiation was already credited.
func (m *Member) AddCarryOver(entry CarryOverEntry) bool {
	for _, h := range m.CarryOverHistory {
		if h.NegotiationID == entry.NegotiationID {
			return false
		}
	}
	m.CarryOverHistory = append(m.CarryOverHistory, entry)
	m.CarryOver += entry.Minutes
	return true
}

// CarryOverForWeek sums minutes carried over in the week starting at weekStart
func (m *Member) CarryOverForWeek(weekStart time.Time) int {
	total := 0
	for _, h := range m.CarryOverHistory {
		if SameDate(h.Week, weekStart) {
			total += h.Minutes
		}
	}
	return total
}

// HasPreferenceOn reports whether any entry with at least minPriority covers date
func (m *Member) HasPreferenceOn(date time.Time, minPriority int) bool {
	for _, p := range m.DefaultSchedule {
		if p.Priority >= minPriority && p.AppliesTo(date) {
			return true
		}
	}
	return false
}
