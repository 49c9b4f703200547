package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SlotExchangeService/pkg/types"
)

// SlotStatus represents how a slot came to be assigned
type SlotStatus string

const (
	SlotStatusConfirmed  SlotStatus = "confirmed"
	SlotStatusExchanged  SlotStatus = "exchanged"
	SlotStatusNegotiated SlotStatus = "negotiated"
)

// TimeSlot is one atomic 30-minute single-user reservation
type TimeSlot struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Date      time.Time       `json:"date"`
	Day       time.Weekday    `json:"day"`
	StartTime types.TimeOfDay `json:"startTime"`
	EndTime   types.TimeOfDay `json:"endTime"`
	Status    SlotStatus      `json:"status"`
	Subject   string          `json:"subject,omitempty"`
}

// Interval returns the time-of-day range of the slot
func (s TimeSlot) Interval() Interval {
	return Interval{Start: s.StartTime, End: s.EndTime}
}

// Placement returns the calendar position of the slot
func (s TimeSlot) Placement() Placement {
	return NewPlacement(s.Date, s.Interval())
}

// Overlaps reports whether two slots share the date and at least one minute
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	return SameDate(s.Date, other.Date) && s.Interval().Overlaps(other.Interval())
}

// OverlapsPlacement reports whether the slot intersects p
func (s TimeSlot) OverlapsPlacement(p Placement) bool {
	return SameDate(s.Date, p.Date) && s.Interval().Overlaps(p.Interval())
}

// IsAtom reports whether the slot is exactly one grid-aligned unit
func (s TimeSlot) IsAtom() bool {
	return s.Interval().IsAligned() && s.Interval().Minutes() == SlotMinutes
}

// Atomize splits a grid-aligned placement into 30-minute slots for userID
func Atomize(userID string, p Placement, status SlotStatus, subject string) []TimeSlot {
	date := DateOnly(p.Date)
	slots := make([]TimeSlot, 0, p.Minutes()/SlotMinutes)
	for start := p.StartTime; start.AddMinutes(SlotMinutes) <= p.EndTime; start = start.AddMinutes(SlotMinutes) {
		slots = append(slots, TimeSlot{
			ID:        uuid.NewString(),
			UserID:    userID,
			Date:      date,
			Day:       date.Weekday(),
			StartTime: start,
			EndTime:   start.AddMinutes(SlotMinutes),
			Status:    status,
			Subject:   subject,
		})
	}
	return slots
}

// SortSlots orders slots by date, then start time, then user
func SortSlots(slots []TimeSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if !SameDate(slots[i].Date, slots[j].Date) {
			return slots[i].Date.Before(slots[j].Date)
		}
		if slots[i].StartTime != slots[j].StartTime {
			return slots[i].StartTime < slots[j].StartTime
		}
		return slots[i].UserID < slots[j].UserID
	})
}

// SlotIDs returns the ids of slots in order
func SlotIDs(slots []TimeSlot) []string {
	ids := make([]string, 0, len(slots))
	for _, s := range slots {
		ids = append(ids, s.ID)
	}
	return ids
}

// SlotBlock is a contiguous run of one user's slots on one date
type SlotBlock struct {
	UserID    string
	Placement Placement
	Slots     []TimeSlot
}

// GroupBlocks merges each user's adjacent slots into contiguous blocks.
// Slots sharing a boundary are merged; a gap splits the block.
func GroupBlocks(slots []TimeSlot) []SlotBlock {
	sorted := make([]TimeSlot, len(slots))
	copy(sorted, slots)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].UserID != sorted[j].UserID {
			return sorted[i].UserID < sorted[j].UserID
		}
		if !SameDate(sorted[i].Date, sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].StartTime < sorted[j].StartTime
	})

	var blocks []SlotBlock
	for _, s := range sorted {
		n := len(blocks)
		if n > 0 {
			last := &blocks[n-1]
			if last.UserID == s.UserID && SameDate(last.Placement.Date, s.Date) && last.Placement.EndTime == s.StartTime {
				last.Placement.EndTime = s.EndTime
				last.Slots = append(last.Slots, s)
				continue
			}
		}
		blocks = append(blocks, SlotBlock{
			UserID:    s.UserID,
			Placement: s.Placement(),
			Slots:     []TimeSlot{s},
		})
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		a, b := blocks[i].Placement, blocks[j].Placement
		if !SameDate(a.Date, b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.StartTime < b.StartTime
	})
	return blocks
}
