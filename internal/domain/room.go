package domain

import (
	"encoding/json"
	"time"

	"github.com/m04kA/SMC-SlotExchangeService/pkg/types"
)

// DayWindow is the owner's allowed activity window for one weekday
type DayWindow struct {
	Day       time.Weekday    `json:"day"`
	StartTime types.TimeOfDay `json:"startTime"`
	EndTime   types.TimeOfDay `json:"endTime"`
}

// BlockedInterval is a time range in which nothing may be scheduled
type BlockedInterval struct {
	DayOfWeek    *time.Weekday   `json:"dayOfWeek,omitempty"`
	SpecificDate *time.Time      `json:"specificDate,omitempty"`
	StartTime    types.TimeOfDay `json:"startTime"`
	EndTime      types.TimeOfDay `json:"endTime"`
	Reason       string          `json:"reason,omitempty"`
}

// AppliesTo reports whether the interval blocks date. An interval with neither day nor date blocks every day.
func (b BlockedInterval) AppliesTo(date time.Time) bool {
	if b.SpecificDate != nil {
		return SameDate(*b.SpecificDate, date)
	}
	if b.DayOfWeek != nil {
		return *b.DayOfWeek == date.Weekday()
	}
	return true
}

// TravelDecision is a travel mode change waiting for confirmation
type TravelDecision struct {
	Mode        string    `json:"mode"`
	RequestedBy string    `json:"requestedBy"`
	RequestedAt time.Time `json:"requestedAt"`
}

// TravelMode holds the confirmed travel mode and an optional pending decision
type TravelMode struct {
	Mode        string          `json:"mode"`
	Pending     *TravelDecision `json:"pending,omitempty"`
	ConfirmedAt *time.Time      `json:"confirmedAt,omitempty"`
	ConfirmedBy string          `json:"confirmedBy,omitempty"`
}

// Settings are the owner-controlled room settings
type Settings struct {
	OwnerSchedule          []DayWindow       `json:"ownerSchedule"`
	BlockedIntervals       []BlockedInterval `json:"blockedIntervals"`
	RequiredMinutesPerWeek int               `json:"requiredMinutesPerWeek"`
	TravelMode             TravelMode        `json:"travelMode"`
}

// Room is the aggregate every engine operation loads and saves as one unit
type Room struct {
	ID           string            `json:"id"`
	OwnerID      string            `json:"ownerId"`
	Name         string            `json:"name"`
	Members      []Member          `json:"members"`
	TimeSlots    []TimeSlot        `json:"timeSlots"`
	Requests     []ExchangeRequest `json:"requests"`
	Negotiations []Negotiation     `json:"negotiations"`
	Settings     Settings          `json:"settings"`
	Version      int64             `json:"version"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// Clone returns a deep copy of the room
func (r *Room) Clone() (*Room, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var clone Room
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, err
	}
	return &clone, nil
}

// IsOwner reports whether userID owns the room
func (r *Room) IsOwner(userID string) bool {
	return r.OwnerID == userID
}

// IsMember reports whether userID is a member of the room
func (r *Room) IsMember(userID string) bool {
	_, ok := r.Member(userID)
	return ok
}

// Member returns a pointer to the member so callers can update it in place
func (r *Room) Member(userID string) (*Member, bool) {
	for i := range r.Members {
		if r.Members[i].UserID == userID {
			return &r.Members[i], true
		}
	}
	return nil, false
}

// Slot returns the slot with the given id
func (r *Room) Slot(id string) (TimeSlot, bool) {
	for _, s := range r.TimeSlots {
		if s.ID == id {
			return s, true
		}
	}
	return TimeSlot{}, false
}

// SlotsOn returns all slots on date ordered by start time
func (r *Room) SlotsOn(date time.Time) []TimeSlot {
	var result []TimeSlot
	for _, s := range r.TimeSlots {
		if SameDate(s.Date, date) {
			result = append(result, s)
		}
	}
	SortSlots(result)
	return result
}

// UserSlotsOn returns userID's slots on date ordered by start time
func (r *Room) UserSlotsOn(userID string, date time.Time) []TimeSlot {
	var result []TimeSlot
	for _, s := range r.TimeSlots {
		if s.UserID == userID && SameDate(s.Date, date) {
			result = append(result, s)
		}
	}
	SortSlots(result)
	return result
}

// UserMinutesBetween sums the minutes userID holds on dates in [from, to)
func (r *Room) UserMinutesBetween(userID string, from, to time.Time) int {
	total := 0
	for _, s := range r.TimeSlots {
		if s.UserID != userID {
			continue
		}
		d := DateOnly(s.Date)
		if !d.Before(DateOnly(from)) && d.Before(DateOnly(to)) {
			total += s.Interval().Minutes()
		}
	}
	return total
}

// OwnerWindow returns the owner's allowed window for date.
// A room without any owner schedule allows the whole day.
func (r *Room) OwnerWindow(date time.Time) (Interval, bool) {
	if len(r.Settings.OwnerSchedule) == 0 {
		return Interval{Start: 0, End: types.MinutesPerDay}, true
	}
	for _, w := range r.Settings.OwnerSchedule {
		if w.Day == date.Weekday() {
			return Interval{Start: w.StartTime, End: w.EndTime}, true
		}
	}
	return Interval{}, false
}

// BlockedOn returns the blocked ranges that apply to date
func (r *Room) BlockedOn(date time.Time) []Interval {
	var result []Interval
	for _, b := range r.Settings.BlockedIntervals {
		if b.AppliesTo(date) {
			result = append(result, Interval{Start: b.StartTime, End: b.EndTime})
		}
	}
	return result
}

// Request returns a pointer to the request with the given id
func (r *Room) Request(id string) (*ExchangeRequest, bool) {
	for i := range r.Requests {
		if r.Requests[i].ID == id {
			return &r.Requests[i], true
		}
	}
	return nil, false
}

// Negotiation returns a pointer to the negotiation with the given id
func (r *Room) Negotiation(id string) (*Negotiation, bool) {
	for i := range r.Negotiations {
		if r.Negotiations[i].ID == id {
			return &r.Negotiations[i], true
		}
	}
	return nil, false
}

// ChainHops returns pointers to every chain hop spawned by the original request
func (r *Room) ChainHops(originalRequestID string) []*ExchangeRequest {
	var hops []*ExchangeRequest
	for i := range r.Requests {
		req := &r.Requests[i]
		if req.Type == RequestTypeChain && req.ChainData != nil && req.ChainData.OriginalRequestID == originalRequestID {
			hops = append(hops, req)
		}
	}
	return hops
}

// ActiveNegotiations returns pointers to negotiations that are still active
func (r *Room) ActiveNegotiations() []*Negotiation {
	var result []*Negotiation
	for i := range r.Negotiations {
		if r.Negotiations[i].Status == NegotiationActive {
			result = append(result, &r.Negotiations[i])
		}
	}
	return result
}
