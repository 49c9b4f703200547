package sync_room

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/ptr"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/types"
)

// PreferenceEntry предпочтение участника; задается день недели или конкретная дата
type PreferenceEntry struct {
	DayOfWeek    string `json:"dayOfWeek,omitempty"`    // "monday"
	SpecificDate string `json:"specificDate,omitempty"` // "2025-03-03"
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Priority     int    `json:"priority"`
}

// Member участник комнаты
type Member struct {
	UserID          string            `json:"userId"`
	DefaultSchedule []PreferenceEntry `json:"defaultSchedule"`
}

// DayWindow разрешенное владельцем время на день недели
type DayWindow struct {
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// BlockedInterval заблокированное время
type BlockedInterval struct {
	DayOfWeek    string `json:"dayOfWeek,omitempty"`
	SpecificDate string `json:"specificDate,omitempty"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Reason       string `json:"reason,omitempty"`
}

// TravelDecision ожидающее подтверждения решение о режиме поездки
type TravelDecision struct {
	Mode        string    `json:"mode"`
	RequestedBy string    `json:"requestedBy"`
	RequestedAt time.Time `json:"requestedAt"`
}

// TravelMode режим поездки комнаты
type TravelMode struct {
	Mode    string          `json:"mode"`
	Pending *TravelDecision `json:"pending,omitempty"`
}

// Settings настройки комнаты
type Settings struct {
	OwnerSchedule          []DayWindow       `json:"ownerSchedule"`
	BlockedIntervals       []BlockedInterval `json:"blockedIntervals"`
	RequiredMinutesPerWeek int               `json:"requiredMinutesPerWeek"`
	TravelMode             TravelMode        `json:"travelMode"`
}

// SlotBlock непрерывный блок слотов участника; разбивается на получасовые слоты
type SlotBlock struct {
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Subject   string `json:"subject,omitempty"`
}

// SyncRoomRequest HTTP request model
type SyncRoomRequest struct {
	OwnerID   string      `json:"ownerId"`
	Name      string      `json:"name"`
	Members   []Member    `json:"members"`
	Settings  Settings    `json:"settings"`
	TimeSlots []SlotBlock `json:"timeSlots"`
}

// SyncRoomResponse HTTP response model
type SyncRoomResponse struct {
	ID      string `json:"id"`
	Version int64  `json:"version"`
	Members int    `json:"members"`
	Slots   int    `json:"slots"`
}

func parseWindow(start, end string) (types.TimeOfDay, types.TimeOfDay, error) {
	s, err := types.ParseTimeOfDay(start)
	if err != nil {
		return 0, 0, fmt.Errorf("startTime: %w", err)
	}
	e, err := types.ParseTimeOfDay(end)
	if err != nil {
		return 0, 0, fmt.Errorf("endTime: %w", err)
	}
	return s, e, nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	date, err := domain.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return ptr.Ptr(date), nil
}

// ToDomain конвертирует HTTP запрос в снимок комнаты
func (r *SyncRoomRequest) ToDomain(roomID string, now time.Time) (*domain.Room, error) {
	room := &domain.Room{
		ID:        roomID,
		OwnerID:   r.OwnerID,
		Name:      r.Name,
		Members:   make([]domain.Member, 0, len(r.Members)),
		TimeSlots: []domain.TimeSlot{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, m := range r.Members {
		member := domain.Member{UserID: m.UserID, DefaultSchedule: []domain.PreferenceEntry{}, JoinedAt: now}
		for i, p := range m.DefaultSchedule {
			start, end, err := parseWindow(p.StartTime, p.EndTime)
			if err != nil {
				return nil, fmt.Errorf("member %s preference %d: %w", m.UserID, i, err)
			}
			entry := domain.PreferenceEntry{StartTime: start, EndTime: end, Priority: p.Priority}
			if entry.SpecificDate, err = parseOptionalDate(p.SpecificDate); err != nil {
				return nil, fmt.Errorf("member %s preference %d: %w", m.UserID, i, err)
			}
			if entry.SpecificDate != nil {
				entry.DayOfWeek = entry.SpecificDate.Weekday()
			} else if entry.DayOfWeek, err = domain.ParseWeekday(p.DayOfWeek); err != nil {
				return nil, fmt.Errorf("member %s preference %d: %w", m.UserID, i, err)
			}
			member.DefaultSchedule = append(member.DefaultSchedule, entry)
		}
		room.Members = append(room.Members, member)
	}

	settings := &room.Settings
	settings.RequiredMinutesPerWeek = r.Settings.RequiredMinutesPerWeek
	settings.OwnerSchedule = []domain.DayWindow{}
	settings.BlockedIntervals = []domain.BlockedInterval{}
	for i, w := range r.Settings.OwnerSchedule {
		day, err := domain.ParseWeekday(w.Day)
		if err != nil {
			return nil, fmt.Errorf("ownerSchedule %d: %w", i, err)
		}
		start, end, err := parseWindow(w.StartTime, w.EndTime)
		if err != nil {
			return nil, fmt.Errorf("ownerSchedule %d: %w", i, err)
		}
		settings.OwnerSchedule = append(settings.OwnerSchedule, domain.DayWindow{Day: day, StartTime: start, EndTime: end})
	}
	for i, b := range r.Settings.BlockedIntervals {
		start, end, err := parseWindow(b.StartTime, b.EndTime)
		if err != nil {
			return nil, fmt.Errorf("blockedIntervals %d: %w", i, err)
		}
		blocked := domain.BlockedInterval{StartTime: start, EndTime: end, Reason: b.Reason}
		if blocked.SpecificDate, err = parseOptionalDate(b.SpecificDate); err != nil {
			return nil, fmt.Errorf("blockedIntervals %d: %w", i, err)
		}
		if b.DayOfWeek != "" {
			day, err := domain.ParseWeekday(b.DayOfWeek)
			if err != nil {
				return nil, fmt.Errorf("blockedIntervals %d: %w", i, err)
			}
			blocked.DayOfWeek = ptr.Ptr(day)
		}
		settings.BlockedIntervals = append(settings.BlockedIntervals, blocked)
	}
	settings.TravelMode.Mode = r.Settings.TravelMode.Mode
	if p := r.Settings.TravelMode.Pending; p != nil {
		settings.TravelMode.Pending = &domain.TravelDecision{Mode: p.Mode, RequestedBy: p.RequestedBy, RequestedAt: p.RequestedAt}
	}

	for i, b := range r.TimeSlots {
		date, err := domain.ParseDate(b.Date)
		if err != nil {
			return nil, fmt.Errorf("timeSlots %d: %w", i, err)
		}
		start, end, err := parseWindow(b.StartTime, b.EndTime)
		if err != nil {
			return nil, fmt.Errorf("timeSlots %d: %w", i, err)
		}
		placement := domain.NewPlacement(date, domain.NewInterval(start, end))
		room.TimeSlots = append(room.TimeSlots, domain.Atomize(b.UserID, placement, domain.SlotStatusConfirmed, b.Subject)...)
	}
	return room, nil
}

// FromDomain конвертирует сохраненную комнату в HTTP response
func FromDomain(room *domain.Room) *SyncRoomResponse {
	return &SyncRoomResponse{
		ID:      room.ID,
		Version: room.Version,
		Members: len(room.Members),
		Slots:   len(room.TimeSlots),
	}
}
