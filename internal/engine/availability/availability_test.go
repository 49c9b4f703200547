package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/types"
)

var (
	monday  = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	tuesday = monday.AddDate(0, 0, 1)
	earlyMo = monday.Add(7 * time.Hour)
)

func tod(s string) types.TimeOfDay {
	return types.MustParseTimeOfDay(s)
}

func iv(start, end string) domain.Interval {
	return domain.NewInterval(tod(start), tod(end))
}

func pref(day time.Weekday, start, end string, priority int) domain.PreferenceEntry {
	return domain.PreferenceEntry{DayOfWeek: day, StartTime: tod(start), EndTime: tod(end), Priority: priority}
}

func slots(user string, date time.Time, start, end string) []domain.TimeSlot {
	return domain.Atomize(user, domain.NewPlacement(date, iv(start, end)), domain.SlotStatusConfirmed, "")
}

func TestPreferredBlocks(t *testing.T) {
	specific := tuesday
	member := &domain.Member{
		UserID: "u",
		DefaultSchedule: []domain.PreferenceEntry{
			pref(time.Monday, "09:00", "10:00", 3),
			pref(time.Monday, "10:10", "11:00", 2),
			pref(time.Monday, "11:30", "12:00", 2),
			pref(time.Monday, "14:00", "15:00", 1),
			{SpecificDate: &specific, StartTime: tod("08:00"), EndTime: tod("09:00"), Priority: 2},
		},
	}

	t.Run("merges small gaps", func(t *testing.T) {
		blocks := PreferredBlocks(member, monday, domain.PreferredPriority)
		assert.Equal(t, []domain.Interval{iv("09:00", "11:00"), iv("11:30", "12:00")}, blocks)
	})

	t.Run("any priority includes low entries", func(t *testing.T) {
		blocks := PreferredBlocks(member, monday, domain.AnyPriority)
		require.Len(t, blocks, 3)
		assert.Equal(t, iv("14:00", "15:00"), blocks[2])
	})

	t.Run("specific date", func(t *testing.T) {
		assert.Equal(t, []domain.Interval{iv("08:00", "09:00")}, PreferredBlocks(member, tuesday, domain.AnyPriority))
		assert.Empty(t, PreferredBlocks(member, tuesday.AddDate(0, 0, 7), domain.AnyPriority))
	})
}

func TestActionableBlocks(t *testing.T) {
	room := &domain.Room{
		Members: []domain.Member{{
			UserID: "u",
			DefaultSchedule: []domain.PreferenceEntry{
				pref(time.Monday, "08:00", "13:00", 2),
				pref(time.Tuesday, "08:00", "13:00", 2),
			},
		}},
		Settings: domain.Settings{
			OwnerSchedule: []domain.DayWindow{{Day: time.Monday, StartTime: tod("09:00"), EndTime: tod("12:00")}},
			BlockedIntervals: []domain.BlockedInterval{
				{StartTime: tod("10:00"), EndTime: tod("10:30"), Reason: "break"},
			},
		},
	}
	member, _ := room.Member("u")

	assert.Equal(t,
		[]domain.Interval{iv("09:00", "10:00"), iv("10:30", "12:00")},
		ActionableBlocks(room, member, monday, domain.PreferredPriority))
	assert.Empty(t, ActionableBlocks(room, member, tuesday, domain.PreferredPriority), "owner does not allow tuesday")

	assert.True(t, WithinPreferred(room, member, domain.NewPlacement(monday, iv("09:00", "10:00")), domain.PreferredPriority))
	assert.False(t, WithinPreferred(room, member, domain.NewPlacement(monday, iv("09:30", "10:30")), domain.PreferredPriority))
}

func newRoom() *domain.Room {
	room := &domain.Room{
		ID:      "room",
		OwnerID: "owner",
		Members: []domain.Member{
			{UserID: "a", DefaultSchedule: []domain.PreferenceEntry{
				pref(time.Monday, "09:00", "12:00", 3),
				pref(time.Tuesday, "09:00", "10:00", 1),
			}},
			{UserID: "b"},
		},
		Settings: domain.Settings{
			OwnerSchedule: []domain.DayWindow{
				{Day: time.Monday, StartTime: tod("09:00"), EndTime: tod("12:00")},
				{Day: time.Tuesday, StartTime: tod("09:00"), EndTime: tod("12:00")},
			},
		},
	}
	room.TimeSlots = append(room.TimeSlots, slots("a", monday, "09:00", "10:00")...)
	room.TimeSlots = append(room.TimeSlots, slots("b", monday, "10:00", "11:00")...)
	return room
}

func TestFinder_Find(t *testing.T) {
	f := NewFinder(2)

	t.Run("first free block on the exclude date", func(t *testing.T) {
		room := newRoom()
		p, ok := f.Find(room, Query{UserID: "a", RequiredMinutes: 60, ExcludeDate: monday}, earlyMo)
		require.True(t, ok)
		assert.Equal(t, domain.NewPlacement(monday, iv("11:00", "12:00")), p)
	})

	t.Run("treat as free opens the vacated window", func(t *testing.T) {
		room := newRoom()
		vacated := domain.SlotIDs(room.UserSlotsOn("b", monday))
		p, ok := f.Find(room, Query{UserID: "a", RequiredMinutes: 90, ExcludeDate: monday, TreatAsFree: vacated}, earlyMo)
		require.True(t, ok)
		assert.Equal(t, domain.NewPlacement(monday, iv("10:00", "11:30")), p)
	})

	t.Run("falls through to the next preferred day", func(t *testing.T) {
		room := newRoom()
		p, ok := f.Find(room, Query{UserID: "a", RequiredMinutes: 60, ExcludeDate: monday}, monday.Add(11*time.Hour+10*time.Minute))
		require.True(t, ok)
		assert.Equal(t, domain.NewPlacement(tuesday, iv("09:00", "10:00")), p, "next monday is farther than tuesday")
	})

	t.Run("preferred priority skips low entries", func(t *testing.T) {
		room := newRoom()
		p, ok := f.Find(room, Query{UserID: "a", RequiredMinutes: 60, ExcludeDate: monday, MinPriority: domain.PreferredPriority},
			monday.Add(11*time.Hour+10*time.Minute))
		require.True(t, ok)
		assert.Equal(t, domain.NewPlacement(monday.AddDate(0, 0, 7), iv("09:00", "10:00")), p)
	})

	t.Run("member without preferences", func(t *testing.T) {
		room := newRoom()
		_, ok := f.Find(room, Query{UserID: "b", RequiredMinutes: 30}, earlyMo)
		assert.False(t, ok)
	})

	t.Run("search is read only", func(t *testing.T) {
		room := newRoom()
		before, err := room.Clone()
		require.NoError(t, err)
		_, _ = f.Find(room, Query{UserID: "a", RequiredMinutes: 60, ExcludeDate: monday}, earlyMo)
		assert.Equal(t, before.TimeSlots, room.TimeSlots)
	})
}

func TestFreeWindows(t *testing.T) {
	room := newRoom()

	windows := FreeWindows(room, "a", monday, 30, nil, earlyMo)
	assert.Equal(t, []domain.Interval{iv("11:00", "12:00")}, windows)

	windows = FreeWindows(room, "a", monday, 30, domain.SlotIDs(room.UserSlotsOn("a", monday)), earlyMo)
	assert.Equal(t, []domain.Interval{iv("09:00", "10:00"), iv("11:00", "12:00")}, windows)

	assert.Empty(t, FreeWindows(room, "a", monday, 90, nil, earlyMo))

	assert.True(t, IsFree(room, domain.NewPlacement(monday, iv("11:00", "11:30")), nil))
	assert.False(t, IsFree(room, domain.NewPlacement(monday, iv("09:30", "10:30")), nil))
}
