package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotExchangeService/pkg/types"
)

var monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func tod(s string) types.TimeOfDay {
	return types.MustParseTimeOfDay(s)
}

func atom(id, user string, date time.Time, start string) TimeSlot {
	st := tod(start)
	return TimeSlot{
		ID:        id,
		UserID:    user,
		Date:      date,
		Day:       date.Weekday(),
		StartTime: st,
		EndTime:   st.AddMinutes(SlotMinutes),
		Status:    SlotStatusConfirmed,
	}
}

func TestWeekStart(t *testing.T) {
	sunday := time.Date(2025, 3, 9, 15, 0, 0, 0, time.UTC)
	wednesday := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, monday, WeekStart(sunday))
	assert.Equal(t, monday, WeekStart(wednesday))
	assert.Equal(t, monday, WeekStart(monday))
	assert.Equal(t, 6, DaysBetween(monday, sunday))
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday("Monday")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, d)

	d, err = ParseWeekday("sat")
	require.NoError(t, err)
	assert.Equal(t, time.Saturday, d)

	_, err = ParseWeekday("someday")
	assert.ErrorIs(t, err, ErrInvalidWeekday)

	assert.Equal(t, "wednesday", WeekdayName(time.Wednesday))
}

func TestInterval(t *testing.T) {
	a := NewInterval(tod("09:00"), tod("10:00"))
	b := NewInterval(tod("09:30"), tod("11:00"))
	c := NewInterval(tod("10:00"), tod("10:30"))

	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(c), "touching intervals do not overlap")
	assert.Equal(t, NewInterval(tod("09:30"), tod("10:00")), a.Intersect(b))
	assert.True(t, a.Intersect(c).IsEmpty())
	assert.Equal(t, NewInterval(tod("09:00"), tod("11:00")), a.Span(b))
	assert.True(t, a.Contains(NewInterval(tod("09:15"), tod("09:45"))))

	rest := Subtract([]Interval{NewInterval(tod("08:00"), tod("12:00"))}, NewInterval(tod("09:00"), tod("10:00")))
	assert.Equal(t, []Interval{
		NewInterval(tod("08:00"), tod("09:00")),
		NewInterval(tod("10:00"), tod("12:00")),
	}, rest)
}

func TestAtomize(t *testing.T) {
	p := NewPlacement(monday, NewInterval(tod("09:00"), tod("10:30")))
	slots := Atomize("u1", p, SlotStatusExchanged, "math")

	require.Len(t, slots, 3)
	for i, s := range slots {
		assert.True(t, s.IsAtom())
		assert.Equal(t, "u1", s.UserID)
		assert.Equal(t, time.Monday, s.Day)
		assert.Equal(t, tod("09:00").AddMinutes(i*SlotMinutes), s.StartTime)
		assert.NotEmpty(t, s.ID)
	}
	assert.NotEqual(t, slots[0].ID, slots[1].ID)
}

func TestGroupBlocks(t *testing.T) {
	slots := []TimeSlot{
		atom("3", "a", monday, "10:00"),
		atom("1", "a", monday, "09:00"),
		atom("2", "a", monday, "09:30"),
		atom("4", "b", monday, "11:00"),
		atom("5", "a", monday, "12:00"),
	}

	blocks := GroupBlocks(slots)
	require.Len(t, blocks, 3)

	assert.Equal(t, "a", blocks[0].UserID)
	assert.Equal(t, NewInterval(tod("09:00"), tod("10:30")), blocks[0].Placement.Interval())
	assert.Equal(t, []string{"1", "2", "3"}, SlotIDs(blocks[0].Slots))

	assert.Equal(t, "b", blocks[1].UserID)
	assert.Equal(t, "a", blocks[2].UserID)
	assert.Equal(t, tod("12:00"), blocks[2].Placement.StartTime)
}

func TestRoomApply(t *testing.T) {
	newRoom := func() *Room {
		return &Room{
			ID: "room",
			TimeSlots: []TimeSlot{
				atom("a1", "a", monday, "09:00"),
				atom("b1", "b", monday, "10:00"),
			},
		}
	}

	t.Run("swap in one batch", func(t *testing.T) {
		r := newRoom()
		moved := atom("new-b", "b", monday, "09:00")
		movedA := atom("new-a", "a", monday, "10:00")

		err := r.Apply(Changeset{Remove: []string{"a1", "b1"}, Insert: []TimeSlot{moved, movedA}})
		require.NoError(t, err)
		require.Len(t, r.TimeSlots, 2)
		assert.Equal(t, "b", r.TimeSlots[0].UserID)
		assert.Equal(t, "a", r.TimeSlots[1].UserID)
	})

	t.Run("missing removal leaves room untouched", func(t *testing.T) {
		r := newRoom()
		err := r.Apply(Changeset{Remove: []string{"a1", "ghost"}})
		require.ErrorIs(t, err, ErrChangesetSlotMissing)
		assert.Len(t, r.TimeSlots, 2)
	})

	t.Run("overlap with a slot of another user", func(t *testing.T) {
		r := newRoom()
		err := r.Apply(Changeset{Insert: []TimeSlot{atom("x", "c", monday, "10:00")}})
		require.ErrorIs(t, err, ErrChangesetOverlap)
		assert.Len(t, r.TimeSlots, 2)
	})

	t.Run("overlap inside the batch", func(t *testing.T) {
		r := newRoom()
		err := r.Apply(Changeset{Insert: []TimeSlot{
			atom("x", "c", monday, "11:00"),
			atom("y", "d", monday, "11:00"),
		}})
		require.ErrorIs(t, err, ErrChangesetOverlap)
	})

	t.Run("misaligned atom", func(t *testing.T) {
		r := newRoom()
		bad := atom("x", "c", monday, "11:15")
		err := r.Apply(Changeset{Insert: []TimeSlot{bad}})
		require.ErrorIs(t, err, ErrChangesetMisaligned)
	})

	t.Run("same time on another date is fine", func(t *testing.T) {
		r := newRoom()
		err := r.Apply(Changeset{Insert: []TimeSlot{atom("x", "c", monday.AddDate(0, 0, 7), "09:00")}})
		require.NoError(t, err)
		assert.Len(t, r.TimeSlots, 3)
	})
}

func TestMemberAddCarryOver(t *testing.T) {
	m := &Member{UserID: "u"}
	entry := CarryOverEntry{NegotiationID: "n1", Minutes: 60, Week: monday, Reason: CarryOverYield}

	assert.True(t, m.AddCarryOver(entry))
	assert.False(t, m.AddCarryOver(entry))
	assert.True(t, m.AddCarryOver(CarryOverEntry{NegotiationID: "n2", Minutes: 30, Week: monday.AddDate(0, 0, 7)}))

	assert.Equal(t, 90, m.CarryOver)
	assert.Len(t, m.CarryOverHistory, 2)
	assert.Equal(t, 60, m.CarryOverForWeek(monday))
	assert.Equal(t, 1.0, m.CarryOverHistory[0].Hours())
}

func TestRoomHelpers(t *testing.T) {
	tuesday := time.Tuesday
	r := &Room{
		OwnerID: "owner",
		Members: []Member{{UserID: "a"}, {UserID: "b"}},
		Settings: Settings{
			OwnerSchedule: []DayWindow{{Day: time.Monday, StartTime: tod("09:00"), EndTime: tod("12:00")}},
			BlockedIntervals: []BlockedInterval{
				{DayOfWeek: &tuesday, StartTime: tod("10:00"), EndTime: tod("11:00")},
				{StartTime: tod("12:00"), EndTime: tod("13:00")},
			},
		},
		TimeSlots: []TimeSlot{
			atom("1", "a", monday, "09:00"),
			atom("2", "a", monday.AddDate(0, 0, 1), "09:00"),
			atom("3", "a", monday.AddDate(0, 0, 7), "09:00"),
		},
	}

	assert.True(t, r.IsMember("a"))
	assert.False(t, r.IsMember("owner"))
	assert.True(t, r.IsOwner("owner"))

	w, ok := r.OwnerWindow(monday)
	require.True(t, ok)
	assert.Equal(t, NewInterval(tod("09:00"), tod("12:00")), w)
	_, ok = r.OwnerWindow(monday.AddDate(0, 0, 1))
	assert.False(t, ok)

	assert.Len(t, r.BlockedOn(monday), 1)
	assert.Len(t, r.BlockedOn(monday.AddDate(0, 0, 1)), 2)

	assert.Equal(t, 60, r.UserMinutesBetween("a", monday, monday.AddDate(0, 0, 7)))

	clone, err := r.Clone()
	require.NoError(t, err)
	clone.TimeSlots[0].UserID = "changed"
	assert.Equal(t, "a", r.TimeSlots[0].UserID)
}
