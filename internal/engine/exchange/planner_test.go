package exchange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/engine/availability"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/types"
)

var (
	monday    = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	tuesday   = monday.AddDate(0, 0, 1)
	wednesday = monday.AddDate(0, 0, 2)
	now       = monday.Add(7 * time.Hour)
)

func tod(s string) types.TimeOfDay {
	return types.MustParseTimeOfDay(s)
}

func place(date time.Time, start, end string) domain.Placement {
	return domain.NewPlacement(date, domain.NewInterval(tod(start), tod(end)))
}

func pref(day time.Weekday, start, end string, priority int) domain.PreferenceEntry {
	return domain.PreferenceEntry{DayOfWeek: day, StartTime: tod(start), EndTime: tod(end), Priority: priority}
}

func hold(room *domain.Room, user string, p domain.Placement) domain.SlotRef {
	atoms := domain.Atomize(user, p, domain.SlotStatusConfirmed, "lesson")
	room.TimeSlots = append(room.TimeSlots, atoms...)
	return domain.SlotRef{UserID: user, SlotIDs: domain.SlotIDs(atoms), Placement: p}
}

func owners(room *domain.Room, p domain.Placement) []string {
	var result []string
	for _, s := range room.TimeSlots {
		if s.OverlapsPlacement(p) {
			result = append(result, s.UserID)
		}
	}
	return result
}

func applyMoves(t *testing.T, room *domain.Room, moves []domain.ChainMove) {
	t.Helper()
	cs, err := BuildChangeset(room, moves, domain.SlotStatusExchanged)
	require.NoError(t, err)
	require.NoError(t, room.Apply(cs))
}

// the finder only looks at the current week so that next Monday does not offer b a way out
func newPlanner() *Planner {
	return NewPlanner(availability.NewFinder(1), 3)
}

func TestPlanDirect(t *testing.T) {
	room := &domain.Room{Members: []domain.Member{
		{UserID: "a", DefaultSchedule: []domain.PreferenceEntry{pref(time.Monday, "09:00", "10:00", 3)}},
		{UserID: "b", DefaultSchedule: []domain.PreferenceEntry{pref(time.Tuesday, "09:00", "10:00", 2)}},
	}}
	target := hold(room, "b", place(monday, "09:00", "10:00"))
	offered := hold(room, "a", place(tuesday, "09:00", "10:00"))

	req := &domain.ExchangeRequest{
		RequesterID:    "a",
		TargetUserID:   "b",
		TargetSlot:     target,
		RequesterSlots: []domain.SlotRef{offered},
	}

	moves, ok := newPlanner().PlanDirect(room, req)
	require.True(t, ok)
	require.Len(t, moves, 2)

	applyMoves(t, room, moves)
	assert.Len(t, room.TimeSlots, 4, "swap conserves slots")
	assert.Equal(t, []string{"a", "a"}, owners(room, place(monday, "09:00", "10:00")))
	assert.Equal(t, []string{"b", "b"}, owners(room, place(tuesday, "09:00", "10:00")))

	t.Run("not preferred by target", func(t *testing.T) {
		room.Members[1].DefaultSchedule[0].Priority = 1
		_, ok := newPlanner().PlanDirect(room, req)
		assert.False(t, ok)
	})

	t.Run("no offer", func(t *testing.T) {
		_, ok := newPlanner().PlanDirect(room, &domain.ExchangeRequest{RequesterID: "a", TargetUserID: "b", TargetSlot: target})
		assert.False(t, ok)
	})
}

func TestPlanRelocation(t *testing.T) {
	room := &domain.Room{
		Settings: domain.Settings{OwnerSchedule: []domain.DayWindow{
			{Day: time.Monday, StartTime: tod("09:00"), EndTime: tod("12:00")},
		}},
		Members: []domain.Member{
			{UserID: "a", DefaultSchedule: []domain.PreferenceEntry{
				pref(time.Monday, "09:00", "10:00", 3),
				pref(time.Monday, "10:00", "12:00", 1),
			}},
			{UserID: "b"},
		},
	}
	target := hold(room, "a", place(monday, "09:00", "10:00"))

	req := &domain.ExchangeRequest{RequesterID: "b", TargetUserID: "a", TargetSlot: target}
	moves, alt, ok := newPlanner().PlanRelocation(room, req, now)
	require.True(t, ok)
	assert.Equal(t, place(monday, "10:00", "11:00"), alt)

	applyMoves(t, room, moves)
	assert.Equal(t, []string{"b", "b"}, owners(room, place(monday, "09:00", "10:00")))
	assert.Equal(t, []string{"a", "a"}, owners(room, place(monday, "10:00", "11:00")))
	assert.False(t, place(monday, "09:00", "10:00").Overlaps(alt))
}

func TestPlanRelocation_OfferedSlots(t *testing.T) {
	newRoom := func() (*domain.Room, domain.SlotRef) {
		room := &domain.Room{
			Settings: domain.Settings{OwnerSchedule: []domain.DayWindow{
				{Day: time.Monday, StartTime: tod("09:00"), EndTime: tod("12:00")},
			}},
			Members: []domain.Member{
				{UserID: "a", DefaultSchedule: []domain.PreferenceEntry{
					pref(time.Monday, "09:00", "10:00", 3),
					pref(time.Monday, "10:00", "12:00", 1),
				}},
				{UserID: "b"},
			},
		}
		return room, hold(room, "a", place(monday, "09:00", "10:00"))
	}

	t.Run("larger offer keeps the surplus", func(t *testing.T) {
		room, target := newRoom()
		offered := hold(room, "b", place(monday, "10:00", "11:30"))
		req := &domain.ExchangeRequest{RequesterID: "b", TargetUserID: "a", TargetSlot: target, RequesterSlots: []domain.SlotRef{offered}}

		moves, alt, ok := newPlanner().PlanRelocation(room, req, now)
		require.True(t, ok)
		assert.Equal(t, place(monday, "10:00", "11:00"), alt)
		assert.Equal(t, offered.SlotIDs[:2], moves[0].VacateSlotIDs)

		applyMoves(t, room, moves)
		assert.Len(t, room.TimeSlots, 5, "relocation conserves slots")
		assert.Equal(t, []string{"b", "b"}, owners(room, place(monday, "09:00", "10:00")))
		assert.Equal(t, []string{"a", "a"}, owners(room, place(monday, "10:00", "11:00")))
		assert.Equal(t, []string{"b"}, owners(room, place(monday, "11:00", "11:30")))
	})

	t.Run("equal offer is released whole", func(t *testing.T) {
		room, target := newRoom()
		offered := hold(room, "b", place(monday, "11:00", "12:00"))
		req := &domain.ExchangeRequest{RequesterID: "b", TargetUserID: "a", TargetSlot: target, RequesterSlots: []domain.SlotRef{offered}}

		moves, _, ok := newPlanner().PlanRelocation(room, req, now)
		require.True(t, ok)
		assert.ElementsMatch(t, offered.SlotIDs, moves[0].VacateSlotIDs)

		applyMoves(t, room, moves)
		assert.Len(t, room.TimeSlots, 4, "relocation conserves slots")
	})
}

// chainRoom: A wants B's Monday 09:00 block; B prefers Monday 13:00 held by C; C can move to Tuesday.
func chainRoom() (*domain.Room, *domain.ExchangeRequest) {
	room := &domain.Room{Members: []domain.Member{
		{UserID: "a"},
		{UserID: "b", DefaultSchedule: []domain.PreferenceEntry{
			pref(time.Monday, "09:00", "10:00", 3),
			pref(time.Monday, "13:00", "14:00", 2),
		}},
		{UserID: "c", DefaultSchedule: []domain.PreferenceEntry{
			pref(time.Monday, "13:00", "14:00", 2),
			pref(time.Tuesday, "09:00", "10:00", 1),
		}},
		{UserID: "d", DefaultSchedule: []domain.PreferenceEntry{
			pref(time.Wednesday, "09:00", "10:00", 1),
		}},
	}}
	target := hold(room, "b", place(monday, "09:00", "10:00"))
	hold(room, "c", place(monday, "13:00", "14:00"))

	req := &domain.ExchangeRequest{ID: "req-1", RequesterID: "a", TargetUserID: "b", TargetSlot: target, Type: domain.RequestTypeTime}
	return room, req
}

func TestChain_ThreeWay(t *testing.T) {
	room, req := chainRoom()
	p := newPlanner()

	_, _, ok := p.PlanRelocation(room, req, now)
	require.False(t, ok, "b has no free preferred block")

	hop, ok := p.StartChain(room, req, now)
	require.True(t, ok)
	assert.Equal(t, "c", hop.ChainUserID)
	assert.Equal(t, "b", hop.IntermediateUserID)
	assert.Equal(t, place(monday, "13:00", "14:00"), hop.ChainSlot.Placement)
	assert.Len(t, hop.ChainSlot.SlotIDs, 2)
	assert.Equal(t, 1, hop.Depth)

	before, err := room.Clone()
	require.NoError(t, err)

	step := p.Advance(room, hop, now)
	require.Equal(t, StepComplete, step.Kind)
	assert.Equal(t, place(tuesday, "09:00", "10:00"), step.Alternative)
	assert.Equal(t, before.TimeSlots, room.TimeSlots, "planning does not mutate")

	applyMoves(t, room, step.Moves)
	assert.Len(t, room.TimeSlots, 6)
	assert.Equal(t, []string{"a", "a"}, owners(room, place(monday, "09:00", "10:00")))
	assert.Equal(t, []string{"b", "b"}, owners(room, place(monday, "13:00", "14:00")))
	assert.Equal(t, []string{"c", "c"}, owners(room, place(tuesday, "09:00", "10:00")))
}

func TestChain_Deeper(t *testing.T) {
	room, req := chainRoom()
	// c's only way out is Tuesday 09:00 which d holds; d can move to Wednesday
	room.Members[2].DefaultSchedule[1].Priority = 2
	hold(room, "d", place(tuesday, "09:00", "10:00"))
	p := newPlanner()

	hop, ok := p.StartChain(room, req, now)
	require.True(t, ok)
	require.Equal(t, "c", hop.ChainUserID)

	step := p.Advance(room, hop, now)
	require.Equal(t, StepDeeper, step.Kind)
	require.NotNil(t, step.Next)
	assert.Equal(t, "d", step.Next.ChainUserID)
	assert.Equal(t, "c", step.Next.IntermediateUserID)
	assert.Equal(t, 2, step.Next.Depth)
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, step.Next.Participants())

	final := p.Advance(room, step.Next, now)
	require.Equal(t, StepComplete, final.Kind)
	assert.Equal(t, place(wednesday, "09:00", "10:00"), final.Alternative)

	applyMoves(t, room, final.Moves)
	assert.Equal(t, []string{"a", "a"}, owners(room, place(monday, "09:00", "10:00")))
	assert.Equal(t, []string{"b", "b"}, owners(room, place(monday, "13:00", "14:00")))
	assert.Equal(t, []string{"c", "c"}, owners(room, place(tuesday, "09:00", "10:00")))
	assert.Equal(t, []string{"d", "d"}, owners(room, place(wednesday, "09:00", "10:00")))

	t.Run("depth limit fails the chain", func(t *testing.T) {
		room, req := chainRoom()
		room.Members[2].DefaultSchedule[1].Priority = 2
		hold(room, "d", place(tuesday, "09:00", "10:00"))
		shallow := NewPlanner(availability.NewFinder(1), 1)

		hop, ok := shallow.StartChain(room, req, now)
		require.True(t, ok)
		assert.Equal(t, StepFailed, shallow.Advance(room, hop, now).Kind)
	})
}

func TestChain_NextCandidate(t *testing.T) {
	room, req := chainRoom()
	// b needs 30 minutes; c and d split b's afternoon window
	room.TimeSlots = nil
	target := hold(room, "b", place(monday, "09:00", "09:30"))
	hold(room, "c", place(monday, "13:00", "13:30"))
	hold(room, "d", place(monday, "13:30", "14:00"))
	req.TargetSlot = target
	p := newPlanner()

	hop, ok := p.StartChain(room, req, now)
	require.True(t, ok)
	assert.Equal(t, "c", hop.ChainUserID)
	require.Len(t, hop.CandidateUsers, 1)
	assert.Equal(t, "d", hop.CandidateUsers[0].UserID)

	next, ok := p.NextCandidate(room, hop, now)
	require.True(t, ok)
	assert.Equal(t, "d", next.ChainUserID)
	assert.Equal(t, []string{"c"}, next.RejectedUsers)
	assert.Empty(t, next.CandidateUsers)

	_, ok = p.NextCandidate(room, next, now)
	assert.False(t, ok)
}

func TestStartChain_NoCandidates(t *testing.T) {
	room, req := chainRoom()
	room.Members[1].DefaultSchedule = room.Members[1].DefaultSchedule[:1]

	_, ok := newPlanner().StartChain(room, req, now)
	assert.False(t, ok)
}

func TestBuildChangeset_Stale(t *testing.T) {
	room, req := chainRoom()
	p := newPlanner()

	hop, ok := p.StartChain(room, req, now)
	require.True(t, ok)
	step := p.Advance(room, hop, now)
	require.Equal(t, StepComplete, step.Kind)

	// c's slot was handed to someone else meanwhile
	for i := range room.TimeSlots {
		if room.TimeSlots[i].UserID == "c" {
			room.TimeSlots[i].UserID = "d"
		}
	}

	_, err := BuildChangeset(room, step.Moves, domain.SlotStatusExchanged)
	assert.ErrorIs(t, err, ErrStaleChain)
}
