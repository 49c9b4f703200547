package negotiation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	negotiationEngine "github.com/m04kA/SMC-SlotExchangeService/internal/engine/negotiation"
	"github.com/m04kA/SMC-SlotExchangeService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SlotExchangeService/internal/integrations/activitylog"
	"github.com/m04kA/SMC-SlotExchangeService/internal/service/rooms"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/logger"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/roomlock"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/txmanager"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/types"
)

const roomID = "room-1"

var (
	monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	now    = monday.Add(-12 * time.Hour)
)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type fixedRandomizer int

func (f fixedRandomizer) Intn(n int) int { return int(f) % n }

type recorder struct{ events []activitylog.Event }

func (r *recorder) Record(_ context.Context, e activitylog.Event) { r.events = append(r.events, e) }

func (r *recorder) types() []activitylog.EventType {
	var result []activitylog.EventType
	for _, e := range r.events {
		result = append(result, e.Type)
	}
	return result
}

type counters map[string]int

func (c counters) IncNegotiationTransition(negotiationType, outcome string) {
	c[negotiationType+"/"+outcome]++
}

type fixture struct {
	uc      *UseCase
	svc     *rooms.Service
	events  *recorder
	metrics counters
}

func tod(s string) types.TimeOfDay {
	return types.MustParseTimeOfDay(s)
}

func iv(start, end string) domain.Interval {
	return domain.NewInterval(tod(start), tod(end))
}

func newRoom(users ...string) *domain.Room {
	room := &domain.Room{ID: roomID, OwnerID: "owner"}
	for _, u := range users {
		room.Members = append(room.Members, domain.Member{
			UserID: u,
			DefaultSchedule: []domain.PreferenceEntry{
				{DayOfWeek: time.Monday, StartTime: tod("09:00"), EndTime: tod("12:00"), Priority: domain.PreferredPriority},
			},
		})
	}
	return room
}

func setup(t *testing.T, room *domain.Room, rnd int) *fixture {
	t.Helper()
	svc := rooms.NewService(memory.NewRepository(), txmanager.NewNoop(), roomlock.New(time.Second, nil), logger.NewNop())
	_, err := svc.Sync(context.Background(), room)
	require.NoError(t, err)

	f := &fixture{svc: svc, events: &recorder{}, metrics: counters{}}
	f.uc = NewUseCase(svc, negotiationEngine.NewEngine(fixedRandomizer(rnd)), f.events, f.metrics, logger.NewNop())
	f.uc.timeProvider = fixedTime{now}
	return f
}

func (f *fixture) open(t *testing.T, window domain.Interval, members ...MemberRequirement) *domain.Negotiation {
	t.Helper()
	res, err := f.uc.Open(context.Background(), &OpenRequest{
		RoomID:    roomID,
		UserID:    "owner",
		Date:      monday,
		StartTime: window.Start,
		EndTime:   window.End,
		Subject:   "math",
		Members:   members,
	})
	require.NoError(t, err)
	return res.Negotiation
}

func (f *fixture) respond(t *testing.T, n *domain.Negotiation, user string, response domain.MemberResponse) *Result {
	t.Helper()
	res, err := f.uc.Respond(context.Background(), &RespondRequest{
		RoomID: roomID, UserID: user, NegotiationID: n.ID, Response: response,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) room(t *testing.T) *domain.Room {
	t.Helper()
	room, err := f.svc.Get(context.Background(), roomID)
	require.NoError(t, err)
	return room
}

func userSlots(room *domain.Room, user string) []domain.TimeSlot {
	var result []domain.TimeSlot
	for _, s := range room.TimeSlots {
		if s.UserID == user {
			result = append(result, s)
		}
	}
	return result
}

func need(user string, slots int) MemberRequirement {
	return MemberRequirement{UserID: user, RequiredSlots: slots}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	f := setup(t, newRoom("a", "b", "c"), 0)

	n := f.open(t, iv("09:00", "10:00"), need("a", 2), need("b", 2))
	assert.Equal(t, domain.NegotiationFullConflict, n.Type)
	assert.Equal(t, "owner", n.CreatedBy)
	assert.Equal(t, []activitylog.EventType{activitylog.EventNegotiationOpened}, f.events.types())
	assert.ElementsMatch(t, []string{"a", "b"}, f.events.events[0].Recipients)
	assert.Equal(t, 1, f.metrics["full_conflict/opened"])
	assert.Len(t, f.room(t).Negotiations, 1)

	tests := []struct {
		name string
		req  OpenRequest
		want error
	}{
		{"not owner", OpenRequest{UserID: "a", Members: []MemberRequirement{need("a", 1), need("b", 1)}}, ErrNotOwner},
		{"single member", OpenRequest{UserID: "owner", Members: []MemberRequirement{need("a", 1)}}, ErrInvalidInput},
		{"non-member", OpenRequest{UserID: "owner", Members: []MemberRequirement{need("a", 1), need("z", 1)}}, ErrInvalidInput},
		{"subject too long", OpenRequest{UserID: "owner", Subject: strings.Repeat("x", domain.MaxSubjectLength+1),
			Members: []MemberRequirement{need("a", 1), need("b", 1)}}, ErrInvalidInput},
		{"unknown type", OpenRequest{UserID: "owner", Type: "duel", Members: []MemberRequirement{need("a", 1), need("b", 1)}}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.RoomID = roomID
			tt.req.Date = monday
			tt.req.StartTime, tt.req.EndTime = tod("09:00"), tod("10:00")
			_, err := f.uc.Open(ctx, &tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("unknown room", func(t *testing.T) {
		_, err := f.uc.Open(ctx, &OpenRequest{RoomID: "missing", UserID: "owner", Date: monday,
			StartTime: tod("09:00"), EndTime: tod("10:00"), Members: []MemberRequirement{need("a", 1), need("b", 1)}})
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()
	f := setup(t, newRoom("a", "b", "c", "d"), 0)

	full := f.open(t, iv("09:00", "10:00"), need("a", 2), need("b", 2))
	f.uc.timeProvider = fixedTime{now.Add(time.Minute)}
	choice := f.open(t, iv("10:00", "11:00"), need("a", 1), need("b", 1), need("c", 1))
	require.Equal(t, domain.NegotiationTimeSlotChoice, choice.Type)

	list, err := f.uc.List(ctx, &ListRequest{RoomID: roomID, UserID: "a"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, full.ID, list[0].ID)
	assert.Equal(t, []domain.SlotOption{{Date: monday, Interval: iv("09:00", "12:00")}}, list[1].MemberSpecificTimeSlots["a"])

	list, err = f.uc.List(ctx, &ListRequest{RoomID: roomID, UserID: "c"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, choice.ID, list[0].ID)

	list, err = f.uc.List(ctx, &ListRequest{RoomID: roomID, UserID: "d"})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = f.uc.List(ctx, &ListRequest{RoomID: roomID, UserID: "owner"})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = f.uc.List(ctx, &ListRequest{RoomID: roomID, UserID: "z"})
	assert.ErrorIs(t, err, ErrNotMember)

	t.Run("options follow the room", func(t *testing.T) {
		require.NoError(t, f.svc.Mutate(ctx, roomID, func(_ context.Context, room *domain.Room) error {
			atoms := domain.Atomize("d", domain.NewPlacement(monday, iv("09:00", "10:00")), domain.SlotStatusConfirmed, "math")
			return room.Apply(domain.Changeset{Insert: atoms})
		}))

		list, err := f.uc.List(ctx, &ListRequest{RoomID: roomID, UserID: "a"})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, []domain.SlotOption{{Date: monday, Interval: iv("10:00", "12:00")}}, list[1].MemberSpecificTimeSlots["a"])
	})
}

func TestRespond_RandomDraw(t *testing.T) {
	f := setup(t, newRoom("a", "b"), 1)
	n := f.open(t, iv("09:00", "10:00"), need("a", 2), need("b", 2))

	first := f.respond(t, n, "a", domain.ResponseClaim)
	assert.Equal(t, string(negotiationEngine.OutcomeResponded), first.Outcome)
	assert.Equal(t, domain.NegotiationActive, first.Negotiation.Status)

	res := f.respond(t, n, "b", domain.ResponseClaim)
	assert.Equal(t, string(negotiationEngine.OutcomeResolved), res.Outcome)
	assert.Equal(t, domain.NegotiationResolved, res.Negotiation.Status)
	require.NotNil(t, res.Negotiation.Resolution)
	assert.Equal(t, domain.ResolvedRandomDraw, res.Negotiation.Resolution.Method)
	assert.Equal(t, "b", res.Negotiation.Resolution.WinnerID)

	room := f.room(t)
	won := userSlots(room, "b")
	require.Len(t, won, 2)
	assert.Equal(t, tod("09:00"), won[0].StartTime)
	assert.Empty(t, userSlots(room, "a"))

	a, _ := room.Member("a")
	require.Len(t, a.CarryOverHistory, 1)
	assert.Equal(t, 60, a.CarryOverHistory[0].Minutes)
	assert.Equal(t, domain.CarryOverLostRandom, a.CarryOverHistory[0].Reason)
	assert.Equal(t, 60, a.CarryOver)

	assert.Equal(t, 2, f.metrics["full_conflict/responded"]+f.metrics["full_conflict/resolved"])
	assert.Equal(t, 1, f.metrics["full_conflict/resolved"])
	assert.Contains(t, f.events.types(), activitylog.EventNegotiationResolved)

	_, err := f.uc.Respond(context.Background(), &RespondRequest{RoomID: roomID, UserID: "a", NegotiationID: n.ID, Response: domain.ResponseYield})
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestRespond_Errors(t *testing.T) {
	ctx := context.Background()
	f := setup(t, newRoom("a", "b", "c", "d"), 0)
	n := f.open(t, iv("09:00", "10:00"), need("a", 2), need("b", 2), need("d", 2))

	tests := []struct {
		name string
		req  RespondRequest
		want error
	}{
		{"unknown negotiation", RespondRequest{UserID: "a", NegotiationID: "missing", Response: domain.ResponseClaim}, ErrNegotiationNotFound},
		{"not participant", RespondRequest{UserID: "c", NegotiationID: n.ID, Response: domain.ResponseClaim}, ErrNotParticipant},
		{"empty response", RespondRequest{UserID: "a", NegotiationID: n.ID}, ErrInvalidInput},
		{"wrong response for type", RespondRequest{UserID: "a", NegotiationID: n.ID, Response: domain.ResponseSplitFirst}, ErrInvalidInput},
		{"unknown yield option", RespondRequest{UserID: "a", NegotiationID: n.ID, Response: domain.ResponseYield, YieldOption: "later"}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.RoomID = roomID
			_, err := f.uc.Respond(ctx, &tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	f.respond(t, n, "a", domain.ResponseYield)
	_, err := f.uc.Respond(ctx, &RespondRequest{RoomID: roomID, UserID: "a", NegotiationID: n.ID, Response: domain.ResponseClaim})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRespond_OverlappingResponse(t *testing.T) {
	ctx := context.Background()
	f := setup(t, newRoom("a", "b", "c"), 0)
	first := f.open(t, iv("09:00", "10:00"), need("a", 2), need("b", 2))
	overlapping := f.open(t, iv("09:30", "10:30"), need("a", 2), need("c", 2))
	apart := f.open(t, iv("11:00", "12:00"), need("a", 2), need("c", 2))

	f.respond(t, first, "a", domain.ResponseClaim)

	_, err := f.uc.Respond(ctx, &RespondRequest{RoomID: roomID, UserID: "a", NegotiationID: overlapping.ID, Response: domain.ResponseClaim})
	assert.ErrorIs(t, err, ErrOverlappingResponse)

	_, err = f.uc.Respond(ctx, &RespondRequest{RoomID: roomID, UserID: "a", NegotiationID: apart.ID, Response: domain.ResponseClaim})
	assert.NoError(t, err)

	// c has not answered anything overlapping
	_, err = f.uc.Respond(ctx, &RespondRequest{RoomID: roomID, UserID: "c", NegotiationID: overlapping.ID, Response: domain.ResponseYield})
	assert.NoError(t, err)
}

func TestRespond_PartialEscalates(t *testing.T) {
	f := setup(t, newRoom("a", "b"), 0)
	n := f.open(t, iv("09:00", "10:00"), need("a", 1), need("b", 1))
	require.Equal(t, domain.NegotiationPartialConflict, n.Type)

	f.respond(t, n, "a", domain.ResponseSplitFirst)
	res := f.respond(t, n, "b", domain.ResponseSplitFirst)

	assert.Equal(t, string(negotiationEngine.OutcomeEscalated), res.Outcome)
	assert.Equal(t, domain.NegotiationFullConflict, res.Negotiation.Type)
	assert.Equal(t, iv("09:00", "09:30"), res.Negotiation.Window())
	for _, m := range res.Negotiation.ConflictingMembers {
		assert.Equal(t, domain.ResponsePending, m.Response)
	}
	assert.Equal(t, 1, f.metrics["partial_conflict/escalated"])
	assert.Contains(t, f.events.types(), activitylog.EventNegotiationEscalated)
	assert.Empty(t, f.room(t).TimeSlots)
}

func TestCancelResponse(t *testing.T) {
	ctx := context.Background()
	f := setup(t, newRoom("a", "b", "c"), 0)
	n := f.open(t, iv("09:00", "10:00"), need("a", 2), need("b", 2), need("c", 2))
	alternative := domain.NewPlacement(monday, iv("11:00", "12:00"))

	res, err := f.uc.Respond(ctx, &RespondRequest{
		RoomID: roomID, UserID: "a", NegotiationID: n.ID,
		Response: domain.ResponseYield, YieldOption: domain.YieldAlternativeTime,
		AlternativeSlots: []domain.Placement{alternative},
	})
	require.NoError(t, err)
	member, _ := res.Negotiation.Member("a")
	assert.Len(t, member.AssignedSlotIDs, 2)
	assert.Len(t, userSlots(f.room(t), "a"), 2)

	t.Run("alternative already taken", func(t *testing.T) {
		_, err := f.uc.Respond(ctx, &RespondRequest{
			RoomID: roomID, UserID: "b", NegotiationID: n.ID,
			Response: domain.ResponseYield, YieldOption: domain.YieldAlternativeTime,
			AlternativeSlots: []domain.Placement{domain.NewPlacement(monday, iv("11:00", "11:30"))},
		})
		assert.ErrorIs(t, err, ErrSlotTaken)
	})

	cancelled, err := f.uc.CancelResponse(ctx, &CancelResponseRequest{RoomID: roomID, UserID: "a", NegotiationID: n.ID})
	require.NoError(t, err)
	assert.Equal(t, string(negotiationEngine.OutcomeResponseCancelled), cancelled.Outcome)
	member, _ = cancelled.Negotiation.Member("a")
	assert.Equal(t, domain.ResponsePending, member.Response)
	assert.Empty(t, member.AssignedSlotIDs)
	assert.Empty(t, userSlots(f.room(t), "a"), "provisional slots are removed")

	_, err = f.uc.CancelResponse(ctx, &CancelResponseRequest{RoomID: roomID, UserID: "a", NegotiationID: n.ID})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.uc.CancelResponse(ctx, &CancelResponseRequest{RoomID: roomID, UserID: "z", NegotiationID: n.ID})
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = f.uc.CancelResponse(ctx, &CancelResponseRequest{RoomID: roomID, UserID: "a", NegotiationID: "missing"})
	assert.ErrorIs(t, err, ErrNegotiationNotFound)
}

func TestRespond_LastMemberClaimsByDefault(t *testing.T) {
	f := setup(t, newRoom("a", "b", "c"), 0)
	n := f.open(t, iv("09:00", "10:00"), need("a", 2), need("b", 2), need("c", 2))

	first := f.respond(t, n, "a", domain.ResponseYield)
	assert.Equal(t, domain.NegotiationActive, first.Negotiation.Status)

	res := f.respond(t, n, "b", domain.ResponseYield)
	assert.Equal(t, string(negotiationEngine.OutcomeResolved), res.Outcome)
	require.NotNil(t, res.Negotiation.Resolution)
	assert.Equal(t, domain.ResolvedSingleClaim, res.Negotiation.Resolution.Method)
	assert.Equal(t, "c", res.Negotiation.Resolution.WinnerID)

	room := f.room(t)
	assert.Len(t, userSlots(room, "c"), 2)
	for _, user := range []string{"a", "b"} {
		m, _ := room.Member(user)
		assert.Equal(t, 60, m.CarryOver, user)
	}
}

func TestRespond_ChoiceCollisionsOpenNegotiations(t *testing.T) {
	ctx := context.Background()
	f := setup(t, newRoom("a", "b", "c", "d", "e"), 0)
	n := f.open(t, iv("09:00", "12:00"), need("a", 2), need("b", 2), need("c", 2), need("d", 2), need("e", 2))
	require.Equal(t, domain.NegotiationTimeSlotChoice, n.Type)

	picks := []struct {
		user   string
		window domain.Interval
	}{
		{"a", iv("09:00", "10:00")},
		{"b", iv("09:00", "10:00")},
		{"c", iv("10:00", "11:00")},
		{"d", iv("11:00", "12:00")},
		{"e", iv("11:00", "12:00")},
	}
	var res *Result
	for _, p := range picks {
		window := p.window
		var err error
		res, err = f.uc.Respond(ctx, &RespondRequest{
			RoomID: roomID, UserID: p.user, NegotiationID: n.ID,
			Response: domain.ResponseChooseSlot, ChosenSlot: &window,
		})
		require.NoError(t, err)
	}

	assert.Equal(t, string(negotiationEngine.OutcomeEscalated), res.Outcome)
	assert.Equal(t, iv("09:00", "10:00"), res.Negotiation.Window())
	require.Len(t, res.Opened, 1)
	assert.Equal(t, 2, f.metrics["time_slot_choice/escalated"])

	room := f.room(t)
	assert.Len(t, userSlots(room, "c"), 2)
	opened, ok := room.Negotiation(res.Opened[0])
	require.True(t, ok)
	assert.Equal(t, domain.NegotiationFullConflict, opened.Type)
	assert.Equal(t, iv("11:00", "12:00"), opened.Window())
	assert.True(t, opened.Involves("d"))

	list, err := f.uc.List(ctx, &ListRequest{RoomID: roomID, UserID: "owner"})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestRespond_AutoResolvesOtherNegotiations(t *testing.T) {
	room := newRoom("a", "b")
	room.Settings.RequiredMinutesPerWeek = 60
	f := setup(t, room, 0)

	contested := f.open(t, iv("09:00", "10:00"), need("a", 2), need("b", 2))
	other := f.open(t, iv("10:00", "11:00"), need("a", 2), need("b", 2))

	first := f.respond(t, contested, "a", domain.ResponseClaim)
	assert.Empty(t, first.AutoResolved)

	res := f.respond(t, contested, "b", domain.ResponseClaim)
	assert.Equal(t, domain.ResolvedRandomDraw, res.Negotiation.Resolution.Method)
	assert.Equal(t, []string{other.ID}, res.AutoResolved)

	stored, ok := f.room(t).Negotiation(other.ID)
	require.True(t, ok)
	assert.Equal(t, domain.NegotiationResolved, stored.Status)
	assert.Equal(t, domain.ResolvedAuto, stored.Resolution.Method)
	assert.Equal(t, 1, f.metrics["full_conflict/auto_resolved"])

	list, err := f.uc.List(context.Background(), &ListRequest{RoomID: roomID, UserID: "a"})
	require.NoError(t, err)
	assert.Empty(t, list)
}
