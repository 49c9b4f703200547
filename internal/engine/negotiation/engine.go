package negotiation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/engine/availability"
)

// Outcome метка перехода для логов и метрик
type Outcome string

const (
	OutcomeResponded         Outcome = "responded"
	OutcomeResolved          Outcome = "resolved"
	OutcomeEscalated         Outcome = "escalated"
	OutcomeAutoResolved      Outcome = "auto_resolved"
	OutcomeResponseCancelled Outcome = "response_cancelled"
)

// Credit начисление переноса участнику комнаты
type Credit struct {
	UserID string
	Entry  domain.CarryOverEntry
}

// Transition результат одного перехода: новое состояние переговоров и изменения комнаты.
// Комната при расчете не изменяется.
type Transition struct {
	Negotiation *domain.Negotiation
	Changeset   domain.Changeset
	Credits     []Credit
	Outcome     Outcome
	// Opened переговоры, выделенные из Negotiation для независимых столкновений
	Opened []*domain.Negotiation
}

// Input ответ участника
type Input struct {
	UserID           string
	Response         domain.MemberResponse
	YieldOption      domain.YieldOption
	AlternativeSlots []domain.Placement
	ChosenSlot       *domain.Interval
}

// MemberRequirement участник открываемых переговоров
type MemberRequirement struct {
	UserID        string
	RequiredSlots int
}

// OpenInput параметры открытия переговоров
type OpenInput struct {
	CreatedBy string
	Type      domain.NegotiationType
	Date      time.Time
	Window    domain.Interval
	Subject   string
	Members   []MemberRequirement
}

// Engine конечный автомат переговоров
type Engine struct {
	rnd Randomizer
}

// NewEngine создает движок переговоров
func NewEngine(rnd Randomizer) *Engine {
	if rnd == nil {
		rnd = MathRandomizer{}
	}
	return &Engine{rnd: rnd}
}

// Open создает переговоры. Тип выводится, если не задан:
// все хотят окно целиком - full_conflict; двое помещаются рядом - partial_conflict; иначе time_slot_choice.
func (e *Engine) Open(room *domain.Room, in OpenInput, now time.Time) (*domain.Negotiation, error) {
	if !in.Window.Valid() || !in.Window.IsAligned() {
		return nil, fmt.Errorf("%w: window %s-%s must be aligned to %d minutes",
			ErrInvalidNegotiation, in.Window.Start, in.Window.End, domain.SlotMinutes)
	}
	if domain.DateOnly(in.Date).Before(domain.DateOnly(now)) {
		return nil, fmt.Errorf("%w: date %s is in the past", ErrInvalidNegotiation, in.Date.Format(domain.DateFormat))
	}
	if len(in.Members) < 2 || len(in.Members) > domain.MaxNegotiationMember {
		return nil, fmt.Errorf("%w: need between 2 and %d members", ErrInvalidNegotiation, domain.MaxNegotiationMember)
	}

	windowSlots := in.Window.Minutes() / domain.SlotMinutes
	seen := map[string]struct{}{}
	allFull := true
	sum := 0
	for _, m := range in.Members {
		if _, dup := seen[m.UserID]; dup {
			return nil, fmt.Errorf("%w: duplicate member %s", ErrInvalidNegotiation, m.UserID)
		}
		seen[m.UserID] = struct{}{}
		if !room.IsMember(m.UserID) {
			return nil, fmt.Errorf("%w: user %s is not a room member", ErrInvalidNegotiation, m.UserID)
		}
		if m.RequiredSlots < 1 || m.RequiredSlots > windowSlots {
			return nil, fmt.Errorf("%w: member %s requires %d slots, window has %d",
				ErrInvalidNegotiation, m.UserID, m.RequiredSlots, windowSlots)
		}
		if m.RequiredSlots != windowSlots {
			allFull = false
		}
		sum += m.RequiredSlots
	}

	negType := in.Type
	switch negType {
	case "":
		switch {
		case allFull:
			negType = domain.NegotiationFullConflict
		case len(in.Members) == 2 && sum <= windowSlots:
			negType = domain.NegotiationPartialConflict
		default:
			negType = domain.NegotiationTimeSlotChoice
		}
	case domain.NegotiationPartialConflict:
		if len(in.Members) != 2 {
			return nil, fmt.Errorf("%w: partial_conflict needs exactly 2 members", ErrInvalidNegotiation)
		}
	case domain.NegotiationFullConflict, domain.NegotiationTimeSlotChoice:
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidNegotiation, in.Type)
	}

	n := &domain.Negotiation{
		ID:        uuid.NewString(),
		Type:      negType,
		SlotInfo:  domain.SlotInfo{Placement: domain.NewPlacement(in.Date, in.Window), Subject: in.Subject},
		Status:    domain.NegotiationActive,
		Messages:  []domain.NegotiationMessage{},
		CreatedBy: in.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, m := range in.Members {
		n.ConflictingMembers = append(n.ConflictingMembers, domain.ConflictingMember{
			UserID:        m.UserID,
			Response:      domain.ResponsePending,
			RequiredSlots: m.RequiredSlots,
		})
	}
	if n.Type == domain.NegotiationTimeSlotChoice {
		n.MemberSpecificTimeSlots = Options(room, n, now)
	}

	addMessage(n, fmt.Sprintf("Negotiation opened (%s) for %s %s-%s",
		n.Type, in.Date.Format(domain.DateFormat), in.Window.Start, in.Window.End), now)
	return n, nil
}

// Options считает для каждого участника свободные окна в день переговоров
func Options(room *domain.Room, n *domain.Negotiation, now time.Time) map[string][]domain.SlotOption {
	result := make(map[string][]domain.SlotOption, len(n.ConflictingMembers))
	for _, m := range n.ConflictingMembers {
		windows := availability.FreeWindows(room, m.UserID, n.SlotInfo.Date, m.RequiredMinutes(), m.AssignedSlotIDs, now)
		options := make([]domain.SlotOption, 0, len(windows))
		for _, w := range windows {
			options = append(options, domain.SlotOption{Date: domain.DateOnly(n.SlotInfo.Date), Interval: w})
		}
		result[m.UserID] = options
	}
	return result
}

// HasOverlappingResponse проверяет, ответил ли пользователь в других активных переговорах
// на пересекающееся время того же дня
func HasOverlappingResponse(room *domain.Room, n *domain.Negotiation, userID string) bool {
	for _, other := range room.ActiveNegotiations() {
		if other.ID == n.ID {
			continue
		}
		m, ok := other.Member(userID)
		if !ok || !m.HasResponded() {
			continue
		}
		if other.SlotInfo.Placement.Overlaps(n.SlotInfo.Placement) {
			return true
		}
	}
	return false
}

// Respond применяет ответ участника и, если возможно, завершает или эскалирует переговоры
func (e *Engine) Respond(room *domain.Room, current *domain.Negotiation, in Input, now time.Time) (*Transition, error) {
	if !current.IsActive() {
		return nil, ErrResolved
	}
	n, err := current.Clone()
	if err != nil {
		return nil, err
	}
	member, ok := n.Member(in.UserID)
	if !ok {
		return nil, ErrNotParticipant
	}
	if member.HasResponded() {
		return nil, ErrAlreadyResponded
	}

	t := &Transition{Negotiation: n, Outcome: OutcomeResponded}

	switch n.Type {
	case domain.NegotiationFullConflict:
		if err := respondFull(room, n, member, in, t); err != nil {
			return nil, err
		}
	case domain.NegotiationPartialConflict:
		if in.Response != domain.ResponseSplitFirst && in.Response != domain.ResponseSplitSecond {
			return nil, fmt.Errorf("%w: partial_conflict accepts split_first or split_second", ErrInvalidResponse)
		}
		member.Response = in.Response
		member.ChosenSlot = splitWindow(n.Window(), member.RequiredMinutes(), in.Response)
	case domain.NegotiationTimeSlotChoice:
		if err := respondChoice(room, n, member, in, now); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidResponse, n.Type)
	}

	respondedAt := now
	member.RespondedAt = &respondedAt
	addMessage(n, describeResponse(member), now)

	switch n.Type {
	case domain.NegotiationFullConflict:
		e.evaluateFull(room, n, t, now)
	case domain.NegotiationPartialConflict:
		evaluatePartial(n, t, now)
	case domain.NegotiationTimeSlotChoice:
		evaluateChoice(n, t, now)
	}

	n.UpdatedAt = now
	return t, nil
}

func respondFull(room *domain.Room, n *domain.Negotiation, member *domain.ConflictingMember, in Input, t *Transition) error {
	switch in.Response {
	case domain.ResponseClaim:
		member.Response = domain.ResponseClaim
		return nil
	case domain.ResponseYield:
	default:
		return fmt.Errorf("%w: full_conflict accepts yield or claim", ErrInvalidResponse)
	}

	member.Response = domain.ResponseYield
	member.YieldOption = in.YieldOption
	if member.YieldOption == "" {
		member.YieldOption = domain.YieldCarryOver
	}

	switch member.YieldOption {
	case domain.YieldCarryOver:
		return nil
	case domain.YieldAlternativeTime:
	default:
		return fmt.Errorf("%w: unknown yield option %q", ErrInvalidResponse, in.YieldOption)
	}

	if len(in.AlternativeSlots) == 0 {
		return fmt.Errorf("%w: alternative_time needs alternativeSlots", ErrInvalidResponse)
	}
	for i, alt := range in.AlternativeSlots {
		iv := alt.Interval()
		if !iv.Valid() || !iv.IsAligned() {
			return fmt.Errorf("%w: alternative %s-%s is not aligned to %d minutes", ErrSlotUnavailable, iv.Start, iv.End, domain.SlotMinutes)
		}
		if alt.Overlaps(n.SlotInfo.Placement) {
			return fmt.Errorf("%w: alternative %s-%s overlaps the contested window", ErrSlotUnavailable, iv.Start, iv.End)
		}
		if !availability.IsFree(room, alt, nil) {
			return fmt.Errorf("%w: alternative %s %s-%s is taken", ErrSlotUnavailable, alt.Date.Format(domain.DateFormat), iv.Start, iv.End)
		}
		for _, prev := range in.AlternativeSlots[:i] {
			if prev.Overlaps(alt) {
				return fmt.Errorf("%w: alternatives overlap each other", ErrSlotUnavailable)
			}
		}
	}

	member.AlternativeSlots = make([]domain.Placement, 0, len(in.AlternativeSlots))
	for _, alt := range in.AlternativeSlots {
		p := domain.NewPlacement(alt.Date, alt.Interval())
		atoms := domain.Atomize(member.UserID, p, domain.SlotStatusNegotiated, n.SlotInfo.Subject)
		t.Changeset.Insert = append(t.Changeset.Insert, atoms...)
		member.AssignedSlotIDs = append(member.AssignedSlotIDs, domain.SlotIDs(atoms)...)
		member.AlternativeSlots = append(member.AlternativeSlots, p)
	}
	return nil
}

func respondChoice(room *domain.Room, n *domain.Negotiation, member *domain.ConflictingMember, in Input, now time.Time) error {
	if in.Response != domain.ResponseChooseSlot {
		return fmt.Errorf("%w: time_slot_choice accepts choose_slot", ErrInvalidResponse)
	}
	if in.ChosenSlot == nil {
		return fmt.Errorf("%w: choose_slot needs chosenSlot", ErrInvalidResponse)
	}
	chosen := *in.ChosenSlot
	if !chosen.Valid() || !chosen.IsAligned() || chosen.Minutes() != member.RequiredMinutes() {
		return fmt.Errorf("%w: chosen %s-%s must be %d aligned minutes",
			ErrSlotUnavailable, chosen.Start, chosen.End, member.RequiredMinutes())
	}

	options := availability.FreeWindows(room, member.UserID, n.SlotInfo.Date, member.RequiredMinutes(), member.AssignedSlotIDs, now)
	for _, o := range options {
		if o.Contains(chosen) {
			member.Response = domain.ResponseChooseSlot
			member.ChosenSlot = &chosen
			return nil
		}
	}
	return fmt.Errorf("%w: chosen %s-%s is not among the member's options", ErrSlotUnavailable, chosen.Start, chosen.End)
}

func splitWindow(window domain.Interval, required int, response domain.MemberResponse) *domain.Interval {
	var iv domain.Interval
	if response == domain.ResponseSplitFirst {
		iv = domain.NewInterval(window.Start, window.Start.AddMinutes(required))
	} else {
		iv = domain.NewInterval(window.End.AddMinutes(-required), window.End)
	}
	return &iv
}

func (e *Engine) evaluateFull(room *domain.Room, n *domain.Negotiation, t *Transition, now time.Time) {
	var yielders, claimers, pending []*domain.ConflictingMember
	for i := range n.ConflictingMembers {
		m := &n.ConflictingMembers[i]
		switch m.Response {
		case domain.ResponseYield:
			yielders = append(yielders, m)
		case domain.ResponseClaim:
			claimers = append(claimers, m)
		default:
			pending = append(pending, m)
		}
	}

	// everyone else yielded: the last pending member claims by default, unless they left the room
	if len(claimers) == 0 && len(pending) == 1 && len(yielders) == len(n.ConflictingMembers)-1 {
		last := pending[0]
		pending = nil
		if room.IsMember(last.UserID) {
			last.Response = domain.ResponseClaim
			claimers = append(claimers, last)
			addMessage(n, fmt.Sprintf("%s is the only member left and claims the window by default", last.UserID), now)
		}
	}

	if len(pending) > 0 {
		return
	}

	switch len(claimers) {
	case 0:
		resolution := &domain.Resolution{Method: domain.ResolvedAllYield, ResolvedAt: now}
		creditYielders(n, yielders, resolution, t, now)
		resolve(n, resolution, t, now, "All members yielded; nobody was assigned the window")

	case 1:
		winner := claimers[0]
		resolution := &domain.Resolution{Method: domain.ResolvedSingleClaim, WinnerID: winner.UserID, ResolvedAt: now}
		assignFront(n, winner, resolution, t)
		creditYielders(n, yielders, resolution, t, now)
		resolve(n, resolution, t, now, fmt.Sprintf("%s keeps the window; the others yielded", winner.UserID))

	default:
		winner := claimers[e.rnd.Intn(len(claimers))]
		resolution := &domain.Resolution{Method: domain.ResolvedRandomDraw, WinnerID: winner.UserID, ResolvedAt: now}
		assignFront(n, winner, resolution, t)
		for _, c := range claimers {
			if c.UserID == winner.UserID {
				continue
			}
			credit(n, c, domain.CarryOverLostRandom, resolution, t, now)
		}
		creditYielders(n, yielders, resolution, t, now)
		resolve(n, resolution, t, now, fmt.Sprintf("Random draw among %d claims won by %s", len(claimers), winner.UserID))
	}
}

func evaluatePartial(n *domain.Negotiation, t *Transition, now time.Time) {
	if len(n.ConflictingMembers) != 2 {
		return
	}
	a, b := &n.ConflictingMembers[0], &n.ConflictingMembers[1]
	if !a.HasResponded() || !b.HasResponded() {
		return
	}

	if !a.ChosenSlot.Overlaps(*b.ChosenSlot) {
		resolution := &domain.Resolution{Method: domain.ResolvedSplit, ResolvedAt: now}
		assign(n, a, *a.ChosenSlot, resolution, t)
		assign(n, b, *b.ChosenSlot, resolution, t)
		resolve(n, resolution, t, now, "Window split between both members")
		return
	}

	escalate(n, []*domain.ConflictingMember{a, b}, a.ChosenSlot.Span(*b.ChosenSlot), now)
	t.Outcome = OutcomeEscalated
}

func evaluateChoice(n *domain.Negotiation, t *Transition, now time.Time) {
	for _, m := range n.ConflictingMembers {
		if !m.HasResponded() {
			return
		}
	}

	resolution := &domain.Resolution{Method: domain.ResolvedChoice, ResolvedAt: now}
	var contested []collision
	for _, c := range collisions(n.ConflictingMembers) {
		if len(c.members) == 1 {
			m := &n.ConflictingMembers[c.members[0]]
			assign(n, m, *m.ChosenSlot, resolution, t)
			continue
		}
		contested = append(contested, c)
	}

	if len(contested) == 0 {
		resolve(n, resolution, t, now, "Every member got the chosen time")
		return
	}

	for _, a := range resolution.Assignments {
		addMessage(n, fmt.Sprintf("%s assigned %s-%s", a.UserID, a.Slot.StartTime, a.Slot.EndTime), now)
	}

	groups := make([][]domain.ConflictingMember, len(contested))
	for i, c := range contested {
		for _, idx := range c.members {
			groups[i] = append(groups[i], n.ConflictingMembers[idx])
		}
	}

	for i, c := range contested[1:] {
		split := &domain.Negotiation{
			ID:                 uuid.NewString(),
			Type:               n.Type,
			SlotInfo:           n.SlotInfo,
			ConflictingMembers: groups[i+1],
			Messages:           []domain.NegotiationMessage{},
			Status:             domain.NegotiationActive,
			CreatedBy:          n.CreatedBy,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		addMessage(split, fmt.Sprintf("Split from negotiation %s", n.ID), now)
		escalate(split, memberPointers(split), c.window, now)
		t.Opened = append(t.Opened, split)
		addMessage(n, fmt.Sprintf("Collision over %s-%s moved to negotiation %s", c.window.Start, c.window.End, split.ID), now)
	}

	n.ConflictingMembers = groups[0]
	escalate(n, memberPointers(n), contested[0].window, now)
	t.Outcome = OutcomeEscalated
}

// collision группа участников, чьи выбранные окна пересекаются по цепочке
type collision struct {
	members []int
	window  domain.Interval
}

// collisions разбивает выбранные окна на связные группы пересечений, упорядоченные по началу
func collisions(members []domain.ConflictingMember) []collision {
	order := make([]int, 0, len(members))
	for i := range members {
		if members[i].ChosenSlot != nil {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return members[order[i]].ChosenSlot.Start < members[order[j]].ChosenSlot.Start
	})

	var result []collision
	for _, idx := range order {
		chosen := *members[idx].ChosenSlot
		if last := len(result) - 1; last >= 0 && result[last].window.Overlaps(chosen) {
			result[last].members = append(result[last].members, idx)
			result[last].window = result[last].window.Span(chosen)
			continue
		}
		result = append(result, collision{members: []int{idx}, window: chosen})
	}

	for i := range result {
		sort.Ints(result[i].members)
	}
	return result
}

func memberPointers(n *domain.Negotiation) []*domain.ConflictingMember {
	result := make([]*domain.ConflictingMember, 0, len(n.ConflictingMembers))
	for i := range n.ConflictingMembers {
		result = append(result, &n.ConflictingMembers[i])
	}
	return result
}

// escalate turns the negotiation into full_conflict over window, keeping chosen slots and resetting responses
func escalate(n *domain.Negotiation, members []*domain.ConflictingMember, window domain.Interval, now time.Time) {
	from := n.Type
	n.Type = domain.NegotiationFullConflict
	n.SlotInfo.Placement = domain.NewPlacement(n.SlotInfo.Date, window)
	n.MemberSpecificTimeSlots = nil
	for _, m := range members {
		m.Response = domain.ResponsePending
		m.RespondedAt = nil
		m.YieldOption = ""
	}
	addMessage(n, fmt.Sprintf("Choices collide: %s escalated to full_conflict over %s-%s", from, window.Start, window.End), now)
}

func assignFront(n *domain.Negotiation, winner *domain.ConflictingMember, resolution *domain.Resolution, t *Transition) {
	window := n.Window()
	assign(n, winner, domain.NewInterval(window.Start, window.Start.AddMinutes(winner.RequiredMinutes())), resolution, t)
}

func assign(n *domain.Negotiation, m *domain.ConflictingMember, iv domain.Interval, resolution *domain.Resolution, t *Transition) {
	p := domain.NewPlacement(n.SlotInfo.Date, iv)
	atoms := domain.Atomize(m.UserID, p, domain.SlotStatusNegotiated, n.SlotInfo.Subject)
	ids := domain.SlotIDs(atoms)
	t.Changeset.Insert = append(t.Changeset.Insert, atoms...)
	m.AssignedSlotIDs = append(m.AssignedSlotIDs, ids...)
	resolution.Assignments = append(resolution.Assignments, domain.Assignment{UserID: m.UserID, Slot: p, SlotIDs: ids})
}

func creditYielders(n *domain.Negotiation, yielders []*domain.ConflictingMember, resolution *domain.Resolution, t *Transition, now time.Time) {
	for _, y := range yielders {
		if y.YieldOption == domain.YieldAlternativeTime {
			continue
		}
		credit(n, y, domain.CarryOverYield, resolution, t, now)
	}
}

func credit(n *domain.Negotiation, m *domain.ConflictingMember, reason domain.CarryOverReason, resolution *domain.Resolution, t *Transition, now time.Time) {
	t.Credits = append(t.Credits, Credit{
		UserID: m.UserID,
		Entry: domain.CarryOverEntry{
			NegotiationID: n.ID,
			Minutes:       n.Window().Minutes(),
			Week:          domain.WeekStart(n.SlotInfo.Date),
			Reason:        reason,
			CreatedAt:     now,
		},
	})
	resolution.CarriedOver = append(resolution.CarriedOver, m.UserID)
}

func resolve(n *domain.Negotiation, resolution *domain.Resolution, t *Transition, now time.Time, text string) {
	n.Status = domain.NegotiationResolved
	n.Resolution = resolution
	n.MemberSpecificTimeSlots = nil
	if t.Outcome != OutcomeAutoResolved {
		t.Outcome = OutcomeResolved
	}
	addMessage(n, text, now)
}

// CancelResponse откатывает ответ участника вместе с созданными им слотами
func (e *Engine) CancelResponse(room *domain.Room, current *domain.Negotiation, userID string, now time.Time) (*Transition, error) {
	if !current.IsActive() {
		return nil, ErrResolved
	}
	n, err := current.Clone()
	if err != nil {
		return nil, err
	}
	member, ok := n.Member(userID)
	if !ok {
		return nil, ErrNotParticipant
	}
	if !member.HasResponded() {
		return nil, ErrNotResponded
	}

	t := &Transition{Negotiation: n, Outcome: OutcomeResponseCancelled}
	for _, id := range member.AssignedSlotIDs {
		if s, ok := room.Slot(id); ok && s.UserID == userID {
			t.Changeset.Remove = append(t.Changeset.Remove, id)
		}
	}

	previous := member.Response
	member.Response = domain.ResponsePending
	member.YieldOption = ""
	member.AlternativeSlots = nil
	member.AssignedSlotIDs = nil
	member.RespondedAt = nil
	if n.Type != domain.NegotiationFullConflict {
		member.ChosenSlot = nil
	}
	n.UpdatedAt = now
	addMessage(n, fmt.Sprintf("%s withdrew the %s response", userID, previous), now)
	return t, nil
}

// AutoResolve закрывает переговоры, если недельное требование каждого участника
// покрыто выделенным временем и переносами
func (e *Engine) AutoResolve(room *domain.Room, current *domain.Negotiation, requiredPerWeek int, now time.Time) (*Transition, bool) {
	if requiredPerWeek <= 0 || !current.IsActive() {
		return nil, false
	}

	week := domain.WeekStart(current.SlotInfo.Date)
	for _, cm := range current.ConflictingMembers {
		member, ok := room.Member(cm.UserID)
		if !ok {
			return nil, false
		}
		covered := room.UserMinutesBetween(cm.UserID, week, week.AddDate(0, 0, 7)) + member.CarryOverForWeek(week)
		if covered < requiredPerWeek {
			return nil, false
		}
	}

	n, err := current.Clone()
	if err != nil {
		return nil, false
	}
	t := &Transition{Negotiation: n, Outcome: OutcomeAutoResolved}
	resolve(n, &domain.Resolution{Method: domain.ResolvedAuto, ResolvedAt: now}, t, now,
		"Every member's weekly requirement is already covered")
	n.UpdatedAt = now
	return t, true
}

func addMessage(n *domain.Negotiation, text string, now time.Time) {
	n.Messages = append(n.Messages, domain.NegotiationMessage{
		ID:        uuid.NewString(),
		SenderID:  domain.SystemSenderID,
		Text:      text,
		System:    true,
		CreatedAt: now,
	})
}

func describeResponse(m *domain.ConflictingMember) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s responded %s", m.UserID, m.Response)
	if m.YieldOption != "" {
		fmt.Fprintf(&b, " (%s)", m.YieldOption)
	}
	if m.ChosenSlot != nil {
		fmt.Fprintf(&b, " %s-%s", m.ChosenSlot.Start, m.ChosenSlot.End)
	}
	return b.String()
}
