package exchange

import (
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/engine/availability"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/types"
)

// Planner plans exchange resolutions. Every method is read-only on the room:
// the result is a list of moves that the caller turns into a changeset.
type Planner struct {
	finder   *availability.Finder
	maxDepth int
}

// NewPlanner creates a planner
func NewPlanner(finder *availability.Finder, maxDepth int) *Planner {
	if maxDepth <= 0 {
		maxDepth = domain.DefaultMaxChainDepth
	}
	return &Planner{finder: finder, maxDepth: maxDepth}
}

// MaxDepth returns the longest chain the planner will build
func (p *Planner) MaxDepth() int {
	return p.maxDepth
}

// PlanDirect checks whether a straight swap satisfies both parties.
// Requires an offer: the target's block must lie in the requester's preferred windows
// and every offered block must lie in the target's preferred windows.
func (p *Planner) PlanDirect(room *domain.Room, req *domain.ExchangeRequest) ([]domain.ChainMove, bool) {
	if len(req.RequesterSlots) == 0 {
		return nil, false
	}
	requester, ok := room.Member(req.RequesterID)
	if !ok {
		return nil, false
	}
	target, ok := room.Member(req.TargetUserID)
	if !ok {
		return nil, false
	}

	if !availability.WithinPreferred(room, requester, req.TargetSlot.Placement, domain.PreferredPriority) {
		return nil, false
	}
	for _, offered := range req.RequesterSlots {
		if !availability.WithinPreferred(room, target, offered.Placement, domain.PreferredPriority) {
			return nil, false
		}
	}

	moves := []domain.ChainMove{{
		UserID:        req.RequesterID,
		VacateSlotIDs: req.OfferedSlotIDs(),
		Occupy:        req.TargetSlot.Placement,
	}}
	for i, offered := range req.RequesterSlots {
		move := domain.ChainMove{UserID: req.TargetUserID, Occupy: offered.Placement}
		if i == 0 {
			move.VacateSlotIDs = req.TargetSlot.SlotIDs
		}
		moves = append(moves, move)
	}
	return moves, true
}

// PlanRelocation looks for a free block for the target so the requester can take the target's block
func (p *Planner) PlanRelocation(room *domain.Room, req *domain.ExchangeRequest, now time.Time) ([]domain.ChainMove, domain.Placement, bool) {
	alt, ok := p.finder.Find(room, availability.Query{
		UserID:          req.TargetUserID,
		RequiredMinutes: req.TargetSlot.Minutes(),
		ExcludeDate:     req.TargetSlot.Date,
		TreatAsFree:     req.OfferedSlotIDs(),
		MinPriority:     domain.AnyPriority,
	}, now)
	if !ok {
		return nil, domain.Placement{}, false
	}

	moves := []domain.ChainMove{
		{UserID: req.RequesterID, VacateSlotIDs: releasedOffer(room, req.OfferedSlotIDs(), req.TargetSlot.Placement, alt), Occupy: req.TargetSlot.Placement},
		{UserID: req.TargetUserID, VacateSlotIDs: req.TargetSlot.SlotIDs, Occupy: alt},
	}
	return moves, alt, true
}

// Candidates finds users occupying the needer's preferred windows in the week of need.
// Each candidate offers the first need.Minutes() of its block inside the window; sorted by soonest date.
func (p *Planner) Candidates(room *domain.Room, neederID string, need domain.Placement, exclude []string, now time.Time) []domain.ChainCandidate {
	needer, ok := room.Member(neederID)
	if !ok {
		return nil
	}

	skip := map[string]struct{}{neederID: {}}
	for _, id := range exclude {
		skip[id] = struct{}{}
	}

	today := domain.DateOnly(now)
	weekStart := domain.WeekStart(need.Date)
	required := need.Minutes()
	seen := map[string]struct{}{}

	var result []domain.ChainCandidate
	for d := weekStart; d.Before(weekStart.AddDate(0, 0, 7)); d = d.AddDate(0, 0, 1) {
		if d.Before(today) {
			continue
		}
		preferred := availability.ActionableBlocks(room, needer, d, domain.PreferredPriority)
		if len(preferred) == 0 {
			continue
		}

		for _, block := range domain.GroupBlocks(room.SlotsOn(d)) {
			if _, ok := skip[block.UserID]; ok {
				continue
			}
			if _, ok := seen[block.UserID]; ok {
				continue
			}
			ref, ok := chainSlotIn(block, preferred, required, now)
			if !ok {
				continue
			}
			seen[block.UserID] = struct{}{}
			result = append(result, domain.ChainCandidate{
				UserID:        block.UserID,
				Slot:          ref,
				DaysFromToday: domain.DaysBetween(today, d),
			})
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i].Slot.Placement, result[j].Slot.Placement
		if !domain.SameDate(a.Date, b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.StartTime < b.StartTime
	})
	return result
}

// chainSlotIn picks the first required minutes of block that fall inside one preferred window
func chainSlotIn(block domain.SlotBlock, preferred []domain.Interval, required int, now time.Time) (domain.SlotRef, bool) {
	for _, window := range preferred {
		inter := block.Placement.Interval().Intersect(window)
		start := alignUp(inter.Start)
		if domain.SameDate(block.Placement.Date, now) {
			if nowAligned := alignUp(types.TimeOfDayFromTime(now)); nowAligned > start {
				start = nowAligned
			}
		}
		if start.AddMinutes(required) > inter.End {
			continue
		}
		span := domain.NewInterval(start, start.AddMinutes(required))

		var ids []string
		for _, s := range block.Slots {
			if span.Contains(s.Interval()) {
				ids = append(ids, s.ID)
			}
		}
		return domain.SlotRef{
			UserID:    block.UserID,
			SlotIDs:   ids,
			Placement: domain.NewPlacement(block.Placement.Date, span),
		}, true
	}
	return domain.SlotRef{}, false
}

// StartChain builds the first hop for a request whose target has no free alternative.
// Returns false when nobody sits in the target's preferred windows.
func (p *Planner) StartChain(room *domain.Room, req *domain.ExchangeRequest, now time.Time) (*domain.ChainData, bool) {
	exclude := []string{req.RequesterID, req.TargetUserID}
	candidates := p.Candidates(room, req.TargetUserID, req.TargetSlot.Placement, exclude, now)
	if len(candidates) == 0 {
		return nil, false
	}

	first := candidates[0]
	return &domain.ChainData{
		OriginalRequesterID: req.RequesterID,
		OriginalRequestID:   req.ID,
		IntermediateUserID:  req.TargetUserID,
		IntermediateSlot:    req.TargetSlot,
		ChainUserID:         first.UserID,
		ChainSlot:           first.Slot,
		Moves: []domain.ChainMove{{
			UserID:        req.RequesterID,
			VacateSlotIDs: req.OfferedSlotIDs(),
			Occupy:        req.TargetSlot.Placement,
		}},
		TreatAsFree:    req.OfferedSlotIDs(),
		RejectedUsers:  []string{},
		CandidateUsers: candidates[1:],
		Depth:          1,
	}, true
}

// NextCandidate re-targets a declined hop at the next candidate.
// Candidates are recomputed against the current room, excluding everyone who declined.
func (p *Planner) NextCandidate(room *domain.Room, hop *domain.ChainData, now time.Time) (*domain.ChainData, bool) {
	rejected := append(append([]string{}, hop.RejectedUsers...), hop.ChainUserID)
	exclude := append(hop.Participants(), rejected...)

	candidates := p.Candidates(room, hop.IntermediateUserID, hop.IntermediateSlot.Placement, exclude, now)
	if len(candidates) == 0 {
		return nil, false
	}

	next := *hop
	next.Moves = append([]domain.ChainMove{}, hop.Moves...)
	next.ChainUserID = candidates[0].UserID
	next.ChainSlot = candidates[0].Slot
	next.RejectedUsers = rejected
	next.CandidateUsers = candidates[1:]
	return &next, true
}

// StepKind is the outcome of an accepted hop
type StepKind int

const (
	// StepComplete means the chain user has a free block and the whole chain can commit
	StepComplete StepKind = iota
	// StepDeeper means the chain user must be relocated by one more hop
	StepDeeper
	// StepFailed means the chain cannot be completed; nothing was mutated
	StepFailed
)

// Step is the planned continuation after a chain user accepted
type Step struct {
	Kind        StepKind
	Moves       []domain.ChainMove
	Alternative domain.Placement
	Next        *domain.ChainData
}

// Advance plans what happens after the chain user accepted a hop
func (p *Planner) Advance(room *domain.Room, hop *domain.ChainData, now time.Time) Step {
	moves := append(append([]domain.ChainMove{}, hop.Moves...), intermediateMove(hop))

	alt, ok := p.finder.Find(room, availability.Query{
		UserID:          hop.ChainUserID,
		RequiredMinutes: hop.ChainSlot.Minutes(),
		ExcludeDate:     hop.ChainSlot.Date,
		TreatAsFree:     hop.TreatAsFree,
		MinPriority:     domain.AnyPriority,
	}, now)
	if ok {
		if len(moves) > 0 && moves[0].UserID == hop.OriginalRequesterID {
			moves[0].VacateSlotIDs = releasedOffer(room, moves[0].VacateSlotIDs, moves[0].Occupy, alt)
		}
		moves = append(moves, domain.ChainMove{
			UserID:        hop.ChainUserID,
			VacateSlotIDs: hop.ChainSlot.SlotIDs,
			Occupy:        alt,
		})
		return Step{Kind: StepComplete, Moves: moves, Alternative: alt}
	}

	if hop.Depth >= p.maxDepth {
		return Step{Kind: StepFailed}
	}

	exclude := hop.Participants()
	candidates := p.Candidates(room, hop.ChainUserID, hop.ChainSlot.Placement, exclude, now)
	if len(candidates) == 0 {
		return Step{Kind: StepFailed}
	}

	next := &domain.ChainData{
		OriginalRequesterID: hop.OriginalRequesterID,
		OriginalRequestID:   hop.OriginalRequestID,
		IntermediateUserID:  hop.ChainUserID,
		IntermediateSlot:    hop.ChainSlot,
		ChainUserID:         candidates[0].UserID,
		ChainSlot:           candidates[0].Slot,
		Moves:               moves,
		TreatAsFree:         hop.TreatAsFree,
		RejectedUsers:       []string{},
		CandidateUsers:      candidates[1:],
		Depth:               hop.Depth + 1,
	}
	return Step{Kind: StepDeeper, Next: next}
}

// releasedOffer picks the offered slots the requester gives up when the target is relocated
// instead of taking the offer: as many atoms as the requester takes, starting with the ones
// the relocated party lands on. A smaller offer is released whole.
func releasedOffer(room *domain.Room, offered []string, taken, landing domain.Placement) []string {
	take := taken.Minutes() / domain.SlotMinutes
	if len(offered) <= take {
		return offered
	}

	released := make([]string, 0, len(offered))
	var rest []string
	for _, id := range offered {
		if s, ok := room.Slot(id); ok && s.OverlapsPlacement(landing) {
			released = append(released, id)
			continue
		}
		rest = append(rest, id)
	}
	released = append(released, rest...)
	return released[:take]
}

func intermediateMove(hop *domain.ChainData) domain.ChainMove {
	return domain.ChainMove{
		UserID:        hop.IntermediateUserID,
		VacateSlotIDs: hop.IntermediateSlot.SlotIDs,
		Occupy:        hop.ChainSlot.Placement,
	}
}

// BuildChangeset turns planned moves into one changeset.
// Every vacated slot must still exist and belong to the moving user.
func BuildChangeset(room *domain.Room, moves []domain.ChainMove, status domain.SlotStatus) (domain.Changeset, error) {
	var cs domain.Changeset
	subjects := map[string]string{}
	removed := map[string]struct{}{}

	for _, m := range moves {
		for _, id := range m.VacateSlotIDs {
			slot, ok := room.Slot(id)
			if !ok {
				return domain.Changeset{}, fmt.Errorf("%w: slot id=%s is gone", ErrStaleChain, id)
			}
			if slot.UserID != m.UserID {
				return domain.Changeset{}, fmt.Errorf("%w: slot id=%s now belongs to user=%s, expected user=%s",
					ErrStaleChain, id, slot.UserID, m.UserID)
			}
			if _, dup := removed[id]; dup {
				continue
			}
			removed[id] = struct{}{}
			cs.Remove = append(cs.Remove, id)
			if _, ok := subjects[m.UserID]; !ok {
				subjects[m.UserID] = slot.Subject
			}
		}
	}

	for _, m := range moves {
		cs.Insert = append(cs.Insert, domain.Atomize(m.UserID, m.Occupy, status, subjects[m.UserID])...)
	}
	return cs, nil
}

func alignUp(t types.TimeOfDay) types.TimeOfDay {
	rem := int(t) % domain.SlotMinutes
	if rem == 0 {
		return t
	}
	return t.AddMinutes(domain.SlotMinutes - rem)
}
