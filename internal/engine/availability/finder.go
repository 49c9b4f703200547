package availability

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/types"
)

// Query describes one alternative-slot search
type Query struct {
	UserID          string
	RequiredMinutes int
	// ExcludeDate is searched first so that the user is reshuffled within the day before hopping days
	ExcludeDate time.Time
	// TreatAsFree are slots about to be vacated by the party triggering the search
	TreatAsFree []string
	MinPriority int
}

// Finder searches a member's availability for the first free block
type Finder struct {
	searchWeeks int
}

// NewFinder creates a finder that looks searchWeeks weeks ahead
func NewFinder(searchWeeks int) *Finder {
	if searchWeeks <= 0 {
		searchWeeks = domain.DefaultSearchWeeks
	}
	return &Finder{searchWeeks: searchWeeks}
}

// SearchWeeks returns the configured horizon
func (f *Finder) SearchWeeks() int {
	return f.searchWeeks
}

// Find returns the first free grid-aligned placement of the required length, day-then-time order
func (f *Finder) Find(room *domain.Room, q Query, now time.Time) (domain.Placement, bool) {
	member, ok := room.Member(q.UserID)
	if !ok || q.RequiredMinutes <= 0 {
		return domain.Placement{}, false
	}
	minPriority := q.MinPriority
	if minPriority <= 0 {
		minPriority = domain.AnyPriority
	}

	free := toSet(q.TreatAsFree)
	for _, date := range f.candidateDates(member, q.ExcludeDate, now, minPriority) {
		occupied := occupiedOn(room, date, free)
		for _, block := range ActionableBlocks(room, member, date, minPriority) {
			if p, ok := firstFreeIn(block, date, q.RequiredMinutes, occupied, now); ok {
				return p, true
			}
		}
	}
	return domain.Placement{}, false
}

// candidateDates lists dates with declared preferences inside the horizon.
// The exclude date comes first, the rest by calendar proximity. The same weekday of a later
// week is a day hop like any other, so it sorts by proximity and does not jump ahead.
func (f *Finder) candidateDates(member *domain.Member, excludeDate, now time.Time, minPriority int) []time.Time {
	today := domain.DateOnly(now)
	horizon := domain.WeekStart(today).AddDate(0, 0, 7*f.searchWeeks)

	var first []time.Time
	var rest []time.Time
	for d := today; d.Before(horizon); d = d.AddDate(0, 0, 1) {
		if !member.HasPreferenceOn(d, minPriority) {
			continue
		}
		if !excludeDate.IsZero() && domain.SameDate(d, excludeDate) {
			first = append(first, d)
			continue
		}
		rest = append(rest, d)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].Before(rest[j]) })
	return append(first, rest...)
}

func firstFreeIn(block domain.Interval, date time.Time, required int, occupied []domain.Interval, now time.Time) (domain.Placement, bool) {
	start := alignUp(block.Start)
	for ; start.AddMinutes(required) <= block.End; start = start.AddMinutes(domain.SlotMinutes) {
		if isPast(date, start, now) {
			continue
		}
		candidate := domain.NewInterval(start, start.AddMinutes(required))
		if !overlapsAny(candidate, occupied) {
			return domain.NewPlacement(date, candidate), true
		}
	}
	return domain.Placement{}, false
}

// FreeWindows returns the member's actionable windows on date with every occupied slot cut out,
// trimmed to the slot grid and at least minMinutes long
func FreeWindows(room *domain.Room, userID string, date time.Time, minMinutes int, ignore []string, now time.Time) []domain.Interval {
	member, ok := room.Member(userID)
	if !ok {
		return nil
	}

	blocks := ActionableBlocks(room, member, date, domain.AnyPriority)
	for _, occ := range occupiedOn(room, date, toSet(ignore)) {
		blocks = domain.Subtract(blocks, occ)
	}

	var result []domain.Interval
	for _, b := range blocks {
		start := alignUp(b.Start)
		end := alignDown(b.End)
		if domain.SameDate(date, now) {
			nowAligned := alignUp(types.TimeOfDayFromTime(now))
			if nowAligned > start {
				start = nowAligned
			}
		}
		w := domain.NewInterval(start, end)
		if w.Minutes() >= minMinutes && w.Minutes() > 0 {
			result = append(result, w)
		}
	}
	return result
}

// IsFree reports whether p overlaps no slot except those in ignore
func IsFree(room *domain.Room, p domain.Placement, ignore []string) bool {
	return !overlapsAny(p.Interval(), occupiedOn(room, p.Date, toSet(ignore)))
}

func occupiedOn(room *domain.Room, date time.Time, free map[string]struct{}) []domain.Interval {
	var result []domain.Interval
	for _, s := range room.SlotsOn(date) {
		if _, ok := free[s.ID]; ok {
			continue
		}
		result = append(result, s.Interval())
	}
	return result
}

func overlapsAny(candidate domain.Interval, occupied []domain.Interval) bool {
	for _, o := range occupied {
		if candidate.Overlaps(o) {
			return true
		}
	}
	return false
}

func isPast(date time.Time, start types.TimeOfDay, now time.Time) bool {
	today := domain.DateOnly(now)
	d := domain.DateOnly(date)
	if d.Before(today) {
		return true
	}
	return d.Equal(today) && start < types.TimeOfDayFromTime(now)
}

func alignUp(t types.TimeOfDay) types.TimeOfDay {
	rem := int(t) % domain.SlotMinutes
	if rem == 0 {
		return t
	}
	return t.AddMinutes(domain.SlotMinutes - rem)
}

func alignDown(t types.TimeOfDay) types.TimeOfDay {
	return t.AddMinutes(-(int(t) % domain.SlotMinutes))
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
