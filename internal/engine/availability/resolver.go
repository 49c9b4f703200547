package availability

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
)

// PreferredBlocks merges a member's entries for date into contiguous blocks.
// Entries below minPriority are ignored; gaps up to MergeGapMinutes are closed.
func PreferredBlocks(member *domain.Member, date time.Time, minPriority int) []domain.Interval {
	var raw []domain.Interval
	for _, p := range member.DefaultSchedule {
		if p.Priority < minPriority || !p.AppliesTo(date) {
			continue
		}
		iv := p.Interval()
		if !iv.Valid() {
			continue
		}
		raw = append(raw, iv)
	}
	return mergeBlocks(raw)
}

func mergeBlocks(raw []domain.Interval) []domain.Interval {
	if len(raw) == 0 {
		return nil
	}
	sort.Slice(raw, func(i, j int) bool {
		if raw[i].Start != raw[j].Start {
			return raw[i].Start < raw[j].Start
		}
		return raw[i].End < raw[j].End
	})

	merged := []domain.Interval{raw[0]}
	for _, iv := range raw[1:] {
		last := &merged[len(merged)-1]
		if int(iv.Start)-int(last.End) <= domain.MergeGapMinutes {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// ActionableBlocks returns the member's blocks for date clipped to the owner's window,
// with the room's blocked intervals cut out
func ActionableBlocks(room *domain.Room, member *domain.Member, date time.Time, minPriority int) []domain.Interval {
	window, ok := room.OwnerWindow(date)
	if !ok {
		return nil
	}

	var blocks []domain.Interval
	for _, b := range PreferredBlocks(member, date, minPriority) {
		clipped := b.Intersect(window)
		if !clipped.IsEmpty() {
			blocks = append(blocks, clipped)
		}
	}
	for _, cut := range room.BlockedOn(date) {
		blocks = domain.Subtract(blocks, cut)
	}
	return blocks
}

// WithinPreferred reports whether p lies entirely inside one of the member's actionable blocks
func WithinPreferred(room *domain.Room, member *domain.Member, p domain.Placement, minPriority int) bool {
	for _, b := range ActionableBlocks(room, member, p.Date, minPriority) {
		if b.Contains(p.Interval()) {
			return true
		}
	}
	return false
}
