package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrChangesetSlotMissing is returned when a changeset removes a slot the room does not have
	ErrChangesetSlotMissing = errors.New("changeset: slot to remove does not exist")

	// ErrChangesetMisaligned is returned when an inserted slot is not one grid-aligned atom
	ErrChangesetMisaligned = errors.New("changeset: inserted slot is not a 30-minute aligned atom")

	// ErrChangesetOverlap is returned when the result would contain two overlapping slots
	ErrChangesetOverlap = errors.New("changeset: slots overlap")

	// ErrChangesetDuplicateID is returned when an inserted slot reuses an existing id
	ErrChangesetDuplicateID = errors.New("changeset: duplicate slot id")
)

// Changeset is a batch of slot removals and insertions applied as one unit
type Changeset struct {
	Remove []string   `json:"remove"`
	Insert []TimeSlot `json:"insert"`
}

// IsEmpty reports whether the changeset does nothing
func (c Changeset) IsEmpty() bool {
	return len(c.Remove) == 0 && len(c.Insert) == 0
}

// Merge appends other to c
func (c Changeset) Merge(other Changeset) Changeset {
	return Changeset{
		Remove: append(append([]string{}, c.Remove...), other.Remove...),
		Insert: append(append([]TimeSlot{}, c.Insert...), other.Insert...),
	}
}

// Apply validates the whole changeset against the current slots and swaps the result in.
// On error the room is left untouched.
func (r *Room) Apply(cs Changeset) error {
	if cs.IsEmpty() {
		return nil
	}

	removed := make(map[string]struct{}, len(cs.Remove))
	for _, id := range cs.Remove {
		if _, ok := r.Slot(id); !ok {
			return fmt.Errorf("%w: id=%s", ErrChangesetSlotMissing, id)
		}
		removed[id] = struct{}{}
	}

	next := make([]TimeSlot, 0, len(r.TimeSlots)-len(removed)+len(cs.Insert))
	ids := make(map[string]struct{}, cap(next))
	for _, s := range r.TimeSlots {
		if _, ok := removed[s.ID]; ok {
			continue
		}
		next = append(next, s)
		ids[s.ID] = struct{}{}
	}

	for _, s := range cs.Insert {
		if !s.IsAtom() {
			return fmt.Errorf("%w: %s %s-%s", ErrChangesetMisaligned, s.Date.Format(DateFormat), s.StartTime, s.EndTime)
		}
		if _, ok := ids[s.ID]; ok || s.ID == "" {
			return fmt.Errorf("%w: id=%q", ErrChangesetDuplicateID, s.ID)
		}
		for _, existing := range next {
			if existing.Overlaps(s) {
				return fmt.Errorf("%w: %s %s-%s (user=%s) and %s-%s (user=%s)", ErrChangesetOverlap,
					s.Date.Format(DateFormat), s.StartTime, s.EndTime, s.UserID,
					existing.StartTime, existing.EndTime, existing.UserID)
			}
		}
		s.Date = DateOnly(s.Date)
		s.Day = s.Date.Weekday()
		next = append(next, s)
		ids[s.ID] = struct{}{}
	}

	SortSlots(next)
	r.TimeSlots = next
	return nil
}
