package domain

import (
	"time"

	"github.com/m04kA/SMC-SlotExchangeService/pkg/types"
)

// Interval is a half-open time-of-day range [Start, End)
type Interval struct {
	Start types.TimeOfDay `json:"startTime"`
	End   types.TimeOfDay `json:"endTime"`
}

// NewInterval builds an interval
func NewInterval(start, end types.TimeOfDay) Interval {
	return Interval{Start: start, End: end}
}

// Minutes returns the interval length
func (i Interval) Minutes() int {
	if i.End <= i.Start {
		return 0
	}
	return int(i.End - i.Start)
}

// IsEmpty reports whether the interval has no length
func (i Interval) IsEmpty() bool {
	return i.End <= i.Start
}

// Overlaps reports whether two intervals share at least one minute
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}

// Contains reports whether other lies entirely inside i
func (i Interval) Contains(other Interval) bool {
	return i.Start <= other.Start && other.End <= i.End
}

// Intersect returns the common part of two intervals (empty if none)
func (i Interval) Intersect(other Interval) Interval {
	start, end := i.Start, i.End
	if other.Start > start {
		start = other.Start
	}
	if other.End < end {
		end = other.End
	}
	if end < start {
		end = start
	}
	return Interval{Start: start, End: end}
}

// Span returns the smallest interval covering both
func (i Interval) Span(other Interval) Interval {
	start, end := i.Start, i.End
	if other.Start < start {
		start = other.Start
	}
	if other.End > end {
		end = other.End
	}
	return Interval{Start: start, End: end}
}

// IsAligned reports whether both bounds sit on the slot grid
func (i Interval) IsAligned() bool {
	return int(i.Start)%SlotMinutes == 0 && int(i.End)%SlotMinutes == 0
}

// Valid checks bounds and ordering
func (i Interval) Valid() bool {
	return i.Start.Validate() == nil && i.End.Validate() == nil && i.Start < i.End
}

// Subtract removes cut from each interval in blocks, keeping order
func Subtract(blocks []Interval, cut Interval) []Interval {
	result := make([]Interval, 0, len(blocks))
	for _, b := range blocks {
		if !b.Overlaps(cut) {
			result = append(result, b)
			continue
		}
		if b.Start < cut.Start {
			result = append(result, Interval{Start: b.Start, End: cut.Start})
		}
		if cut.End < b.End {
			result = append(result, Interval{Start: cut.End, End: b.End})
		}
	}
	return result
}

// Placement is a concrete calendar position of a block
type Placement struct {
	Date      time.Time       `json:"date"`
	Day       time.Weekday    `json:"day"`
	StartTime types.TimeOfDay `json:"startTime"`
	EndTime   types.TimeOfDay `json:"endTime"`
}

// NewPlacement builds a placement on date for the given interval
func NewPlacement(date time.Time, interval Interval) Placement {
	d := DateOnly(date)
	return Placement{Date: d, Day: d.Weekday(), StartTime: interval.Start, EndTime: interval.End}
}

// Interval returns the time-of-day range
func (p Placement) Interval() Interval {
	return Interval{Start: p.StartTime, End: p.EndTime}
}

// Minutes returns the placement length
func (p Placement) Minutes() int {
	return p.Interval().Minutes()
}

// Overlaps reports whether two placements share the date and at least one minute
func (p Placement) Overlaps(other Placement) bool {
	return SameDate(p.Date, other.Date) && p.Interval().Overlaps(other.Interval())
}
