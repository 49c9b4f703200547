package exchange

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/types"
)

// targetTime разобранное поле targetTime
type targetTime struct {
	start  types.TimeOfDay
	end    types.TimeOfDay
	ranged bool
}

func (t targetTime) interval() domain.Interval {
	return domain.NewInterval(t.start, t.end)
}

// parseTargetTime разбирает "HH:MM" или "HH:MM-HH:MM"
func parseTargetTime(s string) (targetTime, error) {
	s = strings.TrimSpace(s)
	startPart, endPart, ranged := strings.Cut(s, "-")

	start, err := types.ParseTimeOfDay(strings.TrimSpace(startPart))
	if err != nil {
		return targetTime{}, fmt.Errorf("%w: targetTime %q: %v", ErrInvalidInput, s, err)
	}
	if !ranged {
		return targetTime{start: start}, nil
	}

	end, err := types.ParseTimeOfDay(strings.TrimSpace(endPart))
	if err != nil {
		return targetTime{}, fmt.Errorf("%w: targetTime %q: %v", ErrInvalidInput, s, err)
	}
	iv := domain.NewInterval(start, end)
	if !iv.Valid() || !iv.IsAligned() {
		return targetTime{}, fmt.Errorf("%w: targetTime %q must be a %d-minute aligned range", ErrInvalidInput, s, domain.SlotMinutes)
	}
	return targetTime{start: start, end: end, ranged: true}, nil
}

func validateCreate(req *CreateRequest, now time.Time) (time.Weekday, targetTime, error) {
	if req.TargetUserID == "" {
		return 0, targetTime{}, fmt.Errorf("%w: targetUserId is required", ErrInvalidInput)
	}
	if req.TargetUserID == req.UserID {
		return 0, targetTime{}, fmt.Errorf("%w: cannot request your own slot", ErrInvalidInput)
	}
	if len(req.Message) > domain.MaxMessageLength {
		return 0, targetTime{}, fmt.Errorf("%w: message longer than %d characters", ErrInvalidInput, domain.MaxMessageLength)
	}

	day, err := domain.ParseWeekday(req.TargetDay)
	if err != nil {
		return 0, targetTime{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	tt, err := parseTargetTime(req.TargetTime)
	if err != nil {
		return 0, targetTime{}, err
	}

	if req.TargetDate != nil {
		if req.TargetDate.Weekday() != day {
			return 0, targetTime{}, fmt.Errorf("%w: targetDate %s is not a %s",
				ErrInvalidInput, req.TargetDate.Format(domain.DateFormat), domain.WeekdayName(day))
		}
		if domain.DateOnly(*req.TargetDate).Before(domain.DateOnly(now)) {
			return 0, targetTime{}, fmt.Errorf("%w: targetDate %s is in the past", ErrInvalidInput, req.TargetDate.Format(domain.DateFormat))
		}
	}

	seen := make(map[string]struct{}, len(req.RequesterSlotIDs))
	for _, id := range req.RequesterSlotIDs {
		if _, dup := seen[id]; dup {
			return 0, targetTime{}, fmt.Errorf("%w: slot %s offered twice", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}

	return day, tt, nil
}

func validateAction(action domain.ResponseAction) error {
	if action != domain.ActionAccept && action != domain.ActionReject {
		return fmt.Errorf("%w: action must be accept or reject", ErrInvalidInput)
	}
	return nil
}
