package respond_negotiation

import (
	"fmt"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/usecase/negotiation"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/types"
)

// TimeWindow окно "HH:MM"-"HH:MM"
type TimeWindow struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// AlternativeSlot альтернативное время уступающего участника
type AlternativeSlot struct {
	Date string `json:"date"` // "2025-03-03"
	TimeWindow
}

// RespondNegotiationRequest HTTP request model
type RespondNegotiationRequest struct {
	Response         string            `json:"response"`              // yield | claim | split_first | split_second | choose_slot
	YieldOption      string            `json:"yieldOption,omitempty"` // carry_over | alternative_time
	AlternativeSlots []AlternativeSlot `json:"alternativeSlots,omitempty"`
	ChosenSlot       *TimeWindow       `json:"chosenSlot,omitempty"`
}

// NegotiationResponse HTTP response model
type NegotiationResponse struct {
	Negotiation  *domain.Negotiation `json:"negotiation"`
	Outcome      string              `json:"outcome"`
	AutoResolved []string            `json:"autoResolved,omitempty"`
	Opened       []string            `json:"opened,omitempty"`
}

func (t TimeWindow) interval() (domain.Interval, error) {
	start, err := types.ParseTimeOfDay(t.StartTime)
	if err != nil {
		return domain.Interval{}, fmt.Errorf("startTime: %w", err)
	}
	end, err := types.ParseTimeOfDay(t.EndTime)
	if err != nil {
		return domain.Interval{}, fmt.Errorf("endTime: %w", err)
	}
	return domain.NewInterval(start, end), nil
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RespondNegotiationRequest) ToUseCaseRequest(roomID, negotiationID, userID string) (*negotiation.RespondRequest, error) {
	req := &negotiation.RespondRequest{
		RoomID:        roomID,
		UserID:        userID,
		NegotiationID: negotiationID,
		Response:      domain.MemberResponse(r.Response),
		YieldOption:   domain.YieldOption(r.YieldOption),
	}

	for i, alt := range r.AlternativeSlots {
		date, err := domain.ParseDate(alt.Date)
		if err != nil {
			return nil, fmt.Errorf("alternativeSlots[%d].date: %w", i, err)
		}
		window, err := alt.interval()
		if err != nil {
			return nil, fmt.Errorf("alternativeSlots[%d]: %w", i, err)
		}
		req.AlternativeSlots = append(req.AlternativeSlots, domain.NewPlacement(date, window))
	}

	if r.ChosenSlot != nil {
		window, err := r.ChosenSlot.interval()
		if err != nil {
			return nil, fmt.Errorf("chosenSlot: %w", err)
		}
		req.ChosenSlot = &window
	}
	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(result *negotiation.Result) *NegotiationResponse {
	return &NegotiationResponse{
		Negotiation:  result.Negotiation,
		Outcome:      result.Outcome,
		AutoResolved: result.AutoResolved,
		Opened:       result.Opened,
	}
}
