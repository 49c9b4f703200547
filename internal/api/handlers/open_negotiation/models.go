package open_negotiation

import (
	"fmt"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/usecase/negotiation"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/types"
)

// MemberRequirement участник переговоров
type MemberRequirement struct {
	UserID        string `json:"userId"`
	RequiredSlots int    `json:"requiredSlots"`
}

// OpenNegotiationRequest HTTP request model
type OpenNegotiationRequest struct {
	Type      string              `json:"type,omitempty"` // пусто - тип определяется автоматически
	Date      string              `json:"date"`           // "2025-03-03"
	StartTime string              `json:"startTime"`      // "09:00"
	EndTime   string              `json:"endTime"`        // "10:30"
	Subject   string              `json:"subject,omitempty"`
	Members   []MemberRequirement `json:"members"`
}

// NegotiationResponse HTTP response model
type NegotiationResponse struct {
	Negotiation *domain.Negotiation `json:"negotiation"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *OpenNegotiationRequest) ToUseCaseRequest(roomID, userID string) (*negotiation.OpenRequest, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}
	start, err := types.ParseTimeOfDay(r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}
	end, err := types.ParseTimeOfDay(r.EndTime)
	if err != nil {
		return nil, fmt.Errorf("endTime: %w", err)
	}

	members := make([]negotiation.MemberRequirement, 0, len(r.Members))
	for _, m := range r.Members {
		members = append(members, negotiation.MemberRequirement{UserID: m.UserID, RequiredSlots: m.RequiredSlots})
	}

	return &negotiation.OpenRequest{
		RoomID:    roomID,
		UserID:    userID,
		Type:      domain.NegotiationType(r.Type),
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Subject:   r.Subject,
		Members:   members,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(result *negotiation.Result) *NegotiationResponse {
	return &NegotiationResponse{Negotiation: result.Negotiation}
}
