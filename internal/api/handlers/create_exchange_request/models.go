package create_exchange_request

import (
	"time"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/usecase/exchange"
)

// CreateExchangeRequest HTTP request model
type CreateExchangeRequest struct {
	TargetUserID     string   `json:"targetUserId"`
	TargetDay        string   `json:"targetDay"`            // "monday"
	TargetTime       string   `json:"targetTime"`           // "09:00" или "09:00-10:00"
	TargetDate       *string  `json:"targetDate,omitempty"` // "2025-03-03"
	RequesterSlotIDs []string `json:"requesterSlotIds"`
	Message          string   `json:"message,omitempty"`
}

// ExchangeRequestResponse HTTP response model
type ExchangeRequestResponse struct {
	Request *domain.ExchangeRequest `json:"request"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateExchangeRequest) ToUseCaseRequest(roomID, userID string) (*exchange.CreateRequest, error) {
	var targetDate *time.Time
	if r.TargetDate != nil && *r.TargetDate != "" {
		date, err := domain.ParseDate(*r.TargetDate)
		if err != nil {
			return nil, err
		}
		targetDate = &date
	}

	return &exchange.CreateRequest{
		RoomID:           roomID,
		UserID:           userID,
		TargetUserID:     r.TargetUserID,
		TargetDay:        r.TargetDay,
		TargetTime:       r.TargetTime,
		TargetDate:       targetDate,
		RequesterSlotIDs: r.RequesterSlotIDs,
		Message:          r.Message,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(result *exchange.Result) *ExchangeRequestResponse {
	return &ExchangeRequestResponse{Request: result.Request}
}
