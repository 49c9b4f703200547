package respond_exchange_request

import (
	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/usecase/exchange"
)

// RespondExchangeRequest HTTP request model
type RespondExchangeRequest struct {
	Action string `json:"action"` // "accept" | "reject"
	Reason string `json:"reason,omitempty"`
}

// RespondExchangeResponse HTTP response model
type RespondExchangeResponse struct {
	Request         *domain.ExchangeRequest `json:"request"`
	ExchangeType    domain.ExchangeType     `json:"exchangeType,omitempty"`
	AlternativeSlot *domain.Placement       `json:"alternativeSlot,omitempty"`
	ChainRequest    *domain.ExchangeRequest `json:"chainRequest,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RespondExchangeRequest) ToUseCaseRequest(roomID, requestID, userID string) *exchange.RespondRequest {
	return &exchange.RespondRequest{
		RoomID:    roomID,
		UserID:    userID,
		RequestID: requestID,
		Action:    domain.ResponseAction(r.Action),
		Reason:    r.Reason,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(result *exchange.Result) *RespondExchangeResponse {
	return &RespondExchangeResponse{
		Request:         result.Request,
		ExchangeType:    result.ExchangeType,
		AlternativeSlot: result.AlternativeSlot,
		ChainRequest:    result.NextHop,
	}
}
