package respond_chain_request

import (
	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/usecase/exchange"
)

// RespondChainRequest HTTP request model
type RespondChainRequest struct {
	Action string `json:"action"` // "accept" | "reject"
	Reason string `json:"reason,omitempty"`
}

// RespondChainResponse HTTP response model
type RespondChainResponse struct {
	Request         *domain.ExchangeRequest `json:"request"`
	ExchangeType    domain.ExchangeType     `json:"exchangeType,omitempty"`
	AlternativeSlot *domain.Placement       `json:"alternativeSlot,omitempty"`
	NextHop         *domain.ExchangeRequest `json:"nextHop,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RespondChainRequest) ToUseCaseRequest(roomID, requestID, userID string) *exchange.RespondRequest {
	return &exchange.RespondRequest{
		RoomID:    roomID,
		UserID:    userID,
		RequestID: requestID,
		Action:    domain.ResponseAction(r.Action),
		Reason:    r.Reason,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(result *exchange.Result) *RespondChainResponse {
	return &RespondChainResponse{
		Request:         result.Request,
		ExchangeType:    result.ExchangeType,
		AlternativeSlot: result.AlternativeSlot,
		NextHop:         result.NextHop,
	}
}
