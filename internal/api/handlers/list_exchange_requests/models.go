package list_exchange_requests

import (
	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/usecase/exchange"
)

// ListExchangeResponse HTTP response model
type ListExchangeResponse struct {
	Sent     []domain.ExchangeRequest `json:"sent"`
	Received []domain.ExchangeRequest `json:"received"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(result *exchange.ListResult) *ListExchangeResponse {
	resp := &ListExchangeResponse{
		Sent:     result.Sent,
		Received: result.Received,
	}
	if resp.Sent == nil {
		resp.Sent = []domain.ExchangeRequest{}
	}
	if resp.Received == nil {
		resp.Received = []domain.ExchangeRequest{}
	}
	return resp
}
