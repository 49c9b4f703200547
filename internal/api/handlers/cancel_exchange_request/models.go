package cancel_exchange_request

import (
	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/usecase/exchange"
)

// CancelExchangeResponse HTTP response model
type CancelExchangeResponse struct {
	Request *domain.ExchangeRequest `json:"request"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(result *exchange.Result) *CancelExchangeResponse {
	return &CancelExchangeResponse{Request: result.Request}
}
