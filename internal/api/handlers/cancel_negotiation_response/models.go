package cancel_negotiation_response

import (
	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/usecase/negotiation"
)

// NegotiationResponse HTTP response model
type NegotiationResponse struct {
	Negotiation *domain.Negotiation `json:"negotiation"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(result *negotiation.Result) *NegotiationResponse {
	return &NegotiationResponse{Negotiation: result.Negotiation}
}
