package list_negotiations

import "github.com/m04kA/SMC-SlotExchangeService/internal/domain"

// ListNegotiationsResponse HTTP response model
type ListNegotiationsResponse struct {
	Negotiations []domain.Negotiation `json:"negotiations"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(negotiations []domain.Negotiation) *ListNegotiationsResponse {
	if negotiations == nil {
		negotiations = []domain.Negotiation{}
	}
	return &ListNegotiationsResponse{Negotiations: negotiations}
}
