package list_negotiations

import (
	"context"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/usecase/negotiation"
)

type ListNegotiationsUseCase interface {
	List(ctx context.Context, req *negotiation.ListRequest) ([]domain.Negotiation, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
