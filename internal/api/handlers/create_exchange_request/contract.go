package create_exchange_request

import (
	"context"

	"github.com/m04kA/SMC-SlotExchangeService/internal/usecase/exchange"
)

type CreateExchangeUseCase interface {
	Create(ctx context.Context, req *exchange.CreateRequest) (*exchange.Result, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
