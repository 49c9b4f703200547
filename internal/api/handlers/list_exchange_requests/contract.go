package list_exchange_requests

import (
	"context"

	"github.com/m04kA/SMC-SlotExchangeService/internal/usecase/exchange"
)

type ListExchangeUseCase interface {
	List(ctx context.Context, req *exchange.ListRequest) (*exchange.ListResult, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
