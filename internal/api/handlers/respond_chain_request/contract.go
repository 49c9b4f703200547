package respond_chain_request

import (
	"context"

	"github.com/m04kA/SMC-SlotExchangeService/internal/usecase/exchange"
)

type RespondChainUseCase interface {
	RespondChain(ctx context.Context, req *exchange.RespondRequest) (*exchange.Result, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
