package open_negotiation

import (
	"context"

	"github.com/m04kA/SMC-SlotExchangeService/internal/usecase/negotiation"
)

type OpenNegotiationUseCase interface {
	Open(ctx context.Context, req *negotiation.OpenRequest) (*negotiation.Result, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
