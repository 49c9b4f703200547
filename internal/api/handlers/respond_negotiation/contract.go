package respond_negotiation

import (
	"context"

	"github.com/m04kA/SMC-SlotExchangeService/internal/usecase/negotiation"
)

type RespondNegotiationUseCase interface {
	Respond(ctx context.Context, req *negotiation.RespondRequest) (*negotiation.Result, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
