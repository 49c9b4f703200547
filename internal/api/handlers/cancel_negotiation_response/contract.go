package cancel_negotiation_response

import (
	"context"

	"github.com/m04kA/SMC-SlotExchangeService/internal/usecase/negotiation"
)

type CancelResponseUseCase interface {
	CancelResponse(ctx context.Context, req *negotiation.CancelResponseRequest) (*negotiation.Result, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
