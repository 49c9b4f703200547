package sync_room

import (
	"context"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
)

type RoomService interface {
	Sync(ctx context.Context, snapshot *domain.Room) (*domain.Room, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
