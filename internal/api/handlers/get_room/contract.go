package get_room

import (
	"context"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
)

type RoomService interface {
	GetForUser(ctx context.Context, roomID, userID string) (*domain.Room, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
