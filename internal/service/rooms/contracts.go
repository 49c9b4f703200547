package rooms

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
)

// RoomRepository интерфейс репозитория комнат
type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Room, error)
	Save(ctx context.Context, room *domain.Room) error
	ListPendingTravelMode(ctx context.Context, before time.Time) ([]string, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker выдает эксклюзивный доступ к комнате внутри процесса
type Locker interface {
	Lock(ctx context.Context, roomID string) (func(), error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
