package travel_mode

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/integrations/activitylog"
)

// RoomService чтение ожидающих решений и запись агрегата комнаты
type RoomService interface {
	Mutate(ctx context.Context, roomID string, fn func(ctx context.Context, room *domain.Room) error) error
	PendingTravelMode(ctx context.Context, before time.Time) ([]string, error)
}

// ActivityRecorder журнал активности
type ActivityRecorder interface {
	Record(ctx context.Context, event activitylog.Event)
}

// Metrics счетчик подтвержденных решений
type Metrics interface {
	IncTravelModeConfirmed(count int)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
