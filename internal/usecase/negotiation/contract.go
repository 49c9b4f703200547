package negotiation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	negotiationEngine "github.com/m04kA/SMC-SlotExchangeService/internal/engine/negotiation"
	"github.com/m04kA/SMC-SlotExchangeService/internal/integrations/activitylog"
)

// RoomService единая точка чтения и записи агрегата комнаты
type RoomService interface {
	Mutate(ctx context.Context, roomID string, fn func(ctx context.Context, room *domain.Room) error) error
	Get(ctx context.Context, roomID string) (*domain.Room, error)
}

// Engine конечный автомат переговоров
type Engine interface {
	Open(room *domain.Room, in negotiationEngine.OpenInput, now time.Time) (*domain.Negotiation, error)
	Respond(room *domain.Room, current *domain.Negotiation, in negotiationEngine.Input, now time.Time) (*negotiationEngine.Transition, error)
	CancelResponse(room *domain.Room, current *domain.Negotiation, userID string, now time.Time) (*negotiationEngine.Transition, error)
	AutoResolve(room *domain.Room, current *domain.Negotiation, requiredPerWeek int, now time.Time) (*negotiationEngine.Transition, bool)
}

// ActivityRecorder журнал активности
type ActivityRecorder interface {
	Record(ctx context.Context, event activitylog.Event)
}

// Metrics счетчики переходов переговоров
type Metrics interface {
	IncNegotiationTransition(negotiationType, outcome string)
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
