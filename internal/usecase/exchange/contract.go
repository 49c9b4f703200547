package exchange

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	exchangeEngine "github.com/m04kA/SMC-SlotExchangeService/internal/engine/exchange"
	"github.com/m04kA/SMC-SlotExchangeService/internal/integrations/activitylog"
)

// RoomService единая точка чтения и записи агрегата комнаты
type RoomService interface {
	Mutate(ctx context.Context, roomID string, fn func(ctx context.Context, room *domain.Room) error) error
	Get(ctx context.Context, roomID string) (*domain.Room, error)
}

// Planner планировщик обменов и цепочек
type Planner interface {
	PlanDirect(room *domain.Room, req *domain.ExchangeRequest) ([]domain.ChainMove, bool)
	PlanRelocation(room *domain.Room, req *domain.ExchangeRequest, now time.Time) ([]domain.ChainMove, domain.Placement, bool)
	StartChain(room *domain.Room, req *domain.ExchangeRequest, now time.Time) (*domain.ChainData, bool)
	NextCandidate(room *domain.Room, hop *domain.ChainData, now time.Time) (*domain.ChainData, bool)
	Advance(room *domain.Room, hop *domain.ChainData, now time.Time) exchangeEngine.Step
}

// ActivityRecorder журнал активности
type ActivityRecorder interface {
	Record(ctx context.Context, event activitylog.Event)
}

// Metrics счетчики исходов обменов
type Metrics interface {
	IncExchangeOutcome(exchangeType string)
	IncChainHop(outcome string)
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
