package travel_mode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/integrations/activitylog"
	"github.com/m04kA/SMC-SlotExchangeService/internal/service/rooms"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/ptr"
)

// errNothingToConfirm решение уже подтверждено или обновлено после выборки
var errNothingToConfirm = errors.New("travel_mode: nothing to confirm")

// UseCase автоподтверждение зависших решений о режиме поездки
type UseCase struct {
	roomService  RoomService
	activity     ActivityRecorder
	metrics      Metrics
	confirmAfter time.Duration
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	roomService RoomService,
	activity ActivityRecorder,
	metrics Metrics,
	confirmAfter time.Duration,
	logger Logger,
) (*UseCase, error) {
	if confirmAfter <= 0 {
		return nil, fmt.Errorf("%w: confirmAfter must be positive", ErrInvalidInput)
	}
	return &UseCase{
		roomService:  roomService,
		activity:     activity,
		metrics:      metrics,
		confirmAfter: confirmAfter,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}, nil
}

// ConfirmStale подтверждает решения, ожидающие дольше confirmAfter.
// Каждая комната подтверждается под своей блокировкой; ошибка одной комнаты не останавливает проход.
func (uc *UseCase) ConfirmStale(ctx context.Context) (*ConfirmResult, error) {
	// 1. Получаем текущее время и границу
	now := uc.timeProvider.Now()
	before := now.Add(-uc.confirmAfter)

	// 2. Выбираем комнаты с зависшими решениями
	roomIDs, err := uc.roomService.PendingTravelMode(ctx, before)
	if err != nil {
		uc.logger.Error("ConfirmTravelMode: failed to list pending rooms: %v", err)
		return nil, fmt.Errorf("%w: ConfirmStale - list pending: %v", ErrInternal, err)
	}

	result := &ConfirmResult{Confirmed: []string{}}
	if len(roomIDs) == 0 {
		return result, nil
	}
	uc.logger.Info("ConfirmTravelMode: %d rooms pending since before %s", len(roomIDs), before.Format(time.RFC3339))

	// 3. Подтверждаем по одной комнате
	for _, roomID := range roomIDs {
		if ctx.Err() != nil {
			break
		}

		var event activitylog.Event
		err := uc.roomService.Mutate(ctx, roomID, func(_ context.Context, room *domain.Room) error {
			pending := room.Settings.TravelMode.Pending
			if pending == nil || pending.RequestedAt.After(before) {
				return errNothingToConfirm
			}

			room.Settings.TravelMode = domain.TravelMode{
				Mode:        pending.Mode,
				ConfirmedAt: ptr.Ptr(now),
				ConfirmedBy: domain.SystemSenderID,
			}
			event = activitylog.Event{
				Type:       activitylog.EventTravelModeConfirmed,
				RoomID:     room.ID,
				ActorID:    domain.SystemSenderID,
				Recipients: []string{room.OwnerID, pending.RequestedBy},
				Details:    map[string]string{"mode": pending.Mode},
				OccurredAt: now,
			}
			return nil
		})

		switch {
		case err == nil:
			result.Confirmed = append(result.Confirmed, roomID)
			uc.activity.Record(ctx, event)
		case errors.Is(err, errNothingToConfirm), errors.Is(err, rooms.ErrRoomNotFound):
			result.Skipped++
		default:
			result.Failed++
			uc.logger.Warn("ConfirmTravelMode: room=%s failed: %v", roomID, err)
		}
	}

	// 4. Метрики
	if len(result.Confirmed) > 0 {
		uc.metrics.IncTravelModeConfirmed(len(result.Confirmed))
	}

	uc.logger.Info("ConfirmTravelMode: confirmed=%d, skipped=%d, failed=%d",
		len(result.Confirmed), result.Skipped, result.Failed)
	return result, nil
}
