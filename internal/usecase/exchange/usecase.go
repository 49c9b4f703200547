package exchange

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/integrations/activitylog"
	"github.com/m04kA/SMC-SlotExchangeService/internal/service/rooms"
)

// UseCase запросы обмена слотами: создание, ответы, цепочки, отмена
type UseCase struct {
	roomService  RoomService
	planner      Planner
	activity     ActivityRecorder
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	roomService RoomService,
	planner Planner,
	activity ActivityRecorder,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		roomService:  roomService,
		planner:      planner,
		activity:     activity,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// mapRoomError переводит ошибки сервиса комнат в ошибки usecase; собственные ошибки проходят как есть
func (uc *UseCase) mapRoomError(op string, err error) error {
	switch {
	case errors.Is(err, rooms.ErrRoomNotFound):
		return ErrRoomNotFound
	case errors.Is(err, rooms.ErrConcurrentModification), errors.Is(err, rooms.ErrRoomBusy):
		return ErrConcurrentModification
	case isOwnError(err):
		return err
	default:
		uc.logger.Error("%s: room service error: %v", op, err)
		return fmt.Errorf("%w: %s - room service: %v", ErrInternal, op, err)
	}
}

func isOwnError(err error) bool {
	for _, own := range []error{
		ErrRequestNotFound, ErrSlotNotFound, ErrNotMember, ErrWrongRespondent, ErrInvalidInput,
		ErrInvalidState, ErrAlreadyResolved, ErrDuplicateRequest, ErrResolutionFailure,
		ErrStaleRequest, ErrInternal,
	} {
		if errors.Is(err, own) {
			return true
		}
	}
	return false
}

// record отправляет события после фиксации транзакции
func (uc *UseCase) record(ctx context.Context, events []activitylog.Event) {
	for _, e := range events {
		uc.activity.Record(ctx, e)
	}
}

func requestEvent(eventType activitylog.EventType, room *domain.Room, req *domain.ExchangeRequest, actorID string, recipients ...string) activitylog.Event {
	details := map[string]string{
		"requestType": string(req.Type),
		"status":      string(req.Status),
	}
	if req.Response != nil && req.Response.ExchangeType != "" {
		details["exchangeType"] = string(req.Response.ExchangeType)
	}
	return activitylog.Event{
		Type:       eventType,
		RoomID:     room.ID,
		ActorID:    actorID,
		Recipients: recipients,
		EntityID:   req.ID,
		Details:    details,
		OccurredAt: req.UpdatedAt,
	}
}

func copyRequest(req *domain.ExchangeRequest) *domain.ExchangeRequest {
	if req == nil {
		return nil
	}
	c := *req
	return &c
}
