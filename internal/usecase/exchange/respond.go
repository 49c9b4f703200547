package exchange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	exchangeEngine "github.com/m04kA/SMC-SlotExchangeService/internal/engine/exchange"
	"github.com/m04kA/SMC-SlotExchangeService/internal/integrations/activitylog"
)

const reasonNoResolution = "no direct swap, free alternative or relocation chain available"

// Respond обрабатывает ответ адресата на запрос обмена.
// Принятие пробует по очереди прямой обмен, перенос адресата в свободное время и цепочку.
func (uc *UseCase) Respond(ctx context.Context, req *RespondRequest) (*Result, error) {
	uc.logger.Info("RespondExchange: room=%s, request=%s, user=%s, action=%s",
		req.RoomID, req.RequestID, req.UserID, req.Action)

	// 1. Валидация входных данных
	if err := validateAction(req.Action); err != nil {
		uc.logger.Warn("RespondExchange: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	var (
		result *Result
		failed bool
		events []activitylog.Event
	)

	// 3. Изменяем комнату под блокировкой
	err := uc.roomService.Mutate(ctx, req.RoomID, func(_ context.Context, room *domain.Room) error {
		result, failed, events = nil, false, nil

		// 3.1. Проверяем запрос и права
		exReq, ok := room.Request(req.RequestID)
		if !ok {
			return ErrRequestNotFound
		}
		if exReq.Type == domain.RequestTypeChain {
			return fmt.Errorf("%w: chain hops are answered through the chain endpoint", ErrInvalidState)
		}
		if exReq.TargetUserID != req.UserID {
			return ErrWrongRespondent
		}
		if exReq.Status != domain.RequestPending {
			return fmt.Errorf("%w: status=%s", ErrAlreadyResolved, exReq.Status)
		}

		// 3.2. Отклонение
		if req.Action == domain.ActionReject {
			setResponse(exReq, domain.RequestRejected, domain.ActionReject, "", nil, req.Reason, now)
			result = &Result{Request: copyRequest(exReq)}
			events = append(events, requestEvent(activitylog.EventExchangeRejected, room, exReq, req.UserID, exReq.RequesterID))
			return nil
		}

		// 3.3. Прямой обмен
		if moves, ok := uc.planner.PlanDirect(room, exReq); ok {
			if err := commitMoves(room, moves); err != nil {
				return err
			}
			setResponse(exReq, domain.RequestApproved, domain.ActionAccept, domain.ExchangeDirect, nil, req.Reason, now)
			result = &Result{Request: copyRequest(exReq), ExchangeType: domain.ExchangeDirect}
			events = append(events, requestEvent(activitylog.EventExchangeApproved, room, exReq, req.UserID, exReq.RequesterID))
			return nil
		}

		// 3.4. Перенос адресата в свободное время
		if moves, alt, ok := uc.planner.PlanRelocation(room, exReq, now); ok {
			if err := commitMoves(room, moves); err != nil {
				return err
			}
			setResponse(exReq, domain.RequestApproved, domain.ActionAccept, domain.ExchangeRelocated, &alt, req.Reason, now)
			result = &Result{Request: copyRequest(exReq), ExchangeType: domain.ExchangeRelocated, AlternativeSlot: &alt}
			events = append(events, requestEvent(activitylog.EventExchangeApproved, room, exReq, req.UserID, exReq.RequesterID))
			return nil
		}

		// 3.5. Цепочка
		if err := ensureFresh(room, exReq); err != nil {
			return err
		}
		if hop, ok := uc.planner.StartChain(room, exReq, now); ok {
			setResponse(exReq, domain.RequestWaitingForChain, domain.ActionAccept, domain.ExchangeChainStarted, nil, req.Reason, now)
			next := appendHop(room, hop, now)
			result = &Result{Request: copyRequest(exReq), ExchangeType: domain.ExchangeChainStarted, NextHop: copyRequest(next)}
			events = append(events, requestEvent(activitylog.EventChainStarted, room, next, next.RequesterID, next.TargetUserID, hop.OriginalRequesterID))
			return nil
		}

		// 3.6. Разрешить невозможно: запрос отклоняется, слоты не меняются
		setResponse(exReq, domain.RequestRejected, domain.ActionAccept, "", nil, reasonNoResolution, now)
		failed = true
		result = &Result{Request: copyRequest(exReq)}
		events = append(events, requestEvent(activitylog.EventExchangeRejected, room, exReq, req.UserID, exReq.RequesterID))
		return nil
	})
	if err != nil {
		uc.logger.Warn("RespondExchange: request=%s failed: %v", req.RequestID, err)
		return nil, uc.mapRoomError("RespondExchange", err)
	}

	uc.record(ctx, events)

	if failed {
		uc.metrics.IncExchangeOutcome("failed")
		uc.logger.Warn("RespondExchange: request=%s rejected, %s", req.RequestID, reasonNoResolution)
		return result, ErrResolutionFailure
	}

	if result.ExchangeType != "" {
		uc.metrics.IncExchangeOutcome(string(result.ExchangeType))
	}
	uc.logger.Info("RespondExchange: request=%s status=%s, exchangeType=%s",
		req.RequestID, result.Request.Status, result.ExchangeType)
	return result, nil
}

// commitMoves превращает ходы в набор изменений и применяет его к комнате целиком
func commitMoves(room *domain.Room, moves []domain.ChainMove) error {
	cs, err := exchangeEngine.BuildChangeset(room, moves, domain.SlotStatusExchanged)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStaleRequest, err)
	}
	if err := room.Apply(cs); err != nil {
		if errors.Is(err, domain.ErrChangesetOverlap) || errors.Is(err, domain.ErrChangesetSlotMissing) {
			return fmt.Errorf("%w: %v", ErrStaleRequest, err)
		}
		return fmt.Errorf("%w: apply changeset: %v", ErrInternal, err)
	}
	return nil
}

// ensureFresh проверяет, что слоты запроса все еще у ожидаемых владельцев
func ensureFresh(room *domain.Room, req *domain.ExchangeRequest) error {
	check := func(userID string, ids []string) error {
		for _, id := range ids {
			s, ok := room.Slot(id)
			if !ok || s.UserID != userID {
				return fmt.Errorf("%w: slot id=%s no longer held by %s", ErrStaleRequest, id, userID)
			}
		}
		return nil
	}
	if err := check(req.TargetUserID, req.TargetSlot.SlotIDs); err != nil {
		return err
	}
	return check(req.RequesterID, req.OfferedSlotIDs())
}

func setResponse(
	req *domain.ExchangeRequest,
	status domain.RequestStatus,
	action domain.ResponseAction,
	exchangeType domain.ExchangeType,
	alt *domain.Placement,
	reason string,
	now time.Time,
) {
	req.Status = status
	req.Response = &domain.RequestResponse{
		Action:          action,
		ExchangeType:    exchangeType,
		AlternativeSlot: alt,
		Reason:          reason,
		RespondedAt:     now,
	}
	req.UpdatedAt = now
}

// appendHop добавляет в комнату звено цепочки: посредник просит участника цепочки освободить слот
func appendHop(room *domain.Room, hop *domain.ChainData, now time.Time) *domain.ExchangeRequest {
	room.Requests = append(room.Requests, domain.ExchangeRequest{
		ID:             uuid.NewString(),
		Type:           domain.RequestTypeChain,
		RequesterID:    hop.IntermediateUserID,
		TargetUserID:   hop.ChainUserID,
		RequesterSlots: []domain.SlotRef{hop.IntermediateSlot},
		TargetSlot:     hop.ChainSlot,
		ChainData:      hop,
		Status:         domain.RequestNeedsChainConfirmation,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	return &room.Requests[len(room.Requests)-1]
}
