package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	exchangeEngine "github.com/m04kA/SMC-SlotExchangeService/internal/engine/exchange"
	"github.com/m04kA/SMC-SlotExchangeService/internal/integrations/activitylog"
)

const (
	reasonChainDeclined = "every chain candidate declined"
	reasonChainFailed   = "chain could not be completed"
)

// Исходы звена цепочки для метрик
const (
	hopAccepted  = "accepted"
	hopDeclined  = "declined"
	hopCompleted = "completed"
	hopFailed    = "failed"
)

// RespondChain обрабатывает ответ участника цепочки на звено.
// Отказ передает звено следующему кандидату; согласие либо завершает цепочку одной записью,
// либо создает следующее звено, либо проваливает цепочку без изменений слотов.
func (uc *UseCase) RespondChain(ctx context.Context, req *RespondRequest) (*Result, error) {
	uc.logger.Info("RespondChain: room=%s, hop=%s, user=%s, action=%s",
		req.RoomID, req.RequestID, req.UserID, req.Action)

	// 1. Валидация входных данных
	if err := validateAction(req.Action); err != nil {
		uc.logger.Warn("RespondChain: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	var (
		result   *Result
		outcomes []string
		events   []activitylog.Event
	)

	// 3. Изменяем комнату под блокировкой
	err := uc.roomService.Mutate(ctx, req.RoomID, func(_ context.Context, room *domain.Room) error {
		result, outcomes, events = nil, nil, nil

		// 3.1. Проверяем звено, исходный запрос и права
		hopReq, ok := room.Request(req.RequestID)
		if !ok {
			return ErrRequestNotFound
		}
		if hopReq.Type != domain.RequestTypeChain {
			return fmt.Errorf("%w: request is not a chain hop", ErrInvalidState)
		}
		if hopReq.ChainData == nil {
			return fmt.Errorf("%w: %v", ErrInvalidState, exchangeEngine.ErrNoChainData)
		}
		if hopReq.TargetUserID != req.UserID {
			return ErrWrongRespondent
		}
		if hopReq.Status != domain.RequestNeedsChainConfirmation {
			return fmt.Errorf("%w: status=%s", ErrAlreadyResolved, hopReq.Status)
		}
		original, ok := room.Request(hopReq.ChainData.OriginalRequestID)
		if !ok || original.Status != domain.RequestWaitingForChain {
			return fmt.Errorf("%w: original request is no longer waiting for the chain", ErrInvalidState)
		}

		hopID, originalID := hopReq.ID, original.ID
		hop := hopReq.ChainData

		// 3.2. Отказ: следующий кандидат или провал цепочки
		if req.Action == domain.ActionReject {
			outcomes = append(outcomes, hopDeclined)
			setResponse(hopReq, domain.RequestRejected, domain.ActionReject, "", nil, req.Reason, now)

			next, ok := uc.planner.NextCandidate(room, hop, now)
			if !ok {
				outcomes = append(outcomes, hopFailed)
				events = append(events, failChain(room, originalID, reasonChainDeclined, now)...)
				result = &Result{Request: requestCopy(room, hopID)}
				return nil
			}

			nextReq := appendHop(room, next, now)
			result = &Result{Request: requestCopy(room, hopID), ExchangeType: domain.ExchangeChainHop, NextHop: copyRequest(nextReq)}
			events = append(events, requestEvent(activitylog.EventChainStarted, room, nextReq, nextReq.RequesterID, nextReq.TargetUserID))
			return nil
		}

		// 3.3. Согласие: планируем продолжение
		outcomes = append(outcomes, hopAccepted)
		step := uc.planner.Advance(room, hop, now)

		switch step.Kind {
		case exchangeEngine.StepComplete:
			// 3.3.1. Все звенья фиксируются одной записью
			if err := commitMoves(room, step.Moves); err != nil {
				return err
			}
			alt := step.Alternative
			setResponse(hopReq, domain.RequestApproved, domain.ActionAccept, domain.ExchangeChainDone, &alt, req.Reason, now)
			for _, h := range room.ChainHops(originalID) {
				if h.Status == domain.RequestWaitingForChain {
					setResponse(h, domain.RequestApproved, domain.ActionAccept, domain.ExchangeChainDone, nil, "", now)
				}
			}
			original, _ = room.Request(originalID)
			original.Status = domain.RequestApproved
			original.Response.ExchangeType = domain.ExchangeChainDone
			original.UpdatedAt = now

			outcomes = append(outcomes, hopCompleted)
			result = &Result{Request: requestCopy(room, hopID), ExchangeType: domain.ExchangeChainDone, AlternativeSlot: &alt}
			events = append(events, requestEvent(activitylog.EventExchangeApproved, room, original, req.UserID, hop.Participants()...))
			return nil

		case exchangeEngine.StepDeeper:
			// 3.3.2. Участник цепочки сам становится посредником
			setResponse(hopReq, domain.RequestWaitingForChain, domain.ActionAccept, domain.ExchangeChainHop, nil, req.Reason, now)
			nextReq := appendHop(room, step.Next, now)
			result = &Result{Request: requestCopy(room, hopID), ExchangeType: domain.ExchangeChainHop, NextHop: copyRequest(nextReq)}
			events = append(events, requestEvent(activitylog.EventChainStarted, room, nextReq, nextReq.RequesterID, nextReq.TargetUserID))
			return nil

		default:
			// 3.3.3. Продолжить нельзя: цепочка проваливается, слоты не меняются
			outcomes = append(outcomes, hopFailed)
			setResponse(hopReq, domain.RequestRejected, domain.ActionAccept, "", nil, reasonChainFailed, now)
			events = append(events, failChain(room, originalID, reasonChainFailed, now)...)
			result = &Result{Request: requestCopy(room, hopID)}
			return nil
		}
	})
	if err != nil {
		uc.logger.Warn("RespondChain: hop=%s failed: %v", req.RequestID, err)
		return nil, uc.mapRoomError("RespondChain", err)
	}

	uc.record(ctx, events)
	for _, o := range outcomes {
		uc.metrics.IncChainHop(o)
	}
	if result.ExchangeType == domain.ExchangeChainDone {
		uc.metrics.IncExchangeOutcome(string(domain.ExchangeChainDone))
	}

	uc.logger.Info("RespondChain: hop=%s status=%s, exchangeType=%s",
		req.RequestID, result.Request.Status, result.ExchangeType)
	return result, nil
}

// failChain отклоняет исходный запрос и все его открытые звенья
func failChain(room *domain.Room, originalID, reason string, now time.Time) []activitylog.Event {
	original, ok := room.Request(originalID)
	if !ok {
		return nil
	}

	recipients := []string{original.RequesterID, original.TargetUserID}
	for _, h := range room.ChainHops(originalID) {
		if h.Status.IsOpen() {
			setResponse(h, domain.RequestRejected, domain.ActionReject, "", nil, reason, now)
		}
		recipients = append(recipients, h.TargetUserID)
	}

	original.Status = domain.RequestRejected
	if original.Response == nil {
		original.Response = &domain.RequestResponse{Action: domain.ActionAccept, RespondedAt: now}
	}
	original.Response.Reason = reason
	original.UpdatedAt = now

	return []activitylog.Event{requestEvent(activitylog.EventChainFailed, room, original, "", recipients...)}
}

func requestCopy(room *domain.Room, id string) *domain.ExchangeRequest {
	req, _ := room.Request(id)
	return copyRequest(req)
}
