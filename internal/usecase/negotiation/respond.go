package negotiation

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	negotiationEngine "github.com/m04kA/SMC-SlotExchangeService/internal/engine/negotiation"
)

// Respond применяет ответ участника, затем повторно проверяет все активные переговоры комнаты
// и закрывает те, где недельная норма участников уже покрыта.
func (uc *UseCase) Respond(ctx context.Context, req *RespondRequest) (*Result, error) {
	uc.logger.Info("RespondNegotiation: room=%s, negotiation=%s, user=%s, response=%s, yieldOption=%s",
		req.RoomID, req.NegotiationID, req.UserID, req.Response, req.YieldOption)

	// 1. Валидация входных данных
	if req.Response == "" || req.Response == domain.ResponsePending {
		uc.logger.Warn("RespondNegotiation: validation failed: empty response")
		return nil, fmt.Errorf("%w: response is required", ErrInvalidInput)
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	var (
		result      *Result
		transitions []transition
	)

	// 3. Изменяем комнату под блокировкой
	err := uc.roomService.Mutate(ctx, req.RoomID, func(_ context.Context, room *domain.Room) error {
		result, transitions = nil, nil

		// 3.1. Проверяем переговоры и участника
		n, ok := room.Negotiation(req.NegotiationID)
		if !ok {
			return ErrNegotiationNotFound
		}
		if !n.IsActive() {
			return ErrAlreadyResolved
		}
		if !n.Involves(req.UserID) {
			return ErrNotParticipant
		}
		if negotiationEngine.HasOverlappingResponse(room, n, req.UserID) {
			return ErrOverlappingResponse
		}

		// 3.2. Переход автомата
		negType := n.Type
		t, err := uc.engine.Respond(room, n, negotiationEngine.Input{
			UserID:           req.UserID,
			Response:         req.Response,
			YieldOption:      req.YieldOption,
			AlternativeSlots: req.AlternativeSlots,
			ChosenSlot:       req.ChosenSlot,
		}, now)
		if err != nil {
			return mapEngineError(err)
		}
		if err := applyTransition(room, t); err != nil {
			return err
		}
		transitions = append(transitions, transition{negotiationType: negType, outcome: t.Outcome, negotiation: t.Negotiation})
		for _, opened := range t.Opened {
			transitions = append(transitions, transition{negotiationType: negType, outcome: t.Outcome, negotiation: opened})
		}

		// 3.3. Повторная проверка всех активных переговоров
		auto, err := uc.rescan(room, now)
		if err != nil {
			return err
		}
		transitions = append(transitions, auto...)

		current, _ := room.Negotiation(req.NegotiationID)
		view, err := copyNegotiation(current)
		if err != nil {
			return err
		}
		result = &Result{Negotiation: view, Outcome: string(t.Outcome)}
		for _, opened := range t.Opened {
			result.Opened = append(result.Opened, opened.ID)
		}
		for _, a := range auto {
			if a.negotiation.ID == req.NegotiationID {
				result.Outcome = string(a.outcome)
				continue
			}
			result.AutoResolved = append(result.AutoResolved, a.negotiation.ID)
		}
		return nil
	})
	if err != nil {
		uc.logger.Warn("RespondNegotiation: negotiation=%s failed: %v", req.NegotiationID, err)
		return nil, uc.mapRoomError("RespondNegotiation", err)
	}

	// 4. Метрики и журнал активности
	uc.publish(ctx, req.RoomID, req.UserID, transitions)

	uc.logger.Info("RespondNegotiation: negotiation=%s outcome=%s, status=%s, autoResolved=%d",
		req.NegotiationID, result.Outcome, result.Negotiation.Status, len(result.AutoResolved))
	return result, nil
}
