package negotiation

import (
	"context"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
)

// CancelResponse отменяет ответ участника и удаляет созданные этим ответом слоты
func (uc *UseCase) CancelResponse(ctx context.Context, req *CancelResponseRequest) (*Result, error) {
	uc.logger.Info("CancelNegotiationResponse: room=%s, negotiation=%s, user=%s",
		req.RoomID, req.NegotiationID, req.UserID)

	now := uc.timeProvider.Now()

	var (
		result      *Result
		transitions []transition
	)

	err := uc.roomService.Mutate(ctx, req.RoomID, func(_ context.Context, room *domain.Room) error {
		result, transitions = nil, nil

		n, ok := room.Negotiation(req.NegotiationID)
		if !ok {
			return ErrNegotiationNotFound
		}

		t, err := uc.engine.CancelResponse(room, n, req.UserID, now)
		if err != nil {
			return mapEngineError(err)
		}
		if err := applyTransition(room, t); err != nil {
			return err
		}
		transitions = append(transitions, transition{negotiationType: t.Negotiation.Type, outcome: t.Outcome, negotiation: t.Negotiation})

		view, err := copyNegotiation(t.Negotiation)
		if err != nil {
			return err
		}
		result = &Result{Negotiation: view, Outcome: string(t.Outcome)}
		return nil
	})
	if err != nil {
		uc.logger.Warn("CancelNegotiationResponse: negotiation=%s failed: %v", req.NegotiationID, err)
		return nil, uc.mapRoomError("CancelNegotiationResponse", err)
	}

	uc.publish(ctx, req.RoomID, req.UserID, transitions)

	uc.logger.Info("CancelNegotiationResponse: negotiation=%s, user=%s response withdrawn", req.NegotiationID, req.UserID)
	return result, nil
}
