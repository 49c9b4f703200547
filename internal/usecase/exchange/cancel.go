package exchange

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/integrations/activitylog"
)

const reasonCancelled = "cancelled by requester"

// Cancel отменяет открытый запрос вместе с его незавершенными звеньями цепочки
func (uc *UseCase) Cancel(ctx context.Context, req *CancelRequest) (*Result, error) {
	uc.logger.Info("CancelExchange: room=%s, request=%s, user=%s", req.RoomID, req.RequestID, req.UserID)

	now := uc.timeProvider.Now()

	var (
		result *Result
		events []activitylog.Event
	)

	err := uc.roomService.Mutate(ctx, req.RoomID, func(_ context.Context, room *domain.Room) error {
		result, events = nil, nil

		exReq, ok := room.Request(req.RequestID)
		if !ok {
			return ErrRequestNotFound
		}
		if exReq.Type == domain.RequestTypeChain {
			return fmt.Errorf("%w: cancel the original request instead of a chain hop", ErrInvalidState)
		}
		if exReq.RequesterID != req.UserID {
			return ErrWrongRespondent
		}
		if !exReq.Status.IsOpen() {
			return fmt.Errorf("%w: status=%s", ErrAlreadyResolved, exReq.Status)
		}

		recipients := []string{exReq.TargetUserID}
		for _, h := range room.ChainHops(exReq.ID) {
			if h.Status.IsOpen() {
				h.Status = domain.RequestCancelled
				h.UpdatedAt = now
				recipients = append(recipients, h.TargetUserID)
			}
		}

		exReq.Status = domain.RequestCancelled
		if exReq.Response == nil {
			exReq.Response = &domain.RequestResponse{RespondedAt: now}
		}
		exReq.Response.Reason = reasonCancelled
		exReq.UpdatedAt = now

		result = &Result{Request: copyRequest(exReq)}
		events = append(events, requestEvent(activitylog.EventExchangeCancelled, room, exReq, req.UserID, recipients...))
		return nil
	})
	if err != nil {
		uc.logger.Warn("CancelExchange: request=%s failed: %v", req.RequestID, err)
		return nil, uc.mapRoomError("CancelExchange", err)
	}

	uc.record(ctx, events)
	uc.logger.Info("CancelExchange: request=%s cancelled", req.RequestID)
	return result, nil
}
