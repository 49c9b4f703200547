package negotiation

import (
	"context"
	"sort"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	negotiationEngine "github.com/m04kA/SMC-SlotExchangeService/internal/engine/negotiation"
)

// List возвращает активные переговоры, видимые пользователю, с пересчитанными вариантами времени.
// Владелец видит все переговоры комнаты, участник только те, где он спорит.
func (uc *UseCase) List(ctx context.Context, req *ListRequest) ([]domain.Negotiation, error) {
	uc.logger.Info("ListNegotiations: room=%s, user=%s", req.RoomID, req.UserID)

	room, err := uc.roomService.Get(ctx, req.RoomID)
	if err != nil {
		return nil, uc.mapRoomError("ListNegotiations", err)
	}

	isOwner := room.IsOwner(req.UserID)
	if !isOwner && !room.IsMember(req.UserID) {
		uc.logger.Warn("ListNegotiations: user=%s is not a member of room=%s", req.UserID, req.RoomID)
		return nil, ErrNotMember
	}

	now := uc.timeProvider.Now()
	result := []domain.Negotiation{}
	for _, n := range room.ActiveNegotiations() {
		if !isOwner && !n.Involves(req.UserID) {
			continue
		}
		view, err := copyNegotiation(n)
		if err != nil {
			uc.logger.Error("ListNegotiations: negotiation id=%s: %v", n.ID, err)
			return nil, err
		}
		if view.Type == domain.NegotiationTimeSlotChoice {
			view.MemberSpecificTimeSlots = negotiationEngine.Options(room, view, now)
		}
		result = append(result, *view)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	uc.logger.Info("ListNegotiations: user=%s sees %d active negotiations", req.UserID, len(result))
	return result, nil
}
