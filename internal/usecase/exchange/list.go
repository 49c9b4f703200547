package exchange

import (
	"context"
	"sort"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
)

// List возвращает отправленные и полученные пользователем запросы, новые первыми
func (uc *UseCase) List(ctx context.Context, req *ListRequest) (*ListResult, error) {
	uc.logger.Info("ListExchanges: room=%s, user=%s", req.RoomID, req.UserID)

	room, err := uc.roomService.Get(ctx, req.RoomID)
	if err != nil {
		return nil, uc.mapRoomError("ListExchanges", err)
	}
	if !room.IsMember(req.UserID) && !room.IsOwner(req.UserID) {
		uc.logger.Warn("ListExchanges: user=%s is not a member of room=%s", req.UserID, req.RoomID)
		return nil, ErrNotMember
	}

	result := &ListResult{
		Sent:     []domain.ExchangeRequest{},
		Received: []domain.ExchangeRequest{},
	}
	for _, r := range room.Requests {
		if r.RequesterID == req.UserID {
			result.Sent = append(result.Sent, r)
		}
		if r.TargetUserID == req.UserID {
			result.Received = append(result.Received, r)
		}
	}
	sortNewestFirst(result.Sent)
	sortNewestFirst(result.Received)

	uc.logger.Info("ListExchanges: user=%s sent=%d, received=%d", req.UserID, len(result.Sent), len(result.Received))
	return result, nil
}

func sortNewestFirst(reqs []domain.ExchangeRequest) {
	sort.SliceStable(reqs, func(i, j int) bool {
		return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
	})
}
