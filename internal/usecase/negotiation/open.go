package negotiation

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	negotiationEngine "github.com/m04kA/SMC-SlotExchangeService/internal/engine/negotiation"
	"github.com/m04kA/SMC-SlotExchangeService/internal/integrations/activitylog"
)

const outcomeOpened = "opened"

// Open открывает переговоры по спорному окну. Доступно только владельцу комнаты.
func (uc *UseCase) Open(ctx context.Context, req *OpenRequest) (*Result, error) {
	uc.logger.Info("OpenNegotiation: room=%s, user=%s, type=%s, date=%s, window=%s-%s, members=%d",
		req.RoomID, req.UserID, req.Type, req.Date.Format(domain.DateFormat), req.StartTime, req.EndTime, len(req.Members))

	// 1. Валидация входных данных
	if len(req.Subject) > domain.MaxSubjectLength {
		uc.logger.Warn("OpenNegotiation: validation failed: subject too long")
		return nil, fmt.Errorf("%w: subject longer than %d characters", ErrInvalidInput, domain.MaxSubjectLength)
	}
	for _, m := range req.Members {
		if m.RequiredSlots > domain.MaxRequiredSlots {
			uc.logger.Warn("OpenNegotiation: validation failed: member %s requires %d slots", m.UserID, m.RequiredSlots)
			return nil, fmt.Errorf("%w: requiredSlots above %d", ErrInvalidInput, domain.MaxRequiredSlots)
		}
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	members := make([]negotiationEngine.MemberRequirement, 0, len(req.Members))
	for _, m := range req.Members {
		members = append(members, negotiationEngine.MemberRequirement{UserID: m.UserID, RequiredSlots: m.RequiredSlots})
	}

	var opened *domain.Negotiation

	// 3. Изменяем комнату под блокировкой
	err := uc.roomService.Mutate(ctx, req.RoomID, func(_ context.Context, room *domain.Room) error {
		opened = nil

		if !room.IsOwner(req.UserID) {
			return ErrNotOwner
		}

		n, err := uc.engine.Open(room, negotiationEngine.OpenInput{
			CreatedBy: req.UserID,
			Type:      req.Type,
			Date:      req.Date,
			Window:    domain.NewInterval(req.StartTime, req.EndTime),
			Subject:   req.Subject,
			Members:   members,
		}, now)
		if err != nil {
			return mapEngineError(err)
		}

		room.Negotiations = append(room.Negotiations, *n)
		opened, err = copyNegotiation(n)
		return err
	})
	if err != nil {
		uc.logger.Warn("OpenNegotiation: room=%s failed: %v", req.RoomID, err)
		return nil, uc.mapRoomError("OpenNegotiation", err)
	}

	// 4. Метрики и журнал активности
	uc.metrics.IncNegotiationTransition(string(opened.Type), outcomeOpened)
	uc.activity.Record(ctx, negotiationEvent(activitylog.EventNegotiationOpened, req.RoomID, req.UserID, opened))

	uc.logger.Info("OpenNegotiation: negotiation id=%s opened, type=%s", opened.ID, opened.Type)
	return &Result{Negotiation: opened, Outcome: outcomeOpened}, nil
}
