package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/internal/integrations/activitylog"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/types"
)

// Create создает запрос обмена на блок слотов другого участника
func (uc *UseCase) Create(ctx context.Context, req *CreateRequest) (*Result, error) {
	uc.logger.Info("CreateExchange: room=%s, user=%s, target=%s, day=%s, time=%s, offered=%d",
		req.RoomID, req.UserID, req.TargetUserID, req.TargetDay, req.TargetTime, len(req.RequesterSlotIDs))

	// 1. Получаем текущее время
	now := uc.timeProvider.Now()

	// 2. Валидация входных данных
	day, tt, err := validateCreate(req, now)
	if err != nil {
		uc.logger.Warn("CreateExchange: validation failed: %v", err)
		return nil, err
	}

	var (
		created *domain.ExchangeRequest
		events  []activitylog.Event
	)

	// 3. Изменяем комнату под блокировкой
	err = uc.roomService.Mutate(ctx, req.RoomID, func(_ context.Context, room *domain.Room) error {
		events = nil

		// 3.1. Проверяем участников
		if !room.IsMember(req.UserID) {
			return ErrNotMember
		}
		if !room.IsMember(req.TargetUserID) {
			return fmt.Errorf("%w: target %s is not a room member", ErrInvalidInput, req.TargetUserID)
		}

		// 3.2. Находим целевой блок
		target, err := findTargetBlock(room, req.TargetUserID, day, tt, req.TargetDate, now)
		if err != nil {
			return err
		}

		// 3.3. Собираем предложенные слоты
		offered, err := collectOffered(room, req.UserID, req.RequesterSlotIDs)
		if err != nil {
			return err
		}

		// 3.4. Проверяем дубликаты
		for i := range room.Requests {
			existing := &room.Requests[i]
			if existing.Status.IsOpen() && existing.Type != domain.RequestTypeChain &&
				existing.RequesterID == req.UserID && existing.TargetUserID == req.TargetUserID &&
				existing.TargetSlot.Overlaps(target.Placement) {
				return fmt.Errorf("%w: request id=%s", ErrDuplicateRequest, existing.ID)
			}
		}

		// 3.5. Создаем запрос
		reqType := domain.RequestTypeTime
		if len(offered) > 0 {
			reqType = domain.RequestTypeSwap
		}
		room.Requests = append(room.Requests, domain.ExchangeRequest{
			ID:             uuid.NewString(),
			Type:           reqType,
			RequesterID:    req.UserID,
			TargetUserID:   req.TargetUserID,
			RequesterSlots: offered,
			TargetSlot:     target,
			Message:        req.Message,
			Status:         domain.RequestPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		created = copyRequest(&room.Requests[len(room.Requests)-1])
		events = append(events, requestEvent(activitylog.EventExchangeRequested, room, created, req.UserID, req.TargetUserID))
		return nil
	})
	if err != nil {
		uc.logger.Warn("CreateExchange: room=%s failed: %v", req.RoomID, err)
		return nil, uc.mapRoomError("CreateExchange", err)
	}

	uc.record(ctx, events)
	uc.logger.Info("CreateExchange: request id=%s created, type=%s, target block %s %s-%s",
		created.ID, created.Type, created.TargetSlot.Date.Format(domain.DateFormat),
		created.TargetSlot.StartTime, created.TargetSlot.EndTime)
	return &Result{Request: created}, nil
}

// findTargetBlock ищет блок адресата: ближайшую дату с нужным днем недели, где блок содержит начало.
// Для диапазона берутся ровно слоты внутри диапазона, и они должны покрывать его целиком.
func findTargetBlock(room *domain.Room, userID string, day time.Weekday, tt targetTime, date *time.Time, now time.Time) (domain.SlotRef, error) {
	today := domain.DateOnly(now)
	nowTime := types.TimeOfDayFromTime(now)

	var userSlots []domain.TimeSlot
	for _, s := range room.TimeSlots {
		if s.UserID == userID {
			userSlots = append(userSlots, s)
		}
	}

	for _, block := range domain.GroupBlocks(userSlots) {
		d := domain.DateOnly(block.Placement.Date)
		if d.Weekday() != day || d.Before(today) {
			continue
		}
		if date != nil && !domain.SameDate(d, *date) {
			continue
		}
		iv := block.Placement.Interval()
		if tt.start < iv.Start || tt.start >= iv.End {
			continue
		}
		if domain.SameDate(d, today) && iv.Start < nowTime {
			continue
		}

		if !tt.ranged {
			return domain.SlotRef{UserID: userID, SlotIDs: domain.SlotIDs(block.Slots), Placement: block.Placement}, nil
		}

		want := tt.interval()
		if !iv.Contains(want) {
			return domain.SlotRef{}, fmt.Errorf("%w: %s %s-%s is not fully held by %s",
				ErrSlotNotFound, d.Format(domain.DateFormat), want.Start, want.End, userID)
		}
		var inside []domain.TimeSlot
		for _, s := range block.Slots {
			if want.Contains(s.Interval()) {
				inside = append(inside, s)
			}
		}
		return domain.SlotRef{UserID: userID, SlotIDs: domain.SlotIDs(inside), Placement: domain.NewPlacement(d, want)}, nil
	}

	return domain.SlotRef{}, fmt.Errorf("%w: %s has no slot on %s at %s",
		ErrSlotNotFound, userID, domain.WeekdayName(day), tt.start)
}

// collectOffered проверяет предложенные слоты и группирует их в непрерывные блоки
func collectOffered(room *domain.Room, userID string, ids []string) ([]domain.SlotRef, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	slots := make([]domain.TimeSlot, 0, len(ids))
	for _, id := range ids {
		s, ok := room.Slot(id)
		if !ok {
			return nil, fmt.Errorf("%w: offered slot id=%s", ErrSlotNotFound, id)
		}
		if s.UserID != userID {
			return nil, fmt.Errorf("%w: offered slot id=%s is not yours", ErrInvalidInput, id)
		}
		slots = append(slots, s)
	}

	var refs []domain.SlotRef
	for _, block := range domain.GroupBlocks(slots) {
		refs = append(refs, domain.SlotRef{UserID: userID, SlotIDs: domain.SlotIDs(block.Slots), Placement: block.Placement})
	}
	return refs, nil
}
