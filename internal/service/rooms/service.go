package rooms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	roomRepo "github.com/m04kA/SMC-SlotExchangeService/internal/infra/storage/room"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/roomlock"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/txmanager"
)

// Service единая точка записи агрегата комнаты.
// Каждая запись идет под блокировкой комнаты внутри SERIALIZABLE транзакции
// и сохраняется с проверкой версии.
type Service struct {
	roomRepo  RoomRepository
	txManager TransactionManager
	locker    Locker
	logger    Logger
}

// NewService создает новый экземпляр сервиса комнат
func NewService(
	roomRepo RoomRepository,
	txManager TransactionManager,
	locker Locker,
	logger Logger,
) *Service {
	return &Service{
		roomRepo:  roomRepo,
		txManager: txManager,
		locker:    locker,
		logger:    logger,
	}
}

// Mutate загружает комнату, применяет fn и сохраняет результат одной записью.
// Ошибка fn отменяет сохранение и возвращается вызывающему как есть.
func (s *Service) Mutate(ctx context.Context, roomID string, fn func(ctx context.Context, room *domain.Room) error) error {
	unlock, err := s.locker.Lock(ctx, roomID)
	if err != nil {
		if errors.Is(err, roomlock.ErrLockTimeout) {
			s.logger.Warn("Mutate: room id=%s lock timeout", roomID)
			return ErrRoomBusy
		}
		return err
	}
	defer unlock()

	var fnErr error
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		fnErr = nil

		room, err := s.roomRepo.GetByIDForUpdate(txCtx, roomID)
		if err != nil {
			return s.mapRepoError("Mutate", roomID, err)
		}

		if err := fn(txCtx, room); err != nil {
			fnErr = err
			return err
		}

		if err := s.roomRepo.Save(txCtx, room); err != nil {
			return s.mapRepoError("Mutate", roomID, err)
		}
		return nil
	})

	switch {
	case err == nil:
		return nil
	case fnErr != nil && errors.Is(err, fnErr):
		return fnErr
	case errors.Is(err, txmanager.ErrSerializationFailure):
		s.logger.Warn("Mutate: room id=%s serialization retries exhausted", roomID)
		return ErrConcurrentModification
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrConcurrentModification), errors.Is(err, ErrInternal):
		return err
	default:
		s.logger.Error("Mutate: room id=%s transaction error: %v", roomID, err)
		return fmt.Errorf("%w: Mutate - transaction: %v", ErrInternal, err)
	}
}

// Get возвращает текущий снимок комнаты
func (s *Service) Get(ctx context.Context, roomID string) (*domain.Room, error) {
	var room *domain.Room
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		room, err = s.roomRepo.GetByID(txCtx, roomID)
		if err != nil {
			return s.mapRepoError("Get", roomID, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrInternal) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: Get - transaction: %v", ErrInternal, err)
	}
	return room, nil
}

// GetForUser возвращает снимок комнаты участнику или владельцу
func (s *Service) GetForUser(ctx context.Context, roomID, userID string) (*domain.Room, error) {
	room, err := s.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsOwner(userID) && !room.IsMember(userID) {
		s.logger.Warn("GetForUser: access denied: room id=%s, user=%s", roomID, userID)
		return nil, ErrAccessDenied
	}
	return room, nil
}

// Sync принимает снимок комнаты от внешнего сервиса комнат.
// Новая комната создается целиком. У существующей обновляются владелец, название, участники и настройки;
// слоты, запросы и переговоры остаются за движком, накопленные переносы участников сохраняются.
func (s *Service) Sync(ctx context.Context, snapshot *domain.Room) (*domain.Room, error) {
	if err := validateSnapshot(snapshot); err != nil {
		s.logger.Warn("Sync: invalid snapshot for room id=%s: %v", snapshot.ID, err)
		return nil, err
	}

	var result *domain.Room
	err := s.Mutate(ctx, snapshot.ID, func(txCtx context.Context, room *domain.Room) error {
		room.OwnerID = snapshot.OwnerID
		room.Name = snapshot.Name
		room.Settings = snapshot.Settings
		room.Members = mergeMembers(room.Members, snapshot.Members)
		result = room
		return nil
	})
	if err == nil {
		s.logger.Info("Sync: room id=%s updated, version=%d", snapshot.ID, result.Version)
		return result, nil
	}
	if !errors.Is(err, ErrRoomNotFound) {
		return nil, err
	}

	created := *snapshot
	created.Requests = []domain.ExchangeRequest{}
	created.Negotiations = []domain.Negotiation{}
	if err := s.roomRepo.Create(ctx, &created); err != nil {
		if errors.Is(err, roomRepo.ErrRoomExists) {
			return nil, ErrConcurrentModification
		}
		s.logger.Error("Sync: failed to create room id=%s: %v", snapshot.ID, err)
		return nil, fmt.Errorf("%w: Sync - create: %v", ErrInternal, err)
	}

	s.logger.Info("Sync: room id=%s created with %d members and %d slots",
		created.ID, len(created.Members), len(created.TimeSlots))
	return &created, nil
}

// PendingTravelMode возвращает комнаты с решением о режиме поездки старше before
func (s *Service) PendingTravelMode(ctx context.Context, before time.Time) ([]string, error) {
	ids, err := s.roomRepo.ListPendingTravelMode(ctx, before)
	if err != nil {
		s.logger.Error("PendingTravelMode: repository error: %v", err)
		return nil, fmt.Errorf("%w: PendingTravelMode - repository error: %v", ErrInternal, err)
	}
	return ids, nil
}

func (s *Service) mapRepoError(op, roomID string, err error) error {
	switch {
	case errors.Is(err, roomRepo.ErrRoomNotFound):
		return ErrRoomNotFound
	case errors.Is(err, roomRepo.ErrVersionConflict):
		s.logger.Warn("%s: room id=%s version conflict", op, roomID)
		return ErrConcurrentModification
	default:
		s.logger.Error("%s: repository error for room id=%s: %v", op, roomID, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
}

func validateSnapshot(snapshot *domain.Room) error {
	if snapshot.ID == "" {
		return fmt.Errorf("%w: room id is required", ErrInvalidInput)
	}
	if snapshot.OwnerID == "" {
		return fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(snapshot.Members))
	for _, m := range snapshot.Members {
		if m.UserID == "" {
			return fmt.Errorf("%w: member without user id", ErrInvalidInput)
		}
		if _, dup := seen[m.UserID]; dup {
			return fmt.Errorf("%w: duplicate member %s", ErrInvalidInput, m.UserID)
		}
		seen[m.UserID] = struct{}{}
	}

	for _, slot := range snapshot.TimeSlots {
		if _, ok := seen[slot.UserID]; !ok {
			return fmt.Errorf("%w: slot %s belongs to non-member %s", ErrInvalidInput, slot.ID, slot.UserID)
		}
	}

	// whole-batch validation: alignment, unique ids, no overlaps
	probe := &domain.Room{}
	if err := probe.Apply(domain.Changeset{Insert: snapshot.TimeSlots}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func mergeMembers(current, incoming []domain.Member) []domain.Member {
	byID := make(map[string]domain.Member, len(current))
	for _, m := range current {
		byID[m.UserID] = m
	}

	result := make([]domain.Member, 0, len(incoming))
	for _, m := range incoming {
		if prev, ok := byID[m.UserID]; ok {
			m.CarryOver = prev.CarryOver
			m.CarryOverHistory = prev.CarryOverHistory
			if !prev.JoinedAt.IsZero() {
				m.JoinedAt = prev.JoinedAt
			}
		}
		result = append(result, m)
	}
	return result
}
