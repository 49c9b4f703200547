package negotiation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	negotiationEngine "github.com/m04kA/SMC-SlotExchangeService/internal/engine/negotiation"
	"github.com/m04kA/SMC-SlotExchangeService/internal/integrations/activitylog"
	"github.com/m04kA/SMC-SlotExchangeService/internal/service/rooms"
)

// UseCase переговоры по спорному времени: открытие, список, ответы, отмена ответа
type UseCase struct {
	roomService  RoomService
	engine       Engine
	activity     ActivityRecorder
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	roomService RoomService,
	engine Engine,
	activity ActivityRecorder,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		roomService:  roomService,
		engine:       engine,
		activity:     activity,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// transition переход, примененный к комнате, для метрик и событий после фиксации
type transition struct {
	negotiationType domain.NegotiationType
	outcome         negotiationEngine.Outcome
	negotiation     *domain.Negotiation
}

// applyTransition применяет изменения слотов, начисляет переносы и заменяет переговоры в комнате
func applyTransition(room *domain.Room, t *negotiationEngine.Transition) error {
	if err := room.Apply(t.Changeset); err != nil {
		if errors.Is(err, domain.ErrChangesetOverlap) {
			return fmt.Errorf("%w: %v", ErrSlotTaken, err)
		}
		return fmt.Errorf("%w: apply changeset: %v", ErrInternal, err)
	}

	for _, c := range t.Credits {
		member, ok := room.Member(c.UserID)
		if !ok {
			return fmt.Errorf("%w: credited user %s is not a room member", ErrInternal, c.UserID)
		}
		member.AddCarryOver(c.Entry)
	}

	current, ok := room.Negotiation(t.Negotiation.ID)
	if !ok {
		return ErrNegotiationNotFound
	}
	*current = *t.Negotiation

	for _, opened := range t.Opened {
		room.Negotiations = append(room.Negotiations, *opened)
	}
	return nil
}

// rescan закрывает активные переговоры, участники которых уже получили недельную норму
func (uc *UseCase) rescan(room *domain.Room, now time.Time) ([]transition, error) {
	required := room.Settings.RequiredMinutesPerWeek
	if required <= 0 {
		return nil, nil
	}

	var result []transition
	for _, n := range room.ActiveNegotiations() {
		t, ok := uc.engine.AutoResolve(room, n, required, now)
		if !ok {
			continue
		}
		if err := applyTransition(room, t); err != nil {
			return nil, err
		}
		result = append(result, transition{negotiationType: t.Negotiation.Type, outcome: t.Outcome, negotiation: t.Negotiation})
	}
	return result, nil
}

// mapRoomError переводит ошибки сервиса комнат в ошибки usecase; собственные ошибки проходят как есть
func (uc *UseCase) mapRoomError(op string, err error) error {
	switch {
	case errors.Is(err, rooms.ErrRoomNotFound):
		return ErrRoomNotFound
	case errors.Is(err, rooms.ErrConcurrentModification), errors.Is(err, rooms.ErrRoomBusy):
		return ErrConcurrentModification
	case isOwnError(err):
		return err
	default:
		uc.logger.Error("%s: room service error: %v", op, err)
		return fmt.Errorf("%w: %s - room service: %v", ErrInternal, op, err)
	}
}

func isOwnError(err error) bool {
	for _, own := range []error{
		ErrNegotiationNotFound, ErrNotMember, ErrNotOwner, ErrNotParticipant, ErrInvalidInput,
		ErrInvalidState, ErrAlreadyResolved, ErrOverlappingResponse, ErrSlotTaken, ErrInternal,
	} {
		if errors.Is(err, own) {
			return true
		}
	}
	return false
}

// mapEngineError переводит ошибки движка переговоров в ошибки usecase
func mapEngineError(err error) error {
	switch {
	case errors.Is(err, negotiationEngine.ErrResolved):
		return ErrAlreadyResolved
	case errors.Is(err, negotiationEngine.ErrNotParticipant):
		return ErrNotParticipant
	case errors.Is(err, negotiationEngine.ErrAlreadyResponded), errors.Is(err, negotiationEngine.ErrNotResponded):
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	case errors.Is(err, negotiationEngine.ErrSlotUnavailable):
		return fmt.Errorf("%w: %v", ErrSlotTaken, err)
	case errors.Is(err, negotiationEngine.ErrInvalidResponse), errors.Is(err, negotiationEngine.ErrInvalidNegotiation):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return fmt.Errorf("%w: engine: %v", ErrInternal, err)
	}
}

// publish отправляет метрики и события после фиксации транзакции
func (uc *UseCase) publish(ctx context.Context, roomID, actorID string, transitions []transition) {
	for _, t := range transitions {
		uc.metrics.IncNegotiationTransition(string(t.negotiationType), string(t.outcome))

		var eventType activitylog.EventType
		switch t.outcome {
		case negotiationEngine.OutcomeResolved, negotiationEngine.OutcomeAutoResolved:
			eventType = activitylog.EventNegotiationResolved
		case negotiationEngine.OutcomeEscalated:
			eventType = activitylog.EventNegotiationEscalated
		default:
			continue
		}
		uc.activity.Record(ctx, negotiationEvent(eventType, roomID, actorID, t.negotiation))
	}
}

func negotiationEvent(eventType activitylog.EventType, roomID, actorID string, n *domain.Negotiation) activitylog.Event {
	recipients := make([]string, 0, len(n.ConflictingMembers))
	for _, m := range n.ConflictingMembers {
		recipients = append(recipients, m.UserID)
	}
	details := map[string]string{
		"negotiationType": string(n.Type),
		"date":            n.SlotInfo.Date.Format(domain.DateFormat),
		"window":          n.SlotInfo.StartTime.String() + "-" + n.SlotInfo.EndTime.String(),
	}
	if n.Resolution != nil {
		details["method"] = string(n.Resolution.Method)
		if n.Resolution.WinnerID != "" {
			details["winnerId"] = n.Resolution.WinnerID
		}
	}
	return activitylog.Event{
		Type:       eventType,
		RoomID:     roomID,
		ActorID:    actorID,
		Recipients: recipients,
		EntityID:   n.ID,
		Details:    details,
		OccurredAt: n.UpdatedAt,
	}
}

func copyNegotiation(n *domain.Negotiation) (*domain.Negotiation, error) {
	c, err := n.Clone()
	if err != nil {
		return nil, fmt.Errorf("%w: clone negotiation: %v", ErrInternal, err)
	}
	return c, nil
}
