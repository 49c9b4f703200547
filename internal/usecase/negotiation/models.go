package negotiation

import (
	"time"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/types"
)

// MemberRequirement участник открываемых переговоров и сколько слотов ему нужно
type MemberRequirement struct {
	UserID        string
	RequiredSlots int
}

// OpenRequest параметры открытия переговоров
type OpenRequest struct {
	RoomID    string
	UserID    string
	Type      domain.NegotiationType
	Date      time.Time
	StartTime types.TimeOfDay
	EndTime   types.TimeOfDay
	Subject   string
	Members   []MemberRequirement
}

// ListRequest запрос списка активных переговоров
type ListRequest struct {
	RoomID string
	UserID string
}

// RespondRequest ответ участника переговоров
type RespondRequest struct {
	RoomID           string
	UserID           string
	NegotiationID    string
	Response         domain.MemberResponse
	YieldOption      domain.YieldOption
	AlternativeSlots []domain.Placement
	ChosenSlot       *domain.Interval
}

// CancelResponseRequest отмена ответа участника
type CancelResponseRequest struct {
	RoomID        string
	UserID        string
	NegotiationID string
}

// Result состояние переговоров после операции
type Result struct {
	Negotiation *domain.Negotiation
	Outcome     string
	// AutoResolved идентификаторы других переговоров, закрытых повторной проверкой
	AutoResolved []string
	// Opened идентификаторы переговоров, выделенных при эскалации
	Opened []string
}
