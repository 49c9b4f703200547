package exchange

import (
	"time"

	"github.com/m04kA/SMC-SlotExchangeService/internal/domain"
)

// CreateRequest входные данные для создания запроса обмена
type CreateRequest struct {
	RoomID       string
	UserID       string
	TargetUserID string
	// TargetDay день недели целевого слота ("monday" ... "sunday")
	TargetDay string
	// TargetTime "HH:MM" (весь непрерывный блок, содержащий это время) или "HH:MM-HH:MM"
	TargetTime string
	// TargetDate конкретная дата; если не задана, берется ближайшая подходящая
	TargetDate       *time.Time
	RequesterSlotIDs []string
	Message          string
}

// RespondRequest ответ адресата на запрос или на звено цепочки
type RespondRequest struct {
	RoomID    string
	UserID    string
	RequestID string
	Action    domain.ResponseAction
	Reason    string
}

// CancelRequest отмена запроса автором
type CancelRequest struct {
	RoomID    string
	UserID    string
	RequestID string
}

// ListRequest запросы пользователя в комнате
type ListRequest struct {
	RoomID string
	UserID string
}

// Result итог операции над запросом
type Result struct {
	Request         *domain.ExchangeRequest
	ExchangeType    domain.ExchangeType
	AlternativeSlot *domain.Placement
	// NextHop новое звено цепочки, если оно было создано
	NextHop *domain.ExchangeRequest
}

// ListResult отправленные и полученные запросы
type ListResult struct {
	Sent     []domain.ExchangeRequest
	Received []domain.ExchangeRequest
}
