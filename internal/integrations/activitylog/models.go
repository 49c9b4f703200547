package activitylog

import "time"

// EventType тип события журнала активности
type EventType string

const (
	EventExchangeRequested    EventType = "exchange_requested"
	EventExchangeApproved     EventType = "exchange_approved"
	EventExchangeRejected     EventType = "exchange_rejected"
	EventExchangeCancelled    EventType = "exchange_cancelled"
	EventChainStarted         EventType = "chain_started"
	EventChainFailed          EventType = "chain_failed"
	EventNegotiationOpened    EventType = "negotiation_opened"
	EventNegotiationResolved  EventType = "negotiation_resolved"
	EventNegotiationEscalated EventType = "negotiation_escalated"
	EventTravelModeConfirmed  EventType = "travel_mode_confirmed"
)

// Event запись журнала активности комнаты
type Event struct {
	Type       EventType         `json:"type"`
	RoomID     string            `json:"roomId"`
	ActorID    string            `json:"actorId,omitempty"`
	Recipients []string          `json:"recipients,omitempty"`
	EntityID   string            `json:"entityId,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
}
