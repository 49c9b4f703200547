package domain

// Slot granularity
const (
	// SlotMinutes is the length of one atomic slot
	SlotMinutes = 30

	// MergeGapMinutes is the largest gap between two preference entries that still merges them into one block
	MergeGapMinutes = 10
)

// Preference priorities
const (
	// AnyPriority accepts every declared preference entry
	AnyPriority = 1

	// PreferredPriority marks an entry as "preferred"
	PreferredPriority = 2
)

// Engine defaults
const (
	DefaultMaxChainDepth = 3
	DefaultSearchWeeks   = 2
)

// Validation limits
const (
	MaxRequiredSlots     = 48
	MaxNegotiationMember = 50
	MaxMessageLength     = 1000
	MaxSubjectLength     = 200
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// SystemSenderID is the sender of negotiation messages produced by the engine
const SystemSenderID = "system"
