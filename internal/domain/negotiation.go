package domain

import (
	"encoding/json"
	"time"
)

// NegotiationType is how the contested time is structured
type NegotiationType string

const (
	NegotiationFullConflict    NegotiationType = "full_conflict"
	NegotiationPartialConflict NegotiationType = "partial_conflict"
	NegotiationTimeSlotChoice  NegotiationType = "time_slot_choice"
)

// NegotiationStatus is active until resolved, which is terminal
type NegotiationStatus string

const (
	NegotiationActive   NegotiationStatus = "active"
	NegotiationResolved NegotiationStatus = "resolved"
)

// MemberResponse is a conflicting member's answer
type MemberResponse string

const (
	ResponsePending     MemberResponse = "pending"
	ResponseYield       MemberResponse = "yield"
	ResponseClaim       MemberResponse = "claim"
	ResponseSplitFirst  MemberResponse = "split_first"
	ResponseSplitSecond MemberResponse = "split_second"
	ResponseChooseSlot  MemberResponse = "choose_slot"
)

// YieldOption is what a yielding member gets instead
type YieldOption string

const (
	YieldCarryOver       YieldOption = "carry_over"
	YieldAlternativeTime YieldOption = "alternative_time"
)

// ResolutionMethod is how a negotiation reached resolved
type ResolutionMethod string

const (
	ResolvedAllYield    ResolutionMethod = "all_yield"
	ResolvedSingleClaim ResolutionMethod = "single_claim"
	ResolvedRandomDraw  ResolutionMethod = "random_draw"
	ResolvedSplit       ResolutionMethod = "split"
	ResolvedChoice      ResolutionMethod = "choice"
	ResolvedAuto        ResolutionMethod = "auto_resolved"
)

// SlotInfo is the contested window
type SlotInfo struct {
	Placement
	Subject string `json:"subject,omitempty"`
}

// SlotOption is a window a member may pick from
type SlotOption struct {
	Date      time.Time `json:"date"`
	Interval
}

// ConflictingMember is one participant of a negotiation
type ConflictingMember struct {
	UserID           string         `json:"userId"`
	Response         MemberResponse `json:"response"`
	ChosenSlot       *Interval      `json:"chosenSlot,omitempty"`
	YieldOption      YieldOption    `json:"yieldOption,omitempty"`
	AlternativeSlots []Placement    `json:"alternativeSlots,omitempty"`
	RequiredSlots    int            `json:"requiredSlots"`
	RespondedAt      *time.Time     `json:"respondedAt,omitempty"`
	AssignedSlotIDs  []string       `json:"assignedSlotIds,omitempty"`
}

// RequiredMinutes returns the member's requirement in minutes
func (m ConflictingMember) RequiredMinutes() int {
	return m.RequiredSlots * SlotMinutes
}

// HasResponded reports whether the member answered
func (m ConflictingMember) HasResponded() bool {
	return m.Response != "" && m.Response != ResponsePending
}

// NegotiationMessage is a chat-like entry attached to a negotiation
type NegotiationMessage struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	System    bool      `json:"system"`
	CreatedAt time.Time `json:"createdAt"`
}

// Assignment is time granted to a member when a negotiation resolves
type Assignment struct {
	UserID  string    `json:"userId"`
	Slot    Placement `json:"slot"`
	SlotIDs []string  `json:"slotIds"`
}

// Resolution describes the terminal outcome of a negotiation
type Resolution struct {
	Method      ResolutionMethod `json:"method"`
	WinnerID    string           `json:"winnerId,omitempty"`
	Assignments []Assignment     `json:"assignments,omitempty"`
	CarriedOver []string         `json:"carriedOver,omitempty"`
	ResolvedAt  time.Time        `json:"resolvedAt"`
}

// Negotiation is a group resolution process for a contested window
type Negotiation struct {
	ID                      string                  `json:"id"`
	Type                    NegotiationType         `json:"type"`
	SlotInfo                SlotInfo                `json:"slotInfo"`
	ConflictingMembers      []ConflictingMember     `json:"conflictingMembers"`
	MemberSpecificTimeSlots map[string][]SlotOption `json:"memberSpecificTimeSlots,omitempty"`
	Messages                []NegotiationMessage    `json:"messages"`
	Status                  NegotiationStatus       `json:"status"`
	Resolution              *Resolution             `json:"resolution,omitempty"`
	CreatedBy               string                  `json:"createdBy"`
	CreatedAt               time.Time               `json:"createdAt"`
	UpdatedAt               time.Time               `json:"updatedAt"`
}

// Clone returns a deep copy of the negotiation
func (n *Negotiation) Clone() (*Negotiation, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	var clone Negotiation
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, err
	}
	return &clone, nil
}

// Member returns a pointer to the conflicting member entry of userID
func (n *Negotiation) Member(userID string) (*ConflictingMember, bool) {
	for i := range n.ConflictingMembers {
		if n.ConflictingMembers[i].UserID == userID {
			return &n.ConflictingMembers[i], true
		}
	}
	return nil, false
}

// Involves reports whether userID is a conflicting member
func (n *Negotiation) Involves(userID string) bool {
	_, ok := n.Member(userID)
	return ok
}

// IsActive reports whether the negotiation can still change
func (n *Negotiation) IsActive() bool {
	return n.Status == NegotiationActive
}

// Window returns the contested time-of-day range
func (n *Negotiation) Window() Interval {
	return n.SlotInfo.Interval()
}
