package domain

import "time"

// RequestType distinguishes exchange requests
type RequestType string

const (
	// RequestTypeTime is a one-way ask: the requester offers nothing in return
	RequestTypeTime RequestType = "time_request"
	// RequestTypeSwap offers the requester's own slots in exchange
	RequestTypeSwap RequestType = "slot_swap"
	// RequestTypeChain is a hop recruiting a third party into a relocation chain
	RequestTypeChain RequestType = "chain_exchange"
)

// RequestStatus is the lifecycle state of an exchange request
type RequestStatus string

const (
	RequestPending                RequestStatus = "pending"
	RequestApproved               RequestStatus = "approved"
	RequestRejected               RequestStatus = "rejected"
	RequestCancelled              RequestStatus = "cancelled"
	RequestWaitingForChain        RequestStatus = "waiting_for_chain"
	RequestNeedsChainConfirmation RequestStatus = "needs_chain_confirmation"
)

// IsOpen reports whether the request can still change state
func (s RequestStatus) IsOpen() bool {
	return s == RequestPending || s == RequestWaitingForChain || s == RequestNeedsChainConfirmation
}

// ResponseAction is the answer of a respondent
type ResponseAction string

const (
	ActionAccept ResponseAction = "accept"
	ActionReject ResponseAction = "reject"
)

// ExchangeType is how an accepted request was resolved
type ExchangeType string

const (
	ExchangeDirect       ExchangeType = "direct"
	ExchangeRelocated    ExchangeType = "relocated"
	ExchangeChainStarted ExchangeType = "chain_started"
	ExchangeChainHop     ExchangeType = "chain_next_hop"
	ExchangeChainDone    ExchangeType = "chain_completed"
)

// SlotRef points at a block of concrete slots held by one user
type SlotRef struct {
	UserID  string   `json:"userId"`
	SlotIDs []string `json:"slotIds"`
	Placement
}

// ChainMove is one relocation in a planned chain: the user vacates slots and occupies a new placement
type ChainMove struct {
	UserID        string    `json:"userId"`
	VacateSlotIDs []string  `json:"vacateSlotIds"`
	Occupy        Placement `json:"occupy"`
}

// ChainCandidate is a third party sitting in a preferred window of the user who needs to move
type ChainCandidate struct {
	UserID        string  `json:"userId"`
	Slot          SlotRef `json:"slot"`
	DaysFromToday int     `json:"daysFromToday"`
}

// ChainData is the provenance of a chain hop and the fallback candidates left
type ChainData struct {
	OriginalRequesterID string           `json:"originalRequesterId"`
	OriginalRequestID   string           `json:"originalRequestId"`
	IntermediateUserID  string           `json:"intermediateUserId"`
	IntermediateSlot    SlotRef          `json:"intermediateSlot"`
	ChainUserID         string           `json:"chainUserId"`
	ChainSlot           SlotRef          `json:"chainSlot"`
	Moves               []ChainMove      `json:"moves"`
	TreatAsFree         []string         `json:"treatAsFree,omitempty"`
	RejectedUsers       []string         `json:"rejectedUsers"`
	CandidateUsers      []ChainCandidate `json:"candidateUsers"`
	Depth               int              `json:"depth"`
}

// Participants returns every user already involved in the chain
func (c *ChainData) Participants() []string {
	seen := map[string]struct{}{}
	var users []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		users = append(users, id)
	}
	add(c.OriginalRequesterID)
	for _, m := range c.Moves {
		add(m.UserID)
	}
	add(c.IntermediateUserID)
	add(c.ChainUserID)
	return users
}

// RequestResponse records how a request was answered
type RequestResponse struct {
	Action          ResponseAction `json:"action"`
	ExchangeType    ExchangeType   `json:"exchangeType,omitempty"`
	AlternativeSlot *Placement     `json:"alternativeSlot,omitempty"`
	Reason          string         `json:"reason,omitempty"`
	RespondedAt     time.Time      `json:"respondedAt"`
}

// ExchangeRequest is a point-to-point ask to move a block of slots, or a hop of a relocation chain
type ExchangeRequest struct {
	ID             string           `json:"id"`
	Type           RequestType      `json:"type"`
	RequesterID    string           `json:"requesterId"`
	TargetUserID   string           `json:"targetUserId"`
	RequesterSlots []SlotRef        `json:"requesterSlots"`
	TargetSlot     SlotRef          `json:"targetSlot"`
	ChainData      *ChainData       `json:"chainData,omitempty"`
	Message        string           `json:"message,omitempty"`
	Status         RequestStatus    `json:"status"`
	Response       *RequestResponse `json:"response,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// OfferedSlotIDs returns every slot id the requester gives up
func (r *ExchangeRequest) OfferedSlotIDs() []string {
	var ids []string
	for _, ref := range r.RequesterSlots {
		ids = append(ids, ref.SlotIDs...)
	}
	return ids
}

// Involves reports whether userID sent or receives the request
func (r *ExchangeRequest) Involves(userID string) bool {
	if r.RequesterID == userID || r.TargetUserID == userID {
		return true
	}
	return r.ChainData != nil && r.ChainData.OriginalRequesterID == userID
}
