package domain

import "time"

// OutboundMessage is a payload handed to the messaging collaborator.
// The core never addresses or delivers messages itself; the collaborator
// resolves the recipient from Identity.Channel.
type OutboundMessage struct {
	Content string `json:"content"`
}

// Action is an audit record of a completed operation: either returned by the
// accounts API after it performs an operation, or synthesized locally when a
// confirm step accepts a user authorization.
type Action struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	At      time.Time      `json:"timestamp"`
	Actor   string         `json:"actor"`
	Details map[string]any `json:"details,omitempty"`
}

// Standard action types.
const (
	// ActionConfirm records a positive user authorization. It is treated as
	// equivalent to a digital signature and must never be dropped silently.
	ActionConfirm = "CONFIRM"
)

// APIResult is what the accounts API collaborator returns for a successful
// call: a full-replacement snapshot and the action it just performed.
type APIResult struct {
	Snapshot map[string]any `json:"snapshot"`
	Action   *Action        `json:"action,omitempty"`
	Token    string         `json:"token,omitempty"`
}
