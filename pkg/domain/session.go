package domain

import "time"

// Channel identifies where a conversation is happening.
// The session key is derived from it ("type:identifier").
type Channel struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// Key returns the canonical session key for this channel.
func (c Channel) Key() string {
	return c.Type + ":" + c.Identifier
}

// Identity holds the member identifiers for a session.
// It exists at exactly one place in the document: the top level.
type Identity struct {
	MemberID string  `json:"member_id"`
	Channel  Channel `json:"channel"`
}

// Auth holds the short-lived bearer credential for the session.
type Auth struct {
	Token string `json:"token,omitempty"`
}

// Flow is the position of the conversation inside a multi-step interaction.
type Flow struct {
	// Path names the interaction in progress (e.g. "login", "account").
	Path string `json:"path"`

	// Component names the active step within the path.
	Component string `json:"component"`

	// AwaitingInput freezes (Path, Component): the router must not advance
	// until the active component accepts the user's next message.
	AwaitingInput bool `json:"awaiting_input"`

	// ComponentResult is the tag produced by the last completed component,
	// consulted by conditional routing rules.
	ComponentResult string `json:"component_result,omitempty"`

	// Data is the only unvalidated region of the document. Components use it
	// to hand derived values to a later step; the final consumer clears the
	// keys it used once it succeeds.
	Data map[string]any `json:"data,omitempty"`
}

// Active reports whether a flow is in progress.
func (f Flow) Active() bool {
	return f.Path != "" && f.Component != ""
}

// ValidationRecord is one entry of the per-session write audit trail.
type ValidationRecord struct {
	Op      string    `json:"op"`
	At      time.Time `json:"ts"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
}

// Validation holds diagnostic bookkeeping about state writes. It is not
// business data; callers use it for attempt-based lockout decisions.
type Validation struct {
	Attempts map[string]int     `json:"attempts,omitempty"`
	History  []ValidationRecord `json:"history,omitempty"`
}

// Session is the durable unit of conversation state for one channel identity.
type Session struct {
	Identity   Identity       `json:"identity"`
	Auth       Auth           `json:"auth"`
	Dashboard  map[string]any `json:"dashboard,omitempty"`
	Flow       Flow           `json:"flow"`
	Validation Validation     `json:"validation"`
}

// NewSession creates an empty session for the given channel.
// The flow starts unset; the router decides the entry step on first contact.
func NewSession(channel Channel) *Session {
	return &Session{
		Identity: Identity{Channel: channel},
		Flow:     Flow{Data: make(map[string]any)},
	}
}

// ResetFlow clears the flow (including its scratch data) while preserving
// identity, credentials and the dashboard snapshot. Used for the explicit
// cancel command; TTL expiry instead drops the whole document.
func (s *Session) ResetFlow() {
	s.Flow = Flow{Data: make(map[string]any)}
}

// Clone returns a copy with deep-copied map regions, safe for mutation
// without aliasing the stored document.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	next := *s
	next.Dashboard = cloneMap(s.Dashboard)
	next.Flow.Data = cloneMap(s.Flow.Data)
	if s.Validation.Attempts != nil {
		next.Validation.Attempts = make(map[string]int, len(s.Validation.Attempts))
		for k, v := range s.Validation.Attempts {
			next.Validation.Attempts[k] = v
		}
	}
	next.Validation.History = append([]ValidationRecord(nil), s.Validation.History...)
	return &next
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		if nested, ok := v.(map[string]any); ok {
			dst[k] = cloneMap(nested)
			continue
		}
		dst[k] = v
	}
	return dst
}
