// Package state is the single write path into the session document. Every
// mutation goes through Manager.Write, which validates the candidate against
// the document schema, applies it atomically (all or nothing) and records the
// attempt in the session's validation history. Reads use dotted paths.
package state

import (
	"time"

	"github.com/konvo/konvo/pkg/domain"
	"github.com/konvo/konvo/pkg/schema"
)

// DefaultMaxHistory bounds the validation history kept per session.
const DefaultMaxHistory = 20

// Patch is a partial-document write. Nil sections are left untouched;
// Dashboard and Flow are full replacements when present (the dashboard is
// overwritten wholesale on each successful API call, never partially
// patched). FlowData merges into flow.data and ClearData removes keys from
// it; both bypass schema checks since flow.data is the unvalidated region.
type Patch struct {
	Identity  *domain.Identity
	Auth      *domain.Auth
	Dashboard map[string]any
	Flow      *domain.Flow
	FlowData  map[string]any
	ClearData []string
}

// Manager validates and applies patches to session documents.
type Manager struct {
	maxHistory int
	now        func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithMaxHistory bounds the per-session validation history length.
func WithMaxHistory(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxHistory = n
		}
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a state manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		maxHistory: DefaultMaxHistory,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Write applies a patch to a copy of the session, validates the result and
// returns the new snapshot. On validation failure the original document is
// left exactly as it was, except that the failed attempt is recorded in its
// validation bookkeeping; the returned error is the typed schema error.
// Write never coerces invalid input into shape; fixing is the caller's job.
func (m *Manager) Write(s *domain.Session, op string, p Patch) (*domain.Session, error) {
	candidate := s.Clone()

	if p.Identity != nil {
		candidate.Identity = *p.Identity
	}
	if p.Auth != nil {
		candidate.Auth = *p.Auth
	}
	if p.Dashboard != nil {
		candidate.Dashboard = p.Dashboard
	}
	if p.Flow != nil {
		prior := candidate.Flow.Data
		candidate.Flow = *p.Flow
		if candidate.Flow.Data == nil {
			candidate.Flow.Data = prior
		}
	}
	// Never alias a caller-owned map: the returned snapshot must be safe to
	// mutate independently of the input document.
	merged := make(map[string]any, len(candidate.Flow.Data))
	for k, v := range candidate.Flow.Data {
		merged[k] = v
	}
	candidate.Flow.Data = merged
	// Clear consumed keys before merging, so a step that consumes and
	// re-produces the same key keeps the fresh value.
	for _, k := range p.ClearData {
		delete(candidate.Flow.Data, k)
	}
	for k, v := range p.FlowData {
		candidate.Flow.Data[k] = v
	}

	if err := schema.ValidateSession(candidate); err != nil {
		m.Record(s, op, false, err.Error())
		return nil, err
	}

	m.Record(candidate, op, true, "")
	return candidate, nil
}

// Record appends a validation attempt for op and bumps its counter. It is
// exported so callers can also account for failures that never reach Write,
// such as a component rejecting raw input or a remote call failing.
func (m *Manager) Record(s *domain.Session, op string, success bool, errMsg string) {
	if s.Validation.Attempts == nil {
		s.Validation.Attempts = make(map[string]int)
	}
	s.Validation.Attempts[op]++

	s.Validation.History = append(s.Validation.History, domain.ValidationRecord{
		Op:      op,
		At:      m.now(),
		Success: success,
		Error:   errMsg,
	})
	if over := len(s.Validation.History) - m.maxHistory; over > 0 {
		s.Validation.History = s.Validation.History[over:]
	}
}

// Attempts returns how many writes (successful or not) have been recorded
// for an operation name. Callers use it for attempt-based lockout.
func Attempts(s *domain.Session, op string) int {
	return s.Validation.Attempts[op]
}

// History returns the recorded attempts for op, oldest first. With an empty
// op it returns the whole history.
func History(s *domain.Session, op string) []domain.ValidationRecord {
	if op == "" {
		return s.Validation.History
	}
	var out []domain.ValidationRecord
	for _, r := range s.Validation.History {
		if r.Op == op {
			out = append(out, r)
		}
	}
	return out
}

// ClearAttempts resets the counter for an operation, typically after the
// step it guards finally succeeds.
func ClearAttempts(s *domain.Session, op string) {
	delete(s.Validation.Attempts, op)
}
