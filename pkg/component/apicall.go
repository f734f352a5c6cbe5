package component

import (
	"context"

	"github.com/konvo/konvo/pkg/domain"
)

// Outcome is the verified data an ApiCall produced. The engine merges it
// into the session through the state manager: Snapshot replaces the
// dashboard wholesale, Token replaces the credential, Data is written into
// flow.data for a later step, Action is emitted to the audit trail.
type Outcome struct {
	Snapshot map[string]any
	Token    string
	Data     map[string]any
	Action   *domain.Action
	Tag      string
}

// ExecFunc performs the remote call. Expected rejections (remote 4xx, bad
// state) come back as an invalid Result; a non-nil error means
// infrastructure failure and is surfaced as a system fault.
type ExecFunc func(ctx context.Context, s *domain.Session) (Result, error)

// APICall invokes the external accounts collaborator. It is the consumer of
// the flow.data keys it declares: on success those keys are cleared so no
// stale input lingers; on failure the session is left exactly as it was,
// apart from the attempt counter.
type APICall struct {
	name     string
	consumes []string
	exec     ExecFunc
}

// NewAPICall creates an api-call component. consumes lists the flow.data
// keys the call reads and owns; they are cleared after a successful call.
func NewAPICall(name string, consumes []string, exec ExecFunc) *APICall {
	return &APICall{name: name, consumes: consumes, exec: exec}
}

func (a *APICall) Name() string { return a.name }
func (a *APICall) Kind() Kind   { return KindAPICall }

// Consumes returns the flow.data keys this component owns as a consumer.
func (a *APICall) Consumes() []string { return a.consumes }

// Execute performs the call. A valid Result carries an *Outcome as its
// Value.
func (a *APICall) Execute(ctx context.Context, s *domain.Session) (Result, error) {
	return a.exec(ctx, s)
}
