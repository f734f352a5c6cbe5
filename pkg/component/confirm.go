package component

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/konvo/konvo/pkg/domain"
)

// Confirm tags for routing.
const (
	TagConfirmed = "confirmed"
	TagDeclined  = "declined"
)

// Confirm is a user authorization gate. It behaves like an Input restricted
// to yes/no answers, but a positive result carries the weight of a digital
// signature: the engine records it as an audit action, it is never accepted
// silently.
type Confirm struct {
	name   string
	effect string
	prompt RenderFunc
}

// NewConfirm creates a confirm component. effect describes the operation
// being authorized and is recorded in the audit action.
func NewConfirm(name, effect string, prompt RenderFunc) *Confirm {
	return &Confirm{name: name, effect: effect, prompt: prompt}
}

func (c *Confirm) Name() string { return c.name }
func (c *Confirm) Kind() Kind   { return KindConfirm }

// Prompt renders the authorization question.
func (c *Confirm) Prompt(s *domain.Session) (string, error) {
	return c.prompt(s)
}

// Validate interprets the reply strictly as an acceptance or a refusal.
// Anything else is rejected and the step re-prompts.
func (c *Confirm) Validate(raw string) Result {
	clean := strings.ToLower(strings.TrimSpace(raw))
	switch clean {
	case "y", "yes", "sim", "1", "confirm":
		return Result{Valid: true, Value: true, Tag: TagConfirmed}
	case "n", "no", "nao", "não", "0", "cancel":
		return Result{Valid: true, Value: false, Tag: TagDeclined}
	}
	return Invalid(c.name, "answer yes or no", raw)
}

// Action builds the audit record for an accepted authorization.
func (c *Confirm) Action(s *domain.Session, at time.Time) *domain.Action {
	return &domain.Action{
		ID:    uuid.NewString(),
		Type:  domain.ActionConfirm,
		At:    at,
		Actor: s.Identity.MemberID,
		Details: map[string]any{
			"effect":    c.effect,
			"component": c.name,
			"key":       s.Identity.Channel.Key(),
		},
	}
}
