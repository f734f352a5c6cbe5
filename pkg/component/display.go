package component

import "github.com/konvo/konvo/pkg/domain"

// RenderFunc produces the content for an outbound message from the current
// session. It must not mutate the session.
type RenderFunc func(s *domain.Session) (string, error)

// Display shows content and completes immediately. It takes no input and
// always succeeds; its only effect is the message handed to the messaging
// collaborator.
type Display struct {
	name   string
	tag    string
	render RenderFunc
}

// DisplayOption configures a Display component.
type DisplayOption func(*Display)

// WithDisplayTag sets the component_result tag recorded after rendering,
// for flows that route conditionally out of a display step.
func WithDisplayTag(tag string) DisplayOption {
	return func(d *Display) { d.tag = tag }
}

// NewDisplay creates a display component.
func NewDisplay(name string, render RenderFunc, opts ...DisplayOption) *Display {
	d := &Display{name: name, render: render}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Display) Name() string { return d.name }
func (d *Display) Kind() Kind   { return KindDisplay }

// Tag returns the routing tag recorded after this step runs.
func (d *Display) Tag() string { return d.tag }

// Render produces the message content for the current session.
func (d *Display) Render(s *domain.Session) (string, error) {
	return d.render(s)
}
