package component

import "github.com/konvo/konvo/pkg/domain"

// ValidateFunc checks raw user input. Validation is purely syntactic (range,
// shape, format); it never calls external services.
type ValidateFunc func(raw string) Result

// Input prompts the user and validates their reply. An accepted value is
// written into flow.data under the declared key for a later consumer; this
// component is the producer of that key and never its consumer.
type Input struct {
	name     string
	produces string
	prompt   RenderFunc
	validate ValidateFunc
}

// NewInput creates an input component. produces names the flow.data key the
// accepted value is stored under.
func NewInput(name, produces string, prompt RenderFunc, validate ValidateFunc) *Input {
	return &Input{name: name, produces: produces, prompt: prompt, validate: validate}
}

func (i *Input) Name() string { return i.name }
func (i *Input) Kind() Kind   { return KindInput }

// Produces returns the flow.data key this component writes on acceptance.
func (i *Input) Produces() string { return i.produces }

// Prompt renders the question to send before awaiting input.
func (i *Input) Prompt(s *domain.Session) (string, error) {
	return i.prompt(s)
}

// Validate checks the raw reply.
func (i *Input) Validate(raw string) Result {
	return i.validate(raw)
}
