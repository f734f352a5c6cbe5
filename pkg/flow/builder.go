package flow

import "fmt"

// Builder assembles a Definition programmatically, as an alternative to the
// YAML format. Handy for tests and for flows embedded in Go code.
type Builder struct {
	def *Definition
	err error
}

// NewBuilder starts a definition at the given entry step.
func NewBuilder(entry Step) *Builder {
	return &Builder{
		def: &Definition{
			Entry: entry,
			Table: make(Table),
		},
	}
}

// Route adds an unconditional transition from one step to another.
func (b *Builder) Route(from, to Step) *Builder {
	if b.err != nil {
		return b
	}
	if _, ok := b.def.Table[from]; ok {
		b.err = fmt.Errorf("duplicate rule for step %s/%s", from.Path, from.Component)
		return b
	}
	dest := to
	b.def.Table[from] = Rule{To: &dest}
	return b
}

// Branch adds a conditional transition taken when the step produces tag.
// Repeated calls for the same from step accumulate branches.
func (b *Builder) Branch(from Step, tag string, to Step) *Builder {
	if b.err != nil {
		return b
	}
	rule, ok := b.def.Table[from]
	if ok && rule.To != nil {
		b.err = fmt.Errorf("step %s/%s already has an unconditional rule", from.Path, from.Component)
		return b
	}
	if rule.When == nil {
		rule.When = make(map[string]Step)
	}
	if _, ok := rule.When[tag]; ok {
		b.err = fmt.Errorf("duplicate branch %q for step %s/%s", tag, from.Path, from.Component)
		return b
	}
	rule.When[tag] = to
	b.def.Table[from] = rule
	return b
}

// Build returns the assembled definition, or the first construction error.
func (b *Builder) Build() (*Definition, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.def.Entry.Zero() {
		return nil, fmt.Errorf("entry step requires both path and component")
	}
	return b.def, nil
}
