package flow

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/konvo/konvo/pkg/component"
)

// Definition is a complete routing setup: the entry step for fresh sessions
// plus the transition table.
type Definition struct {
	Entry Step  `yaml:"entry"`
	Table Table `yaml:"-"`
}

// yamlRule is the on-disk shape of one table entry.
type yamlRule struct {
	From Step            `yaml:"from"`
	To   *Step           `yaml:"to,omitempty"`
	When map[string]Step `yaml:"when,omitempty"`
}

type yamlDefinition struct {
	Entry Step       `yaml:"entry"`
	Rules []yamlRule `yaml:"rules"`
}

// Parse decodes a YAML routing definition.
func Parse(data []byte) (*Definition, error) {
	var raw yamlDefinition
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse flow definition: %w", err)
	}

	if raw.Entry.Zero() {
		return nil, fmt.Errorf("flow definition missing entry step")
	}

	table := make(Table, len(raw.Rules))
	for i, r := range raw.Rules {
		if r.From.Zero() {
			return nil, fmt.Errorf("rule %d: missing 'from' step", i)
		}
		if _, dup := table[r.From]; dup {
			return nil, fmt.Errorf("rule %d: duplicate entry for %s/%s", i, r.From.Path, r.From.Component)
		}
		if (r.To == nil) == (len(r.When) == 0) {
			return nil, fmt.Errorf("rule %d (%s/%s): exactly one of 'to' or 'when' is required", i, r.From.Path, r.From.Component)
		}
		table[r.From] = Rule{To: r.To, When: r.When}
	}

	return &Definition{Entry: raw.Entry, Table: table}, nil
}

// Load reads and parses a routing definition.
func Load(r io.Reader) (*Definition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow definition: %w", err)
	}
	return Parse(data)
}

// LoadFile reads a routing definition from disk.
func LoadFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open flow definition: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Validate checks that every component the definition references is present
// in the registry, so unknown identifiers fail at startup rather than
// mid-conversation.
func (d *Definition) Validate(reg *component.Registry) error {
	check := func(s Step) error {
		if _, err := reg.Resolve(s.Component); err != nil {
			return fmt.Errorf("step %s/%s: %w", s.Path, s.Component, err)
		}
		return nil
	}

	if err := check(d.Entry); err != nil {
		return err
	}
	for from, rule := range d.Table {
		if err := check(from); err != nil {
			return err
		}
		if rule.To != nil {
			if err := check(*rule.To); err != nil {
				return err
			}
		}
		for _, dest := range rule.When {
			if err := check(dest); err != nil {
				return err
			}
		}
	}
	return nil
}
