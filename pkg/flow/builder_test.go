package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_MatchesParsedDefinition(t *testing.T) {
	greeting := Step{Path: "login", Component: "greeting"}
	login := Step{Path: "login", Component: "login_api_call"}
	dashboard := Step{Path: "account", Component: "account_dashboard"}
	amount := Step{Path: "transfer", Component: "amount_input"}

	built, err := NewBuilder(greeting).
		Route(greeting, login).
		Branch(login, "send_dashboard", dashboard).
		Route(dashboard, amount).
		Build()
	require.NoError(t, err)

	parsed, err := Parse([]byte(`
entry: {path: login, component: greeting}
rules:
  - from: {path: login, component: greeting}
    to: {path: login, component: login_api_call}
  - from: {path: login, component: login_api_call}
    when:
      send_dashboard: {path: account, component: account_dashboard}
  - from: {path: account, component: account_dashboard}
    to: {path: transfer, component: amount_input}
`))
	require.NoError(t, err)

	assert.Equal(t, parsed.Entry, built.Entry)
	assert.Equal(t, parsed.Table, built.Table)
}

func TestBuilder_AccumulatesBranches(t *testing.T) {
	confirm := Step{Path: "transfer", Component: "transfer_confirm"}
	call := Step{Path: "transfer", Component: "transfer_api_call"}
	dashboard := Step{Path: "account", Component: "account_dashboard"}

	def, err := NewBuilder(confirm).
		Branch(confirm, "confirmed", call).
		Branch(confirm, "declined", dashboard).
		Build()
	require.NoError(t, err)

	rule := def.Table[confirm]
	assert.Equal(t, call, rule.When["confirmed"])
	assert.Equal(t, dashboard, rule.When["declined"])
}

func TestBuilder_RejectsDuplicateRule(t *testing.T) {
	a := Step{Path: "p", Component: "a"}
	b := Step{Path: "p", Component: "b"}

	_, err := NewBuilder(a).Route(a, b).Route(a, b).Build()
	assert.ErrorContains(t, err, "duplicate rule")
}

func TestBuilder_RejectsMixedRule(t *testing.T) {
	a := Step{Path: "p", Component: "a"}
	b := Step{Path: "p", Component: "b"}

	_, err := NewBuilder(a).Route(a, b).Branch(a, "tag", b).Build()
	assert.ErrorContains(t, err, "unconditional")
}

func TestBuilder_RejectsDuplicateBranch(t *testing.T) {
	a := Step{Path: "p", Component: "a"}
	b := Step{Path: "p", Component: "b"}

	_, err := NewBuilder(a).Branch(a, "tag", b).Branch(a, "tag", b).Build()
	assert.ErrorContains(t, err, "duplicate branch")
}

func TestBuilder_RequiresEntry(t *testing.T) {
	_, err := NewBuilder(Step{}).Build()
	assert.Error(t, err)
}

func TestBuilder_KeepsFirstError(t *testing.T) {
	a := Step{Path: "p", Component: "a"}
	b := Step{Path: "p", Component: "b"}

	_, err := NewBuilder(a).
		Route(a, b).
		Route(a, b).        // first error
		Branch(a, "t", b).  // would be a different error
		Build()
	assert.ErrorContains(t, err, "duplicate rule")
}
