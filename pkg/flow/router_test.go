package flow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konvo/konvo/pkg/domain"
	"github.com/konvo/konvo/pkg/faults"
	"github.com/konvo/konvo/pkg/flow"
)

func demoTable() flow.Table {
	return flow.Table{
		{Path: "login", Component: "greeting"}: {
			To: &flow.Step{Path: "login", Component: "login_api_call"},
		},
		{Path: "login", Component: "login_api_call"}: {
			When: map[string]flow.Step{
				"send_dashboard":   {Path: "account", Component: "account_dashboard"},
				"start_onboarding": {Path: "onboarding", Component: "collect_name"},
			},
		},
	}
}

func TestNext_Unconditional(t *testing.T) {
	table := demoTable()

	dest, ok, err := table.Next(domain.Flow{Path: "login", Component: "greeting"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, flow.Step{Path: "login", Component: "login_api_call"}, dest)
}

func TestNext_Conditional(t *testing.T) {
	table := demoTable()

	dest, ok, err := table.Next(domain.Flow{
		Path: "login", Component: "login_api_call", ComponentResult: "send_dashboard",
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, flow.Step{Path: "account", Component: "account_dashboard"}, dest)

	dest, ok, err = table.Next(domain.Flow{
		Path: "login", Component: "login_api_call", ComponentResult: "start_onboarding",
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, flow.Step{Path: "onboarding", Component: "collect_name"}, dest)
}

func TestNext_Deterministic(t *testing.T) {
	table := demoTable()
	f := domain.Flow{Path: "login", Component: "login_api_call", ComponentResult: "send_dashboard"}

	first, ok, err := table.Next(f)
	require.NoError(t, err)
	require.True(t, ok)

	for i := 0; i < 100; i++ {
		dest, ok, err := table.Next(f)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, first, dest)
	}
}

func TestNext_AwaitingInputGate(t *testing.T) {
	table := demoTable()

	// Regardless of the recorded result, an awaiting step is frozen.
	for _, tag := range []string{"", "send_dashboard", "start_onboarding", "bogus"} {
		dest, ok, err := table.Next(domain.Flow{
			Path: "login", Component: "greeting",
			AwaitingInput: true, ComponentResult: tag,
		})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, flow.Step{Path: "login", Component: "greeting"}, dest)
	}
}

func TestNext_TerminalStep(t *testing.T) {
	table := demoTable()

	_, ok, err := table.Next(domain.Flow{Path: "account", Component: "account_dashboard"})
	require.NoError(t, err)
	assert.False(t, ok, "a step without a table entry ends the flow naturally")
}

func TestNext_UnmatchedBranchIsRoutingError(t *testing.T) {
	table := demoTable()

	_, _, err := table.Next(domain.Flow{
		Path: "login", Component: "login_api_call", ComponentResult: "bogus",
	})
	require.Error(t, err)

	var fe *faults.FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "login", fe.Path)
	assert.Equal(t, "login_api_call", fe.Component)
	assert.Equal(t, faults.KindFlow, faults.KindOf(err))
}
