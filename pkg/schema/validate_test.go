package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konvo/konvo/pkg/domain"
	"github.com/konvo/konvo/pkg/schema"
)

func validSession() *domain.Session {
	s := domain.NewSession(domain.Channel{Type: "whatsapp", Identifier: "+100"})
	s.Identity.MemberID = "m-1"
	s.Flow.Path = "login"
	s.Flow.Component = "greeting"
	return s
}

func TestValidateSession_OK(t *testing.T) {
	s := validSession()
	s.Dashboard = map[string]any{"balance": 100.0, "name": "Ada"}
	assert.NoError(t, schema.ValidateSession(s))
}

func TestValidateSession_NilSession(t *testing.T) {
	err := schema.ValidateSession(nil)
	require.Error(t, err)
}

func TestValidateSession_RejectsReservedKeyInDashboard(t *testing.T) {
	s := validSession()
	s.Dashboard = map[string]any{"member_id": "m-2"}

	err := schema.ValidateSession(s)
	require.Error(t, err)

	errs := schema.ValidationErrors(err)
	require.Len(t, errs, 1)

	var ve *schema.ValidationError
	require.ErrorAs(t, errs[0], &ve)
	assert.Equal(t, "dashboard.member_id", ve.Key)
	assert.Equal(t, "m-2", ve.Value)
}

func TestValidateSession_RejectsNestedReservedKey(t *testing.T) {
	s := validSession()
	s.Dashboard = map[string]any{
		"account": map[string]any{
			"token": "secret",
		},
	}

	err := schema.ValidateSession(s)
	require.Error(t, err)

	var ve *schema.ValidationError
	require.ErrorAs(t, schema.ValidationErrors(err)[0], &ve)
	assert.Equal(t, "dashboard.account.token", ve.Key)
}

func TestValidateSession_FlowDataIsExempt(t *testing.T) {
	// flow.data is the unvalidated scratch region: reserved names inside it
	// are the component author's business, not a schema violation.
	s := validSession()
	s.Flow.Data["token"] = "scratch"
	s.Flow.Data["member_id"] = "scratch"

	assert.NoError(t, schema.ValidateSession(s))
}

func TestValidateSession_FlowRequiresPathAndComponent(t *testing.T) {
	s := validSession()
	s.Flow.Path = ""

	err := schema.ValidateSession(s)
	require.Error(t, err)

	var ve *schema.ValidationError
	require.ErrorAs(t, schema.ValidationErrors(err)[0], &ve)
	assert.Equal(t, "flow.path", ve.Key)

	s = validSession()
	s.Flow.Component = ""
	err = schema.ValidateSession(s)
	require.Error(t, err)
}

func TestValidateSession_EmptyFlowIsFine(t *testing.T) {
	// A session between flows has no position at all.
	s := domain.NewSession(domain.Channel{Type: "whatsapp", Identifier: "+100"})
	assert.NoError(t, schema.ValidateSession(s))
}

func TestValidateSession_MultipleViolationsAggregated(t *testing.T) {
	s := validSession()
	s.Dashboard = map[string]any{"token": "x", "auth": "y"}

	err := schema.ValidateSession(s)
	require.Error(t, err)
	assert.Len(t, schema.ValidationErrors(err), 2)

	// The aggregate unwraps, so callers can reach individual violations
	// without the helper.
	var ve *schema.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), "2 validation errors:")
}
