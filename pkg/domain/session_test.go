package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClone_DeepCopiesNestedMaps(t *testing.T) {
	s := NewSession(Channel{Type: "whatsapp", Identifier: "+100"})
	s.Dashboard = map[string]any{
		"balance": 100.0,
		"profile": map[string]any{"name": "Ana"},
	}
	s.Flow.Data["payload"] = map[string]any{"amount": "50"}

	c := s.Clone()
	c.Dashboard["balance"] = 0.0
	c.Dashboard["profile"].(map[string]any)["name"] = "tampered"
	c.Flow.Data["payload"].(map[string]any)["amount"] = "tampered"

	assert.Equal(t, 100.0, s.Dashboard["balance"])
	assert.Equal(t, "Ana", s.Dashboard["profile"].(map[string]any)["name"])
	assert.Equal(t, "50", s.Flow.Data["payload"].(map[string]any)["amount"])
}

func TestClone_CopiesValidationBookkeeping(t *testing.T) {
	s := NewSession(Channel{Type: "whatsapp", Identifier: "+100"})
	s.Validation.Attempts = map[string]int{"amount_input": 2}

	c := s.Clone()
	c.Validation.Attempts["amount_input"] = 9

	assert.Equal(t, 2, s.Validation.Attempts["amount_input"])
}

func TestClone_Nil(t *testing.T) {
	var s *Session
	require.Nil(t, s.Clone())
}

func TestResetFlow_KeepsIdentityAndDashboard(t *testing.T) {
	s := NewSession(Channel{Type: "whatsapp", Identifier: "+100"})
	s.Identity.MemberID = "m-1"
	s.Auth.Token = "t-1"
	s.Dashboard = map[string]any{"balance": 100.0}
	s.Flow = Flow{Path: "transfer", Component: "amount_input", AwaitingInput: true,
		Data: map[string]any{"amount": 50.0}}

	s.ResetFlow()

	assert.False(t, s.Flow.Active())
	assert.Empty(t, s.Flow.Data)
	assert.Equal(t, "m-1", s.Identity.MemberID)
	assert.Equal(t, "t-1", s.Auth.Token)
	assert.Equal(t, 100.0, s.Dashboard["balance"])
}
