package ports

import (
	"context"

	"github.com/konvo/konvo/pkg/domain"
)

// AccountsAPI is the external financial-services collaborator. A successful
// call returns a full-replacement snapshot plus the action record describing
// the operation just performed; the ApiCall component is the only place that
// result is merged into a session.
type AccountsAPI interface {
	// Call performs a named operation with the given payload.
	Call(ctx context.Context, op string, token string, payload map[string]any) (*domain.APIResult, error)
}

// Messenger delivers outbound messages. It resolves the recipient from the
// channel and owns all channel-specific formatting; the core hands it
// content and nothing else.
type Messenger interface {
	Send(ctx context.Context, ch domain.Channel, msg domain.OutboundMessage) error
}
