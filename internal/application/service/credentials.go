package service

import (
	"context"

	"github.com/sangkips/trademate-console/internal/infrastructure/backend"
	"github.com/sangkips/trademate-console/internal/logging"
)

// Credentials identify a signed-in browser session to background work that outlives
// the request, such as pollers.
type Credentials struct {
	SessionID string
	BaseURL   string
	Token     string
}

// Bind attaches the session's backend credentials to ctx.
func (c Credentials) Bind(ctx context.Context) context.Context {
	ctx = backend.WithCredentials(ctx, c.BaseURL, c.Token)
	return logging.IntoContext(ctx, logging.FromContext(ctx).With("session_id", c.SessionID))
}

// SessionForgetter drops per-session state when a session ends.
type SessionForgetter interface {
	Forget(sessionID string)
}
