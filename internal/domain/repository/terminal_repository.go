package repository

import (
	"context"

	"github.com/sangkips/trademate-console/internal/domain/entity"
)

// TerminalRepository stores per-session point-of-sale state
type TerminalRepository interface {
	// Get returns the session's terminal, or a fresh idle one when none is stored
	Get(ctx context.Context, sessionID string) (*entity.Terminal, error)
	// Update applies fn to the stored terminal and saves the result. fn's error aborts the save
	// and is returned alongside the unchanged terminal.
	Update(ctx context.Context, sessionID string, fn func(*entity.Terminal) error) (*entity.Terminal, error)
	Delete(ctx context.Context, sessionID string) error
}
