package repository

import (
	"context"

	"sellerhub-agent/internal/domain/model"
)

// SessionRepository persists auth sessions (primary and secondary) across
// agent restarts. Implementations must store tokens encrypted at rest.
type SessionRepository interface {
	Save(ctx context.Context, session *model.AuthSession) error
	Get(ctx context.Context, kind model.SessionKind) (*model.AuthSession, error)
	Clear(ctx context.Context, kind model.SessionKind) error
}
