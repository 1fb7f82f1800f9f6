package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"sellerhub-agent/internal/domain"
	"sellerhub-agent/internal/domain/model"
	"sellerhub-agent/internal/domain/ports/repository"
)

// Compile-time check
var _ SessionUseCase = (*sessionUC)(nil)

type SessionUseCase interface {
	// Activate persists a session of the given kind.
	Activate(ctx context.Context, session *model.AuthSession) error
	// Deactivate removes a persisted session.
	Deactivate(ctx context.Context, kind model.SessionKind) error
	// Resolve returns the credential to attach to engine calls: the
	// secondary (impersonated) session when one is active, else the
	// primary. ErrSessionExpired when the only stored sessions have
	// expired, ErrNoSession when none are stored.
	Resolve(ctx context.Context) (*model.AuthSession, error)
	// Current reports the stored session of one kind, if any.
	Current(ctx context.Context, kind model.SessionKind) (*model.AuthSession, error)
}

type sessionUC struct {
	repo repository.SessionRepository
	log  *zerolog.Logger
}

func NewSessionUseCase(repo repository.SessionRepository, logger *zerolog.Logger) *sessionUC {
	l := logger.With().Str("component", "SessionUC").Logger()
	return &sessionUC{repo: repo, log: &l}
}

func (s *sessionUC) Activate(ctx context.Context, session *model.AuthSession) error {
	if session == nil || session.Token == "" {
		return domain.ErrNoSession
	}
	return s.repo.Save(ctx, session)
}

func (s *sessionUC) Deactivate(ctx context.Context, kind model.SessionKind) error {
	return s.repo.Clear(ctx, kind)
}

func (s *sessionUC) Current(ctx context.Context, kind model.SessionKind) (*model.AuthSession, error) {
	return s.repo.Get(ctx, kind)
}

func (s *sessionUC) Resolve(ctx context.Context) (*model.AuthSession, error) {
	now := time.Now()
	sawExpired := false
	for _, kind := range []model.SessionKind{model.SessionSecondary, model.SessionPrimary} {
		sess, err := s.repo.Get(ctx, kind)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if sess.Expired(now) {
			s.log.Debug().Str("kind", string(kind)).Msg("stored session expired, skipping")
			sawExpired = true
			continue
		}
		return sess, nil
	}
	if sawExpired {
		return nil, domain.ErrSessionExpired
	}
	return nil, domain.ErrNoSession
}
