package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"sellerhub-agent/internal/domain/model"
	"sellerhub-agent/internal/domain/ports/repository"
)

// Compile-time check
var _ JobsUseCase = (*jobsUC)(nil)

type JobsUseCase interface {
	Get(ctx context.Context, correlationID string) (*model.Job, error)
	ListActive(ctx context.Context) []*model.Job
	ListCompleted(ctx context.Context) []*model.Job
	// Remove dismisses a job. The registry closes its open stream first,
	// which also ends local tracking; server-side execution is not
	// cancellable and keeps running.
	Remove(ctx context.Context, correlationID string) error
}

type jobsUC struct {
	registry repository.JobRegistry
	log      *zerolog.Logger
}

func NewJobsUseCase(reg repository.JobRegistry, logger *zerolog.Logger) *jobsUC {
	l := logger.With().Str("component", "JobsUC").Logger()
	return &jobsUC{registry: reg, log: &l}
}

func (j *jobsUC) Get(ctx context.Context, correlationID string) (*model.Job, error) {
	return j.registry.Get(ctx, correlationID)
}

func (j *jobsUC) ListActive(ctx context.Context) []*model.Job {
	return j.registry.ListActive(ctx)
}

func (j *jobsUC) ListCompleted(ctx context.Context) []*model.Job {
	return j.registry.ListCompleted(ctx)
}

func (j *jobsUC) Remove(ctx context.Context, correlationID string) error {
	if err := j.registry.Remove(ctx, correlationID); err != nil {
		return err
	}
	j.log.Info().Str("correlation_id", correlationID).Msg("job dismissed")
	return nil
}
