package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"sellerhub-agent/internal/domain/ports/repository"
	"sellerhub-agent/internal/infra/metrics"
)

// Janitor periodically removes terminal jobs that have outlived the
// retention window, so the registry does not grow without bound while the
// agent runs for weeks.
type Janitor struct {
	interval  time.Duration
	retention time.Duration
	registry  repository.JobRegistry
	log       *zerolog.Logger
}

func NewJanitor(interval, retention time.Duration, reg repository.JobRegistry, logger *zerolog.Logger) *Janitor {
	l := logger.With().Str("component", "Janitor").Logger()
	return &Janitor{
		interval:  interval,
		retention: retention,
		registry:  reg,
		log:       &l,
	}
}

func (j *Janitor) Run(ctx context.Context) error {
	j.log.Info().Dur("interval", j.interval).Msg("starting registry janitor")
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Info().Msg("stopping registry janitor")
			return ctx.Err()
		case <-ticker.C:
			n := j.Prune(ctx, time.Now())
			if n > 0 {
				metrics.AddJobsPruned(n)
				j.log.Info().Int("count", n).Msg("pruned terminal jobs")
			}
		}
	}
}

// Prune removes terminal jobs whose EndTime is older than the retention
// window and returns how many were removed.
func (j *Janitor) Prune(ctx context.Context, now time.Time) int {
	cutoff := now.Add(-j.retention)
	n := 0
	for _, job := range j.registry.ListCompleted(ctx) {
		if !job.EndTime.IsZero() && job.EndTime.Before(cutoff) {
			if err := j.registry.Remove(ctx, job.CorrelationID); err == nil {
				n++
			}
		}
	}
	return n
}
