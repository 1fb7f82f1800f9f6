package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"sellerhub-agent/internal/domain"
	"sellerhub-agent/internal/domain/model"
	"sellerhub-agent/internal/domain/ports/adapter"
	"sellerhub-agent/internal/domain/ports/repository"
	"sellerhub-agent/internal/infra/download"
	"sellerhub-agent/internal/infra/logging"
	"sellerhub-agent/internal/infra/metrics"
)

// Compile-time check
var _ MonitorUseCase = (*monitorUC)(nil)

// ArtifactStore writes a finished artifact and returns its path.
type ArtifactStore interface {
	Save(a *model.Artifact) (string, error)
}

type MonitorUseCase interface {
	// Monitor opens the progress stream for a registered job and follows
	// it to a terminal state. Idempotent per server job id: a second call
	// while the first monitor is live is a no-op, never a second stream.
	Monitor(ctx context.Context, correlationID, serverJobID string) error
}

type monitorUC struct {
	engine   adapter.JobEngine
	registry repository.JobRegistry
	sessions SessionUseCase
	store    ArtifactStore
	notify   adapter.Notifier
	progress adapter.ProgressSink
	grace    time.Duration
	log      *zerolog.Logger

	mu     sync.Mutex
	active map[string]struct{} // by server job id
}

func NewMonitorUseCase(
	engine adapter.JobEngine,
	reg repository.JobRegistry,
	sessions SessionUseCase,
	store ArtifactStore,
	notify adapter.Notifier,
	progress adapter.ProgressSink,
	grace time.Duration,
	logger *zerolog.Logger,
) *monitorUC {
	if grace <= 0 {
		grace = 5 * time.Second
	}
	l := logger.With().Str("component", "MonitorUC").Logger()
	return &monitorUC{
		engine:   engine,
		registry: reg,
		sessions: sessions,
		store:    store,
		notify:   notify,
		progress: progress,
		grace:    grace,
		log:      &l,
		active:   make(map[string]struct{}),
	}
}

func (m *monitorUC) Monitor(ctx context.Context, correlationID, serverJobID string) error {
	m.mu.Lock()
	if _, dup := m.active[serverJobID]; dup {
		m.mu.Unlock()
		return nil
	}
	m.active[serverJobID] = struct{}{}
	m.mu.Unlock()

	// Monitoring outlives the caller: a submission arriving over HTTP must
	// keep streaming after that request's context is done.
	ctx = context.WithoutCancel(ctx)

	job, err := m.registry.Get(ctx, correlationID)
	if err != nil {
		m.release(serverJobID)
		return err
	}
	desc, ok := job.Type.Descriptor()
	if !ok {
		m.release(serverJobID)
		return fmt.Errorf("%q: %w", job.Type, domain.ErrInvalidJobType)
	}

	sess, err := m.sessions.Resolve(ctx)
	if err != nil {
		m.release(serverJobID)
		return err
	}

	stream, err := m.engine.OpenStream(ctx, desc, serverJobID, sess.Token)
	if err != nil {
		m.release(serverJobID)
		m.failJob(ctx, job, fmt.Sprintf("could not follow job progress: %v", err))
		return err
	}
	if err := m.registry.BindStream(ctx, correlationID, stream.Close); err != nil {
		m.release(serverJobID)
		stream.Close()
		return err
	}

	go m.run(ctx, job, desc, stream)
	return nil
}

func (m *monitorUC) release(serverJobID string) {
	m.mu.Lock()
	delete(m.active, serverJobID)
	m.mu.Unlock()
}

func (m *monitorUC) run(ctx context.Context, job *model.Job, desc model.Descriptor, stream adapter.Stream) {
	defer m.release(job.ServerJobID)

	log := m.log.With().
		Str("correlation_id", job.CorrelationID).
		Str("job_id", job.ServerJobID).
		Str("type", string(job.Type)).
		Logger()
	defer logging.TraceDuration(&log, "MonitorUC.run")()

	for frame := range stream.Frames() {
		metrics.IncStreamFrame(string(job.Type))
		fd, ok := decodeFrame(desc.Shape, frame.Data)
		if !ok {
			// Keep-alive or malformed body: logged, never surfaced.
			metrics.IncFrameSkipped(string(job.Type))
			log.Debug().Int("bytes", len(frame.Data)).Msg("skipping unparsable frame")
			continue
		}

		switch fd.Status {
		case model.JobStatusCompleted:
			stream.Close()
			m.complete(ctx, job, desc, fd, &log)
			return
		case model.JobStatusFailed:
			stream.Close()
			msg := fd.Error
			if msg == "" {
				msg = "job failed"
			}
			m.failJob(ctx, job, msg)
			return
		default:
			m.applyProgress(ctx, job, fd)
		}
	}

	// Stream ended without a terminal frame. Wait out the grace period so
	// a transient blip is not flagged as a hard failure, then re-check.
	streamErr := stream.Err()
	select {
	case <-ctx.Done():
		return
	case <-time.After(m.grace):
	}
	current, err := m.registry.Get(ctx, job.CorrelationID)
	if err != nil || current.Status.Terminal() {
		return
	}
	log.Warn().AnErr("stream_err", streamErr).Msg("stream lost before terminal frame")
	m.failJob(ctx, job, "connection to the progress stream was lost")
}

func (m *monitorUC) applyProgress(ctx context.Context, job *model.Job, fd frameData) {
	status := model.JobStatusProcessing
	patch := repository.JobPatch{Status: &status}
	if fd.HasProgress {
		p := fd.Progress
		patch.Progress = &p
	}
	if len(fd.Items) > 0 {
		patch.RecentItems = fd.Items
	}
	updated, err := m.registry.Update(ctx, job.CorrelationID, patch)
	if err != nil {
		return
	}
	m.progress.Show(job.CorrelationID, progressLine(job.FileName, updated.Progress, updated.RecentItems))
}

// complete finishes a job on its terminal completed frame. Exactly one of
// the two completion paths applies per job type: decode the inline base64
// artifact from the frame, or fetch it from the type's download endpoint.
func (m *monitorUC) complete(ctx context.Context, job *model.Job, desc model.Descriptor, fd frameData, log *zerolog.Logger) {
	var artifact *model.Artifact

	switch desc.Completion {
	case model.CompletionInline:
		if fd.Artifact == nil {
			m.failJob(ctx, job, fmt.Sprintf("download failed: %v", domain.ErrMissingArtifact))
			return
		}
		artifact = fd.Artifact
		if artifact.Filename == "" {
			artifact.Filename = download.FileName(desc.FileLabel, job.ServerJobID)
		}
	case model.CompletionFetch:
		sess, err := m.sessions.Resolve(ctx)
		if err != nil {
			m.failJob(ctx, job, fmt.Sprintf("download failed: %v", err))
			return
		}
		content, err := m.engine.FetchArtifact(ctx, desc, job.ServerJobID, sess.Token)
		if err != nil {
			// The job did finish server-side, but a result nobody can
			// open is a failure from the user's point of view.
			m.failJob(ctx, job, fmt.Sprintf("download failed: %v", err))
			return
		}
		artifact = &model.Artifact{
			Content:  content,
			Filename: download.FileName(desc.FileLabel, job.ServerJobID),
		}
	}

	path, err := m.store.Save(artifact)
	if err != nil {
		m.failJob(ctx, job, fmt.Sprintf("could not save %s: %v", artifact.Filename, err))
		return
	}

	status := model.JobStatusCompleted
	progress := 100
	if _, err := m.registry.Update(ctx, job.CorrelationID, repository.JobPatch{
		Status:       &status,
		Progress:     &progress,
		Artifact:     artifact,
		ArtifactPath: &path,
	}); err != nil {
		log.Error().Err(err).Msg("could not mark job completed")
		return
	}

	m.progress.Hide(job.CorrelationID)
	m.notify.Success(fmt.Sprintf("%s finished: saved %s", job.FileName, artifact.Filename))
	metrics.IncJobProcessed(string(job.Type), string(model.JobStatusCompleted))
	metrics.ObserveJobDuration(string(job.Type), time.Since(job.StartTime).Seconds())
	log.Info().Str("artifact", path).Msg("job completed")
}

func (m *monitorUC) failJob(ctx context.Context, job *model.Job, msg string) {
	status := model.JobStatusFailed
	if _, err := m.registry.Update(ctx, job.CorrelationID, repository.JobPatch{
		Status: &status,
		Error:  &msg,
	}); err != nil {
		return
	}
	m.progress.Hide(job.CorrelationID)
	m.notify.Failure(fmt.Sprintf("%s failed: %s", job.FileName, msg))
	metrics.IncJobProcessed(string(job.Type), string(model.JobStatusFailed))
	metrics.ObserveJobDuration(string(job.Type), time.Since(job.StartTime).Seconds())
}
