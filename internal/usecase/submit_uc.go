package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sellerhub-agent/internal/domain"
	"sellerhub-agent/internal/domain/model"
	"sellerhub-agent/internal/domain/ports/adapter"
	"sellerhub-agent/internal/domain/ports/repository"
	"sellerhub-agent/internal/infra/metrics"
)

// Compile-time check
var _ SubmitUseCase = (*submitUC)(nil)

// FileValidator gates uploads locally. A rejection means no network call
// is made at all.
type FileValidator interface {
	Validate(name string, size int64, mime string) error
}

type SubmitInput struct {
	JobType  model.JobType
	FileName string
	Size     int64
	MIMEType string
	Content  io.Reader
	User     model.UserContext
}

// SubmitResult is the outcome of a submission. Sync=true means the
// endpoint answered synchronously (no job id); Message carries its final
// result and Job is nil. Otherwise Job is the registered pending job whose
// monitor has been started.
type SubmitResult struct {
	Job     *model.Job
	Message string
	Sync    bool
}

type SubmitUseCase interface {
	Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error)
}

type submitUC struct {
	validator FileValidator
	sessions  SessionUseCase
	engine    adapter.JobEngine
	registry  repository.JobRegistry
	monitor   MonitorUseCase
	notify    adapter.Notifier
	log       *zerolog.Logger
}

func NewSubmitUseCase(
	validator FileValidator,
	sessions SessionUseCase,
	engine adapter.JobEngine,
	reg repository.JobRegistry,
	monitor MonitorUseCase,
	notify adapter.Notifier,
	logger *zerolog.Logger,
) *submitUC {
	l := logger.With().Str("component", "SubmitUC").Logger()
	return &submitUC{
		validator: validator,
		sessions:  sessions,
		engine:    engine,
		registry:  reg,
		monitor:   monitor,
		notify:    notify,
		log:       &l,
	}
}

func (s *submitUC) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	desc, ok := in.JobType.Descriptor()
	if !ok {
		return nil, fmt.Errorf("%q: %w", in.JobType, domain.ErrInvalidJobType)
	}

	if err := s.validator.Validate(in.FileName, in.Size, in.MIMEType); err != nil {
		s.notify.Failure(fmt.Sprintf("%s was not submitted: %v", in.FileName, err))
		return nil, err
	}

	sess, err := s.sessions.Resolve(ctx)
	if err != nil {
		// Fail fast locally; a request without a credential never leaves
		// the process.
		s.notify.Failure("not signed in: upload was not submitted")
		return nil, err
	}
	user := in.User
	if user.UserName == "" {
		user.UserName = sess.UserName
	}
	if user.SellerID == "" {
		user.SellerID = sess.SellerID
	}

	ack, err := s.engine.Submit(ctx, desc, adapter.Upload{
		FileName: in.FileName,
		Content:  in.Content,
		User:     user,
	}, sess.Token)
	if err != nil {
		s.notify.Failure(fmt.Sprintf("submission of %s failed: %v", in.FileName, err))
		return nil, err
	}

	metrics.IncJobSubmitted(string(in.JobType))

	if ack.JobID == "" {
		// Synchronous endpoint: the acknowledgment body is the final
		// result and nothing is monitored.
		s.log.Info().Str("type", string(in.JobType)).Msg("synchronous completion")
		s.notify.Success(ack.Message)
		return &SubmitResult{Message: ack.Message, Sync: true}, nil
	}

	job := &model.Job{
		CorrelationID: uuid.NewString(),
		ServerJobID:   ack.JobID,
		Type:          in.JobType,
		Status:        model.JobStatusPending,
		FileName:      in.FileName,
		User:          user,
		StartTime:     time.Now(),
	}
	if err := s.registry.Add(ctx, job); err != nil {
		return nil, fmt.Errorf("register job: %w", err)
	}

	if err := s.monitor.Monitor(ctx, job.CorrelationID, ack.JobID); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("type", string(in.JobType)).
		Str("correlation_id", job.CorrelationID).
		Str("job_id", ack.JobID).
		Msg("job submitted")
	cp := *job
	return &SubmitResult{Job: &cp, Message: ack.Message}, nil
}
