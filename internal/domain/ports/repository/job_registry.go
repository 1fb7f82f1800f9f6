package repository

import (
	"context"

	"sellerhub-agent/internal/domain/model"
)

// JobPatch is a partial update applied to a registered job. Nil fields are
// left untouched. All mutation of job state goes through Update; callers
// never mutate job values directly.
type JobPatch struct {
	ServerJobID  *string
	Status       *model.JobStatus
	Progress     *int
	Error        *string
	Artifact     *model.Artifact
	ArtifactPath *string
	RecentItems  []string
}

// JobRegistry is the process-wide store of known jobs, active and
// historical. It is scoped to the agent process and cleared on restart.
type JobRegistry interface {
	Add(ctx context.Context, job *model.Job) error
	Update(ctx context.Context, correlationID string, patch JobPatch) (*model.Job, error)
	Get(ctx context.Context, correlationID string) (*model.Job, error)
	GetByServerID(ctx context.Context, serverJobID string) (*model.Job, error)
	ListActive(ctx context.Context) []*model.Job
	ListCompleted(ctx context.Context) []*model.Job

	// BindStream attaches the close function of the job's open progress
	// stream. Remove calls it before deleting the entry so no connection
	// is orphaned.
	BindStream(ctx context.Context, correlationID string, close func()) error
	Remove(ctx context.Context, correlationID string) error
}
