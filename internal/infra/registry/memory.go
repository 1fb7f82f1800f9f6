package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"sellerhub-agent/internal/domain"
	"sellerhub-agent/internal/domain/model"
	"sellerhub-agent/internal/domain/ports/repository"
)

var _ repository.JobRegistry = (*Memory)(nil)

// Memory is the process-wide in-memory job store. It is created at startup
// and injected; state does not survive a restart. All reads return copies
// so views never share mutable job values.
type Memory struct {
	mu       sync.RWMutex
	jobs     map[string]*entry // by correlation id
	byServer map[string]string // server job id -> correlation id
}

type entry struct {
	job         model.Job
	closeStream func()
}

func NewMemory() *Memory {
	return &Memory{
		jobs:     make(map[string]*entry),
		byServer: make(map[string]string),
	}
}

func (m *Memory) Add(ctx context.Context, job *model.Job) error {
	if job == nil || job.CorrelationID == "" {
		return fmt.Errorf("%w: missing correlation id", domain.ErrInvalidTransition)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.CorrelationID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *job
	if cp.Status == "" {
		cp.Status = model.JobStatusPending
	}
	if cp.StartTime.IsZero() {
		cp.StartTime = time.Now()
	}
	m.jobs[cp.CorrelationID] = &entry{job: cp}
	if cp.ServerJobID != "" {
		m.byServer[cp.ServerJobID] = cp.CorrelationID
	}
	return nil
}

// Update applies a partial mutation under the registry lock. It enforces
// the lifecycle contract: no transition out of a terminal state, progress
// never regresses (stale duplicate frames are stream noise), the artifact
// is written at most once, and EndTime is set exactly once on entering a
// terminal state.
func (m *Memory) Update(ctx context.Context, correlationID string, patch repository.JobPatch) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.jobs[correlationID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	j := &e.job

	if j.Status.Terminal() {
		return nil, domain.ErrJobTerminal
	}

	if patch.ServerJobID != nil && *patch.ServerJobID != "" && j.ServerJobID == "" {
		j.ServerJobID = *patch.ServerJobID
		m.byServer[j.ServerJobID] = correlationID
	}
	if patch.Status != nil {
		next := *patch.Status
		if !legalTransition(j.Status, next) {
			return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, j.Status, next)
		}
		j.Status = next
		if next.Terminal() {
			j.EndTime = time.Now()
		}
		if next == model.JobStatusCompleted {
			j.Progress = 100
		}
	}
	if patch.Progress != nil && *patch.Progress > j.Progress {
		p := *patch.Progress
		if p > 100 {
			p = 100
		}
		j.Progress = p
	}
	if patch.Error != nil && j.Status == model.JobStatusFailed {
		j.Error = *patch.Error
	}
	if patch.Artifact != nil && j.Artifact == nil {
		a := *patch.Artifact
		a.Content = append([]byte(nil), patch.Artifact.Content...)
		j.Artifact = &a
	}
	if patch.ArtifactPath != nil && j.ArtifactPath == "" {
		j.ArtifactPath = *patch.ArtifactPath
	}
	if patch.RecentItems != nil {
		j.RecentItems = append([]string(nil), patch.RecentItems...)
	}

	cp := *j
	return &cp, nil
}

func legalTransition(from, to model.JobStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case model.JobStatusPending:
		// A first frame may already be terminal; the pending->processing
		// step is not observable in that case.
		return to == model.JobStatusProcessing || to.Terminal()
	case model.JobStatusProcessing:
		return to.Terminal()
	default:
		return false
	}
}

func (m *Memory) Get(ctx context.Context, correlationID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.jobs[correlationID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := e.job
	return &cp, nil
}

func (m *Memory) GetByServerID(ctx context.Context, serverJobID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byServer[serverJobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := m.jobs[id].job
	return &cp, nil
}

func (m *Memory) ListActive(ctx context.Context) []*model.Job {
	return m.list(func(j *model.Job) bool { return !j.Status.Terminal() })
}

func (m *Memory) ListCompleted(ctx context.Context) []*model.Job {
	return m.list(func(j *model.Job) bool { return j.Status.Terminal() })
}

func (m *Memory) list(keep func(*model.Job) bool) []*model.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Job
	for _, e := range m.jobs {
		if keep(&e.job) {
			cp := e.job
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].StartTime.Before(out[k].StartTime) })
	return out
}

func (m *Memory) BindStream(ctx context.Context, correlationID string, close func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.jobs[correlationID]
	if !ok {
		return domain.ErrNotFound
	}
	e.closeStream = close
	return nil
}

// Remove closes any bound stream before deleting the entry, so dismissing
// a job never leaves an orphaned connection behind.
func (m *Memory) Remove(ctx context.Context, correlationID string) error {
	m.mu.Lock()
	e, ok := m.jobs[correlationID]
	if !ok {
		m.mu.Unlock()
		return domain.ErrNotFound
	}
	closeStream := e.closeStream
	delete(m.jobs, correlationID)
	if e.job.ServerJobID != "" {
		delete(m.byServer, e.job.ServerJobID)
	}
	m.mu.Unlock()

	if closeStream != nil {
		closeStream()
	}
	return nil
}
