package usecase

import (
	"context"
	"sync"

	"sellerhub-agent/internal/domain"
	"sellerhub-agent/internal/domain/model"
	"sellerhub-agent/internal/domain/ports/adapter"
)

// ---- engine mock ----

type mockEngine struct {
	mu sync.Mutex

	SubmitFunc        func(ctx context.Context, desc model.Descriptor, up adapter.Upload, token string) (*adapter.SubmitAck, error)
	OpenStreamFunc    func(ctx context.Context, desc model.Descriptor, serverJobID, token string) (adapter.Stream, error)
	FetchArtifactFunc func(ctx context.Context, desc model.Descriptor, serverJobID, token string) ([]byte, error)

	submitCalls int
	streamCalls int
	fetchCalls  int
}

func (m *mockEngine) Submit(ctx context.Context, desc model.Descriptor, up adapter.Upload, token string) (*adapter.SubmitAck, error) {
	m.mu.Lock()
	m.submitCalls++
	m.mu.Unlock()
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, desc, up, token)
	}
	return &adapter.SubmitAck{Status: "success"}, nil
}

func (m *mockEngine) OpenStream(ctx context.Context, desc model.Descriptor, serverJobID, token string) (adapter.Stream, error) {
	m.mu.Lock()
	m.streamCalls++
	m.mu.Unlock()
	if m.OpenStreamFunc != nil {
		return m.OpenStreamFunc(ctx, desc, serverJobID, token)
	}
	return newFakeStream(), nil
}

func (m *mockEngine) FetchArtifact(ctx context.Context, desc model.Descriptor, serverJobID, token string) ([]byte, error) {
	m.mu.Lock()
	m.fetchCalls++
	m.mu.Unlock()
	if m.FetchArtifactFunc != nil {
		return m.FetchArtifactFunc(ctx, desc, serverJobID, token)
	}
	return []byte("artifact"), nil
}

func (m *mockEngine) counts() (submit, stream, fetch int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitCalls, m.streamCalls, m.fetchCalls
}

// ---- stream fake ----

type fakeStream struct {
	frames chan adapter.Frame

	mu     sync.Mutex
	err    error
	closed bool
}

func newFakeStream() *fakeStream {
	return &fakeStream{frames: make(chan adapter.Frame, 16)}
}

func (s *fakeStream) Frames() <-chan adapter.Frame { return s.frames }

func (s *fakeStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *fakeStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *fakeStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeStream) emit(data string) { s.frames <- adapter.Frame{Data: []byte(data)} }
func (s *fakeStream) end()             { close(s.frames) }

// ---- validator mock ----

type mockValidator struct {
	ValidateFunc func(name string, size int64, mime string) error
}

func (m *mockValidator) Validate(name string, size int64, mime string) error {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(name, size, mime)
	}
	return nil
}

// ---- sessions stub ----

type stubSessions struct {
	sess *model.AuthSession
	err  error
}

func (s *stubSessions) Activate(ctx context.Context, sess *model.AuthSession) error { return s.err }
func (s *stubSessions) Deactivate(ctx context.Context, kind model.SessionKind) error {
	return s.err
}
func (s *stubSessions) Current(ctx context.Context, kind model.SessionKind) (*model.AuthSession, error) {
	return s.sess, s.err
}
func (s *stubSessions) Resolve(ctx context.Context) (*model.AuthSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.sess == nil {
		return nil, domain.ErrNoSession
	}
	return s.sess, nil
}

// ---- notifier / progress sink spy ----

type spyPresenter struct {
	mu        sync.Mutex
	successes []string
	failures  []string
	shown     map[string]string
	hidden    []string
}

func newSpyPresenter() *spyPresenter {
	return &spyPresenter{shown: make(map[string]string)}
}

func (p *spyPresenter) Success(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.successes = append(p.successes, msg)
}

func (p *spyPresenter) Failure(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = append(p.failures, msg)
}

func (p *spyPresenter) Show(id, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shown[id] = text
}

func (p *spyPresenter) Hide(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hidden = append(p.hidden, id)
}

func (p *spyPresenter) failureCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.failures)
}

// ---- artifact store spy ----

type spyStore struct {
	mu    sync.Mutex
	saved []*model.Artifact
	err   error
}

func (s *spyStore) Save(a *model.Artifact) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	cp := *a
	s.saved = append(s.saved, &cp)
	return "/downloads/" + a.Filename, nil
}

func (s *spyStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

// ---- monitor stub for submit tests ----

type stubMonitor struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (m *stubMonitor) Monitor(ctx context.Context, correlationID, serverJobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, serverJobID)
	return nil
}
