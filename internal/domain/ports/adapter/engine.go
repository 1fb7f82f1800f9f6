package adapter

import (
	"context"
	"io"

	"sellerhub-agent/internal/domain/model"
)

// SubmitAck is the immediate acknowledgment returned by a submission
// endpoint. JobID is empty for endpoints that respond synchronously; its
// presence is the discriminator for whether monitoring begins.
type SubmitAck struct {
	Status  string
	Message string
	JobID   string
}

// Upload is one spreadsheet plus the identifying fields sent with it.
type Upload struct {
	FileName string
	Content  io.Reader
	User     model.UserContext
}

// Frame is one message delivered over a job's progress stream. Data is the
// raw UTF-8 payload; it may be empty or non-JSON (keep-alives), which the
// consumer skips.
type Frame struct {
	Data []byte
}

// Stream is an open server-push connection scoped to one job. Consumers
// range over Frames; once the channel closes, Err reports why. A closed
// stream cannot be reused; reconnecting means dialing a new one.
type Stream interface {
	Frames() <-chan Frame
	Err() error
	Close()
}

// JobEngine is the remote job execution backend, seen strictly at its
// client boundary: submit a file, follow the progress stream, fetch the
// produced artifact.
type JobEngine interface {
	Submit(ctx context.Context, desc model.Descriptor, up Upload, token string) (*SubmitAck, error)
	OpenStream(ctx context.Context, desc model.Descriptor, serverJobID, token string) (Stream, error)
	FetchArtifact(ctx context.Context, desc model.Descriptor, serverJobID, token string) ([]byte, error)
}
