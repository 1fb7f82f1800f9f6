package model

import "time"

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further status transitions may occur.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// UserContext identifies who submitted a job. Captured at submission
// time and immutable afterwards.
type UserContext struct {
	UserName string
	SellerID string
}

// Artifact is the binary spreadsheet output of a completed job.
// Populated at most once, never mutated after the first write.
type Artifact struct {
	Content  []byte
	Filename string
}

// Job is one server-side asynchronous processing task triggered by a
// spreadsheet upload. CorrelationID is the client-side stable identifier;
// ServerJobID is the wire identifier returned by the submission endpoint
// and used to address the stream and download endpoints. Both are kept.
type Job struct {
	CorrelationID string
	ServerJobID   string
	Type          JobType
	Status        JobStatus
	Progress      int
	FileName      string
	User          UserContext
	Error         string
	Artifact      *Artifact
	ArtifactPath  string
	RecentItems   []string
	StartTime     time.Time
	EndTime       time.Time
}

// Active reports whether the job is still being tracked by a monitor.
func (j *Job) Active() bool { return !j.Status.Terminal() }
