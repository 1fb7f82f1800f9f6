package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound          = errors.New("job not found")
	ErrAlreadyExists     = errors.New("job already registered")
	ErrInvalidJobType    = errors.New("unknown job type")
	ErrInvalidFileType   = errors.New("file is not an Excel spreadsheet")
	ErrFileTooLarge      = errors.New("file exceeds the upload size limit")
	ErrTooManyRows       = errors.New("workbook exceeds the row limit")
	ErrNoSession         = errors.New("no auth session available")
	ErrSessionExpired    = errors.New("auth session has expired")
	ErrJobTerminal       = errors.New("job already reached a terminal state")
	ErrInvalidTransition = errors.New("illegal job status transition")
	ErrMissingArtifact   = errors.New("completed job carried no artifact")
)
