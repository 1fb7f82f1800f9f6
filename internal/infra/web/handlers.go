package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sellerhub-agent/internal/domain"
	"sellerhub-agent/internal/domain/model"
	"sellerhub-agent/internal/usecase"
)

type jobView struct {
	ID          string    `json:"id"`
	ServerJobID string    `json:"jobId,omitempty"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Progress    int       `json:"progress"`
	FileName    string    `json:"fileName"`
	Error       string    `json:"error,omitempty"`
	RecentItems []string  `json:"recentItems,omitempty"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime,omitzero"`
}

func toView(j *model.Job) jobView {
	return jobView{
		ID:          j.CorrelationID,
		ServerJobID: j.ServerJobID,
		Type:        string(j.Type),
		Status:      string(j.Status),
		Progress:    j.Progress,
		FileName:    j.FileName,
		Error:       j.Error,
		RecentItems: j.RecentItems,
		StartTime:   j.StartTime,
		EndTime:     j.EndTime,
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	jobType, ok := model.ParseJobType(chi.URLParam(r, "type"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown job type")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes+1<<20)
	if err := r.ParseMultipartForm(s.maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	res, err := s.submitUC.Submit(r.Context(), usecase.SubmitInput{
		JobType:  jobType,
		FileName: header.Filename,
		Size:     header.Size,
		MIMEType: header.Header.Get("Content-Type"),
		Content:  file,
		User: model.UserContext{
			UserName: r.FormValue("userName"),
			SellerID: r.FormValue("sellerId"),
		},
	})
	if err != nil {
		writeError(w, submitStatus(err), err.Error())
		return
	}

	if res.Sync {
		writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": res.Message})
		return
	}
	writeJSON(w, http.StatusAccepted, toView(res.Job))
}

func submitStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidFileType),
		errors.Is(err, domain.ErrFileTooLarge),
		errors.Is(err, domain.ErrTooManyRows),
		errors.Is(err, domain.ErrInvalidJobType):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoSession), errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	active := s.jobsUC.ListActive(r.Context())
	completed := s.jobsUC.ListCompleted(r.Context())

	out := struct {
		Active    []jobView         `json:"active"`
		Completed []jobView         `json:"completed"`
		Progress  map[string]string `json:"progress"`
	}{
		Active:    make([]jobView, 0, len(active)),
		Completed: make([]jobView, 0, len(completed)),
		Progress:  s.center.Progress(),
	}
	for _, j := range active {
		out.Active = append(out.Active, toView(j))
	}
	for _, j := range completed {
		out.Completed = append(out.Completed, toView(j))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobsUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, toView(job))
}

func (s *Server) handleRemoveJob(w http.ResponseWriter, r *http.Request) {
	if err := s.jobsUC.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobsUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if job.Status != model.JobStatusCompleted || job.ArtifactPath == "" {
		writeError(w, http.StatusConflict, "job has no artifact")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	http.ServeFile(w, r, job.ArtifactPath)
}

func (s *Server) handleNotifications(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.center.Recent())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
