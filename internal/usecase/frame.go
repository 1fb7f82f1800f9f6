package usecase

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"sellerhub-agent/internal/domain/model"
)

// frameData is the normalized view of one progress frame, independent of
// the job type's wire layout.
type frameData struct {
	Status      model.JobStatus
	Progress    int
	HasProgress bool
	Error       string
	Items       []string
	Artifact    *model.Artifact
}

type itemRef struct {
	SKU  string `json:"sku"`
	GTIN string `json:"gtin"`
}

type filePayload struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
}

type flatFrame struct {
	Status   string       `json:"status"`
	Progress *int         `json:"progress"`
	Error    string       `json:"error"`
	File     *filePayload `json:"file"`
	Items    []itemRef    `json:"items"`
}

type nestedFrame struct {
	Job *struct {
		Status   string       `json:"status"`
		Progress *int         `json:"progress"`
		Error    string       `json:"error"`
		File     *filePayload `json:"file"`
	} `json:"job"`
	Items []itemRef `json:"items"`
}

// decodeFrame parses one raw frame according to the type's payload shape.
// ok=false means the frame is tolerated noise (empty keep-alive, non-JSON,
// unknown status) and must not mutate job state.
func decodeFrame(shape model.PayloadShape, data []byte) (frameData, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return frameData{}, false
	}

	var (
		status   string
		progress *int
		errMsg   string
		file     *filePayload
		items    []itemRef
	)
	switch shape {
	case model.ShapeNestedJob:
		var f nestedFrame
		if err := json.Unmarshal(data, &f); err != nil || f.Job == nil {
			return frameData{}, false
		}
		status, progress, errMsg, file, items = f.Job.Status, f.Job.Progress, f.Job.Error, f.Job.File, f.Items
	default:
		var f flatFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return frameData{}, false
		}
		status, progress, errMsg, file, items = f.Status, f.Progress, f.Error, f.File, f.Items
	}

	st, ok := parseStatus(status)
	if !ok {
		return frameData{}, false
	}

	out := frameData{Status: st, Error: errMsg, Items: itemLabels(items)}
	if progress != nil {
		out.Progress = *progress
		out.HasProgress = true
	}
	if file != nil && file.Content != "" {
		content, err := base64.StdEncoding.DecodeString(file.Content)
		if err == nil {
			out.Artifact = &model.Artifact{Content: content, Filename: file.Filename}
		}
	}
	return out, true
}

func parseStatus(s string) (model.JobStatus, bool) {
	switch model.JobStatus(strings.ToLower(strings.TrimSpace(s))) {
	case model.JobStatusPending:
		return model.JobStatusPending, true
	case model.JobStatusProcessing:
		return model.JobStatusProcessing, true
	case model.JobStatusCompleted:
		return model.JobStatusCompleted, true
	case model.JobStatusFailed:
		return model.JobStatusFailed, true
	}
	return "", false
}

func itemLabels(items []itemRef) []string {
	if len(items) == 0 {
		return nil
	}
	// Keep only the tail; the progress line shows the most recent few.
	const keep = 3
	if len(items) > keep {
		items = items[len(items)-keep:]
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch {
		case it.SKU != "":
			out = append(out, it.SKU)
		case it.GTIN != "":
			out = append(out, it.GTIN)
		}
	}
	return out
}

// progressLine renders the human-readable overlay text for a frame.
func progressLine(fileName string, progress int, items []string) string {
	if len(items) == 0 {
		return fmt.Sprintf("processing %s: %d%%", fileName, progress)
	}
	return fmt.Sprintf("processing %s: %d%% (%s…)", fileName, progress, strings.Join(items, ", "))
}
