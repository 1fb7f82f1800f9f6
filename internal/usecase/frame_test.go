package usecase

import (
	"encoding/base64"
	"strings"
	"testing"

	"sellerhub-agent/internal/domain/model"
)

func TestDecodeFrame(t *testing.T) {
	t.Run("should decode a flat processing frame", func(t *testing.T) {
		fd, ok := decodeFrame(model.ShapeFlat, []byte(`{"status":"processing","progress":42,"items":[{"sku":"SKU-1"}]}`))
		if !ok {
			t.Fatal("expected frame to decode")
		}
		if fd.Status != model.JobStatusProcessing {
			t.Errorf("status = %s", fd.Status)
		}
		if !fd.HasProgress || fd.Progress != 42 {
			t.Errorf("progress = %d (has=%v)", fd.Progress, fd.HasProgress)
		}
		if len(fd.Items) != 1 || fd.Items[0] != "SKU-1" {
			t.Errorf("items = %v", fd.Items)
		}
	})

	t.Run("should decode a nested frame with an inline file", func(t *testing.T) {
		payload := base64.StdEncoding.EncodeToString([]byte("bytes"))
		raw := `{"job":{"status":"completed","progress":100,"file":{"content":"` + payload + `","filename":"out.xlsx"}}}`

		fd, ok := decodeFrame(model.ShapeNestedJob, []byte(raw))
		if !ok {
			t.Fatal("expected frame to decode")
		}
		if fd.Status != model.JobStatusCompleted {
			t.Errorf("status = %s", fd.Status)
		}
		if fd.Artifact == nil {
			t.Fatal("expected a decoded artifact")
		}
		if string(fd.Artifact.Content) != "bytes" {
			t.Errorf("artifact content = %q", fd.Artifact.Content)
		}
		if fd.Artifact.Filename != "out.xlsx" {
			t.Errorf("artifact filename = %q", fd.Artifact.Filename)
		}
	})

	t.Run("should treat a missing progress field as absent, not zero", func(t *testing.T) {
		fd, ok := decodeFrame(model.ShapeFlat, []byte(`{"status":"processing"}`))
		if !ok {
			t.Fatal("expected frame to decode")
		}
		if fd.HasProgress {
			t.Error("progress must be reported absent when the field is missing")
		}
	})

	t.Run("should reject noise frames", func(t *testing.T) {
		cases := map[string]string{
			"empty":            "",
			"whitespace":       "  \n",
			"non-json":         "ping",
			"unknown status":   `{"status":"paused"}`,
			"nested no job":    `{"items":[]}`,
			"nested bad json":  `{"job":`,
			"flat empty body":  `{}`,
			"nested empty job": `{"job":null}`,
		}
		for name, raw := range cases {
			shape := model.ShapeFlat
			if strings.HasPrefix(name, "nested") {
				shape = model.ShapeNestedJob
			}
			if _, ok := decodeFrame(shape, []byte(raw)); ok {
				t.Errorf("%s: expected decode to fail", name)
			}
		}
	})

	t.Run("should keep only the most recent items", func(t *testing.T) {
		raw := `{"status":"processing","items":[{"sku":"A"},{"sku":"B"},{"sku":"C"},{"sku":"D"},{"gtin":"789"}]}`
		fd, ok := decodeFrame(model.ShapeFlat, []byte(raw))
		if !ok {
			t.Fatal("expected frame to decode")
		}
		want := []string{"C", "D", "789"}
		if len(fd.Items) != len(want) {
			t.Fatalf("items = %v", fd.Items)
		}
		for i := range want {
			if fd.Items[i] != want[i] {
				t.Errorf("items[%d] = %s, want %s", i, fd.Items[i], want[i])
			}
		}
	})

	t.Run("should normalize status casing", func(t *testing.T) {
		fd, ok := decodeFrame(model.ShapeFlat, []byte(`{"status":" Completed "}`))
		if !ok {
			t.Fatal("expected frame to decode")
		}
		if fd.Status != model.JobStatusCompleted {
			t.Errorf("status = %s", fd.Status)
		}
	})
}

func TestProgressLine(t *testing.T) {
	got := progressLine("prices.xlsx", 75, nil)
	if !strings.Contains(got, "prices.xlsx") || !strings.Contains(got, "75%") {
		t.Errorf("line = %q", got)
	}
	got = progressLine("prices.xlsx", 75, []string{"SKU-1", "SKU-2"})
	if !strings.Contains(got, "SKU-1, SKU-2") {
		t.Errorf("line = %q", got)
	}
}
