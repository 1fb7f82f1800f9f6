package sched

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"sellerhub-agent/internal/domain"
	"sellerhub-agent/internal/domain/model"
	"sellerhub-agent/internal/domain/ports/repository"
	"sellerhub-agent/internal/infra/registry"
)

// addTerminal registers and completes a job. Update stamps EndTime=now, so
// tests shift Prune's "now" instead of mutating the stored time.
func addTerminal(t *testing.T, reg *registry.Memory, id string) {
	t.Helper()
	ctx := context.Background()
	if err := reg.Add(ctx, &model.Job{CorrelationID: id, ServerJobID: "s-" + id}); err != nil {
		t.Fatalf("add %s: %v", id, err)
	}
	st := model.JobStatusCompleted
	if _, err := reg.Update(ctx, id, repository.JobPatch{Status: &st}); err != nil {
		t.Fatalf("complete %s: %v", id, err)
	}
}

func TestJanitorPrune(t *testing.T) {
	ctx := context.Background()
	log := zerolog.Nop()

	t.Run("should remove terminal jobs past retention and keep the rest", func(t *testing.T) {
		// --- Arrange ---
		reg := registry.NewMemory()
		addTerminal(t, reg, "old")
		addTerminal(t, reg, "fresh")
		if err := reg.Add(ctx, &model.Job{CorrelationID: "active", ServerJobID: "s-active"}); err != nil {
			t.Fatalf("add active: %v", err)
		}
		j := NewJanitor(time.Minute, time.Hour, reg, &log)

		// --- Act ---
		// "old" and "fresh" both ended just now; a now two hours ahead puts
		// them past the retention window, a now in the present does not.
		if n := j.Prune(ctx, time.Now()); n != 0 {
			t.Fatalf("premature prune removed %d", n)
		}
		n := j.Prune(ctx, time.Now().Add(2*time.Hour))

		// --- Assert ---
		if n != 2 {
			t.Errorf("pruned = %d", n)
		}
		if _, err := reg.Get(ctx, "old"); !errors.Is(err, domain.ErrNotFound) {
			t.Error("old terminal job survived")
		}
		if _, err := reg.Get(ctx, "active"); err != nil {
			t.Error("active job was pruned")
		}
	})

	t.Run("should never touch active jobs regardless of age", func(t *testing.T) {
		reg := registry.NewMemory()
		if err := reg.Add(ctx, &model.Job{
			CorrelationID: "ancient",
			ServerJobID:   "s-ancient",
			StartTime:     time.Now().Add(-30 * 24 * time.Hour),
		}); err != nil {
			t.Fatalf("add: %v", err)
		}
		j := NewJanitor(time.Minute, time.Hour, reg, &log)

		if n := j.Prune(ctx, time.Now().Add(365*24*time.Hour)); n != 0 {
			t.Errorf("pruned %d active jobs", n)
		}
	})
}
