package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"sellerhub-agent/internal/domain"
	"sellerhub-agent/internal/domain/model"
	"sellerhub-agent/internal/domain/ports/adapter"
	"sellerhub-agent/internal/infra/registry"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func validSession() *model.AuthSession {
	return &model.AuthSession{
		Kind:     model.SessionPrimary,
		Token:    "tok-1",
		UserName: "alice",
		SellerID: "seller-9",
	}
}

func TestSubmitUseCase(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()

	t.Run("should reject invalid files before any network call", func(t *testing.T) {
		// --- Arrange ---
		eng := &mockEngine{}
		presenter := newSpyPresenter()
		validator := &mockValidator{ValidateFunc: func(name string, size int64, mime string) error {
			return domain.ErrInvalidFileType
		}}
		reg := registry.NewMemory()
		uc := NewSubmitUseCase(validator, &stubSessions{sess: validSession()}, eng, reg, &stubMonitor{}, presenter, testLogger)

		// --- Act ---
		_, err := uc.Submit(ctx, SubmitInput{
			JobType:  model.JobTypePriceStockUpdate,
			FileName: "report.pdf",
			Size:     1024,
			MIMEType: "application/pdf",
			Content:  strings.NewReader("nope"),
		})

		// --- Assert ---
		if !errors.Is(err, domain.ErrInvalidFileType) {
			t.Fatalf("expected ErrInvalidFileType, got: %v", err)
		}
		if submits, _, _ := eng.counts(); submits != 0 {
			t.Errorf("expected zero engine calls, got %d", submits)
		}
		if presenter.failureCount() != 1 {
			t.Error("expected one failure notification")
		}
		if len(reg.ListActive(ctx)) != 0 {
			t.Error("expected no job to be registered")
		}
	})

	t.Run("should fail fast without a resolvable session", func(t *testing.T) {
		// --- Arrange ---
		eng := &mockEngine{}
		presenter := newSpyPresenter()
		uc := NewSubmitUseCase(&mockValidator{}, &stubSessions{}, eng, registry.NewMemory(), &stubMonitor{}, presenter, testLogger)

		// --- Act ---
		_, err := uc.Submit(ctx, SubmitInput{
			JobType:  model.JobTypeOfferPublication,
			FileName: "offers.xlsx",
			Size:     2048,
			Content:  strings.NewReader("data"),
		})

		// --- Assert ---
		if !errors.Is(err, domain.ErrNoSession) {
			t.Fatalf("expected ErrNoSession, got: %v", err)
		}
		if submits, _, _ := eng.counts(); submits != 0 {
			t.Errorf("expected zero engine calls, got %d", submits)
		}
	})

	t.Run("should register a pending job and start monitoring when jobId is present", func(t *testing.T) {
		// --- Arrange ---
		eng := &mockEngine{SubmitFunc: func(ctx context.Context, desc model.Descriptor, up adapter.Upload, token string) (*adapter.SubmitAck, error) {
			if token != "tok-1" {
				t.Errorf("expected resolved bearer token, got %q", token)
			}
			if desc.UserField != "usuario" {
				t.Errorf("price-stock flow must use field usuario, got %q", desc.UserField)
			}
			return &adapter.SubmitAck{Status: "success", JobID: "job-123"}, nil
		}}
		monitor := &stubMonitor{}
		reg := registry.NewMemory()
		uc := NewSubmitUseCase(&mockValidator{}, &stubSessions{sess: validSession()}, eng, reg, monitor, newSpyPresenter(), testLogger)

		// --- Act ---
		res, err := uc.Submit(ctx, SubmitInput{
			JobType:  model.JobTypePriceStockUpdate,
			FileName: "prices.xlsx",
			Size:     2 << 20,
			Content:  strings.NewReader("data"),
		})

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if res.Sync {
			t.Fatal("expected an asynchronous result")
		}
		if res.Job == nil || res.Job.ServerJobID != "job-123" {
			t.Fatalf("expected job with server id job-123, got: %+v", res.Job)
		}
		if res.Job.Status != model.JobStatusPending {
			t.Errorf("expected pending status, got %s", res.Job.Status)
		}
		if res.Job.User.UserName != "alice" || res.Job.User.SellerID != "seller-9" {
			t.Errorf("expected user context from session, got %+v", res.Job.User)
		}
		if len(monitor.calls) != 1 || monitor.calls[0] != "job-123" {
			t.Errorf("expected one monitor start for job-123, got %v", monitor.calls)
		}
		if got, err := reg.GetByServerID(ctx, "job-123"); err != nil || got.FileName != "prices.xlsx" {
			t.Errorf("expected registered job, got %+v err=%v", got, err)
		}
	})

	t.Run("should treat a response without jobId as a synchronous completion", func(t *testing.T) {
		// --- Arrange ---
		eng := &mockEngine{SubmitFunc: func(ctx context.Context, desc model.Descriptor, up adapter.Upload, token string) (*adapter.SubmitAck, error) {
			return &adapter.SubmitAck{Status: "success", Message: "42 GTINs verified"}, nil
		}}
		monitor := &stubMonitor{}
		reg := registry.NewMemory()
		uc := NewSubmitUseCase(&mockValidator{}, &stubSessions{sess: validSession()}, eng, reg, monitor, newSpyPresenter(), testLogger)

		// --- Act ---
		res, err := uc.Submit(ctx, SubmitInput{
			JobType:  model.JobTypeGTINVerification,
			FileName: "gtins.xlsx",
			Size:     1 << 20,
			Content:  strings.NewReader("data"),
		})

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if !res.Sync || res.Message != "42 GTINs verified" {
			t.Fatalf("expected synchronous result with message, got: %+v", res)
		}
		if len(monitor.calls) != 0 {
			t.Error("expected no monitoring for a synchronous response")
		}
		if len(reg.ListActive(ctx))+len(reg.ListCompleted(ctx)) != 0 {
			t.Error("expected no job in registry for a synchronous response")
		}
	})

	t.Run("should surface engine rejection and register nothing", func(t *testing.T) {
		// --- Arrange ---
		eng := &mockEngine{SubmitFunc: func(ctx context.Context, desc model.Descriptor, up adapter.Upload, token string) (*adapter.SubmitAck, error) {
			return nil, errors.New("engine rejected submission: invalid sellerId")
		}}
		presenter := newSpyPresenter()
		reg := registry.NewMemory()
		uc := NewSubmitUseCase(&mockValidator{}, &stubSessions{sess: validSession()}, eng, reg, &stubMonitor{}, presenter, testLogger)

		// --- Act ---
		_, err := uc.Submit(ctx, SubmitInput{
			JobType:  model.JobTypeOfferDeletion,
			FileName: "del.xlsx",
			Size:     5,
			Content:  strings.NewReader("x"),
		})

		// --- Assert ---
		if err == nil {
			t.Fatal("expected an error")
		}
		if presenter.failureCount() != 1 {
			t.Error("expected one failure notification")
		}
		if len(reg.ListActive(ctx)) != 0 {
			t.Error("expected no job in registry")
		}
	})
}
