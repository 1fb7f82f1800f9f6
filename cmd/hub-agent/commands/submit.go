package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"sellerhub-agent/internal/domain"
	"sellerhub-agent/internal/domain/model"
	"sellerhub-agent/internal/infra/logging"
	"sellerhub-agent/internal/infra/metrics"
	"sellerhub-agent/internal/usecase"
)

// SubmitAction runs one upload through the full lifecycle: validate,
// submit, monitor the stream, save the artifact, exit non-zero on failure.
func SubmitAction(ctx context.Context, cmd *cli.Command) error {
	jobType, ok := model.ParseJobType(cmd.String("type"))
	if !ok {
		return fmt.Errorf("--type %q: %w", cmd.String("type"), domain.ErrInvalidJobType)
	}

	app, err := NewAppContext(ctx, cmd.String("config"), cmd.Bool("dev"))
	if err != nil {
		return err
	}
	defer app.Close()

	metrics.MustRegister()

	path := cmd.String("file")
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	// The row ceiling is a presentation-layer check: enforced here at the
	// entry point, not inside the submit flow, and only when configured.
	if app.Cfg.Uploads.MaxRows > 0 {
		if _, err := app.Validator.CountRows(f); err != nil {
			return err
		}
		if _, err := f.Seek(0, 0); err != nil {
			return err
		}
	}

	res, err := app.Submit.Submit(ctx, usecase.SubmitInput{
		JobType:  jobType,
		FileName: filepath.Base(path),
		Size:     info.Size(),
		MIMEType: mimeForExt(path),
		Content:  f,
		User: model.UserContext{
			UserName: cmd.String("user"),
			SellerID: cmd.String("seller"),
		},
	})
	if err != nil {
		return err
	}
	if res.Sync {
		app.Log.Info().Str("message", res.Message).Msg("done")
		return nil
	}

	ctx = logging.WithCorrelationID(ctx, res.Job.CorrelationID)
	ctx = logging.WithJobID(ctx, res.Job.ServerJobID)
	return waitForJob(ctx, app, res.Job.CorrelationID)
}

func waitForJob(ctx context.Context, app *AppContext, correlationID string) error {
	log := logging.With(ctx, app.Log)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		job, err := app.Jobs.Get(ctx, correlationID)
		if err != nil {
			return err
		}
		switch job.Status {
		case model.JobStatusCompleted:
			log.Info().Str("artifact", job.ArtifactPath).Msg("job completed")
			return nil
		case model.JobStatusFailed:
			return errors.New(job.Error)
		}
	}
}

func mimeForExt(path string) string {
	switch filepath.Ext(path) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	default:
		return "application/octet-stream"
	}
}
