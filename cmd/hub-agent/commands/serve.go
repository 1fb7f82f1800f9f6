package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"sellerhub-agent/internal/infra/metrics"
	"sellerhub-agent/internal/infra/sched"
	"sellerhub-agent/internal/infra/web"
)

// ServeAction runs the long-lived agent: HTTP API for uploads and job
// state, SSE monitors for every in-flight job, janitor for old entries.
func ServeAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("config"), cmd.Bool("dev"))
	if err != nil {
		return err
	}
	defer app.Close()

	metrics.MustRegister()

	janitor := sched.NewJanitor(app.Cfg.Janitor.Interval, app.Cfg.Janitor.Retention, app.Registry, app.Log)
	go func() { _ = janitor.Run(ctx) }()

	server := web.NewServer(app.Submit, app.Jobs, app.Center, app.Cfg.Agent.APIKey, app.Cfg.Uploads.MaxBytes, app.Log)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start(app.Cfg.Agent.Listen) }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	app.Log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
