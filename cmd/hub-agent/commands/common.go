package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"sellerhub-agent/internal/config"
	"sellerhub-agent/internal/domain/ports/adapter"
	"sellerhub-agent/internal/infra/download"
	"sellerhub-agent/internal/infra/engine"
	"sellerhub-agent/internal/infra/logging"
	"sellerhub-agent/internal/infra/notify"
	red "sellerhub-agent/internal/infra/redis"
	"sellerhub-agent/internal/infra/registry"
	"sellerhub-agent/internal/infra/security"
	"sellerhub-agent/internal/infra/workbook"
	"sellerhub-agent/internal/usecase"
)

// AppContext wires the full dependency graph once per command invocation.
type AppContext struct {
	Cfg       *config.Config
	Log       *zerolog.Logger
	Registry  *registry.Memory
	Center    *notify.Center
	Engine    adapter.JobEngine
	Validator *workbook.Validator
	Sessions  usecase.SessionUseCase
	Submit    usecase.SubmitUseCase
	Monitor   usecase.MonitorUseCase
	Jobs      usecase.JobsUseCase

	redisClient red.RedisClient
}

func NewAppContext(ctx context.Context, cfgPath string, dev bool) (*AppContext, error) {
	cfg, err := config.LoadConfig(cfgPath, dev)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	encKey := cfg.Security.EncryptionKey
	if len(encKey) != 32 {
		logger.Warn().Msg("security.encryption_key not set or not 32 bytes; falling back to dev key (INSECURE)")
		encKey = "0123456789abcdef0123456789abcdef"
	}
	cipher, err := security.NewTokenCipher(encKey)
	if err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("token cipher: %w", err)
	}

	sessionRepo := red.NewSessionRepo(redisClient, cipher, cfg.Redis.TTL)
	sessions := usecase.NewSessionUseCase(sessionRepo, logger)

	saver, err := download.NewSaver(cfg.Uploads.DownloadDir)
	if err != nil {
		redisClient.Close()
		return nil, err
	}

	reg := registry.NewMemory()
	center := notify.NewCenter(logger)
	eng := engine.NewClient(cfg.Engine.BaseURL, cfg.Engine.RequestTimeout, logger)
	validator := workbook.NewValidator(cfg.Uploads.MaxBytes, cfg.Uploads.MaxRows)

	monitor := usecase.NewMonitorUseCase(eng, reg, sessions, saver, center, center, cfg.Engine.StreamGrace, logger)
	submit := usecase.NewSubmitUseCase(validator, sessions, eng, reg, monitor, center, logger)
	jobs := usecase.NewJobsUseCase(reg, logger)

	return &AppContext{
		Cfg:         cfg,
		Log:         logger,
		Registry:    reg,
		Center:      center,
		Engine:      eng,
		Validator:   validator,
		Sessions:    sessions,
		Submit:      submit,
		Monitor:     monitor,
		Jobs:        jobs,
		redisClient: redisClient,
	}, nil
}

func (a *AppContext) Close() {
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
}
