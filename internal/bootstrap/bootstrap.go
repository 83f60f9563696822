package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/kirillkom/paperless-concierge/internal/config"
	"github.com/kirillkom/paperless-concierge/internal/core/domain"
	"github.com/kirillkom/paperless-concierge/internal/core/ports"
	"github.com/kirillkom/paperless-concierge/internal/core/usecase"
	"github.com/kirillkom/paperless-concierge/internal/infrastructure/resilience"
	"github.com/kirillkom/paperless-concierge/internal/infrastructure/users"
	"github.com/kirillkom/paperless-concierge/internal/observability/metrics"
)

const ServiceName = "paperless-concierge"

type App struct {
	Config  config.Config
	Log     *slog.Logger
	Metrics *metrics.BotMetrics

	Gate     ports.Authorizer
	Clients  ports.ClientProvider
	UploadUC *usecase.UploadUseCase
	QueryUC  *usecase.QueryUseCase
}

func New(cfg config.Config, log *slog.Logger) (*App, error) {
	gate, err := buildGate(cfg)
	if err != nil {
		return nil, fmt.Errorf("build authorization gate: %w", err)
	}
	log.Info("gate_loaded", "mode", string(cfg.AuthMode), "users", gate.Size())

	botMetrics := metrics.NewBotMetrics(ServiceName)
	executor := resilience.NewExecutor(resilience.DefaultConfig())
	clients := newClientProvider(executor, cfg.HTTPTimeout)

	tracker := usecase.NewTracker(usecase.TrackerConfig{
		PollInterval: cfg.PollInterval,
		Deadline:     cfg.TrackingDeadline,
	}, ServiceName, log, botMetrics)

	uploadUC := usecase.NewUploadUseCase(gate, clients, tracker, log)
	queryUC := usecase.NewQueryUseCase(gate, clients, ServiceName, log, botMetrics)

	return &App{
		Config:   cfg,
		Log:      log,
		Metrics:  botMetrics,
		Gate:     gate,
		Clients:  clients,
		UploadUC: uploadUC,
		QueryUC:  queryUC,
	}, nil
}

func buildGate(cfg config.Config) (*users.Gate, error) {
	switch cfg.AuthMode {
	case config.AuthModeUserScoped:
		return users.LoadFile(cfg.UserConfigFile)
	case config.AuthModeGlobal:
		return users.NewGlobal(cfg.AuthorizedUsers, domain.BackendConfig{
			BaseURL:    cfg.PaperlessURL,
			APIToken:   cfg.PaperlessToken,
			AIBaseURL:  cfg.PaperlessAIURL,
			AIAPIToken: cfg.PaperlessAIToken,
		}), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.AuthMode)
	}
}
