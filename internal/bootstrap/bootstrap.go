package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/insurance-onboarding/internal/config"
	"github.com/kirillkom/insurance-onboarding/internal/core/ports"
	"github.com/kirillkom/insurance-onboarding/internal/core/recommend"
	"github.com/kirillkom/insurance-onboarding/internal/core/usecase"
	"github.com/kirillkom/insurance-onboarding/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/insurance-onboarding/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/insurance-onboarding/internal/infrastructure/ocr/cache"
	"github.com/kirillkom/insurance-onboarding/internal/infrastructure/ocr/ocrspace"
	"github.com/kirillkom/insurance-onboarding/internal/infrastructure/pdfinspect"
	"github.com/kirillkom/insurance-onboarding/internal/infrastructure/queue/nats"
	"github.com/kirillkom/insurance-onboarding/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/insurance-onboarding/internal/infrastructure/resilience"
	"github.com/kirillkom/insurance-onboarding/internal/infrastructure/spreadsheet/excel"
	"github.com/kirillkom/insurance-onboarding/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/insurance-onboarding/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Uploads  ports.IdentityUploader
	Chat     ports.ChatService
	Records  ports.RecordEditor
	Sessions ports.SessionService
	Reviewer ports.RecordReviewer

	closeFn func()
}

// New wires every adapter and use case. httpMetrics may be nil, in which case
// OCR, cache and breaker observations are dropped.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, httpMetrics *metrics.HTTPServerMetrics) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	sessions := postgres.NewSessionRepository(db)
	records := postgres.NewRecordRepository(db)
	messages := postgres.NewMessageRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	resilienceCfg := resilienceConfig(cfg)
	var stateObserver resilience.StateObserver
	if httpMetrics != nil {
		stateObserver = httpMetrics.RecordBreakerTransition
	}
	queueExecutor := resilience.NewExecutor(resilienceCfg).WithStateObserver(stateObserver)
	callExecutor := resilience.NewExecutor(resilienceCfg.SingleAttempt()).WithStateObserver(stateObserver)

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: queueExecutor,
		Logger:             logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	generator, closeGenerator, err := newReplyGenerator(ctx, cfg, callExecutor)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, err
	}

	engine, err := recommend.NewEngine(cfg.ProductBaseURL)
	if err != nil {
		closeGenerator()
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init recommendation engine: %w", err)
	}

	var (
		callObserver   ocrspace.CallObserver
		lookupObserver cache.LookupObserver
	)
	if httpMetrics != nil {
		callObserver = httpMetrics
		lookupObserver = httpMetrics
	}
	ocrClient := ocrspace.New(ocrspace.Options{
		URL:      cfg.OCRSpaceURL,
		APIKey:   cfg.OCRSpaceAPIKey,
		Executor: callExecutor,
		Observer: callObserver,
		Logger:   logger,
	})
	recognizer := cache.New(ocrClient, cfg.OCRCacheSize, cfg.OCRCacheTTL, lookupObserver)
	orchestrator := usecase.NewOCROrchestrator(
		recognizer,
		excel.New(),
		pdfinspect.New(),
		usecase.OCRTimeouts{Image: cfg.OCRImageTimeout, PDF: cfg.OCRPDFTimeout},
		logger,
	)

	return &App{
		Config: cfg,
		Queue:  queue,

		Uploads:  usecase.NewUploadUseCase(sessions, records, storage, queue, orchestrator, engine, logger),
		Chat:     usecase.NewChatUseCase(sessions, records, messages, generator, logger),
		Records:  usecase.NewRecordUseCase(records, queue, logger),
		Sessions: usecase.NewSessionUseCase(sessions, records, engine),
		Reviewer: usecase.NewReviewRecordUseCase(records),

		closeFn: func() {
			closeGenerator()
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func resilienceConfig(cfg config.Config) resilience.Config {
	out := resilience.DefaultConfig()
	out.BreakerEnabled = cfg.BreakerEnabled
	if cfg.BreakerMinRequests > 0 {
		out.BreakerMinRequests = uint32(cfg.BreakerMinRequests)
	}
	if cfg.BreakerFailureRatio > 0 {
		out.BreakerFailureRatio = cfg.BreakerFailureRatio
	}
	if cfg.BreakerOpenTimeout > 0 {
		out.BreakerOpenTimeout = cfg.BreakerOpenTimeout
	}
	return out
}

func newReplyGenerator(ctx context.Context, cfg config.Config, executor *resilience.Executor) (ports.ReplyGenerator, func(), error) {
	switch strings.ToLower(strings.TrimSpace(cfg.LLMProvider)) {
	case "", "ollama":
		client := ollama.New(cfg.OllamaURL, cfg.OllamaModel, ollama.Options{
			Timeout:  cfg.LLMTimeout,
			Executor: executor,
		})
		return client, func() {}, nil
	case "gemini":
		client, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, gemini.Options{
			Timeout:  cfg.LLMTimeout,
			Executor: executor,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init gemini: %w", err)
		}
		return client, func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
	}
}
