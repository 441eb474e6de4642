package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/dskvich/trip-planner/pkg/auth"
	"github.com/dskvich/trip-planner/pkg/database"
	"github.com/dskvich/trip-planner/pkg/domain"
	"github.com/dskvich/trip-planner/pkg/huggingface"
	"github.com/dskvich/trip-planner/pkg/logger"
	"github.com/dskvich/trip-planner/pkg/openai"
	"github.com/dskvich/trip-planner/pkg/repository"
	"github.com/dskvich/trip-planner/pkg/services"
	"github.com/dskvich/trip-planner/pkg/telegram"
	"github.com/dskvich/trip-planner/pkg/web"
	"github.com/dskvich/trip-planner/pkg/workers"
)

type Config struct {
	CompletionProvider string `env:"COMPLETION_PROVIDER" envDefault:"huggingface"`
	HuggingAPIKey      string `env:"HUGGING_API_KEY"`
	HuggingAPIURL      string `env:"HUGGING_API_URL" envDefault:"https://api-inference.huggingface.co/models/mistralai/Mistral-7B-Instruct-v0.1"`
	MaxNewTokens       int    `env:"MAX_NEW_TOKENS" envDefault:"500"`
	OpenAIToken        string `env:"OPEN_AI_TOKEN"`
	OpenAIModel        string `env:"OPEN_AI_MODEL" envDefault:"gpt-4o-mini"`

	HTTPAddr           string   `env:"HTTP_ADDR" envDefault:":8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	SessionStore  string        `env:"SESSION_STORE" envDefault:"memory"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`

	PgURL string `env:"DATABASE_URL"`

	TelegramBotToken          string  `env:"TELEGRAM_BOT_TOKEN"`
	TelegramAuthorizedUserIDs []int64 `env:"TELEGRAM_AUTHORIZED_USER_IDS" envSeparator:" "`

	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	NoColor  bool       `env:"NO_COLOR"`
}

type sessionStore interface {
	services.SessionRepository
	Close() error
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("loading .env file", logger.Err(err))
	}

	if err := runMain(); err != nil {
		slog.Error("shutting down due to error", logger.Err(err))
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func runMain() error {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parsing env config: %w", err)
	}

	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, &logger.Options{
		Level:       cfg.LogLevel,
		TimeFormat:  logger.DefaultOptions.TimeFormat,
		SrcFileMode: logger.ShortFile,
		NoColor:     cfg.NoColor,
	})))

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	workerGroup, cleanup, err := setupWorkers(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		select {
		case s := <-sigCh:
			slog.Info("shutting down due to signal", "signal", s.String())
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return workerGroup.Start(ctx)
}

func setupWorkers(ctx context.Context, cfg Config) (workers.Group, func(), error) {
	var closers []func() error
	cleanup := func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				slog.Error("releasing resource", logger.Err(err))
			}
		}
	}

	var worker workers.Worker
	var workerGroup workers.Group

	provider, err := newCompletionProvider(cfg)
	if err != nil {
		return nil, cleanup, fmt.Errorf("creating completion provider: %w", err)
	}

	sessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		return nil, cleanup, fmt.Errorf("creating session store: %w", err)
	}
	closers = append(closers, sessions.Close)

	// Both stay untyped nil without a database so the archive is skipped.
	var (
		itineraryRepo services.ItineraryRepository
		archive       web.ItineraryArchive
	)
	if cfg.PgURL != "" {
		db, err := database.NewPostgres(cfg.PgURL)
		if err != nil {
			return nil, cleanup, fmt.Errorf("creating db: %w", err)
		}
		closers = append(closers, db.Close)

		repo := repository.NewItineraryRepository(db)
		itineraryRepo, archive = repo, repo
	} else {
		slog.Info("DATABASE_URL is not set, itineraries will not be archived")
	}

	planner := services.NewPlannerService(
		sessions,
		itineraryRepo,
		services.NewCompletionService(provider),
	)

	if worker, err = web.NewServer(cfg.HTTPAddr, planner, archive, cfg.CORSAllowedOrigins); err == nil {
		workerGroup = append(workerGroup, worker)
	} else {
		return nil, cleanup, fmt.Errorf("creating web server: %w", err)
	}

	if cfg.TelegramBotToken == "" {
		slog.Info("TELEGRAM_BOT_TOKEN is not set, telegram bot disabled")
		return workerGroup, cleanup, nil
	}

	telegramClient, err := telegram.NewClient(cfg.TelegramBotToken)
	if err != nil {
		return nil, cleanup, fmt.Errorf("creating telegram client: %w", err)
	}
	authenticator := auth.NewAuthenticator(cfg.TelegramAuthorizedUserIDs)

	responseCh := make(chan domain.Response)

	handler := telegram.NewHandler(
		planner,
		repository.NewWizardRepository(cfg.SessionTTL),
		responseCh,
	)

	if worker, err = workers.
		NewTelegramUpdateListener(
			telegramClient,
			authenticator,
			handler,
			responseCh,
		); err == nil {
		workerGroup = append(workerGroup, worker)
	} else {
		return nil, cleanup, err
	}

	return workerGroup, cleanup, nil
}

func newCompletionProvider(cfg Config) (services.CompletionProvider, error) {
	switch cfg.CompletionProvider {
	case "huggingface":
		return huggingface.NewClient(
			cfg.HuggingAPIKey,
			huggingface.WithURL(cfg.HuggingAPIURL),
			huggingface.WithMaxNewTokens(cfg.MaxNewTokens),
		), nil
	case "openai":
		return openai.NewClient(cfg.OpenAIToken, cfg.OpenAIModel, cfg.MaxNewTokens)
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.CompletionProvider)
	}
}

func newSessionStore(ctx context.Context, cfg Config) (sessionStore, error) {
	switch cfg.SessionStore {
	case "memory":
		return repository.NewMemorySessionRepository(cfg.SessionTTL), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("pinging redis: %w", err)
		}
		return repository.NewRedisSessionRepository(client, cfg.SessionTTL), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
}
