package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/ai-quiz-bot/internal/client/llm"
	"github.com/aliskhannn/ai-quiz-bot/internal/client/quizapi"
	"github.com/aliskhannn/ai-quiz-bot/internal/config"
	"github.com/aliskhannn/ai-quiz-bot/internal/delivery/telegram"
	"github.com/aliskhannn/ai-quiz-bot/internal/infra/cache"
	"github.com/aliskhannn/ai-quiz-bot/internal/infra/postgres"
	"github.com/aliskhannn/ai-quiz-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/ai-quiz-bot/internal/logger"
	"github.com/aliskhannn/ai-quiz-bot/internal/service"
	"github.com/aliskhannn/ai-quiz-bot/internal/storage"
)

// resultStore is what the bot needs from the place finished quizzes are kept.
type resultStore interface {
	service.ResultSaver
	service.HistoryRepository
}

// identityStore keeps logged-in users and binds them to quiz sessions.
type identityStore interface {
	service.IdentityStore
	For(userID int64) storage.ChatIdentity
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := quizapi.New(cfg.API.BaseURL, cfg.API.Timeout, lg.Named("quizapi"))

	var generator service.QuestionGenerator = api
	if cfg.Generator.Provider == config.ProviderOpenAI {
		generator = llm.New(cfg.Generator.OpenAIAPIKey, cfg.Generator.Model, lg.Named("llm"))
	}

	var (
		results  resultStore = api
		profiles service.ProfileProvider
	)
	switch cfg.Results.Backend {
	case config.BackendPostgres:
		dsn, err := cfg.DB.DSN()
		if err != nil {
			lg.Fatal("database is not configured", zap.Error(err))
		}

		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.DB.MaxConnections),
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
			PingTimeout:     5 * time.Second,
		})
		if err != nil {
			lg.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err := postgres.Migrate(ctx, pool); err != nil {
			lg.Fatal("failed to apply migrations", zap.Error(err))
		}

		results = repository.NewResultRepository(pool, postgres.NewTransactor(pool), cfg.Results.HistoryLimit)
	default:
		profiles = api
	}

	var identities identityStore = storage.NewIdentityStorage()
	if cfg.Identity.Backend == config.IdentityRedis {
		client, err := cache.NewClient(ctx, cfg.Identity.RedisURL)
		if err != nil {
			lg.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = client.Close() }()

		identities = cache.NewIdentityStore(client, lg.Named("identity"))
	}

	sessions := storage.NewSessionStorage(func(userID int64) *service.QuizSession {
		return service.NewQuizSession(
			generator,
			results,
			identities.For(userID),
			lg.Named("session").With(zap.Int64("user_id", userID)),
			cfg.Quiz.MaxQuestions,
		)
	})

	authService := service.NewAuthService(api, identities, lg.Named("auth"))
	historyService := service.NewHistoryService(results, profiles, lg.Named("history"))

	janitor := service.NewSessionJanitor(sessions, cfg.Quiz.SweepSpec, cfg.Quiz.SessionTTL, lg.Named("janitor"))
	go janitor.Start(ctx)

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		lg.Fatal("failed to create telegram bot", zap.Error(err))
	}
	bot.Debug = cfg.Env == "local"
	lg.Info("authorized on telegram", zap.String("account", bot.Self.UserName))

	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Start the bot"},
		{Command: "quiz", Description: "Start a quiz: /quiz <topic> [number]"},
		{Command: "reset", Description: "Abandon the current quiz"},
		{Command: "history", Description: "Show your finished quizzes"},
		{Command: "profile", Description: "Show your profile and rank"},
		{Command: "login", Description: "Log in: /login <email> <password>"},
		{Command: "register", Description: "Create an account"},
		{Command: "logout", Description: "Log out"},
		{Command: "help", Description: "Help"},
	}
	if _, err := bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	handler := telegram.NewHandler(
		bot,
		lg.Named("telegram"),
		sessions,
		authService,
		historyService,
		telegram.Config{
			DefaultQuestions: cfg.Quiz.DefaultQuestions,
			MaxQuestions:     cfg.Quiz.MaxQuestions,
			HistoryLimit:     cfg.Results.HistoryLimit,
			RequestTimeout:   cfg.API.Timeout,
		},
	)
	if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("telegram handler failed", zap.Error(err))
	}

	lg.Info("shutdown signal received")
}
