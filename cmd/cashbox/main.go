package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"cashbox/internal/automation"
	"cashbox/internal/cache"
	"cashbox/internal/config"
	"cashbox/internal/db"
	"cashbox/internal/httpserver"
	"cashbox/internal/notify"
	"cashbox/internal/report"
	"cashbox/internal/sheets"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("CASHBOX_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Monitoring.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	database, err := db.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Backup.Enabled {
		backup := db.NewBackupService(cfg.Database.Path, db.BackupConfig{
			Enabled:       true,
			IntervalHours: cfg.Backup.IntervalHours,
			Path:          cfg.Backup.Path,
			RetentionDays: cfg.Backup.RetentionDays,
		}, &logger)
		go backup.Start(ctx)
	}

	// Schedule reads go through Redis when configured; the database remains
	// the source of truth either way.
	var scheduleStore automation.ScheduleStore = database
	var redisCache *cache.Redis
	if cfg.Redis.Enabled && cfg.Redis.Address != "" {
		redisCache = cache.New(cache.Config{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			UseTLS:   cfg.Redis.UseTLS,
		}, logger)
		defer redisCache.Close()
		scheduleStore = cache.NewScheduleStore(database, redisCache, cfg.RedisTTL(), logger)
	}

	var notifier *notify.TelegramNotifier
	if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			logger.Fatal().Err(err).Msg("create telegram bot error")
		}
		bot.Debug = cfg.Telegram.Debug
		notifier = notify.NewTelegramNotifier(bot, database, logger)
		logger.Info().Str("bot", bot.Self.UserName).Msg("telegram notifier enabled")
	}

	var mirror report.Mirror
	if cfg.Sheets.Enabled {
		sheetsSvc, err := sheets.New(ctx, sheets.Config{
			CredentialsFile: cfg.Sheets.CredentialsFile,
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			SheetName:       cfg.Sheets.SheetName,
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("create sheets mirror error")
		}
		if err := sheetsSvc.EnsureHeader(ctx); err != nil {
			logger.Error().Err(err).Msg("sheets header check failed")
		}
		mirror = sheetsSvc
	}

	var sender report.DocumentSender
	if notifier != nil {
		sender = notifier
	}
	reportSvc := report.NewService(database, sender, mirror, logger)

	metrics := automation.NewMetrics("cashbox")
	engineLog := zerologAdapter{logger.With().Str("component", "automation").Logger()}

	matcher := automation.NewMatcher(scheduleStore, engineLog)
	guard := automation.NewGuard(database, cfg.DedupWindow(), engineLog)
	executor := automation.NewExecutor(database, reportSvc, database, engineLog, metrics, cfg.OperationTimeout())

	var schedNotifier automation.Notifier
	if notifier != nil {
		schedNotifier = notifier
	}
	scheduler := automation.NewScheduler(automation.SchedulerConfig{
		CheckInterval:    cfg.CheckInterval(),
		DedupWindow:      cfg.DedupWindow(),
		MaxConcurrent:    cfg.Scheduler.MaxConcurrent,
		OperationTimeout: cfg.OperationTimeout(),
	}, database, scheduleStore, matcher, guard, executor, schedNotifier, engineLog, metrics)

	projector := automation.NewProjector(scheduleStore, database)

	httpDeps := httpserver.Dependencies{
		Scheduler: scheduler,
		Log:       database,
		Projector: projector,
		Exporter:  report.NewExporter(database, logger),
		DB:        httpserver.PingerFunc(database.PingContext),
	}
	if redisCache != nil {
		httpDeps.Redis = redisCache
	}
	srv := httpserver.New(fmt.Sprintf(":%d", cfg.Monitoring.HTTPPort), httpDeps, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	scheduler.Start(ctx)
	logger.Info().Msg("cash automation service started")

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	// Let the in-flight tick finish before tearing down the HTTP surface.
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
}

// zerologAdapter bridges zerolog into the engine's key-value logger.
type zerologAdapter struct {
	l zerolog.Logger
}

func (a zerologAdapter) Info(msg string, kv ...interface{}) {
	a.l.Info().Fields(kv).Msg(msg)
}

func (a zerologAdapter) Error(msg string, kv ...interface{}) {
	a.l.Error().Fields(kv).Msg(msg)
}

func (a zerologAdapter) Debug(msg string, kv ...interface{}) {
	a.l.Debug().Fields(kv).Msg(msg)
}
