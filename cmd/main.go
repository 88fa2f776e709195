package main

import (
	"campuscart/backend/internal/api/handler"
	"campuscart/backend/internal/auth"
	"campuscart/backend/internal/chathub"
	"campuscart/backend/internal/config"
	"campuscart/backend/internal/localization"
	"campuscart/backend/internal/logger"
	"campuscart/backend/internal/notify"
	"campuscart/backend/internal/roommate"
	"campuscart/backend/internal/storage"
	"campuscart/backend/internal/telegram"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupDependencies(ctx context.Context, cfg *config.Config, lg *zap.Logger) (*gorm.DB, *redis.Client, error) {
	// 1. PostgreSQL
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	// 2. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}

	// 3. Міграції
	if cfg.Database.AutoMigrate {
		if err := storage.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}

	lg.Info("database and redis connections established", zap.Bool("migrated", cfg.Database.AutoMigrate))
	return db, rdb, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	lg, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, rdb, err := setupDependencies(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	s := storage.NewStorageService(db, rdb, cfg.Redis.Channel)
	loc, err := localization.New()
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}

	dispatcher := notify.NewDispatcher(s, lg)

	if cfg.Telegram.BotToken != "" {
		api, err := telegram.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			return err
		}
		dispatcher.AddPusher(telegram.NewNotifier(api, s))
		bot := telegram.NewBotService(api, s, loc, lg)
		go bot.Run(ctx)
	} else {
		lg.Warn("telegram bot token not set, push notifications disabled")
	}

	hub := chathub.NewManagerService(s, dispatcher, loc, cfg.Realtime, lg)
	go func() {
		if err := hub.Run(ctx); err != nil {
			lg.Error("hub stopped", zap.Error(err))
			stop()
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	h := handler.NewHandler(handler.Deps{
		Hub:            hub,
		Storage:        s,
		Tokens:         auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL),
		Notify:         dispatcher,
		Matcher:        roommate.NewMatcherService(s),
		Localizer:      loc,
		Log:            lg,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		// No WriteTimeout: it would also apply to hijacked websocket connections.
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("http server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		lg.Warn("http shutdown", zap.Error(err))
	}
	<-hub.Done()
	return nil
}
