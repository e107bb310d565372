package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KirkDiggler/sketchroom/internal/broadcast"
	"github.com/KirkDiggler/sketchroom/internal/common/clock"
	"github.com/KirkDiggler/sketchroom/internal/common/uuid"
	"github.com/KirkDiggler/sketchroom/internal/handlers/ws"
	"github.com/KirkDiggler/sketchroom/internal/phase"
	"github.com/KirkDiggler/sketchroom/internal/repositories/eviction"
	"github.com/KirkDiggler/sketchroom/internal/repositories/room"
	"github.com/KirkDiggler/sketchroom/internal/services/messaging"
	"github.com/KirkDiggler/sketchroom/internal/services/session"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment may already be set
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.level()}))
	slog.SetDefault(logger)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	roomRepo, err := room.NewRedis(&room.Config{
		RedisClient: redisClient,
		TTL:         cfg.DirectoryTTL,
	})
	if err != nil {
		return err
	}

	evictionRepo, err := eviction.NewRedis(&eviction.Config{
		RedisClient: redisClient,
		TTL:         cfg.DirectoryTTL,
	})
	if err != nil {
		return err
	}

	dispatcher, err := broadcast.New(&broadcast.Config{Logger: logger})
	if err != nil {
		return err
	}

	messagingSvc, err := messaging.NewService(&messaging.Config{})
	if err != nil {
		return err
	}

	ids := uuid.New()
	sessionSvc, err := session.New(&session.Config{
		Capacity:          cfg.Capacity,
		SectionCap:        cfg.SectionCap,
		EvictionThreshold: cfg.EvictionThreshold,
		Timing: phase.Timing{
			RoundStarts: cfg.RoundStarts,
			RoundLength: cfg.RoundLength,
			SettleDelay: cfg.SettleDelay,
		},
		IdleTimeout:   cfg.IdleTimeout,
		QueueWhenFull: cfg.QueueWhenFull,
		InvitationTTL: cfg.InvitationTTL,
		RepoTimeout:   cfg.RepoTimeout,
		DefaultRoomID: cfg.DefaultRoom,
		Logger:        logger,
		Clock:         &clock.DefaultClock{},
		UUIDGenerator: ids,
		Dispatcher:    dispatcher,
		Messaging:     messagingSvc,
		RoomRepo:      roomRepo,
		EvictionRepo:  evictionRepo,
	})
	if err != nil {
		return err
	}

	handler, err := ws.New(&ws.Config{
		Logger:         logger,
		SessionService: sessionSvc,
		UUIDGenerator:  ids,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", cfg.Addr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Rooms first, so websocket clients get a close frame with a reason
	if err := sessionSvc.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Session shutdown incomplete", "error", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Server has been shut down")
	return nil
}
