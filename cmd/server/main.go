package main

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/bot"
	"ctchen222/Tic-Tac-Toe-Solo/internal/config"
	"ctchen222/Tic-Tac-Toe-Solo/internal/db"
	"ctchen222/Tic-Tac-Toe-Solo/internal/hub"
	"ctchen222/Tic-Tac-Toe-Solo/internal/logger"
	"ctchen222/Tic-Tac-Toe-Solo/internal/repository"
	"ctchen222/Tic-Tac-Toe-Solo/internal/server"
	"ctchen222/Tic-Tac-Toe-Solo/internal/telemetry"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to a YAML config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
	if err != nil {
		slog.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("error shutting down telemetry", "error", err)
		}
	}()

	logger.Init(os.Stdout, cfg.SlogLevel())

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("server exiting")
}

func run(ctx context.Context, cfg *config.Config) error {
	// Create repository
	var repo repository.SessionRepository
	if cfg.Redis.Enabled {
		rdb, err := db.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		repo = repository.NewSessionRepository(rdb, cfg.Redis.SessionTTL)
		slog.Info("storing sessions in redis", "redis.addr", cfg.Redis.Addr, "session.ttl", cfg.Redis.SessionTTL)
	} else {
		repo = repository.NewMemorySessionRepository(cfg.Game.IdleTimeout)
		slog.Info("storing sessions in memory", "session.ttl", cfg.Game.IdleTimeout)
	}

	// Seed 0 leaves the opponent on the runtime's random source.
	var rnd bot.Random
	if cfg.Game.Seed != 0 {
		rnd = bot.NewSeededRandom(cfg.Game.Seed)
	}

	// Create hub
	h, err := hub.NewHub(repo, bot.NewOpponent(rnd), hub.Options{
		SweepInterval: cfg.Game.SweepInterval,
	})
	if err != nil {
		return err
	}
	go h.Run(ctx)

	// Create the Gin-based server
	if cfg.SlogLevel() > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.NewServer(h, server.Options{ComputerMoveDelay: cfg.Game.ComputerMoveDelay})

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Engine(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server started", "http.addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}
