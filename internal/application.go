package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/qe-backend/internal/catalog"
	"github.com/rocketscienceinc/qe-backend/internal/config"
	"github.com/rocketscienceinc/qe-backend/internal/engine"
	"github.com/rocketscienceinc/qe-backend/internal/randutil"
	"github.com/rocketscienceinc/qe-backend/internal/repository"
	"github.com/rocketscienceinc/qe-backend/internal/repository/storage"
	"github.com/rocketscienceinc/qe-backend/internal/usecase"
	"github.com/rocketscienceinc/qe-backend/transport/rest"
	"github.com/rocketscienceinc/qe-backend/transport/websocket"
)

var (
	ErrAddrNotFound   = errors.New("redis address string is empty")
	ErrUnknownStorage = errors.New("unknown storage")
)

// RunApp - runs the application until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	playerRepo, gameRepo, closeStorage, err := openStorage(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err := closeStorage(); err != nil {
			log.Error("could not close storage", "error", err)
		}
	}()

	clock := quartz.NewReal()
	machine := engine.NewMachine(catalog.Standard{}, randutil.New(conf.Game.Seed), clock)
	gameUseCase := usecase.NewGameManager(logger, playerRepo, gameRepo, machine, clock)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if err := rest.Start(groupCtx, conf.HTTPPort, logger, gameUseCase); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameUseCase, clock)
		if err := wsServer.Start(groupCtx, conf.SocketPort); err != nil {
			return fmt.Errorf("WebSocket server error: %w", err)
		}
		return nil
	})

	// A failing server cancels groupCtx, which stops the other one.
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("Application context canceled, shutting down")
		return nil
	})

	return group.Wait()
}

func openStorage(ctx context.Context, conf *config.Config) (repository.PlayerRepository, repository.GameRepository, func() error, error) {
	switch conf.Storage {
	case config.StorageMemory:
		return repository.NewMemoryPlayerRepository(), repository.NewMemoryGameRepository(), func() error { return nil }, nil
	case config.StorageRedis:
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return nil, nil, nil, ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString, conf.Redis.DB)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		playerRepo := repository.NewPlayerRepository(redisStorage.Connection)
		gameRepo := repository.NewGameRepository(redisStorage.Connection, conf.Game.FinishedTTL)

		return playerRepo, gameRepo, redisStorage.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("%w: %q", ErrUnknownStorage, conf.Storage)
	}
}
