// Package suite starts a throwaway Redis in Docker for repository tests.
package suite

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/qe-backend/internal/repository/storage"
)

const (
	expireSeconds   = 120
	maxWaitDuration = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"
)

type Suite struct {
	*testing.T
	Logger *slog.Logger

	Storage *redis.Client
}

// New returns a suite backed by an empty Redis database. Tests are skipped
// in -short mode or when Docker is unreachable.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping Redis-backed test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(cancel)

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker is not available: %v", err)
	}

	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker is not reachable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start redis: %v", err)
	}

	// hard kill in case the cleanup never runs
	_ = resource.Expire(expireSeconds)

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("could not purge redis: %v", err)
		}
	})

	pool.MaxWait = maxWaitDuration

	var redisStorage *storage.RedisStorage
	if err = pool.Retry(func() error {
		var retryErr error
		redisStorage, retryErr = storage.NewRedisStorage(ctx, resource.GetHostPort(redisPort), 0)
		return retryErr
	}); err != nil {
		t.Fatalf("could not connect to redis: %v", err)
	}

	t.Cleanup(func() {
		if err := redisStorage.Close(); err != nil {
			t.Errorf("could not close redis: %v", err)
		}
	})

	if err = redisStorage.Connection.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("could not flush database: %v", err)
	}

	return ctx, &Suite{
		T:       t,
		Logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Storage: redisStorage.Connection,
	}
}
