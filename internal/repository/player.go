package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/qe-backend/internal/entity"
)

var ErrPlayerNotFound = errors.New("player not found")

// PlayerRepository remembers the display name a user last connected with, so
// it follows them into every game they create or join.
type PlayerRepository interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type dbPlayer struct {
	client *redis.Client
}

func NewPlayerRepository(client *redis.Client) PlayerRepository {
	return &dbPlayer{
		client: client,
	}
}

func playerKey(id string) string {
	return "player:" + id
}

func (that *dbPlayer) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	playerJSON, err := json.Marshal(entity.Player{ID: player.ID, Name: player.Name})
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	err = that.client.Set(ctx, playerKey(player.ID), playerJSON, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set player: %w", err)
	}

	return nil
}

func (that *dbPlayer) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	response, err := that.client.Get(ctx, playerKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrPlayerNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	var existingPlayer entity.Player
	if err = json.Unmarshal([]byte(response), &existingPlayer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}

	return &existingPlayer, nil
}
