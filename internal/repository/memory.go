package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/qe-backend/internal/entity"
)

// MemoryGameRepository keeps games in process. It stores clones so callers
// can never mutate a stored game by accident.
type MemoryGameRepository struct {
	mu    sync.RWMutex
	games map[string]*entity.Game
}

func NewMemoryGameRepository() *MemoryGameRepository {
	return &MemoryGameRepository{
		games: make(map[string]*entity.Game),
	}
}

func (that *MemoryGameRepository) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	if game.IsRejected() {
		return fmt.Errorf("refusing to store a rejected game: %s", game.ErrorMessage)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.games[game.ID] = game.Clone()

	return nil
}

func (that *MemoryGameRepository) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	game, ok := that.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}

	return game.Clone(), nil
}

func (that *MemoryGameRepository) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.games, id)

	return nil
}

type MemoryPlayerRepository struct {
	mu      sync.RWMutex
	players map[string]entity.Player
}

func NewMemoryPlayerRepository() *MemoryPlayerRepository {
	return &MemoryPlayerRepository{
		players: make(map[string]entity.Player),
	}
}

func (that *MemoryPlayerRepository) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.players[player.ID] = entity.Player{ID: player.ID, Name: player.Name}

	return nil
}

func (that *MemoryPlayerRepository) GetByID(_ context.Context, id string) (*entity.Player, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	player, ok := that.players[id]
	if !ok {
		return nil, ErrPlayerNotFound
	}

	return &player, nil
}
