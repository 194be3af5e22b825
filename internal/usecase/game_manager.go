package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/coder/quartz"

	"github.com/rocketscienceinc/qe-backend/internal/apperror"
	"github.com/rocketscienceinc/qe-backend/internal/engine"
	"github.com/rocketscienceinc/qe-backend/internal/entity"
	"github.com/rocketscienceinc/qe-backend/internal/pkg"
	"github.com/rocketscienceinc/qe-backend/internal/repository"
)

const defaultPlayerName = "Player"

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type stateMachine interface {
	Apply(game *entity.Game, action engine.Action) (*entity.Game, error)
}

// GameManager loads a game, applies one action and stores the result, one
// action per game at a time. A rejected action leaves the stored game as it
// was and hands it back together with the reason.
type GameManager struct {
	logger *slog.Logger

	playerRepo playerRepo
	gameRepo   gameRepo
	machine    stateMachine
	clock      quartz.Clock

	locks *keyedMutex
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, machine stateMachine, clock quartz.Clock) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		machine:    machine,
		clock:      clock,

		locks: newKeyedMutex(),
	}
}

// Connect registers the user's display name. An empty name keeps the one
// already known.
func (that *GameManager) Connect(ctx context.Context, userID, name string) (*entity.Player, error) {
	player, err := that.getPlayer(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name = pkg.SanitizeName(name); name != "" {
		player.Name = name
	}

	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	return player, nil
}

func (that *GameManager) CreateGame(ctx context.Context, userID, name string) (*entity.Game, error) {
	log := that.logger.With("method", "CreateGame")

	host, err := that.getPlayer(ctx, userID)
	if err != nil {
		return nil, err
	}

	game := entity.NewGame(pkg.GenerateGameID(), pkg.SanitizeName(name), *host, that.clock.Now())
	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	log.Info("game created", "gameID", game.ID, "host", userID)

	return game, nil
}

func (that *GameManager) JoinGame(ctx context.Context, gameID, userID string) (*entity.Game, error) {
	player, err := that.getPlayer(ctx, userID)
	if err != nil {
		return nil, err
	}

	return that.apply(ctx, gameID, engine.Join(*player), func(game *entity.Game) error {
		if game.HasPlayer(userID) {
			return apperror.ErrPlayerAlreadyInGame
		}
		if len(game.Players) >= entity.MaxPlayers {
			return apperror.ErrGameIsFull
		}
		return nil
	})
}

// AddBot seats a computer player. Only someone already seated may do it.
func (that *GameManager) AddBot(ctx context.Context, gameID, userID string) (*entity.Game, error) {
	bot := entity.NewBotPlayer(pkg.GenerateBotID())

	return that.apply(ctx, gameID, engine.Join(bot), func(game *entity.Game) error {
		if !game.HasPlayer(userID) {
			return apperror.ErrPlayerNotInGame
		}
		if len(game.Players) >= entity.MaxPlayers {
			return apperror.ErrGameIsFull
		}
		return nil
	})
}

// QuitGame removes the user from a lobby. The lobby is deleted once nobody
// but bots is left.
func (that *GameManager) QuitGame(ctx context.Context, gameID, userID string) (*entity.Game, error) {
	return that.apply(ctx, gameID, engine.Quit(userID), func(game *entity.Game) error {
		if !game.HasPlayer(userID) {
			return apperror.ErrPlayerNotInGame
		}
		return nil
	})
}

func (that *GameManager) StartGame(ctx context.Context, gameID, userID string, tutorial bool) (*entity.Game, error) {
	return that.apply(ctx, gameID, engine.Start(true, tutorial), func(game *entity.Game) error {
		if !game.HasPlayer(userID) {
			return apperror.ErrPlayerNotInGame
		}
		return nil
	})
}

func (that *GameManager) Bid(ctx context.Context, gameID, userID string, amount int) (*entity.Game, error) {
	return that.apply(ctx, gameID, engine.Bid(userID, amount), nil)
}

func (that *GameManager) Peek(ctx context.Context, gameID, userID string) (*entity.Game, error) {
	return that.apply(ctx, gameID, engine.Peek(userID), nil)
}

func (that *GameManager) FlipTable(ctx context.Context, gameID, userID string) (*entity.Game, error) {
	return that.apply(ctx, gameID, engine.Flip(userID), nil)
}

func (that *GameManager) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// apply runs one action against the stored game under the game's lock.
// precheck may refuse the action before the machine sees it.
func (that *GameManager) apply(ctx context.Context, gameID string, action engine.Action, precheck func(*entity.Game) error) (*entity.Game, error) {
	log := that.logger.With("method", "apply", "gameID", gameID, "action", action.Type)

	unlock := that.locks.Lock(gameID)
	defer unlock()

	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if precheck != nil {
		if err = precheck(game); err != nil {
			return game, err
		}
	}

	next, err := that.machine.Apply(game, action)
	if err != nil {
		log.Debug("action rejected", "error", err)
		return game, err
	}

	if err = that.store(ctx, next); err != nil {
		return nil, err
	}

	if next.IsFinished() && !game.IsFinished() {
		log.Info("game over", "flippedBy", next.FlippedBy)
	}

	return next, nil
}

// store saves the game, or deletes a lobby nobody but bots is waiting in.
func (that *GameManager) store(ctx context.Context, game *entity.Game) error {
	if game.IsLobby() && len(game.Players) == len(game.Bots()) {
		if err := that.gameRepo.DeleteByID(ctx, game.ID); err != nil {
			return fmt.Errorf("failed to delete empty game: %w", err)
		}

		that.logger.Info("empty game deleted", "gameID", game.ID)

		return nil
	}

	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *GameManager) getPlayer(ctx context.Context, userID string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		return &entity.Player{ID: userID, Name: defaultPlayerName}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}
