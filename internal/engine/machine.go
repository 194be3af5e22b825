// Package engine owns every transition of a game: lobby, deal, bidding, tie
// resolution and bot autoplay. It never mutates the game it is given.
package engine

import (
	"fmt"
	"slices"

	"github.com/coder/quartz"

	"github.com/rocketscienceinc/qe-backend/internal/apperror"
	"github.com/rocketscienceinc/qe-backend/internal/entity"
)

// Catalog supplies the decks dealt for a roster size.
type Catalog interface {
	Companies(playerCount int) ([]entity.Company, error)
	Countries(playerCount int) ([]entity.Country, error)
	Sectors(playerCount int) ([]entity.Sector, error)
}

// Random shuffles decks and rolls tutorial bot bids.
type Random interface {
	Shuffle(n int, swap func(i, j int))
	IntN(n int) int
}

type Machine struct {
	catalog Catalog
	random  Random
	clock   quartz.Clock
	bots    BotPolicy
}

func NewMachine(catalog Catalog, random Random, clock quartz.Clock) *Machine {
	return &Machine{
		catalog: catalog,
		random:  random,
		clock:   clock,
		bots:    NewBotPolicy(random),
	}
}

// Apply returns the game that results from the action. A refused action
// yields the entity.Rejected sentinel together with the reason; callers keep
// serving the previous state. A rejected game passes through untouched.
func (that *Machine) Apply(game *entity.Game, action Action) (*entity.Game, error) {
	if game.IsRejected() || action.Type == actionBot {
		return game, nil
	}

	next := game.Clone()
	if err := that.run(next, action); err != nil {
		return entity.Rejected(err), err
	}

	next.Status = describe(next)

	return next, nil
}

// run drains a stack of pending actions. Bot turns are queued here instead
// of recursing, so an all-bot game plays out in a flat loop.
func (that *Machine) run(game *entity.Game, action Action) error {
	pending := []Action{action}

	for len(pending) > 0 {
		current := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		followUps, err := that.step(game, current)
		if err != nil {
			return err
		}

		for i := len(followUps) - 1; i >= 0; i-- {
			// one pending bot pass is enough, it keeps going until bots are done
			if followUps[i].Type == actionBot && len(pending) > 0 && pending[len(pending)-1].Type == actionBot {
				continue
			}
			pending = append(pending, followUps[i])
		}
	}

	return nil
}

func (that *Machine) step(game *entity.Game, action Action) ([]Action, error) {
	switch action.Type {
	case ActionJoin:
		return nil, join(game, action.Player)
	case ActionQuit:
		return nil, quit(game, action.UserID)
	case ActionStart:
		if err := that.start(game, action.Shuffle, action.Tutorial); err != nil {
			return nil, err
		}
		return []Action{bot()}, nil
	case ActionBid:
		return that.bid(game, action.UserID, action.Amount)
	case ActionPeek:
		return nil, peek(game, action.UserID)
	case ActionFlip:
		return nil, flip(game, action.UserID)
	case actionBot:
		return that.autoplay(game), nil
	default:
		return nil, nil
	}
}

func join(game *entity.Game, player entity.Player) error {
	if !game.IsLobby() {
		return apperror.ErrGameAlreadyStarted
	}

	game.Players = append(game.Players, player)

	return nil
}

func quit(game *entity.Game, userID string) error {
	if !game.IsLobby() {
		return apperror.ErrGameAlreadyStarted
	}

	game.Players = slices.DeleteFunc(game.Players, func(player entity.Player) bool {
		return player.ID == userID
	})

	return nil
}

func (that *Machine) start(game *entity.Game, shuffle, tutorial bool) error {
	if !game.IsLobby() {
		return apperror.ErrGameAlreadyStarted
	}

	playerCount := len(game.Players)
	if playerCount < entity.MinPlayers || playerCount > entity.MaxPlayers {
		return fmt.Errorf("%w: got %d", apperror.ErrInvalidPlayerCount, playerCount)
	}

	companies, err := that.catalog.Companies(playerCount)
	if err != nil {
		return fmt.Errorf("failed to look up companies: %w", err)
	}

	countries, err := that.catalog.Countries(playerCount)
	if err != nil {
		return fmt.Errorf("failed to look up countries: %w", err)
	}

	sectors, err := that.catalog.Sectors(playerCount)
	if err != nil {
		return fmt.Errorf("failed to look up sectors: %w", err)
	}

	if shuffle {
		shuffleInPlace(that.random, game.Players)
		shuffleInPlace(that.random, companies)
		shuffleInPlace(that.random, countries)
		shuffleInPlace(that.random, sectors)
	}

	for i := range game.Players {
		game.Players[i].Country = countries[i]
		game.Players[i].Sector = sectors[i]
	}

	game.Auctions = []entity.Auction{entity.NewAuction(companies[0])}
	game.UpcomingAuctions = companies[1:]
	game.TotalAuctions = len(companies)
	game.AuctionIndex = 1
	game.Round = 1
	game.Turn = 0
	game.Tutorial = tutorial
	game.Phase = entity.PhaseAwaitingStartBid
	game.StartedAt = that.clock.Now()

	return nil
}

func peek(game *entity.Game, userID string) error {
	if err := confirmActive(game, userID); err != nil {
		return err
	}

	if len(game.Players) != entity.PeekPlayerCount {
		return apperror.ErrPeekUnavailable
	}

	if _, ok := game.Peeks[userID]; ok {
		return apperror.ErrAlreadyPeeked
	}

	if game.PreviousAuction() == nil {
		return apperror.ErrNothingToPeek
	}

	if game.Peeks == nil {
		game.Peeks = make(map[string]int)
	}
	game.Peeks[userID] = len(game.Auctions) - 2

	return nil
}

func flip(game *entity.Game, userID string) error {
	if err := confirmActive(game, userID); err != nil {
		return err
	}

	game.GameOver = true
	game.Phase = entity.PhaseGameOver
	game.FlippedBy = userID

	return nil
}

// confirmActive checks the game is being played and the user is seated.
func confirmActive(game *entity.Game, userID string) error {
	switch {
	case game.IsLobby():
		return apperror.ErrGameIsNotStarted
	case game.IsFinished():
		return apperror.ErrGameFinished
	case !game.HasPlayer(userID):
		return apperror.ErrPlayerNotInGame
	}

	return nil
}

func shuffleInPlace[T any](random Random, items []T) {
	random.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
