// Command simulate plays all-bot games and prints how they scored.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/coder/quartz"

	"github.com/rocketscienceinc/qe-backend/internal/catalog"
	"github.com/rocketscienceinc/qe-backend/internal/engine"
	"github.com/rocketscienceinc/qe-backend/internal/entity"
	"github.com/rocketscienceinc/qe-backend/internal/pkg"
	"github.com/rocketscienceinc/qe-backend/internal/randutil"
	"github.com/rocketscienceinc/qe-backend/internal/scoring"
)

type CLI struct {
	Players  int   `default:"4" help:"Number of bots at the table (3-5)"`
	Games    int   `default:"1" help:"Number of games to play"`
	Seed     int64 `default:"0" help:"RNG seed (0 for random)"`
	Tutorial bool  `help:"Let bots bid at random like in tutorial games"`
	Verbose  bool  `short:"v" help:"Verbose logging"`
}

// Report is printed once per game.
type Report struct {
	Game    int                          `json:"game"`
	Players []entity.Player              `json:"players"`
	Scores  map[string]scoring.Breakdown `json:"scores"`
	Winner  string                       `json:"winner"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli)

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(cli, logger, os.Stdout); err != nil {
		ctx.FatalIfErrorf(err)
	}
}

func run(cli CLI, logger *slog.Logger, out io.Writer) error {
	if cli.Players < entity.MinPlayers || cli.Players > entity.MaxPlayers {
		return fmt.Errorf("players must be between %d and %d, got %d", entity.MinPlayers, entity.MaxPlayers, cli.Players)
	}

	machine := engine.NewMachine(catalog.Standard{}, randutil.New(cli.Seed), quartz.NewReal())
	encoder := json.NewEncoder(out)
	wins := make(map[int]int, cli.Players)

	for i := 1; i <= cli.Games; i++ {
		game, err := playGame(machine, cli.Players, cli.Tutorial)
		if err != nil {
			return fmt.Errorf("game %d: %w", i, err)
		}

		result := scoring.Score(game)
		for seat, player := range game.Players {
			if player.ID == result.Winner {
				wins[seat]++
			}
		}

		logger.Debug("game finished", "game", i, "auctions", len(game.Auctions), "winner", result.Winner)

		report := Report{Game: i, Players: game.Players, Scores: result.Players, Winner: result.Winner}
		if err = encoder.Encode(report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	logger.Info("simulation finished", "games", cli.Games, "winsBySeat", wins)

	return nil
}

// playGame seats bots and starts the game. Bots play it to the end on their
// own.
func playGame(machine *engine.Machine, players int, tutorial bool) (*entity.Game, error) {
	bots := make([]entity.Player, players)
	for i := range bots {
		bots[i] = entity.NewBotPlayer(pkg.GenerateBotID())
	}

	game := entity.NewGame(pkg.GenerateGameID(), "simulation", bots[0], quartz.NewReal().Now())

	var err error
	for _, bot := range bots[1:] {
		if game, err = machine.Apply(game, engine.Join(bot)); err != nil {
			return nil, err
		}
	}

	if game, err = machine.Apply(game, engine.Start(true, tutorial)); err != nil {
		return nil, err
	}

	if !game.GameOver {
		return nil, fmt.Errorf("bots stopped in phase %s", game.Phase)
	}

	return game, nil
}
