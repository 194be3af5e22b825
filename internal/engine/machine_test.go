package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/qe-backend/internal/apperror"
	"github.com/rocketscienceinc/qe-backend/internal/catalog"
	"github.com/rocketscienceinc/qe-backend/internal/entity"
	"github.com/rocketscienceinc/qe-backend/internal/randutil"
)

var (
	alice = entity.Player{ID: "alice", Name: "Alice"}
	bob   = entity.Player{ID: "bob", Name: "Bob"}
	carol = entity.Player{ID: "carol", Name: "Carol"}
	dave  = entity.Player{ID: "dave", Name: "Dave"}
	erin  = entity.Player{ID: "erin", Name: "Erin"}
)

func newTestMachine(t *testing.T, seed int64) *Machine {
	t.Helper()
	return NewMachine(catalog.Standard{}, randutil.New(seed), quartz.NewMock(t))
}

func newLobby(players ...entity.Player) *entity.Game {
	game := entity.NewGame("game-1", "test", players[0], time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	game.Players = append(game.Players, players[1:]...)
	return game
}

func mustApply(t *testing.T, machine *Machine, game *entity.Game, action Action) *entity.Game {
	t.Helper()

	next, err := machine.Apply(game, action)
	require.NoError(t, err)
	require.False(t, next.IsRejected())

	return next
}

func startedGame(t *testing.T, machine *Machine, players ...entity.Player) *entity.Game {
	t.Helper()
	return mustApply(t, machine, newLobby(players...), Start(false, false))
}

// playRegularAuction lets the auctioneer open with 2 and the rest follow with
// 0 and 1, so the auctioneer always wins without a tie.
func playRegularAuction(t *testing.T, machine *Machine, game *entity.Game) *entity.Game {
	t.Helper()

	auctioneer := game.Auctioneer()
	require.NotNil(t, auctioneer)

	game = mustApply(t, machine, game, Bid(auctioneer.ID, 2))

	follow := 0
	for _, player := range game.Players {
		if player.ID == auctioneer.ID {
			continue
		}
		game = mustApply(t, machine, game, Bid(player.ID, follow%2))
		follow++
	}

	return game
}

func TestMachine_Start(t *testing.T) {
	t.Run("Deals the full deck for every roster size", func(t *testing.T) {
		rosters := map[int][]entity.Player{
			3: {alice, bob, carol},
			4: {alice, bob, carol, dave},
			5: {alice, bob, carol, dave, erin},
		}

		for count, players := range rosters {
			// Given: a lobby with count players
			machine := newTestMachine(t, 1)

			// When: the game is started
			game := mustApply(t, machine, newLobby(players...), Start(false, false))

			// Then: the deal matches the deck size for the roster
			dealSize := catalog.DealSize(count)
			assert.Equal(t, dealSize, game.TotalAuctions)
			assert.Len(t, game.UpcomingAuctions, dealSize-1)
			assert.Len(t, game.Auctions, 1)
			assert.Equal(t, entity.PhaseAwaitingStartBid, game.Phase)
			assert.Equal(t, entity.Round(1), game.Round)
			assert.Equal(t, entity.Turn(0), game.Turn)
			assert.Equal(t, 1, game.AuctionIndex)
			assert.Equal(t, "Waiting for Alice to set a starting bid", game.Status)
		}
	})

	t.Run("Assigns countries and sectors positionally without shuffling", func(t *testing.T) {
		// Given: a three-player lobby
		machine := newTestMachine(t, 1)

		// When: the game is started without shuffle
		game := startedGame(t, machine, alice, bob, carol)

		// Then: players keep their seats and get the first catalog entries
		countries, err := catalog.Standard{}.Countries(3)
		require.NoError(t, err)
		sectors, err := catalog.Standard{}.Sectors(3)
		require.NoError(t, err)

		for i, player := range game.Players {
			assert.Equal(t, countries[i], player.Country)
			assert.Equal(t, sectors[i], player.Sector)
		}
		assert.Equal(t, []string{"alice", "bob", "carol"}, []string{game.Players[0].ID, game.Players[1].ID, game.Players[2].ID})
	})

	t.Run("Shuffled deal keeps every card exactly once", func(t *testing.T) {
		// Given: a four-player lobby
		machine := newTestMachine(t, 42)

		// When: the game is started with shuffle
		game := mustApply(t, machine, newLobby(alice, bob, carol, dave), Start(true, false))

		// Then: the dealt cards are a permutation of the catalog deck
		companies, err := catalog.Standard{}.Companies(4)
		require.NoError(t, err)

		dealt := append([]entity.Company{game.Auctions[0].Company}, game.UpcomingAuctions...)
		assert.ElementsMatch(t, companies, dealt)

		seen := make(map[entity.Country]bool)
		for _, player := range game.Players {
			assert.False(t, seen[player.Country], "country %s assigned twice", player.Country)
			seen[player.Country] = true
		}
	})

	t.Run("Stamps the start time from the clock", func(t *testing.T) {
		// Given: a machine with a mock clock
		clock := quartz.NewMock(t)
		machine := NewMachine(catalog.Standard{}, randutil.New(1), clock)

		// When: the game is started
		game := mustApply(t, machine, newLobby(alice, bob, carol), Start(false, false))

		// Then: the start time is the clock's time
		assert.Equal(t, clock.Now(), game.StartedAt)
	})

	t.Run("Rejects an invalid roster size", func(t *testing.T) {
		// Given: a lobby with two players
		machine := newTestMachine(t, 1)

		// When: the game is started
		game, err := machine.Apply(newLobby(alice, bob), Start(false, false))

		// Then: the start is rejected
		require.ErrorIs(t, err, apperror.ErrInvalidPlayerCount)
		assert.True(t, game.IsRejected())
	})

	t.Run("Rejects a second start", func(t *testing.T) {
		// Given: a started game
		machine := newTestMachine(t, 1)
		game := startedGame(t, machine, alice, bob, carol)

		// When: it is started again
		_, err := machine.Apply(game, Start(false, false))

		// Then: the game is already started
		require.ErrorIs(t, err, apperror.ErrGameAlreadyStarted)
	})
}

func TestMachine_Lobby(t *testing.T) {
	t.Run("Join and quit change the roster", func(t *testing.T) {
		// Given: a lobby hosted by alice
		machine := newTestMachine(t, 1)
		game := newLobby(alice)

		// When: bob joins and alice quits
		game = mustApply(t, machine, game, Join(bob))
		game = mustApply(t, machine, game, Quit(alice.ID))

		// Then: only bob is left
		require.Len(t, game.Players, 1)
		assert.Equal(t, bob.ID, game.Players[0].ID)
		assert.Equal(t, "Waiting for players", game.Status)
	})

	t.Run("Join and quit are refused after start", func(t *testing.T) {
		// Given: a started game
		machine := newTestMachine(t, 1)
		game := startedGame(t, machine, alice, bob, carol)

		// When: someone joins or quits
		_, joinErr := machine.Apply(game, Join(dave))
		_, quitErr := machine.Apply(game, Quit(alice.ID))

		// Then: both are refused
		require.ErrorIs(t, joinErr, apperror.ErrGameAlreadyStarted)
		require.ErrorIs(t, quitErr, apperror.ErrGameAlreadyStarted)
	})

	t.Run("Unknown actions leave the game unchanged", func(t *testing.T) {
		// Given: a lobby
		machine := newTestMachine(t, 1)
		game := newLobby(alice, bob)

		// When: an unknown action is applied
		next, err := machine.Apply(game, Action{Type: "DANCE"})

		// Then: nothing changes
		require.NoError(t, err)
		assert.Equal(t, game, next)
	})

	t.Run("Bot actions from callers are ignored", func(t *testing.T) {
		// Given: a started game waiting for a human
		machine := newTestMachine(t, 1)
		game := startedGame(t, machine, alice, bob, carol)

		// When: a bot action is sent from outside
		next, err := machine.Apply(game, Action{Type: "BOT"})

		// Then: it is ignored
		require.NoError(t, err)
		assert.Same(t, game, next)
	})
}

func TestMachine_Bid(t *testing.T) {
	t.Run("Zero starting bid is rejected without mutation", func(t *testing.T) {
		// Given: a started game and its serialized form
		machine := newTestMachine(t, 1)
		game := startedGame(t, machine, alice, bob, carol)
		before, err := json.Marshal(game)
		require.NoError(t, err)

		// When: the auctioneer opens with zero
		rejected, err := machine.Apply(game, Bid(alice.ID, 0))

		// Then: the bid is rejected and the input game is untouched
		require.ErrorIs(t, err, apperror.ErrZeroStartingBid)
		assert.Equal(t, "starting bid can't be zero", rejected.ErrorMessage)

		after, err := json.Marshal(game)
		require.NoError(t, err)
		assert.JSONEq(t, string(before), string(after))
	})

	t.Run("Bid equal to the starting bid is rejected", func(t *testing.T) {
		// Given: alice opened with 3
		machine := newTestMachine(t, 1)
		game := startedGame(t, machine, alice, bob, carol)
		game = mustApply(t, machine, game, Bid(alice.ID, 3))
		assert.Equal(t, "Starting bid: 3", game.Status)

		// When: bob bids 3
		rejected, err := machine.Apply(game, Bid(bob.ID, 3))

		// Then: the bid is rejected
		require.ErrorIs(t, err, apperror.ErrEqualToStartingBid)
		assert.Equal(t, "can't bid equal to starting bid", rejected.ErrorMessage)
	})

	t.Run("Others wait for the starting bid", func(t *testing.T) {
		// Given: a started game where alice opens
		machine := newTestMachine(t, 1)
		game := startedGame(t, machine, alice, bob, carol)

		// When: bob bids first
		_, err := machine.Apply(game, Bid(bob.ID, 4))

		// Then: the bid is rejected
		require.ErrorIs(t, err, apperror.ErrAwaitingStartingBid)
	})

	t.Run("Defensive rejections", func(t *testing.T) {
		machine := newTestMachine(t, 1)
		lobby := newLobby(alice, bob, carol)
		game := startedGame(t, machine, alice, bob, carol)
		opened := mustApply(t, machine, game, Bid(alice.ID, 2))

		cases := []struct {
			name   string
			game   *entity.Game
			action Action
			err    error
		}{
			{"bid in lobby", lobby, Bid(alice.ID, 1), apperror.ErrGameIsNotStarted},
			{"unknown player", game, Bid("mallory", 1), apperror.ErrPlayerNotInGame},
			{"negative bid", opened, Bid(bob.ID, -1), apperror.ErrNegativeBid},
			{"second bid", opened, Bid(alice.ID, 5), apperror.ErrAlreadyBid},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				// When: the action is applied
				rejected, err := machine.Apply(tc.game, tc.action)

				// Then: it is rejected with the expected error
				require.ErrorIs(t, err, tc.err)
				assert.True(t, rejected.IsRejected())
			})
		}
	})

	t.Run("Rejected state passes through", func(t *testing.T) {
		// Given: a rejected sentinel
		machine := newTestMachine(t, 1)
		rejected := entity.Rejected(apperror.ErrZeroStartingBid)

		// When: another action is applied to it
		next, err := machine.Apply(rejected, Bid(alice.ID, 1))

		// Then: it is returned unchanged
		require.NoError(t, err)
		assert.Same(t, rejected, next)
	})

	t.Run("Three players cycle turns and finish with a final round", func(t *testing.T) {
		// Given: a three-player game of humans
		machine := newTestMachine(t, 1)
		game := startedGame(t, machine, alice, bob, carol)

		// When: fifteen regular auctions are played
		for i := 0; i < 15; i++ {
			require.Equal(t, entity.Turn(i%3), game.Turn, "auction %d", i+1)
			require.Equal(t, entity.Round(i/3+1), game.Round, "auction %d", i+1)
			game = playRegularAuction(t, machine, game)
		}

		// Then: the last company is bid on by everyone at once
		require.True(t, game.Turn.IsFinal())
		require.True(t, game.Round.IsFinal())
		assert.Equal(t, entity.PhaseFinalRound, game.Phase)
		assert.Empty(t, game.UpcomingAuctions)
		assert.Equal(t, 16, game.AuctionIndex)

		// When: everyone bids, zero included
		game = mustApply(t, machine, game, Bid(carol.ID, 0))
		game = mustApply(t, machine, game, Bid(alice.ID, 3))
		game = mustApply(t, machine, game, Bid(bob.ID, 1))

		// Then: the game is over with the highest bidder winning
		assert.True(t, game.GameOver)
		assert.Equal(t, entity.PhaseGameOver, game.Phase)
		assert.Equal(t, "Game over!", game.Status)
		assert.Len(t, game.Auctions, 16)

		last := game.Auctions[15]
		assert.Equal(t, alice.ID, last.Winner)
		assert.Equal(t, entity.FinalRound, last.Round)

		for i, auction := range game.Auctions[:15] {
			assert.Equal(t, game.Players[i%3].ID, auction.Winner)
			assert.Equal(t, entity.Round(i/3+1), auction.Round)
		}
	})

	t.Run("Final round ties are never rebid", func(t *testing.T) {
		// Given: a three-player game in its final round
		machine := newTestMachine(t, 1)
		game := startedGame(t, machine, alice, bob, carol)
		for i := 0; i < 15; i++ {
			game = playRegularAuction(t, machine, game)
		}
		require.True(t, game.Turn.IsFinal())

		// When: two players tie for the highest bid
		game = mustApply(t, machine, game, Bid(alice.ID, 4))
		game = mustApply(t, machine, game, Bid(bob.ID, 4))
		game = mustApply(t, machine, game, Bid(carol.ID, 1))

		// Then: no rebid is opened and the company goes to nobody
		assert.Len(t, game.Auctions, 16)
		assert.True(t, game.GameOver)
		assert.Equal(t, 0, game.Auctions[15].Rebid)
		assert.Empty(t, game.Auctions[15].Winner)
		assert.Equal(t, entity.FinalRound, game.Auctions[15].Round)
	})

	t.Run("Final round with every bid equal stays winnerless", func(t *testing.T) {
		// Given: a three-player game in its final round
		machine := newTestMachine(t, 1)
		game := startedGame(t, machine, alice, bob, carol)
		for i := 0; i < 15; i++ {
			game = playRegularAuction(t, machine, game)
		}

		// When: everyone bids the same
		for _, player := range []entity.Player{alice, bob, carol} {
			game = mustApply(t, machine, game, Bid(player.ID, 2))
		}

		// Then: the company goes to nobody
		assert.True(t, game.GameOver)
		assert.Empty(t, game.Auctions[15].Winner)
	})

	t.Run("Four players with three bots end after sixteen human bids", func(t *testing.T) {
		// Given: one human and three bots
		machine := newTestMachine(t, 1)
		game := startedGame(t, machine, alice,
			entity.NewBotPlayer("1"), entity.NewBotPlayer("2"), entity.NewBotPlayer("3"))

		// When: the human bids 5 every time it is asked to
		bids := 0
		for !game.GameOver {
			require.Less(t, bids, 16)
			game = mustApply(t, machine, game, Bid(alice.ID, 5))
			bids++
		}

		// Then: the game is over after exactly sixteen bids
		assert.Equal(t, 16, bids)
		assert.Equal(t, "Game over!", game.Status)
		assert.Len(t, game.Auctions, 16)
		for _, auction := range game.Auctions {
			assert.Equal(t, alice.ID, auction.Winner)
		}
	})

	t.Run("Three consecutive ties award the highest unique bid", func(t *testing.T) {
		// Given: alice opened with 3
		machine := newTestMachine(t, 1)
		game := startedGame(t, machine, alice, bob, carol)
		game = mustApply(t, machine, game, Bid(alice.ID, 3))

		// When: bob and carol tie with 5 three times
		for i := 1; i <= 3; i++ {
			game = mustApply(t, machine, game, Bid(bob.ID, 5))
			game = mustApply(t, machine, game, Bid(carol.ID, 5))

			if i < 3 {
				require.Equal(t, entity.PhaseAwaitingRebid, game.Phase)
				require.Equal(t, i, game.CurrentAuction().Rebid)
				require.Equal(t, entity.Turn(0), game.Turn)
				assert.Contains(t, game.Status, "Tie between Bob and Carol!")

				// only the tied bids are cleared
				assert.True(t, game.CurrentAuction().Bids.Has(alice.ID))
				assert.False(t, game.CurrentAuction().Bids.Has(bob.ID))
				assert.False(t, game.CurrentAuction().Bids.Has(carol.ID))
			}
		}

		// Then: the third entry goes to alice and the earlier ones to nobody
		require.Len(t, game.Auctions, 4)
		assert.Empty(t, game.Auctions[0].Winner)
		assert.Empty(t, game.Auctions[1].Winner)
		assert.Equal(t, alice.ID, game.Auctions[2].Winner)
		assert.Equal(t, 2, game.Auctions[2].Rebid)
		for _, auction := range game.Auctions[:3] {
			assert.Equal(t, entity.Round(1), auction.Round)
			assert.Equal(t, game.Auctions[0].Company, auction.Company)
		}

		// And: the turn moves on to bob
		assert.Equal(t, entity.Turn(1), game.Turn)
		assert.Equal(t, 2, game.AuctionIndex)
	})

	t.Run("A tie below the highest bid is not rebid", func(t *testing.T) {
		// Given: alice opened with 4
		machine := newTestMachine(t, 1)
		game := startedGame(t, machine, alice, bob, carol)
		game = mustApply(t, machine, game, Bid(alice.ID, 4))

		// When: bob and carol tie below her
		game = mustApply(t, machine, game, Bid(bob.ID, 1))
		game = mustApply(t, machine, game, Bid(carol.ID, 1))

		// Then: alice wins outright
		assert.Equal(t, alice.ID, game.Auctions[0].Winner)
		assert.Len(t, game.Auctions, 2)
	})
}

func TestMachine_Bots(t *testing.T) {
	t.Run("A bot in the first seat opens immediately", func(t *testing.T) {
		// Given: a bot in seat zero
		machine := newTestMachine(t, 1)
		bot := entity.NewBotPlayer("1")

		// When: the game starts
		game := startedGame(t, machine, bot, alice, bob)

		// Then: the bot opened with 1
		amount, ok := game.CurrentAuction().Bids.Get(bot.ID)
		require.True(t, ok)
		assert.Equal(t, 1, amount)
		assert.Equal(t, bot.ID, game.CurrentAuction().StartingPlayer)
		assert.Equal(t, entity.PhaseAwaitingBids, game.Phase)
	})

	t.Run("Bots wait for a human auctioneer", func(t *testing.T) {
		// Given: a human in seat zero and two bots
		machine := newTestMachine(t, 1)

		// When: the game starts
		game := startedGame(t, machine, alice, entity.NewBotPlayer("1"), entity.NewBotPlayer("2"))

		// Then: nobody has bid yet
		assert.Equal(t, 0, game.CurrentAuction().Bids.Len())
	})

	t.Run("An all-bot game plays to the end on start", func(t *testing.T) {
		// Given: five bots
		machine := newTestMachine(t, 1)
		var bots []entity.Player
		for _, id := range []string{"1", "2", "3", "4", "5"} {
			bots = append(bots, entity.NewBotPlayer(id))
		}

		// When: the game starts
		game := startedGame(t, machine, bots...)

		// Then: every auction is won by its auctioneer
		assert.True(t, game.GameOver)
		assert.Equal(t, "Game over!", game.Status)
		require.Len(t, game.Auctions, 15)
		for i, auction := range game.Auctions {
			assert.Equal(t, bots[i%5].ID, auction.Winner)
		}
	})

	t.Run("Seeded tutorial games are reproducible", func(t *testing.T) {
		// Given: two machines with the same seed and clock
		clock := quartz.NewMock(t)
		first := NewMachine(catalog.Standard{}, randutil.New(7), clock)
		second := NewMachine(catalog.Standard{}, randutil.New(7), clock)

		lobby := newLobby(entity.NewBotPlayer("1"), entity.NewBotPlayer("2"), entity.NewBotPlayer("3"))

		// When: both play a shuffled tutorial game
		one := mustApply(t, first, lobby, Start(true, true))
		two := mustApply(t, second, lobby, Start(true, true))

		// Then: they end the same way
		assert.True(t, one.GameOver)
		assert.True(t, one.Tutorial)
		assert.Equal(t, one, two)

		for _, auction := range one.Auctions {
			if startingBid, ok := auction.StartingBid(); ok {
				assert.GreaterOrEqual(t, startingBid, 1)
				assert.LessOrEqual(t, startingBid, 10)
			}
		}
	})

	t.Run("NextBid bumps a bid equal to the starting bid", func(t *testing.T) {
		// Given: alice holds a starting bid of 0 ahead of a bot
		machine := newTestMachine(t, 1)
		game := startedGame(t, machine, alice, bob, entity.NewBotPlayer("1"))
		game.CurrentAuction().Bids.Set(alice.ID, 0)
		game.CurrentAuction().StartingPlayer = alice.ID

		// When: the policy picks the bot bid
		userID, amount, ok := machine.bots.NextBid(game)

		// Then: the bot avoids the starting bid
		require.True(t, ok)
		assert.Equal(t, entity.BotPrefix+"1", userID)
		assert.Equal(t, 1, amount)
	})
}

func TestMachine_Peek(t *testing.T) {
	t.Run("Peeks at the previous auction once", func(t *testing.T) {
		// Given: a five-player game with one auction closed
		machine := newTestMachine(t, 1)
		game := startedGame(t, machine, alice, bob, carol, dave, erin)

		_, err := machine.Apply(game, Peek(bob.ID))
		require.ErrorIs(t, err, apperror.ErrNothingToPeek)

		game = playRegularAuction(t, machine, game)

		// When: bob peeks
		game = mustApply(t, machine, game, Peek(bob.ID))

		// Then: the previous auction index is recorded
		assert.Equal(t, map[string]int{bob.ID: 0}, game.Peeks)

		// When: bob peeks again
		_, err = machine.Apply(game, Peek(bob.ID))

		// Then: it is refused
		require.ErrorIs(t, err, apperror.ErrAlreadyPeeked)
	})

	t.Run("Peeking needs five players", func(t *testing.T) {
		// Given: a three-player game with one auction closed
		machine := newTestMachine(t, 1)
		game := startedGame(t, machine, alice, bob, carol)
		game = playRegularAuction(t, machine, game)

		// When: bob peeks
		_, err := machine.Apply(game, Peek(bob.ID))

		// Then: it is unavailable
		require.ErrorIs(t, err, apperror.ErrPeekUnavailable)
	})
}

func TestMachine_Flip(t *testing.T) {
	t.Run("Flipping ends the game", func(t *testing.T) {
		// Given: a started game
		machine := newTestMachine(t, 1)
		game := startedGame(t, machine, alice, bob, carol)

		// When: bob flips the table
		game = mustApply(t, machine, game, Flip(bob.ID))

		// Then: the game is over
		assert.True(t, game.GameOver)
		assert.Equal(t, bob.ID, game.FlippedBy)
		assert.Equal(t, "Bob flipped the table!", game.Status)

		_, err := machine.Apply(game, Bid(alice.ID, 2))
		require.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("Flipping needs a started game", func(t *testing.T) {
		// Given: a lobby
		machine := newTestMachine(t, 1)

		// When: alice flips the table
		_, err := machine.Apply(newLobby(alice, bob, carol), Flip(alice.ID))

		// Then: the game is not started
		require.ErrorIs(t, err, apperror.ErrGameIsNotStarted)
	})
}
