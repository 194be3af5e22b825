package engine

import (
	"github.com/rocketscienceinc/qe-backend/internal/apperror"
	"github.com/rocketscienceinc/qe-backend/internal/entity"
)

// bid records a bid on the open auction and resolves it once every player
// has bid.
func (that *Machine) bid(game *entity.Game, userID string, amount int) ([]Action, error) {
	if err := validateBid(game, userID, amount); err != nil {
		return nil, err
	}

	auction := game.CurrentAuction()
	priorBids := auction.Bids.Len()

	auction.Bids.Set(userID, amount)
	if auctioneer := game.Auctioneer(); auctioneer != nil && auctioneer.ID == userID && auction.StartingPlayer == "" {
		auction.StartingPlayer = userID
	}

	if game.Phase == entity.PhaseAwaitingStartBid {
		game.Phase = entity.PhaseAwaitingBids
	}

	if priorBids != len(game.Players)-1 {
		return continueAfter(userID, false), nil
	}

	_, highestBidders := auction.Highest(game.Players)
	auction.Round = game.Round

	switch {
	case len(highestBidders) == 1:
		auction.Winner = highestBidders[0]
	case !game.Turn.IsFinal() && auction.Rebid < entity.MaxRebids:
		game.Auctions = append(game.Auctions, auction.RebidFor(highestBidders))
		game.Phase = entity.PhaseAwaitingRebid

		return []Action{bot()}, nil
	case auction.Rebid >= entity.MaxRebids:
		// third tie in a row
		if winner, ok := auction.HighestUnique(game.Players); ok {
			auction.Winner = winner
		}
	default:
		// a final round tie stays winnerless
	}

	if len(game.UpcomingAuctions) == 0 {
		game.GameOver = true
		game.Phase = entity.PhaseGameOver

		return continueAfter(userID, false), nil
	}

	openNextAuction(game)

	return continueAfter(userID, true), nil
}

func validateBid(game *entity.Game, userID string, amount int) error {
	switch {
	case game.IsLobby():
		return apperror.ErrGameIsNotStarted
	case game.IsFinished():
		return apperror.ErrGameFinished
	case !game.HasPlayer(userID):
		return apperror.ErrPlayerNotInGame
	case amount < 0:
		return apperror.ErrNegativeBid
	}

	auction := game.CurrentAuction()
	if auction.Bids.Has(userID) {
		return apperror.ErrAlreadyBid
	}

	if !game.Turn.IsFinal() && auction.Bids.Len() == 0 {
		if amount == 0 {
			return apperror.ErrZeroStartingBid
		}

		if auctioneer := game.Auctioneer(); auctioneer == nil || auctioneer.ID != userID {
			return apperror.ErrAwaitingStartingBid
		}
	}

	if startingBid, ok := auction.StartingBid(); ok && amount == startingBid {
		return apperror.ErrEqualToStartingBid
	}

	return nil
}

// openNextAuction deals the next company and moves the turn on. The last
// company of a three-player game is bid on by everyone at once.
func openNextAuction(game *entity.Game) {
	next := game.UpcomingAuctions[0]
	game.UpcomingAuctions = game.UpcomingAuctions[1:]
	game.Auctions = append(game.Auctions, entity.NewAuction(next))
	game.AuctionIndex++

	if len(game.Players) == 3 && len(game.UpcomingAuctions) == 0 {
		game.Turn = entity.FinalTurn
		game.Round = entity.FinalRound
		game.Phase = entity.PhaseFinalRound

		return
	}

	game.Turn = (game.Turn + 1) % entity.Turn(len(game.Players))
	if game.Turn == 0 {
		game.Round++
	}
	game.Phase = entity.PhaseAwaitingStartBid
}

// continueAfter lets bots catch up after a human bid, or after any bid that
// moved the game to a new auction.
func continueAfter(userID string, advanced bool) []Action {
	if !entity.IsBotID(userID) || advanced {
		return []Action{bot()}
	}
	return nil
}
