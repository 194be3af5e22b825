package engine

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/qe-backend/internal/entity"
)

const (
	statusLobby    = "Waiting for players"
	statusGameOver = "Game over!"
	statusFinal    = "Final round! Everyone bids on the last company"
)

// describe renders the human readable status line for the game's phase.
func describe(game *entity.Game) string {
	switch game.Phase {
	case entity.PhaseLobby:
		return statusLobby
	case entity.PhaseAwaitingStartBid:
		if auctioneer := game.Auctioneer(); auctioneer != nil {
			return fmt.Sprintf("Waiting for %s to set a starting bid", auctioneer.Name)
		}
	case entity.PhaseAwaitingBids:
		if startingBid, ok := game.CurrentAuction().StartingBid(); ok {
			return fmt.Sprintf("Starting bid: %d", startingBid)
		}
	case entity.PhaseAwaitingRebid:
		return describeTie(game)
	case entity.PhaseFinalRound:
		return statusFinal
	case entity.PhaseGameOver:
		if player, ok := game.Player(game.FlippedBy); ok {
			return fmt.Sprintf("%s flipped the table!", player.Name)
		}
		return statusGameOver
	}

	return ""
}

func describeTie(game *entity.Game) string {
	tied := game.PreviousAuction()
	if tied == nil {
		return ""
	}

	_, bidders := tied.Highest(game.Players)
	names := make([]string, 0, len(bidders))
	for _, id := range bidders {
		if player, ok := game.Player(id); ok {
			names = append(names, player.Name)
		}
	}

	current := game.CurrentAuction()

	return fmt.Sprintf("Tie between %s! Rebid %d of %d", joinNames(names), current.Rebid, entity.MaxRebids)
}

func joinNames(names []string) string {
	if len(names) < 2 {
		return strings.Join(names, "")
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}
