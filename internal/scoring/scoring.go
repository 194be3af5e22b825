// Package scoring computes per-player score breakdowns and the winner of a
// game from its auction history. It never modifies the game.
package scoring

import (
	"github.com/rocketscienceinc/qe-backend/internal/entity"
)

type Breakdown struct {
	TotalAuctionCount    int  `json:"totalAuctionCount"`
	TotalSpend           int  `json:"totalSpend"`
	TotalValue           int  `json:"totalValue"`
	PointsForZeros       int  `json:"pointsForZeros"`
	NaturalizationTotal  int  `json:"naturalizationTotal"`
	MonopolizationTotal  int  `json:"monopolizationTotal"`
	DiversificationTotal int  `json:"diversificationTotal"`
	LowestSpenderBonus   int  `json:"lowestSpenderBonus"`
	HighestSpender       bool `json:"highestSpender"`
	TotalScore           int  `json:"totalScore"`
}

// Result holds a breakdown per player id. Winner stays empty until the game
// is over; before that the numbers are only what is known so far.
type Result struct {
	Players map[string]Breakdown `json:"players"`
	Winner  string               `json:"winner,omitempty"`
	Final   bool                 `json:"final"`
}

func Score(game *entity.Game) Result {
	playerCount := len(game.Players)
	lookup := tablesFor(playerCount)

	won := make(map[string][]entity.Auction, playerCount)
	for _, auction := range game.Auctions {
		if auction.Winner != "" {
			won[auction.Winner] = append(won[auction.Winner], auction)
		}
	}

	result := Result{
		Players: make(map[string]Breakdown, playerCount),
		Final:   game.GameOver,
	}

	for _, player := range game.Players {
		result.Players[player.ID] = breakdownFor(game, player, won[player.ID], lookup)
	}

	if game.GameOver {
		applySpendingRanks(game, &result, lookup)
		result.Winner = pickWinner(game, result)
	}

	return result
}

func breakdownFor(game *entity.Game, player entity.Player, won []entity.Auction, lookup tables) Breakdown {
	var breakdown Breakdown

	breakdown.TotalAuctionCount = len(won)

	naturalized := 0
	sectorCounts := map[entity.Sector]int{player.Sector: 1}
	for _, auction := range won {
		amount, _ := auction.Bids.Get(player.ID)
		breakdown.TotalSpend += amount
		breakdown.TotalValue += auction.Value

		if auction.Country == player.Country {
			naturalized++
		}
		sectorCounts[auction.Sector]++
	}

	breakdown.PointsForZeros = pointsForZeros(game, player.ID)
	breakdown.NaturalizationTotal = lookup.naturalization.at(naturalized)

	for _, sector := range entity.Sectors {
		breakdown.MonopolizationTotal += lookup.monopolization.at(sectorCounts[sector])
	}

	for _, size := range diversificationSets(won) {
		breakdown.DiversificationTotal += lookup.diversification.at(size)
	}

	breakdown.TotalScore = totalScore(breakdown)

	return breakdown
}

func totalScore(breakdown Breakdown) int {
	return breakdown.TotalValue +
		breakdown.PointsForZeros +
		breakdown.NaturalizationTotal +
		breakdown.MonopolizationTotal +
		breakdown.DiversificationTotal +
		breakdown.LowestSpenderBonus
}

// pointsForZeros awards points for every early round in which the player bid
// zero on at least one auction entry. Three-player games have no such bonus.
func pointsForZeros(game *entity.Game, playerID string) int {
	if len(game.Players) == 3 {
		return 0
	}

	rounds := make(map[entity.Round]bool)
	for _, auction := range game.Auctions {
		if auction.Round < firstZeroBidRound || auction.Round > lastZeroBidRound {
			continue
		}

		if amount, ok := auction.Bids.Get(playerID); ok && amount == 0 {
			rounds[auction.Round] = true
		}
	}

	return len(rounds) * pointsPerZeroBid
}

// diversificationSets packs the won auctions first-fit into sets of distinct
// countries and returns the size of each set.
func diversificationSets(won []entity.Auction) []int {
	var sets []map[entity.Country]bool

	for _, auction := range won {
		placed := false
		for _, set := range sets {
			if !set[auction.Country] {
				set[auction.Country] = true
				placed = true
				break
			}
		}

		if !placed {
			sets = append(sets, map[entity.Country]bool{auction.Country: true})
		}
	}

	sizes := make([]int, len(sets))
	for i, set := range sets {
		sizes[i] = len(set)
	}

	return sizes
}

// applySpendingRanks rewards the lowest spenders and flags the highest ones,
// both over the whole roster.
func applySpendingRanks(game *entity.Game, result *Result, lookup tables) {
	if len(game.Players) == 0 {
		return
	}

	lowest, highest := -1, -1
	for _, player := range game.Players {
		spend := result.Players[player.ID].TotalSpend
		if lowest == -1 || spend < lowest {
			lowest = spend
		}
		if spend > highest {
			highest = spend
		}
	}

	for _, player := range game.Players {
		breakdown := result.Players[player.ID]

		if breakdown.TotalSpend == lowest {
			breakdown.LowestSpenderBonus = lookup.lowestSpender
		}
		breakdown.HighestSpender = breakdown.TotalSpend == highest
		breakdown.TotalScore = totalScore(breakdown)

		result.Players[player.ID] = breakdown
	}
}

// pickWinner walks the roster in seat order. Highest spenders can not win; a
// score tie goes to whoever spent less.
func pickWinner(game *entity.Game, result Result) string {
	winner := ""

	for _, player := range game.Players {
		contender := result.Players[player.ID]
		if contender.HighestSpender {
			continue
		}

		if winner == "" {
			winner = player.ID
			continue
		}

		incumbent := result.Players[winner]
		if contender.TotalScore > incumbent.TotalScore ||
			(contender.TotalScore == incumbent.TotalScore && contender.TotalSpend < incumbent.TotalSpend) {
			winner = player.ID
		}
	}

	return winner
}
