package entity

import "sort"

// MaxRebids is how many consecutive ties an auction may be re-run for.
const MaxRebids = 2

// Auction is one company up for bid. A tie among the highest bidders is
// re-run on a new Auction entry for the same company.
type Auction struct {
	Company

	Bids           Bids   `json:"bids"`
	StartingPlayer string `json:"startingPlayer,omitempty"`
	Winner         string `json:"winner,omitempty"`
	Rebid          int    `json:"rebid"`
	Round          Round  `json:"round,omitempty"`
}

func NewAuction(company Company) Auction {
	return Auction{Company: company}
}

func (that Auction) Clone() Auction {
	clone := that
	clone.Bids = that.Bids.Clone()
	return clone
}

// StartingBid is the amount placed by whoever opened the auction.
func (that *Auction) StartingBid() (int, bool) {
	if that.StartingPlayer == "" {
		return 0, false
	}
	return that.Bids.Get(that.StartingPlayer)
}

func (that *Auction) WinningBid() (int, bool) {
	if that.Winner == "" {
		return 0, false
	}
	return that.Bids.Get(that.Winner)
}

func (that *Auction) IsClosed() bool {
	return that.Round != 0
}

// Highest returns the top amount and every player holding it, in the order
// of the given roster.
func (that *Auction) Highest(players []Player) (int, []string) {
	highest := -1
	var bidders []string

	for _, player := range players {
		amount, ok := that.Bids.Get(player.ID)
		if !ok {
			continue
		}

		switch {
		case amount > highest:
			highest = amount
			bidders = []string{player.ID}
		case amount == highest:
			bidders = append(bidders, player.ID)
		}
	}

	return highest, bidders
}

// HighestUnique returns the player holding the largest amount that nobody
// else bid. The second result is false when every amount is shared.
func (that *Auction) HighestUnique(players []Player) (string, bool) {
	groups := make(map[int][]string)
	for _, player := range players {
		if amount, ok := that.Bids.Get(player.ID); ok {
			groups[amount] = append(groups[amount], player.ID)
		}
	}

	amounts := make([]int, 0, len(groups))
	for amount := range groups {
		amounts = append(amounts, amount)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(amounts)))

	for _, amount := range amounts {
		if len(groups[amount]) == 1 {
			return groups[amount][0], true
		}
	}

	return "", false
}

// RebidFor opens a re-run of this auction: every bid is carried over except
// the tied players', who must bid again.
func (that *Auction) RebidFor(tied []string) Auction {
	return Auction{
		Company:        that.Company,
		Bids:           that.Bids.Without(tied...),
		StartingPlayer: that.StartingPlayer,
		Rebid:          that.Rebid + 1,
	}
}
