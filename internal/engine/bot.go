package engine

import "github.com/rocketscienceinc/qe-backend/internal/entity"

const (
	minimalStartingBid = 1
	tutorialMaxBid     = 10
)

// BotPolicy picks bids for computer players. Outside tutorial games bots
// open at 1 and otherwise pass with 0; tutorial bots bid at random.
type BotPolicy struct {
	random Random
}

func NewBotPolicy(random Random) BotPolicy {
	return BotPolicy{random: random}
}

// NextBid returns the next bot bid the open auction is waiting for, if any.
func (that BotPolicy) NextBid(game *entity.Game) (string, int, bool) {
	if !game.IsActive() {
		return "", 0, false
	}

	auction := game.CurrentAuction()

	var waiting []entity.Player
	for _, bot := range game.Bots() {
		if !auction.Bids.Has(bot.ID) {
			waiting = append(waiting, bot)
		}
	}

	if len(waiting) == 0 {
		return "", 0, false
	}

	auctioneer := game.Auctioneer()
	if auctioneer != nil && !auction.Bids.Has(auctioneer.ID) {
		if auctioneer.IsBot() {
			return auctioneer.ID, that.startingBid(game), true
		}

		if auction.Bids.Len() == 0 {
			return "", 0, false
		}
	}

	amount := that.followingBid(game)
	if startingBid, ok := auction.StartingBid(); ok && amount == startingBid {
		amount++
	}

	return waiting[0].ID, amount, true
}

func (that BotPolicy) startingBid(game *entity.Game) int {
	if game.Tutorial {
		return 1 + that.random.IntN(tutorialMaxBid)
	}
	return minimalStartingBid
}

func (that BotPolicy) followingBid(game *entity.Game) int {
	if game.Tutorial {
		return that.random.IntN(tutorialMaxBid + 1)
	}
	return 0
}

// autoplay queues the next bot bid followed by another bot pass.
func (that *Machine) autoplay(game *entity.Game) []Action {
	userID, amount, ok := that.bots.NextBid(game)
	if !ok {
		return nil
	}

	return []Action{Bid(userID, amount), bot()}
}
