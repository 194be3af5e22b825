package entity

import (
	"maps"
	"slices"
	"time"
)

type Phase string

const (
	PhaseLobby            Phase = "LOBBY"
	PhaseAwaitingStartBid Phase = "AWAITING_START_BID"
	PhaseAwaitingBids     Phase = "AWAITING_BIDS"
	PhaseAwaitingRebid    Phase = "AWAITING_REBID"
	PhaseFinalRound       Phase = "FINAL_ROUND"
	PhaseGameOver         Phase = "GAME_OVER"
)

const (
	MinPlayers = 3
	MaxPlayers = 5

	// PeekPlayerCount is the only roster size that plays with peeks.
	PeekPlayerCount = 5
)

type Game struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Phase  Phase  `json:"phase"`
	Status string `json:"status"`

	Round         Round `json:"round"`
	Turn          Turn  `json:"turn"`
	AuctionIndex  int   `json:"auctionIndex"`
	TotalAuctions int   `json:"totalAuctions"`

	Players          []Player       `json:"players"`
	Auctions         []Auction      `json:"auctions"`
	UpcomingAuctions []Company      `json:"upcomingAuctions,omitempty"`
	Peeks            map[string]int `json:"peeks,omitempty"`

	Tutorial  bool   `json:"tutorial,omitempty"`
	GameOver  bool   `json:"gameOver"`
	FlippedBy string `json:"flippedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	StartedAt time.Time `json:"startedAt"`

	// ErrorMessage is only set on the sentinel returned for a rejected action.
	ErrorMessage string `json:"errorMessage,omitempty"`
}

func NewGame(id, name string, host Player, createdAt time.Time) *Game {
	return &Game{
		ID:        id,
		Name:      name,
		Phase:     PhaseLobby,
		Status:    "Waiting for players",
		Players:   []Player{host},
		CreatedAt: createdAt,
	}
}

// Rejected builds the sentinel state describing a refused action. It must
// never be stored in place of a real game.
func Rejected(err error) *Game {
	return &Game{ErrorMessage: err.Error()}
}

func (that *Game) Clone() *Game {
	clone := *that
	clone.Players = slices.Clone(that.Players)
	clone.UpcomingAuctions = slices.Clone(that.UpcomingAuctions)
	clone.Peeks = maps.Clone(that.Peeks)

	if that.Auctions != nil {
		clone.Auctions = make([]Auction, len(that.Auctions))
		for i, auction := range that.Auctions {
			clone.Auctions[i] = auction.Clone()
		}
	}

	return &clone
}

func (that *Game) IsRejected() bool {
	return that.ErrorMessage != ""
}

func (that *Game) IsLobby() bool {
	return that.Phase == PhaseLobby
}

func (that *Game) IsFinished() bool {
	return that.Phase == PhaseGameOver
}

func (that *Game) IsActive() bool {
	return !that.IsLobby() && !that.IsFinished()
}

// CurrentAuction is the trailing, open auction. It is nil before the deal.
func (that *Game) CurrentAuction() *Auction {
	if len(that.Auctions) == 0 {
		return nil
	}
	return &that.Auctions[len(that.Auctions)-1]
}

// PreviousAuction is the auction entry before the open one.
func (that *Game) PreviousAuction() *Auction {
	if len(that.Auctions) < 2 {
		return nil
	}
	return &that.Auctions[len(that.Auctions)-2]
}

// Auctioneer is the seat that opens the current auction. It is nil outside
// of regular rounds.
func (that *Game) Auctioneer() *Player {
	if that.Turn.IsFinal() || int(that.Turn) >= len(that.Players) || that.IsLobby() {
		return nil
	}
	return &that.Players[that.Turn]
}

func (that *Game) Player(id string) (*Player, bool) {
	for i := range that.Players {
		if that.Players[i].ID == id {
			return &that.Players[i], true
		}
	}
	return nil, false
}

func (that *Game) HasPlayer(id string) bool {
	_, ok := that.Player(id)
	return ok
}

func (that *Game) Bots() []Player {
	var bots []Player
	for _, player := range that.Players {
		if player.IsBot() {
			bots = append(bots, player)
		}
	}
	return bots
}
