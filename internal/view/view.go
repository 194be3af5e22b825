// Package view turns a game into what a single player is allowed to see.
package view

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/rocketscienceinc/qe-backend/internal/entity"
	"github.com/rocketscienceinc/qe-backend/internal/scoring"
)

// HiddenAmount replaces a bid the viewer is not allowed to see.
const HiddenAmount = "?"

type Bid struct {
	Player string `json:"player"`
	Amount string `json:"amount"`
}

type Auction struct {
	entity.Company

	Bids           []Bid        `json:"bids"`
	StartingPlayer string       `json:"startingPlayer,omitempty"`
	Winner         string       `json:"winner,omitempty"`
	Rebid          int          `json:"rebid"`
	Round          entity.Round `json:"round,omitempty"`
}

type Game struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Phase  entity.Phase `json:"phase"`
	Status string       `json:"status"`

	Round         entity.Round `json:"round"`
	Turn          entity.Turn  `json:"turn"`
	AuctionIndex  int          `json:"auctionIndex"`
	TotalAuctions int          `json:"totalAuctions"`

	Players       []entity.Player `json:"players"`
	Auctions      []Auction       `json:"auctions"`
	UpcomingCount int             `json:"upcomingCount"`
	Peeks         map[string]int  `json:"peeks,omitempty"`

	Tutorial  bool   `json:"tutorial,omitempty"`
	GameOver  bool   `json:"gameOver"`
	FlippedBy string `json:"flippedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	StartedAt time.Time `json:"startedAt"`

	CurrentUser string                       `json:"currentUser"`
	Scores      map[string]scoring.Breakdown `json:"scores"`
	Winner      string                       `json:"winner,omitempty"`

	// Hash changes whenever anything above changes for this viewer.
	Hash string `json:"hash"`
}

// Redact builds the view of game for viewerID. Opponents' sectors and open
// bids stay hidden until the game is over, and so does everyone's score but
// the viewer's own.
func Redact(game *entity.Game, viewerID string) (*Game, error) {
	result := scoring.Score(game)

	redacted := &Game{
		ID:            game.ID,
		Name:          game.Name,
		Phase:         game.Phase,
		Status:        game.Status,
		Round:         game.Round,
		Turn:          game.Turn,
		AuctionIndex:  game.AuctionIndex,
		TotalAuctions: game.TotalAuctions,
		Players:       redactPlayers(game, viewerID),
		Auctions:      make([]Auction, 0, len(game.Auctions)),
		UpcomingCount: len(game.UpcomingAuctions),
		Peeks:         game.Peeks,
		Tutorial:      game.Tutorial,
		GameOver:      game.GameOver,
		FlippedBy:     game.FlippedBy,
		CreatedAt:     game.CreatedAt,
		StartedAt:     game.StartedAt,
		CurrentUser:   viewerID,
		Scores:        make(map[string]scoring.Breakdown),
		Winner:        result.Winner,
	}

	for i := range game.Auctions {
		redacted.Auctions = append(redacted.Auctions, redactAuction(game, i, viewerID))
	}

	for id, breakdown := range result.Players {
		if game.GameOver || id == viewerID {
			redacted.Scores[id] = breakdown
		}
	}

	hash, err := hashOf(redacted)
	if err != nil {
		return nil, err
	}
	redacted.Hash = hash

	return redacted, nil
}

func redactPlayers(game *entity.Game, viewerID string) []entity.Player {
	players := make([]entity.Player, len(game.Players))
	for i, player := range game.Players {
		if !game.GameOver && player.ID != viewerID {
			player.Sector = ""
		}
		players[i] = player
	}
	return players
}

func redactAuction(game *entity.Game, index int, viewerID string) Auction {
	auction := game.Auctions[index]
	open := index == len(game.Auctions)-1 && !auction.IsClosed() && !game.GameOver

	redacted := Auction{
		Company:        auction.Company,
		Bids:           make([]Bid, 0, auction.Bids.Len()),
		StartingPlayer: auction.StartingPlayer,
		Winner:         auction.Winner,
		Rebid:          auction.Rebid,
		Round:          auction.Round,
	}

	masked := len(game.Players) == entity.PeekPlayerCount && !game.GameOver && !peeked(game, index, viewerID)
	highestLosing := highestLosingBid(&auction)

	for _, playerID := range auction.Bids.Players() {
		amount, _ := auction.Bids.Get(playerID)
		shown := strconv.Itoa(amount)

		switch {
		case playerID == viewerID:
		case open && playerID != auction.StartingPlayer:
			shown = HiddenAmount
		case masked && playerID == auction.Winner:
			shown = ">" + strconv.Itoa(highestLosing)
		}

		redacted.Bids = append(redacted.Bids, Bid{Player: playerID, Amount: shown})
	}

	return redacted
}

func peeked(game *entity.Game, index int, viewerID string) bool {
	peekedIndex, ok := game.Peeks[viewerID]
	return ok && peekedIndex == index
}

func highestLosingBid(auction *entity.Auction) int {
	highest := 0
	for _, playerID := range auction.Bids.Players() {
		if playerID == auction.Winner {
			continue
		}
		if amount, _ := auction.Bids.Get(playerID); amount > highest {
			highest = amount
		}
	}
	return highest
}

func hashOf(game *Game) (string, error) {
	data, err := json.Marshal(game)
	if err != nil {
		return "", fmt.Errorf("failed to marshal view: %w", err)
	}

	return strconv.FormatUint(xxhash.Sum64(data), 16), nil
}
