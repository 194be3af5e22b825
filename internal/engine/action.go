package engine

import "github.com/rocketscienceinc/qe-backend/internal/entity"

type ActionType string

const (
	ActionJoin  ActionType = "JOIN"
	ActionQuit  ActionType = "QUIT"
	ActionStart ActionType = "START"
	ActionBid   ActionType = "BID"
	ActionPeek  ActionType = "PEEK"
	ActionFlip  ActionType = "FLIP"

	// actionBot lets computer players catch up. It is never accepted from
	// callers.
	actionBot ActionType = "BOT"
)

type Action struct {
	Type ActionType

	Player entity.Player
	UserID string
	Amount int

	Shuffle  bool
	Tutorial bool
}

func Join(player entity.Player) Action {
	return Action{Type: ActionJoin, Player: player}
}

func Quit(userID string) Action {
	return Action{Type: ActionQuit, UserID: userID}
}

// Start deals the game. Tests pass shuffle=false to keep seat and deck order.
func Start(shuffle, tutorial bool) Action {
	return Action{Type: ActionStart, Shuffle: shuffle, Tutorial: tutorial}
}

func Bid(userID string, amount int) Action {
	return Action{Type: ActionBid, UserID: userID, Amount: amount}
}

func Peek(userID string) Action {
	return Action{Type: ActionPeek, UserID: userID}
}

// Flip ends an active game on behalf of one of its players.
func Flip(userID string) Action {
	return Action{Type: ActionFlip, UserID: userID}
}

func bot() Action {
	return Action{Type: actionBot}
}
