package entity

import "strings"

// BotPrefix marks the ids of computer-controlled players.
const BotPrefix = "bot-"

type Player struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Country Country `json:"country,omitempty"`
	Sector  Sector  `json:"sector,omitempty"`
}

func NewBotPlayer(id string) Player {
	return Player{
		ID:   BotPrefix + id,
		Name: "Computer",
	}
}

func IsBotID(id string) bool {
	return strings.HasPrefix(id, BotPrefix)
}

func (that Player) IsBot() bool {
	return IsBotID(that.ID)
}
