package apperror

import "errors"

var (
	ErrGameFinished        = errors.New("game is already finished")
	ErrGameIsNotStarted    = errors.New("game is not started")
	ErrGameAlreadyStarted  = errors.New("game has already started")
	ErrInvalidPlayerCount  = errors.New("a game needs between 3 and 5 players")
	ErrPlayerNotInGame     = errors.New("player is not in this game")
	ErrPlayerAlreadyInGame = errors.New("player is already in this game")
	ErrGameIsFull          = errors.New("game is full")

	ErrZeroStartingBid     = errors.New("starting bid can't be zero")
	ErrEqualToStartingBid  = errors.New("can't bid equal to starting bid")
	ErrAwaitingStartingBid = errors.New("wait for the starting bid")
	ErrNegativeBid         = errors.New("bid can't be negative")
	ErrAlreadyBid          = errors.New("you already bid on this auction")

	ErrPeekUnavailable = errors.New("peeking is only available in 5-player games")
	ErrAlreadyPeeked   = errors.New("you already used your peek")
	ErrNothingToPeek   = errors.New("there is no previous auction to peek at")
)
