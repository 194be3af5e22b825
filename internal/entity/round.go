package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

const finalLiteral = "final"

// Round is the game round counter. The simultaneous last auction of a
// three-player game is played in FinalRound.
type Round int

// FinalRound is encoded as the string "final" on the wire.
const FinalRound Round = -1

func (that Round) IsFinal() bool {
	return that == FinalRound
}

func (that Round) MarshalJSON() ([]byte, error) {
	return marshalOrdinal(int(that))
}

func (that *Round) UnmarshalJSON(data []byte) error {
	value, err := unmarshalOrdinal(data)
	if err != nil {
		return fmt.Errorf("round: %w", err)
	}
	*that = Round(value)
	return nil
}

// Turn is the seat index of the current auctioneer, or FinalTurn when no seat
// opens the auction.
type Turn int

const FinalTurn Turn = -1

func (that Turn) IsFinal() bool {
	return that == FinalTurn
}

func (that Turn) MarshalJSON() ([]byte, error) {
	return marshalOrdinal(int(that))
}

func (that *Turn) UnmarshalJSON(data []byte) error {
	value, err := unmarshalOrdinal(data)
	if err != nil {
		return fmt.Errorf("turn: %w", err)
	}
	*that = Turn(value)
	return nil
}

func marshalOrdinal(value int) ([]byte, error) {
	if value < 0 {
		return json.Marshal(finalLiteral)
	}
	return []byte(strconv.Itoa(value)), nil
}

func unmarshalOrdinal(data []byte) (int, error) {
	if bytes.Equal(data, []byte(`"`+finalLiteral+`"`)) {
		return -1, nil
	}

	var value int
	if err := json.Unmarshal(data, &value); err != nil {
		return 0, err
	}
	return value, nil
}
