package entity

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Bids maps player ids to bid amounts, keeping the order bids were placed.
// A player without an entry has not bid; that is different from a zero bid.
// The zero value is ready to use.
type Bids struct {
	order   []string
	amounts map[string]int
}

type bidEntry struct {
	Player string `json:"player"`
	Amount int    `json:"amount"`
}

func (that *Bids) Get(playerID string) (int, bool) {
	amount, ok := that.amounts[playerID]
	return amount, ok
}

func (that *Bids) Has(playerID string) bool {
	_, ok := that.amounts[playerID]
	return ok
}

// Set records a bid. An existing bid is never overwritten; the caller gets
// false back instead.
func (that *Bids) Set(playerID string, amount int) bool {
	if that.Has(playerID) {
		return false
	}
	if that.amounts == nil {
		that.amounts = make(map[string]int)
	}
	that.order = append(that.order, playerID)
	that.amounts[playerID] = amount
	return true
}

func (that *Bids) Len() int {
	return len(that.order)
}

// Players returns bidder ids in bid order.
func (that *Bids) Players() []string {
	return slices.Clone(that.order)
}

func (that Bids) Clone() Bids {
	clone := Bids{order: slices.Clone(that.order)}
	if that.amounts != nil {
		clone.amounts = make(map[string]int, len(that.amounts))
		for id, amount := range that.amounts {
			clone.amounts[id] = amount
		}
	}
	return clone
}

// Without returns a copy with the given players' bids removed.
func (that Bids) Without(playerIDs ...string) Bids {
	var clone Bids
	for _, id := range that.order {
		if slices.Contains(playerIDs, id) {
			continue
		}
		clone.Set(id, that.amounts[id])
	}
	return clone
}

func (that Bids) MarshalJSON() ([]byte, error) {
	entries := make([]bidEntry, 0, len(that.order))
	for _, id := range that.order {
		entries = append(entries, bidEntry{Player: id, Amount: that.amounts[id]})
	}
	return json.Marshal(entries)
}

func (that *Bids) UnmarshalJSON(data []byte) error {
	var entries []bidEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to unmarshal bids: %w", err)
	}

	*that = Bids{}
	for _, entry := range entries {
		that.Set(entry.Player, entry.Amount)
	}
	return nil
}
