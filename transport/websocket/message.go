package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/qe-backend/internal/entity"
	"github.com/rocketscienceinc/qe-backend/internal/view"
)

const writeWait = 10 * time.Second

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Request is the payload clients send with an action. Unused fields are
// ignored per action.
type Request struct {
	Name     string `json:"name,omitempty"`
	GameID   string `json:"gameId,omitempty"`
	Amount   int    `json:"amount,omitempty"`
	Tutorial bool   `json:"tutorial,omitempty"`
}

type ResponsePayload struct {
	Player *entity.Player `json:"player,omitempty"`
	Game   *view.Game     `json:"game,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// client is one open connection. Writes are serialized because gorilla
// connections allow a single concurrent writer.
type client struct {
	userID string
	conn   *websocket.Conn
	clock  quartz.Clock

	writeMutex sync.Mutex
}

func (that *client) sendMessage(action string, payload ResponsePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.writeMutex.Lock()
	defer that.writeMutex.Unlock()

	if err = that.conn.SetWriteDeadline(that.clock.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = that.conn.WriteJSON(Message{Action: action, Payload: body}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *client) sendErrorResponse(action string, errorMessage string, game *view.Game) error {
	return that.sendMessage(action, ResponsePayload{Error: errorMessage, Game: game})
}
