package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/qe-backend/internal/apperror"
	"github.com/rocketscienceinc/qe-backend/internal/entity"
	"github.com/rocketscienceinc/qe-backend/internal/repository"
	"github.com/rocketscienceinc/qe-backend/internal/view"
)

const internalErrorMessage = "something went wrong, try again"

// publicErrors may be shown to players as they are.
var publicErrors = []error{
	apperror.ErrGameFinished,
	apperror.ErrGameIsNotStarted,
	apperror.ErrGameAlreadyStarted,
	apperror.ErrInvalidPlayerCount,
	apperror.ErrPlayerNotInGame,
	apperror.ErrPlayerAlreadyInGame,
	apperror.ErrGameIsFull,
	apperror.ErrZeroStartingBid,
	apperror.ErrEqualToStartingBid,
	apperror.ErrAwaitingStartingBid,
	apperror.ErrNegativeBid,
	apperror.ErrAlreadyBid,
	apperror.ErrPeekUnavailable,
	apperror.ErrAlreadyPeeked,
	apperror.ErrNothingToPeek,
	repository.ErrGameNotFound,
}

func errorMessage(err error) string {
	for _, public := range publicErrors {
		if errors.Is(err, public) {
			return public.Error()
		}
	}
	return internalErrorMessage
}

func decodeRequest(msg *Message) (Request, error) {
	var request Request
	if len(msg.Payload) == 0 {
		return request, nil
	}

	if err := json.Unmarshal(msg.Payload, &request); err != nil {
		return request, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return request, nil
}

func (that *Server) handleConnect(ctx context.Context, current *client, msg *Message) error {
	log := that.logger.With("method", "handleConnect", "userID", current.userID)

	request, err := decodeRequest(msg)
	if err != nil {
		return current.sendErrorResponse(msg.Action, "invalid payload", nil)
	}

	player, err := that.gameUseCase.Connect(ctx, current.userID, request.Name)
	if err != nil {
		log.Error("failed to connect player", "error", err)
		return current.sendErrorResponse(msg.Action, errorMessage(err), nil)
	}

	payload := ResponsePayload{Player: player}

	if request.GameID != "" {
		game, err := that.gameUseCase.GetGame(ctx, request.GameID)
		if err != nil {
			log.Warn("failed to get game on reconnect", "gameID", request.GameID, "error", err)
		} else if game.HasPlayer(current.userID) {
			if payload.Game, err = view.Redact(game, current.userID); err != nil {
				return err
			}
		}
	}

	log.Info("player connected")

	return current.sendMessage(msg.Action, payload)
}

func (that *Server) handleNewGame(ctx context.Context, current *client, msg *Message) error {
	request, err := decodeRequest(msg)
	if err != nil {
		return current.sendErrorResponse(msg.Action, "invalid payload", nil)
	}

	game, err := that.gameUseCase.CreateGame(ctx, current.userID, request.Name)
	return that.respond(current, msg.Action, game, err)
}

func (that *Server) handleJoinGame(ctx context.Context, current *client, msg *Message) error {
	return that.withGame(ctx, current, msg, func(request Request) (*entity.Game, error) {
		return that.gameUseCase.JoinGame(ctx, request.GameID, current.userID)
	})
}

func (that *Server) handleAddBot(ctx context.Context, current *client, msg *Message) error {
	return that.withGame(ctx, current, msg, func(request Request) (*entity.Game, error) {
		return that.gameUseCase.AddBot(ctx, request.GameID, current.userID)
	})
}

func (that *Server) handleQuitGame(ctx context.Context, current *client, msg *Message) error {
	return that.withGame(ctx, current, msg, func(request Request) (*entity.Game, error) {
		return that.gameUseCase.QuitGame(ctx, request.GameID, current.userID)
	})
}

func (that *Server) handleStartGame(ctx context.Context, current *client, msg *Message) error {
	return that.withGame(ctx, current, msg, func(request Request) (*entity.Game, error) {
		return that.gameUseCase.StartGame(ctx, request.GameID, current.userID, request.Tutorial)
	})
}

func (that *Server) handleBid(ctx context.Context, current *client, msg *Message) error {
	return that.withGame(ctx, current, msg, func(request Request) (*entity.Game, error) {
		return that.gameUseCase.Bid(ctx, request.GameID, current.userID, request.Amount)
	})
}

func (that *Server) handlePeek(ctx context.Context, current *client, msg *Message) error {
	return that.withGame(ctx, current, msg, func(request Request) (*entity.Game, error) {
		return that.gameUseCase.Peek(ctx, request.GameID, current.userID)
	})
}

func (that *Server) handleFlip(ctx context.Context, current *client, msg *Message) error {
	return that.withGame(ctx, current, msg, func(request Request) (*entity.Game, error) {
		return that.gameUseCase.FlipTable(ctx, request.GameID, current.userID)
	})
}

// handleState sends the current game to the requester only.
func (that *Server) handleState(ctx context.Context, current *client, msg *Message) error {
	request, err := decodeRequest(msg)
	if err != nil || request.GameID == "" {
		return current.sendErrorResponse(msg.Action, "game id is required", nil)
	}

	game, err := that.gameUseCase.GetGame(ctx, request.GameID)
	if err != nil {
		return current.sendErrorResponse(msg.Action, errorMessage(err), nil)
	}

	redacted, err := view.Redact(game, current.userID)
	if err != nil {
		return err
	}

	return current.sendMessage(msg.Action, ResponsePayload{Game: redacted})
}

// withGame decodes a request that names a game and runs call with it.
func (that *Server) withGame(ctx context.Context, current *client, msg *Message, call func(Request) (*entity.Game, error)) error {
	request, err := decodeRequest(msg)
	if err != nil || request.GameID == "" {
		return current.sendErrorResponse(msg.Action, "game id is required", nil)
	}

	game, err := call(request)
	return that.respond(current, msg.Action, game, err)
}

// respond reports a failure to the requester together with the last good
// game, or broadcasts the new game to everyone seated at it.
func (that *Server) respond(current *client, action string, game *entity.Game, err error) error {
	log := that.logger.With("method", "respond", "action", action, "userID", current.userID)

	if err != nil {
		log.Info("action failed", "error", err)

		var redacted *view.Game
		if game != nil && game.HasPlayer(current.userID) {
			var redactErr error
			if redacted, redactErr = view.Redact(game, current.userID); redactErr != nil {
				return redactErr
			}
		}

		return current.sendErrorResponse(action, errorMessage(err), redacted)
	}

	return that.broadcast(action, game, current)
}

// broadcast sends every connected human at the table their own view of the
// game. The actor always gets one, even after leaving the table.
func (that *Server) broadcast(action string, game *entity.Game, actor *client) error {
	log := that.logger.With("method", "broadcast", "gameID", game.ID)

	recipients := map[string]*client{actor.userID: actor}
	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}
		if connected, ok := that.connection(player.ID); ok {
			recipients[player.ID] = connected
		}
	}

	for userID, recipient := range recipients {
		redacted, err := view.Redact(game, userID)
		if err != nil {
			return err
		}

		if err = recipient.sendMessage(action, ResponsePayload{Game: redacted}); err != nil {
			log.Warn("failed to send game", "userID", userID, "error", err)
		}
	}

	return nil
}
