package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/qe-backend/internal/entity"
	"github.com/rocketscienceinc/qe-backend/internal/pkg"
	"github.com/rocketscienceinc/qe-backend/internal/repository"
	"github.com/rocketscienceinc/qe-backend/internal/view"
)

type gameGetter interface {
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
}

type GameHandler struct {
	logger *slog.Logger
	games  gameGetter
}

func NewGameHandler(logger *slog.Logger, games gameGetter) *GameHandler {
	return &GameHandler{
		logger: logger.With("component", "rest"),
		games:  games,
	}
}

// GetGame returns the game as seen by the user of the session cookie. Without
// a cookie the caller sees it as a spectator.
func (that *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetGame")

	gameID := r.PathValue("id")

	game, err := that.games.GetGame(r.Context(), gameID)
	if errors.Is(err, repository.ErrGameNotFound) {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error("failed to get game", "gameID", gameID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var viewerID string
	if secret, found := pkg.SessionSecret(r); found {
		viewerID = pkg.UserIDFromSecret(secret)
	}

	redacted, err := view.Redact(game, viewerID)
	if err != nil {
		log.Error("failed to redact game", "gameID", gameID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(redacted); err != nil {
		log.Error("failed to write game", "error", err)
	}
}
