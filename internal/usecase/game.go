package usecase

import (
	"context"

	"github.com/rocketscienceinc/qe-backend/internal/entity"
)

// GameUseCase is what transports need from the game manager.
type GameUseCase interface {
	Connect(ctx context.Context, userID, name string) (*entity.Player, error)

	CreateGame(ctx context.Context, userID, name string) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, userID string) (*entity.Game, error)
	AddBot(ctx context.Context, gameID, userID string) (*entity.Game, error)
	QuitGame(ctx context.Context, gameID, userID string) (*entity.Game, error)
	StartGame(ctx context.Context, gameID, userID string, tutorial bool) (*entity.Game, error)

	Bid(ctx context.Context, gameID, userID string, amount int) (*entity.Game, error)
	Peek(ctx context.Context, gameID, userID string) (*entity.Game, error)
	FlipTable(ctx context.Context, gameID, userID string) (*entity.Game, error)

	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
}

var _ GameUseCase = (*GameManager)(nil)
