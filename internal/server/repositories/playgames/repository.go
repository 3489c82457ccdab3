package playgames

import (
	"context"

	"github.com/dmitrijs2005/spacestar/internal/server/models"
)

type Repository interface {
	ListByUUID(ctx context.Context, uuid string) ([]*models.PlayGame, error)
	Create(ctx context.Context, game *models.PlayGame) error
	Delete(ctx context.Context, uuid string, gameID int64) error
	UpdateMain(ctx context.Context, uuid string, gameID int64, main bool) error
	UpdatePosition(ctx context.Context, uuid string, gameID int64, position int) error
}
