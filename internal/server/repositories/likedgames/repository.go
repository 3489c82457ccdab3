package likedgames

import (
	"context"

	"github.com/dmitrijs2005/spacestar/internal/server/models"
)

type Repository interface {
	ListByUUID(ctx context.Context, uuid string) ([]*models.LikedGame, error)
	Create(ctx context.Context, games []*models.LikedGame) error
	UpdatePosition(ctx context.Context, uuid string, gameID int64, position int) error
	Delete(ctx context.Context, uuid string, gameIDs []int64) error
}
