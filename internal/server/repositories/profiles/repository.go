package profiles

import (
	"context"

	"github.com/dmitrijs2005/spacestar/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	GetByUUID(ctx context.Context, uuid string) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	UpdateSwipe(ctx context.Context, uuid string, swipe bool) error
}
