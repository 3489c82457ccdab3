package profileimages

import (
	"context"

	"github.com/dmitrijs2005/spacestar/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, image *models.ProfileImage) (*models.ProfileImage, error)
	ListByUUID(ctx context.Context, uuid string) ([]*models.ProfileImage, error)
	GetByURL(ctx context.Context, uuid, url string) (*models.ProfileImage, error)
	GetMain(ctx context.Context, uuid string) (*models.ProfileImage, error)
	ExistsMain(ctx context.Context, uuid string) (bool, error)
	Update(ctx context.Context, image *models.ProfileImage) error
	Delete(ctx context.Context, id int64) error
}
