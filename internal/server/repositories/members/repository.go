package members

import (
	"context"

	"github.com/dmitrijs2005/spacestar/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, member *models.Member) (*models.Member, error)
	GetByEmail(ctx context.Context, email string) (*models.Member, error)
	GetByUUID(ctx context.Context, uuid string) (*models.Member, error)
	GetByNickname(ctx context.Context, nickname string) (*models.Member, error)
	Update(ctx context.Context, member *models.Member) error
	UpdateState(ctx context.Context, uuid string, state models.MemberState) error
}
