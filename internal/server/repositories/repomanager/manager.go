package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/spacestar/internal/dbx"
	"github.com/dmitrijs2005/spacestar/internal/server/repositories/likedgames"
	"github.com/dmitrijs2005/spacestar/internal/server/repositories/members"
	"github.com/dmitrijs2005/spacestar/internal/server/repositories/playgames"
	"github.com/dmitrijs2005/spacestar/internal/server/repositories/profileimages"
	"github.com/dmitrijs2005/spacestar/internal/server/repositories/profiles"
)

// RepositoryManager vends repositories bound to a pool or a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Members(db dbx.DBTX) members.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	ProfileImages(db dbx.DBTX) profileimages.Repository
	LikedGames(db dbx.DBTX) likedgames.Repository
	PlayGames(db dbx.DBTX) playgames.Repository
}
