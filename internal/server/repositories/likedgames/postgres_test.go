package likedgames

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/spacestar/internal/common"
	"github.com/dmitrijs2005/spacestar/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestListByUUID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT id, uuid, game_id, position FROM liked_games WHERE uuid = \$1 ORDER BY position, id$`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "uuid", "game_id", "position"}).
			AddRow(int64(2), "u-1", int64(10), 0).
			AddRow(int64(1), "u-1", int64(30), 1))

	got, err := repo.ListByUUID(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(10), got[0].GameID)
	assert.Equal(t, int64(30), got[1].GameID)
	assert.Equal(t, 1, got[1].Position)
}

func TestListByUUID_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM liked_games`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "uuid", "game_id", "position"}))

	got, err := repo.ListByUUID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCreate_InsertsEachGame(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^INSERT INTO liked_games \(uuid, game_id, position\) VALUES \(\$1, \$2, \$3\)$`
	mock.ExpectExec(q).WithArgs("u-1", int64(1), 0).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q).WithArgs("u-1", int64(2), 1).WillReturnResult(sqlmock.NewResult(2, 1))

	games := []*models.LikedGame{
		{UUID: "u-1", GameID: 1, Position: 0},
		{UUID: "u-1", GameID: 2, Position: 1},
	}
	require.NoError(t, repo.Create(context.Background(), games))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_StopsOnError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^INSERT INTO liked_games`).WithArgs("u-1", int64(1), 0).WillReturnError(errors.New("dup"))

	err := repo.Create(context.Background(), []*models.LikedGame{{UUID: "u-1", GameID: 1}, {UUID: "u-1", GameID: 2, Position: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: dup")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePosition(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^UPDATE liked_games SET position = \$3 WHERE uuid = \$1 AND game_id = \$2$`
	mock.ExpectExec(q).WithArgs("u-1", int64(5), 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("u-1", int64(6), 0).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdatePosition(context.Background(), "u-1", 5, 1))
	assert.ErrorIs(t, repo.UpdatePosition(context.Background(), "u-1", 6, 0), common.ErrorNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^DELETE FROM liked_games WHERE uuid = \$1 AND game_id = \$2$`
	mock.ExpectExec(q).WithArgs("u-1", int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "u-1", []int64{7}))
	require.NoError(t, repo.Delete(context.Background(), "u-1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
