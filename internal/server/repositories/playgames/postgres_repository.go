// Package playgames stores the games a member plays, one of them flagged main.
package playgames

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/spacestar/internal/common"
	"github.com/dmitrijs2005/spacestar/internal/dbx"
	"github.com/dmitrijs2005/spacestar/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByUUID returns played games in stored position order.
func (r *PostgresRepository) ListByUUID(ctx context.Context, uuid string) ([]*models.PlayGame, error) {
	query :=
		`SELECT id, uuid, game_id, main, position FROM play_games
		 WHERE uuid = $1
		 ORDER BY position, id`

	rows, err := r.db.QueryContext(ctx, query, uuid)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.PlayGame
	for rows.Next() {
		g := &models.PlayGame{}
		if err := rows.Scan(&g.ID, &g.UUID, &g.GameID, &g.Main, &g.Position); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, game *models.PlayGame) error {
	query :=
		`INSERT INTO play_games (uuid, game_id, main, position)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`

	if err := r.db.QueryRowContext(ctx, query, game.UUID, game.GameID, game.Main, game.Position).Scan(&game.ID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, uuid string, gameID int64) error {
	query := `DELETE FROM play_games WHERE uuid = $1 AND game_id = $2`

	if _, err := r.db.ExecContext(ctx, query, uuid, gameID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateMain(ctx context.Context, uuid string, gameID int64, main bool) error {
	query :=
		`UPDATE play_games SET main = $3
		 WHERE uuid = $1 AND game_id = $2`

	return r.execOne(ctx, query, uuid, gameID, main)
}

func (r *PostgresRepository) UpdatePosition(ctx context.Context, uuid string, gameID int64, position int) error {
	query :=
		`UPDATE play_games SET position = $3
		 WHERE uuid = $1 AND game_id = $2`

	return r.execOne(ctx, query, uuid, gameID, position)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
