// Package likedgames stores the games a member marked as liked.
package likedgames

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

// ListByUUID returns liked games in stored position order.
func (r *PostgresRepository) ListByUUID(ctx context.Context, uuid string) ([]*models.LikedGame, error) {
	query :=
		`SELECT id, uuid, game_id, position FROM liked_games
		 WHERE uuid = $1
		 ORDER BY position, id`

	rows, err := r.db.QueryContext(ctx, query, uuid)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.LikedGame
	for rows.Next() {
		g := &models.LikedGame{}
		if err := rows.Scan(&g.ID, &g.UUID, &g.GameID, &g.Position); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, games []*models.LikedGame) error {
	query :=
		`INSERT INTO liked_games (uuid, game_id, position)
		 VALUES ($1, $2, $3)`

	for _, g := range games {
		if _, err := r.db.ExecContext(ctx, query, g.UUID, g.GameID, g.Position); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) UpdatePosition(ctx context.Context, uuid string, gameID int64, position int) error {
	query :=
		`UPDATE liked_games SET position = $3
		 WHERE uuid = $1 AND game_id = $2`

	res, err := r.db.ExecContext(ctx, query, uuid, gameID, position)
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

func (r *PostgresRepository) Delete(ctx context.Context, uuid string, gameIDs []int64) error {
	query := `DELETE FROM liked_games WHERE uuid = $1 AND game_id = $2`

	for _, id := range gameIDs {
		if _, err := r.db.ExecContext(ctx, query, uuid, id); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}
