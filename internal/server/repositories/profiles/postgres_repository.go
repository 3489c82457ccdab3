// Package profiles stores the per-identity profile row.
package profiles

import (
	"context"
	"database/sql"
	"errors"
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

func (r *PostgresRepository) Create(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	query :=
		`INSERT INTO profiles (uuid, introduction, mbti, exp, report_count, swipe)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		profile.UUID, profile.Introduction, profile.MBTI, profile.Exp, profile.ReportCount, profile.Swipe).
		Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return profile, nil
}

func (r *PostgresRepository) GetByUUID(ctx context.Context, uuid string) (*models.Profile, error) {
	query :=
		`SELECT id, uuid, introduction, mbti, exp, report_count, swipe, created_at, updated_at FROM profiles
		 WHERE uuid = $1`

	p := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, uuid).
		Scan(&p.ID, &p.UUID, &p.Introduction, &p.MBTI, &p.Exp, &p.ReportCount, &p.Swipe, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

// Update overwrites the member-editable fields. Exp, report count and swipe
// are owned by other flows.
func (r *PostgresRepository) Update(ctx context.Context, profile *models.Profile) error {
	query :=
		`UPDATE profiles SET introduction = $2, mbti = $3, updated_at = now()
		 WHERE uuid = $1`

	return r.execOne(ctx, query, profile.UUID, profile.Introduction, profile.MBTI)
}

func (r *PostgresRepository) UpdateSwipe(ctx context.Context, uuid string, swipe bool) error {
	query :=
		`UPDATE profiles SET swipe = $2, updated_at = now()
		 WHERE uuid = $1`

	return r.execOne(ctx, query, uuid, swipe)
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
