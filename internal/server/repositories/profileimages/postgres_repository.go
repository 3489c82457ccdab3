// Package profileimages stores the ordered profile images of a member.
package profileimages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/spacestar/internal/common"
	"github.com/dmitrijs2005/spacestar/internal/dbx"
	"github.com/dmitrijs2005/spacestar/internal/server/models"
)

const imageColumns = `id, uuid, profile_image_url, idx, main, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanImage(row interface{ Scan(...any) error }) (*models.ProfileImage, error) {
	img := &models.ProfileImage{}
	if err := row.Scan(&img.ID, &img.UUID, &img.URL, &img.Idx, &img.Main, &img.CreatedAt); err != nil {
		return nil, err
	}
	return img, nil
}

func (r *PostgresRepository) Create(ctx context.Context, image *models.ProfileImage) (*models.ProfileImage, error) {
	query :=
		`INSERT INTO profile_images (uuid, profile_image_url, idx, main)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, image.UUID, image.URL, image.Idx, image.Main).
		Scan(&image.ID, &image.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return image, nil
}

// ListByUUID returns the images of uuid ordered by idx, then id.
func (r *PostgresRepository) ListByUUID(ctx context.Context, uuid string) ([]*models.ProfileImage, error) {
	query :=
		`SELECT ` + imageColumns + ` FROM profile_images
		 WHERE uuid = $1
		 ORDER BY idx, id`

	rows, err := r.db.QueryContext(ctx, query, uuid)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.ProfileImage
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.ProfileImage, error) {
	img, err := scanImage(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return img, nil
}

func (r *PostgresRepository) GetByURL(ctx context.Context, uuid, url string) (*models.ProfileImage, error) {
	query :=
		`SELECT ` + imageColumns + ` FROM profile_images
		 WHERE uuid = $1 AND profile_image_url = $2`

	return r.getOne(ctx, query, uuid, url)
}

func (r *PostgresRepository) GetMain(ctx context.Context, uuid string) (*models.ProfileImage, error) {
	query :=
		`SELECT ` + imageColumns + ` FROM profile_images
		 WHERE uuid = $1 AND main`

	return r.getOne(ctx, query, uuid)
}

func (r *PostgresRepository) ExistsMain(ctx context.Context, uuid string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM profile_images WHERE uuid = $1 AND main)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, uuid).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// Update rewrites idx and main of the row identified by image.ID.
func (r *PostgresRepository) Update(ctx context.Context, image *models.ProfileImage) error {
	query :=
		`UPDATE profile_images SET idx = $2, main = $3
		 WHERE id = $1`

	return r.execOne(ctx, query, image.ID, image.Idx, image.Main)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM profile_images WHERE id = $1`

	return r.execOne(ctx, query, id)
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
