// Package members stores account records.
package members

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/spacestar/internal/common"
	"github.com/dmitrijs2005/spacestar/internal/dbx"
	"github.com/dmitrijs2005/spacestar/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation = "23505"

	emailConstraint    = "members_active_email_idx"
	nicknameConstraint = "members_nickname_idx"
)

const memberColumns = `id, uuid, email, name, nickname, gender, birth_date, unregister, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanMember(row interface{ Scan(...any) error }) (*models.Member, error) {
	m := &models.Member{}
	var birth sql.NullTime
	var state string

	if err := row.Scan(&m.ID, &m.UUID, &m.Email, &m.Name, &m.Nickname, &m.Gender,
		&birth, &state, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}

	if birth.Valid {
		t := birth.Time
		m.BirthDate = &t
	}
	m.State = models.MemberState(state)
	return m, nil
}

// mapWriteError turns unique violations on the email and nickname indexes
// into the matching status errors. Writes racing past the service level
// lookups end up here.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case emailConstraint:
			return common.ErrDuplicatedMembers
		case nicknameConstraint:
			return common.ErrDuplicatedNickname
		}
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Member, error) {
	m, err := scanMember(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) Create(ctx context.Context, member *models.Member) (*models.Member, error) {
	query :=
		`INSERT INTO members (uuid, email, name, nickname, gender, birth_date, unregister)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`

	if member.State == "" {
		member.State = models.MemberStateActive
	}

	err := r.db.QueryRowContext(ctx, query,
		member.UUID, member.Email, member.Name, member.Nickname, member.Gender, member.BirthDate, string(member.State)).
		Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		return nil, mapWriteError(err)
	}

	return member, nil
}

// GetByEmail returns the most relevant account for email. An active account
// wins over a blacklisted one, which wins over withdrawn ones; ties go to the
// newest row.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	query :=
		`SELECT ` + memberColumns + ` FROM members
		 WHERE email = $1
		 ORDER BY CASE unregister WHEN 'MEMBER' THEN 0 WHEN 'BLACKLIST' THEN 1 ELSE 2 END, created_at DESC
		 LIMIT 1`

	return r.getOne(ctx, query, email)
}

func (r *PostgresRepository) GetByUUID(ctx context.Context, uuid string) (*models.Member, error) {
	query :=
		`SELECT ` + memberColumns + ` FROM members
		 WHERE uuid = $1`

	return r.getOne(ctx, query, uuid)
}

// GetByNickname looks a nickname up across every account state. Nicknames
// stay reserved after withdrawal.
func (r *PostgresRepository) GetByNickname(ctx context.Context, nickname string) (*models.Member, error) {
	query :=
		`SELECT ` + memberColumns + ` FROM members
		 WHERE nickname = $1`

	return r.getOne(ctx, query, nickname)
}

func (r *PostgresRepository) Update(ctx context.Context, member *models.Member) error {
	query :=
		`UPDATE members SET nickname = $2, gender = $3, birth_date = $4, updated_at = now()
		 WHERE uuid = $1`

	return r.execOne(ctx, query, member.UUID, member.Nickname, member.Gender, member.BirthDate)
}

func (r *PostgresRepository) UpdateState(ctx context.Context, uuid string, state models.MemberState) error {
	query :=
		`UPDATE members SET unregister = $2, updated_at = now()
		 WHERE uuid = $1`

	return r.execOne(ctx, query, uuid, string(state))
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError(err)
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
