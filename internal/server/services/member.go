// Package services implements the member and profile use cases on top of
// the repositories. Every mutating call runs inside one dbx.WithTx scope.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/spacestar/internal/common"
	"github.com/dmitrijs2005/spacestar/internal/dbx"
	"github.com/dmitrijs2005/spacestar/internal/logging"
	"github.com/dmitrijs2005/spacestar/internal/server/auth"
	"github.com/dmitrijs2005/spacestar/internal/server/config"
	"github.com/dmitrijs2005/spacestar/internal/server/events"
	"github.com/dmitrijs2005/spacestar/internal/server/metrics"
	"github.com/dmitrijs2005/spacestar/internal/server/models"
	"github.com/dmitrijs2005/spacestar/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	nicknameDuplicatedMessage = "닉네임이 중복되었습니다."
	nicknameAvailableMessage  = "사용 가능한 닉네임입니다."
)

// newIdentity is a seam for tests.
var newIdentity = func() string { return uuid.NewString() }

type MemberService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	publisher                   events.Publisher
	log                         logging.Logger
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewMemberService(db *sql.DB, m repomanager.RepositoryManager, p events.Publisher, log logging.Logger, cfg *config.Config) *MemberService {
	return &MemberService{
		db:                          db,
		repomanager:                 m,
		publisher:                   p,
		log:                         log.With("module", "members"),
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates an account and its first, main profile image. An email
// held by an active or blacklisted account is rejected; a withdrawn
// account's email may register again.
func (s *MemberService) Register(ctx context.Context, in *models.NewMember) (member *models.Member, err error) {
	defer func() { metrics.RecordOperation("register", err) }()

	err = dbx.WithTx(ctx, s.db, dbx.ReadWrite, func(ctx context.Context, tx dbx.DBTX) error {
		membersRepo := s.repomanager.Members(tx)

		existing, err := membersRepo.GetByEmail(ctx, in.Email)
		switch {
		case err == nil:
			switch existing.State {
			case models.MemberStateActive:
				return common.ErrDuplicatedMembers
			case models.MemberStateBlacklist:
				return common.ErrBlacklistMember
			}
		case !errors.Is(err, common.ErrorNotFound):
			return fmt.Errorf("error searching member: %w", err)
		}

		if err := s.ensureNicknameFree(ctx, tx, in.Nickname, ""); err != nil {
			return err
		}

		member, err = membersRepo.Create(ctx, &models.Member{
			UUID:      newIdentity(),
			Email:     in.Email,
			Name:      in.Name,
			Nickname:  in.Nickname,
			Gender:    in.Gender,
			BirthDate: in.BirthDate,
			State:     models.MemberStateActive,
		})
		if err != nil {
			return fmt.Errorf("error creating member: %w", err)
		}

		_, err = s.repomanager.ProfileImages(tx).Create(ctx, &models.ProfileImage{
			UUID: member.UUID,
			URL:  in.ImageURL,
			Idx:  0,
			Main: true,
		})
		if err != nil {
			return fmt.Errorf("error creating profile image: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "member registered", "uuid", member.UUID)
	publish(ctx, s.publisher, s.log, events.New(events.TypeMemberRegistered, member.UUID, member.Nickname))

	return member, nil
}

// ensureNicknameFree fails unless nickname is unused by any account other
// than self, withdrawn and blacklisted ones included.
func (s *MemberService) ensureNicknameFree(ctx context.Context, db dbx.DBTX, nickname, self string) error {
	holder, err := s.repomanager.Members(db).GetByNickname(ctx, nickname)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return fmt.Errorf("error searching nickname: %w", err)
	}
	if holder.UUID == self {
		return nil
	}
	return common.ErrDuplicatedNickname
}

// CheckNickname reports whether any account already holds nickname.
func (s *MemberService) CheckNickname(ctx context.Context, nickname string) (*models.NicknameResult, error) {
	err := s.ensureNicknameFree(ctx, s.db, nickname, "")
	switch {
	case err == nil:
		return &models.NicknameResult{Duplicated: false, Message: nicknameAvailableMessage}, nil
	case errors.Is(err, common.ErrDuplicatedNickname):
		return &models.NicknameResult{Duplicated: true, Message: nicknameDuplicatedMessage}, nil
	default:
		return nil, err
	}
}

// Login issues a bearer access token for the account registered with email.
func (s *MemberService) Login(ctx context.Context, email string) (token string, err error) {
	defer func() { metrics.RecordOperation("login", err) }()

	member, err := s.repomanager.Members(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrNotExistMember
		}
		return "", fmt.Errorf("error searching member: %w", err)
	}

	switch member.State {
	case models.MemberStateBlacklist:
		return "", common.ErrBlacklistMember
	case models.MemberStateDeleted:
		return "", common.ErrDeleteMember
	}

	token, err = auth.BearerToken(member.UUID, common.RoleUser, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("error generating access token: %w", err)
	}

	s.log.Debug(ctx, "access token issued", "uuid", member.UUID)
	return token, nil
}

// GetMember returns the account identified by uuid.
func (s *MemberService) GetMember(ctx context.Context, uuid string) (*models.Member, error) {
	member, err := s.repomanager.Members(s.db).GetByUUID(ctx, uuid)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNotExistMember
		}
		return nil, fmt.Errorf("error searching member: %w", err)
	}
	return member, nil
}

func (s *MemberService) getMemberTx(ctx context.Context, tx dbx.DBTX, uuid string) (*models.Member, error) {
	member, err := s.repomanager.Members(tx).GetByUUID(ctx, uuid)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNotExistMember
		}
		return nil, fmt.Errorf("error searching member: %w", err)
	}
	return member, nil
}

// UpdateMemberInfo overwrites the member fields and reconciles the liked and
// played games with the given lists.
func (s *MemberService) UpdateMemberInfo(ctx context.Context, uuid string, in *models.MemberInfoUpdate) (err error) {
	defer func() { metrics.RecordOperation("update_member_info", err) }()

	var nickname string
	err = dbx.WithTx(ctx, s.db, dbx.ReadWrite, func(ctx context.Context, tx dbx.DBTX) error {
		member, err := s.getMemberTx(ctx, tx, uuid)
		if err != nil {
			return err
		}

		if in.Nickname != "" && in.Nickname != member.Nickname {
			if err := s.ensureNicknameFree(ctx, tx, in.Nickname, uuid); err != nil {
				return err
			}
			member.Nickname = in.Nickname
		}
		member.Gender = in.Gender
		member.BirthDate = in.BirthDate

		if err := s.repomanager.Members(tx).Update(ctx, member); err != nil {
			return fmt.Errorf("error updating member: %w", err)
		}
		nickname = member.Nickname

		return applyGameLists(ctx, s.repomanager, tx, uuid, in.LikedGameIDs, in.PlayGames, in.MainGameID)
	})
	if err != nil {
		return err
	}

	publish(ctx, s.publisher, s.log, events.New(events.TypeMemberUpdated, uuid, nickname))
	return nil
}

// UpdateProfileImages makes the stored images of uuid equal to images,
// matching entries by URL.
func (s *MemberService) UpdateProfileImages(ctx context.Context, uuid string, images []models.ProfileImageInput) (err error) {
	defer func() { metrics.RecordOperation("update_profile_images", err) }()

	return dbx.WithTx(ctx, s.db, dbx.ReadWrite, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.getMemberTx(ctx, tx, uuid); err != nil {
			return err
		}

		imagesRepo := s.repomanager.ProfileImages(tx)
		current, err := imagesRepo.ListByUUID(ctx, uuid)
		if err != nil {
			return fmt.Errorf("error loading profile images: %w", err)
		}

		plan, err := planImageSet(uuid, current, images)
		if err != nil {
			return err
		}

		for _, id := range plan.remove {
			if err := imagesRepo.Delete(ctx, id); err != nil {
				return fmt.Errorf("error deleting profile image: %w", err)
			}
		}
		for _, img := range plan.update {
			if err := imagesRepo.Update(ctx, img); err != nil {
				return fmt.Errorf("error updating profile image: %w", err)
			}
		}
		for _, img := range plan.insert {
			if _, err := imagesRepo.Create(ctx, img); err != nil {
				return fmt.Errorf("error creating profile image: %w", err)
			}
		}

		return nil
	})
}

// Withdraw moves an active account to the withdrawn state. The email and
// nickname become available for new registrations.
func (s *MemberService) Withdraw(ctx context.Context, uuid string) (err error) {
	defer func() { metrics.RecordOperation("withdraw", err) }()

	err = dbx.WithTx(ctx, s.db, dbx.ReadWrite, func(ctx context.Context, tx dbx.DBTX) error {
		member, err := s.getMemberTx(ctx, tx, uuid)
		if err != nil {
			return err
		}

		switch member.State {
		case models.MemberStateBlacklist:
			return common.ErrBlacklistMember
		case models.MemberStateDeleted:
			return common.ErrDeleteMember
		}

		if err := s.repomanager.Members(tx).UpdateState(ctx, uuid, models.MemberStateDeleted); err != nil {
			return fmt.Errorf("error updating member state: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "member withdrawn", "uuid", uuid)
	publish(ctx, s.publisher, s.log, events.New(events.TypeMemberWithdrawn, uuid, ""))
	return nil
}
