package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/spacestar/internal/common"
	"github.com/dmitrijs2005/spacestar/internal/dbx"
	"github.com/dmitrijs2005/spacestar/internal/logging"
	"github.com/dmitrijs2005/spacestar/internal/server/metrics"
	"github.com/dmitrijs2005/spacestar/internal/server/models"
	"github.com/dmitrijs2005/spacestar/internal/server/repositories/repomanager"
)

type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	storage     ImageStorage
	log         logging.Logger
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager, storage ImageStorage, log logging.Logger) *ProfileService {
	return &ProfileService{
		db:          db,
		repomanager: m,
		storage:     storage,
		log:         log.With("module", "profiles"),
	}
}

func profileNotFound(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrNotExistProfile
	}
	return fmt.Errorf("error searching profile: %w", err)
}

// UpdateProfileInfo overwrites the profile fields and reconciles the liked
// and played games with the given lists.
func (s *ProfileService) UpdateProfileInfo(ctx context.Context, uuid string, in *models.ProfileInfoUpdate) (err error) {
	defer func() { metrics.RecordOperation("update_profile_info", err) }()

	return dbx.WithTx(ctx, s.db, dbx.ReadWrite, func(ctx context.Context, tx dbx.DBTX) error {
		profilesRepo := s.repomanager.Profiles(tx)

		profile, err := profilesRepo.GetByUUID(ctx, uuid)
		if err != nil {
			return profileNotFound(err)
		}

		profile.Introduction = in.Introduction
		profile.MBTI = in.MBTI
		if err := profilesRepo.Update(ctx, profile); err != nil {
			return fmt.Errorf("error updating profile: %w", err)
		}

		return applyGameLists(ctx, s.repomanager, tx, uuid, in.LikedGameIDs, in.PlayGames, in.MainGameID)
	})
}

func (s *ProfileService) GetProfileInfo(ctx context.Context, uuid string) (*models.Profile, error) {
	profile, err := s.repomanager.Profiles(s.db).GetByUUID(ctx, uuid)
	if err != nil {
		return nil, profileNotFound(err)
	}
	return profile, nil
}

// GetLikedGames returns liked game ids in the order of the latest update.
func (s *ProfileService) GetLikedGames(ctx context.Context, uuid string) ([]int64, error) {
	games, err := s.repomanager.LikedGames(s.db).ListByUUID(ctx, uuid)
	if err != nil {
		return nil, fmt.Errorf("error loading liked games: %w", err)
	}

	ids := make([]int64, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.GameID)
	}
	return ids, nil
}

// GetPlayGames returns played games indexed in the order of the latest update.
func (s *ProfileService) GetPlayGames(ctx context.Context, uuid string) ([]models.IndexedPlayGame, error) {
	games, err := s.repomanager.PlayGames(s.db).ListByUUID(ctx, uuid)
	if err != nil {
		return nil, fmt.Errorf("error loading play games: %w", err)
	}

	result := make([]models.IndexedPlayGame, 0, len(games))
	for i, g := range games {
		result = append(result, models.IndexedPlayGame{Index: i, GameID: g.GameID, Main: g.Main})
	}
	return result, nil
}

func (s *ProfileService) GetSwipe(ctx context.Context, uuid string) (bool, error) {
	profile, err := s.GetProfileInfo(ctx, uuid)
	if err != nil {
		return false, err
	}
	return profile.Swipe, nil
}

func (s *ProfileService) UpdateSwipe(ctx context.Context, uuid string, swipe bool) (err error) {
	defer func() { metrics.RecordOperation("update_swipe", err) }()

	return dbx.WithTx(ctx, s.db, dbx.ReadWrite, func(ctx context.Context, tx dbx.DBTX) error {
		profilesRepo := s.repomanager.Profiles(tx)

		if _, err := profilesRepo.GetByUUID(ctx, uuid); err != nil {
			return profileNotFound(err)
		}
		if err := profilesRepo.UpdateSwipe(ctx, uuid, swipe); err != nil {
			return fmt.Errorf("error updating swipe: %w", err)
		}
		return nil
	})
}

// ListProfileImages returns images ordered by idx with their listing position.
func (s *ProfileService) ListProfileImages(ctx context.Context, uuid string) ([]models.IndexedProfileImage, error) {
	images, err := s.repomanager.ProfileImages(s.db).ListByUUID(ctx, uuid)
	if err != nil {
		return nil, fmt.Errorf("error loading profile images: %w", err)
	}

	result := make([]models.IndexedProfileImage, 0, len(images))
	for i, img := range images {
		result = append(result, models.IndexedProfileImage{Index: i, URL: img.URL, Main: img.Main})
	}
	return result, nil
}

func (s *ProfileService) GetMainProfileImage(ctx context.Context, uuid string) (*models.ProfileImage, error) {
	img, err := s.repomanager.ProfileImages(s.db).GetMain(ctx, uuid)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNotExistProfileImage
		}
		return nil, fmt.Errorf("error loading main profile image: %w", err)
	}
	return img, nil
}

// AddProfileImage stores a new image. It becomes main iff uuid has no main
// image yet.
func (s *ProfileService) AddProfileImage(ctx context.Context, uuid string, in models.ProfileImageInput) (img *models.ProfileImage, err error) {
	defer func() { metrics.RecordOperation("add_profile_image", err) }()

	err = dbx.WithTx(ctx, s.db, dbx.ReadWrite, func(ctx context.Context, tx dbx.DBTX) error {
		imagesRepo := s.repomanager.ProfileImages(tx)

		_, err := imagesRepo.GetByURL(ctx, uuid, in.URL)
		switch {
		case err == nil:
			return common.ErrDuplicatedProfileImage
		case !errors.Is(err, common.ErrorNotFound):
			return fmt.Errorf("error searching profile image: %w", err)
		}

		hasMain, err := imagesRepo.ExistsMain(ctx, uuid)
		if err != nil {
			return fmt.Errorf("error searching main profile image: %w", err)
		}

		img, err = imagesRepo.Create(ctx, &models.ProfileImage{UUID: uuid, URL: in.URL, Idx: in.Idx, Main: !hasMain})
		if err != nil {
			return fmt.Errorf("error creating profile image: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

// DeleteProfileImage removes the (uuid, url) image. The main image cannot be
// deleted.
func (s *ProfileService) DeleteProfileImage(ctx context.Context, uuid, url string) (err error) {
	defer func() { metrics.RecordOperation("delete_profile_image", err) }()

	return dbx.WithTx(ctx, s.db, dbx.ReadWrite, func(ctx context.Context, tx dbx.DBTX) error {
		imagesRepo := s.repomanager.ProfileImages(tx)

		img, err := imagesRepo.GetByURL(ctx, uuid, url)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrNotExistProfileImage
			}
			return fmt.Errorf("error searching profile image: %w", err)
		}

		if img.Main {
			return common.ErrMainProfileImageDelete
		}

		if err := imagesRepo.Delete(ctx, img.ID); err != nil {
			return fmt.Errorf("error deleting profile image: %w", err)
		}
		return nil
	})
}

// SetMainProfileImage makes url the main image of uuid. An already stored
// image is promoted in place, otherwise a new main row takes the old main's
// position. The previous main image is demoted first.
func (s *ProfileService) SetMainProfileImage(ctx context.Context, uuid, url string) (err error) {
	defer func() { metrics.RecordOperation("set_main_profile_image", err) }()

	return dbx.WithTx(ctx, s.db, dbx.ReadWrite, func(ctx context.Context, tx dbx.DBTX) error {
		imagesRepo := s.repomanager.ProfileImages(tx)

		current, err := imagesRepo.GetMain(ctx, uuid)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("error loading main profile image: %w", err)
		}
		if current != nil && current.URL == url {
			return nil
		}

		target, err := imagesRepo.GetByURL(ctx, uuid, url)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("error searching profile image: %w", err)
		}

		idx := 0
		if current != nil {
			idx = current.Idx
			current.Main = false
			if err := imagesRepo.Update(ctx, current); err != nil {
				return fmt.Errorf("error demoting profile image: %w", err)
			}
		}

		if target != nil {
			target.Main = true
			if err := imagesRepo.Update(ctx, target); err != nil {
				return fmt.Errorf("error promoting profile image: %w", err)
			}
			return nil
		}

		if _, err := imagesRepo.Create(ctx, &models.ProfileImage{UUID: uuid, URL: url, Idx: idx, Main: true}); err != nil {
			return fmt.Errorf("error creating profile image: %w", err)
		}
		return nil
	})
}

// CheckProfile bootstraps the profile of uuid. A missing profile row is
// created with defaults. Onboarding is needed while the profile is new or
// either game list is empty.
func (s *ProfileService) CheckProfile(ctx context.Context, uuid string) (status *models.ProfileStatus, err error) {
	defer func() { metrics.RecordOperation("check_profile", err) }()

	err = dbx.WithTx(ctx, s.db, dbx.ReadWrite, func(ctx context.Context, tx dbx.DBTX) error {
		profilesRepo := s.repomanager.Profiles(tx)

		profile, err := profilesRepo.GetByUUID(ctx, uuid)
		if err != nil {
			if !errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("error searching profile: %w", err)
			}

			profile, err = profilesRepo.Create(ctx, models.NewDefaultProfile(uuid))
			if err != nil {
				return fmt.Errorf("error creating profile: %w", err)
			}
			status = &models.ProfileStatus{Profile: profile, Created: true, NeedsOnboarding: true}
			return nil
		}

		liked, err := s.repomanager.LikedGames(tx).ListByUUID(ctx, uuid)
		if err != nil {
			return fmt.Errorf("error loading liked games: %w", err)
		}
		played, err := s.repomanager.PlayGames(tx).ListByUUID(ctx, uuid)
		if err != nil {
			return fmt.Errorf("error loading play games: %w", err)
		}

		status = &models.ProfileStatus{
			Profile:         profile,
			NeedsOnboarding: len(liked) == 0 || len(played) == 0,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if status.Created {
		s.log.Info(ctx, "default profile created", "uuid", uuid)
	}
	return status, nil
}

// PresignProfileImageUpload returns a target the client uploads an image to
// before registering its public URL.
func (s *ProfileService) PresignProfileImageUpload(ctx context.Context, uuid string) (*models.UploadTarget, error) {
	target, err := s.storage.PresignUpload(ctx, uuid)
	if err != nil {
		s.log.Error(ctx, "presign failed", "uuid", uuid, "error", err)
		return nil, err
	}
	return target, nil
}
