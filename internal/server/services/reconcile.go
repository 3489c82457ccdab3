package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/spacestar/internal/common"
	"github.com/dmitrijs2005/spacestar/internal/dbx"
	"github.com/dmitrijs2005/spacestar/internal/server/models"
	"github.com/dmitrijs2005/spacestar/internal/server/repositories/repomanager"
)

type likedGamesDiff struct {
	add    []*models.LikedGame
	remove []int64
	move   []*models.LikedGame
}

// diffLikedGames compares the stored liked games with the desired ids.
// Duplicate desired ids collapse to their first occurrence, and every kept
// or added game takes its place in desired as position.
func diffLikedGames(uuid string, current []*models.LikedGame, desired []int64) likedGamesDiff {
	have := make(map[int64]*models.LikedGame, len(current))
	for _, g := range current {
		have[g.GameID] = g
	}

	var d likedGamesDiff
	want := make(map[int64]struct{}, len(desired))
	for _, id := range desired {
		if _, dup := want[id]; dup {
			continue
		}
		pos := len(want)
		want[id] = struct{}{}

		stored, ok := have[id]
		switch {
		case !ok:
			d.add = append(d.add, &models.LikedGame{UUID: uuid, GameID: id, Position: pos})
		case stored.Position != pos:
			d.move = append(d.move, &models.LikedGame{ID: stored.ID, UUID: uuid, GameID: id, Position: pos})
		}
	}
	for _, g := range current {
		if _, ok := want[g.GameID]; !ok {
			d.remove = append(d.remove, g.GameID)
		}
	}
	return d
}

type playGamesDiff struct {
	remove  []int64
	demote  []int64
	move    []*models.PlayGame
	add     []*models.PlayGame
	promote []int64
}

// diffPlayGames compares the stored played games with the desired list. A
// game is main iff its id equals mainGameID. Positions follow desired the
// same way as for liked games. Added games are ordered with the main one
// last.
func diffPlayGames(uuid string, current []*models.PlayGame, desired []models.PlayGameInput, mainGameID *int64) playGamesDiff {
	isMain := func(id int64) bool { return mainGameID != nil && *mainGameID == id }

	have := make(map[int64]*models.PlayGame, len(current))
	for _, g := range current {
		have[g.GameID] = g
	}

	var d playGamesDiff
	var mainAdd *models.PlayGame
	want := make(map[int64]struct{}, len(desired))
	for _, in := range desired {
		if _, dup := want[in.GameID]; dup {
			continue
		}
		pos := len(want)
		want[in.GameID] = struct{}{}

		stored, ok := have[in.GameID]
		if !ok {
			g := &models.PlayGame{UUID: uuid, GameID: in.GameID, Main: isMain(in.GameID), Position: pos}
			if g.Main {
				mainAdd = g
			} else {
				d.add = append(d.add, g)
			}
			continue
		}

		switch {
		case stored.Main && !isMain(in.GameID):
			d.demote = append(d.demote, in.GameID)
		case !stored.Main && isMain(in.GameID):
			d.promote = append(d.promote, in.GameID)
		}
		if stored.Position != pos {
			d.move = append(d.move, &models.PlayGame{ID: stored.ID, UUID: uuid, GameID: in.GameID, Main: isMain(in.GameID), Position: pos})
		}
	}
	if mainAdd != nil {
		d.add = append(d.add, mainAdd)
	}

	for _, g := range current {
		if _, ok := want[g.GameID]; !ok {
			d.remove = append(d.remove, g.GameID)
		}
	}
	return d
}

// applyGameLists makes the liked and played games of uuid equal to the
// given lists, stored in request order. Writes are ordered so no step
// violates the one-main index.
func applyGameLists(ctx context.Context, rm repomanager.RepositoryManager, tx dbx.DBTX,
	uuid string, liked []int64, played []models.PlayGameInput, mainGameID *int64) error {

	likedRepo := rm.LikedGames(tx)
	currentLiked, err := likedRepo.ListByUUID(ctx, uuid)
	if err != nil {
		return fmt.Errorf("error loading liked games: %w", err)
	}

	ld := diffLikedGames(uuid, currentLiked, liked)
	if err := likedRepo.Delete(ctx, uuid, ld.remove); err != nil {
		return fmt.Errorf("error removing liked games: %w", err)
	}
	for _, g := range ld.move {
		if err := likedRepo.UpdatePosition(ctx, uuid, g.GameID, g.Position); err != nil {
			return fmt.Errorf("error reordering liked games: %w", err)
		}
	}
	if err := likedRepo.Create(ctx, ld.add); err != nil {
		return fmt.Errorf("error adding liked games: %w", err)
	}

	playRepo := rm.PlayGames(tx)
	currentPlayed, err := playRepo.ListByUUID(ctx, uuid)
	if err != nil {
		return fmt.Errorf("error loading play games: %w", err)
	}

	pd := diffPlayGames(uuid, currentPlayed, played, mainGameID)
	for _, id := range pd.remove {
		if err := playRepo.Delete(ctx, uuid, id); err != nil {
			return fmt.Errorf("error removing play game: %w", err)
		}
	}
	for _, id := range pd.demote {
		if err := playRepo.UpdateMain(ctx, uuid, id, false); err != nil {
			return fmt.Errorf("error updating play game: %w", err)
		}
	}
	for _, g := range pd.move {
		if err := playRepo.UpdatePosition(ctx, uuid, g.GameID, g.Position); err != nil {
			return fmt.Errorf("error reordering play games: %w", err)
		}
	}
	for _, g := range pd.add {
		if err := playRepo.Create(ctx, g); err != nil {
			return fmt.Errorf("error adding play game: %w", err)
		}
	}
	for _, id := range pd.promote {
		if err := playRepo.UpdateMain(ctx, uuid, id, true); err != nil {
			return fmt.Errorf("error updating play game: %w", err)
		}
	}

	return nil
}

type imageSetPlan struct {
	remove []int64
	update []*models.ProfileImage
	insert []*models.ProfileImage
}

// planImageSet matches stored images to the desired list by URL. When the
// desired list names no main image the one with the lowest idx becomes main.
// Updates and inserts are ordered with the main image last.
func planImageSet(uuid string, current []*models.ProfileImage, desired []models.ProfileImageInput) (imageSetPlan, error) {
	mains := 0
	seen := make(map[string]struct{}, len(desired))
	for _, in := range desired {
		if _, dup := seen[in.URL]; dup || in.URL == "" {
			return imageSetPlan{}, common.ErrInvalidProfileImages
		}
		seen[in.URL] = struct{}{}
		if in.Main {
			mains++
		}
	}
	if mains > 1 {
		return imageSetPlan{}, common.ErrInvalidProfileImages
	}

	want := make([]models.ProfileImageInput, len(desired))
	copy(want, desired)
	if mains == 0 && len(want) > 0 {
		lowest := 0
		for i := range want {
			if want[i].Idx < want[lowest].Idx {
				lowest = i
			}
		}
		want[lowest].Main = true
	}

	byURL := make(map[string]*models.ProfileImage, len(current))
	for _, img := range current {
		byURL[img.URL] = img
	}

	var p imageSetPlan
	for _, img := range current {
		if _, ok := seen[img.URL]; !ok {
			p.remove = append(p.remove, img.ID)
		}
	}
	for _, in := range want {
		if stored, ok := byURL[in.URL]; ok {
			if stored.Idx != in.Idx || stored.Main != in.Main {
				p.update = append(p.update, &models.ProfileImage{ID: stored.ID, UUID: uuid, URL: in.URL, Idx: in.Idx, Main: in.Main})
			}
			continue
		}
		p.insert = append(p.insert, &models.ProfileImage{UUID: uuid, URL: in.URL, Idx: in.Idx, Main: in.Main})
	}

	mainLast := func(xs []*models.ProfileImage) {
		sort.SliceStable(xs, func(i, j int) bool { return !xs[i].Main && xs[j].Main })
	}
	mainLast(p.update)
	mainLast(p.insert)

	return p, nil
}
