package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/spacestar/internal/common"
	"github.com/dmitrijs2005/spacestar/internal/dbx"
	"github.com/dmitrijs2005/spacestar/internal/logging"
	"github.com/dmitrijs2005/spacestar/internal/server/config"
	"github.com/dmitrijs2005/spacestar/internal/server/events"
	"github.com/dmitrijs2005/spacestar/internal/server/models"
	"github.com/dmitrijs2005/spacestar/internal/server/repositories/likedgames"
	"github.com/dmitrijs2005/spacestar/internal/server/repositories/members"
	"github.com/dmitrijs2005/spacestar/internal/server/repositories/playgames"
	"github.com/dmitrijs2005/spacestar/internal/server/repositories/profileimages"
	"github.com/dmitrijs2005/spacestar/internal/server/repositories/profiles"
)

// memStore backs every repository with plain slices. It is not transactional:
// tests only assert on state after committed calls or after rejections that
// happen before any write.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	members  []*models.Member
	profiles []*models.Profile
	images   []*models.ProfileImage
	liked    []*models.LikedGame
	played   []*models.PlayGame

	// failOn makes the named operation fail with the mapped error.
	failOn map[string]error
}

func newMemStore() *memStore {
	return &memStore{failOn: map[string]error{}}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) fail(op string) error {
	return s.failOn[op]
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Members(dbx.DBTX) members.Repository             { return &memMembers{m.s} }
func (m *fakeRepoManager) Profiles(dbx.DBTX) profiles.Repository           { return &memProfiles{m.s} }
func (m *fakeRepoManager) ProfileImages(dbx.DBTX) profileimages.Repository { return &memImages{m.s} }
func (m *fakeRepoManager) LikedGames(dbx.DBTX) likedgames.Repository       { return &memLiked{m.s} }
func (m *fakeRepoManager) PlayGames(dbx.DBTX) playgames.Repository         { return &memPlayed{m.s} }

// --- members ---

type memMembers struct{ s *memStore }

func (r *memMembers) Create(ctx context.Context, m *models.Member) (*models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("members.create"); err != nil {
		return nil, err
	}
	m.ID = r.s.id()
	m.CreatedAt = time.Now()
	cp := *m
	r.s.members = append(r.s.members, &cp)
	return m, nil
}

func (r *memMembers) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("members.get"); err != nil {
		return nil, err
	}
	rank := map[models.MemberState]int{models.MemberStateActive: 0, models.MemberStateBlacklist: 1}
	var best *models.Member
	for _, m := range r.s.members {
		if m.Email != email {
			continue
		}
		if best == nil {
			best = m
			continue
		}
		rb, okb := rank[best.State]
		rm, okm := rank[m.State]
		if !okb {
			rb = 2
		}
		if !okm {
			rm = 2
		}
		if rm < rb || (rm == rb && m.ID > best.ID) {
			best = m
		}
	}
	if best == nil {
		return nil, common.ErrorNotFound
	}
	cp := *best
	return &cp, nil
}

func (r *memMembers) GetByUUID(ctx context.Context, uuid string) (*models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("members.get"); err != nil {
		return nil, err
	}
	for _, m := range r.s.members {
		if m.UUID == uuid {
			cp := *m
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memMembers) GetByNickname(ctx context.Context, nickname string) (*models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.members {
		if m.Nickname == nickname {
			cp := *m
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memMembers) Update(ctx context.Context, in *models.Member) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.members {
		if m.UUID == in.UUID {
			m.Nickname, m.Gender, m.BirthDate = in.Nickname, in.Gender, in.BirthDate
			return nil
		}
	}
	return common.ErrorNotFound
}

func (r *memMembers) UpdateState(ctx context.Context, uuid string, state models.MemberState) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.members {
		if m.UUID == uuid {
			m.State = state
			return nil
		}
	}
	return common.ErrorNotFound
}

// --- profiles ---

type memProfiles struct{ s *memStore }

func (r *memProfiles) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id()
	cp := *p
	r.s.profiles = append(r.s.profiles, &cp)
	return p, nil
}

func (r *memProfiles) GetByUUID(ctx context.Context, uuid string) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("profiles.get"); err != nil {
		return nil, err
	}
	for _, p := range r.s.profiles {
		if p.UUID == uuid {
			cp := *p
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memProfiles) Update(ctx context.Context, in *models.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if p.UUID == in.UUID {
			p.Introduction, p.MBTI = in.Introduction, in.MBTI
			return nil
		}
	}
	return common.ErrorNotFound
}

func (r *memProfiles) UpdateSwipe(ctx context.Context, uuid string, swipe bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if p.UUID == uuid {
			p.Swipe = swipe
			return nil
		}
	}
	return common.ErrorNotFound
}

// --- profile images ---

type memImages struct{ s *memStore }

func (r *memImages) Create(ctx context.Context, img *models.ProfileImage) (*models.ProfileImage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("images.create"); err != nil {
		return nil, err
	}
	for _, x := range r.s.images {
		if x.UUID == img.UUID && (x.URL == img.URL || (x.Main && img.Main)) {
			return nil, errUniqueViolation
		}
	}
	img.ID = r.s.id()
	cp := *img
	r.s.images = append(r.s.images, &cp)
	return img, nil
}

func (r *memImages) ListByUUID(ctx context.Context, uuid string) ([]*models.ProfileImage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.ProfileImage
	for _, x := range r.s.images {
		if x.UUID == uuid {
			cp := *x
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Idx != out[j].Idx {
			return out[i].Idx < out[j].Idx
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memImages) GetByURL(ctx context.Context, uuid, url string) (*models.ProfileImage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.images {
		if x.UUID == uuid && x.URL == url {
			cp := *x
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memImages) GetMain(ctx context.Context, uuid string) (*models.ProfileImage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.images {
		if x.UUID == uuid && x.Main {
			cp := *x
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memImages) ExistsMain(ctx context.Context, uuid string) (bool, error) {
	_, err := r.GetMain(ctx, uuid)
	return err == nil, nil
}

func (r *memImages) Update(ctx context.Context, img *models.ProfileImage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var target *models.ProfileImage
	for _, x := range r.s.images {
		if x.ID == img.ID {
			target = x
		}
	}
	if target == nil {
		return common.ErrorNotFound
	}
	if img.Main {
		for _, x := range r.s.images {
			if x.UUID == target.UUID && x.Main && x.ID != target.ID {
				return errUniqueViolation
			}
		}
	}
	target.Idx, target.Main = img.Idx, img.Main
	return nil
}

func (r *memImages) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, x := range r.s.images {
		if x.ID == id {
			r.s.images = append(r.s.images[:i], r.s.images[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

// --- liked games ---

type memLiked struct{ s *memStore }

func (r *memLiked) ListByUUID(ctx context.Context, uuid string) ([]*models.LikedGame, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.LikedGame
	for _, g := range r.s.liked {
		if g.UUID == uuid {
			cp := *g
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *memLiked) Create(ctx context.Context, games []*models.LikedGame) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, in := range games {
		for _, g := range r.s.liked {
			if g.UUID == in.UUID && g.GameID == in.GameID {
				return errUniqueViolation
			}
		}
		cp := *in
		cp.ID = r.s.id()
		r.s.liked = append(r.s.liked, &cp)
	}
	return nil
}

func (r *memLiked) UpdatePosition(ctx context.Context, uuid string, gameID int64, position int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.liked {
		if g.UUID == uuid && g.GameID == gameID {
			g.Position = position
			return nil
		}
	}
	return common.ErrorNotFound
}

func (r *memLiked) Delete(ctx context.Context, uuid string, ids []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	drop := map[int64]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	kept := r.s.liked[:0]
	for _, g := range r.s.liked {
		if !(g.UUID == uuid && drop[g.GameID]) {
			kept = append(kept, g)
		}
	}
	r.s.liked = kept
	return nil
}

// --- play games ---

type memPlayed struct{ s *memStore }

func (r *memPlayed) ListByUUID(ctx context.Context, uuid string) ([]*models.PlayGame, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.PlayGame
	for _, g := range r.s.played {
		if g.UUID == uuid {
			cp := *g
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *memPlayed) Create(ctx context.Context, g *models.PlayGame) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.played {
		if x.UUID == g.UUID && (x.GameID == g.GameID || (x.Main && g.Main)) {
			return errUniqueViolation
		}
	}
	g.ID = r.s.id()
	cp := *g
	r.s.played = append(r.s.played, &cp)
	return nil
}

func (r *memPlayed) Delete(ctx context.Context, uuid string, gameID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, x := range r.s.played {
		if x.UUID == uuid && x.GameID == gameID {
			r.s.played = append(r.s.played[:i], r.s.played[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memPlayed) UpdatePosition(ctx context.Context, uuid string, gameID int64, position int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.played {
		if x.UUID == uuid && x.GameID == gameID {
			x.Position = position
			return nil
		}
	}
	return common.ErrorNotFound
}

func (r *memPlayed) UpdateMain(ctx context.Context, uuid string, gameID int64, main bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var target *models.PlayGame
	for _, x := range r.s.played {
		if x.UUID == uuid && x.GameID == gameID {
			target = x
		} else if main && x.UUID == uuid && x.Main {
			return errUniqueViolation
		}
	}
	if target == nil {
		return common.ErrorNotFound
	}
	target.Main = main
	return nil
}

// --- events ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                   "k",
		AccessTokenValidityDuration: time.Hour,
		UploadURLValidityDuration:   15 * time.Minute,
	}
}

type memberFixture struct {
	svc   *MemberService
	store *memStore
	mock  sqlmock.Sqlmock
	pub   *recordingPublisher
}

func newMemberFixture(t *testing.T) *memberFixture {
	t.Helper()
	db, mock := newSQLMockDB(t)
	store := newMemStore()
	pub := &recordingPublisher{}
	svc := NewMemberService(db, &fakeRepoManager{store}, pub, logging.NewNopLogger(), testConfig())
	return &memberFixture{svc: svc, store: store, mock: mock, pub: pub}
}

type profileFixture struct {
	svc     *ProfileService
	store   *memStore
	mock    sqlmock.Sqlmock
	storage *fakeStorage
}

type fakeStorage struct {
	target *models.UploadTarget
	err    error
}

func (f *fakeStorage) PresignUpload(ctx context.Context, uuid string) (*models.UploadTarget, error) {
	return f.target, f.err
}

func newProfileFixture(t *testing.T) *profileFixture {
	t.Helper()
	db, mock := newSQLMockDB(t)
	store := newMemStore()
	st := &fakeStorage{}
	svc := NewProfileService(db, &fakeRepoManager{store}, st, logging.NewNopLogger())
	return &profileFixture{svc: svc, store: store, mock: mock, storage: st}
}

func (s *memStore) seedMember(uuid, email, nickname string, state models.MemberState) {
	s.members = append(s.members, &models.Member{ID: s.id(), UUID: uuid, Email: email, Nickname: nickname, State: state})
}

func (s *memStore) seedImage(uuid, url string, idx int, main bool) *models.ProfileImage {
	img := &models.ProfileImage{ID: s.id(), UUID: uuid, URL: url, Idx: idx, Main: main}
	s.images = append(s.images, img)
	return img
}

func (s *memStore) imagesOf(uuid string) []*models.ProfileImage {
	out, _ := (&memImages{s}).ListByUUID(context.Background(), uuid)
	return out
}

func (s *memStore) likedOf(uuid string) []int64 {
	games, _ := (&memLiked{s}).ListByUUID(context.Background(), uuid)
	var out []int64
	for _, g := range games {
		out = append(out, g.GameID)
	}
	return out
}

func (s *memStore) playedOf(uuid string) map[int64]bool {
	out := map[int64]bool{}
	for _, g := range s.played {
		if g.UUID == uuid {
			out[g.GameID] = g.Main
		}
	}
	return out
}

var errUniqueViolation = uniqueViolation{}

type uniqueViolation struct{}

func (uniqueViolation) Error() string { return "unique violation" }
