package httpapi

import (
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/spacestar/internal/common"
	"github.com/dmitrijs2005/spacestar/internal/server/models"
)

const dateLayout = "2006-01-02"

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, common.ErrInvalidRequest
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}

type playGameDTO struct {
	GameID int64 `json:"gameId"`
}

func toPlayGameInputs(in []playGameDTO) []models.PlayGameInput {
	out := make([]models.PlayGameInput, 0, len(in))
	for _, g := range in {
		out = append(out, models.PlayGameInput{GameID: g.GameID})
	}
	return out
}

type joinRequest struct {
	Email           string `json:"email"`
	Name            string `json:"name"`
	Nickname        string `json:"nickname"`
	Gender          string `json:"gender"`
	BirthDate       string `json:"birthDate"`
	ProfileImageURL string `json:"profileImageUrl"`
}

func (r *joinRequest) toModel() (*models.NewMember, error) {
	if !validEmail(r.Email) || strings.TrimSpace(r.Nickname) == "" {
		return nil, common.ErrInvalidRequest
	}
	if strings.TrimSpace(r.ProfileImageURL) == "" {
		return nil, common.ErrInvalidRequest
	}
	bd, err := parseDate(r.BirthDate)
	if err != nil {
		return nil, err
	}
	return &models.NewMember{
		Email:     r.Email,
		Name:      r.Name,
		Nickname:  strings.TrimSpace(r.Nickname),
		Gender:    r.Gender,
		BirthDate: bd,
		ImageURL:  strings.TrimSpace(r.ProfileImageURL),
	}, nil
}

type loginRequest struct {
	Email string `json:"email"`
}

type memberInfoRequest struct {
	Nickname     string        `json:"nickname"`
	Gender       string        `json:"gender"`
	BirthDate    string        `json:"birthDate"`
	LikedGameIDs []int64       `json:"likedGameIds"`
	PlayGames    []playGameDTO `json:"playGames"`
	MainGameID   *int64        `json:"mainGameId"`
}

func (r *memberInfoRequest) toModel() (*models.MemberInfoUpdate, error) {
	if strings.TrimSpace(r.Nickname) == "" {
		return nil, common.ErrInvalidRequest
	}
	bd, err := parseDate(r.BirthDate)
	if err != nil {
		return nil, err
	}
	return &models.MemberInfoUpdate{
		Nickname:     strings.TrimSpace(r.Nickname),
		Gender:       r.Gender,
		BirthDate:    bd,
		LikedGameIDs: r.LikedGameIDs,
		PlayGames:    toPlayGameInputs(r.PlayGames),
		MainGameID:   r.MainGameID,
	}, nil
}

type profileInfoRequest struct {
	Introduction string        `json:"introduction"`
	MBTI         string        `json:"mbti"`
	LikedGameIDs []int64       `json:"likedGameIds"`
	PlayGames    []playGameDTO `json:"playGames"`
	MainGameID   *int64        `json:"mainGameId"`
}

func (r *profileInfoRequest) toModel() *models.ProfileInfoUpdate {
	return &models.ProfileInfoUpdate{
		Introduction: r.Introduction,
		MBTI:         r.MBTI,
		LikedGameIDs: r.LikedGameIDs,
		PlayGames:    toPlayGameInputs(r.PlayGames),
		MainGameID:   r.MainGameID,
	}
}

type profileImageDTO struct {
	URL   string `json:"profileImageUrl"`
	Index int    `json:"index"`
	Main  bool   `json:"main"`
}

type profileImagesRequest struct {
	ProfileImages []profileImageDTO `json:"profileImages"`
}

func (r *profileImagesRequest) toModel() []models.ProfileImageInput {
	out := make([]models.ProfileImageInput, 0, len(r.ProfileImages))
	for _, img := range r.ProfileImages {
		out = append(out, models.ProfileImageInput{URL: img.URL, Idx: img.Index, Main: img.Main})
	}
	return out
}

type imageURLRequest struct {
	URL   string `json:"profileImageUrl"`
	Index int    `json:"index"`
}

type swipeRequest struct {
	Swipe *bool `json:"swipe"`
}

type memberResponse struct {
	UUID      string `json:"uuid"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Nickname  string `json:"nickname"`
	Gender    string `json:"gender,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
}

func newMemberResponse(m *models.Member) memberResponse {
	return memberResponse{
		UUID:      m.UUID,
		Email:     m.Email,
		Name:      m.Name,
		Nickname:  m.Nickname,
		Gender:    m.Gender,
		BirthDate: formatDate(m.BirthDate),
	}
}

type nicknameResponse struct {
	Duplicated bool   `json:"duplicated"`
	Message    string `json:"message"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
}

type profileResponse struct {
	Introduction string `json:"introduction"`
	MBTI         string `json:"mbti"`
	Exp          int64  `json:"exp"`
	ReportCount  int    `json:"reportCount"`
	Swipe        bool   `json:"swipe"`
}

type likedGamesResponse struct {
	GameIDs []int64 `json:"gameIds"`
}

type playGameResponse struct {
	Index  int   `json:"index"`
	GameID int64 `json:"gameId"`
	Main   bool  `json:"main"`
}

type swipeResponse struct {
	Swipe bool `json:"swipe"`
}

type existResponse struct {
	IsExist bool `json:"isExist"`
}

type profileImageResponse struct {
	Index int    `json:"index"`
	URL   string `json:"profileImageUrl"`
	Main  bool   `json:"main"`
}

type uploadTargetResponse struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"uploadUrl"`
	ImageURL  string    `json:"imageUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}
