// Package httpapi exposes the member and profile use cases over REST.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/spacestar/internal/common"
	"github.com/dmitrijs2005/spacestar/internal/logging"
	"github.com/dmitrijs2005/spacestar/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type MemberService interface {
	Register(ctx context.Context, in *models.NewMember) (*models.Member, error)
	CheckNickname(ctx context.Context, nickname string) (*models.NicknameResult, error)
	Login(ctx context.Context, email string) (string, error)
	GetMember(ctx context.Context, uuid string) (*models.Member, error)
	UpdateMemberInfo(ctx context.Context, uuid string, in *models.MemberInfoUpdate) error
	UpdateProfileImages(ctx context.Context, uuid string, images []models.ProfileImageInput) error
	Withdraw(ctx context.Context, uuid string) error
}

type ProfileService interface {
	CheckProfile(ctx context.Context, uuid string) (*models.ProfileStatus, error)
	GetProfileInfo(ctx context.Context, uuid string) (*models.Profile, error)
	UpdateProfileInfo(ctx context.Context, uuid string, in *models.ProfileInfoUpdate) error
	GetLikedGames(ctx context.Context, uuid string) ([]int64, error)
	GetPlayGames(ctx context.Context, uuid string) ([]models.IndexedPlayGame, error)
	GetSwipe(ctx context.Context, uuid string) (bool, error)
	UpdateSwipe(ctx context.Context, uuid string, swipe bool) error
	ListProfileImages(ctx context.Context, uuid string) ([]models.IndexedProfileImage, error)
	GetMainProfileImage(ctx context.Context, uuid string) (*models.ProfileImage, error)
	AddProfileImage(ctx context.Context, uuid string, in models.ProfileImageInput) (*models.ProfileImage, error)
	DeleteProfileImage(ctx context.Context, uuid, url string) error
	SetMainProfileImage(ctx context.Context, uuid, url string) error
	PresignProfileImageUpload(ctx context.Context, uuid string) (*models.UploadTarget, error)
}

type Handler struct {
	members  MemberService
	profiles ProfileService
	log      logging.Logger
}

func NewHandler(ms MemberService, ps ProfileService, log logging.Logger) *Handler {
	return &Handler{members: ms, profiles: ps, log: log.With("module", "http_api")}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.log, err)
}

// --- auth ---

func (h *Handler) join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := req.toModel()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	m, err := h.members.Register(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, newMemberResponse(m))
}

func (h *Handler) checkNickname(w http.ResponseWriter, r *http.Request) {
	nickname := chi.URLParam(r, "nickname")
	if nickname == "" {
		h.fail(w, r, common.ErrInvalidRequest)
		return
	}

	res, err := h.members.CheckNickname(r.Context(), nickname)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nicknameResponse{Duplicated: res.Duplicated, Message: res.Message})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if !validEmail(req.Email) {
		h.fail(w, r, common.ErrInvalidRequest)
		return
	}

	token, err := h.members.Login(r.Context(), req.Email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set(common.AuthorizationHeaderName, token)
	writeOK(w, http.StatusOK, loginResponse{AccessToken: token})
}

// --- member ---

func (h *Handler) getMember(w http.ResponseWriter, r *http.Request) {
	m, err := h.members.GetMember(r.Context(), identityFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, newMemberResponse(m))
}

func (h *Handler) updateMemberInfo(w http.ResponseWriter, r *http.Request) {
	var req memberInfoRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := req.toModel()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.members.UpdateMemberInfo(r.Context(), identityFrom(r.Context()), in); err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

func (h *Handler) updateProfileImages(w http.ResponseWriter, r *http.Request) {
	var req profileImagesRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.members.UpdateProfileImages(r.Context(), identityFrom(r.Context()), req.toModel()); err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

func (h *Handler) withdraw(w http.ResponseWriter, r *http.Request) {
	if err := h.members.Withdraw(r.Context(), identityFrom(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

// --- profile ---

func (h *Handler) profileExist(w http.ResponseWriter, r *http.Request) {
	st, err := h.profiles.CheckProfile(r.Context(), identityFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, existResponse{IsExist: !st.NeedsOnboarding})
}

func (h *Handler) getProfileInfo(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.GetProfileInfo(r.Context(), identityFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, profileResponse{
		Introduction: p.Introduction,
		MBTI:         p.MBTI,
		Exp:          p.Exp,
		ReportCount:  p.ReportCount,
		Swipe:        p.Swipe,
	})
}

func (h *Handler) updateProfileInfo(w http.ResponseWriter, r *http.Request) {
	var req profileInfoRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.profiles.UpdateProfileInfo(r.Context(), identityFrom(r.Context()), req.toModel()); err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

func (h *Handler) getLikedGames(w http.ResponseWriter, r *http.Request) {
	ids, err := h.profiles.GetLikedGames(r.Context(), identityFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, likedGamesResponse{GameIDs: ids})
}

func (h *Handler) getPlayGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.profiles.GetPlayGames(r.Context(), identityFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := make([]playGameResponse, 0, len(games))
	for _, g := range games {
		out = append(out, playGameResponse{Index: g.Index, GameID: g.GameID, Main: g.Main})
	}
	writeOK(w, http.StatusOK, out)
}

func (h *Handler) getSwipe(w http.ResponseWriter, r *http.Request) {
	swipe, err := h.profiles.GetSwipe(r.Context(), identityFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, swipeResponse{Swipe: swipe})
}

func (h *Handler) updateSwipe(w http.ResponseWriter, r *http.Request) {
	var req swipeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Swipe == nil {
		h.fail(w, r, common.ErrInvalidRequest)
		return
	}

	if err := h.profiles.UpdateSwipe(r.Context(), identityFrom(r.Context()), *req.Swipe); err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

// --- profile images ---

func (h *Handler) listProfileImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.profiles.ListProfileImages(r.Context(), identityFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := make([]profileImageResponse, 0, len(images))
	for _, img := range images {
		out = append(out, profileImageResponse{Index: img.Index, URL: img.URL, Main: img.Main})
	}
	writeOK(w, http.StatusOK, out)
}

func (h *Handler) addProfileImage(w http.ResponseWriter, r *http.Request) {
	var req imageURLRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.URL == "" {
		h.fail(w, r, common.ErrInvalidRequest)
		return
	}

	img, err := h.profiles.AddProfileImage(r.Context(), identityFrom(r.Context()), models.ProfileImageInput{URL: req.URL, Idx: req.Index})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, profileImageResponse{Index: img.Idx, URL: img.URL, Main: img.Main})
}

func (h *Handler) deleteProfileImage(w http.ResponseWriter, r *http.Request) {
	var req imageURLRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.URL == "" {
		h.fail(w, r, common.ErrInvalidRequest)
		return
	}

	if err := h.profiles.DeleteProfileImage(r.Context(), identityFrom(r.Context()), req.URL); err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

func (h *Handler) getMainProfileImage(w http.ResponseWriter, r *http.Request) {
	img, err := h.profiles.GetMainProfileImage(r.Context(), identityFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, profileImageResponse{Index: img.Idx, URL: img.URL, Main: img.Main})
}

func (h *Handler) setMainProfileImage(w http.ResponseWriter, r *http.Request) {
	var req imageURLRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.URL == "" {
		h.fail(w, r, common.ErrInvalidRequest)
		return
	}

	if err := h.profiles.SetMainProfileImage(r.Context(), identityFrom(r.Context()), req.URL); err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

func (h *Handler) presignUpload(w http.ResponseWriter, r *http.Request) {
	t, err := h.profiles.PresignProfileImageUpload(r.Context(), identityFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, uploadTargetResponse{Key: t.Key, UploadURL: t.UploadURL, ImageURL: t.ImageURL, ExpiresAt: t.ExpiresAt})
}
