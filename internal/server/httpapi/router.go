package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/spacestar/internal/logging"
	"github.com/dmitrijs2005/spacestar/internal/server/metrics"
	"github.com/dmitrijs2005/spacestar/internal/server/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig carries the cross-cutting settings of the REST API.
type RouterConfig struct {
	JWTSecret      []byte
	AllowedOrigins []string
	// AuthLimiter throttles the unauthenticated /auth routes. Nil disables it.
	AuthLimiter ratelimit.Limiter
	// Ping reports readiness on /healthz. Nil means always ready.
	Ping func(ctx context.Context) error
}

func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogContext)
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/healthz", healthz(cfg.Ping))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if cfg.AuthLimiter != nil {
				r.Use(ratelimit.Middleware("auth", cfg.AuthLimiter, h.log, tooManyRequests))
			}
			r.Post("/join", h.join)
			r.Get("/nickname/{nickname}", h.checkNickname)
			r.Post("/login", h.login)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireBearer(cfg.JWTSecret))

			r.Get("/member", h.getMember)
			r.Delete("/member", h.withdraw)
			r.Put("/member/info", h.updateMemberInfo)
			r.Put("/member/profile-images", h.updateProfileImages)

			r.Get("/profile/exist", h.profileExist)
			r.Get("/profile/info", h.getProfileInfo)
			r.Put("/profile/info", h.updateProfileInfo)
			r.Get("/profile/liked-games", h.getLikedGames)
			r.Get("/profile/play-games", h.getPlayGames)
			r.Get("/profile/swipe", h.getSwipe)
			r.Put("/profile/swipe", h.updateSwipe)

			r.Get("/profile/images", h.listProfileImages)
			r.Post("/profile/images", h.addProfileImage)
			r.Delete("/profile/images", h.deleteProfileImage)
			r.Get("/profile/images/main", h.getMainProfileImage)
			r.Put("/profile/images/main", h.setMainProfileImage)
			r.Post("/profile/images/upload-url", h.presignUpload)
		})
	})

	return r
}

func healthz(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unavailable"))
				return
			}
		}
		_, _ = w.Write([]byte("ok"))
	}
}

// requestLogContext tags every log line of a request with its id.
func requestLogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(logging.ContextWith(r.Context(), "request_id", id))
		}
		next.ServeHTTP(w, r)
	})
}
