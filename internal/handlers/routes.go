package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	chimw "github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/ukydev/office-duty-card/internal/cards"
	"github.com/ukydev/office-duty-card/internal/config"
	"github.com/ukydev/office-duty-card/internal/logging"
	"github.com/ukydev/office-duty-card/internal/middleware"
	"github.com/ukydev/office-duty-card/internal/models"
)

// Handlers groups everything the router mounts. Photos is nil unless photos
// are kept in the database.
type Handlers struct {
	Auth   *AuthHandler
	Cards  *CardHandler
	Drafts *DraftHandler
	Photos *PhotoHandler
	Health http.HandlerFunc
}

// NewRouter builds the HTTP surface.
func NewRouter(cfg config.Config, h Handlers, authMW *middleware.AuthMiddleware) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.RequestLogger())
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.SecurityHeaders(middleware.SecurityHeadersConfig{}))
	if cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
	}

	if h.Health != nil {
		r.Get("/health", h.Health)
	}
	if h.Photos != nil {
		r.Get("/photos/{id}", h.Photos.Get)
	}

	var login http.Handler = http.HandlerFunc(h.Auth.Login)
	if cfg.LoginRateLimit > 0 {
		login = middleware.NewRateLimitMiddleware().RateLimit(cfg.LoginRateLimit, cfg.LoginWindow)(login)
	}

	r.Route("/api", func(r chi.Router) {
		// public routes
		r.Method(http.MethodPost, "/auth/login", login)

		// session routes
		r.Group(func(r chi.Router) {
			r.Use(authMW.Authenticate)
			r.Use(withActor)

			r.Post("/auth/logout", h.Auth.Logout)
			r.Get("/auth/session", h.Auth.Session)
			r.Post("/auth/password", h.Auth.ChangePassword)
			r.With(authMW.RequirePermission(models.PermManageUsers)).Post("/users", h.Auth.CreateUser)

			r.Get("/drafts", h.Drafts.Get)
			r.Put("/drafts", h.Drafts.Put)
			r.Delete("/drafts", h.Drafts.Delete)

			r.Route("/cards", func(r chi.Router) {
				r.With(authMW.RequirePermission(models.PermViewCards)).Get("/", h.Cards.List)
				r.With(authMW.RequirePermission(models.PermExportCards)).Get("/export.xlsx", h.Cards.ExportXLSX)
				r.With(authMW.RequirePermission(models.PermCreateCard)).Post("/validate", h.Cards.Validate)
				r.With(authMW.RequirePermission(models.PermExportCards)).Post("/preview.pdf", h.Cards.PreviewPDF)
				r.With(authMW.RequirePermission(models.PermCreateCard)).Post("/", h.Cards.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.With(authMW.RequirePermission(models.PermViewCards)).Get("/", h.Cards.Get)
					r.With(authMW.RequirePermission(models.PermUpdateCard)).Put("/", h.Cards.Update)
					r.With(authMW.RequirePermission(models.PermDeleteCard)).Delete("/", h.Cards.Delete)
					r.With(authMW.RequirePermission(models.PermExportCards)).Get("/pdf", h.Cards.PDF)
					r.With(authMW.RequirePermission(models.PermViewCards)).Get("/preview/{side}.png", h.Cards.PreviewPNG)
				})
			})
		})
	})

	return r
}

// withActor tags the request context with the signed-in email for events.
func withActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
			r = r.WithContext(cards.WithActor(r.Context(), claims.Email))
		}
		next.ServeHTTP(w, r)
	})
}
