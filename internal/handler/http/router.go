package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shelfable/bookstore/internal/repository"
	"github.com/shelfable/bookstore/internal/service"
	"github.com/shelfable/bookstore/pkg/health"
	"github.com/shelfable/bookstore/pkg/middleware"
)

// RouterConfig carries the HTTP-level knobs the router needs.
type RouterConfig struct {
	CORS             middleware.CORSConfig
	Cookies          CookieConfig
	LoginRatePerHour int
	LoginRateBurst   int
}

// RouterDeps bundles the services and repositories the routes are built on.
type RouterDeps struct {
	Auth        *service.AuthService
	Users       *service.UserService
	Roles       repository.RoleRepository
	Permissions repository.PermissionRepository
	Books       repository.BookRepository
	Authors     repository.AuthorRepository
	Publishers  repository.PublisherRepository
	Categories  repository.CategoryRepository
	Health      *health.Handler
	Logger      *slog.Logger
}

// NewRouter creates a chi router with all bookstore routes registered.
func NewRouter(deps RouterDeps, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.PrometheusMetrics("bookstore"))

	// Health check endpoints
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Token validator that bridges to the auth service.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := deps.Auth.VerifyAccess(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID:      claims.Subject,
			Roles:       claims.Roles,
			Permissions: claims.Permissions,
		}, nil
	}

	authHandler := NewAuthHandler(deps.Auth, cfg.Cookies, deps.Logger)
	loginLimiter := middleware.RateLimit(
		middleware.PerHour(cfg.LoginRatePerHour),
		cfg.LoginRateBurst,
		deps.Logger,
	)

	// Auth endpoints (public). Refresh, logout, and the form-encoded token
	// grant stay outside the JSON content-type guard: cookie-only clients
	// send refresh and logout with no body at all.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(ContentTypeJSON).Post("/register", authHandler.Register)
		r.With(ContentTypeJSON, loginLimiter).Post("/login", authHandler.Login)
		r.With(loginLimiter).Post("/token", authHandler.Token)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/logout", authHandler.Logout)

		// Authenticated auth endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))

			r.Get("/me", authHandler.Me)
			r.With(ContentTypeJSON).Put("/change-password", authHandler.ChangePassword)
		})
	})

	// User administration (auth + permission required)
	userHandler := NewUserHandler(deps.Users)
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.With(middleware.RequirePermission("users:read")).Get("/", userHandler.List)
		r.With(middleware.RequirePermission("users:read")).Get("/{id}", userHandler.Get)
		r.With(middleware.RequirePermission("users:read")).Get("/{id}/roles", userHandler.GetRoles)
		r.With(middleware.RequirePermission("users:read")).Get("/{id}/permissions", userHandler.GetPermissions)
		r.With(middleware.RequirePermission("users:write")).Post("/", userHandler.Create)
		r.With(middleware.RequirePermission("users:write")).Put("/{id}", userHandler.Update)
		r.With(middleware.RequirePermission("users:write")).Put("/{id}/roles", userHandler.SetRoles)
		r.With(middleware.RequirePermission("users:write")).Delete("/{id}", userHandler.Delete)
	})

	// Role and permission administration
	roleHandler := NewRoleHandler(deps.Roles, deps.Logger)
	r.Route("/api/v1/roles", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.With(middleware.RequirePermission("roles:read")).Get("/", roleHandler.List)
		r.With(middleware.RequirePermission("roles:read")).Get("/{id}", roleHandler.Get)
		r.With(middleware.RequirePermission("roles:read")).Get("/{id}/permissions", roleHandler.GetPermissions)
		r.With(middleware.RequirePermission("roles:write")).Post("/", roleHandler.Create)
		r.With(middleware.RequirePermission("roles:write")).Put("/{id}", roleHandler.Update)
		r.With(middleware.RequirePermission("roles:write")).Put("/{id}/permissions", roleHandler.SetPermissions)
		r.With(middleware.RequirePermission("roles:write")).Delete("/{id}", roleHandler.Delete)
	})

	permissionHandler := NewPermissionHandler(deps.Permissions, deps.Logger)
	r.Route("/api/v1/permissions", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.With(middleware.RequirePermission("roles:read")).Get("/", permissionHandler.List)
		r.With(middleware.RequirePermission("roles:read")).Get("/{id}", permissionHandler.Get)
		r.With(middleware.RequirePermission("roles:write")).Post("/", permissionHandler.Create)
		r.With(middleware.RequirePermission("roles:write")).Put("/{id}", permissionHandler.Update)
		r.With(middleware.RequirePermission("roles:write")).Delete("/{id}", permissionHandler.Delete)
	})

	// Catalog: reads are public, writes need the matching permission.
	catalogHandler := NewCatalogHandler(deps.Books, deps.Authors, deps.Publishers, deps.Categories, deps.Logger)

	r.Route("/api/v1/books", func(r chi.Router) {
		r.Get("/", catalogHandler.ListBooks)
		r.Get("/{id}", catalogHandler.GetBook)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequirePermission("books:write"))

			r.Post("/", catalogHandler.CreateBook)
			r.Put("/{id}", catalogHandler.UpdateBook)
			r.Delete("/{id}", catalogHandler.DeleteBook)
		})
	})

	r.Route("/api/v1/authors", func(r chi.Router) {
		r.Get("/", catalogHandler.ListAuthors)
		r.Get("/{id}", catalogHandler.GetAuthor)
		r.Get("/{id}/books", catalogHandler.ListAuthorBooks)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequirePermission("authors:write"))

			r.Post("/", catalogHandler.CreateAuthor)
			r.Put("/{id}", catalogHandler.UpdateAuthor)
			r.Delete("/{id}", catalogHandler.DeleteAuthor)
		})
	})

	r.Route("/api/v1/publishers", func(r chi.Router) {
		r.Get("/", catalogHandler.ListPublishers)
		r.Get("/{id}", catalogHandler.GetPublisher)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequirePermission("publishers:write"))

			r.Post("/", catalogHandler.CreatePublisher)
			r.Put("/{id}", catalogHandler.UpdatePublisher)
			r.Delete("/{id}", catalogHandler.DeletePublisher)
		})
	})

	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/", catalogHandler.ListCategories)
		r.Get("/tree", catalogHandler.CategoryTree)
		r.Get("/{id}", catalogHandler.GetCategory)
		r.Get("/{id}/books", catalogHandler.ListCategoryBooks)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequirePermission("categories:write"))

			r.Post("/", catalogHandler.CreateCategory)
			r.Put("/{id}", catalogHandler.UpdateCategory)
			r.Delete("/{id}", catalogHandler.DeleteCategory)
		})
	})

	return r
}
