package server

import (
	"context"
	"io/fs"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sendrec/storefront/internal/auth"
	"github.com/sendrec/storefront/internal/database"
	"github.com/sendrec/storefront/internal/docs"
	"github.com/sendrec/storefront/internal/ratelimit"
	"github.com/sendrec/storefront/internal/section"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	DB                    database.DBTX
	Pinger                Pinger
	Storage               section.ObjectStorage
	AssetsFS              fs.FS
	JWTSecret             string
	AdminEmail            string
	AdminPasswordHash     string
	BaseURL               string
	S3PublicEndpoint      string
	AllowedFrameAncestors string
	EnableDocs            bool
}

type Server struct {
	router         chi.Router
	pinger         Pinger
	authHandler    *auth.Handler
	sectionHandler *section.Handler
	assetsFS       fs.FS
	enableDocs     bool
}

func New(cfg Config) *Server {
	r := chi.NewRouter()
	r.Use(slogMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders(SecurityConfig{
		BaseURL:               cfg.BaseURL,
		StorageEndpoint:       cfg.S3PublicEndpoint,
		AllowedFrameAncestors: cfg.AllowedFrameAncestors,
	}))

	s := &Server{router: r, pinger: cfg.Pinger, assetsFS: cfg.AssetsFS, enableDocs: cfg.EnableDocs}

	if cfg.DB != nil {
		if cfg.JWTSecret == "" {
			log.Fatal("JWT_SECRET is required; set the environment variable")
		}
		s.authHandler = auth.NewHandler(cfg.JWTSecret, cfg.AdminEmail, cfg.AdminPasswordHash)
		s.sectionHandler = section.NewHandler(cfg.DB, cfg.Storage)
	}

	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)

	if s.enableDocs {
		docs.Mount(s.router)
	}

	if s.authHandler != nil {
		authLimiter := ratelimit.NewLimiter(0.5, 5)
		s.router.Route("/api/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/login", s.authHandler.Login)
		})
	}

	if s.sectionHandler != nil {
		sectionLimiter := ratelimit.NewLimiter(2, 10)
		s.router.Route("/api/sections", func(r chi.Router) {
			r.Get("/", s.sectionHandler.List)
			r.Group(func(r chi.Router) {
				r.Use(sectionLimiter.Middleware)
				r.Use(s.authHandler.Middleware)
				r.Post("/", s.sectionHandler.Create)
				r.Post("/upload-url", s.sectionHandler.UploadURL)
				r.Delete("/{id}", s.sectionHandler.Delete)
			})
		})
		s.router.Get("/", s.sectionHandler.Page)
	}

	if s.assetsFS != nil {
		s.router.Handle("/assets/*", http.StripPrefix("/assets/", newAssetServer(s.assetsFS)))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy","error":"database unreachable"}`))
			return
		}
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
