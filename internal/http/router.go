package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Storefront         Storefront
	Logger             *zap.Logger
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	CookieName         string
	CookieSecure       bool
	// StaticDir is served under /images when set.
	StaticDir string
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.RequestSize(cfg.MaxRequestBodySize))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, logger, http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.StaticDir != "" {
		r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(cfg.StaticDir))))
	}

	page := NewPageHandler(cfg.Storefront, cfg.RequestTimeout, logger)
	api := NewAPIHandler(cfg.Storefront, cfg.RequestTimeout, logger)

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(cfg.CookieName, cfg.CookieSecure))
		r.Route("/api/v1", api.Routes)
		page.Routes(r)
	})

	return otelhttp.NewHandler(r, "storefront")
}
