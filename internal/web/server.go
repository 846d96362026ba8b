// Package web provides the console HTTP server and its middleware stack.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nimbusops/console/internal/artifact"
	"github.com/nimbusops/console/internal/config"
	"github.com/nimbusops/console/internal/platform"
	"github.com/nimbusops/console/internal/render"
	"github.com/nimbusops/console/internal/theme"
	"github.com/nimbusops/console/internal/web/handlers"
	"github.com/nimbusops/console/internal/web/static"
	"github.com/nimbusops/console/internal/widget"
)

// Server is the console HTTP server.
type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	limiter *RateLimiter
}

// ServerConfig contains everything the server routes need.
type ServerConfig struct {
	Logger      *slog.Logger
	Config      *config.Config
	Client      *platform.Client
	Theme       *theme.Manager
	Artifacts   *artifact.Store
	Controllers map[widget.Surface]*widget.Controller
}

// NewServer wires all handlers onto a mux and returns the server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if cfg.Config == nil {
		return nil, errors.New("config is required")
	}
	if cfg.Client == nil {
		return nil, errors.New("platform client is required")
	}
	if cfg.Theme == nil {
		return nil, errors.New("theme manager is required")
	}
	if cfg.Artifacts == nil {
		return nil, errors.New("artifact store is required")
	}

	mux := http.NewServeMux()
	markdown := render.NewMarkdown()

	handlers.NewHealth(cfg.Logger).RegisterRoutes(mux)
	handlers.NewPages(cfg.Logger, cfg.Theme, cfg.Controllers, cfg.Artifacts, markdown).RegisterRoutes(mux)
	handlers.NewChat(handlers.ChatConfig{
		Logger:      cfg.Logger,
		Controllers: cfg.Controllers,
		Artifacts:   cfg.Artifacts,
		Markdown:    markdown,
	}).RegisterRoutes(mux)
	handlers.NewArtifacts(cfg.Logger, cfg.Artifacts, markdown).RegisterRoutes(mux)
	handlers.NewPII(cfg.Logger, cfg.Client, cfg.Theme).RegisterRoutes(mux)
	handlers.NewPanels(cfg.Logger, cfg.Client, cfg.Theme).RegisterRoutes(mux)
	handlers.NewPrefs(cfg.Logger, cfg.Theme).RegisterRoutes(mux)

	mux.Handle("GET /static/", http.StripPrefix("/static/", static.Handler()))

	var limiter *RateLimiter
	if cfg.Config.RateLimitRPS > 0 {
		limiter = NewRateLimiter(float64(cfg.Config.RateLimitRPS), cfg.Config.RateLimitBurst, cfg.Logger)
	}

	return &Server{mux: mux, logger: cfg.Logger, limiter: limiter}, nil
}

// ServeHTTP applies the middleware stack:
// Recovery → Logging → RateLimit → Routes. Static files skip rate limiting.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.setSecurityHeaders(w)

	var handler http.Handler = s.mux
	if s.limiter != nil && !strings.HasPrefix(r.URL.Path, "/static/") {
		handler = s.limiter.Middleware(handler)
	}
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RecoveryMiddleware(s.logger)(handler)

	handler.ServeHTTP(w, r)
}

// setSecurityHeaders applies the response security headers.
func (s *Server) setSecurityHeaders(w http.ResponseWriter) {
	// Inline styles carry the theme variables; inline scripts are not used.
	csp := "default-src 'self'; " +
		"script-src 'self'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"connect-src 'self'; " +
		"img-src 'self' data:"
	w.Header().Set("Content-Security-Policy", csp)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
}

// Handler returns the server as an http.Handler for mounting.
func (s *Server) Handler() http.Handler {
	return s
}
