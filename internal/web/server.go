package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"
	"github.com/unrolled/secure"

	"sales-dashboard/internal/dashboard"
	"sales-dashboard/internal/logging"
	"sales-dashboard/internal/render"
	"sales-dashboard/internal/sales"
)

//go:embed templates/*.html
var templateFS embed.FS

// Options configure the dashboard server.
type Options struct {
	Addr            string
	Title           string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	ChartRateLimit  int
	SessionTTL      time.Duration
	SecureCookies   bool
	Production      bool
	ChartSize       render.Size
	Dashboard       dashboard.Options
}

// Server hosts the dashboard UI over HTTP.
type Server struct {
	opts      Options
	dataset   *sales.Dataset
	sessions  *sessionRegistry
	templates *template.Template
	logger    zerolog.Logger
}

// New constructs the dashboard server over an immutable dataset.
func New(dataset *sales.Dataset, opts Options, logger zerolog.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	if opts.Title == "" {
		opts.Title = "Pink Morsel Visualizer"
	}

	logger = logging.Component(logger, "web")
	return &Server{
		opts:      opts,
		dataset:   dataset,
		sessions:  newSessionRegistry(dataset, opts.Dashboard, opts.SessionTTL, opts.SecureCookies, logger),
		templates: tmpl,
		logger:    logger,
	}, nil
}

// Handler builds the router with the middleware stack installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(s.secureHeaders())

	r.Get("/", s.handleDashboard)
	r.Get("/healthz", s.handleHealth)
	r.Get("/api/view", s.handleView)
	r.Post("/api/region", s.handleRegion)

	r.Group(func(gr chi.Router) {
		if s.opts.ChartRateLimit > 0 {
			gr.Use(httprate.Limit(s.opts.ChartRateLimit, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				}),
			))
		}
		gr.Get("/chart.{format}", s.handleChart)
	})

	return r
}

func (s *Server) secureHeaders() func(http.Handler) http.Handler {
	mw := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self'",
		IsDevelopment:         !s.opts.Production,
	})
	return mw.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", listener.Addr().String()).Int("records", s.dataset.Len()).Msg("dashboard listening")
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info().Msg("dashboard stopped")
	return nil
}
