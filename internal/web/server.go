package web

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/semaphore"

	"github.com/KamiaGraphy/Kamia-Pas-Photo-Generator/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

type Options struct {
	Store     *session.Store
	Generator session.Generator
	Logger    *slog.Logger

	MaxUploadBytes     int64
	MaxConcurrent      int
	RequestTimeout     time.Duration
	RateLimitPerMinute int
	SecureCookie       bool

	Now func() time.Time
}

type Server struct {
	store  *session.Store
	gen    session.Generator
	logger *slog.Logger
	page   *template.Template
	sem    *semaphore.Weighted
	limit  *rateLimiter

	maxUploadBytes int64
	requestTimeout time.Duration
	secureCookie   bool
}

func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("web: store is required")
	}
	if opts.Generator == nil {
		return nil, errors.New("web: generator is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}

	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 25 << 20
	}
	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 240 * time.Second
	}

	return &Server{
		store:          opts.Store,
		gen:            opts.Generator,
		logger:         logger,
		page:           page,
		sem:            semaphore.NewWeighted(int64(maxConcurrent)),
		limit:          newRateLimiter(opts.RateLimitPerMinute, time.Minute, opts.Now),
		maxUploadBytes: maxUpload,
		requestTimeout: timeout,
		secureCookie:   opts.SecureCookie,
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, accessLog(s.logger), middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/", s.handleIndex)

	for _, sl := range slots {
		r.Post(sl.path, s.handleUpload(sl))
		r.Post(sl.path+"/clear", s.handleClear(sl))
	}

	r.Post("/options", s.handleOptions)
	r.With(s.limit.middleware).Post("/generate", s.handleGenerate)
	r.Get("/result", s.handleResult)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/options", s.handlePresets)
	})

	return r
}
