// Package server exposes element generation and the countdown over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/five82/tinsel/internal/countdown"
	"github.com/five82/tinsel/internal/generator"
)

const (
	maxBodyBytes    = 4 << 10
	shutdownTimeout = 10 * time.Second

	msgGenerateFailed = "Failed to generate image"
)

// Options configure the HTTP handlers.
type Options struct {
	Provider  generator.Provider
	Countdown countdown.Target
	// RemoteReady is reported by /healthz.
	RemoteReady bool
	Now         func() time.Time
	Logger      *zap.Logger
}

type handlers struct {
	provider  generator.Provider
	countdown countdown.Target
	remote    bool
	now       func() time.Time
	logger    *zap.Logger
}

// NewRouter returns the chi router serving the API.
func NewRouter(opts Options) http.Handler {
	h := &handlers{
		provider:  opts.Provider,
		countdown: opts.Countdown,
		remote:    opts.RemoteReady,
		now:       opts.Now,
		logger:    opts.Logger,
	}
	if h.provider == nil {
		h.provider = generator.Unavailable{}
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.logger))

	r.Get("/healthz", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/generate-element", h.generateElement)
		r.Get("/countdown", h.countdownStatus)
	})
	return r
}

func (h *handlers) generateElement(w http.ResponseWriter, r *http.Request) {
	var body generator.GenerateRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var hint generator.Category
	if body.ElementType != nil {
		c, err := generator.ParseCategory(*body.ElementType)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		hint = c
	}

	img, err := h.provider.Generate(r.Context(), hint)
	if err != nil {
		h.logger.Warn("generate element failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("element_type", string(hint)),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, msgGenerateFailed)
		return
	}
	writeJSON(w, http.StatusOK, generator.GenerateResponse{Image: &img})
}

type countdownResponse struct {
	Target  time.Time `json:"target"`
	Days    int       `json:"days"`
	Hours   int       `json:"hours"`
	Minutes int       `json:"minutes"`
	Seconds int       `json:"seconds"`
	Arrived bool      `json:"arrived"`
}

func (h *handlers) countdownStatus(w http.ResponseWriter, _ *http.Request) {
	rem := h.countdown.Remaining(h.now())
	writeJSON(w, http.StatusOK, countdownResponse{
		Target:  rem.Target,
		Days:    rem.Days,
		Hours:   rem.Hours,
		Minutes: rem.Minutes,
		Seconds: rem.Seconds,
		Arrived: rem.Arrived,
	})
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "remote": h.remote})
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, generator.GenerateResponse{Error: msg})
}

// Server is an http.Server bound to the API router.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// New builds a Server listening on addr.
func New(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(opts),
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", ln.Addr().String()))
		errc <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-errc
	s.logger.Info("server stopped")
	return nil
}
