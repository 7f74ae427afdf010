// Package server exposes poster sessions and the portfolio over HTTP.
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/xob0t/posterkit/configs"
	"github.com/xob0t/posterkit/pkg/portfolio"
	"github.com/xob0t/posterkit/pkg/render"
	"github.com/xob0t/posterkit/pkg/session"
	"github.com/xob0t/posterkit/pkg/suggest"
)

// maxUploadBytes bounds image uploads.
const maxUploadBytes = 20 << 20

// Server routes HTTP requests to sessions and the portfolio store.
type Server struct {
	sessions *session.Manager
	store    portfolio.Store
}

// New creates a Server.
func New(sessions *session.Manager, store portfolio.Store) *Server {
	return &Server{sessions: sessions, store: store}
}

// Routes builds the chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", handleCategories)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteSession)
			r.Post("/image", s.handleUploadImage)
			r.Post("/generate", s.handleGenerate)
			r.Post("/suggestion", s.handleApplySuggestion)
			r.Get("/state", s.handleGetState)
			r.Patch("/state", s.handleEdit)
			r.Post("/undo", s.handleUndo)
			r.Post("/redo", s.handleRedo)
			r.Get("/render", s.handleRender)
			r.Get("/download", s.handleDownload)
			r.Post("/save", s.handleSave)
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/", s.handleListPortfolio)
			r.Get("/{pid}", s.handleGetPortfolio)
			r.Get("/{pid}/download", s.handleDownloadPortfolio)
			r.Delete("/{pid}", s.handleDeletePortfolio)
		})
	})

	return r
}

// RunServe starts the HTTP API and blocks until SIGINT or SIGTERM.
func RunServe(args []string) error {
	cfg, err := configs.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(cfg.NewLogger(os.Stderr))

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	port := fs.Int("port", cfg.Server.Port, "listen port")
	fs.IntVar(port, "p", cfg.Server.Port, "listen port (shorthand)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	suggester, err := newSuggester(ctx, cfg)
	if err != nil {
		return err
	}

	store, closeStore, err := newStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	fonts := render.NewFontCatalog(cfg.Render.FontDir)
	manager := session.NewManager(func() *session.Session {
		opts := session.Options{
			Engine:   render.NewEngine(render.Options{MaxDimension: cfg.Render.MaxDimension, Fonts: fonts}),
			Language: cfg.Gemini.Language,
		}
		if suggester != nil {
			opts.Suggester = suggester
		}
		return session.New(opts)
	}, cfg.Server.SessionIdleTTL)
	go sweepSessions(ctx, manager, cfg.Server.SessionIdleTTL)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(*port),
		Handler:           New(manager, store).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("posterkit API listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newSuggester returns nil when no API key is configured; sessions then
// accept only client-supplied suggestions.
func newSuggester(ctx context.Context, cfg *configs.Config) (*suggest.GeminiClient, error) {
	if cfg.Gemini.APIKey == "" {
		slog.Warn("GEMINI_API_KEY not set, server-side generation disabled")
		return nil, nil
	}
	temp := cfg.Gemini.Temperature
	client, err := suggest.NewGeminiClient(ctx, suggest.Config{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.ModelName,
		Temperature: &temp,
		Timeout:     cfg.Gemini.RequestTimeout,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("gemini client ready", "model", cfg.Gemini.ModelName)
	return client, nil
}

func newStore(cfg *configs.Config) (portfolio.Store, func(), error) {
	pc := cfg.Portfolio
	if pc.RedisAddr == "" {
		slog.Info("portfolio kept in memory")
		return portfolio.NewMemoryStore(), func() {}, nil
	}
	client, err := portfolio.ConnectRedis(pc.RedisAddr, pc.RedisPassword, pc.RedisDB)
	if err != nil {
		return nil, nil, fmt.Errorf("portfolio store: %w", err)
	}
	return portfolio.NewRedisStore(client, pc.Key), func() { client.Close() }, nil
}

func sweepSessions(ctx context.Context, m *session.Manager, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	t := time.NewTicker(ttl / 4)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}
