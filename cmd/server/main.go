package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/learnflow/learnflow/internal/curriculum"
	"github.com/learnflow/learnflow/internal/events"
	"github.com/learnflow/learnflow/internal/httpapi"
	"github.com/learnflow/learnflow/internal/identity"
	"github.com/learnflow/learnflow/internal/instructor"
	"github.com/learnflow/learnflow/internal/mastery"
	"github.com/learnflow/learnflow/internal/platform/cache"
	"github.com/learnflow/learnflow/internal/platform/config"
	"github.com/learnflow/learnflow/internal/platform/database"
	"github.com/learnflow/learnflow/internal/platform/logging"
	"github.com/learnflow/learnflow/internal/quiz"
	"github.com/learnflow/learnflow/internal/upstream"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logging.New(os.Stdout, cfg.Log))

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.close()

	if a.feed != nil {
		go a.feed.Run(ctx)
	}
	go a.quizzes.Run(ctx, sweepInterval(cfg.Quiz.IdleTTL), cfg.Quiz.IdleTTL)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      a.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// app is the wired process. Postgres and Redis are optional: without them
// events are dropped and sessions are cached in memory.
type app struct {
	handler http.Handler
	feed    *instructor.Feed
	quizzes *quiz.Registry
	closers []func()
}

// sweepInterval checks for idle quiz sessions a few times per TTL.
func sweepInterval(idle time.Duration) time.Duration {
	return max(idle/4, time.Minute)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	thresholds, err := mastery.ParseThresholds(cfg.Mastery.Thresholds)
	if err != nil {
		return nil, err
	}

	client := upstream.NewClient(upstream.Endpoints{
		Curriculum: cfg.Upstream.CurriculumURL,
		Progress:   cfg.Upstream.ProgressURL,
		Quiz:       cfg.Upstream.QuizURL,
		Auth:       cfg.Upstream.AuthURL,
	}, upstream.WithTimeout(cfg.Upstream.Timeout), upstream.WithCookieName(cfg.Session.CookieName))

	checks := map[string]httpapi.Check{}

	var eventLog events.Logger = events.NopLogger{}
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			a.close()
			return nil, err
		}
		eventLog = events.NewPostgresLogger(db.Pool)
		checks["database"] = db.HealthCheck
	} else {
		slog.Info("LEARN_DATABASE_URL not set, learning events are not recorded")
	}

	var store identity.Store = identity.NewMemoryStore()
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, func() { c.Close() })
		store = identity.NewRedisStore(c)
		checks["cache"] = c.HealthCheck
	}

	var catalog curriculum.Catalog = client
	if cfg.CurriculumPath != "" {
		loader, err := curriculum.NewLoader(cfg.CurriculumPath)
		if err != nil {
			a.close()
			return nil, err
		}
		catalog = loader
	}

	a.quizzes = quiz.NewRegistry(client)

	if cfg.Instructor.FeedEnabled {
		a.feed = instructor.NewFeed(client, cfg.Instructor.PollInterval)
	}

	a.handler = httpapi.New(httpapi.Deps{
		Catalog:    catalog,
		Progress:   client,
		Struggles:  client,
		Sessions:   identity.NewSessions(client, store, cfg.Session.CacheTTL),
		Quizzes:    a.quizzes,
		Events:     eventLog,
		Feed:       a.feed,
		Thresholds: thresholds,
		CookieName: cfg.Session.CookieName,
		Checks:     checks,
	}).Handler()
	return a, nil
}
