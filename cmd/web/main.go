package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/myrjola/murderai/internal/casefile"
	"github.com/myrjola/murderai/internal/config"
	"github.com/myrjola/murderai/internal/dialogue"
	"github.com/myrjola/murderai/internal/engine"
	"github.com/myrjola/murderai/internal/errors"
	"github.com/myrjola/murderai/internal/game"
	"github.com/myrjola/murderai/internal/logging"
	"github.com/myrjola/murderai/internal/pprofserver"
	"github.com/myrjola/murderai/internal/registry"
	"github.com/myrjola/murderai/internal/repositories"
	"github.com/myrjola/murderai/internal/sqlite"
	"golang.org/x/sync/errgroup"
)

type application struct {
	logger         *slog.Logger
	engine         *engine.Engine
	sessionManager *scs.SessionManager
	secureCookies  bool
}

func run(ctx context.Context, logger *slog.Logger, environ []string) error {
	cfg, err := config.Load(environ)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	var library *casefile.Library
	if library, err = casefile.Open(cfg.CasesDir); err != nil {
		return errors.Wrap(err, "load cases")
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, cfg.SQLiteURL, logger); err != nil {
		return errors.Wrap(err, "connect to db")
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close db", errors.SlogError(closeErr))
		}
	}()

	sessionStore := sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, 24*time.Hour) //nolint:mnd // daily
	sessionManager := scs.New()
	sessionManager.Store = sessionStore
	sessionManager.Lifetime = 12 * time.Hour //nolint:mnd // half a day
	sessionManager.Cookie.Secure = cfg.SecureCookies

	games := registry.NewMemory[*engine.Game](logger)
	rules := game.DefaultRules()
	rules.StrictBudget = cfg.StrictBudget
	app := application{
		logger: logger,
		engine: engine.New(engine.Options{
			Library:    library,
			Store:      games,
			NewGateway: func() dialogue.Gateway { return dialogue.New(cfg.OpenAI, logger) },
			Archive:    repositories.NewArchiveRepository(db, logger),
			Rules:      rules,
		}, logger),
		sessionManager: sessionManager,
		secureCookies:  cfg.SecureCookies,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.configureAndStartServer(ctx, cfg.Addr)
	})
	g.Go(func() error {
		games.RunJanitor(ctx, cfg.JanitorInterval, cfg.SessionIdleTimeout)
		return nil
	})
	g.Go(func() error {
		db.RunOptimizer(ctx, time.Hour)
		return nil
	})
	if cfg.PprofAddr != "" {
		g.Go(func() error {
			return pprofserver.ListenAndServe(ctx, cfg.PprofAddr, logger)
		})
	}
	if err = g.Wait(); err != nil {
		return errors.Wrap(err, "run")
	}
	return nil
}

func main() {
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	})))
	// A missing .env file is fine, the environment might be set up by other means.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.LogAttrs(context.Background(), slog.LevelError, "failed to load .env", errors.SlogError(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if err := run(ctx, logger, os.Environ()); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		stop()
		os.Exit(1)
	}
	stop()
}
