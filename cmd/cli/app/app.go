// Package app wires the engine for the command line tools.
package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/myrjola/murderai/internal/casefile"
	"github.com/myrjola/murderai/internal/config"
	"github.com/myrjola/murderai/internal/dialogue"
	"github.com/myrjola/murderai/internal/engine"
	"github.com/myrjola/murderai/internal/errors"
	"github.com/myrjola/murderai/internal/game"
	"github.com/myrjola/murderai/internal/logging"
	"github.com/myrjola/murderai/internal/registry"
	"github.com/myrjola/murderai/internal/repositories"
	"github.com/myrjola/murderai/internal/sqlite"
)

type App struct {
	Config config.Config
	Logger *slog.Logger
	Engine *engine.Engine
	db     *sqlite.Database
}

// NewLogger logs to w, which should be stderr so that it does not mix with the game output. Only warnings and errors
// are shown unless verbose is set.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return logging.NewLogger(w, level)
}

// Open loads the configuration from environ and builds an engine that archives games in the configured database.
func Open(ctx context.Context, environ []string, logger *slog.Logger) (*App, error) {
	cfg, err := config.Load(environ)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	var library *casefile.Library
	if library, err = casefile.Open(cfg.CasesDir); err != nil {
		return nil, errors.Wrap(err, "load cases")
	}
	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, cfg.SQLiteURL, logger); err != nil {
		return nil, errors.Wrap(err, "connect to db")
	}
	rules := game.DefaultRules()
	rules.StrictBudget = cfg.StrictBudget
	e := engine.New(engine.Options{
		Library:    library,
		Store:      registry.NewMemory[*engine.Game](logger),
		NewGateway: func() dialogue.Gateway { return dialogue.New(cfg.OpenAI, logger) },
		Archive:    repositories.NewArchiveRepository(db, logger),
		Rules:      rules,
	}, logger)
	return &App{Config: cfg, Logger: logger, Engine: e, db: db}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}
