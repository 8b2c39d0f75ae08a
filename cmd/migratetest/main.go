package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/murderai/internal/errors"
	"github.com/myrjola/murderai/internal/repositories"
	"github.com/myrjola/murderai/internal/sqlite"
	"github.com/myrjola/murderai/internal/testhelpers"
)

// migratetest applies the schema to a copy of a deployed archive and reads it back. Run it before deploying a schema
// change.
func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds

	if sqliteURL, ok = os.LookupEnv("MURDERAI_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "MURDERAI_SQLITE_URL not set")
		cancel()
		os.Exit(1)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		cancel()
		os.Exit(1)
	}

	// Read the latest games back through the repository as a simple smoke test of the schema.
	games, err := repositories.NewArchiveRepository(db, logger).Recent(ctx, 1)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error reading archived games", errors.SlogError(err))
		cancel()
		os.Exit(1)
	}
	if len(games) == 0 {
		logger.LogAttrs(ctx, slog.LevelWarn, "no archived games found, is this the right database?")
	}
	_ = db.Close()

	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
	cancel()
	os.Exit(0)
}
