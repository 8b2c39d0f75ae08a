package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/murderai/internal/e2etest"
	"github.com/myrjola/murderai/internal/errors"
	"github.com/myrjola/murderai/internal/game"
	"github.com/myrjola/murderai/internal/logging"
)

var ErrSmokeTest = errors.NewSentinel("smoke test failed")

// PlayShortGame starts an easy game, uses a tool and makes a wrong accusation. The game stays open.
func PlayShortGame(ctx context.Context, client *e2etest.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second) //nolint:mnd // language model replies can be slow
	defer cancel()

	snapshot, err := client.StartGame(ctx, "easy")
	if err != nil {
		return errors.Wrap(err, "start game")
	}
	ctx = logging.WithAttrs(ctx, slog.String("session_id", snapshot.ID))

	var result game.ToolResult
	if result, err = client.UseTool(ctx, snapshot.ID, game.ToolFootage, map[string]string{
		"location": snapshot.Cameras[0],
	}); err != nil {
		return errors.Wrap(err, "use tool")
	}
	if !result.OK() {
		return errors.Wrap(ErrSmokeTest, "footage of the first camera", slog.String("error", result.Error))
	}
	if _, err = client.Question(ctx, snapshot.ID, snapshot.Suspects[0].ID, "Where were you last night?"); err != nil {
		return errors.Wrap(err, "question suspect")
	}
	if _, err = client.Transcript(ctx, snapshot.ID); err != nil {
		return errors.Wrap(err, "get transcript")
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		url      = "https://" + hostname
		client   *e2etest.Client
		err      error
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", url))

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server is not healthy", errors.SlogError(err))
		os.Exit(1)
	}
	if err = PlayShortGame(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error playing a game", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
