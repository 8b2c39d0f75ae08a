// Package engine is the entry point for every transport: it starts games, finds them by session ID and forwards
// player actions to them.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/murderai/internal/casefile"
	"github.com/myrjola/murderai/internal/detective"
	"github.com/myrjola/murderai/internal/dialogue"
	"github.com/myrjola/murderai/internal/errors"
	"github.com/myrjola/murderai/internal/game"
	"github.com/myrjola/murderai/internal/logging"
	"github.com/myrjola/murderai/internal/models"
	"github.com/myrjola/murderai/internal/registry"
	"github.com/myrjola/murderai/internal/repositories"
)

var ErrSessionNotFound = errors.NewSentinel("session not found")

// Game is a live session together with the investigator that can play it.
type Game struct {
	Session      *game.Session
	Investigator *detective.Investigator
}

func (g *Game) LastActive() time.Time {
	return g.Session.LastActive()
}

// Archive reads back transcripts of games, including evicted ones.
type Archive interface {
	game.Journal
	Transcript(ctx context.Context, gameID string) (*models.Transcript, error)
	Recent(ctx context.Context, limit int) ([]models.Game, error)
}

type Options struct {
	Library *casefile.Library
	Store   registry.Store[*Game]
	// NewGateway returns the dialogue gateway of a new game. Every game gets its own so that personas of different
	// games never share a conversation.
	NewGateway func() dialogue.Gateway
	// Archive is optional.
	Archive Archive
	Rules   game.Rules
}

type Engine struct {
	library    *casefile.Library
	store      registry.Store[*Game]
	newGateway func() dialogue.Gateway
	archive    Archive
	rules      game.Rules
	logger     *slog.Logger
	rawLogger  *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Engine {
	return &Engine{
		library:    opts.Library,
		store:      opts.Store,
		newGateway: opts.NewGateway,
		archive:    opts.Archive,
		rules:      opts.Rules,
		logger:     logger.With("source", "Engine"),
		rawLogger:  logger,
	}
}

// StartGame opens a game of the case for difficulty and registers it.
func (e *Engine) StartGame(ctx context.Context, difficulty string) (game.Snapshot, error) {
	d, err := casefile.ParseDifficulty(difficulty)
	if err != nil {
		return game.Snapshot{}, errors.Wrap(err, "start game")
	}
	c := e.library.Case(d)
	id := uuid.NewString()
	ctx = logging.WithAttrs(ctx, slog.String("session_id", id))

	gateway := e.newGateway()
	opts := []game.Option{game.WithRules(e.rules)}
	if e.archive != nil {
		opts = append(opts, game.WithJournal(e.archive))
	}
	session := game.New(ctx, id, c, gateway, e.rawLogger, opts...)

	decoder := detective.JSONDecoder{FallbackCamera: ""}
	if cameras := c.Cameras(); len(cameras) > 0 {
		decoder.FallbackCamera = cameras[0]
	}
	e.store.Put(id, &Game{
		Session:      session,
		Investigator: detective.New(gateway, decoder, e.rawLogger),
	})
	e.logger.LogAttrs(ctx, slog.LevelInfo, "started game",
		slog.String("difficulty", string(d)), slog.String("case", c.Key))
	return session.Snapshot(), nil
}

func (e *Engine) get(id string) (*Game, error) {
	g, ok := e.store.Get(id)
	if !ok {
		return nil, errors.Wrap(ErrSessionNotFound, "look up session", slog.String("session_id", id))
	}
	return g, nil
}

// GetSession returns the current state of a game.
func (e *Engine) GetSession(id string) (game.Snapshot, error) {
	g, err := e.get(id)
	if err != nil {
		return game.Snapshot{}, err
	}
	return g.Session.Snapshot(), nil
}

func (e *Engine) QuestionSuspect(ctx context.Context, id, suspectID, text string) (string, error) {
	g, err := e.get(id)
	if err != nil {
		return "", err
	}
	return g.Session.Question(ctx, suspectID, text) //nolint:wrapcheck // input errors are shown to the player as is
}

// Brief asks the detective persona about the case.
func (e *Engine) Brief(ctx context.Context, id, question string) (string, error) {
	g, err := e.get(id)
	if err != nil {
		return "", err
	}
	return g.Session.Brief(ctx, question), nil
}

// UseTool runs a tool given by name. An unknown tool is reported in the result like any other failed use.
func (e *Engine) UseTool(ctx context.Context, id, toolName string, args map[string]string) (game.ToolResult, error) {
	g, err := e.get(id)
	if err != nil {
		return game.ToolResult{}, err
	}
	call, err := game.ParseToolCall(toolName, args)
	if err != nil {
		return game.ToolResult{ //nolint:exhaustruct // nothing ran
			Tool:  game.Tool(toolName),
			Args:  args,
			Error: "Unknown tool: " + toolName,
			Err:   err,
		}, nil
	}
	return g.Session.UseTool(ctx, call), nil
}

func (e *Engine) Accuse(ctx context.Context, id, suspectID string) (game.Outcome, error) {
	g, err := e.get(id)
	if err != nil {
		return game.Outcome{}, err
	}
	return g.Session.Accuse(ctx, suspectID), nil
}

// AutoStep lets the investigator play one turn.
func (e *Engine) AutoStep(ctx context.Context, id string) (detective.Turn, error) {
	g, err := e.get(id)
	if err != nil {
		return detective.Turn{}, err
	}
	ctx = logging.WithAttrs(ctx, slog.String("session_id", id))
	return g.Investigator.Step(ctx, g.Session), nil
}

// Transcript returns the log of a game. Archived games are found even after they were evicted.
func (e *Engine) Transcript(ctx context.Context, id string) (*models.Transcript, error) {
	if e.archive != nil {
		t, err := e.archive.Transcript(ctx, id)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, repositories.ErrGameNotFound) {
			return nil, errors.Wrap(err, "read archived transcript")
		}
	}
	g, err := e.get(id)
	if err != nil {
		return nil, err
	}
	return liveTranscript(g.Session.Snapshot()), nil
}

// RecentGames lists archived games, newest first. Without an archive the list is empty.
func (e *Engine) RecentGames(ctx context.Context, limit int) ([]models.Game, error) {
	if e.archive == nil {
		return []models.Game{}, nil
	}
	games, err := e.archive.Recent(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list archived games")
	}
	if games == nil {
		games = []models.Game{}
	}
	return games, nil
}

func liveTranscript(s game.Snapshot) *models.Transcript {
	entries := make([]models.TranscriptEntry, 0, len(s.Logs))
	for i, l := range s.Logs {
		entries = append(entries, models.TranscriptEntry{
			GameID:   s.ID,
			Seq:      i + 1,
			Speaker:  l.Speaker,
			Message:  l.Message,
			LoggedAt: l.At,
		})
	}
	return &models.Transcript{
		Game: models.Game{
			ID:       s.ID,
			CaseKey:  s.CaseKey,
			Title:    s.Title,
			Status:   string(s.Status),
			Round:    s.Round,
			Points:   s.Points,
			OpenedAt: s.OpenedAt,
			ClosedAt: nil,
		},
		Entries: entries,
	}
}
