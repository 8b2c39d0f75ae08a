package repositories

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/myrjola/murderai/internal/errors"
	"github.com/myrjola/murderai/internal/game"
	"github.com/myrjola/murderai/internal/models"
	"github.com/myrjola/murderai/internal/sqlite"
)

var ErrGameNotFound = errors.NewSentinel("game not found")

// ArchiveRepository keeps the transcripts of played games. It is the game.Journal of the server.
type ArchiveRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewArchiveRepository(db *sqlite.Database, logger *slog.Logger) *ArchiveRepository {
	return &ArchiveRepository{
		db:     db,
		logger: logger.With("source", "ArchiveRepository"),
	}
}

func (r *ArchiveRepository) GameOpened(ctx context.Context, snapshot game.Snapshot) error {
	stmt := `INSERT INTO games (id, case_key, title, status, round, points, opened_at)
VALUES (:id, :case_key, :title, :status, :round, :points, :opened_at)`
	g := models.Game{
		ID:       snapshot.ID,
		CaseKey:  snapshot.CaseKey,
		Title:    snapshot.Title,
		Status:   string(snapshot.Status),
		Round:    snapshot.Round,
		Points:   snapshot.Points,
		OpenedAt: snapshot.OpenedAt.UTC(),
		ClosedAt: nil,
	}
	if _, err := r.db.ReadWrite.NamedExecContext(ctx, stmt, g); err != nil {
		return errors.Wrap(err, "insert game", slog.String("game_id", snapshot.ID))
	}
	return nil
}

func (r *ArchiveRepository) EntryLogged(ctx context.Context, sessionID string, seq int, entry game.LogEntry) error {
	stmt := `INSERT INTO transcript_entries (game_id, seq, speaker, message, logged_at)
VALUES (:game_id, :seq, :speaker, :message, :logged_at)`
	e := models.TranscriptEntry{
		GameID:   sessionID,
		Seq:      seq,
		Speaker:  entry.Speaker,
		Message:  entry.Message,
		LoggedAt: entry.At.UTC(),
	}
	if _, err := r.db.ReadWrite.NamedExecContext(ctx, stmt, e); err != nil {
		return errors.Wrap(err, "insert transcript entry", slog.String("game_id", sessionID), slog.Int("seq", seq))
	}
	return nil
}

func (r *ArchiveRepository) GameClosed(ctx context.Context, sessionID string, status game.Status, round int,
	points int) error {
	stmt := `UPDATE games SET status = ?, round = ?, points = ?, closed_at = ? WHERE id = ?`
	res, err := r.db.ReadWrite.ExecContext(ctx, stmt, string(status), round, points, time.Now().UTC(), sessionID)
	if err != nil {
		return errors.Wrap(err, "close game", slog.String("game_id", sessionID))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrap(ErrGameNotFound, "close game", slog.String("game_id", sessionID))
	}
	return nil
}

// Transcript reads back a game and its log, also after the live session is gone.
func (r *ArchiveRepository) Transcript(ctx context.Context, gameID string) (*models.Transcript, error) {
	var (
		t   models.Transcript
		err error
	)
	stmt := `SELECT id, case_key, title, status, round, points, opened_at, closed_at FROM games WHERE id = ?`
	if err = r.db.ReadOnly.GetContext(ctx, &t.Game, stmt, gameID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrGameNotFound, "read game", slog.String("game_id", gameID))
		}
		return nil, errors.Wrap(err, "read game", slog.String("game_id", gameID))
	}

	stmt = `SELECT game_id, seq, speaker, message, logged_at
FROM transcript_entries
WHERE game_id = ?
ORDER BY seq`
	if err = r.db.ReadOnly.SelectContext(ctx, &t.Entries, stmt, gameID); err != nil {
		return nil, errors.Wrap(err, "read transcript entries", slog.String("game_id", gameID))
	}
	return &t, nil
}

// Recent lists the latest games, newest first.
func (r *ArchiveRepository) Recent(ctx context.Context, limit int) ([]models.Game, error) {
	var games []models.Game
	stmt := `SELECT id, case_key, title, status, round, points, opened_at, closed_at
FROM games
ORDER BY opened_at DESC
LIMIT ?`
	if err := r.db.ReadOnly.SelectContext(ctx, &games, stmt, limit); err != nil {
		return nil, errors.Wrap(err, "list recent games")
	}
	return games, nil
}
