package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/myrjola/murderai/internal/casefile"
	"github.com/myrjola/murderai/internal/dialogue"
	"github.com/myrjola/murderai/internal/game"
	"github.com/myrjola/murderai/internal/repositories"
	"github.com/myrjola/murderai/internal/sqlite"
	"github.com/myrjola/murderai/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func newTestArchive(t *testing.T) *repositories.ArchiveRepository {
	t.Helper()
	logger := testhelpers.NewLogger(io.Discard)
	db, err := sqlite.NewDatabase(context.Background(), ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	return repositories.NewArchiveRepository(db, logger)
}

func TestArchiveRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	archive := newTestArchive(t)

	lib, err := casefile.Embedded()
	require.NoError(t, err)
	s := game.New(ctx, "archived-game", lib.Case(casefile.Easy), dialogue.NewOffline(),
		testhelpers.NewLogger(io.Discard), game.WithJournal(archive))

	_, err = s.Question(ctx, "suspect_1", "Did you see Derek?")
	require.NoError(t, err)
	require.True(t, s.UseTool(ctx, game.FootageQuery{Location: "back door", TimeRange: ""}).OK())
	require.Equal(t, game.ResultWin, s.Accuse(ctx, "suspect_2").Result)

	transcript, err := archive.Transcript(ctx, "archived-game")
	require.NoError(t, err)
	require.Equal(t, "coffee_shop", transcript.Game.CaseKey)
	require.Equal(t, "won", transcript.Game.Status)
	require.Equal(t, 7, transcript.Game.Points)
	require.NotNil(t, transcript.Game.ClosedAt)

	require.Len(t, transcript.Entries, 4)
	require.Equal(t, "To Mia Torres: Did you see Derek?", transcript.Entries[0].Message)
	require.Equal(t, "Mia Torres", transcript.Entries[1].Speaker)
	require.Contains(t, transcript.Entries[2].Message, "Used get_footage. Cost: 3 pts.")
	require.Equal(t, "Correct accusation: Derek Shaw. Case solved.", transcript.Entries[3].Message)
	for i, e := range transcript.Entries {
		require.Equal(t, i+1, e.Seq)
	}

	recent, err := archive.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "archived-game", recent[0].ID)
}

func TestArchiveRepository_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	archive := newTestArchive(t)

	_, err := archive.Transcript(ctx, "missing")
	require.ErrorIs(t, err, repositories.ErrGameNotFound)

	err = archive.GameClosed(ctx, "missing", game.StatusLost, 3, 0)
	require.ErrorIs(t, err, repositories.ErrGameNotFound)
}
