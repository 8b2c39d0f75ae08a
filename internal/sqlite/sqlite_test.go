package sqlite_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/myrjola/murderai/internal/sqlite"
	"github.com/myrjola/murderai/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	logger := testhelpers.NewLogger(io.Discard)

	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	_, err = db.ReadWrite.ExecContext(ctx,
		`INSERT INTO games (id, case_key, title, round, points, opened_at) VALUES (?, ?, ?, ?, ?, ?)`,
		"g1", "silicon_valley", "Shutdown at NovaTech", 1, 10, time.Now())
	require.NoError(t, err)

	var status string
	require.NoError(t, db.ReadOnly.GetContext(ctx, &status, `SELECT status FROM games WHERE id = ?`, "g1"))
	require.Equal(t, "active", status)

	_, err = db.ReadOnly.ExecContext(ctx, `DELETE FROM games`)
	require.Error(t, err, "read-only pool must refuse writes")

	_, err = db.ReadWrite.ExecContext(ctx,
		`INSERT INTO transcript_entries (game_id, seq, speaker, message, logged_at) VALUES (?, ?, ?, ?, ?)`,
		"missing", 1, "System", "hello", time.Now())
	require.Error(t, err, "foreign keys are enforced")

	other, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, other.Close()) })
	var count int
	require.NoError(t, other.ReadOnly.GetContext(ctx, &count, `SELECT COUNT(*) FROM games`))
	require.Zero(t, count, "in-memory databases are isolated")
}

func TestDatabase_RunOptimizer(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	db, err := sqlite.NewDatabase(ctx, ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	done := make(chan struct{})
	go func() {
		db.RunOptimizer(ctx, time.Millisecond)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("optimizer did not stop")
	}
}
