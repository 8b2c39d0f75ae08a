package main

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/myrjola/murderai/internal/e2etest"
	"github.com/myrjola/murderai/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEnviron = []string{
	"MURDERAI_ADDR=localhost:0",
	"MURDERAI_SQLITE_URL=:memory:",
}

func startServer(t *testing.T) *e2etest.Server {
	t.Helper()
	server, err := e2etest.StartServer(t.Context(), io.Discard, testEnviron, run)
	require.NoError(t, err)
	return server
}

func Test_healthy(t *testing.T) {
	server := startServer(t)
	resp, err := server.Client().Get(t.Context(), "/api/healthy")
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func Test_run_InvalidConfig(t *testing.T) {
	err := run(context.Background(), nil, []string{"MURDERAI_SESSION_IDLE_TIMEOUT=-1s"})
	require.Error(t, err)
}

func Test_playGame(t *testing.T) {
	ctx := t.Context()
	client := startServer(t).Client()

	snapshot, err := client.StartGame(ctx, "medium")
	require.NoError(t, err)
	require.Equal(t, "Shutdown at NovaTech", snapshot.Title)
	require.Equal(t, 10, snapshot.Points)
	for _, s := range snapshot.Suspects {
		require.Nil(t, s.IsMurderer, "identity of the murderer must stay hidden")
	}
	id := snapshot.ID

	current, err := client.CurrentGame(ctx)
	require.NoError(t, err)
	require.Equal(t, id, current.ID)

	result, err := client.UseTool(ctx, id, game.ToolLocation, map[string]string{
		"phone_number": "(415) 555-0102", "timestamp": "9:15 PM",
	})
	require.NoError(t, err)
	require.Empty(t, result.Error)
	require.Equal(t, 2, result.Cost)

	result, err = client.UseTool(ctx, id, game.ToolFootage, map[string]string{"location": "nowhere"})
	require.NoError(t, err)
	require.Equal(t, "No camera footage available at this location/time.", result.Error)
	require.Contains(t, result.Hints, "10th_floor_camera")

	result, err = client.UseTool(ctx, id, "get_fingerprints", map[string]string{})
	require.NoError(t, err)
	require.Equal(t, "Unknown tool: get_fingerprints", result.Error)

	reply, err := client.Question(ctx, id, "suspect_1", "Where were you?")
	require.NoError(t, err)
	require.Contains(t, reply, "[MOCK]")

	_, err = client.Question(ctx, id, "suspect_9", "Where were you?")
	require.ErrorIs(t, err, e2etest.ErrUnexpectedStatus)

	turn, err := client.Autoplay(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, turn.Tool)

	outcome, err := client.Accuse(ctx, id, "suspect_1")
	require.NoError(t, err)
	require.Equal(t, game.ResultContinue, outcome.Result)
	require.Equal(t, 2, outcome.NewRound)

	outcome, err = client.Accuse(ctx, id, "suspect_2")
	require.NoError(t, err)
	require.Equal(t, game.ResultWin, outcome.Result)

	snapshot, err = client.Game(ctx, id)
	require.NoError(t, err)
	require.True(t, snapshot.GameOver)
	for _, s := range snapshot.Suspects {
		require.NotNil(t, s.IsMurderer)
	}

	transcript, err := client.Transcript(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "won", transcript.Game.Status)
	require.NotNil(t, transcript.Game.ClosedAt)
	last := transcript.Entries[len(transcript.Entries)-1]
	require.Equal(t, "Correct accusation: James Porter. Case solved.", last.Message)
}

func Test_unknownGame(t *testing.T) {
	ctx := t.Context()
	client := startServer(t).Client()

	resp, err := client.Get(ctx, "/api/games/does-not-exist")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = client.Get(ctx, "/api/games/current")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, err = client.StartGame(ctx, "impossible")
	require.ErrorIs(t, err, e2etest.ErrUnexpectedStatus)
}

func Test_csrfProtection(t *testing.T) {
	server := startServer(t)
	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, server.URL()+"/api/games",
		strings.NewReader(`{"difficulty":"easy"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func Test_playersAreIsolated(t *testing.T) {
	ctx := t.Context()
	server := startServer(t)

	const players = 4
	var wg sync.WaitGroup
	for range players {
		client, err := server.NewClient()
		require.NoError(t, err)
		wg.Add(1)
		go func() {
			defer wg.Done()
			snapshot, startErr := client.StartGame(ctx, "easy")
			if !assert.NoError(t, startErr) {
				return
			}
			current, currentErr := client.CurrentGame(ctx)
			assert.NoError(t, currentErr)
			assert.Equal(t, snapshot.ID, current.ID)
			outcome, accuseErr := client.Accuse(ctx, snapshot.ID, "suspect_1")
			assert.NoError(t, accuseErr)
			assert.Equal(t, 15, outcome.NewPoints)
		}()
	}
	wg.Wait()

	var recent []struct {
		ID string `json:"id"`
	}
	require.NoError(t, server.Client().GetJSON(ctx, "/api/games", &recent))
	require.Len(t, recent, players)
}
