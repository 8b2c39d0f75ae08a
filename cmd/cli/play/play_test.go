package play_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/myrjola/murderai/cmd/cli/play"
	"github.com/myrjola/murderai/internal/casefile"
	"github.com/myrjola/murderai/internal/dialogue"
	"github.com/myrjola/murderai/internal/engine"
	"github.com/myrjola/murderai/internal/game"
	"github.com/myrjola/murderai/internal/registry"
	"github.com/myrjola/murderai/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func newGame(t *testing.T) (*engine.Engine, string) {
	t.Helper()
	logger := testhelpers.NewLogger(io.Discard)
	lib, err := casefile.Embedded()
	require.NoError(t, err)
	e := engine.New(engine.Options{
		Library:    lib,
		Store:      registry.NewMemory[*engine.Game](logger),
		NewGateway: func() dialogue.Gateway { return dialogue.NewOffline() },
		Archive:    nil,
		Rules:      game.DefaultRules(),
	}, logger)
	snapshot, err := e.StartGame(context.Background(), "medium")
	require.NoError(t, err)
	return e, snapshot.ID
}

func TestREPL(t *testing.T) {
	e, id := newGame(t)
	script := strings.Join([]string{
		"help",
		"ask suspect_1 Where were you at nine?",
		"ask suspect_9 hello",
		"",
		"location 415-555-0102 9:15 PM",
		"footage 10th_floor_camera 9:00-9:30 PM",
		"dna sample_Z",
		"bogus",
		"status",
		"accuse suspect_2",
		"status",
	}, "\n")
	var out bytes.Buffer

	err := play.REPL(context.Background(), e, id, strings.NewReader(script), &out)
	require.NoError(t, err)

	output := out.String()
	require.Contains(t, output, "Shutdown at NovaTech")
	require.Contains(t, output, "accuse <suspect_id>")
	require.Contains(t, output, "suspect_1: [MOCK] I received: Where were you at nine?")
	require.Contains(t, output, "Usage: ask <suspect_id> <question>")
	require.Contains(t, output, "-2 pts")
	require.Contains(t, output, "New evidence to test: sample_C, sample_B")
	require.Contains(t, output, "Evidence not found or not testable.")
	require.Contains(t, output, `Unknown command "bogus"`)
	require.Contains(t, output, "Round 1/3, 5 points. Unlocked: sample_C, sample_B.")
	require.Contains(t, output, "CORRECT! James Porter was the murderer.")
	require.True(t, strings.HasSuffix(output, "The case is closed.\n"), "commands after the verdict are ignored")
}

func TestREPL_MultiWordTargets(t *testing.T) {
	tests := []struct {
		name    string
		command string
	}{
		{name: "phone with country code", command: "location +1 (415) 555-0102 | 9:15 PM"},
		{name: "quoted phone", command: `location "+1 (415) 555-0102" 9:15 PM`},
		{name: "quoted camera", command: `footage "10th floor camera" 9:00-9:30 PM`},
		{name: "camera with separator", command: "footage 10th floor | 9:00-9:30 PM"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, id := newGame(t)
			var out bytes.Buffer
			err := play.REPL(context.Background(), e, id, strings.NewReader(tt.command+"\n"), &out)
			require.NoError(t, err)
			require.NotContains(t, out.String(), "Try one of:")

			snapshot, err := e.GetSession(id)
			require.NoError(t, err)
			require.Less(t, snapshot.Points, 10)
			require.Len(t, snapshot.Evidence, 1)
		})
	}
}

func TestREPL_Quit(t *testing.T) {
	e, id := newGame(t)
	var out bytes.Buffer
	err := play.REPL(context.Background(), e, id, strings.NewReader("quit\naccuse suspect_2\n"), &out)
	require.NoError(t, err)
	require.NotContains(t, out.String(), "CORRECT!")

	snapshot, err := e.GetSession(id)
	require.NoError(t, err)
	require.False(t, snapshot.GameOver)
}

func TestWatch(t *testing.T) {
	e, id := newGame(t)
	var out bytes.Buffer

	// Offline dialogue never yields a decision, so the detective keeps checking the first camera.
	err := play.Watch(context.Background(), e, id, 6, &out)
	require.NoError(t, err)

	output := out.String()
	require.Contains(t, output, "--- Turn 6 ---")
	require.Contains(t, output, "Detective uses get_footage:")
	require.Contains(t, output, "Not enough investigation points!")
	require.Contains(t, output, "The detective gave up after 6 turns with -2 points left.")
}
