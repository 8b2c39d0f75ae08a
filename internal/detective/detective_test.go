package detective_test

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/myrjola/murderai/internal/casefile"
	"github.com/myrjola/murderai/internal/detective"
	"github.com/myrjola/murderai/internal/dialogue"
	"github.com/myrjola/murderai/internal/game"
	"github.com/myrjola/murderai/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestJSONDecoder(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  detective.Action
	}{
		{
			name:  "plain object",
			reply: `{"thought": "Check the DNA.", "action": "use_tool", "tool_name": "get_dna_test", "args": {"evidence_id": "sample_A"}}`,
			want: detective.Action{
				Thought:  "Check the DNA.",
				Action:   "use_tool",
				ToolName: "get_dna_test",
				Args:     map[string]any{"evidence_id": "sample_A"},
			},
		},
		{
			name: "code fence with commentary",
			reply: "Let me think.\n```json\n{\"thought\": \"It was James.\", \"action\": \"accuse\", " +
				"\"suspect_id\": \"suspect_2\"}\n```\nGood luck!",
			want: detective.Action{Thought: "It was James.", Action: "accuse", SuspectID: "suspect_2"},
		},
		{
			name:  "skips objects without a known action",
			reply: `Example: {"foo": 1}. Answer: {"thought": "Ask.", "action": "chat", "suspect_id": "suspect_1", "message": "Why?"}`,
			want:  detective.Action{Thought: "Ask.", Action: "chat", SuspectID: "suspect_1", Message: "Why?"},
		},
		{
			name:  "garbage falls back to the camera",
			reply: "I refuse to answer in JSON {not json",
			want: detective.Action{
				Thought:  "I am confused. I will check the footage.",
				Action:   "use_tool",
				ToolName: "get_footage",
				Args:     map[string]any{"location": "10th_floor_camera"},
			},
		},
		{
			name:  "empty reply falls back",
			reply: "",
			want:  detective.JSONDecoder{}.Fallback(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, detective.JSONDecoder{}.Decode(tt.reply))
		})
	}

	custom := detective.JSONDecoder{FallbackCamera: "lobby_camera"}.Decode("nope")
	require.Equal(t, map[string]any{"location": "lobby_camera"}, custom.Args)
}

func TestAction_StringArgs(t *testing.T) {
	a := detective.JSONDecoder{}.Decode(`{"action": "use_tool", "args": {"phone_number": 4155550102, "timestamp": null}}`)
	require.Equal(t, map[string]string{"phone_number": "4155550102"}, a.StringArgs())
}

type scriptedReasoner struct {
	mu      sync.Mutex
	replies []string
	prompts []string
}

func (r *scriptedReasoner) Complete(_ context.Context, prompt string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, prompt)
	if len(r.replies) == 0 {
		return "no idea"
	}
	reply := r.replies[0]
	r.replies = r.replies[1:]
	return reply
}

func newTable(t *testing.T) *game.Session {
	t.Helper()
	lib, err := casefile.Embedded()
	require.NoError(t, err)
	return game.New(context.Background(), "detective-test", lib.Case(casefile.Medium), dialogue.NewOffline(),
		testhelpers.NewLogger(io.Discard))
}

func TestInvestigator_Step(t *testing.T) {
	ctx := context.Background()
	table := newTable(t)
	reasoner := &scriptedReasoner{replies: []string{
		`{"thought": "Test the skin cells.", "action": "use_tool", "tool_name": "get_dna_test", "args": {"evidence_id": "sample_B"}}`,
		`{"thought": "Press Sarah.", "action": "chat", "suspect_id": "suspect_1", "message": "Where were you?"}`,
		`{"thought": "Use a magnifying glass.", "action": "use_tool", "tool_name": "magnifying_glass"}`,
		`{"thought": "It was James.", "action": "accuse", "suspect_id": "suspect_2"}`,
	}}
	inv := detective.New(reasoner, detective.JSONDecoder{}, testhelpers.NewLogger(io.Discard))

	turn := inv.Step(ctx, table)
	require.Equal(t, "use_tool", turn.Action)
	require.NotNil(t, turn.Tool)
	require.True(t, turn.Tool.OK())
	require.Equal(t, 6, table.Snapshot().Points)

	turn = inv.Step(ctx, table)
	require.Equal(t, "chat", turn.Action)
	require.NotNil(t, turn.Chat)
	require.Contains(t, turn.Chat.Response, "Where were you?")

	turn = inv.Step(ctx, table)
	require.Equal(t, "Unknown tool: magnifying_glass", turn.Error)

	turn = inv.Step(ctx, table)
	require.NotNil(t, turn.Outcome)
	require.Equal(t, game.ResultWin, turn.Outcome.Result)

	turn = inv.Step(ctx, table)
	require.Equal(t, "none", turn.Action)
	require.Equal(t, "Game Over.", turn.Thought)

	require.Len(t, reasoner.prompts, 4, "no prompt is sent once the game is over")
	require.Contains(t, reasoner.prompts[0], "Victim: Marcus Chen")
	require.Contains(t, reasoner.prompts[0], "No previous actions.")
	require.Contains(t, reasoner.prompts[0], "Sarah Kim (suspect_1): Active")
	require.Contains(t, reasoner.prompts[0], "10th_floor_camera")
	require.Contains(t, reasoner.prompts[1], "Action: use_tool")
	require.Contains(t, reasoner.prompts[1], "James Porter")
	require.Contains(t, reasoner.prompts[1], "Investigation points: 6")

	memory := inv.Memory()
	require.Len(t, memory, 4)
	require.Contains(t, memory[3], "Action: accuse")
}

func TestInvestigator_MemoryWindow(t *testing.T) {
	ctx := context.Background()
	table := newTable(t)
	reasoner := &scriptedReasoner{}
	inv := detective.New(reasoner, detective.JSONDecoder{}, testhelpers.NewLogger(io.Discard))

	for range 7 {
		turn := inv.Step(ctx, table)
		require.Equal(t, "use_tool", turn.Action)
		require.Equal(t, game.ToolFootage, turn.Tool.Tool)
	}
	require.Len(t, inv.Memory(), 5)
	require.Contains(t, reasoner.prompts[6], "Not enough investigation points!")
}
