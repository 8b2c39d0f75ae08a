// Package detective plays the detective. Each Step builds a briefing from the game state, asks a language model for
// the next move and carries it out through the same operations a human player uses.
package detective

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"text/template"

	"github.com/myrjola/murderai/internal/errors"
	"github.com/myrjola/murderai/internal/game"
)

// memorySize is how many past turns are repeated in the prompt.
const memorySize = 5

//go:embed prompts/investigator.tmpl
var promptFS embed.FS

var promptTemplate = template.Must(template.ParseFS(promptFS, "prompts/investigator.tmpl"))

// Reasoner answers a one-off prompt. dialogue.Gateway satisfies it.
type Reasoner interface {
	Complete(ctx context.Context, prompt string) string
}

// Table is the game as the investigator plays it. *game.Session satisfies it.
type Table interface {
	Snapshot() game.Snapshot
	Question(ctx context.Context, suspectID, text string) (string, error)
	UseTool(ctx context.Context, call game.ToolCall) game.ToolResult
	Accuse(ctx context.Context, suspectID string) game.Outcome
}

// Turn is what happened in one step.
type Turn struct {
	Thought string           `json:"thought"`
	Action  string           `json:"action"`
	Tool    *game.ToolResult `json:"tool,omitempty"`
	Chat    *Chat            `json:"chat,omitempty"`
	Outcome *game.Outcome    `json:"outcome,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type Chat struct {
	SuspectID string `json:"suspect_id"`
	Question  string `json:"question"`
	Response  string `json:"response"`
}

type Investigator struct {
	reasoner Reasoner
	decoder  Decoder
	logger   *slog.Logger

	mu     sync.Mutex
	memory []string
}

func New(reasoner Reasoner, decoder Decoder, logger *slog.Logger) *Investigator {
	return &Investigator{
		reasoner: reasoner,
		decoder:  decoder,
		logger:   logger.With("source", "Investigator"),
		mu:       sync.Mutex{},
		memory:   nil,
	}
}

// Memory returns the remembered turns, oldest first.
func (inv *Investigator) Memory() []string {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return append([]string{}, inv.memory...)
}

// Step plays one turn.
func (inv *Investigator) Step(ctx context.Context, table Table) Turn {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	snapshot := table.Snapshot()
	if snapshot.GameOver {
		return Turn{Thought: "Game Over.", Action: "none"} //nolint:exhaustruct // nothing happened
	}

	var reply string
	if prompt, err := inv.prompt(snapshot); err != nil {
		// An empty reply makes the decoder fall back to its safe default.
		inv.logger.LogAttrs(ctx, slog.LevelError, "render investigator prompt", errors.SlogError(err))
	} else {
		reply = inv.reasoner.Complete(ctx, prompt)
	}
	action := inv.decoder.Decode(reply)
	inv.logger.LogAttrs(ctx, slog.LevelInfo, "investigator decided",
		slog.String("action", action.Action), slog.String("thought", action.Thought))

	turn := inv.execute(ctx, table, action)
	inv.remember(turn)
	return turn
}

func (inv *Investigator) execute(ctx context.Context, table Table, action Action) Turn {
	turn := Turn{
		Thought: action.Thought,
		Action:  action.Action,
		Tool:    nil,
		Chat:    nil,
		Outcome: nil,
		Error:   "",
	}
	switch action.Action {
	case ActionUseTool:
		call, err := game.ParseToolCall(action.ToolName, action.StringArgs())
		if err != nil {
			turn.Error = "Unknown tool: " + action.ToolName
			return turn
		}
		result := table.UseTool(ctx, call)
		turn.Tool = &result
	case ActionChat:
		response, err := table.Question(ctx, action.SuspectID, action.Message)
		if err != nil {
			turn.Error = err.Error()
			return turn
		}
		turn.Chat = &Chat{SuspectID: action.SuspectID, Question: action.Message, Response: response}
	case ActionAccuse:
		outcome := table.Accuse(ctx, action.SuspectID)
		turn.Outcome = &outcome
	default:
		turn.Error = "Unknown action: " + action.Action
	}
	return turn
}

func (inv *Investigator) remember(turn Turn) {
	var result any
	switch {
	case turn.Error != "":
		result = map[string]string{"error": turn.Error}
	case turn.Tool != nil:
		result = turn.Tool
	case turn.Chat != nil:
		result = turn.Chat
	case turn.Outcome != nil:
		result = turn.Outcome
	}
	b, err := json.Marshal(result)
	if err != nil {
		b = []byte(fmt.Sprintf("%q", err.Error()))
	}
	inv.memory = append(inv.memory, fmt.Sprintf("Action: %s\nResult: %s", turn.Action, b))
	if len(inv.memory) > memorySize {
		inv.memory = inv.memory[len(inv.memory)-memorySize:]
	}
}

type promptData struct {
	VictimName      string
	TimeOfDeath     string
	Location        string
	Round           int
	MaxRounds       int
	Points          int
	EvidenceSummary string
	SuspectStatus   string
	History         string
	SuspectPhones   string
	Cameras         string
	UnlockedItems   string
}

func (inv *Investigator) prompt(s game.Snapshot) (string, error) {
	evidence := make([]string, 0, len(s.Evidence))
	for _, e := range s.Evidence {
		finding, _ := json.Marshal(e.Finding)
		evidence = append(evidence, fmt.Sprintf("%s %s: %s", e.Tool, formatArgs(e.Args), finding))
	}
	status := make([]string, 0, len(s.Suspects))
	phones := make([]string, 0, len(s.Suspects))
	for _, suspect := range s.Suspects {
		state := "Active"
		if suspect.Eliminated {
			state = "Eliminated"
		}
		status = append(status, fmt.Sprintf("%s (%s): %s", suspect.Name, suspect.ID, state))
		phones = append(phones, fmt.Sprintf("  %s: %s (alibi ID %s)", suspect.Name, suspect.PhoneNumber, suspect.AlibiID))
	}

	data := promptData{
		VictimName:      s.Victim.Name,
		TimeOfDeath:     s.Victim.TimeOfDeath,
		Location:        s.Victim.Location,
		Round:           s.Round,
		MaxRounds:       s.MaxRounds,
		Points:          s.Points,
		EvidenceSummary: joinOr(evidence, "; ", "None"),
		SuspectStatus:   strings.Join(status, "\n"),
		History:         joinOr(inv.memory, "\n---\n", "No previous actions."),
		SuspectPhones:   strings.Join(phones, "\n"),
		Cameras:         strings.Join(s.Cameras, ", "),
		UnlockedItems:   joinOr(s.Unlocked, ", ", "None"),
	}
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "execute investigator template")
	}
	return buf.String(), nil
}

func formatArgs(args map[string]string) string {
	b, _ := json.Marshal(args)
	return string(b)
}

func joinOr(items []string, sep, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, sep)
}
