package play

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/myrjola/murderai/internal/detective"
	"github.com/myrjola/murderai/internal/engine"
	"github.com/myrjola/murderai/internal/errors"
	"github.com/myrjola/murderai/internal/game"
)

const helpText = `Commands:
  status                           show points, round and unlocked evidence
  brief [question]                 ask your partner about the case
  ask <suspect_id> <question>      question a suspect (free)
  location <phone> [| timestamp]   trace a phone (2 pts)
  footage <camera> [| time range]  review camera footage (3 pts)
  dna <evidence_id>                run a DNA test (4 pts)
  alibi <alibi_id> <question>      call an alibi contact (1 pt)
  accuse <suspect_id>              name the murderer
  auto                             let the AI detective take a turn
  help                             show this text
  quit                             leave the game

Arguments with spaces can be quoted ("10th floor") or ended with |.`

type printer struct {
	w io.Writer
}

func (p printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

func (p printer) json(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		p.printf("%+v\n", v)
		return
	}
	p.printf("%s\n", b)
}

// REPL plays game id with commands read from in until the game ends, the player quits or in is exhausted.
func REPL(ctx context.Context, e *engine.Engine, id string, in io.Reader, out io.Writer) error {
	p := printer{w: out}
	snapshot, err := e.GetSession(id)
	if err != nil {
		return errors.Wrap(err, "get session")
	}
	printIntro(p, snapshot)
	p.printf("%s\n> ", helpText)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err = ctx.Err(); err != nil {
			return errors.Wrap(err, "context done")
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			p.printf("> ")
			continue
		}
		command, args := strings.ToLower(fields[0]), fields[1:]
		if command == "quit" || command == "exit" {
			return nil
		}
		if err = runCommand(ctx, p, e, id, command, args); err != nil {
			return err
		}
		if snapshot, err = e.GetSession(id); err != nil {
			return errors.Wrap(err, "get session")
		}
		if snapshot.GameOver {
			p.printf("The case is closed.\n")
			return nil
		}
		p.printf("[round %d/%d, %d pts]> ", snapshot.Round, snapshot.MaxRounds, snapshot.Points)
	}
	if err = scanner.Err(); err != nil {
		return errors.Wrap(err, "read input")
	}
	return nil
}

func printIntro(p printer, s game.Snapshot) {
	p.printf("%s\n\n", s.Title)
	p.printf("Victim: %s, found at %s around %s.\n\nSuspects:\n", s.Victim.Name, s.Victim.Location, s.Victim.TimeOfDeath)
	for _, suspect := range s.Suspects {
		p.printf("  %-10s %s (%s), phone %s, alibi %s\n", suspect.ID, suspect.Name, suspect.Role, suspect.PhoneNumber,
			suspect.AlibiID)
	}
	p.printf("\nCameras: %s\nYou have %d points and %d rounds.\n\n", strings.Join(s.Cameras, ", "), s.Points, s.MaxRounds)
}

// runCommand reports player mistakes on out. Only failures of the engine itself are returned.
func runCommand(ctx context.Context, p printer, e *engine.Engine, id, command string, args []string) error {
	rest := func(from int) string {
		if len(args) <= from {
			return ""
		}
		return strings.Join(args[from:], " ")
	}
	arg := func(i int) string {
		if len(args) <= i {
			return ""
		}
		return args[i]
	}

	switch command {
	case "help":
		p.printf("%s\n", helpText)
	case "status":
		s, err := e.GetSession(id)
		if err != nil {
			return errors.Wrap(err, "get session")
		}
		p.printf("Round %d/%d, %d points. Unlocked: %s. Ruled out: %s.\n", s.Round, s.MaxRounds, s.Points,
			strings.Join(s.Unlocked, ", "), strings.Join(s.Eliminated, ", "))
	case "brief":
		reply, err := e.Brief(ctx, id, rest(0))
		if err != nil {
			return errors.Wrap(err, "brief")
		}
		p.printf("Partner: %s\n", reply)
	case "ask":
		reply, err := e.QuestionSuspect(ctx, id, arg(0), rest(1))
		switch {
		case errors.Is(err, game.ErrUnknownSuspect), errors.Is(err, game.ErrEmptyQuestion):
			p.printf("Usage: ask <suspect_id> <question>\n")
		case err != nil:
			return errors.Wrap(err, "question suspect")
		default:
			p.printf("%s: %s\n", arg(0), reply)
		}
	case "location":
		phone, timestamp := splitTarget(rest(0))
		return useTool(ctx, p, e, id, game.ToolLocation, map[string]string{"phone_number": phone, "timestamp": timestamp})
	case "footage":
		camera, timeRange := splitTarget(rest(0))
		return useTool(ctx, p, e, id, game.ToolFootage, map[string]string{"location": camera, "time_range": timeRange})
	case "dna":
		return useTool(ctx, p, e, id, game.ToolDNA, map[string]string{"evidence_id": arg(0)})
	case "alibi":
		return useTool(ctx, p, e, id, game.ToolAlibi, map[string]string{"alibi_id": arg(0), "question": rest(1)})
	case "accuse":
		outcome, err := e.Accuse(ctx, id, arg(0))
		if err != nil {
			return errors.Wrap(err, "accuse")
		}
		p.printf("%s\n", outcome.Message)
	case "auto":
		turn, err := e.AutoStep(ctx, id)
		if err != nil {
			return errors.Wrap(err, "auto step")
		}
		printTurn(p, turn)
	default:
		p.printf("Unknown command %q. Type help for the list of commands.\n", command)
	}
	return nil
}

// splitTarget separates a tool's target from its optional qualifier. The target ends at the first |, at the closing
// quote when it is quoted, or else at the first space.
func splitTarget(line string) (string, string) {
	line = strings.TrimSpace(line)
	if target, qualifier, ok := strings.Cut(line, "|"); ok {
		return strings.Trim(strings.TrimSpace(target), `"`), strings.TrimSpace(qualifier)
	}
	if quoted, ok := strings.CutPrefix(line, `"`); ok {
		if target, qualifier, closed := strings.Cut(quoted, `"`); closed {
			return strings.TrimSpace(target), strings.TrimSpace(qualifier)
		}
		return strings.TrimSpace(quoted), ""
	}
	target, qualifier, _ := strings.Cut(line, " ")
	return target, strings.TrimSpace(qualifier)
}

func useTool(ctx context.Context, p printer, e *engine.Engine, id string, tool game.Tool, args map[string]string) error {
	result, err := e.UseTool(ctx, id, string(tool), args)
	if err != nil {
		return errors.Wrap(err, "use tool")
	}
	if !result.OK() {
		p.printf("%s\n", result.Error)
		if len(result.Hints) > 0 {
			p.printf("Try one of: %s\n", strings.Join(result.Hints, ", "))
		}
		return nil
	}
	p.printf("-%d pts\n", result.Cost)
	p.json(result.Finding)
	if len(result.NewlyUnlocked) > 0 {
		p.printf("New evidence to test: %s\n", strings.Join(result.NewlyUnlocked, ", "))
	}
	return nil
}

func printTurn(p printer, turn detective.Turn) {
	p.printf("Detective thinks: %s\n", turn.Thought)
	switch {
	case turn.Error != "":
		p.printf("Detective stumbles: %s\n", turn.Error)
	case turn.Tool != nil:
		p.printf("Detective uses %s:\n", turn.Tool.Tool)
		if turn.Tool.OK() {
			p.json(turn.Tool.Finding)
		} else {
			p.printf("%s\n", turn.Tool.Error)
		}
	case turn.Chat != nil:
		p.printf("Detective to %s: %s\n%s: %s\n", turn.Chat.SuspectID, turn.Chat.Question, turn.Chat.SuspectID,
			turn.Chat.Response)
	case turn.Outcome != nil:
		p.printf("Detective accuses: %s\n", turn.Outcome.Message)
	}
}
